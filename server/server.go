// Package server exposes network activity snapshots over HTTP.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/najoast/hebbnet/core"
)

// Source is the read side of a running network.
type Source interface {
	Report() []core.Sample
	Neuron(id core.NeuronID) (*core.Neuron, bool)
	RunID() string
	Size() int
	Running() bool
}

// ActivityResponse is the body of GET /api/v1/activity.
type ActivityResponse struct {
	RunID   string        `json:"run_id"`
	Time    time.Time     `json:"time"`
	Samples []core.Sample `json:"samples"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	RunID   string `json:"run_id"`
	Neurons int    `json:"neurons"`
}

type ReportServer struct {
	echo   *echo.Echo
	source Source
	logger *zap.Logger
}

func NewReportServer(source Source, logger *zap.Logger) *ReportServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	server := &ReportServer{
		echo:   e,
		source: source,
		logger: logger,
	}

	server.setupRoutes()

	return server
}

func (s *ReportServer) setupRoutes() {
	s.echo.GET("/health", s.getHealth)
	s.echo.GET("/report", s.getReport)
	s.echo.GET("/api/v1/activity", s.getActivity)
	s.echo.GET("/api/v1/neurons/:id", s.getNeuron)
}

// Listen binds addr without serving yet. Port 0 picks a free port.
func (s *ReportServer) Listen(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("report server listen on %s: %w", addr, err)
	}
	s.echo.Listener = ln
	s.logger.Info("report server listening", zap.Stringer("addr", ln.Addr()))
	return ln.Addr(), nil
}

// Serve serves on the listener bound by Listen and blocks until shutdown. It
// returns http.ErrServerClosed after Shutdown.
func (s *ReportServer) Serve() error {
	return s.echo.Start("")
}

func (s *ReportServer) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler returns the HTTP handler, for embedding and tests.
func (s *ReportServer) Handler() http.Handler {
	return s.echo
}

func (s *ReportServer) getHealth(c echo.Context) error {
	resp := HealthResponse{
		Status:  "ok",
		RunID:   s.source.RunID(),
		Neurons: s.source.Size(),
	}
	if !s.source.Running() {
		resp.Status = "stopped"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// getReport serves the console report line.
func (s *ReportServer) getReport(c echo.Context) error {
	return c.String(http.StatusOK, core.FormatReport(s.source.Report()))
}

func (s *ReportServer) getActivity(c echo.Context) error {
	return c.JSON(http.StatusOK, ActivityResponse{
		RunID:   s.source.RunID(),
		Time:    time.Now().UTC(),
		Samples: s.source.Report(),
	})
}

func (s *ReportServer) getNeuron(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "neuron id must be a non-negative integer",
		})
	}

	n, ok := s.source.Neuron(core.NeuronID(id))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": core.ErrUnknownNeuron.Error(),
		})
	}

	return c.JSON(http.StatusOK, n.Stats())
}
