package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/najoast/hebbnet/config"
	"github.com/najoast/hebbnet/core"
	"github.com/najoast/hebbnet/logging"
	"github.com/najoast/hebbnet/server"
)

// Service names
const (
	NetworkServiceName       = "network"
	ReportServerServiceName  = "report-server"
	ConfigWatcherServiceName = "config-watcher"
)

// NetworkService runs the neuron goroutines
type NetworkService struct {
	network *core.Network
}

func (s *NetworkService) Name() string {
	return NetworkServiceName
}

// Start launches the neurons. They outlive the start context and stop only
// through Stop.
func (s *NetworkService) Start(ctx context.Context) error {
	return s.network.Start(context.WithoutCancel(ctx))
}

func (s *NetworkService) Stop(ctx context.Context) error {
	return s.network.Shutdown(ctx)
}

func (s *NetworkService) Health(ctx context.Context) (HealthStatus, error) {
	data := map[string]interface{}{
		"run_id":  s.network.RunID(),
		"neurons": s.network.Size(),
	}
	if !s.network.Running() {
		return HealthStatus{State: HealthStopped, Message: "network not running", Data: data}, nil
	}
	return HealthStatus{State: HealthHealthy, Message: "network running", Data: data}, nil
}

// ReportServerService serves activity snapshots over HTTP
type ReportServerService struct {
	server *server.ReportServer
	addr   string
	logger *zap.Logger

	listener net.Addr
	serveErr chan error
}

func (s *ReportServerService) Name() string {
	return ReportServerServiceName
}

// Start binds the listen address before returning, so a busy port fails the
// start instead of a background goroutine.
func (s *ReportServerService) Start(ctx context.Context) error {
	addr, err := s.server.Listen(s.addr)
	if err != nil {
		return err
	}
	s.listener = addr
	s.serveErr = make(chan error, 1)

	go func() {
		err := s.server.Serve()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("report server stopped", zap.Error(err))
		}
		s.serveErr <- err
	}()

	return nil
}

func (s *ReportServerService) Stop(ctx context.Context) error {
	if s.serveErr == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *ReportServerService) Health(ctx context.Context) (HealthStatus, error) {
	if s.listener == nil {
		return HealthStatus{State: HealthUnknown, Message: "report server not started"}, nil
	}
	select {
	case err := <-s.serveErr:
		s.serveErr <- err
		return HealthStatus{State: HealthStopped, Message: fmt.Sprintf("report server stopped: %v", err)}, nil
	default:
	}
	return HealthStatus{
		State:   HealthHealthy,
		Message: "report server listening",
		Data:    map[string]interface{}{"addr": s.listener.String()},
	}, nil
}

// Addr returns the bound address once started.
func (s *ReportServerService) Addr() net.Addr {
	return s.listener
}

// ConfigWatcherService reloads the config file and applies what can change
// at runtime: the log level. Network parameters take effect on restart.
type ConfigWatcherService struct {
	watcher *config.Watcher
	logger  *logging.Logger
}

func newConfigWatcherService(watcher *config.Watcher, logger *logging.Logger) *ConfigWatcherService {
	s := &ConfigWatcherService{watcher: watcher, logger: logger}
	watcher.OnConfigChange(s.apply)
	return s
}

func (s *ConfigWatcherService) Name() string {
	return ConfigWatcherServiceName
}

func (s *ConfigWatcherService) Start(ctx context.Context) error {
	return s.watcher.Start()
}

func (s *ConfigWatcherService) Stop(ctx context.Context) error {
	return s.watcher.Stop()
}

func (s *ConfigWatcherService) Health(ctx context.Context) (HealthStatus, error) {
	return HealthStatus{State: HealthHealthy, Message: "watching configuration"}, nil
}

func (s *ConfigWatcherService) apply(oldConfig, newConfig *config.Config) {
	if err := s.logger.SetLevel(newConfig.Log.Level); err != nil {
		s.logger.Warn("ignoring log level", zap.Error(err))
	}
	if oldConfig.Params() != newConfig.Params() || oldConfig.Mailbox != newConfig.Mailbox {
		s.logger.Warn("network parameters changed, restart to apply")
	}
}
