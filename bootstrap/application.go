package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/najoast/hebbnet/config"
	"github.com/najoast/hebbnet/core"
	"github.com/najoast/hebbnet/logging"
	"github.com/najoast/hebbnet/server"
)

// Application owns the network and the services around it
type Application struct {
	config *config.Config
	logger *logging.Logger

	lifecycle *DefaultLifecycleManager
	network   *core.Network
	report    *ReportServerService

	// mutex protects running
	mutex   sync.Mutex
	running bool
}

type appOptions struct {
	configFile  string
	loader      *config.Loader
	networkOpts []core.Option
}

// Option configures an Application
type Option func(*appOptions)

// WithConfigWatcher reloads configFile on change through loader
func WithConfigWatcher(configFile string, loader *config.Loader) Option {
	return func(o *appOptions) {
		o.configFile = configFile
		o.loader = loader
	}
}

// WithNetworkOptions appends network options after those derived from the
// configuration, e.g. a virtual clock
func WithNetworkOptions(opts ...core.Option) Option {
	return func(o *appOptions) {
		o.networkOpts = append(o.networkOpts, opts...)
	}
}

// NetworkOptions derives the network options from the configuration
func NetworkOptions(cfg *config.Config, logger *zap.Logger) ([]core.Option, error) {
	policy, err := cfg.OverflowPolicy()
	if err != nil {
		return nil, err
	}

	opts := []core.Option{
		core.WithMailbox(cfg.Mailbox.Capacity, policy),
		core.WithLogger(logger),
		core.WithTraceNeuron(cfg.Network.TraceNeuron),
	}
	if cfg.Network.Seed != nil {
		opts = append(opts, core.WithSeed(*cfg.Network.Seed))
	}
	return opts, nil
}

// NewApplication builds the network and registers its services. A nil logger
// discards all logs.
func NewApplication(cfg *config.Config, logger *logging.Logger, opts ...Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ApplicationError{Operation: "configure", Err: err}
	}
	if logger == nil {
		logger = logging.Nop()
	}

	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	networkOpts, err := NetworkOptions(cfg, logger.Logger)
	if err != nil {
		return nil, &ApplicationError{Operation: "configure", Err: err}
	}
	network, err := core.NewNetwork(cfg.Params(), append(networkOpts, o.networkOpts...)...)
	if err != nil {
		return nil, &ApplicationError{Operation: "configure", Service: NetworkServiceName, Err: err}
	}

	app := &Application{
		config:    cfg,
		logger:    logger,
		lifecycle: NewLifecycleManager(logger.Logger),
		network:   network,
	}
	app.lifecycle.SetTimeout(cfg.ShutdownTimeout)

	if err := app.registerServices(o); err != nil {
		return nil, err
	}

	return app, nil
}

// registerServices registers the network and, when configured, the report
// server and the config watcher
func (app *Application) registerServices(o appOptions) error {
	if err := app.lifecycle.Register(&NetworkService{network: app.network}); err != nil {
		return err
	}

	if app.config.Report.Enabled {
		app.report = &ReportServerService{
			server: server.NewReportServer(app.network, app.logger.Logger),
			addr:   app.config.Report.Addr(),
			logger: app.logger.Logger,
		}
		if err := app.lifecycle.Register(app.report, NetworkServiceName); err != nil {
			return err
		}
	}

	if o.configFile != "" {
		loader := o.loader
		if loader == nil {
			loader = config.NewLoader()
		}
		watcher, err := config.NewWatcher(o.configFile, loader, app.logger.Logger)
		if err != nil {
			return &ApplicationError{Operation: "configure", Service: ConfigWatcherServiceName, Err: err}
		}
		if err := app.lifecycle.Register(newConfigWatcherService(watcher, app.logger), NetworkServiceName); err != nil {
			return err
		}
	}

	return nil
}

// Start starts all services
func (app *Application) Start(ctx context.Context) error {
	app.mutex.Lock()
	defer app.mutex.Unlock()

	if app.running {
		return fmt.Errorf("application is already running")
	}

	if err := app.lifecycle.Start(ctx); err != nil {
		return fmt.Errorf("failed to start services: %w", err)
	}
	app.running = true

	app.logger.Info("application started",
		zap.String("app", app.config.App.Name),
		zap.String("run_id", app.network.RunID()),
		zap.Uint64("seed", app.network.Seed()))
	return nil
}

// Run starts the application and blocks until ctx is done or SIGINT/SIGTERM
// arrives, then shuts down
func (app *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	app.logger.Info("starting graceful shutdown")

	return app.Shutdown(context.WithoutCancel(ctx))
}

// Shutdown stops all services, bounded by the configured shutdown timeout
func (app *Application) Shutdown(ctx context.Context) error {
	app.mutex.Lock()
	defer app.mutex.Unlock()

	if !app.running {
		return nil
	}
	app.running = false

	shutdownCtx, cancel := context.WithTimeout(ctx, app.config.ShutdownTimeout)
	defer cancel()

	if err := app.lifecycle.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop services: %w", err)
	}

	app.logger.Info("application stopped")
	return nil
}

// Health returns the health of every service
func (app *Application) Health(ctx context.Context) map[string]HealthStatus {
	return app.lifecycle.Health(ctx)
}

// Network returns the neuron network
func (app *Application) Network() *core.Network {
	return app.network
}

// Lifecycle returns the lifecycle manager
func (app *Application) Lifecycle() LifecycleManager {
	return app.lifecycle
}

// ReportAddr returns the report server address once started, or "" when
// the server is disabled
func (app *Application) ReportAddr() string {
	if app.report == nil || app.report.Addr() == nil {
		return ""
	}
	return app.report.Addr().String()
}
