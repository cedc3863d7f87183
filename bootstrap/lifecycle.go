package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultLifecycleManager starts services in dependency order and stops them
// in reverse
type DefaultLifecycleManager struct {
	// services holds all registered services
	services map[string]Service

	// dependencies tracks service dependencies
	dependencies map[string][]string

	// startOrder tracks the order services were started
	startOrder []string

	logger *zap.Logger

	// mutex protects concurrent access
	mutex sync.RWMutex

	// started indicates if the lifecycle manager has been started
	started bool

	// listeners for lifecycle events
	listeners []func(LifecycleEvent)

	// timeout for each service start and stop
	timeout time.Duration
}

// NewLifecycleManager creates a new lifecycle manager
func NewLifecycleManager(logger *zap.Logger) *DefaultLifecycleManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultLifecycleManager{
		services:     make(map[string]Service),
		dependencies: make(map[string][]string),
		logger:       logger,
		timeout:      30 * time.Second,
	}
}

// Register registers a service under its name
func (lm *DefaultLifecycleManager) Register(service Service, deps ...string) error {
	if service == nil {
		return fmt.Errorf("service cannot be nil")
	}
	name := service.Name()
	if name == "" {
		return fmt.Errorf("service name cannot be empty")
	}

	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	if lm.started {
		return fmt.Errorf("cannot register service %s: lifecycle manager already started", name)
	}

	if _, exists := lm.services[name]; exists {
		return fmt.Errorf("service %s is already registered", name)
	}

	lm.services[name] = service
	lm.dependencies[name] = deps

	lm.broadcastEvent(LifecycleEvent{Type: EventServiceRegistered, Service: name})

	return nil
}

// Start starts all services in dependency order. If one fails, the services
// already started are stopped again.
func (lm *DefaultLifecycleManager) Start(ctx context.Context) error {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	if lm.started {
		return fmt.Errorf("lifecycle manager already started")
	}

	order, err := lm.calculateStartOrder()
	if err != nil {
		return fmt.Errorf("failed to calculate start order: %w", err)
	}

	for _, name := range order {
		service := lm.services[name]

		startCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		err := service.Start(startCtx)
		cancel()

		if err != nil {
			lm.broadcastEvent(LifecycleEvent{Type: EventServiceStartFailed, Service: name, Error: err})
			lm.logger.Error("service failed to start", zap.String("service", name), zap.Error(err))

			_ = lm.stopStarted(context.WithoutCancel(ctx))
			return &ApplicationError{Operation: "start", Service: name, Err: err}
		}

		lm.startOrder = append(lm.startOrder, name)
		lm.broadcastEvent(LifecycleEvent{Type: EventServiceStarted, Service: name})
		lm.logger.Debug("service started", zap.String("service", name))
	}

	lm.started = true
	lm.broadcastEvent(LifecycleEvent{Type: EventLifecycleStarted})

	return nil
}

// Stop stops all services in reverse start order. Every service is asked to
// stop even if an earlier one fails; the errors are joined.
func (lm *DefaultLifecycleManager) Stop(ctx context.Context) error {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	if !lm.started {
		return nil
	}

	err := lm.stopStarted(ctx)
	lm.started = false
	lm.broadcastEvent(LifecycleEvent{Type: EventLifecycleStopped})

	return err
}

// stopStarted stops what Start has started so far. Callers hold the mutex.
func (lm *DefaultLifecycleManager) stopStarted(ctx context.Context) error {
	var errs []error

	for i := len(lm.startOrder) - 1; i >= 0; i-- {
		name := lm.startOrder[i]

		stopCtx, cancel := context.WithTimeout(ctx, lm.timeout)
		err := lm.services[name].Stop(stopCtx)
		cancel()

		if err != nil {
			errs = append(errs, &ApplicationError{Operation: "stop", Service: name, Err: err})
			lm.broadcastEvent(LifecycleEvent{Type: EventServiceStopFailed, Service: name, Error: err})
			lm.logger.Error("service failed to stop", zap.String("service", name), zap.Error(err))
			continue
		}

		lm.broadcastEvent(LifecycleEvent{Type: EventServiceStopped, Service: name})
		lm.logger.Debug("service stopped", zap.String("service", name))
	}

	lm.startOrder = nil
	return errors.Join(errs...)
}

// Health returns the health status of all services
func (lm *DefaultLifecycleManager) Health(ctx context.Context) map[string]HealthStatus {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	health := make(map[string]HealthStatus, len(lm.services))

	for name, service := range lm.services {
		healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		status, err := service.Health(healthCtx)
		cancel()

		if err != nil {
			status = HealthStatus{State: HealthUnhealthy, Message: err.Error()}
		}
		if status.LastCheck.IsZero() {
			status.LastCheck = time.Now()
		}
		health[name] = status
	}

	return health
}

// Services returns all registered service names
func (lm *DefaultLifecycleManager) Services() []string {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	names := make([]string, 0, len(lm.services))
	for name := range lm.services {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// AddListener adds a lifecycle event listener. Listeners run on their own
// goroutine and must not block the caller.
func (lm *DefaultLifecycleManager) AddListener(listener func(LifecycleEvent)) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.listeners = append(lm.listeners, listener)
}

// SetTimeout sets the timeout for service operations
func (lm *DefaultLifecycleManager) SetTimeout(timeout time.Duration) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.timeout = timeout
}

// IsStarted returns true if the lifecycle manager has been started
func (lm *DefaultLifecycleManager) IsStarted() bool {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	return lm.started
}

// calculateStartOrder sorts services topologically (Kahn's algorithm). Ties
// are broken by name so the order is stable.
func (lm *DefaultLifecycleManager) calculateStartOrder() ([]string, error) {
	inDegree := make(map[string]int, len(lm.services))
	graph := make(map[string][]string, len(lm.services))

	for service := range lm.services {
		inDegree[service] = 0
	}

	for service, deps := range lm.dependencies {
		for _, dep := range deps {
			if _, exists := lm.services[dep]; !exists {
				return nil, fmt.Errorf("dependency %s of service %s is not registered", dep, service)
			}
			graph[dep] = append(graph[dep], service)
			inDegree[service]++
		}
	}

	var ready []string
	for service, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, service)
		}
	}
	sort.Strings(ready)

	result := make([]string, 0, len(lm.services))
	for len(ready) > 0 {
		current := ready[0]
		ready = ready[1:]
		result = append(result, current)

		var next []string
		for _, dependent := range graph[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				next = append(next, dependent)
			}
		}
		sort.Strings(next)
		ready = append(ready, next...)
	}

	if len(result) != len(lm.services) {
		return nil, fmt.Errorf("circular dependency detected")
	}

	return result, nil
}

// broadcastEvent stamps the event and hands it to every listener
func (lm *DefaultLifecycleManager) broadcastEvent(event LifecycleEvent) {
	event.Timestamp = time.Now()

	for _, listener := range lm.listeners {
		go func(l func(LifecycleEvent)) {
			defer func() {
				if r := recover(); r != nil {
					lm.logger.Error("lifecycle listener panicked", zap.Any("panic", r))
				}
			}()
			l(event)
		}(listener)
	}
}
