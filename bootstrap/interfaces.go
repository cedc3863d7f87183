// Package bootstrap wires the neuron network, the report server and the
// config watcher into one application with an ordered lifecycle.
package bootstrap

import (
	"context"
	"fmt"
	"time"
)

// Service represents a service that can be managed by the lifecycle manager
type Service interface {
	// Start starts the service. ctx bounds the start only; a service that
	// keeps running must not derive its lifetime from it.
	Start(ctx context.Context) error

	// Stop stops the service
	Stop(ctx context.Context) error

	// Health returns the health status of the service
	Health(ctx context.Context) (HealthStatus, error)

	// Name returns the service name
	Name() string
}

// HealthStatus represents the health status of a service
type HealthStatus struct {
	// State indicates whether the service is healthy
	State HealthState `json:"state"`

	// Message provides additional information about the health status
	Message string `json:"message,omitempty"`

	// LastCheck is the timestamp of the last health check
	LastCheck time.Time `json:"last_check,omitempty"`

	// Data contains additional health information
	Data map[string]interface{} `json:"data,omitempty"`
}

// HealthState represents the health state of a service
type HealthState string

const (
	HealthUnknown   HealthState = "unknown"
	HealthHealthy   HealthState = "healthy"
	HealthUnhealthy HealthState = "unhealthy"
	HealthStopped   HealthState = "stopped"
)

// LifecycleManager manages the lifecycle of services
type LifecycleManager interface {
	// Register registers a service with optional dependencies
	Register(service Service, deps ...string) error

	// Start starts all services in dependency order
	Start(ctx context.Context) error

	// Stop stops all services in reverse start order
	Stop(ctx context.Context) error

	// Health returns the health status of all services
	Health(ctx context.Context) map[string]HealthStatus

	// Services returns all registered service names
	Services() []string

	// AddListener adds a lifecycle event listener
	AddListener(listener func(LifecycleEvent))
}

// Lifecycle event types
const (
	EventServiceRegistered  = "service.registered"
	EventServiceStarted     = "service.started"
	EventServiceStartFailed = "service.start_failed"
	EventServiceStopped     = "service.stopped"
	EventServiceStopFailed  = "service.stop_failed"
	EventLifecycleStarted   = "lifecycle.started"
	EventLifecycleStopped   = "lifecycle.stopped"
)

// LifecycleEvent represents an event in the service lifecycle
type LifecycleEvent struct {
	Type      string    `json:"type"`
	Service   string    `json:"service,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Error     error     `json:"error,omitempty"`
}

// ApplicationError represents an error that occurred during application lifecycle
type ApplicationError struct {
	Operation string
	Service   string
	Err       error
}

func (e *ApplicationError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("%s failed for service %s: %v", e.Operation, e.Service, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}
