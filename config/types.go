// Package config provides configuration management for hebbnet
package config

import (
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/najoast/hebbnet/core"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// String returns the string representation of Environment
func (e Environment) String() string {
	return string(e)
}

// IsValid checks if the environment is valid
func (e Environment) IsValid() bool {
	switch e {
	case EnvDevelopment, EnvTesting, EnvStaging, EnvProduction:
		return true
	default:
		return false
	}
}

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	return string(l)
}

// IsValid checks if the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelFatal:
		return true
	default:
		return false
	}
}

// Log formats
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config represents the complete hebbnet configuration
type Config struct {
	// Application configuration
	App AppConfig `yaml:"app" json:"app"`

	// Logging configuration
	Log LogConfig `yaml:"log" json:"log"`

	// Neuron network parameters
	Network NetworkConfig `yaml:"network" json:"network"`

	// Per-neuron mailbox configuration
	Mailbox MailboxConfig `yaml:"mailbox" json:"mailbox"`

	// HTTP snapshot server configuration
	Report ReportConfig `yaml:"report" json:"report"`

	// Upper bound on waiting for neurons to stop
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	// Application name
	Name string `yaml:"name" json:"name"`

	// Application version
	Version string `yaml:"version" json:"version"`

	// Deployment environment
	Environment Environment `yaml:"environment" json:"environment"`

	// Debug mode
	Debug bool `yaml:"debug" json:"debug"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	// Log level
	Level LogLevel `yaml:"level" json:"level"`

	// Log format (json, text)
	Format string `yaml:"format" json:"format"`

	// Output destination (stdout, stderr, file path)
	Output string `yaml:"output" json:"output"`

	// Fields to include in every log entry
	Fields map[string]string `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// NetworkConfig contains the neuron network parameters
type NetworkConfig struct {
	// Number of neurons
	Size int `yaml:"size" json:"size"`

	// Energy cap per neuron
	MaxEnergy float64 `yaml:"max_energy" json:"max_energy"`

	// Firing threshold per second of elapsed time
	Threshold float64 `yaml:"threshold" json:"threshold"`

	// Maximum outgoing links per neuron
	MaxLink int `yaml:"max_link" json:"max_link"`

	// Seed for reproducible random sources; random when unset
	Seed *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`

	// Neuron whose cycles are logged at debug level; -1 disables
	TraceNeuron int `yaml:"trace_neuron" json:"trace_neuron"`
}

// MailboxConfig contains mailbox settings
type MailboxConfig struct {
	// Values buffered per neuron
	Capacity int `yaml:"capacity" json:"capacity"`

	// Overflow policy (drop-oldest, reject-new, block)
	Policy string `yaml:"policy" json:"policy"`
}

// ReportConfig contains HTTP snapshot server settings
type ReportConfig struct {
	// Enable the HTTP server
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Listening address
	Address string `yaml:"address" json:"address"`

	// Listening port
	Port int `yaml:"port" json:"port"`
}

// Addr returns the listen address in host:port form.
func (r ReportConfig) Addr() string {
	return net.JoinHostPort(r.Address, strconv.Itoa(r.Port))
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	params := core.DefaultParams()
	return &Config{
		App: AppConfig{
			Name:        "hebbnet",
			Version:     "1.0.0",
			Environment: EnvDevelopment,
			Debug:       false,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
			Output: "stderr",
		},
		Network: NetworkConfig{
			Size:        params.Size,
			MaxEnergy:   params.MaxEnergy,
			Threshold:   params.Threshold,
			MaxLink:     params.MaxLink,
			TraceNeuron: -1,
		},
		Mailbox: MailboxConfig{
			Capacity: core.DefaultMailboxSize,
			Policy:   core.DropOldest.String(),
		},
		Report: ReportConfig{
			Enabled: false,
			Address: "127.0.0.1",
			Port:    8080,
		},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate app config
	if c.App.Name == "" {
		return ErrInvalidAppName
	}
	if !c.App.Environment.IsValid() {
		return ErrInvalidEnvironment
	}

	// Validate log config
	if !c.Log.Level.IsValid() {
		return ErrInvalidLogLevel
	}
	switch strings.ToLower(c.Log.Format) {
	case LogFormatJSON, LogFormatText:
	default:
		return ErrInvalidLogFormat
	}

	// Validate network config
	if c.Network.Size < 1 {
		return ErrInvalidSize
	}
	if !finite(c.Network.MaxEnergy) || c.Network.MaxEnergy <= 0 {
		return ErrInvalidMaxEnergy
	}
	if !finite(c.Network.Threshold) || c.Network.Threshold < 0 {
		return ErrInvalidThreshold
	}
	if c.Network.MaxLink < 0 {
		return ErrInvalidMaxLink
	}
	if c.Network.TraceNeuron >= c.Network.Size {
		return ErrInvalidTraceNeuron
	}

	// Validate mailbox config
	if c.Mailbox.Capacity <= 0 {
		return ErrInvalidMailboxSize
	}
	if _, err := core.ParseOverflowPolicy(c.Mailbox.Policy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOverflowPolicy, err)
	}

	// Validate report config
	if c.Report.Port <= 0 || c.Report.Port > 65535 {
		return ErrInvalidPort
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	return nil
}

// Params returns the network parameters for core.NewNetwork.
func (c *Config) Params() core.Params {
	return core.Params{
		Size:      c.Network.Size,
		MaxEnergy: c.Network.MaxEnergy,
		Threshold: c.Network.Threshold,
		MaxLink:   c.Network.MaxLink,
	}
}

// OverflowPolicy returns the parsed mailbox overflow policy
func (c *Config) OverflowPolicy() (core.OverflowPolicy, error) {
	return core.ParseOverflowPolicy(c.Mailbox.Policy)
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// IsDebugEnabled returns true if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.Log.Level == LogLevelDebug
}

// Clone returns a copy that shares nothing mutable with c.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Network.Seed != nil {
		seed := *c.Network.Seed
		clone.Network.Seed = &seed
	}
	if c.Log.Fields != nil {
		clone.Log.Fields = make(map[string]string, len(c.Log.Fields))
		for k, v := range c.Log.Fields {
			clone.Log.Fields[k] = v
		}
	}
	return &clone
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
