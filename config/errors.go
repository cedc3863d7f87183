package config

import "errors"

// Configuration validation errors
var (
	ErrInvalidAppName         = errors.New("invalid application name")
	ErrInvalidEnvironment     = errors.New("invalid environment")
	ErrInvalidLogLevel        = errors.New("invalid log level")
	ErrInvalidLogFormat       = errors.New("invalid log format")
	ErrInvalidSize            = errors.New("invalid network size")
	ErrInvalidMaxEnergy       = errors.New("invalid max energy")
	ErrInvalidThreshold       = errors.New("invalid threshold")
	ErrInvalidMaxLink         = errors.New("invalid max link")
	ErrInvalidTraceNeuron     = errors.New("invalid trace neuron")
	ErrInvalidMailboxSize     = errors.New("invalid mailbox size")
	ErrInvalidOverflowPolicy  = errors.New("invalid overflow policy")
	ErrInvalidPort            = errors.New("invalid port number")
	ErrInvalidShutdownTimeout = errors.New("invalid shutdown timeout")
)

// Configuration loading errors
var (
	ErrConfigFileNotFound  = errors.New("configuration file not found")
	ErrConfigParseError    = errors.New("configuration parse error")
	ErrEnvironmentVarError = errors.New("environment variable error")
)
