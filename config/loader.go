package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFormat represents the configuration file format
type ConfigFormat string

const (
	FormatYAML ConfigFormat = "yaml"
	FormatJSON ConfigFormat = "json"
)

// Loader handles configuration loading from files and the environment
type Loader struct {
	// Configuration search paths
	searchPaths []string

	// Environment variable prefix
	envPrefix string

	// Default configuration
	defaultConfig *Config
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	paths := []string{
		".",
		"./config",
		"./configs",
		"/etc/hebbnet",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".hebbnet"))
	}

	return &Loader{
		searchPaths:   paths,
		envPrefix:     "HEBBNET",
		defaultConfig: DefaultConfig(),
	}
}

// SetSearchPaths sets the configuration file search paths
func (l *Loader) SetSearchPaths(paths []string) *Loader {
	l.searchPaths = paths
	return l
}

// SetEnvPrefix sets the environment variable prefix
func (l *Loader) SetEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// SetDefaultConfig sets the configuration that files and the environment are
// applied on top of
func (l *Loader) SetDefaultConfig(config *Config) *Loader {
	l.defaultConfig = config
	return l
}

// Load loads configuration from filename, or discovers one in the search
// paths when filename is empty
func (l *Loader) Load(filename string) (*Config, error) {
	if filename == "" {
		return l.AutoLoad()
	}

	config, err := l.loadFromFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from file %s: %w", filename, err)
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific file
func (l *Loader) LoadFromFile(filename string) (*Config, error) {
	return l.loadFromFile(filename)
}

// LoadFromReader loads configuration from an io.Reader. Only defaults are
// applied; environment overrides and validation are left to the caller.
func (l *Loader) LoadFromReader(reader io.Reader, format ConfigFormat) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration data: %w", err)
	}

	return l.parseConfig(data, format)
}

// AutoLoad discovers a configuration file in the search paths. Without one
// the defaults are used. Environment overrides apply either way.
func (l *Loader) AutoLoad() (*Config, error) {
	configFile, err := l.FindConfigFile()
	if err == nil {
		return l.loadFromFile(configFile)
	}
	if err != ErrConfigFileNotFound {
		return nil, err
	}

	config := l.defaults()
	if err := l.finish(config); err != nil {
		return nil, err
	}
	return config, nil
}

// FindConfigFile returns the first configuration file found in the search paths
func (l *Loader) FindConfigFile() (string, error) {
	filenames := []string{
		"hebbnet.yaml", "hebbnet.yml",
		"config.yaml", "config.yml",
		"hebbnet.json", "config.json",
	}

	for _, searchPath := range l.searchPaths {
		for _, filename := range filenames {
			fullPath := filepath.Join(searchPath, filename)
			if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
				return fullPath, nil
			}
		}
	}

	return "", ErrConfigFileNotFound
}

// formatOf determines the format from the file extension
func formatOf(filename string) (ConfigFormat, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported config file format: %q", ext)
	}
}

// loadFromFile loads configuration from a file
func (l *Loader) loadFromFile(filename string) (*Config, error) {
	format, err := formatOf(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, filename)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := l.parseConfig(data, format)
	if err != nil {
		return nil, err
	}

	if err := l.finish(config); err != nil {
		return nil, err
	}
	return config, nil
}

// finish applies environment overrides and validates
func (l *Loader) finish(config *Config) error {
	if err := l.loadFromEnv(config); err != nil {
		return fmt.Errorf("failed to load environment overrides: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// defaults returns a private copy of the default configuration
func (l *Loader) defaults() *Config {
	if l.defaultConfig == nil {
		return DefaultConfig()
	}
	return l.defaultConfig.Clone()
}

// parseConfig decodes data over the defaults, so keys missing from the file
// keep their default values
func (l *Loader) parseConfig(data []byte, format ConfigFormat) (*Config, error) {
	config := l.defaults()

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse YAML config: %v", ErrConfigParseError, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON config: %v", ErrConfigParseError, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	return config, nil
}

// loadFromEnv loads configuration overrides from environment variables
func (l *Loader) loadFromEnv(config *Config) error {
	env := func(key string) string {
		return os.Getenv(l.envPrefix + "_" + key)
	}

	// App configuration
	if val := env("APP_NAME"); val != "" {
		config.App.Name = val
	}
	if val := env("APP_VERSION"); val != "" {
		config.App.Version = val
	}
	if val := env("APP_ENVIRONMENT"); val != "" {
		config.App.Environment = Environment(val)
	}
	if val := env("APP_DEBUG"); val != "" {
		config.App.Debug = strings.ToLower(val) == "true"
	}

	// Log configuration
	if val := env("LOG_LEVEL"); val != "" {
		config.Log.Level = LogLevel(strings.ToLower(val))
	}
	if val := env("LOG_FORMAT"); val != "" {
		config.Log.Format = val
	}
	if val := env("LOG_OUTPUT"); val != "" {
		config.Log.Output = val
	}

	// Network configuration
	if err := envInt(env, "NETWORK_SIZE", &config.Network.Size); err != nil {
		return err
	}
	if err := envFloat(env, "NETWORK_MAX_ENERGY", &config.Network.MaxEnergy); err != nil {
		return err
	}
	if err := envFloat(env, "NETWORK_THRESHOLD", &config.Network.Threshold); err != nil {
		return err
	}
	if err := envInt(env, "NETWORK_MAX_LINK", &config.Network.MaxLink); err != nil {
		return err
	}
	if err := envInt(env, "NETWORK_TRACE_NEURON", &config.Network.TraceNeuron); err != nil {
		return err
	}
	if val := env("NETWORK_SEED"); val != "" {
		seed, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: NETWORK_SEED=%q", ErrEnvironmentVarError, val)
		}
		config.Network.Seed = &seed
	}

	// Mailbox configuration
	if err := envInt(env, "MAILBOX_CAPACITY", &config.Mailbox.Capacity); err != nil {
		return err
	}
	if val := env("MAILBOX_POLICY"); val != "" {
		config.Mailbox.Policy = val
	}

	// Report configuration
	if val := env("REPORT_ENABLED"); val != "" {
		config.Report.Enabled = strings.ToLower(val) == "true"
	}
	if val := env("REPORT_ADDRESS"); val != "" {
		config.Report.Address = val
	}
	if val := env("REPORT_PORT"); val != "" {
		port, err := parsePort(val)
		if err != nil {
			return fmt.Errorf("%w: REPORT_PORT: %v", ErrEnvironmentVarError, err)
		}
		config.Report.Port = port
	}

	if val := env("SHUTDOWN_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("%w: SHUTDOWN_TIMEOUT=%q", ErrEnvironmentVarError, val)
		}
		config.ShutdownTimeout = d
	}

	return nil
}

func envInt(env func(string) string, key string, dst *int) error {
	val := env(key)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrEnvironmentVarError, key, val)
	}
	*dst = n
	return nil
}

func envFloat(env func(string) string, key string, dst *float64) error {
	val := env(key)
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrEnvironmentVarError, key, val)
	}
	*dst = f
	return nil
}

// Helper function to parse port number
func parsePort(val string) (int, error) {
	port, err := strconv.Atoi(val)
	if err != nil {
		return 0, err
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port number: %d", port)
	}
	return port, nil
}
