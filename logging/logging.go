// Package logging builds the zap logger from the log configuration.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/najoast/hebbnet/config"
)

// Logger bundles the root logger with its level, which can be changed while
// the logger is in use.
type Logger struct {
	*zap.Logger
	Level zap.AtomicLevel
}

// ParseLevel converts a configured level to a zap level.
func ParseLevel(level config.LogLevel) (zapcore.Level, error) {
	l, err := zapcore.ParseLevel(strings.ToLower(string(level)))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("%w: %q", config.ErrInvalidLogLevel, level)
	}
	return l, nil
}

// New builds a production logger with sampling disabled. Text format uses the
// console encoder; anything else is JSON.
func New(cfg config.LogConfig) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Sampling = nil
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if strings.EqualFold(cfg.Format, config.LogFormatText) {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	if cfg.Output != "" {
		zcfg.OutputPaths = []string{cfg.Output}
	}

	if len(cfg.Fields) > 0 {
		zcfg.InitialFields = make(map[string]interface{}, len(cfg.Fields))
		for k, v := range cfg.Fields {
			zcfg.InitialFields[k] = v
		}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Logger{Logger: logger, Level: zcfg.Level}, nil
}

// SetLevel changes the level of a running logger.
func (l *Logger) SetLevel(level config.LogLevel) error {
	zl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if l.Level.Level() != zl {
		l.Level.SetLevel(zl)
		l.Info("log level changed", zap.Stringer("level", zl))
	}
	return nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop(), Level: zap.NewAtomicLevel()}
}
