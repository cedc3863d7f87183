package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches a configuration file and reloads it on change
type Watcher struct {
	// Configuration file path
	configFile string

	// Configuration loader
	loader *Loader

	logger *zap.Logger

	// Current configuration
	config   *Config
	configMu sync.RWMutex

	// File system watcher
	fsWatcher *fsnotify.Watcher

	// Event callbacks
	callbacks   []ConfigChangeCallback
	callbacksMu sync.RWMutex

	// Quiet period before a burst of writes triggers a reload
	debounce time.Duration

	// Context for cancellation
	ctx    context.Context
	cancel context.CancelFunc

	stopOnce sync.Once
	stopErr  error

	// Wait group for goroutines
	wg sync.WaitGroup
}

// ConfigChangeCallback is called when configuration changes
type ConfigChangeCallback func(oldConfig, newConfig *Config)

// NewWatcher loads configFile and prepares to watch it. No file system
// watcher is opened until Start. A nil logger discards watcher logs.
func NewWatcher(configFile string, loader *Loader, logger *zap.Logger) (*Watcher, error) {
	if _, err := formatOf(configFile); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Load initial configuration
	config, err := loader.LoadFromFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		configFile: filepath.Clean(configFile),
		loader:     loader,
		logger:     logger.With(zap.String("config_file", configFile)),
		config:     config,
		debounce:   500 * time.Millisecond,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start starts watching the configuration file. The parent directory is
// watched so that editors replacing the file are picked up too.
func (w *Watcher) Start() error {
	if w.fsWatcher != nil {
		return fmt.Errorf("config watcher already started")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(w.configFile)); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("failed to watch config file: %w", err)
	}
	w.fsWatcher = fsWatcher

	w.wg.Add(1)
	go w.watchLoop(fsWatcher)

	return nil
}

// Stop stops watching the configuration file. It is safe to call without
// Start.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		w.cancel()
		if w.fsWatcher != nil {
			w.stopErr = w.fsWatcher.Close()
		}
		w.wg.Wait()
	})
	return w.stopErr
}

// GetConfig returns the current configuration
func (w *Watcher) GetConfig() *Config {
	w.configMu.RLock()
	defer w.configMu.RUnlock()
	return w.config
}

// OnConfigChange registers a callback for configuration changes
func (w *Watcher) OnConfigChange(callback ConfigChangeCallback) {
	w.callbacksMu.Lock()
	defer w.callbacksMu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Reload manually reloads the configuration
func (w *Watcher) Reload() error {
	return w.reloadConfig()
}

// watchLoop watches for file system events
func (w *Watcher) watchLoop(fsWatcher *fsnotify.Watcher) {
	defer w.wg.Done()

	var debounceTimer *time.Timer

	for {
		select {
		case <-w.ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != w.configFile {
				continue
			}

			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(w.debounce, func() {
					if err := w.reloadConfig(); err != nil {
						w.logger.Warn("config reload failed, keeping previous config", zap.Error(err))
					}
				})

			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				w.logger.Warn("config file removed or renamed")
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", zap.Error(err))
		}
	}
}

// reloadConfig reloads the configuration from file
func (w *Watcher) reloadConfig() error {
	newConfig, err := w.loader.LoadFromFile(w.configFile)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	w.configMu.Lock()
	oldConfig := w.config
	w.config = newConfig
	w.configMu.Unlock()

	w.notifyCallbacks(oldConfig, newConfig)

	w.logger.Info("configuration reloaded")
	return nil
}

// notifyCallbacks notifies all registered callbacks of configuration changes
func (w *Watcher) notifyCallbacks(oldConfig, newConfig *Config) {
	w.callbacksMu.RLock()
	callbacks := make([]ConfigChangeCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.callbacksMu.RUnlock()

	for _, callback := range callbacks {
		// Call callback in a separate goroutine to avoid blocking
		go func(cb ConfigChangeCallback) {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("config change callback panicked", zap.Any("panic", r))
				}
			}()
			cb(oldConfig, newConfig)
		}(callback)
	}
}
