package virthid

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Config selects and names the input backend. The zero value is not useful;
// start from DefaultConfig.
type Config struct {
	// VirtualInputEnabled selects the virtual HID backend when possible.
	// When false the screen backend is used unconditionally.
	VirtualInputEnabled bool `toml:"virtual_input_enabled"`

	// VirtualDeviceName is the device name presented to the host. Empty
	// selects the built-in default.
	VirtualDeviceName string `toml:"virtual_device_name"`

	// ListenAddress is where the demonstration server accepts line-oriented
	// debugging connections.
	ListenAddress string `toml:"listen_address"`

	// MetricsAddress serves Prometheus metrics over HTTP. Empty disables
	// the endpoint.
	MetricsAddress string `toml:"metrics_address"`
}

func DefaultConfig() *Config {
	return &Config{
		VirtualInputEnabled: true,
		VirtualDeviceName:   "",
		ListenAddress:       ":5555",
		MetricsAddress:      "",
	}
}

// LoadConfig reads a TOML config file. A missing file is not an error: the
// defaults are written there and returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveConfig(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// WatchConfig reloads the config whenever the file changes and hands the
// result to onChange. The watcher observes the parent directory so that
// editors replacing the file atomically still trigger a reload. Close the
// returned watcher to stop.
func WatchConfig(path string, logger zerolog.Logger, onChange func(*Config)) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				cfg, err := LoadConfig(path)
				if err != nil {
					logger.Warn().Err(err).Str("path", path).Msg("config reload failed")
					continue
				}
				logger.Info().Str("path", path).Msg("config reloaded")
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Msg("config watcher error")
			}
		}
	}()

	return watcher, nil
}
