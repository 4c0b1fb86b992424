package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// MIDISurfaceConfig configures the hardware grid-controller sink.
type MIDISurfaceConfig struct {
	Enabled     bool   `json:"enabled"`
	PortName    string `json:"portName,omitempty"`
	AutoConnect bool   `json:"autoConnect"`
}

// WSRelayConfig configures the browser/remote surface relay sink.
type WSRelayConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"`
}

// RingConfig sets the ring window's fixed dimensions.
type RingConfig struct {
	Width  int `json:"width,omitempty"`
	Scenes int `json:"scenes,omitempty"`
}

// Config is the main ringbridge configuration structure.
type Config struct {
	MIDISurface MIDISurfaceConfig `json:"midiSurface,omitempty"`
	WSRelay     WSRelayConfig     `json:"wsRelay,omitempty"`
	Ring        RingConfig        `json:"ring,omitempty"`
}

// DefaultConfig returns a config with sensible defaults: a Launchpad X
// surface auto-connected, the browser relay off, and an 8x8 ring window.
func DefaultConfig() *Config {
	return &Config{
		MIDISurface: MIDISurfaceConfig{
			Enabled:     true,
			PortName:    "Launchpad X LPX MIDI",
			AutoConnect: true,
		},
		WSRelay: WSRelayConfig{
			Enabled: false,
			Addr:    "127.0.0.1:8765",
		},
		Ring: RingConfig{
			Width:  8,
			Scenes: 8,
		},
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ringbridge"), nil
}

// ConfigPath returns the full path to config.json.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from an explicit path, or returns defaults if
// the file does not exist.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
