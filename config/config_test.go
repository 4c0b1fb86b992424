package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "config.json"))
	assert.Equal(t, err, nil)
	assert.Equal(t, cfg.Ring.Width, DefaultConfig().Ring.Width)
	assert.Equal(t, cfg.MIDISurface.PortName, DefaultConfig().MIDISurface.PortName)
}

func TestWrittenConfigRoundTripsThroughLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := DefaultConfig()
	cfg.Ring.Width = 4
	cfg.WSRelay.Enabled = true

	data, err := json.MarshalIndent(cfg, "", "  ")
	assert.Equal(t, err, nil)
	assert.Equal(t, os.WriteFile(path, data, 0644), nil)

	loaded, err := LoadFrom(path)
	assert.Equal(t, err, nil)
	assert.Equal(t, loaded.Ring.Width, 4)
	assert.Equal(t, loaded.WSRelay.Enabled, true)
}

func TestLoadFromMalformedJSONErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	assert.Equal(t, os.WriteFile(path, []byte("{not json"), 0644), nil)

	_, err := LoadFrom(path)
	assert.NotEqual(t, err, nil)
}
