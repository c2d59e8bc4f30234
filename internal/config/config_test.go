package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "animos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 60.0, cfg.TickHz)
	assert.InDelta(t, float64(16666666), float64(cfg.TickInterval()), 1000)
	assert.Equal(t, 20*time.Millisecond, cfg.SendInterval())
	assert.Equal(t, "localhost", cfg.OSC.Host)
	assert.True(t, cfg.In.Enable)
	assert.False(t, cfg.MIDI.Enable)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
tickHz: 30
epsilonMeters: 0.001
osc:
  host: 10.0.0.5
  port: 4003
  sendIntervalMS: 50
in:
  enable: false
midi:
  enable: true
  device: launchpad
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.TickHz)
	assert.Equal(t, 0.001, cfg.EpsilonMeters)
	assert.Equal(t, "10.0.0.5", cfg.OSC.Host)
	assert.Equal(t, 50*time.Millisecond, cfg.SendInterval())
	assert.False(t, cfg.In.Enable)
	assert.True(t, cfg.MIDI.Enable)
	assert.Equal(t, "launchpad", cfg.MIDI.Device)
	// untouched fields keep their defaults
	assert.Equal(t, 256, cfg.QueueSize)
}

func TestLoadRejectsBadValues(t *testing.T) {
	for _, body := range []string{
		"tickHz: -1",
		"tickHz: 5000",
		"osc:\n  port: 0",
		"osc:\n  port: 99999",
	} {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err, body)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "tickHz: [not a number"))
	assert.Error(t, err)
}
