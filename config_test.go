package virthid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.VirtualInputEnabled)
	assert.Empty(t, cfg.VirtualDeviceName)
	assert.Equal(t, ":5555", cfg.ListenAddress)
	assert.Empty(t, cfg.MetricsAddress)
}

func TestLoadConfigWritesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "virthid.toml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "virthid.toml")

	cfg := DefaultConfig()
	cfg.VirtualInputEnabled = false
	cfg.VirtualDeviceName = "Integration HID"
	cfg.MetricsAddress = "127.0.0.1:9110"
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
