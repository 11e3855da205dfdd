package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensordash/internal/config"
	"sensordash/internal/errors"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
interval = 10
listen = ":9090"
database = "/tmp/sensordash-test/settings.db"
log_level = "debug"

[[devices]]
id = "roof-01"
name = "Roof Sensor"
location = "Roof"
powered = true
`)
	configPath := filepath.Join(tempDir, "sensordash.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("SENSORDASH_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Interval, "Expected Interval 10")
	assert.Equal(t, ":9090", cfg.Listen, "Expected Listen :9090")
	assert.Equal(t, "/tmp/sensordash-test/settings.db", cfg.Database)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
	require.Len(t, cfg.Devices, 1)
	assert.Equal(t, "roof-01", cfg.Devices[0].ID)
	assert.True(t, cfg.Devices[0].Powered)
}

func TestLoadDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "sensordash.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(""), 0o600))
	t.Setenv("SENSORDASH_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultInterval, cfg.Interval)
	assert.Equal(t, config.DefaultListen, cfg.Listen)
	assert.Equal(t, config.DefaultDatabase, cfg.Database)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, config.DefaultFleet(), cfg.Devices, "Expected default fleet")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "sensordash.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("SENSORDASH_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Equal(t, errors.ErrReadConfig, errors.CodeOf(err))
}

func TestInvalidLogLevel(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
log_level = "invalid"
`)
	configPath := filepath.Join(tempDir, "sensordash.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("SENSORDASH_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidLogLevel, errors.CodeOf(err))
}

func TestInvalidInterval(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
interval = 0
`)
	configPath := filepath.Join(tempDir, "sensordash.toml")
	require.NoError(t, os.WriteFile(configPath, configContent, 0o600))
	t.Setenv("SENSORDASH_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidConfig, errors.CodeOf(err))
}

func TestDuplicateDeviceID(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
[[devices]]
id = "dup-01"

[[devices]]
id = "dup-01"
`)
	configPath := filepath.Join(tempDir, "sensordash.toml")
	require.NoError(t, os.WriteFile(configPath, configContent, 0o600))
	t.Setenv("SENSORDASH_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidConfig, errors.CodeOf(err))
}
