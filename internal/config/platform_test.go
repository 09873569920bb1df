package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPlatformConfigDefaults(t *testing.T) {
	cfg, err := LoadPlatformConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultPlatformConfig(), cfg)
}

func TestLoadPlatformConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	body := "platform:\n  administrator: \"0x00000000000000000000000000000000000000ad\"\n  feeBasisPoints: 300\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "platform.yml"), []byte(body), 0o600))

	cfg, err := LoadPlatformConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "0x00000000000000000000000000000000000000ad", cfg.Administrator)
	assert.Equal(t, uint64(300), cfg.FeeBasisPoints)
}

func TestLoadPlatformConfigEnvOverride(t *testing.T) {
	t.Setenv("ONCLICK_PLATFORM_FEEBASISPOINTS", "125")

	cfg, err := LoadPlatformConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, uint64(125), cfg.FeeBasisPoints)
}

func TestLoadPlatformConfigRejectsFeeAboveCap(t *testing.T) {
	dir := t.TempDir()
	body := "platform:\n  administrator: \"0x00000000000000000000000000000000000000ad\"\n  feeBasisPoints: 10001\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "platform.yml"), []byte(body), 0o600))

	_, err := LoadPlatformConfig(dir)
	assert.Error(t, err)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("LOCK_BACKEND", "REDIS")
	t.Setenv("EVENT_DISPATCH_INTERVAL", "500ms")
	t.Setenv("EVENT_BATCH_SIZE", "not-a-number")

	cfg := Load()
	assert.Equal(t, "redis", cfg.LockBackend)
	assert.True(t, cfg.UsesRedis())
	assert.Equal(t, "500ms", cfg.EventDispatchEvery.String())
	assert.Equal(t, 100, cfg.EventBatchSize)
}
