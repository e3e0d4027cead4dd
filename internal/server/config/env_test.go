package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_Variables(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	t.Setenv(EnvHTTPAddr, ":9080")
	t.Setenv(EnvRefreshStore, StoreMemory)
	t.Setenv(EnvAccessValidity, "30m")
	t.Setenv(EnvRefreshMonths, "2")
	t.Setenv(EnvGracePeriod, "90s")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":9080", cfg.EndpointAddrHTTP)
	assert.Equal(t, StoreMemory, cfg.RefreshStore)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 2, cfg.RefreshTokenValidityMonths)
	assert.Equal(t, 90*time.Second, cfg.RotationGracePeriod)
	assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Cleanup(func() {
		_ = os.Unsetenv(EnvSecretKey)
		_ = os.Unsetenv(EnvRedisAddr)
	})

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(
		EnvSecretKey+"=dotenv-secret\n"+EnvRedisAddr+"=dotenv:6379\n"), 0o600))

	os.Args = []string{"testbin", "-env", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "dotenv-secret", cfg.SecretKey)
	assert.Equal(t, "dotenv:6379", cfg.RedisAddr)
}

func TestParseEnv_ProcessEnvWinsOverFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(EnvLogLevel+"=debug\n"), 0o600))
	t.Setenv(EnvLogLevel, "warn")

	os.Args = []string{"testbin", "-env", path}

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestParseEnv_Panics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("missing env file", func(t *testing.T) {
		os.Args = []string{"testbin", "-env", filepath.Join(t.TempDir(), "absent.env")}
		require.Panics(t, func() { parseEnv(&Config{}) })
	})

	t.Run("bad duration", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv(EnvRequestTimeout, "fast")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})

	t.Run("bad months", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv(EnvRefreshMonths, "six")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})
}
