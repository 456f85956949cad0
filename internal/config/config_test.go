package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-finance-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("FINANCE_API_URL", "")
	t.Setenv("FINCTL_HTTP_TIMEOUT", "")
	t.Setenv("FINCTL_STARTUP_TIMEOUT", "")
	t.Setenv("FINCTL_TOKEN_STORE", "")
	t.Setenv("FINCTL_COALESCE_REFRESH", "")
	t.Setenv("FINCTL_DATA_DIR", "/tmp/finctl-test")

	c := config.New()
	require.Equal(t, "http://localhost:8000/api", c.GetBaseURL())
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())
	require.Equal(t, config.DefaultStartupTimeout, c.GetStartupTimeout())
	require.Equal(t, 5*time.Second, c.GetStartupTimeout())
	require.Equal(t, config.TokenStoreFile, c.GetTokenStoreType())
	require.Equal(t, filepath.Join("/tmp/finctl-test", "tokens.json"), c.GetTokenStorePath())
	require.False(t, c.GetCoalesceRefresh())
}

func TestConfig_Overrides(t *testing.T) {
	t.Setenv("FINANCE_API_URL", "https://money.example.com/api/")
	t.Setenv("FINCTL_HTTP_TIMEOUT", "3s")
	t.Setenv("FINCTL_STARTUP_TIMEOUT", "250ms")
	t.Setenv("FINCTL_TOKEN_STORE", "sqlite")
	t.Setenv("FINCTL_COALESCE_REFRESH", "true")
	t.Setenv("FINCTL_DATA_DIR", "/var/lib/finctl")

	c := config.New()
	require.Equal(t, "https://money.example.com/api", c.GetBaseURL())
	require.Equal(t, 3*time.Second, c.GetHTTPTimeout())
	require.Equal(t, 250*time.Millisecond, c.GetStartupTimeout())
	require.Equal(t, config.TokenStoreSQLite, c.GetTokenStoreType())
	require.Equal(t, filepath.Join("/var/lib/finctl", "tokens.db"), c.GetTokenStorePath())
	require.True(t, c.GetCoalesceRefresh())
}

func TestConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("FINCTL_STARTUP_TIMEOUT", "soon")
	t.Setenv("FINCTL_TOKEN_STORE", "redis")
	t.Setenv("FINCTL_COALESCE_REFRESH", "maybe")

	c := config.New()
	require.Equal(t, config.DefaultStartupTimeout, c.GetStartupTimeout())
	require.Equal(t, config.TokenStoreFile, c.GetTokenStoreType())
	require.False(t, c.GetCoalesceRefresh())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FINCTL_DOTENV_PROBE=from-file\n"), 0o600))

	t.Setenv("FINCTL_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("FINCTL_DOTENV_PROBE"))

	require.NoError(t, config.LoadDotEnv(envFile))
	require.Equal(t, "from-file", os.Getenv("FINCTL_DOTENV_PROBE"))

	require.NoError(t, config.LoadDotEnv(filepath.Join(dir, "missing.env")))
}
