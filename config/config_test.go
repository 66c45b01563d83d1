package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "DATABASE_URL", "ALLOWED_ORIGINS", "APP_ENV"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := load(filepath.Join(t.TempDir(), "missing.env"), nil)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "tuition.db", cfg.DatabaseURL)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvFileThenEnvThenFlags(t *testing.T) {
	// GIVEN: A .env file, one real env var, and one flag
	// THEN: Flags beat env, env beats .env

	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"PORT=9000\nDATABASE_URL=postgres://tuition@localhost/tuition\nALLOWED_ORIGINS=https://a.example, https://b.example\nAPP_ENV=production\n",
	), 0o600))
	t.Setenv("PORT", "9100")

	cfg, err := load(envFile, []string{"-db", ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DatabaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("PORT", "eighty")
	_, err := load(missing, nil)
	assert.Error(t, err)

	t.Setenv("PORT", "")
	_, err = load(missing, []string{"-port", "70000"})
	assert.Error(t, err)

	t.Setenv("APP_ENV", "staging")
	_, err = load(missing, nil)
	assert.Error(t, err)

	t.Setenv("APP_ENV", "")
	_, err = load(missing, []string{"-unknown"})
	assert.Error(t, err)
}
