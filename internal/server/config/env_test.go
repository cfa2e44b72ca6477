package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	err := parseEnv(cfg, map[string]string{
		"PORT":             "3000",
		"TOKEN_SECRET":     "env-secret",
		"SHEETY_TOKEN":     "sheety-token",
		"ACCESS_TOKEN_TTL": "12h",
		"DIRECTORY":        "memory",
		"CORS_ORIGINS":     "http://a,http://b",
	})
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, "sheety-token", cfg.DirectoryToken)
	assert.Equal(t, 12*time.Hour, cfg.AccessTokenValidityDuration)
	assert.Equal(t, DirectoryMemory, cfg.Directory)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 10, cfg.BcryptCost, "unset variables keep the current value")
}

func Test_parseEnv_BadValue(t *testing.T) {
	err := parseEnv(&Config{}, map[string]string{"PORT": "not-a-number"})
	assert.ErrorContains(t, err, "parse env")
}

func Test_loadDotenv(t *testing.T) {
	const key = "AUTHGATE_DOTENV_TEST"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))

	require.NoError(t, loadDotenv(path))
	assert.Equal(t, "from-file", os.Getenv(key))
}

func Test_loadDotenv_DoesNotOverride(t *testing.T) {
	const key = "AUTHGATE_DOTENV_KEEP"
	t.Setenv(key, "from-process")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))

	require.NoError(t, loadDotenv(path))
	assert.Equal(t, "from-process", os.Getenv(key))
}

func Test_loadDotenv_MissingFile(t *testing.T) {
	assert.NoError(t, loadDotenv(filepath.Join(t.TempDir(), "absent.env")))
}
