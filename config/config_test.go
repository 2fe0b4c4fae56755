package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noEnvFile points godotenv at a file that does not exist so a developer's
// .env cannot leak into the test.
func noEnvFile(t *testing.T) string {
	return "--env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load([]string{noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoad_Layering(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
http_port: 4000
db_path: from-file.db
reconcile_interval: 10m
jwt_issuer: file-issuer
`), 0o600))

	t.Setenv("DB_PATH", "from-env.db")
	t.Setenv("RECONCILE_INTERVAL", "2m")

	cfg, err := Load([]string{noEnvFile(t), "--config", file, "--reconcile-interval", "30s"})
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.HTTPPort, "file overrides default")
	assert.Equal(t, "file-issuer", cfg.JWTIssuer, "file overrides default")
	assert.Equal(t, "from-env.db", cfg.DBPath, "env overrides file")
	assert.Equal(t, 30*time.Second, cfg.ReconcileInterval, "flag overrides env")
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("REDIS_ADDR=cache:6379\n"), 0o600))
	t.Setenv("REDIS_ADDR", "")
	os.Unsetenv("REDIS_ADDR")

	cfg, err := Load([]string{"--env-file", envFile})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")

	cfg, err := Load([]string{noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.HTTPPort)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.HTTPPort = 0 }},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }},
		{"postgres without url", func(c *Config) { c.DBDriver = "postgres" }},
		{"sqlite without path", func(c *Config) { c.DBPath = "" }},
		{"zero reconcile interval", func(c *Config) { c.ReconcileInterval = 0 }},
		{"zero upload size", func(c *Config) { c.MaxUploadSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load([]string{noEnvFile(t), "--config", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}
