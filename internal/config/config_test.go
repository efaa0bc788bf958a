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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8081
jwt:
  secret: file-secret
scoring:
  timeout: 3s
market:
  cache_ttl: 1m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 3*time.Second, cfg.Scoring.Timeout)
	assert.Equal(t, time.Minute, cfg.Market.CacheTTL)

	// untouched sections keep defaults
	assert.Equal(t, 168, cfg.JWT.ExpireHours)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.TTL())
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "admin@finrl.ai", cfg.Auth.BootstrapAdminEmail)
	assert.Len(t, cfg.Auth.BootstrapAccounts, 3)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8081
jwt:
  secret: file-secret
`)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("BOOTSTRAP_ADMIN_EMAIL", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Empty(t, cfg.Auth.BootstrapAdminEmail)
}

func TestLoad_RejectsUnknownMode(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("SERVER_MODE", "prod")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_TrustedProxiesFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.1.0/24,")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.1.0/24"}, cfg.Server.TrustedProxies)
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "only-env")
	t.Setenv("PORT", "7000")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "only-env", cfg.JWT.Secret)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := writeConfig(t, "server:\n  port: 8080\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"unknown mode", func(c *Config) { c.Server.Mode = "prod" }, true},
		{"empty mode", func(c *Config) { c.Server.Mode = "" }, true},
		{"debug mode", func(c *Config) { c.Server.Mode = "debug" }, false},
		{"test mode", func(c *Config) { c.Server.Mode = "test" }, false},
		{"bad store", func(c *Config) { c.Store.Driver = "mongo" }, true},
		{"gemini without key", func(c *Config) { c.Scoring.Provider = ScoringGemini }, true},
		{"gemini with key", func(c *Config) {
			c.Scoring.Provider = ScoringGemini
			c.Scoring.Gemini.APIKey = "k"
		}, false},
		{"unknown scorer", func(c *Config) { c.Scoring.Provider = "oracle" }, true},
		{"zero timeout", func(c *Config) { c.Scoring.Timeout = 0 }, true},
		{"zero expiry", func(c *Config) { c.JWT.ExpireHours = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.JWT.Secret = "s"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", db.DSN())
}
