package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "prepline", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 20*time.Second, cfg.AI.RequestTimeout)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("PREPLINE_SERVER_PORT", "9090")
	t.Setenv("PREPLINE_AI_MODEL", "gpt-4o")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "sqlite"},
			AI:       AIConfig{RequestTimeout: 20 * time.Second},
		}
	}

	t.Run("ValidConfig", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Driver = "oracle"
		assert.Error(t, cfg.Validate())
	})

	t.Run("PortOutOfRange", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("PostgresNeedsHostAndDatabase", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Driver = "postgres"
		assert.Error(t, cfg.Validate())

		cfg.Database.Host = "localhost"
		cfg.Database.Database = "prepline"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("NonPositiveAITimeout", func(t *testing.T) {
		cfg := valid()
		cfg.AI.RequestTimeout = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, Username: "u", Password: "p",
		Database: "prepline", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=prepline sslmode=disable", cfg.DSN())
}
