package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                   "development",
		JWTSecret:             "secure-secret-at-least-32-chars-long",
		DBPassword:            "secure-password",
		DBSSLMode:             "require",
		Port:                  "8080",
		RedisURL:              "redis://localhost:6379",
		RequestTimeoutSeconds: 15,
		TracingSamplerRatio:   1,
		TracingExporter:       "stdout",
		MaintenanceEnabled:    true,
		MaintenanceCron:       "0 3 * * *",
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateSecrets(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.JWTSecret = defaultJWTSecret
	assert.Error(t, c.Validate())

	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.JWTSecret = ""
	assert.Error(t, c.Validate())
}

func TestConfig_ValidateMaintenanceCron(t *testing.T) {
	c := validConfig()
	c.MaintenanceCron = "not a cron"
	assert.Error(t, c.Validate())

	c.MaintenanceEnabled = false
	assert.NoError(t, c.Validate())
}

func TestConfig_ValidateTracing(t *testing.T) {
	c := validConfig()
	c.TracingEnabled = true
	c.TracingExporter = "jaeger"
	assert.Error(t, c.Validate())

	c.TracingExporter = "otlp"
	assert.NoError(t, c.Validate())

	c.TracingSamplerRatio = 1.5
	assert.Error(t, c.Validate())
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("TRACING_EXPORTER")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("TRACING_EXPORTER", " OTLP ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "otlp", c.TracingExporter)
	assert.Equal(t, "0 3 * * *", c.MaintenanceCron)
	assert.Equal(t, 15, c.RequestTimeoutSeconds)
}
