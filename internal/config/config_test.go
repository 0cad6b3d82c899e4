package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/stadium")
	t.Setenv("JWT_SECRET", "secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.IsProduction)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 10, cfg.BookingRateLimit)
	assert.Equal(t, time.Hour, cfg.BookingRateWindow)
	assert.Equal(t, 20.0, cfg.APIRateRPS)
	assert.Equal(t, "stadium.bookings", cfg.AMQPExchange)
	assert.Empty(t, cfg.RedisAddr)
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("TIMEZONE", "Africa/Casablanca")
	t.Setenv("BOOKING_RATE_WINDOW", "10m")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("API_RATE_RPS", "2.5")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction)
	assert.Equal(t, "Africa/Casablanca", cfg.Location.String())
	assert.Equal(t, 10*time.Minute, cfg.BookingRateWindow)
	assert.True(t, cfg.DBAutoMigrate)
	assert.Equal(t, 2.5, cfg.APIRateRPS)
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing dsn", env: map[string]string{"DB_DSN": "", "JWT_SECRET": "x"}},
		{name: "missing secret", env: map[string]string{"DB_DSN": "x", "JWT_SECRET": ""}},
		{name: "bad ttl", env: map[string]string{"DB_DSN": "x", "JWT_SECRET": "x", "JWT_ACCESS_TOKEN_TTL": "soon"}},
		{name: "bad cost", env: map[string]string{"DB_DSN": "x", "JWT_SECRET": "x", "BCRYPT_COST": "high"}},
		{name: "bad timezone", env: map[string]string{"DB_DSN": "x", "JWT_SECRET": "x", "TIMEZONE": "Mars/Olympus"}},
		{name: "bad bool", env: map[string]string{"DB_DSN": "x", "JWT_SECRET": "x", "DB_AUTO_MIGRATE": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
