package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DB_DRIVER", "JWT_EXPIRES_IN", "JWT_REFRESH_EXPIRES_IN",
		"BALANCE_LOCALE", "BALANCE_PERIOD_FALLBACK", "FIXED_EXPENSE_EDIT_POLICY", "AMQP_URL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpirationDur)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTRefreshExpirationDur)
	assert.Equal(t, "pt_BR", cfg.BalanceLocale)
	assert.Equal(t, PeriodFallbackCoupled, cfg.BalancePeriodFallback)
	assert.Equal(t, FixedExpenseEditPreserve, cfg.FixedExpenseEditPolicy)
	assert.Empty(t, cfg.AMQPURL)
	assert.Equal(t, "saldo.events", cfg.AMQPExchange)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_EXPIRES_IN", "1h")
	t.Setenv("BALANCE_PERIOD_FALLBACK", "independent")
	t.Setenv("FIXED_EXPENSE_EDIT_POLICY", "regenerate")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.JWTExpirationDur)
	assert.Equal(t, PeriodFallbackIndependent, cfg.BalancePeriodFallback)
	assert.Equal(t, FixedExpenseEditRegenerate, cfg.FixedExpenseEditPolicy)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "soon")
	t.Setenv("BALANCE_PERIOD_FALLBACK", "sideways")
	t.Setenv("FIXED_EXPENSE_EDIT_POLICY", "sometimes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWTExpirationDur)
	assert.Equal(t, PeriodFallbackCoupled, cfg.BalancePeriodFallback)
	assert.Equal(t, FixedExpenseEditPreserve, cfg.FixedExpenseEditPolicy)
}

func TestPostgresURL(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.PostgresURL())
}
