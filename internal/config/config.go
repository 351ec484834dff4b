package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// PeriodFallback selects how invalid month/year query parameters fall back to
// the current period on the monthly balance.
type PeriodFallback string

const (
	// PeriodFallbackCoupled resets both month and year when either is not numeric,
	// and only the month when it is numeric but out of range.
	PeriodFallbackCoupled PeriodFallback = "coupled"
	// PeriodFallbackIndependent resets month and year separately.
	PeriodFallbackIndependent PeriodFallback = "independent"
)

// FixedExpenseEditPolicy selects what happens to existing occurrences when a
// fixed expense is edited.
type FixedExpenseEditPolicy string

const (
	FixedExpenseEditPreserve   FixedExpenseEditPolicy = "preserve"
	FixedExpenseEditRegenerate FixedExpenseEditPolicy = "regenerate"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret               string
	JWTExpirationDur        time.Duration
	JWTRefreshExpirationDur time.Duration

	// Balance
	BalanceLocale         string
	BalancePeriodFallback PeriodFallback

	// Fixed expenses
	FixedExpenseEditPolicy FixedExpenseEditPolicy

	// Events
	AMQPURL      string
	AMQPExchange string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "saldo"),
		DBPassword: getEnv("DB_PASSWORD", "saldo"),
		DBName:     getEnv("DB_NAME", "saldo"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "saldo.db"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Balance
		BalanceLocale: getEnv("BALANCE_LOCALE", "pt_BR"),

		// Events
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "saldo.events"),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 15*time.Minute)
	config.JWTRefreshExpirationDur = getDuration("JWT_REFRESH_EXPIRES_IN", 30*24*time.Hour)

	switch v := PeriodFallback(getEnv("BALANCE_PERIOD_FALLBACK", string(PeriodFallbackCoupled))); v {
	case PeriodFallbackCoupled, PeriodFallbackIndependent:
		config.BalancePeriodFallback = v
	default:
		log.Printf("Warning: invalid BALANCE_PERIOD_FALLBACK value '%s', falling back to %s\n", v, PeriodFallbackCoupled)
		config.BalancePeriodFallback = PeriodFallbackCoupled
	}

	switch v := FixedExpenseEditPolicy(getEnv("FIXED_EXPENSE_EDIT_POLICY", string(FixedExpenseEditPreserve))); v {
	case FixedExpenseEditPreserve, FixedExpenseEditRegenerate:
		config.FixedExpenseEditPolicy = v
	default:
		log.Printf("Warning: invalid FIXED_EXPENSE_EDIT_POLICY value '%s', falling back to %s\n", v, FixedExpenseEditPreserve)
		config.FixedExpenseEditPolicy = FixedExpenseEditPreserve
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// PostgresURL returns the connection URL used by golang-migrate.
func (c *Config) PostgresURL() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
