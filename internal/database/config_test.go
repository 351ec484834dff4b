package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/config"
	"saldo/internal/logger"
	"saldo/internal/models"
)

func init() {
	logger.Init("test")
}

func TestNewConfig(t *testing.T) {
	t.Run("postgres dsn and migration url", func(t *testing.T) {
		cfg, err := NewConfig(&config.Config{
			DBDriver:   DriverPostgres,
			DBHost:     "db",
			DBPort:     "5432",
			DBUser:     "saldo",
			DBPassword: "secret",
			DBName:     "saldo",
			DBSSLMode:  "disable",
		})
		require.NoError(t, err)

		assert.Equal(t, "host=db port=5432 user=saldo password=secret dbname=saldo sslmode=disable", cfg.DSN())
		assert.Equal(t, "postgres://saldo:secret@db:5432/saldo?sslmode=disable", cfg.MigrationURL())
	})

	t.Run("sqlite dsn is the file path", func(t *testing.T) {
		cfg, err := NewConfig(&config.Config{DBDriver: DriverSQLite, SQLitePath: "saldo.db"})
		require.NoError(t, err)

		assert.Equal(t, "saldo.db", cfg.DSN())
	})

	t.Run("rejects unknown drivers", func(t *testing.T) {
		_, err := NewConfig(&config.Config{DBDriver: "mysql"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
	})
}

func TestManager_SQLiteAutoMigrate(t *testing.T) {
	cfg := &Config{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "saldo.db")}

	m, err := NewManager(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.RunMigrations())

	for _, model := range models.All() {
		assert.True(t, m.DB().Migrator().HasTable(model), "expected table for %T", model)
	}

	var fk int
	require.NoError(t, m.DB().Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk, "foreign keys must be enabled")
}
