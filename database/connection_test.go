package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daaqui/joyas-bot/internal/config"
)

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{DBUser: "postgres", DBPass: "secret", DBName: "daaqui", DBHost: "localhost"}
	assert.Equal(t, "host=localhost user=postgres password=secret dbname=daaqui port=5432 sslmode=disable", PostgresDSN(cfg))

	cfg.InstanceConnectionName = "proj:region:inst"
	assert.Equal(t, "host=/cloudsql/proj:region:inst user=postgres password=secret dbname=daaqui sslmode=disable", PostgresDSN(cfg))

	cfg.DatabaseURL = "postgres://u:p@db/x"
	assert.Equal(t, "postgres://u:p@db/x", PostgresDSN(cfg))
}

func TestConnect_SQLite(t *testing.T) {
	cfg := &config.Config{
		DatabaseDriver: "sqlite",
		DatabaseURL:    filepath.Join(t.TempDir(), "test.db"),
	}
	db, err := Connect(cfg, zap.NewNop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.NoError(t, sqlDB.Ping())
}
