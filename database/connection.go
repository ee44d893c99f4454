package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/daaqui/joyas-bot/internal/config"
)

// Connect opens the database selected by DATABASE_DRIVER.
func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.IsDevelopment() {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "sqlite":
		path := cfg.DatabaseURL
		if path == "" {
			path = "joyas.db"
		}
		log.Info("connecting to sqlite", zap.String("path", path))
		dialector = sqlite.Open(path)
	default:
		dialector = postgres.Open(PostgresDSN(cfg))
		if cfg.InstanceConnectionName != "" {
			log.Info("connecting to Cloud SQL via socket", zap.String("instance", cfg.InstanceConnectionName))
		} else {
			log.Info("connecting to PostgreSQL", zap.String("host", cfg.DBHost))
		}
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("database: connect %s: %w", cfg.DatabaseDriver, err)
	}

	log.Info("database connected")
	return db, nil
}

// PostgresDSN builds the connection string. DATABASE_URL wins; otherwise
// Cloud Run connects over the Cloud SQL unix socket and local runs over TCP.
func PostgresDSN(cfg *config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	if cfg.InstanceConnectionName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.InstanceConnectionName, cfg.DBUser, cfg.DBPass, cfg.DBName)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=5432 sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPass, cfg.DBName)
}
