package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"lesson-server/services/chat-api/internal/infrastructure/database/dbschema"
	"lesson-server/services/chat-api/internal/infrastructure/logger"
)

// Config holds database configuration
type Config struct {
	DatabaseURL string
	MaxIdle     int
	MaxOpen     int
	MaxLifetime time.Duration
	LogLevel    gormlogger.LogLevel
}

// Connect creates a new database connection with the given configuration
func Connect(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   "chat_api.",
			SingularTable: false,
		},
		Logger: gormlogger.Default.LogMode(cfg.LogLevel),
	})
	if err != nil {
		log := logger.GetLogger()
		log.Error().
			Str("error_code", "3b9f7e24-a815-4d0c-b6f2-57c1d8a90e36").
			Err(err).
			Msg("unable to connect to database")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	connLog := logger.GetLogger()
	connLog.Info().Msg("Successfully connected to database")
	return db, nil
}

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).Exec("CREATE SCHEMA IF NOT EXISTS chat_api;").Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).AutoMigrate(&dbschema.ChatRoom{}); err != nil {
		return err
	}
	log.Info().Msg("applied chat room migrations")
	return nil
}
