package database

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"gamehub/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the PostgreSQL connection and runs migrations.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := Open(postgres.Open(dsn))
	if err != nil {
		return nil, err
	}

	slog.Info("database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	slog.Info("database migrated")
	return db, nil
}

// Open configures gorm on top of any dialector.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	// Configure GORM logger
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             200 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,            // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,                   // Enable color
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: customLogger,
		// Unique violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the tables for every entity.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Game{}, &models.Article{}, &models.Review{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
