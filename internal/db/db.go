package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/loopmobile/loop-og/internal/logger"
	"github.com/loopmobile/loop-og/internal/models"
)

// Init opens and returns a GORM database connection for the given URL.
// Supported schemes are postgres:// and sqlite://; an empty URL falls
// back to a local SQLite file for development.
func Init(databaseURL string, log *logger.Logger) (*gorm.DB, error) {
	if databaseURL == "" {
		databaseURL = "sqlite://loop-og.db"
		log.Info("DATABASE_URL not set, defaulting to 'sqlite://loop-og.db'")
	}

	var dialector gorm.Dialector

	switch {
	case strings.HasPrefix(databaseURL, "postgres://"):
		dialector = postgres.Open(databaseURL)
		log.Info("Connecting to PostgreSQL database...")
	case strings.HasPrefix(databaseURL, "sqlite://"):
		dsn := strings.TrimPrefix(databaseURL, "sqlite://")
		dialector = sqlite.Open(dsn)
		log.WithField("path", dsn).Info("Connecting to SQLite database")
	default:
		return nil, fmt.Errorf("invalid DATABASE_URL prefix, must start with 'postgres://' or 'sqlite://'")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent), // Be quiet by default
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("Database connection established")
	return db, nil
}

// Migrate runs the schema migrations for the preview pipeline's models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.Vote{},
		&models.Comment{},
		&models.Answer{},
	)
}
