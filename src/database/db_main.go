package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"charttrader/src/model"
)

// MainDB is the primary read/write database connection used by the
// application.
var MainDB *gorm.DB

// InitMainDB initializes the main database connection and runs
// migrations. This should be called once at application startup
// (e.g. in main()).
func InitMainDB() error {
	config := GetConfig()

	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch config.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(config.DatabaseURL), gormConfig)
	default:
		db, err = gorm.Open(sqlite.Open(config.DatabasePath), gormConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB from GORM: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	// Assign to the global variable only after a successful connection.
	MainDB = db

	logrus.WithField("driver", config.Driver).Info("[database] MainDB connection established")

	if err := MainDB.AutoMigrate(
		&model.Setting{},
		&model.OHLCVSeed{},
		&model.Exception{},
	); err != nil {
		return fmt.Errorf("failed to run migrations on MainDB: %w", err)
	}

	logrus.Info("[database] MainDB migrations completed")

	return nil
}
