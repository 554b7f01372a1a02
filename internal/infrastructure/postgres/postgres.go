// Package postgres implements the repositories over GORM.
package postgres

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nutrilog/backend/internal/domain"
)

// Open connects to Postgres with the given DSN.
func Open(dsn string, log *zap.SugaredLogger) (*gorm.DB, error) {
	log.Info("connecting to postgres")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// AutoMigrate creates the engine's tables. Dev convenience only; the schema
// is owned externally in production.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Food{},
		&UserFood{},
		&FoodNutrient{},
		&UnitWeight{},
		&DayLogRow{},
		&LogItemRow{},
		&LogItemNutrient{},
		&TargetSettingsRow{},
		&TargetOverrideRow{},
	)
}

// isUndefinedTable reports whether err is Postgres "relation does not exist"
// (SQLSTATE 42P01), which marks an optional lookup table as absent.
func isUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "42P01") || strings.Contains(msg, "does not exist")
}

// wrapStorageErr maps a gorm error onto the domain taxonomy.
func wrapStorageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrFoodNotFound
	}
	if isUndefinedTable(err) {
		return fmt.Errorf("%w: %v", domain.ErrLookupUnavailable, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
}
