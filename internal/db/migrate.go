package db

import (
	"fmt"

	"github.com/mnordin/planverk/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Machine{},
		&models.Material{},
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.PredictedOrder{},
		&models.ProductionBlock{},
		&models.Settings{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// EnsureSettings creates the settings row with defaults if it does not
// exist yet. Existing settings are never overwritten.
func EnsureSettings(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Settings{}).Where("id = ?", models.SettingsID).Count(&count).Error; err != nil {
		return fmt.Errorf("db: check settings: %w", err)
	}
	if count > 0 {
		return nil
	}
	s := models.DefaultSettings()
	if err := db.Create(&s).Error; err != nil {
		return fmt.Errorf("db: create settings: %w", err)
	}
	return nil
}

// Reset drops all Planverk tables. Used by `planverk db reset`.
func Reset(db *gorm.DB) error {
	if err := db.Migrator().DropTable(AllModels()...); err != nil {
		return fmt.Errorf("db: drop tables: %w", err)
	}
	return nil
}
