// Package store provides persistence operations on top of GORM: the
// generation snapshot, schedule replacement, status write-back and the
// entity queries backing the HTTP API.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/mnordin/planverk/internal/models"
	"github.com/mnordin/planverk/internal/schedule"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("store: not found")

// Snapshot loads everything one generation run needs in a single pass:
// schedulable orders (pending or scheduled), all predictions, available
// machines, products with their material, and the settings row. The
// scheduler core then runs without touching the database.
func Snapshot(db *gorm.DB) (schedule.Input, error) {
	var in schedule.Input

	if err := db.Where("status IN ?", []string{models.OrderPending, models.OrderScheduled}).
		Order("due_date").Find(&in.Orders).Error; err != nil {
		return in, fmt.Errorf("store: load orders: %w", err)
	}
	if err := db.Order("predicted_date").Find(&in.PredictedOrders).Error; err != nil {
		return in, fmt.Errorf("store: load predicted orders: %w", err)
	}
	if err := db.Where("status = ?", models.MachineAvailable).Find(&in.Machines).Error; err != nil {
		return in, fmt.Errorf("store: load machines: %w", err)
	}
	if err := db.Preload("Material").Find(&in.Products).Error; err != nil {
		return in, fmt.Errorf("store: load products: %w", err)
	}

	settings, err := Settings(db)
	if err != nil {
		return in, err
	}
	in.Settings = settings
	return in, nil
}

// Settings loads the singleton settings row, falling back to the
// defaults when none has been stored yet.
func Settings(db *gorm.DB) (models.Settings, error) {
	var s models.Settings
	err := db.Where("id = ?", models.SettingsID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return s, fmt.Errorf("store: load settings: %w", err)
	}
	return s, nil
}

// SaveSettings upserts the singleton settings row.
func SaveSettings(db *gorm.DB, s models.Settings) error {
	s.ID = models.SettingsID
	if err := db.Save(&s).Error; err != nil {
		return fmt.Errorf("store: save settings: %w", err)
	}
	return nil
}

// ReplaceBlocks swaps the entire schedule in one transaction: every
// existing block is removed and the new set inserted. Readers never see
// a half-replaced schedule.
func ReplaceBlocks(db *gorm.DB, blocks []models.ProductionBlock) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ProductionBlock{}).Error; err != nil {
			return err
		}
		if len(blocks) == 0 {
			return nil
		}
		return tx.CreateInBatches(blocks, 200).Error
	})
	if err != nil {
		return fmt.Errorf("store: replace blocks: %w", err)
	}
	return nil
}

// SaveMetrics serializes the run metrics into the settings row.
func SaveMetrics(db *gorm.DB, m models.ScheduleMetrics) error {
	s, err := Settings(db)
	if err != nil {
		return err
	}
	if err := s.SetScheduleMetrics(m); err != nil {
		return fmt.Errorf("store: encode metrics: %w", err)
	}
	return SaveSettings(db, s)
}

// ApplyStatuses writes derived statuses back to orders and predicted
// orders in one transaction. IDs absent from either table are ignored;
// statuses are derived from data that may have changed underneath.
func ApplyStatuses(db *gorm.DB, statuses map[string]string) error {
	if len(statuses) == 0 {
		return nil
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		for id, status := range statuses {
			if err := tx.Model(&models.Order{}).Where("id = ?", id).
				Update("status", status).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.PredictedOrder{}).Where("id = ?", id).
				Update("status", status).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: apply statuses: %w", err)
	}
	return nil
}

// List returns all rows of one entity type.
func List[T any](db *gorm.DB, order string) ([]T, error) {
	var rows []T
	q := db
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return rows, nil
}

// Get loads one row by primary key.
func Get[T any](db *gorm.DB, id string) (T, error) {
	var row T
	err := db.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, ErrNotFound
	}
	if err != nil {
		return row, fmt.Errorf("store: get: %w", err)
	}
	return row, nil
}

// Create inserts one row.
func Create[T any](db *gorm.DB, row *T) error {
	if err := db.Create(row).Error; err != nil {
		return fmt.Errorf("store: create: %w", err)
	}
	return nil
}

// Update saves all fields of one row.
func Update[T any](db *gorm.DB, row *T) error {
	if err := db.Save(row).Error; err != nil {
		return fmt.Errorf("store: update: %w", err)
	}
	return nil
}

// Delete removes one row by primary key. Deleting a missing row is
// reported as ErrNotFound.
func Delete[T any](db *gorm.DB, id string) error {
	var row T
	res := db.Where("id = ?", id).Delete(&row)
	if res.Error != nil {
		return fmt.Errorf("store: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Blocks returns the full schedule ordered by start time, with the
// machine, product and customer rows preloaded for display.
func Blocks(db *gorm.DB) ([]models.ProductionBlock, error) {
	var blocks []models.ProductionBlock
	if err := db.Preload("Machine").Preload("Product").Preload("Customer").
		Order("start_time").Find(&blocks).Error; err != nil {
		return nil, fmt.Errorf("store: load blocks: %w", err)
	}
	return blocks, nil
}

// DeleteAllBlocks clears the schedule and returns how many blocks were
// removed.
func DeleteAllBlocks(db *gorm.DB) (int64, error) {
	res := db.Where("1 = 1").Delete(&models.ProductionBlock{})
	if res.Error != nil {
		return 0, fmt.Errorf("store: delete blocks: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// AvailableMachines returns machines that may take work.
func AvailableMachines(db *gorm.DB) ([]models.Machine, error) {
	var machines []models.Machine
	if err := db.Where("status = ?", models.MachineAvailable).Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("store: load machines: %w", err)
	}
	return machines, nil
}

// RefreshStatuses recomputes and persists every order and prediction
// status from the current schedule. Mutating handlers call it so
// statuses never go stale between generation runs.
func RefreshStatuses(db *gorm.DB) error {
	settings, err := Settings(db)
	if err != nil {
		return err
	}
	var orders []models.Order
	if err := db.Find(&orders).Error; err != nil {
		return fmt.Errorf("store: load orders: %w", err)
	}
	var predictions []models.PredictedOrder
	if err := db.Find(&predictions).Error; err != nil {
		return fmt.Errorf("store: load predicted orders: %w", err)
	}
	var blocks []models.ProductionBlock
	if err := db.Find(&blocks).Error; err != nil {
		return fmt.Errorf("store: load blocks: %w", err)
	}

	statuses := schedule.AllOrderStatuses(orders, predictions, blocks,
		schedule.ReliabilityThreshold(settings), time.Now())
	return ApplyStatuses(db, statuses)
}
