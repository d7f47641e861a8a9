package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mnordin/planverk/internal/models"
	"github.com/mnordin/planverk/internal/notify"
	"github.com/mnordin/planverk/internal/schedule"
	"github.com/mnordin/planverk/internal/store"
	"gorm.io/gorm"
)

func handleGetSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := store.Settings(db)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func handlePutSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var s models.Settings
		if err := c.ShouldBindJSON(&s); err != nil {
			badRequest(c, err)
			return
		}
		if s.WorkHoursPerDay <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "work_hours_per_day must be positive"})
			return
		}
		hours := schedule.WorkHoursFromSettings(s)
		if err := hours.Validate(); err != nil {
			badRequest(c, err)
			return
		}

		// The stored metrics blob survives settings edits.
		current, err := store.Settings(db)
		if err != nil {
			serverError(c, err)
			return
		}
		s.ScheduleMetrics = current.ScheduleMetrics

		if err := store.SaveSettings(db, s); err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func handleListBlocks(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		blocks, err := store.Blocks(db)
		if err != nil {
			serverError(c, err)
			return
		}
		settings, err := store.Settings(db)
		if err != nil {
			serverError(c, err)
			return
		}
		metrics, _ := settings.LastScheduleMetrics()
		c.JSON(http.StatusOK, gin.H{
			"blocks":  blocks,
			"metrics": metrics,
		})
	}
}

// blockRequest is the body of a manual block creation.
type blockRequest struct {
	MachineID  string    `json:"machine_id"`
	ProductID  string    `json:"product_id"`
	CustomerID string    `json:"customer_id"`
	BatchSize  int       `json:"batch_size"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

func handleCreateBlock(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req blockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if !req.EndTime.After(req.StartTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
			return
		}
		if _, err := store.Get[models.Machine](db, req.MachineID); errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "machine not found"})
			return
		} else if err != nil {
			serverError(c, err)
			return
		}
		if _, err := store.Get[models.Product](db, req.ProductID); errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product not found"})
			return
		} else if err != nil {
			serverError(c, err)
			return
		}

		block := models.ProductionBlock{
			ID:         uuid.NewString(),
			MachineID:  req.MachineID,
			ProductID:  req.ProductID,
			CustomerID: req.CustomerID,
			BatchSize:  req.BatchSize,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			ManualEdit: true,
		}
		if err := store.Create(db, &block); err != nil {
			serverError(c, err)
			return
		}
		if err := recalcAfterEdit(db); err != nil {
			serverError(c, err)
			return
		}
		if err := store.RefreshStatuses(db); err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusCreated, block)
	}
}

// moveRequest is the body of a manual block move.
type moveRequest struct {
	MachineID string    `json:"machine_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func handleMoveBlock(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		block, err := store.Get[models.ProductionBlock](db, c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			notFound(c)
			return
		}
		if err != nil {
			serverError(c, err)
			return
		}

		var req moveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if !req.EndTime.After(req.StartTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
			return
		}

		if req.MachineID != "" {
			if _, err := store.Get[models.Machine](db, req.MachineID); errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "machine not found"})
				return
			} else if err != nil {
				serverError(c, err)
				return
			}
			block.MachineID = req.MachineID
		}
		block.StartTime = req.StartTime
		block.EndTime = req.EndTime
		block.ManualEdit = true

		if err := store.Update(db, &block); err != nil {
			serverError(c, err)
			return
		}
		if err := recalcAfterEdit(db); err != nil {
			serverError(c, err)
			return
		}
		if err := store.RefreshStatuses(db); err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, block)
	}
}

// recalcAfterEdit refreshes the stored metrics after a manual move and
// flags the schedule as hand-edited.
func recalcAfterEdit(db *gorm.DB) error {
	var blocks []models.ProductionBlock
	if err := db.Find(&blocks).Error; err != nil {
		return err
	}
	machines, err := store.AvailableMachines(db)
	if err != nil {
		return err
	}
	settings, err := store.Settings(db)
	if err != nil {
		return err
	}
	metrics := schedule.RecalculateAfterEdit(blocks, machines, settings, time.Now())
	return store.SaveMetrics(db, metrics)
}

func handleDeleteBlock(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := store.Delete[models.ProductionBlock](db, c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			notFound(c)
			return
		}
		if err != nil {
			serverError(c, err)
			return
		}
		if err := store.RefreshStatuses(db); err != nil {
			serverError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleDeleteAllBlocks(db *gorm.DB, notifier *notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := store.DeleteAllBlocks(db)
		if err != nil {
			serverError(c, err)
			return
		}
		if err := store.RefreshStatuses(db); err != nil {
			serverError(c, err)
			return
		}
		if err := notifier.ScheduleCleared(n); err != nil {
			// Notification failure never fails the request.
			c.Error(err)
		}
		c.JSON(http.StatusOK, gin.H{"deleted": n})
	}
}

func handleGenerate(db *gorm.DB, notifier *notify.Notifier, m *metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := store.Snapshot(db)
		if err != nil {
			serverError(c, err)
			return
		}
		in.Now = time.Now()

		result, err := schedule.Generate(in)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}

		if err := store.ReplaceBlocks(db, result.Blocks); err != nil {
			serverError(c, err)
			return
		}

		runMetrics := schedule.CalculateMetrics(result.Blocks, in.Machines, in.Settings, in.Now)
		if err := store.SaveMetrics(db, runMetrics); err != nil {
			serverError(c, err)
			return
		}

		statuses := schedule.AllOrderStatuses(in.Orders, in.PredictedOrders, result.Blocks,
			schedule.ReliabilityThreshold(in.Settings), in.Now)
		if err := store.ApplyStatuses(db, statuses); err != nil {
			serverError(c, err)
			return
		}

		m.recordGeneration(len(result.Blocks))
		if err := notifier.ScheduleGenerated(runMetrics, result.Skipped); err != nil {
			c.Error(err)
		}

		c.JSON(http.StatusOK, gin.H{
			"blocks":  result.Blocks,
			"skipped": result.Skipped,
			"metrics": runMetrics,
		})
	}
}

// forecastEntry is a timeline entry annotated with the holding cost of
// producing it at the schedule's buffer distance before delivery.
type forecastEntry struct {
	schedule.TimelineEntry
	HoldingCost *schedule.HoldingCost `json:"holding_cost,omitempty"`
}

func handleForecasts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Find(&orders).Error; err != nil {
			serverError(c, err)
			return
		}
		var predictions []models.PredictedOrder
		if err := db.Find(&predictions).Error; err != nil {
			serverError(c, err)
			return
		}
		settings, err := store.Settings(db)
		if err != nil {
			serverError(c, err)
			return
		}

		threshold := schedule.ReliabilityThreshold(settings)
		timeline := schedule.CombineTimeline(orders, predictions, threshold)

		entries := make([]forecastEntry, 0, len(timeline))
		for _, entry := range timeline {
			fe := forecastEntry{TimelineEntry: entry}
			if days := settings.DeliveryBufferDays; days > 0 && entry.Quantity > 0 {
				hc := schedule.CalculateHoldingCost(entry.Quantity,
					settings.StorageCostPerDay, settings.UnitPrice, settings.InterestRate, days)
				fe.HoldingCost = &hc
			}
			entries = append(entries, fe)
		}

		c.JSON(http.StatusOK, gin.H{
			"entries":   entries,
			"threshold": threshold,
		})
	}
}
