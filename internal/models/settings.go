package models

import (
	"encoding/json"
	"time"
)

// SettingsID is the primary key of the single settings row.
const SettingsID = "main"

// Settings is the process-wide configuration row. Generation runs read
// it once and treat it as an immutable snapshot.
type Settings struct {
	ID                       string    `gorm:"primaryKey;size:16" json:"id"`
	SetupTimeMinutes         int       `gorm:"default:45" json:"setup_time_minutes"`
	WorkHoursPerDay          int       `gorm:"default:16" json:"work_hours_per_day"`
	WorkStartHour            int       `gorm:"default:6" json:"work_start_hour"`
	WorkEndHour              int       `gorm:"default:22" json:"work_end_hour"`
	DeliveryBufferDays       int       `gorm:"default:2" json:"delivery_buffer_days"`
	PredictionErrorThreshold float64   `gorm:"default:25" json:"prediction_error_threshold"`
	ShiftsPerDay             int       `gorm:"default:2" json:"shifts_per_day"`
	UnitPrice                float64   `gorm:"default:5" json:"unit_price"`
	StorageCostPerDay        float64   `gorm:"default:0.5" json:"storage_cost_per_day"`
	InterestRate             float64   `gorm:"default:0.035" json:"interest_rate"`
	ScheduleMetrics          string    `gorm:"type:json" json:"schedule_metrics"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// DefaultSettings returns the settings row used when none has been
// stored yet.
func DefaultSettings() Settings {
	return Settings{
		ID:                       SettingsID,
		SetupTimeMinutes:         45,
		WorkHoursPerDay:          16,
		WorkStartHour:            6,
		WorkEndHour:              22,
		DeliveryBufferDays:       2,
		PredictionErrorThreshold: 25,
		ShiftsPerDay:             2,
		UnitPrice:                5,
		StorageCostPerDay:        0.5,
		InterestRate:             0.035,
	}
}

// ScheduleMetrics summarizes one generation run. It is recomputed
// wholesale on every run and serialized into the settings row.
type ScheduleMetrics struct {
	TotalOEE             float64            `json:"total_oee"`
	TotalProductionHours float64            `json:"total_production_hours"`
	TotalSetupHours      float64            `json:"total_setup_hours"`
	TotalBlocks          int                `json:"total_blocks"`
	MachinesUsed         int                `json:"machines_used"`
	MachineOEE           map[string]float64 `json:"machine_oee"`
	EstimatedRevenue     float64            `json:"estimated_revenue"`
	WorkDays             int                `json:"work_days"`
	HasManualEdits       bool               `json:"has_manual_edits"`
	LastCalculatedAt     time.Time          `json:"last_calculated_at"`
}

// SetScheduleMetrics serializes metrics into the settings row.
func (s *Settings) SetScheduleMetrics(m ScheduleMetrics) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	s.ScheduleMetrics = string(data)
	return nil
}

// LastScheduleMetrics decodes the stored metrics. The second return is
// false when no metrics have been stored yet or the column is invalid.
func (s Settings) LastScheduleMetrics() (ScheduleMetrics, bool) {
	if s.ScheduleMetrics == "" {
		return ScheduleMetrics{}, false
	}
	var m ScheduleMetrics
	if err := json.Unmarshal([]byte(s.ScheduleMetrics), &m); err != nil {
		return ScheduleMetrics{}, false
	}
	return m, true
}
