package models

import "time"

// Machine statuses. Only available machines participate in scheduling.
const (
	MachineAvailable   = "available"
	MachineInUse       = "in_use"
	MachineMaintenance = "maintenance"
	MachineOffline     = "offline"
)

// Machine is an injection-molding machine on the shop floor.
type Machine struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Code           string    `gorm:"size:32;uniqueIndex" json:"code"`
	Name           string    `gorm:"size:128;not null" json:"name"`
	MaxClampForce  float64   `json:"max_clamp_force"`
	MaxPressure    float64   `json:"max_pressure"`
	MaxTemperature float64   `json:"max_temperature"`
	HourlyRate     float64   `json:"hourly_rate"`
	Status         string    `gorm:"size:16;default:available;index" json:"status"`
	Notes          string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
