package models

import "time"

// Material is a raw material (polymer granulate) priced per kilogram.
type Material struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:128;uniqueIndex" json:"name"`
	CostPerKg float64   `json:"cost_per_kg"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
