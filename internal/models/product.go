package models

import (
	"encoding/json"
	"time"
)

// Product is a molded article with its cycle parameters.
//
// CompatibleMachines is a JSON array of machine IDs. A non-empty list is
// an explicit allow-list: it alone decides which machines may run the
// product, overriding the physical pressure/temperature checks.
type Product struct {
	ID                  string    `gorm:"primaryKey;size:36" json:"id"`
	SKU                 string    `gorm:"size:64;uniqueIndex" json:"sku"`
	Name                string    `gorm:"size:128;not null" json:"name"`
	CycleTime           float64   `json:"cycle_time"`
	CavityCount         int       `gorm:"default:1" json:"cavity_count"`
	RequiredPressure    float64   `json:"required_pressure"`
	RequiredTemperature float64   `json:"required_temperature"`
	WeightPerUnit       float64   `json:"weight_per_unit"`
	MaterialID          *string   `gorm:"size:36" json:"material_id"`
	CompatibleMachines  string    `gorm:"type:json" json:"compatible_machines"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Material *Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
}

// CompatibleMachineIDs decodes the allow-list column. An empty or
// malformed column yields nil (no explicit list).
func (p Product) CompatibleMachineIDs() []string {
	if p.CompatibleMachines == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(p.CompatibleMachines), &ids); err != nil {
		return nil
	}
	return ids
}

// SetCompatibleMachineIDs encodes the allow-list column. A nil or empty
// slice clears the list.
func (p *Product) SetCompatibleMachineIDs(ids []string) error {
	if len(ids) == 0 {
		p.CompatibleMachines = ""
		return nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	p.CompatibleMachines = string(data)
	return nil
}
