package models

import "time"

// ProductionBlock is one contiguous run on one machine within a single
// work day. An order that spans several days produces several blocks on
// the same machine; only the first carries the batch size, setup time
// and estimated cost, so that quantity sums are never double-counted.
type ProductionBlock struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	MachineID        string    `gorm:"size:36;index" json:"machine_id"`
	ProductID        string    `gorm:"size:36;index" json:"product_id"`
	CustomerID       string    `gorm:"size:36" json:"customer_id"`
	BatchSize        int       `json:"batch_size"`
	StartTime        time.Time `gorm:"index" json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	SetupTimeMinutes int       `json:"setup_time_minutes"`
	EstimatedCost    float64   `json:"estimated_cost"`
	ManualEdit       bool      `gorm:"default:false" json:"manual_edit"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Machine  *Machine  `gorm:"foreignKey:MachineID" json:"machine,omitempty"`
	Product  *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// Minutes returns the block duration in minutes.
func (b ProductionBlock) Minutes() float64 {
	return b.EndTime.Sub(b.StartTime).Minutes()
}
