package models

import "time"

// Order statuses. All but cancelled are recomputed from the production
// schedule; cancelled is a manual override that sticks until a human
// clears it.
const (
	OrderPending      = "pending"
	OrderScheduled    = "scheduled"
	OrderInProduction = "in_production"
	OrderCompleted    = "completed"
	OrderCancelled    = "cancelled"
)

// Order is confirmed customer demand.
type Order struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	CustomerID string    `gorm:"size:36;index" json:"customer_id"`
	ProductID  string    `gorm:"size:36;index" json:"product_id"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	DueDate    time.Time `gorm:"index" json:"due_date"`
	Priority   int       `gorm:"default:5" json:"priority"`
	Status     string    `gorm:"size:16;default:pending;index" json:"status"`
	Notes      string    `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Product  *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
