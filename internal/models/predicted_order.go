package models

import "time"

// Recurrence intervals for predicted orders (display metadata only).
const (
	IntervalDaily     = "daily"
	IntervalWeekly    = "weekly"
	IntervalBiweekly  = "biweekly"
	IntervalMonthly   = "monthly"
	IntervalQuarterly = "quarterly"
	IntervalYearly    = "yearly"
)

// PredictedOrder is pre-seeded forecast demand. Predictions whose
// confidence falls below the reliability threshold are display-only:
// they are never scheduled and never assigned a status.
type PredictedOrder struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	CustomerID        string    `gorm:"size:36;index" json:"customer_id"`
	ProductID         string    `gorm:"size:36;index" json:"product_id"`
	PredictedQuantity int       `gorm:"not null" json:"predicted_quantity"`
	PredictedDate     time.Time `gorm:"index" json:"predicted_date"`
	ConfidenceScore   float64   `json:"confidence_score"`
	Basis             string    `gorm:"size:32" json:"basis"`
	Interval          string    `gorm:"size:16" json:"interval"`
	Status            string    `gorm:"size:16" json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Product  *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
