package schedule

import (
	"sort"
	"time"

	"github.com/mnordin/planverk/internal/models"
)

// DefaultReliabilityThreshold is the minimum confidence for a
// prediction to participate in scheduling and status computation.
const DefaultReliabilityThreshold = 0.75

// ReliabilityThreshold derives the confidence threshold from the
// settings row. The stored prediction_error_threshold is an error
// percentage; the threshold is its complement. Out-of-range values
// fall back to the 0.75 default. This is the single source of truth
// for reliability everywhere in the scheduler.
func ReliabilityThreshold(s models.Settings) float64 {
	if s.PredictionErrorThreshold <= 0 || s.PredictionErrorThreshold >= 100 {
		return DefaultReliabilityThreshold
	}
	return 1 - s.PredictionErrorThreshold/100
}

// IsReliable reports whether a prediction meets the threshold.
// The boundary is inclusive: confidence exactly at the threshold counts.
func IsReliable(p models.PredictedOrder, threshold float64) bool {
	return p.ConfidenceScore >= threshold
}

// PredictionError is the inverse of confidence, as a percentage.
func PredictionError(p models.PredictedOrder) float64 {
	return round2((1 - p.ConfidenceScore) * 100)
}

// PredictionRange brackets a predicted quantity by its error rate.
type PredictionRange struct {
	Min          int     `json:"min"`
	Expected     int     `json:"expected"`
	Max          int     `json:"max"`
	ErrorPercent float64 `json:"error_percent"`
}

// QuantityRange returns the min/expected/max quantities for a prediction.
func QuantityRange(p models.PredictedOrder) PredictionRange {
	errorRate := 1 - p.ConfidenceScore
	expected := float64(p.PredictedQuantity)
	return PredictionRange{
		Min:          int(expected*(1-errorRate) + 0.5),
		Expected:     p.PredictedQuantity,
		Max:          int(expected*(1+errorRate) + 0.5),
		ErrorPercent: round2(errorRate * 100),
	}
}

// Timeline entry types.
const (
	TimelineOrder      = "order"
	TimelinePrediction = "prediction"
)

// TimelineEntry is one item on the combined demand timeline.
type TimelineEntry struct {
	ID           string           `json:"id"`
	Type         string           `json:"type"`
	CustomerID   string           `json:"customer_id"`
	ProductID    string           `json:"product_id"`
	Quantity     int              `json:"quantity"`
	Date         time.Time        `json:"date"`
	Status       string           `json:"status"`
	Confidence   float64          `json:"confidence"`
	Reliable     bool             `json:"reliable"`
	ErrorPercent float64          `json:"error_percent"`
	Range        *PredictionRange `json:"range,omitempty"`
}

// CombineTimeline merges confirmed orders and predictions into one
// date-sorted demand stream for display. Confirmed orders always count
// as reliable with full confidence; predictions are annotated with
// their error and quantity range.
func CombineTimeline(orders []models.Order, predictions []models.PredictedOrder, threshold float64) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(orders)+len(predictions))

	for _, o := range orders {
		entries = append(entries, TimelineEntry{
			ID:         o.ID,
			Type:       TimelineOrder,
			CustomerID: o.CustomerID,
			ProductID:  o.ProductID,
			Quantity:   o.Quantity,
			Date:       o.DueDate,
			Status:     o.Status,
			Confidence: 1,
			Reliable:   true,
		})
	}

	for _, p := range predictions {
		r := QuantityRange(p)
		entries = append(entries, TimelineEntry{
			ID:           p.ID,
			Type:         TimelinePrediction,
			CustomerID:   p.CustomerID,
			ProductID:    p.ProductID,
			Quantity:     p.PredictedQuantity,
			Date:         p.PredictedDate,
			Status:       p.Basis,
			Confidence:   p.ConfidenceScore,
			Reliable:     IsReliable(p, threshold),
			ErrorPercent: r.ErrorPercent,
			Range:        &r,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries
}
