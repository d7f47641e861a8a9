package schedule

import "math"

// Fallbacks for unset product/machine parameters.
const (
	defaultCycleTimeSeconds = 20.0
	defaultMaterialCostKg   = 2.5
	defaultHourlyRate       = 150.0
)

// ProductionTime breaks down the duration of one production run.
// TotalMinutes is rounded exactly once; the splitter consumes the
// rounded value so per-block rounding error cannot compound.
type ProductionTime struct {
	Shots             int     `json:"shots"`
	ProductionMinutes int     `json:"production_minutes"`
	SetupMinutes      int     `json:"setup_minutes"`
	TotalMinutes      int     `json:"total_minutes"`
	TotalHours        float64 `json:"total_hours"`
}

// CalculateProductionTime converts a quantity and cycle parameters into
// the required duration. cavityCount below 1 falls back to 1, a
// non-positive cycle time to 20 seconds.
func CalculateProductionTime(quantity int, cycleTimeSec float64, cavityCount, setupMinutes int) ProductionTime {
	if cavityCount < 1 {
		cavityCount = 1
	}
	if cycleTimeSec <= 0 {
		cycleTimeSec = defaultCycleTimeSeconds
	}
	if setupMinutes < 0 {
		setupMinutes = 0
	}

	shots := (quantity + cavityCount - 1) / cavityCount
	productionMinutes := float64(shots) * cycleTimeSec / 60
	totalMinutes := int(math.Round(productionMinutes + float64(setupMinutes)))

	return ProductionTime{
		Shots:             shots,
		ProductionMinutes: int(math.Round(productionMinutes)),
		SetupMinutes:      setupMinutes,
		TotalMinutes:      totalMinutes,
		TotalHours:        round2(float64(totalMinutes) / 60),
	}
}

// round1 rounds to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// round2 rounds to two decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
