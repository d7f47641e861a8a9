package schedule

// Holding-cost defaults.
const (
	defaultStorageCostPerDay = 0.50
	defaultInterestRate      = 0.035
)

// StorageCost is the warehouse cost of finished goods awaiting delivery.
type StorageCost struct {
	Quantity    int     `json:"quantity"`
	PerDay      float64 `json:"per_day"`
	Days        int     `json:"days"`
	TotalCost   float64 `json:"total_cost"`
	CostPerUnit float64 `json:"cost_per_unit"`
}

// CalculateStorageCost is a linear per-unit-per-day model.
func CalculateStorageCost(quantity int, perDay float64, days int) StorageCost {
	if perDay <= 0 {
		perDay = defaultStorageCostPerDay
	}
	if days < 0 {
		days = 0
	}
	total := float64(quantity) * perDay * float64(days)
	c := StorageCost{
		Quantity:  quantity,
		PerDay:    perDay,
		Days:      days,
		TotalCost: round2(total),
	}
	if quantity > 0 {
		c.CostPerUnit = round2(total / float64(quantity))
	}
	return c
}

// CapitalCost is the interest on capital tied up in stored inventory.
type CapitalCost struct {
	TotalValue        float64 `json:"total_value"`
	CapitalCost       float64 `json:"capital_cost"`
	DailyInterestCost float64 `json:"daily_interest_cost"`
}

// CalculateCapitalCost applies a daily fraction of the annual interest
// rate to the inventory value.
func CalculateCapitalCost(quantity int, unitCost, interestRate float64, days int) CapitalCost {
	if interestRate <= 0 {
		interestRate = defaultInterestRate
	}
	if days < 0 {
		days = 0
	}
	totalValue := float64(quantity) * unitCost
	dailyRate := interestRate / 365
	return CapitalCost{
		TotalValue:        round2(totalValue),
		CapitalCost:       round2(totalValue * dailyRate * float64(days)),
		DailyInterestCost: round2(totalValue * dailyRate),
	}
}

// HoldingCost combines storage and capital cost for producing early.
type HoldingCost struct {
	StorageCost float64 `json:"storage_cost"`
	CapitalCost float64 `json:"capital_cost"`
	TotalCost   float64 `json:"total_cost"`
	Days        int     `json:"days"`
}

// CalculateHoldingCost totals the cost of holding a batch for the given
// number of days before delivery.
func CalculateHoldingCost(quantity int, storagePerDay, unitCost, interestRate float64, days int) HoldingCost {
	storage := CalculateStorageCost(quantity, storagePerDay, days)
	capital := CalculateCapitalCost(quantity, unitCost, interestRate, days)
	return HoldingCost{
		StorageCost: storage.TotalCost,
		CapitalCost: capital.CapitalCost,
		TotalCost:   round2(storage.TotalCost + capital.CapitalCost),
		Days:        days,
	}
}
