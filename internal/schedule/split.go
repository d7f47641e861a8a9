package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mnordin/planverk/internal/models"
)

// maxSplitIterations caps the splitting loop. With a valid work window
// every iteration consumes at least one minute, so this is only hit on
// pathological input; the cap turns a would-be hang into an error.
const maxSplitIterations = 10000

// SplitParams describes one production run to be cut into blocks.
type SplitParams struct {
	TotalMinutes  int
	Start         time.Time
	MachineID     string
	ProductID     string
	CustomerID    string
	BatchSize     int
	SetupMinutes  int
	EstimatedCost float64
	Hours         WorkHours
}

// SplitBlocks cuts a production run into contiguous per-day blocks that
// never cross the work-hours boundary. Only the first block carries the
// batch size, setup minutes and estimated cost; continuation blocks
// carry zero for all three so downstream quantity sums stay correct.
func SplitBlocks(p SplitParams) ([]models.ProductionBlock, error) {
	if err := p.Hours.Validate(); err != nil {
		return nil, err
	}
	if p.TotalMinutes <= 0 {
		return nil, fmt.Errorf("schedule: split needs positive duration, got %d minutes", p.TotalMinutes)
	}

	var blocks []models.ProductionBlock
	remaining := float64(p.TotalMinutes)
	current := p.Start
	first := true

	for i := 0; remaining > 0; i++ {
		if i >= maxSplitIterations {
			return nil, fmt.Errorf("schedule: split exceeded %d iterations (total %d min, window %02d:00-%02d:00)",
				maxSplitIterations, p.TotalMinutes, p.Hours.StartHour, p.Hours.EndHour)
		}

		current = p.Hours.Adjust(current)
		untilDayEnd := p.Hours.MinutesUntilDayEnd(current)

		blockMinutes := remaining
		if untilDayEnd < blockMinutes {
			blockMinutes = untilDayEnd
		}

		end := current.Add(time.Duration(blockMinutes * float64(time.Minute)))
		block := models.ProductionBlock{
			ID:         uuid.NewString(),
			MachineID:  p.MachineID,
			ProductID:  p.ProductID,
			CustomerID: p.CustomerID,
			StartTime:  current,
			EndTime:    end,
		}
		if first {
			block.BatchSize = p.BatchSize
			block.SetupTimeMinutes = p.SetupMinutes
			block.EstimatedCost = p.EstimatedCost
		}
		blocks = append(blocks, block)

		remaining -= blockMinutes
		current = end
		first = false
	}

	return blocks, nil
}

// EstimateCost prices a production run: material weight times cost per
// kilogram plus machine time at the hourly rate. A product without a
// material falls back to 2.50/kg, a machine without a rate to 150/h.
func EstimateCost(quantity int, product models.Product, machine models.Machine) float64 {
	costPerKg := defaultMaterialCostKg
	if product.Material != nil && product.Material.CostPerKg > 0 {
		costPerKg = product.Material.CostPerKg
	}
	materialCost := product.WeightPerUnit * costPerKg * float64(quantity) / 1000

	cavities := product.CavityCount
	if cavities < 1 {
		cavities = 1
	}
	cycleTime := product.CycleTime
	if cycleTime <= 0 {
		cycleTime = defaultCycleTimeSeconds
	}
	rate := machine.HourlyRate
	if rate <= 0 {
		rate = defaultHourlyRate
	}
	productionHours := float64(quantity) / float64(cavities) * cycleTime / 3600
	laborCost := productionHours * rate

	return round2(materialCost + laborCost)
}
