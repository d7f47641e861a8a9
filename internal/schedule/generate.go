package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/mnordin/planverk/internal/models"
)

// Demand source types for diagnostics.
const (
	SourceOrder      = "order"
	SourcePrediction = "prediction"
)

// defaultPriority is assumed when an order carries no priority.
const defaultPriority = 5

// Input is the fully materialized snapshot for one generation run.
// The core performs no I/O; the caller loads everything up front.
type Input struct {
	Orders          []models.Order
	PredictedOrders []models.PredictedOrder
	Machines        []models.Machine
	Products        []models.Product
	Settings        models.Settings
	// Now anchors machine availability. Zero means time.Now().
	Now time.Time
}

// Diagnostic records a demand item that could not be scheduled.
// Unschedulable items are skipped, never fatal.
type Diagnostic struct {
	DemandID  string  `json:"demand_id"`
	Source    string  `json:"source"`
	ProductID string  `json:"product_id"`
	Reason    string  `json:"reason"`
	Issues    []Issue `json:"issues,omitempty"`
}

// Result is the outcome of one generation run.
type Result struct {
	Blocks  []models.ProductionBlock `json:"blocks"`
	Skipped []Diagnostic             `json:"skipped"`
}

// demand is one unit of the merged order/prediction stream.
type demand struct {
	id         string
	source     string
	customerID string
	productID  string
	quantity   int
	date       time.Time
	priority   int
}

// Generate produces the complete block list for one run.
//
// Confirmed orders and reliable predictions are merged, sorted by date
// then priority, and assigned greedily: each item goes to the
// compatible machine whose availability cursor is earliest, with ties
// resolved to the first machine in input order. The run never
// backtracks or rebalances; that predictability is deliberate.
//
// Configuration faults (non-positive work day) are returned as errors
// before any splitting begins. Data gaps (missing product, no
// compatible machine) skip the item and record a diagnostic.
func Generate(in Input) (*Result, error) {
	if in.Settings.WorkHoursPerDay <= 0 {
		return nil, fmt.Errorf("schedule: work_hours_per_day must be positive, got %d", in.Settings.WorkHoursPerDay)
	}
	hours := WorkHoursFromSettings(in.Settings)
	if err := hours.Validate(); err != nil {
		return nil, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	products := make(map[string]models.Product, len(in.Products))
	for _, p := range in.Products {
		products[p.ID] = p
	}

	machines := make([]models.Machine, 0, len(in.Machines))
	for _, m := range in.Machines {
		if m.Status == models.MachineAvailable {
			machines = append(machines, m)
		}
	}

	stream := buildDemand(in.Orders, in.PredictedOrders, ReliabilityThreshold(in.Settings))

	// Availability cursor per machine, starting from now clamped into
	// the work window.
	cursors := make(map[string]time.Time, len(machines))
	for _, m := range machines {
		cursors[m.ID] = hours.Adjust(now)
	}

	result := &Result{}
	for _, d := range stream {
		product, ok := products[d.productID]
		if !ok {
			result.Skipped = append(result.Skipped, Diagnostic{
				DemandID: d.id, Source: d.source, ProductID: d.productID,
				Reason: "product not found",
			})
			continue
		}

		compatible := CompatibleMachines(product, machines)
		if len(compatible) == 0 {
			diag := Diagnostic{
				DemandID: d.id, Source: d.source, ProductID: d.productID,
				Reason: "no compatible machine",
			}
			for _, m := range machines {
				diag.Issues = append(diag.Issues, CheckCompatibility(m, product).Issues...)
			}
			result.Skipped = append(result.Skipped, diag)
			continue
		}

		// Earliest cursor wins; ties go to the first machine in input
		// order (strict < keeps the selection deterministic).
		selected := compatible[0]
		earliest := cursors[selected.ID]
		for _, m := range compatible[1:] {
			if cursors[m.ID].Before(earliest) {
				earliest = cursors[m.ID]
				selected = m
			}
		}

		pt := CalculateProductionTime(d.quantity, product.CycleTime, product.CavityCount, in.Settings.SetupTimeMinutes)

		blocks, err := SplitBlocks(SplitParams{
			TotalMinutes:  pt.TotalMinutes,
			Start:         hours.Adjust(cursors[selected.ID]),
			MachineID:     selected.ID,
			ProductID:     product.ID,
			CustomerID:    d.customerID,
			BatchSize:     d.quantity,
			SetupMinutes:  in.Settings.SetupTimeMinutes,
			EstimatedCost: EstimateCost(d.quantity, product, selected),
			Hours:         hours,
		})
		if err != nil {
			return nil, fmt.Errorf("schedule: split %s %s: %w", d.source, d.id, err)
		}

		result.Blocks = append(result.Blocks, blocks...)
		cursors[selected.ID] = blocks[len(blocks)-1].EndTime
	}

	return result, nil
}

// buildDemand merges confirmed orders with reliable predictions and
// sorts by date ascending, then priority ascending (lower = more
// urgent). The sort is stable so equal items keep input order.
func buildDemand(orders []models.Order, predictions []models.PredictedOrder, threshold float64) []demand {
	stream := make([]demand, 0, len(orders)+len(predictions))

	for _, o := range orders {
		prio := o.Priority
		if prio == 0 {
			prio = defaultPriority
		}
		stream = append(stream, demand{
			id:         o.ID,
			source:     SourceOrder,
			customerID: o.CustomerID,
			productID:  o.ProductID,
			quantity:   o.Quantity,
			date:       o.DueDate,
			priority:   prio,
		})
	}

	for _, p := range predictions {
		if !IsReliable(p, threshold) {
			continue
		}
		stream = append(stream, demand{
			id:         p.ID,
			source:     SourcePrediction,
			customerID: p.CustomerID,
			productID:  p.ProductID,
			quantity:   p.PredictedQuantity,
			date:       p.PredictedDate,
			priority:   defaultPriority,
		})
	}

	sort.SliceStable(stream, func(i, j int) bool {
		if !stream[i].date.Equal(stream[j].date) {
			return stream[i].date.Before(stream[j].date)
		}
		return stream[i].priority < stream[j].priority
	})
	return stream
}
