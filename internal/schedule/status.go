package schedule

import (
	"sort"
	"time"

	"github.com/mnordin/planverk/internal/models"
)

// statusDemand is one order or reliable prediction inside a product's
// FIFO coverage queue.
type statusDemand struct {
	id       string
	quantity int
	date     time.Time
	manual   string // current stored status, for the cancelled override
}

// AllOrderStatuses recomputes the lifecycle status of every order and
// reliable prediction from the production blocks. Unreliable
// predictions get no entry at all. The function is pure: calling it
// twice on the same inputs yields the same map.
//
// Coverage is FIFO per product: demand sorted by date, earlier items
// assumed fulfilled first, and an item counts as covered when the
// cumulative quantity up to and including it is met (>= exactly).
// Cancelled items keep their status and are left out of everyone
// else's cumulative demand.
func AllOrderStatuses(orders []models.Order, predictions []models.PredictedOrder, blocks []models.ProductionBlock, threshold float64, now time.Time) map[string]string {
	if now.IsZero() {
		now = time.Now()
	}

	demandByProduct := map[string][]statusDemand{}
	for _, o := range orders {
		demandByProduct[o.ProductID] = append(demandByProduct[o.ProductID], statusDemand{
			id:       o.ID,
			quantity: o.Quantity,
			date:     o.DueDate,
			manual:   o.Status,
		})
	}
	for _, p := range predictions {
		if !IsReliable(p, threshold) {
			continue
		}
		demandByProduct[p.ProductID] = append(demandByProduct[p.ProductID], statusDemand{
			id:       p.ID,
			quantity: p.PredictedQuantity,
			date:     p.PredictedDate,
			manual:   p.Status,
		})
	}

	blocksByProduct := map[string][]models.ProductionBlock{}
	for _, b := range blocks {
		blocksByProduct[b.ProductID] = append(blocksByProduct[b.ProductID], b)
	}

	statuses := make(map[string]string)
	for productID, group := range demandByProduct {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].date.Before(group[j].date)
		})

		coverage := productCoverage(blocksByProduct[productID], now)

		cumulative := 0
		for _, d := range group {
			if d.manual == models.OrderCancelled {
				statuses[d.id] = models.OrderCancelled
				continue
			}
			cumulative += d.quantity
			statuses[d.id] = coverageStatus(coverage, cumulative, len(blocksByProduct[productID]) > 0)
		}
	}
	return statuses
}

// coverage buckets a product's block quantities by where they sit
// relative to now.
type coverage struct {
	completed      int
	inProgress     int
	scheduled      int
	hasActiveBlock bool
}

func productCoverage(blocks []models.ProductionBlock, now time.Time) coverage {
	var c coverage
	for _, b := range blocks {
		switch {
		case b.EndTime.Before(now):
			c.completed += b.BatchSize
		case !b.StartTime.After(now) && !b.EndTime.Before(now):
			c.inProgress += b.BatchSize
			c.hasActiveBlock = true
		case b.StartTime.After(now):
			c.scheduled += b.BatchSize
		}
	}
	return c
}

// coverageStatus maps cumulative demand against the coverage buckets.
func coverageStatus(c coverage, cumulative int, hasBlocks bool) string {
	if !hasBlocks {
		return models.OrderPending
	}
	if c.completed >= cumulative {
		return models.OrderCompleted
	}
	if c.hasActiveBlock && c.completed+c.inProgress >= cumulative {
		return models.OrderInProduction
	}
	if c.completed+c.inProgress+c.scheduled >= cumulative {
		return models.OrderScheduled
	}
	return models.OrderPending
}
