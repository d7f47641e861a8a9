package schedule

import (
	"math"
	"time"

	"github.com/mnordin/planverk/internal/models"
)

// CalculateMetrics derives utilization and revenue figures from a
// generated block set. Continuation blocks contribute their duration
// (OEE is about machine time) but not their zero batch size (revenue
// is about quantity). Machines that produced nothing still appear in
// the per-machine OEE map with 0.
func CalculateMetrics(blocks []models.ProductionBlock, machines []models.Machine, settings models.Settings, now time.Time) models.ScheduleMetrics {
	if now.IsZero() {
		now = time.Now()
	}
	metrics := models.ScheduleMetrics{
		MachineOEE:       map[string]float64{},
		LastCalculatedAt: now,
	}
	if len(blocks) == 0 {
		for _, m := range machines {
			metrics.MachineOEE[m.ID] = 0
		}
		return metrics
	}

	workHoursPerDay := settings.WorkHoursPerDay
	if workHoursPerDay <= 0 {
		workHoursPerDay = 16
	}

	var totalProductionMinutes float64
	var totalSetupMinutes int
	perMachineMinutes := map[string]float64{}
	minStart := blocks[0].StartTime
	maxEnd := blocks[0].EndTime

	for _, b := range blocks {
		minutes := b.Minutes()
		totalProductionMinutes += minutes
		totalSetupMinutes += b.SetupTimeMinutes
		perMachineMinutes[b.MachineID] += minutes

		if b.StartTime.Before(minStart) {
			minStart = b.StartTime
		}
		if b.EndTime.After(maxEnd) {
			maxEnd = b.EndTime
		}
		if b.BatchSize > 0 {
			metrics.EstimatedRevenue += float64(b.BatchSize) * settings.UnitPrice
		}
	}

	// Both the first and the last calendar day count as work days.
	spanDays := maxEnd.Sub(minStart).Hours() / 24
	workDays := int(math.Ceil(spanDays)) + 1
	if workDays < 1 {
		workDays = 1
	}

	availableMinutes := float64(len(machines) * workDays * workHoursPerDay * 60)
	if availableMinutes > 0 {
		metrics.TotalOEE = math.Min(100, round1(totalProductionMinutes/availableMinutes*100))
	}

	machineAvailable := float64(workDays * workHoursPerDay * 60)
	for _, m := range machines {
		if machineAvailable > 0 {
			metrics.MachineOEE[m.ID] = math.Min(100, round1(perMachineMinutes[m.ID]/machineAvailable*100))
		} else {
			metrics.MachineOEE[m.ID] = 0
		}
	}

	metrics.TotalProductionHours = round1(totalProductionMinutes / 60)
	metrics.TotalSetupHours = round1(float64(totalSetupMinutes) / 60)
	metrics.TotalBlocks = len(blocks)
	metrics.MachinesUsed = len(perMachineMinutes)
	metrics.WorkDays = workDays
	return metrics
}

// RecalculateAfterEdit recomputes metrics after a manual block move and
// flags the result so the UI can tell edited schedules from generated
// ones. The flag clears only on the next full generation.
func RecalculateAfterEdit(blocks []models.ProductionBlock, machines []models.Machine, settings models.Settings, now time.Time) models.ScheduleMetrics {
	metrics := CalculateMetrics(blocks, machines, settings, now)
	metrics.HasManualEdits = true
	return metrics
}
