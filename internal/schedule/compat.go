package schedule

import (
	"fmt"

	"github.com/mnordin/planverk/internal/models"
)

// Compatibility issue types.
const (
	IssueNotInList   = "not_in_compatible_list"
	IssuePressure    = "pressure"
	IssueTemperature = "temperature"
)

// Issue describes one failed compatibility check.
type Issue struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Compatibility is the result of checking one machine against one product.
type Compatibility struct {
	Compatible  bool    `json:"compatible"`
	Issues      []Issue `json:"issues"`
	MachineID   string  `json:"machine_id"`
	MachineCode string  `json:"machine_code"`
	ProductID   string  `json:"product_id"`
}

// CheckCompatibility decides whether machine can produce product.
//
// A non-empty explicit allow-list on the product is the sole
// determinant: membership decides, and the physical limits are not
// consulted. Without a list, required pressure and temperature are
// checked against the machine's maxima; a zero value on either side
// means "no constraint" and passes.
func CheckCompatibility(machine models.Machine, product models.Product) Compatibility {
	result := Compatibility{
		Compatible:  true,
		MachineID:   machine.ID,
		MachineCode: machine.Code,
		ProductID:   product.ID,
	}

	if allowed := product.CompatibleMachineIDs(); len(allowed) > 0 {
		for _, id := range allowed {
			if id == machine.ID {
				return result
			}
		}
		result.Compatible = false
		result.Issues = append(result.Issues, Issue{
			Type:    IssueNotInList,
			Message: fmt.Sprintf("machine %s is not in product's compatible machines list", machine.Code),
		})
		return result
	}

	if product.RequiredPressure > 0 && machine.MaxPressure > 0 && product.RequiredPressure > machine.MaxPressure {
		result.Compatible = false
		result.Issues = append(result.Issues, Issue{
			Type:    IssuePressure,
			Message: fmt.Sprintf("required pressure %.0f exceeds machine max %.0f", product.RequiredPressure, machine.MaxPressure),
		})
	}

	if product.RequiredTemperature > 0 && machine.MaxTemperature > 0 && product.RequiredTemperature > machine.MaxTemperature {
		result.Compatible = false
		result.Issues = append(result.Issues, Issue{
			Type:    IssueTemperature,
			Message: fmt.Sprintf("required temperature %.0f exceeds machine max %.0f", product.RequiredTemperature, machine.MaxTemperature),
		})
	}

	return result
}

// CompatibleMachines filters a machine pool to those that can produce
// the product, preserving input order.
func CompatibleMachines(product models.Product, machines []models.Machine) []models.Machine {
	var out []models.Machine
	for _, m := range machines {
		if CheckCompatibility(m, product).Compatible {
			out = append(out, m)
		}
	}
	return out
}
