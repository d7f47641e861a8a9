package db

import (
	"fmt"
	"time"

	"github.com/mnordin/planverk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// strPtr is a helper for optional foreign keys in seed rows.
func strPtr(s string) *string { return &s }

// Seed upserts a demo data set: machines, materials, products,
// customers, confirmed orders and predicted orders. IDs are fixed so
// the operation is idempotent.
func Seed(db *gorm.DB) error {
	now := time.Now()
	monday := now.AddDate(0, 0, 7-int(now.Weekday())+1)

	machines := []models.Machine{
		{ID: "machine-01", Code: "FS-250", Name: "Engel Victory 250", MaxClampForce: 2500, MaxPressure: 600, MaxTemperature: 320, HourlyRate: 180, Status: models.MachineAvailable},
		{ID: "machine-02", Code: "FS-160", Name: "Arburg 470 S", MaxClampForce: 1600, MaxPressure: 450, MaxTemperature: 300, HourlyRate: 150, Status: models.MachineAvailable},
		{ID: "machine-03", Code: "FS-090", Name: "Battenfeld HM 90", MaxClampForce: 900, MaxPressure: 400, MaxTemperature: 280, HourlyRate: 120, Status: models.MachineMaintenance},
	}
	if err := upsert(db, "id", machines, "code", "name", "max_clamp_force", "max_pressure", "max_temperature", "hourly_rate", "status"); err != nil {
		return fmt.Errorf("db: seed machines: %w", err)
	}

	materials := []models.Material{
		{ID: "material-pp", Name: "PP homopolymer", CostPerKg: 18.5},
		{ID: "material-abs", Name: "ABS natural", CostPerKg: 27.0},
		{ID: "material-pa66", Name: "PA66 GF30", CostPerKg: 52.0},
	}
	if err := upsert(db, "id", materials, "name", "cost_per_kg"); err != nil {
		return fmt.Errorf("db: seed materials: %w", err)
	}

	products := []models.Product{
		{ID: "product-lid", SKU: "LID-090", Name: "Snap lid 90mm", CycleTime: 12, CavityCount: 4, RequiredPressure: 380, RequiredTemperature: 230, WeightPerUnit: 14, MaterialID: strPtr("material-pp")},
		{ID: "product-housing", SKU: "HSG-400", Name: "Sensor housing", CycleTime: 28, CavityCount: 2, RequiredPressure: 520, RequiredTemperature: 265, WeightPerUnit: 46, MaterialID: strPtr("material-abs")},
		{ID: "product-gear", SKU: "GEAR-12", Name: "Gear wheel 12T", CycleTime: 20, CavityCount: 1, RequiredPressure: 430, RequiredTemperature: 290, WeightPerUnit: 22, MaterialID: strPtr("material-pa66")},
		{ID: "product-clip", SKU: "CLIP-20", Name: "Cable clip 20mm", CycleTime: 8, CavityCount: 8, RequiredPressure: 300, RequiredTemperature: 220, WeightPerUnit: 3, MaterialID: strPtr("material-pp")},
	}
	if err := upsert(db, "id", products, "sku", "name", "cycle_time", "cavity_count", "required_pressure", "required_temperature", "weight_per_unit", "material_id"); err != nil {
		return fmt.Errorf("db: seed products: %w", err)
	}

	customers := []models.Customer{
		{ID: "customer-nordia", Name: "Nordia Components AB", ContactEmail: "inkop@nordia.se"},
		{ID: "customer-vektor", Name: "Vektor Industri", ContactEmail: "order@vektor.example"},
		{ID: "customer-polaris", Name: "Polaris Medical", ContactEmail: "supply@polaris.example"},
	}
	if err := upsert(db, "id", customers, "name", "contact_email"); err != nil {
		return fmt.Errorf("db: seed customers: %w", err)
	}

	orders := []models.Order{
		{ID: "order-1001", CustomerID: "customer-nordia", ProductID: "product-lid", Quantity: 20000, DueDate: monday.AddDate(0, 0, 3), Priority: 3, Status: models.OrderPending},
		{ID: "order-1002", CustomerID: "customer-vektor", ProductID: "product-housing", Quantity: 4500, DueDate: monday.AddDate(0, 0, 5), Priority: 5, Status: models.OrderPending},
		{ID: "order-1003", CustomerID: "customer-polaris", ProductID: "product-gear", Quantity: 10000, DueDate: monday.AddDate(0, 0, 8), Priority: 2, Status: models.OrderPending},
		{ID: "order-1004", CustomerID: "customer-nordia", ProductID: "product-clip", Quantity: 60000, DueDate: monday.AddDate(0, 0, 10), Priority: 7, Status: models.OrderPending},
	}
	if err := upsert(db, "id", orders, "customer_id", "product_id", "quantity", "due_date", "priority"); err != nil {
		return fmt.Errorf("db: seed orders: %w", err)
	}

	predictions := []models.PredictedOrder{
		{ID: "predicted-2001", CustomerID: "customer-nordia", ProductID: "product-lid", PredictedQuantity: 15000, PredictedDate: monday.AddDate(0, 0, 14), ConfidenceScore: 0.88, Basis: "historical", Interval: models.IntervalMonthly},
		{ID: "predicted-2002", CustomerID: "customer-vektor", ProductID: "product-housing", PredictedQuantity: 3000, PredictedDate: monday.AddDate(0, 0, 16), ConfidenceScore: 0.75, Basis: "seasonal", Interval: models.IntervalQuarterly},
		{ID: "predicted-2003", CustomerID: "customer-polaris", ProductID: "product-gear", PredictedQuantity: 8000, PredictedDate: monday.AddDate(0, 0, 20), ConfidenceScore: 0.55, Basis: "tentative", Interval: models.IntervalMonthly},
	}
	if err := upsert(db, "id", predictions, "customer_id", "product_id", "predicted_quantity", "predicted_date", "confidence_score", "basis", "interval"); err != nil {
		return fmt.Errorf("db: seed predicted orders: %w", err)
	}

	return EnsureSettings(db)
}

// upsert creates rows, updating the named columns when the conflict
// column already exists.
func upsert[T any](db *gorm.DB, conflictCol string, rows []T, updateCols ...string) error {
	for i := range rows {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: conflictCol}},
			DoUpdates: clause.AssignmentColumns(updateCols),
		}).Create(&rows[i])
		if result.Error != nil {
			return result.Error
		}
	}
	return nil
}
