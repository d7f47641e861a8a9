package models

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestMachine_Fields(t *testing.T) {
	typ := reflect.TypeOf(Machine{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:36")
	assertGormTag(t, typ, "Code", "uniqueIndex")
	assertGormTag(t, typ, "Name", "not null")
	assertGormTag(t, typ, "Status", "default:available")
	assertGormTag(t, typ, "Status", "index")
	assertGormTag(t, typ, "Notes", "type:text")

	assertFieldType(t, typ, "MaxPressure", "float64")
	assertFieldType(t, typ, "MaxTemperature", "float64")
	assertFieldType(t, typ, "HourlyRate", "float64")
	assertFieldType(t, typ, "CreatedAt", "time.Time")
}

func TestProduct_Fields(t *testing.T) {
	typ := reflect.TypeOf(Product{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "SKU", "uniqueIndex")
	assertGormTag(t, typ, "CavityCount", "default:1")
	assertGormTag(t, typ, "CompatibleMachines", "type:json")
	assertGormTag(t, typ, "Material", "foreignKey:MaterialID")

	assertFieldType(t, typ, "CycleTime", "float64")
	assertFieldType(t, typ, "MaterialID", "*string")
	assertFieldType(t, typ, "Material", "*models.Material")
}

func TestOrder_Fields(t *testing.T) {
	typ := reflect.TypeOf(Order{})

	assertGormTag(t, typ, "CustomerID", "index")
	assertGormTag(t, typ, "ProductID", "index")
	assertGormTag(t, typ, "Quantity", "not null")
	assertGormTag(t, typ, "DueDate", "index")
	assertGormTag(t, typ, "Priority", "default:5")
	assertGormTag(t, typ, "Status", "default:pending")

	assertFieldType(t, typ, "Quantity", "int")
	assertFieldType(t, typ, "DueDate", "time.Time")
	assertFieldType(t, typ, "Customer", "*models.Customer")
	assertFieldType(t, typ, "Product", "*models.Product")
}

func TestPredictedOrder_Fields(t *testing.T) {
	typ := reflect.TypeOf(PredictedOrder{})

	assertGormTag(t, typ, "PredictedQuantity", "not null")
	assertGormTag(t, typ, "PredictedDate", "index")

	assertFieldType(t, typ, "ConfidenceScore", "float64")
	assertFieldType(t, typ, "PredictedQuantity", "int")
}

func TestProductionBlock_Fields(t *testing.T) {
	typ := reflect.TypeOf(ProductionBlock{})

	assertGormTag(t, typ, "MachineID", "index")
	assertGormTag(t, typ, "ProductID", "index")
	assertGormTag(t, typ, "StartTime", "index")
	assertGormTag(t, typ, "ManualEdit", "default:false")

	assertFieldType(t, typ, "BatchSize", "int")
	assertFieldType(t, typ, "SetupTimeMinutes", "int")
	assertFieldType(t, typ, "EstimatedCost", "float64")
}

func TestProductionBlock_Minutes(t *testing.T) {
	start := time.Date(2024, 1, 8, 6, 0, 0, 0, time.Local)
	b := ProductionBlock{StartTime: start, EndTime: start.Add(90 * time.Minute)}
	if got := b.Minutes(); got != 90 {
		t.Errorf("Minutes() = %v, want 90", got)
	}
}

func TestProduct_CompatibleMachineIDs(t *testing.T) {
	var p Product
	if ids := p.CompatibleMachineIDs(); ids != nil {
		t.Errorf("empty column: ids = %v, want nil", ids)
	}

	if err := p.SetCompatibleMachineIDs([]string{"m1", "m2"}); err != nil {
		t.Fatalf("SetCompatibleMachineIDs: %v", err)
	}
	got := p.CompatibleMachineIDs()
	if !reflect.DeepEqual(got, []string{"m1", "m2"}) {
		t.Errorf("ids = %v, want [m1 m2]", got)
	}

	if err := p.SetCompatibleMachineIDs(nil); err != nil {
		t.Fatalf("SetCompatibleMachineIDs(nil): %v", err)
	}
	if p.CompatibleMachines != "" {
		t.Errorf("clearing list left column %q", p.CompatibleMachines)
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.ID != SettingsID {
		t.Errorf("ID = %q, want %q", s.ID, SettingsID)
	}
	if s.SetupTimeMinutes != 45 {
		t.Errorf("SetupTimeMinutes = %d, want 45", s.SetupTimeMinutes)
	}
	if s.WorkHoursPerDay != 16 {
		t.Errorf("WorkHoursPerDay = %d, want 16", s.WorkHoursPerDay)
	}
	if s.WorkStartHour != 6 || s.WorkEndHour != 22 {
		t.Errorf("work window = %d-%d, want 6-22", s.WorkStartHour, s.WorkEndHour)
	}
	if s.PredictionErrorThreshold != 25 {
		t.Errorf("PredictionErrorThreshold = %v, want 25", s.PredictionErrorThreshold)
	}
	if s.UnitPrice != 5 {
		t.Errorf("UnitPrice = %v, want 5", s.UnitPrice)
	}
}

func TestSettings_ScheduleMetricsRoundTrip(t *testing.T) {
	s := DefaultSettings()

	if _, ok := s.LastScheduleMetrics(); ok {
		t.Error("LastScheduleMetrics on empty column should report ok=false")
	}

	m := ScheduleMetrics{
		TotalOEE:         87.5,
		TotalBlocks:      4,
		MachinesUsed:     1,
		MachineOEE:       map[string]float64{"m1": 87.5},
		EstimatedRevenue: 50000,
		WorkDays:         4,
		LastCalculatedAt: time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC),
	}
	if err := s.SetScheduleMetrics(m); err != nil {
		t.Fatalf("SetScheduleMetrics: %v", err)
	}

	got, ok := s.LastScheduleMetrics()
	if !ok {
		t.Fatal("LastScheduleMetrics: ok = false after set")
	}
	if got.TotalOEE != m.TotalOEE || got.TotalBlocks != m.TotalBlocks {
		t.Errorf("round-trip = %+v, want %+v", got, m)
	}
	if got.MachineOEE["m1"] != 87.5 {
		t.Errorf("MachineOEE[m1] = %v, want 87.5", got.MachineOEE["m1"])
	}
}
