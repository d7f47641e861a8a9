package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mnordin/planverk/internal/config"
	"github.com/mnordin/planverk/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB creates an in-memory SQLite database with all required tables.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Machine{},
		&models.Material{},
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.PredictedOrder{},
		&models.ProductionBlock{},
		&models.Settings{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	return NewRouter(db, cfg, nil)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func seedScheduleFixture(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []interface{}{
		&models.Machine{ID: "m1", Code: "E-01", Name: "Engel 1", MaxPressure: 400, Status: models.MachineAvailable},
		&models.Machine{ID: "m2", Code: "E-02", Name: "Engel 2", MaxPressure: 400, Status: models.MachineAvailable},
		&models.Product{ID: "p1", SKU: "SKU-1", Name: "Lid", CycleTime: 20, CavityCount: 1},
		&models.Customer{ID: "c1", Name: "Nordia"},
		&models.Order{
			ID: "o1", CustomerID: "c1", ProductID: "p1", Quantity: 1000,
			DueDate: time.Now().Add(7 * 24 * time.Hour), Status: models.OrderPending,
		},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestHealth(t *testing.T) {
	router := testRouter(t, testDB(t))
	w := doJSON(t, router, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestMachineCRUD(t *testing.T) {
	db := testDB(t)
	router := testRouter(t, db)

	w := doJSON(t, router, http.MethodPost, "/api/machines", models.Machine{
		Code: "E-01", Name: "Engel 1", Status: models.MachineAvailable,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var created models.Machine
	decode(t, w, &created)
	if created.ID == "" {
		t.Error("created machine without generated ID")
	}

	w = doJSON(t, router, http.MethodGet, "/api/machines/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	created.Name = "Engel 1B"
	w = doJSON(t, router, http.MethodPut, "/api/machines/"+created.ID, created)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}
	var updated models.Machine
	decode(t, w, &updated)
	if updated.Name != "Engel 1B" {
		t.Errorf("Name = %q, want Engel 1B", updated.Name)
	}

	w = doJSON(t, router, http.MethodGet, "/api/machines", nil)
	var list []models.Machine
	decode(t, w, &list)
	if len(list) != 1 {
		t.Errorf("len(list) = %d, want 1", len(list))
	}

	w = doJSON(t, router, http.MethodDelete, "/api/machines/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/machines/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestGetMissingEntity(t *testing.T) {
	router := testRouter(t, testDB(t))
	w := doJSON(t, router, http.MethodGet, "/api/orders/ghost", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db := testDB(t)
	router := testRouter(t, db)

	w := doJSON(t, router, http.MethodGet, "/api/settings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var s models.Settings
	decode(t, w, &s)
	if s.WorkHoursPerDay != 16 {
		t.Errorf("default WorkHoursPerDay = %d, want 16", s.WorkHoursPerDay)
	}

	s.SetupTimeMinutes = 30
	w = doJSON(t, router, http.MethodPut, "/api/settings", s)
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/settings", nil)
	decode(t, w, &s)
	if s.SetupTimeMinutes != 30 {
		t.Errorf("SetupTimeMinutes = %d, want 30", s.SetupTimeMinutes)
	}
}

func TestSettingsRejectsInvalidWorkDay(t *testing.T) {
	router := testRouter(t, testDB(t))
	s := models.DefaultSettings()
	s.WorkHoursPerDay = 0
	w := doJSON(t, router, http.MethodPut, "/api/settings", s)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	db := testDB(t)
	seedScheduleFixture(t, db)
	router := testRouter(t, db)

	w := doJSON(t, router, http.MethodPost, "/api/production-blocks/generate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Blocks  []models.ProductionBlock `json:"blocks"`
		Skipped []json.RawMessage        `json:"skipped"`
		Metrics models.ScheduleMetrics   `json:"metrics"`
	}
	decode(t, w, &resp)
	if len(resp.Blocks) == 0 {
		t.Fatal("generate produced no blocks")
	}
	if len(resp.Skipped) != 0 {
		t.Errorf("skipped = %d items, want 0", len(resp.Skipped))
	}
	if resp.Metrics.TotalBlocks != len(resp.Blocks) {
		t.Errorf("metrics.TotalBlocks = %d, want %d", resp.Metrics.TotalBlocks, len(resp.Blocks))
	}

	// Blocks are persisted and the order status advanced off pending.
	var count int64
	db.Model(&models.ProductionBlock{}).Count(&count)
	if int(count) != len(resp.Blocks) {
		t.Errorf("persisted blocks = %d, want %d", count, len(resp.Blocks))
	}
	var o models.Order
	db.First(&o, "id = ?", "o1")
	if o.Status != models.OrderScheduled && o.Status != models.OrderInProduction {
		t.Errorf("order status = %q, want scheduled or in_production", o.Status)
	}

	// Metrics are stored on the settings row.
	var s models.Settings
	db.First(&s, "id = ?", models.SettingsID)
	if _, ok := s.LastScheduleMetrics(); !ok {
		t.Error("no metrics stored on settings row")
	}
}

func TestGenerateInvalidSettings(t *testing.T) {
	db := testDB(t)
	seedScheduleFixture(t, db)
	broken := models.DefaultSettings()
	broken.WorkHoursPerDay = -1
	if err := db.Create(&broken).Error; err != nil {
		t.Fatal(err)
	}
	router := testRouter(t, db)

	w := doJSON(t, router, http.MethodPost, "/api/production-blocks/generate", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestGenerateReportsSkipped(t *testing.T) {
	db := testDB(t)
	seedScheduleFixture(t, db)
	heavy := models.Product{ID: "p2", SKU: "SKU-2", Name: "Housing", CycleTime: 30, CavityCount: 1, RequiredPressure: 500}
	if err := db.Create(&heavy).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&models.Order{
		ID: "o2", CustomerID: "c1", ProductID: "p2", Quantity: 100,
		DueDate: time.Now().Add(24 * time.Hour), Status: models.OrderPending,
	}).Error; err != nil {
		t.Fatal(err)
	}
	router := testRouter(t, db)

	w := doJSON(t, router, http.MethodPost, "/api/production-blocks/generate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Skipped []struct {
			DemandID string `json:"demand_id"`
			Reason   string `json:"reason"`
		} `json:"skipped"`
	}
	decode(t, w, &resp)
	if len(resp.Skipped) != 1 || resp.Skipped[0].DemandID != "o2" {
		t.Errorf("skipped = %+v, want o2", resp.Skipped)
	}
}

func TestCreateBlock(t *testing.T) {
	db := testDB(t)
	seedScheduleFixture(t, db)
	router := testRouter(t, db)
	start := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)

	w := doJSON(t, router, http.MethodPost, "/api/production-blocks", blockRequest{
		MachineID: "m1", ProductID: "p1", CustomerID: "c1", BatchSize: 500,
		StartTime: start, EndTime: start.Add(3 * time.Hour),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var created models.ProductionBlock
	decode(t, w, &created)
	if created.ID == "" || !created.ManualEdit {
		t.Errorf("created = %+v, want generated ID and ManualEdit", created)
	}

	// Unknown machine is rejected before anything is written.
	w = doJSON(t, router, http.MethodPost, "/api/production-blocks", blockRequest{
		MachineID: "ghost", ProductID: "p1",
		StartTime: start, EndTime: start.Add(time.Hour),
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown machine status = %d, want 400", w.Code)
	}
}

func TestMoveBlock(t *testing.T) {
	db := testDB(t)
	seedScheduleFixture(t, db)
	start := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	block := models.ProductionBlock{
		ID: "b1", MachineID: "m1", ProductID: "p1", CustomerID: "c1",
		BatchSize: 1000, StartTime: start, EndTime: start.Add(4 * time.Hour),
	}
	if err := db.Create(&block).Error; err != nil {
		t.Fatal(err)
	}
	router := testRouter(t, db)

	w := doJSON(t, router, http.MethodPut, "/api/production-blocks/b1", moveRequest{
		MachineID: "m2",
		StartTime: start.Add(24 * time.Hour),
		EndTime:   start.Add(28 * time.Hour),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("move status = %d: %s", w.Code, w.Body.String())
	}
	var moved models.ProductionBlock
	decode(t, w, &moved)
	if moved.MachineID != "m2" || !moved.ManualEdit {
		t.Errorf("moved = %+v, want machine m2 with ManualEdit", moved)
	}

	// Metrics carry the manual-edit flag after a move.
	var s models.Settings
	db.First(&s, "id = ?", models.SettingsID)
	m, ok := s.LastScheduleMetrics()
	if !ok || !m.HasManualEdits {
		t.Errorf("stored metrics = %+v (ok %v), want HasManualEdits", m, ok)
	}
}

func TestMoveBlockRejectsInvertedTimes(t *testing.T) {
	db := testDB(t)
	seedScheduleFixture(t, db)
	start := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	if err := db.Create(&models.ProductionBlock{
		ID: "b1", MachineID: "m1", ProductID: "p1",
		StartTime: start, EndTime: start.Add(time.Hour),
	}).Error; err != nil {
		t.Fatal(err)
	}
	router := testRouter(t, db)

	w := doJSON(t, router, http.MethodPut, "/api/production-blocks/b1", moveRequest{
		StartTime: start.Add(2 * time.Hour),
		EndTime:   start,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDeleteAllBlocks(t *testing.T) {
	db := testDB(t)
	seedScheduleFixture(t, db)
	for _, id := range []string{"b1", "b2"} {
		if err := db.Create(&models.ProductionBlock{ID: id, MachineID: "m1", ProductID: "p1"}).Error; err != nil {
			t.Fatal(err)
		}
	}
	router := testRouter(t, db)

	w := doJSON(t, router, http.MethodDelete, "/api/production-blocks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	decode(t, w, &resp)
	if resp.Deleted != 2 {
		t.Errorf("deleted = %d, want 2", resp.Deleted)
	}
}

func TestForecasts(t *testing.T) {
	db := testDB(t)
	seedScheduleFixture(t, db)
	if err := db.Create(&models.PredictedOrder{
		ID: "pr1", CustomerID: "c1", ProductID: "p1", PredictedQuantity: 500,
		PredictedDate: time.Now().Add(14 * 24 * time.Hour), ConfidenceScore: 0.9,
	}).Error; err != nil {
		t.Fatal(err)
	}
	router := testRouter(t, db)

	w := doJSON(t, router, http.MethodGet, "/api/forecasts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Entries []struct {
			ID          string                 `json:"id"`
			Type        string                 `json:"type"`
			Reliable    bool                   `json:"reliable"`
			HoldingCost map[string]interface{} `json:"holding_cost"`
		} `json:"entries"`
		Threshold float64 `json:"threshold"`
	}
	decode(t, w, &resp)
	if len(resp.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(resp.Entries))
	}
	if resp.Threshold != 0.75 {
		t.Errorf("threshold = %v, want 0.75", resp.Threshold)
	}
	for _, e := range resp.Entries {
		if e.HoldingCost == nil {
			t.Errorf("entry %s has no holding cost annotation", e.ID)
		}
	}
}

func TestAuthRequired(t *testing.T) {
	db := testDB(t)
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Auth.Disabled = false
	cfg.Auth.Secret = "test-secret"
	router := NewRouter(db, cfg, nil)

	// No token: rejected.
	w := doJSON(t, router, http.MethodGet, "/api/machines", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	// Health stays open.
	w = doJSON(t, router, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}

	// Bad signature: rejected.
	bad := signToken(t, "wrong-secret")
	w = doAuthed(t, router, bad)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", w.Code)
	}

	// Valid token: accepted.
	good := signToken(t, "test-secret")
	w = doAuthed(t, router, good)
	if w.Code != http.StatusOK {
		t.Errorf("good token status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func signToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "tester",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func doAuthed(t *testing.T, router *gin.Engine, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/machines", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMetricsEndpoint(t *testing.T) {
	router := testRouter(t, testDB(t))
	doJSON(t, router, http.MethodGet, "/api/health", nil)

	w := doJSON(t, router, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("planverk_http_requests_total")) {
		t.Error("metrics output missing planverk_http_requests_total")
	}
}
