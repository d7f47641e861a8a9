package server

import (
	"github.com/gin-gonic/gin"
	"github.com/mnordin/planverk/internal/config"
	"github.com/mnordin/planverk/internal/models"
	"github.com/mnordin/planverk/internal/notify"
	"github.com/mnordin/planverk/internal/ratelimit"
	"github.com/mnordin/planverk/internal/store"
	"gorm.io/gorm"
)

// registerRoutes sets up the API routes. Health stays unauthenticated
// for load balancers; everything else goes through auth and per-class
// rate limits.
func registerRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, notifier *notify.Notifier, m *metrics) {
	router.GET("/api/health", handleHealth(db))

	rd := ratelimit.Read().Middleware()
	wr := ratelimit.Write().Middleware()
	gen := ratelimit.Generate().Middleware()
	destroy := ratelimit.Destroy().Middleware()

	api := router.Group("/api", authMiddleware(cfg.Auth))

	registerCRUD(api, db, "/machines", entity[models.Machine]{
		order: "code",
		id:    func(m *models.Machine) *string { return &m.ID },
	}, rd, wr)
	registerCRUD(api, db, "/materials", entity[models.Material]{
		order: "name",
		id:    func(m *models.Material) *string { return &m.ID },
	}, rd, wr)
	registerCRUD(api, db, "/customers", entity[models.Customer]{
		order: "name",
		id:    func(c *models.Customer) *string { return &c.ID },
	}, rd, wr)
	registerCRUD(api, db, "/products", entity[models.Product]{
		order: "sku",
		id:    func(p *models.Product) *string { return &p.ID },
	}, rd, wr)
	registerCRUD(api, db, "/orders", entity[models.Order]{
		order:      "due_date",
		id:         func(o *models.Order) *string { return &o.ID },
		afterWrite: store.RefreshStatuses,
	}, rd, wr)
	registerCRUD(api, db, "/predicted-orders", entity[models.PredictedOrder]{
		order:      "predicted_date",
		id:         func(p *models.PredictedOrder) *string { return &p.ID },
		afterWrite: store.RefreshStatuses,
	}, rd, wr)

	api.GET("/settings", rd, handleGetSettings(db))
	api.PUT("/settings", wr, handlePutSettings(db))

	api.GET("/production-blocks", rd, handleListBlocks(db))
	api.POST("/production-blocks", wr, handleCreateBlock(db))
	api.POST("/production-blocks/generate", gen, handleGenerate(db, notifier, m))
	api.PUT("/production-blocks/:id", wr, handleMoveBlock(db))
	api.DELETE("/production-blocks/:id", wr, handleDeleteBlock(db))
	api.DELETE("/production-blocks", destroy, handleDeleteAllBlocks(db, notifier))

	api.GET("/forecasts", rd, handleForecasts(db))
}
