package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mnordin/planverk/internal/store"
	"gorm.io/gorm"
)

// entity describes one CRUD resource: the list ordering, access to the
// model's ID field, and an optional hook run after every mutation.
type entity[T any] struct {
	order      string
	id         func(*T) *string
	afterWrite func(db *gorm.DB) error
}

// registerCRUD wires list/get/create/update/delete routes for one model
// under path. rd and wr are the rate-limit middlewares for reads and
// writes.
func registerCRUD[T any](rg *gin.RouterGroup, db *gorm.DB, path string, e entity[T], rd, wr gin.HandlerFunc) {
	rg.GET(path, rd, func(c *gin.Context) {
		rows, err := store.List[T](db, e.order)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})

	rg.GET(path+"/:id", rd, func(c *gin.Context) {
		row, err := store.Get[T](db, c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			notFound(c)
			return
		}
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	})

	rg.POST(path, wr, func(c *gin.Context) {
		var row T
		if err := c.ShouldBindJSON(&row); err != nil {
			badRequest(c, err)
			return
		}
		if id := e.id(&row); *id == "" {
			*id = uuid.NewString()
		}
		if err := store.Create(db, &row); err != nil {
			serverError(c, err)
			return
		}
		if err := runAfterWrite(db, e.afterWrite); err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusCreated, row)
	})

	rg.PUT(path+"/:id", wr, func(c *gin.Context) {
		if _, err := store.Get[T](db, c.Param("id")); errors.Is(err, store.ErrNotFound) {
			notFound(c)
			return
		} else if err != nil {
			serverError(c, err)
			return
		}

		var row T
		if err := c.ShouldBindJSON(&row); err != nil {
			badRequest(c, err)
			return
		}
		*e.id(&row) = c.Param("id")
		if err := store.Update(db, &row); err != nil {
			serverError(c, err)
			return
		}
		if err := runAfterWrite(db, e.afterWrite); err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	})

	rg.DELETE(path+"/:id", wr, func(c *gin.Context) {
		err := store.Delete[T](db, c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			notFound(c)
			return
		}
		if err != nil {
			serverError(c, err)
			return
		}
		if err := runAfterWrite(db, e.afterWrite); err != nil {
			serverError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func runAfterWrite(db *gorm.DB, hook func(*gorm.DB) error) error {
	if hook == nil {
		return nil
	}
	return hook(db)
}

func handleHealth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func serverError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
