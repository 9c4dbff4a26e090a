package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *store.Handle.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	DB      Pinger
	Timeout time.Duration
}

func NewHealthController(db Pinger, timeout time.Duration) *HealthController {
	return &HealthController{DB: db, Timeout: timeout}
}

// GET /health
func (c *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), c.Timeout)
	defer cancel()

	database := "up"
	if c.DB == nil || c.DB.Ping(pingCtx) != nil {
		database = "down"
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "database": database})
}
