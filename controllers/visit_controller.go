package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wedding-backend/locale"
	"wedding-backend/services"
	"wedding-backend/utils"
)

type VisitController struct {
	VisitSvc *services.VisitService
	Log      zerolog.Logger
}

func NewVisitController(svc *services.VisitService, log zerolog.Logger) *VisitController {
	return &VisitController{VisitSvc: svc, Log: log}
}

// POST /api/visit-tracking
func (c *VisitController) Track(ctx *gin.Context) {
	var in services.VisitInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := c.VisitSvc.Track(ctx.Request.Context(), in, services.VisitMeta{
		IP:        ctx.ClientIP(),
		UserAgent: ctx.Request.UserAgent(),
		Referrer:  ctx.Request.Referer(),
	})
	if respondValidation(ctx, err) {
		return
	}
	if err != nil {
		respondFailure(ctx, c.Log, err, locale.VisitUnavailable)
		return
	}
	if result.Duplicate {
		ctx.JSON(http.StatusOK, gin.H{"success": true, "duplicate": true})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"success": true, "duplicate": false, "data": result.Visit})
}

// GET /api/visit-tracking (dashboard token)
func (c *VisitController) List(ctx *gin.Context) {
	items, err := c.VisitSvc.List(ctx.Request.Context())
	if err != nil {
		respondFailure(ctx, c.Log, err, locale.DashboardUnavailable)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, items)
}
