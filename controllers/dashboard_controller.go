package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wedding-backend/locale"
	"wedding-backend/services"
	"wedding-backend/store"
	"wedding-backend/utils"
)

type DashboardController struct {
	DashboardSvc *services.DashboardService
	ExportSvc    *services.ExportService
	Log          zerolog.Logger
}

func NewDashboardController(dash *services.DashboardService, export *services.ExportService, log zerolog.Logger) *DashboardController {
	return &DashboardController{DashboardSvc: dash, ExportSvc: export, Log: log}
}

func demoRequested(ctx *gin.Context) bool {
	v, _ := strconv.ParseBool(ctx.Query("demo"))
	return v
}

func queryInt(ctx *gin.Context, key string) int {
	n, err := strconv.Atoi(ctx.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// GET /api/dashboard/stats
func (c *DashboardController) Stats(ctx *gin.Context) {
	stats, err := c.DashboardSvc.Stats(ctx.Request.Context(), demoRequested(ctx))
	if err != nil {
		respondFailure(ctx, c.Log, err, locale.DashboardUnavailable)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "isDemo": stats.IsDemo, "data": stats})
}

// GET /api/dashboard/rsvps?search=&status=&page=&limit=
func (c *DashboardController) ListRSVPs(ctx *gin.Context) {
	q := store.ListQuery{
		Search: ctx.Query("search"),
		Status: store.ParseStatus(ctx.Query("status")),
		Page:   queryInt(ctx, "page"),
		Limit:  queryInt(ctx, "limit"),
	}
	page, err := c.DashboardSvc.List(ctx.Request.Context(), q, demoRequested(ctx))
	if err != nil {
		respondFailure(ctx, c.Log, err, locale.DashboardUnavailable)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":    true,
		"isDemo":     page.IsDemo,
		"data":       page.RSVPs,
		"pagination": page.Pagination,
	})
}

// DELETE /api/dashboard/rsvps?id=
func (c *DashboardController) DeleteRSVP(ctx *gin.Context) {
	err := c.DashboardSvc.Delete(ctx.Request.Context(), ctx.Query("id"))
	if respondValidation(ctx, err) {
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(ctx, http.StatusNotFound, locale.T(requestLang(ctx), locale.NotFound))
		return
	}
	if err != nil {
		respondFailure(ctx, c.Log, err, locale.DashboardUnavailable)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "deleted": 1})
}

// GET /api/dashboard/export?type=rsvps|wellwishes&format=csv|json
func (c *DashboardController) Export(ctx *gin.Context) {
	kind, err := services.ParseExportKind(ctx.Query("type"))
	if respondValidation(ctx, err) {
		return
	}
	format, err := services.ParseExportFormat(ctx.Query("format"))
	if respondValidation(ctx, err) {
		return
	}

	var buf bytes.Buffer
	if err := c.ExportSvc.Export(ctx.Request.Context(), &buf, kind, format); err != nil {
		respondFailure(ctx, c.Log, err, locale.DashboardUnavailable)
		return
	}

	filename := services.Filename(kind, format, time.Now())
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
