package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wedding-backend/locale"
	"wedding-backend/services"
	"wedding-backend/utils"
)

type WellWishController struct {
	WellWishSvc *services.WellWishService
	Log         zerolog.Logger
}

func NewWellWishController(svc *services.WellWishService, log zerolog.Logger) *WellWishController {
	return &WellWishController{WellWishSvc: svc, Log: log}
}

// POST /api/well-wishes
func (c *WellWishController) Submit(ctx *gin.Context) {
	var in services.WellWishInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request body")
		return
	}

	wish, err := c.WellWishSvc.Submit(ctx.Request.Context(), in)
	if respondValidation(ctx, err) {
		return
	}
	if err != nil {
		respondFailure(ctx, c.Log, err, locale.WellWishUnavailable)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": locale.T(requestLang(ctx), locale.WellWishSaved),
		"data":    wish,
	})
}

// GET /api/well-wishes
func (c *WellWishController) List(ctx *gin.Context) {
	items, err := c.WellWishSvc.List(ctx.Request.Context())
	if err != nil {
		respondFailure(ctx, c.Log, err, locale.WellWishUnavailable)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, items)
}
