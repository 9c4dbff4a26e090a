package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wedding-backend/locale"
	"wedding-backend/middleware"
	"wedding-backend/services"
	"wedding-backend/utils"
)

type RSVPController struct {
	RSVPSvc *services.RSVPService
	Log     zerolog.Logger
}

func NewRSVPController(svc *services.RSVPService, log zerolog.Logger) *RSVPController {
	return &RSVPController{RSVPSvc: svc, Log: log}
}

// ----------------------------------------------------
// POST /api/rsvp
// storage failures still answer 200 with fallback:true
// ----------------------------------------------------
func (c *RSVPController) Submit(ctx *gin.Context) {
	var in services.RSVPInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := c.RSVPSvc.Submit(ctx.Request.Context(), in)
	if respondValidation(ctx, err) {
		return
	}
	msg := locale.T(requestLang(ctx), locale.RSVPSaved)
	if err != nil {
		if !errors.Is(err, services.ErrUnavailable) {
			respondFailure(ctx, c.Log, err, locale.Internal)
			return
		}
		c.Log.Error().Err(err).
			Str("request_id", middleware.RequestID(ctx)).
			Str("email", services.NormalizeEmail(in.Email)).
			Msg("rsvp not stored, answering with fallback")
		ctx.JSON(http.StatusOK, gin.H{"success": true, "fallback": true, "message": msg})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"created": result.Created,
		"message": msg,
		"data":    result.Invitation,
	})
}

// GET /api/rsvp
func (c *RSVPController) List(ctx *gin.Context) {
	items, err := c.RSVPSvc.List(ctx.Request.Context())
	if err != nil {
		respondFailure(ctx, c.Log, err, locale.DashboardUnavailable)
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, items)
}

type checkRequest struct {
	Name string `json:"name"`
}

// POST /api/rsvp/check
func (c *RSVPController) Check(ctx *gin.Context) {
	var req checkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := c.RSVPSvc.Check(ctx.Request.Context(), req.Name)
	if respondValidation(ctx, err) {
		return
	}
	if err != nil {
		respondFailure(ctx, c.Log, err, locale.DashboardUnavailable)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
