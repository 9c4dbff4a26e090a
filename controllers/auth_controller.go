package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wedding-backend/auth"
	"wedding-backend/locale"
	"wedding-backend/middleware"
	"wedding-backend/utils"
)

type AuthController struct {
	Auth   auth.Authenticator
	Tokens *auth.Tokens
	Log    zerolog.Logger
}

func NewAuthController(a auth.Authenticator, tokens *auth.Tokens, log zerolog.Logger) *AuthController {
	return &AuthController{Auth: a, Tokens: tokens, Log: log}
}

type loginPayload struct {
	Password string `json:"password"`
}

// POST /api/auth/dashboard
func (c *AuthController) Login(ctx *gin.Context) {
	var payload loginPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid payload")
		return
	}
	if payload.Password == "" {
		utils.JSONFieldError(ctx, "password", "password is required")
		return
	}

	if !c.Auth.Authenticate(payload.Password) {
		c.Log.Warn().Str("client_ip", ctx.ClientIP()).Msg("dashboard login rejected")
		utils.JSONError(ctx, http.StatusUnauthorized, locale.T(requestLang(ctx), locale.InvalidPassword))
		return
	}

	token, expiresAt, err := c.Tokens.Issue()
	if err != nil {
		respondFailure(ctx, c.Log, err, locale.Internal)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "token": token, "expiresAt": expiresAt})
}

// GET /api/auth/dashboard (behind RequireDashboard)
func (c *AuthController) Verify(ctx *gin.Context) {
	expiresAt, ok := middleware.TokenExpiry(ctx)
	if !ok {
		utils.JSONError(ctx, http.StatusUnauthorized, locale.T(requestLang(ctx), locale.Unauthorized))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"valid": true, "expiresAt": expiresAt})
}
