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

func requestLang(ctx *gin.Context) locale.Lang {
	return locale.Resolve(ctx.Query("lang"), ctx.GetHeader("Accept-Language"))
}

// respondValidation writes a 400 when err is a validation error.
func respondValidation(ctx *gin.Context, err error) bool {
	if ve, ok := services.IsValidation(err); ok {
		utils.JSONFieldError(ctx, ve.Field, ve.Message)
		return true
	}
	return false
}

// respondFailure logs the cause and writes 503 (storage) or 500 (anything
// else) with a localized message. The cause never reaches the client.
func respondFailure(ctx *gin.Context, log zerolog.Logger, err error, key locale.Key) {
	code := http.StatusInternalServerError
	msg := locale.T(requestLang(ctx), locale.Internal)
	if errors.Is(err, services.ErrUnavailable) {
		code = http.StatusServiceUnavailable
		msg = locale.T(requestLang(ctx), key)
	}
	log.Error().Err(err).
		Str("request_id", middleware.RequestID(ctx)).
		Str("path", ctx.Request.URL.Path).
		Int("status", code).
		Msg("request failed")
	utils.JSONError(ctx, code, msg)
}
