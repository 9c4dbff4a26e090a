package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wedding-backend/invite"
)

// GET /api/invitation?maria-3&invite=Ana&g=a
func Invitation(ctx *gin.Context) {
	landing := invite.Parse(ctx.Request.URL.Query(), requestLang(ctx))
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": landing})
}
