package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONSuccess wraps data in a {success, data} envelope.
func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

// JSONError answers {success:false, error} with the given status.
func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}

// JSONFieldError is a 400 naming the offending field.
func JSONFieldError(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message, "field": field})
}
