package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wedding-backend/auth"
)

const claimsKey = "dashboardClaims"

// TokenVerifier is satisfied by *auth.Tokens.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireDashboard rejects requests without a valid dashboard token.
func RequireDashboard(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing bearer token"})
			return
		}
		claims, err := v.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid or expired token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// TokenExpiry returns the expiry of the verified token, if any.
func TokenExpiry(c *gin.Context) (time.Time, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return time.Time{}, false
	}
	claims, ok := v.(*auth.Claims)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time.UTC(), true
}
