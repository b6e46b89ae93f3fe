package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lostfound/internal/pkg/response"
)

// AdminOnly must run after JWTAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserID) == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		if !c.GetBool(ContextIsAdmin) {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Admin privileges required")
			return
		}
		c.Next()
	}
}
