package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lostfound/internal/pkg/jwt"
	"lostfound/internal/pkg/response"
)

const (
	ContextUserID  = "user_id"
	ContextIsAdmin = "is_admin"
)

// JWTAuth requires a Bearer token and stores the caller's id and admin flag
// on the context.
func JWTAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header is required")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header must be Bearer <token>")
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextIsAdmin, claims.IsAdmin)
		c.Next()
	}
}
