package admin

import "github.com/gin-gonic/gin"

// RegisterRoutes expects a group already guarded by JWTAuth and AdminOnly.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.POST("/approve-match", h.ApproveMatch)
}
