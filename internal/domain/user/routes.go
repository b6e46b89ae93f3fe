package user

import "github.com/gin-gonic/gin"

func RegisterPublicRoutes(r *gin.RouterGroup, handler *Handler) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
	}
}

func RegisterProtectedRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/users/me", handler.Me)
}
