package report

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	reports := protected.Group("/reports")
	{
		reports.POST("", handler.CreateReport)
		reports.GET("", handler.ListMyReports)
		reports.GET("/:id", handler.GetReport)
		reports.PUT("/:id", handler.UpdateReport)
		reports.DELETE("/:id", handler.DeleteReport)
		reports.GET("/:id/matches", handler.GetMatches)
	}
}

// RegisterAdminRoutes expects a group already guarded by the admin middleware.
func RegisterAdminRoutes(admin *gin.RouterGroup, handler *Handler) {
	admin.GET("/reports", handler.ListAllReports)
	admin.DELETE("/reports/:id", handler.DeleteReport)
}
