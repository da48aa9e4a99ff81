package routes

import (
	"autoassist/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupDashboardRoutes sets up the poller-backed dispatcher view routes
func SetupDashboardRoutes(r *gin.RouterGroup, dashboardHandler *handlers.DashboardHandler) {
	dashboard := r.Group("/dashboard")
	{
		dashboard.GET("/requests", dashboardHandler.ListRequests)
	}
}
