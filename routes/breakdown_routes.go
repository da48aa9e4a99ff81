package routes

import (
	"autoassist/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupBreakdownRoutes sets up routes for breakdown request functionality
func SetupBreakdownRoutes(r *gin.RouterGroup, breakdownHandler *handlers.BreakdownHandler) {
	requests := r.Group("/breakdownRequests")
	{
		requests.GET("", breakdownHandler.ListRequests)
		requests.POST("", breakdownHandler.CreateRequest)
		requests.GET("/:id", breakdownHandler.GetRequest)
		requests.DELETE("/:id", breakdownHandler.DeleteRequest)

		requests.PUT("/:id/assign-driver", breakdownHandler.AssignDriver)
		requests.PATCH("/:id/status", breakdownHandler.UpdateStatus)
	}
}
