package routes

import (
	"autoassist/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupEmployeeRoutes sets up routes for staff management
func SetupEmployeeRoutes(r *gin.RouterGroup, employeeHandler *handlers.EmployeeHandler) {
	employees := r.Group("/employees")
	{
		employees.GET("", employeeHandler.ListEmployees)
		employees.POST("", employeeHandler.CreateEmployee)
		employees.GET("/:id", employeeHandler.GetEmployee)
		employees.DELETE("/:id", employeeHandler.DeleteEmployee)
	}
}
