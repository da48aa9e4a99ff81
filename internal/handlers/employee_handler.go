package handlers

import (
	"errors"
	"strconv"

	"autoassist/internal/models"
	"autoassist/internal/services"
	"autoassist/internal/utils"
	"autoassist/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmployeeHandler struct {
	employeeService   services.EmployeeService
	assignmentService services.AssignmentService
}

func NewEmployeeHandler(employeeService services.EmployeeService, assignmentService services.AssignmentService) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService:   employeeService,
		assignmentService: assignmentService,
	}
}

type createEmployeeInput struct {
	EmployeeName string `json:"employeeName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	ContactNo    string `json:"contactNo" binding:"required"`
	Age          int    `json:"Age"`
	JoinedYear   int    `json:"joinedYear"`
	Position     string `json:"position" binding:"required"`
	LicenseNo    string `json:"licenseNo"`
}

// CreateEmployee registers a staff member.
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var input createEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	employee := &models.Employee{
		EmployeeName: input.EmployeeName,
		Email:        input.Email,
		ContactNo:    input.ContactNo,
		Age:          input.Age,
		JoinedYear:   input.JoinedYear,
		Position:     models.EmployeePosition(input.Position),
		LicenseNo:    input.LicenseNo,
	}

	created, err := h.employeeService.CreateEmployee(c.Request.Context(), employee)
	if err != nil {
		h.writeError(c, err)
		return
	}

	utils.CreatedResponse(c, "Employee created", created)
}

// ListEmployees returns staff, optionally filtered by position. With
// position=driver the available flag narrows the list to drivers with no
// active assignment.
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	position := models.EmployeePosition(c.Query("position"))
	availableOnly, _ := strconv.ParseBool(c.DefaultQuery("available", "false"))

	if position == models.PositionDriver {
		drivers, err := h.assignmentService.ListDrivers(c.Request.Context(), availableOnly)
		if err != nil {
			h.writeError(c, err)
			return
		}
		meta := &utils.Meta{Count: len(drivers)}
		utils.SuccessResponseWithMeta(c, "Drivers retrieved", drivers, meta)
		return
	}

	employees, err := h.employeeService.ListEmployees(c.Request.Context(), position)
	if err != nil {
		h.writeError(c, err)
		return
	}

	meta := &utils.Meta{Count: len(employees)}
	utils.SuccessResponseWithMeta(c, "Employees retrieved", employees, meta)
}

// GetEmployee returns a single staff record.
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid employee ID")
		return
	}

	employee, err := h.employeeService.GetEmployee(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	utils.SuccessResponse(c, "Employee retrieved", employee)
}

// DeleteEmployee removes a staff record.
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid employee ID")
		return
	}

	if err := h.employeeService.DeleteEmployee(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	utils.SuccessResponse(c, "Employee deleted", nil)
}

func (h *EmployeeHandler) writeError(c *gin.Context, err error) {
	var invalid validators.ValidationErrors

	switch {
	case errors.As(err, &invalid):
		utils.ValidationErrorResponse(c, invalid.Fields())
	case errors.Is(err, models.ErrNotFound):
		utils.NotFoundResponse(c, "Employee")
	case errors.Is(err, models.ErrStoreUnavailable):
		utils.ServiceUnavailableResponse(c, utils.ErrStoreUnreachable)
	default:
		utils.InternalServerErrorResponse(c)
	}
}
