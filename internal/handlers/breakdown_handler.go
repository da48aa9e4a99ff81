package handlers

import (
	"errors"

	"autoassist/internal/models"
	"autoassist/internal/services"
	"autoassist/internal/utils"
	"autoassist/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BreakdownHandler struct {
	requestService    services.RequestService
	assignmentService services.AssignmentService
	statusService     services.StatusService
}

func NewBreakdownHandler(requestService services.RequestService, assignmentService services.AssignmentService, statusService services.StatusService) *BreakdownHandler {
	return &BreakdownHandler{
		requestService:    requestService,
		assignmentService: assignmentService,
		statusService:     statusService,
	}
}

type createRequestInput struct {
	CustomerName  string `json:"customerName" binding:"required"`
	ContactNumber string `json:"contactNumber" binding:"required"`
	VehicleNumber string `json:"vehicleNumber" binding:"required"`
	IssueType     string `json:"issueType" binding:"required"`
	Location      string `json:"location" binding:"required"`
}

type assignDriverInput struct {
	DriverID string `json:"driverId" binding:"required"`
}

type updateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// CreateRequest registers a new breakdown request in status New.
func (h *BreakdownHandler) CreateRequest(c *gin.Context) {
	var input createRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if !utils.IsValidPhone(input.ContactNumber) {
		utils.ValidationErrorResponse(c, map[string]string{
			"contactNumber": "must be a valid phone number",
		})
		return
	}

	request := &models.BreakdownRequest{
		CustomerName:  input.CustomerName,
		ContactNumber: input.ContactNumber,
		VehicleNumber: input.VehicleNumber,
		IssueType:     input.IssueType,
		Location:      input.Location,
	}

	created, err := h.requestService.CreateRequest(c.Request.Context(), request)
	if err != nil {
		h.writeError(c, err)
		return
	}

	utils.CreatedResponse(c, "Breakdown request created", created)
}

// ListRequests returns breakdown requests, optionally filtered by
// customerName or assignedDriver query parameters.
func (h *BreakdownHandler) ListRequests(c *gin.Context) {
	customerName := c.Query("customerName")
	driverName := c.Query("assignedDriver")

	requests, err := h.requestService.ListRequests(c.Request.Context(), customerName, driverName)
	if err != nil {
		h.writeError(c, err)
		return
	}

	meta := &utils.Meta{Count: len(requests)}
	utils.SuccessResponseWithMeta(c, "Breakdown requests retrieved", requests, meta)
}

// GetRequest returns a single breakdown request by id.
func (h *BreakdownHandler) GetRequest(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID")
		return
	}

	request, err := h.requestService.GetRequest(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	utils.SuccessResponse(c, "Breakdown request retrieved", request)
}

// DeleteRequest removes a breakdown request.
func (h *BreakdownHandler) DeleteRequest(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID")
		return
	}

	if err := h.requestService.DeleteRequest(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	utils.SuccessResponse(c, "Breakdown request deleted", nil)
}

// AssignDriver binds a driver to the request. A driver already holding an
// active request is rejected with a conflict.
func (h *BreakdownHandler) AssignDriver(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID")
		return
	}

	var input assignDriverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	driverID, err := primitive.ObjectIDFromHex(input.DriverID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid driver ID")
		return
	}

	updated, err := h.assignmentService.AssignDriver(c.Request.Context(), id, driverID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver assigned", updated)
}

// UpdateStatus advances the request through its lifecycle and reports the
// customer notification that the change produced.
func (h *BreakdownHandler) UpdateStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID")
		return
	}

	var input updateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	updated, notification, err := h.statusService.AdvanceStatus(c.Request.Context(), id, models.RequestStatus(input.Status))
	if err != nil {
		h.writeError(c, err)
		return
	}

	utils.SuccessResponse(c, "Status updated", gin.H{
		"request":      updated,
		"notification": notification,
	})
}

// writeError maps domain errors onto HTTP statuses.
func (h *BreakdownHandler) writeError(c *gin.Context, err error) {
	var unavailable *models.DriverUnavailableError
	var transition *models.InvalidTransitionError
	var invalid validators.ValidationErrors

	switch {
	case errors.As(err, &invalid):
		utils.ValidationErrorResponse(c, invalid.Fields())
	case errors.As(err, &unavailable):
		utils.ConflictResponse(c, unavailable.Error())
	case errors.As(err, &transition):
		utils.UnprocessableResponse(c, models.ErrorCodeInvalidTransition, transition.Error())
	case errors.Is(err, models.ErrNotFound):
		utils.NotFoundResponse(c, "Breakdown request or driver")
	case errors.Is(err, models.ErrStoreUnavailable):
		utils.ServiceUnavailableResponse(c, utils.ErrStoreUnreachable)
	default:
		utils.InternalServerErrorResponse(c)
	}
}
