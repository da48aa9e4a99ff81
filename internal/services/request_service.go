package services

import (
	"context"
	"time"

	"autoassist/internal/models"
	"autoassist/internal/repositories/interfaces"
	"autoassist/internal/validators"
	"autoassist/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestService is the plain CRUD surface over breakdown requests. The
// assignment and lifecycle rules live in AssignmentService and StatusService.
type RequestService interface {
	CreateRequest(ctx context.Context, request *models.BreakdownRequest) (*models.BreakdownRequest, error)
	GetRequest(ctx context.Context, id primitive.ObjectID) (*models.BreakdownRequest, error)
	ListRequests(ctx context.Context, customerName, driverName string) ([]*models.BreakdownRequest, error)
	DeleteRequest(ctx context.Context, id primitive.ObjectID) error
}

type requestService struct {
	requestRepo interfaces.BreakdownRequestRepository
	logger      *logger.Logger
}

func NewRequestService(requestRepo interfaces.BreakdownRequestRepository, log *logger.Logger) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		logger:      log,
	}
}

// CreateRequest stores a new request. Every request starts in New with no
// driver, regardless of what the caller sent.
func (s *requestService) CreateRequest(ctx context.Context, request *models.BreakdownRequest) (*models.BreakdownRequest, error) {
	request.ID = primitive.NewObjectID()
	request.Status = models.RequestStatusNew
	request.AssignedDriver = ""
	request.AssignedDriverID = primitive.NilObjectID
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt

	if err := validators.ValidateBreakdownRequest(request); err != nil {
		return nil, err
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"request_id": request.ID.Hex(),
		"customer":   request.CustomerName,
		"issue_type": request.IssueType,
	}).Info("Breakdown request created")

	return request, nil
}

func (s *requestService) GetRequest(ctx context.Context, id primitive.ObjectID) (*models.BreakdownRequest, error) {
	return s.requestRepo.GetByID(ctx, id)
}

// ListRequests returns the whole collection, or the customer's or driver's
// slice of it when a filter is set. Filters are mutually exclusive; customer
// wins when both are present.
func (s *requestService) ListRequests(ctx context.Context, customerName, driverName string) ([]*models.BreakdownRequest, error) {
	switch {
	case customerName != "":
		return s.requestRepo.ListByCustomer(ctx, customerName)
	case driverName != "":
		return s.requestRepo.ListByDriver(ctx, driverName)
	default:
		return s.requestRepo.List(ctx)
	}
}

func (s *requestService) DeleteRequest(ctx context.Context, id primitive.ObjectID) error {
	if err := s.requestRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.WithField("request_id", id.Hex()).Info("Breakdown request deleted")
	return nil
}
