package services

import (
	"context"

	"autoassist/internal/models"
	"autoassist/internal/repositories/interfaces"
	"autoassist/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusService drives a request through its lifecycle:
// New → Accepted → In Progress → Completed, with New → Declined as the only
// side branch. The guard is re-validated at the store on every write;
// disabled buttons in a dashboard are not a correctness boundary.
type StatusService interface {
	AdvanceStatus(ctx context.Context, requestID primitive.ObjectID, target models.RequestStatus) (*models.BreakdownRequest, *models.StatusNotification, error)
}

type statusService struct {
	requestRepo interfaces.BreakdownRequestRepository
	notifier    NotificationService
	logger      *logger.Logger
}

func NewStatusService(requestRepo interfaces.BreakdownRequestRepository, notifier NotificationService, log *logger.Logger) StatusService {
	return &statusService{
		requestRepo: requestRepo,
		notifier:    notifier,
		logger:      log,
	}
}

func (s *statusService) AdvanceStatus(ctx context.Context, requestID primitive.ObjectID, target models.RequestStatus) (*models.BreakdownRequest, *models.StatusNotification, error) {
	if !target.IsValid() {
		return nil, nil, &models.InvalidTransitionError{Target: target}
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}

	if !request.Status.CanTransitionTo(target) {
		return nil, nil, &models.InvalidTransitionError{From: request.Status, Target: target}
	}

	// Conditional write: if another actor moved the status since the read
	// above, the store rejects the transition instead of forcing it.
	updated, ok, err := s.requestRepo.UpdateStatusFrom(ctx, requestID, request.Status, target)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		current, err := s.requestRepo.GetByID(ctx, requestID)
		if err != nil {
			return nil, nil, err
		}
		return nil, nil, &models.InvalidTransitionError{From: current.Status, Target: target}
	}

	s.logger.WithFields(map[string]interface{}{
		"request_id": requestID.Hex(),
		"from":       string(request.Status),
		"to":         string(target),
	}).Info("Breakdown request status advanced")

	notification := s.notifier.NotifyStatusChange(ctx, updated)

	return updated, notification, nil
}
