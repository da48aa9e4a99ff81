package services

import (
	"context"
	"fmt"
	"time"

	"autoassist/internal/models"
	"autoassist/internal/repositories/interfaces"
	"autoassist/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultDriverLockTTL = 5 * time.Second

// AssignmentService binds a driver to a breakdown request while keeping the
// invariant that a driver holds at most one active assignment.
type AssignmentService interface {
	AssignDriver(ctx context.Context, requestID, driverID primitive.ObjectID) (*models.BreakdownRequest, error)
	ListDrivers(ctx context.Context, availableOnly bool) ([]*models.Employee, error)
}

type assignmentService struct {
	requestRepo  interfaces.BreakdownRequestRepository
	employeeRepo interfaces.EmployeeRepository
	cache        CacheService
	lockTTL      time.Duration
	logger       *logger.Logger
}

func NewAssignmentService(requestRepo interfaces.BreakdownRequestRepository, employeeRepo interfaces.EmployeeRepository, cache CacheService, lockTTL time.Duration, log *logger.Logger) AssignmentService {
	if lockTTL <= 0 {
		lockTTL = defaultDriverLockTTL
	}
	return &assignmentService{
		requestRepo:  requestRepo,
		employeeRepo: employeeRepo,
		cache:        cache,
		lockTTL:      lockTTL,
		logger:       log,
	}
}

// AssignDriver writes assignedDriver on the target request if the driver is
// free. Status is never touched here; informing the driver and customer is
// the caller's concern. Re-assigning the same driver to the same request is
// a no-conflict no-op.
func (s *assignmentService) AssignDriver(ctx context.Context, requestID, driverID primitive.ObjectID) (*models.BreakdownRequest, error) {
	driver, err := s.employeeRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.IsDriver() {
		return nil, fmt.Errorf("employee %s does not hold the driver position: %w", driverID.Hex(), models.ErrNotFound)
	}

	// The request must exist before we bother locking the driver.
	if _, err := s.requestRepo.GetByID(ctx, requestID); err != nil {
		return nil, err
	}

	release := s.lockDriver(ctx, driverID)
	defer release()

	// The target request is excluded so that repeating an assignment does
	// not conflict with itself.
	conflict, err := s.requestRepo.FindActiveByDriver(ctx, driverID, driver.EmployeeName, requestID)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		s.logger.WithFields(map[string]interface{}{
			"driver":           driver.EmployeeName,
			"request_id":       requestID.Hex(),
			"conflict_request": conflict.ID.Hex(),
		}).Info("Assignment rejected, driver busy")

		return nil, &models.DriverUnavailableError{
			DriverName:        driver.EmployeeName,
			ConflictRequestID: conflict.ID,
		}
	}

	updated, err := s.requestRepo.AssignDriver(ctx, requestID, driverID, driver.EmployeeName)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"driver":     driver.EmployeeName,
		"request_id": requestID.Hex(),
	}).Info("Driver assigned to breakdown request")

	return updated, nil
}

// ListDrivers returns employees holding the driver position. With
// availableOnly, drivers currently on an active request are filtered out so
// clients can offer only assignable drivers.
func (s *assignmentService) ListDrivers(ctx context.Context, availableOnly bool) ([]*models.Employee, error) {
	drivers, err := s.employeeRepo.ListByPosition(ctx, models.PositionDriver)
	if err != nil {
		return nil, err
	}
	if !availableOnly {
		return drivers, nil
	}

	available := make([]*models.Employee, 0, len(drivers))
	for _, driver := range drivers {
		conflict, err := s.requestRepo.FindActiveByDriver(ctx, driver.ID, driver.EmployeeName, primitive.NilObjectID)
		if err != nil {
			return nil, err
		}
		if conflict == nil {
			available = append(available, driver)
		}
	}
	return available, nil
}

// lockDriver takes a short-lived cache lock on the driver identity to
// narrow the window between the conflict check and the write. The check
// itself still runs when the lock is contested or the cache is down; the
// residual race is accepted and the store's last write wins.
func (s *assignmentService) lockDriver(ctx context.Context, driverID primitive.ObjectID) func() {
	if s.cache == nil {
		return func() {}
	}

	key := fmt.Sprintf("assign_lock_driver_%s", driverID.Hex())
	acquired, err := s.cache.SetNX(ctx, key, time.Now().UnixNano(), s.lockTTL)
	if err != nil {
		s.logger.WithError(err).Warn("Driver lock unavailable, assignment check is best-effort")
		return func() {}
	}
	if !acquired {
		s.logger.WithField("driver_id", driverID.Hex()).Warn("Concurrent assignment in flight for driver")
		return func() {}
	}

	return func() {
		s.cache.Delete(ctx, key)
	}
}
