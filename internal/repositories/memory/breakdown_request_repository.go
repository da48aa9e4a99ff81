// Package memory holds in-memory implementations of the repository
// interfaces. They back the test suite and local runs without MongoDB.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"autoassist/internal/models"
	"autoassist/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ interfaces.BreakdownRequestRepository = (*BreakdownRequestRepository)(nil)

type BreakdownRequestRepository struct {
	mu       sync.RWMutex
	requests map[primitive.ObjectID]*models.BreakdownRequest

	// failing simulates a store outage for error-path tests.
	failing bool
}

func NewBreakdownRequestRepository() *BreakdownRequestRepository {
	return &BreakdownRequestRepository{
		requests: make(map[primitive.ObjectID]*models.BreakdownRequest),
	}
}

// SetFailing flips the repository into a mode where every operation reports
// a store outage.
func (r *BreakdownRequestRepository) SetFailing(failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing = failing
}

func (r *BreakdownRequestRepository) Create(ctx context.Context, request *models.BreakdownRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return models.ErrStoreUnavailable
	}

	request.ID = primitive.NewObjectID()
	if request.Status == "" {
		request.Status = models.RequestStatusNew
	}
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt

	r.requests[request.ID] = cloneRequest(request)
	return nil
}

func (r *BreakdownRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.BreakdownRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.failing {
		return nil, models.ErrStoreUnavailable
	}

	request, ok := r.requests[id]
	if !ok {
		return nil, fmt.Errorf("breakdown request %s: %w", id.Hex(), models.ErrNotFound)
	}
	return cloneRequest(request), nil
}

func (r *BreakdownRequestRepository) List(ctx context.Context) ([]*models.BreakdownRequest, error) {
	return r.filter(func(*models.BreakdownRequest) bool { return true })
}

func (r *BreakdownRequestRepository) ListByCustomer(ctx context.Context, customerName string) ([]*models.BreakdownRequest, error) {
	return r.filter(func(req *models.BreakdownRequest) bool {
		return req.CustomerName == customerName
	})
}

func (r *BreakdownRequestRepository) ListByDriver(ctx context.Context, driverName string) ([]*models.BreakdownRequest, error) {
	return r.filter(func(req *models.BreakdownRequest) bool {
		return req.AssignedDriver == driverName
	})
}

func (r *BreakdownRequestRepository) filter(keep func(*models.BreakdownRequest) bool) ([]*models.BreakdownRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.failing {
		return nil, models.ErrStoreUnavailable
	}

	var requests []*models.BreakdownRequest
	for _, request := range r.requests {
		if keep(request) {
			requests = append(requests, cloneRequest(request))
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

func (r *BreakdownRequestRepository) FindActiveByDriver(ctx context.Context, driverID primitive.ObjectID, driverName string, exclude primitive.ObjectID) (*models.BreakdownRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.failing {
		return nil, models.ErrStoreUnavailable
	}

	for _, request := range r.requests {
		if request.ID == exclude {
			continue
		}
		if request.Status.IsActive() && request.AssignedTo(driverID, driverName) {
			return cloneRequest(request), nil
		}
	}
	return nil, nil
}

func (r *BreakdownRequestRepository) AssignDriver(ctx context.Context, id primitive.ObjectID, driverID primitive.ObjectID, driverName string) (*models.BreakdownRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return nil, models.ErrStoreUnavailable
	}

	request, ok := r.requests[id]
	if !ok || !request.Status.IsActive() {
		return nil, fmt.Errorf("breakdown request %s not open for assignment: %w", id.Hex(), models.ErrNotFound)
	}

	request.AssignedDriver = driverName
	request.AssignedDriverID = driverID
	request.UpdatedAt = time.Now()
	return cloneRequest(request), nil
}

func (r *BreakdownRequestRepository) UpdateStatusFrom(ctx context.Context, id primitive.ObjectID, from, to models.RequestStatus) (*models.BreakdownRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return nil, false, models.ErrStoreUnavailable
	}

	request, ok := r.requests[id]
	if !ok || request.Status != from {
		return nil, false, nil
	}

	request.Status = to
	request.UpdatedAt = time.Now()
	return cloneRequest(request), true, nil
}

func (r *BreakdownRequestRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return models.ErrStoreUnavailable
	}

	if _, ok := r.requests[id]; !ok {
		return fmt.Errorf("breakdown request %s: %w", id.Hex(), models.ErrNotFound)
	}
	delete(r.requests, id)
	return nil
}

// Seed inserts a request as-is, bypassing Create defaults. Tests use it to
// simulate out-of-band writes by other clients.
func (r *BreakdownRequestRepository) Seed(request *models.BreakdownRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if request.ID.IsZero() {
		request.ID = primitive.NewObjectID()
	}
	r.requests[request.ID] = cloneRequest(request)
}

func cloneRequest(request *models.BreakdownRequest) *models.BreakdownRequest {
	clone := *request
	return &clone
}
