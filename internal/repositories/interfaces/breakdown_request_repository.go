package interfaces

import (
	"context"

	"autoassist/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BreakdownRequestRepository is the durable store for breakdown requests.
// It is the single source of truth; callers never cache across poll ticks.
type BreakdownRequestRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, request *models.BreakdownRequest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.BreakdownRequest, error)
	List(ctx context.Context) ([]*models.BreakdownRequest, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Role-filtered views for the sync pollers
	ListByCustomer(ctx context.Context, customerName string) ([]*models.BreakdownRequest, error)
	ListByDriver(ctx context.Context, driverName string) ([]*models.BreakdownRequest, error)

	// Assignment operations
	FindActiveByDriver(ctx context.Context, driverID primitive.ObjectID, driverName string, exclude primitive.ObjectID) (*models.BreakdownRequest, error)
	AssignDriver(ctx context.Context, id primitive.ObjectID, driverID primitive.ObjectID, driverName string) (*models.BreakdownRequest, error)

	// UpdateStatusFrom persists the transition only if the stored status
	// still equals from at the moment of write. Returns the updated
	// request, or false when the guard rejected the write.
	UpdateStatusFrom(ctx context.Context, id primitive.ObjectID, from, to models.RequestStatus) (*models.BreakdownRequest, bool, error)
}
