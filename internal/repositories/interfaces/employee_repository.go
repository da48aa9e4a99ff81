package interfaces

import (
	"context"

	"autoassist/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmployeeRepository stores service-center staff. The coordinator reads
// drivers from it and never writes them.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error)
	GetByName(ctx context.Context, employeeName string) (*models.Employee, error)
	List(ctx context.Context) ([]*models.Employee, error)
	ListByPosition(ctx context.Context, position models.EmployeePosition) ([]*models.Employee, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
