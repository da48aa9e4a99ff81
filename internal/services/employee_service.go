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

// EmployeeService manages service-center staff records.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, employee *models.Employee) (*models.Employee, error)
	GetEmployee(ctx context.Context, id primitive.ObjectID) (*models.Employee, error)
	ListEmployees(ctx context.Context, position models.EmployeePosition) ([]*models.Employee, error)
	DeleteEmployee(ctx context.Context, id primitive.ObjectID) error
}

type employeeService struct {
	employeeRepo interfaces.EmployeeRepository
	logger       *logger.Logger
}

func NewEmployeeService(employeeRepo interfaces.EmployeeRepository, log *logger.Logger) EmployeeService {
	return &employeeService{
		employeeRepo: employeeRepo,
		logger:       log,
	}
}

func (s *employeeService) CreateEmployee(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	employee.ID = primitive.NewObjectID()
	employee.CreatedAt = time.Now()
	employee.UpdatedAt = employee.CreatedAt

	if err := validators.ValidateEmployee(employee); err != nil {
		return nil, err
	}

	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"employee": employee.EmployeeName,
		"position": string(employee.Position),
	}).Info("Employee created")

	return employee, nil
}

func (s *employeeService) GetEmployee(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	return s.employeeRepo.GetByID(ctx, id)
}

func (s *employeeService) ListEmployees(ctx context.Context, position models.EmployeePosition) ([]*models.Employee, error) {
	if position != "" {
		return s.employeeRepo.ListByPosition(ctx, position)
	}
	return s.employeeRepo.List(ctx)
}

func (s *employeeService) DeleteEmployee(ctx context.Context, id primitive.ObjectID) error {
	return s.employeeRepo.Delete(ctx, id)
}
