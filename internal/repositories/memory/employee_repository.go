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

var _ interfaces.EmployeeRepository = (*EmployeeRepository)(nil)

type EmployeeRepository struct {
	mu        sync.RWMutex
	employees map[primitive.ObjectID]*models.Employee
}

func NewEmployeeRepository() *EmployeeRepository {
	return &EmployeeRepository{
		employees: make(map[primitive.ObjectID]*models.Employee),
	}
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	employee.ID = primitive.NewObjectID()
	employee.CreatedAt = time.Now()
	employee.UpdatedAt = employee.CreatedAt

	r.employees[employee.ID] = cloneEmployee(employee)
	return nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	employee, ok := r.employees[id]
	if !ok {
		return nil, fmt.Errorf("employee %s: %w", id.Hex(), models.ErrNotFound)
	}
	return cloneEmployee(employee), nil
}

func (r *EmployeeRepository) GetByName(ctx context.Context, employeeName string) (*models.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, employee := range r.employees {
		if employee.EmployeeName == employeeName {
			return cloneEmployee(employee), nil
		}
	}
	return nil, fmt.Errorf("employee %q: %w", employeeName, models.ErrNotFound)
}

func (r *EmployeeRepository) List(ctx context.Context) ([]*models.Employee, error) {
	return r.filter(func(*models.Employee) bool { return true }), nil
}

func (r *EmployeeRepository) ListByPosition(ctx context.Context, position models.EmployeePosition) ([]*models.Employee, error) {
	return r.filter(func(e *models.Employee) bool { return e.Position == position }), nil
}

func (r *EmployeeRepository) filter(keep func(*models.Employee) bool) []*models.Employee {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var employees []*models.Employee
	for _, employee := range r.employees {
		if keep(employee) {
			employees = append(employees, cloneEmployee(employee))
		}
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].EmployeeName < employees[j].EmployeeName
	})
	return employees
}

func (r *EmployeeRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	employee, ok := r.employees[id]
	if !ok {
		return fmt.Errorf("employee %s: %w", id.Hex(), models.ErrNotFound)
	}

	if name, ok := updates["employeeName"].(string); ok {
		employee.EmployeeName = name
	}
	if contact, ok := updates["contactNo"].(string); ok {
		employee.ContactNo = contact
	}
	if email, ok := updates["email"].(string); ok {
		employee.Email = email
	}
	if license, ok := updates["licenseNo"].(string); ok {
		employee.LicenseNo = license
	}
	employee.UpdatedAt = time.Now()
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.employees[id]; !ok {
		return fmt.Errorf("employee %s: %w", id.Hex(), models.ErrNotFound)
	}
	delete(r.employees, id)
	return nil
}

func cloneEmployee(employee *models.Employee) *models.Employee {
	clone := *employee
	return &clone
}
