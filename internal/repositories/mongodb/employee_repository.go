package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autoassist/internal/models"
	"autoassist/internal/repositories/interfaces"
	"autoassist/internal/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const employeeCacheTTL = 30 * time.Minute

type employeeRepository struct {
	collection *mongo.Collection

	cache services.CacheService
}

func NewEmployeeRepository(db *mongo.Database, cache services.CacheService) interfaces.EmployeeRepository {
	repo := &employeeRepository{
		collection: db.Collection("employees"),
		cache:      cache,
	}
	repo.ensureIndexes()
	return repo
}

func (r *employeeRepository) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "position", Value: 1}}},
		{Keys: bson.D{{Key: "employeeName", Value: 1}}},
	})
}

func (r *employeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	employee.ID = primitive.NewObjectID()
	employee.CreatedAt = time.Now()
	employee.UpdatedAt = employee.CreatedAt

	_, err := r.collection.InsertOne(ctx, employee)
	if err != nil {
		return fmt.Errorf("%w: failed to create employee: %v", models.ErrStoreUnavailable, err)
	}

	r.cacheEmployee(ctx, employee)

	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	if employee := r.getEmployeeFromCache(ctx, id.Hex()); employee != nil {
		return employee, nil
	}

	var employee models.Employee
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&employee)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("employee %s: %w", id.Hex(), models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get employee: %v", models.ErrStoreUnavailable, err)
	}

	r.cacheEmployee(ctx, &employee)

	return &employee, nil
}

func (r *employeeRepository) GetByName(ctx context.Context, employeeName string) (*models.Employee, error) {
	var employee models.Employee
	err := r.collection.FindOne(ctx, bson.M{"employeeName": employeeName}).Decode(&employee)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("employee %q: %w", employeeName, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get employee by name: %v", models.ErrStoreUnavailable, err)
	}

	return &employee, nil
}

func (r *employeeRepository) List(ctx context.Context) ([]*models.Employee, error) {
	return r.find(ctx, bson.M{})
}

func (r *employeeRepository) ListByPosition(ctx context.Context, position models.EmployeePosition) ([]*models.Employee, error) {
	return r.find(ctx, bson.M{"position": position})
}

func (r *employeeRepository) find(ctx context.Context, filter bson.M) ([]*models.Employee, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "employeeName", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list employees: %v", models.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var employees []*models.Employee
	for cursor.Next(ctx) {
		var employee models.Employee
		if err := cursor.Decode(&employee); err != nil {
			return nil, fmt.Errorf("%w: failed to decode employee: %v", models.ErrStoreUnavailable, err)
		}
		employees = append(employees, &employee)
	}

	return employees, nil
}

func (r *employeeRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updatedAt"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("%w: failed to update employee: %v", models.ErrStoreUnavailable, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("employee %s: %w", id.Hex(), models.ErrNotFound)
	}

	r.invalidateEmployeeCache(ctx, id.Hex())

	return nil
}

func (r *employeeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: failed to delete employee: %v", models.ErrStoreUnavailable, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("employee %s: %w", id.Hex(), models.ErrNotFound)
	}

	r.invalidateEmployeeCache(ctx, id.Hex())

	return nil
}

// Cache helpers
func (r *employeeRepository) cacheEmployee(ctx context.Context, employee *models.Employee) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ctx, employeeCacheKey(employee.ID.Hex()), employee, employeeCacheTTL)
}

func (r *employeeRepository) getEmployeeFromCache(ctx context.Context, id string) *models.Employee {
	if r.cache == nil {
		return nil
	}

	var employee models.Employee
	if err := r.cache.Get(ctx, employeeCacheKey(id), &employee); err != nil {
		return nil
	}
	return &employee
}

func (r *employeeRepository) invalidateEmployeeCache(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	r.cache.Delete(ctx, employeeCacheKey(id))
}

func employeeCacheKey(id string) string {
	return fmt.Sprintf("employee_%s", id)
}
