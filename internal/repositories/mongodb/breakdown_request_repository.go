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

const defaultRequestCacheTTL = 30 * time.Second

type breakdownRequestRepository struct {
	collection *mongo.Collection

	cache    services.CacheService
	cacheTTL time.Duration
}

func NewBreakdownRequestRepository(db *mongo.Database, cache services.CacheService, cacheTTL time.Duration) interfaces.BreakdownRequestRepository {
	if cacheTTL <= 0 {
		cacheTTL = defaultRequestCacheTTL
	}
	repo := &breakdownRequestRepository{
		collection: db.Collection("breakdownRequests"),
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
	repo.ensureIndexes()
	return repo
}

func (r *breakdownRequestRepository) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The active-assignment conflict check and the poller filters hit
	// these paths on every tick.
	r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "assignedDriverId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "assignedDriver", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "customerName", Value: 1}}},
	})
}

// Basic CRUD operations
func (r *breakdownRequestRepository) Create(ctx context.Context, request *models.BreakdownRequest) error {
	request.ID = primitive.NewObjectID()
	if request.Status == "" {
		request.Status = models.RequestStatusNew
	}
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt

	_, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return fmt.Errorf("%w: failed to create breakdown request: %v", models.ErrStoreUnavailable, err)
	}

	r.cacheRequest(ctx, request)

	return nil
}

func (r *breakdownRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.BreakdownRequest, error) {
	// Try cache first
	if request := r.getRequestFromCache(ctx, id.Hex()); request != nil {
		return request, nil
	}

	var request models.BreakdownRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("breakdown request %s: %w", id.Hex(), models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get breakdown request: %v", models.ErrStoreUnavailable, err)
	}

	r.cacheRequest(ctx, &request)

	return &request, nil
}

func (r *breakdownRequestRepository) List(ctx context.Context) ([]*models.BreakdownRequest, error) {
	return r.find(ctx, bson.M{})
}

func (r *breakdownRequestRepository) ListByCustomer(ctx context.Context, customerName string) ([]*models.BreakdownRequest, error) {
	return r.find(ctx, bson.M{"customerName": customerName})
}

func (r *breakdownRequestRepository) ListByDriver(ctx context.Context, driverName string) ([]*models.BreakdownRequest, error) {
	return r.find(ctx, bson.M{"assignedDriver": driverName})
}

func (r *breakdownRequestRepository) find(ctx context.Context, filter bson.M) ([]*models.BreakdownRequest, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list breakdown requests: %v", models.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var requests []*models.BreakdownRequest
	for cursor.Next(ctx) {
		var request models.BreakdownRequest
		if err := cursor.Decode(&request); err != nil {
			return nil, fmt.Errorf("%w: failed to decode breakdown request: %v", models.ErrStoreUnavailable, err)
		}
		requests = append(requests, &request)
	}

	return requests, nil
}

// Assignment operations
func (r *breakdownRequestRepository) FindActiveByDriver(ctx context.Context, driverID primitive.ObjectID, driverName string, exclude primitive.ObjectID) (*models.BreakdownRequest, error) {
	// The driver id is authoritative; a bare name only identifies records
	// written before ids were stored, so a name match counts only where no
	// id is present.
	var identity []bson.M
	if driverID.IsZero() {
		identity = []bson.M{{"assignedDriver": driverName}}
	} else {
		identity = []bson.M{
			{"assignedDriverId": driverID},
			{"assignedDriver": driverName, "assignedDriverId": bson.M{"$exists": false}},
		}
	}

	filter := bson.M{
		"$or":    identity,
		"status": bson.M{"$in": models.ActiveStatuses},
	}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}

	var request models.BreakdownRequest
	err := r.collection.FindOne(ctx, filter).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to check active assignments: %v", models.ErrStoreUnavailable, err)
	}

	return &request, nil
}

func (r *breakdownRequestRepository) AssignDriver(ctx context.Context, id primitive.ObjectID, driverID primitive.ObjectID, driverName string) (*models.BreakdownRequest, error) {
	update := bson.M{"$set": bson.M{
		"assignedDriver":   driverName,
		"assignedDriverId": driverID,
		"updatedAt":        time.Now(),
	}}

	// Guard against assigning onto a terminal request at the moment of
	// write; the status field stays untouched.
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": models.ActiveStatuses},
	}

	var request models.BreakdownRequest
	err := r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("breakdown request %s not open for assignment: %w", id.Hex(), models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to assign driver: %v", models.ErrStoreUnavailable, err)
	}

	r.invalidateRequestCache(ctx, id.Hex())

	return &request, nil
}

func (r *breakdownRequestRepository) UpdateStatusFrom(ctx context.Context, id primitive.ObjectID, from, to models.RequestStatus) (*models.BreakdownRequest, bool, error) {
	// Conditional write: the transition lands only if the persisted
	// status still matches the expected "from" state.
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{
		"status":    to,
		"updatedAt": time.Now(),
	}}

	var request models.BreakdownRequest
	err := r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: failed to update status: %v", models.ErrStoreUnavailable, err)
	}

	r.invalidateRequestCache(ctx, id.Hex())

	return &request, true, nil
}

func (r *breakdownRequestRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: failed to delete breakdown request: %v", models.ErrStoreUnavailable, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("breakdown request %s: %w", id.Hex(), models.ErrNotFound)
	}

	r.invalidateRequestCache(ctx, id.Hex())

	return nil
}

// Cache helpers
func (r *breakdownRequestRepository) cacheRequest(ctx context.Context, request *models.BreakdownRequest) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ctx, requestCacheKey(request.ID.Hex()), request, r.cacheTTL)
}

func (r *breakdownRequestRepository) getRequestFromCache(ctx context.Context, id string) *models.BreakdownRequest {
	if r.cache == nil {
		return nil
	}

	var request models.BreakdownRequest
	if err := r.cache.Get(ctx, requestCacheKey(id), &request); err != nil {
		return nil
	}
	return &request
}

func (r *breakdownRequestRepository) invalidateRequestCache(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	r.cache.Delete(ctx, requestCacheKey(id))
}

func requestCacheKey(id string) string {
	return fmt.Sprintf("breakdown_request_%s", id)
}
