package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"autoassist/internal/models"
	"autoassist/internal/repositories/memory"
	"autoassist/internal/services"
	"autoassist/pkg/logger"
)

type assignmentFixture struct {
	requests  *memory.BreakdownRequestRepository
	employees *memory.EmployeeRepository
	service   services.AssignmentService
}

func newAssignmentFixture() *assignmentFixture {
	requests := memory.NewBreakdownRequestRepository()
	employees := memory.NewEmployeeRepository()
	return &assignmentFixture{
		requests:  requests,
		employees: employees,
		service:   services.NewAssignmentService(requests, employees, nil, 0, logger.NewNop()),
	}
}

func (f *assignmentFixture) addDriver(t *testing.T, name string) *models.Employee {
	t.Helper()
	driver := &models.Employee{
		EmployeeName: name,
		Email:        name + "@autoassist.test",
		ContactNo:    "+14155550111",
		Position:     models.PositionDriver,
	}
	if err := f.employees.Create(context.Background(), driver); err != nil {
		t.Fatalf("create driver: %v", err)
	}
	return driver
}

func (f *assignmentFixture) addRequest(t *testing.T, customer string) *models.BreakdownRequest {
	t.Helper()
	request := &models.BreakdownRequest{
		CustomerName:  customer,
		ContactNumber: "+14155550100",
		VehicleNumber: "KA-01-1234",
		IssueType:     "Engine failure",
		Location:      "NH-48 near toll plaza",
	}
	if err := f.requests.Create(context.Background(), request); err != nil {
		t.Fatalf("create request: %v", err)
	}
	return request
}

func TestAssignDriver(t *testing.T) {
	f := newAssignmentFixture()
	driver := f.addDriver(t, "Ravi")
	request := f.addRequest(t, "Meera")

	updated, err := f.service.AssignDriver(context.Background(), request.ID, driver.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if updated.AssignedDriver != "Ravi" {
		t.Errorf("assignedDriver = %q, want Ravi", updated.AssignedDriver)
	}
	if updated.AssignedDriverID != driver.ID {
		t.Errorf("assignedDriverId = %s, want %s", updated.AssignedDriverID.Hex(), driver.ID.Hex())
	}
	if updated.Status != models.RequestStatusNew {
		t.Errorf("assignment changed status to %s", updated.Status)
	}
}

func TestAssignDriverRejectsSecondActiveAssignment(t *testing.T) {
	f := newAssignmentFixture()
	driver := f.addDriver(t, "Ravi")
	first := f.addRequest(t, "Meera")
	second := f.addRequest(t, "Arjun")

	if _, err := f.service.AssignDriver(context.Background(), first.ID, driver.ID); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	_, err := f.service.AssignDriver(context.Background(), second.ID, driver.ID)
	if !errors.Is(err, models.ErrDriverUnavailable) {
		t.Fatalf("second assign: got %v, want ErrDriverUnavailable", err)
	}

	var unavailable *models.DriverUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("error does not carry conflict details: %v", err)
	}
	if unavailable.ConflictRequestID != first.ID {
		t.Errorf("conflict request = %s, want %s", unavailable.ConflictRequestID.Hex(), first.ID.Hex())
	}

	// The losing request must stay untouched.
	stored, err := f.requests.GetByID(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("get second: %v", err)
	}
	if stored.IsAssigned() {
		t.Errorf("rejected assignment still wrote assignedDriver = %q", stored.AssignedDriver)
	}
}

func TestAssignDriverIsIdempotentForSameRequest(t *testing.T) {
	f := newAssignmentFixture()
	driver := f.addDriver(t, "Ravi")
	request := f.addRequest(t, "Meera")

	if _, err := f.service.AssignDriver(context.Background(), request.ID, driver.ID); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if _, err := f.service.AssignDriver(context.Background(), request.ID, driver.ID); err != nil {
		t.Fatalf("repeat assign: %v", err)
	}
}

func TestAssignDriverCountsLegacyNameOnlyRecords(t *testing.T) {
	f := newAssignmentFixture()
	driver := f.addDriver(t, "Ravi")
	request := f.addRequest(t, "Meera")

	// A record from before assignedDriverId existed still occupies the
	// driver.
	f.requests.Seed(&models.BreakdownRequest{
		CustomerName:   "Old Customer",
		ContactNumber:  "+14155550199",
		AssignedDriver: "Ravi",
		Status:         models.RequestStatusInProgress,
	})

	_, err := f.service.AssignDriver(context.Background(), request.ID, driver.ID)
	if !errors.Is(err, models.ErrDriverUnavailable) {
		t.Fatalf("got %v, want ErrDriverUnavailable", err)
	}
}

func TestAssignDriverIgnoresNamesakeWithDifferentID(t *testing.T) {
	f := newAssignmentFixture()
	driver := f.addDriver(t, "Ravi")
	request := f.addRequest(t, "Meera")

	// A different driver who happens to share the name holds an active
	// request. Identity is the id; the namesake must not block this one.
	namesake := f.addDriver(t, "Ravi")
	busy := f.addRequest(t, "Arjun")
	if _, err := f.service.AssignDriver(context.Background(), busy.ID, namesake.ID); err != nil {
		t.Fatalf("assign namesake: %v", err)
	}

	if _, err := f.service.AssignDriver(context.Background(), request.ID, driver.ID); err != nil {
		t.Fatalf("assign: got %v, want success for a same-name different-id driver", err)
	}
}

func TestAssignDriverRejectsNonDriver(t *testing.T) {
	f := newAssignmentFixture()
	request := f.addRequest(t, "Meera")

	mechanic := &models.Employee{
		EmployeeName: "Suresh",
		Email:        "suresh@autoassist.test",
		ContactNo:    "+14155550122",
		Position:     models.PositionMechanic,
	}
	if err := f.employees.Create(context.Background(), mechanic); err != nil {
		t.Fatalf("create mechanic: %v", err)
	}

	_, err := f.service.AssignDriver(context.Background(), request.ID, mechanic.ID)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestAssignDriverRejectsTerminalRequest(t *testing.T) {
	f := newAssignmentFixture()
	driver := f.addDriver(t, "Ravi")

	done := &models.BreakdownRequest{
		CustomerName:  "Meera",
		ContactNumber: "+14155550100",
		Status:        models.RequestStatusCompleted,
	}
	f.requests.Seed(done)

	_, err := f.service.AssignDriver(context.Background(), done.ID, driver.ID)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound for terminal request", err)
	}
}

func TestAssignDriverSurfacesStoreOutage(t *testing.T) {
	f := newAssignmentFixture()
	driver := f.addDriver(t, "Ravi")
	request := f.addRequest(t, "Meera")

	f.requests.SetFailing(true)

	_, err := f.service.AssignDriver(context.Background(), request.ID, driver.ID)
	if !errors.Is(err, models.ErrStoreUnavailable) {
		t.Fatalf("got %v, want ErrStoreUnavailable", err)
	}
}

func TestListDrivers(t *testing.T) {
	f := newAssignmentFixture()
	busy := f.addDriver(t, "Ravi")
	f.addDriver(t, "Asha")
	request := f.addRequest(t, "Meera")

	if _, err := f.service.AssignDriver(context.Background(), request.ID, busy.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	all, err := f.service.ListDrivers(context.Background(), false)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all drivers = %d, want 2", len(all))
	}

	available, err := f.service.ListDrivers(context.Background(), true)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(available) != 1 || available[0].EmployeeName != "Asha" {
		t.Fatalf("available = %v, want only Asha", names(available))
	}
}

// recordingCache captures lock traffic so tests can observe the TTL the
// coordinator asks for.
type recordingCache struct {
	mu       sync.Mutex
	lockKey  string
	lockTTL  time.Duration
	released []string
}

func (c *recordingCache) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("cache miss")
}

func (c *recordingCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (c *recordingCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = append(c.released, keys...)
	return nil
}

func (c *recordingCache) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}

func (c *recordingCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lockKey = key
	c.lockTTL = expiration
	return true, nil
}

func TestAssignDriverLockUsesConfiguredTTL(t *testing.T) {
	requests := memory.NewBreakdownRequestRepository()
	employees := memory.NewEmployeeRepository()
	lockCache := &recordingCache{}

	lockTTL := 250 * time.Millisecond
	service := services.NewAssignmentService(requests, employees, lockCache, lockTTL, logger.NewNop())

	driver := &models.Employee{
		EmployeeName: "Ravi",
		Email:        "ravi@autoassist.test",
		ContactNo:    "+14155550111",
		Position:     models.PositionDriver,
	}
	if err := employees.Create(context.Background(), driver); err != nil {
		t.Fatalf("create driver: %v", err)
	}
	request := &models.BreakdownRequest{
		CustomerName:  "Meera",
		ContactNumber: "+14155550100",
	}
	if err := requests.Create(context.Background(), request); err != nil {
		t.Fatalf("create request: %v", err)
	}

	if _, err := service.AssignDriver(context.Background(), request.ID, driver.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	lockCache.mu.Lock()
	defer lockCache.mu.Unlock()
	if lockCache.lockTTL != lockTTL {
		t.Errorf("lock TTL = %s, want %s", lockCache.lockTTL, lockTTL)
	}
	if len(lockCache.released) != 1 || lockCache.released[0] != lockCache.lockKey {
		t.Errorf("lock %q was not released, got %v", lockCache.lockKey, lockCache.released)
	}
}

func names(employees []*models.Employee) []string {
	out := make([]string, len(employees))
	for i, e := range employees {
		out[i] = e.EmployeeName
	}
	return out
}
