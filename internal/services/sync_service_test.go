package services_test

import (
	"context"
	"testing"
	"time"

	"autoassist/internal/models"
	"autoassist/internal/repositories/memory"
	"autoassist/internal/services"
	"autoassist/pkg/logger"
)

const testPollInterval = 20 * time.Millisecond

func seedPollerRequest(requests *memory.BreakdownRequestRepository, customer, driver string) *models.BreakdownRequest {
	request := &models.BreakdownRequest{
		CustomerName:   customer,
		ContactNumber:  "+14155550100",
		AssignedDriver: driver,
		Status:         models.RequestStatusNew,
	}
	requests.Seed(request)
	return request
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestPollerFirstFetchIsImmediate(t *testing.T) {
	requests := memory.NewBreakdownRequestRepository()
	seedPollerRequest(requests, "Meera", "")

	poller := services.NewSyncPoller(requests, services.RoleDispatcher, time.Hour, logger.NewNop())
	if err := poller.Start(context.Background(), ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer poller.Stop()

	// The interval is an hour; only the synchronous first fetch can have
	// populated the view.
	if len(poller.Snapshot()) != 1 {
		t.Fatalf("snapshot = %d requests, want 1 from the immediate fetch", len(poller.Snapshot()))
	}
}

func TestPollerTracksOutOfBandChanges(t *testing.T) {
	requests := memory.NewBreakdownRequestRepository()
	poller := services.NewSyncPoller(requests, services.RoleDispatcher, testPollInterval, logger.NewNop())

	if err := poller.Start(context.Background(), ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer poller.Stop()

	if len(poller.Snapshot()) != 0 {
		t.Fatalf("snapshot should start empty, got %d", len(poller.Snapshot()))
	}

	// Another client writes directly to the store.
	seedPollerRequest(requests, "Arjun", "")

	waitFor(t, func() bool { return len(poller.Snapshot()) == 1 },
		"out-of-band request never showed up in the view")
}

func TestCustomerPollerPicksUpRefiledRequests(t *testing.T) {
	requests := memory.NewBreakdownRequestRepository()
	seedPollerRequest(requests, "alice", "")
	seedPollerRequest(requests, "alice", "")
	third := seedPollerRequest(requests, "bob", "")

	poller := services.NewSyncPoller(requests, services.RoleCustomer, testPollInterval, logger.NewNop())
	if err := poller.Start(context.Background(), "alice"); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer poller.Stop()

	if got := len(poller.Snapshot()); got != 2 {
		t.Fatalf("first fetch = %d requests, want 2", got)
	}

	// Out-of-band, the third request is re-filed under alice's name.
	third.CustomerName = "alice"
	requests.Seed(third)

	waitFor(t, func() bool { return len(poller.Snapshot()) == 3 },
		"re-filed request never reached the customer view")
}

func TestPollerReplacesViewWholesale(t *testing.T) {
	requests := memory.NewBreakdownRequestRepository()
	stale := seedPollerRequest(requests, "Meera", "")

	poller := services.NewSyncPoller(requests, services.RoleDispatcher, testPollInterval, logger.NewNop())
	if err := poller.Start(context.Background(), ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer poller.Stop()

	// The request disappears from the store; the next tick must drop it
	// from the view rather than merge around it.
	if err := requests.Delete(context.Background(), stale.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	waitFor(t, func() bool { return len(poller.Snapshot()) == 0 },
		"deleted request survived in the view")

	if _, _, ok := poller.Lookup(stale.ID.Hex()); ok {
		t.Error("lookup still resolves a request the store no longer has")
	}
}

func TestPollerKeepsStaleViewAcrossFailedTicks(t *testing.T) {
	requests := memory.NewBreakdownRequestRepository()
	seedPollerRequest(requests, "Meera", "")

	poller := services.NewSyncPoller(requests, services.RoleDispatcher, testPollInterval, logger.NewNop())
	if err := poller.Start(context.Background(), ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer poller.Stop()

	requests.SetFailing(true)
	waitFor(t, func() bool { return poller.LastError() != nil },
		"failed tick never recorded an error")

	if len(poller.Snapshot()) != 1 {
		t.Fatalf("stale view was dropped on failure, got %d requests", len(poller.Snapshot()))
	}

	// The store recovers; the loop must still be alive to notice.
	requests.SetFailing(false)
	waitFor(t, func() bool { return poller.LastError() == nil },
		"poller never recovered after the store came back")
}

func TestPollerRoleFilters(t *testing.T) {
	requests := memory.NewBreakdownRequestRepository()
	seedPollerRequest(requests, "Meera", "Ravi")
	seedPollerRequest(requests, "Arjun", "Asha")
	seedPollerRequest(requests, "Meera", "")

	driverPoller := services.NewSyncPoller(requests, services.RoleDriver, time.Hour, logger.NewNop())
	if err := driverPoller.Start(context.Background(), "Ravi"); err != nil {
		t.Fatalf("start driver poller: %v", err)
	}
	defer driverPoller.Stop()

	if got := len(driverPoller.Snapshot()); got != 1 {
		t.Errorf("driver view = %d requests, want 1", got)
	}

	customerPoller := services.NewSyncPoller(requests, services.RoleCustomer, time.Hour, logger.NewNop())
	if err := customerPoller.Start(context.Background(), "Meera"); err != nil {
		t.Fatalf("start customer poller: %v", err)
	}
	defer customerPoller.Stop()

	if got := len(customerPoller.Snapshot()); got != 2 {
		t.Errorf("customer view = %d requests, want 2", got)
	}
}

func TestPollerStartWhenIdentityDefers(t *testing.T) {
	requests := memory.NewBreakdownRequestRepository()
	seedPollerRequest(requests, "Meera", "Ravi")

	poller := services.NewSyncPoller(requests, services.RoleDriver, testPollInterval, logger.NewNop())
	identityCh := make(chan string)

	poller.StartWhenIdentity(context.Background(), identityCh)
	defer poller.Stop()

	// No identity yet: nothing may have been fetched.
	time.Sleep(3 * testPollInterval)
	if len(poller.Snapshot()) != 0 {
		t.Fatal("poller fetched before the identity resolved")
	}

	identityCh <- "Ravi"

	waitFor(t, func() bool { return len(poller.Snapshot()) == 1 },
		"poller never started after the identity resolved")
}

func TestPollerStopBeforeIdentity(t *testing.T) {
	requests := memory.NewBreakdownRequestRepository()
	poller := services.NewSyncPoller(requests, services.RoleDriver, testPollInterval, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	poller.StartWhenIdentity(ctx, make(chan string))
	cancel()

	done := make(chan struct{})
	go func() {
		poller.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop hung on a poller that never got an identity")
	}
}

func TestPollerStopIsIdleSafe(t *testing.T) {
	requests := memory.NewBreakdownRequestRepository()
	poller := services.NewSyncPoller(requests, services.RoleDispatcher, testPollInterval, logger.NewNop())

	done := make(chan struct{})
	go func() {
		poller.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop hung on a never-started poller")
	}
}

func TestPollerStartTwice(t *testing.T) {
	requests := memory.NewBreakdownRequestRepository()
	poller := services.NewSyncPoller(requests, services.RoleDispatcher, testPollInterval, logger.NewNop())

	if err := poller.Start(context.Background(), ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer poller.Stop()

	if err := poller.Start(context.Background(), ""); err == nil {
		t.Fatal("second Start should fail")
	}
}
