package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"autoassist/internal/models"
	"autoassist/internal/repositories/interfaces"
	"autoassist/pkg/logger"
)

// ViewerRole selects the filter a polling view applies to the request set.
type ViewerRole string

const (
	RoleDispatcher ViewerRole = "dispatcher"
	RoleDriver     ViewerRole = "driver"
	RoleCustomer   ViewerRole = "customer"
)

// DefaultPollInterval matches the dashboards' 30-second refresh cadence.
const DefaultPollInterval = 30 * time.Second

// SyncPoller gives one viewing context an eventually-consistent view of the
// request store without a push channel. The first fetch happens immediately
// on start, then on a fixed cadence; each successful tick replaces the
// local view wholesale. A failed tick keeps the previous (stale but
// present) view and is retried on the next tick.
type SyncPoller struct {
	requestRepo interfaces.BreakdownRequestRepository
	role        ViewerRole
	interval    time.Duration
	logger      *logger.Logger

	mu       sync.RWMutex
	identity string
	view     *ViewCache
	lastErr  error

	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	waiting bool
}

var errPollerStarted = errors.New("sync poller already started")

func NewSyncPoller(requestRepo interfaces.BreakdownRequestRepository, role ViewerRole, interval time.Duration, log *logger.Logger) *SyncPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &SyncPoller{
		requestRepo: requestRepo,
		role:        role,
		interval:    interval,
		logger:      log,
		view:        NewViewCache(),
		done:        make(chan struct{}),
	}
}

// Start begins polling with a known identity ("" for the dispatcher view,
// which watches everything). The first fetch runs before Start returns so
// the view is populated immediately.
func (p *SyncPoller) Start(ctx context.Context, identity string) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return errPollerStarted
	}
	p.started = true
	p.identity = identity

	ctx, cancel := context.WithCancel(ctx)
	if prev := p.cancel; prev != nil {
		p.cancel = func() { cancel(); prev() }
	} else {
		p.cancel = cancel
	}
	p.mu.Unlock()

	p.tick(ctx)
	go p.run(ctx)

	return nil
}

// StartWhenIdentity defers polling until the viewer identity resolves
// (e.g. the login completes), then starts immediately and keeps the normal
// cadence from that point. If the context dies first, no timer is ever
// acquired.
func (p *SyncPoller) StartWhenIdentity(ctx context.Context, identityCh <-chan string) {
	ctx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	p.waiting = true
	p.cancel = cancel
	p.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			close(p.done)
		case identity := <-identityCh:
			p.Start(ctx, identity)
		}
	}()
}

func (p *SyncPoller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	// The ticker is the only held resource; it is released on every exit
	// path so a torn-down view leaves no background work behind.
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick is one reconciliation pass: authoritative fetch, role filter, then
// wholesale replacement of the local view.
func (p *SyncPoller) tick(ctx context.Context) {
	requests, err := p.fetch(ctx)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()

		// Previous snapshot stays on display; this tick is lost, the
		// next one retries.
		p.logger.WithError(err).WithField("role", string(p.role)).
			Warn("Poll tick failed, keeping stale view")
		return
	}

	p.view.ReplaceAll(requests, time.Now())

	p.mu.Lock()
	p.lastErr = nil
	p.mu.Unlock()
}

func (p *SyncPoller) fetch(ctx context.Context) ([]*models.BreakdownRequest, error) {
	p.mu.RLock()
	identity := p.identity
	p.mu.RUnlock()

	switch p.role {
	case RoleDriver:
		return p.requestRepo.ListByDriver(ctx, identity)
	case RoleCustomer:
		return p.requestRepo.ListByCustomer(ctx, identity)
	default:
		return p.requestRepo.List(ctx)
	}
}

// Stop cancels the polling loop and waits for it to wind down. Safe to call
// once per poller, including one that never got past StartWhenIdentity.
func (p *SyncPoller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	idle := !p.started && !p.waiting
	p.mu.Unlock()

	if idle {
		return
	}
	if cancel != nil {
		cancel()
	}
	<-p.done
}

// Snapshot returns the current local view.
func (p *SyncPoller) Snapshot() []*models.BreakdownRequest {
	return p.view.Snapshot()
}

// Lookup fetches one request from the local view cache.
func (p *SyncPoller) Lookup(id string) (*models.BreakdownRequest, time.Time, bool) {
	return p.view.Get(id)
}

// LastError reports whether the most recent tick failed.
func (p *SyncPoller) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}
