package session

import (
	"context"
	"sync"

	"github.com/erazemk/aquagest/internal/model"
)

// Probe tracks backend reachability for the login screen. It starts out
// pending, moves to reachable or unreachable once a check completes, and
// goes back to pending on Retry.
type Probe struct {
	svc *Service

	mu      sync.Mutex
	state   model.Reachability
	running bool
	done    chan struct{}
}

// NewProbe creates a pending probe.
func NewProbe(svc *Service) *Probe {
	return &Probe{svc: svc, state: model.Pending}
}

// State returns the current reachability state.
func (p *Probe) State() model.Reachability {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start launches a background check unless one is already running or the
// state is settled. The returned channel is closed when the check finishes.
func (p *Probe) Start(ctx context.Context) <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return p.done
	}
	done := make(chan struct{})
	if p.state != model.Pending {
		close(done)
		return done
	}

	p.running = true
	p.done = done
	go func() {
		result := p.svc.CheckReachable(ctx)

		p.mu.Lock()
		p.state = result
		p.running = false
		p.mu.Unlock()
		close(done)
	}()
	return done
}

// Check runs a check synchronously and returns the settled state.
func (p *Probe) Check(ctx context.Context) model.Reachability {
	select {
	case <-p.Start(ctx):
	case <-ctx.Done():
	}
	return p.State()
}

// Retry resets a settled probe to pending so the next Start checks again.
func (p *Probe) Retry() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		p.state = model.Pending
	}
}

// MarkUnreachable records that a call failed to reach the backend.
func (p *Probe) MarkUnreachable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		p.state = model.Unreachable
	}
}
