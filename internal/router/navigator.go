package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/erazemk/aquagest/internal/model"
)

var (
	// ErrNoSession is returned when navigating without a session.
	ErrNoSession = errors.New("no active session")
	// ErrViewNotPermitted is returned when the session's role may not reach
	// the requested view.
	ErrViewNotPermitted = errors.New("view not permitted for role")
)

// Navigator holds the current session and view for a single-user client.
// Each activated view gets its own context, cancelled when the view is left,
// so responses that arrive after navigation can be dropped.
type Navigator struct {
	mu         sync.Mutex
	session    *model.Session
	view       View
	generation uint64
	cancel     context.CancelFunc
	ctx        context.Context
}

// NewNavigator creates a navigator with no session.
func NewNavigator() *Navigator {
	return &Navigator{}
}

// Establish starts a session and switches to the role's landing view.
// Any previous session is replaced.
func (n *Navigator) Establish(s *model.Session) View {
	n.mu.Lock()
	defer n.mu.Unlock()

	cp := *s
	n.session = &cp
	n.activate(DefaultView(s.Role))
	return n.view
}

// Navigate switches to v. It fails with ErrNoSession when logged out and with
// ErrViewNotPermitted when v is outside the session's role; the current view
// is unchanged on failure.
func (n *Navigator) Navigate(v View) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.session == nil {
		return ErrNoSession
	}
	if !Permitted(n.session.Role, v) {
		return fmt.Errorf("%w: %s cannot open %s", ErrViewNotPermitted, n.session.Role, v)
	}
	n.activate(v)
	return nil
}

// Logout clears the session and cancels the current view.
func (n *Navigator) Logout() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.cancel != nil {
		n.cancel()
	}
	n.session = nil
	n.view = ""
	n.ctx = nil
	n.cancel = nil
	n.generation++
}

// Session returns a copy of the current session, or nil.
func (n *Navigator) Session() *model.Session {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.session == nil {
		return nil
	}
	cp := *n.session
	return &cp
}

// Current returns the current view; empty when logged out.
func (n *Navigator) Current() View {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.view
}

// Generation increments on every view change, login and logout.
func (n *Navigator) Generation() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.generation
}

// ViewContext returns the context of the current view and its generation.
// The context is cancelled once the view is left. When logged out it
// returns an already-cancelled context.
func (n *Navigator) ViewContext() (context.Context, uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.ctx == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx, n.generation
	}
	return n.ctx, n.generation
}

// IsCurrent reports whether gen is still the active generation.
func (n *Navigator) IsCurrent(gen uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.session != nil && n.generation == gen
}

// activate must be called with n.mu held.
func (n *Navigator) activate(v View) {
	if n.cancel != nil {
		n.cancel()
	}
	n.view = v
	n.generation++
	n.ctx, n.cancel = context.WithCancel(context.Background())
}
