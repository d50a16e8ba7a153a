package web

import (
	"sync"
	"time"

	"github.com/erazemk/aquagest/internal/model"
	"github.com/erazemk/aquagest/internal/router"
)

// maxReports caps how many reports one browser session keeps.
const maxReports = 20

// browserState is what the server remembers about one logged-in browser.
// It lives only in memory and is keyed by the cookie's session id.
type browserState struct {
	nav     *router.Navigator
	expires time.Time

	mu      sync.Mutex
	reports []model.Report
}

// addReport records a report, newest first.
func (b *browserState) addReport(r model.Report) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reports = append([]model.Report{r}, b.reports...)
	if len(b.reports) > maxReports {
		b.reports = b.reports[:maxReports]
	}
}

// Reports returns the reports generated in this session, newest first.
func (b *browserState) Reports() []model.Report {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Report, len(b.reports))
	copy(out, b.reports)
	return out
}

type stateStore struct {
	mu     sync.Mutex
	states map[string]*browserState
}

func newStateStore() *stateStore {
	return &stateStore{states: make(map[string]*browserState)}
}

// get returns the state for a session id, establishing a navigator for s
// when none exists yet (first request, or after a server restart).
func (st *stateStore) get(id string, s *model.Session, expires time.Time) *browserState {
	st.mu.Lock()
	defer st.mu.Unlock()

	if b, ok := st.states[id]; ok {
		return b
	}

	now := time.Now()
	for k, b := range st.states {
		if now.After(b.expires) {
			b.nav.Logout()
			delete(st.states, k)
		}
	}

	nav := router.NewNavigator()
	nav.Establish(s)
	b := &browserState{nav: nav, expires: expires}
	st.states[id] = b
	return b
}

// drop logs the navigator out and forgets the session.
func (st *stateStore) drop(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if b, ok := st.states[id]; ok {
		b.nav.Logout()
		delete(st.states, id)
	}
}
