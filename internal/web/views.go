package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/aquagest/internal/client"
	"github.com/erazemk/aquagest/internal/model"
	"github.com/erazemk/aquagest/internal/router"
	"github.com/erazemk/aquagest/internal/session"
)

const webViewKey webContextKey = "webview"

// viewRun identifies one activation of a view for one browser.
type viewRun struct {
	view  router.View
	state *browserState
	gen   uint64
}

func withView(ctx context.Context, run *viewRun) context.Context {
	return context.WithValue(ctx, webViewKey, run)
}

func getView(ctx context.Context) *viewRun {
	run, _ := ctx.Value(webViewKey).(*viewRun)
	return run
}

// viewHandlers builds the view route table.
func (s *Server) viewHandlers() (*router.Routes[http.HandlerFunc], error) {
	return router.NewRoutes(map[router.View]http.HandlerFunc{
		router.SubmitRequest:    s.submitRequestView,
		router.ListOwnRequests:  s.ownRequestsView,
		router.ModerateRequests: s.moderateView,
		router.IssueTickets:     s.ticketsView,
		router.Dashboard:        s.dashboardView,
		router.Reports:          s.reportsView,
		router.Administer:       s.administerView,
	})
}

// Home handles GET /, sending the user to their role's landing view.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	http.Redirect(w, r, viewPath(router.DefaultView(sess.Role)), http.StatusSeeOther)
}

// ViewPage handles GET /v/{view}. Known views outside the role are
// forbidden. Unknown ids render the fallback view for roles allowed to see it
// and redirect every other known role to its landing view.
func (s *Server) ViewPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	state := s.states.get(claims.ID, claims.Session(), claims.ExpiresAt.Time)

	id := r.PathValue("view")
	v, known := router.ParseView(id)
	// A role the client does not know still lands on the fallback view.
	landing := v == router.DefaultView(claims.Role) && !router.Permitted(claims.Role, v)
	if !known || landing {
		// The fallback fetches dashboard data, so a known role without it is
		// sent to its own landing view instead.
		if claims.Role.Known() && !router.Permitted(claims.Role, router.Fallback) {
			slog.Debug("unknown view, redirecting to landing view", "view", id, "role", claims.Role)
			http.Redirect(w, r, viewPath(router.DefaultView(claims.Role)), http.StatusSeeOther)
			return
		}
		slog.Debug("unknown view, rendering fallback", "view", id)
		run := &viewRun{view: router.Fallback, state: state}
		s.views.Resolve(id)(w, r.WithContext(withView(r.Context(), run)))
		return
	}

	if err := state.nav.Navigate(v); err != nil {
		if errors.Is(err, router.ErrNoSession) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		slog.Warn("view not permitted", "user_id", claims.UserID, "role", claims.Role, "view", v)
		s.forbidden(w, r)
		return
	}

	// The fetch is abandoned if this browser moves to another view or logs
	// out before it completes.
	viewCtx, gen := state.nav.ViewContext()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(viewCtx, cancel)
	defer stop()

	run := &viewRun{view: v, state: state, gen: gen}
	s.views.Handler(v)(w, r.WithContext(withView(ctx, run)))
}

// superseded reports whether the view that r renders has been left. The
// navigator's generation is only tracked for permitted views.
func superseded(r *http.Request) bool {
	run := getView(r.Context())
	if run == nil || run.gen == 0 {
		return false
	}
	return !run.state.nav.IsCurrent(run.gen)
}

// renderView renders a view page unless the view was left mid-fetch.
func (s *Server) renderView(w http.ResponseWriter, r *http.Request, page string, data any) {
	s.renderViewStatus(w, r, http.StatusOK, page, data)
}

func (s *Server) renderViewStatus(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if superseded(r) {
		slog.Debug("dropping response for a view that was left", "view", getView(r.Context()).view)
		http.Error(w, "view superseded", http.StatusConflict)
		return
	}
	s.Templates.RenderStatus(w, status, page, data)
}

// page returns the base page data for the current request.
func (s *Server) page(r *http.Request, title string) PageData {
	sess := SessionFrom(r.Context())
	pd := PageData{Title: title, Session: sess}
	if sess != nil {
		pd.Menu = router.Menu(sess.Role)
	}
	if run := getView(r.Context()); run != nil {
		pd.View = run.view
	}
	return pd
}

// allow checks that the session may act within v, writing 403 otherwise.
func (s *Server) allow(w http.ResponseWriter, r *http.Request, v router.View) (*model.Session, bool) {
	sess := SessionFrom(r.Context())
	if sess == nil || !router.Permitted(sess.Role, v) {
		s.forbidden(w, r)
		return nil, false
	}
	return sess, true
}

type errorPage struct {
	PageData
	Status int
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	pd := s.page(r, "Acceso denegado")
	pd.Error = "No tienes permiso para ver esta sección."
	s.Templates.RenderStatus(w, http.StatusForbidden, "error.html", &errorPage{PageData: pd, Status: http.StatusForbidden})
}

// backendMessage turns a backend call failure into a message for the page.
func (s *Server) backendMessage(r *http.Request, what string, err error) string {
	slog.ErrorContext(r.Context(), "backend call failed", "call", what, "error", err)

	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		if errors.Is(err, context.Canceled) {
			return "La carga fue cancelada."
		}
		s.Probe.MarkUnreachable()
		return session.UnreachableMessage
	}
	return err.Error()
}
