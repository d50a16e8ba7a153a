package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/aquagest/internal/auth"
	"github.com/erazemk/aquagest/internal/client"
	"github.com/erazemk/aquagest/internal/model"
	"github.com/erazemk/aquagest/internal/router"
	"github.com/erazemk/aquagest/internal/store"
)

const (
	// probeTimeout bounds one background reachability check.
	probeTimeout = 5 * time.Second
	// probeWait is how long the login page waits for a pending check
	// before showing the connecting screen.
	probeWait = 1500 * time.Millisecond
)

type loginPage struct {
	PageData
	State model.Reachability
	Email string
}

// LoginPage handles GET /login. The form is only offered once the backend
// is known to be reachable.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.renderLogin(w, r, &loginPage{PageData: PageData{Title: "Iniciar sesión"}})
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, data *loginPage) {
	data.State = s.probeState(r.Context())
	s.Templates.Render(w, "login.html", data)
}

// probeState starts a check if one is due and waits briefly for it.
func (s *Server) probeState(ctx context.Context) model.Reachability {
	if s.Probe.State() != model.Pending {
		return s.Probe.State()
	}

	checkCtx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	done := s.Probe.Start(checkCtx)
	go func() {
		<-done
		cancel()
	}()

	wait := time.NewTimer(probeWait)
	defer wait.Stop()
	select {
	case <-done:
	case <-wait.C:
	case <-ctx.Done():
	}
	return s.Probe.State()
}

// LoginRetry handles POST /login/retry.
func (s *Server) LoginRetry(w http.ResponseWriter, r *http.Request) {
	s.Probe.Retry()
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	sess, err := s.Sessions.Login(r.Context(), email, password)
	if err != nil {
		var transportErr *client.TransportError
		if errors.As(err, &transportErr) {
			s.Probe.MarkUnreachable()
		}
		s.renderLogin(w, r, &loginPage{
			PageData: PageData{Title: "Iniciar sesión", Error: err.Error()},
			Email:    email,
		})
		return
	}

	token, err := auth.SignSession(s.Secret, sess)
	if err != nil {
		slog.Error("failed to sign session", "error", err)
		s.renderLogin(w, r, &loginPage{
			PageData: PageData{Title: "Iniciar sesión", Error: "Error al iniciar sesión."},
			Email:    email,
		})
		return
	}
	claims, err := auth.ValidateToken(s.Secret, token)
	if err != nil {
		slog.Error("failed to read back session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// A fresh login replaces whatever this id held before.
	s.states.drop(claims.ID)
	state := s.states.get(claims.ID, sess, claims.ExpiresAt.Time)

	setAuthCookie(w, token)
	http.Redirect(w, r, viewPath(state.nav.Current()), http.StatusSeeOther)
}

type registerPage struct {
	PageData
	Form  model.Profile
	Roles []model.Role
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "register.html", &registerPage{
		PageData: PageData{Title: "Registro"},
		Form:     model.Profile{Role: model.RoleRequester},
		Roles:    model.Roles,
	})
}

// RegisterSubmit handles POST /register. A successful registration does not
// log the user in; they are sent to the login page.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	p := model.Profile{
		Name:     strings.TrimSpace(r.FormValue("nombre")),
		Surname:  strings.TrimSpace(r.FormValue("apellidos")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Phone:    strings.TrimSpace(r.FormValue("telefono")),
		Role:     model.Role(r.FormValue("tipo_usuario")),
		Password: r.FormValue("password"),
	}

	if err := s.Sessions.Register(r.Context(), p); err != nil {
		p.Password = ""
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "register.html", &registerPage{
			PageData: PageData{Title: "Registro", Error: err.Error()},
			Form:     p,
			Roles:    model.Roles,
		})
		return
	}

	s.renderLogin(w, r, &loginPage{
		PageData: PageData{Title: "Iniciar sesión", Success: "Usuario registrado. Ya puedes iniciar sesión."},
		Email:    p.Email,
	})
}

// Logout handles POST /logout. The cookie's session id is revoked so a copy
// of the cookie stops working too.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.Secret, cookie.Value); err == nil {
			if err := store.RevokeSession(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
				slog.Error("failed to revoke session", "error", err)
			}
			s.states.drop(claims.ID)
			slog.Info("user logged out", "user_id", claims.UserID)
		}
	}

	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func viewPath(v router.View) string {
	return "/v/" + string(v)
}
