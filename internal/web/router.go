package web

import (
	"database/sql"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/erazemk/aquagest/internal/session"
	webembed "github.com/erazemk/aquagest/web"
)

// Config holds what the web front end needs.
type Config struct {
	DB       *sql.DB
	Secret   string
	Backend  Backend
	Sessions *session.Service
	Probe    *session.Probe

	// LoginRate and LoginBurst throttle POST /login per client IP.
	LoginRate  rate.Limit
	LoginBurst int

	// TrustProxy takes the client IP from X-Forwarded-For. Only set it when
	// a reverse proxy in front of the server overwrites that header.
	TrustProxy bool
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(cfg Config) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        cfg.DB,
		Templates: templates,
		Secret:    cfg.Secret,
		Backend:   cfg.Backend,
		Sessions:  cfg.Sessions,
		Probe:     cfg.Probe,
		states:    newStateStore(),
	}
	s.views, err = s.viewHandlers()
	if err != nil {
		return nil, err
	}

	if cfg.LoginRate == 0 {
		cfg.LoginRate = 1
	}
	if cfg.LoginBurst == 0 {
		cfg.LoginBurst = 5
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(cfg.Secret, cfg.DB)
	loginLimit := LoginRateLimit(cfg.LoginRate, cfg.LoginBurst, cfg.TrustProxy)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.Handle("POST /login", loginLimit(http.HandlerFunc(s.LoginSubmit)))
	mux.HandleFunc("POST /login/retry", s.LoginRetry)
	mux.HandleFunc("GET /register", s.RegisterPage)
	mux.Handle("POST /register", loginLimit(http.HandlerFunc(s.RegisterSubmit)))
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.Home)))
	mux.Handle("GET /v/{view}", cookieAuth(http.HandlerFunc(s.ViewPage)))

	mux.Handle("POST /v/submit-request", cookieAuth(http.HandlerFunc(s.SubmitRequest)))
	mux.Handle("POST /v/issue-tickets", cookieAuth(http.HandlerFunc(s.IssueTicket)))
	mux.Handle("POST /v/issue-tickets/{id}/used", cookieAuth(http.HandlerFunc(s.MarkTicketUsed)))
	mux.Handle("POST /v/reports", cookieAuth(http.HandlerFunc(s.GenerateReport)))

	return mux, nil
}
