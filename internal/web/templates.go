package web

import (
	"context"
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/erazemk/aquagest/internal/model"
	"github.com/erazemk/aquagest/internal/router"
	"github.com/erazemk/aquagest/internal/session"
	webembed "github.com/erazemk/aquagest/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"roleName":        func(r model.Role) string { return r.Label() },
		"requestTypeName": func(t model.RequestType) string { return t.Label() },
		"pointStatusName": func(status string) string {
			switch status {
			case model.PointStatusActive:
				return "Activo"
			case model.PointStatusInactive:
				return "Inactivo"
			default:
				return status
			}
		},
		"ticketStatusName": func(status string) string {
			switch status {
			case model.TicketStatusActive:
				return "Activo"
			case model.TicketStatusUsed:
				return "Usado"
			default:
				return status
			}
		},
		"timestamp": func(ts model.Timestamp) string {
			if ts.IsZero() {
				return "-"
			}
			return ts.Format("2006-01-02 15:04")
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("2006-01-02")
		},
		"columns": reportColumns,
	}
}

// reportColumns returns the sorted keys of the first row.
func reportColumns(rows []map[string]any) []string {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

var pages = []string{
	"login.html",
	"register.html",
	"error.html",
	"submit_request.html",
	"requests.html",
	"tickets.html",
	"dashboard.html",
	"reports.html",
	"administer.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data and a 200 status.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a template with the given status code.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	Session *model.Session
	Menu    []router.MenuItem
	View    router.View
	Error   string
	Success string
}

// Backend is the part of the REST client the view units use.
type Backend interface {
	ListRequests(ctx context.Context) ([]model.Request, error)
	CreateRequest(ctx context.Context, req model.NewRequest) (*model.CreatedRequest, error)
	ListSupplyPoints(ctx context.Context) ([]model.SupplyPoint, error)
	DashboardStats(ctx context.Context) (*model.DashboardStats, error)
	GenerateReport(ctx context.Context, kind string) (*model.Report, error)
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	Secret    string
	Backend   Backend
	Sessions  *session.Service
	Probe     *session.Probe

	states *stateStore
	views  *router.Routes[http.HandlerFunc]
}
