package web

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/erazemk/aquagest/internal/model"
	"github.com/erazemk/aquagest/internal/router"
)

type dashboardPage struct {
	PageData
	Stats *model.DashboardStats
}

func (s *Server) dashboardView(w http.ResponseWriter, r *http.Request) {
	data := &dashboardPage{PageData: s.page(r, router.Dashboard.Label())}

	stats, err := s.Backend.DashboardStats(r.Context())
	if err != nil {
		data.Error = s.backendMessage(r, "dashboard stats", err)
	}
	data.Stats = stats
	s.renderView(w, r, "dashboard.html", data)
}

type reportsPage struct {
	PageData
	Kinds   []string
	Reports []model.Report
}

func (s *Server) reportsView(w http.ResponseWriter, r *http.Request) {
	s.renderReports(w, r, http.StatusOK, &reportsPage{PageData: s.page(r, router.Reports.Label())})
}

func (s *Server) renderReports(w http.ResponseWriter, r *http.Request, status int, data *reportsPage) {
	claims := GetWebClaims(r.Context())
	state := s.states.get(claims.ID, claims.Session(), claims.ExpiresAt.Time)

	data.Kinds = model.ReportKinds
	data.Reports = state.Reports()
	data.View = router.Reports
	s.renderViewStatus(w, r, status, "reports.html", data)
}

// GenerateReport handles POST /v/reports. Generated reports are kept for the
// rest of the browser session only.
func (s *Server) GenerateReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.allow(w, r, router.Reports)
	if !ok {
		return
	}

	kind := r.FormValue("tipo_reporte")
	data := &reportsPage{PageData: s.page(r, router.Reports.Label())}
	if !slices.Contains(model.ReportKinds, kind) {
		data.Error = "Tipo de reporte desconocido."
		s.renderReports(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	report, err := s.Backend.GenerateReport(r.Context(), kind)
	if err != nil {
		data.Error = s.backendMessage(r, "generate report", err)
		s.renderReports(w, r, http.StatusBadGateway, data)
		return
	}

	claims := GetWebClaims(r.Context())
	s.states.get(claims.ID, sess, claims.ExpiresAt.Time).addReport(*report)
	slog.Info("report generated", "user_id", sess.UserID, "kind", kind, "rows", report.Total)
	http.Redirect(w, r, viewPath(router.Reports), http.StatusSeeOther)
}

type administerPage struct {
	PageData
	Points []model.SupplyPoint
}

func (s *Server) administerView(w http.ResponseWriter, r *http.Request) {
	data := &administerPage{PageData: s.page(r, router.Administer.Label())}

	points, err := s.Backend.ListSupplyPoints(r.Context())
	if err != nil {
		data.Error = s.backendMessage(r, "list supply points", err)
	}
	data.Points = points
	s.renderView(w, r, "administer.html", data)
}
