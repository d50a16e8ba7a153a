package model

// Report kinds accepted by the report generator.
const (
	ReportRequests = "solicitudes"
	ReportUsers    = "usuarios"
	ReportPoints   = "puntos"
)

// ReportKinds lists the report kinds in display order.
var ReportKinds = []string{ReportRequests, ReportUsers, ReportPoints}

// Report is a generated report.
type Report struct {
	Type        string           `json:"tipo"`
	Description string           `json:"descripcion"`
	Rows        []map[string]any `json:"datos"`
	GeneratedAt Timestamp        `json:"fecha_generacion"`
	Total       int              `json:"total_registros"`
	System      string           `json:"sistema,omitempty"`
}

// DashboardStats holds the counters shown on the admin dashboard.
type DashboardStats struct {
	TotalUsers    int `json:"total_usuarios"`
	TotalRequests int `json:"total_solicitudes"`
	TotalPoints   int `json:"total_puntos"`
	ActivePoints  int `json:"puntos_activos"`
	RequestsToday int `json:"solicitudes_hoy"`
	TotalQueries  int `json:"total_consultas"`
}
