// Package router decides which views a role may reach and which view is
// current.
package router

import "github.com/erazemk/aquagest/internal/model"

// View identifies a screen of the application.
type View string

// Views.
const (
	SubmitRequest    View = "submit-request"
	ListOwnRequests  View = "list-own-requests"
	ModerateRequests View = "moderate-requests"
	IssueTickets     View = "issue-tickets"
	Dashboard        View = "dashboard"
	Reports          View = "reports"
	Administer       View = "administer"
)

// Fallback is the view used for unknown roles and unknown view ids.
const Fallback = Dashboard

// MenuItem is one entry of a role's navigation menu.
type MenuItem struct {
	View  View
	Label string
}

// menus is the fixed role table. The first entry is the role's landing view.
var menus = map[model.Role][]MenuItem{
	model.RoleRequester: {
		{SubmitRequest, "Solicitar Agua"},
		{ListOwnRequests, "Mis Solicitudes"},
	},
	model.RoleAdvisor: {
		{ModerateRequests, "Solicitudes"},
		{IssueTickets, "Tickets"},
	},
	model.RoleResidentAdmin: {
		{Dashboard, "Dashboard"},
		{Reports, "Reportes"},
		{Administer, "Administrar"},
	},
}

var allViews = []View{
	SubmitRequest, ListOwnRequests, ModerateRequests, IssueTickets,
	Dashboard, Reports, Administer,
}

// ParseView converts a view id into a View. ok is false for unknown ids.
func ParseView(id string) (v View, ok bool) {
	for _, view := range allViews {
		if string(view) == id {
			return view, true
		}
	}
	return "", false
}

// Menu returns the ordered menu for role. Unknown roles get no entries.
func Menu(role model.Role) []MenuItem {
	items := menus[role]
	out := make([]MenuItem, len(items))
	copy(out, items)
	return out
}

// Views returns the ordered views role may reach.
func Views(role model.Role) []View {
	items := menus[role]
	out := make([]View, len(items))
	for i, item := range items {
		out[i] = item.View
	}
	return out
}

// DefaultView returns the landing view for role, or Fallback if the role is
// unknown.
func DefaultView(role model.Role) View {
	if items := menus[role]; len(items) > 0 {
		return items[0].View
	}
	return Fallback
}

// Permitted reports whether role may reach v.
func Permitted(role model.Role, v View) bool {
	for _, item := range menus[role] {
		if item.View == v {
			return true
		}
	}
	return false
}

// Label returns the menu label of v.
func (v View) Label() string {
	for _, items := range menus {
		for _, item := range items {
			if item.View == v {
				return item.Label
			}
		}
	}
	return string(v)
}
