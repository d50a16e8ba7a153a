package model

// Role is the account type the backend assigns to a user. The values are the
// backend's own strings.
type Role string

// Roles.
const (
	RoleRequester     Role = "USUARIO"
	RoleAdvisor       Role = "ASESOR"
	RoleResidentAdmin Role = "RESIDENTE"
)

// Roles lists every known role in menu order.
var Roles = []Role{RoleRequester, RoleAdvisor, RoleResidentAdmin}

// Known reports whether r is one of the roles the client understands.
func (r Role) Known() bool {
	switch r {
	case RoleRequester, RoleAdvisor, RoleResidentAdmin:
		return true
	}
	return false
}

// Label returns the human-readable role name shown in the UI.
func (r Role) Label() string {
	switch r {
	case RoleRequester:
		return "Usuario"
	case RoleAdvisor:
		return "Asesor"
	case RoleResidentAdmin:
		return "Residente"
	default:
		return string(r)
	}
}

// Session is the identity of the logged-in user.
type Session struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// Reachability is the outcome of the backend connectivity probe.
type Reachability string

// Reachability states.
const (
	Pending     Reachability = "pending"
	Reachable   Reachability = "reachable"
	Unreachable Reachability = "unreachable"
)
