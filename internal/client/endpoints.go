package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/erazemk/aquagest/internal/model"
)

// Health is the payload of the connectivity probe.
type Health struct {
	Status       string `json:"status"`
	TestResult   int    `json:"test_result"`
	Error        string `json:"error,omitempty"`
	DatabaseInfo struct {
		Users        int `json:"usuarios"`
		Requests     int `json:"solicitudes"`
		SupplyPoints int `json:"puntos_suministro"`
	} `json:"database_info"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Message  string     `json:"message"`
	UserType model.Role `json:"user_type"`
	UserName string     `json:"user_name"`
	UserID   int64      `json:"user_id"`
}

// Registration is the backend's answer to a successful registration.
type Registration struct {
	Message  string     `json:"message"`
	UserID   int64      `json:"user_id"`
	Email    string     `json:"email"`
	UserType model.Role `json:"tipo_usuario"`
}

// CurrentUser describes the backend's view of who is logged in.
type CurrentUser struct {
	LoggedIn bool       `json:"logged_in"`
	UserID   int64      `json:"user_id,omitempty"`
	Email    string     `json:"email,omitempty"`
	UserType model.Role `json:"tipo_usuario,omitempty"`
}

// Ping calls the connectivity probe.
func (c *Client) Ping(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.Call(ctx, http.MethodGet, "/test-db", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Login sends form-encoded credentials.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	var res LoginResult
	if err := c.Call(ctx, http.MethodPost, "/auth/login", Form(form), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, p model.Profile) (*Registration, error) {
	var res Registration
	if err := c.Call(ctx, http.MethodPost, "/usuarios/registro", JSON(p), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CurrentUser asks the backend who it thinks is logged in.
func (c *Client) CurrentUser(ctx context.Context) (*CurrentUser, error) {
	var res CurrentUser
	if err := c.Call(ctx, http.MethodGet, "/auth/current-user", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListRequests returns the requests visible to the logged-in user.
func (c *Client) ListRequests(ctx context.Context) ([]model.Request, error) {
	var res []model.Request
	if err := c.Call(ctx, http.MethodGet, "/solicitudes", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// CreateRequest submits a request. The line items are validated first and
// nothing is sent when they are invalid.
func (c *Client) CreateRequest(ctx context.Context, req model.NewRequest) (*model.CreatedRequest, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}
	var res model.CreatedRequest
	if err := c.Call(ctx, http.MethodPost, "/solicitudes", JSON(req), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListSupplyPoints returns every supply point.
func (c *Client) ListSupplyPoints(ctx context.Context) ([]model.SupplyPoint, error) {
	var res []model.SupplyPoint
	if err := c.Call(ctx, http.MethodGet, "/puntos-suministro", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// DashboardStats returns the admin dashboard counters.
func (c *Client) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var res model.DashboardStats
	if err := c.Call(ctx, http.MethodGet, "/dashboard/stats", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GenerateReport asks the backend to build a report of the given kind.
func (c *Client) GenerateReport(ctx context.Context, kind string) (*model.Report, error) {
	form := url.Values{}
	form.Set("tipo_reporte", kind)

	var res model.Report
	if err := c.Call(ctx, http.MethodPost, "/reportes/generar", Form(form), &res); err != nil {
		return nil, err
	}
	return &res, nil
}
