// Package session establishes who is logged in against the backend.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/erazemk/aquagest/internal/client"
	"github.com/erazemk/aquagest/internal/model"
)

// AuthError is returned when a login or registration is rejected or cannot
// be completed.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// UnreachableMessage is shown when the backend cannot be contacted.
const UnreachableMessage = "No se puede conectar al backend. Verifica que esté corriendo."

// Backend is the subset of the client this package needs.
type Backend interface {
	Ping(ctx context.Context) (*client.Health, error)
	Login(ctx context.Context, email, password string) (*client.LoginResult, error)
	Register(ctx context.Context, p model.Profile) (*client.Registration, error)
}

// Service performs login, registration and reachability checks.
type Service struct {
	backend Backend
}

// NewService creates a session service backed by b.
func NewService(b Backend) *Service {
	return &Service{backend: b}
}

// Login authenticates and returns the new session. On failure no session is
// returned and the error is an *AuthError carrying the server's message.
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &AuthError{Message: "Ingresa tu correo y contraseña."}
	}

	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		slog.WarnContext(ctx, "login failed", "email", email, "error", err)
		return nil, authError(err)
	}

	sess := &model.Session{
		UserID: res.UserID,
		Email:  email,
		Name:   res.UserName,
		Role:   res.UserType,
	}
	slog.InfoContext(ctx, "user logged in", "user_id", sess.UserID, "role", sess.Role)
	return sess, nil
}

// Register creates an account. It never establishes a session; the caller
// must log in separately.
func (s *Service) Register(ctx context.Context, p model.Profile) error {
	p.Email = strings.TrimSpace(p.Email)
	if err := model.Validate(p); err != nil {
		return &AuthError{Message: err.Error(), Err: err}
	}

	res, err := s.backend.Register(ctx, p)
	if err != nil {
		slog.WarnContext(ctx, "registration failed", "email", p.Email, "error", err)
		return authError(err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", res.UserID, "role", res.UserType)
	return nil
}

// CheckReachable probes the backend once. A backend that answers but reports
// a database error is considered unreachable.
func (s *Service) CheckReachable(ctx context.Context) model.Reachability {
	h, err := s.backend.Ping(ctx)
	if err != nil {
		slog.WarnContext(ctx, "backend probe failed", "error", err)
		return model.Unreachable
	}
	if h.Error != "" {
		slog.WarnContext(ctx, "backend database unavailable", "error", h.Error)
		return model.Unreachable
	}
	return model.Reachable
}

func authError(err error) *AuthError {
	var remoteErr *client.RemoteError
	if errors.As(err, &remoteErr) {
		return &AuthError{Message: remoteErr.Message, Err: err}
	}
	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		return &AuthError{Message: UnreachableMessage, Err: err}
	}
	return &AuthError{Message: "Error en la autenticación", Err: err}
}
