// Package client talks to the AquaGest REST backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erazemk/aquagest/internal/obs"
)

// DefaultBaseURL is the backend origin used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// RemoteError is returned when the backend answers with a non-2xx status.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// TransportError is returned when no response was received at all.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend unreachable: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Body is a request body together with its content type.
type Body interface {
	encode() (io.Reader, string, error)
}

type jsonBody struct{ v any }

func (b jsonBody) encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", fmt.Errorf("encoding json body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

type formBody struct{ v url.Values }

func (b formBody) encode() (io.Reader, string, error) {
	return strings.NewReader(b.v.Encode()), "application/x-www-form-urlencoded", nil
}

// JSON returns a body that sends v as JSON.
func JSON(v any) Body { return jsonBody{v} }

// Form returns a body that sends v form-encoded. It never carries the JSON
// content type.
func Form(v url.Values) Body { return formBody{v} }

// Client performs calls against a fixed backend origin.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call performs one request and decodes the JSON response into out, which
// may be nil. A *json.RawMessage receives the payload unchanged.
// Non-2xx responses fail with *RemoteError, network failures with
// *TransportError. Calls are never retried.
func (c *Client) Call(ctx context.Context, method, path string, body Body, out any) error {
	start := time.Now()
	err := c.do(ctx, method, path, body, out)

	outcome := obs.OutcomeOK
	var remoteErr *RemoteError
	var transportErr *TransportError
	switch {
	case errors.As(err, &remoteErr):
		outcome = obs.OutcomeRemoteError
	case errors.As(err, &transportErr):
		outcome = obs.OutcomeTransportError
	}
	obs.ObserveBackendCall(method, path, outcome, time.Since(start))

	if err != nil {
		slog.DebugContext(ctx, "backend call failed", "method", method, "path", path, "error", err)
	} else {
		slog.DebugContext(ctx, "backend call", "method", method, "path", path, "duration", time.Since(start).Round(time.Millisecond))
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body Body, out any) error {
	var reader io.Reader
	var contentType string
	if body != nil {
		var err error
		reader, contentType, err = body.encode()
		if err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Cause: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts the backend's detail message from an error body.
func errorMessage(status int, data []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(envelope.Detail, &detail); err == nil && detail != "" {
			return detail
		}
	}
	return fmt.Sprintf("Error %d", status)
}
