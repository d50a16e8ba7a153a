package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/aquagest/internal/model"
)

func newTestBackend(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return New(server.URL)
}

func TestCallRemoteErrorUsesDetail(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"x"}`))
	})

	err := c.Call(context.Background(), http.MethodGet, "/anything", nil, nil)
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "x", remoteErr.Message)
	assert.Equal(t, http.StatusBadRequest, remoteErr.StatusCode)
	assert.Equal(t, "x", err.Error())
}

func TestCallRemoteErrorWithoutDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"no detail field", `{"error":"boom"}`},
		{"non-string detail", `{"detail":[{"msg":"field required"}]}`},
		{"not json", `<html>bad gateway</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(tt.body))
			})
			err := c.Call(context.Background(), http.MethodGet, "/x", nil, nil)
			var remoteErr *RemoteError
			require.ErrorAs(t, err, &remoteErr)
			assert.Equal(t, "Error 502", remoteErr.Message)
		})
	}
}

func TestCallSuccessReturnsPayloadUnchanged(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"a":1}`))
	})

	var raw json.RawMessage
	require.NoError(t, c.Call(context.Background(), http.MethodGet, "/a", nil, &raw))
	assert.JSONEq(t, `{"a":1}`, string(raw))
}

func TestCallTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := New(url)
	err := c.Call(context.Background(), http.MethodGet, "/test-db", nil, nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.NotNil(t, transportErr.Unwrap())
}

func TestCallHonoursContext(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Call(ctx, http.MethodGet, "/slow", nil, nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, errors.Is(err, context.Canceled))
}

// captured records the last request a test backend received.
type captured struct {
	mu          sync.Mutex
	path        string
	contentType string
	body        string
	calls       int
}

func (c *captured) record(r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = r.URL.Path
	c.contentType = r.Header.Get("Content-Type")
	c.body = string(data)
	c.calls++
}

func (c *captured) last() (path, contentType, body string, calls int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path, c.contentType, c.body, c.calls
}

func TestContentTypes(t *testing.T) {
	var rec captured
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	require.NoError(t, c.Call(ctx, http.MethodPost, "/j", JSON(map[string]int{"a": 1}), nil))
	_, gotType, gotBody, _ := rec.last()
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, `{"a":1}`, gotBody)

	_, err := c.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	_, gotType, gotBody, _ = rec.last()
	assert.NotContains(t, gotType, "application/json")
	assert.Equal(t, "application/x-www-form-urlencoded", gotType)
	assert.Equal(t, "email=ana%40example.com&password=secret", gotBody)

	require.NoError(t, c.Call(ctx, http.MethodGet, "/g", nil, nil))
	_, gotType, _, _ = rec.last()
	assert.Empty(t, gotType)
}

func TestBaseURLJoin(t *testing.T) {
	var rec captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	c := New(server.URL + "/")
	_, err := c.ListSupplyPoints(context.Background())
	require.NoError(t, err)
	gotPath, _, _, _ := rec.last()
	assert.Equal(t, "/puntos-suministro", gotPath)
	assert.Equal(t, DefaultBaseURL, New("").BaseURL())
}

func TestCreateRequestValidatesBeforeDispatch(t *testing.T) {
	var rec captured
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Write([]byte(`{"message":"ok","solicitud_id":1,"codigo":"x"}`))
	})
	ctx := context.Background()

	_, err := c.CreateRequest(ctx, model.NewRequest{
		Code: model.NewRequestCode(),
		Type: model.RequestTypeDomiciliary,
	})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	_, err = c.CreateRequest(ctx, model.NewRequest{
		Code:  model.NewRequestCode(),
		Type:  model.RequestTypeDomiciliary,
		Items: []model.LineItem{{PointID: 1, Quantity: decimal.Zero}},
	})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
	_, _, _, calls := rec.last()
	assert.Equal(t, 0, calls, "invalid requests must not reach the backend")
}

func TestCreateRequestPayload(t *testing.T) {
	var rec captured
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Write([]byte(`{"message":"ok","solicitud_id":7,"codigo":"SOL-1"}`))
	})

	code := model.NewRequestCode()
	res, err := c.CreateRequest(context.Background(), model.NewRequest{
		Code:  code,
		Type:  model.RequestTypeEmergency,
		Items: []model.LineItem{{PointID: 2, Quantity: decimal.NewFromInt(120)}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.ID)

	path, _, body, _ := rec.last()
	assert.Equal(t, "/solicitudes", path)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Equal(t, code, payload["codigo_solicitud"])
	assert.Equal(t, "EMERGENCIA", payload["tipo_solicitud"])
	items := payload["detalles"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, float64(2), item["id_punto"])
	assert.Equal(t, "120", item["cantidad_solicitada"])
}

func TestListRequestsDecodesBackendShape(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id_solicitud":3,"codigo_solicitud":"SOL-123456","tipo_solicitud":"DOMICILIARIA",
			"id_usuario_solicitante":9,"fecha_solicitud":"2024-01-15T10:30:00.512000","id_asesor":null}]`))
	})

	reqs, err := c.ListRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, int64(3), reqs[0].ID)
	assert.Equal(t, int64(9), reqs[0].RequesterID)
	assert.Nil(t, reqs[0].AdvisorID)
	assert.Equal(t, 2024, reqs[0].SubmittedAt.Year())
}

func TestListSupplyPointsDecodesDecimals(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id_punto":1,"codigo_punto":"PUNTO-001","estado":"ACTIVO",
			"direccion":"Plaza Principal","capacidad":1000.0}]`))
	})

	points, err := c.ListSupplyPoints(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, points[0].Capacity.Equal(decimal.NewFromInt(1000)))
	assert.True(t, points[0].Active())
}

func TestGenerateReport(t *testing.T) {
	var rec captured
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Write([]byte(`{"tipo":"Reporte de Puntos","descripcion":"Listado","datos":[{"id":1}],
			"fecha_generacion":"2024-01-15 10:30:00","total_registros":1,"sistema":"AquaGest v1.0"}`))
	})

	report, err := c.GenerateReport(context.Background(), model.ReportPoints)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Len(t, report.Rows, 1)
	assert.Equal(t, 10, report.GeneratedAt.Hour())

	_, contentType, body, _ := rec.last()
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "tipo_reporte=puntos", body)
}

func TestDashboardStats(t *testing.T) {
	c := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total_usuarios":4,"total_solicitudes":10,"total_puntos":3,
			"puntos_activos":2,"solicitudes_hoy":1,"total_consultas":0}`))
	})

	stats, err := c.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DashboardStats{
		TotalUsers: 4, TotalRequests: 10, TotalPoints: 3, ActivePoints: 2, RequestsToday: 1,
	}, *stats)
}
