package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erazemk/aquagest/internal/client"
	"github.com/erazemk/aquagest/internal/model"
)

func TestProbeTransitions(t *testing.T) {
	var up atomic.Bool
	up.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !up.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok","test_result":1}`))
	}))
	t.Cleanup(server.Close)

	probe := NewProbe(NewService(client.New(server.URL)))
	ctx := context.Background()

	assert.Equal(t, model.Pending, probe.State())
	assert.Equal(t, model.Reachable, probe.Check(ctx))

	// A settled probe does not re-check on its own.
	up.Store(false)
	assert.Equal(t, model.Reachable, probe.Check(ctx))

	probe.Retry()
	assert.Equal(t, model.Pending, probe.State())
	assert.Equal(t, model.Unreachable, probe.Check(ctx))

	up.Store(true)
	probe.Retry()
	<-probe.Start(ctx)
	assert.Equal(t, model.Reachable, probe.State())

	probe.MarkUnreachable()
	assert.Equal(t, model.Unreachable, probe.State())
}
