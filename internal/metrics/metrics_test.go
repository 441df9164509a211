package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveRequest(t *testing.T) {
	r := New()

	r.ObserveRequest("GET", "/api/suppliers", 200, 15*time.Millisecond)
	r.ObserveRequest("GET", "/api/suppliers", 200, 10*time.Millisecond)
	r.ObserveRequest("PUT", "/api/daily-entries/bulk-upsert", 500, time.Millisecond)
	r.ObserveRequest("DELETE", "/api/daily-entries/{id}", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues("GET", "/api/suppliers", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("PUT", "/api/daily-entries/bulk-upsert", "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("DELETE", "/api/daily-entries/{id}")))
	assert.Equal(t, 3, testutil.CollectAndCount(r.duration))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveRequest("GET", "/api/suppliers", 200, time.Millisecond)
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
	assert.NotNil(t, r.Gatherer())
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.ObserveRequest("GET", "/api/summaries/monthly", 200, 5*time.Millisecond)

	path := filepath.Join(t.TempDir(), "milkdesk.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `milkdesk_api_requests_total{method="GET",route="/api/summaries/monthly",status="200"} 1`)
}
