package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFlow(t *testing.T) {
	m := NewMetricsWithRegistry(prometheus.NewRegistry())

	m.FlowStarted()
	m.RecordFlow("completed", 10*time.Millisecond)
	m.FlowStarted()
	m.RecordFlow("aborted", time.Millisecond)
	m.RecordFlowSkipped()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.FlowRuns.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FlowRuns.WithLabelValues("aborted")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.FlowsInFlight))

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.FlowsCompleted)
	assert.Equal(t, int64(1), snap.FlowsAborted)
	assert.Equal(t, int64(1), snap.FlowsSkipped)
}

func TestRecordEdit(t *testing.T) {
	m := NewMetricsWithRegistry(prometheus.NewRegistry())

	m.RecordEdit("move", true)
	m.RecordEdit("move", false)
	m.RecordEdit("insert", true)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SchemaEdits.WithLabelValues("move", "rejected")))
	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.EditsApplied)
	assert.Equal(t, int64(1), snap.EditsRejected)
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetricsWithRegistry(prometheus.NewRegistry())

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/schema", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for _, path := range []string{"/schema", "/missing"} {
		w := httptest.NewRecorder()
		req, err := http.NewRequest(http.MethodGet, path, nil)
		require.NoError(t, err)
		router.ServeHTTP(w, req)
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/schema", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
}

func TestTimerNilMetrics(t *testing.T) {
	NewTimer(nil, "memory", "load").Stop("success")

	m := NewMetricsWithRegistry(prometheus.NewRegistry())
	NewTimer(m, "bolt", "save").Stop("success")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StorageOps.WithLabelValues("bolt", "save", "success")))
}
