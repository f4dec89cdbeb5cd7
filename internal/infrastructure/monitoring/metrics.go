package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Flow metrics
	FlowRuns       *prometheus.CounterVec
	FlowDuration   *prometheus.HistogramVec
	ActionsTotal   *prometheus.CounterVec
	ActionDuration *prometheus.HistogramVec
	FlowsInFlight  prometheus.Gauge

	// Editing metrics
	SchemaEdits    *prometheus.CounterVec
	SchemaNodes    prometheus.Gauge
	LibraryEntries prometheus.Gauge

	// Storage metrics
	StorageOps      *prometheus.CounterVec
	StorageDuration *prometheus.HistogramVec

	// AI metrics
	AICalls    *prometheus.CounterVec
	AIDuration prometheus.Histogram

	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests   int64   `json:"total_requests"`
	TotalErrors     int64   `json:"total_errors"`
	FlowsCompleted  int64   `json:"flows_completed"`
	FlowsAborted    int64   `json:"flows_aborted"`
	FlowsSkipped    int64   `json:"flows_skipped"`
	EditsApplied    int64   `json:"edits_applied"`
	EditsRejected   int64   `json:"edits_rejected"`
	ActiveSessions  int64   `json:"active_sessions"`
	TotalDuration   float64 `json:"total_duration"` // sum of all request durations
	RequestCount    int64   `json:"request_count"`  // count for averaging
	UptimeSeconds   float64 `json:"uptime_seconds"`
	AverageDuration float64 `json:"average_duration"`
}

// NewMetrics creates a metrics collector on the default Prometheus registry
func NewMetrics() *Metrics {
	m := newMetrics(prometheus.DefaultRegisterer)
	go m.updateUptime()
	return m
}

// NewMetricsWithRegistry registers on reg. Tests pass a fresh
// prometheus.NewRegistry() so collectors never clash.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	latency := []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studio_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: latency,
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studio_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studio_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		FlowRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_flow_runs_total",
				Help: "Action flow executions by final status",
			},
			[]string{"status"},
		),
		FlowDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studio_flow_duration_seconds",
				Help:    "Action flow wall time",
				Buckets: latency,
			},
			[]string{"status"},
		),
		ActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_actions_total",
				Help: "Executed actions by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		ActionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studio_action_duration_seconds",
				Help:    "Single action execution time",
				Buckets: latency,
			},
			[]string{"kind"},
		),
		FlowsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "studio_flows_in_flight",
				Help: "Flows currently running",
			},
		),

		SchemaEdits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_schema_edits_total",
				Help: "Structural schema edits by operation and result",
			},
			[]string{"op", "result"},
		),
		SchemaNodes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "studio_schema_nodes",
				Help: "Component nodes across all pages of the current schema",
			},
		),
		LibraryEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "studio_library_entries",
				Help: "Entries in the custom component library",
			},
		),

		StorageOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_storage_operations_total",
				Help: "Persistence operations by driver, op and status",
			},
			[]string{"driver", "op", "status"},
		),
		StorageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studio_storage_duration_seconds",
				Help:    "Persistence operation duration",
				Buckets: latency,
			},
			[]string{"driver", "op"},
		),

		AICalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_ai_calls_total",
				Help: "AI completions by response kind and status",
			},
			[]string{"kind", "status"},
		),
		AIDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "studio_ai_duration_seconds",
				Help:    "AI completion latency",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "studio_sessions_active",
				Help: "Number of live render sessions",
			},
		),
		SessionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "studio_sessions_total",
				Help: "Render sessions created",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "studio_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studio_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "studio_uptime_seconds",
				Help: "Backend uptime in seconds",
			},
		),
	}
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// FlowStarted marks a flow as running
func (m *Metrics) FlowStarted() {
	m.FlowsInFlight.Inc()
}

// RecordFlow records a finished flow run
func (m *Metrics) RecordFlow(status string, duration time.Duration) {
	m.FlowsInFlight.Dec()
	m.FlowRuns.WithLabelValues(status).Inc()
	m.FlowDuration.WithLabelValues(status).Observe(duration.Seconds())

	m.mu.Lock()
	switch status {
	case "completed":
		m.snapshot.FlowsCompleted++
	case "aborted":
		m.snapshot.FlowsAborted++
	}
	m.mu.Unlock()
}

// RecordFlowSkipped counts a trigger dropped by the concurrency policy
func (m *Metrics) RecordFlowSkipped() {
	m.FlowRuns.WithLabelValues("skipped").Inc()
	m.mu.Lock()
	m.snapshot.FlowsSkipped++
	m.mu.Unlock()
}

// RecordAction records a single executed action
func (m *Metrics) RecordAction(kind, status string, duration time.Duration) {
	m.ActionsTotal.WithLabelValues(kind, status).Inc()
	m.ActionDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordEdit records a structural edit attempt
func (m *Metrics) RecordEdit(op string, applied bool) {
	result := "applied"
	if !applied {
		result = "rejected"
	}
	m.SchemaEdits.WithLabelValues(op, result).Inc()

	m.mu.Lock()
	if applied {
		m.snapshot.EditsApplied++
	} else {
		m.snapshot.EditsRejected++
	}
	m.mu.Unlock()
}

// SetSchemaSize publishes node and library counts of the current schema
func (m *Metrics) SetSchemaSize(nodes, libraryEntries int) {
	m.SchemaNodes.Set(float64(nodes))
	m.LibraryEntries.Set(float64(libraryEntries))
}

// RecordStorage records a persistence call
func (m *Metrics) RecordStorage(driver, op, status string, duration time.Duration) {
	m.StorageOps.WithLabelValues(driver, op, status).Inc()
	m.StorageDuration.WithLabelValues(driver, op).Observe(duration.Seconds())
}

// RecordAICall records one AI completion
func (m *Metrics) RecordAICall(kind, status string, duration time.Duration) {
	m.AICalls.WithLabelValues(kind, status).Inc()
	m.AIDuration.Observe(duration.Seconds())
}

// SetSessionsActive sets the number of live sessions
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveSessions = int64(count)
	m.mu.Unlock()
}

// IncSessionsTotal increments the created sessions counter
func (m *Metrics) IncSessionsTotal() {
	m.SessionsTotal.Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// Snapshot returns the JSON-friendly counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	if snap.RequestCount > 0 {
		snap.AverageDuration = snap.TotalDuration / float64(snap.RequestCount)
	}
	return snap
}
