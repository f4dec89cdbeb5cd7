package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/ai"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/registry"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/runtime"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/monitoring"
)

// Version is reported by the root endpoint
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	workspace *workspace.Workspace
	sessions  *runtime.Manager
	ai        *ai.Service
	seeder    *registry.Seeder
	metrics   *monitoring.Metrics
	gatherer  prometheus.Gatherer
	logger    *zap.Logger
	started   time.Time
}

// Deps are the collaborators behind the handlers. Seeder, Metrics and
// Gatherer are optional.
type Deps struct {
	Workspace *workspace.Workspace
	Sessions  *runtime.Manager
	AI        *ai.Service
	Seeder    *registry.Seeder
	Metrics   *monitoring.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handlers{
		workspace: deps.Workspace,
		sessions:  deps.Sessions,
		ai:        deps.AI,
		seeder:    deps.Seeder,
		metrics:   deps.Metrics,
		gatherer:  gatherer,
		logger:    logger,
		started:   time.Now(),
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "LowCode Studio (Go)",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	app := h.workspace.Schema()
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"uptime_seconds": time.Since(h.started).Seconds(),
		"schema": gin.H{
			"version": h.workspace.Version(),
			"pages":   len(app.Pages),
			"library": len(app.CustomLibrary),
		},
		"sessions": h.sessions.Count(),
	})
}

// Metrics serves the Prometheus exposition format
func (h *Handlers) Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

// MetricsJSON returns the dashboard counters
func (h *Handlers) MetricsJSON(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics disabled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"timestamp": time.Now(),
		"backend":   h.metrics.Snapshot(),
	})
}
