package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStartSpanPropagatesTrace(t *testing.T) {
	tracer := New("test", zap.NewNop())
	defer tracer.Close()

	parent, ctx := tracer.StartSpan(context.Background(), "parent")
	child, ctx := tracer.StartSpan(ctx, "child")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.Equal(t, parent.TraceID, GetTraceID(ctx))

	h := http.Header{}
	for k, v := range Headers(ctx) {
		h.Set(k, v)
	}
	traceID, spanID := FromHeader(h)
	assert.Equal(t, parent.TraceID, traceID)
	assert.Equal(t, child.SpanID, spanID)
}

func TestTraceReportsErrors(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tracer := New("test", zap.New(core))

	boom := errors.New("boom")
	err := tracer.Trace(context.Background(), "flow.run", func(ctx context.Context, span *Span) error {
		span.SetTag("flow_id", "flow-1")
		return boom
	})
	require.ErrorIs(t, err, boom)

	tracer.Close()
	entries := logs.FilterMessage("span completed with error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "flow-1", entries[0].ContextMap()["tag.flow_id"])
}

func TestNilTracerRunsFunction(t *testing.T) {
	var tracer *Tracer
	called := false
	err := tracer.Trace(context.Background(), "x", func(ctx context.Context, span *Span) error {
		called = true
		span.SetTag("k", "v")
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestSubmitAfterClose(t *testing.T) {
	tracer := New("test", nil)
	tracer.Close()
	tracer.Close()
	span, _ := tracer.StartSpan(context.Background(), "late")
	tracer.Submit(span)
	assert.Zero(t, tracer.Dropped())
}

func TestHeadersEmptyWithoutTrace(t *testing.T) {
	assert.Empty(t, Headers(context.Background()))
}

func TestHTTPMiddlewareSetsHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := New("test", nil)
	defer tracer.Close()

	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	var seen TraceID
	router.GET("/ping", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-ID", "req_incoming")
	router.ServeHTTP(w, req)

	assert.Equal(t, TraceID("req_incoming"), seen)
	assert.Equal(t, "req_incoming", w.Header().Get("X-Trace-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Span-ID"))
}
