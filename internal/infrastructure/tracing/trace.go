package tracing

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/id"
)

// Propagation headers
const (
	TraceHeader = "X-Trace-ID"
	SpanHeader  = "X-Span-ID"
)

const spanBuffer = 1024

type (
	TraceID string
	SpanID  string
)

// Span is one timed operation: an API request or a flow run
type Span struct {
	TraceID  TraceID
	SpanID   SpanID
	ParentID SpanID
	Name     string
	Start    time.Time
	Duration time.Duration
	Status   int
	Err      error
	Tags     map[string]string
}

// SetTag records a string attribute on the span
func (s *Span) SetTag(key, value string) { s.Tags[key] = value }

// SetError marks the span failed
func (s *Span) SetError(err error) {
	s.Err = err
	if s.Status == 0 {
		s.Status = http.StatusInternalServerError
	}
}

// SetStatus records the HTTP status of a request span
func (s *Span) SetStatus(code int) { s.Status = code }

// Finish stamps the span duration
func (s *Span) Finish() { s.Duration = time.Since(s.Start) }

// Tracer reports finished spans through zap from a background collector.
// Spans submitted while the buffer is full are counted and dropped.
type Tracer struct {
	service string
	logger  *zap.Logger
	spans   chan *Span
	done    chan struct{}
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// New starts a tracer for service
func New(service string, logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{
		service: service,
		logger:  logger,
		spans:   make(chan *Span, spanBuffer),
		done:    make(chan struct{}),
	}
	go t.collect()
	return t
}

// StartSpan opens a span under the trace carried by ctx, or a new trace
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = TraceID(id.NewRequestID())
	}
	span := &Span{
		TraceID:  traceID,
		SpanID:   SpanID(id.NewRequestID()),
		ParentID: spanFrom(ctx),
		Name:     name,
		Start:    time.Now(),
		Tags:     make(map[string]string),
	}
	return span, WithTrace(ctx, traceID, span.SpanID)
}

// Trace runs fn inside a span and submits it. A nil tracer just runs fn.
func (t *Tracer) Trace(ctx context.Context, name string, fn func(ctx context.Context, span *Span) error) error {
	if t == nil {
		return fn(ctx, &Span{Tags: map[string]string{}})
	}
	span, ctx := t.StartSpan(ctx, name)
	err := fn(ctx, span)
	if err != nil {
		span.SetError(err)
	}
	span.Finish()
	t.Submit(span)
	return err
}

// Submit queues a finished span; it never blocks
func (t *Tracer) Submit(span *Span) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	select {
	case t.spans <- span:
	default:
		t.dropped.Add(1)
	}
}

// Dropped reports how many spans were discarded on a full buffer
func (t *Tracer) Dropped() int64 { return t.dropped.Load() }

// Close drains queued spans and stops the collector
func (t *Tracer) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.spans)
	t.mu.Unlock()
	<-t.done

	if n := t.Dropped(); n > 0 {
		t.logger.Warn("spans dropped on full buffer", zap.Int64("count", n))
	}
}

func (t *Tracer) collect() {
	defer close(t.done)
	for span := range t.spans {
		t.report(span)
	}
}

func (t *Tracer) report(span *Span) {
	fields := make([]zap.Field, 0, 6+len(span.Tags))
	fields = append(fields,
		zap.String("service", t.service),
		zap.String("operation", span.Name),
		zap.String("trace_id", string(span.TraceID)),
		zap.String("span_id", string(span.SpanID)),
		zap.Duration("duration", span.Duration),
	)
	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(span.ParentID)))
	}
	for k, v := range span.Tags {
		fields = append(fields, zap.String("tag."+k, v))
	}

	if span.Err != nil {
		t.logger.Error("span completed with error", append(fields, zap.Error(span.Err))...)
		return
	}
	t.logger.Debug("span completed", fields...)
}

type ctxKey int

const (
	traceKey ctxKey = iota
	spanKey
)

// WithTrace returns ctx carrying the given trace and parent span ids.
// Empty ids leave ctx unchanged.
func WithTrace(ctx context.Context, traceID TraceID, spanID SpanID) context.Context {
	if traceID != "" {
		ctx = context.WithValue(ctx, traceKey, traceID)
	}
	if spanID != "" {
		ctx = context.WithValue(ctx, spanKey, spanID)
	}
	return ctx
}

// GetTraceID returns the trace id carried by ctx, or ""
func GetTraceID(ctx context.Context) TraceID {
	traceID, _ := ctx.Value(traceKey).(TraceID)
	return traceID
}

func spanFrom(ctx context.Context) SpanID {
	spanID, _ := ctx.Value(spanKey).(SpanID)
	return spanID
}

// Headers returns the propagation headers for the trace in ctx
func Headers(ctx context.Context) map[string]string {
	h := make(map[string]string, 2)
	if traceID := GetTraceID(ctx); traceID != "" {
		h[TraceHeader] = string(traceID)
	}
	if spanID := spanFrom(ctx); spanID != "" {
		h[SpanHeader] = string(spanID)
	}
	return h
}

// FromHeader reads incoming propagation headers
func FromHeader(h http.Header) (TraceID, SpanID) {
	return TraceID(h.Get(TraceHeader)), SpanID(h.Get(SpanHeader))
}
