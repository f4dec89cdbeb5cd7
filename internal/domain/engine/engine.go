package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/id"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

var (
	// ErrFlowNotFound is returned when an event names a flow the page lacks
	ErrFlowNotFound = errors.New("flow not found")
	// ErrFlowBusy is returned under PolicySkip when the flow is already running
	ErrFlowBusy = errors.New("flow already running")
	// ErrEmptyFlow is returned for flows without actions
	ErrEmptyFlow = errors.New("flow has no actions")
	// ErrNotConfigured is returned when an action needs a missing collaborator
	ErrNotConfigured = errors.New("collaborator not configured")
)

// Status is a flow run's lifecycle state
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
	StatusSkipped   Status = "skipped"
)

// ConcurrencyPolicy decides what happens when a running flow is triggered again
type ConcurrencyPolicy string

const (
	PolicyAllow ConcurrencyPolicy = "allow"
	PolicySkip  ConcurrencyPolicy = "skip"
	PolicyQueue ConcurrencyPolicy = "queue"
)

// ParsePolicy validates a policy name
func ParsePolicy(name string) (ConcurrencyPolicy, error) {
	switch p := ConcurrencyPolicy(name); p {
	case PolicyAllow, PolicySkip, PolicyQueue:
		return p, nil
	case "":
		return PolicyAllow, nil
	default:
		return "", fmt.Errorf("unknown flow concurrency policy %q", name)
	}
}

// RequestMode selects how Request actions are carried out
type RequestMode string

const (
	RequestLive    RequestMode = "live"
	RequestOffline RequestMode = "offline"
)

// RuntimeContext connects a flow run to its session
type RuntimeContext struct {
	Dispatch func(action types.Action)
	State    func() map[string]any
	Navigate func(path string)
}

func (rc RuntimeContext) snapshot() map[string]any {
	if rc.State == nil {
		return map[string]any{}
	}
	return rc.State()
}

// Requester performs Request actions and returns the decoded response body
type Requester interface {
	Do(ctx context.Context, req types.Request) (any, error)
}

// Completer answers AI prompts with text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ScriptRunner executes Script actions
type ScriptRunner interface {
	Run(ctx context.Context, code string, rc RuntimeContext) error
}

// Config tunes the engine
type Config struct {
	Policy       ConcurrencyPolicy
	RequestMode  RequestMode
	RequestDelay time.Duration
}

// DefaultConfig mirrors the offline demo behaviour
func DefaultConfig() Config {
	return Config{
		Policy:       PolicyAllow,
		RequestMode:  RequestOffline,
		RequestDelay: 500 * time.Millisecond,
	}
}

// FlowResult reports the outcome of one run
type FlowResult struct {
	RunID       id.RunID      `json:"run_id"`
	FlowID      string        `json:"flow_id"`
	Status      Status        `json:"status"`
	Executed    int           `json:"executed"`
	FailedIndex int           `json:"failed_index"`
	Duration    time.Duration `json:"duration"`
	Err         error         `json:"-"`
}

// Error returns the failure message, empty for successful runs
func (r FlowResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Engine runs action flows
type Engine struct {
	cfg       Config
	requester Requester
	completer Completer
	scripts   ScriptRunner
	logger    *zap.Logger
	metrics   *monitoring.Metrics
	tracer    *tracing.Tracer

	mu      sync.Mutex
	running map[string]int
	queues  map[string]chan struct{}
}

// Option configures an Engine
type Option func(*Engine)

// WithRequester sets the HTTP collaborator used in live request mode
func WithRequester(r Requester) Option { return func(e *Engine) { e.requester = r } }

// WithCompleter sets the AI collaborator
func WithCompleter(c Completer) Option { return func(e *Engine) { e.completer = c } }

// WithScriptRunner sets the Script action sandbox
func WithScriptRunner(s ScriptRunner) Option { return func(e *Engine) { e.scripts = s } }

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithMetrics enables Prometheus flow metrics
func WithMetrics(m *monitoring.Metrics) Option { return func(e *Engine) { e.metrics = m } }

// WithTracer wraps every run in a span
func WithTracer(t *tracing.Tracer) Option { return func(e *Engine) { e.tracer = t } }

// New creates an engine
func New(cfg Config, opts ...Option) *Engine {
	if cfg.Policy == "" {
		cfg.Policy = PolicyAllow
	}
	if cfg.RequestMode == "" {
		cfg.RequestMode = RequestOffline
	}
	e := &Engine{
		cfg:     cfg,
		logger:  zap.NewNop(),
		running: make(map[string]int),
		queues:  make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Config returns the engine configuration
func (e *Engine) Config() Config { return e.cfg }

// Trigger looks up flowID on page and runs it
func (e *Engine) Trigger(ctx context.Context, page *types.PageSchema, flowID string, rc RuntimeContext) (FlowResult, error) {
	flow, ok := page.Flow(flowID)
	if !ok {
		e.logger.Warn("Event references unknown flow",
			zap.String("page_id", page.ID),
			zap.String("flow_id", flowID))
		return FlowResult{FlowID: flowID, Status: StatusPending, FailedIndex: -1}, fmt.Errorf("%w: %s", ErrFlowNotFound, flowID)
	}
	result := e.RunFlow(ctx, *flow, rc)
	return result, result.Err
}

// RunFlow executes flow to completion or first error.
func (e *Engine) RunFlow(ctx context.Context, flow types.ActionFlow, rc RuntimeContext) FlowResult {
	result := FlowResult{
		RunID:       id.NewRunID(),
		FlowID:      flow.ID,
		Status:      StatusPending,
		FailedIndex: -1,
	}
	log := e.logger.With(zap.String("flow_id", flow.ID), zap.String("run_id", result.RunID.String()))

	waitStart := time.Now()
	release, err := e.acquire(ctx, flow.ID)
	switch {
	case errors.Is(err, ErrFlowBusy):
		result.Status = StatusSkipped
		result.Err = fmt.Errorf("%w: %s", err, flow.ID)
		log.Info("Skipping trigger of running flow")
		if e.metrics != nil {
			e.metrics.RecordFlowSkipped()
		}
		return result
	case err != nil:
		// cancelled while queued behind another run; no action executed
		result.Status = StatusAborted
		result.Err = fmt.Errorf("waiting for running flow %s: %w", flow.ID, err)
		result.Duration = time.Since(waitStart)
		log.Warn("Queued flow cancelled before start", zap.Error(err))
		if e.metrics != nil {
			e.metrics.FlowStarted()
			e.metrics.RecordFlow(string(StatusAborted), result.Duration)
		}
		return result
	}
	defer release()

	start := time.Now()
	result.Status = StatusRunning
	if e.metrics != nil {
		e.metrics.FlowStarted()
	}
	log.Info("Starting flow", zap.Int("actions", len(flow.Actions)))

	_ = e.tracer.Trace(ctx, "flow.run", func(ctx context.Context, span *tracing.Span) error {
		span.SetTag("flow_id", flow.ID)
		span.SetTag("run_id", result.RunID.String())
		e.run(ctx, flow, rc, &result, log)
		span.SetTag("status", string(result.Status))
		return result.Err
	})

	result.Duration = time.Since(start)
	if e.metrics != nil {
		e.metrics.RecordFlow(string(result.Status), result.Duration)
	}
	if result.Status == StatusAborted {
		log.Error("Flow aborted",
			zap.Int("failed_index", result.FailedIndex),
			zap.Duration("duration", result.Duration),
			zap.Error(result.Err))
	} else {
		log.Info("Flow complete",
			zap.Int("executed", result.Executed),
			zap.Duration("duration", result.Duration))
	}
	return result
}

func (e *Engine) run(ctx context.Context, flow types.ActionFlow, rc RuntimeContext, result *FlowResult, log *zap.Logger) {
	if len(flow.Actions) == 0 {
		result.Status = StatusAborted
		result.Err = fmt.Errorf("%w: %s", ErrEmptyFlow, flow.ID)
		return
	}

	for i, action := range flow.Actions {
		if err := ctx.Err(); err != nil {
			result.Status = StatusAborted
			result.FailedIndex = i
			result.Err = fmt.Errorf("flow %s cancelled before action %d: %w", flow.ID, i, err)
			return
		}

		kind := "nil"
		if action != nil {
			kind = string(action.Kind())
		}
		log.Debug("Executing action", zap.Int("index", i), zap.String("action", kind))

		started := time.Now()
		err := e.Execute(ctx, action, rc)
		if e.metrics != nil {
			status := "success"
			if err != nil {
				status = "error"
			}
			e.metrics.RecordAction(kind, status, time.Since(started))
		}
		if err != nil {
			result.Status = StatusAborted
			result.FailedIndex = i
			result.Err = fmt.Errorf("flow %s action %d (%s): %w", flow.ID, i, kind, err)
			return
		}
		result.Executed++
	}
	result.Status = StatusCompleted
}

// Execute runs a single action against rc
func (e *Engine) Execute(ctx context.Context, action types.Action, rc RuntimeContext) error {
	switch a := action.(type) {
	case types.UpdateState:
		if rc.Dispatch == nil {
			return fmt.Errorf("%w: dispatch", ErrNotConfigured)
		}
		rc.Dispatch(a)
		return nil

	case types.Navigate:
		if rc.Navigate == nil {
			return fmt.Errorf("%w: navigate", ErrNotConfigured)
		}
		rc.Navigate(a.Path)
		return nil

	case types.Request:
		return e.request(ctx, a, rc)

	case types.AI:
		if e.completer == nil {
			return fmt.Errorf("%w: ai", ErrNotConfigured)
		}
		text, err := e.completer.Complete(ctx, a.Prompt)
		if err != nil {
			return fmt.Errorf("ai request failed: %w", err)
		}
		return e.Execute(ctx, types.UpdateState{Path: a.OutputStatePath, Value: text}, rc)

	case types.Script:
		if e.scripts == nil {
			return fmt.Errorf("%w: script", ErrNotConfigured)
		}
		return e.scripts.Run(ctx, a.Code, rc)

	default:
		return fmt.Errorf("%w: %T", types.ErrUnknownActionKind, action)
	}
}

func (e *Engine) request(ctx context.Context, a types.Request, rc RuntimeContext) error {
	if e.cfg.RequestMode == RequestOffline {
		e.logger.Info("Simulating request",
			zap.String("method", a.Method),
			zap.String("url", a.URL),
			zap.Any("body", a.Body))
		return sleep(ctx, e.cfg.RequestDelay)
	}

	if e.requester == nil {
		return fmt.Errorf("%w: requester", ErrNotConfigured)
	}
	body, err := e.requester.Do(ctx, a)
	if err != nil {
		return fmt.Errorf("%s %s: %w", a.Method, a.URL, err)
	}
	if len(a.ResponseMapping) == 0 {
		return nil
	}

	updates, err := MapResponse(body, a.ResponseMapping)
	if err != nil {
		return err
	}
	for _, u := range updates {
		if err := e.Execute(ctx, u, rc); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// acquire applies the concurrency policy for flowID. Under PolicySkip a busy
// flow yields ErrFlowBusy; under PolicyQueue the wait for the run ahead ends
// early with ctx's error when ctx is done.
func (e *Engine) acquire(ctx context.Context, flowID string) (func(), error) {
	e.mu.Lock()
	switch e.cfg.Policy {
	case PolicySkip:
		if e.running[flowID] > 0 {
			e.mu.Unlock()
			return nil, ErrFlowBusy
		}
	case PolicyQueue:
		slot, ok := e.queues[flowID]
		if !ok {
			slot = make(chan struct{}, 1)
			e.queues[flowID] = slot
		}
		e.running[flowID]++
		e.mu.Unlock()
		if err := ctx.Err(); err != nil {
			e.done(flowID)
			return nil, err
		}
		select {
		case slot <- struct{}{}:
			return func() {
				<-slot
				e.done(flowID)
			}, nil
		case <-ctx.Done():
			e.done(flowID)
			return nil, ctx.Err()
		}
	}
	e.running[flowID]++
	e.mu.Unlock()
	return func() { e.done(flowID) }, nil
}

func (e *Engine) done(flowID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running[flowID]--
	if e.running[flowID] <= 0 {
		delete(e.running, flowID)
	}
}

// Running reports whether flowID has an active run
func (e *Engine) Running(flowID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running[flowID] > 0
}
