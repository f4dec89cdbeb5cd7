package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/engine"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/state"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/tree"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/id"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

var (
	ErrPageNotFound = errors.New("page not found")
	ErrNoHandler    = errors.New("node has no handler for event")
	ErrNotBound     = errors.New("node is not bound to state")
	ErrClosed       = errors.New("session closed")
)

// EventType tags session events
type EventType string

const (
	EventState    EventType = "state"
	EventNavigate EventType = "navigate"
	EventFlow     EventType = "flow"
	EventReload   EventType = "reload"
)

// Event is published to session subscribers
type Event struct {
	Type    EventType          `json:"type"`
	Version uint64             `json:"version,omitempty"`
	Key     string             `json:"key,omitempty"`
	Value   any                `json:"value,omitempty"`
	Path    string             `json:"path,omitempty"`
	Flow    *engine.FlowResult `json:"flow,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Info summarizes a session
type Info struct {
	ID        id.SessionID `json:"id"`
	Path      string       `json:"path"`
	PageID    string       `json:"pageId"`
	Version   uint64       `json:"version"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Session is one running instance of a schema
type Session struct {
	ID        id.SessionID
	CreatedAt time.Time

	engine *engine.Engine
	store  *state.Store
	logger *zap.Logger

	mu     sync.RWMutex
	app    *types.AppSchema
	path   string
	closed bool

	subMu  sync.Mutex
	subs   map[int]chan Event
	nextID int

	stopStore func()
	done      chan struct{}
}

func newSession(app *types.AppSchema, path string, eng *engine.Engine, logger *zap.Logger) (*Session, error) {
	if path == "" {
		if len(app.Pages) == 0 {
			return nil, fmt.Errorf("%w: schema has no pages", ErrPageNotFound)
		}
		path = app.Pages[0].Path
	}
	if _, ok := app.PageByPath(path); !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, path)
	}

	sid := id.NewSessionID()
	logger = logger.With(zap.String("session_id", sid.String()))
	s := &Session{
		ID:        sid,
		CreatedAt: time.Now(),
		engine:    eng,
		store:     state.NewStore(app.InitialState, logger),
		logger:    logger,
		app:       app,
		path:      path,
		subs:      make(map[int]chan Event),
		done:      make(chan struct{}),
	}

	changes, stop := s.store.Subscribe()
	s.stopStore = stop
	go s.forward(changes)
	return s, nil
}

func (s *Session) forward(changes <-chan state.Change) {
	for {
		select {
		case <-s.done:
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			s.publish(Event{Type: EventState, Version: c.Version, Key: c.Key, Value: c.Value})
		}
	}
}

// Info returns a summary of the session
func (s *Session) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info := Info{ID: s.ID, Path: s.path, Version: s.store.Version(), CreatedAt: s.CreatedAt}
	if page, ok := s.app.PageByPath(s.path); ok {
		info.PageID = page.ID
	}
	return info
}

// Page returns the current page
func (s *Session) Page() (*types.PageSchema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page, ok := s.app.PageByPath(s.path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, s.path)
	}
	return page, nil
}

// Store returns the session state store
func (s *Session) Store() *state.Store { return s.store }

// State returns the current state snapshot
func (s *Session) State() map[string]any { return s.store.Snapshot() }

// Render resolves the current page against the current state
func (s *Session) Render() ([]RenderedNode, error) {
	page, err := s.Page()
	if err != nil {
		return nil, err
	}
	return Render(page.Components, s.store.Snapshot()), nil
}

// Navigate switches the current page
func (s *Session) Navigate(path string) error {
	s.mu.Lock()
	if _, ok := s.app.PageByPath(path); !ok {
		s.mu.Unlock()
		s.logger.Warn("Navigation to unknown page", zap.String("path", path))
		return fmt.Errorf("%w: %s", ErrPageNotFound, path)
	}
	s.path = path
	s.mu.Unlock()

	s.logger.Debug("Navigated", zap.String("path", path))
	s.publish(Event{Type: EventNavigate, Path: path})
	return nil
}

// Fire runs the flow wired to nodeID's event on the current page
func (s *Session) Fire(ctx context.Context, nodeID, event string) (engine.FlowResult, error) {
	page, err := s.Page()
	if err != nil {
		return engine.FlowResult{}, err
	}
	node, ok := tree.Find(page.Components, nodeID)
	if !ok {
		return engine.FlowResult{}, fmt.Errorf("%w: %s", tree.ErrNodeNotFound, nodeID)
	}
	flowID, ok := node.OnEvent[event]
	if !ok || flowID == "" {
		return engine.FlowResult{}, fmt.Errorf("%w: %s.%s", ErrNoHandler, nodeID, event)
	}
	return s.trigger(ctx, page, flowID)
}

// RunFlow runs a flow of the current page by id
func (s *Session) RunFlow(ctx context.Context, flowID string) (engine.FlowResult, error) {
	page, err := s.Page()
	if err != nil {
		return engine.FlowResult{}, err
	}
	return s.trigger(ctx, page, flowID)
}

func (s *Session) trigger(ctx context.Context, page *types.PageSchema, flowID string) (engine.FlowResult, error) {
	if s.isClosed() {
		return engine.FlowResult{}, ErrClosed
	}

	result, err := s.engine.Trigger(ctx, page, flowID, s.runtimeContext())
	if result.RunID == "" {
		return result, err
	}

	ev := Event{Type: EventFlow, Flow: &result}
	if result.Err != nil {
		ev.Error = result.Err.Error()
	}
	s.publish(ev)
	return result, err
}

func (s *Session) runtimeContext() engine.RuntimeContext {
	return engine.RuntimeContext{
		Dispatch: s.store.Dispatch,
		State:    s.store.Snapshot,
		Navigate: func(path string) { _ = s.Navigate(path) },
	}
}

// SetValue writes value to the state key a node is bound to
func (s *Session) SetValue(nodeID string, value any) error {
	page, err := s.Page()
	if err != nil {
		return err
	}
	node, ok := tree.Find(page.Components, nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", tree.ErrNodeNotFound, nodeID)
	}
	if node.BindState == "" {
		return fmt.Errorf("%w: %s", ErrNotBound, nodeID)
	}
	s.store.Dispatch(types.UpdateState{Path: node.BindState, Value: value})
	return nil
}

// Reload swaps in a newer schema and keeps the state. The session stays on
// its page when the path still exists and falls back to the first page.
func (s *Session) Reload(app *types.AppSchema) {
	s.mu.Lock()
	s.app = app
	if _, ok := app.PageByPath(s.path); !ok && len(app.Pages) > 0 {
		s.path = app.Pages[0].Path
	}
	path := s.path
	s.mu.Unlock()

	s.publish(Event{Type: EventReload, Path: path})
}

// Subscribe returns a channel of session events and its cancel function
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ch := make(chan Event, 32)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	subID := s.nextID
	s.nextID++
	s.subs[subID] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			if _, ok := s.subs[subID]; ok {
				delete(s.subs, subID)
				close(ch)
			}
		})
	}
}

func (s *Session) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for subID, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Debug("Dropped session event for slow subscriber",
				zap.Int("subscriber", subID),
				zap.String("type", string(ev.Type)))
		}
	}
}

func (s *Session) isClosed() bool {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return s.closed
}

// Close stops event delivery and closes every subscriber channel
func (s *Session) Close() {
	s.subMu.Lock()
	if s.closed {
		s.subMu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	for subID, ch := range s.subs {
		delete(s.subs, subID)
		close(ch)
	}
	s.subMu.Unlock()

	s.stopStore()
}
