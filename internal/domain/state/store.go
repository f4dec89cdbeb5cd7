package state

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

const subscriberBuffer = 32

// Change is published to subscribers after every applied UpdateState
type Change struct {
	Version uint64         `json:"version"`
	Key     string         `json:"key"`
	Value   any            `json:"value"`
	Data    map[string]any `json:"data"`
}

// Store owns one session's state
type Store struct {
	mu      sync.RWMutex
	current State
	version uint64
	subs    map[int]chan Change
	nextSub int
	warned  map[string]struct{}
	logger  *zap.Logger
}

// NewStore creates a store seeded from initial
func NewStore(initial map[string]any, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		current: New(initial),
		subs:    make(map[int]chan Change),
		warned:  make(map[string]struct{}),
		logger:  logger,
	}
}

// Dispatch applies action through Reduce
func (s *Store) Dispatch(action types.Action) {
	update, ok := action.(types.UpdateState)
	if !ok {
		s.logger.Debug("Ignoring non-state action", zap.String("kind", string(action.Kind())))
		return
	}

	s.mu.Lock()
	s.current = Reduce(s.current, action)
	s.version++
	change := Change{
		Version: s.version,
		Key:     update.Path,
		Value:   s.current.Data[update.Path],
		Data:    s.current.Data,
	}
	s.warnNested(update.Path)
	dropped := 0
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
			dropped++
		}
	}
	s.mu.Unlock()

	if dropped > 0 {
		s.logger.Warn("State subscribers lagging, dropped change",
			zap.String("key", update.Path),
			zap.Uint64("version", change.Version),
			zap.Int("dropped", dropped))
	}
}

// warnNested logs once per dotted key; caller holds the lock
func (s *Store) warnNested(path string) {
	if !IsNestedPath(path) {
		return
	}
	if _, seen := s.warned[path]; seen {
		return
	}
	s.warned[path] = struct{}{}
	s.logger.Warn("Dotted state path stored as a flat key", zap.String("path", path))
}

// Snapshot returns the current data. The map is never mutated after
// publication and must be treated as read-only.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Data
}

// State returns the current reducer value
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Get reads a single key
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.current.Data[key]
	return v, ok
}

// Version counts applied updates
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Reset re-seeds the store from initial
func (s *Store) Reset(initial map[string]any) {
	s.mu.Lock()
	s.current = New(initial)
	s.version++
	s.mu.Unlock()
}

// Subscribe registers for change notifications. The returned function
// unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subID := s.nextSub
	s.nextSub++
	ch := make(chan Change, subscriberBuffer)
	s.subs[subID] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, subID)
			s.mu.Unlock()
			close(ch)
		})
	}
}
