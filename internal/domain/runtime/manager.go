package runtime

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/engine"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/id"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

// ErrSessionNotFound is returned for unknown session ids
var ErrSessionNotFound = errors.New("session not found")

// Manager tracks live sessions
type Manager struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*Session
	engine   *engine.Engine
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewManager creates a session manager running flows on eng
func NewManager(eng *engine.Engine, logger *zap.Logger, metrics *monitoring.Metrics) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[id.SessionID]*Session),
		engine:   eng,
		logger:   logger,
		metrics:  metrics,
	}
}

// Create starts a session on app at path (empty for the first page)
func (m *Manager) Create(app *types.AppSchema, path string) (*Session, error) {
	s, err := newSession(app, path, m.engine, m.logger)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncSessionsTotal()
		m.metrics.SetSessionsActive(count)
	}
	m.logger.Info("Session created", zap.String("session_id", s.ID.String()), zap.String("path", s.path))
	return s, nil
}

// Get returns a session by id
func (m *Manager) Get(sessionID id.SessionID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return s, nil
}

// List returns summaries of all sessions
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Info())
	}
	return out
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Delete closes and forgets a session
func (m *Manager) Delete(sessionID id.SessionID) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.Close()
	if m.metrics != nil {
		m.metrics.SetSessionsActive(count)
	}
	m.logger.Info("Session closed", zap.String("session_id", sessionID.String()))
	return nil
}

// ReloadAll pushes a new schema into every session
func (m *Manager) ReloadAll(app *types.AppSchema) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		s.Reload(app)
	}
}

// Close ends every session
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[id.SessionID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	if m.metrics != nil {
		m.metrics.SetSessionsActive(0)
	}
}
