package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/schema"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/tree"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/storage"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

var (
	ErrPageNotFound     = errors.New("page not found")
	ErrLibraryNotFound  = errors.New("library entry not found")
	ErrLibraryNameTaken = errors.New("library name already taken")
	ErrInvalidSchema    = errors.New("invalid schema")
	ErrNoRepository     = errors.New("workspace has no repository")
)

// Repository persists whole documents
type Repository interface {
	Load(ctx context.Context) (*types.AppSchema, error)
	Save(ctx context.Context, app *types.AppSchema) error
}

// EditResult describes an applied edit
type EditResult struct {
	Op       string        `json:"op"`
	Version  uint64        `json:"version"`
	PageID   string        `json:"pageId,omitempty"`
	NodeID   string        `json:"nodeId,omitempty"`
	DropKind tree.DropKind `json:"dropKind,omitempty"`
}

// Event is published after every applied edit
type Event struct {
	Op      string
	Version uint64
	Schema  *types.AppSchema
}

// Workspace holds the current document
type Workspace struct {
	current atomic.Pointer[types.AppSchema]
	version atomic.Uint64

	// serializes writers; readers never block
	mu sync.Mutex

	repo    Repository
	logger  *zap.Logger
	metrics *monitoring.Metrics

	subMu  sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// New creates a workspace holding the built-in default document
func New(repo Repository, logger *zap.Logger, metrics *monitoring.Metrics) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Workspace{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		subs:    make(map[int]chan Event),
	}
	w.current.Store(schema.Default())
	w.publishSize(w.current.Load())
	return w
}

// Schema returns the current document. It is shared and must not be mutated.
func (w *Workspace) Schema() *types.AppSchema {
	return w.current.Load()
}

// Version counts applied edits
func (w *Workspace) Version() uint64 {
	return w.version.Load()
}

// Page returns a copy of one page
func (w *Workspace) Page(pageID string) (types.PageSchema, error) {
	page, ok := w.current.Load().Page(pageID)
	if !ok {
		return types.PageSchema{}, fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
	}
	return page.Clone(), nil
}

// Load replaces the document with the stored one. An empty store yields
// the default document; undecodable or invalid content is rejected.
func (w *Workspace) Load(ctx context.Context) (EditResult, error) {
	if w.repo == nil {
		return EditResult{}, ErrNoRepository
	}

	app, err := w.repo.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		w.logger.Info("No stored schema, using default")
		app = schema.Default()
	case err != nil:
		return EditResult{}, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(app); err != nil {
		return EditResult{}, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	schema.Normalize(app)

	return w.replace("load", app), nil
}

// Save persists the current document
func (w *Workspace) Save(ctx context.Context) error {
	if w.repo == nil {
		return ErrNoRepository
	}
	if err := w.repo.Save(ctx, w.current.Load()); err != nil {
		return fmt.Errorf("save schema: %w", err)
	}
	w.logger.Debug("Schema saved", zap.Uint64("version", w.Version()))
	return nil
}

// Subscribe returns a channel of edit events and its cancel function.
// Slow subscribers miss events rather than blocking edits.
func (w *Workspace) Subscribe() (<-chan Event, func()) {
	w.subMu.Lock()
	defer w.subMu.Unlock()

	subID := w.nextID
	w.nextID++
	ch := make(chan Event, 16)
	w.subs[subID] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.subMu.Lock()
			delete(w.subs, subID)
			close(ch)
			w.subMu.Unlock()
		})
	}
}

// edit clones the document, lets fn change it and commits on success
func (w *Workspace) edit(op string, fn func(next *types.AppSchema) (EditResult, error)) (EditResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := w.current.Load().Clone()
	res, err := fn(next)
	if err != nil {
		w.reject(op, err)
		return EditResult{Op: op}, err
	}
	return w.commit(op, next, res), nil
}

// editPage is edit scoped to one page
func (w *Workspace) editPage(op, pageID string, fn func(page *types.PageSchema) (EditResult, error)) (EditResult, error) {
	return w.edit(op, func(next *types.AppSchema) (EditResult, error) {
		page, ok := next.Page(pageID)
		if !ok {
			return EditResult{}, fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
		}
		res, err := fn(page)
		res.PageID = pageID
		return res, err
	})
}

func (w *Workspace) replace(op string, app *types.AppSchema) EditResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.commit(op, app, EditResult{})
}

// commit must be called with mu held
func (w *Workspace) commit(op string, next *types.AppSchema, res EditResult) EditResult {
	w.current.Store(next)
	res.Op = op
	res.Version = w.version.Add(1)

	if w.metrics != nil {
		w.metrics.RecordEdit(op, true)
	}
	w.publishSize(next)
	w.logger.Debug("Schema edit applied",
		zap.String("op", op),
		zap.Uint64("version", res.Version),
		zap.String("node_id", res.NodeID))

	w.notify(Event{Op: op, Version: res.Version, Schema: next})
	return res
}

func (w *Workspace) reject(op string, err error) {
	if w.metrics != nil {
		w.metrics.RecordEdit(op, false)
	}
	w.logger.Info("Schema edit rejected", zap.String("op", op), zap.Error(err))
}

func (w *Workspace) notify(ev Event) {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (w *Workspace) publishSize(app *types.AppSchema) {
	if w.metrics == nil {
		return
	}
	nodes := 0
	for i := range app.Pages {
		nodes += tree.Count(app.Pages[i].Components)
	}
	w.metrics.SetSchemaSize(nodes, len(app.CustomLibrary))
}
