package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

// Repository encodes AppSchema documents onto a Store
type Repository struct {
	store    Store
	format   codec.Format
	compress bool
	logger   *zap.Logger
	metrics  *monitoring.Metrics

	mu      sync.RWMutex
	onSaved []func([]byte)
}

// NewRepository wraps store. File stores use the format of their extension;
// compression only applies to key/value backends.
func NewRepository(store Store, compress bool, logger *zap.Logger, metrics *monitoring.Metrics) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}

	format := codec.FormatJSON
	if fs, ok := store.(*FileStore); ok {
		format = fs.Format()
		compress = false
	}

	return &Repository{
		store:    store,
		format:   format,
		compress: compress,
		logger:   logger,
		metrics:  metrics,
	}
}

// Store returns the underlying backend
func (r *Repository) Store() Store { return r.store }

// Format returns the document encoding
func (r *Repository) Format() codec.Format { return r.format }

// OnSaved registers fn to receive every blob written by Save
func (r *Repository) OnSaved(fn func([]byte)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSaved = append(r.onSaved, fn)
}

// Load reads and decodes the stored document. ErrNotFound when empty.
func (r *Repository) Load(ctx context.Context) (*types.AppSchema, error) {
	start := time.Now()
	app, err := r.load(ctx)
	r.record("load", start, err)
	return app, err
}

func (r *Repository) load(ctx context.Context) (*types.AppSchema, error) {
	data, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if codec.IsCompressed(data) {
		if data, err = codec.Decompress(data); err != nil {
			return nil, fmt.Errorf("decompress schema: %w", err)
		}
	}

	var app types.AppSchema
	if err := r.Decode(data, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Decode parses data in the repository format
func (r *Repository) Decode(data []byte, app *types.AppSchema) error {
	if r.format == codec.FormatJSON {
		return codec.Parse(data, app)
	}
	return codec.Decode(r.format, data, app)
}

// Save encodes and writes app
func (r *Repository) Save(ctx context.Context, app *types.AppSchema) error {
	start := time.Now()
	data, err := r.save(ctx, app)
	r.record("save", start, err)
	if err != nil {
		return err
	}

	r.mu.RLock()
	hooks := r.onSaved
	r.mu.RUnlock()
	for _, fn := range hooks {
		fn(data)
	}
	return nil
}

func (r *Repository) save(ctx context.Context, app *types.AppSchema) ([]byte, error) {
	var data []byte
	var err error
	if r.format == codec.FormatJSON {
		data, err = codec.MarshalIndent(app)
	} else {
		data, err = codec.Encode(r.format, app)
	}
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	if r.compress {
		data = codec.Compress(data)
	}
	if err := r.store.Save(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Reset removes the stored document
func (r *Repository) Reset(ctx context.Context) error {
	start := time.Now()
	err := r.store.Reset(ctx)
	r.record("reset", start, err)
	return err
}

// Close releases the backend
func (r *Repository) Close() error {
	return r.store.Close()
}

func (r *Repository) record(op string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "empty"
	case err != nil:
		status = "error"
		r.logger.Error("Storage operation failed",
			zap.String("driver", r.store.Driver()),
			zap.String("op", op),
			zap.Error(err))
	}
	if r.metrics != nil {
		r.metrics.RecordStorage(r.store.Driver(), op, status, time.Since(start))
	}
}
