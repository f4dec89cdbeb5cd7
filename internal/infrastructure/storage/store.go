package storage

import (
	"context"
	"errors"
	"fmt"
)

// DefaultKey names the persisted document in key/value backends
const DefaultKey = "lowcode_schema_v1"

// Driver names
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
)

var (
	ErrNotFound      = errors.New("no schema stored")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Store loads and saves one opaque blob
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Reset(ctx context.Context) error
	Driver() string
	Close() error
}

// Config selects and configures a backend
type Config struct {
	Driver   string
	Path     string
	Key      string
	Compress bool
}

// Open creates the backend named by cfg.Driver
func Open(cfg Config) (Store, error) {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}

	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverFile:
		return NewFileStore(cfg.Path)
	case DriverBolt:
		return OpenBolt(cfg.Path, cfg.Key)
	case DriverSQLite:
		return OpenSQLite(cfg.Path, cfg.Key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
