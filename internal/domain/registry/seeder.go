package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/utils"
)

// DefaultPattern selects library files when none is configured
const DefaultPattern = "**/*.json"

// Library is the part of the workspace the seeder writes to
type Library interface {
	UpsertLibrary(intent workspace.LibraryIntent, name string, component types.ComponentNode) (workspace.EditResult, error)
}

// Result counts what a seeding pass did
type Result struct {
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Seeder handles loading library components from disk
type Seeder struct {
	library Library
	dir     string
	pattern string
	logger  *zap.Logger
}

// NewSeeder creates a new library seeder
func NewSeeder(library Library, dir, pattern string, logger *zap.Logger) *Seeder {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{library: library, dir: dir, pattern: pattern, logger: logger}
}

// Seed loads every matching file under the library directory. A missing
// directory is not an error. Files that fail to parse are counted and logged.
func (s *Seeder) Seed(ctx context.Context) (Result, error) {
	var result Result
	if s.dir == "" {
		return result, nil
	}
	if !doublestar.ValidatePattern(s.pattern) {
		return result, fmt.Errorf("invalid library pattern %q", s.pattern)
	}
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		s.logger.Warn("Library directory not found", zap.String("dir", s.dir))
		return result, nil
	}

	s.logger.Info("Seeding component library",
		zap.String("dir", s.dir),
		zap.String("pattern", s.pattern))

	files, err := s.find(ctx)
	if err != nil {
		return result, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		name, node, err := loadEntry(path)
		if err != nil {
			s.logger.Warn("Failed to load library file", zap.String("file", path), zap.Error(err))
			result.Failed++
			continue
		}

		_, err = s.library.UpsertLibrary(workspace.LibraryCreate, name, node)
		switch {
		case err == nil:
			s.logger.Debug("Loaded library entry", zap.String("name", name), zap.String("file", path))
			result.Loaded++
		case errors.Is(err, workspace.ErrLibraryNameTaken):
			result.Skipped++
		default:
			s.logger.Warn("Rejected library entry", zap.String("file", path), zap.Error(err))
			result.Failed++
		}
	}

	s.logger.Info("Seeding complete",
		zap.Int("loaded", result.Loaded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

// find returns matching files in lexical order
func (s *Seeder) find(ctx context.Context) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, s.dir, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(s.pattern, filepath.ToSlash(rel)); !ok {
			return nil
		}

		mu.Lock()
		files = append(files, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk library directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

type namedEntry struct {
	Name   string               `json:"name"`
	Schema *types.ComponentNode `json:"schema"`
}

func loadEntry(path string) (string, types.ComponentNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", types.ComponentNode{}, err
	}
	if err := utils.ValidateSize(data, utils.MaxSchemaSize); err != nil {
		return "", types.ComponentNode{}, err
	}
	format := codec.FormatFromPath(path)

	var entry namedEntry
	if err := codec.Decode(format, data, &entry); err != nil {
		return "", types.ComponentNode{}, err
	}
	if entry.Schema != nil {
		name := entry.Name
		if name == "" {
			name = stem(path)
		}
		return name, *entry.Schema, nil
	}

	var node types.ComponentNode
	if err := codec.Decode(format, data, &node); err != nil {
		return "", types.ComponentNode{}, err
	}
	if node.Type == "" {
		return "", types.ComponentNode{}, fmt.Errorf("no component type in %s", filepath.Base(path))
	}
	return stem(path), node, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
