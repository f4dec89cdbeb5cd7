package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

func sampleSchema() *types.AppSchema {
	return &types.AppSchema{
		InitialState: map[string]any{"count": float64(2), "title": "Hi"},
		Pages: []types.PageSchema{{
			ID:   "page-1",
			Path: "/demo",
			Components: []types.ComponentNode{
				{ID: "box", Type: types.TypeContainer, Props: map[string]any{"padding": "16px"}, Children: []types.ComponentNode{
					{ID: "txt", Type: types.TypeText, Props: map[string]any{"content": "Count: ${count}"}},
				}},
				{ID: "btn", Type: types.TypeButton, Props: map[string]any{"text": "+1"}, OnEvent: map[string]string{"click": "flow-inc"}},
			},
			Actions: []types.ActionFlow{{
				ID:      "flow-inc",
				Trigger: "click",
				Actions: []types.Action{types.UpdateState{Path: "count", Value: float64(3)}},
			}},
		}},
	}
}

func TestStores(t *testing.T) {
	tests := []struct {
		name string
		open func(t *testing.T) Store
	}{
		{"memory", func(t *testing.T) Store { return NewMemoryStore() }},
		{"file", func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "schema.json"))
			require.NoError(t, err)
			return s
		}},
		{"bolt", func(t *testing.T) Store {
			s, err := OpenBolt(filepath.Join(t.TempDir(), "studio.db"), DefaultKey)
			require.NoError(t, err)
			return s
		}},
		{"sqlite", func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "studio.sqlite"), DefaultKey)
			require.NoError(t, err)
			return s
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := tt.open(t)
			defer s.Close()

			_, err := s.Load(ctx)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save(ctx, []byte("first")))
			require.NoError(t, s.Save(ctx, []byte("second")))
			data, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, "second", string(data))

			require.NoError(t, s.Reset(ctx))
			_, err = s.Load(ctx)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NoError(t, s.Reset(ctx))
		})
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(Config{Driver: DriverMemory})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, s.Driver())

	_, err = Open(Config{Driver: "redis"})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = Open(Config{Driver: DriverFile})
	assert.Error(t, err)
}

func TestFileStoreAtomicSaveLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "schema.json"))
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), []byte(`{}`)))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "schema.json", entries[0].Name())
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("json file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.json")
		fs, err := NewFileStore(path)
		require.NoError(t, err)
		repo := NewRepository(fs, true, nil, nil)

		require.NoError(t, repo.Save(ctx, sampleSchema()))
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.False(t, codec.IsCompressed(raw))
		assert.Contains(t, string(raw), `"type": "UpdateState"`)

		got, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleSchema(), got)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		fs, err := NewFileStore(path)
		require.NoError(t, err)
		repo := NewRepository(fs, false, nil, nil)
		assert.Equal(t, codec.FormatYAML, repo.Format())

		require.NoError(t, repo.Save(ctx, sampleSchema()))
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.False(t, strings.HasPrefix(strings.TrimSpace(string(raw)), "{"))

		got, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleSchema(), got)
	})

	t.Run("compressed bolt", func(t *testing.T) {
		bs, err := OpenBolt(filepath.Join(t.TempDir(), "studio.db"), DefaultKey)
		require.NoError(t, err)
		repo := NewRepository(bs, true, nil, nil)
		defer repo.Close()

		require.NoError(t, repo.Save(ctx, sampleSchema()))
		raw, err := bs.Load(ctx)
		require.NoError(t, err)
		assert.True(t, codec.IsCompressed(raw))

		got, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleSchema(), got)
	})
}

func TestRepositoryParseError(t *testing.T) {
	mem := NewMemoryStore()
	require.NoError(t, mem.Save(context.Background(), []byte("{\n  \"pages\": [,]\n}")))

	_, err := NewRepository(mem, false, nil, nil).Load(context.Background())
	var perr *codec.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
}

func TestRepositoryHooksAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetricsWithRegistry(reg)
	repo := NewRepository(NewMemoryStore(), false, nil, metrics)

	var saved [][]byte
	repo.OnSaved(func(data []byte) { saved = append(saved, data) })

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, repo.Save(context.Background(), sampleSchema()))

	require.Len(t, saved, 1)
	assert.Contains(t, string(saved[0]), "flow-inc")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StorageOps.WithLabelValues(DriverMemory, "save", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StorageOps.WithLabelValues(DriverMemory, "load", "empty")))
}
