package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pages":[]}`), 0o644))

	changes := make(chan []byte, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(data []byte) { changes <- data }, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`{"pages":[],"initialState":{"a":1}}`), 0o644))

	select {
	case data := <-changes:
		assert.Contains(t, string(data), `"a":1`)
	case <-time.After(5 * time.Second):
		t.Fatal("external edit not reported")
	}
}

func TestWatcherSuppressesOwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	changes := make(chan []byte, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(data []byte) { changes <- data }, nil)
	require.NoError(t, err)
	defer w.Close()

	own := []byte(`{"pages":[]}`)
	w.Remember(own)
	require.NoError(t, os.WriteFile(path, own, 0o644))

	select {
	case data := <-changes:
		t.Fatalf("own write reported: %s", data)
	case <-time.After(300 * time.Millisecond):
	}
}
