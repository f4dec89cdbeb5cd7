package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

func TestReduceUpdateState(t *testing.T) {
	before := New(map[string]any{"count": float64(0), "title": "x"})

	after := Reduce(before, types.UpdateState{Path: "count", Value: float64(10)})

	assert.Equal(t, float64(10), after.Data["count"])
	assert.Equal(t, "x", after.Data["title"])
	assert.Equal(t, float64(0), before.Data["count"], "input state mutated")
}

func TestReduceIgnoresOtherActions(t *testing.T) {
	before := New(map[string]any{"a": "b"})
	for _, action := range []types.Action{
		types.Navigate{Path: "/x"},
		types.Request{Method: "GET", URL: "/y"},
		types.AI{Prompt: "p", OutputStatePath: "a"},
		types.Script{Code: "1"},
	} {
		after := Reduce(before, action)
		assert.Equal(t, before, after, "kind %s", action.Kind())
	}
}

func TestReduceDottedPathIsFlat(t *testing.T) {
	s := Reduce(New(nil), types.UpdateState{Path: "user.name", Value: "Ada"})
	assert.Equal(t, "Ada", s.Data["user.name"])
	assert.NotContains(t, s.Data, "user")
	assert.True(t, IsNestedPath("user.name"))
	assert.False(t, IsNestedPath("count"))
}

func TestReduceCopiesCompositeValues(t *testing.T) {
	value := map[string]any{"k": "v"}
	s := Reduce(New(nil), types.UpdateState{Path: "obj", Value: value})
	value["k"] = "changed"
	assert.Equal(t, "v", s.Data["obj"].(map[string]any)["k"])
}

func TestNewStoreSeedsFromInitialState(t *testing.T) {
	initial := map[string]any{"title": "Low Code MVP", "count": float64(0)}
	store := NewStore(initial, nil)

	assert.Equal(t, initial, store.Snapshot())

	initial["title"] = "mutated"
	v, ok := store.Get("title")
	require.True(t, ok)
	assert.Equal(t, "Low Code MVP", v)
}

func TestStoreDispatchAndSnapshotIsolation(t *testing.T) {
	store := NewStore(map[string]any{"count": float64(0)}, nil)
	snap := store.Snapshot()

	store.Dispatch(types.UpdateState{Path: "count", Value: float64(10)})
	store.Dispatch(types.Navigate{Path: "/ignored"})

	assert.Equal(t, float64(0), snap["count"])
	assert.Equal(t, float64(10), store.Snapshot()["count"])
	assert.Equal(t, uint64(1), store.Version())
}

func TestStoreSubscribe(t *testing.T) {
	store := NewStore(nil, nil)
	ch, cancel := store.Subscribe()

	store.Dispatch(types.UpdateState{Path: "a", Value: "1"})

	change := <-ch
	assert.Equal(t, "a", change.Key)
	assert.Equal(t, "1", change.Value)
	assert.Equal(t, uint64(1), change.Version)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	store.Dispatch(types.UpdateState{Path: "b", Value: "2"})
}

func TestStoreConcurrentDispatch(t *testing.T) {
	store := NewStore(nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Dispatch(types.UpdateState{Path: "k", Value: float64(i)})
			_ = store.Snapshot()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, uint64(50), store.Version())
}

func TestStoreReset(t *testing.T) {
	store := NewStore(map[string]any{"a": "1"}, nil)
	store.Dispatch(types.UpdateState{Path: "a", Value: "2"})
	store.Reset(map[string]any{"a": "1"})
	v, _ := store.Get("a")
	assert.Equal(t, "1", v)
}
