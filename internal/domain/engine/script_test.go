package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

func TestSandboxDispatchAndNavigate(t *testing.T) {
	store, visited, rc := session(map[string]any{"count": float64(2)})
	sandbox := NewSandbox(time.Second, nil)

	err := sandbox.Run(context.Background(), `
		dispatch({ type: 'UpdateState', path: 'count', value: (state.count || 0) + 1 });
		if (state.count === 2) { navigate('/done'); }
	`, rc)

	require.NoError(t, err)
	assert.Equal(t, float64(3), store.Snapshot()["count"])
	assert.Equal(t, []string{"/done"}, *visited)
}

func TestSandboxStateIsACopy(t *testing.T) {
	store, _, rc := session(map[string]any{"name": "a"})
	err := NewSandbox(time.Second, nil).Run(context.Background(), `state.name = 'b';`, rc)
	require.NoError(t, err)
	assert.Equal(t, "a", store.Snapshot()["name"])
}

func TestSandboxRejectsNonStateDispatch(t *testing.T) {
	_, _, rc := session(nil)
	err := NewSandbox(time.Second, nil).Run(context.Background(),
		`dispatch({ type: 'Navigate', path: '/x' });`, rc)
	assert.ErrorIs(t, err, types.ErrUnknownActionKind)

	err = NewSandbox(time.Second, nil).Run(context.Background(),
		`dispatch({ type: 'Explode' });`, rc)
	assert.ErrorIs(t, err, types.ErrUnknownActionKind)
}

func TestSandboxErrors(t *testing.T) {
	_, _, rc := session(nil)
	sandbox := NewSandbox(50*time.Millisecond, nil)

	err := sandbox.Run(context.Background(), `throw new Error('nope');`, rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")

	err = sandbox.Run(context.Background(), `this is not javascript`, rc)
	assert.Error(t, err)

	err = sandbox.Run(context.Background(), `while (true) {}`, rc)
	assert.ErrorIs(t, err, ErrScriptTimeout)

	err = sandbox.Run(context.Background(), `return typeof require;`, rc)
	assert.NoError(t, err)
}

func TestScriptActionInFlow(t *testing.T) {
	store, _, rc := session(map[string]any{"count": float64(0)})
	eng := New(DefaultConfig(), WithScriptRunner(NewSandbox(time.Second, nil)))

	result := eng.RunFlow(context.Background(), types.ActionFlow{
		ID: "scripted",
		Actions: []types.Action{
			types.UpdateState{Path: "count", Value: float64(5)},
			types.Script{Code: `dispatch({type: 'UpdateState', path: 'double', value: state.count * 2});`},
		},
	}, rc)

	require.NoError(t, result.Err)
	assert.Equal(t, float64(10), store.Snapshot()["double"])
}
