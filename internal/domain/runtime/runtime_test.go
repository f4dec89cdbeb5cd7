package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/ai"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/engine"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/schema"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/tree"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

func newManager() *Manager {
	cfg := engine.DefaultConfig()
	cfg.RequestDelay = time.Millisecond
	eng := engine.New(cfg, engine.WithCompleter(&ai.Mock{}))
	return NewManager(eng, nil, nil)
}

func twoPages() *types.AppSchema {
	app := schema.Default()
	second := schema.NewPage("page-2", "/second")
	second.Components = []types.ComponentNode{{ID: "back", Type: types.TypeButton, Props: map[string]any{"text": "Back"}, OnEvent: map[string]string{"click": "go-home"}}}
	second.Actions = []types.ActionFlow{{ID: "go-home", Trigger: "click", Actions: []types.Action{types.Navigate{Path: "/demo"}}}}
	app.Pages = append(app.Pages, second)

	app.Pages[0].Actions = append(app.Pages[0].Actions, types.ActionFlow{
		ID: "go-second", Trigger: "click", Actions: []types.Action{types.Navigate{Path: "/second"}},
	})
	return app
}

func find(nodes []RenderedNode, nodeID string) (RenderedNode, bool) {
	for _, n := range nodes {
		if n.ID == nodeID {
			return n, true
		}
		if c, ok := find(n.Children, nodeID); ok {
			return c, true
		}
	}
	return RenderedNode{}, false
}

func TestCounterScenario(t *testing.T) {
	s, err := newManager().Create(schema.Default(), "")
	require.NoError(t, err)
	defer s.Close()

	nodes, err := s.Render()
	require.NoError(t, err)
	display, _ := find(nodes, "counter-display")
	assert.Equal(t, "Current Count: 0", display.Props["content"])
	assert.True(t, display.Bound)
	assert.Equal(t, float64(0), display.Value)

	result, err := s.Fire(context.Background(), "btn-inc", "click")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusCompleted, result.Status)

	nodes, err = s.Render()
	require.NoError(t, err)
	display, _ = find(nodes, "counter-display")
	assert.Equal(t, "Current Count: 10", display.Props["content"])
	assert.Equal(t, float64(10), display.Value)

	button, _ := find(nodes, "btn-inc")
	assert.Equal(t, []string{"click"}, button.Events)
}

func TestAIFlowWritesState(t *testing.T) {
	s, err := newManager().Create(schema.Default(), "/demo")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Fire(context.Background(), "btn-ai", "click")
	require.NoError(t, err)
	assert.Equal(t, "Hello there! I am your AI assistant (Mock).", s.State()["aiResponse"])
}

func TestFireErrors(t *testing.T) {
	app := schema.Default()
	app.Pages[0].Components[0].OnEvent = map[string]string{"click": "missing-flow"}

	s, err := newManager().Create(app, "")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Fire(context.Background(), "nope", "click")
	assert.ErrorIs(t, err, tree.ErrNodeNotFound)
	_, err = s.Fire(context.Background(), "btn-inc", "hover")
	assert.ErrorIs(t, err, ErrNoHandler)
	_, err = s.Fire(context.Background(), "header", "click")
	assert.ErrorIs(t, err, engine.ErrFlowNotFound)
}

func TestNavigation(t *testing.T) {
	s, err := newManager().Create(twoPages(), "")
	require.NoError(t, err)
	defer s.Close()

	events, cancel := s.Subscribe()
	defer cancel()

	_, err = s.RunFlow(context.Background(), "go-second")
	require.NoError(t, err)
	assert.Equal(t, "/second", s.Info().Path)
	assert.Equal(t, "page-2", s.Info().PageID)

	nodes, err := s.Render()
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "back", nodes[0].ID)

	ev := <-events
	assert.Equal(t, EventNavigate, ev.Type)
	assert.Equal(t, "/second", ev.Path)
	ev = <-events
	assert.Equal(t, EventFlow, ev.Type)
	assert.Equal(t, "go-second", ev.Flow.FlowID)

	assert.ErrorIs(t, s.Navigate("/nowhere"), ErrPageNotFound)
	assert.Equal(t, "/second", s.Info().Path)
}

func TestSubscribeReceivesStateChanges(t *testing.T) {
	s, err := newManager().Create(schema.Default(), "")
	require.NoError(t, err)
	defer s.Close()

	events, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.SetValue("counter-display", float64(3)))

	select {
	case ev := <-events:
		assert.Equal(t, EventState, ev.Type)
		assert.Equal(t, "count", ev.Key)
		assert.Equal(t, float64(3), ev.Value)
	case <-time.After(2 * time.Second):
		t.Fatal("no state event")
	}

	assert.ErrorIs(t, s.SetValue("header", "x"), ErrNotBound)
}

func TestReloadKeepsState(t *testing.T) {
	s, err := newManager().Create(schema.Default(), "")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Fire(context.Background(), "btn-inc", "click")
	require.NoError(t, err)

	next := schema.Default()
	next.Pages[0].Components[1].Props["content"] = "Count is ${count}"
	s.Reload(next)

	nodes, err := s.Render()
	require.NoError(t, err)
	display, _ := find(nodes, "counter-display")
	assert.Equal(t, "Count is 10", display.Props["content"])
}

func TestCreateUnknownPath(t *testing.T) {
	_, err := newManager().Create(schema.Default(), "/missing")
	assert.ErrorIs(t, err, ErrPageNotFound)

	_, err = newManager().Create(&types.AppSchema{}, "")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestManagerLifecycle(t *testing.T) {
	m := monitoring.NewMetricsWithRegistry(prometheus.NewRegistry())
	cfg := engine.DefaultConfig()
	mgr := NewManager(engine.New(cfg), nil, m)

	s, err := mgr.Create(schema.Default(), "")
	require.NoError(t, err)
	got, err := mgr.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Len(t, mgr.List(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))

	events, _ := s.Subscribe()
	require.NoError(t, mgr.Delete(s.ID))
	_, open := <-events
	assert.False(t, open)

	assert.ErrorIs(t, mgr.Delete(s.ID), ErrSessionNotFound)
	_, err = mgr.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, mgr.Count())

	_, err = s.RunFlow(context.Background(), "flow-inc")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRenderDoesNotMutateSchema(t *testing.T) {
	forest := []types.ComponentNode{{ID: "t", Type: types.TypeText, Props: map[string]any{"content": "${a}"}}}
	out := Render(forest, map[string]any{"a": "x"})
	assert.Equal(t, "x", out[0].Props["content"])
	assert.Equal(t, "${a}", forest[0].Props["content"])
}
