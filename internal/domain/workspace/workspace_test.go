package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/engine"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/schema"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/tree"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/storage"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

const page = "page-1"

func newWorkspace(t *testing.T) *Workspace {
	t.Helper()
	repo := storage.NewRepository(storage.NewMemoryStore(), false, nil, nil)
	return New(repo, nil, nil)
}

func rootIDs(w *Workspace) []string {
	p, _ := w.Schema().Page(page)
	ids := make([]string, len(p.Components))
	for i, n := range p.Components {
		ids[i] = n.ID
	}
	return ids
}

func TestNewStartsWithDefault(t *testing.T) {
	w := newWorkspace(t)
	assert.Equal(t, schema.Default(), w.Schema())
	assert.Equal(t, uint64(0), w.Version())
}

func TestInsertNewAndRemove(t *testing.T) {
	w := newWorkspace(t)

	res, err := w.InsertNew(page, types.TypeCard, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Version)
	assert.Equal(t, res.NodeID, rootIDs(w)[len(rootIDs(w))-1])

	child, err := w.InsertNew(page, types.TypeText, res.NodeID)
	require.NoError(t, err)
	card, _ := tree.Find(w.Schema().Pages[0].Components, res.NodeID)
	require.Len(t, card.Children, 1)
	assert.Equal(t, child.NodeID, card.Children[0].ID)
	assert.Equal(t, "New Text", card.Children[0].Props["content"])

	_, err = w.Remove(page, res.NodeID)
	require.NoError(t, err)
	_, found := tree.Find(w.Schema().Pages[0].Components, child.NodeID)
	assert.False(t, found)
}

func TestInsertNewAfterLeaf(t *testing.T) {
	w := newWorkspace(t)
	res, err := w.InsertNew(page, types.TypeDivider, "header")
	require.NoError(t, err)
	assert.Equal(t, []string{"header", res.NodeID, "counter-display", "btn-inc", "ai-result", "btn-ai"}, rootIDs(w))
}

func TestFailedEditLeavesSchemaUntouched(t *testing.T) {
	w := newWorkspace(t)
	before := w.Schema()

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"remove missing", func() error { _, err := w.Remove(page, "nope"); return err }, tree.ErrNodeNotFound},
		{"unknown page", func() error { _, err := w.Remove("page-9", "header"); return err }, ErrPageNotFound},
		{"move into leaf", func() error { _, err := w.MoveInto(page, "header", "btn-inc"); return err }, tree.ErrInvalidContainer},
		{"unknown type", func() error { _, err := w.InsertNew(page, "Video", ""); return err }, nil},
		{"empty flow", func() error {
			_, err := w.UpsertFlow(page, types.ActionFlow{ID: "f", Trigger: "click"})
			return err
		}, schema.ErrEmptyFlow},
		{"delete missing flow", func() error { _, err := w.DeleteFlow(page, "nope"); return err }, engine.ErrFlowNotFound},
		{"duplicate insert id", func() error {
			_, err := w.Insert(page, types.RootCanvasID, types.ComponentNode{ID: "header", Type: types.TypeText}, 0)
			return err
		}, tree.ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Same(t, before, w.Schema())
		})
	}
	assert.Equal(t, uint64(0), w.Version())
}

func TestMoveAndDrop(t *testing.T) {
	w := newWorkspace(t)

	box, err := w.InsertNew(page, types.TypeContainer, "")
	require.NoError(t, err)

	res, err := w.Drop(page, "btn-inc", box.NodeID)
	require.NoError(t, err)
	assert.Equal(t, tree.DropNest, res.DropKind)
	parent, _ := tree.ContainerOf(w.Schema().Pages[0].Components, "btn-inc")
	assert.Equal(t, box.NodeID, parent)

	res, err = w.Drop(page, "btn-ai", "header")
	require.NoError(t, err)
	assert.Equal(t, tree.DropReorder, res.DropKind)
	assert.Equal(t, []string{"btn-ai", "header", "counter-display", "ai-result", box.NodeID}, rootIDs(w))

	_, err = w.Move(page, "btn-inc", types.RootCanvasID)
	require.NoError(t, err)
	assert.Equal(t, "btn-inc", rootIDs(w)[len(rootIDs(w))-1])

	_, err = w.MoveInto(page, box.NodeID, box.NodeID)
	assert.ErrorIs(t, err, tree.ErrCycle)
}

func TestDuplicate(t *testing.T) {
	w := newWorkspace(t)
	res, err := w.Duplicate(page, "btn-inc")
	require.NoError(t, err)
	assert.NotEqual(t, "btn-inc", res.NodeID)
	assert.Equal(t, res.NodeID, rootIDs(w)[3])

	clone, _ := tree.Find(w.Schema().Pages[0].Components, res.NodeID)
	assert.Equal(t, "flow-inc", clone.OnEvent["click"])
}

func TestPropsBindingAndEvents(t *testing.T) {
	w := newWorkspace(t)

	_, err := w.UpdateProps(page, "header", map[string]any{"content": "Hi ${title}"})
	require.NoError(t, err)
	_, err = w.SetBinding(page, "header", "title")
	require.NoError(t, err)
	_, err = w.SetEvent(page, "header", "click", "flow-ai")
	require.NoError(t, err)

	header, _ := tree.Find(w.Schema().Pages[0].Components, "header")
	assert.Equal(t, "Hi ${title}", header.Props["content"])
	assert.NotNil(t, header.Props["style"])
	assert.Equal(t, "title", header.BindState)
	assert.Equal(t, map[string]string{"click": "flow-ai"}, header.OnEvent)

	_, err = w.SetEvent(page, "header", "click", "")
	require.NoError(t, err)
	header, _ = tree.Find(w.Schema().Pages[0].Components, "header")
	assert.Nil(t, header.OnEvent)
}

func TestFlows(t *testing.T) {
	w := newWorkspace(t)
	flow := types.ActionFlow{ID: "flow-nav", Trigger: "click", Actions: []types.Action{types.Navigate{Path: "/other"}}}

	_, err := w.UpsertFlow(page, flow)
	require.NoError(t, err)
	p, _ := w.Schema().Page(page)
	require.Len(t, p.Actions, 3)

	flow.Actions = append(flow.Actions, types.UpdateState{Path: "x", Value: true})
	_, err = w.UpsertFlow(page, flow)
	require.NoError(t, err)
	p, _ = w.Schema().Page(page)
	got, _ := p.Flow("flow-nav")
	assert.Len(t, got.Actions, 2)

	_, err = w.DeleteFlow(page, "flow-nav")
	require.NoError(t, err)
	p, _ = w.Schema().Page(page)
	assert.Len(t, p.Actions, 2)
}

func TestPages(t *testing.T) {
	w := newWorkspace(t)

	_, err := w.AddPage("page-2", "/second")
	require.NoError(t, err)
	_, err = w.AddPage("page-3", "/second")
	assert.ErrorIs(t, err, schema.ErrDuplicatePagePath)

	path := "/demo"
	_, err = w.UpdatePage("page-2", PageUpdate{Path: &path})
	assert.ErrorIs(t, err, schema.ErrDuplicatePagePath)

	path = "/renamed"
	_, err = w.UpdatePage("page-2", PageUpdate{Path: &path, Props: map[string]any{"title": "Second"}})
	require.NoError(t, err)
	p, ok := w.Schema().PageByPath("/renamed")
	require.True(t, ok)
	assert.Equal(t, "Second", p.Props["title"])

	_, err = w.DeletePage("page-2")
	require.NoError(t, err)
	assert.Len(t, w.Schema().Pages, 1)
}

func TestReplaceComponentsMintsIDs(t *testing.T) {
	w := newWorkspace(t)
	forest := []types.ComponentNode{
		{ID: "dup", Type: types.TypeContainer, Children: []types.ComponentNode{{ID: "dup", Type: types.TypeText}}},
	}

	_, err := w.ReplaceComponents(page, forest)
	require.NoError(t, err)

	p, _ := w.Schema().Page(page)
	require.Len(t, p.Components, 1)
	assert.NotEqual(t, "dup", p.Components[0].ID)
	assert.NotEqual(t, p.Components[0].ID, p.Components[0].Children[0].ID)
	assert.NotNil(t, p.Components[0].Children[0].Props)

	_, err = w.ReplaceComponents(page, []types.ComponentNode{{Type: types.TypeText, Children: []types.ComponentNode{{Type: types.TypeText}}}})
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestApplyRawJSON(t *testing.T) {
	w := newWorkspace(t)

	_, err := w.ApplyRawJSON([]byte("{\n  \"pages\": [\n"))
	var perr *codec.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, uint64(0), w.Version())

	dup := `{"pages":[{"id":"p","path":"/","components":[{"id":"a","type":"Text","props":{}},{"id":"a","type":"Text","props":{}}],"actions":[]}],"initialState":{}}`
	_, err = w.ApplyRawJSON([]byte(dup))
	assert.ErrorIs(t, err, schema.ErrDuplicateNodeID)

	ok := `{"pages":[{"id":"p","path":"/","components":[{"id":"a","type":"Text"}]}],"initialState":{"n":1}}`
	_, err = w.ApplyRawJSON([]byte(ok))
	require.NoError(t, err)
	p, found := w.Schema().Page("p")
	require.True(t, found)
	assert.NotNil(t, p.Components[0].Props)
	assert.NotNil(t, p.Actions)
	assert.Equal(t, float64(1), w.Schema().InitialState["n"])
}

func TestInitialState(t *testing.T) {
	w := newWorkspace(t)

	_, err := w.MergeInitialState(map[string]any{"users": []any{"ada"}, "count": float64(5)})
	require.NoError(t, err)
	assert.Equal(t, "Low Code MVP", w.Schema().InitialState["title"])
	assert.Equal(t, float64(5), w.Schema().InitialState["count"])

	_, err = w.SetInitialState(nil)
	require.NoError(t, err)
	assert.Empty(t, w.Schema().InitialState)
}

func TestLibrary(t *testing.T) {
	w := newWorkspace(t)

	saved, err := w.SaveToLibrary("Inc button", "btn-inc")
	require.NoError(t, err)
	_, err = w.SaveToLibrary("Inc button", "header")
	assert.ErrorIs(t, err, ErrLibraryNameTaken)
	_, err = w.SaveToLibrary("Ghost", "nope")
	assert.ErrorIs(t, err, tree.ErrNodeNotFound)

	inserted, err := w.InsertFromLibrary(page, saved.NodeID, "")
	require.NoError(t, err)
	assert.NotEqual(t, "btn-inc", inserted.NodeID)
	node, ok := tree.Find(w.Schema().Pages[0].Components, inserted.NodeID)
	require.True(t, ok)
	assert.Equal(t, "Set Count to 10", node.Props["text"])

	_, err = w.InsertFromLibrary(page, "lib_missing", "")
	assert.ErrorIs(t, err, ErrLibraryNotFound)

	hero := types.ComponentNode{ID: "h", Type: types.TypeCard, Props: map[string]any{"padding": "8px"}}
	_, err = w.UpsertLibrary(LibraryCreate, "Hero", hero)
	require.NoError(t, err)
	_, err = w.UpsertLibrary(LibraryCreate, "Hero", hero)
	assert.ErrorIs(t, err, ErrLibraryNameTaken)
	_, err = w.UpsertLibrary(LibraryUpdate, "Missing", hero)
	assert.ErrorIs(t, err, ErrLibraryNotFound)

	hero.Props["padding"] = "32px"
	_, err = w.UpsertLibrary(LibraryUpdate, "Hero", hero)
	require.NoError(t, err)
	entry, ok := w.Schema().LibraryEntryByName("Hero")
	require.True(t, ok)
	assert.Equal(t, "32px", entry.Schema.Props["padding"])

	_, err = w.DeleteLibrary(entry.ID)
	require.NoError(t, err)
	assert.Len(t, w.Schema().CustomLibrary, 1)
}

func TestLoadSave(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewRepository(storage.NewMemoryStore(), false, nil, nil)
	w := New(repo, nil, nil)

	_, err := w.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "page-1", w.Schema().Pages[0].ID)

	_, err = w.InsertNew(page, types.TypeSwitch, "")
	require.NoError(t, err)
	require.NoError(t, w.Save(ctx))

	other := New(repo, nil, nil)
	_, err = other.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, w.Schema(), other.Schema())
}

type brokenRepo struct{}

func (brokenRepo) Load(context.Context) (*types.AppSchema, error) {
	return nil, errors.New("disk on fire")
}
func (brokenRepo) Save(context.Context, *types.AppSchema) error { return errors.New("disk on fire") }

func TestLoadErrorsKeepCurrent(t *testing.T) {
	w := New(brokenRepo{}, nil, nil)
	before := w.Schema()

	_, err := w.Load(context.Background())
	assert.Error(t, err)
	assert.Error(t, w.Save(context.Background()))
	assert.Same(t, before, w.Schema())

	_, err = New(nil, nil, nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoRepository)
}

func TestSubscribe(t *testing.T) {
	w := newWorkspace(t)
	events, cancel := w.Subscribe()

	_, err := w.InsertNew(page, types.TypeText, "")
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, "insert_new", ev.Op)
	assert.Equal(t, uint64(1), ev.Version)
	assert.Same(t, w.Schema(), ev.Schema)

	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open)
}

func TestMetrics(t *testing.T) {
	m := monitoring.NewMetricsWithRegistry(prometheus.NewRegistry())
	w := New(nil, nil, m)

	_, _ = w.InsertNew(page, types.TypeText, "")
	_, _ = w.Remove(page, "missing")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchemaEdits.WithLabelValues("insert_new", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SchemaEdits.WithLabelValues("remove", "rejected")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.SchemaNodes))
}
