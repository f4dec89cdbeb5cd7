package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

func TestDefaultIsValid(t *testing.T) {
	app := Default()
	require.NoError(t, Validate(app))

	page, ok := app.PageByPath("/demo")
	require.True(t, ok)
	assert.Len(t, page.Components, 5)
	assert.Empty(t, DanglingFlows(page))
	assert.Equal(t, "Low Code MVP", app.InitialState["title"])
}

func TestDefaultReturnsFreshCopies(t *testing.T) {
	a := Default()
	a.Pages[0].Components[0].Props["content"] = "changed"
	assert.Equal(t, "Welcome to LowCode Studio", Default().Pages[0].Components[0].Props["content"])
}

func TestDefaultJSONRoundTrip(t *testing.T) {
	data, err := codec.MarshalIndent(Default())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"bindState": "count"`)

	var back types.AppSchema
	require.NoError(t, codec.Parse(data, &back))
	assert.Equal(t, Default(), &back)
}

func TestValidateReportsEveryViolation(t *testing.T) {
	app := &types.AppSchema{
		Pages: []types.PageSchema{
			{
				ID:   "p",
				Path: "/",
				Components: []types.ComponentNode{
					{ID: "a", Type: types.TypeText},
					{ID: "box", Type: types.TypeContainer, Children: []types.ComponentNode{
						{ID: "a", Type: types.TypeText},
					}},
					{ID: types.RootCanvasID, Type: types.TypeText},
					{ID: "leaf", Type: types.TypeButton, Children: []types.ComponentNode{{ID: "x", Type: types.TypeText}}},
					{ID: "odd", Type: "Video"},
				},
				Actions: []types.ActionFlow{
					{ID: "f", Actions: nil},
					{ID: "f", Actions: []types.Action{types.Navigate{Path: "/"}}},
				},
			},
			{ID: "p", Path: "/"},
		},
		CustomLibrary: []types.LibraryEntry{
			{ID: "l1", Name: "Hero", Schema: types.ComponentNode{ID: "h", Type: types.TypeCard}},
			{ID: "l2", Name: "Hero", Schema: types.ComponentNode{ID: "h2", Type: types.TypeCard}},
		},
	}

	err := Validate(app)
	require.Error(t, err)

	for _, target := range []error{
		ErrDuplicateNodeID, ErrReservedID, ErrLeafChildren, ErrUnknownType,
		ErrEmptyFlow, ErrDuplicateFlowID, ErrDuplicatePageID, ErrDuplicatePagePath,
		ErrDuplicateLibrary,
	} {
		assert.True(t, errors.Is(err, target), "missing %v in %v", target, err)
	}
}

func TestDanglingFlows(t *testing.T) {
	page := &types.PageSchema{
		Components: []types.ComponentNode{
			{ID: "b", Type: types.TypeButton, OnEvent: map[string]string{"click": "nowhere"}},
		},
	}
	assert.Equal(t, []string{"nowhere"}, DanglingFlows(page))
}

func TestNewComponent(t *testing.T) {
	for _, ct := range types.ComponentTypes {
		node, err := NewComponent(ct)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(node.ID, "comp_"))
		assert.NotNil(t, node.Props)
		assert.Nil(t, node.Children)
	}

	_, err := NewComponent("Video")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestNormalize(t *testing.T) {
	app := &types.AppSchema{Pages: []types.PageSchema{{ID: "p", Components: []types.ComponentNode{
		{ID: "a", Type: types.TypeText},
		{ID: "box", Type: types.TypeContainer, Children: []types.ComponentNode{}},
	}}}}
	Normalize(app)

	assert.Nil(t, app.Pages[0].Components[1].Children)
	assert.NotNil(t, app.InitialState)
	assert.NotNil(t, app.Pages[0].Actions)
	assert.NotNil(t, app.Pages[0].Components[0].Props)
	require.NoError(t, Validate(app))
}
