package runtime

import (
	"sort"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/interpolate"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

// RenderedNode is a component with its props resolved against state
type RenderedNode struct {
	ID       string              `json:"id"`
	Type     types.ComponentType `json:"type"`
	Props    map[string]any      `json:"props"`
	Value    any                 `json:"value,omitempty"`
	Bound    bool                `json:"bound,omitempty"`
	Events   []string            `json:"events,omitempty"`
	Children []RenderedNode      `json:"children,omitempty"`
}

// Render resolves a forest. A bound node's value comes from state and wins
// over props when both are present.
func Render(forest []types.ComponentNode, data map[string]any) []RenderedNode {
	out := make([]RenderedNode, len(forest))
	for i := range forest {
		out[i] = renderNode(&forest[i], data)
	}
	return out
}

func renderNode(n *types.ComponentNode, data map[string]any) RenderedNode {
	r := RenderedNode{
		ID:    n.ID,
		Type:  n.Type,
		Props: interpolate.Props(n.Props, data),
	}
	if r.Props == nil {
		r.Props = map[string]any{}
	}
	if n.BindState != "" {
		r.Bound = true
		r.Value = data[n.BindState]
	}
	for event := range n.OnEvent {
		r.Events = append(r.Events, event)
	}
	sort.Strings(r.Events)
	if len(n.Children) > 0 {
		r.Children = Render(n.Children, data)
	}
	return r
}
