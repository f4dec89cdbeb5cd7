package schema

import (
	"fmt"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/id"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

// Default returns the built-in document served when nothing is persisted.
func Default() *types.AppSchema {
	return &types.AppSchema{
		InitialState: map[string]any{
			"title":      "Low Code MVP",
			"count":      float64(0),
			"aiResponse": "Waiting...",
		},
		Pages: []types.PageSchema{
			{
				ID:   "page-1",
				Path: "/demo",
				Components: []types.ComponentNode{
					{
						ID:   "header",
						Type: types.TypeText,
						Props: map[string]any{
							"content": "Welcome to LowCode Studio",
							"style":   map[string]any{"fontSize": "24px", "fontWeight": "bold"},
						},
					},
					{
						ID:        "counter-display",
						Type:      types.TypeText,
						Props:     map[string]any{"content": "Current Count: ${count}"},
						BindState: "count",
					},
					{
						ID:      "btn-inc",
						Type:    types.TypeButton,
						Props:   map[string]any{"text": "Set Count to 10"},
						OnEvent: map[string]string{"click": "flow-inc"},
					},
					{
						ID:   "ai-result",
						Type: types.TypeText,
						Props: map[string]any{
							"content": "AI Says: ${aiResponse}",
							"style":   map[string]any{"color": "blue"},
						},
						BindState: "aiResponse",
					},
					{
						ID:      "btn-ai",
						Type:    types.TypeButton,
						Props:   map[string]any{"text": "Ask AI Mock"},
						OnEvent: map[string]string{"click": "flow-ai"},
					},
				},
				Actions: []types.ActionFlow{
					{
						ID:      "flow-inc",
						Trigger: "click",
						Actions: []types.Action{types.UpdateState{Path: "count", Value: float64(10)}},
					},
					{
						ID:      "flow-ai",
						Trigger: "click",
						Actions: []types.Action{types.AI{Prompt: "Hello AI", OutputStatePath: "aiResponse"}},
					},
				},
			},
		},
	}
}

// DefaultProps returns the palette props for a freshly dropped node.
func DefaultProps(t types.ComponentType) map[string]any {
	switch t {
	case types.TypeText:
		return map[string]any{"content": "New Text"}
	case types.TypeButton:
		return map[string]any{"text": "Button"}
	case types.TypeInput:
		return map[string]any{"placeholder": "Enter text..."}
	case types.TypeImage:
		return map[string]any{"src": "https://placehold.co/300x200", "width": "300px", "height": "200px"}
	case types.TypeContainer:
		return map[string]any{"padding": "16px"}
	case types.TypeCard:
		return map[string]any{"padding": "24px"}
	case types.TypeDivider:
		return map[string]any{}
	case types.TypeCheckbox:
		return map[string]any{"label": "Checkbox", "checked": false}
	case types.TypeSwitch:
		return map[string]any{"label": "Switch", "active": false}
	case types.TypeCustomComponent:
		return map[string]any{"title": "Custom Component", "description": "", "padding": "16px"}
	default:
		return map[string]any{}
	}
}

// NewComponent mints a palette node with a fresh id and default props.
func NewComponent(t types.ComponentType) (types.ComponentNode, error) {
	if !t.Valid() {
		return types.ComponentNode{}, fmt.Errorf("%w %q", ErrUnknownType, t)
	}
	return types.ComponentNode{
		ID:    id.NewNodeID(),
		Type:  t,
		Props: DefaultProps(t),
	}, nil
}

// NewPage returns an empty page
func NewPage(pageID, path string) types.PageSchema {
	return types.PageSchema{
		ID:         pageID,
		Path:       path,
		Props:      map[string]any{},
		Components: []types.ComponentNode{},
		Actions:    []types.ActionFlow{},
	}
}
