package workspace

import (
	"fmt"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/engine"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/schema"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/utils"
)

// PageUpdate carries optional page field changes
type PageUpdate struct {
	Path  *string        `json:"path,omitempty"`
	Props map[string]any `json:"props,omitempty"`
}

// UpsertFlow replaces the flow with the same id or appends it
func (w *Workspace) UpsertFlow(pageID string, flow types.ActionFlow) (EditResult, error) {
	return w.editPage("upsert_flow", pageID, func(page *types.PageSchema) (EditResult, error) {
		if err := utils.ValidateID(flow.ID, "flow id", true); err != nil {
			return EditResult{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
		if len(flow.Actions) == 0 {
			return EditResult{}, fmt.Errorf("flow %s: %w", flow.ID, schema.ErrEmptyFlow)
		}

		flow = flow.Clone()
		for i := range page.Actions {
			if page.Actions[i].ID == flow.ID {
				page.Actions[i] = flow
				return EditResult{}, nil
			}
		}
		page.Actions = append(page.Actions, flow)
		return EditResult{}, nil
	})
}

// DeleteFlow removes a flow. Events still pointing at it become dangling.
func (w *Workspace) DeleteFlow(pageID, flowID string) (EditResult, error) {
	return w.editPage("delete_flow", pageID, func(page *types.PageSchema) (EditResult, error) {
		for i := range page.Actions {
			if page.Actions[i].ID == flowID {
				page.Actions = append(page.Actions[:i], page.Actions[i+1:]...)
				return EditResult{}, nil
			}
		}
		return EditResult{}, fmt.Errorf("%w: %s", engine.ErrFlowNotFound, flowID)
	})
}

// UpdatePage changes the route path and merges page props
func (w *Workspace) UpdatePage(pageID string, update PageUpdate) (EditResult, error) {
	return w.edit("update_page", func(next *types.AppSchema) (EditResult, error) {
		page, ok := next.Page(pageID)
		if !ok {
			return EditResult{}, fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
		}
		if update.Path != nil {
			if err := utils.ValidatePagePath(*update.Path); err != nil {
				return EditResult{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
			}
			if other, taken := next.PageByPath(*update.Path); taken && other.ID != pageID {
				return EditResult{}, fmt.Errorf("%w: %s", schema.ErrDuplicatePagePath, *update.Path)
			}
			page.Path = *update.Path
		}
		if len(update.Props) > 0 {
			if page.Props == nil {
				page.Props = make(map[string]any, len(update.Props))
			}
			for k, v := range update.Props {
				page.Props[k] = types.CopyValue(v)
			}
		}
		return EditResult{PageID: pageID}, nil
	})
}

// AddPage appends an empty page
func (w *Workspace) AddPage(pageID, path string) (EditResult, error) {
	return w.edit("add_page", func(next *types.AppSchema) (EditResult, error) {
		if err := utils.ValidateID(pageID, "page id", true); err != nil {
			return EditResult{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
		if err := utils.ValidatePagePath(path); err != nil {
			return EditResult{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
		if _, taken := next.Page(pageID); taken {
			return EditResult{}, fmt.Errorf("%w: %s", schema.ErrDuplicatePageID, pageID)
		}
		if _, taken := next.PageByPath(path); taken {
			return EditResult{}, fmt.Errorf("%w: %s", schema.ErrDuplicatePagePath, path)
		}
		next.Pages = append(next.Pages, schema.NewPage(pageID, path))
		return EditResult{PageID: pageID}, nil
	})
}

// DeletePage removes a page
func (w *Workspace) DeletePage(pageID string) (EditResult, error) {
	return w.edit("delete_page", func(next *types.AppSchema) (EditResult, error) {
		for i := range next.Pages {
			if next.Pages[i].ID == pageID {
				next.Pages = append(next.Pages[:i], next.Pages[i+1:]...)
				return EditResult{PageID: pageID}, nil
			}
		}
		return EditResult{}, fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
	})
}

// SetInitialState replaces the initial state map
func (w *Workspace) SetInitialState(data map[string]any) (EditResult, error) {
	return w.edit("set_initial_state", func(next *types.AppSchema) (EditResult, error) {
		next.InitialState = types.CopyMap(data)
		if next.InitialState == nil {
			next.InitialState = map[string]any{}
		}
		return EditResult{}, nil
	})
}

// MergeInitialState shallow merges data over the initial state
func (w *Workspace) MergeInitialState(data map[string]any) (EditResult, error) {
	return w.edit("merge_initial_state", func(next *types.AppSchema) (EditResult, error) {
		if next.InitialState == nil {
			next.InitialState = make(map[string]any, len(data))
		}
		for k, v := range data {
			next.InitialState[k] = types.CopyValue(v)
		}
		return EditResult{}, nil
	})
}

// ApplyRawJSON replaces the document with text. Malformed or invalid text
// is reported and never applied; parse failures carry a *codec.ParseError.
func (w *Workspace) ApplyRawJSON(text []byte) (EditResult, error) {
	return w.edit("raw_json", func(next *types.AppSchema) (EditResult, error) {
		if err := utils.ValidateSize(text, utils.MaxSchemaSize); err != nil {
			return EditResult{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}

		var probe any
		if err := codec.Parse(text, &probe); err != nil {
			return EditResult{}, err
		}
		if err := utils.ValidateJSONDepth(probe, utils.MaxSchemaDepth); err != nil {
			return EditResult{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}

		var parsed types.AppSchema
		if err := codec.Parse(text, &parsed); err != nil {
			return EditResult{}, err
		}
		if err := schema.Validate(&parsed); err != nil {
			return EditResult{}, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}
		schema.Normalize(&parsed)

		*next = parsed
		return EditResult{}, nil
	})
}
