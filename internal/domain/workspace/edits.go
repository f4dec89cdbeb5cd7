package workspace

import (
	"fmt"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/schema"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/tree"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/id"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

// InsertNew creates a palette component of type t with default props and
// drops it on overID (empty for the root canvas).
func (w *Workspace) InsertNew(pageID string, t types.ComponentType, overID string) (EditResult, error) {
	return w.editPage("insert_new", pageID, func(page *types.PageSchema) (EditResult, error) {
		node, err := schema.NewComponent(t)
		if err != nil {
			return EditResult{}, err
		}
		forest, err := tree.InsertAt(page.Components, overID, node)
		if err != nil {
			return EditResult{}, err
		}
		page.Components = forest
		return EditResult{NodeID: node.ID}, nil
	})
}

// Insert splices node into containerID at index. A node without an id
// gets a fresh one.
func (w *Workspace) Insert(pageID, containerID string, node types.ComponentNode, index int) (EditResult, error) {
	return w.editPage("insert", pageID, func(page *types.PageSchema) (EditResult, error) {
		if node.ID == "" {
			node.ID = id.NewNodeID()
		}
		if errs := schema.ValidatePage(&types.PageSchema{ID: pageID, Components: []types.ComponentNode{node}}); len(errs) > 0 {
			return EditResult{}, fmt.Errorf("%w: %v", ErrInvalidSchema, errs[0])
		}
		forest, err := tree.Insert(page.Components, containerID, node, index)
		if err != nil {
			return EditResult{}, err
		}
		page.Components = forest
		return EditResult{NodeID: node.ID}, nil
	})
}

// Remove deletes a node and its subtree
func (w *Workspace) Remove(pageID, nodeID string) (EditResult, error) {
	return w.editPage("remove", pageID, func(page *types.PageSchema) (EditResult, error) {
		if _, ok := tree.Find(page.Components, nodeID); !ok {
			return EditResult{}, fmt.Errorf("%w: %s", tree.ErrNodeNotFound, nodeID)
		}
		page.Components = tree.Remove(page.Components, nodeID)
		return EditResult{NodeID: nodeID}, nil
	})
}

// Move makes activeID a sibling of overID
func (w *Workspace) Move(pageID, activeID, overID string) (EditResult, error) {
	return w.editPage("move", pageID, func(page *types.PageSchema) (EditResult, error) {
		forest, err := tree.Move(page.Components, activeID, overID)
		if err != nil {
			return EditResult{}, err
		}
		page.Components = forest
		return EditResult{NodeID: activeID}, nil
	})
}

// MoveInto re-parents activeID under targetID
func (w *Workspace) MoveInto(pageID, activeID, targetID string) (EditResult, error) {
	return w.editPage("move_into", pageID, func(page *types.PageSchema) (EditResult, error) {
		forest, err := tree.MoveInto(page.Components, activeID, targetID)
		if err != nil {
			return EditResult{}, err
		}
		page.Components = forest
		return EditResult{NodeID: activeID}, nil
	})
}

// Drop resolves a drag of activeID released over overID
func (w *Workspace) Drop(pageID, activeID, overID string) (EditResult, error) {
	return w.editPage("drop", pageID, func(page *types.PageSchema) (EditResult, error) {
		forest, kind, err := tree.ResolveDrop(page.Components, activeID, overID)
		if err != nil {
			return EditResult{DropKind: kind}, err
		}
		page.Components = forest
		return EditResult{NodeID: activeID, DropKind: kind}, nil
	})
}

// Duplicate inserts a fresh-id clone after the node. NodeID is the clone.
func (w *Workspace) Duplicate(pageID, nodeID string) (EditResult, error) {
	return w.editPage("duplicate", pageID, func(page *types.PageSchema) (EditResult, error) {
		forest, cloneID, err := tree.Duplicate(page.Components, nodeID)
		if err != nil {
			return EditResult{}, err
		}
		page.Components = forest
		return EditResult{NodeID: cloneID}, nil
	})
}

// UpdateProps shallow merges partial into the node's props
func (w *Workspace) UpdateProps(pageID, nodeID string, partial map[string]any) (EditResult, error) {
	return w.editPage("update_props", pageID, func(page *types.PageSchema) (EditResult, error) {
		forest, err := tree.UpdateProps(page.Components, nodeID, partial)
		if err != nil {
			return EditResult{}, err
		}
		page.Components = forest
		return EditResult{NodeID: nodeID}, nil
	})
}

// SetBinding binds the node's primary value to a state key. An empty key
// removes the binding.
func (w *Workspace) SetBinding(pageID, nodeID, key string) (EditResult, error) {
	return w.editPage("set_binding", pageID, func(page *types.PageSchema) (EditResult, error) {
		forest, err := tree.Update(page.Components, nodeID, func(n *types.ComponentNode) {
			n.BindState = key
		})
		if err != nil {
			return EditResult{}, err
		}
		page.Components = forest
		return EditResult{NodeID: nodeID}, nil
	})
}

// SetEvent wires event to flowID. An empty flowID unwires it.
func (w *Workspace) SetEvent(pageID, nodeID, event, flowID string) (EditResult, error) {
	return w.editPage("set_event", pageID, func(page *types.PageSchema) (EditResult, error) {
		if event == "" {
			return EditResult{}, fmt.Errorf("%w: empty event name", ErrInvalidSchema)
		}
		forest, err := tree.Update(page.Components, nodeID, func(n *types.ComponentNode) {
			if flowID == "" {
				delete(n.OnEvent, event)
				if len(n.OnEvent) == 0 {
					n.OnEvent = nil
				}
				return
			}
			if n.OnEvent == nil {
				n.OnEvent = make(map[string]string, 1)
			}
			n.OnEvent[event] = flowID
		})
		if err != nil {
			return EditResult{}, err
		}
		page.Components = forest
		return EditResult{NodeID: nodeID}, nil
	})
}

// ReplaceComponents swaps the page's whole forest, minting fresh ids for
// every node. Used for AI generated layouts.
func (w *Workspace) ReplaceComponents(pageID string, forest []types.ComponentNode) (EditResult, error) {
	return w.editPage("replace_components", pageID, func(page *types.PageSchema) (EditResult, error) {
		fresh := tree.ReassignIDs(forest)
		if fresh == nil {
			fresh = []types.ComponentNode{}
		}
		candidate := types.PageSchema{ID: pageID, Components: fresh}
		if errs := schema.ValidatePage(&candidate); len(errs) > 0 {
			return EditResult{}, fmt.Errorf("%w: %v", ErrInvalidSchema, errs[0])
		}
		app := types.AppSchema{Pages: []types.PageSchema{candidate}}
		schema.Normalize(&app)
		page.Components = app.Pages[0].Components
		return EditResult{}, nil
	})
}
