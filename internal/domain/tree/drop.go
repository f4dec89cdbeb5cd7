package tree

import (
	"fmt"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

// DropKind describes how a drop was resolved
type DropKind string

const (
	DropNone    DropKind = "none"
	DropNest    DropKind = "nest"
	DropReorder DropKind = "reorder"
)

// ClassifyDrop applies the drop rule without editing: the root canvas and
// container-capable nodes nest, leaves reorder. Nesting is checked first.
func ClassifyDrop(forest []Node, activeID, overID string) DropKind {
	if activeID == overID || overID == "" {
		return DropNone
	}
	if overID == types.RootCanvasID {
		return DropNest
	}
	over, ok := Find(forest, overID)
	if !ok {
		return DropNone
	}
	if over.IsContainer() {
		return DropNest
	}
	return DropReorder
}

// ResolveDrop moves an existing node according to the drop rule.
func ResolveDrop(forest []Node, activeID, overID string) ([]Node, DropKind, error) {
	switch kind := ClassifyDrop(forest, activeID, overID); kind {
	case DropNest:
		out, err := MoveInto(forest, activeID, overID)
		return out, kind, err
	case DropReorder:
		out, err := Move(forest, activeID, overID)
		return out, kind, err
	default:
		if activeID == overID {
			return forest, DropNone, nil
		}
		return forest, DropNone, fmt.Errorf("%w: %s", ErrNodeNotFound, overID)
	}
}

// InsertAt places a brand-new node according to the drop rule: appended to
// a container (or the root canvas when overID is empty) and otherwise
// inserted right after the leaf it was dropped on.
func InsertAt(forest []Node, overID string, node Node) ([]Node, error) {
	if overID == "" || overID == types.RootCanvasID {
		return Insert(forest, types.RootCanvasID, node, len(forest))
	}
	idx := NewIndex(forest)
	if !idx.Has(overID) {
		return forest, fmt.Errorf("%w: %s", ErrNodeNotFound, overID)
	}
	if idx.IsContainer(overID) {
		over, _ := Find(forest, overID)
		return Insert(forest, overID, node, len(over.Children))
	}
	container, _ := idx.ContainerOf(overID)
	pos, _ := idx.Position(overID)
	return Insert(forest, container, node, pos+1)
}
