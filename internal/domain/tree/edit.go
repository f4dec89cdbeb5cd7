package tree

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/id"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

var (
	// ErrNodeNotFound is returned when an id does not resolve in the forest
	ErrNodeNotFound = errors.New("node not found")
	// ErrInvalidContainer is returned when a target cannot own children
	ErrInvalidContainer = errors.New("target is not a container")
	// ErrCycle is returned when a node would become its own ancestor
	ErrCycle = errors.New("node cannot be moved into its own subtree")
	// ErrDuplicateID is returned when an inserted subtree reuses an existing id
	ErrDuplicateID = errors.New("duplicate node id")
)

// Insert splices node into containerID's child list at index. Index is
// clamped to [0, len]. The root canvas splices into the top-level forest.
// Every id in node's subtree must be new to the forest and unique within
// the subtree itself.
func Insert(forest []Node, containerID string, node Node, index int) ([]Node, error) {
	idx := NewIndex(forest)
	seen := make(map[string]struct{})
	for _, nodeID := range IDs([]Node{node}) {
		_, dup := seen[nodeID]
		if dup || idx.Has(nodeID) || nodeID == types.RootCanvasID {
			return forest, fmt.Errorf("%w: %s", ErrDuplicateID, nodeID)
		}
		seen[nodeID] = struct{}{}
	}
	if !idx.IsContainer(containerID) {
		return forest, fmt.Errorf("%w: %s", ErrInvalidContainer, containerID)
	}

	out := types.CloneForest(forest)
	if containerID == types.RootCanvasID {
		return spliceIn(out, index, node.Clone()), nil
	}
	parent, _ := Find(out, containerID)
	parent.Children = spliceIn(parent.Children, index, node.Clone())
	return out, nil
}

// Remove deletes the node and its entire subtree wherever it appears.
// Removing an absent id returns an equal forest. A child list emptied by the
// removal becomes nil, the same form an untouched childless container has.
func Remove(forest []Node, nodeID string) []Node {
	out := make([]Node, 0, len(forest))
	for _, n := range forest {
		if n.ID == nodeID {
			continue
		}
		shallow := n
		shallow.Children = nil
		c := shallow.Clone()
		if kids := Remove(n.Children, nodeID); len(kids) > 0 {
			c.Children = kids
		}
		out = append(out, c)
	}
	if forest == nil {
		return nil
	}
	return out
}

// Move makes activeID a sibling of overID. Within one container the node
// takes overID's position; across containers it lands just before overID.
// Passing types.RootCanvasID as overID appends to the top-level forest.
// Move never nests: dropping onto a container is decided by ResolveDrop,
// which routes that case to MoveInto.
func Move(forest []Node, activeID, overID string) ([]Node, error) {
	if activeID == overID {
		return forest, nil
	}
	if overID == types.RootCanvasID {
		return MoveInto(forest, activeID, types.RootCanvasID)
	}

	idx := NewIndex(forest)
	from, ok := idx.ContainerOf(activeID)
	if !ok {
		return forest, fmt.Errorf("%w: %s", ErrNodeNotFound, activeID)
	}
	to, ok := idx.ContainerOf(overID)
	if !ok {
		return forest, fmt.Errorf("%w: %s", ErrNodeNotFound, overID)
	}
	if idx.IsDescendant(overID, activeID) {
		return forest, fmt.Errorf("%w: %s into %s", ErrCycle, activeID, to)
	}
	overPos, _ := idx.Position(overID)

	out := types.CloneForest(forest)
	node := detach(&out, activeID)

	dst, pos := locate(&out, overID)
	if from == to {
		pos = overPos
	}
	*dst = spliceIn(*dst, pos, node)
	return out, nil
}

// MoveInto re-parents activeID as the last child of targetID. The target
// must be a container and must not be activeID or one of its descendants.
func MoveInto(forest []Node, activeID, targetID string) ([]Node, error) {
	idx := NewIndex(forest)
	if !idx.Has(activeID) {
		return forest, fmt.Errorf("%w: %s", ErrNodeNotFound, activeID)
	}
	if targetID == activeID || idx.IsDescendant(targetID, activeID) {
		return forest, fmt.Errorf("%w: %s into %s", ErrCycle, activeID, targetID)
	}
	if !idx.IsContainer(targetID) {
		return forest, fmt.Errorf("%w: %s", ErrInvalidContainer, targetID)
	}

	out := types.CloneForest(forest)
	node := detach(&out, activeID)
	if targetID == types.RootCanvasID {
		return append(out, node), nil
	}
	target, _ := Find(out, targetID)
	target.Children = append(target.Children, node)
	return out, nil
}

// UpdateProps shallow merges partial into the node's props. Only the props
// of the node change; type, bindings and children are preserved.
func UpdateProps(forest []Node, nodeID string, partial map[string]any) ([]Node, error) {
	if _, ok := Find(forest, nodeID); !ok {
		return forest, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	out := types.CloneForest(forest)
	node, _ := Find(out, nodeID)
	if node.Props == nil {
		node.Props = make(map[string]any, len(partial))
	}
	for k, v := range partial {
		node.Props[k] = types.CopyValue(v)
	}
	return out, nil
}

// Update applies fn to a private copy of the node. fn must not change the
// node id.
func Update(forest []Node, nodeID string, fn func(node *Node)) ([]Node, error) {
	if _, ok := Find(forest, nodeID); !ok {
		return forest, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	out := types.CloneForest(forest)
	node, _ := Find(out, nodeID)
	fn(node)
	node.ID = nodeID
	return out, nil
}

// CloneSubtree deep copies node assigning a fresh id to every node.
func CloneSubtree(node Node) Node {
	return CloneSubtreeWith(node, id.NewNodeID)
}

// CloneSubtreeWith is CloneSubtree with a caller supplied id source.
func CloneSubtreeWith(node Node, newID func() string) Node {
	out := node.Clone()
	reassign(&out, newID)
	return out
}

// ReassignIDs returns a copy of the forest with every id replaced.
func ReassignIDs(forest []Node) []Node {
	out := types.CloneForest(forest)
	for i := range out {
		reassign(&out[i], id.NewNodeID)
	}
	return out
}

func reassign(n *Node, newID func() string) {
	n.ID = newID()
	for i := range n.Children {
		reassign(&n.Children[i], newID)
	}
}

// Duplicate inserts a fresh-id clone of nodeID right after the source node
// and returns the clone's id.
func Duplicate(forest []Node, nodeID string) ([]Node, string, error) {
	if _, ok := Find(forest, nodeID); !ok {
		return forest, "", fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	out := types.CloneForest(forest)
	list, pos := locate(&out, nodeID)
	clone := CloneSubtree((*list)[pos])
	*list = spliceIn(*list, pos+1, clone)
	return out, clone.ID, nil
}

// ============================================================================
// In-place helpers (operate on private copies only)
// ============================================================================

// locate returns the slice holding nodeID and its position
func locate(list *[]Node, nodeID string) (*[]Node, int) {
	for i := range *list {
		if (*list)[i].ID == nodeID {
			return list, i
		}
	}
	for i := range *list {
		if found, pos := locate(&(*list)[i].Children, nodeID); found != nil {
			return found, pos
		}
	}
	return nil, -1
}

// detach removes nodeID from its containing slice and returns it
func detach(list *[]Node, nodeID string) Node {
	holder, pos := locate(list, nodeID)
	node := (*holder)[pos]
	*holder = append((*holder)[:pos:pos], (*holder)[pos+1:]...)
	return node
}

func spliceIn(list []Node, index int, node Node) []Node {
	if index < 0 {
		index = 0
	}
	if index > len(list) {
		index = len(list)
	}
	out := make([]Node, 0, len(list)+1)
	out = append(out, list[:index]...)
	out = append(out, node)
	return append(out, list[index:]...)
}
