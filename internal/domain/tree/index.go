package tree

import "github.com/GriffinCanCode/Studio/backend/internal/shared/types"

// Index is a parent/position lookup table built from one forest snapshot.
// It answers ContainerOf and ancestry questions in O(1)/O(depth) instead of
// a full traversal. The index is stale after any edit.
type Index struct {
	parent   map[string]string
	position map[string]int
	kind     map[string]types.ComponentType
}

// NewIndex indexes the forest. For duplicated ids the first occurrence in
// pre-order wins, matching Find.
func NewIndex(forest []Node) *Index {
	idx := &Index{
		parent:   make(map[string]string),
		position: make(map[string]int),
		kind:     make(map[string]types.ComponentType),
	}
	idx.add(forest, types.RootCanvasID)
	return idx
}

func (x *Index) add(list []Node, parentID string) {
	for i := range list {
		n := &list[i]
		if _, seen := x.parent[n.ID]; !seen {
			x.parent[n.ID] = parentID
			x.position[n.ID] = i
			x.kind[n.ID] = n.Type
		}
		x.add(n.Children, n.ID)
	}
}

// Len returns the number of distinct ids indexed
func (x *Index) Len() int { return len(x.parent) }

// Has reports whether id is present
func (x *Index) Has(nodeID string) bool {
	_, ok := x.parent[nodeID]
	return ok
}

// ContainerOf mirrors the package level ContainerOf
func (x *Index) ContainerOf(nodeID string) (string, bool) {
	p, ok := x.parent[nodeID]
	return p, ok
}

// Position returns the node's index within its container
func (x *Index) Position(nodeID string) (int, bool) {
	p, ok := x.position[nodeID]
	return p, ok
}

// IsContainer reports whether id names a container-capable node. The root
// canvas counts as a container.
func (x *Index) IsContainer(nodeID string) bool {
	if nodeID == types.RootCanvasID {
		return true
	}
	t, ok := x.kind[nodeID]
	return ok && types.IsContainerType(t)
}

// Ancestors returns the parent chain of id, nearest first, excluding the
// root canvas.
func (x *Index) Ancestors(nodeID string) []string {
	var chain []string
	for cur, ok := x.parent[nodeID]; ok && cur != types.RootCanvasID; cur, ok = x.parent[cur] {
		chain = append(chain, cur)
		if len(chain) > len(x.parent) {
			break
		}
	}
	return chain
}

// IsDescendant reports whether nodeID lies strictly inside ancestorID's subtree
func (x *Index) IsDescendant(nodeID, ancestorID string) bool {
	for _, a := range x.Ancestors(nodeID) {
		if a == ancestorID {
			return true
		}
	}
	return false
}
