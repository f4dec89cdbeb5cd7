// Package tree implements structural edits over a page's component forest.
//
// Every exported operation is pure: the input forest is never mutated and a
// new forest is returned. Rejected edits return the input forest unchanged
// together with an error describing why, so callers that want the silent
// no-op behaviour can simply ignore the error.
//
// Container semantics:
//   - "root-canvas" names the top-level forest of a page
//   - only Container, Card and CustomComponent nodes own children
//   - dropping onto a container nests, dropping onto a leaf reorders
package tree

import (
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

// Node is a component tree node
type Node = types.ComponentNode

// Find returns the first node with the given id in depth-first pre-order.
// The returned pointer aliases the input forest and must be treated as read-only.
func Find(forest []Node, nodeID string) (*Node, bool) {
	for i := range forest {
		if forest[i].ID == nodeID {
			return &forest[i], true
		}
		if found, ok := Find(forest[i].Children, nodeID); ok {
			return found, true
		}
	}
	return nil, false
}

// ContainerOf returns types.RootCanvasID for a top-level node, the parent id
// for a nested node, and false when the id is absent.
func ContainerOf(forest []Node, nodeID string) (string, bool) {
	for i := range forest {
		if forest[i].ID == nodeID {
			return types.RootCanvasID, true
		}
	}
	for i := range forest {
		if parent, ok := containerIn(&forest[i], nodeID); ok {
			return parent, true
		}
	}
	return "", false
}

func containerIn(parent *Node, nodeID string) (string, bool) {
	for i := range parent.Children {
		if parent.Children[i].ID == nodeID {
			return parent.ID, true
		}
	}
	for i := range parent.Children {
		if found, ok := containerIn(&parent.Children[i], nodeID); ok {
			return found, true
		}
	}
	return "", false
}

// Walk visits every node in depth-first pre-order. Returning false from fn
// skips the node's subtree.
func Walk(forest []Node, fn func(node *Node, parentID string, depth int) bool) {
	walk(forest, types.RootCanvasID, 0, fn)
}

func walk(forest []Node, parentID string, depth int, fn func(*Node, string, int) bool) {
	for i := range forest {
		if fn(&forest[i], parentID, depth) {
			walk(forest[i].Children, forest[i].ID, depth+1, fn)
		}
	}
}

// Count returns the number of nodes in the forest
func Count(forest []Node) int {
	n := 0
	Walk(forest, func(*Node, string, int) bool {
		n++
		return true
	})
	return n
}

// IDs returns every node id in depth-first pre-order
func IDs(forest []Node) []string {
	ids := make([]string, 0, len(forest))
	Walk(forest, func(node *Node, _ string, _ int) bool {
		ids = append(ids, node.ID)
		return true
	})
	return ids
}
