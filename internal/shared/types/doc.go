// Package types defines the schema documents shared by every backend layer.
//
// Core Types:
//   - ComponentNode: a typed UI node with props, state binding, event wiring and children
//   - PageSchema: a routable page owning a component forest and its action flows
//   - ActionFlow: an ordered, non-empty list of actions triggered by an event
//   - Action: closed union of UpdateState, Request, Navigate, AI and Script
//   - AppSchema: pages, initial state and the custom component library
//
// Only Container, Card and CustomComponent nodes may own children. Runtime
// state is a flat map: keys are opaque strings, "a.b" is a single key.
//
// Example Usage:
//
//	flow := types.ActionFlow{
//	    ID:      "flow-inc",
//	    Trigger: "click",
//	    Actions: []types.Action{types.UpdateState{Path: "count", Value: 10}},
//	}
package types
