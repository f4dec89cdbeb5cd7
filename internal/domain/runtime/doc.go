// Package runtime executes a schema the way an end user would see it.
//
// A Session pairs an immutable schema snapshot with its own state.Store and
// the current page. Render resolves every node's props against the state;
// Fire looks up the flow wired to a node event and hands it to the engine.
// Sessions publish state changes, navigations and flow results to
// subscribers, which is what the WebSocket stream forwards.
package runtime
