// Package ws streams runtime session events over WebSocket.
//
// Message Types (Client → Server):
//   - fire: run the flow wired to {nodeId, event}
//   - set: write {value} through the state binding of {nodeId}
//   - navigate: switch to {path}
//   - run: run {flow} on the current page
//   - render: request a fresh render
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - connected: session info and first render
//   - state, navigate, flow, reload: session events
//   - render: resolved component tree
//   - pong, error
//
// Example Usage:
//
//	handler := ws.NewHandler(sessions, logger, metrics)
//	router.GET("/sessions/:id/stream", handler.HandleConnection)
package ws
