// Package http exposes the studio over a gin REST API.
//
// Route groups:
//   - /schema: whole document read, raw text replace, save, reload, export
//   - /pages: page CRUD and tree edits on a page's component forest
//   - /library: the custom component library
//   - /sessions: runtime sessions (render, state, events, flows)
//   - /ai: copilot chat, layout, mock data and code generation
//
// Every edit endpoint answers with the workspace EditResult. Errors use the
// {"error": "..."} body; malformed schema text adds line and column.
package http
