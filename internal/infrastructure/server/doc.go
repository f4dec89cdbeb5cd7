// Package server assembles the Studio host.
//
// Core wires storage, the workspace, the flow engine and the AI service from
// configuration. Server puts the REST API and the session stream in front of
// a Core; the MCP command reuses Core without HTTP.
package server
