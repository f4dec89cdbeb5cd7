// Package mcpserver serves the workspace over the Model Context Protocol.
//
// Tools mirror the editor's edit channels: tree inserts, moves and prop
// merges, whole-forest replacement from AI output, saving, and running a
// flow in a throwaway session. Rejected edits come back as tool errors with
// the document unchanged.
package mcpserver
