// Package workspace owns the live schema document.
//
// Every edit channel (palette drops, drag moves, inspector updates, AI patches,
// raw JSON text, library operations) goes through a Workspace method that
// builds the next document with the pure tree functions and swaps it in
// wholesale. A failed edit leaves the current document untouched. Readers get
// immutable snapshots and may subscribe to change events.
package workspace
