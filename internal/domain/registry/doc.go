// Package registry seeds the custom component library from disk.
//
// A library directory holds one reusable component per file. Files are
// selected by a doublestar pattern (default **/*.json) and may be JSON or
// YAML. Each file is either a named entry:
//
//	{"name": "Hero Card", "schema": {"type": "Card", "children": [...]}}
//
// or a bare component node, named after the file stem. Seeding never
// overwrites: entries whose name already exists in the library are skipped.
package registry
