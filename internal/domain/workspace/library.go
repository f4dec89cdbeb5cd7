package workspace

import (
	"fmt"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/schema"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/tree"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/id"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/utils"
)

// LibraryIntent selects create or update semantics for UpsertLibrary
type LibraryIntent string

const (
	LibraryCreate LibraryIntent = "create_reusable"
	LibraryUpdate LibraryIntent = "update_reusable"
)

// SaveToLibrary stores a copy of nodeID's subtree, looked up on every page,
// as a named reusable component. NodeID of the result is the entry id.
func (w *Workspace) SaveToLibrary(name, nodeID string) (EditResult, error) {
	return w.edit("save_to_library", func(next *types.AppSchema) (EditResult, error) {
		if err := utils.ValidateName(name, "library name"); err != nil {
			return EditResult{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
		if _, taken := next.LibraryEntryByName(name); taken {
			return EditResult{}, fmt.Errorf("%w: %s", ErrLibraryNameTaken, name)
		}

		for i := range next.Pages {
			if node, ok := tree.Find(next.Pages[i].Components, nodeID); ok {
				entry := types.LibraryEntry{ID: id.NewLibraryID(), Name: name, Schema: node.Clone()}
				next.CustomLibrary = append(next.CustomLibrary, entry)
				return EditResult{PageID: next.Pages[i].ID, NodeID: entry.ID}, nil
			}
		}
		return EditResult{}, fmt.Errorf("%w: %s", tree.ErrNodeNotFound, nodeID)
	})
}

// InsertFromLibrary drops a fresh-id copy of a library entry on overID
func (w *Workspace) InsertFromLibrary(pageID, entryID, overID string) (EditResult, error) {
	return w.editPage("insert_from_library", pageID, func(page *types.PageSchema) (EditResult, error) {
		entry, ok := w.current.Load().LibraryEntry(entryID)
		if !ok {
			return EditResult{}, fmt.Errorf("%w: %s", ErrLibraryNotFound, entryID)
		}
		node := tree.CloneSubtree(entry.Schema)
		forest, err := tree.InsertAt(page.Components, overID, node)
		if err != nil {
			return EditResult{}, err
		}
		page.Components = forest
		return EditResult{NodeID: node.ID}, nil
	})
}

// UpsertLibrary applies an AI library intent. Create rejects taken names,
// update requires an existing entry. Component ids are re-minted.
func (w *Workspace) UpsertLibrary(intent LibraryIntent, name string, component types.ComponentNode) (EditResult, error) {
	return w.edit("upsert_library", func(next *types.AppSchema) (EditResult, error) {
		if err := utils.ValidateName(name, "library name"); err != nil {
			return EditResult{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
		node := tree.CloneSubtree(component)
		if errs := schema.ValidatePage(&types.PageSchema{Components: []types.ComponentNode{node}}); len(errs) > 0 {
			return EditResult{}, fmt.Errorf("%w: %v", ErrInvalidSchema, errs[0])
		}
		lib := types.AppSchema{CustomLibrary: []types.LibraryEntry{{Schema: node}}}
		schema.Normalize(&lib)
		node = lib.CustomLibrary[0].Schema

		existing, found := next.LibraryEntryByName(name)
		switch intent {
		case LibraryCreate:
			if found {
				return EditResult{}, fmt.Errorf("%w: %s", ErrLibraryNameTaken, name)
			}
			entry := types.LibraryEntry{ID: id.NewLibraryID(), Name: name, Schema: node}
			next.CustomLibrary = append(next.CustomLibrary, entry)
			return EditResult{NodeID: entry.ID}, nil
		case LibraryUpdate:
			if !found {
				return EditResult{}, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
			}
			existing.Schema = node
			return EditResult{NodeID: existing.ID}, nil
		default:
			return EditResult{}, fmt.Errorf("%w: unknown library intent %q", ErrInvalidSchema, intent)
		}
	})
}

// DeleteLibrary removes an entry
func (w *Workspace) DeleteLibrary(entryID string) (EditResult, error) {
	return w.edit("delete_library", func(next *types.AppSchema) (EditResult, error) {
		for i := range next.CustomLibrary {
			if next.CustomLibrary[i].ID == entryID {
				next.CustomLibrary = append(next.CustomLibrary[:i], next.CustomLibrary[i+1:]...)
				return EditResult{NodeID: entryID}, nil
			}
		}
		return EditResult{}, fmt.Errorf("%w: %s", ErrLibraryNotFound, entryID)
	})
}
