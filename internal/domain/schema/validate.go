// Package schema checks and builds AppSchema documents.
//
// Validate enforces the structural rules every edit must preserve: unique
// node ids per page, no node named after the root canvas, children only on
// container types, non-empty and uniquely named flows, and unique library
// ids and names. It does not check props against a grammar.
package schema

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

var (
	ErrDuplicateNodeID   = errors.New("duplicate node id")
	ErrReservedID        = errors.New("reserved node id")
	ErrUnknownType       = errors.New("unknown component type")
	ErrLeafChildren      = errors.New("non-container node has children")
	ErrEmptyFlow         = errors.New("flow has no actions")
	ErrDuplicateFlowID   = errors.New("duplicate flow id")
	ErrDuplicatePageID   = errors.New("duplicate page id")
	ErrDuplicatePagePath = errors.New("duplicate page path")
	ErrDuplicateLibrary  = errors.New("duplicate library entry")
	ErrMissingID         = errors.New("missing id")
)

// Validate reports every structural violation in app, joined into one error.
func Validate(app *types.AppSchema) error {
	if app == nil {
		return errors.New("schema is nil")
	}
	var errs []error

	pageIDs := make(map[string]struct{}, len(app.Pages))
	paths := make(map[string]struct{}, len(app.Pages))
	for i := range app.Pages {
		page := &app.Pages[i]
		if page.ID == "" {
			errs = append(errs, fmt.Errorf("page %d: %w", i, ErrMissingID))
		} else if _, dup := pageIDs[page.ID]; dup {
			errs = append(errs, fmt.Errorf("page %q: %w", page.ID, ErrDuplicatePageID))
		}
		pageIDs[page.ID] = struct{}{}
		if _, dup := paths[page.Path]; dup {
			errs = append(errs, fmt.Errorf("page %q path %q: %w", page.ID, page.Path, ErrDuplicatePagePath))
		}
		paths[page.Path] = struct{}{}

		errs = append(errs, ValidatePage(page)...)
	}

	libIDs := make(map[string]struct{}, len(app.CustomLibrary))
	libNames := make(map[string]struct{}, len(app.CustomLibrary))
	for _, entry := range app.CustomLibrary {
		if _, dup := libIDs[entry.ID]; dup {
			errs = append(errs, fmt.Errorf("library id %q: %w", entry.ID, ErrDuplicateLibrary))
		}
		libIDs[entry.ID] = struct{}{}
		if _, dup := libNames[entry.Name]; dup {
			errs = append(errs, fmt.Errorf("library name %q: %w", entry.Name, ErrDuplicateLibrary))
		}
		libNames[entry.Name] = struct{}{}

		seen := make(map[string]struct{})
		errs = append(errs, validateNodes([]types.ComponentNode{entry.Schema}, seen, "library "+entry.Name)...)
	}

	return errors.Join(errs...)
}

// ValidatePage checks one page's tree and flows.
func ValidatePage(page *types.PageSchema) []error {
	var errs []error
	seen := make(map[string]struct{})
	errs = append(errs, validateNodes(page.Components, seen, "page "+page.ID)...)

	flows := make(map[string]struct{}, len(page.Actions))
	for _, flow := range page.Actions {
		if _, dup := flows[flow.ID]; dup {
			errs = append(errs, fmt.Errorf("page %s flow %q: %w", page.ID, flow.ID, ErrDuplicateFlowID))
		}
		flows[flow.ID] = struct{}{}
		if len(flow.Actions) == 0 {
			errs = append(errs, fmt.Errorf("page %s flow %q: %w", page.ID, flow.ID, ErrEmptyFlow))
		}
	}
	return errs
}

func validateNodes(nodes []types.ComponentNode, seen map[string]struct{}, where string) []error {
	var errs []error
	for i := range nodes {
		n := &nodes[i]
		switch {
		case n.ID == "":
			errs = append(errs, fmt.Errorf("%s: %s node: %w", where, n.Type, ErrMissingID))
		case n.ID == types.RootCanvasID:
			errs = append(errs, fmt.Errorf("%s: %w: %s", where, ErrReservedID, n.ID))
		default:
			if _, dup := seen[n.ID]; dup {
				errs = append(errs, fmt.Errorf("%s: %w: %s", where, ErrDuplicateNodeID, n.ID))
			}
			seen[n.ID] = struct{}{}
		}
		if !n.Type.Valid() {
			errs = append(errs, fmt.Errorf("%s: node %s: %w %q", where, n.ID, ErrUnknownType, n.Type))
		}
		if len(n.Children) > 0 && !n.IsContainer() {
			errs = append(errs, fmt.Errorf("%s: node %s (%s): %w", where, n.ID, n.Type, ErrLeafChildren))
		}
		errs = append(errs, validateNodes(n.Children, seen, where)...)
	}
	return errs
}

// DanglingFlows lists onEvent references that name no flow on the page.
// They are legal (the engine logs and ignores them) but worth surfacing.
func DanglingFlows(page *types.PageSchema) []string {
	var missing []string
	var visit func(nodes []types.ComponentNode)
	visit = func(nodes []types.ComponentNode) {
		for i := range nodes {
			for _, flowID := range nodes[i].OnEvent {
				if _, ok := page.Flow(flowID); !ok {
					missing = append(missing, flowID)
				}
			}
			visit(nodes[i].Children)
		}
	}
	visit(page.Components)
	return missing
}

// Normalize fills nil props, component lists, flow lists and initial state
// with empty values so the document serializes without nulls. Empty child
// lists become nil; "children" is omitted from the wire either way.
func Normalize(app *types.AppSchema) {
	if app.InitialState == nil {
		app.InitialState = map[string]any{}
	}
	if app.Pages == nil {
		app.Pages = []types.PageSchema{}
	}
	for i := range app.Pages {
		p := &app.Pages[i]
		if p.Components == nil {
			p.Components = []types.ComponentNode{}
		}
		if p.Actions == nil {
			p.Actions = []types.ActionFlow{}
		}
		normalizeNodes(p.Components)
	}
	for i := range app.CustomLibrary {
		normalizeNodes(app.CustomLibrary[i].Schema.Children)
		if app.CustomLibrary[i].Schema.Props == nil {
			app.CustomLibrary[i].Schema.Props = map[string]any{}
		}
	}
}

func normalizeNodes(nodes []types.ComponentNode) {
	for i := range nodes {
		if nodes[i].Props == nil {
			nodes[i].Props = map[string]any{}
		}
		if len(nodes[i].Children) == 0 {
			nodes[i].Children = nil
		}
		normalizeNodes(nodes[i].Children)
	}
}
