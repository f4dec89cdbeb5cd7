package types

// ComponentType enumerates the node kinds a page may contain
type ComponentType string

const (
	TypeText            ComponentType = "Text"
	TypeButton          ComponentType = "Button"
	TypeInput           ComponentType = "Input"
	TypeContainer       ComponentType = "Container"
	TypeImage           ComponentType = "Image"
	TypeCard            ComponentType = "Card"
	TypeDivider         ComponentType = "Divider"
	TypeCheckbox        ComponentType = "Checkbox"
	TypeSwitch          ComponentType = "Switch"
	TypeCustomComponent ComponentType = "CustomComponent"
)

// RootCanvasID is the sentinel container id for a page's top-level forest.
// No node may use it as its own id.
const RootCanvasID = "root-canvas"

// ComponentTypes lists every known component type in palette order
var ComponentTypes = []ComponentType{
	TypeText, TypeButton, TypeInput, TypeContainer, TypeImage,
	TypeCard, TypeDivider, TypeCheckbox, TypeSwitch, TypeCustomComponent,
}

// Valid reports whether t is a known component type
func (t ComponentType) Valid() bool {
	for _, known := range ComponentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsContainerType reports whether nodes of type t may own children
func IsContainerType(t ComponentType) bool {
	switch t {
	case TypeContainer, TypeCard, TypeCustomComponent:
		return true
	default:
		return false
	}
}

// ComponentNode is a single node in a page's component tree
type ComponentNode struct {
	ID        string            `json:"id"`
	Type      ComponentType     `json:"type"`
	Props     map[string]any    `json:"props"`
	BindState string            `json:"bindState,omitempty"`
	OnEvent   map[string]string `json:"onEvent,omitempty"`
	Children  []ComponentNode   `json:"children,omitempty"`
}

// IsContainer reports whether the node may own children
func (n *ComponentNode) IsContainer() bool {
	return IsContainerType(n.Type)
}

// Clone returns a deep copy of the node and its subtree, ids preserved
func (n ComponentNode) Clone() ComponentNode {
	out := ComponentNode{
		ID:        n.ID,
		Type:      n.Type,
		Props:     CopyMap(n.Props),
		BindState: n.BindState,
	}
	if n.OnEvent != nil {
		out.OnEvent = make(map[string]string, len(n.OnEvent))
		for k, v := range n.OnEvent {
			out.OnEvent[k] = v
		}
	}
	if n.Children != nil {
		out.Children = CloneForest(n.Children)
	}
	return out
}

// CloneForest deep copies a list of nodes
func CloneForest(nodes []ComponentNode) []ComponentNode {
	if nodes == nil {
		return nil
	}
	out := make([]ComponentNode, len(nodes))
	for i := range nodes {
		out[i] = nodes[i].Clone()
	}
	return out
}

// PageSchema is one routable page
type PageSchema struct {
	ID         string          `json:"id"`
	Path       string          `json:"path"`
	Props      map[string]any  `json:"props,omitempty"`
	Components []ComponentNode `json:"components"`
	Actions    []ActionFlow    `json:"actions"`
}

// Flow looks up an action flow by id
func (p *PageSchema) Flow(flowID string) (*ActionFlow, bool) {
	for i := range p.Actions {
		if p.Actions[i].ID == flowID {
			return &p.Actions[i], true
		}
	}
	return nil, false
}

// Clone deep copies the page
func (p PageSchema) Clone() PageSchema {
	out := PageSchema{
		ID:         p.ID,
		Path:       p.Path,
		Props:      CopyMap(p.Props),
		Components: CloneForest(p.Components),
	}
	if p.Actions != nil {
		out.Actions = make([]ActionFlow, len(p.Actions))
		for i, flow := range p.Actions {
			out.Actions[i] = flow.Clone()
		}
	}
	return out
}

// LibraryEntry is a saved reusable component subtree
type LibraryEntry struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Schema ComponentNode `json:"schema"`
}

// AppSchema is the whole persisted document
type AppSchema struct {
	Pages         []PageSchema   `json:"pages"`
	InitialState  map[string]any `json:"initialState"`
	CustomLibrary []LibraryEntry `json:"customLibrary,omitempty"`
}

// Page returns the page with the given id
func (a *AppSchema) Page(pageID string) (*PageSchema, bool) {
	for i := range a.Pages {
		if a.Pages[i].ID == pageID {
			return &a.Pages[i], true
		}
	}
	return nil, false
}

// PageByPath returns the page routed at path
func (a *AppSchema) PageByPath(path string) (*PageSchema, bool) {
	for i := range a.Pages {
		if a.Pages[i].Path == path {
			return &a.Pages[i], true
		}
	}
	return nil, false
}

// LibraryEntry finds a library entry by id
func (a *AppSchema) LibraryEntry(entryID string) (*LibraryEntry, bool) {
	for i := range a.CustomLibrary {
		if a.CustomLibrary[i].ID == entryID {
			return &a.CustomLibrary[i], true
		}
	}
	return nil, false
}

// LibraryEntryByName finds a library entry by display name
func (a *AppSchema) LibraryEntryByName(name string) (*LibraryEntry, bool) {
	for i := range a.CustomLibrary {
		if a.CustomLibrary[i].Name == name {
			return &a.CustomLibrary[i], true
		}
	}
	return nil, false
}

// Clone deep copies the document
func (a *AppSchema) Clone() *AppSchema {
	out := &AppSchema{
		Pages:        make([]PageSchema, len(a.Pages)),
		InitialState: CopyMap(a.InitialState),
	}
	for i, p := range a.Pages {
		out.Pages[i] = p.Clone()
	}
	if a.CustomLibrary != nil {
		out.CustomLibrary = make([]LibraryEntry, len(a.CustomLibrary))
		for i, e := range a.CustomLibrary {
			out.CustomLibrary[i] = LibraryEntry{ID: e.ID, Name: e.Name, Schema: e.Schema.Clone()}
		}
	}
	return out
}

// CopyMap deep copies a JSON-shaped map. Nested maps and slices are copied,
// scalars are shared.
func CopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CopyValue(v)
	}
	return out
}

// CopyValue deep copies a JSON-shaped value
func CopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CopyValue(item)
		}
		return out
	default:
		return v
	}
}
