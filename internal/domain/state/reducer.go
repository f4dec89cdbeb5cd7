// Package state holds the runtime state of a render session.
//
// State is a flat key/value map. Reduce is the only transition function and
// is pure; Store wraps it with locking, subscriptions and copy-on-write
// snapshots so readers never observe a half-applied update.
package state

import (
	"strings"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

// State is the reducer's value type
type State struct {
	Data map[string]any `json:"data"`
}

// New seeds a state from initial values over an empty base
func New(initial map[string]any) State {
	data := make(map[string]any, len(initial))
	for k, v := range initial {
		data[k] = types.CopyValue(v)
	}
	return State{Data: data}
}

// Reduce returns the state after applying action. Only UpdateState changes
// the data; every other action returns s unchanged. s is never modified.
func Reduce(s State, action types.Action) State {
	update, ok := action.(types.UpdateState)
	if !ok {
		return s
	}
	data := make(map[string]any, len(s.Data)+1)
	for k, v := range s.Data {
		data[k] = v
	}
	data[update.Path] = types.CopyValue(update.Value)
	return State{Data: data}
}

// IsNestedPath reports whether path looks like a dotted object path.
// Such paths are still stored as a single flat key.
func IsNestedPath(path string) bool {
	return strings.Contains(path, ".")
}
