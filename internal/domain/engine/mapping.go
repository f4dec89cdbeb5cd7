package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

// statePrefix is accepted on mapping targets: "state.user" and "user" both
// name the flat key "user".
const statePrefix = "state."

// MapResponse evaluates every responseMapping entry against body. Keys are
// JSONPath expressions ("$.data.user"; a bare "data.user" gets "$." added),
// values are state keys. Paths that match nothing are skipped; a single
// match is stored as-is, several as a list.
func MapResponse(body any, mapping map[string]string) ([]types.UpdateState, error) {
	paths := make([]string, 0, len(mapping))
	for p := range mapping {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	updates := make([]types.UpdateState, 0, len(paths))
	for _, p := range paths {
		expr := p
		if !strings.HasPrefix(expr, "$") {
			expr = "$." + expr
		}
		x, err := jp.ParseString(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid response path %q: %w", p, err)
		}

		matches := x.Get(body)
		if len(matches) == 0 {
			continue
		}
		var value any = matches
		if len(matches) == 1 {
			value = matches[0]
		}
		updates = append(updates, types.UpdateState{
			Path:  strings.TrimPrefix(mapping[p], statePrefix),
			Value: value,
		})
	}
	return updates, nil
}
