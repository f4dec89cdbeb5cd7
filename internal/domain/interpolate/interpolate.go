// Package interpolate resolves ${key} placeholders in component props
// against the flat runtime state.
//
// Keys are looked up verbatim: "${user.name}" reads the state key
// "user.name", never a nested field. Missing keys render as the empty
// string. Nested prop objects (style maps) are resolved recursively while
// arrays and non-string scalars pass through untouched.
package interpolate

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Props returns a copy of props with every placeholder substituted. The
// input map is never modified.
func Props(props map[string]any, state map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = value(v, state)
	}
	return out
}

func value(v any, state map[string]any) any {
	switch val := v.(type) {
	case string:
		return String(val, state)
	case map[string]any:
		return Props(val, state)
	default:
		return v
	}
}

// String substitutes every placeholder in s.
func String(s string, state map[string]any) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(token string) string {
		key := token[2 : len(token)-1]
		v, ok := state[key]
		if !ok {
			return ""
		}
		return Stringify(v)
	})
}

// Keys lists the state keys referenced by s, in order of appearance.
func Keys(s string) []string {
	matches := placeholder.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, m[1])
	}
	return keys
}

// PropKeys lists the state keys referenced anywhere inside props.
func PropKeys(props map[string]any) []string {
	var keys []string
	for _, v := range props {
		switch val := v.(type) {
		case string:
			keys = append(keys, Keys(val)...)
		case map[string]any:
			keys = append(keys, PropKeys(val)...)
		}
	}
	return keys
}

// Stringify renders a state value the way a template literal would for
// scalars. nil renders as "null"; maps and slices render as compact JSON.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatNumber(val)
	case float32:
		return formatNumber(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	default:
		data, err := codec.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) >= 1e21:
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}
