package interpolate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	state := map[string]any{
		"count":     float64(3),
		"name":      "Ada",
		"user.name": "flat",
		"ok":        true,
		"ratio":     0.25,
		"nothing":   nil,
		"list":      []any{"a", float64(1)},
		"obj":       map[string]any{"k": "v"},
	}

	tests := []struct {
		in   string
		want string
	}{
		{"Current Count: ${count}", "Current Count: 3"},
		{"${name} has ${count}", "Ada has 3"},
		{"${missing}!", "!"},
		{"${user.name}", "flat"},
		{"${ok}/${ratio}", "true/0.25"},
		{"${nothing}", "null"},
		{"${list}", `["a",1]`},
		{"${obj}", `{"k":"v"}`},
		{"${count}${count}", "33"},
		{"no tokens", "no tokens"},
		{"${}", "${}"},
		{"${unterminated", "${unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, String(tt.in, state))
		})
	}
}

func TestPropsRecursesObjectsNotArrays(t *testing.T) {
	state := map[string]any{"color": "red", "n": float64(2)}
	props := map[string]any{
		"content": "n=${n}",
		"style":   map[string]any{"color": "${color}", "inner": map[string]any{"bg": "${color}"}},
		"items":   []any{"${color}"},
		"width":   float64(10),
	}

	out := Props(props, state)

	assert.Equal(t, "n=2", out["content"])
	assert.Equal(t, "red", out["style"].(map[string]any)["color"])
	assert.Equal(t, "red", out["style"].(map[string]any)["inner"].(map[string]any)["bg"])
	assert.Equal(t, []any{"${color}"}, out["items"])
	assert.Equal(t, float64(10), out["width"])

	// input untouched
	assert.Equal(t, "n=${n}", props["content"])
	assert.Equal(t, "${color}", props["style"].(map[string]any)["color"])
}

func TestPropsIdempotentWithoutTokens(t *testing.T) {
	state := map[string]any{"a": "x"}
	once := Props(map[string]any{"t": "${a} and ${b}"}, state)
	twice := Props(once, state)
	assert.Equal(t, once, twice)
	assert.Nil(t, Props(nil, state))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"count", "user.name"}, Keys("${count} / ${user.name}"))
	assert.Nil(t, Keys("plain"))
	assert.ElementsMatch(t, []string{"a", "b"}, PropKeys(map[string]any{
		"x": "${a}",
		"s": map[string]any{"y": "${b}"},
	}))
}

func TestStringifyNumbers(t *testing.T) {
	assert.Equal(t, "10", Stringify(float64(10)))
	assert.Equal(t, "-1.5", Stringify(-1.5))
	assert.Equal(t, "7", Stringify(7))
	assert.Equal(t, "1e+21", Stringify(1e21))
}

func TestStringifyCompositesAsJSON(t *testing.T) {
	assert.Equal(t, "[1,2]", Stringify([]any{float64(1), float64(2)}))
	assert.Equal(t, `{"a":1,"b":"x"}`, Stringify(map[string]any{"b": "x", "a": float64(1)}))
	assert.Equal(t, "null", Stringify(nil))

	out := Props(map[string]any{"content": "Tags: ${tags}"}, map[string]any{"tags": []any{"a", "b"}})
	assert.Equal(t, `Tags: ["a","b"]`, out["content"])
}
