package ai

import (
	"strings"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

// ReplyKind classifies a parsed completion
type ReplyKind string

const (
	ReplyChat   ReplyKind = "chat"
	ReplyLayout ReplyKind = "layout"
	ReplyIntent ReplyKind = "intent"
)

// Intent is a custom library instruction
type Intent string

const (
	IntentCreate Intent = "create_reusable"
	IntentUpdate Intent = "update_reusable"
)

// Reply is the best-effort reading of a completion
type Reply struct {
	Kind       ReplyKind             `json:"kind"`
	Text       string                `json:"text"`
	Components []types.ComponentNode `json:"components,omitempty"`
	Intent     Intent                `json:"intent,omitempty"`
	Name       string                `json:"name,omitempty"`
	Component  *types.ComponentNode  `json:"component,omitempty"`
}

type intentPayload struct {
	Intent    Intent               `json:"intent"`
	Name      string               `json:"name"`
	Component *types.ComponentNode `json:"component"`
}

// Parse scans text for the first bracket or brace span that decodes to a
// component array or a library intent. Anything else is chat.
func Parse(text string) Reply {
	body := StripFences(text)

	for _, span := range spans(body) {
		if span[0] == '[' {
			if nodes, ok := decodeForest(span); ok {
				return Reply{Kind: ReplyLayout, Text: text, Components: nodes}
			}
			continue
		}
		var p intentPayload
		if codec.Unmarshal([]byte(span), &p) != nil {
			continue
		}
		if (p.Intent == IntentCreate || p.Intent == IntentUpdate) && p.Name != "" &&
			p.Component != nil && p.Component.Type != "" {
			return Reply{Kind: ReplyIntent, Text: text, Intent: p.Intent, Name: p.Name, Component: p.Component}
		}
	}

	return Reply{Kind: ReplyChat, Text: text}
}

// ExtractForest decodes the outermost [...] span of text
func ExtractForest(text string) ([]types.ComponentNode, bool) {
	body := StripFences(text)
	first := strings.IndexByte(body, '[')
	last := strings.LastIndexByte(body, ']')
	if first < 0 || last < first {
		return nil, false
	}
	return decodeForest(body[first : last+1])
}

func decodeForest(span string) ([]types.ComponentNode, bool) {
	var nodes []types.ComponentNode
	if codec.Unmarshal([]byte(span), &nodes) != nil {
		return nil, false
	}
	for i := range nodes {
		if nodes[i].Type == "" {
			return nil, false
		}
	}
	return nodes, true
}

// spans returns candidate JSON spans ordered by where they open. Each runs
// from an opening delimiter to the last matching closer in the text.
func spans(text string) []string {
	var out []string
	add := func(open, close byte) (int, string) {
		first := strings.IndexByte(text, open)
		last := strings.LastIndexByte(text, close)
		if first < 0 || last < first {
			return -1, ""
		}
		return first, text[first : last+1]
	}

	ai, arr := add('[', ']')
	oi, obj := add('{', '}')
	switch {
	case ai >= 0 && (oi < 0 || ai < oi):
		out = append(out, arr)
		if oi >= 0 {
			out = append(out, obj)
		}
	case oi >= 0:
		out = append(out, obj)
		if ai >= 0 {
			out = append(out, arr)
		}
	}
	return out
}

// StripFences removes a surrounding markdown code fence
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}
	lines := strings.Split(trimmed, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), "```") {
		lines = lines[:n-1]
	}
	return strings.Join(lines, "\n")
}
