// Package codec centralizes document encoding for schemas and state.
//
// JSON goes through bytedance/sonic in std-compatible mode so custom
// MarshalJSON/UnmarshalJSON methods (the Action union) keep working. YAML
// documents are bridged through JSON with goccy/go-yaml, which keeps a single
// set of struct tags. Stored blobs may be zstd compressed.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
)

var api = sonic.ConfigStd

// RawMessage is a raw encoded JSON value.
type RawMessage = json.RawMessage

// Format identifies a document encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q", name)
	}
}

// Marshal encodes v as compact JSON
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalIndent encodes v as two-space indented JSON
func MarshalIndent(v any) ([]byte, error) {
	return api.MarshalIndent(v, "", "  ")
}

// Unmarshal decodes JSON into v
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// Encode writes v in the requested format.
func Encode(format Format, v any) ([]byte, error) {
	data, err := MarshalIndent(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	if format != FormatYAML {
		return data, nil
	}
	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	return out, nil
}

// Decode reads data in the given format into v. Syntax problems are reported
// as *ParseError.
func Decode(format Format, data []byte, v any) error {
	if format == FormatYAML {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return &ParseError{Msg: yaml.FormatError(err, false, true), Err: err}
		}
		data = converted
	}
	return Parse(data, v)
}

// ParseError describes malformed user supplied text.
type ParseError struct {
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
	}
	return "parse error: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes JSON text into v, attaching a line/column position to
// syntax and type errors.
func Parse(data []byte, v any) error {
	err := Unmarshal(data, v)
	if err == nil {
		return nil
	}

	var pe *ParseError
	if errors.As(err, &pe) {
		return pe
	}

	perr := &ParseError{Msg: err.Error(), Err: err}
	if offset, ok := locate(data); ok {
		perr.Line, perr.Column = position(data, offset)
	}
	return perr
}

// locate re-scans data with encoding/json, whose errors carry a byte offset.
func locate(data []byte) (int64, bool) {
	var probe any
	err := json.Unmarshal(data, &probe)
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Offset, true
	}
	return 0, false
}

func position(data []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
