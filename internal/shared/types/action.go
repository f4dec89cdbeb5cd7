package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
)

// ActionKind is the JSON discriminator of an Action
type ActionKind string

const (
	KindUpdateState ActionKind = "UpdateState"
	KindRequest     ActionKind = "Request"
	KindNavigate    ActionKind = "Navigate"
	KindAI          ActionKind = "AI"
	KindScript      ActionKind = "Script"
)

// ErrUnknownActionKind is returned when a document names an action type
// outside the closed set.
var ErrUnknownActionKind = errors.New("unknown action kind")

// Action is one step of an ActionFlow. The set of implementations is closed:
// UpdateState, Request, Navigate, AI and Script.
type Action interface {
	Kind() ActionKind
	isAction()
}

// UpdateState assigns Value to the flat state key Path
type UpdateState struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Request performs an HTTP call. ResponseMapping maps a JSONPath into the
// response body to a state key.
type Request struct {
	Method          string            `json:"method"`
	URL             string            `json:"url"`
	Body            any               `json:"body,omitempty"`
	ResponseMapping map[string]string `json:"responseMapping,omitempty"`
}

// Navigate switches the active page by path
type Navigate struct {
	Path string `json:"path"`
}

// AI asks the AI collaborator and stores the text answer at OutputStatePath
type AI struct {
	Prompt          string `json:"prompt"`
	OutputStatePath string `json:"outputStatePath"`
}

// Script runs a JavaScript body with state, dispatch and navigate in scope
type Script struct {
	Code string `json:"code"`
}

func (UpdateState) Kind() ActionKind { return KindUpdateState }
func (Request) Kind() ActionKind     { return KindRequest }
func (Navigate) Kind() ActionKind    { return KindNavigate }
func (AI) Kind() ActionKind          { return KindAI }
func (Script) Kind() ActionKind      { return KindScript }

func (UpdateState) isAction() {}
func (Request) isAction()     {}
func (Navigate) isAction()    {}
func (AI) isAction()          {}
func (Script) isAction()      {}

// ============================================================================
// Wire format
// ============================================================================

func (a UpdateState) MarshalJSON() ([]byte, error) {
	type plain UpdateState
	return codec.Marshal(struct {
		Type ActionKind `json:"type"`
		plain
	}{KindUpdateState, plain(a)})
}

func (a Request) MarshalJSON() ([]byte, error) {
	type plain Request
	return codec.Marshal(struct {
		Type ActionKind `json:"type"`
		plain
	}{KindRequest, plain(a)})
}

func (a Navigate) MarshalJSON() ([]byte, error) {
	type plain Navigate
	return codec.Marshal(struct {
		Type ActionKind `json:"type"`
		plain
	}{KindNavigate, plain(a)})
}

func (a AI) MarshalJSON() ([]byte, error) {
	type plain AI
	return codec.Marshal(struct {
		Type ActionKind `json:"type"`
		plain
	}{KindAI, plain(a)})
}

func (a Script) MarshalJSON() ([]byte, error) {
	type plain Script
	return codec.Marshal(struct {
		Type ActionKind `json:"type"`
		plain
	}{KindScript, plain(a)})
}

// DecodeAction decodes one tagged action object.
func DecodeAction(data []byte) (Action, error) {
	var envelope struct {
		Type ActionKind `json:"type"`
	}
	if err := codec.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode action: %w", err)
	}

	var (
		action Action
		err    error
	)
	switch envelope.Type {
	case KindUpdateState:
		var a UpdateState
		err = codec.Unmarshal(data, &a)
		action = a
	case KindRequest:
		var a Request
		err = codec.Unmarshal(data, &a)
		a.Method = strings.ToUpper(a.Method)
		action = a
	case KindNavigate:
		var a Navigate
		err = codec.Unmarshal(data, &a)
		action = a
	case KindAI:
		var a AI
		err = codec.Unmarshal(data, &a)
		action = a
	case KindScript:
		var a Script
		err = codec.Unmarshal(data, &a)
		action = a
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionKind, envelope.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s action: %w", envelope.Type, err)
	}
	return action, nil
}

// DecodeActionMap decodes an action from an already parsed object.
func DecodeActionMap(m map[string]any) (Action, error) {
	data, err := codec.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode action: %w", err)
	}
	return DecodeAction(data)
}

// ActionFlow is an ordered list of actions bound to a trigger
type ActionFlow struct {
	ID      string   `json:"id"`
	Trigger string   `json:"trigger"`
	Actions []Action `json:"actions"`
}

// UnmarshalJSON decodes the tagged action list.
func (f *ActionFlow) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID      string             `json:"id"`
		Trigger string             `json:"trigger"`
		Actions []codec.RawMessage `json:"actions"`
	}
	if err := codec.Unmarshal(data, &wire); err != nil {
		return err
	}

	actions := make([]Action, 0, len(wire.Actions))
	for i, raw := range wire.Actions {
		action, err := DecodeAction(raw)
		if err != nil {
			return fmt.Errorf("flow %q action %d: %w", wire.ID, i, err)
		}
		actions = append(actions, action)
	}

	f.ID = wire.ID
	f.Trigger = wire.Trigger
	f.Actions = actions
	return nil
}

// Clone copies the flow; action values are copied deeply
func (f ActionFlow) Clone() ActionFlow {
	out := ActionFlow{ID: f.ID, Trigger: f.Trigger}
	if f.Actions != nil {
		out.Actions = make([]Action, len(f.Actions))
		for i, a := range f.Actions {
			out.Actions[i] = CloneAction(a)
		}
	}
	return out
}

// CloneAction deep copies the JSON-shaped payload of an action
func CloneAction(a Action) Action {
	switch v := a.(type) {
	case UpdateState:
		v.Value = CopyValue(v.Value)
		return v
	case Request:
		v.Body = CopyValue(v.Body)
		if v.ResponseMapping != nil {
			m := make(map[string]string, len(v.ResponseMapping))
			for k, s := range v.ResponseMapping {
				m[k] = s
			}
			v.ResponseMapping = m
		}
		return v
	default:
		return a
	}
}
