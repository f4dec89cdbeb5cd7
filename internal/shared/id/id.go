// Package id mints identifiers for the studio backend.
//
// Schema and execution identifiers are ULIDs behind a short type prefix:
//   - comp_*: component nodes minted by the palette, clones and AI patches
//   - lib_*: custom library entries
//   - run_*: action flow executions
//   - req_*: API requests and trace spans
//
// ULIDs drawn in the same millisecond come from a monotonic entropy source,
// so ids minted in a tight loop (subtree clones) are distinct and sort in
// mint order. Runtime sessions are addressed by clients and use plain UUIDs.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	NodePrefix    = "comp"
	LibraryPrefix = "lib"
	RunPrefix     = "run"
	RequestPrefix = "req"
)

type (
	// SessionID identifies a runtime render session
	SessionID string
	// RunID identifies a single flow execution
	RunID string
	// RequestID identifies an API request or span
	RequestID string
)

func (s SessionID) String() string { return string(s) }
func (r RunID) String() string     { return string(r) }
func (r RequestID) String() string { return string(r) }

// Source draws ULIDs from one entropy stream. Safe for concurrent use.
type Source struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewSource returns a monotonic source reading randomness from r
func NewSource(r io.Reader) *Source {
	return &Source{entropy: ulid.Monotonic(r, 0)}
}

// Next returns a ULID stamped with the current time
func (s *Source) Next() ulid.ULID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy)
}

// Prefixed returns "prefix_<ulid>"
func (s *Source) Prefixed(prefix string) string {
	return prefix + "_" + s.Next().String()
}

var global = NewSource(rand.Reader)

// NewNodeID mints a component node id
func NewNodeID() string { return global.Prefixed(NodePrefix) }

// NewLibraryID mints a custom library entry id
func NewLibraryID() string { return global.Prefixed(LibraryPrefix) }

// NewRunID mints a flow run id
func NewRunID() RunID { return RunID(global.Prefixed(RunPrefix)) }

// NewRequestID mints a request or span id
func NewRequestID() RequestID { return RequestID(global.Prefixed(RequestPrefix)) }

// NewSessionID returns a random (v4) UUID
func NewSessionID() SessionID { return SessionID(uuid.New().String()) }

// ParseSessionID validates a client supplied session id
func ParseSessionID(s string) (SessionID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid session id: %w", err)
	}
	return SessionID(u.String()), nil
}

// Parse decodes a ULID, ignoring an optional "prefix_" head
func Parse(s string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	return ulid.Parse(s)
}

// Timestamp returns the mint time of a (possibly prefixed) ULID
func Timestamp(s string) (time.Time, error) {
	u, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
