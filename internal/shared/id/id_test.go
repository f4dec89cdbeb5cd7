package id

import (
	"bytes"
	"crypto/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixes(t *testing.T) {
	cases := map[string]string{
		NodePrefix:    NewNodeID(),
		LibraryPrefix: NewLibraryID(),
		RunPrefix:     NewRunID().String(),
		RequestPrefix: NewRequestID().String(),
	}
	for prefix, got := range cases {
		require.True(t, strings.HasPrefix(got, prefix+"_"), got)
		_, err := Parse(got)
		assert.NoError(t, err, got)
	}
}

func TestNodeIDsUniqueAndOrderedInTightLoop(t *testing.T) {
	prev := ""
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		got := NewNodeID()
		_, dup := seen[got]
		require.False(t, dup, "duplicate %s after %d ids", got, i)
		seen[got] = struct{}{}
		assert.Greater(t, got, prev)
		prev = got
	}
}

func TestConcurrentMinting(t *testing.T) {
	const workers, perWorker = 8, 500

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				got := NewNodeID()
				mu.Lock()
				seen[got] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestSourceDrawsFromEntropy(t *testing.T) {
	a := NewSource(bytes.NewReader(make([]byte, 1024)))
	b := NewSource(rand.Reader)
	assert.NotEqual(t, a.Prefixed("x"), b.Prefixed("x"))
	assert.Len(t, a.Next().String(), 26)
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse("comp_not-a-ulid")
	assert.Error(t, err)
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, err := Timestamp(NewRunID().String())
	require.NoError(t, err)
	assert.True(t, ts.After(before) && ts.Before(time.Now().Add(time.Second)), ts)
}

func TestSessionID(t *testing.T) {
	sid := NewSessionID()
	parsed, err := ParseSessionID(sid.String())
	require.NoError(t, err)
	assert.Equal(t, sid, parsed)

	_, err = ParseSessionID("sess_nope")
	assert.Error(t, err)
}
