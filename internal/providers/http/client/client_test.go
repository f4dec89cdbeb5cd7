package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.MaxRetries = 0
	opts.RetryWaitMin = time.Millisecond
	opts.RetryWaitMax = time.Millisecond
	opts.Timeout = 2 * time.Second
	return opts
}

func TestDoDecodesJSON(t *testing.T) {
	var gotBody, gotTrace, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(buf)
		gotBody = string(buf)
		gotTrace = r.Header.Get("X-Trace-ID")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"user":{"name":"Ada"}}}`))
	}))
	defer srv.Close()

	c := NewClient(testOptions(), nil)
	ctx := tracing.WithTrace(context.Background(), "req_trace", "req_span")

	body, err := c.Do(ctx, types.Request{Method: "post", URL: srv.URL + "/users", Body: map[string]any{"a": float64(1)}})
	require.NoError(t, err)

	assert.Equal(t, `{"a":1}`, gotBody)
	assert.Equal(t, "req_trace", gotTrace)
	assert.Equal(t, "Studio-HTTP/1.0", gotUA)
	data := body.(map[string]any)["data"].(map[string]any)
	assert.Equal(t, "Ada", data["user"].(map[string]any)["name"])
}

func TestDoReturnsTextBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain text"))
	}))
	defer srv.Close()

	body, err := NewClient(testOptions(), nil).Do(context.Background(), types.Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "plain text", body)
}

func TestDoStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(testOptions(), nil).Do(context.Background(), types.Request{Method: "GET", URL: srv.URL})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
}

func TestBreakerOpensAfterServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(testOptions(), nil)
	for i := 0; i < 10; i++ {
		_, err := c.Do(context.Background(), types.Request{URL: srv.URL})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, c.BreakerState())

	_, err := c.Do(context.Background(), types.Request{URL: srv.URL})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(10), hits.Load())
}

func TestExecuteWithBreaker(t *testing.T) {
	c := NewClient(testOptions(), nil)

	resp, err := c.ExecuteWithBreaker(func() (*resty.Response, error) { return nil, nil })
	require.NoError(t, err)
	assert.Nil(t, resp)

	testErr := errors.New("test error")
	_, err = c.ExecuteWithBreaker(func() (*resty.Response, error) { return nil, testErr })
	assert.Equal(t, testErr, err)
	assert.Equal(t, uint32(1), c.BreakerCounts().TotalFailures)
}

func TestRequestHonoursCancelledContext(t *testing.T) {
	c := NewClient(testOptions(), nil)
	c.SetRateLimit(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// first token is available, drain it
	_, _ = c.Request(context.Background())
	_, err := c.Request(ctx)
	assert.Error(t, err)
}

func TestDecodeBody(t *testing.T) {
	assert.Nil(t, DecodeBody(nil))
	assert.Equal(t, []any{float64(1)}, DecodeBody([]byte(`[1]`)))
	assert.Equal(t, "<html>", DecodeBody([]byte(`<html>`)))
}
