package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

// StatusError reports a non-2xx response
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d", e.Method, e.URL, e.Status)
}

var errServer = errors.New("server error")

// Do performs a Request action and returns the decoded body: JSON documents
// decode to maps/slices, anything else is returned as a string.
func (c *Client) Do(ctx context.Context, action types.Request) (any, error) {
	method := strings.ToUpper(action.Method)
	if method == "" {
		method = http.MethodGet
	}

	req, err := c.Request(ctx)
	if err != nil {
		return nil, err
	}

	req.SetHeader("Accept", "application/json").SetHeaders(tracing.Headers(ctx))

	if action.Body != nil {
		payload, err := codec.Marshal(action.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}

	resp, err := c.ExecuteWithBreaker(func() (*resty.Response, error) {
		resp, err := req.Execute(method, action.URL)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, fmt.Errorf("%w: %d", errServer, resp.StatusCode())
		}
		return resp, nil
	})
	if err != nil {
		c.logger.Warn("Request failed", zap.String("method", method), zap.String("url", action.URL), zap.Error(err))
		return nil, err
	}
	if resp.IsError() {
		return nil, &StatusError{Method: method, URL: action.URL, Status: resp.StatusCode(), Body: resp.String()}
	}

	return DecodeBody(resp.Body()), nil
}

// DecodeBody parses JSON bodies and falls back to the raw text
func DecodeBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var decoded any
	if err := codec.Unmarshal(body, &decoded); err != nil {
		return string(body)
	}
	return decoded
}
