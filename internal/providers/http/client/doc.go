// Package client provides the outbound HTTP client used by Request actions
// and the AI service.
//
// Built on go-resty/resty over a hashicorp/go-retryablehttp transport:
//   - Automatic retries with exponential backoff (retryablehttp)
//   - Circuit breaking per client (sony/gobreaker)
//   - Token bucket rate limiting (x/time/rate)
//   - Trace context propagation (X-Trace-ID / X-Span-ID)
//
// Example Usage:
//
//	c := client.NewClient(client.DefaultOptions(), logger)
//	body, err := c.Do(ctx, types.Request{Method: "GET", URL: "https://api.example.com/me"})
package client
