// Package middleware provides the HTTP middleware stack of the studio API.
//
//   - CORS: cross-origin access for the editor front end
//   - RateLimit: per-IP token buckets with idle eviction
//   - GlobalRateLimit: one bucket shared by every client
//   - AccessLog: one zap line per request
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
