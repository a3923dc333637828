// Package middleware provides the HTTP middleware chain: CORS,
// per-client rate limiting, and structured access logging.
package middleware
