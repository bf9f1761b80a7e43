// Package observability builds the structured logging used across the
// photos API.
//
// Logging is zap-based: JSON output in production, a console encoder for
// local development. Request-scoped logging (method, path, status, latency,
// request id) is handled separately by the chi middleware stack.
package observability
