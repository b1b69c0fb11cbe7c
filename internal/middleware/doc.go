// Package middleware provides the HTTP middleware chain for vidshelf.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - gzip compression of JSON and text responses (blob ranges are never compressed)
//   - Prometheus request metrics labelled by mux route template
package middleware
