// Package middleware provides the HTTP middleware shared by every module:
// request ids, request logging, and CORS.
package middleware

import "net/http"

// Func wraps a handler.
type Func = func(http.Handler) http.Handler

// Chain is an ordered middleware stack. The first entry is outermost.
type Chain []Func

// Use appends middleware to the chain.
func (c *Chain) Use(fns ...Func) {
	*c = append(*c, fns...)
}

// Apply wraps handler with every middleware in the chain.
func (c Chain) Apply(handler http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		handler = c[i](handler)
	}
	return handler
}
