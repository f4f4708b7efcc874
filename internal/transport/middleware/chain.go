package middleware

import "net/http"

// Middleware wraps an http.Handler with cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware into one. The first argument becomes the
// outermost layer: Chain(a, b)(h) serves a request through a, then b,
// then h.
func Chain(layers ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		wrapped := next
		for i := len(layers) - 1; i >= 0; i-- {
			wrapped = layers[i](wrapped)
		}
		return wrapped
	}
}
