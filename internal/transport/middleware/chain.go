package middleware

import "net/http"

// Middleware wraps an http.Handler with extra behavior.
type Middleware func(http.Handler) http.Handler

// Chain folds mws into a single Middleware. The first argument becomes the
// outermost wrapper: Chain(a, b)(h) serves a, then b, then h.
func Chain(mws ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		wrapped := next
		for i := len(mws) - 1; i >= 0; i-- {
			wrapped = mws[i](wrapped)
		}
		return wrapped
	}
}
