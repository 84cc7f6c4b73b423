package vial

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Timeout returns middleware that deadlines the request context and
// cuts off handlers that run past it with a 503. Handlers should watch
// ctx.Done() on long operations.
func Timeout(d time.Duration) Middleware {
	//nolint:errchkjson // static value
	body, _ := json.Marshal(&ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(http.StatusServiceUnavailable),
		Status: http.StatusServiceUnavailable,
		Detail: "request timed out",
	})

	return func(next http.Handler) http.Handler {
		deadlined := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
		return http.TimeoutHandler(deadlined, d, string(body))
	}
}
