package vial

import "net/http"

// BodyLimit returns middleware that limits the maximum request body
// size. Reads past maxBytes fail with *http.MaxBytesError, which the
// request pipeline reports as 413 Content Too Large.
func BodyLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
