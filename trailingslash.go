package vial

import (
	"net/http"
	"strings"
)

// TrailingSlash returns middleware that redirects paths with a trailing
// slash to their canonical form. GET and HEAD redirect with 301; other
// methods use 308 so the method and body survive the redirect.
func TrailingSlash() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" && strings.HasSuffix(r.URL.Path, "/") {
				target := strings.TrimRight(r.URL.Path, "/")
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				status := http.StatusMovedPermanently
				if r.Method != http.MethodGet && r.Method != http.MethodHead {
					status = http.StatusPermanentRedirect
				}
				http.Redirect(w, r, target, status)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
