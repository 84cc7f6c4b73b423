package vial

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int // seconds
}

// CORS returns middleware that handles Cross-Origin Resource Sharing.
// If no config is provided, permissive defaults are used. The allowed
// origin is echoed per request: browsers reject a wildcard when
// credentials are allowed.
func CORS(cfg ...CORSConfig) Middleware {
	c := CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}
	if len(cfg) > 0 {
		c = cfg[0]
	}

	wildcard := false
	allowed := make(map[string]bool, len(c.AllowOrigins))
	for _, o := range c.AllowOrigins {
		if o == "*" {
			wildcard = true
		}
		allowed[o] = true
	}

	methods := strings.Join(c.AllowMethods, ", ")
	headers := strings.Join(c.AllowHeaders, ", ")
	expose := strings.Join(c.ExposeHeaders, ", ")
	maxAge := ""
	if c.MaxAge > 0 {
		maxAge = strconv.Itoa(c.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			switch {
			case origin == "":
				// not a cross-origin request
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
			case wildcard && !c.AllowCredentials:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}

			if w.Header().Get("Access-Control-Allow-Origin") != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				if expose != "" {
					w.Header().Set("Access-Control-Expose-Headers", expose)
				}
				if c.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				if maxAge != "" {
					w.Header().Set("Access-Control-Max-Age", maxAge)
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
