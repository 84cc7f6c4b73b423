package vial

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

// requestID is the context value type for request correlation IDs.
type requestID string

const defaultRequestIDHeader = "X-Request-ID"

// RequestIDConfig configures the RequestID middleware.
type RequestIDConfig struct {
	Header    string        // default: "X-Request-ID"
	Generator func() string // default: 16 random bytes, hex-encoded
}

// RequestID returns middleware that tags every request with a
// correlation ID. An incoming ID on the configured header passes
// through unchanged; otherwise one is generated. The ID is echoed on
// the response header and stored in the request context for handlers
// and the Logger middleware.
func RequestID(cfg ...RequestIDConfig) Middleware {
	c := RequestIDConfig{Header: defaultRequestIDHeader, Generator: newRequestID}
	if len(cfg) > 0 {
		if cfg[0].Header != "" {
			c.Header = cfg[0].Header
		}
		if cfg[0].Generator != nil {
			c.Generator = cfg[0].Generator
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(c.Header)
			if id == "" {
				id = c.Generator()
			}
			w.Header().Set(c.Header, id)
			next.ServeHTTP(w, SetValue(r, requestID(id)))
		})
	}
}

// GetRequestID reports the correlation ID assigned by the RequestID
// middleware, or "" when none is set.
func GetRequestID(r *http.Request) string {
	id, _ := GetValue[requestID](r.Context())
	return string(id)
}

func newRequestID() string {
	b := make([]byte, 16)
	//nolint:errcheck,gosec // crypto/rand.Read always returns nil error
	rand.Read(b)
	return hex.EncodeToString(b)
}
