package vial

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// ETagConfig configures the ETag middleware.
type ETagConfig struct {
	Weak bool // use weak ETags
}

// ETag returns middleware that answers conditional GET and HEAD
// requests. Responses are buffered, hashed, and revalidated against
// If-None-Match, which keeps repeat fetches of stable payloads like
// the OpenAPI document at 304.
func ETag(cfg ...ETagConfig) Middleware {
	c := ETagConfig{}
	if len(cfg) > 0 {
		c = cfg[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			buf := &bytes.Buffer{}
			rec := &etagRecorder{
				ResponseWriter: w,
				buf:            buf,
				status:         http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			// Only compute an etag for 2xx responses.
			if rec.status < 200 || rec.status >= 300 {
				w.WriteHeader(rec.status)
				//nolint:errcheck,gosec // best-effort write
				w.Write(buf.Bytes())
				return
			}

			hash := sha256.Sum256(buf.Bytes())
			etag := `"` + hex.EncodeToString(hash[:8]) + `"`
			if c.Weak {
				etag = "W/" + etag
			}

			w.Header().Set("ETag", etag)

			if match := r.Header.Get("If-Match"); match != "" {
				if match != "*" && !strings.Contains(match, etag) {
					w.WriteHeader(http.StatusPreconditionFailed)
					return
				}
			}

			if match := r.Header.Get("If-None-Match"); match != "" {
				if match == "*" || strings.Contains(match, etag) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}

			w.WriteHeader(rec.status)
			//nolint:errcheck,gosec // best-effort write
			w.Write(buf.Bytes())
		})
	}
}

type etagRecorder struct {
	http.ResponseWriter
	buf    *bytes.Buffer
	status int
}

func (e *etagRecorder) WriteHeader(code int) {
	e.status = code
}

func (e *etagRecorder) Write(b []byte) (int, error) {
	return e.buf.Write(b)
}
