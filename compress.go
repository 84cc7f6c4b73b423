package vial

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// CompressConfig configures the Compress middleware.
type CompressConfig struct {
	Level   int      // gzip level 1-9 (default: 5)
	MinSize int      // smallest body worth compressing, in bytes (default: 1024)
	Types   []string // Content-Type substrings to compress (default: application/json, text/)
}

// Compress returns middleware that gzip-encodes responses for clients
// that accept it. Compression kicks in only when the first body write is
// at least MinSize bytes and the content type matches, so small bodies
// and binary content pass through untouched.
func Compress(cfg ...CompressConfig) Middleware {
	c := CompressConfig{
		Level:   5,
		MinSize: 1024,
		Types:   []string{"application/json", "text/"},
	}
	if len(cfg) > 0 {
		if l := cfg[0].Level; l >= gzip.BestSpeed && l <= gzip.BestCompression {
			c.Level = l
		}
		if cfg[0].MinSize > 0 {
			c.MinSize = cfg[0].MinSize
		}
		if len(cfg[0].Types) > 0 {
			c.Types = cfg[0].Types
		}
	}

	pool := &sync.Pool{
		New: func() any {
			gz, _ := gzip.NewWriterLevel(io.Discard, c.Level) //nolint:errcheck // level is range-checked above
			return gz
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			gz := pool.Get().(*gzip.Writer) //nolint:errcheck,forcetypeassert // pool.New always returns *gzip.Writer
			gz.Reset(w)

			gw := &gzipWriter{
				ResponseWriter: w,
				gz:             gz,
				minSize:        c.MinSize,
				types:          c.Types,
			}
			w.Header().Add("Vary", "Accept-Encoding")

			next.ServeHTTP(gw, r)
			gw.finish()

			// Closing flushes the gzip trailer, so close only when the
			// writer actually compressed something. Closing an idle
			// writer would append a gzip header to a plain response.
			if gw.active {
				gz.Close() //nolint:errcheck,gosec // best-effort flush
			}
			pool.Put(gz)
		})
	}
}

// gzipWriter holds back the handler's status line until the first body
// write, when the content type and size are known, so Content-Encoding
// can still be set once the compression decision is made.
type gzipWriter struct {
	http.ResponseWriter
	gz      *gzip.Writer
	minSize int
	types   []string

	status  int
	decided bool
	active  bool
}

func (g *gzipWriter) WriteHeader(status int) {
	if g.decided {
		return
	}
	g.status = status
}

func (g *gzipWriter) Write(b []byte) (int, error) {
	if !g.decided {
		g.decided = true
		if g.compressible(g.Header().Get("Content-Type")) && len(b) >= g.minSize {
			g.active = true
			g.Header().Set("Content-Encoding", "gzip")
			g.Header().Del("Content-Length")
		}
		g.flushStatus()
	}

	if g.active {
		return g.gz.Write(b)
	}
	return g.ResponseWriter.Write(b)
}

// finish releases a deferred status line for handlers that set one but
// never wrote a body.
func (g *gzipWriter) finish() {
	if g.decided {
		return
	}
	g.decided = true
	g.flushStatus()
}

func (g *gzipWriter) flushStatus() {
	if g.status != 0 {
		g.ResponseWriter.WriteHeader(g.status)
	}
}

func (g *gzipWriter) compressible(contentType string) bool {
	// Never recompress, and leave event streams alone.
	if g.Header().Get("Content-Encoding") != "" {
		return false
	}
	if strings.Contains(contentType, "event-stream") {
		return false
	}
	for _, t := range g.types {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

func (g *gzipWriter) Unwrap() http.ResponseWriter {
	return g.ResponseWriter
}
