package vial

import (
	"log/slog"
	"net/http"
	"time"
)

// responseMeter records what actually went over the wire so the access
// log can report it.
type responseMeter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (m *responseMeter) WriteHeader(code int) {
	if m.status == 0 {
		m.status = code
	}
	m.ResponseWriter.WriteHeader(code)
}

func (m *responseMeter) Write(b []byte) (int, error) {
	if m.status == 0 {
		m.status = http.StatusOK
	}
	n, err := m.ResponseWriter.Write(b)
	m.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the wrapped writer.
func (m *responseMeter) Unwrap() http.ResponseWriter {
	return m.ResponseWriter
}

// Logger returns middleware that writes one access-log line per request
// to the given slog.Logger. Server errors log at Error, client errors at
// Warn, everything else at Info.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			meter := &responseMeter{ResponseWriter: w}
			next.ServeHTTP(meter, r)

			status := meter.status
			if status == 0 {
				status = http.StatusOK
			}

			attrs := make([]slog.Attr, 0, 8)
			attrs = append(attrs,
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("latency", time.Since(start)),
				slog.Int("size", meter.bytes),
				slog.String("remote", r.RemoteAddr),
			)
			if q := r.URL.RawQuery; q != "" {
				attrs = append(attrs, slog.String("query", q))
			}
			if id := GetRequestID(r); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "request", attrs...)
		})
	}
}
