package vial

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Middleware is the standard middleware signature compatible with the entire
// Go middleware ecosystem.
type Middleware func(next http.Handler) http.Handler

// RecoveryConfig configures the Recovery middleware.
type RecoveryConfig struct {
	// Logger receives the panic report. Defaults to slog.Default().
	Logger *slog.Logger
}

// Recovery returns middleware that turns handler panics into 500
// problem responses. http.ErrAbortHandler is re-raised untouched so
// handlers keep the stdlib way of aborting a connection.
func Recovery(cfg ...RecoveryConfig) Middleware {
	logger := slog.Default()
	if len(cfg) > 0 && cfg[0].Logger != nil {
		logger = cfg[0].Logger
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint
					panic(rec)
				}
				logger.LogAttrs(r.Context(), slog.LevelError, "panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeErrorResponse(w, Error(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
