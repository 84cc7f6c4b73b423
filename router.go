package vial

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Router is the central type that holds routes, middleware, and configuration.
// It implements http.Handler.
type Router struct {
	mux        *http.ServeMux
	middleware []Middleware
	routes     []routeInfo

	title       string
	version     string
	description string
	tagDescs    map[string]string

	validator        Validator
	errorHandler     ErrorHandler
	schemaValidation bool

	mu sync.Mutex
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithTitle sets the API title (used in the OpenAPI document).
func WithTitle(title string) RouterOption {
	return func(r *Router) {
		r.title = title
	}
}

// WithVersion sets the API version (used in the OpenAPI document).
func WithVersion(version string) RouterOption {
	return func(r *Router) {
		r.version = version
	}
}

// WithAPIDescription sets the API description (used in the OpenAPI document).
func WithAPIDescription(description string) RouterOption {
	return func(r *Router) {
		r.description = description
	}
}

// WithTagDescriptions sets tag descriptions for the OpenAPI document.
func WithTagDescriptions(descs map[string]string) RouterOption {
	return func(r *Router) {
		r.tagDescs = descs
	}
}

// WithValidator replaces the default struct validator. Passing nil
// disables constraint validation entirely.
func WithValidator(v Validator) RouterOption {
	return func(r *Router) {
		r.validator = v
	}
}

// WithSchemaValidation enables JSON Schema validation of request bodies.
// The schema generated for a route's body type is compiled once at
// registration and checked against the raw body before decoding.
func WithSchemaValidation() RouterOption {
	return func(r *Router) {
		r.schemaValidation = true
	}
}

// ErrorHandler is a custom error response writer.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// WithErrorHandler sets a custom error handler for the router.
func WithErrorHandler(h ErrorHandler) RouterOption {
	return func(r *Router) {
		r.errorHandler = h
	}
}

// New creates a new Router with the given options. Constraint validation
// defaults to the struct validator from NewStructValidator.
func New(opts ...RouterOption) *Router {
	r := &Router{
		mux:       http.NewServeMux(),
		validator: NewStructValidator(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use adds middleware to the router. Middleware is applied in the order added.
func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := http.Handler(r.mux)
	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](handler)
	}
	handler.ServeHTTP(w, req)
}

// ListenAndServe starts an HTTP server on the given address.
// It blocks until the context is cancelled, then shuts down gracefully.
func (r *Router) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Redirect registers a plain redirect on the mux. Redirects are wiring,
// not API surface, so they are kept out of the OpenAPI document.
func (r *Router) Redirect(pattern, target string, status int) {
	r.mux.Handle("GET "+pattern, http.RedirectHandler(target, status))
}

// addRoute registers a routeInfo with the router's mux and stores it
// for OpenAPI generation. Global middleware is applied in ServeHTTP,
// not here — only group middleware is baked into ri.handler.
func (r *Router) addRoute(ri routeInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mux.Handle(ri.method+" "+ri.pattern, ri.handler)
	r.routes = append(r.routes, ri)
}

func (r *Router) getValidator() Validator       { return r.validator }
func (r *Router) getErrorHandler() ErrorHandler { return r.errorHandler }
func (r *Router) routeMiddleware() []Middleware { return nil }
func (r *Router) schemaValidationEnabled() bool { return r.schemaValidation }
