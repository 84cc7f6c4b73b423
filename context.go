package vial

import (
	"context"
	"net/http"
)

// valueKey is a per-type context key: each Go type T gets its own slot,
// so middlewares storing values of different types never collide.
type valueKey[T any] struct{}

// WithValue returns a context carrying val in the slot for type T.
func WithValue[T any](ctx context.Context, val T) context.Context {
	return context.WithValue(ctx, valueKey[T]{}, val)
}

// SetValue stores a typed value on the request context. Middleware calls
// this and passes the returned request down the chain; handlers read the
// value back with GetValue.
func SetValue[T any](r *http.Request, val T) *http.Request {
	return r.WithContext(WithValue(r.Context(), val))
}

// GetValue retrieves the value of type T stored by SetValue or WithValue.
// The bool reports whether one was set.
func GetValue[T any](ctx context.Context) (T, bool) {
	val, ok := ctx.Value(valueKey[T]{}).(T)
	return val, ok
}
