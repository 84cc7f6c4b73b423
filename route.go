package vial

import (
	"net/http"
	"reflect"
)

// routeInfo holds metadata for a registered route, used for both
// request dispatch and OpenAPI document generation.
type routeInfo struct {
	method  string
	pattern string
	summary string
	desc    string
	tags    []string

	status      int
	deprecated  bool
	errors      []int
	operationID string
	bodyLimit   int64

	reqType  reflect.Type
	respType reflect.Type

	// bodySchema is the compiled JSON Schema for the request body,
	// set only when the router has schema validation enabled and the
	// route accepts a JSON body.
	bodySchema *compiledSchema

	handler http.Handler
}

// RouteOption configures a route at registration time.
type RouteOption func(*routeInfo)

// WithStatus sets the default HTTP status code for the response.
func WithStatus(code int) RouteOption {
	return func(ri *routeInfo) {
		ri.status = code
	}
}

// WithSummary sets the OpenAPI summary for the route.
func WithSummary(s string) RouteOption {
	return func(ri *routeInfo) {
		ri.summary = s
	}
}

// WithDescription sets the OpenAPI description for the route.
func WithDescription(d string) RouteOption {
	return func(ri *routeInfo) {
		ri.desc = d
	}
}

// WithTags adds OpenAPI tags to the route.
func WithTags(tags ...string) RouteOption {
	return func(ri *routeInfo) {
		ri.tags = append(ri.tags, tags...)
	}
}

// WithDeprecated marks the route as deprecated in the OpenAPI document.
func WithDeprecated() RouteOption {
	return func(ri *routeInfo) {
		ri.deprecated = true
	}
}

// WithErrors declares additional HTTP error status codes for the OpenAPI document.
func WithErrors(codes ...int) RouteOption {
	return func(ri *routeInfo) {
		ri.errors = append(ri.errors, codes...)
	}
}

// WithOperationID sets a custom OpenAPI operationId.
func WithOperationID(id string) RouteOption {
	return func(ri *routeInfo) {
		ri.operationID = id
	}
}

// WithBodyLimit caps the request body size for this route. Oversized
// bodies fail decoding with 413 Content Too Large.
func WithBodyLimit(maxBytes int64) RouteOption {
	return func(ri *routeInfo) {
		ri.bodyLimit = maxBytes
	}
}
