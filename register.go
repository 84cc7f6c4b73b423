package vial

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
)

// Registrar is what the free registration functions need from their
// target. *Router and *Group both satisfy it, so routes register the
// same way at the top level and inside groups.
type Registrar interface {
	addRoute(ri routeInfo)
	getValidator() Validator
	getErrorHandler() ErrorHandler
	routeMiddleware() []Middleware
	schemaValidationEnabled() bool
}

// register builds the routeInfo for one typed route and hands it to the
// registrar. All verb helpers funnel through here.
func register[Req, Resp any](reg Registrar, method, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	ri := routeInfo{
		method:   method,
		pattern:  pattern,
		reqType:  reflect.TypeFor[Req](),
		respType: reflect.TypeFor[Resp](),
	}

	for _, opt := range opts {
		opt(&ri)
	}

	// Default status: Void → 204, Redirect → 302, otherwise 200.
	if ri.status == 0 {
		switch ri.respType {
		case reflect.TypeFor[Void]():
			ri.status = http.StatusNoContent
		case reflect.TypeFor[Redirect]():
			ri.status = http.StatusFound
		default:
			ri.status = http.StatusOK
		}
	}

	if reg.schemaValidationEnabled() {
		ri.bodySchema = compileRouteSchema(ri.reqType, method)
	}

	ri.handler = buildHandler(h, ri.status, ri.bodySchema, reg.getValidator(), reg.getErrorHandler())

	if ri.bodyLimit > 0 {
		ri.handler = BodyLimit(ri.bodyLimit)(ri.handler)
	}

	ri.handler = wrapRouteMiddleware(reg, ri.handler)

	reg.addRoute(ri)
}

// wrapRouteMiddleware applies the registrar's route-level middleware,
// outermost first, so a group's Use order matches execution order.
func wrapRouteMiddleware(reg Registrar, h http.Handler) http.Handler {
	mw := reg.routeMiddleware()
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// compileRouteSchema compiles the body schema for routes that accept a
// JSON body. Registration happens at startup, so a type whose schema
// cannot be compiled is a programming error and panics, the same way
// ServeMux panics on a malformed pattern.
func compileRouteSchema(reqType reflect.Type, method string) *compiledSchema {
	var bodyType reflect.Type
	switch classifyRequest(reqType) {
	case catBodyOnly:
		if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
			bodyType = reqType
		}
	case catMixed:
		if f, ok := reqType.FieldByName("Body"); ok {
			bodyType = f.Type
		}
	}
	if bodyType == nil {
		return nil
	}

	cs, err := compileBodySchema(bodyType)
	if err != nil {
		panic(fmt.Sprintf("vial: %v", err))
	}
	return cs
}

// buildHandler turns a typed Handler into an http.Handler running the
// full request pipeline: decode, self-validation, router validation,
// the handler itself, then response encoding.
func buildHandler[Req, Resp any](h Handler[Req, Resp], defaultStatus int, schema *compiledSchema, validator Validator, errHandler ErrorHandler) http.Handler {
	writeErr := func(w http.ResponseWriter, r *http.Request, err error) {
		if errHandler != nil {
			errHandler(w, r, err)
			return
		}
		writeErrorResponse(w, err)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeRequest[Req](r, schema)
		if err != nil {
			var pd *ProblemDetail
			var mbe *http.MaxBytesError
			switch {
			case errors.As(err, &pd):
				// already a problem detail with field errors
			case errors.As(err, &mbe):
				err = Error(http.StatusRequestEntityTooLarge, "request body too large")
			default:
				err = Error(http.StatusBadRequest, err.Error())
			}
			writeErr(w, r, err)
			return
		}

		if sv, ok := any(req).(SelfValidator); ok {
			if err := sv.Validate(); err != nil {
				writeErr(w, r, err)
				return
			}
		}

		if validator != nil {
			if err := validator.Validate(req); err != nil {
				writeErr(w, r, err)
				return
			}
		}

		resp, err := h(r.Context(), req)
		if err != nil {
			writeErr(w, r, err)
			return
		}

		if _, ok := any(resp).(*Void); ok || resp == nil {
			w.WriteHeader(defaultStatus)
			return
		}

		encodeResponse(w, r, resp, defaultStatus)
	})
}

// Get registers h for GET requests matching pattern.
func Get[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodGet, pattern, h, opts...)
}

// Post registers h for POST requests matching pattern.
func Post[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPost, pattern, h, opts...)
}

// Put registers h for PUT requests matching pattern.
func Put[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPut, pattern, h, opts...)
}

// Patch registers h for PATCH requests matching pattern.
func Patch[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPatch, pattern, h, opts...)
}

// Delete registers h for DELETE requests matching pattern.
func Delete[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodDelete, pattern, h, opts...)
}

// Raw registers a plain http.HandlerFunc. The typed pipeline is skipped
// entirely, so the route describes itself to the OpenAPI document
// through info instead of reflection.
func Raw(reg Registrar, method, pattern string, h RawHandler, info OperationInfo) {
	ri := routeInfo{
		method:  method,
		pattern: pattern,
		summary: info.Summary,
		desc:    info.Description,
		tags:    info.Tags,
		status:  info.Status,
		handler: wrapRouteMiddleware(reg, http.HandlerFunc(h)),
	}
	reg.addRoute(ri)
}
