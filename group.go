package vial

// Group collects routes under a shared path prefix. Routes registered
// on the group inherit its tags and middleware, which keeps related
// endpoints together in the OpenAPI document without repeating options
// on every route.
type Group struct {
	router     *Router
	prefix     string
	middleware []Middleware
	tags       []string
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupTags adds default tags to all routes registered on the group.
func WithGroupTags(tags ...string) GroupOption {
	return func(g *Group) {
		g.tags = append(g.tags, tags...)
	}
}

// WithGroupMiddleware adds middleware to the group. Group middleware is
// baked into each route handler at registration time.
func WithGroupMiddleware(mw ...Middleware) GroupOption {
	return func(g *Group) {
		g.middleware = append(g.middleware, mw...)
	}
}

// Group creates a route group with the given prefix and options.
func (r *Router) Group(prefix string, opts ...GroupOption) *Group {
	g := &Group{
		router: r,
		prefix: prefix,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Group creates a child group nested under this one. The child starts
// with copies of the parent's prefix, tags, and middleware; options and
// later Use calls extend the child without touching the parent.
func (g *Group) Group(prefix string, opts ...GroupOption) *Group {
	child := &Group{
		router:     g.router,
		prefix:     g.prefix + prefix,
		middleware: append([]Middleware(nil), g.middleware...),
		tags:       append([]string(nil), g.tags...),
	}
	for _, opt := range opts {
		opt(child)
	}
	return child
}

// Use appends middleware to the group. Middleware is baked in at
// registration, so Use only affects routes registered after the call.
func (g *Group) Use(mw ...Middleware) {
	g.middleware = append(g.middleware, mw...)
}

// addRoute implements Registrar. The group rewrites the pattern and
// tags before handing the route to its router. The tag slice is copied
// so routes never share a backing array with the group.
func (g *Group) addRoute(ri routeInfo) {
	ri.pattern = g.prefix + ri.pattern
	ri.tags = append(append([]string(nil), g.tags...), ri.tags...)
	g.router.addRoute(ri)
}

func (g *Group) getValidator() Validator       { return g.router.validator }
func (g *Group) getErrorHandler() ErrorHandler { return g.router.errorHandler }
func (g *Group) routeMiddleware() []Middleware { return g.middleware }
func (g *Group) schemaValidationEnabled() bool { return g.router.schemaValidation }
