package vial

import "net/http/pprof"

// Pprof mounts the runtime profiling handlers under prefix, defaulting
// to "/debug/pprof". The routes go straight onto the mux: profiling
// endpoints have no business in the OpenAPI document.
func Pprof(r *Router, prefix string) {
	if prefix == "" {
		prefix = "/debug/pprof"
	}

	r.mux.HandleFunc("GET "+prefix+"/", pprof.Index)
	r.mux.HandleFunc("GET "+prefix+"/cmdline", pprof.Cmdline)
	r.mux.HandleFunc("GET "+prefix+"/profile", pprof.Profile)
	r.mux.HandleFunc("GET "+prefix+"/symbol", pprof.Symbol)
	r.mux.HandleFunc("GET "+prefix+"/trace", pprof.Trace)

	for _, p := range []string{"goroutine", "heap", "allocs", "block", "mutex", "threadcreate"} {
		r.mux.Handle("GET "+prefix+"/"+p, pprof.Handler(p))
	}
}
