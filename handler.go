package vial

import (
	"context"
	"net/http"
)

// Void marks the absence of a payload. A route whose request type is
// Void takes no parameters or body; one whose response type is Void
// answers 204 No Content.
type Void struct{}

// Handler is the typed handler signature the registration functions
// accept. Decoding and encoding stay with the framework, so a handler
// works purely in terms of its own request and response types.
type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)

// RawHandler drops down to the http primitives for routes the typed
// pipeline cannot express, like connection upgrades or streaming.
type RawHandler func(w http.ResponseWriter, r *http.Request)
