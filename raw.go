package vial

import "net/http"

// RawRequest gives a typed request direct access to the incoming
// *http.Request. Embed it in a request struct and the binder fills the
// Request field; schema generation and validation both skip it.
type RawRequest struct {
	Request *http.Request `validate:"-"`
}

// OperationInfo describes a route registered through Raw, where no
// request or response type exists to reflect on. A zero Status renders
// as 200 in the OpenAPI document.
type OperationInfo struct {
	Summary     string
	Description string
	Tags        []string
	Status      int
}
