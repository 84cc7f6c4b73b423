// Package vial is a generics-first HTTP API toolkit for Go. Handler
// types are the source of truth — request parameters, bodies, and
// responses are all expressed as Go types, and the toolkit derives
// binding, validation, and OpenAPI 3.1 documentation from them.
//
// The core handler signature removes http.ResponseWriter and *http.Request:
//
//	type Handler[Req, Resp any] func(ctx context.Context, req *Req) (*Resp, error)
//
// Routes are registered with package-level generic functions:
//
//	r := vial.New(vial.WithTitle("My API"), vial.WithVersion("1.0.0"))
//	vial.Get[ListReq, ListResp](r, "/items", listItems)
//	vial.Post[CreateReq, Item](r, "/items", createItem, vial.WithStatus(http.StatusCreated))
//
// Request types use struct tags for parameter binding. One field
// declaration drives binding, constraint validation, and the generated
// documentation alike:
//
//	type SearchReq struct {
//	    OrgID string `path:"org_id"`
//	    Query string `query:"q" required:"true" validate:"min=3,max=64" doc:"search terms"`
//	    Limit int    `query:"limit" default:"20" validate:"gte=1,lte=100"`
//	}
//
// JSON bodies live in a Body field (or the whole struct when no fields
// are tagged), form payloads use form tags, and uploads bind to
// FileUpload fields. Constraints in validate tags are enforced by the
// router's validator and mirrored into the OpenAPI schemas; enabling
// WithSchemaValidation additionally checks raw JSON bodies against
// those schemas before decoding.
//
// Middleware uses the standard func(http.Handler) http.Handler
// signature, so the entire Go middleware ecosystem works natively.
//
// The OpenAPI document is served from the routes that were registered:
//
//	r.ServeSpec("/openapi.json")
//	r.ServeDocs("/docs", vial.WithDocsUI(vial.UIRapiDoc))
package vial
