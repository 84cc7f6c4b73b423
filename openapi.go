package vial

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OpenAPISpec is the top-level OpenAPI 3.1 document.
type OpenAPISpec struct {
	OpenAPI    string              `json:"openapi"`
	Info       OpenAPIInfo         `json:"info"`
	Tags       []Tag               `json:"tags,omitempty"`
	Paths      map[string]PathItem `json:"paths"`
	Components *Components         `json:"components,omitempty"`
}

// OpenAPIInfo holds API metadata.
type OpenAPIInfo struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// Tag describes a group of operations.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Components holds the reusable schemas referenced from operations.
type Components struct {
	Schemas map[string]*jsonschema.Schema `json:"schemas,omitempty"`
}

// PathItem maps HTTP methods to operations.
type PathItem map[string]Operation

// Operation describes a single API operation on a path.
type Operation struct {
	Summary     string        `json:"summary,omitempty"`
	Description string        `json:"description,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	OperationID string        `json:"operationId,omitempty"`
	Parameters  []Parameter   `json:"parameters,omitempty"`
	RequestBody *RequestBody  `json:"requestBody,omitempty"`
	Responses   OperationResp `json:"responses"`
	Deprecated  bool          `json:"deprecated,omitempty"`
}

// Parameter describes a single operation parameter.
type Parameter struct {
	Name        string             `json:"name"`
	In          string             `json:"in"`
	Description string             `json:"description,omitempty"`
	Required    bool               `json:"required,omitempty"`
	Schema      *jsonschema.Schema `json:"schema"`
}

// RequestBody describes the request body.
type RequestBody struct {
	Required bool                `json:"required"`
	Content  map[string]MediaObj `json:"content"`
}

// MediaObj is a media type object with an optional schema.
type MediaObj struct {
	Schema *jsonschema.Schema `json:"schema,omitempty"`
}

// OperationResp maps HTTP status codes to response objects.
type OperationResp map[string]ResponseObj

// ResponseObj describes a single response.
type ResponseObj struct {
	Description string              `json:"description"`
	Content     map[string]MediaObj `json:"content,omitempty"`
}

// Spec generates the full OpenAPI 3.1 document from registered routes.
// Named body and response types are collected under components/schemas
// and referenced from the operations that use them.
func (r *Router) Spec() OpenAPISpec {
	spec := OpenAPISpec{
		OpenAPI: "3.1.0",
		Info: OpenAPIInfo{
			Title:       r.title,
			Version:     r.version,
			Description: r.description,
		},
		Paths: make(map[string]PathItem),
	}

	components := make(map[string]*jsonschema.Schema)

	for i := range r.routes {
		ri := &r.routes[i]
		path := toOpenAPIPath(ri.pattern)
		method := strings.ToLower(ri.method)

		op := buildOperation(ri, components)

		if spec.Paths[path] == nil {
			spec.Paths[path] = make(PathItem)
		}
		spec.Paths[path][method] = op
	}

	spec.Tags = r.specTags()

	if len(components) > 0 {
		spec.Components = &Components{Schemas: components}
	}

	return spec
}

// specTags lists the tags used by routes in first-appearance order,
// with descriptions from WithTagDescriptions where provided.
func (r *Router) specTags() []Tag {
	var tags []Tag
	seen := make(map[string]bool)
	for i := range r.routes {
		for _, name := range r.routes[i].tags {
			if seen[name] {
				continue
			}
			seen[name] = true
			tags = append(tags, Tag{Name: name, Description: r.tagDescs[name]})
		}
	}
	return tags
}

// buildOperation creates an Operation from a routeInfo.
func buildOperation(ri *routeInfo, components map[string]*jsonschema.Schema) Operation {
	op := Operation{
		Summary:     ri.summary,
		Description: ri.desc,
		Tags:        ri.tags,
		OperationID: ri.operationID,
		Deprecated:  ri.deprecated,
		Responses:   make(OperationResp),
	}

	// Build parameters and request body from Req type.
	if ri.reqType != nil && ri.reqType != reflect.TypeFor[Void]() {
		op.Parameters = extractParameters(ri.reqType)
		if classifyRequest(ri.reqType) == catForm {
			op.RequestBody = extractFormBody(ri.reqType)
		} else {
			op.RequestBody = extractRequestBody(ri.reqType, ri.method, components)
		}
	}

	// Build response.
	status := ri.status
	if status == 0 {
		status = http.StatusOK
	}

	switch {
	case ri.respType == nil:
		op.Responses[statusToString(status)] = ResponseObj{
			Description: "Successful response",
		}

	case ri.respType == reflect.TypeFor[Void]():
		if status == http.StatusOK {
			status = http.StatusNoContent
		}
		op.Responses[statusToString(status)] = ResponseObj{
			Description: "No content",
		}

	case ri.respType == reflect.TypeFor[Redirect]():
		op.Responses[statusToString(status)] = ResponseObj{
			Description: "Redirect",
		}

	default:
		op.Responses[statusToString(status)] = ResponseObj{
			Description: "Successful response",
			Content: map[string]MediaObj{
				"application/json": {Schema: schemaRefFor(ri.respType, components)},
			},
		}
	}

	// Declared error responses use the problem details format.
	for _, code := range ri.errors {
		op.Responses[statusToString(code)] = ResponseObj{
			Description: http.StatusText(code),
			Content: map[string]MediaObj{
				"application/problem+json": {
					Schema: schemaRefFor(reflect.TypeFor[ProblemDetail](), components),
				},
			},
		}
	}

	return op
}

// extractParameters builds OpenAPI parameters from param-tagged fields.
func extractParameters(t reflect.Type) []Parameter {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var params []Parameter
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		for _, tagName := range paramTags {
			val := f.Tag.Get(tagName)
			if val == "" {
				continue
			}

			p := Parameter{
				Name:        val,
				In:          tagName,
				Description: f.Tag.Get("doc"),
				Schema:      fieldSchema(f),
				Required:    tagName == "path" || fieldRequired(f),
			}

			params = append(params, p)
		}
	}

	return params
}

// extractRequestBody builds an OpenAPI RequestBody if the request type
// carries a JSON body.
func extractRequestBody(t reflect.Type, method string, components map[string]*jsonschema.Schema) *RequestBody {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	// Has Body field → body is the Body field's type.
	if bodyField, ok := t.FieldByName("Body"); ok {
		return &RequestBody{
			Required: true,
			Content: map[string]MediaObj{
				"application/json": {Schema: schemaRefFor(bodyField.Type, components)},
			},
		}
	}

	// No param tags → entire struct is body (only for POST/PUT/PATCH).
	if !hasParamTags(t) && !hasRawRequest(t) && (method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch) {
		return &RequestBody{
			Required: true,
			Content: map[string]MediaObj{
				"application/json": {Schema: schemaRefFor(t, components)},
			},
		}
	}

	return nil
}

// extractFormBody documents form-tagged fields as a form request body.
// Types with file fields are multipart/form-data, the rest are
// urlencoded, matching how the binder accepts them.
func extractFormBody(t reflect.Type) *RequestBody {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	props := orderedmap.New[string, *jsonschema.Schema]()
	var required []string
	hasFile := false

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("form")
		if name == "" {
			continue
		}

		if f.Type == reflect.TypeFor[FileUpload]() || f.Type == reflect.TypeFor[[]FileUpload]() {
			hasFile = true
		}
		props.Set(name, fieldSchema(f))
		if fieldRequired(f) {
			required = append(required, name)
		}
	}

	contentType := "application/x-www-form-urlencoded"
	if hasFile {
		contentType = "multipart/form-data"
	}

	return &RequestBody{
		Required: len(required) > 0,
		Content: map[string]MediaObj{
			contentType: {
				Schema: &jsonschema.Schema{
					Type:       "object",
					Properties: props,
					Required:   required,
				},
			},
		},
	}
}

// schemaRefFor reflects a schema for t, moves its named definitions
// into components, and rewrites internal refs to point there.
func schemaRefFor(t reflect.Type, components map[string]*jsonschema.Schema) *jsonschema.Schema {
	s := reflectSchema(t)
	for name, def := range s.Definitions {
		rewriteRefs(def)
		components[name] = def
	}
	s.Definitions = nil
	s.Version = ""
	rewriteRefs(s)
	return s
}

// rewriteRefs rewrites $defs refs to component refs across a schema
// tree. Refs are leaves, so the walk terminates on recursive types.
func rewriteRefs(s *jsonschema.Schema) {
	if s == nil {
		return
	}
	if strings.HasPrefix(s.Ref, "#/$defs/") {
		s.Ref = "#/components/schemas/" + strings.TrimPrefix(s.Ref, "#/$defs/")
	}
	if s.Properties != nil {
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			rewriteRefs(pair.Value)
		}
	}
	rewriteRefs(s.Items)
	rewriteRefs(s.AdditionalProperties)
	rewriteRefs(s.Not)
	for _, sub := range s.AllOf {
		rewriteRefs(sub)
	}
	for _, sub := range s.AnyOf {
		rewriteRefs(sub)
	}
	for _, sub := range s.OneOf {
		rewriteRefs(sub)
	}
	for _, sub := range s.PatternProperties {
		rewriteRefs(sub)
	}
}

// toOpenAPIPath converts a Go 1.22 pattern like "/users/{id}" to
// an OpenAPI path. Wildcard suffixes lose the ellipsis.
func toOpenAPIPath(pattern string) string {
	return strings.ReplaceAll(pattern, "...", "")
}

// statusToString converts an HTTP status code to its string representation.
func statusToString(code int) string {
	return strconv.Itoa(code)
}
