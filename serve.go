package vial

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"gopkg.in/yaml.v3"
)

// ServeSpec registers a GET handler at the given path that serves
// the OpenAPI document as JSON.
func (r *Router) ServeSpec(pattern string) {
	r.mux.HandleFunc("GET "+pattern, func(w http.ResponseWriter, _ *http.Request) {
		spec := r.Spec()
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
		json.NewEncoder(w).Encode(spec)
	})
}

// ServeSpecYAML registers a GET handler at the given path that serves
// the OpenAPI document as YAML.
func (r *Router) ServeSpecYAML(pattern string) {
	r.mux.HandleFunc("GET "+pattern, func(w http.ResponseWriter, _ *http.Request) {
		doc, err := specDocument(r.Spec())
		if err != nil {
			writeErrorResponse(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		//nolint:errcheck,gosec // best-effort after WriteHeader
		yaml.NewEncoder(w).Encode(doc)
	})
}

// WriteSpec writes the OpenAPI document as indented JSON to w.
func (r *Router) WriteSpec(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Spec())
}

// WriteSpecYAML writes the OpenAPI document as YAML to w.
func (r *Router) WriteSpecYAML(w io.Writer) error {
	doc, err := specDocument(r.Spec())
	if err != nil {
		return err
	}
	return yaml.NewEncoder(w).Encode(doc)
}

// specDocument renders the document through JSON before YAML encoding.
// Schema nodes serialize via a custom JSON marshaller that the YAML
// encoder would otherwise bypass.
func specDocument(spec OpenAPISpec) (map[string]any, error) {
	data, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal spec: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}
	return doc, nil
}
