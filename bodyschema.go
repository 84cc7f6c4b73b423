package vial

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// compiledSchema validates raw JSON bodies against the schema reflected
// from a route's body type. Compilation happens once, at registration.
type compiledSchema struct {
	schema *jsonschema.Schema
}

// compileBodySchema reflects a schema for t and compiles it for request
// validation.
func compileBodySchema(t reflect.Type) (*compiledSchema, error) {
	data, err := json.Marshal(reflectSchema(t))
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %s: %w", t, err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource("body.json", bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema resource for %s: %w", t, err)
	}
	sch, err := c.Compile("body.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", t, err)
	}
	return &compiledSchema{schema: sch}, nil
}

// validateBytes checks a raw JSON body against the compiled schema. An
// empty body is validated as an empty object so that required members
// are reported as missing. Violations come back as a ProblemDetail with
// one FieldError per schema failure.
func (cs *compiledSchema) validateBytes(data []byte) error {
	var doc any = map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
	}

	err := cs.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	var fieldErrs []FieldError
	collectSchemaErrors(ve, &fieldErrs)
	return validationProblem(fieldErrs)
}

// collectSchemaErrors flattens a validation error tree into per-field
// errors, keeping only leaf causes.
func collectSchemaErrors(ve *jsonschema.ValidationError, out *[]FieldError) {
	if len(ve.Causes) == 0 {
		*out = append(*out, FieldError{
			Field:   bodyFieldPath(ve.InstanceLocation),
			Source:  "body",
			Message: ve.Message,
		})
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaErrors(cause, out)
	}
}

// bodyFieldPath converts a JSON pointer instance location into the
// dotted body field notation used in problem details ("body.arg1").
func bodyFieldPath(loc string) string {
	if loc == "" || loc == "/" {
		return "body"
	}
	segs := strings.Split(strings.TrimPrefix(loc, "/"), "/")
	for i, seg := range segs {
		seg = strings.ReplaceAll(seg, "~1", "/")
		segs[i] = strings.ReplaceAll(seg, "~0", "~")
	}
	return "body." + strings.Join(segs, ".")
}
