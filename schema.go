package vial

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
)

// reflector turns Go types into JSON Schema documents. Required members
// come from the required/validate tags via enrichment, not from the
// absence of omitempty, and extra body members are allowed so that
// unknown fields are ignored rather than rejected.
var reflector = &jsonschema.Reflector{
	Anonymous:                  true,
	AllowAdditionalProperties:  true,
	RequiredFromJSONSchemaTags: true,
	Mapper:                     typeMapper,
}

// typeMapper overrides reflection for types whose wire form is not
// their struct form.
func typeMapper(t reflect.Type) *jsonschema.Schema {
	switch t {
	case reflect.TypeFor[FileUpload]():
		return &jsonschema.Schema{Type: "string", Format: "binary"}
	case reflect.TypeFor[time.Duration]():
		return &jsonschema.Schema{Type: "string", Format: "duration"}
	}
	return nil
}

// reflectSchema returns a standalone JSON Schema for t: named struct
// types land in $defs with a $ref at the root. Constraints declared in
// validate tags, plus required, default, and doc tags, are folded into
// the reflected schema so that one field declaration drives binding,
// validation, and documentation alike.
func reflectSchema(t reflect.Type) *jsonschema.Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s := reflector.ReflectFromType(t)
	enrichSchema(s, t, s.Definitions, map[reflect.Type]bool{})
	return s
}

// enrichSchema walks a reflected schema alongside the Go type it was
// generated from, applying tag-declared constraints to each node.
// Refs are resolved against defs; seen guards self-referential types.
func enrichSchema(s *jsonschema.Schema, t reflect.Type, defs jsonschema.Definitions, seen map[reflect.Type]bool) {
	if s == nil {
		return
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if s.Ref != "" {
		name := strings.TrimPrefix(s.Ref, "#/$defs/")
		if def, ok := defs[name]; ok {
			enrichSchema(def, t, defs, seen)
		}
		return
	}

	switch t.Kind() {
	case reflect.Struct:
		if t == reflect.TypeFor[time.Time]() {
			return
		}
		if seen[t] {
			return
		}
		seen[t] = true
		enrichStructFields(s, t, defs, seen)
	case reflect.Slice, reflect.Array:
		enrichSchema(s.Items, t.Elem(), defs, seen)
	case reflect.Map:
		enrichSchema(s.AdditionalProperties, t.Elem(), defs, seen)
	}
}

// enrichStructFields applies field tags of t's fields to the matching
// properties of s. Embedded structs are flattened the same way the
// reflector flattens them.
func enrichStructFields(s *jsonschema.Schema, t reflect.Type, defs jsonschema.Definitions, seen map[reflect.Type]bool) {
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		if f.Anonymous {
			ft := f.Type
			for ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && f.Tag.Get("json") == "" {
				enrichStructFields(s, ft, defs, seen)
				continue
			}
		}

		name := jsonFieldName(f)
		if name == "-" {
			continue
		}
		if s.Properties == nil {
			continue
		}
		prop, ok := s.Properties.Get(name)
		if !ok {
			continue
		}

		applyFieldTags(prop, f)
		if fieldRequired(f) {
			s.Required = appendUnique(s.Required, name)
		}
		enrichSchema(prop, f.Type, defs, seen)
	}
}

// applyFieldTags translates the validate, default, and doc tags of a
// struct field into JSON Schema keywords on s.
func applyFieldTags(s *jsonschema.Schema, f reflect.StructField) {
	if doc := f.Tag.Get("doc"); doc != "" && s.Description == "" {
		s.Description = doc
	}
	if def := f.Tag.Get("default"); def != "" {
		s.Default = parseScalar(f.Type, def)
	}

	rules := f.Tag.Get("validate")
	for rules != "" {
		var rule string
		rule, rules, _ = strings.Cut(rules, ",")
		name, param, _ := strings.Cut(rule, "=")
		applyRule(s, f.Type, name, param)
	}
}

// applyRule maps a single validator rule onto schema keywords. The
// min/max/len rules are sized by field kind, mirroring how the
// validator interprets them.
func applyRule(s *jsonschema.Schema, t reflect.Type, name, param string) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch name {
	case "min":
		switch {
		case t.Kind() == reflect.String:
			s.MinLength = uintPtr(param)
		case isSliceType(t):
			s.MinItems = uintPtr(param)
		default:
			s.Minimum = json.Number(param)
		}
	case "max":
		switch {
		case t.Kind() == reflect.String:
			s.MaxLength = uintPtr(param)
		case isSliceType(t):
			s.MaxItems = uintPtr(param)
		default:
			s.Maximum = json.Number(param)
		}
	case "len":
		if t.Kind() == reflect.String {
			s.MinLength = uintPtr(param)
			s.MaxLength = uintPtr(param)
		} else if isSliceType(t) {
			s.MinItems = uintPtr(param)
			s.MaxItems = uintPtr(param)
		}
	case "gte":
		s.Minimum = json.Number(param)
	case "lte":
		s.Maximum = json.Number(param)
	case "gt":
		s.ExclusiveMinimum = json.Number(param)
	case "lt":
		s.ExclusiveMaximum = json.Number(param)
	case "oneof":
		for _, v := range strings.Fields(param) {
			s.Enum = append(s.Enum, parseScalar(t, v))
		}
	case "email":
		s.Format = "email"
	case "uuid":
		s.Format = "uuid"
	case "url":
		s.Format = "uri"
	case "hexadecimal":
		// Mirrors the validator's rule, which allows an optional 0x/0X prefix.
		s.Pattern = "^(0[xX])?[0-9a-fA-F]+$"
	}
}

// scalarSchema builds a schema for a parameter or form field type
// without going through the reflector.
func scalarSchema(t reflect.Type) *jsonschema.Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if s := typeMapper(t); s != nil {
		return s
	}
	if t == reflect.TypeFor[time.Time]() {
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String:
		return &jsonschema.Schema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &jsonschema.Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &jsonschema.Schema{Type: "number"}
	case reflect.Bool:
		return &jsonschema.Schema{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		return &jsonschema.Schema{Type: "array", Items: scalarSchema(t.Elem())}
	default:
		return &jsonschema.Schema{}
	}
}

// fieldSchema builds the documented schema for a single bound field,
// constraints included.
func fieldSchema(f reflect.StructField) *jsonschema.Schema {
	s := scalarSchema(f.Type)
	applyFieldTags(s, f)
	return s
}

// parseScalar converts a tag literal to the Go-typed value matching t,
// falling back to the raw string.
func parseScalar(t reflect.Type, val string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Bool:
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	case reflect.Float32, reflect.Float64:
		if n, err := strconv.ParseFloat(val, 64); err == nil {
			return n
		}
	}
	return val
}

func uintPtr(param string) *uint64 {
	n, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
