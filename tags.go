package vial

import (
	"reflect"
	"strings"
)

// paramTags are the struct tags used for binding request parameters.
var paramTags = []string{"path", "query", "header", "cookie"}

// hasParamTags reports whether the given type has any fields with
// parameter binding tags (path, query, header, cookie).
func hasParamTags(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		for _, tag := range paramTags {
			if f.Tag.Get(tag) != "" {
				return true
			}
		}
	}
	return false
}

// hasRawRequest reports whether the given type embeds a RawRequest field.
func hasRawRequest(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := range t.NumField() {
		if t.Field(i).Type == reflect.TypeFor[RawRequest]() {
			return true
		}
	}
	return false
}

// hasBodyField reports whether the given type has an exported "Body" field.
func hasBodyField(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	_, ok := t.FieldByName("Body")
	return ok
}

// hasFormTags reports whether the given type has any fields with
// a "form" binding tag.
func hasFormTags(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Tag.Get("form") != "" {
			return true
		}
	}
	return false
}

// jsonFieldName returns the wire name of a struct field per its json
// tag, or the field name when untagged. Returns "-" for skipped fields.
func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}

// fieldRequired reports whether a field declares itself required,
// either via the required tag or a required rule in its validate tag.
func fieldRequired(f reflect.StructField) bool {
	if f.Tag.Get("required") == "true" {
		return true
	}
	rules := f.Tag.Get("validate")
	for rules != "" {
		var rule string
		rule, rules, _ = strings.Cut(rules, ",")
		if rule == "required" {
			return true
		}
	}
	return false
}
