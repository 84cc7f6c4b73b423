package vial

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"time"
)

// maxMultipartMemory is the maximum memory used for multipart form parsing (32 MB).
const maxMultipartMemory = 32 << 20

// requestCategory describes how a request type should be decoded.
type requestCategory int

const (
	catVoid     requestCategory = iota // Void — no params, no body
	catBodyOnly                        // entire struct is the body (no param tags, no Body field)
	catParams                          // has param tags but no Body field
	catMixed                           // has Body field (params from tagged fields, body from Body)
	catForm                            // has form tags (urlencoded or multipart binding)
)

// classifyRequest determines how a request type should be decoded.
func classifyRequest(t reflect.Type) requestCategory {
	if t == reflect.TypeFor[Void]() {
		return catVoid
	}
	if hasFormTags(t) {
		return catForm
	}
	if hasBodyField(t) {
		return catMixed
	}
	if hasParamTags(t) || hasRawRequest(t) {
		return catParams
	}
	return catBodyOnly
}

// decodeRequest creates a new Req value and populates it from the HTTP
// request. Missing required parameters and unconvertible values are
// collected across all fields and reported in a single ProblemDetail.
func decodeRequest[Req any](r *http.Request, schema *compiledSchema) (*Req, error) {
	req := new(Req)
	t := reflect.TypeFor[Req]()
	cat := classifyRequest(t)

	if cat == catVoid {
		return req, nil
	}

	// Always bind params — handles path/query/header/cookie AND RawRequest injection.
	if err := bindParams(req, r); err != nil {
		return nil, err
	}

	switch cat {
	case catBodyOnly:
		if err := decodeBody(r, req, schema); err != nil {
			return nil, wrapBodyError(err)
		}
	case catMixed:
		bodyField := reflect.ValueOf(req).Elem().FieldByName("Body")
		bodyPtr := bodyField.Addr().Interface()
		if err := decodeBody(r, bodyPtr, schema); err != nil {
			return nil, wrapBodyError(err)
		}
	case catForm:
		if err := bindFormFields(req, r); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// wrapBodyError tags body decode failures with ErrBindBody. Problem
// details from schema validation already carry their own status and
// field errors, so they pass through untouched.
func wrapBodyError(err error) error {
	var pd *ProblemDetail
	if errors.As(err, &pd) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrBindBody, err)
}

// bindParams binds path, query, header, and cookie values to struct fields.
func bindParams(target any, r *http.Request) error {
	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	var errs []FieldError

	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		// Skip the Body field — it's decoded separately.
		if f.Name == "Body" {
			continue
		}

		field := v.Field(i)

		// Embed RawRequest: inject *http.Request.
		if f.Type == reflect.TypeFor[RawRequest]() {
			field.Set(reflect.ValueOf(RawRequest{Request: r}))
			continue
		}

		for _, src := range paramTags {
			name := f.Tag.Get(src)
			if name == "" {
				continue
			}
			val, ok := paramValue(r, src, name)
			bindValue(field, f, src, name, val, ok, &errs)
		}
	}

	if len(errs) > 0 {
		return validationProblem(errs)
	}
	return nil
}

// paramValue looks up a parameter by source. Empty values are treated
// as absent so that defaults apply.
func paramValue(r *http.Request, source, name string) (string, bool) {
	var val string
	switch source {
	case "path":
		val = r.PathValue(name)
	case "query":
		val = r.URL.Query().Get(name)
	case "header":
		val = r.Header.Get(name)
	case "cookie":
		if c, err := r.Cookie(name); err == nil {
			val = c.Value
		}
	}
	return val, val != ""
}

// bindValue applies one parameter value to a struct field, falling back
// to the field's default when the value is absent and recording a field
// error when a required value is missing or unconvertible. Errors carry
// the parameter source so failures for the same wire name in different
// sources stay distinguishable.
func bindValue(field reflect.Value, f reflect.StructField, source, name, val string, present bool, errs *[]FieldError) {
	if !present {
		if def := f.Tag.Get("default"); def != "" {
			if err := setFieldValue(field, def); err == nil {
				return
			}
		}
		if f.Tag.Get("required") == "true" {
			*errs = append(*errs, FieldError{Field: name, Source: source, Message: "is required"})
		}
		return
	}
	if err := setFieldValue(field, val); err != nil {
		*errs = append(*errs, FieldError{
			Field:   name,
			Source:  source,
			Message: "must be a valid " + typeName(f.Type),
			Value:   val,
		})
	}
}

// bindFormFields binds form values and files to struct fields tagged
// with "form". Both application/x-www-form-urlencoded and
// multipart/form-data payloads are supported.
func bindFormFields(target any, r *http.Request) error {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var parseErr error
	if mt == "multipart/form-data" {
		parseErr = r.ParseMultipartForm(maxMultipartMemory)
	} else {
		parseErr = r.ParseForm()
	}
	if parseErr != nil {
		return fmt.Errorf("%w: %w", ErrBindForm, parseErr)
	}

	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	var errs []FieldError

	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := f.Tag.Get("form")
		if name == "" {
			continue
		}

		field := v.Field(i)

		// FileUpload fields come from the multipart file parts, not the
		// value parts. A field absent from the form is only an error when
		// the tag marks it required.
		if f.Type == reflect.TypeFor[FileUpload]() {
			up, err := ParseFileUpload(r, name)
			if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
				if f.Tag.Get("required") == "true" {
					errs = append(errs, FieldError{Field: name, Source: "form", Message: "is required"})
				}
				continue
			}
			if err != nil {
				return fmt.Errorf("%w: %w", ErrBindForm, err)
			}
			field.Set(reflect.ValueOf(*up))
			continue
		}

		// []FileUpload fields collect every file part sent under the name.
		if f.Type == reflect.TypeFor[[]FileUpload]() {
			var headers []*multipart.FileHeader
			if r.MultipartForm != nil {
				headers = r.MultipartForm.File[name]
			}
			if len(headers) == 0 {
				if f.Tag.Get("required") == "true" {
					errs = append(errs, FieldError{Field: name, Source: "form", Message: "is required"})
				}
				continue
			}
			uploads := make([]FileUpload, 0, len(headers))
			for _, h := range headers {
				uploads = append(uploads, FileUpload{
					Filename: h.Filename,
					Size:     h.Size,
					Header:   h,
				})
			}
			field.Set(reflect.ValueOf(uploads))
			continue
		}

		// Scalar fields: multipart values are merged into PostForm by
		// ParseMultipartForm, so PostForm covers both encodings.
		var val string
		var ok bool
		if vs := r.PostForm[name]; len(vs) > 0 && vs[0] != "" {
			val, ok = vs[0], true
		}
		bindValue(field, f, "form", name, val, ok, &errs)
	}

	if len(errs) > 0 {
		return validationProblem(errs)
	}
	return nil
}

// setFieldValue sets a reflect.Value from a string, supporting common
// scalar types and pointers to them.
func setFieldValue(field reflect.Value, value string) error {
	if field.Kind() == reflect.Pointer {
		elem := reflect.New(field.Type().Elem())
		if err := setFieldValue(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	if field.Type() == reflect.TypeFor[time.Duration]() {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	//exhaustive:ignore
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported type: %s", field.Type())
	}
	return nil
}

// typeName returns a human-readable type name for field error messages.
func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == reflect.TypeFor[time.Duration]() {
		return "duration"
	}
	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	default:
		return t.String()
	}
}

// decodeBody decodes the request body as JSON into target, validating
// the raw payload against the compiled schema first when one is set.
// An absent body is validated as an empty object so that required
// members are still reported.
func decodeBody(r *http.Request, target any, schema *compiledSchema) error {
	var data []byte
	if r.Body != nil {
		var err error
		data, err = io.ReadAll(r.Body)
		if err != nil {
			return err
		}
	}

	if schema != nil {
		if err := schema.validateBytes(data); err != nil {
			return err
		}
	}

	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
