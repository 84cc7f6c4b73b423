package vial

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SelfValidator is implemented by request types that validate themselves.
type SelfValidator interface {
	Validate() error
}

// Validator validates any request.
type Validator interface {
	Validate(req any) error
}

// StructValidator checks the constraint rules declared in validate tags
// on request fields. It is the router's default Validator.
type StructValidator struct {
	validate *validator.Validate
}

// NewStructValidator returns a StructValidator whose field errors use
// wire names (binding tags, then json) rather than Go field names.
func NewStructValidator() *StructValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"path", "query", "header", "cookie", "form", "json"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return &StructValidator{validate: v}
}

// Validate runs the declared constraint rules against req and converts
// any violations into a ProblemDetail carrying one FieldError per rule.
func (s *StructValidator) Validate(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	t := reflect.TypeOf(req)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	fieldErrs := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrs = append(fieldErrs, translateFieldError(fe, t))
	}
	return validationProblem(fieldErrs)
}

// translateFieldError renders a validator rule violation as a FieldError
// with a human-readable message.
func translateFieldError(fe validator.FieldError, root reflect.Type) FieldError {
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "min":
		switch {
		case isStringType(fe.Type()):
			msg = fmt.Sprintf("must be at least %s characters", fe.Param())
		case isSliceType(fe.Type()):
			msg = fmt.Sprintf("must have at least %s items", fe.Param())
		default:
			msg = fmt.Sprintf("must be at least %s", fe.Param())
		}
	case "max":
		switch {
		case isStringType(fe.Type()):
			msg = fmt.Sprintf("must be at most %s characters", fe.Param())
		case isSliceType(fe.Type()):
			msg = fmt.Sprintf("must have at most %s items", fe.Param())
		default:
			msg = fmt.Sprintf("must be at most %s", fe.Param())
		}
	case "len":
		if isStringType(fe.Type()) {
			msg = fmt.Sprintf("must be exactly %s characters", fe.Param())
		} else {
			msg = fmt.Sprintf("must have exactly %s items", fe.Param())
		}
	case "gte":
		msg = fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		msg = fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gt":
		msg = fmt.Sprintf("must be greater than %s", fe.Param())
	case "lt":
		msg = fmt.Sprintf("must be less than %s", fe.Param())
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		msg = "must be a valid email address"
	case "uuid":
		msg = "must be a valid UUID"
	case "url":
		msg = "must be a valid URL"
	case "hexadecimal":
		msg = "must be a hexadecimal string"
	default:
		msg = fmt.Sprintf("failed %s validation", fe.Tag())
	}

	ferr := FieldError{Field: fieldPath(fe), Source: fieldSource(fe, root), Message: msg}
	if fe.Tag() != "required" {
		ferr.Value = fe.Value()
	}
	return ferr
}

// fieldSource resolves where the failing field's value was bound from by
// inspecting its binding tag on the request type. Body members and
// untagged fields report "body".
func fieldSource(fe validator.FieldError, root reflect.Type) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if root == nil || root.Kind() != reflect.Struct || len(parts) < 2 {
		return "body"
	}
	name := parts[1]
	if name == "Body" {
		return "body"
	}
	f, ok := root.FieldByName(name)
	if !ok {
		return "body"
	}
	for _, src := range paramTags {
		if f.Tag.Get(src) != "" {
			return src
		}
	}
	if f.Tag.Get("form") != "" {
		return "form"
	}
	return "body"
}

// fieldPath strips the root struct segment from the error namespace and
// lowercases the Body segment so body members read as "body.arg1".
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	if parts[0] == "Body" {
		parts[0] = "body"
	}
	return strings.Join(parts, ".")
}

func isStringType(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.String
}

func isSliceType(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Map
}
