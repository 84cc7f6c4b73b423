package vial

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for request decoding failures that are not tied to a
// single field, such as a malformed JSON body or an unparsable
// multipart payload.
var (
	ErrBindBody = errors.New("bind body")
	ErrBindForm = errors.New("bind form")
)

// StatusCoder is implemented by errors or responses that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// ProblemDetail is an RFC 9457 problem details response.
//
//nolint:errname // RFC 9457 standard name
type ProblemDetail struct {
	Type     string       `json:"type,omitempty"`
	Title    string       `json:"title,omitempty"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// Error returns the detail message (or title if detail is empty).
func (p *ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// StatusCode returns the HTTP status code.
func (p *ProblemDetail) StatusCode() int { return p.Status }

// FieldError describes a single field validation failure. Field is the
// wire name of the offending parameter or body member, prefixed with
// "body." for members of a JSON body. Source names where the value came
// from (path, query, header, cookie, form, or body) so that two
// parameters sharing a wire name stay distinguishable.
type FieldError struct {
	Field   string `json:"field"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// validationProblem wraps field errors in a 400 problem details response.
func validationProblem(errs []FieldError) *ProblemDetail {
	return &ProblemDetail{
		Title:  "Validation Failed",
		Status: http.StatusBadRequest,
		Detail: "one or more request parameters are invalid",
		Errors: errs,
	}
}

// HTTPError is an error with an HTTP status code.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error returns the error message.
func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement StatusCoder.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}
