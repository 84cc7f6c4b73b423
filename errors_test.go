package vial_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vialapi/vial"
)

func TestError(t *testing.T) {
	t.Parallel()

	err := vial.Error(http.StatusNotFound, "not found")
	assert.EqualError(t, err, "not found")

	var sc vial.StatusCoder
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, http.StatusNotFound, sc.StatusCode())
}

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := vial.Errorf(http.StatusBadRequest, "invalid %s", "email")
	assert.EqualError(t, err, "invalid email")
}

func TestErrorStatus(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err    error
		expect int
	}{
		"with StatusCoder": {
			err:    vial.Error(http.StatusForbidden, "forbidden"),
			expect: http.StatusForbidden,
		},
		"problem detail": {
			err:    &vial.ProblemDetail{Status: http.StatusTooManyRequests},
			expect: http.StatusTooManyRequests,
		},
		"without StatusCoder": {
			err:    errors.New("plain error"),
			expect: http.StatusInternalServerError,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, vial.ErrorStatus(tc.err))
		})
	}
}

func TestHTTPError_fields(t *testing.T) {
	t.Parallel()

	err := vial.Error(http.StatusConflict, "conflict")

	var httpErr *vial.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusConflict, httpErr.Status)
	assert.Equal(t, "conflict", httpErr.Message)
}

func TestProblemDetail_error_message(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		problem *vial.ProblemDetail
		expect  string
	}{
		"detail preferred": {
			problem: &vial.ProblemDetail{Title: "Bad Request", Detail: "count must be positive"},
			expect:  "count must be positive",
		},
		"title fallback": {
			problem: &vial.ProblemDetail{Title: "Bad Request"},
			expect:  "Bad Request",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.EqualError(t, tc.problem, tc.expect)
		})
	}
}

func TestProblemDetail_status_code(t *testing.T) {
	t.Parallel()

	problem := &vial.ProblemDetail{Status: http.StatusUnprocessableEntity}
	assert.Equal(t, http.StatusUnprocessableEntity, problem.StatusCode())
}
