package vial

import (
	"encoding/json"
	"errors"
	"net/http"
)

// CookieSetter is optionally implemented by response types to set cookies.
type CookieSetter interface {
	Cookies() []*http.Cookie
}

// HeaderSetter is optionally implemented by response types to set response headers.
type HeaderSetter interface {
	SetHeaders(h http.Header)
}

// Redirect is returned from a handler to issue an HTTP redirect.
type Redirect struct {
	URL    string
	Status int
}

// encodeResponse writes the response to the http.ResponseWriter.
// It handles Redirect, CookieSetter, HeaderSetter, and StatusCoder
// before encoding the response body as JSON.
func encodeResponse(w http.ResponseWriter, r *http.Request, resp any, defaultStatus int) {
	// Redirect response.
	if rd, ok := resp.(*Redirect); ok {
		status := rd.Status
		if status == 0 {
			status = http.StatusFound
		}
		http.Redirect(w, r, rd.URL, status)
		return
	}

	// Apply cookies and headers before writing status.
	if cs, ok := resp.(CookieSetter); ok {
		for _, c := range cs.Cookies() {
			http.SetCookie(w, c)
		}
	}
	if hs, ok := resp.(HeaderSetter); ok {
		hs.SetHeaders(w.Header())
	}

	status := defaultStatus

	// Let the response override the status dynamically.
	if sc, ok := resp.(StatusCoder); ok {
		status = sc.StatusCode()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(resp)
}

// writeErrorResponse writes an error as an RFC 9457 problem details response.
func writeErrorResponse(w http.ResponseWriter, err error) {
	// If the error is already a ProblemDetail, use it directly.
	var pd *ProblemDetail
	if errors.As(err, &pd) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(pd.Status)
		//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
		json.NewEncoder(w).Encode(pd)
		return
	}

	// Convert any error into a ProblemDetail.
	status := ErrorStatus(err)
	problem := &ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: err.Error(),
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(problem)
}
