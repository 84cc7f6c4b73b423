package vial_test

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vialapi/vial"
)

func TestCompress(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		contentType  string
		encoding     string // pre-set Content-Encoding
		acceptGzip   bool
		body         string
		wantCompress bool
	}{
		"large json body": {
			contentType:  "application/json",
			acceptGzip:   true,
			body:         strings.Repeat(`{"key":"value"},`, 200),
			wantCompress: true,
		},
		"html body": {
			contentType:  "text/html",
			acceptGzip:   true,
			body:         strings.Repeat("hello html content ", 200),
			wantCompress: true,
		},
		"client does not accept gzip": {
			contentType: "application/json",
			body:        strings.Repeat(`{"key":"value"},`, 200),
		},
		"small body": {
			contentType: "application/json",
			acceptGzip:  true,
			body:        `{"ok":true}`,
		},
		"event stream": {
			contentType: "text/event-stream",
			acceptGzip:  true,
			body:        strings.Repeat("data: hello\n\n", 200),
		},
		"binary content type": {
			contentType: "image/png",
			acceptGzip:  true,
			body:        strings.Repeat("binary data here ", 200),
		},
		"already encoded": {
			contentType: "application/json",
			encoding:    "br",
			acceptGzip:  true,
			body:        strings.Repeat("compressed data ", 200),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			handler := vial.Compress()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tc.contentType)
				if tc.encoding != "" {
					w.Header().Set("Content-Encoding", tc.encoding)
				}
				//nolint:errcheck,gosec
				w.Write([]byte(tc.body))
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Del("Accept-Encoding")
			if tc.acceptGzip {
				req.Header.Set("Accept-Encoding", "gzip")
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if !tc.wantCompress {
				assert.NotEqual(t, "gzip", rec.Header().Get("Content-Encoding"))
				assert.Equal(t, tc.body, rec.Body.String())
				return
			}

			assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
			assert.Equal(t, "Accept-Encoding", rec.Header().Get("Vary"))

			gz, err := gzip.NewReader(rec.Body)
			require.NoError(t, err)
			got, err := io.ReadAll(gz)
			require.NoError(t, err)
			require.NoError(t, gz.Close())
			assert.Equal(t, tc.body, string(got))
		})
	}
}

func TestCompress_custom_config(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("x", 100)
	handler := vial.Compress(vial.CompressConfig{
		Level:   gzip.BestCompression,
		MinSize: 50,
		Types:   []string{"text/plain"},
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		//nolint:errcheck,gosec
		w.Write([]byte(body))
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	gz, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	got, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestCompress_multiple_writes(t *testing.T) {
	t.Parallel()

	chunk := strings.Repeat("a", 600)
	handler := vial.Compress()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// The first write decides; later writes follow it through gzip.
		//nolint:errcheck,gosec
		w.Write([]byte(chunk + chunk))
		//nolint:errcheck,gosec
		w.Write([]byte(chunk))
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	gz, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	got, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, chunk+chunk+chunk, string(got))
}

func TestCompress_status_before_body(t *testing.T) {
	t.Parallel()

	body := strings.Repeat(`{"key":"value"},`, 200)
	handler := vial.Compress()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Status set before the first write must not lock out the
		// Content-Encoding header.
		w.WriteHeader(http.StatusCreated)
		//nolint:errcheck,gosec
		w.Write([]byte(body))
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	gz, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	got, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestCompress_status_only_response(t *testing.T) {
	t.Parallel()

	handler := vial.Compress()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/test", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Empty(t, rec.Body.Bytes())
}

func TestCompress_unwrap_response_controller(t *testing.T) {
	t.Parallel()

	handler := vial.Compress()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// ResponseController reaches the underlying writer through Unwrap.
		rc := http.NewResponseController(w)
		//nolint:errcheck,gosec
		rc.Flush()
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec
		w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, rec.Flushed)
}
