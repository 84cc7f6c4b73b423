// Package apitest provides typed test helpers for vial routers.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/vialapi/vial"
)

// Client wraps an httptest.Server for convenient API testing.
type Client struct {
	Server *httptest.Server
}

// NewClient creates a test client from a router.
func NewClient(t testing.TB, r *vial.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Response holds a decoded API response.
type Response[T any] struct {
	Status  int
	Headers http.Header
	Body    *T
	Raw     *http.Response
}

// ReqOption mutates an outgoing test request before it is sent.
type ReqOption func(*http.Request)

// WithHeader sets a request header.
func WithHeader(key, value string) ReqOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// WithCookie attaches a cookie to the request.
func WithCookie(c *http.Cookie) ReqOption {
	return func(r *http.Request) {
		r.AddCookie(c)
	}
}

// File describes one file for a multipart upload.
type File struct {
	Field   string
	Name    string
	Content []byte
}

// Get sends a typed GET request.
func Get[Resp any](t testing.TB, c *Client, path string, opts ...ReqOption) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodGet, path, "", nil, opts...)
}

// Post sends a typed POST request with a JSON body.
func Post[Req, Resp any](t testing.TB, c *Client, path string, body *Req, opts ...ReqOption) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPost, path, "application/json", jsonBody(t, body), opts...)
}

// Put sends a typed PUT request with a JSON body.
func Put[Req, Resp any](t testing.TB, c *Client, path string, body *Req, opts ...ReqOption) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPut, path, "application/json", jsonBody(t, body), opts...)
}

// Patch sends a typed PATCH request with a JSON body.
func Patch[Req, Resp any](t testing.TB, c *Client, path string, body *Req, opts ...ReqOption) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPatch, path, "application/json", jsonBody(t, body), opts...)
}

// Delete sends a typed DELETE request.
func Delete[Resp any](t testing.TB, c *Client, path string, opts ...ReqOption) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodDelete, path, "", nil, opts...)
}

// PostForm sends a POST request with an urlencoded form body.
func PostForm[Resp any](t testing.TB, c *Client, path string, form url.Values, opts ...ReqOption) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), opts...)
}

// PostMultipart sends a POST request with a multipart form body built
// from scalar fields and files.
func PostMultipart[Resp any](t testing.TB, c *Client, path string, fields map[string]string, files []File, opts ...ReqOption) *Response[Resp] {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("apitest: write form field %q: %v", k, err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.Field, f.Name)
		if err != nil {
			t.Fatalf("apitest: create form file %q: %v", f.Field, err)
		}
		if _, err := fw.Write(f.Content); err != nil {
			t.Fatalf("apitest: write form file %q: %v", f.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("apitest: close multipart writer: %v", err)
	}

	return do[Resp](t, c, http.MethodPost, path, mw.FormDataContentType(), buf, opts...)
}

func jsonBody(t testing.TB, body any) io.Reader {
	t.Helper()
	if body == nil {
		return nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("apitest: marshal request body: %v", err)
	}
	return bytes.NewReader(b)
}

func do[Resp any](t testing.TB, c *Client, method, path, contentType string, body io.Reader, opts ...ReqOption) *Response[Resp] {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, body)
	if err != nil {
		t.Fatalf("apitest: create request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("apitest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("apitest: close body: %v", closeErr)
		}
	}()

	result := &Response[Resp]{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Raw:     resp,
	}

	if resp.StatusCode != http.StatusNoContent && resp.ContentLength != 0 {
		var decoded Resp
		if decErr := json.NewDecoder(resp.Body).Decode(&decoded); decErr != nil && decErr != io.EOF {
			return result
		}
		result.Body = &decoded
	}

	return result
}
