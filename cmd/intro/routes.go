package main

import (
	"context"
	"crypto/md5" //nolint:gosec // upload checksum for display, not security
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/vialapi/vial"
)

// Tag groups shown in the docs sidebar, in registration order.
const (
	tagSetup    = "1. Setup your first OpenAPI endpoint"
	tagRequests = "1. Basic HTTP requests"
)

// newRouter assembles the intro API: every route is declared once and
// the OpenAPI document, the docs UI, and the wire behavior all follow
// from that declaration.
func newRouter(cfg *Config) *vial.Router {
	r := vial.New(
		vial.WithTitle("OpenAPI Test"),
		vial.WithVersion("0.1"),
		vial.WithAPIDescription("Just a Test"),
		vial.WithSchemaValidation(),
		vial.WithTagDescriptions(map[string]string{
			tagSetup:    "Register a handler and serve its documentation.",
			tagRequests: "Bind and validate every part of an HTTP request.",
		}),
	)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Global middleware.
	r.Use(vial.Recovery())
	r.Use(vial.RequestID())
	r.Use(vial.Logger(logger))
	r.Use(vial.TrailingSlash())
	r.Use(vial.Secure(vial.SecureConfig{
		ContentTypeNosniff:    true,
		FrameDeny:             true,
		XSSProtection:         "1; mode=block",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: docsCSP,
	}))
	// Compress sits outside ETag so hashes cover the identity encoding.
	r.Use(vial.Compress())
	r.Use(vial.ETag())
	if cfg.Debug {
		r.Use(vial.CORS())
		vial.Pprof(r, "")
	}

	// The landing page goes straight to the interactive docs.
	r.Redirect("/{$}", "/intro/rapidoc#tag--1.-Setup-your-first-OpenAPI-endpoint", http.StatusFound)

	intro := r.Group("/intro", vial.WithGroupMiddleware(
		vial.RateLimit(vial.RateLimitConfig{Rate: cfg.RateLimit, Burst: cfg.RateBurst}),
		vial.Timeout(cfg.RequestTimeout),
		vial.BodyLimit(cfg.BodyLimit),
	))

	vial.Get(intro, "/basic_get_request", handleBasicGet,
		vial.WithTags(tagSetup),
		vial.WithSummary("Get start & create a simple http GET route"),
		vial.WithDescription(basicGetDoc),
		vial.WithOperationID("basic_get_request"),
	)

	vial.Get(intro, "/test_path_and_query_parameters/{arg1}", handlePathAndQuery,
		vial.WithTags(tagRequests),
		vial.WithSummary("Define path & query parameters"),
		vial.WithDescription(pathAndQueryDoc),
		vial.WithOperationID("test_path_and_query_parameters"),
	)

	vial.Get(intro, "/basic_check_on_path_or_query_parameter/{arg1}", handleCheckedParams,
		vial.WithTags(tagRequests),
		vial.WithSummary("Define query string parameters"),
		vial.WithDescription(checkedParamsDoc),
		vial.WithOperationID("basic_check_on_path_or_query_parameter"),
	)

	vial.Get(intro, "/get_request_with_json_schema_query_args", handleQueryArgs,
		vial.WithTags(tagRequests),
		vial.WithSummary("Auto parameter validation via JSON schema fields"),
		vial.WithDescription(queryArgsDoc),
		vial.WithOperationID("get_request_with_json_schema_query_args"),
	)

	vial.Post(intro, "/post_request_with_json_schema_form_args", handleFormArgs,
		vial.WithTags(tagRequests),
		vial.WithSummary("Define Form parameters"),
		vial.WithDescription("The same field trio as the query version, bound from form fields instead. The binder accepts both urlencoded and multipart encodings."),
		vial.WithOperationID("post_request_with_json_schema_form_args"),
	)

	vial.Post(intro, "/post_request_file_upload", handleFileUpload,
		vial.WithTags(tagRequests),
		vial.WithSummary("Define File Upload"),
		vial.WithDescription(fileUploadDoc),
		vial.WithOperationID("post_request_file_upload"),
	)

	vial.Post(intro, "/post_request_with_json_schema_body", handleJSONBody,
		vial.WithTags(tagRequests),
		vial.WithSummary("Define body parameters via JSON schema model"),
		vial.WithDescription(jsonBodyDoc),
		vial.WithOperationID("post_request_with_json_schema_body"),
	)

	vial.Post(intro, "/some_special_variables", handleSpecialVariables,
		vial.WithTags(tagRequests),
		vial.WithSummary("Some special variables"),
		vial.WithDescription(specialVarsDoc),
		vial.WithOperationID("some_special_variables"),
	)

	vial.Post(intro, "/other_argument_data_sources", handleOtherSources,
		vial.WithTags(tagRequests),
		vial.WithSummary("Other argument data sources"),
		vial.WithDescription(otherSourcesDoc),
		vial.WithOperationID("other_argument_data_sources"),
	)

	// Generated document and docs UIs. /intro/rapidoc is the fixed
	// redirect target; /intro/docs follows the configured UI.
	r.ServeSpec("/intro/openapi.json")
	r.ServeSpecYAML("/intro/openapi.yaml")
	r.ServeDocs("/intro/rapidoc",
		vial.WithDocsSpecURL("/intro/openapi.json"),
	)
	r.ServeDocs("/intro/docs",
		vial.WithDocsSpecURL("/intro/openapi.json"),
		vial.WithDocsUI(vial.DocsUI(cfg.DocsUI)),
	)

	return r
}

// docsCSP allows the CDN assets the bundled docs UIs load.
const docsCSP = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://unpkg.com https://cdn.redoc.ly; " +
	"style-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"img-src 'self' data: https:; " +
	"connect-src 'self'; " +
	"worker-src blob:"

// ---------------------------------------------------------------------------
// Route descriptions (rendered as Markdown by the docs UIs)
// ---------------------------------------------------------------------------

const basicGetDoc = `Create a router, register a handler, and the documentation comes for free:

    r := vial.New(
        vial.WithTitle("OpenAPI Test"),
        vial.WithVersion("0.1"),
    )

    vial.Get(r, "/basic_get_request", func(ctx context.Context, _ *vial.Void) (*Greeting, error) {
        return &Greeting{Hello: "world"}, nil
    })

    r.ServeSpec("/openapi.json")
    r.ServeDocs("/rapidoc")
`

const pathAndQueryDoc = `Fields tagged with a path tag bind from the matching route segment; fields tagged with a query tag bind from the query string.

    type PathQueryReq struct {
        Arg1 string ` + "`" + `path:"arg1"` + "`" + `
        Arg2 string ` + "`" + `query:"arg2"` + "`" + `
    }
`

const checkedParamsDoc = `Validate tags declare constraints, default tags fill absent parameters, and both show up in the generated document.

    type CheckedParamsReq struct {
        Arg1 int    ` + "`" + `path:"arg1" validate:"gte=0"` + "`" + `
        Arg2 string ` + "`" + `query:"arg2" default:"default" validate:"min=3"` + "`" + `
    }
`

const queryArgsDoc = `Required parameters use the required tag; constraint violations are collected into a single problem-details response listing every failing field.`

const fileUploadDoc = `A FileUpload field bound with a form tag documents the operation as multipart/form-data and exposes the file's name, size, and contents to the handler. The optional md5_hash field demonstrates constraints on optional form fields.`

const jsonBodyDoc = `A Body field declares a JSON request body. Its type is reflected into a JSON Schema that is published in the document and, because schema validation is enabled, enforced against every incoming payload before the handler runs.

    type SamplePayload struct {
        Arg1 string ` + "`" + `json:"arg1" required:"true" validate:"min=3,max=10"` + "`" + `
        Arg2 int    ` + "`" + `json:"arg2" required:"true" validate:"gte=0,lte=10"` + "`" + `
        Arg3 bool   ` + "`" + `json:"arg3" default:"false"` + "`" + `
    }
`

const specialVarsDoc = `Embedding RawRequest hands the handler the underlying *http.Request. Response types can implement Cookies() to set cookies, here a test_cookie holding the server timestamp.`

const otherSourcesDoc = `Cookie and header tags bind from request cookies and headers. Header names use Go's canonical form, so content_type becomes Content-Type.`

// ---------------------------------------------------------------------------
// Request / Response types
// ---------------------------------------------------------------------------

// Greeting is the hello-world payload of the first route.
type Greeting struct {
	Hello string `json:"hello"`
}

// IntroResponse1 echoes a pair of parameters back as strings.
type IntroResponse1 struct {
	Arg1 string `json:"arg1"`
	Arg2 string `json:"arg2"`
}

// IntroResponse2 echoes the constrained parameter trio.
type IntroResponse2 struct {
	Arg1 string `json:"arg1" validate:"min=3,max=10"`
	Arg2 int    `json:"arg2" validate:"gte=0,lte=10"`
	Arg3 bool   `json:"arg3" default:"false"`
}

type PathQueryReq struct {
	Arg1 string `path:"arg1" doc:"Bound from the path segment"`
	Arg2 string `query:"arg2" doc:"Bound from the query string"`
}

type CheckedParamsReq struct {
	Arg1 int    `path:"arg1" doc:"Must be a non-negative integer" validate:"gte=0"`
	Arg2 string `query:"arg2" doc:"At least three characters" default:"default" validate:"min=3"`
}

type QueryArgsReq struct {
	Arg1 string `query:"arg1" required:"true" validate:"min=3,max=10"`
	Arg2 int    `query:"arg2" required:"true" validate:"gte=0,lte=10"`
	Arg3 bool   `query:"arg3" default:"false"`
}

type FormArgsReq struct {
	Arg1 string `form:"arg1" required:"true" validate:"min=3,max=10"`
	Arg2 int    `form:"arg2" required:"true" validate:"gte=0,lte=10"`
	Arg3 bool   `form:"arg3" default:"false"`
}

type UploadReq struct {
	UploadFile vial.FileUpload `form:"upload_file" required:"true" doc:"File to upload"`
	MD5Hash    *string         `form:"md5_hash" doc:"md5 of uploaded file" validate:"omitempty,len=32,hexadecimal"`
}

// UploadedFile reports what the server received.
type UploadedFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	MD5  string `json:"md5"`
}

type UploadResponse struct {
	SubmittedMD5 *string      `json:"submitted_md5"`
	File         UploadedFile `json:"file"`
}

// SamplePayload is the JSON-Schema-validated body model.
type SamplePayload struct {
	Arg1 string `json:"arg1" required:"true" validate:"min=3,max=10"`
	Arg2 int    `json:"arg2" required:"true" validate:"gte=0,lte=10"`
	Arg3 bool   `json:"arg3" default:"false"`
}

// SampleResponse wraps the payload once as an object and once in an array.
type SampleResponse struct {
	Obj SamplePayload   `json:"obj"`
	Ary []SamplePayload `json:"ary"`
}

type JSONBodyReq struct {
	Body SamplePayload
}

type SpecialVarsReq struct {
	vial.RawRequest
}

// SpecialVarsResponse echoes request internals and carries the cookies
// to set on the response.
type SpecialVarsResponse struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	RemoteAddr string `json:"remote_addr"`

	cookies []*http.Cookie
}

func (r *SpecialVarsResponse) Cookies() []*http.Cookie { return r.cookies }

type OtherSourcesReq struct {
	TestCookie  string `cookie:"test_cookie" doc:"Set by POST /intro/some_special_variables"`
	ContentType string `header:"Content-Type"`
	Referer     string `header:"Referer"`
}

type OtherSourcesResponse struct {
	TestCookie  string `json:"test_cookie"`
	ContentType string `json:"content_type"`
	Referrer    string `json:"referrer"`
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func handleBasicGet(_ context.Context, _ *vial.Void) (*Greeting, error) {
	return &Greeting{Hello: "world"}, nil
}

func handlePathAndQuery(_ context.Context, req *PathQueryReq) (*IntroResponse1, error) {
	return &IntroResponse1{Arg1: req.Arg1, Arg2: req.Arg2}, nil
}

func handleCheckedParams(_ context.Context, req *CheckedParamsReq) (*IntroResponse1, error) {
	return &IntroResponse1{Arg1: strconv.Itoa(req.Arg1), Arg2: req.Arg2}, nil
}

func handleQueryArgs(_ context.Context, req *QueryArgsReq) (*IntroResponse2, error) {
	return &IntroResponse2{Arg1: req.Arg1, Arg2: req.Arg2, Arg3: req.Arg3}, nil
}

func handleFormArgs(_ context.Context, req *FormArgsReq) (*IntroResponse2, error) {
	return &IntroResponse2{Arg1: req.Arg1, Arg2: req.Arg2, Arg3: req.Arg3}, nil
}

func handleFileUpload(_ context.Context, req *UploadReq) (*UploadResponse, error) {
	rc, err := req.UploadFile.Open()
	if err != nil {
		return nil, vial.Errorf(http.StatusInternalServerError, "open upload: %v", err)
	}
	defer func() {
		//nolint:errcheck,gosec // best-effort close
		rc.Close()
	}()

	sum := md5.New() //nolint:gosec // checksum for display, not security
	if _, err := io.Copy(sum, rc); err != nil {
		return nil, vial.Errorf(http.StatusInternalServerError, "read upload: %v", err)
	}

	return &UploadResponse{
		SubmittedMD5: req.MD5Hash,
		File: UploadedFile{
			Name: req.UploadFile.Filename,
			Size: req.UploadFile.Size,
			MD5:  hex.EncodeToString(sum.Sum(nil)),
		},
	}, nil
}

func handleJSONBody(_ context.Context, req *JSONBodyReq) (*SampleResponse, error) {
	return &SampleResponse{
		Obj: req.Body,
		Ary: []SamplePayload{req.Body, req.Body},
	}, nil
}

func handleSpecialVariables(_ context.Context, req *SpecialVarsReq) (*SpecialVarsResponse, error) {
	return &SpecialVarsResponse{
		Method:     req.Request.Method,
		Path:       req.Request.URL.Path,
		RemoteAddr: req.Request.RemoteAddr,
		cookies: []*http.Cookie{{
			Name:  "test_cookie",
			Value: time.Now().UTC().Format(time.RFC3339),
			Path:  "/",
		}},
	}, nil
}

func handleOtherSources(_ context.Context, req *OtherSourcesReq) (*OtherSourcesResponse, error) {
	return &OtherSourcesResponse{
		TestCookie:  req.TestCookie,
		ContentType: req.ContentType,
		Referrer:    req.Referer,
	}, nil
}
