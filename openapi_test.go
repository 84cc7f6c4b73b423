package vial_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vialapi/vial"
)

func TestSpec_basic(t *testing.T) {
	t.Parallel()

	type ListReq struct {
		Page int `query:"page" doc:"Page number"`
	}
	type Item struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	type ListResp struct {
		Items []Item `json:"items"`
	}
	type CreateReq struct {
		Body struct {
			Name string `json:"name" required:"true" doc:"Item name"`
		}
	}

	r := vial.New(vial.WithTitle("Items API"), vial.WithVersion("2.0.0"))

	vial.Get(r, "/items", func(_ context.Context, _ *ListReq) (*ListResp, error) {
		return &ListResp{}, nil
	}, vial.WithSummary("List items"), vial.WithTags("items"))

	vial.Post(r, "/items", func(_ context.Context, req *CreateReq) (*Item, error) {
		return &Item{ID: "1", Name: req.Body.Name}, nil
	}, vial.WithStatus(http.StatusCreated), vial.WithTags("items"))

	vial.Delete(r, "/items/{id}", func(_ context.Context, _ *vial.Void) (*vial.Void, error) {
		return &vial.Void{}, nil
	}, vial.WithTags("items"))

	spec := r.Spec()

	assert.Equal(t, "3.1.0", spec.OpenAPI)
	assert.Equal(t, "Items API", spec.Info.Title)
	assert.Equal(t, "2.0.0", spec.Info.Version)

	// Named types land in components.
	require.NotNil(t, spec.Components)
	require.Contains(t, spec.Components.Schemas, "ListResp")
	require.Contains(t, spec.Components.Schemas, "Item")

	listResp := spec.Components.Schemas["ListResp"]
	assert.Equal(t, "object", listResp.Type)
	items, ok := listResp.Properties.Get("items")
	require.True(t, ok)
	assert.Equal(t, "array", items.Type)
	require.NotNil(t, items.Items)
	assert.Equal(t, "#/components/schemas/Item", items.Items.Ref)

	// GET /items: query parameter plus $ref response.
	getItems, ok := spec.Paths["/items"]["get"]
	require.True(t, ok)
	assert.Equal(t, "List items", getItems.Summary)
	assert.Contains(t, getItems.Tags, "items")
	require.Len(t, getItems.Parameters, 1)
	assert.Equal(t, "page", getItems.Parameters[0].Name)
	assert.Equal(t, "query", getItems.Parameters[0].In)
	assert.Equal(t, "Page number", getItems.Parameters[0].Description)
	assert.False(t, getItems.Parameters[0].Required)
	assert.Equal(t, "integer", getItems.Parameters[0].Schema.Type)
	assert.Equal(t, "#/components/schemas/ListResp", getItems.Responses["200"].Content["application/json"].Schema.Ref)

	// POST /items: anonymous Body stays inline, response is a $ref.
	postItems, ok := spec.Paths["/items"]["post"]
	require.True(t, ok)
	require.NotNil(t, postItems.RequestBody)
	assert.True(t, postItems.RequestBody.Required)

	body := postItems.RequestBody.Content["application/json"].Schema
	require.NotNil(t, body)
	assert.Empty(t, body.Ref)
	assert.Equal(t, "object", body.Type)
	name, ok := body.Properties.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Item name", name.Description)
	assert.Equal(t, []string{"name"}, body.Required)

	require.Contains(t, postItems.Responses, "201")
	assert.Equal(t, "#/components/schemas/Item", postItems.Responses["201"].Content["application/json"].Schema.Ref)

	// DELETE /items/{id}: Void response documents as 204.
	deleteItems, ok := spec.Paths["/items/{id}"]["delete"]
	require.True(t, ok)
	resp204, ok := deleteItems.Responses["204"]
	require.True(t, ok)
	assert.Equal(t, "No content", resp204.Description)
	assert.Empty(t, resp204.Content)
}

func TestSpec_info_description(t *testing.T) {
	t.Parallel()

	r := vial.New(
		vial.WithTitle("Described API"),
		vial.WithVersion("0.1"),
		vial.WithAPIDescription("Just a Test"),
	)
	vial.Get(r, "/health", func(_ context.Context, _ *vial.Void) (*vial.Void, error) {
		return &vial.Void{}, nil
	})

	spec := r.Spec()
	assert.Equal(t, "Just a Test", spec.Info.Description)
}

func TestSpec_tags_first_appearance_order(t *testing.T) {
	t.Parallel()

	r := vial.New(vial.WithTagDescriptions(map[string]string{
		"setup":    "Getting started",
		"requests": "Request handling",
		"unused":   "Never referenced",
	}))

	vial.Get(r, "/a", func(_ context.Context, _ *vial.Void) (*vial.Void, error) {
		return &vial.Void{}, nil
	}, vial.WithTags("setup"))
	vial.Get(r, "/b", func(_ context.Context, _ *vial.Void) (*vial.Void, error) {
		return &vial.Void{}, nil
	}, vial.WithTags("requests", "setup"))

	spec := r.Spec()

	// Tags appear in first-use order; described-but-unused tags are not
	// emitted.
	require.Len(t, spec.Tags, 2)
	assert.Equal(t, vial.Tag{Name: "setup", Description: "Getting started"}, spec.Tags[0])
	assert.Equal(t, vial.Tag{Name: "requests", Description: "Request handling"}, spec.Tags[1])
}

func TestSpec_body_only_request(t *testing.T) {
	t.Parallel()

	type CreateUser struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	type User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	r := vial.New()
	vial.Post(r, "/users", func(_ context.Context, req *CreateUser) (*User, error) {
		return &User{ID: "1", Name: req.Name, Email: req.Email}, nil
	})

	spec := r.Spec()
	postOp := spec.Paths["/users"]["post"]
	require.NotNil(t, postOp.RequestBody)

	// Named request type becomes a $ref with the full schema in components.
	assert.Equal(t, "#/components/schemas/CreateUser", postOp.RequestBody.Content["application/json"].Schema.Ref)

	require.NotNil(t, spec.Components)
	require.Contains(t, spec.Components.Schemas, "CreateUser")
	createUser := spec.Components.Schemas["CreateUser"]
	assert.Equal(t, "object", createUser.Type)
	_, hasName := createUser.Properties.Get("name")
	assert.True(t, hasName)
	_, hasEmail := createUser.Properties.Get("email")
	assert.True(t, hasEmail)

	assert.Equal(t, "#/components/schemas/User", postOp.Responses["200"].Content["application/json"].Schema.Ref)
	require.Contains(t, spec.Components.Schemas, "User")
}

func TestSpec_components_dedup(t *testing.T) {
	t.Parallel()

	type Resp struct {
		Value string `json:"value"`
	}

	r := vial.New()
	vial.Get(r, "/a", func(_ context.Context, _ *vial.Void) (*Resp, error) {
		return &Resp{}, nil
	})
	vial.Get(r, "/b", func(_ context.Context, _ *vial.Void) (*Resp, error) {
		return &Resp{}, nil
	})

	spec := r.Spec()
	require.NotNil(t, spec.Components)
	require.Contains(t, spec.Components.Schemas, "Resp")

	aSchema := spec.Paths["/a"]["get"].Responses["200"].Content["application/json"].Schema
	bSchema := spec.Paths["/b"]["get"].Responses["200"].Content["application/json"].Schema
	assert.Equal(t, "#/components/schemas/Resp", aSchema.Ref)
	assert.Equal(t, "#/components/schemas/Resp", bSchema.Ref)
}

func TestSpec_WithErrors(t *testing.T) {
	t.Parallel()

	type Resp struct {
		OK bool `json:"ok"`
	}

	r := vial.New()
	vial.Post(r, "/items", func(_ context.Context, _ *vial.Void) (*Resp, error) {
		return &Resp{}, nil
	}, vial.WithErrors(http.StatusConflict, http.StatusUnprocessableEntity))

	spec := r.Spec()
	op := spec.Paths["/items"]["post"]

	require.Contains(t, op.Responses, "409")
	require.Contains(t, op.Responses, "422")
	assert.Equal(t, "Conflict", op.Responses["409"].Description)
	assert.Equal(t, "Unprocessable Entity", op.Responses["422"].Description)

	// Declared errors document the problem details format.
	conflict := op.Responses["409"].Content["application/problem+json"].Schema
	require.NotNil(t, conflict)
	assert.Equal(t, "#/components/schemas/ProblemDetail", conflict.Ref)

	require.NotNil(t, spec.Components)
	require.Contains(t, spec.Components.Schemas, "ProblemDetail")
	problem := spec.Components.Schemas["ProblemDetail"]
	assert.Equal(t, "object", problem.Type)
	for _, member := range []string{"type", "title", "status", "detail", "instance", "errors"} {
		_, ok := problem.Properties.Get(member)
		assert.True(t, ok, member)
	}
}

func TestSpec_parameters(t *testing.T) {
	t.Parallel()

	type Req struct {
		ID     string `path:"id"`
		Limit  int    `query:"limit" validate:"gte=1,lte=100" doc:"Max results"`
		Filter string `query:"filter" required:"true"`
		Auth   string `header:"Authorization" doc:"Bearer token"`
		Sess   string `cookie:"session_id"`
	}
	type Resp struct {
		OK bool `json:"ok"`
	}

	r := vial.New()
	vial.Get(r, "/things/{id}", func(_ context.Context, _ *Req) (*Resp, error) {
		return &Resp{OK: true}, nil
	})

	spec := r.Spec()
	op := spec.Paths["/things/{id}"]["get"]
	require.Len(t, op.Parameters, 5)

	params := make(map[string]vial.Parameter, len(op.Parameters))
	for _, p := range op.Parameters {
		params[p.Name] = p
	}

	id := params["id"]
	assert.Equal(t, "path", id.In)
	assert.True(t, id.Required)
	assert.Equal(t, "string", id.Schema.Type)

	limit := params["limit"]
	assert.Equal(t, "query", limit.In)
	assert.False(t, limit.Required)
	assert.Equal(t, "Max results", limit.Description)
	assert.Equal(t, "integer", limit.Schema.Type)
	assert.Equal(t, json.Number("1"), limit.Schema.Minimum)
	assert.Equal(t, json.Number("100"), limit.Schema.Maximum)

	filter := params["filter"]
	assert.Equal(t, "query", filter.In)
	assert.True(t, filter.Required)

	auth := params["Authorization"]
	assert.Equal(t, "header", auth.In)
	assert.Equal(t, "Bearer token", auth.Description)

	sess := params["session_id"]
	assert.Equal(t, "cookie", sess.In)
	assert.False(t, sess.Required)
}

func TestSpec_param_requests_have_no_body(t *testing.T) {
	t.Parallel()

	type SearchReq struct {
		Query string `query:"q"`
	}
	type RawReq struct {
		vial.RawRequest
	}
	type Resp struct {
		OK bool `json:"ok"`
	}

	r := vial.New()
	vial.Post(r, "/search", func(_ context.Context, _ *SearchReq) (*Resp, error) {
		return &Resp{OK: true}, nil
	})
	vial.Post(r, "/raw", func(_ context.Context, _ *RawReq) (*Resp, error) {
		return &Resp{OK: true}, nil
	})

	spec := r.Spec()
	assert.Nil(t, spec.Paths["/search"]["post"].RequestBody)
	assert.Nil(t, spec.Paths["/raw"]["post"].RequestBody)
}

func TestSpec_mixed_params_and_body(t *testing.T) {
	t.Parallel()

	type UpdateReq struct {
		ID   string `path:"id"`
		Body struct {
			Name string `json:"name"`
		}
	}
	type Resp struct {
		ID string `json:"id"`
	}

	r := vial.New()
	vial.Put(r, "/things/{id}", func(_ context.Context, req *UpdateReq) (*Resp, error) {
		return &Resp{ID: req.ID}, nil
	})

	spec := r.Spec()
	op := spec.Paths["/things/{id}"]["put"]

	require.Len(t, op.Parameters, 1)
	assert.Equal(t, "id", op.Parameters[0].Name)

	require.NotNil(t, op.RequestBody)
	body := op.RequestBody.Content["application/json"].Schema
	require.NotNil(t, body)
	_, hasName := body.Properties.Get("name")
	assert.True(t, hasName)
}

func TestSpec_redirect_response(t *testing.T) {
	t.Parallel()

	r := vial.New()
	vial.Get(r, "/old-location", func(_ context.Context, _ *vial.Void) (*vial.Redirect, error) {
		return &vial.Redirect{URL: "/new-location"}, nil
	})

	spec := r.Spec()
	op := spec.Paths["/old-location"]["get"]

	resp, ok := op.Responses["302"]
	require.True(t, ok)
	assert.Equal(t, "Redirect", resp.Description)
	assert.Empty(t, resp.Content)
}

func TestSpec_deprecated_route(t *testing.T) {
	t.Parallel()

	r := vial.New()
	vial.Get(r, "/old", func(_ context.Context, _ *vial.Void) (*vial.Void, error) {
		return &vial.Void{}, nil
	}, vial.WithDeprecated())

	spec := r.Spec()
	assert.True(t, spec.Paths["/old"]["get"].Deprecated)
}

func TestSpec_WithOperationID(t *testing.T) {
	t.Parallel()

	r := vial.New()
	vial.Get(r, "/users", func(_ context.Context, _ *vial.Void) (*vial.Void, error) {
		return &vial.Void{}, nil
	}, vial.WithOperationID("listAllUsers"))
	vial.Post(r, "/users", func(_ context.Context, _ *vial.Void) (*vial.Void, error) {
		return &vial.Void{}, nil
	})

	spec := r.Spec()
	assert.Equal(t, "listAllUsers", spec.Paths["/users"]["get"].OperationID)
	assert.Empty(t, spec.Paths["/users"]["post"].OperationID)
}

func TestSpec_plain_redirects_not_documented(t *testing.T) {
	t.Parallel()

	r := vial.New()
	r.Redirect("/{$}", "/docs", http.StatusFound)
	vial.Get(r, "/health", func(_ context.Context, _ *vial.Void) (*vial.Void, error) {
		return &vial.Void{}, nil
	})

	spec := r.Spec()
	assert.Contains(t, spec.Paths, "/health")
	assert.NotContains(t, spec.Paths, "/{$}")
	assert.NotContains(t, spec.Paths, "/")
}

func TestToOpenAPIPath(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		pattern string
		want    string
	}{
		"plain":           {pattern: "/users", want: "/users"},
		"path param":      {pattern: "/users/{id}", want: "/users/{id}"},
		"wildcard suffix": {pattern: "/static/{path...}", want: "/static/{path}"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, vial.ToOpenAPIPath(tc.pattern))
		})
	}
}
