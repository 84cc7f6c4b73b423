package vial_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vialapi/vial"
)

func TestHasParamTags(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		typ    reflect.Type
		expect bool
	}{
		"with path tag": {
			typ: reflect.TypeOf(struct {
				ID string `path:"id"`
			}{}),
			expect: true,
		},
		"with query tag": {
			typ: reflect.TypeOf(struct {
				Page int `query:"page"`
			}{}),
			expect: true,
		},
		"with header tag": {
			typ: reflect.TypeOf(struct {
				Auth string `header:"Authorization"`
			}{}),
			expect: true,
		},
		"with cookie tag": {
			typ: reflect.TypeOf(struct {
				Session string `cookie:"session_id"`
			}{}),
			expect: true,
		},
		"no param tags": {
			typ: reflect.TypeOf(struct {
				Name string `json:"name"`
			}{}),
			expect: false,
		},
		"pointer to struct": {
			typ: reflect.TypeOf(&struct {
				ID string `path:"id"`
			}{}),
			expect: true,
		},
		"non-struct": {
			typ:    reflect.TypeFor[string](),
			expect: false,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, vial.HasParamTags(tc.typ))
		})
	}
}

func TestHasFormTags(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		typ    reflect.Type
		expect bool
	}{
		"with form tag": {
			typ: reflect.TypeOf(struct {
				Name string `form:"name"`
			}{}),
			expect: true,
		},
		"file upload field": {
			typ: reflect.TypeOf(struct {
				File vial.FileUpload `form:"file"`
			}{}),
			expect: true,
		},
		"form tag alongside params": {
			typ: reflect.TypeOf(struct {
				ID   string `path:"id"`
				Name string `form:"name"`
			}{}),
			expect: true,
		},
		"unexported form field": {
			typ: reflect.TypeOf(struct {
				name string `form:"name"`
			}{}),
			expect: false,
		},
		"no form tags": {
			typ: reflect.TypeOf(struct {
				Name string `json:"name"`
			}{}),
			expect: false,
		},
		"pointer to struct": {
			typ: reflect.TypeOf(&struct {
				Name string `form:"name"`
			}{}),
			expect: true,
		},
		"non-struct": {
			typ:    reflect.TypeFor[int](),
			expect: false,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, vial.HasFormTags(tc.typ))
		})
	}
}

func TestHasBodyField(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		typ    reflect.Type
		expect bool
	}{
		"with Body field": {
			typ: reflect.TypeOf(struct {
				Body struct{ Name string }
			}{}),
			expect: true,
		},
		"without Body field": {
			typ: reflect.TypeOf(struct {
				Name string
			}{}),
			expect: false,
		},
		"Body alongside params": {
			typ: reflect.TypeOf(struct {
				ID   string `path:"id"`
				Body struct{ Name string }
			}{}),
			expect: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, vial.HasBodyField(tc.typ))
		})
	}
}

func TestHasRawRequest(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		typ    reflect.Type
		expect bool
	}{
		"embedded": {
			typ: reflect.TypeOf(struct {
				vial.RawRequest
			}{}),
			expect: true,
		},
		"named field": {
			typ: reflect.TypeOf(struct {
				Raw vial.RawRequest
			}{}),
			expect: true,
		},
		"absent": {
			typ: reflect.TypeOf(struct {
				Name string
			}{}),
			expect: false,
		},
		"non-struct": {
			typ:    reflect.TypeFor[string](),
			expect: false,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, vial.HasRawRequest(tc.typ))
		})
	}
}

func TestJSONFieldName(t *testing.T) {
	t.Parallel()

	type sample struct {
		Named    string `json:"named"`
		Optional string `json:"optional,omitempty"`
		OptsOnly string `json:",omitempty"`
		Plain    string
		Hidden   string `json:"-"`
	}

	typ := reflect.TypeFor[sample]()

	tests := map[string]struct {
		field  string
		expect string
	}{
		"named":                {field: "Named", expect: "named"},
		"name with options":    {field: "Optional", expect: "optional"},
		"options without name": {field: "OptsOnly", expect: "OptsOnly"},
		"untagged":             {field: "Plain", expect: "Plain"},
		"skipped":              {field: "Hidden", expect: "-"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f, ok := typ.FieldByName(tc.field)
			assert.True(t, ok)
			assert.Equal(t, tc.expect, vial.JSONFieldName(f))
		})
	}
}

func TestFieldRequired(t *testing.T) {
	t.Parallel()

	type sample struct {
		Tagged      string `required:"true"`
		TaggedFalse string `required:"false"`
		Rule        string `validate:"required"`
		RuleLater   string `validate:"omitempty,required"`
		RulePrefix  string `validate:"required_if=Other x"`
		OtherRule   string `validate:"min=3"`
		Bare        string
	}

	typ := reflect.TypeFor[sample]()

	tests := map[string]struct {
		field  string
		expect bool
	}{
		"required tag":       {field: "Tagged", expect: true},
		"required tag false": {field: "TaggedFalse", expect: false},
		"validate rule":      {field: "Rule", expect: true},
		"rule after others":  {field: "RuleLater", expect: true},
		"conditional rule":   {field: "RulePrefix", expect: false},
		"unrelated rule":     {field: "OtherRule", expect: false},
		"no tags":            {field: "Bare", expect: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f, ok := typ.FieldByName(tc.field)
			assert.True(t, ok)
			assert.Equal(t, tc.expect, vial.FieldRequired(f))
		})
	}
}
