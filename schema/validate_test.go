package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocofhu/mcp-adapter-console/validation"
)

func param(name string, group Group) Parameter {
	return Parameter{Field: Field{Name: name, Type: TypeString}, Location: LocationQuery, Group: group}
}

func fixedParam(name, value string) Parameter {
	p := param(name, GroupFixed)
	p.Required = true
	p.DefaultValue = value
	return p
}

func validDraft() InterfaceDraft {
	return InterfaceDraft{
		AppID:      1,
		Name:       "search",
		Method:     MethodGet,
		Protocol:   "http",
		URL:        "https://api.example.com/search",
		Parameters: []Parameter{param("q", GroupInput), fixedParam("api_key", "secret"), param("items", GroupOutput)},
	}
}

func TestValidatePasses(t *testing.T) {
	r := Validate(validDraft())
	assert.True(t, r.OK())
	assert.Nil(t, r.Violation())
	assert.Empty(t, r.Message())
	assert.NoError(t, r.Err())
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *InterfaceDraft)
		want    Violation
		message string
	}{
		{
			name: "duplicate_parameter_name",
			mutate: func(d *InterfaceDraft) {
				d.Parameters = []Parameter{param("q", GroupInput), param("q", GroupInput)}
			},
			want:    Violation{Kind: DuplicateParameterName, Names: []string{"q"}},
			message: "duplicate parameter names: q",
		},
		{
			name: "duplicate_across_groups",
			mutate: func(d *InterfaceDraft) {
				d.Parameters = []Parameter{param("id", GroupInput), param("id", GroupOutput)}
			},
			want: Violation{Kind: DuplicateParameterName, Names: []string{"id"}},
		},
		{
			name: "fixed_missing_default",
			mutate: func(d *InterfaceDraft) {
				d.Parameters = []Parameter{fixedParam("api_key", "")}
			},
			want:    Violation{Kind: FixedParamMissingDefault, Field: "api_key"},
			message: `fixed parameter "api_key" must have a default value`,
		},
		{
			name: "fixed_blank_default",
			mutate: func(d *InterfaceDraft) {
				d.Parameters = []Parameter{fixedParam("api_key", "   ")}
			},
			want: Violation{Kind: FixedParamMissingDefault, Field: "api_key"},
		},
		{
			name: "fixed_array",
			mutate: func(d *InterfaceDraft) {
				p := fixedParam("tags", "a")
				p.IsArray = true
				d.Parameters = []Parameter{p}
			},
			want:    Violation{Kind: FixedParamIsArray, Field: "tags"},
			message: `fixed parameter "tags" cannot be an array`,
		},
		{
			name:    "missing_name",
			mutate:  func(d *InterfaceDraft) { d.Name = " " },
			want:    Violation{Kind: MissingRequiredField, Field: "name"},
			message: "name is required",
		},
		{
			name:   "missing_url",
			mutate: func(d *InterfaceDraft) { d.URL = "" },
			want:   Violation{Kind: MissingRequiredField, Field: "url"},
		},
		{
			name:   "missing_app",
			mutate: func(d *InterfaceDraft) { d.AppID = 0 },
			want:   Violation{Kind: MissingRequiredField, Field: "app_id"},
		},
		{
			name:    "invalid_url",
			mutate:  func(d *InterfaceDraft) { d.URL = "not-a-url" },
			want:    Violation{Kind: InvalidURL, Field: "url"},
			message: "url must be a valid absolute URL",
		},
		{
			name: "duplicate_default_param",
			mutate: func(d *InterfaceDraft) {
				d.DefaultParams = []DefaultParam{{Name: "v", Value: "1"}, {Name: "v", Value: "2"}}
			},
			want:    Violation{Kind: DuplicateDefaultParamName, Names: []string{"v"}},
			message: "duplicate default parameter names: v",
		},
		{
			name: "duplicate_header",
			mutate: func(d *InterfaceDraft) {
				d.DefaultHeaders = []DefaultHeader{{Name: "X-A"}, {Name: "X-B"}, {Name: "X-A"}}
			},
			want:    Violation{Kind: DuplicateHeaderName, Names: []string{"X-A"}},
			message: "duplicate header names: X-A",
		},
		{
			name: "invalid_header",
			mutate: func(d *InterfaceDraft) {
				d.DefaultHeaders = []DefaultHeader{{Name: "X-Ok"}, {Name: "X Bad"}}
			},
			want:    Violation{Kind: InvalidHeaderName, Field: "X Bad"},
			message: `invalid header name "X Bad": only letters, digits, '-' and '_' are allowed`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)

			r := Validate(d)
			require.False(t, r.OK())
			require.NotNil(t, r.Violation())
			assert.Equal(t, tt.want, *r.Violation())
			if tt.message != "" {
				assert.Equal(t, tt.message, r.Message())
			}

			var v *Violation
			require.True(t, errors.As(r.Err(), &v))
			assert.Equal(t, tt.want.Kind, v.Kind)
		})
	}
}

func TestValidateOrder(t *testing.T) {
	// Every rule is broken; the fixed default rule comes first.
	p := fixedParam("k", "")
	p.IsArray = true
	d := InterfaceDraft{
		URL:            "bad",
		Parameters:     []Parameter{p, param("k", GroupInput)},
		DefaultHeaders: []DefaultHeader{{Name: "a b"}},
	}
	assert.Equal(t, FixedParamMissingDefault, Validate(d).Violation().Kind)

	d.Parameters[0].DefaultValue = "v"
	assert.Equal(t, FixedParamIsArray, Validate(d).Violation().Kind)

	d.Parameters[0].IsArray = false
	assert.Equal(t, "name", Validate(d).Violation().Field)

	d.Name = "n"
	d.AppID = 1
	assert.Equal(t, InvalidURL, Validate(d).Violation().Kind)

	d.URL = "http://localhost:8080/x"
	assert.Equal(t, DuplicateParameterName, Validate(d).Violation().Kind)

	d.Parameters = d.Parameters[:1]
	assert.Equal(t, InvalidHeaderName, Validate(d).Violation().Kind)

	d.DefaultHeaders = nil
	assert.True(t, Validate(d).OK())
}

func TestValidateNamesUniqueAfterPass(t *testing.T) {
	lists := [][]Parameter{
		{param("a", GroupInput), param("b", GroupOutput), fixedParam("c", "1")},
		{param("a", GroupInput), param("a", GroupFixed)},
		{param("x", GroupOutput), param("y", GroupOutput), param("x", GroupInput)},
		nil,
	}
	for _, params := range lists {
		d := validDraft()
		d.Parameters = params
		for i := range d.Parameters {
			if d.Parameters[i].IsFixed() {
				d.Parameters[i].DefaultValue = "v"
			}
		}
		if !Validate(d).OK() {
			continue
		}
		seen := map[string]bool{}
		for _, p := range d.Parameters {
			assert.False(t, seen[p.Name], p.Name)
			seen[p.Name] = true
		}
	}
}

func TestValidateFixedRuleIff(t *testing.T) {
	for _, value := range []string{"", "v"} {
		for _, isArray := range []bool{false, true} {
			d := validDraft()
			p := fixedParam("k", value)
			p.IsArray = isArray
			d.Parameters = []Parameter{p}

			shouldFail := value == "" || isArray
			assert.Equal(t, shouldFail, !Validate(d).OK(), "value=%q array=%v", value, isArray)
		}
	}
}

func TestValidateHeaderNameIff(t *testing.T) {
	names := []string{"Authorization", "X-Request_Id", "a1", "", "X Bad", "X:Colon", "Ünicode", "x.y", "tab\t"}
	for _, name := range names {
		d := validDraft()
		d.DefaultHeaders = []DefaultHeader{{Name: name, Value: "v"}}
		assert.Equal(t, !validation.HeaderNamePattern.MatchString(name), !Validate(d).OK(), "header %q", name)
	}
}

func TestValidateNormalisesParameterNames(t *testing.T) {
	d := validDraft()
	d.Parameters = []Parameter{param("", GroupInput), param("  ", GroupOutput), fixedParam(" ", "")}
	assert.True(t, Validate(d).OK(), "rows without a name are skipped")

	d.Parameters = []Parameter{param(" q", GroupInput), param("q", GroupOutput)}
	r := Validate(d)
	require.False(t, r.OK())
	assert.Equal(t, DuplicateParameterName, r.Violation().Kind)
	assert.Equal(t, []string{"q"}, r.Violation().Names)

	d.Parameters = []Parameter{fixedParam(" api_key ", "")}
	r = Validate(d)
	require.False(t, r.OK())
	assert.Equal(t, "api_key", r.Violation().Field)

	d.Parameters = nil
	d.DefaultParams = []DefaultParam{{Name: "page "}, {Name: "page"}, {Name: ""}, {Name: ""}}
	r = Validate(d)
	require.False(t, r.OK())
	assert.Equal(t, DuplicateDefaultParamName, r.Violation().Kind)
	assert.Equal(t, []string{"page"}, r.Violation().Names)
}
