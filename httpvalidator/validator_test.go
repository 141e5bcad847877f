package httpvalidator

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasgate/internal/testutil"
	"github.com/erraggy/oasgate/oaserrors"
	"github.com/erraggy/oasgate/parser"
)

// =============================================================================
// Helpers
// =============================================================================

func petstoreValidator(t *testing.T, opts ...Option) *Validator {
	t.Helper()
	v, err := New(testutil.Petstore(t), opts...)
	require.NoError(t, err)
	return v
}

// newRequest builds a Request for target through Validator.FromHTTP. A
// non-empty body is sent as JSON.
func newRequest(t *testing.T, v *Validator, method, target, body string) *Request {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	req, err := v.FromHTTP(r)
	require.NoError(t, err)
	return req
}

// requireRequestError asserts err is a *oaserrors.RequestError of kind.
func requireRequestError(t *testing.T, err error, kind oaserrors.RequestErrorKind) *oaserrors.RequestError {
	t.Helper()
	require.Error(t, err)
	reqErr, ok := AsRequestError(err)
	require.True(t, ok, "expected *oaserrors.RequestError, got %T: %v", err, err)
	assert.Equal(t, kind, reqErr.Kind, "kind")
	return reqErr
}

type recordingMetrics struct {
	mu       sync.Mutex
	hits     int
	misses   int
	built    []string
	outcomes map[string]int
}

func (m *recordingMetrics) CacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *recordingMetrics) ValidatorBuilt(method, route string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.built = append(m.built, method+" "+route)
}

func (m *recordingMetrics) RequestValidated(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[outcome]++
}

type failingCompiler struct{}

func (failingCompiler) Compile(parser.Schema, Dialect) (CompiledSchema, error) {
	return nil, errors.New("compiler exploded")
}

type noopMutator struct{}

func (noopMutator) Mutate(*Request, *SchemaProperties) {}

// =============================================================================
// New Tests
// =============================================================================

func TestNew(t *testing.T) {
	t.Run("nil document", func(t *testing.T) {
		_, err := New(nil)
		var cfgErr *oaserrors.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "document", cfgErr.Option)
		assert.ErrorIs(t, err, oaserrors.ErrConfig)
	})

	t.Run("rejects document options", func(t *testing.T) {
		_, err := New(testutil.Petstore(t), WithFilePath("openapi.yaml"))
		var cfgErr *oaserrors.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("option errors", func(t *testing.T) {
		_, err := New(testutil.Petstore(t), WithMaxBodySize(-1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "negative")
	})

	t.Run("document accessor", func(t *testing.T) {
		doc := testutil.Petstore(t)
		v, err := New(doc)
		require.NoError(t, err)
		assert.Same(t, doc, v.Document())
		assert.Zero(t, v.CacheSize(), "validators are compiled lazily")
	})
}

// =============================================================================
// Query policy
// =============================================================================

func TestValidateRequest_QueryPolicy(t *testing.T) {
	v := petstoreValidator(t)

	t.Run("security api key is allowed", func(t *testing.T) {
		assert.NoError(t, v.ValidateRequest(newRequest(t, v, "GET", "/pets?api_key=xyz", "")))
	})

	t.Run("unknown parameter", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "GET", "/pets?foo=1", ""))
		reqErr := requireRequestError(t, err, oaserrors.KindUnknownQueryParameter)
		assert.Equal(t, http.StatusBadRequest, reqErr.Status)
		assert.Equal(t, ".query.foo", reqErr.Path)
		assert.Equal(t, "Unknown query parameter 'foo'", reqErr.Message)
		assert.ErrorIs(t, err, oaserrors.ErrUnknownQueryParameter)
	})

	t.Run("empty value", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "GET", "/pets?limit=", ""))
		reqErr := requireRequestError(t, err, oaserrors.KindEmptyQueryParameter)
		assert.Equal(t, ".query.limit", reqErr.Path)
		assert.Equal(t, "Empty value found for query parameter 'limit'", reqErr.Message)
	})

	t.Run("allowEmptyValue parameter", func(t *testing.T) {
		assert.NoError(t, v.ValidateRequest(newRequest(t, v, "GET", "/pets?q=", "")))
	})

	t.Run("operation security replaces document security", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "GET", "/pets/42?api_key=xyz", ""))
		reqErr := requireRequestError(t, err, oaserrors.KindUnknownQueryParameter)
		assert.Equal(t, ".query.api_key", reqErr.Path)

		assert.NoError(t, v.ValidateRequest(newRequest(t, v, "DELETE", "/pets/42?api_key=xyz", "")))
	})

	t.Run("operation extension", func(t *testing.T) {
		assert.NoError(t, v.ValidateRequest(newRequest(t, v, "GET", "/search?term=cats&page=2", "")))
	})

	t.Run("open object parameter", func(t *testing.T) {
		req := newRequest(t, v, "GET", "/filter?filter%5Bcolor%5D=red&other=1", "")
		require.NoError(t, v.ValidateRequest(req))
		assert.Equal(t, map[string]any{"color": "red"}, req.Query["filter"])
	})
}

func TestValidateRequest_ReferencedQuerySchemas(t *testing.T) {
	doc := testutil.MustParse(t, `
openapi: "3.0.3"
info: {title: t, version: "1"}
paths:
  /r:
    get:
      parameters:
        - name: f
          in: query
          schema:
            $ref: '#/components/schemas/Open'
        - name: a
          in: query
          schema:
            type: string
      responses:
        "200": {description: OK}
  /s:
    get:
      parameters:
        - name: a
          in: query
          schema:
            $ref: '#/components/schemas/Name'
      responses:
        "200": {description: OK}
components:
  schemas:
    Open:
      type: object
      additionalProperties: true
    Name:
      type: string
`)
	v, err := New(doc)
	require.NoError(t, err)

	t.Run("open object absorbs unknown keys", func(t *testing.T) {
		assert.NoError(t, v.ValidateRequest(newRequest(t, v, "GET", "/r?zzz=1&a=x", "")))
	})

	t.Run("referenced scalar keeps the check", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "GET", "/s?zzz=1&a=", ""))
		reqErr := requireRequestError(t, err, oaserrors.KindUnknownQueryParameter)
		assert.Equal(t, ".query.zzz", reqErr.Path)
		assert.Equal(t, []oaserrors.ErrorEntry{
			{Path: ".query.zzz", Message: "Unknown query parameter 'zzz'", ErrorCode: "unknownQueryParameter.openapi.validation"},
			{Path: ".query.a", Message: "Empty value found for query parameter 'a'", ErrorCode: "allowEmptyValue.openapi.validation"},
		}, reqErr.Errors)
	})

	t.Run("referenced scalar passes", func(t *testing.T) {
		assert.NoError(t, v.ValidateRequest(newRequest(t, v, "GET", "/s?a=x", "")))
	})
}

func TestValidateRequest_QueryOptions(t *testing.T) {
	t.Run("allow unknown globally", func(t *testing.T) {
		v := petstoreValidator(t, WithAllowUnknownQueryParameters(true))
		assert.NoError(t, v.ValidateRequest(newRequest(t, v, "GET", "/pets?foo=1", "")))
	})

	t.Run("allowlist", func(t *testing.T) {
		v := petstoreValidator(t, WithAllowedQueryParameters("trace"))
		assert.NoError(t, v.ValidateRequest(newRequest(t, v, "GET", "/pets?trace=1", "")))
		err := v.ValidateRequest(newRequest(t, v, "GET", "/pets?foo=1", ""))
		requireRequestError(t, err, oaserrors.KindUnknownQueryParameter)
	})
}

// =============================================================================
// Parameters
// =============================================================================

func TestValidateRequest_Parameters(t *testing.T) {
	v := petstoreValidator(t)

	t.Run("coerced and defaulted", func(t *testing.T) {
		req := newRequest(t, v, "GET", "/pets?tags=a,b", "")
		require.NoError(t, v.ValidateRequest(req))
		assert.Equal(t, []any{"a", "b"}, req.Query["tags"])
		assert.Equal(t, json.Number("20"), req.Query["limit"])
	})

	t.Run("type mismatch", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "GET", "/pets?limit=abc", ""))
		reqErr := requireRequestError(t, err, oaserrors.KindSchemaValidation)
		assert.Equal(t, "/pets", reqErr.Path)
		assert.Equal(t, "request.query.limit must be integer", reqErr.Message)
		assert.Equal(t, []oaserrors.ErrorEntry{
			{Path: ".query.limit", Message: "must be integer", ErrorCode: "type.openapi.validation"},
		}, reqErr.Errors)
	})

	t.Run("minimum", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "GET", "/pets?limit=0", ""))
		reqErr := requireRequestError(t, err, oaserrors.KindSchemaValidation)
		require.Len(t, reqErr.Errors, 1)
		assert.Equal(t, ".query.limit", reqErr.Errors[0].Path)
		assert.Equal(t, "minimum.openapi.validation", reqErr.Errors[0].ErrorCode)
	})

	t.Run("header pattern", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/pets", nil)
		r.Header.Set("X-Request-ID", "NOT VALID")
		req, err := v.FromHTTP(r)
		require.NoError(t, err)

		reqErr := requireRequestError(t, v.ValidateRequest(req), oaserrors.KindSchemaValidation)
		require.Len(t, reqErr.Errors, 1)
		assert.Equal(t, ".headers.x-request-id", reqErr.Errors[0].Path)
		assert.Equal(t, "pattern.openapi.validation", reqErr.Errors[0].ErrorCode)
	})

	t.Run("errors are ordered by location", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/pets?limit=abc", nil)
		r.Header.Set("X-Request-ID", "NOT VALID")
		req, err := v.FromHTTP(r)
		require.NoError(t, err)

		reqErr := requireRequestError(t, v.ValidateRequest(req), oaserrors.KindSchemaValidation)
		require.Len(t, reqErr.Errors, 2)
		assert.Equal(t, ".headers.x-request-id", reqErr.Errors[0].Path)
		assert.Equal(t, ".query.limit", reqErr.Errors[1].Path)
	})

	t.Run("enum", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "GET", "/sorted?sort=up", ""))
		reqErr := requireRequestError(t, err, oaserrors.KindSchemaValidation)
		require.Len(t, reqErr.Errors, 1)
		assert.Equal(t, ".query.sort", reqErr.Errors[0].Path)
		assert.Equal(t, "must be equal to one of the allowed values: asc, desc", reqErr.Errors[0].Message)
		assert.Equal(t, "enum.openapi.validation", reqErr.Errors[0].ErrorCode)
	})

	t.Run("deepObject", func(t *testing.T) {
		req := newRequest(t, v, "GET", "/sorted?filter%5Bstatus%5D=sold&filter%5BminAge%5D=3", "")
		require.NoError(t, v.ValidateRequest(req))
		assert.Equal(t, map[string]any{"status": "sold", "minAge": int64(3)}, req.Query["filter"])

		err := v.ValidateRequest(newRequest(t, v, "GET", "/sorted?filter%5BminAge%5D=old", ""))
		reqErr := requireRequestError(t, err, oaserrors.KindSchemaValidation)
		require.Len(t, reqErr.Errors, 1)
		assert.Equal(t, ".query.filter.minAge", reqErr.Errors[0].Path)
	})

	t.Run("path parameter coerced", func(t *testing.T) {
		req := newRequest(t, v, "GET", "/pets/42", "")
		require.NoError(t, v.ValidateRequest(req))
		assert.Equal(t, int64(42), req.Params["petId"])
	})

	t.Run("path parameter type", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "GET", "/pets/abc", ""))
		reqErr := requireRequestError(t, err, oaserrors.KindSchemaValidation)
		require.Len(t, reqErr.Errors, 1)
		assert.Equal(t, ".params.petId", reqErr.Errors[0].Path)
	})

	t.Run("route parameters overwrite request parameters", func(t *testing.T) {
		req := &Request{
			Method: "GET",
			Path:   "/pets/7",
			Route:  &Route{Pattern: "/pets/{petId}", PathParams: map[string]string{"petId": "7"}},
			Params: map[string]any{"petId": "not-a-number"},
		}
		require.NoError(t, v.ValidateRequest(req))
		assert.Equal(t, int64(7), req.Params["petId"])
	})
}

func TestValidateRequest_Cookies(t *testing.T) {
	v := petstoreValidator(t)
	route := &Route{Pattern: "/me"}

	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/me", nil)
		r.AddCookie(&http.Cookie{Name: "session", Value: "abcdef"})
		req, err := v.FromHTTP(r)
		require.NoError(t, err)
		assert.NoError(t, v.ValidateRequest(req))
	})

	t.Run("missing", func(t *testing.T) {
		err := v.ValidateRequest(&Request{Method: "GET", Path: "/me", Route: route})
		reqErr := requireRequestError(t, err, oaserrors.KindSchemaValidation)
		require.Len(t, reqErr.Errors, 1)
		assert.Equal(t, ".cookies.session", reqErr.Errors[0].Path)
		assert.Equal(t, "required.openapi.validation", reqErr.Errors[0].ErrorCode)
	})

	t.Run("signed cookie wins", func(t *testing.T) {
		req := &Request{
			Method:        "GET",
			Path:          "/me",
			Route:         route,
			Cookies:       map[string]any{"session": "ab"},
			SignedCookies: map[string]any{"session": "abcdef"},
		}
		assert.NoError(t, v.ValidateRequest(req))

		req.SignedCookies = nil
		reqErr := requireRequestError(t, v.ValidateRequest(req), oaserrors.KindSchemaValidation)
		assert.Equal(t, ".cookies.session", reqErr.Errors[0].Path)
		assert.Equal(t, "minLength.openapi.validation", reqErr.Errors[0].ErrorCode)
	})
}

// =============================================================================
// Body
// =============================================================================

func TestValidateRequest_Body(t *testing.T) {
	v := petstoreValidator(t)

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.ValidateRequest(newRequest(t, v, "POST", "/pets", `{"name":"Rex","age":3}`)))
	})

	t.Run("nullable property accepts null", func(t *testing.T) {
		assert.NoError(t, v.ValidateRequest(newRequest(t, v, "POST", "/pets", `{"name":"Rex","tag":null}`)))
	})

	t.Run("missing required body", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "POST", "/pets", ""))
		reqErr := requireRequestError(t, err, oaserrors.KindSchemaValidation)
		assert.Equal(t, []oaserrors.ErrorEntry{
			{Path: ".body", Message: "must have required property 'body'", ErrorCode: "required.openapi.validation"},
		}, reqErr.Errors)
	})

	t.Run("additional property", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "POST", "/pets", `{"name":"Rex","color":"brown"}`))
		reqErr := requireRequestError(t, err, oaserrors.KindSchemaValidation)
		assert.Equal(t, []oaserrors.ErrorEntry{
			{Path: ".body.color", Message: "must NOT have additional properties", ErrorCode: "additionalProperties.openapi.validation"},
		}, reqErr.Errors)
		assert.Equal(t, "request.body.color must NOT have additional properties", reqErr.Message)
	})

	t.Run("nested constraint", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "POST", "/pets", `{"name":""}`))
		reqErr := requireRequestError(t, err, oaserrors.KindSchemaValidation)
		require.Len(t, reqErr.Errors, 1)
		assert.Equal(t, ".body.name", reqErr.Errors[0].Path)
		assert.Equal(t, "minLength.openapi.validation", reqErr.Errors[0].ErrorCode)
	})

	t.Run("binary body is not validated", func(t *testing.T) {
		r := httptest.NewRequest("PUT", "/pets/1/photo", strings.NewReader("\x89PNG"))
		r.Header.Set("Content-Type", "application/octet-stream")
		req, err := v.FromHTTP(r)
		require.NoError(t, err)
		assert.NoError(t, v.ValidateRequest(req))

		r = httptest.NewRequest("PUT", "/pets/1/photo", nil)
		r.Header.Set("Content-Type", "application/octet-stream")
		req, err = v.FromHTTP(r)
		require.NoError(t, err)
		assert.NoError(t, v.ValidateRequest(req), "binary bodies are never required")
	})
}

func TestValidateRequest_Discriminator(t *testing.T) {
	v := petstoreValidator(t)

	t.Run("selected option passes", func(t *testing.T) {
		assert.NoError(t, v.ValidateRequest(newRequest(t, v, "POST", "/animals", `{"petType":"cat","name":"Tom"}`)))
	})

	t.Run("unknown value", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "POST", "/animals", `{"petType":"bird","name":"Tweety"}`))
		reqErr := requireRequestError(t, err, oaserrors.KindDiscriminatorMismatch)
		assert.Equal(t, http.StatusBadRequest, reqErr.Status)
		assert.Equal(t, "/animals", reqErr.Path)
		assert.Equal(t, "'petType' must be equal to one of the allowed values: cat, dog.", reqErr.Message)
		require.Len(t, reqErr.Errors, 1)
		assert.Equal(t, ".body.petType", reqErr.Errors[0].Path)
	})

	t.Run("option schema errors", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "POST", "/animals", `{"petType":"dog","name":"Rex"}`))
		reqErr := requireRequestError(t, err, oaserrors.KindSchemaValidation)
		assert.Equal(t, []oaserrors.ErrorEntry{
			{Path: ".body.bark", Message: "must have required property 'bark'", ErrorCode: "required.openapi.validation"},
		}, reqErr.Errors)
		assert.Equal(t, "request.body.bark must have required property 'bark'", reqErr.Message)
	})

	t.Run("missing body", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "POST", "/animals", ""))
		reqErr := requireRequestError(t, err, oaserrors.KindSchemaValidation)
		require.Len(t, reqErr.Errors, 1)
		assert.Equal(t, ".body", reqErr.Errors[0].Path)
	})
}

// =============================================================================
// Routing
// =============================================================================

func TestValidateRequest_Routing(t *testing.T) {
	metrics := &recordingMetrics{}
	v := petstoreValidator(t, WithMetrics(metrics))

	t.Run("unmatched path is skipped", func(t *testing.T) {
		req := newRequest(t, v, "GET", "/nowhere?anything=1", "")
		assert.Nil(t, req.Route)
		assert.NoError(t, v.ValidateRequest(req))
	})

	t.Run("unmatched method is skipped", func(t *testing.T) {
		assert.NoError(t, v.ValidateRequest(newRequest(t, v, "PATCH", "/pets?foo=1", "")))
	})

	t.Run("wildcard with nothing captured", func(t *testing.T) {
		err := v.ValidateRequest(newRequest(t, v, "GET", "/files/", ""))
		reqErr := requireRequestError(t, err, oaserrors.KindNotFound)
		assert.Equal(t, http.StatusNotFound, reqErr.Status)
		assert.Equal(t, "/files/", reqErr.Path)
		assert.Equal(t, "not found", reqErr.Message)
		assert.ErrorIs(t, err, oaserrors.ErrNotFound)
	})

	t.Run("wildcard with a capture", func(t *testing.T) {
		req := newRequest(t, v, "GET", "/files/docs/readme.md", "")
		require.NoError(t, v.ValidateRequest(req))
		assert.Equal(t, "docs/readme.md", req.Params["path"])
	})

	t.Run("nil request", func(t *testing.T) {
		err := v.ValidateRequest(nil)
		require.Error(t, err)
		_, ok := AsRequestError(err)
		assert.False(t, ok)
	})

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	assert.Equal(t, 2, metrics.outcomes[OutcomeSkipped])
	assert.Equal(t, 1, metrics.outcomes[OutcomeFailed])
	assert.Equal(t, 1, metrics.outcomes[OutcomePassed])
	assert.Equal(t, 1, metrics.misses, "both wildcard requests share one validator")
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, []string{"GET /files/{path*}"}, metrics.built)
}

// =============================================================================
// Pipeline properties
// =============================================================================

func TestValidateRequest_Idempotent(t *testing.T) {
	v := petstoreValidator(t)

	cases := []struct {
		method, target, body string
	}{
		{"GET", "/pets?limit=5&tags=a,b", ""},
		{"GET", "/pets?limit=abc", ""},
		{"GET", "/sorted?filter%5BminAge%5D=3", ""},
		{"GET", "/pets/42", ""},
		{"POST", "/pets", `{"name":"Rex","color":"brown"}`},
		{"POST", "/animals", `{"petType":"bird"}`},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			req := newRequest(t, v, tc.method, tc.target, tc.body)
			first := v.ValidateRequest(req)
			second := v.ValidateRequest(req)
			assert.Equal(t, first, second)
		})
	}
}

func TestValidateRequest_CustomCollaborators(t *testing.T) {
	t.Run("mutator", func(t *testing.T) {
		v := petstoreValidator(t, WithParameterMutator(noopMutator{}))
		err := v.ValidateRequest(newRequest(t, v, "GET", "/pets/42", ""))
		reqErr := requireRequestError(t, err, oaserrors.KindSchemaValidation)
		assert.Equal(t, ".params.petId", reqErr.Errors[0].Path, "uncoerced strings fail integer schemas")
	})

	t.Run("compiler failure", func(t *testing.T) {
		v := petstoreValidator(t, WithSchemaCompiler(failingCompiler{}))
		err := v.ValidateRequest(newRequest(t, v, "GET", "/pets", ""))
		require.Error(t, err)

		_, isRequestErr := AsRequestError(err)
		assert.False(t, isRequestErr)
		var cfgErr *oaserrors.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "schema", cfgErr.Option)
		assert.Equal(t, "GET-/pets-not_provided", cfgErr.Value)
		assert.Contains(t, err.Error(), "compiler exploded")
		assert.Zero(t, v.CacheSize(), "failed builds are not cached")
	})
}

// =============================================================================
// Check Tests
// =============================================================================

func TestCheck(t *testing.T) {
	v := petstoreValidator(t)

	t.Run("valid", func(t *testing.T) {
		result, err := v.Check(newRequest(t, v, "GET", "/pets/42", ""))
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.True(t, result.Matched)
		assert.Equal(t, "/pets/{petId}", result.MatchedPath)
		assert.Equal(t, "GET", result.MatchedMethod)
		assert.Equal(t, map[string]any{"petId": int64(42)}, result.PathParams)
		assert.Nil(t, result.Error)
	})

	t.Run("invalid", func(t *testing.T) {
		result, err := v.Check(newRequest(t, v, "GET", "/pets?foo=1", ""))
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.True(t, result.Matched)
		assert.Equal(t, "unknown_query_parameter", result.Kind)
		require.NotNil(t, result.Error)
		assert.Equal(t, ".query.foo", result.Error.Path)
	})

	t.Run("unmatched", func(t *testing.T) {
		result, err := v.Check(newRequest(t, v, "GET", "/nowhere", ""))
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.False(t, result.Matched)
		assert.Empty(t, result.MatchedPath)
	})

	t.Run("build failure", func(t *testing.T) {
		broken := petstoreValidator(t, WithSchemaCompiler(failingCompiler{}))
		result, err := broken.Check(newRequest(t, broken, "GET", "/pets", ""))
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}
