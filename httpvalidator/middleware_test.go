package httpvalidator

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Status  int    `json:"status"`
	Path    string `json:"path"`
	Message string `json:"message"`
	Errors  []struct {
		Path      string `json:"path"`
		Message   string `json:"message"`
		ErrorCode string `json:"errorCode"`
	} `json:"errors"`
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestMiddleware(t *testing.T) {
	v := petstoreValidator(t, WithMaxBodySize(64))

	var seen *Request
	var seenBody string
	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = RequestFromContext(r.Context())
		data, _ := io.ReadAll(r.Body)
		seenBody = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(r *http.Request) *httptest.ResponseRecorder {
		seen, seenBody = nil, ""
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		return rec
	}

	t.Run("passes valid requests with coerced parameters", func(t *testing.T) {
		rec := serve(httptest.NewRequest("GET", "/pets/42", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, int64(42), seen.Params["petId"])
	})

	t.Run("body is readable downstream", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/pets", strings.NewReader(`{"name":"Rex"}`))
		r.Header.Set("Content-Type", "application/json")
		rec := serve(r)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, `{"name":"Rex"}`, seenBody)
	})

	t.Run("schema failure", func(t *testing.T) {
		rec := serve(httptest.NewRequest("GET", "/pets?limit=abc", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, seen)

		body := decodeErrorBody(t, rec)
		assert.Equal(t, 400, body.Status)
		assert.Equal(t, "/pets", body.Path)
		assert.Equal(t, "request.query.limit must be integer", body.Message)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, ".query.limit", body.Errors[0].Path)
		assert.Equal(t, "type.openapi.validation", body.Errors[0].ErrorCode)
	})

	t.Run("not found", func(t *testing.T) {
		rec := serve(httptest.NewRequest("GET", "/files/", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not found", decodeErrorBody(t, rec).Message)
	})

	t.Run("unmatched requests pass through", func(t *testing.T) {
		rec := serve(httptest.NewRequest("GET", "/elsewhere?x=1", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Nil(t, seen.Route)
	})

	t.Run("body too large", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/pets", strings.NewReader(`{"name":"`+strings.Repeat("x", 100)+`"}`))
		r.Header.Set("Content-Type", "application/json")
		rec := serve(r)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/pets", strings.NewReader(`{"name":`))
		r.Header.Set("Content-Type", "application/json")
		rec := serve(r)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "/pets", decodeErrorBody(t, rec).Path)
	})

	t.Run("validator build failure", func(t *testing.T) {
		broken := petstoreValidator(t, WithSchemaCompiler(failingCompiler{}))
		rec := httptest.NewRecorder()
		broken.Middleware(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/pets", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "validator unavailable", decodeErrorBody(t, rec).Message)
	})
}

func TestRequestFromContext_Missing(t *testing.T) {
	req, ok := RequestFromContext(httptest.NewRequest("GET", "/", nil).Context())
	assert.False(t, ok)
	assert.Nil(t, req)
}
