package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasgate/internal/testutil"
)

// serverSpec declares a base path, which only the kin-openapi router honours.
const serverSpec = `
openapi: "3.0.3"
info:
  title: Orders
  version: "1.0"
servers:
  - url: /api/v1
paths:
  /orders/{orderId}:
    get:
      parameters:
        - name: orderId
          in: path
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: OK
`

func quietStderr(t *testing.T) {
	t.Helper()
	orig := stderr
	stderr = io.Discard
	t.Cleanup(func() { stderr = orig })
}

func check(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := runCheck(context.Background(), args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func TestSetupCheckFlags(t *testing.T) {
	fs, flags := SetupCheckFlags()

	t.Run("default values", func(t *testing.T) {
		assert.Equal(t, "GET", flags.Method)
		assert.Equal(t, FormatText, flags.Format)
		assert.False(t, flags.Quiet)
		assert.False(t, flags.Kin)
		assert.Empty(t, flags.Headers)
	})

	t.Run("parse flags", func(t *testing.T) {
		args := []string{
			"-X", "post", "-url", "/pets", "-H", "A: 1", "-header", "B: 2",
			"-cookie", "c=3", "-allow-query", "trace", "-kin", "--format", "json", "api.yaml",
		}
		require.NoError(t, fs.Parse(args))

		assert.Equal(t, "post", flags.Method)
		assert.Equal(t, "/pets", flags.URL)
		assert.Equal(t, []string{"A: 1", "B: 2"}, []string(flags.Headers))
		assert.Equal(t, []string{"c=3"}, []string(flags.Cookies))
		assert.Equal(t, []string{"trace"}, []string(flags.AllowedQuery))
		assert.True(t, flags.Kin)
		assert.Equal(t, "json", flags.Format)
		assert.Equal(t, "api.yaml", fs.Arg(0))
	})
}

func TestCheck_Text(t *testing.T) {
	quietStderr(t)
	spec := testutil.WritePetstore(t)

	t.Run("valid", func(t *testing.T) {
		out, err := check(t, "", "-url", "/pets/42", spec)
		require.NoError(t, err)
		assert.Contains(t, out, "Request: GET /pets/42")
		assert.Contains(t, out, "Operation: GET /pets/{petId}")
		assert.Contains(t, out, "✓ Request is valid")
	})

	t.Run("invalid", func(t *testing.T) {
		out, err := check(t, "", "-url", "/pets?limit=abc", spec)
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.Contains(t, out, "Errors (1):")
		assert.Contains(t, out, ".query.limit: must be integer (type.openapi.validation)")
		assert.Contains(t, out, "✗ Validation failed: 400 schema_validation: request.query.limit must be integer")
	})

	t.Run("unmatched", func(t *testing.T) {
		out, err := check(t, "", "-url", "/nowhere", spec)
		require.NoError(t, err)
		assert.Contains(t, out, "No operation matches")
	})

	t.Run("quiet", func(t *testing.T) {
		out, err := check(t, "", "-q", "-url", "/pets?limit=abc", spec)
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.Empty(t, out)
	})
}

func TestCheck_RequestParts(t *testing.T) {
	quietStderr(t)
	spec := testutil.WritePetstore(t)

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr bool
	}{
		{"json body", "", []string{"-X", "POST", "-url", "/pets", "-body", `{"name":"Rex"}`}, false},
		{"invalid body", "", []string{"-X", "POST", "-url", "/pets", "-body", `{"name":""}`}, true},
		{"body from stdin", `{"name":"Rex","age":3}`, []string{"-X", "POST", "-url", "/pets", "-body-file", "-"}, false},
		{"cookie", "", []string{"-url", "/me", "-cookie", "session=abcdef"}, false},
		{"missing cookie", "", []string{"-url", "/me"}, true},
		{"header", "", []string{"-url", "/pets", "-H", "X-Request-ID: req-1"}, false},
		{"bad header", "", []string{"-url", "/pets", "-H", "X-Request-ID: NOT VALID"}, true},
		{"allowlisted query", "", []string{"-url", "/pets?trace=1", "-allow-query", "trace"}, false},
		{"unknown query", "", []string{"-url", "/pets?trace=1"}, true},
		{"unknown query allowed", "", []string{"-url", "/pets?trace=1", "-allow-unknown-query"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := check(t, tt.stdin, append(tt.args, spec)...)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidationFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("body file", func(t *testing.T) {
		bodyPath := filepath.Join(t.TempDir(), "body.json")
		require.NoError(t, os.WriteFile(bodyPath, []byte(`{"petType":"dog","name":"Rex","bark":true}`), 0600))
		_, err := check(t, "", "-X", "POST", "-url", "/animals", "-body-file", bodyPath, spec)
		assert.NoError(t, err)
	})
}

func TestCheck_Structured(t *testing.T) {
	quietStderr(t)
	spec := testutil.WritePetstore(t)

	out, err := check(t, "", "--format", "json", "-url", "/pets?foo=1", spec)
	assert.ErrorIs(t, err, ErrValidationFailed)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, false, result["valid"])
	assert.Equal(t, true, result["matched"])
	assert.Equal(t, "/pets", result["matchedPath"])
	assert.Equal(t, "unknown_query_parameter", result["kind"])
	reqErr, ok := result["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(400), reqErr["status"])
	assert.Equal(t, ".query.foo", reqErr["path"])

	out, err = check(t, "", "--format", "yaml", "-url", "/pets/42", spec)
	require.NoError(t, err)
	assert.Contains(t, out, "valid: true")
	assert.Contains(t, out, "matchedPath:")
	assert.Contains(t, out, "/pets/{petId}")
}

func TestCheck_Kin(t *testing.T) {
	quietStderr(t)
	spec := filepath.Join(t.TempDir(), "orders.yaml")
	require.NoError(t, os.WriteFile(spec, []byte(serverSpec), 0600))

	out, err := check(t, "", "-kin", "-url", "/api/v1/orders/17", spec)
	require.NoError(t, err)
	assert.Contains(t, out, "Operation: GET /orders/{orderId}")

	_, err = check(t, "", "-kin", "-url", "/api/v1/orders/latest", spec)
	assert.ErrorIs(t, err, ErrValidationFailed)

	out, err = check(t, "", "-url", "/api/v1/orders/latest", spec)
	require.NoError(t, err, "the default router ignores server base paths")
	assert.Contains(t, out, "No operation matches")
}

func TestCheck_Errors(t *testing.T) {
	quietStderr(t)
	spec := testutil.WritePetstore(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no document", []string{"-url", "/pets"}, "exactly one document path"},
		{"invalid format", []string{"--format", "xml", "-url", "/pets", spec}, "invalid format"},
		{"missing url", []string{spec}, "requires -url"},
		{"relative url", []string{"-url", "pets", spec}, "must be a path"},
		{"two bodies", []string{"-url", "/pets", "-body", "{}", "-body-file", "x.json", spec}, "not both"},
		{"bad header", []string{"-url", "/pets", "-H", "nocolon", spec}, "-header"},
		{"bad cookie", []string{"-url", "/me", "-cookie", "nosep", spec}, "-cookie"},
		{"missing body file", []string{"-X", "POST", "-url", "/pets", "-body-file", "/nonexistent/body.json", spec}, "reading body file"},
		{"missing document", []string{"-url", "/pets", "/nonexistent/openapi.yaml"}, "loading document"},
		{"unknown flag", []string{"-nope", spec}, "-nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := check(t, "", tt.args...)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrValidationFailed)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("help", func(t *testing.T) {
		_, err := check(t, "", "--help")
		assert.NoError(t, err)
	})
}
