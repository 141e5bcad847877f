package httpvalidator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasgate/internal/testutil"
	"github.com/erraggy/oasgate/parser"
)

// componentSchema digs a schema out of a composed document's components.
func componentSchema(t *testing.T, components any, name string) map[string]any {
	t.Helper()
	comps, ok := components.(map[string]any)
	require.True(t, ok)
	schemas, ok := comps["schemas"].(map[string]any)
	require.True(t, ok)
	schema, ok := schemas[name].(map[string]any)
	require.True(t, ok, "schema %s", name)
	return schema
}

func objectSchema(props map[string]any) parser.Schema {
	return parser.Schema{"type": "object", "properties": props}
}

func TestComposer_General(t *testing.T) {
	c := newComposer(testutil.Petstore(t))

	schema := c.general(ParameterSchemas{
		Query:   LocationSchema{Schema: objectSchema(map[string]any{"limit": map[string]any{"type": "integer"}})},
		Headers: LocationSchema{Schema: objectSchema(map[string]any{})},
		Params:  LocationSchema{Schema: objectSchema(map[string]any{})},
		Cookies: LocationSchema{Schema: objectSchema(map[string]any{})},
	})

	assert.Equal(t, []string{envQuery, envHeaders, envParams}, schema["required"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, props, 5)
	assert.Equal(t, map[string]any{}, props[envBody])
	assert.Equal(t, map[string]any{"type": "integer"},
		props[envQuery].(map[string]any)["properties"].(map[string]any)["limit"])

	assert.Contains(t, schema, "paths")
	assert.Contains(t, schema, "components")
}

func TestComposer_Body(t *testing.T) {
	c := newComposer(testutil.Petstore(t))
	ref := parser.Schema{"$ref": "#/components/schemas/NewPet"}

	t.Run("required body", func(t *testing.T) {
		schema := c.body(BodySchema{Schema: ref, Required: true})
		assert.Equal(t, []string{envBody}, schema["required"])
		props := schema["properties"].(map[string]any)
		assert.Equal(t, map[string]any{"$ref": "#/components/schemas/NewPet"}, props[envBody])
		for _, facet := range []string{envQuery, envHeaders, envParams, envCookies} {
			assert.Equal(t, map[string]any{}, props[facet], facet)
		}
	})

	t.Run("optional body", func(t *testing.T) {
		schema := c.body(BodySchema{Schema: ref})
		assert.NotContains(t, schema, "required")
	})

	t.Run("binary body is neither validated nor required", func(t *testing.T) {
		schema := c.body(BodySchema{Schema: parser.Schema{"type": "string", "format": "binary"}, Required: true})
		assert.NotContains(t, schema, "required")
		assert.Equal(t, map[string]any{}, schema["properties"].(map[string]any)[envBody])
	})

	t.Run("no body declared", func(t *testing.T) {
		schema := c.body(BodySchema{})
		assert.Equal(t, map[string]any{}, schema["properties"].(map[string]any)[envBody])
	})
}

func TestComposer_Nullable(t *testing.T) {
	doc := testutil.Petstore(t)
	c := newComposer(doc)

	tag := componentSchema(t, c.components, "NewPet")["properties"].(map[string]any)["tag"].(map[string]any)
	assert.Equal(t, []any{"string", "null"}, tag["type"])

	// The document itself is untouched.
	rawTag := componentSchema(t, doc.Raw()["components"], "NewPet")["properties"].(map[string]any)["tag"].(map[string]any)
	assert.Equal(t, "string", rawTag["type"])

	t.Run("enum gains null once", func(t *testing.T) {
		got := rewriteNullable(map[string]any{
			"type":     "string",
			"enum":     []any{"a", nil},
			"nullable": true,
		})
		assert.Equal(t, map[string]any{
			"type":     []any{"string", "null"},
			"enum":     []any{"a", nil},
			"nullable": true,
		}, got)
	})

	t.Run("nested in arrays", func(t *testing.T) {
		got := rewriteNullable([]any{map[string]any{"type": "integer", "nullable": true}})
		assert.Equal(t, []any{map[string]any{"type": []any{"integer", "null"}, "nullable": true}}, got)
	})
}

func TestComposer_OAS31(t *testing.T) {
	doc := testutil.MustParse(t, `
openapi: "3.1.0"
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Name:
      type: [string, "null"]
    Legacy:
      type: string
      nullable: true
`)
	c := newComposer(doc)
	assert.Equal(t, DialectOAS31, c.dialect)
	assert.Equal(t, "string", componentSchema(t, c.components, "Legacy")["type"])
	assert.Equal(t, []any{"string", "null"}, componentSchema(t, c.components, "Name")["type"])
}
