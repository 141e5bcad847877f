package httpvalidator

import (
	"github.com/erraggy/oasgate/parser"
)

// composer builds the schemas compiled for an operation. The document's
// paths and components are embedded under the same keys in every composed
// schema so that "#/components/..." and "#/paths/..." references resolve.
type composer struct {
	doc        *parser.Document
	dialect    Dialect
	paths      any
	components any
}

func newComposer(doc *parser.Document) *composer {
	c := &composer{doc: doc, dialect: DialectOAS30}
	if doc.IsOAS31() {
		c.dialect = DialectOAS31
	}
	raw := doc.Raw()
	c.paths = c.normalize(raw["paths"])
	c.components = c.normalize(raw["components"])
	return c
}

// general composes the schema for the non-body request facets. body is an
// empty placeholder so the envelope's body key never fails this schema.
func (c *composer) general(params ParameterSchemas) parser.Schema {
	return c.embed(parser.Schema{
		"required": []string{envQuery, envHeaders, envParams},
		"properties": map[string]any{
			envQuery:   c.normalize(map[string]any(params.Query.Schema)),
			envHeaders: c.normalize(map[string]any(params.Headers.Schema)),
			envParams:  c.normalize(map[string]any(params.Params.Schema)),
			envCookies: c.normalize(map[string]any(params.Cookies.Schema)),
			envBody:    map[string]any{},
		},
	})
}

// body composes the schema for the request body. A binary body is not
// content-validated and is never required.
func (c *composer) body(body BodySchema) parser.Schema {
	binary := c.isBinary(body.Schema)
	fragment := any(map[string]any{})
	if !binary && body.Schema != nil {
		fragment = c.normalize(map[string]any(body.Schema))
	}
	schema := c.embed(parser.Schema{
		"properties": map[string]any{
			envQuery:   map[string]any{},
			envHeaders: map[string]any{},
			envParams:  map[string]any{},
			envCookies: map[string]any{},
			envBody:    fragment,
		},
	})
	if body.Required && !binary {
		schema["required"] = []string{envBody}
	}
	return schema
}

// standalone composes a schema that validates a bare value (not an envelope)
// against fragment.
func (c *composer) standalone(fragment parser.Schema) parser.Schema {
	return c.embed(parser.Schema{
		"allOf": []any{c.normalize(map[string]any(fragment))},
	})
}

func (c *composer) embed(schema parser.Schema) parser.Schema {
	if c.paths != nil {
		schema["paths"] = c.paths
	}
	if c.components != nil {
		schema["components"] = c.components
	}
	return schema
}

func (c *composer) isBinary(s parser.Schema) bool {
	return c.doc.ResolveSchema(s).Format() == parser.FormatBinary
}

// normalize returns a copy of v in which OAS 3.0 "nullable: true" is
// expressed as a "null" type alternative. OAS 3.1 values are returned as-is.
func (c *composer) normalize(v any) any {
	if v == nil {
		return nil
	}
	if c.dialect == DialectOAS31 {
		return v
	}
	return rewriteNullable(parser.DeepCopyJSON(v))
}

func rewriteNullable(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = rewriteNullable(val)
		}
		if nullable, _ := t["nullable"].(bool); nullable {
			if typ, ok := t["type"].(string); ok && typ != parser.TypeNull {
				t["type"] = []any{typ, parser.TypeNull}
			}
			if enum, ok := t["enum"].([]any); ok && !containsNil(enum) {
				t["enum"] = append(enum, nil)
			}
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = rewriteNullable(val)
		}
		return t
	default:
		return v
	}
}

func containsNil(values []any) bool {
	for _, v := range values {
		if v == nil {
			return true
		}
	}
	return false
}
