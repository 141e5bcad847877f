package httpvalidator

import (
	"strings"

	"github.com/erraggy/oasgate/internal/maputil"
	"github.com/erraggy/oasgate/parser"
)

// Envelope property names. Every validated request is presented to the
// compiled schemas as an object with these keys.
const (
	envQuery   = "query"
	envHeaders = "headers"
	envParams  = "params"
	envCookies = "cookies"
	envBody    = "body"
)

// LocationSchema is the object schema for one parameter location.
type LocationSchema struct {
	// Schema is an object schema whose properties are the declared
	// parameters of the location.
	Schema parser.Schema
	// AllowEmpty holds the names of parameters declared with allowEmptyValue.
	AllowEmpty map[string]bool
}

// Property returns the declared schema for a parameter name.
func (l LocationSchema) Property(name string) parser.Schema {
	return l.Schema.Property(name)
}

// ParameterSchemas groups the per-location schemas of an operation.
type ParameterSchemas struct {
	Query   LocationSchema
	Headers LocationSchema
	Params  LocationSchema
	Cookies LocationSchema
}

// BodySchema is the request body fragment selected for a content type.
type BodySchema struct {
	// Schema is the body fragment, or an empty schema when the operation has
	// no body or no content entry matches.
	Schema parser.Schema
	// Required mirrors requestBody.required.
	Required bool
	// MediaType is the content map key that matched, if any.
	MediaType string
}

// SchemaExtractor turns an operation's declarations into schema fragments.
// Implementations must be pure: the same inputs yield equivalent outputs.
type SchemaExtractor interface {
	ExtractParameters(doc *parser.Document, route string, op *parser.Operation) (ParameterSchemas, error)
	ExtractBody(doc *parser.Document, op *parser.Operation, ct ContentType) (BodySchema, error)
}

// DefaultSchemaExtractor builds location schemas from the effective
// parameters of an operation and selects the request body by content type.
type DefaultSchemaExtractor struct{}

var _ SchemaExtractor = DefaultSchemaExtractor{}

// ExtractParameters implements SchemaExtractor.
func (DefaultSchemaExtractor) ExtractParameters(doc *parser.Document, route string, op *parser.Operation) (ParameterSchemas, error) {
	builders := map[string]*locationBuilder{
		parser.ParamInQuery:  newLocationBuilder(),
		parser.ParamInHeader: newLocationBuilder(),
		parser.ParamInPath:   newLocationBuilder(),
		parser.ParamInCookie: newLocationBuilder(),
	}

	for _, p := range doc.Parameters(route, op) {
		b, ok := builders[p.In]
		if !ok || p.Name == "" {
			continue
		}
		name := p.Name
		if p.In == parser.ParamInHeader {
			name = strings.ToLower(name)
		}
		b.add(name, parameterSchema(p), p.Required || p.In == parser.ParamInPath, p.AllowEmptyValue)
	}

	return ParameterSchemas{
		Query:   builders[parser.ParamInQuery].build(),
		Headers: builders[parser.ParamInHeader].build(),
		Params:  builders[parser.ParamInPath].build(),
		Cookies: builders[parser.ParamInCookie].build(),
	}, nil
}

// ExtractBody implements SchemaExtractor.
func (DefaultSchemaExtractor) ExtractBody(_ *parser.Document, op *parser.Operation, ct ContentType) (BodySchema, error) {
	if op == nil || op.RequestBody == nil {
		return BodySchema{Schema: parser.Schema{}}, nil
	}
	body := BodySchema{Schema: parser.Schema{}, Required: op.RequestBody.Required}

	declared := maputil.SortedKeys(op.RequestBody.Content)
	match := ""
	for _, mt := range declared {
		if ct.Matches(mt) {
			match = mt
			break
		}
	}
	if match == "" {
		for _, mt := range declared {
			if ct.matchesWildcard(mt) {
				match = mt
				break
			}
		}
	}
	if match == "" {
		return body, nil
	}

	body.MediaType = match
	if media := op.RequestBody.Content[match]; media != nil && media.Schema != nil {
		body.Schema = media.Schema
	}
	return body, nil
}

// parameterSchema returns the schema a parameter value is validated with.
func parameterSchema(p *parser.Parameter) parser.Schema {
	if p.Schema != nil {
		return p.Schema
	}
	if _, schema, ok := p.ContentSchema(); ok && schema != nil {
		return schema
	}
	return parser.Schema{}
}

type locationBuilder struct {
	properties map[string]any
	required   []string
	allowEmpty map[string]bool
}

func newLocationBuilder() *locationBuilder {
	return &locationBuilder{properties: make(map[string]any)}
}

func (b *locationBuilder) add(name string, schema parser.Schema, required, allowEmpty bool) {
	b.properties[name] = map[string]any(schema)
	if required {
		b.required = append(b.required, name)
	}
	if allowEmpty {
		if b.allowEmpty == nil {
			b.allowEmpty = make(map[string]bool)
		}
		b.allowEmpty[name] = true
	}
}

func (b *locationBuilder) build() LocationSchema {
	schema := parser.Schema{
		"type":       parser.TypeObject,
		"properties": b.properties,
	}
	// Draft 4 rejects an empty required array.
	if len(b.required) > 0 {
		schema["required"] = b.required
	}
	return LocationSchema{Schema: schema, AllowEmpty: b.allowEmpty}
}
