package httpvalidator

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/erraggy/oasgate/parser"
)

// SchemaProperties is the read-only view of an operation handed to a
// ParameterMutator.
type SchemaProperties struct {
	// Document is the API document the operation belongs to.
	Document *parser.Document
	// Parameters are the effective parameters of the operation, path-level
	// parameters merged with operation-level overrides.
	Parameters []*parser.Parameter
	// Schemas are the per-location object schemas.
	Schemas ParameterSchemas
}

// ParameterMutator rewrites request parameters in place before validation.
//
// Implementations must be idempotent: mutating an already mutated request
// leaves it unchanged.
type ParameterMutator interface {
	Mutate(req *Request, props *SchemaProperties)
}

// DefaultParameterMutator deserializes parameters according to their
// serialization style, coerces scalar strings to the declared schema type
// and fills in schema defaults for absent parameters. Each location has a
// default style:
//
// | Location | Default Style | Default Explode |
// |----------|---------------|-----------------|
// | path     | simple        | false           |
// | query    | form          | true            |
// | header   | simple        | false           |
// | cookie   | form          | true            |
type DefaultParameterMutator struct{}

var _ ParameterMutator = DefaultParameterMutator{}

// Mutate implements ParameterMutator.
func (m DefaultParameterMutator) Mutate(req *Request, props *SchemaProperties) {
	if req == nil || props == nil {
		return
	}
	for _, p := range props.Parameters {
		if p == nil || p.Name == "" {
			continue
		}
		target, name := m.location(req, p)
		if target == nil {
			continue
		}
		schema := props.Document.ResolveSchema(parameterSchema(p))

		if p.In == parser.ParamInQuery {
			m.gatherQueryObject(req.Query, p, schema, props)
		}

		value, present := target[name]
		if !present {
			if def, ok := schema.Default(); ok {
				target[name] = parser.DeepCopyJSON(def)
			}
			continue
		}

		if _, _, isContent := p.ContentSchema(); isContent && p.Schema == nil {
			target[name] = decodeContentValue(value)
			continue
		}
		target[name] = m.deserialize(props.Document, value, p, schema)
	}
}

// location returns the request map holding p and the key it is stored under.
// Missing maps are created so that defaults can be applied.
func (DefaultParameterMutator) location(req *Request, p *parser.Parameter) (map[string]any, string) {
	switch p.In {
	case parser.ParamInQuery:
		if req.Query == nil {
			req.Query = make(map[string]any)
		}
		return req.Query, p.Name
	case parser.ParamInHeader:
		if req.Headers == nil {
			req.Headers = make(map[string]any)
		}
		return req.Headers, strings.ToLower(p.Name)
	case parser.ParamInPath:
		if req.Params == nil {
			req.Params = make(map[string]any)
		}
		return req.Params, p.Name
	case parser.ParamInCookie:
		if req.Cookies == nil {
			req.Cookies = make(map[string]any)
		}
		return req.Cookies, p.Name
	default:
		return nil, ""
	}
}

// gatherQueryObject collects the members of an object query parameter that
// arrive as separate keys: "filter[status]=x" for deepObject, "status=x" for
// exploded form style. Gathered keys are removed from the query.
func (m DefaultParameterMutator) gatherQueryObject(query map[string]any, p *parser.Parameter, schema parser.Schema, props *SchemaProperties) {
	if schema.Type() != parser.TypeObject {
		return
	}
	if _, present := query[p.Name]; present {
		return
	}

	gathered := make(map[string]any)
	switch {
	case p.EffectiveStyle() == parser.StyleDeepObject:
		prefix := p.Name + "["
		for key, value := range query {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			end := strings.IndexByte(key[len(prefix):], ']')
			if end <= 0 {
				continue
			}
			gathered[key[len(prefix):len(prefix)+end]] = value
			delete(query, key)
		}
	case p.EffectiveStyle() == parser.StyleForm && p.EffectiveExplode():
		declared := props.Schemas.Query.Schema.Properties()
		for _, prop := range schema.PropertyNames() {
			if _, isParam := declared[prop]; isParam {
				continue
			}
			if value, ok := query[prop]; ok {
				gathered[prop] = value
				delete(query, prop)
			}
		}
	}
	if len(gathered) > 0 {
		query[p.Name] = gathered
	}
}

// deserialize converts one raw parameter value according to its style.
// Values that are not strings have already been deserialized and are only
// coerced.
func (m DefaultParameterMutator) deserialize(doc *parser.Document, value any, p *parser.Parameter, schema parser.Schema) any {
	explode := p.EffectiveExplode()
	switch v := value.(type) {
	case string:
		switch p.EffectiveStyle() {
		case parser.StyleSimple:
			return m.deserializeSimple(doc, v, schema, explode)
		case parser.StyleLabel:
			return m.deserializeLabel(doc, v, schema, explode)
		case parser.StyleMatrix:
			return m.deserializeMatrix(doc, v, p.Name, schema, explode)
		case parser.StyleSpaceDelimited:
			return m.deserializeDelimited(doc, v, " ", schema)
		case parser.StylePipeDelimited:
			return m.deserializeDelimited(doc, v, "|", schema)
		default:
			return m.deserializeForm(doc, v, schema, explode)
		}
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return m.coerce(doc, items, schema)
	default:
		return m.coerce(doc, value, schema)
	}
}

// deserializeSimple handles the "simple" style (comma-separated).
func (m DefaultParameterMutator) deserializeSimple(doc *parser.Document, value string, schema parser.Schema, explode bool) any {
	switch schema.Type() {
	case parser.TypeArray:
		return m.coerceArray(doc, strings.Split(value, ","), schema)
	case parser.TypeObject:
		return m.splitObject(doc, strings.Split(value, ","), schema, explode)
	default:
		return m.coerceValue(value, schema)
	}
}

// deserializeLabel handles the "label" style (dot-prefixed).
func (m DefaultParameterMutator) deserializeLabel(doc *parser.Document, value string, schema parser.Schema, explode bool) any {
	if !strings.HasPrefix(value, ".") {
		return m.coerceValue(value, schema)
	}
	value = value[1:]

	switch schema.Type() {
	case parser.TypeArray:
		sep := ","
		if explode {
			sep = "."
		}
		return m.coerceArray(doc, strings.Split(value, sep), schema)
	case parser.TypeObject:
		if explode {
			return m.splitObject(doc, strings.Split(value, "."), schema, true)
		}
		return m.splitObject(doc, strings.Split(value, ","), schema, false)
	default:
		return m.coerceValue(value, schema)
	}
}

// deserializeMatrix handles the "matrix" style (semicolon-prefixed).
func (m DefaultParameterMutator) deserializeMatrix(doc *parser.Document, value, name string, schema parser.Schema, explode bool) any {
	if !strings.HasPrefix(value, ";") {
		return m.coerceValue(value, schema)
	}
	value = value[1:]
	prefix := name + "="

	switch schema.Type() {
	case parser.TypeArray:
		if explode {
			// ;id=3;id=4
			var values []string
			for _, part := range strings.Split(value, ";") {
				if strings.HasPrefix(part, prefix) {
					values = append(values, part[len(prefix):])
				}
			}
			return m.coerceArray(doc, values, schema)
		}
		// ;id=3,4
		return m.coerceArray(doc, strings.Split(strings.TrimPrefix(value, prefix), ","), schema)
	case parser.TypeObject:
		if explode {
			// ;role=admin;firstName=Alex
			return m.splitObject(doc, strings.Split(value, ";"), schema, true)
		}
		// ;id=role,admin,firstName,Alex
		return m.splitObject(doc, strings.Split(strings.TrimPrefix(value, prefix), ","), schema, false)
	default:
		return m.coerceValue(strings.TrimPrefix(value, prefix), schema)
	}
}

// deserializeForm handles the "form" style. Exploded arrays arrive as
// repeated keys, so a single string is a one-element array.
func (m DefaultParameterMutator) deserializeForm(doc *parser.Document, value string, schema parser.Schema, explode bool) any {
	switch schema.Type() {
	case parser.TypeArray:
		if explode {
			return m.coerceArray(doc, []string{value}, schema)
		}
		return m.coerceArray(doc, strings.Split(value, ","), schema)
	case parser.TypeObject:
		if explode {
			return value
		}
		// id=role,admin,firstName,Alex
		return m.splitObject(doc, strings.Split(value, ","), schema, false)
	default:
		return m.coerceValue(value, schema)
	}
}

// deserializeDelimited handles spaceDelimited and pipeDelimited arrays.
func (m DefaultParameterMutator) deserializeDelimited(doc *parser.Document, value, delimiter string, schema parser.Schema) any {
	if schema.Type() != parser.TypeArray {
		return m.coerceValue(value, schema)
	}
	return m.coerceArray(doc, strings.Split(value, delimiter), schema)
}

// splitObject builds an object from "k=v" parts (explode) or alternating
// key and value parts.
func (m DefaultParameterMutator) splitObject(doc *parser.Document, parts []string, schema parser.Schema, explode bool) map[string]any {
	result := make(map[string]any)
	if explode {
		for _, part := range parts {
			if idx := strings.Index(part, "="); idx > 0 {
				key := part[:idx]
				result[key] = m.coerceValue(part[idx+1:], m.property(doc, schema, key))
			}
		}
		return result
	}
	for i := 0; i+1 < len(parts); i += 2 {
		result[parts[i]] = m.coerceValue(parts[i+1], m.property(doc, schema, parts[i]))
	}
	return result
}

// coerce converts already split values: array items and object members are
// coerced against their own schemas.
func (m DefaultParameterMutator) coerce(doc *parser.Document, value any, schema parser.Schema) any {
	switch v := value.(type) {
	case string:
		if schema.Type() == parser.TypeArray {
			return m.coerceArray(doc, []string{v}, schema)
		}
		return m.coerceValue(v, schema)
	case []any:
		items := doc.ResolveSchema(schema.Items())
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = m.coerce(doc, item, items)
		}
		return out
	case map[string]any:
		for key, member := range v {
			v[key] = m.coerce(doc, member, m.property(doc, schema, key))
		}
		return v
	default:
		return value
	}
}

func (m DefaultParameterMutator) coerceArray(doc *parser.Document, values []string, schema parser.Schema) []any {
	items := doc.ResolveSchema(schema.Items())
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = m.coerceValue(v, items)
	}
	return out
}

func (DefaultParameterMutator) property(doc *parser.Document, schema parser.Schema, name string) parser.Schema {
	if prop := schema.Property(name); prop != nil {
		return doc.ResolveSchema(prop)
	}
	return nil
}

// coerceValue converts a string to the schema's scalar type. Strings that do
// not parse are returned unchanged so the validator reports them.
func (DefaultParameterMutator) coerceValue(value string, schema parser.Schema) any {
	switch schema.Type() {
	case parser.TypeInteger:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	case parser.TypeNumber:
		if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	case parser.TypeBoolean:
		switch value {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return value
}

// decodeContentValue decodes a JSON-serialized parameter. Only objects and
// arrays are accepted so that a decoded value is never decoded again.
func decodeContentValue(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return value
	}
	var decoded any
	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return value
	}
	return decoded
}
