package parser

import (
	"encoding/json"
	"sort"
)

// JSON Schema type names.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeNull    = "null"
)

// FormatBinary marks a string schema whose payload is raw bytes.
const FormatBinary = "binary"

// Schema is a JSON Schema fragment as it appears in the document.
//
// Schemas are kept in their decoded JSON form rather than a typed struct so
// they can be embedded unchanged into composed validation schemas. Numbers
// are json.Number values. The accessors below are nil-safe.
type Schema map[string]any

// AsSchema converts a decoded JSON value into a Schema. It returns nil for
// anything that is not a JSON object.
func AsSchema(v any) Schema {
	switch s := v.(type) {
	case Schema:
		return s
	case map[string]any:
		return Schema(s)
	default:
		return nil
	}
}

// Ref returns the schema's $ref, if any.
func (s Schema) Ref() string {
	ref, _ := s["$ref"].(string)
	return ref
}

// Types returns the declared type names. OAS 3.1 allows a list.
func (s Schema) Types() []string {
	switch t := s["type"].(type) {
	case string:
		return []string{t}
	case []any:
		types := make([]string, 0, len(t))
		for _, v := range t {
			if name, ok := v.(string); ok {
				types = append(types, name)
			}
		}
		return types
	case []string:
		return t
	default:
		return nil
	}
}

// Type returns the first declared type that is not "null".
func (s Schema) Type() string {
	for _, t := range s.Types() {
		if t != TypeNull {
			return t
		}
	}
	return ""
}

// Format returns the schema's format.
func (s Schema) Format() string {
	format, _ := s["format"].(string)
	return format
}

// Properties returns the declared object properties.
func (s Schema) Properties() map[string]Schema {
	raw, ok := s["properties"].(map[string]any)
	if !ok {
		if typed, isSchemaMap := s["properties"].(map[string]Schema); isSchemaMap {
			return typed
		}
		return nil
	}
	props := make(map[string]Schema, len(raw))
	for name, v := range raw {
		props[name] = AsSchema(v)
	}
	return props
}

// PropertyNames returns the declared property names in sorted order.
func (s Schema) PropertyNames() []string {
	props := s.Properties()
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Property returns a single declared property.
func (s Schema) Property(name string) Schema {
	return s.Properties()[name]
}

// Items returns the array item schema.
func (s Schema) Items() Schema {
	return AsSchema(s["items"])
}

// Required returns the required property names.
func (s Schema) Required() []string {
	return stringList(s["required"])
}

// Default returns the schema's default value and whether one is declared.
func (s Schema) Default() (any, bool) {
	v, ok := s["default"]
	return v, ok
}

// Enum returns the allowed values, if any.
func (s Schema) Enum() []any {
	values, _ := s["enum"].([]any)
	return values
}

// Nullable reports whether null is allowed, either through the OAS 3.0
// nullable keyword or a "null" entry in the type list.
func (s Schema) Nullable() bool {
	if b, ok := s["nullable"].(bool); ok && b {
		return true
	}
	for _, t := range s.Types() {
		if t == TypeNull {
			return true
		}
	}
	return false
}

// AllowsAdditionalProperties reports whether additionalProperties is enabled,
// either as `true` or as a schema.
func (s Schema) AllowsAdditionalProperties() bool {
	switch ap := s["additionalProperties"].(type) {
	case bool:
		return ap
	case map[string]any, Schema:
		return true
	default:
		return false
	}
}

// Discriminator returns the discriminator property name and its mapping.
func (s Schema) Discriminator() (property string, mapping map[string]string, ok bool) {
	d, isMap := s["discriminator"].(map[string]any)
	if !isMap {
		return "", nil, false
	}
	property, _ = d["propertyName"].(string)
	if property == "" {
		return "", nil, false
	}
	if raw, isMapping := d["mapping"].(map[string]any); isMapping {
		mapping = make(map[string]string, len(raw))
		for value, target := range raw {
			if ref, isString := target.(string); isString {
				mapping[value] = ref
			}
		}
	}
	return property, mapping, true
}

// OneOf returns the oneOf alternatives.
func (s Schema) OneOf() []Schema { return schemaList(s["oneOf"]) }

// AnyOf returns the anyOf alternatives.
func (s Schema) AnyOf() []Schema { return schemaList(s["anyOf"]) }

// AllOf returns the allOf members.
func (s Schema) AllOf() []Schema { return schemaList(s["allOf"]) }

// Clone returns a deep copy of the schema.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	return AsSchema(DeepCopyJSON(map[string]any(s)))
}

// DeepCopyJSON deep-copies a decoded JSON value. Maps and slices are copied;
// scalars are returned as-is.
func DeepCopyJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = DeepCopyJSON(val)
		}
		return out
	case Schema:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = DeepCopyJSON(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = DeepCopyJSON(val)
		}
		return out
	default:
		return v
	}
}

// NumberValue converts a decoded JSON number to float64.
func NumberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

func schemaList(v any) []Schema {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Schema, 0, len(list))
	for _, item := range list {
		if s := AsSchema(item); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
