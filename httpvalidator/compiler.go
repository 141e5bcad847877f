package httpvalidator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/erraggy/oasgate/parser"
)

// Dialect selects the JSON Schema draft a composed schema is compiled under.
type Dialect int

const (
	// DialectOAS30 compiles under JSON Schema draft 4, the base of the OAS 3.0
	// schema object.
	DialectOAS30 Dialect = iota
	// DialectOAS31 compiles under JSON Schema 2020-12.
	DialectOAS31
)

// String returns the dialect name.
func (d Dialect) String() string {
	if d == DialectOAS31 {
		return "oas3.1"
	}
	return "oas3.0"
}

// RawError is a single validator failure before translation.
type RawError struct {
	// Keyword is the failing schema keyword (e.g. "required", "enum").
	Keyword string
	// InstancePath locates the failing value inside the validated instance.
	InstancePath []string
	// SchemaPath is the JSON pointer fragment of the failing keyword.
	SchemaPath string
	// Message is the human-readable failure text.
	Message string
	// MissingProperty is set for "required" failures.
	MissingProperty string
	// AdditionalProperty is set for "additionalProperties" failures.
	AdditionalProperty string
	// AllowedValues is set for "enum" failures.
	AllowedValues []any
}

// CompiledSchema validates instances against one compiled schema.
// Implementations must be safe for concurrent use.
type CompiledSchema interface {
	// Validate returns nil when instance is valid. Errors are returned in a
	// deterministic order.
	Validate(instance any) []RawError
}

// SchemaCompiler compiles composed schemas.
type SchemaCompiler interface {
	Compile(schema parser.Schema, dialect Dialect) (CompiledSchema, error)
}

// schemaResource is the location composed schemas are registered under. Each
// compilation uses its own compiler, so the name never collides.
const schemaResource = "oasgate-schema.json"

// JSONSchemaCompiler compiles schemas with santhosh-tekuri/jsonschema.
type JSONSchemaCompiler struct {
	printer *message.Printer
}

var _ SchemaCompiler = (*JSONSchemaCompiler)(nil)

// NewJSONSchemaCompiler returns the default SchemaCompiler. Library messages
// are rendered in English.
func NewJSONSchemaCompiler() *JSONSchemaCompiler {
	return &JSONSchemaCompiler{printer: message.NewPrinter(language.English)}
}

// Compile implements SchemaCompiler.
func (c *JSONSchemaCompiler) Compile(schema parser.Schema, dialect Dialect) (CompiledSchema, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if dialect == DialectOAS31 {
		compiler.DefaultDraft(jsonschema.Draft2020)
	} else {
		compiler.DefaultDraft(jsonschema.Draft4)
	}
	if err := compiler.AddResource(schemaResource, doc); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, err
	}
	return &jsonSchema{schema: compiled, printer: c.printer}, nil
}

type jsonSchema struct {
	schema  *jsonschema.Schema
	printer *message.Printer
}

func (s *jsonSchema) Validate(instance any) []RawError {
	err := s.schema.Validate(instance)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []RawError{{Keyword: "schema", Message: err.Error()}}
	}

	var out []RawError
	s.collect(verr, &out)
	// The library walks object properties in map order; sort for stable output.
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := strings.Join(out[i].InstancePath, "/"), strings.Join(out[j].InstancePath, "/")
		if pi != pj {
			return pi < pj
		}
		if out[i].Keyword != out[j].Keyword {
			return out[i].Keyword < out[j].Keyword
		}
		if out[i].MissingProperty != out[j].MissingProperty {
			return out[i].MissingProperty < out[j].MissingProperty
		}
		if out[i].AdditionalProperty != out[j].AdditionalProperty {
			return out[i].AdditionalProperty < out[j].AdditionalProperty
		}
		return out[i].Message < out[j].Message
	})
	return out
}

// collect flattens the error tree into its leaves.
func (s *jsonSchema) collect(verr *jsonschema.ValidationError, out *[]RawError) {
	if len(verr.Causes) > 0 {
		for _, cause := range verr.Causes {
			s.collect(cause, out)
		}
		return
	}

	base := RawError{
		Keyword:      keywordOf(verr.ErrorKind),
		InstancePath: verr.InstanceLocation,
		SchemaPath:   schemaPointer(verr),
		Message:      verr.ErrorKind.LocalizedString(s.printer),
	}

	switch k := verr.ErrorKind.(type) {
	case *kind.Required:
		for _, prop := range k.Missing {
			e := base
			e.MissingProperty = prop
			e.Message = fmt.Sprintf("must have required property '%s'", prop)
			*out = append(*out, e)
		}
		return
	case *kind.AdditionalProperties:
		for _, prop := range k.Properties {
			e := base
			e.AdditionalProperty = prop
			e.Message = "must NOT have additional properties"
			*out = append(*out, e)
		}
		return
	case *kind.Enum:
		base.Message = "must be equal to one of the allowed values"
		base.AllowedValues = k.Want
	case *kind.Type:
		base.Message = "must be " + strings.Join(k.Want, ",")
	}
	*out = append(*out, base)
}

func keywordOf(k jsonschema.ErrorKind) string {
	switch k.(type) {
	case *kind.Not:
		return "not"
	case *kind.FalseSchema:
		return "false schema"
	case *kind.RefCycle:
		return "$ref"
	}
	if path := k.KeywordPath(); len(path) > 0 {
		return path[0]
	}
	return "schema"
}

// schemaPointer returns "#/json/pointer/keyword" for the failing keyword.
func schemaPointer(verr *jsonschema.ValidationError) string {
	fragment := "#"
	if i := strings.IndexByte(verr.SchemaURL, '#'); i >= 0 {
		fragment = verr.SchemaURL[i:]
	}
	for _, kw := range verr.ErrorKind.KeywordPath() {
		fragment += "/" + kw
	}
	return fragment
}
