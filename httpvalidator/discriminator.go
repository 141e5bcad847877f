package httpvalidator

import (
	"fmt"
	"strings"

	"github.com/erraggy/oasgate/internal/maputil"
	"github.com/erraggy/oasgate/oaserrors"
	"github.com/erraggy/oasgate/parser"
)

const componentSchemaPrefix = "#/components/schemas/"

// DiscriminatorSpec dispatches a polymorphic body to the validator of the
// option named by its discriminator property. It is fixed when the validator
// pair is built and never modified afterwards.
type DiscriminatorSpec struct {
	// Property is the body property holding the discriminator value.
	Property string
	// Options are the allowed values in declaration order.
	Options []string
	// Validators maps every option to the validator for its schema.
	Validators map[string]CompiledSchema
}

// Select returns the validator for body's discriminator value. A body that
// is not an object, lacks the property, or names an undeclared option fails
// with KindDiscriminatorMismatch.
func (d *DiscriminatorSpec) Select(body any) (CompiledSchema, *oaserrors.RequestError) {
	if obj, ok := body.(map[string]any); ok {
		if value, isString := obj[d.Property].(string); isString {
			if v, found := d.Validators[value]; found {
				return v, nil
			}
		}
	}
	message := fmt.Sprintf("'%s' must be equal to one of the allowed values: %s.", d.Property, strings.Join(d.Options, ", "))
	return nil, oaserrors.NewRequestError(oaserrors.KindDiscriminatorMismatch, "", message,
		oaserrors.ErrorEntry{
			Path:      "." + envBody + "." + d.Property,
			Message:   message,
			ErrorCode: "discriminator" + errorCodeSuffix,
		},
	)
}

// discriminatorOption is one dispatch target before compilation.
type discriminatorOption struct {
	value  string
	schema parser.Schema
}

// discriminatorOptions reads the discriminator of a body fragment. It
// returns ok=false when the fragment does not dispatch on a discriminator.
//
// Each oneOf (or anyOf) entry that is a $ref contributes the mapping keys
// that point at it, or its component name when no mapping key does.
func discriminatorOptions(doc *parser.Document, fragment parser.Schema) (property string, options []discriminatorOption, ok bool) {
	resolved := doc.ResolveSchema(fragment)
	property, mapping, ok := resolved.Discriminator()
	if !ok {
		return "", nil, false
	}
	entries := resolved.OneOf()
	if len(entries) == 0 {
		entries = resolved.AnyOf()
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		ref := entry.Ref()
		if ref == "" {
			continue
		}
		values := mappedValues(mapping, ref)
		if len(values) == 0 {
			values = []string{parser.RefName(ref)}
		}
		for _, value := range values {
			if seen[value] {
				continue
			}
			seen[value] = true
			options = append(options, discriminatorOption{value: value, schema: entry})
		}
	}
	if len(options) == 0 {
		return "", nil, false
	}
	return property, options, true
}

// mappedValues returns the mapping keys whose target is ref, sorted. Targets
// may be full references or bare component names.
func mappedValues(mapping map[string]string, ref string) []string {
	var values []string
	for _, value := range maputil.SortedKeys(mapping) {
		target := mapping[value]
		if target == ref || componentSchemaPrefix+target == ref {
			values = append(values, value)
		}
	}
	return values
}

// buildDiscriminator compiles one validator per option.
func buildDiscriminator(c *composer, compiler SchemaCompiler, fragment parser.Schema) (*DiscriminatorSpec, error) {
	property, options, ok := discriminatorOptions(c.doc, fragment)
	if !ok {
		return nil, nil
	}
	spec := &DiscriminatorSpec{
		Property:   property,
		Options:    make([]string, 0, len(options)),
		Validators: make(map[string]CompiledSchema, len(options)),
	}
	for _, opt := range options {
		compiled, err := compiler.Compile(c.standalone(opt.schema), c.dialect)
		if err != nil {
			return nil, fmt.Errorf("discriminator option %q: %w", opt.value, err)
		}
		spec.Options = append(spec.Options, opt.value)
		spec.Validators[opt.value] = compiled
	}
	return spec, nil
}
