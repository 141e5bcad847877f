package parser

import (
	"sort"
	"strings"
)

// Document represents an OpenAPI Specification 3.x document.
// Supports OAS 3.0.x and 3.1.x.
//
// A Document is immutable once returned by the parser: the validator shares it
// across goroutines and embeds its raw tree into compiled schemas.
// References:
// - OAS 3.0.0: https://spec.openapis.org/oas/v3.0.0.html
// - OAS 3.1.0: https://spec.openapis.org/oas/v3.1.0.html
type Document struct {
	OpenAPI    string                `json:"openapi"` // Required: "3.0.x" or "3.1.x"
	Info       *Info                 `json:"info,omitempty"`
	Paths      map[string]*PathItem  `json:"paths,omitempty"`
	Components *Components           `json:"components,omitempty"`
	Security   []SecurityRequirement `json:"security,omitempty"`

	// raw is the normalized JSON tree the typed fields were decoded from.
	raw map[string]any
}

// Info provides metadata about the API.
type Info struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// Components holds reusable objects referenced from the rest of the document.
type Components struct {
	Schemas         map[string]Schema          `json:"schemas,omitempty"`
	Parameters      map[string]*Parameter      `json:"parameters,omitempty"`
	RequestBodies   map[string]*RequestBody    `json:"requestBodies,omitempty"`
	SecuritySchemes map[string]*SecurityScheme `json:"securitySchemes,omitempty"`
}

// Raw returns the normalized JSON tree of the document.
// Callers must treat the returned map as read-only.
func (d *Document) Raw() map[string]any {
	if d == nil {
		return nil
	}
	return d.raw
}

// IsOAS31 reports whether the document declares an OAS 3.1.x version, whose
// schemas follow JSON Schema 2020-12 rather than the OAS 3.0 dialect.
func (d *Document) IsOAS31() bool {
	return d != nil && strings.HasPrefix(d.OpenAPI, "3.1")
}

// Operation returns the operation declared for method on the given route
// template, or nil when none exists.
func (d *Document) Operation(route, method string) *Operation {
	if d == nil {
		return nil
	}
	item, ok := d.Paths[route]
	if !ok || item == nil {
		return nil
	}
	return item.Operation(method)
}

// PathTemplates returns the declared route templates in sorted order.
func (d *Document) PathTemplates() []string {
	if d == nil {
		return nil
	}
	templates := make([]string, 0, len(d.Paths))
	for template := range d.Paths {
		templates = append(templates, template)
	}
	sort.Strings(templates)
	return templates
}

// SecurityScheme returns the named security scheme from components.
func (d *Document) SecurityScheme(name string) *SecurityScheme {
	if d == nil || d.Components == nil {
		return nil
	}
	return d.Components.SecuritySchemes[name]
}

// Parameters returns the effective parameters for op on route: the path-level
// parameters overridden by operation-level parameters with the same name and
// location. Order is path-level first, then operation-only parameters.
func (d *Document) Parameters(route string, op *Operation) []*Parameter {
	var pathParams []*Parameter
	if d != nil {
		if item := d.Paths[route]; item != nil {
			pathParams = item.Parameters
		}
	}
	if op == nil {
		return pathParams
	}
	if len(pathParams) == 0 {
		return op.Parameters
	}

	type paramKey struct{ name, in string }
	overrides := make(map[paramKey]*Parameter, len(op.Parameters))
	for _, p := range op.Parameters {
		if p != nil {
			overrides[paramKey{p.Name, p.In}] = p
		}
	}

	merged := make([]*Parameter, 0, len(pathParams)+len(op.Parameters))
	used := make(map[paramKey]bool, len(overrides))
	for _, p := range pathParams {
		if p == nil {
			continue
		}
		key := paramKey{p.Name, p.In}
		if override, ok := overrides[key]; ok {
			merged = append(merged, override)
			used[key] = true
			continue
		}
		merged = append(merged, p)
	}
	for _, p := range op.Parameters {
		if p == nil || used[paramKey{p.Name, p.In}] {
			continue
		}
		merged = append(merged, p)
	}
	return merged
}
