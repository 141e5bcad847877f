package parser

import "strings"

// HTTP methods supported by OAS 3.x path items.
const (
	MethodGet     = "GET"
	MethodPut     = "PUT"
	MethodPost    = "POST"
	MethodDelete  = "DELETE"
	MethodOptions = "OPTIONS"
	MethodHead    = "HEAD"
	MethodPatch   = "PATCH"
	MethodTrace   = "TRACE"
)

// ExtAllowUnknownQueryParameters is the operation extension that permits
// undeclared query parameters for that operation only.
const ExtAllowUnknownQueryParameters = "x-allow-unknown-query-parameters"

// PathItem describes the operations available on a single path.
type PathItem struct {
	Summary     string       `json:"summary,omitempty"`
	Description string       `json:"description,omitempty"`
	Get         *Operation   `json:"get,omitempty"`
	Put         *Operation   `json:"put,omitempty"`
	Post        *Operation   `json:"post,omitempty"`
	Delete      *Operation   `json:"delete,omitempty"`
	Options     *Operation   `json:"options,omitempty"`
	Head        *Operation   `json:"head,omitempty"`
	Patch       *Operation   `json:"patch,omitempty"`
	Trace       *Operation   `json:"trace,omitempty"`
	Parameters  []*Parameter `json:"parameters,omitempty"`
}

// Operation returns the operation for the given HTTP method (case-insensitive).
func (p *PathItem) Operation(method string) *Operation {
	if p == nil {
		return nil
	}
	switch strings.ToUpper(method) {
	case MethodGet:
		return p.Get
	case MethodPut:
		return p.Put
	case MethodPost:
		return p.Post
	case MethodDelete:
		return p.Delete
	case MethodOptions:
		return p.Options
	case MethodHead:
		return p.Head
	case MethodPatch:
		return p.Patch
	case MethodTrace:
		return p.Trace
	default:
		return nil
	}
}

// Operations returns the declared operations keyed by upper-case method.
func (p *PathItem) Operations() map[string]*Operation {
	ops := make(map[string]*Operation, 8)
	if p == nil {
		return ops
	}
	for method, op := range map[string]*Operation{
		MethodGet:     p.Get,
		MethodPut:     p.Put,
		MethodPost:    p.Post,
		MethodDelete:  p.Delete,
		MethodOptions: p.Options,
		MethodHead:    p.Head,
		MethodPatch:   p.Patch,
		MethodTrace:   p.Trace,
	} {
		if op != nil {
			ops[method] = op
		}
	}
	return ops
}

// Operation describes a single API operation on a path.
type Operation struct {
	OperationID string       `json:"operationId,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Parameters  []*Parameter `json:"parameters,omitempty"`
	RequestBody *RequestBody `json:"requestBody,omitempty"`

	// Security is nil when the operation does not declare security, and a
	// pointer to an empty slice when it declares `security: []`.
	Security *[]SecurityRequirement `json:"security,omitempty"`

	// Extensions holds the operation's "x-" fields.
	Extensions map[string]any `json:"-"`
}

// AllowUnknownQueryParameters reports the operation's
// x-allow-unknown-query-parameters value and whether it was declared.
func (o *Operation) AllowUnknownQueryParameters() (allow, declared bool) {
	if o == nil {
		return false, false
	}
	v, ok := o.Extensions[ExtAllowUnknownQueryParameters]
	if !ok {
		return false, false
	}
	b, isBool := v.(bool)
	return isBool && b, true
}
