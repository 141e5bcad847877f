package httpvalidator

import (
	"strings"

	"github.com/erraggy/oasgate/oaserrors"
)

// RequestValidationResult is a serializable report of one validation. It is
// what the CLI and the MCP server print.
type RequestValidationResult struct {
	// Valid is true if the request passed, or if no operation matched it.
	Valid bool `json:"valid" yaml:"valid"`

	// Matched is false when no path template or operation matched the
	// request and validation was skipped.
	Matched bool `json:"matched" yaml:"matched"`

	// MatchedPath is the path template that matched the request
	// (e.g., "/pets/{petId}"). Empty if no path matched.
	MatchedPath string `json:"matchedPath,omitempty" yaml:"matchedPath,omitempty"`

	// MatchedMethod is the HTTP method of the request (e.g., "GET", "POST").
	MatchedMethod string `json:"matchedMethod,omitempty" yaml:"matchedMethod,omitempty"`

	// Error is the failure, or nil when Valid.
	Error *oaserrors.RequestError `json:"error,omitempty" yaml:"error,omitempty"`

	// Kind names the failure kind (e.g. "schema_validation").
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// PathParams contains the path parameters after coercion.
	PathParams map[string]any `json:"pathParams,omitempty" yaml:"pathParams,omitempty"`

	// QueryParams contains the query parameters after coercion.
	QueryParams map[string]any `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
}

// Check validates req and reports the outcome as a RequestValidationResult.
// The error return is reserved for failures to build a validator, not
// validation failures, which are captured in the result.
func (v *Validator) Check(req *Request) (*RequestValidationResult, error) {
	matched, err := v.validate(req)
	result := &RequestValidationResult{
		Valid:   true,
		Matched: matched,
	}
	if matched {
		result.MatchedPath = req.Route.Pattern
		result.MatchedMethod = strings.ToUpper(req.Method)
		result.PathParams = req.Params
		result.QueryParams = req.Query
	}
	if err == nil {
		return result, nil
	}
	reqErr, ok := AsRequestError(err)
	if !ok {
		return nil, err
	}
	result.Valid = false
	result.Error = reqErr
	result.Kind = reqErr.Kind.String()
	return result, nil
}
