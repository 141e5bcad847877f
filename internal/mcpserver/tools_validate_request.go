package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasgate/internal/maputil"
)

type validateRequestInput struct {
	Spec        specInput         `json:"spec"                   jsonschema:"The OAS document the request is checked against"`
	Method      string            `json:"method,omitempty"       jsonschema:"HTTP method (default GET)"`
	Path        string            `json:"path"                   jsonschema:"Request path with optional query string, e.g. /pets?limit=10"`
	Headers     map[string]string `json:"headers,omitempty"      jsonschema:"Request headers by name"`
	Cookies     map[string]string `json:"cookies,omitempty"      jsonschema:"Request cookies by name"`
	Body        string            `json:"body,omitempty"         jsonschema:"Raw request body"`
	ContentType string            `json:"content_type,omitempty" jsonschema:"Content-Type of the body (default application/json when a body is given)"`
}

type requestIssue struct {
	Path      string `json:"path"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

type validateRequestOutput struct {
	Valid         bool           `json:"valid"`
	Matched       bool           `json:"matched"`
	MatchedPath   string         `json:"matched_path,omitempty"`
	MatchedMethod string         `json:"matched_method,omitempty"`
	Kind          string         `json:"kind,omitempty"`
	Status        int            `json:"status,omitempty"`
	Message       string         `json:"message,omitempty"`
	Errors        []requestIssue `json:"errors,omitempty"`
	PathParams    map[string]any `json:"path_params,omitempty"`
	QueryParams   map[string]any `json:"query_params,omitempty"`
}

func handleValidateRequest(ctx context.Context, _ *mcp.CallToolRequest, input validateRequestInput) (*mcp.CallToolResult, validateRequestOutput, error) {
	spec, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), validateRequestOutput{}, nil
	}

	r, err := input.httpRequest(ctx)
	if err != nil {
		return errResult(err), validateRequestOutput{}, nil
	}
	req, err := spec.validator.FromHTTP(r)
	if err != nil {
		return errResult(err), validateRequestOutput{}, nil
	}
	result, err := spec.validator.Check(req)
	if err != nil {
		return errResult(err), validateRequestOutput{}, nil
	}

	output := validateRequestOutput{
		Valid:         result.Valid,
		Matched:       result.Matched,
		MatchedPath:   result.MatchedPath,
		MatchedMethod: result.MatchedMethod,
		Kind:          result.Kind,
	}
	if result.Error != nil {
		output.Status = result.Error.Status
		output.Message = result.Error.Message
		output.Errors = makeSlice[requestIssue](len(result.Error.Errors))
		for _, e := range result.Error.Errors {
			output.Errors = append(output.Errors, requestIssue{
				Path:      e.Path,
				Message:   e.Message,
				ErrorCode: e.ErrorCode,
			})
		}
	} else if result.Matched {
		output.PathParams = result.PathParams
		output.QueryParams = result.QueryParams
	}
	return nil, output, nil
}

// httpRequest builds the request described by the tool input.
func (in validateRequestInput) httpRequest(ctx context.Context) (*http.Request, error) {
	if in.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if !strings.HasPrefix(in.Path, "/") {
		return nil, fmt.Errorf("path must start with '/': %q", in.Path)
	}
	method := strings.ToUpper(in.Method)
	if method == "" {
		method = http.MethodGet
	}

	r, err := http.NewRequestWithContext(ctx, method, in.Path, strings.NewReader(in.Body))
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	for _, name := range maputil.SortedKeys(in.Headers) {
		r.Header.Set(name, in.Headers[name])
	}
	for _, name := range maputil.SortedKeys(in.Cookies) {
		r.AddCookie(&http.Cookie{Name: name, Value: in.Cookies[name]})
	}
	switch {
	case in.ContentType != "":
		r.Header.Set("Content-Type", in.ContentType)
	case in.Body != "" && r.Header.Get("Content-Type") == "":
		r.Header.Set("Content-Type", "application/json")
	}
	return r, nil
}
