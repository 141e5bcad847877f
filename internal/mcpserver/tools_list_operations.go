package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasgate/internal/maputil"
)

type listOperationsInput struct {
	Spec   specInput `json:"spec"             jsonschema:"The OAS document to list"`
	Method string    `json:"method,omitempty" jsonschema:"Filter by HTTP method (get\\, post\\, put\\, delete\\, patch\\, etc.)"`
	Path   string    `json:"path,omitempty"   jsonschema:"Filter by path template prefix, e.g. /pets"`
	Limit  int       `json:"limit,omitempty"  jsonschema:"Maximum number of results to return (default 100)"`
	Offset int       `json:"offset,omitempty" jsonschema:"Skip the first N results (for pagination)"`
}

type operationSummary struct {
	Method            string              `json:"method"`
	Path              string              `json:"path"`
	OperationID       string              `json:"operation_id,omitempty"`
	Summary           string              `json:"summary,omitempty"`
	Parameters        map[string][]string `json:"parameters,omitempty"`
	BodyRequired      bool                `json:"body_required,omitempty"`
	ContentTypes      []string            `json:"content_types,omitempty"`
	AllowUnknownQuery bool                `json:"allow_unknown_query,omitempty"`
}

type listOperationsOutput struct {
	Total      int                `json:"total"`
	Matched    int                `json:"matched"`
	Returned   int                `json:"returned"`
	Operations []operationSummary `json:"operations,omitempty"`
}

func handleListOperations(ctx context.Context, _ *mcp.CallToolRequest, input listOperationsInput) (*mcp.CallToolResult, listOperationsOutput, error) {
	spec, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), listOperationsOutput{}, nil
	}
	doc := spec.result.Document

	var total int
	var matched []operationSummary
	for _, route := range doc.PathTemplates() {
		ops := doc.Paths[route].Operations()
		for _, method := range maputil.SortedKeys(ops) {
			total++
			if input.Method != "" && !strings.EqualFold(input.Method, method) {
				continue
			}
			if input.Path != "" && !strings.HasPrefix(route, input.Path) {
				continue
			}
			op := ops[method]
			summary := operationSummary{
				Method:      method,
				Path:        route,
				OperationID: op.OperationID,
				Summary:     op.Summary,
			}
			for _, p := range doc.Parameters(route, op) {
				if summary.Parameters == nil {
					summary.Parameters = make(map[string][]string)
				}
				summary.Parameters[p.In] = append(summary.Parameters[p.In], p.Name)
			}
			if body := op.RequestBody; body != nil {
				summary.BodyRequired = body.Required
				summary.ContentTypes = maputil.SortedKeys(body.Content)
			}
			summary.AllowUnknownQuery, _ = op.AllowUnknownQueryParameters()
			matched = append(matched, summary)
		}
	}

	returned := paginate(matched, input.Offset, input.Limit)
	return nil, listOperationsOutput{
		Total:      total,
		Matched:    len(matched),
		Returned:   len(returned),
		Operations: returned,
	}, nil
}
