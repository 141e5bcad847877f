// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes the request validator as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasgate"
)

const serverInstructions = `oasgate MCP server: checks HTTP requests against OpenAPI 3.x documents.

Use list_operations to discover the operations of a document, then validate_request to check a request (method, path with query string, headers, cookies, body) against it. Failures come back with a kind, an HTTP status and one entry per problem with a dotted path such as .query.limit or .body.name.

Configuration: all defaults are configurable via OASGATE_* environment variables set in your MCP client config.

Key settings:
- OASGATE_CACHE_ENABLED (default: true): cache loaded documents and their compiled validators
- OASGATE_CACHE_FILE_TTL (default: 15m), OASGATE_CACHE_URL_TTL (default: 5m)
- OASGATE_LIST_LIMIT (default: 100): default result limit for list_operations
- OASGATE_MAX_BODY_SIZE (default: 1MiB): largest request body accepted by validate_request
- OASGATE_ALLOW_UNKNOWN_QUERY (default: false): accept undeclared query parameters
- OASGATE_ALLOWED_QUERY_PARAMETERS: comma-separated query names always accepted

Caching: documents are cached per session. File entries use path+mtime as key (auto-invalidated on change). A background sweeper removes expired entries.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		specCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasgate", Version: oasgate.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_request",
		Description: "Validate an HTTP request against an OpenAPI 3.x document. Provide the method, the path with its query string, and optional headers, cookies, body and content_type. Returns valid=true when the request passes or matches no operation (matched=false). Failures report kind, status, message and one error per problem with a dotted path (.query.limit, .body.name) and an error code (<keyword>.openapi.validation). Coerced path and query parameters are returned on success.",
	}, handleValidateRequest)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_operations",
		Description: "List the operations of an OpenAPI 3.x document: method, path template, operationId, parameters by location, whether a body is accepted and with which content types. Filter by method or path prefix. Use offset/limit to paginate. Default limit is configurable via OASGATE_LIST_LIMIT (default 100).",
	}, handleListOperations)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.ListLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.ListLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
