// Package httpvalidator validates HTTP requests against OpenAPI 3.x documents.
//
// It is meant for API gateways, middleware and tests: every request that
// matches an operation is checked for its path, query, header and cookie
// parameters and its body before it reaches the handler.
//
// # Features
//
//   - Parameter deserialization: all OAS serialization styles (simple, form,
//     label, matrix, spaceDelimited, pipeDelimited, deepObject) with type
//     coercion and schema defaults
//   - Query policy: unknown and empty query parameters are rejected, except
//     for apiKey names of the operation's security schemes, an allowlist,
//     and operations marked with x-allow-unknown-query-parameters
//   - Schema validation: JSON Schema draft 4 for OAS 3.0 (nullable rewritten
//     as a null type) and 2020-12 for OAS 3.1
//   - Polymorphic bodies: a oneOf/anyOf body with a discriminator is
//     validated only against the selected option
//   - Compiled validators are cached per method, path template and content
//     type, and shared by concurrent requests
//
// # Basic Usage
//
//	parsed, _ := parser.ParseWithOptions(parser.WithFilePath("openapi.yaml"))
//	v, err := httpvalidator.New(parsed.Document)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	req, err := v.FromHTTP(r)
//	if err != nil {
//	    // unreadable or oversized body
//	}
//	if err := v.ValidateRequest(req); err != nil {
//	    if reqErr, ok := httpvalidator.AsRequestError(err); ok {
//	        for _, e := range reqErr.Errors {
//	            log.Printf("%s: %s", e.Path, e.Message)
//	        }
//	    }
//	}
//
//	// Parameters are coerced in place
//	petID := req.Params["petId"] // int64
//
// # Middleware Pattern
//
// Middleware wraps a handler and answers failing requests with a JSON body
// of the form {"status", "path", "message", "errors"}:
//
//	mux.Handle("/", v.Middleware(api))
//
// Inside the handler, RequestFromContext returns the validated Request.
//
// # Error Reporting
//
// Failures are *oaserrors.RequestError values tagged with a kind:
//
//   - KindNotFound (404): a wildcard template ("/files/{path*}") matched but
//     captured nothing
//   - KindUnknownQueryParameter, KindEmptyQueryParameter (400): the query
//     policy rejected the request
//   - KindDiscriminatorMismatch (400): the body discriminator value is not
//     one of the declared options
//   - KindSchemaValidation (400): one or more schema failures, each reported
//     as an ErrorEntry with a dotted path such as ".query.limit" or
//     ".body.items[0].id" and an error code "<keyword>.openapi.validation"
//
// Any other error returned by ValidateRequest means the validator for the
// operation could not be built, usually because the document contains a
// schema the compiler rejects.
//
// # Extension Points
//
// SchemaExtractor, ParameterMutator, SchemaCompiler and RouteResolver can be
// replaced through options. The kinopenapi package provides a RouteResolver
// backed by kin-openapi, and the metrics package a Prometheus Metrics hook.
package httpvalidator
