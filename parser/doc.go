// Package parser decodes OpenAPI 3.x documents into the read-only model used
// by the request validator.
//
// The parser accepts YAML or JSON and produces a Document with typed views of
// paths, operations, parameters, request bodies and security schemes. Schemas
// stay in their decoded JSON form (Schema is a map) so that they can be
// embedded verbatim into composed validation schemas; all numbers are
// json.Number values.
//
// # Quick Start
//
//	result, err := parser.ParseWithOptions(
//		parser.WithFilePath("openapi.yaml"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	doc := result.Document
//	op := doc.Operation("/pets/{id}", "GET")
//
// # References
//
// Parameter and request body references of the form
// "#/components/parameters/X" and "#/components/requestBodies/X" are replaced
// by their targets at parse time. Schema references are kept as-is; use
// Document.ResolveSchema or Document.Lookup to follow them. External
// references (other files or URLs) are not fetched.
//
// # Logging
//
// Pass a Logger with WithLogger to receive debug output. NewSlogAdapter wraps
// a *slog.Logger.
package parser
