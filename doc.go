// Package oasgate validates HTTP requests against OpenAPI 3.x documents.
//
// oasgate composes the parameter and body declarations of each operation into
// JSON Schemas, compiles them once per method, path template and content type,
// and checks incoming requests against them, reporting every failure with a
// stable path and error code.
//
// # Overview
//
// The library consists of these packages:
//
//   - parser: Decode OpenAPI 3.0 and 3.1 documents (YAML or JSON) into a
//     typed view plus the raw JSON tree used for schema composition
//   - httpvalidator: Validate requests, as a library call or net/http middleware
//   - oaserrors: Typed errors shared by all packages
//   - kinopenapi: Load documents and resolve routes with kin-openapi
//   - metrics: Prometheus collectors for the validator's metrics hook
//
// # Quick Start
//
//	parsed, err := parser.ParseWithOptions(parser.WithFilePath("openapi.yaml"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	v, err := httpvalidator.New(parsed.Document)
//	if err != nil {
//		log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", v.Middleware(api))
//
// # Command-Line Tool
//
// The oasgate command checks single requests, runs a validating reverse
// proxy, or serves the validator to MCP clients:
//
//	oasgate check -method GET -url '/pets?limit=abc' openapi.yaml
//	oasgate serve -listen :8080 -upstream http://localhost:9000 openapi.yaml
//	oasgate mcp
//
// See the individual package documentation for details.
package oasgate
