// Package oaserrors provides structured error types for the oasgate library.
//
// Import path: github.com/erraggy/oasgate/oaserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As].
// There are two families of errors:
//
// Construction errors, returned while loading a contract or building a validator:
//
//   - [ParseError]: YAML/JSON decoding failures and structural issues
//   - [ReferenceError]: local $ref resolution failures, circular references
//   - [ConfigError]: invalid options or schemas that fail to compile
//
// Request errors, returned by the request validation pipeline. A single tagged
// type, [RequestError], carries one of five kinds:
//
//   - [KindNotFound] (404): a wildcard route matched but captured nothing
//   - [KindUnknownQueryParameter] (400)
//   - [KindEmptyQueryParameter] (400)
//   - [KindDiscriminatorMismatch] (400)
//   - [KindSchemaValidation] (400)
//
// # Sentinel Errors
//
//   - [ErrParse], [ErrReference], [ErrCircularReference], [ErrConfig]
//   - [ErrNotFound]: matches a [RequestError] with status 404
//   - [ErrBadRequest]: matches any [RequestError] with status 400
//   - [ErrUnknownQueryParameter], [ErrEmptyQueryParameter],
//     [ErrDiscriminatorMismatch], [ErrSchemaValidation]: match one kind each
//
// # Usage Examples
//
//	err := v.ValidateRequest(req)
//	if errors.Is(err, oaserrors.ErrBadRequest) {
//	    // reply 400
//	}
//
//	var reqErr *oaserrors.RequestError
//	if errors.As(err, &reqErr) {
//	    for _, e := range reqErr.Errors {
//	        fmt.Printf("%s: %s (%s)\n", e.Path, e.Message, e.ErrorCode)
//	    }
//	}
package oaserrors
