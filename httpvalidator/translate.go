package httpvalidator

import (
	"fmt"
	"strings"

	"github.com/erraggy/oasgate/oaserrors"
)

// errorCodeSuffix is appended to the failing keyword to form ErrorEntry.ErrorCode.
const errorCodeSuffix = ".openapi.validation"

// translateErrors converts raw failures into ordered error entries. Input
// order is preserved: callers pass general-schema failures before body
// failures.
func translateErrors(raw []RawError) []oaserrors.ErrorEntry {
	if len(raw) == 0 {
		return nil
	}
	entries := make([]oaserrors.ErrorEntry, 0, len(raw))
	for _, e := range raw {
		message := e.Message
		if e.Keyword == "enum" && len(e.AllowedValues) > 0 {
			message += ": " + joinValues(e.AllowedValues)
		}
		entries = append(entries, oaserrors.ErrorEntry{
			Path:      errorPath(e),
			Message:   message,
			ErrorCode: e.Keyword + errorCodeSuffix,
		})
	}
	return entries
}

// schemaValidationError wraps translated entries into the request failure.
func schemaValidationError(path string, entries []oaserrors.ErrorEntry) *oaserrors.RequestError {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = "request" + e.Path + " " + e.Message
	}
	return oaserrors.NewRequestError(oaserrors.KindSchemaValidation, path, strings.Join(parts, ", "), entries...)
}

// errorPath picks the reported path: a missing or additional property is
// appended to the data path, otherwise the data path itself, falling back to
// the schema path for failures at the instance root.
func errorPath(e RawError) string {
	dataPath := dotPath(e.InstancePath)
	switch {
	case e.MissingProperty != "":
		return dataPath + "." + e.MissingProperty
	case e.AdditionalProperty != "":
		return dataPath + "." + e.AdditionalProperty
	case dataPath != "":
		return dataPath
	default:
		return e.SchemaPath
	}
}

// dotPath renders an instance location as ".body.items[0].name".
func dotPath(tokens []string) string {
	var sb strings.Builder
	for _, tok := range tokens {
		if isIndex(tok) {
			sb.WriteString("[" + tok + "]")
			continue
		}
		sb.WriteString("." + tok)
	}
	return sb.String()
}

func isIndex(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			parts[i] = "null"
			continue
		}
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
