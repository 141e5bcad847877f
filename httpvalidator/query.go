package httpvalidator

import (
	"fmt"
	"strings"

	"github.com/erraggy/oasgate/internal/maputil"
	"github.com/erraggy/oasgate/oaserrors"
	"github.com/erraggy/oasgate/parser"
)

// checkQueryParameters applies the unknown/empty query parameter policy and
// returns every violation, unknown keys first. It returns nil when the query
// is acceptable.
//
// A declared object parameter that accepts additional properties can absorb
// arbitrary keys, so its presence disables the check. Property schemas are
// resolved against doc before they are inspected.
func checkQueryParameters(doc *parser.Document, query map[string]any, q LocationSchema, allow []string) []oaserrors.ErrorEntry {
	declared := q.Schema.Properties()
	for _, prop := range declared {
		if prop = doc.ResolveSchema(prop); prop.Type() == parser.TypeObject && prop.AllowsAdditionalProperties() {
			return nil
		}
	}

	known := make(map[string]bool, len(declared)+len(allow))
	for name := range declared {
		known[name] = true
	}
	for _, name := range allow {
		known[name] = true
	}

	keys := maputil.SortedKeys(query)
	var unknown, empty []oaserrors.ErrorEntry
	for _, key := range keys {
		if !known[key] {
			unknown = append(unknown, oaserrors.ErrorEntry{
				Path:      "." + envQuery + "." + key,
				Message:   fmt.Sprintf("Unknown query parameter '%s'", key),
				ErrorCode: "unknownQueryParameter" + errorCodeSuffix,
			})
			continue
		}
		if isEmptyQueryValue(query[key]) && !q.AllowEmpty[key] {
			empty = append(empty, oaserrors.ErrorEntry{
				Path:      "." + envQuery + "." + key,
				Message:   fmt.Sprintf("Empty value found for query parameter '%s'", key),
				ErrorCode: "allowEmptyValue" + errorCodeSuffix,
			})
		}
	}
	return append(unknown, empty...)
}

// queryPolicyError wraps policy violations into the request failure. The
// kind and path are taken from the first violation.
func queryPolicyError(entries []oaserrors.ErrorEntry) *oaserrors.RequestError {
	kind := oaserrors.KindEmptyQueryParameter
	if strings.HasPrefix(entries[0].ErrorCode, "unknownQueryParameter") {
		kind = oaserrors.KindUnknownQueryParameter
	}
	messages := make([]string, len(entries))
	for i, e := range entries {
		messages[i] = e.Message
	}
	return oaserrors.NewRequestError(kind, entries[0].Path, strings.Join(messages, ", "), entries...)
}

// isEmptyQueryValue reports whether a query value carries no data.
func isEmptyQueryValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		for _, s := range t {
			if s != "" {
				return false
			}
		}
		return true
	case []any:
		for _, item := range t {
			if s, ok := item.(string); !ok || s != "" {
				return false
			}
		}
		return true
	default:
		return false
	}
}
