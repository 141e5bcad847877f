package httpvalidator

import (
	"github.com/erraggy/oasgate/internal/maputil"
	"github.com/erraggy/oasgate/parser"
)

// SecurityQueryParams returns the query parameter names implicitly allowed
// for op because one of its effective security schemes is an apiKey sent in
// the query string.
//
// The effective requirements are the operation's own when it declares a
// non-empty list, otherwise the document's. Empty requirement objects are
// skipped. Names are returned de-duplicated in first-seen order.
func SecurityQueryParams(doc *parser.Document, op *parser.Operation) []string {
	if doc == nil {
		return nil
	}

	var requirements []parser.SecurityRequirement
	switch {
	case op != nil && op.Security != nil && len(*op.Security) > 0:
		requirements = *op.Security
	case len(doc.Security) > 0:
		requirements = doc.Security
	default:
		return nil
	}

	var names []string
	seen := make(map[string]bool)
	for _, req := range requirements {
		if len(req) == 0 {
			continue
		}
		for _, schemeName := range maputil.SortedKeys(req) {
			scheme := doc.SecurityScheme(schemeName)
			if !scheme.IsQueryAPIKey() || seen[scheme.Name] {
				continue
			}
			seen[scheme.Name] = true
			names = append(names, scheme.Name)
		}
	}
	return names
}
