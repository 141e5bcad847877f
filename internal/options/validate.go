// Package options holds checks shared by the functional options of the
// parser and httpvalidator packages.
package options

import (
	"fmt"
	"strings"
)

// Source is one way of supplying an input, named after the option that
// sets it.
type Source struct {
	Name string
	Set  bool
}

// ExactlyOne returns an error unless exactly one of sources is set.
// Messages are prefixed with "pkg: " and describe the input as what, e.g.
// "input source" or "document".
func ExactlyOne(pkg, what string, sources ...Source) error {
	names := make([]string, 0, len(sources))
	var set []string
	for _, s := range sources {
		names = append(names, s.Name)
		if s.Set {
			set = append(set, s.Name)
		}
	}

	switch len(set) {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%s: must specify %s %s (use %s)", pkg, article(what), what, joinOr(names))
	default:
		return fmt.Errorf("%s: must specify exactly one %s, got %s", pkg, what, strings.Join(set, " and "))
	}
}

func article(noun string) string {
	if noun != "" && strings.ContainsRune("aeiou", rune(noun[0])) {
		return "an"
	}
	return "a"
}

// joinOr renders names as "a", "a or b", or "a, b, or c".
func joinOr(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}
