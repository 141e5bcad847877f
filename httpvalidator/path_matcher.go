package httpvalidator

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/erraggy/oasgate/parser"
)

// RouteResolver maps an HTTP request to the path template it targets.
// It returns false when no template matches, in which case the request is
// not validated.
type RouteResolver interface {
	ResolveRoute(r *http.Request) (*Route, bool)
}

// PathMatcher handles matching request paths against OpenAPI path templates.
// It converts path templates like "/pets/{petId}" into regex patterns and
// extracts parameter values from actual request paths.
//
// A parameter whose name ends in "*" ("/files/{path*}") captures the rest of
// the path including slashes, and may capture nothing.
type PathMatcher struct {
	// template is the original OAS path template (e.g., "/pets/{petId}")
	template string

	// regex is the compiled pattern for matching
	regex *regexp.Regexp

	// paramNames are the parameter names in order of appearance, without the
	// wildcard marker
	paramNames []string

	// wildcard is set when any parameter is a wildcard
	wildcard bool

	// specificity is used for sorting matchers (higher = more specific)
	specificity int
}

// NewPathMatcher creates a PathMatcher from an OpenAPI path template.
// The template should be in the format "/path/{param}/more/{param2}".
//
// Returns an error if the template is malformed (e.g., unclosed braces).
func NewPathMatcher(template string) (*PathMatcher, error) {
	if template == "" {
		return nil, fmt.Errorf("path template cannot be empty")
	}

	var regexBuf strings.Builder
	regexBuf.WriteString("^")

	paramNames := []string{}
	specificity := 0
	wildcard := false

	i := 0
	for i < len(template) {
		if template[i] != '{' {
			c := template[i]
			if strings.ContainsRune(`\.+*?()|[]{}^$`, rune(c)) {
				regexBuf.WriteByte('\\')
			}
			regexBuf.WriteByte(c)
			i++

			// Literal characters make a template more specific
			if c != '/' {
				specificity++
			}
			continue
		}

		end := strings.Index(template[i:], "}")
		if end == -1 {
			return nil, fmt.Errorf("unclosed path parameter at position %d in template %q", i, template)
		}

		paramName := template[i+1 : i+end]
		isWildcard := strings.HasSuffix(paramName, "*")
		paramName = strings.TrimSuffix(paramName, "*")
		if paramName == "" {
			return nil, fmt.Errorf("empty path parameter at position %d in template %q", i, template)
		}

		for _, existing := range paramNames {
			if existing == paramName {
				return nil, fmt.Errorf("duplicate path parameter %q in template %q", paramName, template)
			}
		}
		paramNames = append(paramNames, paramName)

		if isWildcard {
			wildcard = true
			regexBuf.WriteString("(.*)")
			// Wildcards rank below any single-segment parameter
			specificity -= 100
		} else {
			// Parameters are single path segments (RFC 3986)
			regexBuf.WriteString("([^/]+)")
			specificity--
		}
		i += end + 1
	}

	regexBuf.WriteString("$")

	regex, err := regexp.Compile(regexBuf.String())
	if err != nil {
		return nil, fmt.Errorf("failed to compile path pattern for template %q: %w", template, err)
	}

	return &PathMatcher{
		template:    template,
		regex:       regex,
		paramNames:  paramNames,
		wildcard:    wildcard,
		specificity: specificity,
	}, nil
}

// Match checks if the given path matches this template and extracts parameters.
// Parameter values are percent-decoded where possible.
// Returns false and nil if the path does not match.
func (pm *PathMatcher) Match(path string) (bool, map[string]string) {
	matches := pm.regex.FindStringSubmatch(path)
	if matches == nil {
		return false, nil
	}

	// First match is the full string, subsequent matches are capture groups
	if len(matches) != len(pm.paramNames)+1 {
		return false, nil
	}

	params := make(map[string]string, len(pm.paramNames))
	for i, name := range pm.paramNames {
		value := matches[i+1]
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		params[name] = value
	}

	return true, params
}

// Template returns the original path template.
func (pm *PathMatcher) Template() string {
	return pm.template
}

// ParamNames returns the list of parameter names in order of appearance.
func (pm *PathMatcher) ParamNames() []string {
	return pm.paramNames
}

// Wildcard reports whether the template has a wildcard parameter.
func (pm *PathMatcher) Wildcard() bool {
	return pm.wildcard
}

// PathMatcherSet manages a collection of path matchers and finds the best match
// for a given request path according to OpenAPI specification precedence rules.
type PathMatcherSet struct {
	// matchers is the list of matchers sorted by specificity
	matchers []*PathMatcher
}

// NewPathMatcherSet creates a new PathMatcherSet from a list of path templates.
// The matchers are sorted by specificity so that more specific paths match first.
func NewPathMatcherSet(templates []string) (*PathMatcherSet, error) {
	matchers := make([]*PathMatcher, 0, len(templates))

	for _, template := range templates {
		matcher, err := NewPathMatcher(template)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, matcher)
	}

	// Highest specificity first, then longest template, then alphabetical
	sort.Slice(matchers, func(i, j int) bool {
		if matchers[i].specificity != matchers[j].specificity {
			return matchers[i].specificity > matchers[j].specificity
		}
		if len(matchers[i].template) != len(matchers[j].template) {
			return len(matchers[i].template) > len(matchers[j].template)
		}
		return matchers[i].template < matchers[j].template
	})

	return &PathMatcherSet{matchers: matchers}, nil
}

// Match finds the best matching matcher for the given request path along with
// the extracted parameters.
func (pms *PathMatcherSet) Match(path string) (*PathMatcher, map[string]string, bool) {
	for _, matcher := range pms.matchers {
		if matched, params := matcher.Match(path); matched {
			return matcher, params, true
		}
	}
	return nil, nil, false
}

// Templates returns all path templates in the set, in match order.
func (pms *PathMatcherSet) Templates() []string {
	templates := make([]string, len(pms.matchers))
	for i, m := range pms.matchers {
		templates[i] = m.template
	}
	return templates
}

// Router is the default RouteResolver. It matches request paths against the
// path templates of a document.
type Router struct {
	matchers *PathMatcherSet
}

var _ RouteResolver = (*Router)(nil)

// NewRouter compiles the path templates of doc.
func NewRouter(doc *parser.Document) (*Router, error) {
	if doc == nil {
		return nil, fmt.Errorf("httpvalidator: document cannot be nil")
	}
	set, err := NewPathMatcherSet(doc.PathTemplates())
	if err != nil {
		return nil, fmt.Errorf("httpvalidator: %w", err)
	}
	return &Router{matchers: set}, nil
}

// ResolveRoute implements RouteResolver.
func (rt *Router) ResolveRoute(r *http.Request) (*Route, bool) {
	if r == nil || r.URL == nil {
		return nil, false
	}
	return rt.Resolve(r.URL.Path)
}

// Resolve matches a bare URL path.
func (rt *Router) Resolve(path string) (*Route, bool) {
	matcher, params, ok := rt.matchers.Match(path)
	if !ok {
		return nil, false
	}
	return &Route{
		Pattern:    matcher.Template(),
		PathParams: params,
		Wildcard:   matcher.Wildcard(),
	}, true
}
