// Package kinopenapi connects the validator to github.com/getkin/kin-openapi.
//
// Load and LoadFile read a document with the kin-openapi loader, optionally
// validate its structure, and convert it into a parser.Document. RouteResolver
// matches requests with kin-openapi's gorilla/mux router, which honours the
// document's servers (base paths, hosts and server variables):
//
//	result, err := kinopenapi.LoadFile(ctx, "openapi.yaml", kinopenapi.WithValidation(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resolver, err := kinopenapi.NewRouteResolver(result.Spec)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := httpvalidator.New(result.Document, httpvalidator.WithRouteResolver(resolver))
package kinopenapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/erraggy/oasgate/httpvalidator"
	"github.com/erraggy/oasgate/oaserrors"
	"github.com/erraggy/oasgate/parser"
)

// Result holds both views of a loaded document.
type Result struct {
	// Spec is the kin-openapi document.
	Spec *openapi3.T
	// Document is the same document decoded for the validator.
	Document *parser.Document
}

// Option is a functional option for Load and LoadFile.
type Option func(*config) error

type config struct {
	validate bool
	logger   parser.Logger
}

// WithValidation runs kin-openapi's structural validation after loading.
// Default is false.
func WithValidation(validate bool) Option {
	return func(c *config) error {
		c.validate = validate
		return nil
	}
}

// WithLogger sets the logger passed to the document decoder.
func WithLogger(l parser.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return fmt.Errorf("kinopenapi: logger cannot be nil")
		}
		c.logger = l
		return nil
	}
}

// Load reads an OpenAPI 3 document from data.
func Load(ctx context.Context, data []byte, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, &oaserrors.ParseError{Message: "kin-openapi loader failed", Cause: err}
	}
	return finish(ctx, spec, "", cfg)
}

// LoadFile reads an OpenAPI 3 document from path.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, &oaserrors.ParseError{Path: path, Message: "kin-openapi loader failed", Cause: err}
	}
	return finish(ctx, spec, path, cfg)
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{logger: parser.NopLogger{}}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func finish(ctx context.Context, spec *openapi3.T, path string, cfg *config) (*Result, error) {
	if cfg.validate {
		if err := spec.Validate(ctx); err != nil {
			return nil, &oaserrors.ParseError{Path: path, Message: "invalid OpenAPI document", Cause: err}
		}
	}
	doc, err := Convert(spec, parser.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}
	return &Result{Spec: spec, Document: doc}, nil
}

// Convert re-encodes a kin-openapi document as JSON and decodes it into a
// parser.Document. References are kept, so components stay shared.
func Convert(spec *openapi3.T, opts ...parser.Option) (*parser.Document, error) {
	if spec == nil {
		return nil, fmt.Errorf("kinopenapi: spec cannot be nil")
	}
	data, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("kinopenapi: encoding document: %w", err)
	}
	result, err := parser.ParseWithOptions(append([]parser.Option{
		parser.WithBytes(data),
		parser.WithSourceName("kin-openapi"),
	}, opts...)...)
	if err != nil {
		return nil, err
	}
	return result.Document, nil
}

// RouteResolver implements httpvalidator.RouteResolver with kin-openapi's
// gorilla/mux router. Path templates use gorilla/mux syntax, so the
// "{name*}" wildcard form of httpvalidator.Router is not recognised.
type RouteResolver struct {
	router routers.Router
}

var _ httpvalidator.RouteResolver = (*RouteResolver)(nil)

// NewRouteResolver builds a router for spec.
func NewRouteResolver(spec *openapi3.T) (*RouteResolver, error) {
	if spec == nil {
		return nil, fmt.Errorf("kinopenapi: spec cannot be nil")
	}
	router, err := gorillamux.NewRouter(spec)
	if err != nil {
		return nil, fmt.Errorf("kinopenapi: building router: %w", err)
	}
	return &RouteResolver{router: router}, nil
}

// ResolveRoute implements httpvalidator.RouteResolver. Requests whose path
// matches but whose method is not declared resolve to no route.
func (rr *RouteResolver) ResolveRoute(r *http.Request) (*httpvalidator.Route, bool) {
	if r == nil || r.URL == nil {
		return nil, false
	}
	route, vars, err := rr.router.FindRoute(r)
	if err != nil {
		return nil, false
	}

	// vars also carries server variables; keep the template's own. The router
	// matches the encoded path.
	params := make(map[string]string, len(vars))
	for name, value := range vars {
		if !strings.Contains(route.Path, "{"+name+"}") && !strings.Contains(route.Path, "{"+name+":") {
			continue
		}
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		params[name] = value
	}
	return &httpvalidator.Route{Pattern: route.Path, PathParams: params}, true
}
