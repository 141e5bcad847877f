package httpvalidator

import (
	"fmt"

	"github.com/erraggy/oasgate/internal/options"
	"github.com/erraggy/oasgate/parser"
)

// Option is a functional option for configuring a Validator.
type Option func(*config) error

// config holds the configuration for a Validator.
type config struct {
	// Spec source for NewWithOptions (exactly one must be set)
	filePath string
	doc      *parser.Document

	// Query parameter policy
	allowUnknownQuery bool
	allowedQuery      []string

	// Collaborators
	extractor SchemaExtractor
	mutator   ParameterMutator
	compiler  SchemaCompiler
	resolver  RouteResolver

	logger  parser.Logger
	metrics Metrics

	// Resource limits
	maxBodySize int64 // 0 = DefaultMaxBodySize
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		extractor: DefaultSchemaExtractor{},
		mutator:   DefaultParameterMutator{},
		logger:    parser.NopLogger{},
		metrics:   NopMetrics{},
	}
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithFilePath sets the path to the OpenAPI document read by NewWithOptions.
func WithFilePath(path string) Option {
	return func(c *config) error {
		if path == "" {
			return fmt.Errorf("httpvalidator: file path cannot be empty")
		}
		c.filePath = path
		return nil
	}
}

// WithDocument uses an already decoded document with NewWithOptions.
func WithDocument(doc *parser.Document) Option {
	return func(c *config) error {
		if doc == nil {
			return fmt.Errorf("httpvalidator: document cannot be nil")
		}
		c.doc = doc
		return nil
	}
}

// WithParsed uses the document of a parse result with NewWithOptions.
func WithParsed(result *parser.ParseResult) Option {
	return func(c *config) error {
		if result == nil || result.Document == nil {
			return fmt.Errorf("httpvalidator: parsed result cannot be nil")
		}
		c.doc = result.Document
		return nil
	}
}

// WithAllowUnknownQueryParameters disables the unknown and empty query
// parameter checks for every operation that does not set
// x-allow-unknown-query-parameters itself. Default is false.
func WithAllowUnknownQueryParameters(allow bool) Option {
	return func(c *config) error {
		c.allowUnknownQuery = allow
		return nil
	}
}

// WithAllowedQueryParameters accepts the named query parameters on every
// operation even though they are not declared.
func WithAllowedQueryParameters(names ...string) Option {
	return func(c *config) error {
		for _, name := range names {
			if name == "" {
				return fmt.Errorf("httpvalidator: allowed query parameter name cannot be empty")
			}
		}
		c.allowedQuery = append(c.allowedQuery, names...)
		return nil
	}
}

// WithSchemaExtractor replaces DefaultSchemaExtractor.
func WithSchemaExtractor(e SchemaExtractor) Option {
	return func(c *config) error {
		if e == nil {
			return fmt.Errorf("httpvalidator: schema extractor cannot be nil")
		}
		c.extractor = e
		return nil
	}
}

// WithParameterMutator replaces DefaultParameterMutator.
func WithParameterMutator(m ParameterMutator) Option {
	return func(c *config) error {
		if m == nil {
			return fmt.Errorf("httpvalidator: parameter mutator cannot be nil")
		}
		c.mutator = m
		return nil
	}
}

// WithSchemaCompiler replaces the jsonschema based compiler.
func WithSchemaCompiler(sc SchemaCompiler) Option {
	return func(c *config) error {
		if sc == nil {
			return fmt.Errorf("httpvalidator: schema compiler cannot be nil")
		}
		c.compiler = sc
		return nil
	}
}

// WithRouteResolver replaces the Router used by Validator.FromHTTP and
// Middleware.
func WithRouteResolver(r RouteResolver) Option {
	return func(c *config) error {
		if r == nil {
			return fmt.Errorf("httpvalidator: route resolver cannot be nil")
		}
		c.resolver = r
		return nil
	}
}

// WithLogger sets the logger. Cache builds and request outcomes are logged
// at debug level. A nil logger is ignored.
func WithLogger(l parser.Logger) Option {
	return func(c *config) error {
		if l != nil {
			c.logger = l
		}
		return nil
	}
}

// WithMetrics sets the metrics hook. A nil hook is ignored.
func WithMetrics(m Metrics) Option {
	return func(c *config) error {
		if m != nil {
			c.metrics = m
		}
		return nil
	}
}

// WithMaxBodySize sets the maximum request body size in bytes read by
// FromHTTP. Default: 10 MiB.
func WithMaxBodySize(n int64) Option {
	return func(c *config) error {
		if n < 0 {
			return fmt.Errorf("httpvalidator: maxBodySize cannot be negative")
		}
		c.maxBodySize = n
		return nil
	}
}

// NewWithOptions creates a Validator whose document comes from WithFilePath,
// WithDocument or WithParsed.
//
// Example:
//
//	v, err := httpvalidator.NewWithOptions(
//	    httpvalidator.WithFilePath("openapi.yaml"),
//	    httpvalidator.WithAllowedQueryParameters("trace"),
//	)
func NewWithOptions(opts ...Option) (*Validator, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	if err := options.ExactlyOne("httpvalidator", "document",
		options.Source{Name: "WithFilePath", Set: cfg.filePath != ""},
		options.Source{Name: "WithDocument", Set: cfg.doc != nil},
	); err != nil {
		return nil, err
	}

	doc := cfg.doc
	if doc == nil {
		result, err := parser.ParseWithOptions(
			parser.WithFilePath(cfg.filePath),
			parser.WithLogger(cfg.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("httpvalidator: %w", err)
		}
		doc = result.Document
	}
	return newValidator(doc, cfg)
}
