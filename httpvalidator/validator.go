package httpvalidator

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/erraggy/oasgate/oaserrors"
	"github.com/erraggy/oasgate/parser"
)

// Validator validates HTTP requests against an OpenAPI 3.x document.
//
// Create a Validator using the New function:
//
//	result, _ := parser.ParseWithOptions(parser.WithFilePath("openapi.yaml"))
//	v, err := httpvalidator.New(result.Document)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	req, err := v.FromHTTP(r)
//	if err := v.ValidateRequest(req); err != nil {
//	    var reqErr *oaserrors.RequestError
//	    if errors.As(err, &reqErr) {
//	        // reqErr.Status is 400 or 404
//	    }
//	}
//
// Validators for an operation are compiled on the first request for each
// (method, route, content type) and reused afterwards. A Validator is safe
// for concurrent use.
type Validator struct {
	doc      *parser.Document
	composer *composer
	cache    *validatorCache

	extractor SchemaExtractor
	mutator   ParameterMutator
	compiler  SchemaCompiler
	resolver  RouteResolver
	logger    parser.Logger
	metrics   Metrics

	allowUnknownQuery bool
	allowedQuery      []string
	maxBodySize       int64
}

// New creates a Validator for doc. Spec source options (WithFilePath,
// WithDocument, WithParsed) are not accepted here; use NewWithOptions.
func New(doc *parser.Document, opts ...Option) (*Validator, error) {
	if doc == nil {
		return nil, &oaserrors.ConfigError{Option: "document", Message: "document cannot be nil"}
	}
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	if cfg.filePath != "" || cfg.doc != nil {
		return nil, &oaserrors.ConfigError{Option: "document", Message: "New takes the document as an argument; use NewWithOptions for document options"}
	}
	return newValidator(doc, cfg)
}

func newValidator(doc *parser.Document, cfg *config) (*Validator, error) {
	v := &Validator{
		doc:               doc,
		composer:          newComposer(doc),
		cache:             newValidatorCache(),
		extractor:         cfg.extractor,
		mutator:           cfg.mutator,
		compiler:          cfg.compiler,
		resolver:          cfg.resolver,
		logger:            cfg.logger,
		metrics:           cfg.metrics,
		allowUnknownQuery: cfg.allowUnknownQuery,
		allowedQuery:      cfg.allowedQuery,
		maxBodySize:       cfg.maxBodySize,
	}
	if v.compiler == nil {
		v.compiler = NewJSONSchemaCompiler()
	}
	if v.resolver == nil {
		router, err := NewRouter(doc)
		if err != nil {
			return nil, err
		}
		v.resolver = router
	}
	return v, nil
}

// Document returns the document the validator was built from.
func (v *Validator) Document() *parser.Document {
	return v.doc
}

// CacheSize returns the number of compiled validator pairs.
func (v *Validator) CacheSize() int {
	return v.cache.len()
}

// FromHTTP resolves the route of r and converts it into a Request using the
// configured body size limit.
func (v *Validator) FromHTTP(r *http.Request) (*Request, error) {
	route, _ := v.resolver.ResolveRoute(r)
	return FromHTTP(r, route, v.maxBodySize)
}

// ValidateRequest validates req and returns nil when it passes or when no
// operation matches it. Validation failures are returned as
// *oaserrors.RequestError. Any other error means a validator for the
// operation could not be built.
//
// The request's parameter maps are coerced in place by the ParameterMutator,
// and the route's path parameters are merged into req.Params. Validating the
// same request again yields the same outcome.
func (v *Validator) ValidateRequest(req *Request) error {
	_, err := v.validate(req)
	return err
}

// validate runs the pipeline and reports whether an operation matched.
func (v *Validator) validate(req *Request) (bool, error) {
	if req == nil {
		return false, fmt.Errorf("httpvalidator: request cannot be nil")
	}
	method := strings.ToUpper(req.Method)
	if req.Route == nil {
		v.finish(method, req, OutcomeSkipped, nil)
		return false, nil
	}
	op := v.doc.Operation(req.Route.Pattern, method)
	if op == nil {
		v.finish(method, req, OutcomeSkipped, nil)
		return false, nil
	}

	ct := ParseContentType(req.ContentType)
	pair, err := v.validatorFor(method, req.Route.Pattern, op, ct)
	if err != nil {
		return true, err
	}

	if req.Route.Wildcard && !anyCaptured(req.Route.PathParams) {
		reqErr := oaserrors.NewRequestError(oaserrors.KindNotFound, req.Path, "not found")
		v.finish(method, req, OutcomeFailed, reqErr)
		return true, reqErr
	}

	if len(req.Route.PathParams) > 0 {
		if req.Params == nil {
			req.Params = make(map[string]any, len(req.Route.PathParams))
		}
		for name, value := range req.Route.PathParams {
			req.Params[name] = value
		}
	}

	v.mutator.Mutate(req, pair.props)

	if !pair.allowUnknown {
		if entries := checkQueryParameters(v.doc, req.Query, pair.props.Schemas.Query, pair.allowlist); len(entries) > 0 {
			reqErr := queryPolicyError(entries)
			v.finish(method, req, OutcomeFailed, reqErr)
			return true, reqErr
		}
	}

	env := getEnvelope(req)
	defer putEnvelope(env)

	var bodyErrs []RawError
	if pair.discriminator != nil && req.Body != nil {
		option, reqErr := pair.discriminator.Select(env[envBody])
		if reqErr != nil {
			reqErr.Path = req.Path
			v.finish(method, req, OutcomeFailed, reqErr)
			return true, reqErr
		}
		// Option validators see the bare body.
		for _, e := range option.Validate(env[envBody]) {
			e.InstancePath = append([]string{envBody}, e.InstancePath...)
			bodyErrs = append(bodyErrs, e)
		}
	} else {
		bodyErrs = pair.body.Validate(env)
	}
	generalErrs := pair.general.Validate(env)

	if len(generalErrs) == 0 && len(bodyErrs) == 0 {
		v.finish(method, req, OutcomePassed, nil)
		return true, nil
	}
	reqErr := schemaValidationError(req.Path, translateErrors(append(generalErrs, bodyErrs...)))
	v.finish(method, req, OutcomeFailed, reqErr)
	return true, reqErr
}

func (v *Validator) finish(method string, req *Request, outcome string, reqErr *oaserrors.RequestError) {
	v.metrics.RequestValidated(outcome)
	attrs := []any{"method", method, "path", req.Path, "outcome", outcome}
	if reqErr != nil {
		attrs = append(attrs, "status", reqErr.Status, "kind", reqErr.Kind.String(), "errors", len(reqErr.Errors))
	}
	v.logger.Debug("request validated", attrs...)
}

// validatorFor returns the cached pair for the request's key, building and
// publishing it on a miss.
func (v *Validator) validatorFor(method, route string, op *parser.Operation, ct ContentType) (*validatorPair, error) {
	key := cacheKey(method, route, ct)
	if pair, ok := v.cache.load(key); ok {
		v.metrics.CacheLookup(true)
		return pair, nil
	}
	v.metrics.CacheLookup(false)

	start := time.Now()
	pair, err := v.buildPair(route, op, ct)
	if err != nil {
		v.logger.Error("building validator failed", "key", key, "error", err)
		return nil, &oaserrors.ConfigError{Option: "schema", Value: key, Message: "compiling request validator", Cause: err}
	}
	elapsed := time.Since(start)
	v.metrics.ValidatorBuilt(method, route, elapsed)
	v.logger.Debug("validator built", "key", key, "duration", elapsed)

	return v.cache.store(key, pair), nil
}

func (v *Validator) buildPair(route string, op *parser.Operation, ct ContentType) (*validatorPair, error) {
	params, err := v.extractor.ExtractParameters(v.doc, route, op)
	if err != nil {
		return nil, fmt.Errorf("extracting parameters: %w", err)
	}
	body, err := v.extractor.ExtractBody(v.doc, op, ct)
	if err != nil {
		return nil, fmt.Errorf("extracting body: %w", err)
	}

	general, err := v.compiler.Compile(v.composer.general(params), v.composer.dialect)
	if err != nil {
		return nil, fmt.Errorf("general schema: %w", err)
	}
	bodyValidator, err := v.compiler.Compile(v.composer.body(body), v.composer.dialect)
	if err != nil {
		return nil, fmt.Errorf("body schema: %w", err)
	}

	var discriminator *DiscriminatorSpec
	if body.Schema != nil && !v.composer.isBinary(body.Schema) {
		discriminator, err = buildDiscriminator(v.composer, v.compiler, body.Schema)
		if err != nil {
			return nil, err
		}
	}

	allowUnknown := v.allowUnknownQuery
	if allow, declared := op.AllowUnknownQueryParameters(); declared {
		allowUnknown = allow
	}

	return &validatorPair{
		general:       general,
		body:          bodyValidator,
		discriminator: discriminator,
		props: &SchemaProperties{
			Document:   v.doc,
			Parameters: v.doc.Parameters(route, op),
			Schemas:    params,
		},
		allowlist:    mergeAllowlists(SecurityQueryParams(v.doc, op), v.allowedQuery),
		allowUnknown: allowUnknown,
	}, nil
}

func mergeAllowlists(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// anyCaptured reports whether any path parameter captured a non-empty value.
func anyCaptured(params map[string]string) bool {
	for _, value := range params {
		if value != "" {
			return true
		}
	}
	return false
}

// AsRequestError returns err as a *oaserrors.RequestError when it is one.
func AsRequestError(err error) (*oaserrors.RequestError, bool) {
	var reqErr *oaserrors.RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}
