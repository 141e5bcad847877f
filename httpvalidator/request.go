package httpvalidator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/erraggy/oasgate/parser"
)

// DefaultMaxBodySize is the body size limit applied by FromHTTP when none is
// configured.
const DefaultMaxBodySize int64 = 10 << 20

// ErrBodyTooLarge is returned by FromHTTP when the body exceeds the limit.
var ErrBodyTooLarge = errors.New("httpvalidator: request body too large")

// Route is a request path resolved against a path template.
type Route struct {
	// Pattern is the matched path template (e.g. "/pets/{petId}").
	Pattern string
	// PathParams holds the raw captured path parameter values.
	PathParams map[string]string
	// Wildcard is set when the template captures multiple segments
	// (e.g. "/files/{path*}").
	Wildcard bool
}

// Request is the validator's view of an HTTP request. Parameter maps hold
// JSON-compatible values and are rewritten in place by the ParameterMutator.
type Request struct {
	Method string
	// Path is the URL path. It is reported as the path of request-level
	// failures.
	Path string
	// Route is nil when the request did not match any path template, in
	// which case validation is skipped.
	Route *Route

	Params        map[string]any
	Query         map[string]any
	Headers       map[string]any
	Cookies       map[string]any
	SignedCookies map[string]any

	// Body is the decoded body, or nil when the request has none.
	Body any
	// ContentType is the raw Content-Type header.
	ContentType string
}

// FromHTTP converts an *http.Request into a Request. The body is read up to
// maxBodySize bytes (DefaultMaxBodySize when maxBodySize <= 0) and restored
// on r so the next handler can read it again.
//
// JSON bodies are decoded with numbers kept as json.Number, form bodies become
// an object, and any other body is kept as a string.
func FromHTTP(r *http.Request, route *Route, maxBodySize int64) (*Request, error) {
	if r == nil {
		return nil, fmt.Errorf("httpvalidator: request cannot be nil")
	}
	req := &Request{
		Method:      strings.ToUpper(r.Method),
		Route:       route,
		Params:      make(map[string]any),
		Query:       make(map[string]any),
		Headers:     make(map[string]any, len(r.Header)),
		Cookies:     make(map[string]any),
		ContentType: r.Header.Get("Content-Type"),
	}
	if r.URL != nil {
		req.Path = r.URL.Path
		req.Query = valuesToMap(r.URL.Query())
	}
	for name, values := range r.Header {
		req.Headers[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	for _, c := range r.Cookies() {
		req.Cookies[c.Name] = c.Value
	}

	data, err := readBody(r, maxBodySize)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		body, err := decodeBody(data, ParseContentType(req.ContentType))
		if err != nil {
			return nil, err
		}
		req.Body = body
	}
	return req, nil
}

func readBody(r *http.Request, maxBodySize int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	_ = r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("httpvalidator: reading request body: %w", err)
	}
	if int64(len(data)) > maxBodySize {
		return nil, ErrBodyTooLarge
	}
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

func decodeBody(data []byte, ct ContentType) (any, error) {
	switch {
	case ct.IsJSON():
		var body any
		if err := parser.DecodeJSON(data, &body); err != nil {
			return nil, fmt.Errorf("httpvalidator: decoding JSON body: %w", err)
		}
		return body, nil
	case ct.MediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return nil, fmt.Errorf("httpvalidator: decoding form body: %w", err)
		}
		return valuesToMap(values), nil
	default:
		return string(data), nil
	}
}

// valuesToMap keeps single values as strings and repeated keys as lists.
func valuesToMap(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			out[key] = vals[0]
			continue
		}
		items := make([]any, len(vals))
		for i, v := range vals {
			items[i] = v
		}
		out[key] = items
	}
	return out
}
