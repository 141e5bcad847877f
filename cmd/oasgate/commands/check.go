package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/erraggy/oasgate"
	"github.com/erraggy/oasgate/httpvalidator"
	"github.com/erraggy/oasgate/internal/cliutil"
)

// CheckFlags contains flags for the check command
type CheckFlags struct {
	validatorFlags

	Method      string
	URL         string
	Headers     cliutil.StringList
	Cookies     cliutil.StringList
	Body        string
	BodyFile    string
	ContentType string
	Format      string
	Quiet       bool
}

// SetupCheckFlags creates and configures a FlagSet for the check command.
// Returns the FlagSet and a CheckFlags struct with bound flag variables.
func SetupCheckFlags() (*flag.FlagSet, *CheckFlags) {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	flags := &CheckFlags{}

	fs.StringVar(&flags.Method, "method", http.MethodGet, "HTTP method of the request")
	fs.StringVar(&flags.Method, "X", http.MethodGet, "HTTP method of the request (shorthand)")
	fs.StringVar(&flags.URL, "url", "", "request path with query string, e.g. '/pets?limit=10'")
	fs.Var(&flags.Headers, "header", "request header 'Name: value' (repeatable)")
	fs.Var(&flags.Headers, "H", "request header 'Name: value' (shorthand, repeatable)")
	fs.Var(&flags.Cookies, "cookie", "request cookie 'name=value' (repeatable)")
	fs.StringVar(&flags.Body, "body", "", "request body")
	fs.StringVar(&flags.BodyFile, "body-file", "", "read the request body from a file, or '-' for stdin")
	fs.StringVar(&flags.ContentType, "content-type", "", "Content-Type of the body (default application/json when a body is given)")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only set the exit status")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only set the exit status")
	fs.BoolVar(&flags.Kin, "kin", false, "load the document with kin-openapi and route with its server-aware router")
	fs.BoolVar(&flags.AllowUnknownQuery, "allow-unknown-query", false, "accept query parameters the operation does not declare")
	fs.Var(&flags.AllowedQuery, "allow-query", "query parameter name accepted on every operation (repeatable)")
	fs.Int64Var(&flags.MaxBodySize, "max-body-size", 0, "maximum request body size in bytes (default 10 MiB)")
	fs.BoolVar(&flags.Verbose, "v", false, "log debug output to stderr")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: oasgate check [flags] <file>\n\n")
		cliutil.Writef(fs.Output(), "Validate one HTTP request against an OpenAPI 3.x document.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  oasgate check -url '/pets?limit=10' openapi.yaml\n")
		cliutil.Writef(fs.Output(), "  oasgate check -X POST -url /pets -body '{\"name\":\"Rex\"}' openapi.yaml\n")
		cliutil.Writef(fs.Output(), "  oasgate check -url /me -cookie session=abc123 -H 'X-Request-ID: r-1' openapi.yaml\n")
		cliutil.Writef(fs.Output(), "  oasgate check --format json -url /pets/7 openapi.yaml | jq '.valid'\n")
		cliutil.Writef(fs.Output(), "\nExit Codes:\n")
		cliutil.Writef(fs.Output(), "  0    Request is valid, or matches no operation\n")
		cliutil.Writef(fs.Output(), "  1    Request failed validation, or the command failed\n")
	}

	return fs, flags
}

// HandleCheck executes the check command
func HandleCheck(args []string) error {
	return runCheck(context.Background(), args, os.Stdin, os.Stdout)
}

func runCheck(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs, flags := SetupCheckFlags()
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("check command requires exactly one document path")
	}
	specPath := fs.Arg(0)

	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	if flags.URL == "" {
		return fmt.Errorf("check command requires -url")
	}
	if flags.Body != "" && flags.BodyFile != "" {
		return fmt.Errorf("use either -body or -body-file, not both")
	}

	startTime := time.Now()
	v, err := loadValidator(ctx, specPath, &flags.validatorFlags, newLogger(stderr, flags.Verbose))
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}

	r, err := flags.request(ctx, stdin)
	if err != nil {
		return err
	}
	req, err := v.FromHTTP(r)
	if err != nil {
		return fmt.Errorf("reading request: %w", err)
	}
	result, err := v.Check(req)
	if err != nil {
		return fmt.Errorf("building validator: %w", err)
	}
	totalTime := time.Since(startTime)

	switch {
	case flags.Quiet:
	case flags.Format == FormatJSON || flags.Format == FormatYAML:
		if err := OutputStructured(stdout, result, flags.Format); err != nil {
			return err
		}
	default:
		printCheckResult(stdout, specPath, r, result, totalTime)
	}

	if !result.Valid {
		return ErrValidationFailed
	}
	return nil
}

// request builds the *http.Request described by the flags.
func (f *CheckFlags) request(ctx context.Context, stdin io.Reader) (*http.Request, error) {
	if !strings.HasPrefix(f.URL, "/") {
		return nil, fmt.Errorf("-url must be a path starting with '/': %q", f.URL)
	}

	body := []byte(f.Body)
	switch f.BodyFile {
	case "":
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading body from stdin: %w", err)
		}
		body = data
	default:
		data, err := os.ReadFile(f.BodyFile)
		if err != nil {
			return nil, fmt.Errorf("reading body file: %w", err)
		}
		body = data
	}

	r, err := http.NewRequestWithContext(ctx, strings.ToUpper(f.Method), f.URL, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	headers, err := cliutil.SplitPairs(f.Headers, ":")
	if err != nil {
		return nil, fmt.Errorf("-header: %w", err)
	}
	for _, h := range headers {
		r.Header.Add(h[0], h[1])
	}
	cookies, err := cliutil.SplitPairs(f.Cookies, "=")
	if err != nil {
		return nil, fmt.Errorf("-cookie: %w", err)
	}
	for _, c := range cookies {
		r.AddCookie(&http.Cookie{Name: c[0], Value: c[1]})
	}

	switch {
	case f.ContentType != "":
		r.Header.Set("Content-Type", f.ContentType)
	case len(body) > 0 && r.Header.Get("Content-Type") == "":
		r.Header.Set("Content-Type", "application/json")
	}
	return r, nil
}

func printCheckResult(w io.Writer, specPath string, r *http.Request, result *httpvalidator.RequestValidationResult, totalTime time.Duration) {
	cliutil.Writef(w, "OpenAPI Request Validator\n")
	cliutil.Writef(w, "=========================\n\n")
	cliutil.Writef(w, "oasgate version: %s\n", oasgate.Version())
	cliutil.Writef(w, "Specification: %s\n", specPath)
	cliutil.Writef(w, "Request: %s %s\n", r.Method, r.URL.RequestURI())
	if result.Matched {
		cliutil.Writef(w, "Operation: %s %s\n", result.MatchedMethod, result.MatchedPath)
	}
	cliutil.Writef(w, "Total Time: %v\n\n", totalTime)

	switch {
	case !result.Matched:
		cliutil.Writef(w, "- No operation matches this request; nothing to validate\n")
	case result.Valid:
		cliutil.Writef(w, "✓ Request is valid\n")
	default:
		reqErr := result.Error
		cliutil.Writef(w, "Errors (%d):\n", len(reqErr.Errors))
		for _, e := range reqErr.Errors {
			cliutil.Writef(w, "  %s: %s (%s)\n", e.Path, e.Message, e.ErrorCode)
		}
		cliutil.Writef(w, "\n✗ Validation failed: %d %s: %s\n", reqErr.Status, result.Kind, reqErr.Message)
	}
}
