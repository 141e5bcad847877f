// Package commands provides CLI command handlers for oasgate.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasgate/httpvalidator"
	"github.com/erraggy/oasgate/internal/cliutil"
	"github.com/erraggy/oasgate/kinopenapi"
	"github.com/erraggy/oasgate/parser"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrValidationFailed is returned when a checked request fails validation.
// main maps it to exit status 1 without printing it again.
var ErrValidationFailed = errors.New("request failed validation")

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured writes data to w in the specified format (json or yaml).
func OutputStructured(w io.Writer, data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	cliutil.Writef(w, "%s\n", bytes)
	return nil
}

// newLogger returns a text slog logger on w at debug level when verbose,
// warnings only otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// validatorFlags are the flags shared by every command that builds a
// validator.
type validatorFlags struct {
	Kin               bool
	AllowUnknownQuery bool
	AllowedQuery      cliutil.StringList
	MaxBodySize       int64
	Verbose           bool
}

// loadValidator reads specPath and builds a validator. With Kin set, the
// document is loaded and structurally validated by kin-openapi and requests
// are routed by its gorilla/mux router, which honours server base paths.
func loadValidator(ctx context.Context, specPath string, flags *validatorFlags, logger *slog.Logger, extra ...httpvalidator.Option) (*httpvalidator.Validator, error) {
	adapter := parser.NewSlogAdapter(logger)
	opts := []httpvalidator.Option{
		httpvalidator.WithLogger(adapter),
		httpvalidator.WithAllowUnknownQueryParameters(flags.AllowUnknownQuery),
		httpvalidator.WithAllowedQueryParameters(flags.AllowedQuery...),
		httpvalidator.WithMaxBodySize(flags.MaxBodySize),
	}

	if !flags.Kin {
		opts = append(opts, httpvalidator.WithFilePath(specPath))
		return httpvalidator.NewWithOptions(append(opts, extra...)...)
	}

	result, err := kinopenapi.LoadFile(ctx, specPath,
		kinopenapi.WithValidation(true),
		kinopenapi.WithLogger(adapter),
	)
	if err != nil {
		return nil, err
	}
	resolver, err := kinopenapi.NewRouteResolver(result.Spec)
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		httpvalidator.WithDocument(result.Document),
		httpvalidator.WithRouteResolver(resolver),
	)
	return httpvalidator.NewWithOptions(append(opts, extra...)...)
}

// stderr is where diagnostics go. Tests replace it.
var stderr io.Writer = os.Stderr
