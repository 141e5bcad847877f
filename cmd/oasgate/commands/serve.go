package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erraggy/oasgate/httpvalidator"
	"github.com/erraggy/oasgate/internal/cliutil"
	"github.com/erraggy/oasgate/metrics"
)

// ServeFlags contains flags for the serve command
type ServeFlags struct {
	validatorFlags

	Listen          string
	Upstream        string
	MetricsPath     string
	ShutdownTimeout time.Duration
}

// SetupServeFlags creates and configures a FlagSet for the serve command.
// Returns the FlagSet and a ServeFlags struct with bound flag variables.
func SetupServeFlags() (*flag.FlagSet, *ServeFlags) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	flags := &ServeFlags{}

	fs.StringVar(&flags.Listen, "listen", ":8080", "address to listen on")
	fs.StringVar(&flags.Upstream, "upstream", "", "URL of the API that valid requests are forwarded to")
	fs.StringVar(&flags.MetricsPath, "metrics-path", "/metrics", "path serving Prometheus metrics; empty disables them")
	fs.DurationVar(&flags.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")
	fs.BoolVar(&flags.Kin, "kin", false, "load the document with kin-openapi and route with its server-aware router")
	fs.BoolVar(&flags.AllowUnknownQuery, "allow-unknown-query", false, "accept query parameters the operation does not declare")
	fs.Var(&flags.AllowedQuery, "allow-query", "query parameter name accepted on every operation (repeatable)")
	fs.Int64Var(&flags.MaxBodySize, "max-body-size", 0, "maximum request body size in bytes (default 10 MiB)")
	fs.BoolVar(&flags.Verbose, "v", false, "log debug output to stderr")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: oasgate serve [flags] <file>\n\n")
		cliutil.Writef(fs.Output(), "Run a reverse proxy that validates every request against an OpenAPI 3.x\n")
		cliutil.Writef(fs.Output(), "document before forwarding it. Invalid requests are answered with a JSON\n")
		cliutil.Writef(fs.Output(), "error body and never reach the upstream.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  oasgate serve -upstream http://localhost:9000 openapi.yaml\n")
		cliutil.Writef(fs.Output(), "  oasgate serve -listen :8443 -upstream http://api:80 -kin -allow-query trace openapi.yaml\n")
	}

	return fs, flags
}

// HandleServe executes the serve command
func HandleServe(args []string) error {
	fs, flags := SetupServeFlags()
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("serve command requires exactly one document path")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(stderr, flags.Verbose)
	handler, err := newGateway(ctx, fs.Arg(0), flags, logger, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              flags.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Warn("listening", "addr", flags.Listen, "upstream", flags.Upstream)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), flags.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// newGateway builds the proxy handler: the validation middleware in front of
// a reverse proxy to flags.Upstream, plus the metrics endpoint.
func newGateway(ctx context.Context, specPath string, flags *ServeFlags, logger *slog.Logger, reg *prometheus.Registry) (http.Handler, error) {
	if flags.Upstream == "" {
		return nil, fmt.Errorf("serve command requires -upstream")
	}
	upstream, err := url.Parse(flags.Upstream)
	if err != nil || upstream.Scheme == "" || upstream.Host == "" {
		return nil, fmt.Errorf("invalid -upstream %q: expected an absolute URL", flags.Upstream)
	}

	var extra []httpvalidator.Option
	if flags.MetricsPath != "" {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		extra = append(extra, httpvalidator.WithMetrics(metrics.New(reg)))
	}

	v, err := loadValidator(ctx, specPath, &flags.validatorFlags, logger, extra...)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("upstream request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusBadGateway)
	}

	mux := http.NewServeMux()
	if flags.MetricsPath != "" {
		mux.Handle(flags.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}
	mux.Handle("/", v.Middleware(proxy))
	return mux, nil
}
