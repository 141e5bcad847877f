package parser

import "log/slog"

// Logger receives structured log output from the parser, the request
// validator and the kin-openapi loader. Each of those packages accepts one
// through its WithLogger option and defaults to [NopLogger].
//
// Attributes are alternating key-value pairs, as with log/slog:
//
//	logger.Debug("validator built", "key", "GET /pets/{petId}", "duration", elapsed)
//
// [NewSlogAdapter] covers the common case:
//
//	logger := parser.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, nil)))
//	v, err := httpvalidator.New(doc, httpvalidator.WithLogger(logger))
//
// Failed validations are logged at error level by the HTTP middleware, and
// per-request outcomes and schema compilation at debug level.
type Logger interface {
	Debug(msg string, attrs ...any)
	Info(msg string, attrs ...any)
	Warn(msg string, attrs ...any)
	Error(msg string, attrs ...any)

	// With returns a Logger that adds attrs to every entry.
	With(attrs ...any) Logger
}

// NopLogger discards everything. Validators and parsers built without
// WithLogger use it.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(_ string, _ ...any) {}

// Info implements Logger.
func (NopLogger) Info(_ string, _ ...any) {}

// Warn implements Logger.
func (NopLogger) Warn(_ string, _ ...any) {}

// Error implements Logger.
func (NopLogger) Error(_ string, _ ...any) {}

// With implements Logger.
func (n NopLogger) With(_ ...any) Logger { return n }

var _ Logger = NopLogger{}

// SlogAdapter forwards to a *slog.Logger. The CLI wraps its stderr handler in
// one so that -v reaches the validator.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger, falling back to slog.Default() when it is nil.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Debug implements Logger.
func (s *SlogAdapter) Debug(msg string, attrs ...any) {
	s.logger.Debug(msg, attrs...)
}

// Info implements Logger.
func (s *SlogAdapter) Info(msg string, attrs ...any) {
	s.logger.Info(msg, attrs...)
}

// Warn implements Logger.
func (s *SlogAdapter) Warn(msg string, attrs ...any) {
	s.logger.Warn(msg, attrs...)
}

// Error implements Logger.
func (s *SlogAdapter) Error(msg string, attrs ...any) {
	s.logger.Error(msg, attrs...)
}

// With implements Logger.
func (s *SlogAdapter) With(attrs ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(attrs...)}
}

var _ Logger = (*SlogAdapter)(nil)
