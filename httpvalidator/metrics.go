package httpvalidator

import "time"

// Request outcomes reported to Metrics.RequestValidated.
const (
	OutcomePassed  = "passed"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Metrics receives validator events. Implementations must be safe for
// concurrent use. See the metrics package for a Prometheus implementation.
type Metrics interface {
	// CacheLookup is called once per validated request.
	CacheLookup(hit bool)
	// ValidatorBuilt is called after a validator pair is compiled.
	ValidatorBuilt(method, route string, d time.Duration)
	// RequestValidated is called with one of the Outcome constants.
	RequestValidated(outcome string)
}

// NopMetrics discards all events.
type NopMetrics struct{}

// CacheLookup implements Metrics.
func (NopMetrics) CacheLookup(bool) {}

// ValidatorBuilt implements Metrics.
func (NopMetrics) ValidatorBuilt(string, string, time.Duration) {}

// RequestValidated implements Metrics.
func (NopMetrics) RequestValidated(string) {}

var _ Metrics = NopMetrics{}
