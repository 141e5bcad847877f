// Package metrics exposes validator events as Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	v, err := httpvalidator.New(doc, httpvalidator.WithMetrics(metrics.New(reg)))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/erraggy/oasgate/httpvalidator"
)

const namespace = "oasgate"

// Prometheus implements httpvalidator.Metrics.
type Prometheus struct {
	CacheLookups      *prometheus.CounterVec
	ValidatorsBuilt   *prometheus.CounterVec
	BuildDuration     prometheus.Histogram
	RequestsValidated *prometheus.CounterVec
}

var _ httpvalidator.Metrics = (*Prometheus)(nil)

// New creates and registers all metrics with the given registry.
func New(reg prometheus.Registerer) *Prometheus {
	return &Prometheus{
		CacheLookups: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validator_cache_lookups_total",
				Help:      "Validator cache lookups by result",
			},
			[]string{"result"}, // result=hit/miss
		),
		ValidatorsBuilt: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validators_built_total",
				Help:      "Compiled validator pairs by operation",
			},
			[]string{"method", "route"},
		),
		BuildDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validator_build_duration_seconds",
				Help:      "Time spent compiling a validator pair",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8), // 0.5ms to ~8s
			},
		),
		RequestsValidated: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_validated_total",
				Help:      "Requests seen by the validator by outcome",
			},
			[]string{"outcome"}, // outcome=passed/failed/skipped
		),
	}
}

// CacheLookup implements httpvalidator.Metrics.
func (p *Prometheus) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.CacheLookups.WithLabelValues(result).Inc()
}

// ValidatorBuilt implements httpvalidator.Metrics.
func (p *Prometheus) ValidatorBuilt(method, route string, d time.Duration) {
	p.ValidatorsBuilt.WithLabelValues(method, route).Inc()
	p.BuildDuration.Observe(d.Seconds())
}

// RequestValidated implements httpvalidator.Metrics.
func (p *Prometheus) RequestValidated(outcome string) {
	p.RequestsValidated.WithLabelValues(outcome).Inc()
}
