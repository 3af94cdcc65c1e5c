// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/authd/internal/auth"
)

// OutcomeSuccess labels operations that returned no error. Failures are
// labelled with their auth.Kind.
const OutcomeSuccess = "success"

// Metrics contains the authd Prometheus collectors.
type Metrics struct {
	Operations     *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	SessionsPurged prometheus.Counter
}

// NewMetrics creates and registers the authd collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authd_operations_total",
				Help: "Total number of credential operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "authd_operation_duration_seconds",
				Help:    "Latency of credential operations, including password hashing",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation"},
		),
		SessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authd_sessions_purged_total",
			Help: "Total number of expired refresh sessions removed by the sweeper",
		}),
	}

	reg.MustRegister(m.Operations, m.Duration, m.SessionsPurged)
	return m
}

// RecordPurged adds n removed sessions to the purge counter.
func (m *Metrics) RecordPurged(n int64) {
	if n > 0 {
		m.SessionsPurged.Add(float64(n))
	}
}

// ErrorReporter forwards unexpected failures to an external tracker.
type ErrorReporter interface {
	CaptureError(ctx context.Context, err error)
}

// AuthObserver records auth.Service operations as metrics and reports
// Internal failures.
type AuthObserver struct {
	metrics  *Metrics
	reporter ErrorReporter
}

// NewAuthObserver creates an AuthObserver. reporter may be nil.
func NewAuthObserver(metrics *Metrics, reporter ErrorReporter) *AuthObserver {
	return &AuthObserver{metrics: metrics, reporter: reporter}
}

// ObserveOperation implements auth.Observer.
func (o *AuthObserver) ObserveOperation(ctx context.Context, operation string, elapsed time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		kind := auth.KindOf(err)
		outcome = kind.String()
		if kind == auth.KindInternal && o.reporter != nil {
			o.reporter.CaptureError(ctx, err)
		}
	}
	o.metrics.Operations.WithLabelValues(operation, outcome).Inc()
	o.metrics.Duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

var _ auth.Observer = (*AuthObserver)(nil)
