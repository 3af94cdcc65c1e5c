// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/holomush/authd/internal/auth"
)

type capturingReporter struct {
	errs []error
}

func (r *capturingReporter) CaptureError(_ context.Context, err error) {
	r.errs = append(r.errs, err)
}

func TestAuthObserver_Outcomes(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	reporter := &capturingReporter{}
	observer := NewAuthObserver(metrics, reporter)
	ctx := context.Background()

	unauthorized := oops.Code(auth.CodeInvalidCredentials).Errorf("invalid credentials")
	conflict := oops.Code(auth.CodeConflict).Errorf("taken")
	internal := oops.Code("AUTH_REFRESH_FAILED").Wrap(errors.New("connection reset"))

	observer.ObserveOperation(ctx, "login", 10*time.Millisecond, nil)
	observer.ObserveOperation(ctx, "login", 10*time.Millisecond, unauthorized)
	observer.ObserveOperation(ctx, "register", time.Millisecond, conflict)
	observer.ObserveOperation(ctx, "refresh", time.Millisecond, internal)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Operations.WithLabelValues("login", OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Operations.WithLabelValues("login", "unauthorized")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Operations.WithLabelValues("register", "conflict")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Operations.WithLabelValues("refresh", "internal")), 0)
	assert.Equal(t, 3, testutil.CollectAndCount(metrics.Duration))

	assert.Equal(t, []error{internal}, reporter.errs, "only internal failures are reported")
}

func TestAuthObserver_NilReporter(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	observer := NewAuthObserver(metrics, nil)

	assert.NotPanics(t, func() {
		observer.ObserveOperation(context.Background(), "logout", 0, errors.New("boom"))
	})
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Operations.WithLabelValues("logout", "internal")), 0)
}

func TestMetrics_RecordPurgedIgnoresZero(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	metrics.RecordPurged(0)
	metrics.RecordPurged(-1)
	metrics.RecordPurged(3)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.SessionsPurged), 0)
}
