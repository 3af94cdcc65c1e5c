// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/samber/oops"

	"github.com/holomush/authd/pkg/errutil"
)

// SentryOptions configures error reporting. An empty DSN disables it.
type SentryOptions struct {
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
}

// SentryReporter sends errors to Sentry through a hub.
type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter wraps hub.
func NewSentryReporter(hub *sentry.Hub) *SentryReporter {
	return &SentryReporter{hub: hub}
}

// CaptureError reports err tagged with its oops code and context.
// A nil reporter discards the error.
func (r *SentryReporter) CaptureError(ctx context.Context, err error) {
	if r == nil || err == nil {
		return
	}
	hub := r.hub
	if ctxHub := sentry.GetHubFromContext(ctx); ctxHub != nil {
		hub = ctxHub
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if code := errutil.Code(err); code != "" {
			scope.SetTag("error.code", code)
		}
		if oopsErr, ok := oops.AsOops(err); ok {
			if details := oopsErr.Context(); len(details) > 0 {
				scope.SetContext("oops", sentry.Context(details))
			}
		}
		hub.CaptureException(err)
	})
}

// Flush waits up to timeout for buffered events to be delivered.
func (r *SentryReporter) Flush(timeout time.Duration) bool {
	if r == nil {
		return true
	}
	return r.hub.Flush(timeout)
}

// InitSentry initializes the global Sentry client. It returns nil when
// opts.DSN is empty.
func InitSentry(opts SentryOptions) (*SentryReporter, error) {
	if opts.DSN == "" {
		return nil, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     opts.Release,
		SampleRate:  opts.SampleRate,
	})
	if err != nil {
		return nil, oops.Code("SENTRY_INIT_FAILED").With("environment", opts.Environment).Wrap(err)
	}
	return NewSentryReporter(sentry.CurrentHub()), nil
}
