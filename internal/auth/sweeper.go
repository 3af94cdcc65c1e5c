// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/authd/pkg/errutil"
)

// Purger removes expired refresh sessions. *Service implements it.
type Purger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// Sweeper purges expired sessions on a fixed interval.
type Sweeper struct {
	purger   Purger
	interval time.Duration
	logger   *slog.Logger
	onPurge  func(n int64)
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweeperLogger sets the sweeper's logger.
func WithSweeperLogger(logger *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPurgeHook registers fn to receive each successful purge count.
func WithPurgeHook(fn func(n int64)) SweeperOption {
	return func(s *Sweeper) {
		if fn != nil {
			s.onPurge = fn
		}
	}
}

// NewSweeper creates a Sweeper. interval must be positive.
func NewSweeper(purger Purger, interval time.Duration, opts ...SweeperOption) (*Sweeper, error) {
	if purger == nil {
		return nil, oops.Code("SWEEPER_INVALID").Errorf("purger is required")
	}
	if interval <= 0 {
		return nil, oops.Code("SWEEPER_INVALID").With("interval", interval).Errorf("interval must be positive")
	}
	s := &Sweeper{
		purger:   purger,
		interval: interval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		onPurge:  func(int64) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run sweeps once immediately and then every interval until ctx is done.
// A failed sweep is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "session sweeper started", "interval", s.interval.String())
	for {
		s.sweep(ctx)
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "session sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := s.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		errutil.LogErrorContext(ctx, s.logger, "session sweep failed", err)
		return
	}
	s.onPurge(n)
	if n > 0 {
		s.logger.InfoContext(ctx, "expired sessions purged", "count", n)
	}
}
