// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store owns the PostgreSQL connection pool and schema migrations.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// RetryConfig bounds the connection attempts made by OpenPool.
type RetryConfig struct {
	MaxRetries     uint64
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig retries five times starting at 500ms, capped at 10s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
	}
}

func (c RetryConfig) backoff() retry.Backoff {
	initial := c.InitialBackoff
	if initial <= 0 {
		initial = time.Millisecond
	}
	b := retry.WithMaxRetries(c.MaxRetries, retry.NewExponential(initial))
	if c.MaxBackoff > 0 {
		b = retry.WithCappedDuration(c.MaxBackoff, b)
	}
	return b
}

// OpenPool creates a pgx pool for dsn and pings it, retrying with
// exponential backoff until the database answers or the retries run out.
func OpenPool(ctx context.Context, dsn string, rc RetryConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("operation", "parse database url").Wrap(err)
	}

	var pool *pgxpool.Pool
	err = withRetry(ctx, rc, logger, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// withRetry runs connect until it succeeds. Every failure is retryable.
func withRetry(ctx context.Context, rc RetryConfig, logger *slog.Logger, connect func(context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}

	attempt := 0
	err := retry.Do(ctx, rc.backoff(), func(ctx context.Context) error {
		attempt++
		if err := connect(ctx); err != nil {
			logger.WarnContext(ctx, "database connection failed",
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").
			With("attempts", attempt).
			Wrap(err)
	}
	if attempt > 1 {
		logger.InfoContext(ctx, "database connection established", "attempts", attempt)
	}
	return nil
}
