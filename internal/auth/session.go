// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// RefreshSession is one device's login. It is created on login and on every
// rotation, and destroyed on logout, rotation, expiry or password change.
type RefreshSession struct {
	ID        ulid.ULID
	TokenHash string
	UserID    ulid.ULID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewRefreshSession creates a validated RefreshSession with a fresh ID.
func NewRefreshSession(userID ulid.ULID, tokenHash string, expiresAt time.Time) (*RefreshSession, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &RefreshSession{
		ID:        ulid.Make(),
		TokenHash: tokenHash,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpiredAt returns true if the session would be expired at the given time.
func (s *RefreshSession) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// HashSessionToken computes the SHA256 hash under which a refresh token's
// session is stored. The bearer value itself is never persisted.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SessionRepository manages refresh session persistence. Implementations
// resolve an active transaction from ctx.
type SessionRepository interface {
	// Create stores a new session. A zero ID or CreatedAt is filled in.
	Create(ctx context.Context, session *RefreshSession) (*RefreshSession, error)

	// GetByTokenHash retrieves a session by its token hash. Inside a
	// transaction the row stays locked until commit.
	GetByTokenHash(ctx context.Context, tokenHash string) (*RefreshSession, error)

	// GetByID retrieves a session by its ID.
	GetByID(ctx context.Context, id ulid.ULID) (*RefreshSession, error)

	// ListByUser returns every session of a user, oldest first.
	ListByUser(ctx context.Context, userID ulid.ULID) ([]*RefreshSession, error)

	// Delete removes a session by ID. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id ulid.ULID) error

	// DeleteByTokenHash removes a session by token hash. Returns ErrNotFound if absent.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteByUser removes all sessions for a user and returns the count.
	DeleteByUser(ctx context.Context, userID ulid.ULID) (int64, error)

	// DeleteExpired removes sessions whose expiry is at or before now and
	// returns the count.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Transactor runs fn inside one transaction. The transaction is carried in
// the context passed to fn; an error from fn or a cancelled context rolls
// it back.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
