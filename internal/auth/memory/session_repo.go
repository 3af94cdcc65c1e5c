// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package memory

import (
	"context"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/authd/internal/auth"
)

// SessionRepository implements auth.SessionRepository on a Store.
type SessionRepository struct {
	store *Store
}

// Create stores a new session. The owning user must exist and the token
// hash must be unused.
func (r *SessionRepository) Create(ctx context.Context, session *auth.RefreshSession) (*auth.RefreshSession, error) {
	defer r.store.acquire(ctx)()

	stored := *session
	if stored.ID.Compare(ulid.ULID{}) == 0 {
		stored.ID = ulid.Make()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}

	if _, ok := r.store.users[stored.UserID]; !ok {
		return nil, oops.Code("SESSION_CREATE_FAILED").
			With("user_id", stored.UserID.String()).
			Errorf("user does not exist")
	}
	if _, exists := r.store.sessions[stored.ID]; exists {
		return nil, oops.Code("SESSION_DUPLICATE").With("id", stored.ID.String()).Wrap(auth.ErrDuplicate)
	}
	for _, existing := range r.store.sessions {
		if existing.TokenHash == stored.TokenHash {
			return nil, oops.Code("SESSION_DUPLICATE").With("field", "token_hash").Wrap(auth.ErrDuplicate)
		}
	}

	r.store.sessions[stored.ID] = &stored
	out := stored
	return &out, nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.RefreshSession, error) {
	defer r.store.acquire(ctx)()

	for _, session := range r.store.sessions {
		if session.TokenHash == tokenHash {
			found := *session
			return &found, nil
		}
	}
	return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.RefreshSession, error) {
	defer r.store.acquire(ctx)()

	session, ok := r.store.sessions[id]
	if !ok {
		return nil, oops.Code("SESSION_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	found := *session
	return &found, nil
}

// ListByUser returns every session of a user, oldest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID ulid.ULID) ([]*auth.RefreshSession, error) {
	defer r.store.acquire(ctx)()

	var out []*auth.RefreshSession
	for _, session := range r.store.sessions {
		if session.UserID == userID {
			found := *session
			out = append(out, &found)
		}
	}
	slices.SortFunc(out, func(a, b *auth.RefreshSession) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return a.ID.Compare(b.ID)
	})
	return out, nil
}

// Delete removes a session by ID.
func (r *SessionRepository) Delete(ctx context.Context, id ulid.ULID) error {
	defer r.store.acquire(ctx)()

	if _, ok := r.store.sessions[id]; !ok {
		return oops.Code("SESSION_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	delete(r.store.sessions, id)
	return nil
}

// DeleteByTokenHash removes a session by token hash.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	defer r.store.acquire(ctx)()

	for id, session := range r.store.sessions {
		if session.TokenHash == tokenHash {
			delete(r.store.sessions, id)
			return nil
		}
	}
	return oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
}

// DeleteByUser removes all sessions for a user.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) (int64, error) {
	defer r.store.acquire(ctx)()

	return r.deleteWhere(func(s *auth.RefreshSession) bool { return s.UserID == userID }), nil
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	defer r.store.acquire(ctx)()

	return r.deleteWhere(func(s *auth.RefreshSession) bool { return s.IsExpiredAt(now) }), nil
}

// deleteWhere must be called with the store lock held.
func (r *SessionRepository) deleteWhere(match func(*auth.RefreshSession) bool) int64 {
	var n int64
	for id, session := range r.store.sessions {
		if match(session) {
			delete(r.store.sessions, id)
			n++
		}
	}
	return n
}

var _ auth.SessionRepository = (*SessionRepository)(nil)
