// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package memory provides an in-process implementation of the auth
// repositories. Transactions are serialized on a single mutex and a failed
// transaction restores the state captured when it began.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/authd/internal/auth"
)

type txKey struct{}

// Store holds users and refresh sessions in memory.
type Store struct {
	mu       sync.Mutex
	users    map[ulid.ULID]*auth.User
	sessions map[ulid.ULID]*auth.RefreshSession
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:    make(map[ulid.ULID]*auth.User),
		sessions: make(map[ulid.ULID]*auth.RefreshSession),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

// Sessions returns the session repository view of the store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{store: s}
}

// Transactor returns the transaction boundary of the store.
func (s *Store) Transactor() *Transactor {
	return &Transactor{store: s}
}

// Stores returns all three views wired for auth.NewService.
func (s *Store) Stores() auth.Stores {
	return auth.Stores{
		Users:    s.Users(),
		Sessions: s.Sessions(),
		Tx:       s.Transactor(),
	}
}

// inTx reports whether ctx carries a transaction on this store.
func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// acquire locks the store unless ctx already holds it through a transaction.
func (s *Store) acquire(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type snapshot struct {
	users    map[ulid.ULID]*auth.User
	sessions map[ulid.ULID]*auth.RefreshSession
}

// Records are replaced, never mutated in place, so shallow map copies are
// enough to restore a prior state.
func (s *Store) snapshot() snapshot {
	return snapshot{
		users:    maps.Clone(s.users),
		sessions: maps.Clone(s.sessions),
	}
}

func (s *Store) restore(snap snapshot) {
	s.users = snap.users
	s.sessions = snap.sessions
}

// Transactor implements auth.Transactor for Store.
type Transactor struct {
	store *Store
}

// InTransaction runs fn while holding the store lock. If fn fails or ctx is
// cancelled before fn returns, every write made by fn is discarded.
// Nested calls join the outer transaction.
func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s := t.store
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	if err := ctx.Err(); err != nil {
		s.restore(snap)
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

var _ auth.Transactor = (*Transactor)(nil)
