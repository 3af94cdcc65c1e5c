// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package memory

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/authd/internal/auth"
)

// UserRepository implements auth.UserRepository on a Store.
type UserRepository struct {
	store *Store
}

// Create stores a new user. Email and username are unique case-insensitively.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	defer r.store.acquire(ctx)()

	if _, exists := r.store.users[user.ID]; exists {
		return oops.Code("USER_DUPLICATE").With("id", user.ID.String()).Wrap(auth.ErrDuplicate)
	}
	for _, existing := range r.store.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return oops.Code("USER_DUPLICATE").With("field", "email").Wrap(auth.ErrDuplicate)
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return oops.Code("USER_DUPLICATE").With("field", "username").Wrap(auth.ErrDuplicate)
		}
	}

	stored := *user
	r.store.users[user.ID] = &stored
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	defer r.store.acquire(ctx)()

	user, ok := r.store.users[id]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	found := *user
	return &found, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.find(ctx, func(u *auth.User) bool { return strings.EqualFold(u.Email, email) })
}

// GetByUsername retrieves a user by username (case-insensitive).
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.find(ctx, func(u *auth.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *UserRepository) find(ctx context.Context, match func(*auth.User) bool) (*auth.User, error) {
	defer r.store.acquire(ctx)()

	for _, user := range r.store.users {
		if match(user) {
			found := *user
			return &found, nil
		}
	}
	return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
}

// UpdatePassword replaces the password hash of a user.
func (r *UserRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	defer r.store.acquire(ctx)()

	user, ok := r.store.users[id]
	if !ok {
		return oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	updated := *user
	updated.PasswordHash = passwordHash
	updated.UpdatedAt = time.Now()
	r.store.users[id] = &updated
	return nil
}

var _ auth.UserRepository = (*UserRepository)(nil)
