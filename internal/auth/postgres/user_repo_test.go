// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/authd/internal/auth"
	"github.com/holomush/authd/pkg/errutil"
)

var userRowColumns = []string{"id", "email", "username", "password_hash", "is_active", "created_at", "updated_at"}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock
}

func TestUserRepository_Create(t *testing.T) {
	user, err := auth.NewUser("alice", "alice@example.com", "$argon2id$hash")
	require.NoError(t, err)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantCode  string
		wantIs    error
	}{
		{
			name: "inserted",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
					WithArgs(user.ID.String(), user.Email, user.Username, user.PasswordHash, true, pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "unique violation",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_lower_idx"})
			},
			wantCode: "USER_DUPLICATE",
			wantIs:   auth.ErrDuplicate,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
					WillReturnError(errors.New("connection refused"))
			},
			wantCode: "USER_CREATE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			tt.setupMock(mock)

			err := NewUserRepository(mock).Create(context.Background(), user)
			if tt.wantCode == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.wantCode)
				if tt.wantIs != nil {
					assert.ErrorIs(t, err, tt.wantIs)
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	id := ulid.Make()
	now := time.Now().UTC()
	row := func() *pgxmock.Rows {
		return pgxmock.NewRows(userRowColumns).
			AddRow(id.String(), "alice@example.com", "alice", "$argon2id$hash", true, now, now)
	}

	tests := []struct {
		name   string
		query  string
		lookup func(r *UserRepository) (*auth.User, error)
	}{
		{"by id", "WHERE id = $1", func(r *UserRepository) (*auth.User, error) {
			return r.GetByID(context.Background(), id)
		}},
		{"by email", "WHERE lower(email) = lower($1)", func(r *UserRepository) (*auth.User, error) {
			return r.GetByEmail(context.Background(), "ALICE@example.com")
		}},
		{"by username", "WHERE lower(username) = lower($1)", func(r *UserRepository) (*auth.User, error) {
			return r.GetByUsername(context.Background(), "Alice")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name+" found", func(t *testing.T) {
			mock := newMockPool(t)
			mock.ExpectQuery(regexp.QuoteMeta(tt.query)).WillReturnRows(row())

			user, err := tt.lookup(NewUserRepository(mock))
			require.NoError(t, err)
			assert.Equal(t, id, user.ID)
			assert.Equal(t, "alice", user.Username)
			assert.True(t, user.IsActive)
			assert.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run(tt.name+" missing", func(t *testing.T) {
			mock := newMockPool(t)
			mock.ExpectQuery(regexp.QuoteMeta(tt.query)).WillReturnRows(pgxmock.NewRows(userRowColumns))

			user, err := tt.lookup(NewUserRepository(mock))
			assert.Nil(t, user)
			errutil.AssertCodedSentinel(t, err, "USER_NOT_FOUND", auth.ErrNotFound)
		})

		t.Run(tt.name+" failure", func(t *testing.T) {
			mock := newMockPool(t)
			mock.ExpectQuery(regexp.QuoteMeta(tt.query)).WillReturnError(errors.New("connection reset"))

			_, err := tt.lookup(NewUserRepository(mock))
			require.Error(t, err)
			assert.NotErrorIs(t, err, auth.ErrNotFound)
			errutil.AssertErrorCode(t, err, "USER_GET_FAILED")
		})
	}
}

func TestUserRepository_CorruptID(t *testing.T) {
	mock := newMockPool(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow("not-a-ulid", "alice@example.com", "alice", "hash", true, now, now))

	_, err := NewUserRepository(mock).GetByUsername(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ulid")
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	id := ulid.Make()

	t.Run("updated", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash")).
			WithArgs(id.String(), "new-hash", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewUserRepository(mock).UpdatePassword(context.Background(), id, "new-hash"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no such user", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash")).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewUserRepository(mock).UpdatePassword(context.Background(), id, "new-hash")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}
