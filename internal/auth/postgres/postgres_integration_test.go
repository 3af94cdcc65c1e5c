// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/authd/internal/auth"
	"github.com/holomush/authd/internal/auth/postgres"
	"github.com/holomush/authd/internal/store"
)

// testPool is the shared database pool for integration tests.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("authd_test"),
		tcpostgres.WithUsername("authd"),
		tcpostgres.WithPassword("authd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		panic("failed to start postgres container: " + err.Error())
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to get connection string: " + err.Error())
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to create migrator: " + err.Error())
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		_ = container.Terminate(ctx)
		panic("failed to run migrations: " + err.Error())
	}
	_ = migrator.Close()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to create pool: " + err.Error())
	}
	testPool = pool

	code := m.Run()

	pool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func createUser(t *testing.T, username string) *auth.User {
	t.Helper()
	user, err := auth.NewUser(username, username+"@example.com", "$argon2id$placeholder")
	require.NoError(t, err)
	require.NoError(t, postgres.NewUserRepository(testPool).Create(context.Background(), user))
	t.Cleanup(func() {
		_, _ = testPool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, user.ID.String())
	})
	return user
}

func createSession(t *testing.T, user *auth.User, hash string, expires time.Time) *auth.RefreshSession {
	t.Helper()
	session, err := auth.NewRefreshSession(user.ID, hash, expires)
	require.NoError(t, err)
	stored, err := postgres.NewSessionRepository(testPool).Create(context.Background(), session)
	require.NoError(t, err)
	return stored
}

func TestUserRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewUserRepository(testPool)
	user := createUser(t, "intuser")

	byEmail, err := repo.GetByEmail(ctx, "INTUSER@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byName, err := repo.GetByUsername(ctx, "IntUser")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	dup, err := auth.NewUser("INTUSER", "other@example.com", "hash")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), auth.ErrDuplicate)

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "rotated"))
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.PasswordHash)

	_, err = repo.GetByID(ctx, ulid.Make())
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestSessionRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewSessionRepository(testPool)
	user := createUser(t, "sessuser")
	now := time.Now()

	live := createSession(t, user, "live-hash", now.Add(time.Hour))
	createSession(t, user, "stale-hash", now.Add(-time.Minute))

	got, err := repo.GetByTokenHash(ctx, "live-hash")
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)

	_, err = repo.Create(ctx, &auth.RefreshSession{TokenHash: "live-hash", UserID: user.ID, ExpiresAt: now.Add(time.Hour)})
	assert.ErrorIs(t, err, auth.ErrDuplicate)

	_, err = repo.Create(ctx, &auth.RefreshSession{TokenHash: "orphan", UserID: ulid.Make(), ExpiresAt: now.Add(time.Hour)})
	assert.Error(t, err, "foreign key must reject unknown users")

	list, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	purged, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, purged, int64(1))

	_, err = repo.GetByTokenHash(ctx, "stale-hash")
	assert.ErrorIs(t, err, auth.ErrNotFound)

	n, err := repo.DeleteByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.ErrorIs(t, repo.Delete(ctx, live.ID), auth.ErrNotFound)
}

func TestSessions_CascadeOnUserDelete(t *testing.T) {
	ctx := context.Background()
	user := createUser(t, "cascadeuser")
	session := createSession(t, user, "cascade-hash", time.Now().Add(time.Hour))

	_, err := testPool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID.String())
	require.NoError(t, err)

	_, err = postgres.NewSessionRepository(testPool).GetByID(ctx, session.ID)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestTransactor_Integration(t *testing.T) {
	ctx := context.Background()
	tx := postgres.NewTransactor(testPool)
	repo := postgres.NewSessionRepository(testPool)
	user := createUser(t, "txuser")

	boom := errors.New("force rollback")
	err := tx.InTransaction(ctx, func(txCtx context.Context) error {
		if _, err := repo.Create(txCtx, &auth.RefreshSession{
			TokenHash: "rolled-back", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour),
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetByTokenHash(ctx, "rolled-back")
	assert.ErrorIs(t, err, auth.ErrNotFound)

	err = tx.InTransaction(ctx, func(txCtx context.Context) error {
		_, err := repo.Create(txCtx, &auth.RefreshSession{
			TokenHash: "committed", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour),
		})
		return err
	})
	require.NoError(t, err)

	_, err = repo.GetByTokenHash(ctx, "committed")
	assert.NoError(t, err)
}
