// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/holomush/authd/internal/auth"
	"github.com/holomush/authd/internal/auth/memory"
	"github.com/holomush/authd/internal/observability"
	"github.com/holomush/authd/pkg/errutil"
)

// startServe runs serve in the background and waits until it is ready.
func startServe(t *testing.T, deps *Deps, args ...string) (cancel context.CancelFunc, done <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	cmd := NewRootCmd(deps)
	out := &syncBuffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"serve"}, args...))

	errCh := make(chan error, 1)
	go func() { errCh <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "authd started")
	}, 5*time.Second, 10*time.Millisecond, "serve did not become ready: %s", out.String())
	return cancel, errCh
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not shut down")
		return nil
	}
}

func TestServe_RunsUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent(), goleak.IgnoreAnyFunction("os/signal.loop"))
	withSecret(t)

	ctx := context.Background()
	st := memory.NewStore()
	user, err := auth.NewUser("erin_04", "erin@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, st.Users().Create(ctx, user))
	_, err = st.Sessions().Create(ctx, &auth.RefreshSession{
		UserID:    user.ID,
		TokenHash: auth.HashSessionToken("expired"),
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	var server ObservabilityServer
	deps := memoryDeps(st)
	deps.ObservabilityServerFactory = func(addr string, ready observability.ReadinessChecker) ObservabilityServer {
		server = observability.NewServer(addr, ready)
		return server
	}

	cancel, done := startServe(t, deps, "--metrics-addr", "127.0.0.1:0", "--sweep-interval", "20ms")
	defer cancel()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 2 * time.Second}
	get := func(path string) (int, string) {
		resp, err := client.Get("http://" + server.Addr() + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	status, _ := get("/healthz/readiness")
	assert.Equal(t, http.StatusOK, status)

	assert.Eventually(t, func() bool {
		_, body := get("/metrics")
		return strings.Contains(body, "authd_sessions_purged_total 1")
	}, 2*time.Second, 20*time.Millisecond, "sweeper purges expired sessions")

	remaining, err := st.Sessions().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestServe_MetricsDisabled(t *testing.T) {
	withSecret(t)
	deps := memoryDeps(memory.NewStore())
	deps.ObservabilityServerFactory = func(string, observability.ReadinessChecker) ObservabilityServer {
		t.Fatal("observability server must not be created")
		return nil
	}

	cancel, done := startServe(t, deps, "--metrics-addr=")
	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestServe_AutoMigrate(t *testing.T) {
	withDatabase(t)
	m := &fakeMigrator{}
	deps := memoryDeps(memory.NewStore())
	deps.MigratorFactory = func(url string) (Migrator, error) {
		m.openedAt = url
		return m, nil
	}

	cancel, done := startServe(t, deps, "--metrics-addr=", "--auto-migrate")
	cancel()
	require.NoError(t, waitDone(t, done))

	assert.Equal(t, []string{"up"}, m.calls)
	assert.True(t, m.closed)
}

func TestServe_AutoMigrateFailureStops(t *testing.T) {
	withDatabase(t)
	deps := memoryDeps(memory.NewStore())
	deps.MigratorFactory = func(string) (Migrator, error) {
		return &fakeMigrator{upErr: errors.New("dirty database")}, nil
	}

	_, err := runCmd(t, deps, "serve", "--metrics-addr=", "--auto-migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dirty database")
}

// failingServer refuses to start.
type failingServer struct{}

func (failingServer) Start() (<-chan error, error) { return nil, errors.New("address in use") }
func (failingServer) Stop(context.Context) error   { return nil }
func (failingServer) Addr() string                 { return "" }
func (failingServer) Metrics() *observability.Metrics {
	return nil
}

func TestServe_ObservabilityStartFailure(t *testing.T) {
	withSecret(t)
	deps := memoryDeps(memory.NewStore())
	deps.ObservabilityServerFactory = func(string, observability.ReadinessChecker) ObservabilityServer {
		return failingServer{}
	}

	_, err := runCmd(t, deps, "serve")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "OBSERVABILITY_START_FAILED")
}

func TestServe_StoresFailure(t *testing.T) {
	withSecret(t)

	_, err := runCmd(t, &Deps{LogWriter: io.Discard}, "serve", "--metrics-addr=")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}
