// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package gateway authenticates realtime connections with the tokens
// issued by the auth service. It only verifies tokens; it never mints or
// rotates them.
package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/authd/internal/auth"
)

// TokenDecoder verifies a token. *auth.TokenCodec implements it.
type TokenDecoder interface {
	Decode(token string) (*auth.Claims, error)
}

// ConnectRequest is what a client presents when opening a connection.
type ConnectRequest struct {
	// Auth is the handshake auth payload. Its "token" entry takes
	// precedence over the query string.
	Auth  map[string]any
	Query url.Values
}

// Identity is the authenticated principal of a connection.
type Identity struct {
	UserID ulid.ULID
	// SessionID is the refresh session the token is bound to, when the
	// token carries one.
	SessionID  ulid.ULID
	HasSession bool
}

// Handshake verifies connection requests and tracks connected identities.
type Handshake struct {
	decoder TokenDecoder
	logger  *slog.Logger

	mu    sync.RWMutex
	conns map[string]Identity
}

// HandshakeOption configures a Handshake.
type HandshakeOption func(*Handshake)

// WithLogger sets the logger. The default discards.
func WithLogger(logger *slog.Logger) HandshakeOption {
	return func(h *Handshake) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandshake creates a Handshake that verifies tokens with decoder.
func NewHandshake(decoder TokenDecoder, opts ...HandshakeOption) *Handshake {
	h := &Handshake{
		decoder: decoder,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		conns:   make(map[string]Identity),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Authenticate extracts and verifies the token of req.
func (h *Handshake) Authenticate(req ConnectRequest) (Identity, error) {
	token, ok := extractToken(req)
	if !ok {
		return Identity{}, oops.Code(auth.CodeMissingToken).Errorf("no token presented")
	}

	claims, err := h.decoder.Decode(token)
	if err != nil {
		return Identity{}, oops.Code(auth.CodeInvalidToken).Wrap(err)
	}
	if claims.Subject == "" {
		return Identity{}, oops.Code(auth.CodeInvalidToken).Errorf("token has no subject")
	}

	userID, err := claims.UserID()
	if err != nil {
		return Identity{}, oops.Code(auth.CodeInvalidToken).Wrap(err)
	}
	sessionID, hasSession, err := claims.RefreshSessionID()
	if err != nil {
		return Identity{}, oops.Code(auth.CodeInvalidToken).Wrap(err)
	}
	return Identity{UserID: userID, SessionID: sessionID, HasSession: hasSession}, nil
}

// Connect authenticates req and records the identity under connID. A
// rejected connection is not recorded.
func (h *Handshake) Connect(ctx context.Context, connID string, req ConnectRequest) (Identity, error) {
	identity, err := h.Authenticate(req)
	if err != nil {
		h.logger.DebugContext(ctx, "connection rejected",
			"conn_id", connID,
			"reason", err.Error())
		return Identity{}, err
	}

	h.mu.Lock()
	h.conns[connID] = identity
	h.mu.Unlock()

	h.logger.InfoContext(ctx, "connection authenticated",
		"conn_id", connID,
		"user_id", identity.UserID.String())
	return identity, nil
}

// Disconnect forgets connID.
func (h *Handshake) Disconnect(ctx context.Context, connID string) {
	h.mu.Lock()
	_, known := h.conns[connID]
	delete(h.conns, connID)
	h.mu.Unlock()

	if known {
		h.logger.InfoContext(ctx, "connection closed", "conn_id", connID)
	}
}

// Lookup returns the identity recorded for connID.
func (h *Handshake) Lookup(connID string) (Identity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	identity, ok := h.conns[connID]
	return identity, ok
}

// extractToken prefers the auth payload over the query string. A "token"
// entry in the payload is authoritative even when it is unusable.
func extractToken(req ConnectRequest) (string, bool) {
	if raw, present := req.Auth["token"]; present {
		token, isString := raw.(string)
		return token, isString && token != ""
	}
	token := req.Query.Get("token")
	return token, token != ""
}
