// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package auth provides the credential and session core of authd.
//
// # Domain Types
//
// Domain types (User, RefreshSession) should be created using their
// respective constructors:
//   - NewUser - creates a User with validated username, email and password hash
//   - NewRefreshSession - creates a RefreshSession with validated owner and expiry
//
// Direct struct initialization bypasses validation and may create invalid state.
// Repository implementations receive pre-validated types from these constructors.
//
// # Tokens
//
// TokenCodec mints and decodes signed bearer tokens. Access tokens carry the
// id of the refresh session they were issued with (rt_id) so that logout
// revokes exactly one device. Refresh tokens are single use: every refresh
// deletes the presented session and inserts its replacement in one
// transaction.
//
// # Services
//
// Service coordinates register, authenticate, refresh, logout and
// change-password. Every public operation runs in a single Transactor
// boundary. Failures carry oops codes; KindOf maps them onto the failure
// kinds the routing layer understands.
package auth
