// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/authd/pkg/errutil"
)

var tracer = otel.Tracer("holomush/authd")

// TokenTypeBearer is the token_type reported alongside a TokenPair.
const TokenTypeBearer = "bearer"

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Stores groups the persistence dependencies of Service.
type Stores struct {
	Users    UserRepository
	Sessions SessionRepository
	Tx       Transactor
}

// Observer receives the outcome of every public Service operation.
type Observer interface {
	ObserveOperation(ctx context.Context, operation string, elapsed time.Duration, err error)
}

// ServiceOption configures a Service during construction.
type ServiceOption func(*Service)

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for session expiry.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithObserver registers an Observer for operation outcomes.
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) {
		s.observer = o
	}
}

// Service implements register, authenticate, refresh, logout and
// change-password. It holds no mutable state of its own.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	tx       Transactor
	hasher   PasswordHasher
	codec    *TokenCodec
	logger   *slog.Logger
	now      func() time.Time
	observer Observer
}

// NewService creates a new Service.
// Returns an error if any store, the hasher or the codec is nil.
func NewService(stores Stores, hasher PasswordHasher, codec *TokenCodec, opts ...ServiceOption) (*Service, error) {
	if stores.Users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if stores.Sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if stores.Tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if codec == nil {
		return nil, oops.Errorf("token codec is required")
	}

	s := &Service{
		users:    stores.Users,
		sessions: stores.Sessions,
		tx:       stores.Tx,
		hasher:   hasher,
		codec:    codec,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func errInvalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("incorrect email or password")
}

func errCouldNotValidate() error {
	return oops.Code(CodeInvalidToken).Errorf("could not validate credentials")
}

// begin opens the span for operation and returns the function that closes
// it. finish must be deferred with a pointer to the named error result.
func (s *Service) begin(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "auth."+operation, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		err := *errp
		if err != nil {
			kind := KindOf(err)
			span.SetAttributes(attribute.String("auth.failure_kind", kind.String()))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if kind == KindInternal {
				errutil.LogErrorContext(ctx, s.logger, "auth operation failed", err, "operation", operation)
			} else {
				s.logger.DebugContext(ctx, "auth operation rejected",
					"operation", operation,
					"kind", kind.String(),
					"error", err.Error())
			}
		}
		span.End()
		if s.observer != nil {
			s.observer.ObserveOperation(ctx, operation, time.Since(start), err)
		}
	}
}

// Register creates a new active user. Email and username are unique
// case-insensitively.
func (s *Service) Register(ctx context.Context, username, email, password string) (user *User, err error) {
	ctx, finish := s.begin(ctx, "register", attribute.String("auth.username", username))
	defer finish(&err)

	email = NormalizeEmail(email)
	if err = ValidateUsername(username); err != nil {
		return nil, err
	}
	if err = ValidateEmail(email); err != nil {
		return nil, err
	}
	if err = ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, hashErr := s.hasher.Hash(password)
	if hashErr != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(hashErr)
	}

	candidate, err := NewUser(username, email, hash)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if _, lookupErr := s.users.GetByEmail(ctx, email); lookupErr == nil {
			return oops.Code(CodeConflict).With("field", "email").Errorf("email already registered")
		} else if !errors.Is(lookupErr, ErrNotFound) {
			return oops.Code("AUTH_REGISTER_FAILED").
				With("operation", "get user by email").
				Wrap(lookupErr)
		}

		if _, lookupErr := s.users.GetByUsername(ctx, username); lookupErr == nil {
			return oops.Code(CodeConflict).With("field", "username").Errorf("username already taken")
		} else if !errors.Is(lookupErr, ErrNotFound) {
			return oops.Code("AUTH_REGISTER_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}

		if createErr := s.users.Create(ctx, candidate); createErr != nil {
			if errors.Is(createErr, ErrDuplicate) {
				return oops.Code(CodeConflict).Errorf("email or username already registered")
			}
			return oops.Code("AUTH_REGISTER_FAILED").
				With("operation", "persist user").
				Wrap(createErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", candidate.ID.String())
	return candidate, nil
}

// Authenticate verifies credentials and opens a new session.
// Unknown email, inactive account and wrong password are indistinguishable.
func (s *Service) Authenticate(ctx context.Context, email, password string) (pair *TokenPair, err error) {
	ctx, finish := s.begin(ctx, "authenticate")
	defer finish(&err)

	user, lookupErr := s.users.GetByEmail(ctx, NormalizeEmail(email))

	var targetHash string
	var userExists bool
	switch {
	case lookupErr == nil:
		targetHash = user.PasswordHash
		userExists = true
	case errors.Is(lookupErr, ErrNotFound):
		targetHash = dummyPasswordHash
	default:
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by email").
			Wrap(lookupErr)
	}

	// Always verify so that unknown users cost the same as known ones.
	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, errInvalidCredentials()
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			With("user_id", user.ID.String()).
			Wrap(verifyErr)
	}
	if !userExists || !valid || !user.IsActive {
		return nil, errInvalidCredentials()
	}

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	var refresh string
	var session *RefreshSession
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		var issueErr error
		refresh, session, issueErr = s.issueSession(ctx, user.ID)
		return issueErr
	})
	if err != nil {
		return nil, err
	}

	return s.pair(session, refresh)
}

// upgradeHash re-hashes a legacy digest. Login succeeds regardless.
func (s *Service) upgradeHash(ctx context.Context, user *User, password string) {
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.WarnContext(ctx, "password hash upgrade failed", "user_id", user.ID.String(), "error", err)
		return
	}
	if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
		s.logger.WarnContext(ctx, "password hash upgrade failed", "user_id", user.ID.String(), "error", err)
		return
	}
	user.PasswordHash = newHash
}

// issueSession mints a refresh token and persists its session. It must run
// inside a transaction.
func (s *Service) issueSession(ctx context.Context, userID ulid.ULID) (string, *RefreshSession, error) {
	refresh, err := s.codec.EncodeRefresh(userID)
	if err != nil {
		return "", nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "encode refresh token").
			Wrap(err)
	}

	expiresAt := s.now().Add(s.codec.Config().RefreshTTL)
	session, err := NewRefreshSession(userID, HashSessionToken(refresh), expiresAt)
	if err != nil {
		return "", nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "build session").
			Wrap(err)
	}
	session.CreatedAt = s.now()

	stored, err := s.sessions.Create(ctx, session)
	if err != nil {
		return "", nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "persist session").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return refresh, stored, nil
}

// pair mints the access token for a committed session.
func (s *Service) pair(session *RefreshSession, refresh string) (*TokenPair, error) {
	access, err := s.codec.EncodeAccess(session.UserID, session.ID)
	if err != nil {
		return nil, oops.Code("AUTH_TOKEN_MINT_FAILED").
			With("operation", "encode access token").
			With("session_id", session.ID.String()).
			Wrap(err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
	}, nil
}

// Refresh consumes a refresh token and rotates its session. A token is
// accepted at most once. A token used after its expiry, whether the JWT or
// the session row ran out first, has its session deleted before the
// rejection is returned. Sessions of inactive or missing users are
// deleted rather than rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (pair *TokenPair, err error) {
	ctx, finish := s.begin(ctx, "refresh")
	defer finish(&err)

	tokenExpired := false
	claims, decodeErr := s.codec.Decode(refreshToken)
	if decodeErr != nil {
		expiredClaims, expiredErr := s.codec.DecodeExpired(refreshToken)
		if expiredErr != nil {
			return nil, errCouldNotValidate()
		}
		claims, tokenExpired = expiredClaims, true
	}
	if claims.Type != TokenTypeRefresh {
		return nil, oops.Code(CodeWrongTokenType).With("type", claims.Type).Errorf("invalid token type")
	}
	userID, parseErr := claims.UserID()
	if parseErr != nil {
		return nil, errCouldNotValidate()
	}

	tokenHash := HashSessionToken(refreshToken)
	// rejection is reported after a committed delete.
	var rejection error
	var refresh string
	var next *RefreshSession

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		current, lookupErr := s.sessions.GetByTokenHash(ctx, tokenHash)
		if errors.Is(lookupErr, ErrNotFound) {
			return oops.Code(CodeSessionRevoked).Errorf("refresh token not found or revoked")
		}
		if lookupErr != nil {
			return oops.Code("AUTH_REFRESH_FAILED").
				With("operation", "get session by token hash").
				Wrap(lookupErr)
		}
		if current.UserID != userID {
			return oops.Code(CodeSessionRevoked).Errorf("refresh token not found or revoked")
		}

		if tokenExpired || current.IsExpiredAt(s.now()) {
			if delErr := s.sessions.Delete(ctx, current.ID); delErr != nil && !errors.Is(delErr, ErrNotFound) {
				return oops.Code("AUTH_REFRESH_FAILED").
					With("operation", "delete expired session").
					With("session_id", current.ID.String()).
					Wrap(delErr)
			}
			rejection = oops.Code(CodeSessionExpired).Errorf("refresh token expired")
			return nil
		}

		if delErr := s.sessions.Delete(ctx, current.ID); delErr != nil {
			if errors.Is(delErr, ErrNotFound) {
				return oops.Code(CodeSessionRevoked).Errorf("refresh token not found or revoked")
			}
			return oops.Code("AUTH_REFRESH_FAILED").
				With("operation", "delete consumed session").
				With("session_id", current.ID.String()).
				Wrap(delErr)
		}

		user, userErr := s.users.GetByID(ctx, current.UserID)
		if userErr != nil && !errors.Is(userErr, ErrNotFound) {
			return oops.Code("AUTH_REFRESH_FAILED").
				With("operation", "get session owner").
				With("user_id", current.UserID.String()).
				Wrap(userErr)
		}
		if userErr != nil || !user.IsActive {
			rejection = errCouldNotValidate()
			return nil
		}

		var issueErr error
		refresh, next, issueErr = s.issueSession(ctx, current.UserID)
		return issueErr
	})
	if err != nil {
		return nil, err
	}
	if rejection != nil {
		return nil, rejection
	}

	return s.pair(next, refresh)
}

// Logout deletes the session the access token was issued with. Other
// sessions of the same user are untouched. An already deleted session is
// not an error.
func (s *Service) Logout(ctx context.Context, accessToken string) (err error) {
	ctx, finish := s.begin(ctx, "logout")
	defer finish(&err)

	claims, decodeErr := s.codec.Decode(accessToken)
	if decodeErr != nil {
		return errCouldNotValidate()
	}
	if claims.Type != TokenTypeAccess {
		return oops.Code(CodeWrongTokenType).With("type", claims.Type).Errorf("invalid token type")
	}
	userID, parseErr := claims.UserID()
	if parseErr != nil {
		return errCouldNotValidate()
	}
	sessionID, ok, parseErr := claims.RefreshSessionID()
	if !ok {
		return oops.Code(CodeMissingSession).Errorf("token has no session id")
	}
	if parseErr != nil {
		return errCouldNotValidate()
	}

	return s.tx.InTransaction(ctx, func(ctx context.Context) error {
		session, lookupErr := s.sessions.GetByID(ctx, sessionID)
		if errors.Is(lookupErr, ErrNotFound) {
			return nil
		}
		if lookupErr != nil {
			return oops.Code("AUTH_LOGOUT_FAILED").
				With("operation", "get session by id").
				With("session_id", sessionID.String()).
				Wrap(lookupErr)
		}
		if session.UserID != userID {
			s.logger.WarnContext(ctx, "logout session owner mismatch",
				"session_id", sessionID.String(),
				"user_id", userID.String())
			return nil
		}
		if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil && !errors.Is(delErr, ErrNotFound) {
			return oops.Code("AUTH_LOGOUT_FAILED").
				With("operation", "delete session").
				With("session_id", sessionID.String()).
				Wrap(delErr)
		}
		return nil
	})
}

// ChangePassword replaces the password of user and revokes every session
// of that user in the same transaction.
func (s *Service) ChangePassword(ctx context.Context, user *User, oldPassword, newPassword string) (err error) {
	ctx, finish := s.begin(ctx, "change_password")
	defer finish(&err)

	if user == nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").Errorf("user is required")
	}

	valid, verifyErr := s.hasher.Verify(oldPassword, user.PasswordHash)
	if verifyErr != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "verify password").
			With("user_id", user.ID.String()).
			Wrap(verifyErr)
	}
	if !valid {
		return oops.Code(CodeIncorrectPassword).Errorf("incorrect password")
	}
	if err = ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, hashErr := s.hasher.Hash(newPassword)
	if hashErr != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "hash password").
			Wrap(hashErr)
	}

	var revoked int64
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if updErr := s.users.UpdatePassword(ctx, user.ID, hash); updErr != nil {
			if errors.Is(updErr, ErrNotFound) {
				return oops.Code(CodeUserNotFound).Errorf("user not found")
			}
			return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
				With("operation", "update password").
				With("user_id", user.ID.String()).
				Wrap(updErr)
		}
		n, delErr := s.sessions.DeleteByUser(ctx, user.ID)
		if delErr != nil {
			return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
				With("operation", "revoke sessions").
				With("user_id", user.ID.String()).
				Wrap(delErr)
		}
		revoked = n
		return nil
	})
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	s.logger.InfoContext(ctx, "password changed",
		"user_id", user.ID.String(),
		"sessions_revoked", revoked)
	return nil
}

// CurrentUser resolves the user an access token was issued to.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (user *User, err error) {
	ctx, finish := s.begin(ctx, "current_user")
	defer finish(&err)

	claims, decodeErr := s.codec.Decode(accessToken)
	if decodeErr != nil {
		return nil, errCouldNotValidate()
	}
	if claims.Type != TokenTypeAccess {
		return nil, oops.Code(CodeWrongTokenType).With("type", claims.Type).Errorf("invalid token type")
	}
	userID, parseErr := claims.UserID()
	if parseErr != nil {
		return nil, errCouldNotValidate()
	}

	user, err = s.users.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, oops.Code(CodeUserNotFound).Errorf("user not found")
	}
	if err != nil {
		return nil, oops.Code("AUTH_CURRENT_USER_FAILED").
			With("operation", "get user by id").
			With("user_id", userID.String()).
			Wrap(err)
	}
	if !user.IsActive {
		return nil, errCouldNotValidate()
	}
	return user, nil
}

// PurgeExpiredSessions deletes every session past its expiry and returns
// the count.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (n int64, err error) {
	ctx, finish := s.begin(ctx, "purge_expired")
	defer finish(&err)

	n, err = s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, oops.Code("AUTH_PURGE_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "expired sessions purged", "count", n)
	}
	return n, nil
}
