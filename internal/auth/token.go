// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Token defaults.
const (
	DefaultAlgorithm  = "HS256"
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	MinSecretLength   = 32
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenConfig holds the signing secret, algorithm and token lifetimes.
type TokenConfig struct {
	Secret     string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// DefaultTokenConfig returns a config with default algorithm and lifetimes.
// The secret must still be supplied.
func DefaultTokenConfig(secret string) TokenConfig {
	return TokenConfig{
		Secret:     secret,
		Algorithm:  DefaultAlgorithm,
		AccessTTL:  DefaultAccessTTL,
		RefreshTTL: DefaultRefreshTTL,
	}
}

// Validate reports the first problem with the config.
func (c TokenConfig) Validate() error {
	if c.Secret == "" {
		return oops.Code("TOKEN_CONFIG_INVALID").Errorf("secret key is required")
	}
	if len(c.Secret) < MinSecretLength {
		return oops.Code("TOKEN_CONFIG_INVALID").
			With("length", len(c.Secret)).
			Errorf("secret key must be at least %d bytes", MinSecretLength)
	}
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return oops.Code("TOKEN_CONFIG_INVALID").
			With("algorithm", c.Algorithm).
			Errorf("unsupported signing algorithm %q", c.Algorithm)
	}
	if c.AccessTTL <= 0 {
		return oops.Code("TOKEN_CONFIG_INVALID").Errorf("access token lifetime must be positive")
	}
	if c.RefreshTTL <= 0 {
		return oops.Code("TOKEN_CONFIG_INVALID").Errorf("refresh token lifetime must be positive")
	}
	return nil
}

// Claims is the token payload: {sub, type, rt_id?, exp, iat, jti}.
type Claims struct {
	jwt.RegisteredClaims
	Type      TokenType `json:"type"`
	SessionID string    `json:"rt_id,omitempty"`
}

// UserID parses the subject as a ULID.
func (c *Claims) UserID() (ulid.ULID, error) {
	id, err := ulid.Parse(c.Subject)
	if err != nil {
		return ulid.ULID{}, oops.Code(CodeInvalidToken).With("sub", c.Subject).Wrapf(err, "invalid subject")
	}
	return id, nil
}

// RefreshSessionID parses rt_id. ok is false when the claim is absent.
func (c *Claims) RefreshSessionID() (id ulid.ULID, ok bool, err error) {
	if c.SessionID == "" {
		return ulid.ULID{}, false, nil
	}
	id, err = ulid.Parse(c.SessionID)
	if err != nil {
		return ulid.ULID{}, true, oops.Code(CodeInvalidToken).With("rt_id", c.SessionID).Wrapf(err, "invalid session id")
	}
	return id, true, nil
}

// TokenCodecOption configures a TokenCodec.
type TokenCodecOption func(*TokenCodec)

// WithTokenClock overrides the clock used for iat/exp and expiry checks.
func WithTokenClock(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// TokenCodec signs and verifies HMAC JWTs. It is safe for concurrent use.
type TokenCodec struct {
	method jwt.SigningMethod
	secret []byte
	cfg    TokenConfig
	now    func() time.Time
}

// NewTokenCodec creates a codec for the given config.
func NewTokenCodec(cfg TokenConfig, opts ...TokenCodecOption) (*TokenCodec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &TokenCodec{
		method: jwt.GetSigningMethod(cfg.Algorithm),
		secret: []byte(cfg.Secret),
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the codec's token configuration.
func (c *TokenCodec) Config() TokenConfig {
	return c.cfg
}

// Encode signs claims with exp = now+ttl. iat and a fresh jti are always set.
func (c *TokenCodec) Encode(claims Claims, ttl time.Duration) (string, error) {
	if claims.Subject == "" {
		return "", oops.Code("TOKEN_ENCODE_FAILED").Errorf("subject is required")
	}
	if claims.Type != TokenTypeAccess && claims.Type != TokenTypeRefresh {
		return "", oops.Code("TOKEN_ENCODE_FAILED").With("type", claims.Type).Errorf("unknown token type")
	}
	if ttl <= 0 {
		return "", oops.Code("TOKEN_ENCODE_FAILED").With("ttl", ttl).Errorf("ttl must be positive")
	}

	now := c.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	claims.ID = ulid.Make().String()

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", oops.Code("TOKEN_ENCODE_FAILED").With("algorithm", c.cfg.Algorithm).Wrap(err)
	}
	return signed, nil
}

// EncodeAccess mints an access token for userID bound to sessionID.
func (c *TokenCodec) EncodeAccess(userID, sessionID ulid.ULID) (string, error) {
	return c.Encode(Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
		Type:             TokenTypeAccess,
		SessionID:        sessionID.String(),
	}, c.cfg.AccessTTL)
}

// EncodeRefresh mints a refresh token for userID.
func (c *TokenCodec) EncodeRefresh(userID ulid.ULID) (string, error) {
	return c.Encode(Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
		Type:             TokenTypeRefresh,
	}, c.cfg.RefreshTTL)
}

// Decode verifies the algorithm, signature and expiry of token and returns
// its claims. Every failure carries CodeInvalidToken.
func (c *TokenCodec) Decode(token string) (*Claims, error) {
	if token == "" {
		return nil, oops.Code(CodeInvalidToken).Errorf("token is empty")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.cfg.Algorithm}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, oops.Code(CodeInvalidToken).Wrapf(err, "invalid token")
	}
	return checkClaims(claims)
}

// DecodeExpired verifies the algorithm and signature of a token that is
// past its exp and returns its claims. A token that has not expired, or
// that fails any other check, is rejected with CodeInvalidToken.
func (c *TokenCodec) DecodeExpired(token string) (*Claims, error) {
	if token == "" {
		return nil, oops.Code(CodeInvalidToken).Errorf("token is empty")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.cfg.Algorithm}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, oops.Code(CodeInvalidToken).Wrapf(err, "invalid token")
	}
	if claims.ExpiresAt == nil {
		return nil, oops.Code(CodeInvalidToken).Errorf("token has no expiry")
	}
	if c.now().Before(claims.ExpiresAt.Time) {
		return nil, oops.Code(CodeInvalidToken).
			With("expires_at", claims.ExpiresAt.Time).
			Errorf("token has not expired")
	}
	return checkClaims(claims)
}

func checkClaims(claims *Claims) (*Claims, error) {
	if claims.Subject == "" {
		return nil, oops.Code(CodeInvalidToken).Errorf("token has no subject")
	}
	if claims.Type != TokenTypeAccess && claims.Type != TokenTypeRefresh {
		return nil, oops.Code(CodeInvalidToken).With("type", claims.Type).Errorf("token has unknown type")
	}
	return claims, nil
}

