// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"errors"
	"net/http"

	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by repositories when a write violates a
// uniqueness constraint.
var ErrDuplicate = errors.New("duplicate")

// Error codes surfaced by Service. Repository codes are deliberately not
// listed here: anything unknown is classified as KindInternal.
const (
	CodeConflict           = "AUTH_CONFLICT"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeIncorrectPassword  = "AUTH_INCORRECT_PASSWORD"
	CodeInvalidUsername    = "AUTH_INVALID_USERNAME"
	CodeInvalidEmail       = "AUTH_INVALID_EMAIL"
	CodeInvalidPassword    = "AUTH_INVALID_PASSWORD"
	CodeInvalidToken       = "TOKEN_INVALID"
	CodeMissingToken       = "TOKEN_MISSING"
	CodeWrongTokenType     = "TOKEN_WRONG_TYPE"
	CodeMissingSession     = "TOKEN_MISSING_SESSION"
	CodeSessionRevoked     = "SESSION_REVOKED"
	CodeSessionExpired     = "SESSION_EXPIRED"
	CodeUserNotFound       = "AUTH_USER_NOT_FOUND"
)

// Kind classifies a service failure for the routing layer.
type Kind int

// Failure kinds. KindInternal is the zero value so that anything
// unclassified is treated as a server-side failure.
const (
	KindInternal Kind = iota
	KindConflict
	KindUnauthorized
	KindBadRequest
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

var kindByCode = map[string]Kind{
	CodeConflict:           KindConflict,
	CodeInvalidCredentials: KindUnauthorized,
	CodeInvalidToken:       KindUnauthorized,
	CodeMissingToken:       KindUnauthorized,
	CodeWrongTokenType:     KindUnauthorized,
	CodeSessionRevoked:     KindUnauthorized,
	CodeSessionExpired:     KindUnauthorized,
	CodeUserNotFound:       KindUnauthorized,
	CodeIncorrectPassword:  KindBadRequest,
	CodeInvalidUsername:    KindBadRequest,
	CodeInvalidEmail:       KindBadRequest,
	CodeInvalidPassword:    KindBadRequest,
	CodeMissingSession:     KindBadRequest,
}

// KindOf classifies err. Errors without a known code are KindInternal,
// except bare ErrNotFound which is KindNotFound.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok {
			if kind, known := kindByCode[code]; known {
				return kind
			}
		}
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return KindInternal
}

// HTTPStatus maps err onto the status code the routing layer should send.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns a message safe to show to the caller.
// Internal failures never expose storage details.
func PublicMessage(err error) string {
	kind := KindOf(err)
	if kind == KindInternal {
		return "internal server error"
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Error()
	}
	return kind.String()
}
