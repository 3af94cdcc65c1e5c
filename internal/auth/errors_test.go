// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/holomush/authd/internal/auth"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want auth.Kind
		http int
	}{
		{"conflict", oops.Code(auth.CodeConflict).Errorf("email already registered"), auth.KindConflict, http.StatusConflict},
		{"invalid credentials", oops.Code(auth.CodeInvalidCredentials).Errorf("x"), auth.KindUnauthorized, http.StatusUnauthorized},
		{"revoked", oops.Code(auth.CodeSessionRevoked).Errorf("x"), auth.KindUnauthorized, http.StatusUnauthorized},
		{"expired", oops.Code(auth.CodeSessionExpired).Errorf("x"), auth.KindUnauthorized, http.StatusUnauthorized},
		{"incorrect password", oops.Code(auth.CodeIncorrectPassword).Errorf("x"), auth.KindBadRequest, http.StatusBadRequest},
		{"missing session", oops.Code(auth.CodeMissingSession).Errorf("x"), auth.KindBadRequest, http.StatusBadRequest},
		{"repository not found", oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound), auth.KindNotFound, http.StatusNotFound},
		{"unknown code", oops.Code("SESSION_CREATE_FAILED").Errorf("insert failed"), auth.KindInternal, http.StatusInternalServerError},
		{"plain error", errors.New("boom"), auth.KindInternal, http.StatusInternalServerError},
		{"nil", nil, auth.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.KindOf(tt.err))
			assert.Equal(t, tt.http, auth.HTTPStatus(tt.err))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "internal", auth.KindInternal.String())
	assert.Equal(t, "conflict", auth.KindConflict.String())
	assert.Equal(t, "unauthorized", auth.KindUnauthorized.String())
	assert.Equal(t, "bad_request", auth.KindBadRequest.String())
	assert.Equal(t, "not_found", auth.KindNotFound.String())
}

func TestPublicMessage(t *testing.T) {
	t.Run("internal failures hide details", func(t *testing.T) {
		err := oops.Code("SESSION_CREATE_FAILED").
			With("dsn", "postgres://user:pass@db").
			Wrap(errors.New("pq: relation missing"))
		assert.Equal(t, "internal server error", auth.PublicMessage(err))
	})

	t.Run("classified failures keep their message", func(t *testing.T) {
		err := oops.Code(auth.CodeIncorrectPassword).Errorf("incorrect password")
		assert.Equal(t, "incorrect password", auth.PublicMessage(err))
	})
}
