// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/authd/internal/auth"
	"github.com/holomush/authd/pkg/errutil"
)

func TestNewUser(t *testing.T) {
	t.Run("creates active user with normalized email", func(t *testing.T) {
		user, err := auth.NewUser("Valid_User1", " Valid@Example.com ", "$argon2id$hash")
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.NotEqual(t, ulid.ULID{}, user.ID)
		assert.Equal(t, "Valid_User1", user.Username)
		assert.Equal(t, "valid@example.com", user.Email)
		assert.Equal(t, "$argon2id$hash", user.PasswordHash)
		assert.True(t, user.IsActive)
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	})

	t.Run("rejects empty password hash", func(t *testing.T) {
		user, err := auth.NewUser("ValidUser", "valid@example.com", "")
		assert.Nil(t, user)
		errutil.AssertErrorCode(t, err, auth.CodeInvalidPassword)
	})

	t.Run("rejects invalid username", func(t *testing.T) {
		user, err := auth.NewUser("a", "valid@example.com", "$argon2id$hash")
		assert.Nil(t, user)
		errutil.AssertErrorCode(t, err, auth.CodeInvalidUsername)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		user, err := auth.NewUser("ValidUser", "nope", "$argon2id$hash")
		assert.Nil(t, user)
		errutil.AssertErrorCode(t, err, auth.CodeInvalidEmail)
	})
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"abc", "ABC", "a_b", "123", "_under_", strings.Repeat("x", auth.MaxUsernameLength)}
	for _, name := range valid {
		assert.NoError(t, auth.ValidateUsername(name), name)
	}

	invalid := []string{"", "ab", strings.Repeat("x", auth.MaxUsernameLength+1), "has space", "dash-name", "émile", "semi;colon"}
	for _, name := range invalid {
		err := auth.ValidateUsername(name)
		require.Error(t, err, name)
		errutil.AssertErrorCode(t, err, auth.CodeInvalidUsername)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@example.com", "first.last+tag@sub.example.org"}
	for _, email := range valid {
		assert.NoError(t, auth.ValidateEmail(email), email)
	}

	invalid := []string{"", "plain", "@example.com", "a@localhost", "Alice <a@example.com>", "a@@example.com"}
	for _, email := range invalid {
		err := auth.ValidateEmail(email)
		require.Error(t, err, email)
		errutil.AssertErrorCode(t, err, auth.CodeInvalidEmail)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  string
	}{
		{"Password1", ""},
		{"Sh0rt", "at least 8"},
		{"alllower1", "uppercase"},
		{"NoDigitsHere", "number"},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := auth.ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			errutil.AssertErrorCode(t, err, auth.CodeInvalidPassword)
		})
	}
}

func TestUser_Summary(t *testing.T) {
	user, err := auth.NewUser("alice", "alice@example.com", "$argon2id$secret")
	require.NoError(t, err)

	data, err := json.Marshal(user.Summary())
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, user.ID.String(), out["id"])
	assert.Equal(t, "alice", out["username"])
	assert.Equal(t, true, out["is_active"])
	assert.NotContains(t, string(data), "argon2id")
}
