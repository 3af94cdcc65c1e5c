// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package auth_test

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/authd/internal/auth"
	"github.com/holomush/authd/internal/gateway"
	"github.com/holomush/authd/pkg/errutil"
)

var _ = Describe("Credential lifecycle", func() {
	const password = "Passw0rdX"

	Describe("Register", func() {
		It("stores a normalized, hashed user", func() {
			user := registerUser("alice_01", "  Alice@Example.COM ", password)

			stored, err := env.Stores.Users.GetByEmail(env.ctx, "alice@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ID).To(Equal(user.ID))
			Expect(stored.Email).To(Equal("alice@example.com"))
			Expect(stored.PasswordHash).NotTo(Equal(password))
			Expect(stored.IsActive).To(BeTrue())
		})

		It("rejects a second user with the same email in any case", func() {
			registerUser("alice_01", "alice@example.com", password)

			_, err := env.Service.Register(env.ctx, "alice_02", "ALICE@example.com", password)
			Expect(err).To(HaveOccurred())
			Expect(auth.KindOf(err)).To(Equal(auth.KindConflict))
		})

		It("rejects a second user with the same username in any case", func() {
			registerUser("alice_01", "alice@example.com", password)

			_, err := env.Service.Register(env.ctx, "ALICE_01", "other@example.com", password)
			Expect(err).To(HaveOccurred())
			Expect(auth.KindOf(err)).To(Equal(auth.KindConflict))
		})
	})

	Describe("Authenticate and Refresh", func() {
		var user *auth.User

		BeforeEach(func() {
			user = registerUser("bob_02", "bob@example.com", password)
		})

		It("issues a bearer pair bound to a stored session", func() {
			pair, err := env.Service.Authenticate(env.ctx, "BOB@example.com", password)
			Expect(err).NotTo(HaveOccurred())
			Expect(pair.TokenType).To(Equal(auth.TokenTypeBearer))
			Expect(sessionCount(user)).To(Equal(1))

			current, err := env.Service.CurrentUser(env.ctx, pair.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(current.ID).To(Equal(user.ID))
		})

		It("does not reveal whether the email or the password was wrong", func() {
			_, wrongPassword := env.Service.Authenticate(env.ctx, "bob@example.com", "Wr0ngPassword")
			_, unknownEmail := env.Service.Authenticate(env.ctx, "nobody@example.com", password)

			Expect(errutil.Code(wrongPassword)).To(Equal(auth.CodeInvalidCredentials))
			Expect(errutil.Code(unknownEmail)).To(Equal(auth.CodeInvalidCredentials))
			Expect(auth.PublicMessage(wrongPassword)).To(Equal(auth.PublicMessage(unknownEmail)))
		})

		It("rotates the refresh token and rejects reuse", func() {
			first, err := env.Service.Authenticate(env.ctx, "bob@example.com", password)
			Expect(err).NotTo(HaveOccurred())

			second, err := env.Service.Refresh(env.ctx, first.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.RefreshToken).NotTo(Equal(first.RefreshToken))
			Expect(sessionCount(user)).To(Equal(1))

			_, err = env.Service.Refresh(env.ctx, first.RefreshToken)
			Expect(errutil.Code(err)).To(Equal(auth.CodeSessionRevoked))

			_, err = env.Service.Refresh(env.ctx, second.AccessToken)
			Expect(errutil.Code(err)).To(Equal(auth.CodeWrongTokenType))
		})

		It("deletes the session when its refresh token is used after expiry", func() {
			var (
				mu  sync.Mutex
				now = time.Now()
			)
			clock := func() time.Time {
				mu.Lock()
				defer mu.Unlock()
				return now
			}
			codec, err := auth.NewTokenCodec(auth.DefaultTokenConfig(testSecret), auth.WithTokenClock(clock))
			Expect(err).NotTo(HaveOccurred())
			svc, err := auth.NewService(env.Stores, auth.NewArgon2idHasher(), codec, auth.WithClock(clock))
			Expect(err).NotTo(HaveOccurred())

			pair, err := svc.Authenticate(env.ctx, "bob@example.com", password)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessionCount(user)).To(Equal(1))

			mu.Lock()
			now = now.Add(codec.Config().RefreshTTL + 24*time.Hour)
			mu.Unlock()

			_, err = svc.Refresh(env.ctx, pair.RefreshToken)
			Expect(errutil.Code(err)).To(Equal(auth.CodeSessionExpired))
			Expect(sessionCount(user)).To(BeZero())

			_, err = svc.Refresh(env.ctx, pair.RefreshToken)
			Expect(errutil.Code(err)).To(Equal(auth.CodeSessionRevoked))
		})

		It("lets exactly one of many concurrent refreshes of the same token win", func() {
			pair, err := env.Service.Authenticate(env.ctx, "bob@example.com", password)
			Expect(err).NotTo(HaveOccurred())

			const callers = 8
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
				codes     []string
			)
			for range callers {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, refreshErr := env.Service.Refresh(env.ctx, pair.RefreshToken)
					mu.Lock()
					defer mu.Unlock()
					if refreshErr == nil {
						successes++
						return
					}
					codes = append(codes, errutil.Code(refreshErr))
				}()
			}
			wg.Wait()

			Expect(successes).To(Equal(1))
			Expect(codes).To(HaveLen(callers - 1))
			for _, code := range codes {
				Expect(code).To(Equal(auth.CodeSessionRevoked))
			}
			Expect(sessionCount(user)).To(Equal(1))
		})
	})

	Describe("Logout", func() {
		It("removes only the session the access token belongs to", func() {
			user := registerUser("carol_03", "carol@example.com", password)
			laptop, err := env.Service.Authenticate(env.ctx, "carol@example.com", password)
			Expect(err).NotTo(HaveOccurred())
			phone, err := env.Service.Authenticate(env.ctx, "carol@example.com", password)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessionCount(user)).To(Equal(2))

			Expect(env.Service.Logout(env.ctx, laptop.AccessToken)).To(Succeed())
			Expect(sessionCount(user)).To(Equal(1))

			_, err = env.Service.Refresh(env.ctx, laptop.RefreshToken)
			Expect(errutil.Code(err)).To(Equal(auth.CodeSessionRevoked))
			_, err = env.Service.Refresh(env.ctx, phone.RefreshToken)
			Expect(err).NotTo(HaveOccurred())

			By("logging out twice")
			Expect(env.Service.Logout(env.ctx, laptop.AccessToken)).To(Succeed())
		})
	})

	Describe("ChangePassword", func() {
		It("revokes every session and accepts only the new password", func() {
			user := registerUser("dave_04", "dave@example.com", password)
			pair, err := env.Service.Authenticate(env.ctx, "dave@example.com", password)
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Service.ChangePassword(env.ctx, user, password, "N3wPassword")).To(Succeed())
			Expect(sessionCount(user)).To(BeZero())

			_, err = env.Service.Refresh(env.ctx, pair.RefreshToken)
			Expect(errutil.Code(err)).To(Equal(auth.CodeSessionRevoked))

			_, err = env.Service.Authenticate(env.ctx, "dave@example.com", password)
			Expect(errutil.Code(err)).To(Equal(auth.CodeInvalidCredentials))
			_, err = env.Service.Authenticate(env.ctx, "dave@example.com", "N3wPassword")
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a wrong current password", func() {
			user := registerUser("erin_05", "erin@example.com", password)

			err := env.Service.ChangePassword(env.ctx, user, "Wr0ngPassword", "N3wPassword")
			Expect(errutil.Code(err)).To(Equal(auth.CodeIncorrectPassword))
		})
	})

	Describe("PurgeExpiredSessions", func() {
		It("deletes expired sessions and keeps live ones", func() {
			user := registerUser("frank_06", "frank@example.com", password)
			_, err := env.Service.Authenticate(env.ctx, "frank@example.com", password)
			Expect(err).NotTo(HaveOccurred())

			stale, err := auth.NewRefreshSession(user.ID, auth.HashSessionToken("stale"), time.Now().Add(-time.Hour))
			Expect(err).NotTo(HaveOccurred())
			_, err = env.Stores.Sessions.Create(env.ctx, stale)
			Expect(err).NotTo(HaveOccurred())

			n, err := env.Service.PurgeExpiredSessions(env.ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(1)))
			Expect(sessionCount(user)).To(Equal(1))
		})
	})

	Describe("Gateway handshake", func() {
		It("identifies a connection by its access token", func() {
			user := registerUser("gina_07", "gina@example.com", password)
			pair, err := env.Service.Authenticate(env.ctx, "gina@example.com", password)
			Expect(err).NotTo(HaveOccurred())

			hs := gateway.NewHandshake(env.Codec)
			identity, err := hs.Connect(env.ctx, "conn-1", gateway.ConnectRequest{
				Auth: map[string]any{"token": pair.AccessToken},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(identity.UserID).To(Equal(user.ID))
			Expect(identity.HasSession).To(BeTrue())

			found, ok := hs.Lookup("conn-1")
			Expect(ok).To(BeTrue())
			Expect(found).To(Equal(identity))

			hs.Disconnect(env.ctx, "conn-1")
			_, ok = hs.Lookup("conn-1")
			Expect(ok).To(BeFalse())
		})

		It("refuses connections without a valid token", func() {
			hs := gateway.NewHandshake(env.Codec)

			_, err := hs.Connect(env.ctx, "conn-2", gateway.ConnectRequest{})
			Expect(errutil.Code(err)).To(Equal(auth.CodeMissingToken))

			_, err = hs.Connect(env.ctx, "conn-3", gateway.ConnectRequest{
				Auth: map[string]any{"token": "garbage"},
			})
			Expect(errutil.Code(err)).To(Equal(auth.CodeInvalidToken))
		})
	})
})
