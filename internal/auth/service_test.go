package auth

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/wanderhub/internal"
	"github.com/frahmantamala/wanderhub/internal/user"
	"github.com/frahmantamala/wanderhub/pkg/logger"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Auth Service", func() {
	var (
		ctx     context.Context
		users   *mockUserStore
		tokens  *JWTTokenGenerator
		service *Service
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		users = newMockUserStore()
		users.add(testUser(1, "ana@example.com", "member", true, false))
		users.add(testUser(2, "gone@example.com", "member", false, false))

		tokens = NewJWTTokenGenerator(testSecret, 30*time.Minute, "wanderhub")
		service = NewService(users, users, tokens, logger.Discard())
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("issues a bearer token for the right password", func() {
			result, err := service.Login(ctx, LoginDTO{Email: "ana@example.com", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.TokenType).To(gomega.Equal("bearer"))
			gomega.Expect(result.ExpiresIn).To(gomega.BeNumerically("~", 1800, 1))

			claims, err := tokens.VerifyToken(result.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.Subject).To(gomega.Equal("1"))
		})

		ginkgo.It("gives the same answer for an unknown email and a wrong password", func() {
			_, unknown := service.Login(ctx, LoginDTO{Email: "nobody@example.com", Password: "correct_password"})
			_, wrong := service.Login(ctx, LoginDTO{Email: "ana@example.com", Password: "wrong_password"})

			gomega.Expect(errors.Is(unknown, internal.ErrInvalidCredentials)).To(gomega.BeTrue())
			gomega.Expect(errors.Is(wrong, internal.ErrInvalidCredentials)).To(gomega.BeTrue())
		})

		ginkgo.It("refuses inactive accounts after checking the password", func() {
			_, err := service.Login(ctx, LoginDTO{Email: "gone@example.com", Password: "correct_password"})
			gomega.Expect(errors.Is(err, internal.ErrInactiveAccount)).To(gomega.BeTrue())

			_, err = service.Login(ctx, LoginDTO{Email: "gone@example.com", Password: "wrong_password"})
			gomega.Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(gomega.BeTrue())
		})

		ginkgo.It("validates the request", func() {
			_, err := service.Login(ctx, LoginDTO{})
			appErr := internal.FromError(err)
			gomega.Expect(appErr.Kind).To(gomega.Equal(internal.KindValidation))
			gomega.Expect(appErr.Details.(internal.ValidationErrors).Errors).To(gomega.HaveLen(2))
		})
	})

	ginkgo.Describe("Register", func() {
		ginkgo.It("delegates to the account registrar", func() {
			u, err := service.Register(ctx, user.RegisterDTO{Email: "bo@example.com", Name: "Bo", Password: "long-enough"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(u.Email).To(gomega.Equal("bo@example.com"))
			gomega.Expect(users.registered).To(gomega.HaveLen(1))
		})
	})
})
