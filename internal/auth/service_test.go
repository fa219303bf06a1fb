package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/frahmantamala/chat-users/internal"
	"github.com/frahmantamala/chat-users/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const testSecret = "a-test-secret-that-is-at-least-32-chars"

type mockRepository struct {
	users       map[string]*auth.User
	credentials map[string]*auth.Credentials
	shouldFail  bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:       make(map[string]*auth.User),
		credentials: make(map[string]*auth.Credentials),
	}
}

func (m *mockRepository) SetShouldFail(fail bool) {
	m.shouldFail = fail
}

func (m *mockRepository) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	if m.shouldFail {
		return nil, errors.New("database unavailable")
	}
	return m.users[userID], nil
}

func (m *mockRepository) GetCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	if m.shouldFail {
		return nil, errors.New("database unavailable")
	}
	return m.credentials[email], nil
}

var _ = Describe("JWTTokenGenerator", func() {
	var gen *auth.JWTTokenGenerator

	BeforeEach(func() {
		gen = auth.NewJWTTokenGenerator(testSecret, time.Hour)
	})

	It("should round-trip the user id and email", func() {
		token, err := gen.GenerateAccessToken("u1", "u1@mail.com")
		Expect(err).NotTo(HaveOccurred())

		claims, err := gen.ValidateToken(token)
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.UserID).To(Equal("u1"))
		Expect(claims.Email).To(Equal("u1@mail.com"))
	})

	It("should report expired tokens", func() {
		expired := auth.NewJWTTokenGenerator(testSecret, time.Hour)
		expired.AccessTokenTTL = -time.Minute

		token, err := expired.GenerateAccessToken("u1", "u1@mail.com")
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.ValidateToken(token)
		Expect(errors.Is(err, internal.ErrTokenExpired)).To(BeTrue())
	})

	It("should reject tokens signed with another secret", func() {
		other := auth.NewJWTTokenGenerator("another-secret-that-is-at-least-32-chars", time.Hour)
		token, err := other.GenerateAccessToken("u1", "u1@mail.com")
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.ValidateToken(token)
		Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeTrue())
	})

	It("should reject unsigned tokens", func() {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &auth.Claims{UserID: "u1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.ValidateToken(token)
		Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeTrue())
	})

	It("should fall back to a default TTL", func() {
		Expect(auth.NewJWTTokenGenerator(testSecret, 0).AccessTokenTTL).To(Equal(15 * time.Minute))
	})
})

var _ = Describe("Password hashing", func() {
	It("should verify the original password only", func() {
		hash, err := auth.NewBcryptHasher(4).HashPassword("s3cret")
		Expect(err).NotTo(HaveOccurred())

		Expect(auth.VerifyPassword(hash, "s3cret")).To(Succeed())
		Expect(auth.VerifyPassword(hash, "wrong")).NotTo(Succeed())
	})
})

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		repo    *mockRepository
		service *auth.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockRepository()
		service = auth.NewService(repo, auth.NewJWTTokenGenerator(testSecret, time.Hour), slogger)

		hash, err := auth.HashPassword("password", 4)
		Expect(err).NotTo(HaveOccurred())
		repo.credentials["bob@mail.com"] = &auth.Credentials{UserID: "u-bob", PasswordHash: hash, Active: true}
		repo.users["u-bob"] = &auth.User{ID: "u-bob", Email: "bob@mail.com", Role: auth.RoleUser}
	})

	Describe("Authenticate", func() {
		It("should issue a bearer token for valid credentials", func() {
			tokens, err := service.Authenticate(ctx, auth.LoginDTO{Email: " Bob@Mail.com ", Password: "password"})

			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.TokenType).To(Equal("Bearer"))

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("u-bob"))
		})

		It("should reject a wrong password", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "bob@mail.com", Password: "nope"})
			Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(BeTrue())
		})

		It("should reject an unknown email", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "eve@mail.com", Password: "password"})
			Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(BeTrue())
		})

		It("should reject an inactive account", func() {
			repo.credentials["bob@mail.com"].Active = false
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "bob@mail.com", Password: "password"})
			Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(BeTrue())
		})

		It("should validate the payload", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "not-an-email"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("should surface storage failures as internal errors", func() {
			repo.SetShouldFail(true)
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "bob@mail.com", Password: "password"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
		})
	})

	Describe("CurrentUser", func() {
		It("should load the user behind the claims", func() {
			u, err := service.CurrentUser(ctx, &auth.Claims{UserID: "u-bob"})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Email).To(Equal("bob@mail.com"))
		})

		It("should reject claims for a deleted user", func() {
			_, err := service.CurrentUser(ctx, &auth.Claims{UserID: "u-gone"})
			Expect(errors.Is(err, internal.ErrUnauthorized)).To(BeTrue())
		})

		It("should reject empty claims", func() {
			_, err := service.CurrentUser(ctx, &auth.Claims{})
			Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeTrue())
		})
	})
})
