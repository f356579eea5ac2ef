package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/wanderhub/internal"
	"github.com/frahmantamala/wanderhub/internal/user"
)

const tokenTypeBearer = "bearer"

type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

type Registrar interface {
	Register(ctx context.Context, dto user.RegisterDTO) (*user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID int64) (string, time.Time, error)
}

// Service is the main auth service with dependencies
type Service struct {
	users     CredentialStore
	registrar Registrar
	tokens    TokenIssuer
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(users CredentialStore, registrar Registrar, tokens TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		users:     users,
		registrar: registrar,
		tokens:    tokens,
		now:       time.Now,
		logger:    logger,
	}
}

// Login exchanges email and password for a bearer token.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	u, err := s.users.GetByEmail(ctx, dto.Email)
	if err != nil {
		return AuthTokens{}, err
	}
	if u == nil {
		s.logger.Info("login failed: unknown email")
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := user.VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		s.logger.Info("login failed: wrong password", "user_id", u.ID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !u.IsActiveUser() {
		return AuthTokens{}, internal.ErrInactiveAccount
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(u.ID)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user logged in", "user_id", u.ID)
	return AuthTokens{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(expiresAt.Sub(s.now()).Round(time.Second) / time.Second),
	}, nil
}

func (s *Service) Register(ctx context.Context, dto user.RegisterDTO) (*user.User, error) {
	return s.registrar.Register(ctx, dto)
}
