package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/toolrent/rental-system/internal/core/domain"
	"github.com/toolrent/rental-system/internal/core/ports"
)

// AuthService implements registration, login and token verification.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens *TokenManager
	log    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens *TokenManager, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log}
}

// Register hashes the password and inserts the user. Email uniqueness is
// left to the store, which reports a clash as domain.ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (int64, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" || in.Password == "" {
		return 0, domain.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return 0, err
	}

	id, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			s.log.Error().Err(err).Msg("failed to create user")
		}
		return 0, err
	}

	s.log.Info().Int64("user_id", id).Msg("user registered")
	return id, nil
}

// Authenticate checks the credentials and issues a session token. An unknown
// email and a wrong password produce the same error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(ctx, user.PasswordHash, password); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user logged in")
	return &ports.AuthResult{Token: token, Profile: user.Profile()}, nil
}

// VerifyToken returns the user id embedded in a valid token.
func (s *AuthService) VerifyToken(_ context.Context, token string) (int64, error) {
	return s.tokens.Verify(token)
}

// Profile loads the public profile of userID.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
