package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"reviewhub/internal/config"
	"reviewhub/internal/ids"
	"reviewhub/internal/models"
	"reviewhub/internal/repository"
	"reviewhub/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

type AuthService struct {
	users        UserStore
	cfg          config.SecurityConfig
	log          zerolog.Logger
	hashPassword func(string) ([]byte, error)
	// dummyHash is compared on unknown emails so both login failures cost
	// one bcrypt comparison.
	dummyHash    func() []byte
}

func NewAuthService(users UserStore, cfg config.SecurityConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:        users,
		cfg:          cfg,
		log:          log,
		hashPassword: security.HashPassword,
		dummyHash:    security.DummyHash,
	}
}

// RegisterInput is validated after trimming and email normalisation. The
// password limit is bcrypt's input limit.
type RegisterInput struct {
	FirstName   string `validate:"required,max=100" label:"first name"`
	LastName    string `validate:"required,max=100" label:"last name"`
	Email       string `validate:"required,email,max=254"`
	Password    string `validate:"required,min=6,max=72"`
	PhoneNumber string
}

type AuthResult struct {
	Token string
	User  models.User
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = models.NormalizeEmail(input.Email)
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)

	if err := checkInput(input); err != nil {
		return AuthResult{}, err
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, fmt.Errorf("lookup email: %w", err)
	}

	passwordHash, err := s.hashPassword(input.Password)
	if err != nil {
		// max=72 counts runes; bcrypt counts bytes.
		if errors.Is(err, security.ErrPasswordTooLong) {
			return AuthResult{}, invalidInput("password must be at most 72 bytes")
		}
		return AuthResult{}, err
	}

	user := models.User{
		ID:           ids.New(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: passwordHash,
	}
	if input.PhoneNumber != "" {
		user.PhoneNumber = &input.PhoneNumber
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can win between lookup and insert.
		if errors.Is(err, repository.ErrEmailExists) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")

	return s.issue(user)
}

type LoginInput struct {
	Email    string
	Password string
}

// Login returns ErrInvalidCredentials for both an unknown email and a wrong
// password so callers cannot tell which one failed.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := models.NormalizeEmail(input.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_, _ = security.VerifyPassword(input.Password, s.dummyHash())
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("lookup email: %w", err)
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
		return AuthResult{}, ErrInvalidCredentials
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("load profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	token, err := security.GenerateAccessToken(s.cfg.JWTSecret, user.ID, s.cfg.TokenTTL)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}
