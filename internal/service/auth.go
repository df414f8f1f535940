// Package service provides the business logic of the backend: accounts and
// tokens, categories and transactions. Persistence is delegated to
// repository interfaces.
package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/ebudget/internal/models"
	"github.com/atinyakov/ebudget/internal/repository"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// CreateUser stores a new account. A taken email yields repository.ErrDuplicate.
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	// UserByEmail returns repository.ErrNotFound for an unknown email.
	UserByEmail(ctx context.Context, email string) (models.User, error)
	// UserByToken returns repository.ErrNotFound for an unknown token.
	UserByToken(ctx context.Context, token string) (models.User, error)
}

// Service implements authentication operations by delegating
// to an AuthRepository.
type Service struct {
	repo     AuthRepository
	cost     int
	newToken func() string
}

// AuthOption configures a Service.
type AuthOption func(*Service)

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *Service) { s.cost = cost }
}

// WithTokenGenerator overrides how api tokens are minted.
func WithTokenGenerator(gen func() string) AuthOption {
	return func(s *Service) { s.newToken = gen }
}

// NewAuthService constructs a new Service using the provided repository.
func NewAuthService(repo AuthRepository, opts ...AuthOption) *Service {
	s := &Service{
		repo:     repo,
		cost:     bcrypt.DefaultCost,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account and returns it with a fresh api token.
func (s *Service) Register(ctx context.Context, name, email, password string) (models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	switch {
	case name == "":
		return models.User{}, invalid("The name field is required.")
	case email == "":
		return models.User{}, invalid("The email field is required.")
	case password == "":
		return models.User{}, invalid("The password field is required.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, invalid("The email must be a valid email address.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.repo.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		APIToken:     s.newToken(),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return models.User{}, invalid("The email has already been taken.")
	}
	return u, err
}

// Login checks the password of email and returns the account.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, invalid("The email and password fields are required.")
	}
	u, err := s.repo.UserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Authenticate resolves a bearer token to its user id.
func (s *Service) Authenticate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidCredentials
	}
	u, err := s.repo.UserByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}
