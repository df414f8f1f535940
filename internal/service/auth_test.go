package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/ebudget/internal/models"
	"github.com/atinyakov/ebudget/internal/repository"
)

type mockAuthRepo struct {
	CreateUserFunc  func(ctx context.Context, u models.User) (models.User, error)
	UserByEmailFunc func(ctx context.Context, email string) (models.User, error)
	UserByTokenFunc func(ctx context.Context, token string) (models.User, error)
}

func (m *mockAuthRepo) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	return m.CreateUserFunc(ctx, u)
}
func (m *mockAuthRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return m.UserByEmailFunc(ctx, email)
}
func (m *mockAuthRepo) UserByToken(ctx context.Context, token string) (models.User, error) {
	return m.UserByTokenFunc(ctx, token)
}

func newTestAuth(repo AuthRepository) *Service {
	return NewAuthService(repo,
		WithBcryptCost(bcrypt.MinCost),
		WithTokenGenerator(func() string { return "fixed-token" }),
	)
}

func TestRegister_Success(t *testing.T) {
	var stored models.User
	repo := &mockAuthRepo{
		CreateUserFunc: func(_ context.Context, u models.User) (models.User, error) {
			stored = u
			u.ID = 7
			return u, nil
		},
	}
	svc := newTestAuth(repo)

	u, err := svc.Register(context.Background(), " Ann ", "ann@example.com", "secret")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.ID != 7 || u.APIToken != "fixed-token" || u.Name != "Ann" {
		t.Errorf("Register = %+v", u)
	}
	if err := bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("secret")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{})
	cases := []struct {
		name, user, email, password string
	}{
		{"no name", "", "ann@example.com", "secret"},
		{"no email", "Ann", "", "secret"},
		{"bad email", "Ann", "not-an-email", "secret"},
		{"no password", "Ann", "ann@example.com", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.user, tc.email, tc.password)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := &mockAuthRepo{
		CreateUserFunc: func(context.Context, models.User) (models.User, error) {
			return models.User{}, repository.ErrDuplicate
		},
	}
	_, err := newTestAuth(repo).Register(context.Background(), "Ann", "ann@example.com", "secret")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != "The email has already been taken." {
		t.Errorf("expected taken email error, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	repo := &mockAuthRepo{
		UserByEmailFunc: func(_ context.Context, email string) (models.User, error) {
			if email != "ann@example.com" {
				return models.User{}, repository.ErrNotFound
			}
			return models.User{ID: 7, Email: email, PasswordHash: hash, APIToken: "tok"}, nil
		},
	}
	svc := newTestAuth(repo)

	u, err := svc.Login(context.Background(), "ann@example.com", "secret")
	if err != nil || u.APIToken != "tok" {
		t.Fatalf("Login = %+v, %v", u, err)
	}
	if _, err := svc.Login(context.Background(), "ann@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := svc.Login(context.Background(), "bob@example.com", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v", err)
	}
	var verr *ValidationError
	if _, err := svc.Login(context.Background(), "", ""); !errors.As(err, &verr) {
		t.Errorf("empty fields: got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	dbErr := errors.New("db down")
	repo := &mockAuthRepo{
		UserByTokenFunc: func(_ context.Context, token string) (models.User, error) {
			switch token {
			case "tok":
				return models.User{ID: 7}, nil
			case "broken":
				return models.User{}, dbErr
			}
			return models.User{}, repository.ErrNotFound
		},
	}
	svc := newTestAuth(repo)

	if id, err := svc.Authenticate(context.Background(), "tok"); err != nil || id != 7 {
		t.Errorf("Authenticate(tok) = %d, %v", id, err)
	}
	if _, err := svc.Authenticate(context.Background(), "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown token: got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("empty token: got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "broken"); !errors.Is(err, dbErr) {
		t.Errorf("db error: got %v", err)
	}
}
