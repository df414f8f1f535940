package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atinyakov/ebudget/internal/models"
	"github.com/atinyakov/ebudget/internal/service"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	RegisterFunc func(ctx context.Context, name, email, password string) (models.User, error)
	LoginFunc    func(ctx context.Context, email, password string) (models.User, error)
}

func (f *fakeAuthService) Register(ctx context.Context, name, email, password string) (models.User, error) {
	return f.RegisterFunc(ctx, name, email, password)
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (models.User, error) {
	return f.LoginFunc(ctx, email, password)
}

func TestAuthHandler_Register(t *testing.T) {
	alice := models.User{ID: 7, Name: "Alice", Email: "a@x.io", APIToken: "tok"}
	tests := []struct {
		name           string
		body           string
		service        *fakeAuthService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name: "validation error",
			body: `{"name":"","email":"a@x.io","password":"secret123"}`,
			service: &fakeAuthService{RegisterFunc: func(ctx context.Context, name, email, password string) (models.User, error) {
				return models.User{}, &service.ValidationError{Message: "The name field is required."}
			}},
			expectedCode:   http.StatusUnprocessableEntity,
			expectedSubstr: "The name field is required.",
		},
		{
			name: "storage failure",
			body: `{"name":"Alice","email":"a@x.io","password":"secret123"}`,
			service: &fakeAuthService{RegisterFunc: func(ctx context.Context, name, email, password string) (models.User, error) {
				return models.User{}, errors.New("db down")
			}},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "Server Error",
		},
		{
			name: "created",
			body: `{"name":"Alice","email":"a@x.io","password":"secret123"}`,
			service: &fakeAuthService{RegisterFunc: func(ctx context.Context, name, email, password string) (models.User, error) {
				if name != "Alice" || email != "a@x.io" || password != "secret123" {
					t.Errorf("unexpected args %q %q %q", name, email, password)
				}
				return alice, nil
			}},
			expectedCode:   http.StatusCreated,
			expectedSubstr: `"api_token":"tok"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/register", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service}
			h.Register(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &fakeAuthService{LoginFunc: func(ctx context.Context, email, password string) (models.User, error) {
		if password != "right" {
			return models.User{}, service.ErrInvalidCredentials
		}
		return models.User{ID: 3, Email: email, APIToken: "abc"}, nil
	}}
	h := &AuthHandler{AuthService: svc}

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"email":"a@x.io","password":"wrong"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var msg models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil || msg.Message == "" {
		t.Fatalf("expected message body, got %q (%v)", rec.Body.String(), err)
	}

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"email":"a@x.io","password":"right"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var u models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.ID != 3 || u.APIToken != "abc" {
		t.Errorf("unexpected user %+v", u)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q", got)
	}
}
