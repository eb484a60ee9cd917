package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/voltio/energy-tracking-api/internal/core/domain"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
)

type stubAuthService struct {
	signUpFn func(ctx context.Context, in ports.SignUpInput) (*domain.User, error)
	loginFn  func(ctx context.Context, email, password string, channel domain.TokenChannel) (string, *domain.User, error)
	forgotFn func(ctx context.Context, email string) error
}

func (s *stubAuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	return s.signUpFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string, channel domain.TokenChannel) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password, channel)
}

func (s *stubAuthService) Logout(context.Context, string) error { return nil }

func (s *stubAuthService) ValidateToken(context.Context, string) (string, error) {
	return "", domain.ErrUnauthorized
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) error {
	if s.forgotFn != nil {
		return s.forgotFn(ctx, email)
	}
	return nil
}

func (s *stubAuthService) ResetPassword(context.Context, string, string) error { return nil }

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		signUpFn: func(_ context.Context, in ports.SignUpInput) (*domain.User, error) {
			if in.Kind != domain.KindIndividual || in.Cpf != "52998224725" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Email: in.Email, Kind: in.Kind}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"email":"ana@example.com","password":"correct-horse","kind":"individual","first_name":"Ana","last_name":"Souza","cpf":"52998224725"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["id"] != "u1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	// Unknown kind never reaches the service.
	c, _ := newTestContext(t, http.MethodPost, "/auth/register",
		`{"email":"ana@example.com","password":"correct-horse","kind":"alien"}`)

	err := h.Register(c)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Msg, "kind") {
		t.Fatalf("expected message naming kind, got %q", verr.Msg)
	}
}

func TestAuthHandler_Login_PassesChannelThrough(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string, channel domain.TokenChannel) (string, *domain.User, error) {
			if channel != domain.ChannelMobile {
				t.Fatalf("expected mobile channel, got %s", channel)
			}
			return "signed-token", &domain.User{ID: "u1", Email: email}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/login",
		`{"email":"ana@example.com","password":"correct-horse","channel":"mobile"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "signed-token" {
		t.Fatalf("token missing from response: %+v", resp)
	}
}

// The forgot-password endpoint answers 202 with the same body for any email.
func TestAuthHandler_ForgotPassword_AlwaysAccepted(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	for _, email := range []string{"known@example.com", "ghost@example.com"} {
		c, rec := newTestContext(t, http.MethodPost, "/auth/forgot-password",
			`{"email":"`+email+`"}`)
		if err := h.ForgotPassword(c); err != nil {
			t.Fatalf("handler error for %s: %v", email, err)
		}
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202 for %s, got %d", email, rec.Code)
		}
	}
}
