package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tasklane/task-api/internal/core/domain"
)

type stubVerifier struct {
	claims *domain.Claims
	err    error
	got    string
}

func (v *stubVerifier) VerifyToken(token string) (*domain.Claims, error) {
	v.got = token
	return v.claims, v.err
}

func runAuth(t *testing.T, verifier *stubVerifier, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(verifier)(func(c echo.Context) error {
		called = true
		if c.Get(ContextUserID) != int64(7) {
			t.Fatalf("user_id not set, got %v", c.Get(ContextUserID))
		}
		if c.Get(ContextEmail) != "ana@example.com" {
			t.Fatalf("email not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := &stubVerifier{claims: &domain.Claims{UserID: 7, Email: "ana@example.com"}}

	rec, called := runAuth(t, verifier, "Bearer abc.def.ghi")

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if verifier.got != "abc.def.ghi" {
		t.Fatalf("verifier received %q", verifier.got)
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	verifier := &stubVerifier{claims: &domain.Claims{UserID: 7, Email: "ana@example.com"}}

	if _, called := runAuth(t, verifier, "bearer abc"); !called {
		t.Fatal("lowercase scheme must be accepted")
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	cases := []struct {
		label  string
		header string
		err    error
	}{
		{"missing header", "", nil},
		{"wrong scheme", "Token abc", nil},
		{"empty token", "Bearer ", nil},
		{"invalid token", "Bearer not-a-token", fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)},
		{"expired token", "Bearer old", fmt.Errorf("%w: token expired", domain.ErrUnauthorized)},
	}

	for _, tc := range cases {
		verifier := &stubVerifier{err: tc.err}
		if tc.err == nil {
			verifier.err = errors.New("verifier must not be called")
		}

		rec, called := runAuth(t, verifier, tc.header)
		if called {
			t.Errorf("%s: next must not be called", tc.label)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tc.label, rec.Code)
		}
	}
}

func TestAuthMiddleware_MissingSigningKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	c := e.NewContext(req, httptest.NewRecorder())

	err := Auth(&stubVerifier{err: domain.ErrMissingSigningKey})(func(echo.Context) error {
		t.Fatal("should not reach next")
		return nil
	})(c)

	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error to pass through, got %v", err)
	}
}
