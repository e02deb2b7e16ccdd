package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carsales/catalog-api/internal/core/domain"
	"github.com/carsales/catalog-api/internal/pkg/token"
)

func newIssuer(secret string) *token.Issuer {
	return token.NewIssuer(token.Config{Secret: secret, Issuer: "CarSalesAPI", Audience: "CarSalesAPI", TTL: time.Hour})
}

func runAuth(t *testing.T, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(newIssuer("secret"))(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	signed, _, err := newIssuer("secret").Issue(&domain.Account{ID: 42, Email: "alice@example.com", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	called := false
	rec := runAuth(t, "Bearer "+signed, func(c echo.Context) error {
		called = true
		if c.Get(EmailKey) != "alice@example.com" {
			t.Fatalf("email not set")
		}
		if c.Get(RoleKey) != domain.RoleAdmin {
			t.Fatalf("role not set")
		}
		claims, ok := c.Get(ClaimsKey).(*token.Claims)
		if !ok || claims.Subject != "42" {
			t.Fatalf("claims not set: %+v", c.Get(ClaimsKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	foreign, _, err := newIssuer("other-secret").Issue(&domain.Account{ID: 1, Email: "x@example.com", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	cases := map[string]string{
		"missing header":    "",
		"wrong scheme":      "Token abc",
		"garbage token":     "Bearer not-a-token",
		"foreign signature": "Bearer " + foreign,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec := runAuth(t, header, func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
