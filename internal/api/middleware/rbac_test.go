package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carsales/catalog-api/internal/core/domain"
)

func runRBAC(t *testing.T, role any) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set(RoleKey, role)
	}

	called := false
	handler := RBAC(domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called
}

func TestRBAC_AllowsAdmin(t *testing.T) {
	rec, called := runRBAC(t, domain.RoleAdmin)
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_DeniesUser(t *testing.T) {
	rec, called := runRBAC(t, domain.RoleUser)
	if called {
		t.Fatalf("next handler must not be called")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRBAC_DeniesMissingOrUntypedRole(t *testing.T) {
	for _, role := range []any{nil, "Admin"} {
		rec, called := runRBAC(t, role)
		if called || rec.Code != http.StatusForbidden {
			t.Fatalf("role %v: expected 403 without calling next, got %d", role, rec.Code)
		}
	}
}
