package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/carsales/catalog-api/internal/pkg/token"
)

// Context keys set by Auth.
const (
	ClaimsKey = "claims"
	RoleKey   = "role"
	EmailKey  = "email"
)

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// Auth validates the bearer token and injects its claims into the context.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: ClaimsKey,
		ParseTokenFunc: func(_ echo.Context, auth string) (interface{}, error) {
			return verifier.Verify(auth)
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := c.Get(ClaimsKey).(*token.Claims)
			if !ok {
				return
			}
			c.Set(RoleKey, claims.Role)
			c.Set(EmailKey, claims.Email)
		},
		ErrorHandler: func(_ echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token").SetInternal(err)
		},
	})
}
