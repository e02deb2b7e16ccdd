package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carsales/catalog-api/internal/api/middleware"
	"github.com/carsales/catalog-api/internal/pkg/token"
)

// ctxClaims extracts the claims injected by the Auth middleware. Their
// absence means the route was mounted without Auth.
func ctxClaims(c echo.Context) (*token.Claims, error) {
	claims, ok := c.Get(middleware.ClaimsKey).(*token.Claims)
	if !ok || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
