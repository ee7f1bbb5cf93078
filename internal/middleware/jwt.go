package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/user-account-service/internal/utils" // bearer token validation
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the embedded account identity into the request context.  The
// provided secret must match the one used when issuing tokens.  This
// middleware should wrap protected routes so that handlers can access the
// authenticated account via `c.Get("account_id")`, `c.Get("email")` and
// `c.Get("role")`.
//
// Validation is delegated to utils.ValidateAccessToken, which fails closed:
// a missing header, a non-HMAC signing method, a bad signature, malformed
// claims or an expired token all produce the same 401 response.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Read the Authorization header.  A valid header starts with
			// "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			ident, err := utils.ValidateAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Store the identity claims in the context for handlers and
			// downstream middleware.
			c.Set("account_id", ident.AccountID)
			c.Set("email", ident.Email)
			c.Set("role", ident.Role)
			return next(c)
		}
	}
}
