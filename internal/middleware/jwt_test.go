package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-account-service/internal/utils"
)

func runProtected(t *testing.T, authHeader string, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	require.NoError(t, handler(c))
	return rec, c
}

func TestJWTAuth_InjectsIdentity(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 42, "a@x.com", "USER", 60)
	require.NoError(t, err)

	rec, c := runProtected(t, "Bearer "+at.Token, JWTAuth("secret"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), c.Get("account_id"))
	assert.Equal(t, "a@x.com", c.Get("email"))
	assert.Equal(t, "USER", c.Get("role"))
}

func TestJWTAuth_Rejects(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 42, "a@x.com", "USER", 60)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + at.Token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := runProtected(t, tc.header, JWTAuth("secret"))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	userToken, err := utils.NewAccessToken("secret", 7, "u@x.com", "USER", 60)
	require.NoError(t, err)

	rec, _ := runProtected(t, "Bearer "+userToken.Token, JWTAuth("secret"), RequireRole("USER", "ADMIN"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = runProtected(t, "Bearer "+userToken.Token, JWTAuth("secret"), RequireRole("ADMIN"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// No identity in context at all.
	rec, _ = runProtected(t, "", RequireRole("USER"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
