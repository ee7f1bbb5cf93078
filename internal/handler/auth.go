package handler

import (
	"context"  // provides context with timeout for service calls
	"errors"   // sentinel error matching
	"net/http" // HTTP status codes and primitives
	"regexp"   // email shape validation
	"strings"  // string manipulation utilities
	"time"     // timeouts and response timestamps

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/user-account-service/internal/config"  // app configuration
	"github.com/iliyamo/user-account-service/internal/service" // credential lifecycle service
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg  config.Config
	Auth *service.AuthService
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth}
}

// ----- DTOs -----

type signupReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type tokenReq struct {
	Token string `json:"token"`
}
type emailReq struct {
	Email string `json:"email"`
}
type resetPasswordReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type accountPart struct {
	ID            uint64 `json:"id"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}
type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type loginResp struct {
	User   accountPart `json:"user"`
	Access tokenPart   `json:"access"`
}

// forgotPasswordMsg is returned for every forgot-password request so the
// response shape never depends on whether the email is registered.
const forgotPasswordMsg = "If this email is registered and verified, you will receive password reset instructions."

// resendVerificationMsg mirrors the same discipline for the resend endpoint.
const resendVerificationMsg = "If this email is registered and not yet verified, a verification email has been sent."

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// normalizeAndCheckEmail trims, lower-cases and shape-checks an email
// address. It returns the normalized address and whether it is acceptable.
func normalizeAndCheckEmail(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > 320 {
		return "", false
	}
	if strings.Contains(email, "..") || strings.HasPrefix(email, ".") || strings.HasSuffix(email, ".") {
		return "", false
	}
	if !emailPattern.MatchString(email) {
		return "", false
	}
	return email, true
}

// Signup: create an unverified account and trigger the verification email.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email, ok := normalizeAndCheckEmail(req.Email)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email format"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if len(displayName) > 127 {
		displayName = displayName[:127]
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acc, err := h.Auth.Signup(ctx, email, req.Password, displayName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, service.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create account failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registration successful. Verification email sent. Please check your inbox to verify your email address.",
		"user": accountPart{
			ID: acc.ID, Email: acc.Email, DisplayName: acc.DisplayName,
			Role: acc.Role, EmailVerified: acc.EmailVerified,
		},
	})
}

// VerifyEmail: consume a verification token from the emailed link.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.VerifyEmail(ctx, strings.TrimSpace(req.Token)); err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired"})
		case errors.Is(err, service.ErrInvalidToken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Email verified successfully. You can now login to your account.",
	})
}

// ResendVerification: rotate and re-send the verification token. The
// response is identical whether or not the email maps to an account.
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email, ok := normalizeAndCheckEmail(req.Email)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.ResendVerification(ctx, email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resend failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": resendVerificationMsg})
}

// Login: verify credentials and return a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email, ok := normalizeAndCheckEmail(req.Email)
	if !ok || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Login(ctx, email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		case errors.Is(err, service.ErrEmailNotVerified):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "email not verified"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	return c.JSON(http.StatusOK, loginResp{
		User: accountPart{
			ID: res.Account.ID, Email: res.Account.Email, DisplayName: res.Account.DisplayName,
			Role: res.Account.Role, EmailVerified: res.Account.EmailVerified,
		},
		Access: tokenPart{Token: res.Access.Token, Expires: res.Access.Exp},
	})
}

// ForgotPassword: start the reset cycle. Always answers with the same
// generic success body so the endpoint cannot be used to probe for
// registered emails.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email, ok := normalizeAndCheckEmail(req.Email)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.ForgotPassword(ctx, email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordMsg})
}

// ResetPassword: consume a reset token and install the new password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}
	if req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.ResetPassword(ctx, strings.TrimSpace(req.Token), req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, service.ErrTokenExpired):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired"})
		case errors.Is(err, service.ErrInvalidToken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Password reset successful. You can now login with your new password.",
	})
}

// Me: return the authenticated account's public profile.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := c.Get("account_id").(uint64)
	if !ok || id == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acc, err := h.Auth.Account(ctx, id)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, accountPart{
		ID: acc.ID, Email: acc.Email, DisplayName: acc.DisplayName,
		Role: acc.Role, EmailVerified: acc.EmailVerified,
	})
}
