package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"
	"time"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/handler"    // import the handlers that implement endpoint logic
	"github.com/iliyamo/user-account-service/internal/middleware" // import middleware for JWT authentication and rate limiting
	"github.com/iliyamo/user-account-service/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	// The health endpoint can be used by load balancers or monitoring
	// systems to verify that the service and its database are up.
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated credential operations live under
// /v1/auth, while protected endpoints live under /v1.
//
// The credential endpoints carry individual rate limit budgets on top of
// the global default: signup and forgot-password allow 3 requests with one
// token refilled every 5 minutes, login allows 5 with a refill every
// minute.  Buckets are keyed by client IP and route, so one abusive client
// cannot exhaust another's budget.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rdb *redis.Client) {
	rl := config.LoadRateLimitConfig()
	rl.KeyStrategy = "ip_route"

	signupLimit := middleware.NewTokenBucket(rl.WithBudget(3, 5*time.Minute), rdb)
	loginLimit := middleware.NewTokenBucket(rl.WithBudget(5, time.Minute), rdb)
	resetLimit := middleware.NewTokenBucket(rl.WithBudget(3, 5*time.Minute), rdb)

	// Route group under the /v1/auth prefix for operations that do not
	// require an existing session.
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup, signupLimit)
	g.POST("/login", a.Login, loginLimit)
	g.POST("/verify-email", a.VerifyEmail)
	g.POST("/resend-verification", a.ResendVerification, resetLimit)
	g.POST("/forgot-password", a.ForgotPassword, resetLimit)
	g.POST("/reset-password", a.ResetPassword)

	// Group for routes that require a valid access token.  All handlers
	// registered on this group execute the JWTAuth middleware before being
	// invoked.  Both roles may read their own profile.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(a.Cfg.JWTSecret))
	auth.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	auth.GET("/me", a.Me)
}
