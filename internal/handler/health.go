package handler // declare the package name; contains HTTP handlers

import (
	"context"      // context with timeout for the DB ping
	"database/sql" // access to the connection pool
	"net/http"     // net/http provides status codes and response helpers
	"time"         // ping timeout

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health returns a health‑check endpoint used by load balancers and
// monitoring systems.  It pings the database with a short timeout so a
// lost MySQL connection shows up as 503 instead of a healthy "ok".
func Health(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "error": "database unreachable"})
		}
		return c.String(http.StatusOK, "ok") // write "ok" with a 200 OK status
	}
}
