package config // package config loads application configuration from environment variables

import (
	"log"      // log is used to report configuration errors and halt execution
	"os"       // os provides access to environment variables
	"strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time‑to‑live in minutes
	VerifyTTLHours int    // email verification token time‑to‑live in hours
	ResetTTLMin    int    // password reset token time‑to‑live in minutes
	BcryptCost     int    // bcrypt cost for password hashing
	AppBaseURL     string // public base URL used when building email links
	SMTPHost       string // SMTP server host for outgoing mail
	SMTPPort       string // SMTP server port
	SMTPUser       string // SMTP auth username (empty disables auth)
	SMTPPass       string // SMTP auth password
	SMTPFrom       string // From address on outgoing mail
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Token TTLs and the
// bcrypt cost have defaults so a minimal .env still boots: the verification
// window defaults to 24 hours, the reset window to 60 minutes and the
// bcrypt cost to 12.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),              // environment (dev/test/prod)
		Port:           must("APP_PORT"),             // port to bind the HTTP server
		DBUser:         must("DB_USER"),              // database user
		DBPass:         os.Getenv("DB_PASS"),         // database password (empty allowed)
		DBHost:         must("DB_HOST"),              // database host
		DBPort:         must("DB_PORT"),              // database port
		DBName:         must("DB_NAME"),              // database name
		JWTSecret:      must("JWT_SECRET"),           // secret used for signing JWTs
		AccessTTLMin:   envIntDefault("ACCESS_TOKEN_TTL_MIN", 24*60), // TTL for access tokens in minutes
		VerifyTTLHours: envIntDefault("VERIFY_TOKEN_TTL_HOURS", 24),  // TTL for verification tokens
		ResetTTLMin:    envIntDefault("RESET_TOKEN_TTL_MIN", 60),     // TTL for reset tokens
		BcryptCost:     envIntDefault("BCRYPT_COST", 12),             // bcrypt cost factor
		AppBaseURL:     envStrDefault("APP_BASE_URL", "http://localhost:8080"), // base URL for email links
		SMTPHost:       envStrDefault("SMTP_HOST", "localhost"),      // SMTP host
		SMTPPort:       envStrDefault("SMTP_PORT", "587"),            // SMTP port
		SMTPUser:       os.Getenv("SMTP_USER"),                       // SMTP username (optional)
		SMTPPass:       os.Getenv("SMTP_PASS"),                       // SMTP password (optional)
		SMTPFrom:       envStrDefault("SMTP_FROM", "no-reply@localhost"), // From header on outgoing mail
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envStrDefault returns the value of an environment variable or a default
// when it is unset or empty.
func envStrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envIntDefault is like envStrDefault but converts the retrieved string into
// an integer.  If conversion fails, the application logs a fatal error and
// exits rather than running with a silently wrong value.
func envIntDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
