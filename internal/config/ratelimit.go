package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig describes a token bucket applied to incoming requests.
// The global default is loaded from the environment; the auth routes derive
// tighter per-route buckets from it via WithBudget so a burst of signups or
// login attempts is cut off long before the generic API limit.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	if minTTL := 5 * def.RefillInterval; def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}

// WithBudget returns a copy of the config allowing `capacity` requests with
// one token refilled every `refillEvery`.  The TTL is stretched so bucket
// state survives the full refill window.
func (c RateLimitConfig) WithBudget(capacity int, refillEvery time.Duration) RateLimitConfig {
	out := c
	out.Capacity = capacity
	out.RefillTokens = 1
	out.RefillInterval = refillEvery
	if out.Capacity < 1 {
		out.Capacity = 1
	}
	if out.RefillInterval <= 0 {
		out.RefillInterval = time.Second
	}
	if minTTL := 5 * out.RefillInterval; out.TTL < minTTL {
		out.TTL = minTTL
	}
	return out
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}
