package config

import "time"

// RateLimitConfig controls the token bucket guarding the login route.
// The bucket is keyed per client IP, so the defaults describe how many
// credential attempts a single address gets before backing off.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int           // burst size per client
	RefillTokens   int           // tokens returned per interval
	RefillInterval time.Duration // how often tokens are returned
	TTL            time.Duration // how long an idle bucket lives in Redis
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads limiter settings from the environment.  The
// defaults allow a burst of 10 attempts, then one attempt every two
// seconds.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        getenv("RATE_LIMIT_ENABLED", "true") == "true",
		Capacity:       atoi(getenv("RATE_LIMIT_CAPACITY", "10")),
		RefillTokens:   atoi(getenv("RATE_LIMIT_REFILL_TOKENS", "1")),
		RefillInterval: parseDur(getenv("RATE_LIMIT_REFILL_INTERVAL", "2s")),
		TTL:            parseDur(getenv("RATE_LIMIT_TTL", "10m")),
		Prefix:         getenv("RATE_LIMIT_PREFIX", "mageypack:rl"),
		Debug:          getenv("RATE_LIMIT_DEBUG", "false") == "true",
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	// An idle bucket must outlive a few refill cycles or the state
	// expires before it matters.
	if min := 5 * cfg.RefillInterval; cfg.TTL < min {
		cfg.TTL = min
	}
	return cfg
}
