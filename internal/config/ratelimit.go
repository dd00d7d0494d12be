package config

import "time"

// Rate limit scopes.  A scope decides which requests share one bucket.
const (
    // ScopeClient gives every client address its own bucket across all
    // write endpoints.
    ScopeClient = "client"
    // ScopeSubject gives every flight (or passport) one bucket shared by
    // all clients, which caps the write pressure on a single seat map.
    ScopeSubject = "subject"
    // ScopeClientSubject buckets per client and flight/passport pair.
    ScopeClientSubject = "client_subject"
)

// RateLimitConfig configures the Redis token bucket in front of the seat
// assignment, status and baggage endpoints.  A bucket holds up to Capacity
// tokens and regains Refill tokens every Interval.  Idle buckets expire
// after TTL.
type RateLimitConfig struct {
    Enabled  bool
    Capacity int
    Refill   int
    Interval time.Duration
    TTL      time.Duration
    Scope    string
    Prefix   string
    Debug    bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  Check-in desks retry
// quickly after a lost seat, so the default budget is 20 writes with one
// token back every 500ms.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:  envBool("RATE_LIMIT_ENABLED", true),
        Capacity: envInt("RATE_LIMIT_CAPACITY", 20),
        Refill:   envInt("RATE_LIMIT_REFILL", 1),
        Interval: envDur("RATE_LIMIT_INTERVAL", 500*time.Millisecond),
        TTL:      envDur("RATE_LIMIT_TTL", 10*time.Minute),
        Scope:    envStr("RATE_LIMIT_SCOPE", ScopeClientSubject),
        Prefix:   envStr("RATE_LIMIT_PREFIX", "checkin:rl"),
        Debug:    envBool("RATE_LIMIT_DEBUG", false),
    }
    if cfg.Capacity < 1 {
        cfg.Capacity = 1
    }
    if cfg.Refill < 1 {
        cfg.Refill = 1
    }
    if cfg.Interval <= 0 {
        cfg.Interval = 500 * time.Millisecond
    }
    // a bucket must outlive the time it takes to refill completely
    if full := time.Duration(cfg.Capacity/cfg.Refill+1) * cfg.Interval; cfg.TTL < full {
        cfg.TTL = full
    }
    switch cfg.Scope {
    case ScopeClient, ScopeSubject, ScopeClientSubject:
    default:
        cfg.Scope = ScopeClientSubject
    }
    return cfg
}
