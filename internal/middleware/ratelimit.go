// Package middleware holds echo middleware shared by the HTTP API.
package middleware

import (
    "fmt"
    "log"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/airport-checkin/internal/config"
    "github.com/iliyamo/airport-checkin/internal/service"
)

// takeToken refills the bucket at KEYS[1] by whole intervals, then tries to
// take one token.  It returns {allowed, tokens left, ms until next token}.
var takeToken = redis.NewScript(`
local now      = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill   = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local stamp  = tonumber(redis.call('HGET', KEYS[1], 'stamp'))
if tokens == nil or stamp == nil then
    tokens, stamp = capacity, now
end

local steps = math.floor(math.max(0, now - stamp) / interval)
if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    stamp  = stamp + steps * interval
end

local allowed, wait = 0, 0
if tokens >= 1 then
    allowed, tokens = 1, tokens - 1
else
    wait = math.max(0, interval - (now - stamp))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'stamp', stamp)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[5]))
return {allowed, tokens, wait}
`)

type bucketResult struct {
    allowed   bool
    remaining int64
    wait      time.Duration
}

// NewTokenBucket returns middleware throttling write requests with a token
// bucket kept in Redis, so every server instance draws from the same budget.
// Requests pass through when the limiter is disabled, when rdb is nil and
// whenever Redis fails; a check-in must not be refused because the limiter
// is down.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := bucketKey(cfg, c)
            vals, err := takeToken.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(),
                cfg.Capacity,
                cfg.Refill,
                cfg.Interval.Milliseconds(),
                int64(cfg.TTL/time.Second),
            ).Result()
            if err != nil {
                if cfg.Debug {
                    log.Printf("rate-limit: redis error for %s: %v", key, err)
                }
                return next(c)
            }
            res, ok := parseBucketResult(vals)
            if !ok {
                if cfg.Debug {
                    log.Printf("rate-limit: unexpected script result for %s: %#v", key, vals)
                }
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
            if res.allowed {
                return next(c)
            }

            secs := int((res.wait + time.Second - 1) / time.Second)
            h.Set("Retry-After", strconv.Itoa(secs))
            if cfg.Debug {
                log.Printf("rate-limit: blocked %s, retry in %s", key, res.wait)
            }
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       service.ReasonRateLimited,
                "message":     "too many check-in requests, retry later",
                "retry_after": secs,
            })
        }
    }
}

func parseBucketResult(vals interface{}) (bucketResult, bool) {
    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 3 {
        return bucketResult{}, false
    }
    return bucketResult{
        allowed:   toInt64(arr[0]) == 1,
        remaining: toInt64(arr[1]),
        wait:      time.Duration(toInt64(arr[2])) * time.Millisecond,
    }, true
}

func toInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        n, _ := strconv.ParseInt(t, 10, 64)
        return n
    }
    return 0
}

// bucketKey names the bucket a request draws from.  The subject is the
// flight id or passport in the route; routes without either fall back to the
// route pattern.
func bucketKey(cfg config.RateLimitConfig, c echo.Context) string {
    client := c.RealIP()
    if client == "" {
        client = "unknown"
    }
    subject := c.Request().Method + " " + c.Path()
    if id := c.Param("id"); id != "" {
        subject = "flight:" + id
    } else if p := c.Param("passport"); p != "" {
        subject = "passport:" + strings.ToUpper(p)
    }

    switch cfg.Scope {
    case config.ScopeClient:
        return fmt.Sprintf("%s:client:%s", cfg.Prefix, client)
    case config.ScopeSubject:
        return fmt.Sprintf("%s:%s", cfg.Prefix, subject)
    }
    return fmt.Sprintf("%s:client:%s:%s", cfg.Prefix, client, subject)
}
