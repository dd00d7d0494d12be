package config

import (
    "strings"
    "time"
)

// SessionConfig defines settings for websocket client sessions.
// SendBuffer is the number of outbound frames queued per client before the
// client is considered too slow and disconnected.  PingPeriod must be
// shorter than PongWait so a healthy client always answers in time.
// MessageRate and MessageBurst bound inbound requests per session.
type SessionConfig struct {
    SendBuffer     int
    WriteWait      time.Duration
    PongWait       time.Duration
    PingPeriod     time.Duration
    MaxMessageSize int64
    MessageRate    float64
    MessageBurst   int
    AllowedOrigins []string
}

// sessionDefaults are the settings used when no environment is set.  A
// request frame carries a handful of short fields; MaxMessageSize leaves
// ample room so only abusive frames hit the limit.
var sessionDefaults = SessionConfig{
    SendBuffer:     256,
    WriteWait:      10 * time.Second,
    PongWait:       60 * time.Second,
    PingPeriod:     54 * time.Second,
    MaxMessageSize: 64 << 10,
    MessageRate:    10,
    MessageBurst:   20,
}

// LoadSessionConfig reads environment variables to build a SessionConfig.
// Defaults are used when variables are not set.
func LoadSessionConfig() SessionConfig {
    d := sessionDefaults
    cfg := SessionConfig{
        SendBuffer:     envInt("WS_SEND_BUFFER", d.SendBuffer),
        WriteWait:      envDur("WS_WRITE_WAIT", d.WriteWait),
        PongWait:       envDur("WS_PONG_WAIT", d.PongWait),
        PingPeriod:     envDur("WS_PING_PERIOD", 0),
        MaxMessageSize: int64(envInt("WS_MAX_MESSAGE_BYTES", int(d.MaxMessageSize))),
        MessageRate:    envFloat("WS_MESSAGE_RATE", d.MessageRate),
        MessageBurst:   envInt("WS_MESSAGE_BURST", d.MessageBurst),
        AllowedOrigins: parseList(envStr("WS_ALLOWED_ORIGINS", "")),
    }
    return cfg.Normalized()
}

// Normalized replaces non-positive values with the defaults and derives
// PingPeriod from PongWait when it is unset or not shorter than PongWait.
func (c SessionConfig) Normalized() SessionConfig {
    d := sessionDefaults
    if c.SendBuffer <= 0 { c.SendBuffer = d.SendBuffer }
    if c.WriteWait <= 0 { c.WriteWait = d.WriteWait }
    if c.PongWait <= 0 { c.PongWait = d.PongWait }
    if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
        c.PingPeriod = c.PongWait * 9 / 10
    }
    if c.MaxMessageSize <= 0 { c.MaxMessageSize = d.MaxMessageSize }
    if c.MessageRate <= 0 { c.MessageRate = d.MessageRate }
    if c.MessageBurst <= 0 { c.MessageBurst = d.MessageBurst }
    return c
}

// DefaultSessionConfig returns the settings used when no environment is set.
func DefaultSessionConfig() SessionConfig {
    return SessionConfig{}.Normalized()
}

func parseList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}
