package clinicauth

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config is the full configuration tree. Zero values are filled from
// defaultConfig at Build time; validation failures abort Build rather
// than surfacing later mid-flight.
type Config struct {
	Gateway GatewayConfig
	Token   TokenConfig
	Cache   CacheConfig
	Guard   GuardConfig
	Events  EventConfig
	Metrics MetricsConfig
}

// GatewayConfig configures the REST boundary.
type GatewayConfig struct {
	// BaseURL is the API root including the /api prefix.
	BaseURL string
	// Timeout bounds each request when no custom HTTP client is set.
	Timeout time.Duration
	// UserAgent is sent on every request.
	UserAgent string
	// AllowInsecure permits a plain http BaseURL. Development only; the
	// bearer token travels on every request.
	AllowInsecure bool
}

// TokenConfig configures local credential handling.
type TokenConfig struct {
	// ExpirySkew counts against the token: one expiring within the skew
	// of now is treated as already expired, so a request started on it
	// is not doomed to a mid-flight rejection.
	ExpirySkew time.Duration
}

// CacheConfig configures the persistent session cache.
type CacheConfig struct {
	// RecordTTL bounds how stale a cached user/clinic record may grow on
	// TTL-capable backends (Redis). Zero keeps records until cleared.
	RecordTTL time.Duration
}

// GuardConfig carries route-guard policy knobs.
type GuardConfig struct {
	// EnforceClinicActive redirects users of a non-active clinic to the
	// clinic-inactive screen. Off by default: the portal currently
	// bypasses this check, and flipping it is a deliberate decision.
	EnforceClinicActive bool
}

// EventConfig configures the async session-event dispatcher, which is
// on by default.
type EventConfig struct {
	Disabled   bool
	BufferSize int
	// BlockIfFull makes Emit wait for buffer space instead of the
	// default shed-and-count behavior. Session operations then stall on
	// a slow sink; leave it off unless losing events is worse.
	BlockIfFull bool
}

// MetricsConfig controls the in-process counters, on by default.
// Disabled metrics are no-ops.
type MetricsConfig struct {
	Disabled bool
}

func defaultConfig() Config {
	return Config{
		Gateway: GatewayConfig{
			Timeout:   15 * time.Second,
			UserAgent: "clinicauth/1",
		},
		Token: TokenConfig{
			ExpirySkew: 30 * time.Second,
		},
		Cache: CacheConfig{
			RecordTTL: 30 * 24 * time.Hour,
		},
		Events: EventConfig{
			BufferSize: 64,
		},
	}
}

func validateConfig(cfg Config) error {
	if cfg.Gateway.BaseURL == "" {
		return errors.New("gateway base URL required")
	}
	u, err := url.Parse(cfg.Gateway.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid gateway base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
	case "http":
		if !cfg.Gateway.AllowInsecure {
			return errors.New("http base URL requires AllowInsecure")
		}
	default:
		return fmt.Errorf("unsupported base URL scheme %q", u.Scheme)
	}
	if cfg.Gateway.Timeout < 0 {
		return errors.New("negative gateway timeout")
	}
	if cfg.Token.ExpirySkew < 0 || cfg.Token.ExpirySkew > 5*time.Minute {
		return errors.New("token expiry skew out of range")
	}
	if cfg.Cache.RecordTTL < 0 {
		return errors.New("negative cache record TTL")
	}
	if !cfg.Events.Disabled && cfg.Events.BufferSize < 0 {
		return errors.New("negative event buffer size")
	}
	return nil
}

// mergeDefaults fills unset scalar fields from the defaults so a caller
// providing only a BaseURL gets sane behavior everywhere else.
func mergeDefaults(cfg Config) Config {
	def := defaultConfig()
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = def.Gateway.Timeout
	}
	if cfg.Gateway.UserAgent == "" {
		cfg.Gateway.UserAgent = def.Gateway.UserAgent
	}
	if cfg.Token.ExpirySkew == 0 {
		cfg.Token.ExpirySkew = def.Token.ExpirySkew
	}
	if cfg.Cache.RecordTTL == 0 {
		cfg.Cache.RecordTTL = def.Cache.RecordTTL
	}
	if cfg.Events.BufferSize == 0 {
		cfg.Events.BufferSize = def.Events.BufferSize
	}
	return cfg
}
