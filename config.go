package sessionguard

import (
	"errors"
	"time"

	"github.com/cobaltgrid/sessionguard/password"
)

// Config tunes the session guard. Zero values are filled by defaults in
// [New]; a Config passed to [Builder.WithConfig] is validated in Build.
type Config struct {
	Session  SessionConfig
	Lockout  LockoutConfig
	Password password.Policy
	Storage  StorageConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// SessionConfig controls the expiry state machine timings.
type SessionConfig struct {
	// TTL is the session lifetime minted at sign-in and on every refresh.
	TTL time.Duration
	// RefreshThreshold is the lead time before expiry at which the periodic
	// check proactively refreshes.
	RefreshThreshold time.Duration
	// WarningWindow is the lead time at which the guard enters the
	// transient Expiring state (and still refreshes immediately).
	WarningWindow time.Duration
	// CheckInterval is the cadence of the periodic expiry check.
	CheckInterval time.Duration
}

// LockoutConfig controls the failed sign-in lockout policy.
type LockoutConfig struct {
	Enabled     bool
	MaxAttempts int
	Duration    time.Duration
}

// StorageConfig controls the persisted security blob.
type StorageConfig struct {
	// Prefix namespaces keys in shared backends (Redis).
	Prefix string
	// TTL bounds how long persisted values outlive the process. Zero
	// disables backend expiration.
	TTL time.Duration
	// SigningKey, when set, wraps the store with HMAC tamper detection.
	SigningKey []byte
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics registry.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration: a 30 minute session
// with proactive refresh 10 minutes out, a 5 minute warning window, a
// 60 second check cadence, and lockout after 5 failures for 15 minutes.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TTL:              30 * time.Minute,
			RefreshThreshold: 10 * time.Minute,
			WarningWindow:    5 * time.Minute,
			CheckInterval:    60 * time.Second,
		},
		Lockout: LockoutConfig{
			Enabled:     true,
			MaxAttempts: 5,
			Duration:    15 * time.Minute,
		},
		Password: password.DefaultPolicy(),
		Storage: StorageConfig{
			Prefix: "sg",
			TTL:    24 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Storage.SigningKey = cloneBytes(cfg.Storage.SigningKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks internal consistency of the configuration.
func (c *Config) Validate() error {
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}
	if c.Session.RefreshThreshold <= 0 {
		return errors.New("Session RefreshThreshold must be > 0")
	}
	if c.Session.RefreshThreshold >= c.Session.TTL {
		return errors.New("Session RefreshThreshold must be < TTL")
	}
	if c.Session.WarningWindow <= 0 {
		return errors.New("Session WarningWindow must be > 0")
	}
	if c.Session.WarningWindow > c.Session.RefreshThreshold {
		return errors.New("Session WarningWindow must be <= RefreshThreshold")
	}
	if c.Session.CheckInterval <= 0 {
		return errors.New("Session CheckInterval must be > 0")
	}

	if c.Lockout.Enabled {
		if c.Lockout.MaxAttempts <= 0 {
			return errors.New("Lockout MaxAttempts must be > 0 when enabled")
		}
		if c.Lockout.Duration <= 0 {
			return errors.New("Lockout Duration must be > 0 when enabled")
		}
	}

	if c.Password.MinLength <= 0 {
		return errors.New("Password MinLength must be > 0")
	}

	if c.Storage.TTL < 0 {
		return errors.New("Storage TTL must be >= 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}
