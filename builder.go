package sessionguard

import (
	"errors"
	"time"

	"github.com/cobaltgrid/sessionguard/internal/lockout"
	"github.com/cobaltgrid/sessionguard/storage"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Guard]. Dependencies are injected here; the guard
// itself performs no construction-time I/O.
type Builder struct {
	config Config

	provider AuthProvider
	store    storage.Store
	redis    *redis.Client
	clock    Clock

	auditSink AuditSink
	notifier  Notifier
	activity  ActivitySource

	built bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithProvider sets the remote authentication provider. Required.
func (b *Builder) WithProvider(provider AuthProvider) *Builder {
	b.provider = provider
	return b
}

// WithStorage sets an explicit persistence backend. Takes precedence over
// WithRedis.
func (b *Builder) WithStorage(store storage.Store) *Builder {
	b.store = store
	return b
}

// WithRedis persists the security blob in Redis using the configured
// storage prefix and TTL.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithClock overrides the time source. Tests use this to drive the expiry
// state machine deterministically.
func (b *Builder) WithClock(clock Clock) *Builder {
	b.clock = clock
	return b
}

// WithAuditSink sets the destination for audit events. Audit must also be
// enabled in the configuration.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithNotifier sets the out-of-band notice channel (expiry and lockout
// notices).
func (b *Builder) WithNotifier(notifier Notifier) *Builder {
	b.notifier = notifier
	return b
}

// WithActivitySource attaches a stream of user-interaction events. The
// guard owns the subscription and releases it on Close.
func (b *Builder) WithActivitySource(source ActivitySource) *Builder {
	b.activity = source
	return b
}

// Build validates the configuration and assembles the Guard.
func (b *Builder) Build() (*Guard, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.provider == nil {
		return nil, errors.New("auth provider required")
	}

	store := b.store
	if store == nil && b.redis != nil {
		store = storage.NewRedisStore(b.redis, cfg.Storage.Prefix, cfg.Storage.TTL)
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}
	if len(cfg.Storage.SigningKey) > 0 {
		store = storage.NewSignedStore(store, cfg.Storage.SigningKey)
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	notifier := b.notifier
	if notifier == nil {
		notifier = NoOpNotifier{}
	}

	g := &Guard{
		config:   cfg,
		provider: b.provider,
		storage:  store,
		clock:    clock,
		notifier: notifier,
		lockout: lockout.New(lockout.Config{
			Enabled:     cfg.Lockout.Enabled,
			MaxAttempts: cfg.Lockout.MaxAttempts,
			Duration:    cfg.Lockout.Duration,
		}, func() time.Time { return clock() }),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		state:   StateUnauthenticated,
	}

	g.unsubscribe = b.provider.OnAuthStateChange(g.handleProviderEvent)

	if b.activity != nil {
		g.monitor = NewActivityMonitor(g, b.activity)
		g.monitor.Start()
	}

	b.built = true

	return g, nil
}
