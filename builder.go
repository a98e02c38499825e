package clinicauth

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/Manishmatre/clinicauth/cache"
	"github.com/Manishmatre/clinicauth/gateway"
	"github.com/Manishmatre/clinicauth/token"
)

// Builder assembles a Manager. Persistence backends resolve in priority
// order: explicitly set stores, then WithRedis, then WithStateDir, then
// in-memory (ephemeral, nothing survives a restart).
type Builder struct {
	config     Config
	httpClient *http.Client
	tokens     token.Store
	cacheStore cache.Store
	redis      *redis.Client
	stateDir   string
	profile    string
	sink       Sink

	built bool
}

// New returns a Builder preloaded with defaults.
func New() *Builder {
	return &Builder{
		config:  defaultConfig(),
		profile: "default",
	}
}

// WithConfig replaces the whole configuration tree.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithHTTPClient overrides the gateway transport, e.g. to inject proxies
// or test servers.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithTokenStore sets an explicit token store.
func (b *Builder) WithTokenStore(s token.Store) *Builder {
	b.tokens = s
	return b
}

// WithCacheStore sets an explicit session cache store.
func (b *Builder) WithCacheStore(s cache.Store) *Builder {
	b.cacheStore = s
	return b
}

// WithRedis backs both stores with Redis, for terminals where several
// processes share one signed-in session.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithStateDir backs both stores with files under dir.
func (b *Builder) WithStateDir(dir string) *Builder {
	b.stateDir = dir
	return b
}

// WithProfile scopes persisted state to a named profile, the analog of
// separate browser profiles on one machine. Defaults to "default".
func (b *Builder) WithProfile(name string) *Builder {
	if name != "" {
		b.profile = name
	}
	return b
}

// WithEventSink sets the destination for session events.
func (b *Builder) WithEventSink(sink Sink) *Builder {
	b.sink = sink
	return b
}

// Build validates the configuration and constructs the Manager. The
// returned manager starts in the hydrating state; call Hydrate once at
// startup to reach a terminal session state.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("clinicauth: builder already used")
	}
	b.built = true

	cfg := mergeDefaults(b.config)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	gw, err := gateway.NewClient(gateway.Config{
		BaseURL:    cfg.Gateway.BaseURL,
		HTTPClient: b.httpClient,
		Timeout:    cfg.Gateway.Timeout,
		UserAgent:  cfg.Gateway.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	tokens, cacheStore := b.resolveStores(cfg)

	m := &Manager{
		cfg:     cfg,
		gw:      gw,
		tokens:  tokens,
		cache:   cacheStore,
		events:  newEventDispatcher(cfg.Events, b.sink),
		metrics: NewMetrics(cfg.Metrics),
		sess:    Session{Hydrating: true},
	}
	return m, nil
}

func (b *Builder) resolveStores(cfg Config) (token.Store, cache.Store) {
	tokens := b.tokens
	cacheStore := b.cacheStore

	switch {
	case b.redis != nil:
		prefix := "clinicauth:" + b.profile
		if tokens == nil {
			tokens = token.NewRedisStore(b.redis, prefix+":token", 0)
		}
		if cacheStore == nil {
			cacheStore = cache.NewRedisStore(b.redis, prefix, cfg.Cache.RecordTTL)
		}
	case b.stateDir != "":
		dir := filepath.Join(b.stateDir, b.profile)
		if tokens == nil {
			tokens = token.NewFileStore(filepath.Join(dir, "token"))
		}
		if cacheStore == nil {
			cacheStore = cache.NewFileStore(filepath.Join(dir, "state.json"))
		}
	}
	if tokens == nil {
		tokens = token.NewMemoryStore()
	}
	if cacheStore == nil {
		cacheStore = cache.NewMemoryStore()
	}
	return tokens, cacheStore
}
