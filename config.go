package i18n

import (
	"log"
	"strconv"
)

const (
	// DefaultCacheCapacity bounds the result cache unless overridden.
	DefaultCacheCapacity = 2048
	// DefaultParseCapacity bounds the condition parse memo.
	DefaultParseCapacity = 512
	// DefaultWorkers bounds concurrent file decoding during loads.
	DefaultWorkers = 4
)

// Config captures engine setup.
type Config struct {
	DefaultLocale  string
	CacheCapacity  int
	ParseCapacity  int
	Workers        int
	Store          Store
	Cache          ResultCache
	Renderer       Renderer
	Formatter      Formatter
	Loader         Loader
	Logger         *log.Logger
	Hooks          []Hook
	LocaleFallback bool
}

// Option mutates Config during construction.
type Option func(*Config) error

// NewConfig builds Config via supplied options and fills in defaults.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		DefaultLocale: "en",
		CacheCapacity: DefaultCacheCapacity,
		ParseCapacity: DefaultParseCapacity,
		Workers:       DefaultWorkers,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.DefaultLocale = normalizeLocale(cfg.DefaultLocale)

	if cfg.Renderer == nil {
		cfg.Renderer = RendererFunc(renderCondition)
	}
	if cfg.Formatter == nil {
		cfg.Formatter = FormatterFunc(formatPlaceholders)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	if normalizeLocale(cfg.DefaultLocale) == "" {
		return &ConfigError{Msg: "default locale must not be empty"}
	}
	if cfg.CacheCapacity <= 0 {
		return &ConfigError{Msg: "cache capacity must be positive, got " + strconv.Itoa(cfg.CacheCapacity)}
	}
	if cfg.ParseCapacity <= 0 {
		return &ConfigError{Msg: "parse memo capacity must be positive, got " + strconv.Itoa(cfg.ParseCapacity)}
	}
	if cfg.Workers <= 0 {
		return &ConfigError{Msg: "worker count must be positive, got " + strconv.Itoa(cfg.Workers)}
	}
	return nil
}

// WithDefaultLocale sets the locale used when Get receives an empty one and
// the seed tree for locales merged for the first time.
func WithDefaultLocale(locale string) Option {
	return func(c *Config) error {
		c.DefaultLocale = locale
		return nil
	}
}

// WithCacheCapacity bounds the default result cache.
func WithCacheCapacity(capacity int) Option {
	return func(c *Config) error {
		c.CacheCapacity = capacity
		return nil
	}
}

// WithParseCapacity bounds the condition parse memo.
func WithParseCapacity(capacity int) Option {
	return func(c *Config) error {
		c.ParseCapacity = capacity
		return nil
	}
}

// WithWorkers bounds concurrent file decoding in LoadFiles.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		c.Workers = n
		return nil
	}
}

func WithStore(store Store) Option {
	return func(c *Config) error {
		c.Store = store
		return nil
	}
}

// WithCache replaces the default MemoryCache, e.g. with a RedisCache.
func WithCache(cache ResultCache) Option {
	return func(c *Config) error {
		c.Cache = cache
		return nil
	}
}

func WithRenderer(renderer Renderer) Option {
	return func(c *Config) error {
		c.Renderer = renderer
		return nil
	}
}

func WithFormatter(formatter Formatter) Option {
	return func(c *Config) error {
		c.Formatter = formatter
		return nil
	}
}

// WithLoader seeds the store during New.
func WithLoader(loader Loader) Option {
	return func(c *Config) error {
		c.Loader = loader
		return nil
	}
}

// WithLogger directs diagnostics; the default is log.Default().
func WithLogger(logger *log.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

func WithHooks(hooks ...Hook) Option {
	return func(c *Config) error {
		for _, hook := range hooks {
			if hook == nil {
				continue
			}
			c.Hooks = append(c.Hooks, hook)
		}
		return nil
	}
}

// WithLocaleFallback walks parent chains (en-US → en, then the default
// locale) when a lookup misses. Off by default: an unknown locale degrades
// to the key text.
func WithLocaleFallback(enabled bool) Option {
	return func(c *Config) error {
		c.LocaleFallback = enabled
		return nil
	}
}
