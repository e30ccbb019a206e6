// Package i18n resolves localized text. Translation entries may branch on
// boolean conditions evaluated against caller parameters, using a closed
// literal/comparison grammar that never executes host code; resolved strings
// are memoized in a bounded cache with locale-scoped invalidation.
package i18n

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Translator resolves a string for a given key, locale and parameters.
type Translator interface {
	Get(key, locale string, params ...Param) string
}

// Engine is the resolution entry point: a locale store, a condition parse
// memo and a result cache behind one Get call.
type Engine struct {
	defaultLocale  string
	store          Store
	cache          ResultCache
	memo           *parseMemo
	renderer       Renderer
	formatter      Formatter
	logger         *log.Logger
	hooks          []Hook
	localeFallback bool
	workers        int
}

var _ Translator = (*Engine)(nil)

// New builds an Engine. Construction fails with a ConfigError on invalid
// capacities or worker counts, and with the loader's error when a configured
// Loader cannot produce data.
func New(opts ...Option) (*Engine, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	memo, err := newParseMemo(cfg.ParseCapacity)
	if err != nil {
		return nil, err
	}

	cache := cfg.Cache
	if cache == nil {
		cache, err = NewMemoryCache(cfg.CacheCapacity)
		if err != nil {
			return nil, err
		}
	}

	store := cfg.Store
	if store == nil {
		store = NewLocaleStore(cfg.DefaultLocale)
	}

	e := &Engine{
		defaultLocale:  cfg.DefaultLocale,
		store:          store,
		cache:          cache,
		memo:           memo,
		renderer:       cfg.Renderer,
		formatter:      cfg.Formatter,
		logger:         cfg.Logger,
		hooks:          cfg.Hooks,
		localeFallback: cfg.LocaleFallback,
		workers:        cfg.Workers,
	}

	if cfg.Loader != nil {
		data, err := cfg.Loader.Load()
		if err != nil {
			return nil, err
		}
		e.apply(data)
	}

	return e, nil
}

// Get resolves key for locale. It never panics and never returns an error:
// any internal failure is logged as a diagnostic and the key text comes back
// unchanged. An empty locale selects the default locale. Parameters enter
// the cache key in the order given; the same values in another order are a
// distinct cache entry.
func (e *Engine) Get(key, locale string, params ...Param) string {
	loc := normalizeLocale(locale)
	if loc == "" {
		loc = e.defaultLocale
	}

	ctx := &HookContext{Locale: loc, Key: key, Params: params}
	for _, hook := range e.hooks {
		hook.BeforeGet(ctx)
	}

	sig := cacheSignature(key, params)
	if cached, ok := e.cache.Get(loc, sig); ok {
		ctx.Result = cached
		ctx.Cached = true
		e.afterHooks(ctx)
		return cached
	}

	result, err := e.compute(key, loc, params)
	if err != nil {
		e.logger.Printf("i18n: get %s/%s: %v", loc, key, err)
		ctx.Result = key
		ctx.Err = err
		e.afterHooks(ctx)
		return key
	}

	e.cache.Set(loc, sig, result)
	ctx.Result = result
	e.afterHooks(ctx)
	return result
}

func (e *Engine) afterHooks(ctx *HookContext) {
	for _, hook := range e.hooks {
		hook.AfterGet(ctx)
	}
}

func (e *Engine) compute(key, locale string, params []Param) (string, error) {
	entry, err := e.lookup(key, locale)
	if err != nil {
		return "", err
	}

	res := resolver{
		evaluate: func(condition string) bool {
			return e.evaluateText(e.renderer.Render(condition, params))
		},
		format: func(template string) string {
			return e.formatter.Format(template, params)
		},
	}
	return res.resolve(entry, nil), nil
}

func (e *Engine) lookup(key, locale string) (Entry, error) {
	if !e.localeFallback {
		return e.store.Lookup(locale, key)
	}

	var firstErr error
	for _, candidate := range localeCandidates(locale, e.defaultLocale) {
		entry, err := e.store.Lookup(candidate, key)
		if err == nil {
			return entry, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// Evaluate parses and evaluates condition text. It is total: text outside
// the grammar or with mismatched operand types yields false, never an error.
func (e *Engine) Evaluate(text string) bool {
	return e.evaluateText(text)
}

func (e *Engine) evaluateText(text string) bool {
	expr, err := e.memo.parse(text)
	if err != nil {
		return false
	}
	ok, err := evalCondition(expr)
	if err != nil {
		return false
	}
	return ok
}

// cacheSignature builds the key+params component of the cache key.
// Parameter order is kept exactly as supplied.
func cacheSignature(key string, params []Param) string {
	if len(params) == 0 {
		return key
	}

	var b strings.Builder
	b.Grow(len(key) + len(params)*16)
	b.WriteString(key)
	for _, p := range params {
		b.WriteString(cacheKeySep)
		b.WriteString(p.Name)
		b.WriteByte('=')
		if lit, ok := literalForm(p.Value); ok {
			b.WriteString(lit)
		} else {
			fmt.Fprintf(&b, "%v", p.Value)
		}
	}
	return b.String()
}

// LoadFiles reads the given locale files on a bounded worker pool, then
// merges them into the store sequentially in path order. Each merged
// locale's cached results are invalidated.
func (e *Engine) LoadFiles(ctx context.Context, paths ...string) error {
	data, err := NewFileLoader(paths...).WithWorkers(e.workers).LoadContext(ctx)
	if err != nil {
		return err
	}
	e.apply(data)
	return nil
}

// LoadBytes decodes one in-memory document; name selects the format by
// extension.
func (e *Engine) LoadBytes(name string, data []byte) error {
	decoded, err := decodeLocaleBytes(name, data)
	if err != nil {
		return fmt.Errorf("i18n: decode %s: %w", name, err)
	}
	e.apply(decoded)
	return nil
}

// LoadMap merges a programmatic tree into locale. Go map iteration order is
// unspecified, so keys are sorted; conditional branches whose order matters
// should come from files or LoadBytes.
func (e *Engine) LoadMap(locale string, data map[string]any) error {
	entry, err := entryFromMap(data)
	if err != nil {
		return fmt.Errorf("i18n: locale %s: %w", locale, err)
	}
	mapping, ok := entry.(*MappingEntry)
	if !ok {
		return fmt.Errorf("i18n: locale %s: data must be a map", locale)
	}
	e.apply([]LocaleData{{Locale: locale, Tree: mapping}})
	return nil
}

func (e *Engine) apply(data []LocaleData) {
	for _, ld := range data {
		code := normalizeLocale(ld.Locale)
		e.store.Merge(code, ld.Tree)
		e.cache.InvalidateLocale(code)
	}
}

// Locales lists the locale codes with data.
func (e *Engine) Locales() []string {
	return e.store.Locales()
}

// DefaultLocale reports the configured default locale.
func (e *Engine) DefaultLocale() string {
	return e.defaultLocale
}
