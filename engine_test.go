package i18n

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const engineFixture = `
en:
  greeting: "Hello, {name}!"
  plain: "Just text"
  cart:
    status:
      "count == 0": "Your cart is empty"
      "count == 1": "One item"
      "count > 1": "{count} items"
      default: "Cart"
  shipping:
    banner:
      default: "Standard rates"
      "tier == 'gold'":
        "total >= 100": "Free express"
        "total >= 50": "Free standard"
  nodefault:
    "count > 10": "big"
fr:
  greeting: "Bonjour, {name}!"
`

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := engine.LoadBytes("locales.yaml", []byte(engineFixture)); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	return engine
}

func TestEngineGetLiteral(t *testing.T) {
	engine := newTestEngine(t)

	if got := engine.Get("greeting", "en", P("name", "Ada")); got != "Hello, Ada!" {
		t.Fatalf("Get = %q, want %q", got, "Hello, Ada!")
	}
	if got := engine.Get("greeting", "fr", P("name", "Ada")); got != "Bonjour, Ada!" {
		t.Fatalf("Get = %q, want %q", got, "Bonjour, Ada!")
	}
	if got := engine.Get("plain", "en"); got != "Just text" {
		t.Fatalf("Get = %q, want %q", got, "Just text")
	}
}

func TestEngineGetConditionalBranches(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		count int
		want  string
	}{
		{0, "Your cart is empty"},
		{1, "One item"},
		{5, "5 items"},
	}
	for _, tc := range tests {
		if got := engine.Get("cart.status", "en", P("count", tc.count)); got != tc.want {
			t.Fatalf("Get(count=%d) = %q, want %q", tc.count, got, tc.want)
		}
	}

	// Without the parameter no branch can match and the default applies.
	if got := engine.Get("cart.status", "en"); got != "Cart" {
		t.Fatalf("Get = %q, want %q", got, "Cart")
	}

	// A parameter with no literal form leaves the name in place, which
	// fails to parse and counts as a non-match.
	if got := engine.Get("cart.status", "en", P("count", struct{}{})); got != "Cart" {
		t.Fatalf("Get = %q, want %q", got, "Cart")
	}
}

func TestEngineGetNestedDefaultInheritance(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		tier  string
		total float64
		want  string
	}{
		{"gold", 120, "Free express"},
		{"gold", 60, "Free standard"},
		// The inner branches all miss; the enclosing default applies.
		{"gold", 10, "Standard rates"},
		// No outer branch matches at all.
		{"basic", 500, "Standard rates"},
	}
	for _, tc := range tests {
		got := engine.Get("shipping.banner", "en", P("tier", tc.tier), P("total", tc.total))
		if got != tc.want {
			t.Fatalf("Get(tier=%s, total=%v) = %q, want %q", tc.tier, tc.total, got, tc.want)
		}
	}
}

func TestEngineGetNoMatchNoDefaultIsEmpty(t *testing.T) {
	engine := newTestEngine(t)

	if got := engine.Get("nodefault", "en", P("count", 1)); got != "" {
		t.Fatalf("Get = %q, want empty", got)
	}

	// The empty result is a legitimate value and gets cached like any other.
	var cached bool
	engine.hooks = append(engine.hooks, HookFuncs{
		After: func(ctx *HookContext) { cached = ctx.Cached },
	})
	if got := engine.Get("nodefault", "en", P("count", 1)); got != "" || !cached {
		t.Fatalf("Get = %q cached=%v, want empty and true", got, cached)
	}
}

func TestEngineGetMissingKeyReturnsKey(t *testing.T) {
	var buf bytes.Buffer
	var hookErr error
	var cachedSeen []bool

	engine := newTestEngine(t,
		WithLogger(log.New(&buf, "", 0)),
		WithHooks(HookFuncs{After: func(ctx *HookContext) {
			hookErr = ctx.Err
			cachedSeen = append(cachedSeen, ctx.Cached)
		}}),
	)

	if got := engine.Get("does.not.exist", "en"); got != "does.not.exist" {
		t.Fatalf("Get = %q, want the key back", got)
	}
	if !errors.Is(hookErr, ErrMissingTranslation) {
		t.Fatalf("hook err = %v, want ErrMissingTranslation", hookErr)
	}
	if !strings.Contains(buf.String(), "does.not.exist") {
		t.Fatalf("diagnostic log = %q, want the key mentioned", buf.String())
	}

	// Failures are never cached: the second call recomputes and logs again.
	engine.Get("does.not.exist", "en")
	if len(cachedSeen) != 2 || cachedSeen[0] || cachedSeen[1] {
		t.Fatalf("cached flags = %v, want [false false]", cachedSeen)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Fatalf("log lines = %d, want 2", lines)
	}
}

func TestEngineGetBlankValuedKeyDegradesToKey(t *testing.T) {
	var buf bytes.Buffer
	engine, err := New(WithLogger(log.New(&buf, "", 0)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// A key stubbed out with no value resolves like a missing one.
	stub := []byte("en:\n  greeting:\n  done: \"Ready\"\n")
	if err := engine.LoadBytes("stub.yaml", stub); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}

	if got := engine.Get("greeting", "en"); got != "greeting" {
		t.Fatalf("Get = %q, want the key back", got)
	}
	if !strings.Contains(buf.String(), "greeting") {
		t.Fatalf("diagnostic log = %q, want the key mentioned", buf.String())
	}
	if got := engine.Get("done", "en"); got != "Ready" {
		t.Fatalf("Get = %q, want %q", got, "Ready")
	}
}

func TestEngineGetMissingLocaleReturnsKey(t *testing.T) {
	var hookErr error
	engine := newTestEngine(t, WithHooks(HookFuncs{
		After: func(ctx *HookContext) { hookErr = ctx.Err },
	}))

	if got := engine.Get("greeting", "de"); got != "greeting" {
		t.Fatalf("Get = %q, want the key back", got)
	}
	if !errors.Is(hookErr, ErrMissingLocale) {
		t.Fatalf("hook err = %v, want ErrMissingLocale", hookErr)
	}
}

func TestEngineGetEmptyLocaleUsesDefault(t *testing.T) {
	engine := newTestEngine(t, WithDefaultLocale("fr"))

	if got := engine.Get("greeting", "", P("name", "Ada")); got != "Bonjour, Ada!" {
		t.Fatalf("Get = %q, want %q", got, "Bonjour, Ada!")
	}
}

func TestEngineGetCachesResults(t *testing.T) {
	var cachedSeen []bool
	engine := newTestEngine(t, WithHooks(HookFuncs{
		After: func(ctx *HookContext) { cachedSeen = append(cachedSeen, ctx.Cached) },
	}))

	first := engine.Get("cart.status", "en", P("count", 2))
	second := engine.Get("cart.status", "en", P("count", 2))

	if first != second {
		t.Fatalf("results differ: %q vs %q", first, second)
	}
	if len(cachedSeen) != 2 || cachedSeen[0] || !cachedSeen[1] {
		t.Fatalf("cached flags = %v, want [false true]", cachedSeen)
	}
}

func TestEngineParamOrderAffectsCacheIdentity(t *testing.T) {
	cache, err := NewMemoryCache(64)
	if err != nil {
		t.Fatalf("NewMemoryCache: %v", err)
	}
	engine := newTestEngine(t, WithCache(cache))

	first := engine.Get("shipping.banner", "en", P("tier", "gold"), P("total", 120.0))
	second := engine.Get("shipping.banner", "en", P("total", 120.0), P("tier", "gold"))

	if first != second {
		t.Fatalf("results differ: %q vs %q", first, second)
	}
	// Same values, different order: two distinct cache entries.
	if cache.Len() != 2 {
		t.Fatalf("cache Len = %d, want 2", cache.Len())
	}
}

func TestEngineEvaluate(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		text string
		want bool
	}{
		{"true", true},
		{"false", false},
		{"1 < 2 < 3", true},
		{"3 < 2 < 1", false},
		{"'a' > 1", false},
		{"true and false", false},
		{"true or false", true},
		{"1 +", false},
		{"count > 1", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := engine.Evaluate(tc.text); got != tc.want {
			t.Fatalf("Evaluate(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestEngineEvaluateMemoizesFailures(t *testing.T) {
	engine := newTestEngine(t)

	engine.Evaluate("1 +")
	engine.Evaluate("1 +")

	hits, _, compiles, _ := engine.memo.stats()
	if compiles != 1 {
		t.Fatalf("compiles = %d, want 1, invalid text must be memoized too", compiles)
	}
	if hits != 1 {
		t.Fatalf("hits = %d, want 1", hits)
	}
}

func TestEngineLoadBytesInvalidatesOnlyChangedLocale(t *testing.T) {
	var cachedSeen []bool
	engine := newTestEngine(t, WithHooks(HookFuncs{
		After: func(ctx *HookContext) { cachedSeen = append(cachedSeen, ctx.Cached) },
	}))

	engine.Get("greeting", "en", P("name", "Ada"))
	engine.Get("greeting", "fr", P("name", "Ada"))

	update := "en:\n  greeting: \"Hi, {name}!\"\n"
	if err := engine.LoadBytes("patch.yaml", []byte(update)); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}

	if got := engine.Get("greeting", "en", P("name", "Ada")); got != "Hi, Ada!" {
		t.Fatalf("Get after reload = %q, want %q", got, "Hi, Ada!")
	}
	if got := engine.Get("greeting", "fr", P("name", "Ada")); got != "Bonjour, Ada!" {
		t.Fatalf("Get fr = %q, want untouched %q", got, "Bonjour, Ada!")
	}

	// en recomputed after its invalidation, fr answered from cache.
	want := []bool{false, false, false, true}
	if len(cachedSeen) != len(want) {
		t.Fatalf("cached flags = %v, want %v", cachedSeen, want)
	}
	for i := range want {
		if cachedSeen[i] != want[i] {
			t.Fatalf("cached flags = %v, want %v", cachedSeen, want)
		}
	}

	// Only greeting changed; the rest of the en tree survived the merge.
	if got := engine.Get("plain", "en"); got != "Just text" {
		t.Fatalf("Get plain = %q, want %q", got, "Just text")
	}
}

func TestEngineSeedsLocalesFromDefault(t *testing.T) {
	engine := newTestEngine(t)

	// fr never defines cart.status; it was seeded from en when fr merged.
	if got := engine.Get("cart.status", "fr", P("count", 1)); got != "One item" {
		t.Fatalf("Get = %q, want %q", got, "One item")
	}
}

func TestEngineLocaleFallback(t *testing.T) {
	engine := newTestEngine(t, WithLocaleFallback(true))

	// de-AT has no data at any level, so the default locale answers.
	if got := engine.Get("greeting", "de-AT", P("name", "Ada")); got != "Hello, Ada!" {
		t.Fatalf("Get = %q, want fallback to en", got)
	}
	// fr-CA walks its parent chain to fr.
	if got := engine.Get("greeting", "fr-CA", P("name", "Ada")); got != "Bonjour, Ada!" {
		t.Fatalf("Get = %q, want fallback to fr", got)
	}

	// Off by default: the unknown locale degrades to the key.
	strict := newTestEngine(t)
	if got := strict.Get("greeting", "de-AT", P("name", "Ada")); got != "greeting" {
		t.Fatalf("Get = %q, want the key back", got)
	}
}

func TestEngineLoadMap(t *testing.T) {
	engine := newTestEngine(t)

	err := engine.LoadMap("de", map[string]any{
		"greeting": "Hallo, {name}!",
		"cart": map[string]any{
			"status": map[string]any{
				"count == 0": "Leer",
				"default":    "Warenkorb",
			},
		},
	})
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}

	if got := engine.Get("greeting", "de", P("name", "Ada")); got != "Hallo, Ada!" {
		t.Fatalf("Get = %q, want %q", got, "Hallo, Ada!")
	}
	if got := engine.Get("cart.status", "de", P("count", 0)); got != "Leer" {
		t.Fatalf("Get = %q, want %q", got, "Leer")
	}

	if err := engine.LoadMap("de", map[string]any{"bad": []string{"x"}}); err == nil {
		t.Fatal("expected error for unsupported value")
	}
}

func TestEngineLoadFiles(t *testing.T) {
	dir := t.TempDir()
	enPath := filepath.Join(dir, "en.json")
	esPath := filepath.Join(dir, "es.yaml")
	if err := os.WriteFile(enPath, []byte(`{"en": {"a": "A", "b": "B"}}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(esPath, []byte("es:\n  a: AE\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	engine, err := New(WithDefaultLocale("en"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := engine.LoadFiles(context.Background(), enPath, esPath); err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}

	locales := engine.Locales()
	if len(locales) != 2 || locales[0] != "en" || locales[1] != "es" {
		t.Fatalf("Locales = %v, want [en es]", locales)
	}
	if got := engine.Get("a", "es"); got != "AE" {
		t.Fatalf("Get = %q, want %q", got, "AE")
	}
	// es.yaml never defines b; it came from the en tree merged first.
	if got := engine.Get("b", "es"); got != "B" {
		t.Fatalf("Get = %q, want seeded %q", got, "B")
	}

	if err := engine.LoadFiles(context.Background(), filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEngineWithLoaderRunsDuringNew(t *testing.T) {
	loader := LoaderFunc(func() ([]LocaleData, error) {
		return []LocaleData{{
			Locale: "en",
			Tree:   &MappingEntry{Pairs: []EntryPair{literalPair("ready", "yes")}},
		}}, nil
	})

	engine, err := New(WithDefaultLocale("en"), WithLoader(loader))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := engine.Get("ready", "en"); got != "yes" {
		t.Fatalf("Get = %q, want %q", got, "yes")
	}

	failing := LoaderFunc(func() ([]LocaleData, error) {
		return nil, errors.New("boom")
	})
	if _, err := New(WithLoader(failing)); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("New = %v, want loader error", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty default locale", WithDefaultLocale("  ")},
		{"zero cache capacity", WithCacheCapacity(0)},
		{"negative parse capacity", WithParseCapacity(-1)},
		{"zero workers", WithWorkers(0)},
	}

	for _, tc := range tests {
		_, err := New(tc.opt)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: New = %v, want *ConfigError", tc.name, err)
		}
	}
}

func TestEngineHooksObserveGet(t *testing.T) {
	var order []string
	var seen HookContext

	engine := newTestEngine(t, WithHooks(HookFuncs{
		Before: func(ctx *HookContext) { order = append(order, "before") },
		After: func(ctx *HookContext) {
			order = append(order, "after")
			seen = *ctx
		},
	}))

	engine.Get("greeting", "en_US", P("name", "Ada"))

	if len(order) != 2 || order[0] != "before" || order[1] != "after" {
		t.Fatalf("hook order = %v", order)
	}
	if seen.Locale != "en-US" {
		t.Fatalf("hook locale = %q, want normalized %q", seen.Locale, "en-US")
	}
	if seen.Key != "greeting" || len(seen.Params) != 1 || seen.Params[0].Name != "name" {
		t.Fatalf("hook ctx = %+v", seen)
	}
}

func TestEngineWithCustomRendererAndFormatter(t *testing.T) {
	engine := newTestEngine(t,
		WithRenderer(RendererFunc(func(condition string, params []Param) string {
			return "true"
		})),
		WithFormatter(FormatterFunc(func(template string, params []Param) string {
			return strings.ToUpper(template)
		})),
	)

	// The renderer forces the first branch; the formatter reshapes it.
	if got := engine.Get("cart.status", "en"); got != "YOUR CART IS EMPTY" {
		t.Fatalf("Get = %q, want %q", got, "YOUR CART IS EMPTY")
	}
}

func TestEngineWithCustomStore(t *testing.T) {
	store := NewLocaleStore("en")
	store.Merge("en", &MappingEntry{Pairs: []EntryPair{literalPair("custom", "value")}})

	engine, err := New(WithStore(store))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := engine.Get("custom", "en"); got != "value" {
		t.Fatalf("Get = %q, want %q", got, "value")
	}
}

func TestEngineLocalesAndDefaultLocale(t *testing.T) {
	engine := newTestEngine(t)

	locales := engine.Locales()
	if len(locales) != 2 || locales[0] != "en" || locales[1] != "fr" {
		t.Fatalf("Locales = %v, want [en fr]", locales)
	}
	if got := engine.DefaultLocale(); got != "en" {
		t.Fatalf("DefaultLocale = %q, want %q", got, "en")
	}
}
