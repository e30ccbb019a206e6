package i18n

import (
	"sort"
	"strings"
	"sync"
)

// Store gives the engine access to per-locale entry trees.
type Store interface {
	// Lookup walks key as a dot path through the locale's tree and returns
	// the entry where the path ends. Failures are LookupError values.
	Lookup(locale, key string) (Entry, error)
	// Merge folds an incoming tree into the locale, preserving pair order.
	Merge(locale string, tree *MappingEntry)
	// Locales returns the locale codes with data, sorted.
	Locales() []string
}

// LocaleStore is the mutable Store the engine owns by default. A locale
// merged for the first time starts from a copy of the default locale's
// current tree, so keys it does not translate keep default-locale text.
type LocaleStore struct {
	mu            sync.RWMutex
	defaultLocale string
	locales       map[string]*MappingEntry
}

var _ Store = (*LocaleStore)(nil)

// NewLocaleStore builds an empty store seeding new locales from
// defaultLocale.
func NewLocaleStore(defaultLocale string) *LocaleStore {
	return &LocaleStore{
		defaultLocale: normalizeLocale(defaultLocale),
		locales:       make(map[string]*MappingEntry),
	}
}

func (s *LocaleStore) Lookup(locale, key string) (Entry, error) {
	code := normalizeLocale(locale)

	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.locales[code]
	if !ok {
		return nil, &LookupError{Locale: code}
	}

	entry, ok := lookupPath(tree, key)
	if !ok {
		return nil, &LookupError{Locale: code, Key: key}
	}
	return entry, nil
}

func lookupPath(tree *MappingEntry, key string) (Entry, bool) {
	var current Entry = tree
	for _, part := range strings.Split(key, ".") {
		mapping, ok := current.(*MappingEntry)
		if !ok {
			return nil, false
		}
		next, ok := mapping.Get(part)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func (s *LocaleStore) Merge(locale string, tree *MappingEntry) {
	if tree == nil {
		return
	}

	code := normalizeLocale(locale)

	s.mu.Lock()
	defer s.mu.Unlock()

	base, ok := s.locales[code]
	if !ok {
		base = s.locales[s.defaultLocale]
	}
	if base == nil {
		base = &MappingEntry{}
	}
	s.locales[code] = mergeEntries(base, tree).(*MappingEntry)
}

func (s *LocaleStore) Locales() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.locales))
	for code := range s.locales {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
