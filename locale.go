package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// normalizeLocale trims whitespace and folds underscores to hyphens, so
// en_US and en-US address the same tree.
func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
}

// localeParentChain returns the parents of locale ordered closest first,
// e.g. zh-Hant-TW → [zh-Hant, zh]. Tags the language registry does not know
// still fall back along hyphen boundaries.
func localeParentChain(locale string) []string {
	if locale == "" {
		return nil
	}

	if tag, err := language.Parse(locale); err == nil {
		var chain []string
		for parent := tag.Parent(); parent != language.Und; parent = parent.Parent() {
			code := parent.String()
			if code == "" || code == "und" {
				break
			}
			chain = append(chain, code)
		}
		if len(chain) > 0 {
			return chain
		}
	}

	var chain []string
	current := locale
	for {
		idx := strings.LastIndex(current, "-")
		if idx <= 0 {
			return chain
		}
		current = current[:idx]
		chain = append(chain, current)
	}
}

// localeCandidates is the lookup order used when runtime fallback is
// enabled: the locale itself, its parents, then the default locale.
func localeCandidates(locale, defaultLocale string) []string {
	candidates := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	add := func(code string) {
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		candidates = append(candidates, code)
	}

	add(locale)
	for _, parent := range localeParentChain(locale) {
		add(parent)
	}
	add(defaultLocale)
	return candidates
}
