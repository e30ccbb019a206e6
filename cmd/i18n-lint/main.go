// Command i18n-lint checks locale files for common authoring mistakes:
// condition keys that do not parse, conditional entries without a default,
// and keys present in the default locale but missing elsewhere.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/localekit/i18n"
)

type lintConfig struct {
	defaultLocale string
	paths         []string
}

type finding struct {
	path string
	msg  string
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		reportError(err)
	}

	findings, err := run(cfg)
	if err != nil {
		reportError(err)
	}

	for _, f := range findings {
		fmt.Printf("%s: %s\n", f.path, f.msg)
	}
	if len(findings) > 0 {
		fmt.Fprintf(os.Stderr, "i18n-lint: %d problem(s)\n", len(findings))
		os.Exit(1)
	}
}

func reportError(err error) {
	fmt.Fprintf(os.Stderr, "i18n-lint: %v\n", err)
	os.Exit(1)
}

func parseFlags() (lintConfig, error) {
	var cfg lintConfig

	flag.StringVar(&cfg.defaultLocale, "default", "en", "default locale used as the reference key set")
	flag.Parse()

	cfg.paths = flag.Args()
	if len(cfg.paths) == 0 {
		return lintConfig{}, errors.New("at least one locale file is required")
	}
	return cfg, nil
}

func run(cfg lintConfig) ([]finding, error) {
	var findings []finding

	// Key sets per locale, unioned across files, for the parity check.
	localeKeys := make(map[string]map[string]struct{})
	localeSource := make(map[string]string)

	for _, path := range cfg.paths {
		data, err := i18n.NewFileLoader(path).Load()
		if err != nil {
			findings = append(findings, finding{path: path, msg: err.Error()})
			continue
		}

		for _, ld := range data {
			lintEntry(path, ld.Locale, ld.Tree, &findings)

			keys := localeKeys[ld.Locale]
			if keys == nil {
				keys = make(map[string]struct{})
				localeKeys[ld.Locale] = keys
				localeSource[ld.Locale] = path
			}
			collectKeys("", ld.Tree, keys)
		}
	}

	findings = append(findings, checkParity(cfg.defaultLocale, localeKeys, localeSource)...)
	return findings, nil
}

// lintEntry walks one locale tree, flagging keys that look like conditions
// but fail to parse, and conditional entries with no default branch.
func lintEntry(path, prefix string, entry i18n.Entry, findings *[]finding) {
	mapping, ok := entry.(*i18n.MappingEntry)
	if !ok {
		return
	}

	conditional := false
	for _, pair := range mapping.Pairs {
		err := i18n.CheckCondition(pair.Key)
		if err == nil {
			conditional = true
		} else if looksConditional(pair.Key) {
			*findings = append(*findings, finding{
				path: path,
				msg:  fmt.Sprintf("%s: key %q looks like a condition but does not parse: %v", prefix, pair.Key, err),
			})
		}
		lintEntry(path, joinKey(prefix, pair.Key), pair.Entry, findings)
	}

	if conditional && !mapping.HasDefault {
		*findings = append(*findings, finding{
			path: path,
			msg:  fmt.Sprintf("%s: conditional entry has no default, unmatched lookups resolve to empty text", prefix),
		})
	}
}

// looksConditional is a heuristic for authoring typos: the key carries a
// comparison operator or a boolean connective yet the parser rejects it.
func looksConditional(key string) bool {
	if strings.ContainsAny(key, "<>") ||
		strings.Contains(key, "==") ||
		strings.Contains(key, "!=") {
		return true
	}
	for _, word := range strings.Fields(key) {
		switch word {
		case "and", "or", "true", "false":
			return true
		}
	}
	return false
}

// collectKeys records every addressable dot path in the tree. Condition
// keys are branch arms of the enclosing path, not paths of their own.
func collectKeys(prefix string, entry i18n.Entry, keys map[string]struct{}) {
	mapping, ok := entry.(*i18n.MappingEntry)
	if !ok {
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
		return
	}

	for _, pair := range mapping.Pairs {
		if i18n.CheckCondition(pair.Key) == nil {
			if prefix != "" {
				keys[prefix] = struct{}{}
			}
			continue
		}
		collectKeys(joinKey(prefix, pair.Key), pair.Entry, keys)
	}
	if mapping.HasDefault && prefix != "" {
		keys[prefix] = struct{}{}
	}
}

func checkParity(defaultLocale string, localeKeys map[string]map[string]struct{}, localeSource map[string]string) []finding {
	reference, ok := localeKeys[defaultLocale]
	if !ok {
		return nil
	}

	locales := make([]string, 0, len(localeKeys))
	for locale := range localeKeys {
		if locale != defaultLocale {
			locales = append(locales, locale)
		}
	}
	sort.Strings(locales)

	wanted := make([]string, 0, len(reference))
	for key := range reference {
		wanted = append(wanted, key)
	}
	sort.Strings(wanted)

	var findings []finding
	for _, locale := range locales {
		keys := localeKeys[locale]
		for _, key := range wanted {
			if _, ok := keys[key]; !ok {
				findings = append(findings, finding{
					path: localeSource[locale],
					msg:  fmt.Sprintf("locale %s: missing key %q (present in %s)", locale, key, defaultLocale),
				})
			}
		}
	}
	return findings
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
