package i18n

import (
	"errors"
	"fmt"
)

// ErrMissingTranslation indicates that no translation was found for locale/key.
var ErrMissingTranslation = errors.New("i18n: missing translation")

// ErrMissingLocale indicates that a locale has no data in the store.
var ErrMissingLocale = errors.New("i18n: missing locale")

// ParseError reports condition text outside the supported grammar.
type ParseError struct {
	Text string
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("i18n: parse %q at offset %d: %s", e.Text, e.Pos, e.Msg)
}

// EvaluationError reports a type or operator mismatch while evaluating a
// parsed condition. It never escapes Evaluate, which collapses it to false.
type EvaluationError struct {
	Msg string
}

func (e *EvaluationError) Error() string {
	return "i18n: evaluate: " + e.Msg
}

// LookupError reports a missing locale or a missing translation key. It
// unwraps to ErrMissingLocale or ErrMissingTranslation so callers can use
// errors.Is.
type LookupError struct {
	Locale string
	Key    string
}

func (e *LookupError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("i18n: locale %q not loaded", e.Locale)
	}
	return fmt.Sprintf("i18n: no translation for %q in locale %q", e.Key, e.Locale)
}

func (e *LookupError) Unwrap() error {
	if e.Key == "" {
		return ErrMissingLocale
	}
	return ErrMissingTranslation
}

// ConfigError reports invalid construction parameters. It is returned by New
// and the cache constructors; an engine is never usable half-configured.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "i18n: config: " + e.Msg
}
