package i18n

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Formatter substitutes parameter values into resolved template text.
type Formatter interface {
	Format(template string, params []Param) string
}

// FormatterFunc adapts a bare function to Formatter.
type FormatterFunc func(template string, params []Param) string

func (fn FormatterFunc) Format(template string, params []Param) string {
	return fn(template, params)
}

// formatPlaceholders is the default Formatter: every {name} placeholder
// with a matching parameter is replaced by the parameter's value;
// placeholders without one stay verbatim.
func formatPlaceholders(template string, params []Param) string {
	if len(params) == 0 || !strings.Contains(template, "{") {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		for _, p := range params {
			if p.Name == name {
				return fmt.Sprintf("%v", p.Value)
			}
		}
		return match
	})
}
