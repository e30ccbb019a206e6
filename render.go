package i18n

import (
	"strconv"
	"strings"
)

// Renderer binds parameter values into condition text before evaluation.
// The interpolation syntax belongs to the renderer; the evaluator only ever
// sees the literal-only result.
type Renderer interface {
	Render(condition string, params []Param) string
}

// RendererFunc adapts a bare function to Renderer.
type RendererFunc func(condition string, params []Param) string

func (fn RendererFunc) Render(condition string, params []Param) string {
	return fn(condition, params)
}

// renderCondition is the default Renderer: bare parameter names are replaced
// with the literal form of their value, so count>1 with count=2 becomes 2>1
// and gender=='f' with gender="f" becomes 'f'=='f'. Names inside quoted text
// stay untouched, as do grammar keywords, unknown names and values with no
// literal form; text that still holds a name afterwards fails to parse and
// the condition simply does not match.
func renderCondition(condition string, params []Param) string {
	if len(params) == 0 {
		return condition
	}

	var out strings.Builder
	out.Grow(len(condition) + 16)

	for i := 0; i < len(condition); {
		c := condition[i]
		switch {
		case c == '\'' || c == '"':
			end := skipQuoted(condition, i)
			out.WriteString(condition[i:end])
			i = end
		case isIdentStart(c):
			end := i + 1
			for end < len(condition) && isIdentPart(condition[end]) {
				end++
			}
			word := condition[i:end]
			if lit, ok := paramLiteral(params, word); ok {
				out.WriteString(lit)
			} else {
				out.WriteString(word)
			}
			i = end
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// skipQuoted returns the index just past the text literal starting at
// start, honoring backslash escapes. Unterminated literals run to the end.
func skipQuoted(s string, start int) int {
	quote := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(s)
}

func paramLiteral(params []Param, name string) (string, bool) {
	if isGrammarWord(name) {
		return "", false
	}
	for _, p := range params {
		if p.Name == name {
			return literalForm(p.Value)
		}
	}
	return "", false
}

func isGrammarWord(name string) bool {
	switch name {
	case "true", "false", "and", "or":
		return true
	}
	return false
}

// literalForm renders a parameter value as condition-grammar literal text.
func literalForm(v any) (string, bool) {
	switch v := v.(type) {
	case bool:
		return strconv.FormatBool(v), true
	case string:
		return quoteText(v), true
	case int:
		return strconv.Itoa(v), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	}
	return "", false
}

// quoteText wraps s in single quotes with the escapes the lexer decodes.
func quoteText(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
