package i18n

import "fmt"

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenTrue
	tokenFalse
	tokenInt
	tokenFloat
	tokenText
	tokenAnd
	tokenOr
	tokenEq
	tokenNe
	tokenGt
	tokenGe
	tokenLt
	tokenLe
	tokenPlus
	tokenMinus
	tokenLParen
	tokenRParen
)

// token is one lexeme of a condition string. text holds the raw spelling
// for numbers and the decoded value for quoted text.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexCondition scans source into tokens, ending with tokenEOF. Anything
// outside the closed grammar alphabet is a ParseError.
func lexCondition(source string) ([]token, error) {
	lx := &lexer{source: source}
	var tokens []token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.kind == tokenEOF {
			return tokens, nil
		}
	}
}

type lexer struct {
	source string
	pos    int
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	return &ParseError{Text: l.source, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()

	start := l.pos
	if l.pos >= len(l.source) {
		return token{kind: tokenEOF, pos: start}, nil
	}

	c := l.source[l.pos]
	switch {
	case isIdentStart(c):
		return l.scanWord()
	case isDigit(c):
		return l.scanNumber()
	case c == '.' && l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1]):
		return l.scanNumber()
	case c == '\'' || c == '"':
		return l.scanText()
	}

	l.pos++
	switch c {
	case '=':
		if l.eat('=') {
			return token{kind: tokenEq, text: "==", pos: start}, nil
		}
		return token{}, l.errorf(start, "single = is not an operator, use ==")
	case '!':
		if l.eat('=') {
			return token{kind: tokenNe, text: "!=", pos: start}, nil
		}
		return token{}, l.errorf(start, "unexpected character '!'")
	case '>':
		if l.eat('=') {
			return token{kind: tokenGe, text: ">=", pos: start}, nil
		}
		return token{kind: tokenGt, text: ">", pos: start}, nil
	case '<':
		if l.eat('=') {
			return token{kind: tokenLe, text: "<=", pos: start}, nil
		}
		return token{kind: tokenLt, text: "<", pos: start}, nil
	case '+':
		return token{kind: tokenPlus, text: "+", pos: start}, nil
	case '-':
		return token{kind: tokenMinus, text: "-", pos: start}, nil
	case '(':
		return token{kind: tokenLParen, text: "(", pos: start}, nil
	case ')':
		return token{kind: tokenRParen, text: ")", pos: start}, nil
	}

	return token{}, l.errorf(start, "unexpected character %q", rune(c))
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) eat(c byte) bool {
	if l.pos < len(l.source) && l.source[l.pos] == c {
		l.pos++
		return true
	}
	return false
}

// scanWord accepts only the grammar's keywords. Bare names are how host
// identifiers would leak in, so they are rejected outright.
func (l *lexer) scanWord() (token, error) {
	start := l.pos
	for l.pos < len(l.source) && isIdentPart(l.source[l.pos]) {
		l.pos++
	}

	word := l.source[start:l.pos]
	switch word {
	case "true":
		return token{kind: tokenTrue, text: word, pos: start}, nil
	case "false":
		return token{kind: tokenFalse, text: word, pos: start}, nil
	case "and":
		return token{kind: tokenAnd, text: word, pos: start}, nil
	case "or":
		return token{kind: tokenOr, text: word, pos: start}, nil
	}
	return token{}, l.errorf(start, "name %q is not allowed in conditions", word)
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	kind := tokenInt

	for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
		l.pos++
	}

	if l.pos < len(l.source) && l.source[l.pos] == '.' {
		kind = tokenFloat
		l.pos++
		for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
			l.pos++
		}
	}

	if l.pos < len(l.source) && (l.source[l.pos] == 'e' || l.source[l.pos] == 'E') {
		mark := l.pos
		l.pos++
		if l.pos < len(l.source) && (l.source[l.pos] == '+' || l.source[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.source) || !isDigit(l.source[l.pos]) {
			return token{}, l.errorf(mark, "malformed exponent")
		}
		kind = tokenFloat
		for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
			l.pos++
		}
	}

	if l.pos < len(l.source) && isIdentStart(l.source[l.pos]) {
		return token{}, l.errorf(l.pos, "malformed number")
	}

	return token{kind: kind, text: l.source[start:l.pos], pos: start}, nil
}

func (l *lexer) scanText() (token, error) {
	start := l.pos
	quote := l.source[l.pos]
	l.pos++

	var out []byte
	for l.pos < len(l.source) {
		c := l.source[l.pos]
		switch c {
		case quote:
			l.pos++
			return token{kind: tokenText, text: string(out), pos: start}, nil
		case '\\':
			l.pos++
			if l.pos >= len(l.source) {
				return token{}, l.errorf(start, "unterminated text literal")
			}
			esc := l.source[l.pos]
			switch esc {
			case '\\', '\'', '"':
				out = append(out, esc)
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				return token{}, l.errorf(l.pos, "unsupported escape \\%c", esc)
			}
			l.pos++
		default:
			out = append(out, c)
			l.pos++
		}
	}

	return token{}, l.errorf(start, "unterminated text literal")
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
