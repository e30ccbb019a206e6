package i18n

import (
	"strconv"
	"sync"
)

// Expr is the parsed form of a condition. The implementations below are the
// closed set of nodes the grammar admits; there is no escape hatch into
// general expressions.
type Expr interface {
	isExpr()
}

// BoolLit is a true/false literal.
type BoolLit struct {
	Value bool
}

// IntLit is an integer literal, sign folded in at parse time.
type IntLit struct {
	Value int64
}

// FloatLit is a floating point literal, sign folded in at parse time.
type FloatLit struct {
	Value float64
}

// TextLit is a quoted text literal, escapes decoded.
type TextLit struct {
	Value string
}

func (*BoolLit) isExpr()  {}
func (*IntLit) isExpr()   {}
func (*FloatLit) isExpr() {}
func (*TextLit) isExpr()  {}

// CompareOp enumerates the comparison operators.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
)

// Compare is a chained comparison: First Ops[0] Rest[0] Ops[1] Rest[1] ...
// a OP1 b OP2 c means (a OP1 b) and (b OP2 c).
type Compare struct {
	First Expr
	Ops   []CompareOp
	Rest  []Expr
}

func (*Compare) isExpr() {}

// BoolOpKind enumerates the boolean combinators.
type BoolOpKind int

const (
	OpAnd BoolOpKind = iota
	OpOr
)

// BoolExpr combines two or more boolean operands with and/or.
type BoolExpr struct {
	Op       BoolOpKind
	Operands []Expr
}

func (*BoolExpr) isExpr() {}

// CheckCondition reports whether text is a well-formed condition. It
// returns nil for valid text and the underlying ParseError otherwise,
// which tooling can surface where evaluation would only yield false.
func CheckCondition(text string) error {
	_, err := parseCondition(text)
	return err
}

// parseCondition parses source into an Expr or a ParseError. The grammar,
// lowest precedence first: or, and, chained comparison, then literals,
// signed numeric literals and parenthesized groups.
func parseCondition(source string) (Expr, error) {
	tokens, err := lexCondition(source)
	if err != nil {
		return nil, err
	}

	p := &condParser{source: source, tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, p.errorf(tok, "unexpected trailing input")
	}
	return expr, nil
}

type condParser struct {
	source string
	tokens []token
	index  int
}

func (p *condParser) peek() token {
	return p.tokens[p.index]
}

func (p *condParser) advance() token {
	tok := p.tokens[p.index]
	if tok.kind != tokenEOF {
		p.index++
	}
	return tok
}

func (p *condParser) errorf(tok token, msg string) error {
	return &ParseError{Text: p.source, Pos: tok.pos, Msg: msg}
}

func (p *condParser) parseOr() (Expr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenOr {
		return first, nil
	}

	operands := []Expr{first}
	for p.peek().kind == tokenOr {
		p.advance()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	return &BoolExpr{Op: OpOr, Operands: operands}, nil
}

func (p *condParser) parseAnd() (Expr, error) {
	first, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenAnd {
		return first, nil
	}

	operands := []Expr{first}
	for p.peek().kind == tokenAnd {
		p.advance()
		next, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	return &BoolExpr{Op: OpAnd, Operands: operands}, nil
}

func (p *condParser) parseComparison() (Expr, error) {
	first, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	var (
		ops  []CompareOp
		rest []Expr
	)
	for {
		op, ok := compareOpFor(p.peek().kind)
		if !ok {
			break
		}
		p.advance()
		next, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		rest = append(rest, next)
	}

	if len(ops) == 0 {
		return first, nil
	}
	return &Compare{First: first, Ops: ops, Rest: rest}, nil
}

func compareOpFor(kind tokenKind) (CompareOp, bool) {
	switch kind {
	case tokenEq:
		return OpEq, true
	case tokenNe:
		return OpNe, true
	case tokenGt:
		return OpGt, true
	case tokenGe:
		return OpGe, true
	case tokenLt:
		return OpLt, true
	case tokenLe:
		return OpLe, true
	}
	return 0, false
}

func (p *condParser) parseOperand() (Expr, error) {
	tok := p.advance()
	switch tok.kind {
	case tokenTrue:
		return &BoolLit{Value: true}, nil
	case tokenFalse:
		return &BoolLit{Value: false}, nil
	case tokenText:
		return &TextLit{Value: tok.text}, nil
	case tokenInt:
		return numberLit(tok.text, false)
	case tokenFloat:
		return numberLit(tok.text, true)
	case tokenPlus, tokenMinus:
		return p.parseSigned(tok)
	case tokenLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing := p.advance()
		if closing.kind != tokenRParen {
			return nil, p.errorf(closing, "missing closing parenthesis")
		}
		return inner, nil
	case tokenEOF:
		return nil, p.errorf(tok, "unexpected end of condition")
	}
	return nil, p.errorf(tok, "unexpected token "+strconv.Quote(tok.text))
}

// parseSigned folds a unary sign into the numeric literal that must follow
// it. Sign applies to nothing else.
func (p *condParser) parseSigned(sign token) (Expr, error) {
	tok := p.advance()
	negative := sign.kind == tokenMinus
	switch tok.kind {
	case tokenInt:
		expr, err := numberLit(tok.text, false)
		if err != nil || !negative {
			return expr, err
		}
		return negateNumber(expr), nil
	case tokenFloat:
		expr, err := numberLit(tok.text, true)
		if err != nil || !negative {
			return expr, err
		}
		return negateNumber(expr), nil
	}
	return nil, p.errorf(sign, "unary sign must be followed by a number")
}

func negateNumber(expr Expr) Expr {
	switch e := expr.(type) {
	case *IntLit:
		return &IntLit{Value: -e.Value}
	case *FloatLit:
		return &FloatLit{Value: -e.Value}
	}
	return expr
}

// numberLit converts a scanned number. Integers too wide for int64 fall
// back to float, matching arbitrary-precision source data as closely as a
// fixed-width representation can.
func numberLit(text string, isFloat bool) (Expr, error) {
	if !isFloat {
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			return &IntLit{Value: v}, nil
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, &ParseError{Text: text, Msg: "malformed number"}
	}
	return &FloatLit{Value: v}, nil
}

// parseMemo caches parse results by exact source text, failures included,
// so repeated evaluations of the same condition never re-run the parser.
// Eviction discards the oldest entry first.
type parseMemo struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]parseResult
	order    []string

	hits     uint64
	misses   uint64
	compiles uint64
}

type parseResult struct {
	expr Expr
	err  error
}

func newParseMemo(capacity int) (*parseMemo, error) {
	if capacity <= 0 {
		return nil, &ConfigError{Msg: "parse memo capacity must be positive, got " + strconv.Itoa(capacity)}
	}
	return &parseMemo{
		capacity: capacity,
		entries:  make(map[string]parseResult, capacity),
	}, nil
}

// parse returns the memoized result for text, compiling it on first sight.
// The lookup-or-insert runs as one atomic unit.
func (m *parseMemo) parse(text string) (Expr, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if res, ok := m.entries[text]; ok {
		m.hits++
		return res.expr, res.err
	}
	m.misses++
	m.compiles++

	expr, err := parseCondition(text)
	if len(m.entries) >= m.capacity {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}
	m.entries[text] = parseResult{expr: expr, err: err}
	m.order = append(m.order, text)
	return expr, err
}

func (m *parseMemo) stats() (hits, misses, compiles uint64, size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses, m.compiles, len(m.entries)
}
