package i18n

// value is the runtime result of one expression node.
type value struct {
	kind valueKind
	b    bool
	i    int64
	f    float64
	s    string
}

type valueKind int

const (
	kindBool valueKind = iota
	kindInt
	kindFloat
	kindText
)

// evalCondition evaluates a parsed condition to a boolean. The result of
// the whole expression must itself be boolean; anything else is an
// EvaluationError for the caller to collapse to false.
func evalCondition(expr Expr) (bool, error) {
	v, err := evalExpr(expr)
	if err != nil {
		return false, err
	}
	if v.kind != kindBool {
		return false, &EvaluationError{Msg: "condition does not evaluate to a boolean"}
	}
	return v.b, nil
}

func evalExpr(expr Expr) (value, error) {
	switch e := expr.(type) {
	case *BoolLit:
		return value{kind: kindBool, b: e.Value}, nil
	case *IntLit:
		return value{kind: kindInt, i: e.Value}, nil
	case *FloatLit:
		return value{kind: kindFloat, f: e.Value}, nil
	case *TextLit:
		return value{kind: kindText, s: e.Value}, nil
	case *Compare:
		return evalCompare(e)
	case *BoolExpr:
		return evalBoolExpr(e)
	}
	return value{}, &EvaluationError{Msg: "unknown expression node"}
}

// evalCompare walks a comparison chain pairwise, left to right, stopping at
// the first false pair.
func evalCompare(cmp *Compare) (value, error) {
	prev, err := evalExpr(cmp.First)
	if err != nil {
		return value{}, err
	}

	for i, op := range cmp.Ops {
		next, err := evalExpr(cmp.Rest[i])
		if err != nil {
			return value{}, err
		}
		ok, err := comparePair(op, prev, next)
		if err != nil {
			return value{}, err
		}
		if !ok {
			return value{kind: kindBool, b: false}, nil
		}
		prev = next
	}
	return value{kind: kindBool, b: true}, nil
}

// evalBoolExpr evaluates every operand eagerly, then combines. Operands
// must be boolean; there is no truthiness for numbers or text.
func evalBoolExpr(be *BoolExpr) (value, error) {
	results := make([]bool, len(be.Operands))
	for i, operand := range be.Operands {
		v, err := evalExpr(operand)
		if err != nil {
			return value{}, err
		}
		if v.kind != kindBool {
			return value{}, &EvaluationError{Msg: "and/or operand is not a boolean"}
		}
		results[i] = v.b
	}

	if be.Op == OpAnd {
		for _, r := range results {
			if !r {
				return value{kind: kindBool, b: false}, nil
			}
		}
		return value{kind: kindBool, b: true}, nil
	}

	for _, r := range results {
		if r {
			return value{kind: kindBool, b: true}, nil
		}
	}
	return value{kind: kindBool, b: false}, nil
}

// comparePair applies op to one adjacent operand pair. Numeric kinds and
// booleans compare as numbers, text compares with text, and any category
// mix is an EvaluationError.
func comparePair(op CompareOp, a, b value) (bool, error) {
	if a.kind == kindText || b.kind == kindText {
		if a.kind != kindText || b.kind != kindText {
			return false, &EvaluationError{Msg: "cannot compare text with a non-text value"}
		}
		return compareOrdered(op, compareStrings(a.s, b.s)), nil
	}

	// Both numeric-like. Integers compare exactly when neither side is a
	// float; booleans coerce to 0/1.
	if a.kind != kindFloat && b.kind != kindFloat {
		return compareOrdered(op, compareInts(a.asInt(), b.asInt())), nil
	}
	return compareOrdered(op, compareFloats(a.asFloat(), b.asFloat())), nil
}

func (v value) asInt() int64 {
	switch v.kind {
	case kindBool:
		if v.b {
			return 1
		}
		return 0
	case kindInt:
		return v.i
	}
	return 0
}

func (v value) asFloat() float64 {
	switch v.kind {
	case kindBool:
		if v.b {
			return 1
		}
		return 0
	case kindInt:
		return float64(v.i)
	case kindFloat:
		return v.f
	}
	return 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareOrdered(op CompareOp, cmp int) bool {
	switch op {
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	}
	return false
}
