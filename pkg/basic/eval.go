package basic

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrDivisionByZero      = errors.New("division by zero")
	ErrIllegalFunctionCall = errors.New("illegal function call")
)

// Env supplies everything an expression can observe besides its literals.
type Env interface {
	// Scalar returns the value bound to name. ok is false for unbound names.
	Scalar(name string) (v Value, ok bool)
	// Element returns an array element. Implementations decide whether an
	// out-of-range index is an error or a logged zero value.
	Element(name string, index int) (Value, error)
	Peek(addr int) int
	// Point reads the graphics plane at 0-based coordinates.
	Point(x, y int) int
	// Inkey returns and clears the pending key, or "".
	Inkey() string
	// Random returns a uniform float in [0,1).
	Random() float64
}

type evaluator struct {
	env       Env
	inkey     string
	inkeyRead bool
}

// Eval reduces an expression tree to a value.
func Eval(expr Expr, env Env) (Value, error) {
	e := &evaluator{env: env}
	return e.eval(expr)
}

func (e *evaluator) eval(expr Expr) (Value, error) {
	switch n := expr.(type) {
	case *NumberLit:
		return Num(n.Value), nil

	case *StringLit:
		return Str(n.Value), nil

	case *VarRef:
		if v, ok := e.env.Scalar(n.Name); ok {
			return v, nil
		}
		return Zero(n.Name), nil

	case *IndexExpr:
		idx, err := e.evalIndex(n.Index)
		if err != nil {
			return Value{}, err
		}
		return e.env.Element(n.Name, idx)

	case *CallExpr:
		fn, ok := builtins[n.Name]
		if !ok {
			return Value{}, fmt.Errorf("%w: unknown function %s", ErrSyntax, n.Name)
		}
		args := make([]Value, len(n.Args))
		for i, a := range n.Args {
			v, err := e.eval(a)
			if err != nil {
				return Value{}, err
			}
			args[i] = v
		}
		return fn.call(e, args)

	case *UnaryExpr:
		v, err := e.eval(n.Operand)
		if err != nil {
			return Value{}, err
		}
		switch n.Op {
		case NOT:
			return Bool(!v.Truthy()), nil
		case MINUS:
			if v.Kind != Number {
				return Value{}, fmt.Errorf("%w: cannot negate a string", ErrTypeMismatch)
			}
			return Num(-v.Num), nil
		case PLUS:
			if v.Kind != Number {
				return Value{}, fmt.Errorf("%w: unary + on a string", ErrTypeMismatch)
			}
			return v, nil
		}

	case *BinaryExpr:
		return e.evalBinary(n)
	}
	return Value{}, fmt.Errorf("%w: cannot evaluate %s", ErrSyntax, expr)
}

// evalIndex evaluates an array subscript and truncates it to an integer.
func (e *evaluator) evalIndex(expr Expr) (int, error) {
	v, err := e.eval(expr)
	if err != nil {
		return 0, err
	}
	if v.Kind != Number {
		return 0, fmt.Errorf("%w: subscript must be a number", ErrTypeMismatch)
	}
	return int(math.Trunc(v.Num)), nil
}

func (e *evaluator) evalBinary(n *BinaryExpr) (Value, error) {
	left, err := e.eval(n.Left)
	if err != nil {
		return Value{}, err
	}

	switch n.Op {
	case AND:
		if !left.Truthy() {
			return Bool(false), nil
		}
		right, err := e.eval(n.Right)
		if err != nil {
			return Value{}, err
		}
		return Bool(right.Truthy()), nil
	case OR:
		if left.Truthy() {
			return Bool(true), nil
		}
		right, err := e.eval(n.Right)
		if err != nil {
			return Value{}, err
		}
		return Bool(right.Truthy()), nil
	}

	right, err := e.eval(n.Right)
	if err != nil {
		return Value{}, err
	}

	if isComparison(n.Op) {
		return compare(n.Op, left, right)
	}

	if n.Op == PLUS && left.Kind == Text && right.Kind == Text {
		return Str(left.Str + right.Str), nil
	}
	if left.Kind != Number || right.Kind != Number {
		return Value{}, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, left.Kind, opSymbol(n.Op), right.Kind)
	}
	a, b := left.Num, right.Num

	switch n.Op {
	case PLUS:
		return Num(a + b), nil
	case MINUS:
		return Num(a - b), nil
	case STAR:
		return Num(a * b), nil
	case SLASH:
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}
		return Num(a / b), nil
	case MOD:
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return Num(m), nil
	case CARET:
		if a == 0 && b < 0 {
			return Value{}, ErrDivisionByZero
		}
		r := math.Pow(a, b)
		if math.IsNaN(r) {
			return Value{}, fmt.Errorf("%w: %s^%s", ErrIllegalFunctionCall, FormatNumber(a), FormatNumber(b))
		}
		return Num(r), nil
	}
	return Value{}, fmt.Errorf("%w: unknown operator %s", ErrSyntax, n.Op)
}

// compare applies a relational operator. Equality between a number and a
// string is false; ordering them is a type mismatch.
func compare(op TokenType, left, right Value) (Value, error) {
	if left.Kind != right.Kind {
		switch op {
		case EQ:
			return Bool(false), nil
		case NE:
			return Bool(true), nil
		}
		return Value{}, fmt.Errorf("%w: cannot compare %s with %s", ErrTypeMismatch, left.Kind, right.Kind)
	}

	var c int
	if left.Kind == Text {
		switch {
		case left.Str < right.Str:
			c = -1
		case left.Str > right.Str:
			c = 1
		}
	} else {
		switch {
		case left.Num < right.Num:
			c = -1
		case left.Num > right.Num:
			c = 1
		}
	}

	switch op {
	case EQ:
		return Bool(c == 0), nil
	case NE:
		return Bool(c != 0), nil
	case LT:
		return Bool(c < 0), nil
	case GT:
		return Bool(c > 0), nil
	case LE:
		return Bool(c <= 0), nil
	case GE:
		return Bool(c >= 0), nil
	}
	return Value{}, fmt.Errorf("%w: unknown comparison %s", ErrSyntax, op)
}

// EvalText parses and evaluates src in one step. When src does not parse, the
// raw text with its double quotes removed is returned as a string.
func EvalText(src string, env Env) (Value, error) {
	expr, err := ParseExpr(src)
	if err != nil {
		return Str(stripQuotes(src)), nil
	}
	return Eval(expr, env)
}

func stripQuotes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '"' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
