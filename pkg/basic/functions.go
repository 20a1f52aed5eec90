package basic

import (
	"fmt"
	"math"
	"strings"
)

type builtin struct {
	minArgs, maxArgs int
	call             func(e *evaluator, args []Value) (Value, error)
}

func (b builtin) arity() string {
	switch {
	case b.minArgs == b.maxArgs && b.minArgs == 1:
		return "1 argument"
	case b.minArgs == b.maxArgs:
		return fmt.Sprintf("%d arguments", b.minArgs)
	}
	return fmt.Sprintf("%d to %d arguments", b.minArgs, b.maxArgs)
}

// reserved words can never name a variable.
var reserved = map[string]bool{
	"THEN": true, "ELSE": true, "TO": true, "STEP": true,
	"GOTO": true, "GOSUB": true, "TAB": true,
}

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"ABS": {1, 1, numeric(math.Abs)},
		"INT": {1, 1, numeric(math.Trunc)},
		"FIX": {1, 1, numeric(math.Trunc)},
		"SGN": {1, 1, numeric(sign)},
		"SQR": {1, 1, domain(math.Sqrt, func(x float64) bool { return x >= 0 })},
		"SIN": {1, 1, numeric(math.Sin)},
		"COS": {1, 1, numeric(math.Cos)},
		"TAN": {1, 1, numeric(math.Tan)},
		"ATN": {1, 1, numeric(math.Atan)},
		"LOG": {1, 1, domain(math.Log, func(x float64) bool { return x > 0 })},
		"EXP": {1, 1, numeric(math.Exp)},

		"RND":     {0, 1, fnRnd},
		"VAL":     {1, 1, fnVal},
		"ASC":     {1, 1, fnAsc},
		"CHR$":    {1, 1, fnChr},
		"LEN":     {1, 1, fnLen},
		"LEFT$":   {2, 2, fnLeft},
		"RIGHT$":  {2, 2, fnRight},
		"MID$":    {2, 3, fnMid},
		"STR$":    {1, 1, fnStr},
		"STRING$": {2, 2, fnString},
		"INSTR":   {2, 3, fnInstr},
		"PEEK":    {1, 1, fnPeek},
		"POINT":   {2, 2, fnPoint},
		"INKEY$":  {0, 0, fnInkey},
	}
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func numArg(args []Value, i int) (float64, error) {
	if args[i].Kind != Number {
		return 0, fmt.Errorf("%w: argument %d must be a number", ErrTypeMismatch, i+1)
	}
	return args[i].Num, nil
}

func intArg(args []Value, i int) (int, error) {
	f, err := numArg(args, i)
	if err != nil {
		return 0, err
	}
	return int(math.Trunc(f)), nil
}

func strArg(args []Value, i int) (string, error) {
	if args[i].Kind != Text {
		return "", fmt.Errorf("%w: argument %d must be a string", ErrTypeMismatch, i+1)
	}
	return args[i].Str, nil
}

func numeric(f func(float64) float64) func(*evaluator, []Value) (Value, error) {
	return func(_ *evaluator, args []Value) (Value, error) {
		x, err := numArg(args, 0)
		if err != nil {
			return Value{}, err
		}
		return Num(f(x)), nil
	}
}

func domain(f func(float64) float64, ok func(float64) bool) func(*evaluator, []Value) (Value, error) {
	return func(_ *evaluator, args []Value) (Value, error) {
		x, err := numArg(args, 0)
		if err != nil {
			return Value{}, err
		}
		if !ok(x) {
			return Value{}, fmt.Errorf("%w: argument %s out of domain", ErrIllegalFunctionCall, FormatNumber(x))
		}
		return Num(f(x)), nil
	}
}

// fnRnd returns a float in [0,1) without an argument or for n < 1, and an
// integer in [0,n) otherwise.
func fnRnd(e *evaluator, args []Value) (Value, error) {
	r := e.env.Random()
	if len(args) == 0 {
		return Num(r), nil
	}
	n, err := numArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	if n < 1 {
		return Num(r), nil
	}
	return Num(math.Floor(r * math.Trunc(n))), nil
}

func fnVal(_ *evaluator, args []Value) (Value, error) {
	s, err := strArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	f, _ := ParseNumber(s)
	return Num(f), nil
}

func fnAsc(_ *evaluator, args []Value) (Value, error) {
	s, err := strArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	if s == "" {
		return Value{}, fmt.Errorf("%w: ASC of empty string", ErrIllegalFunctionCall)
	}
	return Num(float64([]rune(s)[0])), nil
}

func fnChr(_ *evaluator, args []Value) (Value, error) {
	n, err := intArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	if n < 0 || n > 0x10FFFF {
		return Value{}, fmt.Errorf("%w: CHR$(%d)", ErrIllegalFunctionCall, n)
	}
	return Str(string(rune(n))), nil
}

func fnLen(_ *evaluator, args []Value) (Value, error) {
	s, err := strArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	return Num(float64(len([]rune(s)))), nil
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}

func fnLeft(_ *evaluator, args []Value) (Value, error) {
	s, err := strArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	n, err := intArg(args, 1)
	if err != nil {
		return Value{}, err
	}
	r := []rune(s)
	return Str(string(r[:clamp(n, 0, len(r))])), nil
}

func fnRight(_ *evaluator, args []Value) (Value, error) {
	s, err := strArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	n, err := intArg(args, 1)
	if err != nil {
		return Value{}, err
	}
	r := []rune(s)
	return Str(string(r[len(r)-clamp(n, 0, len(r)):])), nil
}

// fnMid implements MID$(s, start[, length]) with a 1-based start.
func fnMid(_ *evaluator, args []Value) (Value, error) {
	s, err := strArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	start, err := intArg(args, 1)
	if err != nil {
		return Value{}, err
	}
	if start < 1 {
		return Value{}, fmt.Errorf("%w: MID$ start %d", ErrIllegalFunctionCall, start)
	}
	r := []rune(s)
	from := clamp(start-1, 0, len(r))
	to := len(r)
	if len(args) == 3 {
		n, err := intArg(args, 2)
		if err != nil {
			return Value{}, err
		}
		to = clamp(from+max(n, 0), from, len(r))
	}
	return Str(string(r[from:to])), nil
}

func fnStr(_ *evaluator, args []Value) (Value, error) {
	return Str(args[0].String()), nil
}

// fnString implements STRING$(count, char) where char is a string (its first
// character is used) or a character code.
func fnString(_ *evaluator, args []Value) (Value, error) {
	count, err := intArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	if count < 0 {
		return Value{}, fmt.Errorf("%w: STRING$ count %d", ErrIllegalFunctionCall, count)
	}
	var ch string
	if args[1].Kind == Text {
		if args[1].Str == "" {
			return Value{}, fmt.Errorf("%w: STRING$ of empty string", ErrIllegalFunctionCall)
		}
		ch = string([]rune(args[1].Str)[0])
	} else {
		code := int(args[1].Num)
		if code < 0 || code > 0x10FFFF {
			return Value{}, fmt.Errorf("%w: STRING$ code %d", ErrIllegalFunctionCall, code)
		}
		ch = string(rune(code))
	}
	return Str(strings.Repeat(ch, count)), nil
}

// fnInstr implements INSTR(s, sub) and INSTR(start, s, sub). Positions are
// 1-based and 0 means not found.
func fnInstr(_ *evaluator, args []Value) (Value, error) {
	start := 1
	if len(args) == 3 {
		n, err := intArg(args, 0)
		if err != nil {
			return Value{}, err
		}
		if n < 1 {
			return Value{}, fmt.Errorf("%w: INSTR start %d", ErrIllegalFunctionCall, n)
		}
		start = n
		args = args[1:]
	}
	s, err := strArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	sub, err := strArg(args, 1)
	if err != nil {
		return Value{}, err
	}
	r := []rune(s)
	if start-1 > len(r) {
		return Num(0), nil
	}
	idx := strings.Index(string(r[start-1:]), sub)
	if idx < 0 {
		return Num(0), nil
	}
	return Num(float64(start + len([]rune(string(r[start-1:])[:idx])))), nil
}

func fnPeek(e *evaluator, args []Value) (Value, error) {
	addr, err := intArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	return Num(float64(e.env.Peek(addr))), nil
}

// fnPoint takes 1-based coordinates.
func fnPoint(e *evaluator, args []Value) (Value, error) {
	x, err := intArg(args, 0)
	if err != nil {
		return Value{}, err
	}
	y, err := intArg(args, 1)
	if err != nil {
		return Value{}, err
	}
	return Num(float64(e.env.Point(x-1, y-1))), nil
}

// fnInkey reads the pending key once per evaluation; every INKEY$ in the same
// expression sees that key.
func fnInkey(e *evaluator, _ []Value) (Value, error) {
	if !e.inkeyRead {
		e.inkey = e.env.Inkey()
		e.inkeyRead = true
	}
	return Str(e.inkey), nil
}
