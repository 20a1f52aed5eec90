package basic

import (
	"math"
	"strconv"
	"strings"
)

// Kind tags a Value as numeric or text.
type Kind int

const (
	Number Kind = iota
	Text
)

func (k Kind) String() string {
	if k == Text {
		return "string"
	}
	return "number"
}

// Value is a BASIC value: a float64 number or a string.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
}

// Num makes a numeric value.
func Num(f float64) Value { return Value{Kind: Number, Num: f} }

// Str makes a string value.
func Str(s string) Value { return Value{Kind: Text, Str: s} }

// Bool maps true to -1 and false to 0.
func Bool(b bool) Value {
	if b {
		return Num(-1)
	}
	return Num(0)
}

// Zero returns the initial value of a variable with the given name: "" for
// names ending in '$', 0 otherwise.
func Zero(name string) Value {
	if IsStringName(name) {
		return Str("")
	}
	return Num(0)
}

// IsStringName reports whether name carries the string sigil.
func IsStringName(name string) bool {
	return strings.HasSuffix(name, "$")
}

func (v Value) IsString() bool { return v.Kind == Text }

// Truthy is false for 0 and the empty string.
func (v Value) Truthy() bool {
	if v.Kind == Text {
		return v.Str != ""
	}
	return v.Num != 0
}

// String renders the value the way PRINT shows it.
func (v Value) String() string {
	if v.Kind == Text {
		return v.Str
	}
	return FormatNumber(v.Num)
}

// Quote renders strings in double quotes and numbers as PRINT shows them.
func (v Value) Quote() string {
	if v.Kind == Text {
		return `"` + v.Str + `"`
	}
	return FormatNumber(v.Num)
}

// FormatNumber prints integral values without a decimal point and everything
// else in the shortest form that reads back to the same float.
func FormatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NAN"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParseNumber reads the longest numeric prefix of s after trimming spaces.
// ok is false when no digits are found.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	if end < len(s) && (s[end] == 'E' || s[end] == 'e') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		if exp < len(s) && isDigit(s[exp]) {
			for exp < len(s) && isDigit(s[exp]) {
				exp++
			}
			end = exp
		}
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
