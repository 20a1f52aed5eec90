package program

import (
	"fmt"
	"strconv"
	"strings"
)

// Key addresses a single statement. Line is the BASIC line number and Sub is
// the position of a colon-separated statement within that line (0 for the
// first). Keys print as "N" or "N.S".
type Key struct {
	Line int
	Sub  int
}

func (k Key) String() string {
	if k.Sub == 0 {
		return strconv.Itoa(k.Line)
	}
	return fmt.Sprintf("%d.%d", k.Line, k.Sub)
}

// Less orders keys by line number, then sub-statement.
func (k Key) Less(o Key) bool {
	if k.Line != o.Line {
		return k.Line < o.Line
	}
	return k.Sub < o.Sub
}

// ParseKey parses "10" or "10.2". Signs, exponents and empty parts are rejected.
func ParseKey(s string) (Key, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Key{}, false
	}
	whole, frac, hasDot := strings.Cut(s, ".")
	if !isDigits(whole) {
		return Key{}, false
	}
	line, err := strconv.Atoi(whole)
	if err != nil {
		return Key{}, false
	}
	k := Key{Line: line}
	if hasDot {
		if !isDigits(frac) {
			return Key{}, false
		}
		sub, err := strconv.Atoi(frac)
		if err != nil {
			return Key{}, false
		}
		k.Sub = sub
	}
	return k, true
}

// SplitNumber separates a leading line number from the rest of a source line.
// ok is false when the line does not begin with a number.
func SplitNumber(raw string) (k Key, text string, ok bool) {
	s := strings.TrimSpace(raw)
	end := 0
	for end < len(s) && (isDigit(s[end]) || s[end] == '.') {
		end++
	}
	if end == 0 {
		return Key{}, "", false
	}
	k, ok = ParseKey(s[:end])
	if !ok {
		return Key{}, "", false
	}
	return k, strings.TrimSpace(s[end:]), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
