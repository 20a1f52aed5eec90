// Package program holds BASIC source: the editable listing typed by the user
// and the exploded, sorted statement sequence the interpreter executes.
package program

import (
	"sort"
	"strings"
)

// Statement is one executable statement after colon splitting.
type Statement struct {
	Key  Key
	Text string
}

func (s Statement) String() string {
	if s.Text == "" {
		return s.Key.String()
	}
	return s.Key.String() + " " + s.Text
}

// Program is the sorted statement sequence. It is the only addressing space
// for GOTO, GOSUB, ON GOTO and the NEXT resume point.
type Program struct {
	Statements []Statement
}

// Load explodes colon-joined statements into sub-statements, drops lines that
// do not start with a line number, and sorts the result. When two raw lines
// produce the same key the later one wins.
func Load(raw []string) *Program {
	var stmts []Statement
	for _, line := range raw {
		k, text, ok := SplitNumber(line)
		if !ok {
			continue
		}
		parts := SplitStatements(text)
		for i, part := range parts {
			if part == "" && len(parts) > 1 {
				continue
			}
			stmts = append(stmts, Statement{Key: Key{Line: k.Line, Sub: k.Sub + i}, Text: part})
		}
	}

	sort.SliceStable(stmts, func(i, j int) bool { return stmts[i].Key.Less(stmts[j].Key) })

	out := stmts[:0]
	for i, s := range stmts {
		if i+1 < len(stmts) && stmts[i+1].Key == s.Key {
			continue
		}
		out = append(out, s)
	}
	return &Program{Statements: out}
}

// Len returns the number of statements.
func (p *Program) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Statements)
}

// At returns the statement at index i.
func (p *Program) At(i int) Statement { return p.Statements[i] }

// FindIndex binary-searches for k.
func (p *Program) FindIndex(k Key) (int, bool) {
	if p == nil {
		return 0, false
	}
	i := sort.Search(len(p.Statements), func(i int) bool {
		return !p.Statements[i].Key.Less(k)
	})
	if i < len(p.Statements) && p.Statements[i].Key == k {
		return i, true
	}
	return i, false
}

// SplitStatements splits text at colons that are not inside double quotes.
// A REM statement keeps the rest of the line, colons included.
func SplitStatements(text string) []string {
	var parts []string
	inQuote := false
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			inQuote = !inQuote
		case ':':
			if inQuote {
				continue
			}
			if isRemark(text[start:i]) {
				continue
			}
			parts = append(parts, strings.TrimSpace(text[start:i]))
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(text[start:]))
}

func isRemark(stmt string) bool {
	s := strings.TrimSpace(stmt)
	return len(s) >= 3 && strings.EqualFold(s[:3], "REM")
}
