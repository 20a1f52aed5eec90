package assistant

import (
	"fmt"
	"slices"
	"strings"

	"trs80/pkg/basic"
	"trs80/pkg/program"
)

// maxGap is the largest line-number step not reported as a gap.
const maxGap = 20

// Analysis is the result of a static pass over program source.
type Analysis struct {
	Issues   []string
	Warnings []string
}

// OK reports whether nothing was found.
func (a Analysis) OK() bool { return len(a.Issues) == 0 && len(a.Warnings) == 0 }

func (a Analysis) String() string {
	var b strings.Builder
	b.WriteString("=== PROGRAM ANALYSIS ===\n")
	if len(a.Issues) > 0 {
		b.WriteString("ISSUES FOUND:\n")
		for _, s := range a.Issues {
			fmt.Fprintf(&b, "  X %s\n", s)
		}
	}
	if len(a.Warnings) > 0 {
		b.WriteString("WARNINGS:\n")
		for _, s := range a.Warnings {
			fmt.Fprintf(&b, "  ! %s\n", s)
		}
	}
	if a.OK() {
		b.WriteString("No obvious issues detected\n")
	}
	return b.String()
}

// Analyze looks for common mistakes in raw program lines: duplicate or
// missing line numbers, large numbering gaps, FOR/NEXT imbalance, GOSUB with
// no RETURN and short variable names that are read but never assigned.
func Analyze(lines []string) Analysis {
	var a Analysis
	if len(lines) == 0 {
		a.Issues = append(a.Issues, "No program loaded")
		return a
	}

	var keys []program.Key
	seen := make(map[program.Key]bool)
	dup := false
	var stmts []string
	for _, raw := range lines {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		k, text, ok := program.SplitNumber(raw)
		if !ok {
			a.Issues = append(a.Issues, "Invalid line number in: "+raw)
			continue
		}
		if seen[k] {
			dup = true
		}
		seen[k] = true
		keys = append(keys, k)
		stmts = append(stmts, program.SplitStatements(strings.ToUpper(text))...)
	}
	if dup {
		a.Issues = append(a.Issues, "Duplicate line numbers detected")
	}

	slices.SortFunc(keys, func(x, y program.Key) int {
		switch {
		case x.Less(y):
			return -1
		case y.Less(x):
			return 1
		}
		return 0
	})
	for i := 1; i < len(keys); i++ {
		if keys[i].Line-keys[i-1].Line > maxGap {
			a.Warnings = append(a.Warnings, fmt.Sprintf("Large gap between line %s and %s", keys[i-1], keys[i]))
		}
	}

	var open []string
	gosubs, returns := 0, 0
	assigned := make(map[string]bool)
	used := make(map[string]bool)
	var usedOrder []string
	for _, s := range stmts {
		if strings.HasPrefix(s, "REM") || strings.HasPrefix(s, "DATA") {
			continue
		}
		toks := basic.Lex(s)
		if len(toks) == 0 {
			continue
		}
		first := toks[0]
		switch {
		case first.Is("FOR") && len(toks) > 1:
			open = append(open, toks[1].Lexeme)
			assigned[toks[1].Lexeme] = true
		case first.Is("NEXT"):
			if len(open) == 0 {
				a.Issues = append(a.Issues, "NEXT without matching FOR: "+s)
			} else {
				open = open[:len(open)-1]
			}
		case first.Is("RETURN"):
			returns++
		case first.Is("READ"), first.Is("INPUT"), first.Is("DIM"):
			for _, t := range toks[1:] {
				if t.Type == basic.IDENT {
					assigned[t.Lexeme] = true
				}
			}
		}
		for i, t := range toks {
			if t.Type != basic.IDENT {
				continue
			}
			if t.Is("GOSUB") {
				gosubs++
			}
			// Assignment targets: a name opening the statement or following
			// LET, THEN or ELSE.
			if i == 0 || toks[i-1].Is("LET") || toks[i-1].Is("THEN") || toks[i-1].Is("ELSE") {
				if i+1 < len(toks) && (toks[i+1].Type == basic.EQ || toks[i+1].Type == basic.LPAREN) {
					assigned[t.Lexeme] = true
					continue
				}
			}
			if isVariableName(t.Lexeme) && !used[t.Lexeme] {
				used[t.Lexeme] = true
				usedOrder = append(usedOrder, t.Lexeme)
			}
		}
	}
	if len(open) > 0 {
		a.Issues = append(a.Issues, "FOR loop(s) without matching NEXT: "+strings.Join(open, ", "))
	}
	if gosubs > 0 && returns == 0 {
		a.Warnings = append(a.Warnings, fmt.Sprintf("%d GOSUBs but no RETURN", gosubs))
	}

	var unassigned []string
	for _, name := range usedOrder {
		if !assigned[name] {
			unassigned = append(unassigned, name)
		}
	}
	if len(unassigned) > 0 {
		a.Warnings = append(a.Warnings, "Variables used but not clearly assigned: "+strings.Join(unassigned, ", "))
	}
	return a
}

var shortWords = map[string]bool{"TO": true, "IF": true, "ON": true, "GO": true}

// isVariableName reports whether word looks like a one or two character
// variable, with or without a '$'.
func isVariableName(word string) bool {
	base := strings.TrimSuffix(word, "$")
	if len(base) == 0 || len(base) > 2 || shortWords[word] {
		return false
	}
	if base[0] < 'A' || base[0] > 'Z' {
		return false
	}
	return len(base) == 1 || (base[1] >= 'A' && base[1] <= 'Z') || (base[1] >= '0' && base[1] <= '9')
}
