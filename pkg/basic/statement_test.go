package basic

import (
	"errors"
	"reflect"
	"testing"

	"trs80/pkg/program"
)

func TestParseStatement(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Stmt
	}{
		{
			name:     "Empty",
			input:    "  ",
			expected: &RemStmt{},
		},
		{
			name:     "Remark",
			input:    "REM HELLO: THERE",
			expected: &RemStmt{Text: "HELLO: THERE"},
		},
		{
			name:  "Implicit LET",
			input: "A=1+2",
			expected: &LetStmt{
				Target: Target{Name: "A"},
				Value:  &BinaryExpr{Op: PLUS, Left: &NumberLit{Value: 1}, Right: &NumberLit{Value: 2}},
			},
		},
		{
			name:  "Explicit LET into array",
			input: `LET N$(2)="X"`,
			expected: &LetStmt{
				Target: Target{Name: "N$", Index: &NumberLit{Value: 2}},
				Value:  &StringLit{Value: "X"},
			},
		},
		{
			name:  "PRINT with separators",
			input: `PRINT "A";B,`,
			expected: &PrintStmt{
				Items: []PrintItem{
					{Expr: &StringLit{Value: "A"}, Sep: ';'},
					{Expr: &VarRef{Name: "B"}, Sep: ','},
				},
				NoNewline: true,
			},
		},
		{
			name:  "Question mark is PRINT",
			input: `?1`,
			expected: &PrintStmt{
				Items: []PrintItem{{Expr: &NumberLit{Value: 1}}},
			},
		},
		{
			name:  "PRINT juxtaposed items",
			input: `PRINT "X="X`,
			expected: &PrintStmt{
				Items: []PrintItem{
					{Expr: &StringLit{Value: "X="}, Sep: ';'},
					{Expr: &VarRef{Name: "X"}},
				},
			},
		},
		{
			name:  "PRINT TAB",
			input: `PRINT TAB(5);"*"`,
			expected: &PrintStmt{
				Items: []PrintItem{
					{Tab: &NumberLit{Value: 5}, Sep: ';'},
					{Expr: &StringLit{Value: "*"}},
				},
			},
		},
		{
			name:  "PRINT@",
			input: `PRINT@ 64, "HI";`,
			expected: &PrintStmt{
				At:        &NumberLit{Value: 64},
				Items:     []PrintItem{{Expr: &StringLit{Value: "HI"}, Sep: ';'}},
				NoNewline: true,
			},
		},
		{
			name:  "PRINT item that does not parse is text",
			input: `PRINT 1+;"X"`,
			expected: &PrintStmt{
				Items: []PrintItem{
					{Expr: &StringLit{Value: "1+"}, Sep: ';'},
					{Expr: &StringLit{Value: "X"}},
				},
			},
		},
		{
			name:     "LET value that does not parse is text",
			input:    `B$=HELLO "THERE"`,
			expected: &LetStmt{Target: Target{Name: "B$"}, Value: &StringLit{Value: "HELLO THERE"}},
		},
		{
			name:     "PRINT to tape",
			input:    `PRINT#-1,A,B$`,
			expected: &TapePrintStmt{Values: []Expr{&VarRef{Name: "A"}, &VarRef{Name: "B$"}}},
		},
		{
			name:  "INPUT with prompt",
			input: `INPUT "NAME";N$`,
			expected: &InputStmt{
				Prompt: "NAME", HasPrompt: true,
				Targets: []Target{{Name: "N$"}},
			},
		},
		{
			name:     "INPUT several",
			input:    `INPUT A,B`,
			expected: &InputStmt{Targets: []Target{{Name: "A"}, {Name: "B"}}},
		},
		{
			name:     "INPUT from tape",
			input:    `INPUT#-1,A`,
			expected: &TapeInputStmt{Targets: []Target{{Name: "A"}}},
		},
		{
			name:  "IF THEN number ELSE number",
			input: `IF A>1 THEN 100 ELSE 200`,
			expected: &IfStmt{
				Cond: &BinaryExpr{Op: GT, Left: &VarRef{Name: "A"}, Right: &NumberLit{Value: 1}},
				Then: &GotoStmt{Target: program.Key{Line: 100}},
				Else: &GotoStmt{Target: program.Key{Line: 200}},
			},
		},
		{
			name:  "IF THEN statement",
			input: `IF A=1 THEN B=2`,
			expected: &IfStmt{
				Cond: &BinaryExpr{Op: EQ, Left: &VarRef{Name: "A"}, Right: &NumberLit{Value: 1}},
				Then: &LetStmt{Target: Target{Name: "B"}, Value: &NumberLit{Value: 2}},
			},
		},
		{
			name:  "IF GOTO",
			input: `IF X GOTO 50`,
			expected: &IfStmt{
				Cond: &VarRef{Name: "X"},
				Then: &GotoStmt{Target: program.Key{Line: 50}},
			},
		},
		{
			name:  "FOR with STEP",
			input: `FOR I=10 TO 1 STEP -1`,
			expected: &ForStmt{
				Var: "I", Start: &NumberLit{Value: 10}, End: &NumberLit{Value: 1},
				Step: &UnaryExpr{Op: MINUS, Operand: &NumberLit{Value: 1}},
			},
		},
		{
			name:     "NEXT",
			input:    `NEXT I`,
			expected: &NextStmt{Var: "I"},
		},
		{
			name:     "GOSUB sub-statement",
			input:    `GOSUB 100.1`,
			expected: &GosubStmt{Target: program.Key{Line: 100, Sub: 1}},
		},
		{
			name:  "ON GOSUB",
			input: `ON K GOSUB 100,200`,
			expected: &OnGotoStmt{
				Selector: &VarRef{Name: "K"},
				Targets:  []program.Key{{Line: 100}, {Line: 200}},
				Gosub:    true,
			},
		},
		{
			name:  "DIM two arrays",
			input: `DIM A(10),B$(5)`,
			expected: &DimStmt{Arrays: []DimDecl{
				{Name: "A", Size: &NumberLit{Value: 10}},
				{Name: "B$", Size: &NumberLit{Value: 5}},
			}},
		},
		{
			name:     "DATA keeps quotes",
			input:    `DATA 1, "A,B" ,X`,
			expected: &DataStmt{Items: []string{"1", `"A,B"`, "X"}},
		},
		{
			name:  "SET",
			input: `SET(1,2)`,
			expected: &SetStmt{X: &NumberLit{Value: 1}, Y: &NumberLit{Value: 2}},
		},
		{
			name:  "RESET",
			input: `RESET (1,2)`,
			expected: &SetStmt{X: &NumberLit{Value: 1}, Y: &NumberLit{Value: 2}, Reset: true},
		},
		{
			name:     "Keyword prefix without space",
			input:    `GOTO10`,
			expected: &GotoStmt{Target: program.Key{Line: 10}},
		},
		{
			name:     "Unknown",
			input:    `FROB 1`,
			expected: &UnknownStmt{Text: "FROB 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatement(tt.input)
			if err != nil {
				t.Fatalf("ParseStatement(%q): %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseStatement(%q):\nexpected %#v\ngot      %#v", tt.input, tt.expected, got)
			}
		})
	}
}

func TestParseStatement_Errors(t *testing.T) {
	inputs := []string{
		`GOTO`,
		`GOTO X`,
		`IF A PRINT`,
		`FOR I=1`,
		`DIM A`,
		`PRINT#2,A`,
		`SET(1)`,
		`LET 5=1`,
		`A=`,
		`ON X PRINT 10`,
	}
	for _, input := range inputs {
		if _, err := ParseStatement(input); !errors.Is(err, ErrSyntax) {
			t.Errorf("ParseStatement(%q): expected syntax error, got %v", input, err)
		}
	}
}
