package basic

import (
	"fmt"
	"strings"

	"trs80/pkg/program"
)

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	String() string
}

// NumberLit is a numeric constant.
type NumberLit struct {
	Value float64
}

func (*NumberLit) exprNode()        {}
func (n *NumberLit) String() string { return FormatNumber(n.Value) }

// StringLit is a string constant "...".
type StringLit struct {
	Value string
}

func (*StringLit) exprNode()        {}
func (s *StringLit) String() string { return `"` + s.Value + `"` }

// VarRef reads a scalar variable.
//
//	PRINT A$
//	      ^^  VarRef{Name: "A$"}
type VarRef struct {
	Name string
}

func (*VarRef) exprNode()        {}
func (v *VarRef) String() string { return v.Name }

// IndexExpr reads an array element.
//
//	PRINT B(I+1)
//	      ^^^^^^  IndexExpr{Name: "B", Index: BinaryExpr{...}}
type IndexExpr struct {
	Name  string
	Index Expr
}

func (*IndexExpr) exprNode() {}
func (i *IndexExpr) String() string {
	return fmt.Sprintf("%s(%s)", i.Name, i.Index)
}

// CallExpr invokes a built-in function. INKEY$ and a bare RND are calls with
// no arguments.
type CallExpr struct {
	Name string
	Args []Expr
}

func (*CallExpr) exprNode() {}
func (c *CallExpr) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(args, ","))
}

// BinaryExpr represents Left Op Right for arithmetic, relational and logical
// operators.
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, opSymbol(b.Op), b.Right)
}

// UnaryExpr is -X, +X or NOT X.
type UnaryExpr struct {
	Op      TokenType
	Operand Expr
}

func (*UnaryExpr) exprNode() {}
func (u *UnaryExpr) String() string {
	if u.Op == NOT {
		return fmt.Sprintf("(NOT %s)", u.Operand)
	}
	return fmt.Sprintf("(%s%s)", opSymbol(u.Op), u.Operand)
}

func opSymbol(tt TokenType) string {
	switch tt {
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case STAR:
		return "*"
	case SLASH:
		return "/"
	case CARET:
		return "^"
	case EQ:
		return "="
	case NE:
		return "<>"
	case LT:
		return "<"
	case GT:
		return ">"
	case LE:
		return "<="
	case GE:
		return ">="
	}
	return tt.String()
}

//  Statement nodes

// Stmt is implemented by every executable statement.
type Stmt interface {
	stmtNode()
}

// Target is an assignable location: a scalar, or an array element when Index
// is set.
type Target struct {
	Name  string
	Index Expr
}

func (t Target) String() string {
	if t.Index == nil {
		return t.Name
	}
	return fmt.Sprintf("%s(%s)", t.Name, t.Index)
}

// PrintItem is one PRINT operand followed by its separator (';', ',' or 0).
// Tab is set for TAB(n) items, which have no Expr.
type PrintItem struct {
	Expr Expr
	Tab  Expr
	Sep  byte
}

// PrintStmt is PRINT or PRINT@. NoNewline is set by a trailing ';' or ','.
type PrintStmt struct {
	At        Expr
	Items     []PrintItem
	NoNewline bool
}

// TapePrintStmt is PRINT#-1,expr.
type TapePrintStmt struct {
	Values []Expr
}

// LetStmt is an explicit or implicit assignment.
type LetStmt struct {
	Target Target
	Value  Expr
}

// InputStmt is INPUT ["prompt";] var[,var...].
type InputStmt struct {
	Prompt    string
	HasPrompt bool
	Targets   []Target
}

// TapeInputStmt is INPUT#-1,var[,var...].
type TapeInputStmt struct {
	Targets []Target
}

// IfStmt is IF cond THEN stmt [ELSE stmt]. Else may be nil.
type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

// ForStmt is FOR var=start TO end [STEP step]. Step may be nil.
type ForStmt struct {
	Var   string
	Start Expr
	End   Expr
	Step  Expr
}

// NextStmt is NEXT [var]. The variable is recorded but not used to select
// the loop.
type NextStmt struct {
	Var string
}

// GotoStmt is GOTO n, and also the bare line number after THEN or ELSE.
type GotoStmt struct {
	Target program.Key
}

// GosubStmt is GOSUB n.
type GosubStmt struct {
	Target program.Key
}

// ReturnStmt is RETURN.
type ReturnStmt struct{}

// OnGotoStmt is ON expr GOTO n1,n2,... or ON expr GOSUB n1,n2,...
type OnGotoStmt struct {
	Selector Expr
	Targets  []program.Key
	Gosub    bool
}

// DimDecl declares one array: DIM name(size) allocates size+1 slots.
type DimDecl struct {
	Name string
	Size Expr
}

// DimStmt is DIM a(n)[,b(m)...].
type DimStmt struct {
	Arrays []DimDecl
}

// DataStmt holds the raw comma-separated DATA items.
type DataStmt struct {
	Items []string
}

// ReadStmt is READ var[,var...].
type ReadStmt struct {
	Targets []Target
}

// RestoreStmt is RESTORE.
type RestoreStmt struct{}

// PokeStmt is POKE addr,value.
type PokeStmt struct {
	Addr  Expr
	Value Expr
}

// SetStmt is SET(x,y), or RESET(x,y) when Reset is true. Coordinates are
// 1-based.
type SetStmt struct {
	X, Y  Expr
	Reset bool
}

// ClsStmt is CLS.
type ClsStmt struct{}

// StopStmt is STOP.
type StopStmt struct{}

// EndStmt is END.
type EndStmt struct{}

// RemStmt is a remark or an empty statement.
type RemStmt struct {
	Text string
}

// DelayStmt is DELAY n, a pause of n*10 milliseconds.
type DelayStmt struct {
	Ticks Expr
}

// UnknownStmt is a statement that starts with no known keyword.
type UnknownStmt struct {
	Text string
}

func (*PrintStmt) stmtNode()     {}
func (*TapePrintStmt) stmtNode() {}
func (*LetStmt) stmtNode()       {}
func (*InputStmt) stmtNode()     {}
func (*TapeInputStmt) stmtNode() {}
func (*IfStmt) stmtNode()        {}
func (*ForStmt) stmtNode()       {}
func (*NextStmt) stmtNode()      {}
func (*GotoStmt) stmtNode()      {}
func (*GosubStmt) stmtNode()     {}
func (*ReturnStmt) stmtNode()    {}
func (*OnGotoStmt) stmtNode()    {}
func (*DimStmt) stmtNode()       {}
func (*DataStmt) stmtNode()      {}
func (*ReadStmt) stmtNode()      {}
func (*RestoreStmt) stmtNode()   {}
func (*PokeStmt) stmtNode()      {}
func (*SetStmt) stmtNode()       {}
func (*ClsStmt) stmtNode()       {}
func (*StopStmt) stmtNode()      {}
func (*EndStmt) stmtNode()       {}
func (*RemStmt) stmtNode()       {}
func (*DelayStmt) stmtNode()     {}
func (*UnknownStmt) stmtNode()   {}
