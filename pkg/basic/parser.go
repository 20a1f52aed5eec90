package basic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrSyntax = errors.New("syntax error")

// Parser consumes the token slice of one statement.
//
// Expression grammar (loosest binding first):
//
//	expression     = or
//	or             = and ("OR" and)*
//	and            = not ("AND" not)*
//	not            = "NOT" not | comparison
//	comparison     = additive (("=" | "<>" | "<" | ">" | "<=" | ">=") additive)*
//	additive       = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = unary (("*" | "/" | "MOD") unary)*
//	unary          = ("-" | "+") unary | power
//	power          = primary ("^" unary)?
//	primary        = NUMBER | STRING | "(" expression ")" | call | IDENT ("(" expression ")")?
type Parser struct {
	tokens []Token
	pos    int
	src    string
}

func newParser(src string) *Parser {
	return &Parser{tokens: Lex(src), src: src}
}

// fmtError wraps an error message with the statement being parsed.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	snippet := strings.TrimSpace(p.src)
	if snippet == "" {
		snippet = "<empty>"
	}
	return fmt.Errorf("%w: %s at column %d\n  |> %s", ErrSyntax, msg, tok.Pos+1, snippet)
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	return p.peekAt(0)
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return Token{Type: EOF, Pos: len(p.src), End: len(p.src)}
	}
	return p.tokens[p.pos+offset]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

func (p *Parser) expectWord(word string) error {
	tok := p.advance()
	if !tok.Is(word) {
		return p.fmtError(tok, "expected %s, got %q", word, tok.Lexeme)
	}
	return nil
}

// expectEnd fails unless every token has been consumed.
func (p *Parser) expectEnd() error {
	if tok := p.peek(); tok.Type != EOF {
		return p.fmtError(tok, "unexpected %q", tok.Lexeme)
	}
	return nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Expr, error) {
	expr, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == OR {
		op := p.advance().Type
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	expr, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND {
		op := p.advance().Type
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.peek().Type == NOT {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: NOT, Operand: operand}, nil
	}
	return p.parseComparison()
}

func isComparison(tt TokenType) bool {
	switch tt {
	case EQ, NE, LT, GT, LE, GE:
		return true
	}
	return false
}

func (p *Parser) parseComparison() (Expr, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for isComparison(p.peek().Type) {
		op := p.advance().Type
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PLUS || p.peek().Type == MINUS {
		op := p.advance().Type
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for t := p.peek().Type; t == STAR || t == SLASH || t == MOD; t = p.peek().Type {
		op := p.advance().Type
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if t := p.peek().Type; t == MINUS || t == PLUS {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: t, Operand: operand}, nil
	}
	return p.parsePower()
}

// parsePower binds tighter than unary minus on its left, so -2^2 is -4, and
// accepts a signed exponent, so 2^-1 is 0.5.
func (p *Parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != CARET {
		return base, nil
	}
	p.advance()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: CARET, Left: base, Right: exp}, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.advance()
	switch tok.Type {
	case NUMBER:
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.fmtError(tok, "bad number %q", tok.Lexeme)
		}
		return &NumberLit{Value: v}, nil

	case STRING:
		return &StringLit{Value: tok.Lexeme}, nil

	case LPAREN:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case IDENT:
		if fn, ok := builtins[tok.Lexeme]; ok {
			return p.parseCall(tok, fn)
		}
		if reserved[tok.Lexeme] {
			return nil, p.fmtError(tok, "unexpected keyword %s", tok.Lexeme)
		}
		if p.peek().Type == LPAREN {
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RPAREN); err != nil {
				return nil, err
			}
			return &IndexExpr{Name: tok.Lexeme, Index: index}, nil
		}
		return &VarRef{Name: tok.Lexeme}, nil
	}

	if tok.Type == EOF {
		return nil, p.fmtError(tok, "missing operand")
	}
	return nil, p.fmtError(tok, "unexpected %q", tok.Lexeme)
}

// parseCall parses the argument list of a built-in function and checks its
// arity.
func (p *Parser) parseCall(name Token, fn builtin) (Expr, error) {
	call := &CallExpr{Name: name.Lexeme}
	if p.peek().Type != LPAREN {
		if fn.minArgs > 0 {
			return nil, p.fmtError(name, "%s needs arguments", name.Lexeme)
		}
		return call, nil
	}
	if fn.maxArgs == 0 {
		return call, nil
	}
	p.advance()
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if p.peek().Type != COMMA {
			break
		}
		p.advance()
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	if len(call.Args) < fn.minArgs || len(call.Args) > fn.maxArgs {
		return nil, p.fmtError(name, "%s takes %s", name.Lexeme, fn.arity())
	}
	return call, nil
}

// parseTarget parses an assignable variable or array element.
func (p *Parser) parseTarget() (Target, error) {
	tok := p.advance()
	if tok.Type != IDENT || reserved[tok.Lexeme] {
		return Target{}, p.fmtError(tok, "expected variable, got %q", tok.Lexeme)
	}
	if _, ok := builtins[tok.Lexeme]; ok {
		return Target{}, p.fmtError(tok, "cannot assign to %s", tok.Lexeme)
	}
	t := Target{Name: tok.Lexeme}
	if p.peek().Type == LPAREN {
		p.advance()
		index, err := p.parseExpression()
		if err != nil {
			return Target{}, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return Target{}, err
		}
		t.Index = index
	}
	return t, nil
}

func (p *Parser) parseTargets() ([]Target, error) {
	var targets []Target
	for {
		t, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
		if p.peek().Type != COMMA {
			return targets, p.expectEnd()
		}
		p.advance()
	}
}

// ParseExpr parses a complete expression.
func ParseExpr(src string) (Expr, error) {
	p := newParser(src)
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return expr, nil
}
