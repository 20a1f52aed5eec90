package basic

import (
	"strings"

	"trs80/pkg/program"
)

// statementWords are matched as prefixes of the upper-cased statement, in
// this order. A leading "?" is shorthand for PRINT.
var statementWords = []string{
	"REM", "PRINT", "LET", "INPUT", "IF", "FOR", "NEXT", "GOTO", "GOSUB",
	"RETURN", "ON", "DIM", "DATA", "READ", "RESTORE", "POKE", "RESET", "SET",
	"CLS", "STOP", "END", "DELAY",
}

// letExempt statements may contain '=' without being an assignment.
var letExempt = []string{"LET", "IF", "FOR", "PRINT", "?", "INPUT", "READ", "DIM", "ON", "REM", "DATA"}

// ParseStatement parses one statement. Keywords are recognised by prefix, so
// "PRINTA" is PRINT A. A statement containing '=' outside quotes that does not
// begin with an exempt keyword is an implicit LET.
func ParseStatement(text string) (Stmt, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return &RemStmt{}, nil
	}
	upper := strings.ToUpper(text)

	if hasUnquoted(text, '=') && !hasAnyPrefix(upper, letExempt) {
		return parseLet(text)
	}

	if strings.HasPrefix(upper, "?") {
		return parsePrint(text[1:])
	}
	for _, word := range statementWords {
		if !strings.HasPrefix(upper, word) {
			continue
		}
		rest := text[len(word):]
		switch word {
		case "REM":
			return &RemStmt{Text: strings.TrimSpace(rest)}, nil
		case "PRINT":
			return parsePrint(rest)
		case "LET":
			return parseLet(rest)
		case "INPUT":
			return parseInput(rest)
		case "IF":
			return parseIf(rest)
		case "FOR":
			return parseFor(rest)
		case "NEXT":
			return parseNext(rest)
		case "GOTO":
			k, err := parseLineRef(rest)
			if err != nil {
				return nil, err
			}
			return &GotoStmt{Target: k}, nil
		case "GOSUB":
			k, err := parseLineRef(rest)
			if err != nil {
				return nil, err
			}
			return &GosubStmt{Target: k}, nil
		case "RETURN":
			return &ReturnStmt{}, newParser(rest).expectEnd()
		case "ON":
			return parseOn(rest)
		case "DIM":
			return parseDim(rest)
		case "DATA":
			return &DataStmt{Items: splitData(rest)}, nil
		case "READ":
			targets, err := newParser(rest).parseTargets()
			if err != nil {
				return nil, err
			}
			return &ReadStmt{Targets: targets}, nil
		case "RESTORE":
			return &RestoreStmt{}, nil
		case "POKE":
			return parsePoke(rest)
		case "RESET":
			return parseSet(rest, true)
		case "SET":
			return parseSet(rest, false)
		case "CLS":
			return &ClsStmt{}, nil
		case "STOP":
			return &StopStmt{}, nil
		case "END":
			return &EndStmt{}, nil
		case "DELAY":
			p := newParser(rest)
			ticks, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return &DelayStmt{Ticks: ticks}, p.expectEnd()
		}
	}
	return &UnknownStmt{Text: text}, nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// hasUnquoted reports whether c occurs in s outside double quotes.
func hasUnquoted(s string, c byte) bool {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"':
			inQuote = !inQuote
		case s[i] == c && !inQuote:
			return true
		}
	}
	return false
}

func parseLet(src string) (Stmt, error) {
	p := newParser(src)
	target, err := p.parseTarget()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(EQ); err != nil {
		return nil, err
	}
	start := p.pos
	value, err := p.parseExpression()
	if err != nil || p.peek().Type != EOF {
		p.pos = start
		raw := strings.TrimSpace(p.src[p.peek().Pos:])
		if raw == "" {
			return nil, err
		}
		value = &StringLit{Value: stripQuotes(raw)}
	}
	return &LetStmt{Target: target, Value: value}, nil
}

// exprOrText parses one expression running up to the next top-level ';' or
// ','. Source that does not parse becomes a string literal of its raw text
// with the double quotes removed.
func (p *Parser) exprOrText() Expr {
	start := p.pos
	if expr, err := p.parseExpression(); err == nil {
		return expr
	}
	p.pos = start
	from := p.peek().Pos
	depth := 0
	for {
		tok := p.peek()
		switch tok.Type {
		case LPAREN:
			depth++
		case RPAREN:
			depth--
		case SEMICOLON, COMMA:
			if depth <= 0 {
				return &StringLit{Value: stripQuotes(strings.TrimSpace(p.src[from:tok.Pos]))}
			}
		case EOF:
			return &StringLit{Value: stripQuotes(strings.TrimSpace(p.src[from:]))}
		}
		p.advance()
	}
}

// parseTapeDevice consumes "#-1," which selects the cassette.
func (p *Parser) parseTapeDevice() error {
	if _, err := p.expect(HASH); err != nil {
		return err
	}
	if _, err := p.expect(MINUS); err != nil {
		return err
	}
	tok := p.advance()
	if tok.Type != NUMBER || tok.Lexeme != "1" {
		return p.fmtError(tok, "only device #-1 is supported")
	}
	_, err := p.expect(COMMA)
	return err
}

func parsePrint(src string) (Stmt, error) {
	p := newParser(src)

	if p.peek().Type == HASH {
		if err := p.parseTapeDevice(); err != nil {
			return nil, err
		}
		stmt := &TapePrintStmt{}
		for {
			v, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			stmt.Values = append(stmt.Values, v)
			if t := p.peek().Type; t != COMMA && t != SEMICOLON {
				return stmt, p.expectEnd()
			}
			p.advance()
		}
	}

	stmt := &PrintStmt{}
	if p.peek().Type == AT {
		p.advance()
		at, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.At = at
		if p.peek().Type == COMMA {
			p.advance()
		}
	}

	var lastSep byte
	for p.peek().Type != EOF {
		switch p.peek().Type {
		case SEMICOLON, COMMA:
			sep := p.advance().Lexeme[0]
			stmt.Items = append(stmt.Items, PrintItem{Sep: sep})
			lastSep = sep
			continue
		}

		var item PrintItem
		if p.peek().Is("TAB") && p.peekAt(1).Type == LPAREN {
			p.advance()
			p.advance()
			col, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RPAREN); err != nil {
				return nil, err
			}
			item.Tab = col
		} else {
			item.Expr = p.exprOrText()
		}

		lastSep = 0
		switch p.peek().Type {
		case SEMICOLON, COMMA:
			item.Sep = p.advance().Lexeme[0]
			lastSep = item.Sep
		case EOF:
		default:
			// Adjacent items print with no gap, as with ';'.
			item.Sep = ';'
		}
		stmt.Items = append(stmt.Items, item)
	}
	stmt.NoNewline = lastSep != 0
	return stmt, nil
}

func parseInput(src string) (Stmt, error) {
	p := newParser(src)

	if p.peek().Type == HASH {
		if err := p.parseTapeDevice(); err != nil {
			return nil, err
		}
		targets, err := p.parseTargets()
		if err != nil {
			return nil, err
		}
		return &TapeInputStmt{Targets: targets}, nil
	}

	stmt := &InputStmt{}
	if p.peek().Type == STRING {
		stmt.Prompt = p.advance().Lexeme
		stmt.HasPrompt = true
		if t := p.peek().Type; t == SEMICOLON || t == COMMA {
			p.advance()
		} else {
			return nil, p.fmtError(p.peek(), "expected ; after prompt")
		}
	}
	targets, err := p.parseTargets()
	if err != nil {
		return nil, err
	}
	stmt.Targets = targets
	return stmt, nil
}

// parseIf splits the statement at THEN (or a GOTO standing in for it) and the
// first ELSE after it. Each clause is parsed as a statement of its own; a bare
// line number is a GOTO.
func parseIf(src string) (Stmt, error) {
	p := newParser(src)

	thenIdx := -1
	depth := 0
	for i, tok := range p.tokens {
		switch tok.Type {
		case LPAREN:
			depth++
		case RPAREN:
			depth--
		}
		if depth == 0 && (tok.Is("THEN") || tok.Is("GOTO")) {
			thenIdx = i
			break
		}
	}
	if thenIdx < 0 {
		return nil, p.fmtError(p.tokens[len(p.tokens)-1], "IF without THEN")
	}
	thenTok := p.tokens[thenIdx]

	condParser := &Parser{tokens: p.tokens[:thenIdx:thenIdx], src: src}
	cond, err := condParser.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := condParser.expectEnd(); err != nil {
		return nil, err
	}

	clauseStart := thenTok.End
	if thenTok.Is("GOTO") {
		clauseStart = thenTok.Pos
	}
	thenText := src[clauseStart:]
	elseText := ""
	hasElse := false
	for _, tok := range p.tokens[thenIdx+1:] {
		if tok.Is("ELSE") {
			thenText = src[clauseStart:tok.Pos]
			elseText = src[tok.End:]
			hasElse = true
			break
		}
	}

	stmt := &IfStmt{Cond: cond}
	if stmt.Then, err = parseClause(thenText); err != nil {
		return nil, err
	}
	if hasElse {
		if stmt.Else, err = parseClause(elseText); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func parseClause(text string) (Stmt, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, newParser(text).fmtError(Token{}, "missing THEN/ELSE clause")
	}
	if k, ok := program.ParseKey(text); ok {
		return &GotoStmt{Target: k}, nil
	}
	return ParseStatement(text)
}

func parseFor(src string) (Stmt, error) {
	p := newParser(src)
	tok := p.advance()
	if tok.Type != IDENT || reserved[tok.Lexeme] {
		return nil, p.fmtError(tok, "expected loop variable")
	}
	if _, err := p.expect(EQ); err != nil {
		return nil, err
	}
	start, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectWord("TO"); err != nil {
		return nil, err
	}
	end, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt := &ForStmt{Var: tok.Lexeme, Start: start, End: end}
	if p.peek().Is("STEP") {
		p.advance()
		if stmt.Step, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	return stmt, p.expectEnd()
}

func parseNext(src string) (Stmt, error) {
	p := newParser(src)
	stmt := &NextStmt{}
	if tok := p.peek(); tok.Type == IDENT {
		stmt.Var = tok.Lexeme
	}
	return stmt, nil
}

func parseLineRef(src string) (program.Key, error) {
	p := newParser(src)
	tok := p.advance()
	if tok.Type != NUMBER {
		return program.Key{}, p.fmtError(tok, "expected line number")
	}
	k, ok := program.ParseKey(tok.Lexeme)
	if !ok {
		return program.Key{}, p.fmtError(tok, "bad line number %q", tok.Lexeme)
	}
	return k, p.expectEnd()
}

func parseOn(src string) (Stmt, error) {
	p := newParser(src)
	selector, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt := &OnGotoStmt{Selector: selector}
	switch tok := p.advance(); {
	case tok.Is("GOTO"):
	case tok.Is("GOSUB"):
		stmt.Gosub = true
	default:
		return nil, p.fmtError(tok, "expected GOTO or GOSUB")
	}
	for {
		tok := p.advance()
		k, ok := program.ParseKey(tok.Lexeme)
		if tok.Type != NUMBER || !ok {
			return nil, p.fmtError(tok, "expected line number")
		}
		stmt.Targets = append(stmt.Targets, k)
		if p.peek().Type != COMMA {
			return stmt, p.expectEnd()
		}
		p.advance()
	}
}

func parseDim(src string) (Stmt, error) {
	p := newParser(src)
	stmt := &DimStmt{}
	for {
		t, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		if t.Index == nil {
			return nil, p.fmtError(p.peek(), "DIM %s needs a size", t.Name)
		}
		stmt.Arrays = append(stmt.Arrays, DimDecl{Name: t.Name, Size: t.Index})
		if p.peek().Type != COMMA {
			return stmt, p.expectEnd()
		}
		p.advance()
	}
}

// splitData splits DATA items at commas outside quotes. Items keep their
// quotes; READ removes them for string targets.
func splitData(src string) []string {
	var items []string
	inQuote := false
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				items = append(items, strings.TrimSpace(src[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(src[start:]); last != "" || len(items) > 0 {
		items = append(items, last)
	}
	return items
}

func parsePoke(src string) (Stmt, error) {
	p := newParser(src)
	addr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COMMA); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &PokeStmt{Addr: addr, Value: value}, p.expectEnd()
}

func parseSet(src string, reset bool) (Stmt, error) {
	p := newParser(src)
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	x, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COMMA); err != nil {
		return nil, err
	}
	y, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &SetStmt{X: x, Y: y, Reset: reset}, p.expectEnd()
}
