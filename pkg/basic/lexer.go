package basic

import (
	"strings"
)

// keywords maps word operators to their TokenType. Every other word lexes as
// IDENT and is interpreted by the statement parser.
var keywords = map[string]TokenType{
	"AND": AND,
	"OR":  OR,
	"NOT": NOT,
	"MOD": MOD,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src string
	pos int // index of the next byte to consume
}

func newLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// peek returns the byte at the current position without advancing.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peekAt returns the byte offset bytes ahead of the current position.
func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	c := l.src[l.pos]
	l.pos++
	return c
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && (l.peek() == ' ' || l.peek() == '\t') {
		l.advance()
	}
}

func isLetter(c byte) bool { return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }

// scanIdent collects letters and digits plus an optional trailing '$'.
func (l *Lexer) scanIdent() Token {
	start := l.pos
	for l.pos < len(l.src) && (isLetter(l.peek()) || isDigit(l.peek())) {
		l.advance()
	}
	if l.peek() == '$' {
		l.advance()
	}
	word := strings.ToUpper(l.src[start:l.pos])
	tt := IDENT
	if kw, ok := keywords[word]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: word, Pos: start, End: l.pos}
}

// scanNumber collects digits, an optional fraction and an optional exponent.
// The exponent is only consumed when a digit follows the E (and its sign).
func (l *Lexer) scanNumber() Token {
	start := l.pos
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if c := l.peek(); c == 'E' || c == 'e' {
		next := l.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
			l.advance()
			if next == '+' || next == '-' {
				l.advance()
			}
			for isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	return Token{Type: NUMBER, Lexeme: l.src[start:l.pos], Pos: start, End: l.pos}
}

// scanString reads a double-quoted literal. An unterminated string runs to the
// end of the statement.
func (l *Lexer) scanString() Token {
	start := l.pos
	l.advance() // opening quote
	body := l.pos
	for l.pos < len(l.src) && l.peek() != '"' {
		l.advance()
	}
	value := l.src[body:l.pos]
	if l.peek() == '"' {
		l.advance()
	}
	return Token{Type: STRING, Lexeme: value, Pos: start, End: l.pos}
}

func (l *Lexer) next() Token {
	l.skipWhitespace()
	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Pos: start, End: start}
	}

	c := l.peek()
	switch {
	case isLetter(c):
		return l.scanIdent()
	case isDigit(c) || (c == '.' && isDigit(l.peekAt(1))):
		return l.scanNumber()
	case c == '"':
		return l.scanString()
	}

	l.advance()
	single := func(tt TokenType) Token {
		return Token{Type: tt, Lexeme: l.src[start:l.pos], Pos: start, End: l.pos}
	}
	switch c {
	case '(':
		return single(LPAREN)
	case ')':
		return single(RPAREN)
	case ',':
		return single(COMMA)
	case ';':
		return single(SEMICOLON)
	case '#':
		return single(HASH)
	case '@':
		return single(AT)
	case '+':
		return single(PLUS)
	case '-':
		return single(MINUS)
	case '*':
		return single(STAR)
	case '/':
		return single(SLASH)
	case '^':
		return single(CARET)
	case '=':
		switch l.peek() {
		case '<':
			l.advance()
			return single(LE)
		case '>':
			l.advance()
			return single(GE)
		}
		return single(EQ)
	case '<':
		switch l.peek() {
		case '=':
			l.advance()
			return single(LE)
		case '>':
			l.advance()
			return single(NE)
		}
		return single(LT)
	case '>':
		switch l.peek() {
		case '=':
			l.advance()
			return single(GE)
		case '<':
			l.advance()
			return single(NE)
		}
		return single(GT)
	}
	return single(ILLEGAL)
}

// Lex converts one statement into tokens. The final token is always EOF.
func Lex(src string) []Token {
	l := newLexer(src)
	var tokens []Token
	for {
		tok := l.next()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}
