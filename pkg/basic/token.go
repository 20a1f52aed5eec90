package basic

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	NUMBER // 10, 3.5, .5, 1E3
	STRING // "..."
	IDENT  // variable, array, function or keyword name, upper-cased

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	COMMA     // ,
	SEMICOLON // ;
	HASH      // #
	AT        // @

	// Arithmetic operators
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /
	CARET // ^

	// Relational operators
	EQ // =
	NE // <> or ><
	LT // <
	GT // >
	LE // <= or =<
	GE // >= or =>

	// Word operators
	AND // AND
	OR  // OR
	NOT // NOT
	MOD // MOD

	ILLEGAL // any other character
)

var tokenNames = [...]string{
	EOF:       "EOF",
	NUMBER:    "NUMBER",
	STRING:    "STRING",
	IDENT:     "IDENT",
	LPAREN:    "LPAREN",
	RPAREN:    "RPAREN",
	COMMA:     "COMMA",
	SEMICOLON: "SEMICOLON",
	HASH:      "HASH",
	AT:        "AT",
	PLUS:      "PLUS",
	MINUS:     "MINUS",
	STAR:      "STAR",
	SLASH:     "SLASH",
	CARET:     "CARET",
	EQ:        "EQ",
	NE:        "NE",
	LT:        "LT",
	GT:        "GT",
	LE:        "LE",
	GE:        "GE",
	AND:       "AND",
	OR:        "OR",
	NOT:       "NOT",
	MOD:       "MOD",
	ILLEGAL:   "ILLEGAL",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // source text; identifiers are upper-cased, strings unquoted
	Pos    int    // byte offset of the token in the statement
	End    int    // byte offset just past the token
}

func (t Token) String() string {
	return fmt.Sprintf("%-9s %-12q @%d", t.Type, t.Lexeme, t.Pos)
}

// Is reports whether t is the identifier word.
func (t Token) Is(word string) bool {
	return t.Type == IDENT && t.Lexeme == word
}
