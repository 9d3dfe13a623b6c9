package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable / function / type name
	INTEGER    // decimal integer literal (0x-prefixed literals are BYTESLIT)
	BYTESLIT   // hex-prefixed byte string literal, e.g. 0xdeadbeef used in bytes position
	STRING     // single- or double-quoted require() message

	// Keywords
	CONTRACT // "contract"
	FUNCTION // "function"
	OPTIONS  // "options"
	REQUIRE  // "require"
	IF       // "if"
	ELSE     // "else"
	FOR      // "for"
	IN       // "in"
	LET      // "let"
	INTERNAL // "internal"
	NEW      // "new"
	TRUE     // "true"
	FALSE    // "false"

	// Base type keywords
	TPUBKEY    // "pubkey"
	TSIGNATURE // "signature"
	TBYTES     // "bytes"
	TBYTES20   // "bytes20"
	TBYTES32   // "bytes32"
	TINT       // "int"
	TBOOL      // "bool"
	TASSET     // "asset"

	// Paired delimiters
	LBRACE   // {
	RBRACE   // }
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	DOT       // .
	SEMICOLON // ;
	COMMA     // ,

	// Operators
	PLUS        // +
	MINUS       // -
	STAR        // *
	SLASH       // /
	NOT         // !
	AND_LOGICAL // &&
	OR_LOGICAL  // ||

	ASSIGN     // =
	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	LESS_EQ    // <=
	GREATER    // >
	GREATER_EQ // >=
)

var tokenNames = [...]string{
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	INTEGER:     "INTEGER",
	BYTESLIT:    "BYTESLIT",
	STRING:      "STRING",
	CONTRACT:    "CONTRACT",
	FUNCTION:    "FUNCTION",
	OPTIONS:     "OPTIONS",
	REQUIRE:     "REQUIRE",
	IF:          "IF",
	ELSE:        "ELSE",
	FOR:         "FOR",
	IN:          "IN",
	LET:         "LET",
	INTERNAL:    "INTERNAL",
	NEW:         "NEW",
	TRUE:        "TRUE",
	FALSE:       "FALSE",
	TPUBKEY:     "TPUBKEY",
	TSIGNATURE:  "TSIGNATURE",
	TBYTES:      "TBYTES",
	TBYTES20:    "TBYTES20",
	TBYTES32:    "TBYTES32",
	TINT:        "TINT",
	TBOOL:       "TBOOL",
	TASSET:      "TASSET",
	LBRACE:      "LBRACE",
	RBRACE:      "RBRACE",
	LPAREN:      "LPAREN",
	RPAREN:      "RPAREN",
	LBRACKET:    "LBRACKET",
	RBRACKET:    "RBRACKET",
	DOT:         "DOT",
	SEMICOLON:   "SEMICOLON",
	COMMA:       "COMMA",
	PLUS:        "PLUS",
	MINUS:       "MINUS",
	STAR:        "STAR",
	SLASH:       "SLASH",
	NOT:         "NOT",
	AND_LOGICAL: "AND_LOGICAL",
	OR_LOGICAL:  "OR_LOGICAL",
	ASSIGN:      "ASSIGN",
	EQUALS:      "EQUALS",
	NOT_EQ:      "NOT_EQ",
	LESS:        "LESS",
	LESS_EQ:     "LESS_EQ",
	GREATER:     "GREATER",
	GREATER_EQ:  "GREATER_EQ",
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
	Lexeme string // exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-12s %-18q line %d", t.Type, t.Lexeme, t.Line)
}
