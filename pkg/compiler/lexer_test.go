package compiler

import (
	"reflect"
	"testing"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
		wantErr  bool
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []Token{{Type: EOF, Lexeme: "", Line: 1}},
		},
		{
			name:  "Punctuation and operators",
			input: "+ - * / ! && || = == != < <= > >= ; , . { } ( ) [ ]",
			expected: []Token{
				{Type: PLUS, Lexeme: "+", Line: 1},
				{Type: MINUS, Lexeme: "-", Line: 1},
				{Type: STAR, Lexeme: "*", Line: 1},
				{Type: SLASH, Lexeme: "/", Line: 1},
				{Type: NOT, Lexeme: "!", Line: 1},
				{Type: AND_LOGICAL, Lexeme: "&&", Line: 1},
				{Type: OR_LOGICAL, Lexeme: "||", Line: 1},
				{Type: ASSIGN, Lexeme: "=", Line: 1},
				{Type: EQUALS, Lexeme: "==", Line: 1},
				{Type: NOT_EQ, Lexeme: "!=", Line: 1},
				{Type: LESS, Lexeme: "<", Line: 1},
				{Type: LESS_EQ, Lexeme: "<=", Line: 1},
				{Type: GREATER, Lexeme: ">", Line: 1},
				{Type: GREATER_EQ, Lexeme: ">=", Line: 1},
				{Type: SEMICOLON, Lexeme: ";", Line: 1},
				{Type: COMMA, Lexeme: ",", Line: 1},
				{Type: DOT, Lexeme: ".", Line: 1},
				{Type: LBRACE, Lexeme: "{", Line: 1},
				{Type: RBRACE, Lexeme: "}", Line: 1},
				{Type: LPAREN, Lexeme: "(", Line: 1},
				{Type: RPAREN, Lexeme: ")", Line: 1},
				{Type: LBRACKET, Lexeme: "[", Line: 1},
				{Type: RBRACKET, Lexeme: "]", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Keywords and base types",
			input: "contract function options require if else for in let internal new true false pubkey signature bytes bytes20 bytes32 int bool asset myVar",
			expected: []Token{
				{Type: CONTRACT, Lexeme: "contract", Line: 1},
				{Type: FUNCTION, Lexeme: "function", Line: 1},
				{Type: OPTIONS, Lexeme: "options", Line: 1},
				{Type: REQUIRE, Lexeme: "require", Line: 1},
				{Type: IF, Lexeme: "if", Line: 1},
				{Type: ELSE, Lexeme: "else", Line: 1},
				{Type: FOR, Lexeme: "for", Line: 1},
				{Type: IN, Lexeme: "in", Line: 1},
				{Type: LET, Lexeme: "let", Line: 1},
				{Type: INTERNAL, Lexeme: "internal", Line: 1},
				{Type: NEW, Lexeme: "new", Line: 1},
				{Type: TRUE, Lexeme: "true", Line: 1},
				{Type: FALSE, Lexeme: "false", Line: 1},
				{Type: TPUBKEY, Lexeme: "pubkey", Line: 1},
				{Type: TSIGNATURE, Lexeme: "signature", Line: 1},
				{Type: TBYTES, Lexeme: "bytes", Line: 1},
				{Type: TBYTES20, Lexeme: "bytes20", Line: 1},
				{Type: TBYTES32, Lexeme: "bytes32", Line: 1},
				{Type: TINT, Lexeme: "int", Line: 1},
				{Type: TBOOL, Lexeme: "bool", Line: 1},
				{Type: TASSET, Lexeme: "asset", Line: 1},
				{Type: IDENTIFIER, Lexeme: "myVar", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Integer and byte literals",
			input: "123 0 0x1A 0Xff",
			expected: []Token{
				{Type: INTEGER, Lexeme: "123", Line: 1},
				{Type: INTEGER, Lexeme: "0", Line: 1},
				{Type: BYTESLIT, Lexeme: "0x1A", Line: 1},
				{Type: BYTESLIT, Lexeme: "0Xff", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "String literal with escapes",
			input: `"insufficient funds\n"`,
			expected: []Token{
				{Type: STRING, Lexeme: "insufficient funds\n", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name: "Line and block comments are skipped",
			input: "let x = 1; // trailing comment\n" +
				"/* block\n   comment */ let y = 2;",
			expected: []Token{
				{Type: LET, Lexeme: "let", Line: 1},
				{Type: IDENTIFIER, Lexeme: "x", Line: 1},
				{Type: ASSIGN, Lexeme: "=", Line: 1},
				{Type: INTEGER, Lexeme: "1", Line: 1},
				{Type: SEMICOLON, Lexeme: ";", Line: 1},
				{Type: LET, Lexeme: "let", Line: 3},
				{Type: IDENTIFIER, Lexeme: "y", Line: 3},
				{Type: ASSIGN, Lexeme: "=", Line: 3},
				{Type: INTEGER, Lexeme: "2", Line: 3},
				{Type: SEMICOLON, Lexeme: ";", Line: 3},
				{Type: EOF, Lexeme: "", Line: 3},
			},
		},
		{
			name:    "Unterminated block comment",
			input:   "/* never closed",
			wantErr: true,
		},
		{
			name:    "Unterminated string",
			input:   `"never closed`,
			wantErr: true,
		},
		{
			name:    "Illegal character",
			input:   "let x = @;",
			wantErr: true,
		},
		{
			name:    "Lone ampersand is illegal",
			input:   "a & b",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Lex(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Lex(%q) expected an error, got none", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lex(%q) unexpected error: %v", tc.input, err)
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Lex(%q) = %+v, want %+v", tc.input, got, tc.expected)
			}
		})
	}
}
