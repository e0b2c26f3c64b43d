// File: lexer_test.go
// Title: Lexer Tests
// Description: Covers token production, comment skipping, string escapes,
//              number forms, and lexical error reporting.

package lexer

import (
	"strings"
	"testing"

	"github.com/eblang/ebscript/script/token"
)

func TestTokenizeBasics(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []token.Type
	}{
		{
			name:   "declaration",
			source: `var x: int = 42;`,
			want: []token.Type{
				token.Var, token.Identifier, token.Colon, token.Identifier,
				token.Assign, token.Int, token.Semicolon, token.EOF,
			},
		},
		{
			name:   "operators longest match",
			source: `a == b != c <= d >= e && f || g`,
			want: []token.Type{
				token.Identifier, token.Equals, token.Identifier, token.NotEquals,
				token.Identifier, token.LessEq, token.Identifier, token.GreaterEq,
				token.Identifier, token.AndAnd, token.Identifier, token.OrOr,
				token.Identifier, token.EOF,
			},
		},
		{
			name:   "compound assignment and inc dec",
			source: `x += 1; y -= 2; z *= 3; w /= 4; i++; j--;`,
			want: []token.Type{
				token.Identifier, token.PlusAssign, token.Int, token.Semicolon,
				token.Identifier, token.MinusAssign, token.Int, token.Semicolon,
				token.Identifier, token.StarAssign, token.Int, token.Semicolon,
				token.Identifier, token.SlashAssign, token.Int, token.Semicolon,
				token.Identifier, token.PlusPlus, token.Semicolon,
				token.Identifier, token.MinusMinus, token.Semicolon, token.EOF,
			},
		},
		{
			name:   "keywords are case-insensitive",
			source: `VAR While FUNCTION foreach`,
			want:   []token.Type{token.Var, token.While, token.Function, token.Foreach, token.EOF},
		},
		{
			name:   "numbers",
			source: `0 42 3.14 1e9 2.5e-3`,
			want:   []token.Type{token.Int, token.Int, token.Float, token.Float, token.Float, token.EOF},
		},
		{
			name:   "comments are skipped",
			source: "1 // line comment\n/* block\ncomment */ 2",
			want:   []token.Type{token.Int, token.Int, token.EOF},
		},
		{
			name:   "json literal delimiters",
			source: `{"a": [1, null, true]}`,
			want: []token.Type{
				token.LeftBrace, token.String, token.Colon, token.LeftBracket,
				token.Int, token.Comma, token.Null, token.Comma, token.True,
				token.RightBracket, token.RightBrace, token.EOF,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.source)
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if len(tokens) != len(tt.want) {
				t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(tt.want), tokens)
			}
			for i, wantType := range tt.want {
				if tokens[i].Type != wantType {
					t.Errorf("token %d = %s, want %s", i, tokens[i].Type, wantType)
				}
			}
		})
	}
}

func TestTokenizeStrings(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"plain", `"hello"`, "hello"},
		{"escapes", `"a\nb\tc"`, "a\nb\tc"},
		{"quote escape", `"say \"hi\""`, `say "hi"`},
		{"backslash", `"a\\b"`, `a\b`},
		{"unicode escape", `"é"`, "é"},
		{"empty", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.source)
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if tokens[0].Type != token.String {
				t.Fatalf("token type = %s, want STRING", tokens[0].Type)
			}
			if tokens[0].Lexeme != tt.want {
				t.Errorf("lexeme = %q, want %q", tokens[0].Lexeme, tt.want)
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"unterminated string", `"abc`, "unterminated string"},
		{"unterminated comment", `/* never closed`, "unterminated block comment"},
		{"unknown escape", `"\q"`, "escape"},
		{"illegal character", `var @x`, "illegal character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.source)
			if err == nil {
				t.Fatal("Tokenize() expected error, got nil")
			}
			lexErr, ok := err.(*LexError)
			if !ok {
				t.Fatalf("error type = %T, want *LexError", err)
			}
			if !strings.Contains(strings.ToLower(lexErr.Message), tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", lexErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens, err := Tokenize("var x;\nvar y;")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	// second "var" starts line 2, column 1
	var second token.Token
	count := 0
	for _, tok := range tokens {
		if tok.Type == token.Var {
			count++
			if count == 2 {
				second = tok
			}
		}
	}
	if count != 2 {
		t.Fatalf("found %d var tokens, want 2", count)
	}
	if second.Line != 2 || second.Column != 1 {
		t.Errorf("position = %d:%d, want 2:1", second.Line, second.Column)
	}
}
