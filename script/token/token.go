// File: token.go
// Title: Token Definitions
// Description: Defines the token types produced by the lexer, the Token value
//              with its position information, and the reserved-word table used
//              for case-insensitive keyword lookup.

package token

import (
	"fmt"
	"strings"
)

// Type represents the type of a lexical token
type Type int

const (
	// Special tokens
	EOF Type = iota
	Illegal

	// Identifiers and literals
	Identifier
	String // "string literal"
	Int    // 123
	Float  // 123.45
	True
	False
	Null

	// Operators
	Assign      // =
	Plus        // +
	Minus       // -
	Star        // *
	Slash       // /
	Percent     // %
	Bang        // !
	Equals      // ==
	NotEquals   // !=
	Less        // <
	LessEq      // <=
	Greater     // >
	GreaterEq   // >=
	AndAnd      // &&
	OrOr        // ||
	PlusAssign  // +=
	MinusAssign // -=
	StarAssign  // *=
	SlashAssign // /=
	PlusPlus    // ++
	MinusMinus  // --
	Question    // ?

	// Delimiters
	Dot          // .
	Colon        // :
	Comma        // ,
	Semicolon    // ;
	LeftParen    // (
	RightParen   // )
	LeftBrace    // {
	RightBrace   // }
	LeftBracket  // [
	RightBracket // ]

	// Keywords
	Var
	Const
	Typedef
	Varset
	Function
	Return
	If
	Else
	While
	Do
	For
	Foreach
	In
	Break
	Continue
	Call
	Print
	Try
	Catch
	Raise
	Record
	Queue
	Map
)

// Token represents a lexical token with position information
type Token struct {
	Type   Type   // Token type
	Lexeme string // Token text
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "EOF"
	case Illegal:
		return fmt.Sprintf("ILLEGAL(%s)", t.Lexeme)
	default:
		return fmt.Sprintf("%s(%s)", t.Type.String(), t.Lexeme)
	}
}

// Is reports whether the token has the given type
func (t Token) Is(tt Type) bool {
	return t.Type == tt
}

var typeNames = map[Type]string{
	EOF:          "EOF",
	Illegal:      "ILLEGAL",
	Identifier:   "IDENTIFIER",
	String:       "STRING",
	Int:          "INT",
	Float:        "FLOAT",
	True:         "TRUE",
	False:        "FALSE",
	Null:         "NULL",
	Assign:       "ASSIGN",
	Plus:         "PLUS",
	Minus:        "MINUS",
	Star:         "STAR",
	Slash:        "SLASH",
	Percent:      "PERCENT",
	Bang:         "BANG",
	Equals:       "EQUALS",
	NotEquals:    "NOT_EQUALS",
	Less:         "LESS",
	LessEq:       "LESS_EQ",
	Greater:      "GREATER",
	GreaterEq:    "GREATER_EQ",
	AndAnd:       "AND_AND",
	OrOr:         "OR_OR",
	PlusAssign:   "PLUS_ASSIGN",
	MinusAssign:  "MINUS_ASSIGN",
	StarAssign:   "STAR_ASSIGN",
	SlashAssign:  "SLASH_ASSIGN",
	PlusPlus:     "PLUS_PLUS",
	MinusMinus:   "MINUS_MINUS",
	Question:     "QUESTION",
	Dot:          "DOT",
	Colon:        "COLON",
	Comma:        "COMMA",
	Semicolon:    "SEMICOLON",
	LeftParen:    "LEFT_PAREN",
	RightParen:   "RIGHT_PAREN",
	LeftBrace:    "LEFT_BRACE",
	RightBrace:   "RIGHT_BRACE",
	LeftBracket:  "LEFT_BRACKET",
	RightBracket: "RIGHT_BRACKET",
	Var:          "VAR",
	Const:        "CONST",
	Typedef:      "TYPEDEF",
	Varset:       "VARSET",
	Function:     "FUNCTION",
	Return:       "RETURN",
	If:           "IF",
	Else:         "ELSE",
	While:        "WHILE",
	Do:           "DO",
	For:          "FOR",
	Foreach:      "FOREACH",
	In:           "IN",
	Break:        "BREAK",
	Continue:     "CONTINUE",
	Call:         "CALL",
	Print:        "PRINT",
	Try:          "TRY",
	Catch:        "CATCH",
	Raise:        "RAISE",
	Record:       "RECORD",
	Queue:        "QUEUE",
	Map:          "MAP",
}

// String returns a string representation of the token type
func (tt Type) String() string {
	if name, ok := typeNames[tt]; ok {
		return name
	}
	return "UNKNOWN"
}

// Keywords are matched case-insensitively
var keywords = map[string]Type{
	"var":      Var,
	"const":    Const,
	"typedef":  Typedef,
	"varset":   Varset,
	"function": Function,
	"return":   Return,
	"if":       If,
	"else":     Else,
	"while":    While,
	"do":       Do,
	"for":      For,
	"foreach":  Foreach,
	"in":       In,
	"break":    Break,
	"continue": Continue,
	"call":     Call,
	"print":    Print,
	"try":      Try,
	"catch":    Catch,
	"raise":    Raise,
	"record":   Record,
	"queue":    Queue,
	"map":      Map,
	"true":     True,
	"false":    False,
	"null":     Null,
}

// LookupIdent determines if an identifier is a keyword or a regular identifier
func LookupIdent(ident string) Type {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return Identifier
}

// IsKeyword checks if a string is a reserved word
func IsKeyword(s string) bool {
	_, ok := keywords[strings.ToLower(s)]
	return ok
}
