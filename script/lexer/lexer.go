// File: lexer.go
// Title: Lexical Analyzer
// Description: Converts source text into a token stream. Handles numeric and
//              string literals with escape sequences, case-insensitive keywords,
//              longest-match multi-character operators, and line/block comments.
//              Lexing fails fast: the first illegal character or unterminated
//              literal aborts the whole compilation unit.

package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eblang/ebscript/script/token"
)

// LexError describes a lexical failure with its source position
type LexError struct {
	Message string
	Line    int
	Column  int
}

// Error implements the error interface
func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Lexer performs lexical analysis of source text
type Lexer struct {
	input    string
	position int  // current position in input (points to current char)
	readPos  int  // current reading position (after current char)
	ch       byte // current char under examination
	line     int  // current line number (1-based)
	column   int  // current column number (1-based)
	err      *LexError
}

// New creates a new lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// Tokenize returns the complete token stream, or the first LexError.
// On error no partial stream is returned.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)

	var tokens []token.Token
	for {
		tok := l.NextToken()
		if l.err != nil {
			return nil, l.err
		}
		if tok.Type == token.Illegal {
			return nil, &LexError{
				Message: fmt.Sprintf("illegal character %q", tok.Lexeme),
				Line:    tok.Line,
				Column:  tok.Column,
			}
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()
	if l.err != nil {
		return token.Token{Type: token.Illegal, Line: l.err.Line, Column: l.err.Column}
	}

	line := l.line
	column := l.column

	var tok token.Token
	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.makeToken(token.Equals, "==", line, column)
		} else {
			tok = l.makeToken(token.Assign, "=", line, column)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.makeToken(token.NotEquals, "!=", line, column)
		} else {
			tok = l.makeToken(token.Bang, "!", line, column)
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.makeToken(token.LessEq, "<=", line, column)
		} else {
			tok = l.makeToken(token.Less, "<", line, column)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.makeToken(token.GreaterEq, ">=", line, column)
		} else {
			tok = l.makeToken(token.Greater, ">", line, column)
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = l.makeToken(token.AndAnd, "&&", line, column)
		} else {
			tok = l.makeToken(token.Illegal, "&", line, column)
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = l.makeToken(token.OrOr, "||", line, column)
		} else {
			tok = l.makeToken(token.Illegal, "|", line, column)
		}
	case '+':
		switch l.peekChar() {
		case '+':
			l.readChar()
			tok = l.makeToken(token.PlusPlus, "++", line, column)
		case '=':
			l.readChar()
			tok = l.makeToken(token.PlusAssign, "+=", line, column)
		default:
			tok = l.makeToken(token.Plus, "+", line, column)
		}
	case '-':
		switch l.peekChar() {
		case '-':
			l.readChar()
			tok = l.makeToken(token.MinusMinus, "--", line, column)
		case '=':
			l.readChar()
			tok = l.makeToken(token.MinusAssign, "-=", line, column)
		default:
			tok = l.makeToken(token.Minus, "-", line, column)
		}
	case '*':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.makeToken(token.StarAssign, "*=", line, column)
		} else {
			tok = l.makeToken(token.Star, "*", line, column)
		}
	case '/':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.makeToken(token.SlashAssign, "/=", line, column)
		} else {
			tok = l.makeToken(token.Slash, "/", line, column)
		}
	case '%':
		tok = l.makeToken(token.Percent, "%", line, column)
	case '?':
		tok = l.makeToken(token.Question, "?", line, column)
	case '.':
		tok = l.makeToken(token.Dot, ".", line, column)
	case ':':
		tok = l.makeToken(token.Colon, ":", line, column)
	case ',':
		tok = l.makeToken(token.Comma, ",", line, column)
	case ';':
		tok = l.makeToken(token.Semicolon, ";", line, column)
	case '(':
		tok = l.makeToken(token.LeftParen, "(", line, column)
	case ')':
		tok = l.makeToken(token.RightParen, ")", line, column)
	case '{':
		tok = l.makeToken(token.LeftBrace, "{", line, column)
	case '}':
		tok = l.makeToken(token.RightBrace, "}", line, column)
	case '[':
		tok = l.makeToken(token.LeftBracket, "[", line, column)
	case ']':
		tok = l.makeToken(token.RightBracket, "]", line, column)
	case '"':
		value, ok := l.readString()
		if !ok {
			return token.Token{Type: token.Illegal, Lexeme: value, Line: line, Column: column}
		}
		return token.Token{Type: token.String, Lexeme: value, Line: line, Column: column}
	case 0:
		return token.Token{Type: token.EOF, Line: line, Column: column}
	default:
		if isLetter(l.ch) {
			lexeme := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(lexeme), Lexeme: lexeme, Line: line, Column: column}
		}
		if isDigit(l.ch) {
			lexeme, isFloat := l.readNumber()
			tt := token.Int
			if isFloat {
				tt = token.Float
			}
			return token.Token{Type: tt, Lexeme: lexeme, Line: line, Column: column}
		}
		tok = l.makeToken(token.Illegal, string(l.ch), line, column)
	}

	l.readChar()
	return tok
}

func (l *Lexer) makeToken(tt token.Type, lexeme string, line, column int) token.Token {
	return token.Token{Type: tt, Lexeme: lexeme, Line: line, Column: column}
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}

	l.position = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// skipWhitespaceAndComments skips whitespace, // line comments, and /* */
// block comments. An unterminated block comment sets the lexer error.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			startLine, startColumn := l.line, l.column
			l.readChar() // consume '/'
			l.readChar() // consume '*'
			for {
				if l.ch == 0 {
					l.err = &LexError{
						Message: "unterminated block comment",
						Line:    startLine,
						Column:  startColumn,
					}
					return
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads an integer or float literal
func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	isFloat := false

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// Exponent part
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			isFloat = true
			l.readChar() // consume 'e'
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	return l.input[start:l.position], isFloat
}

// readString reads a double-quoted string literal and decodes escape
// sequences. Returns the decoded value and false on an unterminated string
// or bad escape, in which case the lexer error is set.
func (l *Lexer) readString() (string, bool) {
	startLine, startColumn := l.line, l.column
	var b strings.Builder

	for {
		l.readChar()
		switch l.ch {
		case '"':
			l.readChar() // consume closing quote
			return b.String(), true
		case 0, '\n':
			l.err = &LexError{
				Message: "unterminated string literal",
				Line:    startLine,
				Column:  startColumn,
			}
			return b.String(), false
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'u':
				if !l.readUnicodeEscape(&b) {
					l.err = &LexError{
						Message: "invalid \\u escape sequence",
						Line:    l.line,
						Column:  l.column,
					}
					return b.String(), false
				}
			default:
				l.err = &LexError{
					Message: fmt.Sprintf("unknown escape sequence \\%c", l.ch),
					Line:    l.line,
					Column:  l.column,
				}
				return b.String(), false
			}
		default:
			b.WriteByte(l.ch)
		}
	}
}

// readUnicodeEscape consumes the four hex digits of a \uXXXX escape
func (l *Lexer) readUnicodeEscape(b *strings.Builder) bool {
	var digits [4]byte
	for i := 0; i < 4; i++ {
		l.readChar()
		if !isHexDigit(l.ch) {
			return false
		}
		digits[i] = l.ch
	}
	code, err := strconv.ParseUint(string(digits[:]), 16, 32)
	if err != nil {
		return false
	}
	b.WriteRune(rune(code))
	return true
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}
