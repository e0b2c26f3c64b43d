// File: parser.go
// Title: Recursive-Descent Parser (statements)
// Description: Parses a token stream into an AST. Statement parsing lives here;
//              expression and type parsing live in expr.go. Any syntax error
//              aborts the whole compilation unit with a ParseError carrying the
//              offending position: scripts are fixed, then run, never partially
//              executed. Record types must be declared before first use; the
//              parser consults the type registry while resolving annotations.

package parser

import (
	"fmt"
	"strings"

	"github.com/eblang/ebscript/core/log"
	"github.com/eblang/ebscript/script/ast"
	"github.com/eblang/ebscript/script/lexer"
	"github.com/eblang/ebscript/script/token"
	"github.com/eblang/ebscript/script/types"
)

// DefaultMaxInputLength caps source size when no limit is configured
const DefaultMaxInputLength = 1 << 20

// DefaultVarSet is the varset owning top-level declarations outside any
// varset block
const DefaultVarSet = "main"

// DefaultVarSetScope is the scope of the default varset
const DefaultVarSetScope = "visible"

// ParseError describes a syntax failure with its source position
type ParseError struct {
	Message string
	Line    int
	Column  int
	Token   string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("parse error at line %d, column %d: %s (near %q)",
			e.Line, e.Column, e.Message, e.Token)
	}
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Options configures a Parser
type Options struct {
	// Logger receives debug output; defaults to the process logger
	Logger *log.Logger

	// MaxInputLength caps the source size in bytes
	MaxInputLength int

	// Types is the registry receiving typedef declarations; a fresh registry
	// is created when nil
	Types *types.Registry
}

// Parser turns source text into an AST
type Parser struct {
	tokens []token.Token
	pos    int

	logger *log.Logger
	types  *types.Registry
	opts   Options

	// insideVarset blocks nested varset declarations
	insideVarset bool
}

// New creates a parser with the given options
func New(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = log.GetDefault()
	}
	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}
	if opts.Types == nil {
		opts.Types = types.NewRegistry()
	}
	return &Parser{
		logger: opts.Logger.WithField("component", "parser"),
		types:  opts.Types,
		opts:   opts,
	}
}

// Types returns the registry holding the unit's typedef declarations
func (p *Parser) Types() *types.Registry {
	return p.types
}

// Parse lexes and parses a complete compilation unit
func (p *Parser) Parse(source string) (*ast.Program, error) {
	if len(source) > p.opts.MaxInputLength {
		return nil, &ParseError{
			Message: fmt.Sprintf("input exceeds maximum length of %d bytes", p.opts.MaxInputLength),
			Line:    1,
			Column:  1,
		}
	}

	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	p.tokens = tokens
	p.pos = 0

	prog := &ast.Program{}
	for !p.check(token.EOF) {
		stmt, err := p.parseStatement(true)
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}

	p.logger.Debug("parsed compilation unit", log.Fields{
		"statements": len(prog.Statements),
		"tokens":     len(tokens),
	})
	return prog, nil
}

// Parse is a convenience that parses with default options
func Parse(source string) (*ast.Program, *types.Registry, error) {
	p := New(Options{})
	prog, err := p.Parse(source)
	if err != nil {
		return nil, nil, err
	}
	return prog, p.types, nil
}

// current returns the token under examination
func (p *Parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos]
}

// peek returns the token after the current one
func (p *Parser) peek() token.Token {
	if p.pos+1 >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos+1]
}

// advance consumes and returns the current token
func (p *Parser) advance() token.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// check reports whether the current token has the given type
func (p *Parser) check(tt token.Type) bool {
	return p.current().Type == tt
}

// match consumes the current token when it has the given type
func (p *Parser) match(tt token.Type) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given type or fails with a ParseError
func (p *Parser) expect(tt token.Type, context string) (token.Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorf("expected %s %s", tt, context)
}

// errorf builds a ParseError at the current token
func (p *Parser) errorf(format string, args ...interface{}) error {
	tok := p.current()
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
		Token:   tok.Lexeme,
	}
}

// posOf converts a token position into an AST position
func posOf(tok token.Token) ast.Position {
	return ast.Position{Line: tok.Line, Column: tok.Column}
}

// parseStatement dispatches on the current token. topLevel enables
// declarations that are only legal outside function bodies.
func (p *Parser) parseStatement(topLevel bool) (ast.Stmt, error) {
	switch p.current().Type {
	case token.Var, token.Const:
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		if topLevel && !p.insideVarset {
			decl.VarSet = DefaultVarSet
		}
		return decl, nil

	case token.Typedef:
		if !topLevel {
			return nil, p.errorf("typedef is only allowed at the top level")
		}
		return p.parseTypedef()

	case token.Varset:
		if !topLevel {
			return nil, p.errorf("varset is only allowed at the top level")
		}
		return p.parseVarSet()

	case token.Function:
		if !topLevel {
			return nil, p.errorf("nested function declarations are not allowed")
		}
		return p.parseFunction()

	case token.If:
		return p.parseIf()

	case token.While:
		return p.parseWhile()

	case token.Do:
		return p.parseDoWhile()

	case token.For:
		return p.parseFor()

	case token.Foreach:
		return p.parseForeach()

	case token.Break:
		tok := p.advance()
		if _, err := p.expect(token.Semicolon, "after break"); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{Position: posOf(tok)}, nil

	case token.Continue:
		tok := p.advance()
		if _, err := p.expect(token.Semicolon, "after continue"); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{Position: posOf(tok)}, nil

	case token.Return:
		return p.parseReturn()

	case token.Call:
		return p.parseCallStatement()

	case token.Print:
		return p.parsePrint()

	case token.Try:
		return p.parseTry()

	case token.Raise:
		return p.parseRaise()

	case token.LeftBrace:
		return p.parseBlock()

	case token.Identifier:
		return p.parseSimpleStatement()

	default:
		return nil, p.errorf("unexpected token at start of statement")
	}
}

// parseVarDecl parses "var name: type [= expr];" or the const form
func (p *Parser) parseVarDecl() (*ast.VarDecl, error) {
	keyword := p.advance() // var or const
	isConst := keyword.Type == token.Const

	name, err := p.expect(token.Identifier, "as variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon, "after variable name"); err != nil {
		return nil, err
	}
	declType, err := p.parseType()
	if err != nil {
		return nil, err
	}

	var initExpr ast.Expr
	if p.match(token.Assign) {
		initExpr, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	} else if isConst {
		return nil, p.errorf("const declaration requires an initializer")
	}

	if _, err := p.expect(token.Semicolon, "after declaration"); err != nil {
		return nil, err
	}

	return &ast.VarDecl{
		Name:     name.Lexeme,
		Type:     declType,
		Init:     initExpr,
		Const:    isConst,
		Position: posOf(keyword),
	}, nil
}

// parseTypedef parses "typedef Name: type;" and registers the name
// immediately so later declarations can reference it
func (p *Parser) parseTypedef() (ast.Stmt, error) {
	keyword := p.advance()

	name, err := p.expect(token.Identifier, "as type name")
	if err != nil {
		return nil, err
	}
	if _, ok := types.ScalarByName(name.Lexeme); ok {
		return nil, p.errorf("cannot redeclare built-in type %q", name.Lexeme)
	}
	if _, err := p.expect(token.Colon, "after type name"); err != nil {
		return nil, err
	}
	declType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "after typedef"); err != nil {
		return nil, err
	}

	if err := p.types.Register(name.Lexeme, declType); err != nil {
		return nil, &ParseError{
			Message: err.Error(),
			Line:    name.Line,
			Column:  name.Column,
			Token:   name.Lexeme,
		}
	}

	return &ast.TypedefDecl{
		Name:     name.Lexeme,
		Type:     declType,
		Position: posOf(keyword),
	}, nil
}

var varSetScopes = map[string]bool{
	"visible":  true,
	"internal": true,
	"in":       true,
	"out":      true,
	"inout":    true,
}

// parseVarSet parses "varset name scope { declarations }"
func (p *Parser) parseVarSet() (ast.Stmt, error) {
	keyword := p.advance()

	name, err := p.expect(token.Identifier, "as varset name")
	if err != nil {
		return nil, err
	}

	// "in" lexes as a keyword; the other scope names are identifiers
	var scope string
	switch p.current().Type {
	case token.Identifier, token.In:
		scope = strings.ToLower(p.advance().Lexeme)
	default:
		return nil, p.errorf("expected varset scope after name")
	}
	if !varSetScopes[scope] {
		return nil, p.errorf("unknown varset scope %q (want visible, internal, in, out, or inout)", scope)
	}

	if _, err := p.expect(token.LeftBrace, "to open varset block"); err != nil {
		return nil, err
	}

	decl := &ast.VarSetDecl{
		Name:     name.Lexeme,
		Scope:    scope,
		Position: posOf(keyword),
	}

	p.insideVarset = true
	defer func() { p.insideVarset = false }()

	for !p.check(token.RightBrace) {
		if p.check(token.EOF) {
			return nil, p.errorf("unterminated varset block")
		}
		if !p.check(token.Var) && !p.check(token.Const) {
			return nil, p.errorf("only variable declarations are allowed inside a varset block")
		}
		varDecl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		varDecl.VarSet = name.Lexeme
		decl.Decls = append(decl.Decls, varDecl)
	}
	p.advance() // consume '}'

	return decl, nil
}

// parseFunction parses a function declaration with typed parameters
func (p *Parser) parseFunction() (ast.Stmt, error) {
	keyword := p.advance()

	name, err := p.expect(token.Identifier, "as function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftParen, "after function name"); err != nil {
		return nil, err
	}

	var params []ast.Param
	for !p.check(token.RightParen) {
		if len(params) > 0 {
			if _, err := p.expect(token.Comma, "between parameters"); err != nil {
				return nil, err
			}
		}
		paramName, err := p.expect(token.Identifier, "as parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon, "after parameter name"); err != nil {
			return nil, err
		}
		paramType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		for _, existing := range params {
			if strings.EqualFold(existing.Name, paramName.Lexeme) {
				return nil, p.errorf("duplicate parameter %q", paramName.Lexeme)
			}
		}
		params = append(params, ast.Param{Name: paramName.Lexeme, Type: paramType})
	}
	p.advance() // consume ')'

	var returnType *types.Type
	if p.match(token.Colon) {
		returnType, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.FunctionDecl{
		Name:       name.Lexeme,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		Position:   posOf(keyword),
	}, nil
}

// parseBlock parses a brace-delimited statement list
func (p *Parser) parseBlock() (*ast.BlockStmt, error) {
	open, err := p.expect(token.LeftBrace, "to open block")
	if err != nil {
		return nil, err
	}

	block := &ast.BlockStmt{Position: posOf(open)}
	for !p.check(token.RightBrace) {
		if p.check(token.EOF) {
			return nil, p.errorf("unterminated block")
		}
		stmt, err := p.parseStatement(false)
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	p.advance() // consume '}'

	return block, nil
}

// parseIf parses a conditional with optional else / else-if chain
func (p *Parser) parseIf() (ast.Stmt, error) {
	keyword := p.advance()

	if _, err := p.expect(token.LeftParen, "after if"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightParen, "after condition"); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	stmt := &ast.IfStmt{Cond: cond, Then: thenBlock, Position: posOf(keyword)}

	if p.match(token.Else) {
		if p.check(token.If) {
			elseIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseIf
		} else {
			elseBlock, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseBlock
		}
	}

	return stmt, nil
}

// parseWhile parses a pre-tested loop
func (p *Parser) parseWhile() (ast.Stmt, error) {
	keyword := p.advance()

	if _, err := p.expect(token.LeftParen, "after while"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightParen, "after condition"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.WhileStmt{Cond: cond, Body: body, Position: posOf(keyword)}, nil
}

// parseDoWhile parses a post-tested loop
func (p *Parser) parseDoWhile() (ast.Stmt, error) {
	keyword := p.advance()

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.While, "after do block"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftParen, "after while"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightParen, "after condition"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "after do-while"); err != nil {
		return nil, err
	}

	return &ast.DoWhileStmt{Body: body, Cond: cond, Position: posOf(keyword)}, nil
}

// parseFor parses "for (init; cond; post) { ... }"
func (p *Parser) parseFor() (ast.Stmt, error) {
	keyword := p.advance()

	if _, err := p.expect(token.LeftParen, "after for"); err != nil {
		return nil, err
	}

	stmt := &ast.ForStmt{Position: posOf(keyword)}

	// Init clause
	if !p.check(token.Semicolon) {
		if p.check(token.Var) {
			// Reuse declaration parsing; it consumes the terminating semicolon
			decl, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			stmt.Init = decl
		} else {
			init, err := p.parseForClause()
			if err != nil {
				return nil, err
			}
			stmt.Init = init
			if _, err := p.expect(token.Semicolon, "after for init"); err != nil {
				return nil, err
			}
		}
	} else {
		p.advance() // consume ';'
	}

	// Condition clause
	if !p.check(token.Semicolon) {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	}
	if _, err := p.expect(token.Semicolon, "after for condition"); err != nil {
		return nil, err
	}

	// Post clause
	if !p.check(token.RightParen) {
		post, err := p.parseForClause()
		if err != nil {
			return nil, err
		}
		stmt.Post = post
	}
	if _, err := p.expect(token.RightParen, "after for clauses"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body

	return stmt, nil
}

// parseForClause parses an assignment or inc/dec without its terminator
func (p *Parser) parseForClause() (ast.Stmt, error) {
	target, err := p.parseLValue()
	if err != nil {
		return nil, err
	}

	switch p.current().Type {
	case token.Assign, token.PlusAssign, token.MinusAssign, token.StarAssign, token.SlashAssign:
		op := p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Target: target, Op: op.Type, Value: value, Position: target.Pos()}, nil
	case token.PlusPlus, token.MinusMinus:
		op := p.advance()
		return &ast.IncDecStmt{Target: target, Op: op.Type, Position: target.Pos()}, nil
	default:
		return nil, p.errorf("expected assignment or increment in for clause")
	}
}

// parseForeach parses "foreach (x in expr) { ... }"
func (p *Parser) parseForeach() (ast.Stmt, error) {
	keyword := p.advance()

	if _, err := p.expect(token.LeftParen, "after foreach"); err != nil {
		return nil, err
	}
	name, err := p.expect(token.Identifier, "as loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.In, "after loop variable"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightParen, "after iterable"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.ForeachStmt{
		VarName:  name.Lexeme,
		Iterable: iterable,
		Body:     body,
		Position: posOf(keyword),
	}, nil
}

// parseReturn parses "return [expr];"
func (p *Parser) parseReturn() (ast.Stmt, error) {
	keyword := p.advance()

	stmt := &ast.ReturnStmt{Position: posOf(keyword)}
	if !p.check(token.Semicolon) {
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	if _, err := p.expect(token.Semicolon, "after return"); err != nil {
		return nil, err
	}

	return stmt, nil
}

// parseCallStatement parses "call ns.fn(args);"
func (p *Parser) parseCallStatement() (ast.Stmt, error) {
	pos := posOf(p.current())
	callExpr, err := p.parseBuiltinCall()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "after call"); err != nil {
		return nil, err
	}
	return &ast.CallStmt{Call: callExpr, Position: pos}, nil
}

// parsePrint parses "print expr;"
func (p *Parser) parsePrint() (ast.Stmt, error) {
	keyword := p.advance()

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "after print"); err != nil {
		return nil, err
	}

	return &ast.PrintStmt{Value: value, Position: posOf(keyword)}, nil
}

// parseTry parses "try { } catch (name) { }"
func (p *Parser) parseTry() (ast.Stmt, error) {
	keyword := p.advance()

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Catch, "after try block"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftParen, "after catch"); err != nil {
		return nil, err
	}
	errName, err := p.expect(token.Identifier, "as catch variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightParen, "after catch variable"); err != nil {
		return nil, err
	}
	handler, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.TryStmt{
		Body:     body,
		ErrName:  errName.Lexeme,
		Handler:  handler,
		Position: posOf(keyword),
	}, nil
}

// parseRaise parses "raise expr;"
func (p *Parser) parseRaise() (ast.Stmt, error) {
	keyword := p.advance()

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "after raise"); err != nil {
		return nil, err
	}

	return &ast.RaiseStmt{Value: value, Position: posOf(keyword)}, nil
}

// parseSimpleStatement parses statements starting with an identifier:
// assignments, increments/decrements, and script function call statements
func (p *Parser) parseSimpleStatement() (ast.Stmt, error) {
	// A bare "name(args);" is a script function call statement
	if p.peek().Type == token.LeftParen {
		name := p.advance()
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		call := &ast.FuncCall{Name: name.Lexeme, Args: args, Position: posOf(name)}
		if _, err := p.expect(token.Semicolon, "after call"); err != nil {
			return nil, err
		}
		return &ast.CallStmt{Call: call, Position: posOf(name)}, nil
	}

	stmt, err := p.parseForClause()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "after statement"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseLValue parses an assignable path: identifier with member/index suffixes
func (p *Parser) parseLValue() (ast.Expr, error) {
	name, err := p.expect(token.Identifier, "as assignment target")
	if err != nil {
		return nil, err
	}

	var expr ast.Expr = &ast.Identifier{Name: name.Lexeme, Position: posOf(name)}
	for {
		switch {
		case p.match(token.Dot):
			field, err := p.expect(token.Identifier, "after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpr{Object: expr, Field: field.Lexeme, Position: posOf(field)}
		case p.check(token.LeftBracket):
			open := p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RightBracket, "after index"); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{Object: expr, Index: index, Position: posOf(open)}
		default:
			return expr, nil
		}
	}
}
