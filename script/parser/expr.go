// File: expr.go
// Title: Recursive-Descent Parser (expressions and types)
// Description: Expression parsing via precedence climbing over the fixed
//              operator table (unary > multiplicative > additive > relational >
//              equality > logical-and > logical-or > ternary) and declared-type
//              parsing. Composite literals use JSON-compatible object/array
//              notation and are matched against a target type only at
//              assignment/binding time, never here.

package parser

import (
	"strconv"

	"github.com/eblang/ebscript/script/ast"
	"github.com/eblang/ebscript/script/token"
	"github.com/eblang/ebscript/script/types"
)

// parseExpression parses at the lowest precedence level (ternary)
func (p *Parser) parseExpression() (ast.Expr, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.check(token.Question) {
		open := p.advance()
		thenExpr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon, "in ternary expression"); err != nil {
			return nil, err
		}
		elseExpr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.TernaryExpr{
			Cond:     cond,
			Then:     thenExpr,
			Else:     elseExpr,
			Position: posOf(open),
		}, nil
	}

	return cond, nil
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(token.OrOr) {
		op := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Type, Left: left, Right: right, Position: posOf(op)}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.check(token.AndAnd) {
		op := p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Type, Left: left, Right: right, Position: posOf(op)}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.check(token.Equals) || p.check(token.NotEquals) {
		op := p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Type, Left: left, Right: right, Position: posOf(op)}
	}
	return left, nil
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.check(token.Less) || p.check(token.LessEq) ||
		p.check(token.Greater) || p.check(token.GreaterEq) {
		op := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Type, Left: left, Right: right, Position: posOf(op)}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(token.Plus) || p.check(token.Minus) {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Type, Left: left, Right: right, Position: posOf(op)}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(token.Star) || p.check(token.Slash) || p.check(token.Percent) {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Type, Left: left, Right: right, Position: posOf(op)}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.check(token.Bang) || p.check(token.Minus) {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op.Type, Operand: operand, Position: posOf(op)}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by member and index
// suffixes
func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

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

// parsePrimary parses literals, identifiers, script function calls, builtin
// calls, grouping, and composite literals
func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.current()

	switch tok.Type {
	case token.Int:
		p.advance()
		n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q", tok.Lexeme)
		}
		return &ast.Literal{Value: n, Position: posOf(tok)}, nil

	case token.Float:
		p.advance()
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorf("invalid float literal %q", tok.Lexeme)
		}
		return &ast.Literal{Value: f, Position: posOf(tok)}, nil

	case token.String:
		p.advance()
		return &ast.Literal{Value: tok.Lexeme, Position: posOf(tok)}, nil

	case token.True:
		p.advance()
		return &ast.Literal{Value: true, Position: posOf(tok)}, nil

	case token.False:
		p.advance()
		return &ast.Literal{Value: false, Position: posOf(tok)}, nil

	case token.Null:
		p.advance()
		return &ast.Literal{Value: nil, Position: posOf(tok)}, nil

	case token.Call:
		return p.parseBuiltinCall()

	case token.Identifier:
		p.advance()
		if p.check(token.LeftParen) {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &ast.FuncCall{Name: tok.Lexeme, Args: args, Position: posOf(tok)}, nil
		}
		return &ast.Identifier{Name: tok.Lexeme, Position: posOf(tok)}, nil

	case token.LeftParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RightParen, "after grouped expression"); err != nil {
			return nil, err
		}
		return expr, nil

	case token.LeftBracket:
		return p.parseArrayLiteral()

	case token.LeftBrace:
		return p.parseObjectLiteral()

	default:
		return nil, p.errorf("unexpected token in expression")
	}
}

// parseBuiltinCall parses "call namespace.function(args)"
func (p *Parser) parseBuiltinCall() (ast.Expr, error) {
	keyword, err := p.expect(token.Call, "to start builtin call")
	if err != nil {
		return nil, err
	}

	namespace, err := p.expect(token.Identifier, "as builtin namespace")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Dot, "in qualified builtin name"); err != nil {
		return nil, err
	}
	name, err := p.expect(token.Identifier, "as builtin function name")
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}

	return &ast.BuiltinCall{
		Namespace: namespace.Lexeme,
		Name:      name.Lexeme,
		Args:      args,
		Position:  posOf(keyword),
	}, nil
}

// parseArgs parses a parenthesized, comma-separated argument list
func (p *Parser) parseArgs() ([]ast.Expr, error) {
	if _, err := p.expect(token.LeftParen, "to open argument list"); err != nil {
		return nil, err
	}

	var args []ast.Expr
	for !p.check(token.RightParen) {
		if len(args) > 0 {
			if _, err := p.expect(token.Comma, "between arguments"); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.advance() // consume ')'

	return args, nil
}

// parseArrayLiteral parses "[e1, e2, ...]"
func (p *Parser) parseArrayLiteral() (ast.Expr, error) {
	open := p.advance()

	lit := &ast.ArrayLit{Position: posOf(open)}
	for !p.check(token.RightBracket) {
		if len(lit.Elems) > 0 {
			if _, err := p.expect(token.Comma, "between array elements"); err != nil {
				return nil, err
			}
		}
		elem, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		lit.Elems = append(lit.Elems, elem)
	}
	p.advance() // consume ']'

	return lit, nil
}

// parseObjectLiteral parses `{"key": value, ...}` with quoted keys
func (p *Parser) parseObjectLiteral() (ast.Expr, error) {
	open := p.advance()

	lit := &ast.ObjectLit{Position: posOf(open)}
	for !p.check(token.RightBrace) {
		if len(lit.Names) > 0 {
			if _, err := p.expect(token.Comma, "between object fields"); err != nil {
				return nil, err
			}
		}
		key, err := p.expect(token.String, "as object field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon, "after object field name"); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		lit.Names = append(lit.Names, key.Lexeme)
		lit.Values = append(lit.Values, value)
	}
	p.advance() // consume '}'

	return lit, nil
}

// parseType parses a declared type annotation: scalar names, named references
// (which must already be declared), inline records, queues, maps, and array
// suffixes
func (p *Parser) parseType() (*types.Type, error) {
	base, err := p.parseBaseType()
	if err != nil {
		return nil, err
	}

	// Array suffixes, innermost first: int[3][] is a dynamic array of
	// fixed arrays of int
	for p.check(token.LeftBracket) {
		p.advance()
		if p.check(token.RightBracket) {
			p.advance()
			base = types.NewArrayType(base)
			continue
		}
		capTok, err := p.expect(token.Int, "as array capacity")
		if err != nil {
			return nil, err
		}
		capacity, convErr := strconv.Atoi(capTok.Lexeme)
		if convErr != nil || capacity <= 0 {
			return nil, p.errorf("invalid array capacity %q", capTok.Lexeme)
		}
		if _, err := p.expect(token.RightBracket, "after array capacity"); err != nil {
			return nil, err
		}
		base = types.NewFixedArrayType(base, capacity)
	}

	return base, nil
}

func (p *Parser) parseBaseType() (*types.Type, error) {
	tok := p.current()

	switch tok.Type {
	case token.Record:
		return p.parseRecordType()

	case token.Queue:
		p.advance()
		if _, err := p.expect(token.Less, "after queue"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Greater, "to close queue type"); err != nil {
			return nil, err
		}
		return types.NewQueueType(elem), nil

	case token.Map:
		p.advance()
		if _, err := p.expect(token.Less, "after map"); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if key.Kind != types.KindString && key.Kind != types.KindInt {
			return nil, p.errorf("map key type must be string or int")
		}
		if _, err := p.expect(token.Comma, "between map key and value types"); err != nil {
			return nil, err
		}
		val, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Greater, "to close map type"); err != nil {
			return nil, err
		}
		return types.NewMapType(key, val), nil

	case token.Identifier:
		p.advance()
		if scalar, ok := types.ScalarByName(tok.Lexeme); ok {
			return scalar, nil
		}
		// Named types must be declared before first use
		if _, ok := p.types.Lookup(tok.Lexeme); !ok {
			return nil, &ParseError{
				Message: "unknown type \"" + tok.Lexeme + "\" (types must be declared before use)",
				Line:    tok.Line,
				Column:  tok.Column,
				Token:   tok.Lexeme,
			}
		}
		return types.NewRecordTypeRef(tok.Lexeme), nil

	default:
		return nil, p.errorf("expected a type")
	}
}

// parseRecordType parses "record { name: type, ... }"
func (p *Parser) parseRecordType() (*types.Type, error) {
	p.advance() // consume record
	if _, err := p.expect(token.LeftBrace, "after record"); err != nil {
		return nil, err
	}

	rt := types.NewRecordType()
	for !p.check(token.RightBrace) {
		if rt.NumFields() > 0 {
			if _, err := p.expect(token.Comma, "between record fields"); err != nil {
				return nil, err
			}
		}
		name, err := p.expect(token.Identifier, "as record field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon, "after record field name"); err != nil {
			return nil, err
		}
		fieldType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := rt.AddField(name.Lexeme, fieldType); err != nil {
			return nil, &ParseError{
				Message: err.Error(),
				Line:    name.Line,
				Column:  name.Column,
				Token:   name.Lexeme,
			}
		}
	}
	p.advance() // consume '}'

	if rt.NumFields() == 0 {
		return nil, p.errorf("record type must declare at least one field")
	}

	return types.NewInlineRecordType(rt), nil
}
