// File: printer.go
// Title: Canonical Source Printer
// Description: Renders an AST back to canonical source text. Expressions are
//              fully parenthesized so re-parsing the output yields a
//              structurally identical tree regardless of the precedence the
//              original source relied on.

package ast

import (
	"strconv"
	"strings"

	"github.com/eblang/ebscript/script/token"
	"github.com/eblang/ebscript/script/types"
)

// Print renders a program as canonical source text
func Print(prog *Program) string {
	p := &Printer{}
	prog.Accept(p)
	return p.b.String()
}

// PrintExpr renders a single expression as canonical source text
func PrintExpr(e Expr) string {
	p := &Printer{}
	e.Accept(p)
	return p.b.String()
}

// Printer implements Visitor to produce canonical source
type Printer struct {
	b      strings.Builder
	indent int
}

var opLexemes = map[token.Type]string{
	token.Assign:      "=",
	token.Plus:        "+",
	token.Minus:       "-",
	token.Star:        "*",
	token.Slash:       "/",
	token.Percent:     "%",
	token.Bang:        "!",
	token.Equals:      "==",
	token.NotEquals:   "!=",
	token.Less:        "<",
	token.LessEq:      "<=",
	token.Greater:     ">",
	token.GreaterEq:   ">=",
	token.AndAnd:      "&&",
	token.OrOr:        "||",
	token.PlusAssign:  "+=",
	token.MinusAssign: "-=",
	token.StarAssign:  "*=",
	token.SlashAssign: "/=",
	token.PlusPlus:    "++",
	token.MinusMinus:  "--",
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.b.WriteString("    ")
	}
}

func (p *Printer) writeLine(s string) {
	p.writeIndent()
	p.b.WriteString(s)
	p.b.WriteByte('\n')
}

// VisitProgram renders all top-level statements
func (p *Printer) VisitProgram(n *Program) error {
	for _, stmt := range n.Statements {
		stmt.Accept(p)
	}
	return nil
}

// VisitVarDecl renders a variable declaration
func (p *Printer) VisitVarDecl(n *VarDecl) error {
	p.writeIndent()
	if n.Const {
		p.b.WriteString("const ")
	} else {
		p.b.WriteString("var ")
	}
	p.b.WriteString(n.Name)
	p.b.WriteString(": ")
	p.b.WriteString(n.Type.String())
	if n.Init != nil {
		p.b.WriteString(" = ")
		n.Init.Accept(p)
	}
	p.b.WriteString(";\n")
	return nil
}

// VisitVarSetDecl renders a varset block
func (p *Printer) VisitVarSetDecl(n *VarSetDecl) error {
	p.writeIndent()
	p.b.WriteString("varset ")
	p.b.WriteString(n.Name)
	p.b.WriteByte(' ')
	p.b.WriteString(n.Scope)
	p.b.WriteString(" {\n")
	p.indent++
	for _, decl := range n.Decls {
		decl.Accept(p)
	}
	p.indent--
	p.writeLine("}")
	return nil
}

// VisitTypedefDecl renders a typedef declaration
func (p *Printer) VisitTypedefDecl(n *TypedefDecl) error {
	p.writeLine("typedef " + n.Name + ": " + n.Type.String() + ";")
	return nil
}

// VisitFunctionDecl renders a function declaration
func (p *Printer) VisitFunctionDecl(n *FunctionDecl) error {
	p.writeIndent()
	p.b.WriteString("function ")
	p.b.WriteString(n.Name)
	p.b.WriteByte('(')
	for i, param := range n.Params {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.b.WriteString(param.Name)
		p.b.WriteString(": ")
		p.b.WriteString(param.Type.String())
	}
	p.b.WriteByte(')')
	if n.ReturnType != nil {
		p.b.WriteString(": ")
		p.b.WriteString(n.ReturnType.String())
	}
	p.b.WriteByte(' ')
	p.printBlock(n.Body)
	p.b.WriteByte('\n')
	return nil
}

// VisitBlockStmt renders a block on its own lines
func (p *Printer) VisitBlockStmt(n *BlockStmt) error {
	p.writeIndent()
	p.printBlock(n)
	p.b.WriteByte('\n')
	return nil
}

// printBlock renders a brace-delimited block inline at the current position
func (p *Printer) printBlock(n *BlockStmt) {
	p.b.WriteString("{\n")
	p.indent++
	for _, stmt := range n.Statements {
		stmt.Accept(p)
	}
	p.indent--
	p.writeIndent()
	p.b.WriteByte('}')
}

// VisitAssignStmt renders an assignment
func (p *Printer) VisitAssignStmt(n *AssignStmt) error {
	p.writeIndent()
	n.Target.Accept(p)
	p.b.WriteByte(' ')
	p.b.WriteString(opLexemes[n.Op])
	p.b.WriteByte(' ')
	n.Value.Accept(p)
	p.b.WriteString(";\n")
	return nil
}

// VisitIncDecStmt renders a postfix increment/decrement
func (p *Printer) VisitIncDecStmt(n *IncDecStmt) error {
	p.writeIndent()
	n.Target.Accept(p)
	p.b.WriteString(opLexemes[n.Op])
	p.b.WriteString(";\n")
	return nil
}

// VisitIfStmt renders a conditional chain
func (p *Printer) VisitIfStmt(n *IfStmt) error {
	p.writeIndent()
	p.printIf(n)
	p.b.WriteByte('\n')
	return nil
}

func (p *Printer) printIf(n *IfStmt) {
	p.b.WriteString("if (")
	n.Cond.Accept(p)
	p.b.WriteString(") ")
	p.printBlock(n.Then)
	switch alt := n.Else.(type) {
	case nil:
	case *IfStmt:
		p.b.WriteString(" else ")
		p.printIf(alt)
	case *BlockStmt:
		p.b.WriteString(" else ")
		p.printBlock(alt)
	}
}

// VisitWhileStmt renders a while loop
func (p *Printer) VisitWhileStmt(n *WhileStmt) error {
	p.writeIndent()
	p.b.WriteString("while (")
	n.Cond.Accept(p)
	p.b.WriteString(") ")
	p.printBlock(n.Body)
	p.b.WriteByte('\n')
	return nil
}

// VisitDoWhileStmt renders a do-while loop
func (p *Printer) VisitDoWhileStmt(n *DoWhileStmt) error {
	p.writeIndent()
	p.b.WriteString("do ")
	p.printBlock(n.Body)
	p.b.WriteString(" while (")
	n.Cond.Accept(p)
	p.b.WriteString(");\n")
	return nil
}

// VisitForStmt renders a counted loop
func (p *Printer) VisitForStmt(n *ForStmt) error {
	p.writeIndent()
	p.b.WriteString("for (")
	p.printInlineClause(n.Init)
	p.b.WriteString("; ")
	if n.Cond != nil {
		n.Cond.Accept(p)
	}
	p.b.WriteString("; ")
	p.printInlineClause(n.Post)
	p.b.WriteString(") ")
	p.printBlock(n.Body)
	p.b.WriteByte('\n')
	return nil
}

// printInlineClause renders a for-clause without indentation or terminator
func (p *Printer) printInlineClause(s Stmt) {
	switch clause := s.(type) {
	case nil:
	case *VarDecl:
		p.b.WriteString("var ")
		p.b.WriteString(clause.Name)
		p.b.WriteString(": ")
		p.b.WriteString(clause.Type.String())
		if clause.Init != nil {
			p.b.WriteString(" = ")
			clause.Init.Accept(p)
		}
	case *AssignStmt:
		clause.Target.Accept(p)
		p.b.WriteByte(' ')
		p.b.WriteString(opLexemes[clause.Op])
		p.b.WriteByte(' ')
		clause.Value.Accept(p)
	case *IncDecStmt:
		clause.Target.Accept(p)
		p.b.WriteString(opLexemes[clause.Op])
	}
}

// VisitForeachStmt renders a foreach loop
func (p *Printer) VisitForeachStmt(n *ForeachStmt) error {
	p.writeIndent()
	p.b.WriteString("foreach (")
	p.b.WriteString(n.VarName)
	p.b.WriteString(" in ")
	n.Iterable.Accept(p)
	p.b.WriteString(") ")
	p.printBlock(n.Body)
	p.b.WriteByte('\n')
	return nil
}

// VisitBreakStmt renders break
func (p *Printer) VisitBreakStmt(n *BreakStmt) error {
	p.writeLine("break;")
	return nil
}

// VisitContinueStmt renders continue
func (p *Printer) VisitContinueStmt(n *ContinueStmt) error {
	p.writeLine("continue;")
	return nil
}

// VisitReturnStmt renders return
func (p *Printer) VisitReturnStmt(n *ReturnStmt) error {
	p.writeIndent()
	p.b.WriteString("return")
	if n.Value != nil {
		p.b.WriteByte(' ')
		n.Value.Accept(p)
	}
	p.b.WriteString(";\n")
	return nil
}

// VisitCallStmt renders a call statement
func (p *Printer) VisitCallStmt(n *CallStmt) error {
	p.writeIndent()
	n.Call.Accept(p)
	p.b.WriteString(";\n")
	return nil
}

// VisitPrintStmt renders print
func (p *Printer) VisitPrintStmt(n *PrintStmt) error {
	p.writeIndent()
	p.b.WriteString("print ")
	n.Value.Accept(p)
	p.b.WriteString(";\n")
	return nil
}

// VisitTryStmt renders try/catch
func (p *Printer) VisitTryStmt(n *TryStmt) error {
	p.writeIndent()
	p.b.WriteString("try ")
	p.printBlock(n.Body)
	p.b.WriteString(" catch (")
	p.b.WriteString(n.ErrName)
	p.b.WriteString(") ")
	p.printBlock(n.Handler)
	p.b.WriteByte('\n')
	return nil
}

// VisitRaiseStmt renders raise
func (p *Printer) VisitRaiseStmt(n *RaiseStmt) error {
	p.writeIndent()
	p.b.WriteString("raise ")
	n.Value.Accept(p)
	p.b.WriteString(";\n")
	return nil
}

// VisitLiteral renders a scalar literal
func (p *Printer) VisitLiteral(n *Literal) error {
	switch v := n.Value.(type) {
	case nil:
		p.b.WriteString("null")
	case string:
		p.b.WriteString(strconv.Quote(v))
	case bool:
		if v {
			p.b.WriteString("true")
		} else {
			p.b.WriteString("false")
		}
	case int64:
		p.b.WriteString(strconv.FormatInt(v, 10))
	case float64:
		s := strconv.FormatFloat(v, 'g', -1, 64)
		// Keep float literals lexically distinct from int literals
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		p.b.WriteString(s)
	default:
		p.b.WriteString(types.Stringify(v))
	}
	return nil
}

// VisitIdentifier renders a variable reference
func (p *Printer) VisitIdentifier(n *Identifier) error {
	p.b.WriteString(n.Name)
	return nil
}

// VisitBinaryExpr renders a fully parenthesized binary expression
func (p *Printer) VisitBinaryExpr(n *BinaryExpr) error {
	p.b.WriteByte('(')
	n.Left.Accept(p)
	p.b.WriteByte(' ')
	p.b.WriteString(opLexemes[n.Op])
	p.b.WriteByte(' ')
	n.Right.Accept(p)
	p.b.WriteByte(')')
	return nil
}

// VisitUnaryExpr renders a fully parenthesized unary expression
func (p *Printer) VisitUnaryExpr(n *UnaryExpr) error {
	p.b.WriteByte('(')
	p.b.WriteString(opLexemes[n.Op])
	n.Operand.Accept(p)
	p.b.WriteByte(')')
	return nil
}

// VisitTernaryExpr renders a fully parenthesized conditional expression
func (p *Printer) VisitTernaryExpr(n *TernaryExpr) error {
	p.b.WriteByte('(')
	n.Cond.Accept(p)
	p.b.WriteString(" ? ")
	n.Then.Accept(p)
	p.b.WriteString(" : ")
	n.Else.Accept(p)
	p.b.WriteByte(')')
	return nil
}

// VisitBuiltinCall renders a builtin invocation
func (p *Printer) VisitBuiltinCall(n *BuiltinCall) error {
	p.b.WriteString("call ")
	p.b.WriteString(n.Namespace)
	p.b.WriteByte('.')
	p.b.WriteString(n.Name)
	p.printArgs(n.Args)
	return nil
}

// VisitFuncCall renders a script function invocation
func (p *Printer) VisitFuncCall(n *FuncCall) error {
	p.b.WriteString(n.Name)
	p.printArgs(n.Args)
	return nil
}

func (p *Printer) printArgs(args []Expr) {
	p.b.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			p.b.WriteString(", ")
		}
		arg.Accept(p)
	}
	p.b.WriteByte(')')
}

// VisitMemberExpr renders a field access
func (p *Printer) VisitMemberExpr(n *MemberExpr) error {
	n.Object.Accept(p)
	p.b.WriteByte('.')
	p.b.WriteString(n.Field)
	return nil
}

// VisitIndexExpr renders an index access
func (p *Printer) VisitIndexExpr(n *IndexExpr) error {
	n.Object.Accept(p)
	p.b.WriteByte('[')
	n.Index.Accept(p)
	p.b.WriteByte(']')
	return nil
}

// VisitArrayLit renders an array literal
func (p *Printer) VisitArrayLit(n *ArrayLit) error {
	p.b.WriteByte('[')
	for i, e := range n.Elems {
		if i > 0 {
			p.b.WriteString(", ")
		}
		e.Accept(p)
	}
	p.b.WriteByte(']')
	return nil
}

// VisitObjectLit renders an object literal with quoted keys
func (p *Printer) VisitObjectLit(n *ObjectLit) error {
	p.b.WriteByte('{')
	for i, name := range n.Names {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.b.WriteString(strconv.Quote(name))
		p.b.WriteString(": ")
		n.Values[i].Accept(p)
	}
	p.b.WriteByte('}')
	return nil
}
