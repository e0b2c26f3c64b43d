// File: nodes.go
// Title: Abstract Syntax Tree Nodes
// Description: Defines the AST produced by the parser: one node type per
//              statement and expression kind, each carrying its source
//              position. The tree is built once per compilation unit and is
//              immutable for the life of an execution. Nodes accept a Visitor
//              for traversal-based tooling such as the printer.

package ast

import (
	"github.com/eblang/ebscript/script/token"
	"github.com/eblang/ebscript/script/types"
)

// Position identifies a location in the source text
type Position struct {
	Line   int
	Column int
}

// Node is the common interface of all AST nodes
type Node interface {
	Pos() Position
	Accept(v Visitor) error
}

// Stmt is implemented by all statement nodes
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by all expression nodes
type Expr interface {
	Node
	exprNode()
}

// Visitor visits every node kind; used by the printer and analysis tools
type Visitor interface {
	VisitProgram(n *Program) error
	VisitVarDecl(n *VarDecl) error
	VisitVarSetDecl(n *VarSetDecl) error
	VisitTypedefDecl(n *TypedefDecl) error
	VisitFunctionDecl(n *FunctionDecl) error
	VisitBlockStmt(n *BlockStmt) error
	VisitAssignStmt(n *AssignStmt) error
	VisitIncDecStmt(n *IncDecStmt) error
	VisitIfStmt(n *IfStmt) error
	VisitWhileStmt(n *WhileStmt) error
	VisitDoWhileStmt(n *DoWhileStmt) error
	VisitForStmt(n *ForStmt) error
	VisitForeachStmt(n *ForeachStmt) error
	VisitBreakStmt(n *BreakStmt) error
	VisitContinueStmt(n *ContinueStmt) error
	VisitReturnStmt(n *ReturnStmt) error
	VisitCallStmt(n *CallStmt) error
	VisitPrintStmt(n *PrintStmt) error
	VisitTryStmt(n *TryStmt) error
	VisitRaiseStmt(n *RaiseStmt) error
	VisitLiteral(n *Literal) error
	VisitIdentifier(n *Identifier) error
	VisitBinaryExpr(n *BinaryExpr) error
	VisitUnaryExpr(n *UnaryExpr) error
	VisitTernaryExpr(n *TernaryExpr) error
	VisitBuiltinCall(n *BuiltinCall) error
	VisitFuncCall(n *FuncCall) error
	VisitMemberExpr(n *MemberExpr) error
	VisitIndexExpr(n *IndexExpr) error
	VisitArrayLit(n *ArrayLit) error
	VisitObjectLit(n *ObjectLit) error
}

// Program is the root node of a compilation unit
type Program struct {
	Statements []Stmt
}

// Pos returns the position of the first statement
func (n *Program) Pos() Position {
	if len(n.Statements) > 0 {
		return n.Statements[0].Pos()
	}
	return Position{Line: 1, Column: 1}
}

// Accept implements Node
func (n *Program) Accept(v Visitor) error { return v.VisitProgram(n) }

// VarDecl declares a typed variable, optionally with an initializer
type VarDecl struct {
	Name     string
	Type     *types.Type
	Init     Expr // nil when omitted
	Const    bool
	VarSet   string // owning varset for top-level declarations, "" for locals
	Position Position
}

func (n *VarDecl) Pos() Position          { return n.Position }
func (n *VarDecl) Accept(v Visitor) error { return v.VisitVarDecl(n) }
func (n *VarDecl) stmtNode()              {}

// VarSetDecl groups top-level declarations under a named, scoped varset
type VarSetDecl struct {
	Name     string
	Scope    string // visible, internal, in, out, inout
	Decls    []*VarDecl
	Position Position
}

func (n *VarSetDecl) Pos() Position          { return n.Position }
func (n *VarSetDecl) Accept(v Visitor) error { return v.VisitVarSetDecl(n) }
func (n *VarSetDecl) stmtNode()              {}

// TypedefDecl registers a named type
type TypedefDecl struct {
	Name     string
	Type     *types.Type
	Position Position
}

func (n *TypedefDecl) Pos() Position          { return n.Position }
func (n *TypedefDecl) Accept(v Visitor) error { return v.VisitTypedefDecl(n) }
func (n *TypedefDecl) stmtNode()              {}

// Param is a typed function parameter
type Param struct {
	Name string
	Type *types.Type
}

// FunctionDecl declares a script function
type FunctionDecl struct {
	Name       string
	Params     []Param
	ReturnType *types.Type // nil for void
	Body       *BlockStmt
	Position   Position
}

func (n *FunctionDecl) Pos() Position          { return n.Position }
func (n *FunctionDecl) Accept(v Visitor) error { return v.VisitFunctionDecl(n) }
func (n *FunctionDecl) stmtNode()              {}

// BlockStmt is a brace-delimited statement list introducing a scope
type BlockStmt struct {
	Statements []Stmt
	Position   Position
}

func (n *BlockStmt) Pos() Position          { return n.Position }
func (n *BlockStmt) Accept(v Visitor) error { return v.VisitBlockStmt(n) }
func (n *BlockStmt) stmtNode()              {}

// AssignStmt assigns to an lvalue (identifier, member path, or index)
type AssignStmt struct {
	Target   Expr
	Op       token.Type // Assign, PlusAssign, MinusAssign, StarAssign, SlashAssign
	Value    Expr
	Position Position
}

func (n *AssignStmt) Pos() Position          { return n.Position }
func (n *AssignStmt) Accept(v Visitor) error { return v.VisitAssignStmt(n) }
func (n *AssignStmt) stmtNode()              {}

// IncDecStmt is a postfix increment or decrement statement
type IncDecStmt struct {
	Target   Expr
	Op       token.Type // PlusPlus or MinusMinus
	Position Position
}

func (n *IncDecStmt) Pos() Position          { return n.Position }
func (n *IncDecStmt) Accept(v Visitor) error { return v.VisitIncDecStmt(n) }
func (n *IncDecStmt) stmtNode()              {}

// IfStmt is a conditional with optional else branch (block or chained if)
type IfStmt struct {
	Cond     Expr
	Then     *BlockStmt
	Else     Stmt // *BlockStmt, *IfStmt, or nil
	Position Position
}

func (n *IfStmt) Pos() Position          { return n.Position }
func (n *IfStmt) Accept(v Visitor) error { return v.VisitIfStmt(n) }
func (n *IfStmt) stmtNode()              {}

// WhileStmt is a pre-tested loop
type WhileStmt struct {
	Cond     Expr
	Body     *BlockStmt
	Position Position
}

func (n *WhileStmt) Pos() Position          { return n.Position }
func (n *WhileStmt) Accept(v Visitor) error { return v.VisitWhileStmt(n) }
func (n *WhileStmt) stmtNode()              {}

// DoWhileStmt is a post-tested loop
type DoWhileStmt struct {
	Body     *BlockStmt
	Cond     Expr
	Position Position
}

func (n *DoWhileStmt) Pos() Position          { return n.Position }
func (n *DoWhileStmt) Accept(v Visitor) error { return v.VisitDoWhileStmt(n) }
func (n *DoWhileStmt) stmtNode()              {}

// ForStmt is a counted loop with init, condition, and post clauses
type ForStmt struct {
	Init     Stmt // *VarDecl, *AssignStmt, or nil
	Cond     Expr // nil means always true
	Post     Stmt // *AssignStmt, *IncDecStmt, or nil
	Body     *BlockStmt
	Position Position
}

func (n *ForStmt) Pos() Position          { return n.Position }
func (n *ForStmt) Accept(v Visitor) error { return v.VisitForStmt(n) }
func (n *ForStmt) stmtNode()              {}

// ForeachStmt iterates over arrays, queues, maps, and record fields
type ForeachStmt struct {
	VarName  string
	Iterable Expr
	Body     *BlockStmt
	Position Position
}

func (n *ForeachStmt) Pos() Position          { return n.Position }
func (n *ForeachStmt) Accept(v Visitor) error { return v.VisitForeachStmt(n) }
func (n *ForeachStmt) stmtNode()              {}

// BreakStmt exits the nearest enclosing loop
type BreakStmt struct {
	Position Position
}

func (n *BreakStmt) Pos() Position          { return n.Position }
func (n *BreakStmt) Accept(v Visitor) error { return v.VisitBreakStmt(n) }
func (n *BreakStmt) stmtNode()              {}

// ContinueStmt resumes the nearest enclosing loop at its back-edge
type ContinueStmt struct {
	Position Position
}

func (n *ContinueStmt) Pos() Position          { return n.Position }
func (n *ContinueStmt) Accept(v Visitor) error { return v.VisitContinueStmt(n) }
func (n *ContinueStmt) stmtNode()              {}

// ReturnStmt unwinds to the enclosing call boundary
type ReturnStmt struct {
	Value    Expr // nil for bare return
	Position Position
}

func (n *ReturnStmt) Pos() Position          { return n.Position }
func (n *ReturnStmt) Accept(v Visitor) error { return v.VisitReturnStmt(n) }
func (n *ReturnStmt) stmtNode()              {}

// CallStmt invokes a builtin or script function for its effect
type CallStmt struct {
	Call     Expr // *BuiltinCall or *FuncCall
	Position Position
}

func (n *CallStmt) Pos() Position          { return n.Position }
func (n *CallStmt) Accept(v Visitor) error { return v.VisitCallStmt(n) }
func (n *CallStmt) stmtNode()              {}

// PrintStmt writes the stringified value to the engine output
type PrintStmt struct {
	Value    Expr
	Position Position
}

func (n *PrintStmt) Pos() Position          { return n.Position }
func (n *PrintStmt) Accept(v Visitor) error { return v.VisitPrintStmt(n) }
func (n *PrintStmt) stmtNode()              {}

// TryStmt runs Body and routes runtime errors into Handler, binding the
// error record to ErrName
type TryStmt struct {
	Body     *BlockStmt
	ErrName  string
	Handler  *BlockStmt
	Position Position
}

func (n *TryStmt) Pos() Position          { return n.Position }
func (n *TryStmt) Accept(v Visitor) error { return v.VisitTryStmt(n) }
func (n *TryStmt) stmtNode()              {}

// RaiseStmt raises a runtime error with the stringified value as message
type RaiseStmt struct {
	Value    Expr
	Position Position
}

func (n *RaiseStmt) Pos() Position          { return n.Position }
func (n *RaiseStmt) Accept(v Visitor) error { return v.VisitRaiseStmt(n) }
func (n *RaiseStmt) stmtNode()              {}

// Literal is a scalar constant: int64, float64, string, bool, or nil
type Literal struct {
	Value    types.Value
	Position Position
}

func (n *Literal) Pos() Position          { return n.Position }
func (n *Literal) Accept(v Visitor) error { return v.VisitLiteral(n) }
func (n *Literal) exprNode()              {}

// Identifier references a variable by name
type Identifier struct {
	Name     string
	Position Position
}

func (n *Identifier) Pos() Position          { return n.Position }
func (n *Identifier) Accept(v Visitor) error { return v.VisitIdentifier(n) }
func (n *Identifier) exprNode()              {}

// BinaryExpr applies a binary operator
type BinaryExpr struct {
	Op       token.Type
	Left     Expr
	Right    Expr
	Position Position
}

func (n *BinaryExpr) Pos() Position          { return n.Position }
func (n *BinaryExpr) Accept(v Visitor) error { return v.VisitBinaryExpr(n) }
func (n *BinaryExpr) exprNode()              {}

// UnaryExpr applies a prefix operator (! or -)
type UnaryExpr struct {
	Op       token.Type
	Operand  Expr
	Position Position
}

func (n *UnaryExpr) Pos() Position          { return n.Position }
func (n *UnaryExpr) Accept(v Visitor) error { return v.VisitUnaryExpr(n) }
func (n *UnaryExpr) exprNode()              {}

// TernaryExpr is the conditional operator cond ? a : b
type TernaryExpr struct {
	Cond     Expr
	Then     Expr
	Else     Expr
	Position Position
}

func (n *TernaryExpr) Pos() Position          { return n.Position }
func (n *TernaryExpr) Accept(v Visitor) error { return v.VisitTernaryExpr(n) }
func (n *TernaryExpr) exprNode()              {}

// BuiltinCall invokes a registered host builtin by qualified name
type BuiltinCall struct {
	Namespace string
	Name      string
	Args      []Expr
	Position  Position
}

// Qualified returns the namespace.function form as written in source
func (n *BuiltinCall) Qualified() string {
	return n.Namespace + "." + n.Name
}

func (n *BuiltinCall) Pos() Position          { return n.Position }
func (n *BuiltinCall) Accept(v Visitor) error { return v.VisitBuiltinCall(n) }
func (n *BuiltinCall) exprNode()              {}

// FuncCall invokes a script-declared function
type FuncCall struct {
	Name     string
	Args     []Expr
	Position Position
}

func (n *FuncCall) Pos() Position          { return n.Position }
func (n *FuncCall) Accept(v Visitor) error { return v.VisitFuncCall(n) }
func (n *FuncCall) exprNode()              {}

// MemberExpr accesses a record field or the length property
type MemberExpr struct {
	Object   Expr
	Field    string
	Position Position
}

func (n *MemberExpr) Pos() Position          { return n.Position }
func (n *MemberExpr) Accept(v Visitor) error { return v.VisitMemberExpr(n) }
func (n *MemberExpr) exprNode()              {}

// IndexExpr accesses an array element or map entry
type IndexExpr struct {
	Object   Expr
	Index    Expr
	Position Position
}

func (n *IndexExpr) Pos() Position          { return n.Position }
func (n *IndexExpr) Accept(v Visitor) error { return v.VisitIndexExpr(n) }
func (n *IndexExpr) exprNode()              {}

// ArrayLit is a JSON-compatible array literal
type ArrayLit struct {
	Elems    []Expr
	Position Position
}

func (n *ArrayLit) Pos() Position          { return n.Position }
func (n *ArrayLit) Accept(v Visitor) error { return v.VisitArrayLit(n) }
func (n *ArrayLit) exprNode()              {}

// ObjectLit is a JSON-compatible object literal with ordered fields
type ObjectLit struct {
	Names    []string
	Values   []Expr
	Position Position
}

func (n *ObjectLit) Pos() Position          { return n.Position }
func (n *ObjectLit) Accept(v Visitor) error { return v.VisitObjectLit(n) }
func (n *ObjectLit) exprNode()              {}
