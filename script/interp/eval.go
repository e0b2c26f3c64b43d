// File: eval.go
// Title: Tree-Walking Interpreter (expressions)
// Description: Expression evaluation: literals, name resolution, the numeric
//              promotion rules (int op int stays int, any double operand
//              promotes, + concatenates when either side is a string),
//              short-circuit logic on strict booleans, member and index
//              access, assignment targets, script function calls across a
//              scope barrier, and builtin dispatch through the injected
//              registry. Host failures are re-wrapped as runtime errors
//              carrying the call-site position.

package interp

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/eblang/ebscript/core/log"
	"github.com/eblang/ebscript/script/ast"
	"github.com/eblang/ebscript/script/registry"
	"github.com/eblang/ebscript/script/token"
	"github.com/eblang/ebscript/script/types"
)

// evalExpr evaluates one expression node to a runtime value
func (i *Interpreter) evalExpr(ctx context.Context, expr ast.Expr) (types.Value, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return n.Value, nil

	case *ast.Identifier:
		v, ok := i.env.Lookup(n.Name)
		if !ok {
			return nil, runtimeErrorf(n.Position, "undefined variable %q", n.Name)
		}
		return v.Value, nil

	case *ast.BinaryExpr:
		return i.evalBinary(ctx, n)

	case *ast.UnaryExpr:
		return i.evalUnary(ctx, n)

	case *ast.TernaryExpr:
		cond, err := i.evalBool(ctx, n.Cond)
		if err != nil {
			return nil, err
		}
		if cond {
			return i.evalExpr(ctx, n.Then)
		}
		return i.evalExpr(ctx, n.Else)

	case *ast.MemberExpr:
		return i.evalMember(ctx, n)

	case *ast.IndexExpr:
		return i.evalIndex(ctx, n)

	case *ast.ArrayLit:
		arr := types.NewArray()
		for _, elem := range n.Elems {
			v, err := i.evalExpr(ctx, elem)
			if err != nil {
				return nil, err
			}
			arr.Elems = append(arr.Elems, v)
		}
		return arr, nil

	case *ast.ObjectLit:
		rec := types.NewRecord()
		for idx, name := range n.Names {
			v, err := i.evalExpr(ctx, n.Values[idx])
			if err != nil {
				return nil, err
			}
			rec.Set(name, v)
		}
		return rec, nil

	case *ast.FuncCall:
		fn, ok := i.functions[strings.ToUpper(n.Name)]
		if !ok {
			return nil, runtimeErrorf(n.Position, "unknown function %q", n.Name)
		}
		args, err := i.evalArgs(ctx, n.Args)
		if err != nil {
			return nil, err
		}
		return i.callFunction(ctx, fn, args, n.Position)

	case *ast.BuiltinCall:
		return i.callBuiltin(ctx, n)

	default:
		return nil, runtimeErrorf(expr.Pos(), "unsupported expression")
	}
}

// evalBool evaluates a condition, requiring a strict boolean result
func (i *Interpreter) evalBool(ctx context.Context, expr ast.Expr) (bool, error) {
	v, err := i.evalExpr(ctx, expr)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, runtimeErrorf(expr.Pos(), "condition must be bool, got %s", kindName(v))
	}
	return b, nil
}

// evalArgs evaluates a call argument list left to right
func (i *Interpreter) evalArgs(ctx context.Context, exprs []ast.Expr) ([]types.Value, error) {
	args := make([]types.Value, 0, len(exprs))
	for _, e := range exprs {
		v, err := i.evalExpr(ctx, e)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// evalBinary applies a binary operator. Logical operators short-circuit and
// never evaluate the right operand when the left decides the result.
func (i *Interpreter) evalBinary(ctx context.Context, n *ast.BinaryExpr) (types.Value, error) {
	if n.Op == token.AndAnd || n.Op == token.OrOr {
		left, err := i.evalBool(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		if n.Op == token.AndAnd && !left {
			return false, nil
		}
		if n.Op == token.OrOr && left {
			return true, nil
		}
		return i.evalBool(ctx, n.Right)
	}

	left, err := i.evalExpr(ctx, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(ctx, n.Right)
	if err != nil {
		return nil, err
	}
	return i.applyBinary(n.Op, left, right, n.Position)
}

// applyBinary computes a binary operation on evaluated operands
func (i *Interpreter) applyBinary(op token.Type, left, right types.Value, pos ast.Position) (types.Value, error) {
	switch op {
	case token.Plus:
		// Either string operand turns + into concatenation
		if ls, ok := left.(string); ok {
			return ls + types.Stringify(right), nil
		}
		if rs, ok := right.(string); ok {
			return types.Stringify(left) + rs, nil
		}
		return i.arith(op, left, right, pos)

	case token.Minus, token.Star, token.Slash, token.Percent:
		return i.arith(op, left, right, pos)

	case token.Equals:
		return valuesEqual(left, right), nil

	case token.NotEquals:
		return !valuesEqual(left, right), nil

	case token.Less, token.LessEq, token.Greater, token.GreaterEq:
		return i.compare(op, left, right, pos)

	default:
		return nil, runtimeErrorf(pos, "unsupported operator %s", op.String())
	}
}

// arith applies an arithmetic operator with numeric promotion: two ints stay
// int (truncating division), any double operand promotes both sides.
func (i *Interpreter) arith(op token.Type, left, right types.Value, pos ast.Position) (types.Value, error) {
	li, lInt := left.(int64)
	ri, rInt := right.(int64)
	if lInt && rInt {
		switch op {
		case token.Plus:
			return li + ri, nil
		case token.Minus:
			return li - ri, nil
		case token.Star:
			return li * ri, nil
		case token.Slash:
			if ri == 0 {
				return nil, runtimeErrorf(pos, "division by zero")
			}
			return li / ri, nil
		case token.Percent:
			if ri == 0 {
				return nil, runtimeErrorf(pos, "division by zero")
			}
			return li % ri, nil
		}
	}

	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, runtimeErrorf(pos, "operator %s needs numeric operands, got %s and %s",
			op.String(), kindName(left), kindName(right))
	}
	switch op {
	case token.Plus:
		return lf + rf, nil
	case token.Minus:
		return lf - rf, nil
	case token.Star:
		return lf * rf, nil
	case token.Slash:
		if rf == 0 {
			return nil, runtimeErrorf(pos, "division by zero")
		}
		return lf / rf, nil
	case token.Percent:
		if rf == 0 {
			return nil, runtimeErrorf(pos, "division by zero")
		}
		return math.Mod(lf, rf), nil
	}
	return nil, runtimeErrorf(pos, "unsupported operator %s", op.String())
}

// compare applies an ordering operator to numbers or to two strings
func (i *Interpreter) compare(op token.Type, left, right types.Value, pos ast.Position) (types.Value, error) {
	if ls, ok := left.(string); ok {
		rs, ok := right.(string)
		if !ok {
			return nil, runtimeErrorf(pos, "cannot compare string with %s", kindName(right))
		}
		cmp := strings.Compare(ls, rs)
		return orderResult(op, cmp), nil
	}

	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, runtimeErrorf(pos, "operator %s needs numeric or string operands, got %s and %s",
			op.String(), kindName(left), kindName(right))
	}
	var cmp int
	switch {
	case lf < rf:
		cmp = -1
	case lf > rf:
		cmp = 1
	}
	return orderResult(op, cmp), nil
}

func orderResult(op token.Type, cmp int) bool {
	switch op {
	case token.Less:
		return cmp < 0
	case token.LessEq:
		return cmp <= 0
	case token.Greater:
		return cmp > 0
	default:
		return cmp >= 0
	}
}

// evalUnary applies ! to booleans and - to numbers
func (i *Interpreter) evalUnary(ctx context.Context, n *ast.UnaryExpr) (types.Value, error) {
	v, err := i.evalExpr(ctx, n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case token.Bang:
		b, ok := v.(bool)
		if !ok {
			return nil, runtimeErrorf(n.Position, "operator ! needs a bool operand, got %s", kindName(v))
		}
		return !b, nil
	case token.Minus:
		switch num := v.(type) {
		case int64:
			return -num, nil
		case float64:
			return -num, nil
		}
		return nil, runtimeErrorf(n.Position, "operator - needs a numeric operand, got %s", kindName(v))
	default:
		return nil, runtimeErrorf(n.Position, "unsupported unary operator %s", n.Op.String())
	}
}

// evalMember reads a record field or the length property. Reading a field the
// record does not hold yet yields null.
func (i *Interpreter) evalMember(ctx context.Context, n *ast.MemberExpr) (types.Value, error) {
	obj, err := i.evalExpr(ctx, n.Object)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case nil:
		return nil, runtimeErrorf(n.Position, "cannot access field %q of null", n.Field)
	case *types.Record:
		if v, ok := o.Get(n.Field); ok {
			return v, nil
		}
		if strings.EqualFold(n.Field, "length") {
			return int64(o.Len()), nil
		}
		return nil, nil
	case string:
		if strings.EqualFold(n.Field, "length") {
			return int64(len([]rune(o))), nil
		}
	case *types.Array:
		if strings.EqualFold(n.Field, "length") {
			return int64(o.Len()), nil
		}
	case *types.Queue:
		if strings.EqualFold(n.Field, "length") {
			return int64(o.Len()), nil
		}
	case *types.Map:
		if strings.EqualFold(n.Field, "length") {
			return int64(o.Len()), nil
		}
	}
	return nil, runtimeErrorf(n.Position, "%s value has no field %q", kindName(obj), n.Field)
}

// evalIndex reads an array element or map entry. Array indices are
// bounds-checked; a missing map key yields null.
func (i *Interpreter) evalIndex(ctx context.Context, n *ast.IndexExpr) (types.Value, error) {
	obj, err := i.evalExpr(ctx, n.Object)
	if err != nil {
		return nil, err
	}
	idx, err := i.evalExpr(ctx, n.Index)
	if err != nil {
		return nil, err
	}

	switch o := obj.(type) {
	case nil:
		return nil, runtimeErrorf(n.Position, "cannot index null")
	case *types.Array:
		pos, ok := idx.(int64)
		if !ok {
			return nil, runtimeErrorf(n.Position, "array index must be int, got %s", kindName(idx))
		}
		if pos < 0 || pos >= int64(len(o.Elems)) {
			return nil, runtimeErrorf(n.Position, "array index %d out of range [0, %d)", pos, len(o.Elems))
		}
		return o.Elems[pos], nil
	case *types.Map:
		switch idx.(type) {
		case string, int64:
			v, _ := o.Get(idx)
			return v, nil
		}
		return nil, runtimeErrorf(n.Position, "map key must be string or int, got %s", kindName(idx))
	default:
		return nil, runtimeErrorf(n.Position, "cannot index %s value", kindName(obj))
	}
}

// execAssign evaluates the right side, folds in a compound operator, and
// stores through the lvalue path
func (i *Interpreter) execAssign(ctx context.Context, n *ast.AssignStmt) error {
	value, err := i.evalExpr(ctx, n.Value)
	if err != nil {
		return err
	}

	if n.Op != token.Assign {
		current, err := i.evalExpr(ctx, n.Target)
		if err != nil {
			return err
		}
		var op token.Type
		switch n.Op {
		case token.PlusAssign:
			op = token.Plus
		case token.MinusAssign:
			op = token.Minus
		case token.StarAssign:
			op = token.Star
		case token.SlashAssign:
			op = token.Slash
		default:
			return runtimeErrorf(n.Position, "unsupported assignment operator %s", n.Op.String())
		}
		value, err = i.applyBinary(op, current, value, n.Position)
		if err != nil {
			return err
		}
	}

	return i.assignTo(ctx, n.Target, value)
}

// execIncDec rewrites x++ / x-- as x = x +/- 1
func (i *Interpreter) execIncDec(ctx context.Context, n *ast.IncDecStmt) error {
	current, err := i.evalExpr(ctx, n.Target)
	if err != nil {
		return err
	}
	op := token.Plus
	if n.Op == token.MinusMinus {
		op = token.Minus
	}
	value, err := i.applyBinary(op, current, int64(1), n.Position)
	if err != nil {
		return err
	}
	return i.assignTo(ctx, n.Target, value)
}

// assignTo stores a value through an lvalue expression. Whole-variable
// assignment converts to the declared type; member and index assignment
// mutate in place and then re-convert the root variable so field types,
// unknown fields, and fixed-array bounds stay enforced.
func (i *Interpreter) assignTo(ctx context.Context, target ast.Expr, value types.Value) error {
	rootIdent, accessors := splitLValue(target)
	if rootIdent == nil {
		return runtimeErrorf(target.Pos(), "invalid assignment target")
	}

	v, ok := i.env.Lookup(rootIdent.Name)
	if !ok {
		return runtimeErrorf(rootIdent.Position, "undefined variable %q", rootIdent.Name)
	}
	if v.Const {
		return runtimeErrorf(target.Pos(), "cannot assign to constant %q", v.Name)
	}
	if err := i.env.CheckScriptWrite(v); err != nil {
		return err
	}

	if len(accessors) == 0 {
		if v.Type != nil {
			converted, err := i.types.Convert(v.Type, value)
			if err != nil {
				return err
			}
			v.Value = converted
		} else {
			v.Value = types.DeepCopy(value)
		}
		return nil
	}

	// Navigate to the container holding the leaf slot
	container := v.Value
	for _, acc := range accessors[:len(accessors)-1] {
		next, err := i.readAccessor(ctx, container, acc)
		if err != nil {
			return err
		}
		container = next
	}
	if err := i.writeAccessor(ctx, container, accessors[len(accessors)-1], value); err != nil {
		return err
	}

	if v.Type != nil {
		converted, err := i.types.Convert(v.Type, v.Value)
		if err != nil {
			return err
		}
		v.Value = converted
	}
	return nil
}

// splitLValue decomposes an lvalue into its root identifier and the chain of
// member/index accessors applied to it
func splitLValue(e ast.Expr) (*ast.Identifier, []ast.Expr) {
	var accessors []ast.Expr
	for {
		switch n := e.(type) {
		case *ast.Identifier:
			// accessors were collected innermost-last; reverse to apply order
			for l, r := 0, len(accessors)-1; l < r; l, r = l+1, r-1 {
				accessors[l], accessors[r] = accessors[r], accessors[l]
			}
			return n, accessors
		case *ast.MemberExpr:
			accessors = append(accessors, n)
			e = n.Object
		case *ast.IndexExpr:
			accessors = append(accessors, n)
			e = n.Object
		default:
			return nil, nil
		}
	}
}

// readAccessor resolves one member/index step against a container value
func (i *Interpreter) readAccessor(ctx context.Context, container types.Value, acc ast.Expr) (types.Value, error) {
	switch a := acc.(type) {
	case *ast.MemberExpr:
		rec, ok := container.(*types.Record)
		if !ok {
			return nil, runtimeErrorf(a.Position, "cannot access field %q of %s value", a.Field, kindName(container))
		}
		v, found := rec.Get(a.Field)
		if !found {
			return nil, runtimeErrorf(a.Position, "field %q is not set", a.Field)
		}
		return v, nil
	case *ast.IndexExpr:
		idx, err := i.evalExpr(ctx, a.Index)
		if err != nil {
			return nil, err
		}
		switch o := container.(type) {
		case *types.Array:
			pos, ok := idx.(int64)
			if !ok {
				return nil, runtimeErrorf(a.Position, "array index must be int, got %s", kindName(idx))
			}
			if pos < 0 || pos >= int64(len(o.Elems)) {
				return nil, runtimeErrorf(a.Position, "array index %d out of range [0, %d)", pos, len(o.Elems))
			}
			return o.Elems[pos], nil
		case *types.Map:
			v, found := o.Get(idx)
			if !found {
				return nil, runtimeErrorf(a.Position, "map has no entry for key %s", types.Stringify(idx))
			}
			return v, nil
		default:
			return nil, runtimeErrorf(a.Position, "cannot index %s value", kindName(container))
		}
	default:
		return nil, runtimeErrorf(acc.Pos(), "invalid assignment target")
	}
}

// writeAccessor stores into the leaf member/index slot of a container
func (i *Interpreter) writeAccessor(ctx context.Context, container types.Value, acc ast.Expr, value types.Value) error {
	switch a := acc.(type) {
	case *ast.MemberExpr:
		rec, ok := container.(*types.Record)
		if !ok {
			return runtimeErrorf(a.Position, "cannot assign field %q of %s value", a.Field, kindName(container))
		}
		rec.Set(a.Field, value)
		return nil
	case *ast.IndexExpr:
		idx, err := i.evalExpr(ctx, a.Index)
		if err != nil {
			return err
		}
		switch o := container.(type) {
		case *types.Array:
			pos, ok := idx.(int64)
			if !ok {
				return runtimeErrorf(a.Position, "array index must be int, got %s", kindName(idx))
			}
			if pos < 0 || pos >= int64(len(o.Elems)) {
				return runtimeErrorf(a.Position, "array index %d out of range [0, %d)", pos, len(o.Elems))
			}
			o.Elems[pos] = value
			return nil
		case *types.Map:
			switch idx.(type) {
			case string, int64:
				o.Set(idx, value)
				return nil
			}
			return runtimeErrorf(a.Position, "map key must be string or int, got %s", kindName(idx))
		default:
			return runtimeErrorf(a.Position, "cannot index %s value", kindName(container))
		}
	default:
		return runtimeErrorf(acc.Pos(), "invalid assignment target")
	}
}

// callFunction invokes a declared function: arguments bind positionally by
// copy, converted to the parameter types; the body runs behind a scope
// barrier so caller locals stay invisible.
func (i *Interpreter) callFunction(ctx context.Context, fn *ast.FunctionDecl, args []types.Value, pos ast.Position) (types.Value, error) {
	if err := i.checkCancelled(ctx, pos); err != nil {
		return nil, err
	}
	if i.env.CallDepth() >= i.maxCallDepth {
		return nil, runtimeErrorf(pos, "call depth limit of %d exceeded calling %q", i.maxCallDepth, fn.Name)
	}
	if len(args) != len(fn.Params) {
		return nil, runtimeErrorf(pos, "function %q expects %d argument(s), got %d",
			fn.Name, len(fn.Params), len(args))
	}

	i.env.PushFunctionScope()
	i.env.PushCall(CallFrame{Function: fn.Name, Line: pos.Line})
	defer func() {
		i.env.PopCall()
		i.env.PopScope()
	}()

	for idx, param := range fn.Params {
		bound, err := i.types.Convert(param.Type, types.DeepCopy(args[idx]))
		if err != nil {
			return nil, err
		}
		if err := i.env.Define(&Var{Name: param.Name, Type: param.Type, Value: bound}); err != nil {
			return nil, runtimeErrorf(fn.Position, "%s", err.Error())
		}
	}

	for _, stmt := range fn.Body.Statements {
		fl, err := i.execStmt(ctx, stmt)
		if err != nil {
			return nil, err
		}
		switch fl.kind {
		case flowReturn:
			if fn.ReturnType != nil {
				return i.types.Convert(fn.ReturnType, fl.value)
			}
			return fl.value, nil
		case flowBreak, flowContinue:
			return nil, runtimeErrorf(stmt.Pos(), "break/continue outside a loop")
		}
	}

	if fn.ReturnType != nil {
		return nil, runtimeErrorf(fn.Position, "function %q ended without returning a %s value",
			fn.Name, fn.ReturnType.String())
	}
	return nil, nil
}

// callBuiltin dispatches a qualified call through the registry. Any handler
// failure is re-wrapped as a runtime error at the call site, so scripts see
// one uniform error shape for host faults.
func (i *Interpreter) callBuiltin(ctx context.Context, n *ast.BuiltinCall) (types.Value, error) {
	if err := i.checkCancelled(ctx, ast.Position{Line: n.Position.Line, Column: n.Position.Column}); err != nil {
		return nil, err
	}

	handler, found := i.builtins.Lookup(n.Qualified())
	if !found {
		return nil, &registry.UnknownBuiltinError{Name: n.Qualified()}
	}

	args, err := i.evalArgs(ctx, n.Args)
	if err != nil {
		return nil, err
	}

	callCtx := &registry.Context{
		Ctx:    ctx,
		Logger: i.logger.WithField("builtin", strings.ToLower(n.Qualified())),
		Line:   n.Position.Line,
		Column: n.Position.Column,
		Engine: i.submitter,
		Vars:   i.varAccess,
		Output: i.output,
	}

	result, err := handler(callCtx, args)
	if err != nil {
		i.logger.Debug("builtin failed", log.Fields{
			"name":  strings.ToLower(n.Qualified()),
			"error": err.Error(),
		})
		return nil, &InterpreterError{
			Message: fmt.Sprintf("builtin %s failed: %s", n.Qualified(), err.Error()),
			Line:    n.Position.Line,
			Column:  n.Position.Column,
			Cause:   hostCause(err),
		}
	}
	return result, nil
}

// hostCause normalizes a handler error to a HostError cause
func hostCause(err error) error {
	if _, ok := err.(*registry.HostError); ok {
		return err
	}
	return registry.WrapHost("host operation failed", err)
}

// valuesEqual compares two values: numbers compare across int/double, scalars
// by value, composites structurally
func valuesEqual(left, right types.Value) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if lok && rok {
		return lf == rf
	}
	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		return ok && l == r
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	case *types.Handle:
		r, ok := right.(*types.Handle)
		return ok && l == r
	default:
		return reflect.DeepEqual(left, right)
	}
}

// toFloat widens a numeric value to float64
func toFloat(v types.Value) (float64, bool) {
	switch num := v.(type) {
	case int64:
		return float64(num), true
	case float64:
		return num, true
	}
	return 0, false
}

// kindName names a value's kind for error messages
func kindName(v types.Value) string {
	k := types.KindOf(v)
	if k == types.KindInvalid {
		return "unknown"
	}
	return k.String()
}
