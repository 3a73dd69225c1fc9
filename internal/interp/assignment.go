package interp

import "github.com/funvibe/ecmacore/internal/ast"

func (e *Evaluator) evalAssignmentExpression(ec *ExecutionContext, n *ast.AssignmentExpression) Completion {
	if n.Operator == "=" {
		return e.namedOrPlainAssign(ec, n)
	}
	if n.Operator == "&&=" || n.Operator == "||=" || n.Operator == "??=" {
		return e.evalLogicalAssignment(ec, n)
	}
	// Compound arithmetic/bitwise assignment: x op= y.
	refC := e.Eval(ec, n.Left)
	if IsAbrupt(refC) {
		return refC
	}
	ref, ok := refC.Value.refHolder()
	if !ok {
		assertNever("compound assignment target did not produce a Reference")
	}
	oldC := ref.GetValue(ec.Realm)
	if IsAbrupt(oldC) {
		return oldC
	}
	rightC := e.refToValue(ec, e.Eval(ec, n.Right))
	if IsAbrupt(rightC) {
		return rightC
	}
	op := n.Operator[:len(n.Operator)-1]
	resultC := ApplyBinaryOperator(ec.Realm, op, oldC.Value, rightC.Value)
	if IsAbrupt(resultC) {
		return resultC
	}
	if putC := ref.PutValue(ec.Realm, resultC.Value); IsAbrupt(putC) {
		return putC
	}
	return NormalCompletion(resultC.Value)
}

// namedOrPlainAssign implements `=` assignment: destructuring patterns
// go through DestructuringAssignmentEvaluation; a plain identifier
// target gets NamedEvaluation for an anonymous function/class value on
// the right (spec.md §4.7).
func (e *Evaluator) namedOrPlainAssign(ec *ExecutionContext, n *ast.AssignmentExpression) Completion {
	switch n.Left.(type) {
	case *ast.ArrayExpression, *ast.ObjectExpression:
		rightC := e.refToValue(ec, e.Eval(ec, n.Right))
		if IsAbrupt(rightC) {
			return rightC
		}
		if c := e.destructuringAssignment(ec, n.Left, rightC.Value); IsAbrupt(c) {
			return c
		}
		return NormalCompletion(rightC.Value)
	}
	refC := e.Eval(ec, n.Left)
	if IsAbrupt(refC) {
		return refC
	}
	ref, ok := refC.Value.refHolder()
	if !ok {
		assertNever("assignment target did not produce a Reference")
	}
	rightC := e.refToValue(ec, e.Eval(ec, n.Right))
	if IsAbrupt(rightC) {
		return rightC
	}
	if id, ok := n.Left.(*ast.Identifier); ok && isAnonymousFunctionValue(rightC.Value) {
		SetFunctionName(rightC.Value.AsObject(), id.Name, "")
	}
	if putC := ref.PutValue(ec.Realm, rightC.Value); IsAbrupt(putC) {
		return putC
	}
	return NormalCompletion(rightC.Value)
}

func (e *Evaluator) evalLogicalAssignment(ec *ExecutionContext, n *ast.AssignmentExpression) Completion {
	refC := e.Eval(ec, n.Left)
	if IsAbrupt(refC) {
		return refC
	}
	ref, ok := refC.Value.refHolder()
	if !ok {
		assertNever("logical assignment target did not produce a Reference")
	}
	oldC := ref.GetValue(ec.Realm)
	if IsAbrupt(oldC) {
		return oldC
	}
	switch n.Operator {
	case "&&=":
		if !ToBoolean(oldC.Value) {
			return oldC
		}
	case "||=":
		if ToBoolean(oldC.Value) {
			return oldC
		}
	case "??=":
		if !oldC.Value.IsNullish() {
			return oldC
		}
	}
	rightC := e.refToValue(ec, e.Eval(ec, n.Right))
	if IsAbrupt(rightC) {
		return rightC
	}
	if id, ok := n.Left.(*ast.Identifier); ok && isAnonymousFunctionValue(rightC.Value) {
		SetFunctionName(rightC.Value.AsObject(), id.Name, "")
	}
	if putC := ref.PutValue(ec.Realm, rightC.Value); IsAbrupt(putC) {
		return putC
	}
	return NormalCompletion(rightC.Value)
}
