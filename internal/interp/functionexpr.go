package interp

import "github.com/funvibe/ecmacore/internal/ast"

// evalFunctionExpression implements Evaluation of FunctionExpression
// (spec.md §4.5): a named function expression gets its own name bound,
// immutably, inside a fresh scope enclosing the function so the
// function can recurse by name even when assigned elsewhere.
func (e *Evaluator) evalFunctionExpression(ec *ExecutionContext, n *ast.FunctionExpression) Completion {
	kind := FunctionNormal
	if n.Generator {
		kind = FunctionGenerator
	}
	scope := ec.LexicalEnvironment
	if n.ID != nil {
		scope = NewDeclarativeEnvironment(ec.LexicalEnvironment)
		scope.CreateImmutableBinding(n.ID.Name, false)
	}
	f := e.OrdinaryFunctionCreate(ec.Realm, nil, n.Params, n.Body, kind, scope, true, ec.PrivateEnvironment)
	SetFunctionName(f, nameOr(n.ID, ""), "")
	MakeConstructor(ec.Realm, f, true, nil)
	if n.ID != nil {
		scope.InitializeBinding(ec.Realm, n.ID.Name, ObjectValue(f))
	}
	return NormalCompletion(ObjectValue(f))
}

func (e *Evaluator) evalArrowFunctionExpression(ec *ExecutionContext, n *ast.ArrowFunctionExpression) Completion {
	f := e.OrdinaryFunctionCreate(ec.Realm, nil, n.Params, n.Body, FunctionArrow, ec.LexicalEnvironment, true, ec.PrivateEnvironment)
	SetFunctionName(f, "", "")
	return NormalCompletion(ObjectValue(f))
}

func nameOr(id *ast.Identifier, def string) string {
	if id == nil {
		return def
	}
	return id.Name
}
