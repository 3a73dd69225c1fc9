package interp

import "github.com/funvibe/ecmacore/internal/ast"

// Evaluator walks an ast.Node tree against a running ExecutionContext,
// producing Completion records (spec.md §4.7). It holds no state of its
// own beyond the driving VM — all script state lives in the
// ExecutionContext/Environment/Realm graph — so one Evaluator can be
// shared by every concurrently-running realm the embedder creates.
type Evaluator struct {
	VM *VM
}

func NewEvaluator(vm *VM) *Evaluator { return &Evaluator{VM: vm} }

func (e *Evaluator) realm(ec *ExecutionContext) *Realm { return ec.Realm }

// Eval is the single entry point every recursive call inside this
// package goes through: it enforces the recursion-depth guard and
// cancellation check (spec.md §5), then dispatches on node's dynamic
// type.
func (e *Evaluator) Eval(ec *ExecutionContext, node ast.Node) Completion {
	if abrupt, stop := e.VM.checkBudget(ec.Realm); stop {
		return abrupt
	}
	defer e.VM.endEval()

	switch n := node.(type) {
	// ---- statements ----
	case *ast.Program:
		return e.evalProgram(ec, n)
	case *ast.ExpressionStatement:
		return e.refToValue(ec, e.Eval(ec, n.Expression))
	case *ast.BlockStatement:
		return e.evalBlockStatement(ec, n)
	case *ast.EmptyStatement:
		return NormalCompletion(Value{})
	case *ast.VariableDeclaration:
		return e.evalVariableDeclaration(ec, n)
	case *ast.FunctionDeclaration:
		return NormalCompletion(Value{})
	case *ast.ClassDeclaration:
		return e.evalClassDeclaration(ec, n)
	case *ast.IfStatement:
		return e.evalIfStatement(ec, n)
	case *ast.WhileStatement:
		return e.evalWhileStatement(ec, n, "")
	case *ast.DoWhileStatement:
		return e.evalDoWhileStatement(ec, n, "")
	case *ast.ForStatement:
		return e.evalForStatement(ec, n, "")
	case *ast.ForInStatement:
		return e.evalForInStatement(ec, n, "")
	case *ast.ForOfStatement:
		return e.evalForOfStatement(ec, n, "")
	case *ast.SwitchStatement:
		return e.evalSwitchStatement(ec, n)
	case *ast.TryStatement:
		return e.evalTryStatement(ec, n)
	case *ast.ThrowStatement:
		return e.evalThrowStatement(ec, n)
	case *ast.ReturnStatement:
		return e.evalReturnStatement(ec, n)
	case *ast.BreakStatement:
		target := ""
		if n.Label != nil {
			target = n.Label.Name
		}
		return Completion{Type: CompletionBreak, Target: target}
	case *ast.ContinueStatement:
		target := ""
		if n.Label != nil {
			target = n.Label.Name
		}
		return Completion{Type: CompletionContinue, Target: target}
	case *ast.LabeledStatement:
		return e.evalLabeledStatement(ec, n)
	case *ast.WithStatement:
		return e.evalWithStatement(ec, n)

	// ---- expressions ----
	case *ast.Literal:
		return e.evalLiteral(n)
	case *ast.Identifier:
		return e.evalIdentifierReference(ec, n)
	case *ast.ThisExpression:
		return ec.LexicalEnvironment.GetThisBinding(ec.Realm)
	case *ast.TemplateLiteral:
		return e.evalTemplateLiteral(ec, n)
	case *ast.ArrayExpression:
		return e.evalArrayExpression(ec, n)
	case *ast.ObjectExpression:
		return e.evalObjectExpression(ec, n)
	case *ast.FunctionExpression:
		return e.evalFunctionExpression(ec, n)
	case *ast.ArrowFunctionExpression:
		return e.evalArrowFunctionExpression(ec, n)
	case *ast.ClassExpression:
		return e.evalClassExpression(ec, n)
	case *ast.MemberExpression:
		return e.evalMemberExpressionRef(ec, n)
	case *ast.ChainExpression:
		return e.evalChainExpression(ec, n)
	case *ast.CallExpression:
		return e.evalCallExpression(ec, n)
	case *ast.NewExpression:
		return e.evalNewExpression(ec, n)
	case *ast.UnaryExpression:
		return e.evalUnaryExpression(ec, n)
	case *ast.UpdateExpression:
		return e.evalUpdateExpression(ec, n)
	case *ast.BinaryExpression:
		return e.evalBinaryExpression(ec, n)
	case *ast.LogicalExpression:
		return e.evalLogicalExpression(ec, n)
	case *ast.AssignmentExpression:
		return e.evalAssignmentExpression(ec, n)
	case *ast.ConditionalExpression:
		return e.evalConditionalExpression(ec, n)
	case *ast.SequenceExpression:
		return e.evalSequenceExpression(ec, n)
	case *ast.SpreadElement:
		return e.Eval(ec, n.Argument)
	case *ast.YieldExpression:
		return e.evalYieldExpression(ec, n)
	case *ast.PrivateIdentifier:
		return NormalCompletion(Value{})
	default:
		assertNever("Eval: unhandled node type")
		return Completion{}
	}
}

// refToValue dereferences a Reference completion produced by an
// expression evaluated in reference-producing position (spec.md §4.1's
// "GetValue wrapping").
func (e *Evaluator) refToValue(ec *ExecutionContext, c Completion) Completion {
	if IsAbrupt(c) {
		return c
	}
	if ref, ok := c.Value.refHolder(); ok {
		return ref.GetValue(ec.Realm)
	}
	return c
}

func (e *Evaluator) evalProgram(ec *ExecutionContext, n *ast.Program) Completion {
	if c := e.globalDeclarationInstantiation(ec, n.Body); IsAbrupt(c) {
		return c
	}
	result := NormalCompletion(Undefined())
	for _, stmt := range n.Body {
		c := e.Eval(ec, stmt)
		if IsAbrupt(c) {
			return c
		}
		if !c.Value.IsUndefined() || c.Type != CompletionNormal {
			result = c
		}
	}
	return result
}

func (e *Evaluator) evalBlockStatement(ec *ExecutionContext, n *ast.BlockStatement) Completion {
	blockEnv := NewDeclarativeEnvironment(ec.LexicalEnvironment)
	inner := *ec
	inner.LexicalEnvironment = blockEnv
	if c := e.blockDeclarationInstantiation(&inner, n.Body); IsAbrupt(c) {
		return c
	}
	return e.evalStatementList(&inner, n.Body)
}

func (e *Evaluator) evalStatementList(ec *ExecutionContext, stmts []ast.Statement) Completion {
	result := NormalCompletion(Undefined())
	for _, stmt := range stmts {
		c := e.Eval(ec, stmt)
		if IsAbrupt(c) {
			return c
		}
		if !c.Value.IsUndefined() {
			result = c
		}
	}
	return result
}

func (e *Evaluator) evalIfStatement(ec *ExecutionContext, n *ast.IfStatement) Completion {
	testC := e.refToValue(ec, e.Eval(ec, n.Test))
	if IsAbrupt(testC) {
		return testC
	}
	if ToBoolean(testC.Value) {
		return e.Eval(ec, n.Consequent)
	}
	if n.Alternate != nil {
		return e.Eval(ec, n.Alternate)
	}
	return NormalCompletion(Undefined())
}

func (e *Evaluator) evalThrowStatement(ec *ExecutionContext, n *ast.ThrowStatement) Completion {
	c := e.refToValue(ec, e.Eval(ec, n.Argument))
	if IsAbrupt(c) {
		return c
	}
	return ThrowCompletion(c.Value)
}

func (e *Evaluator) evalReturnStatement(ec *ExecutionContext, n *ast.ReturnStatement) Completion {
	if n.Argument == nil {
		return Completion{Type: CompletionReturn, Value: Undefined()}
	}
	c := e.refToValue(ec, e.Eval(ec, n.Argument))
	if IsAbrupt(c) {
		return c
	}
	return Completion{Type: CompletionReturn, Value: c.Value}
}

func (e *Evaluator) evalLabeledStatement(ec *ExecutionContext, n *ast.LabeledStatement) Completion {
	label := n.Label.Name
	var c Completion
	switch body := n.Body.(type) {
	case *ast.WhileStatement:
		c = e.evalWhileStatement(ec, body, label)
	case *ast.DoWhileStatement:
		c = e.evalDoWhileStatement(ec, body, label)
	case *ast.ForStatement:
		c = e.evalForStatement(ec, body, label)
	case *ast.ForInStatement:
		c = e.evalForInStatement(ec, body, label)
	case *ast.ForOfStatement:
		c = e.evalForOfStatement(ec, body, label)
	default:
		c = e.Eval(ec, n.Body)
	}
	if c.Type == CompletionBreak && c.Target == label {
		return NormalCompletion(Undefined())
	}
	return c
}

func (e *Evaluator) evalWithStatement(ec *ExecutionContext, n *ast.WithStatement) Completion {
	objC := e.refToValue(ec, e.Eval(ec, n.Object))
	if IsAbrupt(objC) {
		return objC
	}
	toObjC := ToObject(ec.Realm, objC.Value)
	if IsAbrupt(toObjC) {
		return toObjC
	}
	withEnv := NewObjectEnvironment(toObjC.Value.AsObject(), true, ec.LexicalEnvironment)
	inner := *ec
	inner.LexicalEnvironment = withEnv
	return e.Eval(&inner, n.Body)
}
