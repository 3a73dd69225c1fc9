package interp

import "github.com/funvibe/ecmacore/internal/ast"

// loopResult classifies a loop-body completion: propagate is true when
// c must go outward (return, throw, or a break/continue targeting
// another label); brk is true for a break targeting this loop; both
// false means keep looping (normal, or a continue targeting this loop).
func loopResult(c Completion, label string) (propagate bool, brk bool) {
	if c.Type == CompletionNormal || c.Type == CompletionReturn || c.Type == CompletionThrow {
		return c.Type != CompletionNormal, false
	}
	if c.Target != "" && c.Target != label {
		return true, false
	}
	if c.Type == CompletionBreak {
		return false, true
	}
	return false, false // continue targeting us: keep looping
}

func (e *Evaluator) evalWhileStatement(ec *ExecutionContext, n *ast.WhileStatement, label string) Completion {
	var v Value = Undefined()
	for {
		testC := e.refToValue(ec, e.Eval(ec, n.Test))
		if IsAbrupt(testC) {
			return testC
		}
		if !ToBoolean(testC.Value) {
			break
		}
		bodyC := e.Eval(ec, n.Body)
		if !bodyC.Value.IsUndefined() {
			v = bodyC.Value
		}
		if propagate, brk := loopResult(bodyC, label); propagate {
			return bodyC
		} else if brk {
			break
		}
	}
	return NormalCompletion(v)
}

func (e *Evaluator) evalDoWhileStatement(ec *ExecutionContext, n *ast.DoWhileStatement, label string) Completion {
	var v Value = Undefined()
	for {
		bodyC := e.Eval(ec, n.Body)
		if !bodyC.Value.IsUndefined() {
			v = bodyC.Value
		}
		if propagate, brk := loopResult(bodyC, label); propagate {
			return bodyC
		} else if brk {
			break
		}
		testC := e.refToValue(ec, e.Eval(ec, n.Test))
		if IsAbrupt(testC) {
			return testC
		}
		if !ToBoolean(testC.Value) {
			break
		}
	}
	return NormalCompletion(v)
}

func (e *Evaluator) evalForStatement(ec *ExecutionContext, n *ast.ForStatement, label string) Completion {
	loopEnv := NewDeclarativeEnvironment(ec.LexicalEnvironment)
	inner := *ec
	inner.LexicalEnvironment = loopEnv
	perIteration := false

	if vd, ok := n.Init.(*ast.VariableDeclaration); ok {
		if vd.Kind != "var" {
			perIteration = true
			for _, d := range vd.Declarations {
				for _, name := range boundNames(d.ID) {
					if vd.Kind == "const" {
						loopEnv.CreateImmutableBinding(name, true)
					} else {
						loopEnv.CreateMutableBinding(name, false)
					}
				}
			}
		}
		if c := e.Eval(&inner, vd); IsAbrupt(c) {
			return c
		}
	} else if n.Init != nil {
		if c := e.refToValue(&inner, e.Eval(&inner, n.Init.(ast.Expression))); IsAbrupt(c) {
			return c
		}
	}

	var v Value = Undefined()
	for {
		if perIteration {
			loopEnv = copyLoopEnvironment(loopEnv)
			inner.LexicalEnvironment = loopEnv
		}
		if n.Test != nil {
			testC := e.refToValue(&inner, e.Eval(&inner, n.Test))
			if IsAbrupt(testC) {
				return testC
			}
			if !ToBoolean(testC.Value) {
				break
			}
		}
		bodyC := e.Eval(&inner, n.Body)
		if !bodyC.Value.IsUndefined() {
			v = bodyC.Value
		}
		if propagate, brk := loopResult(bodyC, label); propagate {
			return bodyC
		} else if brk {
			break
		}
		if n.Update != nil {
			if c := e.refToValue(&inner, e.Eval(&inner, n.Update)); IsAbrupt(c) {
				return c
			}
		}
	}
	return NormalCompletion(v)
}

// copyLoopEnvironment implements CreatePerIterationEnvironment: each
// `for (let ...)` iteration gets a fresh declarative environment
// seeded from the previous one's bindings, so closures captured per
// iteration see that iteration's own value (spec.md §4.4).
func copyLoopEnvironment(prev *Environment) *Environment {
	next := NewDeclarativeEnvironment(prev.Outer)
	for name, b := range prev.bindings {
		nb := *b
		next.bindings[name] = &nb
	}
	return next
}

func (e *Evaluator) evalForInStatement(ec *ExecutionContext, n *ast.ForInStatement, label string) Completion {
	rightC := e.refToValue(ec, e.Eval(ec, n.Right))
	if IsAbrupt(rightC) {
		return rightC
	}
	if rightC.Value.IsNullish() {
		return NormalCompletion(Undefined())
	}
	objC := ToObject(ec.Realm, rightC.Value)
	if IsAbrupt(objC) {
		return objC
	}
	keys := enumerableKeys(objC.Value.AsObject())
	var v Value = Undefined()
	for _, key := range keys {
		inner := *ec
		loopEnv := NewDeclarativeEnvironment(ec.LexicalEnvironment)
		inner.LexicalEnvironment = loopEnv
		if c := e.bindForHead(&inner, n.Left, String(key), loopEnv); IsAbrupt(c) {
			return c
		}
		bodyC := e.Eval(&inner, n.Body)
		if !bodyC.Value.IsUndefined() {
			v = bodyC.Value
		}
		if propagate, brk := loopResult(bodyC, label); propagate {
			return bodyC
		} else if brk {
			break
		}
	}
	return NormalCompletion(v)
}

func enumerableKeys(o *Object) []string {
	seen := map[string]bool{}
	var out []string
	for cur := o; cur != nil; cur = cur.GetPrototypeOf() {
		for _, key := range cur.OwnPropertyKeys() {
			if key.IsSymbol() {
				continue
			}
			if seen[key.String()] {
				continue
			}
			seen[key.String()] = true
			desc := cur.GetOwnProperty(key)
			if desc != nil && boolOr(desc.Enumerable, false) {
				out = append(out, key.String())
			}
		}
	}
	return out
}

func (e *Evaluator) evalForOfStatement(ec *ExecutionContext, n *ast.ForOfStatement, label string) Completion {
	rightC := e.refToValue(ec, e.Eval(ec, n.Right))
	if IsAbrupt(rightC) {
		return rightC
	}
	iterator, c := GetIterator(ec.Realm, rightC.Value)
	if IsAbrupt(c) {
		return c
	}
	var v Value = Undefined()
	for {
		result, done, c := IteratorStep(ec.Realm, iterator)
		if IsAbrupt(c) {
			return c
		}
		if done {
			break
		}
		itemC, c2 := IteratorValue(ec.Realm, result)
		if IsAbrupt(c2) {
			return c2
		}
		inner := *ec
		loopEnv := NewDeclarativeEnvironment(ec.LexicalEnvironment)
		inner.LexicalEnvironment = loopEnv
		if c := e.bindForHead(&inner, n.Left, itemC, loopEnv); IsAbrupt(c) {
			return IteratorClose(ec.Realm, iterator, c)
		}
		bodyC := e.Eval(&inner, n.Body)
		if !bodyC.Value.IsUndefined() {
			v = bodyC.Value
		}
		propagate, brk := loopResult(bodyC, label)
		if propagate {
			return IteratorClose(ec.Realm, iterator, bodyC)
		}
		if brk {
			return IteratorClose(ec.Realm, iterator, NormalCompletion(v))
		}
	}
	return NormalCompletion(v)
}

// bindForHead binds one for-in/for-of iteration's value into either a
// fresh lexical binding (let/const left) or an existing reference
// (bare identifier/pattern left).
func (e *Evaluator) bindForHead(ec *ExecutionContext, left ast.Node, value Value, loopEnv *Environment) Completion {
	if vd, ok := left.(*ast.VariableDeclaration); ok {
		target := vd.Declarations[0].ID
		for _, name := range boundNames(target) {
			if vd.Kind == "const" {
				loopEnv.CreateImmutableBinding(name, true)
			} else {
				loopEnv.CreateMutableBinding(name, false)
			}
		}
		return e.bindingInitialization(ec, target, value, loopEnv)
	}
	return e.destructuringAssignment(ec, left, value)
}

func (e *Evaluator) evalSwitchStatement(ec *ExecutionContext, n *ast.SwitchStatement) Completion {
	discC := e.refToValue(ec, e.Eval(ec, n.Discriminant))
	if IsAbrupt(discC) {
		return discC
	}
	switchEnv := NewDeclarativeEnvironment(ec.LexicalEnvironment)
	inner := *ec
	inner.LexicalEnvironment = switchEnv
	var allStmts []ast.Statement
	for _, c := range n.Cases {
		allStmts = append(allStmts, c.Consequent...)
	}
	if c := e.blockDeclarationInstantiation(&inner, allStmts); IsAbrupt(c) {
		return c
	}

	matchIdx := -1
	for i, c := range n.Cases {
		if c.Test == nil {
			continue
		}
		testC := e.refToValue(&inner, e.Eval(&inner, c.Test))
		if IsAbrupt(testC) {
			return testC
		}
		if IsStrictlyEqual(discC.Value, testC.Value) {
			matchIdx = i
			break
		}
	}
	if matchIdx == -1 {
		for i, c := range n.Cases {
			if c.Test == nil {
				matchIdx = i
				break
			}
		}
	}
	if matchIdx == -1 {
		return NormalCompletion(Undefined())
	}
	var v Value = Undefined()
	for i := matchIdx; i < len(n.Cases); i++ {
		for _, stmt := range n.Cases[i].Consequent {
			c := e.Eval(&inner, stmt)
			if !c.Value.IsUndefined() {
				v = c.Value
			}
			if IsAbrupt(c) {
				return c
			}
			if c.Type == CompletionBreak && c.Target == "" {
				return NormalCompletion(v)
			}
			if c.Type != CompletionNormal {
				return c
			}
		}
	}
	return NormalCompletion(v)
}

func (e *Evaluator) evalTryStatement(ec *ExecutionContext, n *ast.TryStatement) Completion {
	result := e.Eval(ec, n.Block)
	if result.Type == CompletionThrow && n.Handler != nil {
		result = e.evalCatchClause(ec, n.Handler, result.Value)
	}
	if n.Finalizer != nil {
		finC := e.Eval(ec, n.Finalizer)
		if finC.Type != CompletionNormal {
			return finC
		}
	}
	return result
}

func (e *Evaluator) evalCatchClause(ec *ExecutionContext, h *ast.CatchClause, thrown Value) Completion {
	catchEnv := NewDeclarativeEnvironment(ec.LexicalEnvironment)
	inner := *ec
	inner.LexicalEnvironment = catchEnv
	if h.Param != nil {
		for _, name := range boundNames(h.Param) {
			catchEnv.CreateMutableBinding(name, false)
		}
		if c := e.bindingInitialization(&inner, h.Param, thrown, catchEnv); IsAbrupt(c) {
			return c
		}
	}
	return e.Eval(&inner, h.Body)
}
