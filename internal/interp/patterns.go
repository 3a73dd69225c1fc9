package interp

import "github.com/funvibe/ecmacore/internal/ast"

// boundNames collects every identifier a binding pattern introduces
// (spec.md §4.4's BoundNames, needed up front by
// FunctionDeclarationInstantiation and variable/lexical hoisting).
func boundNames(p ast.Node) []string {
	switch n := p.(type) {
	case *ast.Identifier:
		return []string{n.Name}
	case *ast.RestElement:
		return boundNames(n.Argument)
	case *ast.AssignmentPattern:
		return boundNames(n.Left)
	case *ast.ArrayPattern:
		var out []string
		for _, el := range n.Elements {
			if el == nil {
				continue
			}
			out = append(out, boundNames(el)...)
		}
		return out
	case *ast.ObjectPattern:
		var out []string
		for _, prop := range n.Properties {
			out = append(out, boundNames(prop.Value)...)
		}
		if n.Rest != nil {
			out = append(out, boundNames(n.Rest)...)
		}
		return out
	}
	return nil
}

// bindingInitialization implements BindingInitialization for every
// pattern shape against an already-created binding in env (spec.md
// §4.4); it assumes CreateMutableBinding has already run for every
// name BoundNames produced (done up-front by the declaration/parameter
// hoisting passes).
func (e *Evaluator) bindingInitialization(ec *ExecutionContext, p ast.Node, value Value, env *Environment) Completion {
	switch n := p.(type) {
	case *ast.Identifier:
		return env.InitializeBinding(ec.Realm, n.Name, value)
	case *ast.AssignmentPattern:
		v := value
		if v.IsUndefined() {
			defC := e.refToValue(ec, e.Eval(ec, n.Right))
			if IsAbrupt(defC) {
				return defC
			}
			v = defC.Value
			if id, ok := n.Left.(*ast.Identifier); ok && isAnonymousFunctionValue(v) {
				SetFunctionName(v.AsObject(), id.Name, "")
			}
		}
		return e.bindingInitialization(ec, n.Left, v, env)
	case *ast.ArrayPattern:
		return e.arrayBindingInitialization(ec, n, value, env)
	case *ast.ObjectPattern:
		return e.objectBindingInitialization(ec, n, value, env)
	case *ast.RestElement:
		return e.bindingInitialization(ec, n.Argument, value, env)
	}
	assertNever("bindingInitialization: unhandled pattern")
	return Completion{}
}

func isAnonymousFunctionValue(v Value) bool {
	if !v.IsObject() || v.AsObject().Call == nil {
		return false
	}
	d := funcData(v.AsObject())
	return d != nil
}

func (e *Evaluator) arrayBindingInitialization(ec *ExecutionContext, n *ast.ArrayPattern, value Value, env *Environment) Completion {
	iterator, c := GetIterator(ec.Realm, value)
	if IsAbrupt(c) {
		return c
	}
	exhausted := false
	for _, el := range n.Elements {
		if rest, ok := el.(*ast.RestElement); ok {
			restArr := ArrayCreate(ec.Realm, 0)
			idx := uint32(0)
			if !exhausted {
				for {
					result, done, c := IteratorStep(ec.Realm, iterator)
					if IsAbrupt(c) {
						return c
					}
					if done {
						exhausted = true
						break
					}
					v, c := IteratorValue(ec.Realm, result)
					if IsAbrupt(c) {
						return c
					}
					restArr.CreateDataProperty(StringKey(uintToStr(idx)), v)
					idx++
				}
			}
			if c := e.bindingInitialization(ec, rest.Argument, ObjectValue(restArr), env); IsAbrupt(c) {
				return c
			}
			continue
		}
		var v Value = Undefined()
		if !exhausted {
			result, done, c := IteratorStep(ec.Realm, iterator)
			if IsAbrupt(c) {
				return c
			}
			if done {
				exhausted = true
			} else {
				vv, c := IteratorValue(ec.Realm, result)
				if IsAbrupt(c) {
					return c
				}
				v = vv
			}
		}
		if el == nil {
			continue
		}
		if c := e.bindingInitialization(ec, el, v, env); IsAbrupt(c) {
			if !exhausted {
				return IteratorClose(ec.Realm, iterator, c)
			}
			return c
		}
	}
	if !exhausted {
		return IteratorClose(ec.Realm, iterator, NormalCompletion(Undefined()))
	}
	return NormalCompletion(Undefined())
}

func (e *Evaluator) objectBindingInitialization(ec *ExecutionContext, n *ast.ObjectPattern, value Value, env *Environment) Completion {
	if reqC := RequireObjectCoercible(ec.Realm, value); IsAbrupt(reqC) {
		return reqC
	}
	seen := map[PropertyKey]bool{}
	for _, prop := range n.Properties {
		key, c := e.patternPropertyKey(ec, *prop)
		if IsAbrupt(c) {
			return c
		}
		seen[key] = true
		objC := ToObject(ec.Realm, value)
		if IsAbrupt(objC) {
			return objC
		}
		vC := objC.Value.AsObject().Get(key, value)
		if IsAbrupt(vC) {
			return vC
		}
		if c := e.bindingInitialization(ec, prop.Value, vC.Value, env); IsAbrupt(c) {
			return c
		}
	}
	if n.Rest != nil {
		restObj := OrdinaryObjectCreate(ec.Realm.Intrinsic("%Object.prototype%"))
		restObj.Realm = ec.Realm
		objC := ToObject(ec.Realm, value)
		if IsAbrupt(objC) {
			return objC
		}
		for _, key := range objC.Value.AsObject().OwnPropertyKeys() {
			if seen[key] {
				continue
			}
			desc := objC.Value.AsObject().GetOwnProperty(key)
			if desc == nil || !boolOr(desc.Enumerable, false) {
				continue
			}
			vC := objC.Value.AsObject().Get(key, value)
			if IsAbrupt(vC) {
				return vC
			}
			restObj.CreateDataProperty(key, vC.Value)
		}
		if c := e.bindingInitialization(ec, n.Rest.Argument, ObjectValue(restObj), env); IsAbrupt(c) {
			return c
		}
	}
	return NormalCompletion(Undefined())
}

func (e *Evaluator) patternPropertyKey(ec *ExecutionContext, prop ast.ObjectPatternProperty) (PropertyKey, Completion) {
	if prop.Computed {
		c := e.refToValue(ec, e.Eval(ec, prop.Key.(ast.Expression)))
		if IsAbrupt(c) {
			return PropertyKey{}, c
		}
		keyC := ToPropertyKey(c.Value)
		if IsAbrupt(keyC) {
			return PropertyKey{}, keyC
		}
		return keyC.Value.toPropertyKeyValue(), NormalCompletion(Undefined())
	}
	switch k := prop.Key.(type) {
	case *ast.Identifier:
		return StringKey(k.Name), NormalCompletion(Undefined())
	case *ast.Literal:
		if k.Kind == "string" {
			return StringKey(k.Value.(string)), NormalCompletion(Undefined())
		}
		return StringKey(k.Raw), NormalCompletion(Undefined())
	}
	return StringKey(""), NormalCompletion(Undefined())
}

// destructuringAssignment implements DestructuringAssignmentEvaluation
// for the "=" assignment-expression case, where targets are arbitrary
// l-value expressions (MemberExpression references) rather than fresh
// bindings.
func (e *Evaluator) destructuringAssignment(ec *ExecutionContext, target ast.Node, value Value) Completion {
	switch n := target.(type) {
	case *ast.ArrayExpression:
		return e.arrayDestructuringAssignment(ec, n, value)
	case *ast.ObjectExpression:
		return e.objectDestructuringAssignment(ec, n, value)
	default:
		expr := target.(ast.Expression)
		refC := e.Eval(ec, expr)
		if IsAbrupt(refC) {
			return refC
		}
		ref, ok := refC.Value.refHolder()
		if !ok {
			assertNever("destructuring assignment target did not produce a Reference")
		}
		return ref.PutValue(ec.Realm, value)
	}
}

func (e *Evaluator) arrayDestructuringAssignment(ec *ExecutionContext, n *ast.ArrayExpression, value Value) Completion {
	iterator, c := GetIterator(ec.Realm, value)
	if IsAbrupt(c) {
		return c
	}
	exhausted := false
	for _, el := range n.Elements {
		if spread, ok := el.(*ast.SpreadElement); ok {
			restArr := ArrayCreate(ec.Realm, 0)
			idx := uint32(0)
			if !exhausted {
				for {
					result, done, c := IteratorStep(ec.Realm, iterator)
					if IsAbrupt(c) {
						return c
					}
					if done {
						exhausted = true
						break
					}
					v, c := IteratorValue(ec.Realm, result)
					if IsAbrupt(c) {
						return c
					}
					restArr.CreateDataProperty(StringKey(uintToStr(idx)), v)
					idx++
				}
			}
			if c := e.destructuringAssignment(ec, spread.Argument, ObjectValue(restArr)); IsAbrupt(c) {
				return c
			}
			continue
		}
		var v Value = Undefined()
		if !exhausted {
			result, done, c := IteratorStep(ec.Realm, iterator)
			if IsAbrupt(c) {
				return c
			}
			if done {
				exhausted = true
			} else {
				vv, c := IteratorValue(ec.Realm, result)
				if IsAbrupt(c) {
					return c
				}
				v = vv
			}
		}
		if el == nil {
			continue
		}
		target := el
		if asn, ok := el.(*ast.AssignmentExpression); ok {
			target = asn.Left.(ast.Expression)
			if v.IsUndefined() {
				defC := e.refToValue(ec, e.Eval(ec, asn.Right))
				if IsAbrupt(defC) {
					return defC
				}
				v = defC.Value
			}
		}
		if c := e.destructuringAssignment(ec, target, v); IsAbrupt(c) {
			return c
		}
	}
	if !exhausted {
		return IteratorClose(ec.Realm, iterator, NormalCompletion(Undefined()))
	}
	return NormalCompletion(Undefined())
}

func (e *Evaluator) objectDestructuringAssignment(ec *ExecutionContext, n *ast.ObjectExpression, value Value) Completion {
	if reqC := RequireObjectCoercible(ec.Realm, value); IsAbrupt(reqC) {
		return reqC
	}
	seen := map[PropertyKey]bool{}
	for _, prop := range n.Properties {
		p, ok := prop.(*ast.Property)
		if !ok {
			continue
		}
		key, c := e.evalPropertyKey(ec, p)
		if IsAbrupt(c) {
			return c
		}
		seen[key] = true
		objC := ToObject(ec.Realm, value)
		if IsAbrupt(objC) {
			return objC
		}
		vC := objC.Value.AsObject().Get(key, value)
		if IsAbrupt(vC) {
			return vC
		}
		target := p.Value
		v := vC.Value
		if asn, ok := p.Value.(*ast.AssignmentExpression); ok {
			target = asn.Left.(ast.Expression)
			if v.IsUndefined() {
				defC := e.refToValue(ec, e.Eval(ec, asn.Right))
				if IsAbrupt(defC) {
					return defC
				}
				v = defC.Value
			}
		}
		if c := e.destructuringAssignment(ec, target, v); IsAbrupt(c) {
			return c
		}
	}
	return NormalCompletion(Undefined())
}
