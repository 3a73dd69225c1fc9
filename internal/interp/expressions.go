package interp

import (
	"math"
	"math/big"
	"strings"

	"github.com/funvibe/ecmacore/internal/ast"
)

func (e *Evaluator) evalLiteral(n *ast.Literal) Completion {
	switch n.Kind {
	case "null":
		return NormalCompletion(Null())
	case "boolean":
		return NormalCompletion(Bool(n.Value.(bool)))
	case "number":
		return NormalCompletion(Number(n.Value.(float64)))
	case "string":
		return NormalCompletion(String(n.Value.(string)))
	case "regexp":
		return NormalCompletion(String(n.Raw))
	default:
		return NormalCompletion(Undefined())
	}
}

// evalIdentifierReference implements ResolveBinding(name): walk the
// lexical environment chain, producing an environment Reference (bound
// or unresolvable), without dereferencing it (spec.md §4.1 — callers
// that want the value call GetValue explicitly via refToValue).
func (e *Evaluator) evalIdentifierReference(ec *ExecutionContext, n *ast.Identifier) Completion {
	strict := true
	env := ec.LexicalEnvironment
	for env != nil {
		hasC := env.HasBinding(ec.Realm, n.Name)
		if IsAbrupt(hasC) {
			return hasC
		}
		if hasC.Value.AsBoolean() {
			return NormalCompletion(ReferenceValue(&Reference{
				Base: ReferenceEnvironment, Env: env, Name: StringKey(n.Name), Strict: strict,
			}))
		}
		env = env.Outer
	}
	return NormalCompletion(ReferenceValue(&Reference{Base: ReferenceUnresolvable, Name: StringKey(n.Name), Strict: strict}))
}

func (e *Evaluator) evalTemplateLiteral(ec *ExecutionContext, n *ast.TemplateLiteral) Completion {
	var b strings.Builder
	for i, el := range n.Quasis {
		b.WriteString(el.Cooked)
		if i < len(n.Expressions) {
			c := e.refToValue(ec, e.Eval(ec, n.Expressions[i]))
			if IsAbrupt(c) {
				return c
			}
			sC := ToString(c.Value)
			if IsAbrupt(sC) {
				return sC
			}
			b.WriteString(sC.Value.AsString())
		}
	}
	return NormalCompletion(String(b.String()))
}

func (e *Evaluator) evalArrayExpression(ec *ExecutionContext, n *ast.ArrayExpression) Completion {
	arr := ArrayCreate(ec.Realm, 0)
	idx := uint32(0)
	for _, el := range n.Elements {
		if el == nil {
			idx++
			continue
		}
		if spread, ok := el.(*ast.SpreadElement); ok {
			iterC := e.refToValue(ec, e.Eval(ec, spread.Argument))
			if IsAbrupt(iterC) {
				return iterC
			}
			values, c := IterableToList(ec.Realm, iterC.Value)
			if IsAbrupt(c) {
				return c
			}
			for _, v := range values {
				arr.CreateDataProperty(StringKey(uintToStr(idx)), v)
				idx++
			}
			continue
		}
		valC := e.refToValue(ec, e.Eval(ec, el))
		if IsAbrupt(valC) {
			return valC
		}
		arr.CreateDataProperty(StringKey(uintToStr(idx)), valC.Value)
		idx++
	}
	arr.Set(StringKey("length"), Number(float64(idx)), ObjectValue(arr))
	return NormalCompletion(ObjectValue(arr))
}

func (e *Evaluator) evalObjectExpression(ec *ExecutionContext, n *ast.ObjectExpression) Completion {
	obj := OrdinaryObjectCreate(ec.Realm.Intrinsic("%Object.prototype%"))
	obj.Realm = ec.Realm
	for _, prop := range n.Properties {
		switch p := prop.(type) {
		case *ast.SpreadElement:
			srcC := e.refToValue(ec, e.Eval(ec, p.Argument))
			if IsAbrupt(srcC) {
				return srcC
			}
			if copyC := CopyDataProperties(obj, srcC.Value); IsAbrupt(copyC) {
				return copyC
			}
		case *ast.Property:
			key, c := e.evalPropertyKey(ec, p)
			if IsAbrupt(c) {
				return c
			}
			if p.Kind == "get" || p.Kind == "set" {
				fnC := e.evalFunctionExpression(ec, p.Value.(*ast.FunctionExpression))
				if IsAbrupt(fnC) {
					return fnC
				}
				fn := fnC.Value.AsObject()
				existing := obj.GetOwnProperty(key)
				desc := &PropertyDescriptor{Enumerable: boolPtr(true), Configurable: boolPtr(true)}
				if existing != nil && existing.IsAccessorDescriptor() {
					desc.Get, desc.Set = existing.Get, existing.Set
				}
				if p.Kind == "get" {
					desc.Get = valuePtr(ObjectValue(fn))
				} else {
					desc.Set = valuePtr(ObjectValue(fn))
				}
				obj.DefineOwnProperty(key, desc)
				continue
			}
			valC := e.refToValue(ec, e.Eval(ec, p.Value))
			if IsAbrupt(valC) {
				return valC
			}
			obj.CreateDataProperty(key, valC.Value)
		}
	}
	return NormalCompletion(ObjectValue(obj))
}

func (e *Evaluator) evalPropertyKey(ec *ExecutionContext, p *ast.Property) (PropertyKey, Completion) {
	if p.Computed {
		c := e.refToValue(ec, e.Eval(ec, p.Key.(ast.Expression)))
		if IsAbrupt(c) {
			return PropertyKey{}, c
		}
		keyC := ToPropertyKey(c.Value)
		return keyC.Value.toPropertyKeyValue(), keyC
	}
	switch k := p.Key.(type) {
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

// evalMemberExpressionRef implements Evaluation of a MemberExpression,
// producing a property Reference without dereferencing it.
func (e *Evaluator) evalMemberExpressionRef(ec *ExecutionContext, n *ast.MemberExpression) Completion {
	if _, isSuper := n.Object.(*ast.Super); isSuper {
		return e.evalSuperPropertyRef(ec, n)
	}
	baseC := e.refToValue(ec, e.Eval(ec, n.Object))
	if IsAbrupt(baseC) {
		return baseC
	}
	if n.Optional && baseC.Value.IsNullish() {
		return NormalCompletion(ReferenceValue(&Reference{Base: ReferenceUnresolvable}))
	}
	key, c := e.evalMemberKey(ec, n)
	if IsAbrupt(c) {
		return c
	}
	if privName, ok := key.privateName(); ok {
		return NormalCompletion(ReferenceValue(&Reference{Base: ReferenceProperty, BaseValue: baseC.Value, PrivateName: privName}))
	}
	return NormalCompletion(ReferenceValue(&Reference{Base: ReferenceProperty, BaseValue: baseC.Value, Name: key.key}))
}

type memberKey struct {
	key  PropertyKey
	priv *PrivateName
}

func (m memberKey) privateName() (*PrivateName, bool) { return m.priv, m.priv != nil }

func (e *Evaluator) evalMemberKey(ec *ExecutionContext, n *ast.MemberExpression) (memberKey, Completion) {
	if priv, ok := n.Property.(*ast.PrivateIdentifier); ok {
		pn, found := e.resolvePrivateName(ec, priv.Name)
		if !found {
			return memberKey{}, ThrowCompletion(ec.Realm.NewSyntaxError("Private field '#" + priv.Name + "' must be declared in an enclosing class"))
		}
		return memberKey{priv: pn}, NormalCompletion(Undefined())
	}
	if n.Computed {
		c := e.refToValue(ec, e.Eval(ec, n.Property.(ast.Expression)))
		if IsAbrupt(c) {
			return memberKey{}, c
		}
		keyC := ToPropertyKey(c.Value)
		if IsAbrupt(keyC) {
			return memberKey{}, keyC
		}
		return memberKey{key: keyC.Value.toPropertyKeyValue()}, NormalCompletion(Undefined())
	}
	return memberKey{key: StringKey(n.Property.(*ast.Identifier).Name)}, NormalCompletion(Undefined())
}

func (e *Evaluator) resolvePrivateName(ec *ExecutionContext, name string) (*PrivateName, bool) {
	return ec.PrivateEnvironment.Resolve(name)
}

func (e *Evaluator) evalSuperPropertyRef(ec *ExecutionContext, n *ast.MemberExpression) Completion {
	env := ec.LexicalEnvironment
	for env != nil && !env.HasSuperBinding() {
		env = env.Outer
	}
	if env == nil {
		assertNever("super property outside a method with a home object")
	}
	thisC := ec.LexicalEnvironment.GetThisBinding(ec.Realm)
	if IsAbrupt(thisC) {
		return thisC
	}
	home := env.HomeObject
	key, c := e.evalMemberKey(ec, n)
	if IsAbrupt(c) {
		return c
	}
	proto := home.GetPrototypeOf()
	return NormalCompletion(ReferenceValue(&Reference{
		Base: ReferenceProperty, BaseValue: ObjectValue(proto), Name: key.key, ThisValue: &thisC.Value,
	}))
}

func (e *Evaluator) evalChainExpression(ec *ExecutionContext, n *ast.ChainExpression) Completion {
	c := e.Eval(ec, n.Expression)
	if IsAbrupt(c) {
		return c
	}
	if ref, ok := c.Value.refHolder(); ok {
		if ref.IsUnresolvableReference() && ref.Env == nil && ref.Name.String() == "" && ref.BaseValue.IsUndefined() {
			return NormalCompletion(Undefined())
		}
		return ref.GetValue(ec.Realm)
	}
	return c
}

func (e *Evaluator) evalCallExpression(ec *ExecutionContext, n *ast.CallExpression) Completion {
	if _, isSuper := n.Callee.(*ast.Super); isSuper {
		return e.evalSuperCall(ec, n)
	}
	refC := e.Eval(ec, n.Callee)
	if IsAbrupt(refC) {
		return refC
	}
	var thisValue Value
	var fn Value
	if ref, ok := refC.Value.refHolder(); ok {
		if n.Optional && ref.IsUnresolvableReference() {
			return NormalCompletion(ReferenceValue(&Reference{Base: ReferenceUnresolvable}))
		}
		fnC := ref.GetValue(ec.Realm)
		if IsAbrupt(fnC) {
			return fnC
		}
		fn = fnC.Value
		if ref.IsPropertyReference() {
			if ref.ThisValue != nil {
				thisValue = *ref.ThisValue
			} else {
				thisValue = ref.BaseValue
			}
		} else {
			thisValue = Undefined()
		}
	} else {
		fn = refC.Value
		thisValue = Undefined()
	}
	if n.Optional && fn.IsNullish() {
		return NormalCompletion(ReferenceValue(&Reference{Base: ReferenceUnresolvable}))
	}
	args, c := e.evalArguments(ec, n.Arguments)
	if IsAbrupt(c) {
		return c
	}
	if !fn.IsCallable() {
		return ThrowCompletion(ec.Realm.NewTypeError(calleeDescription(n.Callee) + " is not a function"))
	}
	return fn.AsObject().Call(thisValue, args)
}

func calleeDescription(callee ast.Expression) string {
	if m, ok := callee.(*ast.MemberExpression); ok {
		if id, ok := m.Property.(*ast.Identifier); ok && !m.Computed {
			return id.Name
		}
	}
	if id, ok := callee.(*ast.Identifier); ok {
		return id.Name
	}
	return "value"
}

func (e *Evaluator) evalSuperCall(ec *ExecutionContext, n *ast.CallExpression) Completion {
	fnEnv := ec.LexicalEnvironment
	for fnEnv != nil && fnEnv.Kind != EnvFunction {
		fnEnv = fnEnv.Outer
	}
	superCtor := fnEnv.FunctionObject.GetPrototypeOf()
	if superCtor == nil || superCtor.Construct == nil {
		return ThrowCompletion(ec.Realm.NewTypeError("Super constructor null of this is not a constructor"))
	}
	args, c := e.evalArguments(ec, n.Arguments)
	if IsAbrupt(c) {
		return c
	}
	resultC := superCtor.Construct(args, fnEnv.NewTarget)
	if IsAbrupt(resultC) {
		return resultC
	}
	fnEnv.BindThisValue(resultC.Value)
	if initC := InitializeInstanceElements(ec.Realm, resultC.Value.AsObject(), fnEnv.FunctionObject); IsAbrupt(initC) {
		return initC
	}
	return NormalCompletion(resultC.Value)
}

func (e *Evaluator) evalArguments(ec *ExecutionContext, args []ast.Expression) ([]Value, Completion) {
	out := make([]Value, 0, len(args))
	for _, a := range args {
		if spread, ok := a.(*ast.SpreadElement); ok {
			c := e.refToValue(ec, e.Eval(ec, spread.Argument))
			if IsAbrupt(c) {
				return nil, c
			}
			values, lc := IterableToList(ec.Realm, c.Value)
			if IsAbrupt(lc) {
				return nil, lc
			}
			out = append(out, values...)
			continue
		}
		c := e.refToValue(ec, e.Eval(ec, a))
		if IsAbrupt(c) {
			return nil, c
		}
		out = append(out, c.Value)
	}
	return out, NormalCompletion(Undefined())
}

func (e *Evaluator) evalNewExpression(ec *ExecutionContext, n *ast.NewExpression) Completion {
	ctorC := e.refToValue(ec, e.Eval(ec, n.Callee))
	if IsAbrupt(ctorC) {
		return ctorC
	}
	if !ctorC.Value.IsConstructor() {
		return ThrowCompletion(ec.Realm.NewTypeError(calleeDescription(n.Callee) + " is not a constructor"))
	}
	args, c := e.evalArguments(ec, n.Arguments)
	if IsAbrupt(c) {
		return c
	}
	return ctorC.Value.AsObject().Construct(args, ctorC.Value.AsObject())
}

func (e *Evaluator) evalUnaryExpression(ec *ExecutionContext, n *ast.UnaryExpression) Completion {
	if n.Operator == "typeof" {
		refC := e.Eval(ec, n.Argument)
		if ref, ok := refC.Value.refHolder(); ok {
			if ref.IsUnresolvableReference() {
				return NormalCompletion(String("undefined"))
			}
		}
		valC := e.refToValue(ec, refC)
		if IsAbrupt(valC) {
			return valC
		}
		return NormalCompletion(String(valC.Value.TypeOf()))
	}
	if n.Operator == "delete" {
		refC := e.Eval(ec, n.Argument)
		if IsAbrupt(refC) {
			return refC
		}
		if ref, ok := refC.Value.refHolder(); ok {
			return NormalCompletion(Bool(ref.DeleteReference()))
		}
		return NormalCompletion(Bool(true))
	}
	c := e.refToValue(ec, e.Eval(ec, n.Argument))
	if IsAbrupt(c) {
		return c
	}
	v := c.Value
	switch n.Operator {
	case "void":
		return NormalCompletion(Undefined())
	case "!":
		return NormalCompletion(Bool(!ToBoolean(v)))
	case "-":
		if v.IsBigInt() {
			return NormalCompletion(BigIntValue(new(big.Int).Neg(v.AsBigInt())))
		}
		numC := ToNumber(v)
		if IsAbrupt(numC) {
			return numC
		}
		return NormalCompletion(Number(-numC.Value.AsNumber()))
	case "+":
		return ToNumber(v)
	case "~":
		if v.IsBigInt() {
			return NormalCompletion(BigIntValue(new(big.Int).Not(v.AsBigInt())))
		}
		u32, u32C := ToUint32(v)
		if IsAbrupt(u32C) {
			return u32C
		}
		return NormalCompletion(Number(float64(int32(^u32))))
	}
	assertNever("evalUnaryExpression: unknown operator " + n.Operator)
	return Completion{}
}

func (e *Evaluator) evalUpdateExpression(ec *ExecutionContext, n *ast.UpdateExpression) Completion {
	refC := e.Eval(ec, n.Argument)
	if IsAbrupt(refC) {
		return refC
	}
	ref, ok := refC.Value.refHolder()
	if !ok {
		assertNever("UpdateExpression target did not produce a Reference")
	}
	oldC := ref.GetValue(ec.Realm)
	if IsAbrupt(oldC) {
		return oldC
	}
	numC := ToNumber(oldC.Value)
	if IsAbrupt(numC) {
		return numC
	}
	oldValue := numC.Value.AsNumber()
	newValue := oldValue + 1
	if n.Operator == "--" {
		newValue = oldValue - 1
	}
	newVal := Number(newValue)
	if putC := ref.PutValue(ec.Realm, newVal); IsAbrupt(putC) {
		return putC
	}
	if n.Prefix {
		return NormalCompletion(newVal)
	}
	return NormalCompletion(Number(oldValue))
}

func (e *Evaluator) evalLogicalExpression(ec *ExecutionContext, n *ast.LogicalExpression) Completion {
	leftC := e.refToValue(ec, e.Eval(ec, n.Left))
	if IsAbrupt(leftC) {
		return leftC
	}
	switch n.Operator {
	case "&&":
		if !ToBoolean(leftC.Value) {
			return leftC
		}
	case "||":
		if ToBoolean(leftC.Value) {
			return leftC
		}
	case "??":
		if !leftC.Value.IsNullish() {
			return leftC
		}
	}
	return e.refToValue(ec, e.Eval(ec, n.Right))
}

func (e *Evaluator) evalConditionalExpression(ec *ExecutionContext, n *ast.ConditionalExpression) Completion {
	testC := e.refToValue(ec, e.Eval(ec, n.Test))
	if IsAbrupt(testC) {
		return testC
	}
	if ToBoolean(testC.Value) {
		return e.refToValue(ec, e.Eval(ec, n.Consequent))
	}
	return e.refToValue(ec, e.Eval(ec, n.Alternate))
}

func (e *Evaluator) evalSequenceExpression(ec *ExecutionContext, n *ast.SequenceExpression) Completion {
	var last Completion
	for _, expr := range n.Expressions {
		last = e.refToValue(ec, e.Eval(ec, expr))
		if IsAbrupt(last) {
			return last
		}
	}
	return last
}

func (e *Evaluator) evalYieldExpression(ec *ExecutionContext, n *ast.YieldExpression) Completion {
	var argVal Value = Undefined()
	if n.Argument != nil {
		c := e.refToValue(ec, e.Eval(ec, n.Argument))
		if IsAbrupt(c) {
			return c
		}
		argVal = c.Value
	}
	if ec.Generator == nil {
		assertNever("yield used outside a generator body")
	}
	if n.Delegate {
		return e.yieldDelegate(ec, argVal)
	}
	return ec.Generator.Yield(argVal)
}

func uintToStr(u uint32) string {
	if u == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	return string(buf[i:])
}

func isFiniteNumber(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
