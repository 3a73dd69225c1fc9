package interp

import "github.com/funvibe/ecmacore/internal/ast"

// FunctionKind discriminates the shape of an ordinary function object's
// [[Call]]/[[Construct]] behavior (spec.md §4.5).
type FunctionKind uint8

const (
	FunctionNormal FunctionKind = iota
	FunctionGenerator
	FunctionClassConstructorBase
	FunctionClassConstructorDerived
	FunctionArrow
	FunctionMethod
)

// functionData is the internal-slot bundle an ordinary function object
// carries, stashed in Object.slots under "functionData" (spec.md §4.5:
// [[Environment]], [[FormalParameters]], [[ECMAScriptCode]],
// [[Strict]], [[HomeObject]], [[ConstructorKind]], [[Fields]],
// [[PrivateMethods]]). [[ThisMode]] lives in its own "thisMode" slot.
type functionData struct {
	Kind           FunctionKind
	Name           string
	Params         []ast.Pattern
	Body           ast.Node // *ast.BlockStatement, or an Expression for concise arrows
	Closure        *Environment
	HomeObject     *Object
	Strict         bool
	PrivateEnv     *PrivateEnvironment
	Fields         []instanceFieldInit
	PrivateMethods []privateMethodInit
	BaseClass      *Object // non-nil only for derived class constructors
}

func funcData(o *Object) *functionData {
	d, _ := o.GetSlot("functionData")
	if d == nil {
		return nil
	}
	return d.(*functionData)
}

// OrdinaryFunctionCreate implements OrdinaryFunctionCreate (spec.md
// §4.5): allocates a function object with %Function.prototype% (or the
// caller's chosen prototype), wires [[Call]] (and [[Construct]] for
// FunctionNormal and class-constructor kinds only), and stashes
// closure state.
func (e *Evaluator) OrdinaryFunctionCreate(realm *Realm, proto *Object, params []ast.Pattern, body ast.Node, kind FunctionKind, scope *Environment, strict bool, privEnv *PrivateEnvironment) *Object {
	if proto == nil {
		proto = realm.Intrinsic("%Function.prototype%")
	}
	f := OrdinaryObjectCreate(proto)
	f.Realm = realm
	data := &functionData{Kind: kind, Params: params, Body: body, Closure: scope, Strict: strict, PrivateEnv: privEnv}
	f.SetSlot("functionData", data)

	thisMode := "global"
	if kind == FunctionArrow {
		thisMode = "lexical"
	} else if strict {
		thisMode = "strict"
	}
	f.SetSlot("thisMode", thisMode)

	f.Call = func(this Value, args []Value) Completion {
		return e.callOrdinaryFunction(f, this, args, nil)
	}
	if kind == FunctionNormal || kind == FunctionClassConstructorBase || kind == FunctionClassConstructorDerived {
		f.Construct = func(args []Value, newTarget *Object) Completion {
			return e.constructOrdinaryFunction(f, args, newTarget)
		}
	}
	length := countExpectedArgs(params)
	f.DefineOwnProperty(StringKey("length"), &PropertyDescriptor{Value: valuePtr(Number(float64(length))), Configurable: boolPtr(true)})
	f.DefineOwnProperty(StringKey("name"), &PropertyDescriptor{Value: valuePtr(String("")), Configurable: boolPtr(true)})
	return f
}

func countExpectedArgs(params []ast.Pattern) int {
	n := 0
	for _, p := range params {
		switch p.(type) {
		case *ast.RestElement, *ast.AssignmentPattern:
			return n
		}
		n++
	}
	return n
}

// SetFunctionName implements SetFunctionName(F, name) for the common
// string-name case used by NamedEvaluation call sites.
func SetFunctionName(f *Object, name string, prefix string) {
	if prefix != "" {
		name = prefix + " " + name
	}
	f.DefineOwnProperty(StringKey("name"), &PropertyDescriptor{Value: valuePtr(String(name)), Configurable: boolPtr(true)})
}

// MakeConstructor implements MakeConstructor(F): install a fresh
// "prototype" own property (writable only when writablePrototype is
// true) pointing back to F via "constructor" (spec.md §4.5).
func MakeConstructor(realm *Realm, f *Object, writablePrototype bool, protoParent *Object) {
	if protoParent == nil {
		protoParent = realm.Intrinsic("%Object.prototype%")
	}
	proto := OrdinaryObjectCreate(protoParent)
	proto.Realm = realm
	proto.CreateMethodProperty(StringKey("constructor"), ObjectValue(f))
	f.DefineOwnProperty(StringKey("prototype"), &PropertyDescriptor{
		Value: valuePtr(ObjectValue(proto)), Writable: boolPtr(writablePrototype), Configurable: boolPtr(false),
	})
}

// PrepareForOrdinaryCall pushes a fresh function execution context:
// a new function environment (lexical == variable initially) chained
// to the closure, with the private environment the function was
// created in (spec.md §4.5).
func (e *Evaluator) prepareForOrdinaryCall(f *Object, newTarget *Object) *ExecutionContext {
	data := funcData(f)
	env := NewFunctionEnvironment(f, newTarget)
	env.Outer = data.Closure
	env.HomeObject = data.HomeObject
	return &ExecutionContext{
		Realm:               f.Realm,
		LexicalEnvironment:  env,
		VariableEnvironment: env,
		PrivateEnvironment:  data.PrivateEnv,
		Function:            f,
	}
}

// OrdinaryCallBindThis implements OrdinaryCallBindThis: for non-lexical
// functions, coerces `this` per strict/sloppy mode and binds it
// immediately (spec.md §4.5) — except for derived-class constructors,
// whose `this` stays uninitialized until super() runs.
func (e *Evaluator) ordinaryCallBindThis(f *Object, ec *ExecutionContext, thisArg Value) {
	data := funcData(f)
	if data.Kind == FunctionArrow {
		return
	}
	if data.Kind == FunctionClassConstructorDerived {
		return
	}
	thisMode, _ := f.GetSlot("thisMode")
	var thisValue Value
	switch thisMode {
	case "strict":
		thisValue = thisArg
	default:
		if thisArg.IsNullish() {
			thisValue = ObjectValue(ec.Realm.GlobalObject)
		} else {
			objC := ToObject(ec.Realm, thisArg)
			thisValue = objC.Value
		}
	}
	ec.LexicalEnvironment.BindThisValue(thisValue)
}

func (e *Evaluator) callOrdinaryFunction(f *Object, thisArg Value, args []Value, newTarget *Object) Completion {
	data := funcData(f)
	if data.Kind == FunctionClassConstructorBase || data.Kind == FunctionClassConstructorDerived {
		if newTarget == nil {
			return ThrowCompletion(f.Realm.NewTypeError("Class constructor cannot be invoked without 'new'"))
		}
	}
	ec := e.prepareForOrdinaryCall(f, newTarget)
	e.ordinaryCallBindThis(f, ec, thisArg)

	if c := e.functionDeclarationInstantiation(ec, f, args); IsAbrupt(c) {
		return c
	}

	if data.Kind == FunctionGenerator {
		return e.startGeneratorCall(f, ec)
	}

	result := e.evalFunctionBody(ec, data.Body)
	if IsAbrupt(result) {
		if result.Type == CompletionThrow {
			return result
		}
	}
	if result.Type == CompletionReturn {
		return NormalCompletion(result.Value)
	}
	return NormalCompletion(Undefined())
}

// evalFunctionBody evaluates either a block body or, for concise arrow
// functions, a single expression whose value is the implicit return.
func (e *Evaluator) evalFunctionBody(ec *ExecutionContext, body ast.Node) Completion {
	if expr, ok := body.(ast.Expression); ok {
		c := e.refToValue(ec, e.Eval(ec, expr))
		if IsAbrupt(c) {
			return c
		}
		return Completion{Type: CompletionReturn, Value: c.Value}
	}
	block := body.(*ast.BlockStatement)
	return e.evalStatementList(ec, block.Body)
}

func (e *Evaluator) startGeneratorCall(f *Object, ec *ExecutionContext) Completion {
	gen := NewGeneratorState()
	ec.Generator = gen
	data := funcData(f)
	gen.Start(func() Completion {
		return e.evalFunctionBody(ec, data.Body)
	})
	genObj := OrdinaryObjectCreate(f.Realm.Intrinsic("%GeneratorPrototype%"))
	genObj.Realm = f.Realm
	genObj.SetSlot("generatorState", gen)
	installGeneratorMethods(genObj)
	return NormalCompletion(ObjectValue(genObj))
}

func installGeneratorMethods(genObj *Object) {
	realm := genObj.Realm
	genObj.CreateMethodProperty(StringKey("next"), ObjectValue(nativeFunction(realm, "next", 1, func(this Value, args []Value) Completion {
		state, _ := this.AsObject().GetSlot("generatorState")
		g := state.(*GeneratorState)
		v, done, c := g.Next(argOrUndefined(args, 0))
		if IsAbrupt(c) {
			return c
		}
		return NormalCompletion(CreateIteratorResultObject(realm, v, done))
	})))
	genObj.CreateMethodProperty(StringKey("throw"), ObjectValue(nativeFunction(realm, "throw", 1, func(this Value, args []Value) Completion {
		state, _ := this.AsObject().GetSlot("generatorState")
		g := state.(*GeneratorState)
		v, done, c := g.Throw(argOrUndefined(args, 0))
		if IsAbrupt(c) {
			return c
		}
		return NormalCompletion(CreateIteratorResultObject(realm, v, done))
	})))
	genObj.CreateMethodProperty(StringKey("return"), ObjectValue(nativeFunction(realm, "return", 1, func(this Value, args []Value) Completion {
		state, _ := this.AsObject().GetSlot("generatorState")
		g := state.(*GeneratorState)
		v, done, c := g.Return(argOrUndefined(args, 0))
		if IsAbrupt(c) {
			return c
		}
		return NormalCompletion(CreateIteratorResultObject(realm, v, done))
	})))
	genObj.CreateMethodProperty(SymbolKey(realm.WellKnownSymbol("iterator")), ObjectValue(nativeFunction(realm, "[Symbol.iterator]", 0, func(this Value, args []Value) Completion {
		return NormalCompletion(this)
	})))
}

func argOrUndefined(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined()
}

// NativeFunction is nativeFunction's exported form, used by the
// internal/plugins packages to install built-in methods.
func NativeFunction(realm *Realm, name string, length int, fn func(this Value, args []Value) Completion) *Object {
	return nativeFunction(realm, name, length, fn)
}

// nativeFunction builds a built-in (non-ordinary) callable object:
// wired directly to a Go closure, with no [[Environment]]/[[ECMAScriptCode]]
// internal slots — the shape every plugin in internal/plugins uses for
// its methods (spec.md §6).
func nativeFunction(realm *Realm, name string, length int, fn func(this Value, args []Value) Completion) *Object {
	o := OrdinaryObjectCreate(realm.Intrinsic("%Function.prototype%"))
	o.Realm = realm
	o.Call = fn
	o.DefineOwnProperty(StringKey("length"), &PropertyDescriptor{Value: valuePtr(Number(float64(length))), Configurable: boolPtr(true)})
	o.DefineOwnProperty(StringKey("name"), &PropertyDescriptor{Value: valuePtr(String(name)), Configurable: boolPtr(true)})
	return o
}

// NativeConstructor additionally wires [[Construct]] — used by the
// Object/Array/Boolean/Set built-in constructors.
func NativeConstructor(realm *Realm, name string, length int, call func(this Value, args []Value) Completion, construct func(args []Value, newTarget *Object) Completion) *Object {
	o := nativeFunction(realm, name, length, call)
	o.Construct = construct
	return o
}

// constructOrdinaryFunction implements [[Construct]] for ordinary
// functions/classes (spec.md §4.5): base constructors (and plain
// functions used with `new`) allocate `this` via OrdinaryCreateFromConstructor
// before the body runs; derived constructors leave `this` uninitialized
// until the body's super() call binds it.
func (e *Evaluator) constructOrdinaryFunction(f *Object, args []Value, newTarget *Object) Completion {
	data := funcData(f)
	kind := data.Kind

	var thisArg Value
	if kind != FunctionClassConstructorDerived {
		protoC := newTarget.Get(StringKey("prototype"), ObjectValue(newTarget))
		if IsAbrupt(protoC) {
			return protoC
		}
		proto := f.Realm.Intrinsic("%Object.prototype%")
		if protoC.Value.IsObject() {
			proto = protoC.Value.AsObject()
		}
		obj := OrdinaryObjectCreate(proto)
		obj.Realm = f.Realm
		thisArg = ObjectValue(obj)
	}

	ec := e.prepareForOrdinaryCall(f, newTarget)
	if kind != FunctionClassConstructorDerived {
		ec.LexicalEnvironment.BindThisValue(thisArg)
		if c := InitializeInstanceElements(f.Realm, thisArg.AsObject(), f); IsAbrupt(c) {
			return c
		}
	}

	if c := e.functionDeclarationInstantiation(ec, f, args); IsAbrupt(c) {
		return c
	}

	result := e.evalFunctionBody(ec, data.Body)
	if IsAbrupt(result) && result.Type == CompletionThrow {
		return result
	}
	if result.Type == CompletionReturn {
		if result.Value.IsObject() {
			return NormalCompletion(result.Value)
		}
		if kind == FunctionClassConstructorDerived && !result.Value.IsUndefined() {
			return ThrowCompletion(f.Realm.NewTypeError("Derived constructor may only return object or undefined"))
		}
	}
	return ec.LexicalEnvironment.GetThisBinding(f.Realm)
}

// ---- bound function exotic object (spec.md §4.5) ----

// BoundFunctionCreate implements Function.prototype.bind's underlying
// BoundFunctionCreate: [[Call]] prepends [[BoundArguments]] and
// substitutes [[BoundThis]]; [[Construct]] (when targetFunction is
// itself a constructor) forwards to the target, ignoring [[BoundThis]]
// (the `new` operator always supplies its own `this`).
func BoundFunctionCreate(realm *Realm, target *Object, boundThis Value, boundArgs []Value) *Object {
	proto := target.GetPrototypeOf()
	bound := OrdinaryObjectCreate(proto)
	bound.Realm = realm
	bound.SetSlot("boundTargetFunction", target)
	bound.Call = func(this Value, args []Value) Completion {
		return target.Call(boundThis, append(append([]Value{}, boundArgs...), args...))
	}
	if target.Construct != nil {
		bound.Construct = func(args []Value, newTarget *Object) Completion {
			nt := newTarget
			if nt == bound {
				nt = target
			}
			return target.Construct(append(append([]Value{}, boundArgs...), args...), nt)
		}
	}
	lengthC := target.Get(StringKey("length"), ObjectValue(target))
	length := 0.0
	if !IsAbrupt(lengthC) && lengthC.Value.IsNumber() {
		length = lengthC.Value.AsNumber() - float64(len(boundArgs))
		if length < 0 {
			length = 0
		}
	}
	bound.DefineOwnProperty(StringKey("length"), &PropertyDescriptor{Value: valuePtr(Number(length)), Configurable: boolPtr(true)})
	nameC := target.Get(StringKey("name"), ObjectValue(target))
	name := "bound "
	if !IsAbrupt(nameC) && nameC.Value.IsString() {
		name += nameC.Value.AsString()
	}
	bound.DefineOwnProperty(StringKey("name"), &PropertyDescriptor{Value: valuePtr(String(name)), Configurable: boolPtr(true)})
	return bound
}

// ---- FunctionDeclarationInstantiation (spec.md §4.5) ----

// functionDeclarationInstantiation binds parameters, `arguments`, and
// hoisted var/function declarations into the call's environment before
// its body runs.
func (e *Evaluator) functionDeclarationInstantiation(ec *ExecutionContext, f *Object, args []Value) Completion {
	data := funcData(f)
	env := ec.VariableEnvironment

	for _, p := range data.Params {
		names := boundNames(p)
		for _, n := range names {
			if _, ok := env.bindings[n]; !ok {
				env.CreateMutableBinding(n, false)
			}
		}
	}

	if data.Kind != FunctionArrow {
		argumentsObj := createUnmappedArgumentsObject(ec.Realm, args)
		env.CreateMutableBinding("arguments", false)
		env.InitializeBinding(ec.Realm, "arguments", argumentsObj)
	}

	i := 0
	for _, p := range data.Params {
		var v Value
		if rest, ok := p.(*ast.RestElement); ok {
			restArr := ArrayCreate(ec.Realm, 0)
			idx := uint32(0)
			for ; i < len(args); i++ {
				restArr.CreateDataProperty(StringKey(uintToStr(idx)), args[i])
				idx++
			}
			if c := e.bindingInitialization(ec, rest.Argument, ObjectValue(restArr), env); IsAbrupt(c) {
				return c
			}
			continue
		}
		if i < len(args) {
			v = args[i]
		} else {
			v = Undefined()
		}
		i++
		if c := e.bindingInitialization(ec, p, v, env); IsAbrupt(c) {
			return c
		}
	}

	if block, ok := data.Body.(*ast.BlockStatement); ok {
		if c := e.hoistVarDeclarations(ec, block.Body, env); IsAbrupt(c) {
			return c
		}
		if c := e.hoistFunctionDeclarations(ec, block.Body, env); IsAbrupt(c) {
			return c
		}
	}
	return NormalCompletion(Undefined())
}

func createUnmappedArgumentsObject(realm *Realm, args []Value) Value {
	o := OrdinaryObjectCreate(realm.Intrinsic("%Object.prototype%"))
	o.Realm = realm
	o.Exotic = ExoticArguments
	for i, v := range args {
		o.CreateDataProperty(StringKey(uintToStr(uint32(i))), v)
	}
	o.CreateDataPropertyOrThrow(StringKey("length"), Number(float64(len(args))))
	o.DefineOwnProperty(SymbolKey(realm.WellKnownSymbol("iterator")), DataDescriptor(realm.Intrinsic("%Array.prototype%").GetOwnProperty(SymbolKey(realm.WellKnownSymbol("iterator"))).mustValue(), true, false, true))
	return ObjectValue(o)
}

func (d *PropertyDescriptor) mustValue() Value {
	if d == nil || d.Value == nil {
		return Undefined()
	}
	return *d.Value
}
