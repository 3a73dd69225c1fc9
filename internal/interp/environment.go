package interp

// ThisBindingStatus is a function environment's three-state `this`
// lifecycle (spec.md §4.4).
type ThisBindingStatus uint8

const (
	ThisLexical ThisBindingStatus = iota
	ThisInitialized
	ThisUninitialized
)

type binding struct {
	value       Value
	initialized bool
	mutable     bool
	deletable   bool
	strict      bool
}

// EnvKind discriminates the Environment variant (spec.md §3).
type EnvKind uint8

const (
	EnvDeclarative EnvKind = iota
	EnvFunction
	EnvObject
	EnvGlobal
	EnvModule
)

// Environment implements the declarative/function/object/global/module
// environment record variants behind one type, since they share the
// bulk of their operations and the spec describes function/global as
// declarative-plus-extra-state.
type Environment struct {
	Kind  EnvKind
	Outer *Environment

	// Declarative (and function/global's declarative half).
	bindings map[string]*binding

	// Object environment: binding object and with-environment flag.
	BindingObject  *Object
	IsWithEnv      bool

	// Function environment.
	ThisValue      Value
	ThisStatus     ThisBindingStatus
	FunctionObject *Object
	HomeObject     *Object
	NewTarget      *Object

	// Global environment: composes an object environment over the
	// global object with this declarative environment for lexical
	// declarations, plus the set of var-declared names.
	ObjectRecord   *Environment // nil except for EnvGlobal
	DeclRecord     *Environment // nil except for EnvGlobal
	VarNames       map[string]bool

	// Module environment: import-binding indirection, name -> (env, localName).
	importBindings map[string]importIndirection
}

type importIndirection struct {
	env   *Environment
	local string
}

func NewDeclarativeEnvironment(outer *Environment) *Environment {
	return &Environment{Kind: EnvDeclarative, Outer: outer, bindings: make(map[string]*binding)}
}

func NewObjectEnvironment(bindingObject *Object, withEnv bool, outer *Environment) *Environment {
	return &Environment{Kind: EnvObject, Outer: outer, BindingObject: bindingObject, IsWithEnv: withEnv}
}

func NewFunctionEnvironment(fn *Object, newTarget *Object) *Environment {
	return &Environment{
		Kind:           EnvFunction,
		bindings:       make(map[string]*binding),
		FunctionObject: fn,
		NewTarget:      newTarget,
		ThisStatus:     ThisUninitialized,
	}
}

func NewGlobalEnvironment(globalObject *Object) *Environment {
	objRec := NewObjectEnvironment(globalObject, false, nil)
	declRec := NewDeclarativeEnvironment(nil)
	return &Environment{
		Kind:         EnvGlobal,
		ObjectRecord: objRec,
		DeclRecord:   declRec,
		VarNames:     make(map[string]bool),
		ThisValue:    ObjectValue(globalObject),
		ThisStatus:   ThisInitialized,
	}
}

func NewModuleEnvironment(outer *Environment) *Environment {
	return &Environment{
		Kind:           EnvModule,
		Outer:          outer,
		bindings:       make(map[string]*binding),
		importBindings: make(map[string]importIndirection),
		ThisStatus:     ThisInitialized,
		ThisValue:      Undefined(),
	}
}

// HasBinding implements HasBinding(N) for every variant.
func (e *Environment) HasBinding(realm *Realm, name string) Completion {
	switch e.Kind {
	case EnvGlobal:
		if _, ok := e.DeclRecord.bindings[name]; ok {
			return NormalCompletion(Bool(true))
		}
		return e.ObjectRecord.HasBinding(realm, name)
	case EnvObject:
		hasProp := e.BindingObject.HasProperty(StringKey(name))
		if !hasProp {
			return NormalCompletion(Bool(false))
		}
		if e.IsWithEnv {
			unscopables := e.BindingObject.Get(SymbolKey(realm.WellKnownSymbol("unscopables")), ObjectValue(e.BindingObject))
			if IsAbrupt(unscopables) {
				return unscopables
			}
			if unscopables.Value.IsObject() {
				blocked := unscopables.Value.AsObject().Get(StringKey(name), unscopables.Value)
				if IsAbrupt(blocked) {
					return blocked
				}
				if ToBoolean(blocked.Value) {
					return NormalCompletion(Bool(false))
				}
			}
		}
		return NormalCompletion(Bool(true))
	default:
		_, ok := e.bindings[name]
		return NormalCompletion(Bool(ok))
	}
}

func (e *Environment) CreateMutableBinding(name string, deletable bool) {
	if e.Kind == EnvObject {
		e.BindingObject.DefineOwnProperty(StringKey(name), DataDescriptor(Undefined(), true, true, deletable))
		return
	}
	e.bindings[name] = &binding{mutable: true, deletable: deletable}
}

// CreateImmutableBinding stores the strictness for use by
// SetMutableBinding: a non-strict assignment to a const in sloppy mode
// silently no-ops rather than erroring (spec.md §4.4).
func (e *Environment) CreateImmutableBinding(name string, strict bool) {
	e.bindings[name] = &binding{mutable: false, strict: strict}
}

// globalRecordFor returns the half of a global environment holding name:
// the declarative record for lexical declarations, else the object record.
func (e *Environment) globalRecordFor(name string) *Environment {
	if _, ok := e.DeclRecord.bindings[name]; ok {
		return e.DeclRecord
	}
	return e.ObjectRecord
}

func (e *Environment) InitializeBinding(realm *Realm, name string, v Value) Completion {
	if e.Kind == EnvGlobal {
		return e.globalRecordFor(name).InitializeBinding(realm, name, v)
	}
	if e.Kind == EnvObject {
		return NormalCompletion(Bool(e.BindingObject.CreateDataProperty(StringKey(name), v)))
	}
	b, ok := e.bindings[name]
	if !ok {
		assertNever("InitializeBinding: no such binding " + name)
	}
	b.value = v
	b.initialized = true
	return NormalCompletion(Undefined())
}

func (e *Environment) SetMutableBinding(realm *Realm, name string, v Value, strict bool) Completion {
	if e.Kind == EnvGlobal {
		return e.globalRecordFor(name).SetMutableBinding(realm, name, v, strict)
	}
	if e.Kind == EnvObject {
		hasC := e.BindingObject.HasProperty(StringKey(name))
		if !hasC && strict {
			return ThrowCompletion(realm.NewReferenceError(name + " is not defined"))
		}
		setC := e.BindingObject.Set(StringKey(name), v, ObjectValue(e.BindingObject))
		if IsAbrupt(setC) {
			return setC
		}
		if !setC.Value.AsBoolean() && strict {
			return ThrowCompletion(realm.NewTypeError("Cannot assign to read only property '" + name + "'"))
		}
		return NormalCompletion(Undefined())
	}
	b, ok := e.bindings[name]
	if !ok {
		if strict {
			return ThrowCompletion(realm.NewReferenceError(name + " is not defined"))
		}
		e.CreateMutableBinding(name, true)
		return e.InitializeBinding(realm, name, v)
	}
	if !b.initialized {
		return ThrowCompletion(realm.NewReferenceError("Cannot access '" + name + "' before initialization"))
	}
	if !b.mutable {
		if v.kind != KindUndefined || true {
			if strict || b.strict {
				return ThrowCompletion(realm.NewTypeError("Assignment to constant variable."))
			}
		}
		// Sloppy assignment to a const: value never changes.
		return NormalCompletion(Undefined())
	}
	b.value = v
	return NormalCompletion(Undefined())
}

func (e *Environment) GetBindingValue(realm *Realm, name string, strict bool) Completion {
	if e.Kind == EnvGlobal {
		return e.globalRecordFor(name).GetBindingValue(realm, name, strict)
	}
	if e.Kind == EnvObject {
		hasC := e.BindingObject.HasProperty(StringKey(name))
		if !hasC {
			if strict {
				return ThrowCompletion(realm.NewReferenceError(name + " is not defined"))
			}
			return NormalCompletion(Undefined())
		}
		return e.BindingObject.Get(StringKey(name), ObjectValue(e.BindingObject))
	}
	b, ok := e.bindings[name]
	if !ok {
		assertNever("GetBindingValue: no such binding " + name)
	}
	if !b.initialized {
		return ThrowCompletion(realm.NewReferenceError("Cannot access '" + name + "' before initialization"))
	}
	return NormalCompletion(b.value)
}

func (e *Environment) DeleteBinding(name string) bool {
	if e.Kind == EnvObject {
		return e.BindingObject.Delete(StringKey(name))
	}
	b, ok := e.bindings[name]
	if !ok {
		return true
	}
	if !b.deletable {
		return false
	}
	delete(e.bindings, name)
	return true
}

func (e *Environment) HasThisBinding() bool {
	switch e.Kind {
	case EnvFunction:
		return e.ThisStatus != ThisLexical
	case EnvGlobal, EnvModule:
		return true
	default:
		return false
	}
}

func (e *Environment) HasSuperBinding() bool {
	return e.Kind == EnvFunction && e.ThisStatus != ThisLexical && e.HomeObject != nil
}

// GetThisBinding implements GetThisBinding, throwing ReferenceError for
// a derived constructor's `this` read before super() (spec.md §4.4).
func (e *Environment) GetThisBinding(realm *Realm) Completion {
	switch e.Kind {
	case EnvFunction:
		if e.ThisStatus == ThisUninitialized {
			return ThrowCompletion(realm.NewReferenceError("Must call super constructor in derived class before accessing 'this' or returning from derived constructor"))
		}
		return NormalCompletion(e.ThisValue)
	default:
		return NormalCompletion(e.ThisValue)
	}
}

// BindThisValue transitions an uninitialized function environment's this
// binding to initialized exactly once (spec.md §4.4).
func (e *Environment) BindThisValue(this Value) {
	if e.ThisStatus == ThisInitialized {
		assertNever("BindThisValue: this already initialized")
	}
	e.ThisValue = this
	e.ThisStatus = ThisInitialized
}

func (e *Environment) WithBaseObject() *Object {
	if e.Kind == EnvObject && e.IsWithEnv {
		return e.BindingObject
	}
	return nil
}

// GetVarScope walks outward to the nearest var-scoping (function or
// global) environment — used by FunctionDeclarationInstantiation and by
// `var`-hoisting statement evaluation.
func (e *Environment) GetVarScope() *Environment {
	cur := e
	for cur != nil {
		if cur.Kind == EnvFunction || cur.Kind == EnvGlobal || cur.Kind == EnvModule {
			return cur
		}
		cur = cur.Outer
	}
	return nil
}

// ---- Global environment extras ----

func (e *Environment) HasVarDeclaration(name string) bool { return e.VarNames[name] }

func (e *Environment) HasLexicalDeclaration(name string) bool {
	_, ok := e.DeclRecord.bindings[name]
	return ok
}

func (e *Environment) CreateGlobalVarBinding(name string, deletable bool) Completion {
	hasProp := e.ObjectRecord.BindingObject.HasProperty(StringKey(name))
	if !hasProp && e.ObjectRecord.BindingObject.extensible {
		e.ObjectRecord.CreateMutableBinding(name, deletable)
		e.ObjectRecord.InitializeBinding(nil, name, Undefined())
	}
	e.VarNames[name] = true
	return NormalCompletion(Undefined())
}

func (e *Environment) CreateGlobalFunctionBinding(name string, v Value, deletable bool) Completion {
	existing := e.ObjectRecord.BindingObject.GetOwnProperty(StringKey(name))
	var desc *PropertyDescriptor
	if existing == nil || boolOr(existing.Configurable, false) {
		desc = DataDescriptor(v, true, true, deletable)
	} else {
		desc = &PropertyDescriptor{Value: valuePtr(v)}
	}
	c := e.ObjectRecord.BindingObject.DefineOwnProperty(StringKey(name), desc)
	if IsAbrupt(c) {
		return c
	}
	e.ObjectRecord.BindingObject.Set(StringKey(name), v, ObjectValue(e.ObjectRecord.BindingObject))
	e.VarNames[name] = true
	return NormalCompletion(Undefined())
}
