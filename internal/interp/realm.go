package interp

import (
	"fmt"

	"github.com/google/uuid"
)

// ExecutionContext holds the active realm, the lexical/variable/private
// environment chain, the optional script-or-module marker, and (for
// function contexts) the active function (spec.md §3).
type ExecutionContext struct {
	Realm              *Realm
	LexicalEnvironment *Environment
	VariableEnvironment *Environment
	PrivateEnvironment *PrivateEnvironment
	Function           *Object // nil for script/top-level contexts
	ScriptOrModule     string  // filename, empty if none
	Generator          *GeneratorState
}

// PrivateEnvironment maps identifier text to private-name identity,
// chained outward for nested classes (spec.md §3).
type PrivateEnvironment struct {
	Outer *PrivateEnvironment
	Names map[string]*PrivateName
}

func NewPrivateEnvironment(outer *PrivateEnvironment) *PrivateEnvironment {
	return &PrivateEnvironment{Outer: outer, Names: make(map[string]*PrivateName)}
}

// Resolve looks up name through this private environment and its outer
// chain, returning (name, true) or (nil, false).
func (p *PrivateEnvironment) Resolve(name string) (*PrivateName, bool) {
	for e := p; e != nil; e = e.Outer {
		if n, ok := e.Names[name]; ok {
			return n, true
		}
	}
	return nil, false
}

// Realm owns a per-world intrinsics table, global object, global
// environment, and plugin registry (spec.md §3).
type Realm struct {
	id uuid.UUID

	Intrinsics  map[string]*Object
	GlobalObject *Object
	GlobalEnv   *Environment

	wellKnownSymbols map[string]*Symbol

	plugins []Plugin

	// VM backs the execution-context stack; a realm can be driven by at
	// most one VM's active context at a time (spec.md §5 shared-resource
	// policy), but many realms may share a VM.
	vm *VM
}

func (r *Realm) ID() uuid.UUID { return r.id }

// Intrinsic looks up a canonical percent-delimited intrinsic name
// (spec.md §6), e.g. "%Object.prototype%".
func (r *Realm) Intrinsic(name string) *Object {
	return r.Intrinsics[name]
}

func (r *Realm) SetIntrinsic(name string, o *Object) {
	r.Intrinsics[name] = o
}

// WellKnownSymbol returns the realm-scoped well-known symbol for a short
// name such as "iterator", "toPrimitive", "species", "hasInstance",
// "toStringTag", "unscopables", "asyncIterator". Well-known symbols are
// per-realm (spec-accurate: implementations may share one process-wide
// instance, but per-realm keeps cross-realm isolation simple and
// correct per spec.md §5's realm-ownership note) and created lazily.
func (r *Realm) WellKnownSymbol(name string) *Symbol {
	if s, ok := r.wellKnownSymbols[name]; ok {
		return s
	}
	s := NewSymbol("Symbol." + name)
	r.wellKnownSymbols[name] = s
	return s
}

// ---- error construction ----

func (r *Realm) newError(ctorName, message string) Value {
	proto := r.Intrinsic("%" + ctorName + ".prototype%")
	if proto == nil {
		proto = r.Intrinsic("%Error.prototype%")
	}
	o := OrdinaryObjectCreate(proto)
	o.Realm = r
	o.CreateDataProperty(StringKey("message"), String(message))
	o.CreateDataProperty(StringKey("stack"), String(fmt.Sprintf("%s: %s", ctorName, message)))
	return ObjectValue(o)
}

func (r *Realm) NewTypeError(message string) Value      { return r.newError("TypeError", message) }
func (r *Realm) NewRangeError(message string) Value      { return r.newError("RangeError", message) }
func (r *Realm) NewReferenceError(message string) Value  { return r.newError("ReferenceError", message) }
func (r *Realm) NewSyntaxError(message string) Value     { return r.newError("SyntaxError", message) }

// NewRealm allocates an empty realm (no intrinsics populated yet — call
// RegisterPlugins to populate it).
func NewRealm(vm *VM) *Realm {
	r := &Realm{
		id:               uuid.New(),
		Intrinsics:       make(map[string]*Object),
		wellKnownSymbols: make(map[string]*Symbol),
		vm:               vm,
	}
	global := &Object{
		extensible: true,
		props:      make(map[PropertyKey]*PropertyDescriptor),
		slots:      make(map[string]interface{}),
		Realm:      r,
	}
	r.GlobalObject = global
	r.GlobalEnv = NewGlobalEnvironment(global)
	return r
}
