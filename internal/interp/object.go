package interp

import (
	"sort"
	"strconv"
)

// ExoticKind tags the handful of internal-method deviations this core
// implements. Internal methods not named here (GetPrototypeOf,
// SetPrototypeOf, IsExtensible, PreventExtensions, GetOwnProperty,
// HasProperty, Get, Set, Delete, OwnPropertyKeys) are ordinary for every
// kind in this core; only Array overrides DefineOwnProperty, and bound
// functions only override Call/Construct (handled in function.go, not
// here). Proxy and typed arrays are out of scope (spec.md §1).
type ExoticKind uint8

const (
	ExoticOrdinary ExoticKind = iota
	ExoticArray
	ExoticArguments
)

// PrivateElement is a field, method, or accessor installed by a private
// name (§4.6).
type PrivateElement struct {
	Kind string // "field", "method", "accessor"
	Value Value  // for "field" and "method"
	Get   *Value // for "accessor"
	Set   *Value // for "accessor"
}

// Object is the ordinary object representation: a Prototype slot, an
// Extensible flag, an ordered own-property map, a private-element map,
// and a variadic slot bag for the internal slots an exotic or built-in
// object requires.
type Object struct {
	Exotic     ExoticKind
	Prototype  *Object
	extensible bool

	props       map[PropertyKey]*PropertyDescriptor
	arrayKeys   []uint32 // kept sorted ascending
	stringKeys  []string // insertion order
	symbolKeys  []*Symbol // insertion order

	Private map[*PrivateName]*PrivateElement

	slots map[string]interface{}

	// Call/Construct are non-nil only for callable/constructor objects;
	// set by the function and plugin machinery.
	Call      func(this Value, args []Value) Completion
	Construct func(args []Value, newTarget *Object) Completion

	Realm *Realm
}

// OrdinaryObjectCreate fixes the slot set and initial prototype of a
// freshly allocated object (spec.md §3 "Lifecycle").
func OrdinaryObjectCreate(proto *Object) *Object {
	o := &Object{
		Prototype:  proto,
		extensible: true,
		props:      make(map[PropertyKey]*PropertyDescriptor),
		slots:      make(map[string]interface{}),
	}
	if proto != nil {
		o.Realm = proto.Realm
	}
	return o
}

func (o *Object) GetSlot(name string) (interface{}, bool) {
	v, ok := o.slots[name]
	return v, ok
}

func (o *Object) SetSlot(name string, v interface{}) {
	o.slots[name] = v
}

// ---- array-index helpers ----

// MaxArrayIndex is 2^32 - 2, the largest valid array index.
const MaxArrayIndex = 1<<32 - 2

// canonicalArrayIndex returns (index, true) if s is a string whose
// canonical uint32 round-trip equals s and whose value is < 2^32 - 1
// (spec.md GLOSSARY "Array index").
func canonicalArrayIndex(s string) (uint32, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	if n > MaxArrayIndex {
		return 0, false
	}
	if strconv.FormatUint(n, 10) != s {
		return 0, false
	}
	return uint32(n), true
}

// installProperty inserts or overwrites the property at key p, updating
// the ordering metadata. It does not perform validation — callers must
// have already run ValidateAndApplyPropertyDescriptor's checks.
func (o *Object) installProperty(p PropertyKey, desc *PropertyDescriptor) {
	_, existed := o.props[p]
	o.props[p] = desc
	if existed {
		return
	}
	if p.IsSymbol() {
		o.symbolKeys = append(o.symbolKeys, p.Symbol())
		return
	}
	if idx, ok := canonicalArrayIndex(p.String()); ok {
		i := sort.Search(len(o.arrayKeys), func(i int) bool { return o.arrayKeys[i] >= idx })
		o.arrayKeys = append(o.arrayKeys, 0)
		copy(o.arrayKeys[i+1:], o.arrayKeys[i:])
		o.arrayKeys[i] = idx
		return
	}
	o.stringKeys = append(o.stringKeys, p.String())
}

func (o *Object) removeProperty(p PropertyKey) {
	delete(o.props, p)
	if p.IsSymbol() {
		for i, s := range o.symbolKeys {
			if s == p.Symbol() {
				o.symbolKeys = append(o.symbolKeys[:i], o.symbolKeys[i+1:]...)
				break
			}
		}
		return
	}
	if idx, ok := canonicalArrayIndex(p.String()); ok {
		for i, k := range o.arrayKeys {
			if k == idx {
				o.arrayKeys = append(o.arrayKeys[:i], o.arrayKeys[i+1:]...)
				break
			}
		}
		return
	}
	for i, s := range o.stringKeys {
		if s == p.String() {
			o.stringKeys = append(o.stringKeys[:i], o.stringKeys[i+1:]...)
			break
		}
	}
}

// ---- ordinary internal methods ----

func (o *Object) GetPrototypeOf() *Object { return o.Prototype }

// SetPrototypeOf implements OrdinarySetPrototypeOf, rejecting cycles
// (spec.md §8 property 2).
func (o *Object) SetPrototypeOf(proto *Object) bool {
	if samePrototypeValue(proto, o.Prototype) {
		return true
	}
	if !o.extensible {
		return false
	}
	p := proto
	for p != nil {
		if p == o {
			return false
		}
		if p.Exotic != ExoticOrdinary && p.Exotic != ExoticArray && p.Exotic != ExoticArguments {
			break
		}
		p = p.Prototype
	}
	o.Prototype = proto
	return true
}

func samePrototypeValue(a, b *Object) bool { return a == b }

func (o *Object) IsExtensible() bool { return o.extensible }

func (o *Object) PreventExtensions() bool {
	o.extensible = false
	return true
}

// GetOwnProperty returns a copy of the own-property descriptor at p, or
// nil if absent.
func (o *Object) GetOwnProperty(p PropertyKey) *PropertyDescriptor {
	d, ok := o.props[p]
	if !ok {
		return nil
	}
	cp := *d
	return &cp
}

// DefineOwnProperty dispatches to the Array exotic algorithm for array
// exotic objects (which may throw a RangeError for an invalid "length"),
// else the ordinary algorithm (which never throws).
func (o *Object) DefineOwnProperty(p PropertyKey, desc *PropertyDescriptor) Completion {
	if o.Exotic == ExoticArray {
		return arraySetDefineOwnProperty(o, p, desc)
	}
	return NormalCompletion(Bool(o.ordinaryDefineOwnProperty(p, desc)))
}

func (o *Object) ordinaryDefineOwnProperty(p PropertyKey, desc *PropertyDescriptor) bool {
	current := o.GetOwnProperty(p)
	return ValidateAndApplyPropertyDescriptor(o, p, o.extensible, desc, current)
}

// HasProperty walks the prototype chain.
func (o *Object) HasProperty(p PropertyKey) bool {
	if _, ok := o.props[p]; ok {
		return true
	}
	if o.Prototype != nil {
		return o.Prototype.HasProperty(p)
	}
	return false
}

// Get implements OrdinaryGet: walk the prototype chain; invoke the
// getter (with receiver as this) if the found property is an accessor.
func (o *Object) Get(p PropertyKey, receiver Value) Completion {
	desc := o.GetOwnProperty(p)
	if desc == nil {
		if o.Prototype == nil {
			return NormalCompletion(Undefined())
		}
		return o.Prototype.Get(p, receiver)
	}
	if desc.IsDataDescriptor() {
		return NormalCompletion(*desc.Value)
	}
	if desc.Get == nil || desc.Get.IsUndefined() {
		return NormalCompletion(Undefined())
	}
	return desc.Get.AsObject().Call(receiver, nil)
}

// Set implements OrdinarySet's four cases (spec.md §4.2).
func (o *Object) Set(p PropertyKey, v Value, receiver Value) Completion {
	ownDesc := o.GetOwnProperty(p)
	if ownDesc == nil {
		if o.Prototype != nil {
			return o.Prototype.Set(p, v, receiver)
		}
		ownDesc = DataDescriptor(Undefined(), true, true, true)
	}
	if ownDesc.IsDataDescriptor() {
		if !boolOr(ownDesc.Writable, false) {
			return NormalCompletion(Bool(false))
		}
		if !receiver.IsObject() {
			return NormalCompletion(Bool(false))
		}
		receiverObj := receiver.AsObject()
		existingDesc := receiverObj.GetOwnProperty(p)
		if existingDesc != nil {
			if existingDesc.IsAccessorDescriptor() {
				return NormalCompletion(Bool(false))
			}
			if !boolOr(existingDesc.Writable, false) {
				return NormalCompletion(Bool(false))
			}
			valueDesc := &PropertyDescriptor{Value: valuePtr(v)}
			return receiverObj.DefineOwnProperty(p, valueDesc)
		}
		return NormalCompletion(Bool(receiverObj.CreateDataProperty(p, v)))
	}
	// Accessor.
	if ownDesc.Set == nil || ownDesc.Set.IsUndefined() {
		return NormalCompletion(Bool(false))
	}
	result := ownDesc.Set.AsObject().Call(receiver, []Value{v})
	if IsAbrupt(result) {
		return result
	}
	return NormalCompletion(Bool(true))
}

func (o *Object) Delete(p PropertyKey) bool {
	desc := o.GetOwnProperty(p)
	if desc == nil {
		return true
	}
	if boolOr(desc.Configurable, false) {
		o.removeProperty(p)
		return true
	}
	return false
}

// OwnPropertyKeys returns keys in the spec-mandated order: ascending
// array indices, then string keys in insertion order, then symbol keys
// in insertion order.
func (o *Object) OwnPropertyKeys() []PropertyKey {
	out := make([]PropertyKey, 0, len(o.props))
	for _, idx := range o.arrayKeys {
		out = append(out, StringKey(strconv.FormatUint(uint64(idx), 10)))
	}
	for _, s := range o.stringKeys {
		out = append(out, StringKey(s))
	}
	for _, s := range o.symbolKeys {
		out = append(out, SymbolKey(s))
	}
	return out
}

// boolResult collapses a DefineOwnProperty completion to a plain bool.
// Safe wherever the key/desc pair can never reach ArraySetLength's
// RangeError path (i.e. the key isn't "length" on an array exotic
// object with a non-canonical numeric value).
func boolResult(c Completion) bool {
	return !IsAbrupt(c) && c.Value.AsBoolean()
}

// CreateDataProperty is CreateDataProperty(O, P, V): define a new,
// writable/enumerable/configurable own property, or fail if it cannot be
// created (not extensible, or an existing non-configurable property).
func (o *Object) CreateDataProperty(p PropertyKey, v Value) bool {
	return boolResult(o.DefineOwnProperty(p, DataDescriptor(v, true, true, true)))
}

// CreateDataPropertyOrThrow mirrors the spec helper; the bool result
// tells the caller whether to synthesize a TypeError.
func (o *Object) CreateDataPropertyOrThrow(p PropertyKey, v Value) bool {
	return o.CreateDataProperty(p, v)
}

// CreateMethodProperty installs a non-enumerable, writable, configurable
// data property — the shape used for built-in and class methods.
func (o *Object) CreateMethodProperty(p PropertyKey, v Value) bool {
	return boolResult(o.DefineOwnProperty(p, DataDescriptor(v, true, false, true)))
}

// CopyDataProperties implements the object-spread abstract operation:
// copy every enumerable own property of source onto target (spec.md
// §4.7 object literal evaluation).
func CopyDataProperties(target *Object, source Value) Completion {
	if source.IsNullish() {
		return NormalCompletion(Undefined())
	}
	objC := ToObject(target.Realm, source)
	if IsAbrupt(objC) {
		return objC
	}
	src := objC.Value.AsObject()
	for _, key := range src.OwnPropertyKeys() {
		desc := src.GetOwnProperty(key)
		if desc == nil || !boolOr(desc.Enumerable, false) {
			continue
		}
		valC := src.Get(key, ObjectValue(src))
		if IsAbrupt(valC) {
			return valC
		}
		target.CreateDataProperty(key, valC.Value)
	}
	return NormalCompletion(Undefined())
}

// DefinePropertyOrThrow installs desc and returns the completion so
// Object.defineProperty can surface an ArraySetLength RangeError.
func (o *Object) DefinePropertyOrThrow(p PropertyKey, desc *PropertyDescriptor) Completion {
	return o.DefineOwnProperty(p, desc)
}
