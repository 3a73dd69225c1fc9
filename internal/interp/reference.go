package interp

// ReferenceBase discriminates what a Reference resolves against: an
// environment record (for identifier references), a value coerced to
// property lookup (for member references), or unresolvable (a free
// identifier that wasn't found anywhere in the environment chain).
type ReferenceBase uint8

const (
	ReferenceUnresolvable ReferenceBase = iota
	ReferenceEnvironment
	ReferenceProperty
)

// Reference is the Reference Record of spec.md §4.1: the intermediate
// result of evaluating an identifier or member expression, not yet
// dereferenced to a value. GetValue/PutValue/DeleteBinding close the
// abstraction; private references additionally carry a PrivateName
// field resolved from the active PrivateEnvironment instead of Name.
type Reference struct {
	Base        ReferenceBase
	Env         *Environment
	BaseValue   Value
	Name        PropertyKey
	Strict      bool
	ThisValue   *Value // non-nil only for super property references
	PrivateName *PrivateName
}

func (r *Reference) IsPropertyReference() bool  { return r.Base == ReferenceProperty }
func (r *Reference) IsUnresolvableReference() bool { return r.Base == ReferenceUnresolvable }
func (r *Reference) IsSuperReference() bool     { return r.ThisValue != nil }
func (r *Reference) IsPrivateReference() bool   { return r.PrivateName != nil }

// GetValue implements GetValue(V) (spec.md §4.1).
func (r *Reference) GetValue(realm *Realm) Completion {
	if r.IsUnresolvableReference() {
		return ThrowCompletion(realm.NewReferenceError(r.Name.String() + " is not defined"))
	}
	if r.Base == ReferenceEnvironment {
		return r.Env.GetBindingValue(realm, r.Name.String(), r.Strict)
	}
	// Property reference.
	baseValue := r.BaseValue
	if r.IsPrivateReference() {
		if !baseValue.IsObject() {
			return ThrowCompletion(realm.NewTypeError("cannot read private member of non-object"))
		}
		return PrivateGet(realm, baseValue.AsObject(), r.PrivateName)
	}
	receiver := baseValue
	if r.ThisValue != nil {
		receiver = *r.ThisValue
	}
	objC := ToObject(realm, baseValue)
	if IsAbrupt(objC) {
		return objC
	}
	return objC.Value.AsObject().Get(r.Name, receiver)
}

// PutValue implements PutValue(V, W) (spec.md §4.1).
func (r *Reference) PutValue(realm *Realm, w Value) Completion {
	if r.IsUnresolvableReference() {
		if r.Strict {
			return ThrowCompletion(realm.NewReferenceError(r.Name.String() + " is not defined"))
		}
		realm.GlobalObject.Set(r.Name, w, ObjectValue(realm.GlobalObject))
		return NormalCompletion(Undefined())
	}
	if r.Base == ReferenceEnvironment {
		return r.Env.SetMutableBinding(realm, r.Name.String(), w, r.Strict)
	}
	baseValue := r.BaseValue
	if r.IsPrivateReference() {
		if !baseValue.IsObject() {
			return ThrowCompletion(realm.NewTypeError("cannot write private member of non-object"))
		}
		return PrivateSet(realm, baseValue.AsObject(), r.PrivateName, w)
	}
	receiver := baseValue
	if r.ThisValue != nil {
		receiver = *r.ThisValue
	}
	objC := ToObject(realm, baseValue)
	if IsAbrupt(objC) {
		return objC
	}
	setC := objC.Value.AsObject().Set(r.Name, w, receiver)
	if IsAbrupt(setC) {
		return setC
	}
	if !setC.Value.AsBoolean() && r.Strict {
		return ThrowCompletion(realm.NewTypeError("Cannot assign to read only property '" + r.Name.String() + "'"))
	}
	return NormalCompletion(Undefined())
}

// InitializeReferencedBinding implements InitializeReferencedBinding(V, W)
// — used for let/const declarator initialization and destructuring,
// where the binding exists but is still uninitialized (TDZ).
func (r *Reference) InitializeReferencedBinding(realm *Realm, w Value) Completion {
	return r.Env.InitializeBinding(realm, r.Name.String(), w)
}

// DeleteReference implements the `delete` operator's reference case.
func (r *Reference) DeleteReference() bool {
	if r.IsUnresolvableReference() {
		return true
	}
	if r.Base == ReferenceEnvironment {
		return r.Env.DeleteBinding(r.Name.String())
	}
	if !r.BaseValue.IsObject() {
		return true
	}
	return r.BaseValue.AsObject().Delete(r.Name)
}
