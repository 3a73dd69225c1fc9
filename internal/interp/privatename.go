package interp

import "github.com/google/uuid"

// PrivateName is the identity token behind a `#name` declared in a
// class — distinct from an equally-named name in a different class
// (GLOSSARY "Private name").
type PrivateName struct {
	id          uuid.UUID
	Description string
}

func NewPrivateName(description string) *PrivateName {
	return &PrivateName{id: uuid.New(), Description: description}
}

// PrivateGet implements PrivateGet(O, P): dispatch on the element kind.
func PrivateGet(realm *Realm, o *Object, name *PrivateName) Completion {
	el, ok := o.Private[name]
	if !ok {
		return ThrowCompletion(realm.NewTypeError("Cannot read private member #" + name.Description + " from an object whose class did not declare it"))
	}
	switch el.Kind {
	case "accessor":
		if el.Get == nil {
			return ThrowCompletion(realm.NewTypeError("#" + name.Description + " was defined without a getter"))
		}
		return el.Get.AsObject().Call(ObjectValue(o), nil)
	default:
		return NormalCompletion(el.Value)
	}
}

// PrivateSet implements PrivateSet(O, P, value).
func PrivateSet(realm *Realm, o *Object, name *PrivateName, value Value) Completion {
	el, ok := o.Private[name]
	if !ok {
		return ThrowCompletion(realm.NewTypeError("Cannot write private member #" + name.Description + " to an object whose class did not declare it"))
	}
	switch el.Kind {
	case "method":
		return ThrowCompletion(realm.NewTypeError("Private method #" + name.Description + " is not writable"))
	case "accessor":
		if el.Set == nil {
			return ThrowCompletion(realm.NewTypeError("#" + name.Description + " was defined without a setter"))
		}
		return el.Set.AsObject().Call(ObjectValue(o), []Value{value})
	default:
		el.Value = value
		return NormalCompletion(Undefined())
	}
}

// PrivateFieldAdd installs a private field at object-creation time;
// re-declaration (the object already has this private name) is a
// SyntaxError-class failure caught at class-definition time, not here —
// here it is an internal-invariant violation.
func PrivateFieldAdd(o *Object, name *PrivateName, value Value) {
	if o.Private == nil {
		o.Private = make(map[*PrivateName]*PrivateElement)
	}
	if _, exists := o.Private[name]; exists {
		assertNever("PrivateFieldAdd: private name already present on object")
	}
	o.Private[name] = &PrivateElement{Kind: "field", Value: value}
}

// PrivateMethodOrAccessorAdd installs a non-field private element.
func PrivateMethodOrAccessorAdd(o *Object, name *PrivateName, el *PrivateElement) {
	if o.Private == nil {
		o.Private = make(map[*PrivateName]*PrivateElement)
	}
	if _, exists := o.Private[name]; exists {
		// Accessor get/set pairs are merged rather than rejected.
		existing := o.Private[name]
		if existing.Kind == "accessor" && el.Kind == "accessor" {
			if el.Get != nil {
				existing.Get = el.Get
			}
			if el.Set != nil {
				existing.Set = el.Set
			}
			return
		}
		assertNever("PrivateMethodOrAccessorAdd: private name already present on object")
	}
	o.Private[name] = el
}

// PrivateElementFind reports whether O has the private element P,
// supporting the `#x in obj` brand check.
func PrivateElementFind(o *Object, name *PrivateName) bool {
	_, ok := o.Private[name]
	return ok
}
