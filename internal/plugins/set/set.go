// Package set wires the Set constructor and Set.prototype, backed by
// an insertion-ordered Go slice (SameValueZero membership per spec).
package set

import "github.com/funvibe/ecmacore/internal/interp"

const ID = "set"

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (*Plugin) ID() string             { return ID }
func (*Plugin) Dependencies() []string { return []string{"object", "iterator"} }

type setData struct {
	values []interp.Value
}

func (d *setData) has(v interp.Value) bool {
	for _, e := range d.values {
		if interp.SameValueZero(e, v) {
			return true
		}
	}
	return false
}

func (d *setData) add(v interp.Value) {
	if !d.has(v) {
		d.values = append(d.values, v)
	}
}

func (d *setData) delete(v interp.Value) bool {
	for i, e := range d.values {
		if interp.SameValueZero(e, v) {
			d.values = append(d.values[:i], d.values[i+1:]...)
			return true
		}
	}
	return false
}

func (*Plugin) CreateIntrinsics(realm *interp.Realm, staged *interp.StagedGlobals) error {
	objectProto := realm.Intrinsic("%Object.prototype%")
	iterProto := realm.Intrinsic("%IteratorPrototype%")

	setIterProto := interp.OrdinaryObjectCreate(iterProto)
	setIterProto.Realm = realm
	realm.SetIntrinsic("%SetIteratorPrototype%", setIterProto)

	proto := interp.OrdinaryObjectCreate(objectProto)
	proto.Realm = realm
	realm.SetIntrinsic("%Set.prototype%", proto)

	proto.CreateMethodProperty(interp.StringKey("add"), interp.ObjectValue(interp.NativeFunction(realm, "add", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		d, c := thisSetData(realm, this)
		if interp.IsAbrupt(c) {
			return c
		}
		d.add(arg(args, 0))
		return interp.NormalCompletion(this)
	})))
	proto.CreateMethodProperty(interp.StringKey("has"), interp.ObjectValue(interp.NativeFunction(realm, "has", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		d, c := thisSetData(realm, this)
		if interp.IsAbrupt(c) {
			return c
		}
		return interp.NormalCompletion(interp.Bool(d.has(arg(args, 0))))
	})))
	proto.CreateMethodProperty(interp.StringKey("delete"), interp.ObjectValue(interp.NativeFunction(realm, "delete", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		d, c := thisSetData(realm, this)
		if interp.IsAbrupt(c) {
			return c
		}
		return interp.NormalCompletion(interp.Bool(d.delete(arg(args, 0))))
	})))
	proto.CreateMethodProperty(interp.StringKey("clear"), interp.ObjectValue(interp.NativeFunction(realm, "clear", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		d, c := thisSetData(realm, this)
		if interp.IsAbrupt(c) {
			return c
		}
		d.values = nil
		return interp.NormalCompletion(interp.Undefined())
	})))
	proto.CreateMethodProperty(interp.StringKey("forEach"), interp.ObjectValue(interp.NativeFunction(realm, "forEach", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		d, c := thisSetData(realm, this)
		if interp.IsAbrupt(c) {
			return c
		}
		callback := arg(args, 0)
		if !callback.IsCallable() {
			return interp.ThrowCompletion(realm.NewTypeError("Set.prototype.forEach callback must be callable"))
		}
		thisArg := arg(args, 1)
		for _, v := range append([]interp.Value{}, d.values...) {
			rC := callback.AsObject().Call(thisArg, []interp.Value{v, v, this})
			if interp.IsAbrupt(rC) {
				return rC
			}
		}
		return interp.NormalCompletion(interp.Undefined())
	})))

	sizeGetter := interp.NativeFunction(realm, "get size", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		d, c := thisSetData(realm, this)
		if interp.IsAbrupt(c) {
			return c
		}
		return interp.NormalCompletion(interp.Number(float64(len(d.values))))
	})
	proto.DefineOwnProperty(interp.StringKey("size"), &interp.PropertyDescriptor{
		Get: ptr(interp.ObjectValue(sizeGetter)), Configurable: boolPtr(true),
	})

	valuesFn := interp.NativeFunction(realm, "values", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		return setValues(realm, this)
	})
	proto.CreateMethodProperty(interp.StringKey("values"), interp.ObjectValue(valuesFn))
	proto.CreateMethodProperty(interp.StringKey("keys"), interp.ObjectValue(valuesFn))
	proto.CreateMethodProperty(interp.SymbolKey(realm.WellKnownSymbol("iterator")), interp.ObjectValue(valuesFn))

	ctor := interp.NativeConstructor(realm, "Set", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		return interp.ThrowCompletion(realm.NewTypeError("Constructor Set requires 'new'"))
	}, func(args []interp.Value, newTarget *interp.Object) interp.Completion {
		o := interp.OrdinaryObjectCreate(proto)
		o.Realm = realm
		d := &setData{}
		o.SetSlot("setData", d)
		if len(args) > 0 && !args[0].IsNullish() {
			list, c := interp.IterableToList(realm, args[0])
			if interp.IsAbrupt(c) {
				return c
			}
			for _, v := range list {
				d.add(v)
			}
		}
		return interp.NormalCompletion(interp.ObjectValue(o))
	})
	ctor.DefineOwnProperty(interp.StringKey("prototype"), &interp.PropertyDescriptor{
		Value: ptr(interp.ObjectValue(proto)), Writable: boolPtr(false), Configurable: boolPtr(false),
	})
	proto.CreateMethodProperty(interp.StringKey("constructor"), interp.ObjectValue(ctor))
	realm.SetIntrinsic("%Set%", ctor)
	staged.Stage("Set", interp.ObjectValue(ctor))
	return nil
}

func setValues(realm *interp.Realm, this interp.Value) interp.Completion {
	d, c := thisSetData(realm, this)
	if interp.IsAbrupt(c) {
		return c
	}
	idx := 0
	iter := interp.OrdinaryObjectCreate(realm.Intrinsic("%SetIteratorPrototype%"))
	iter.Realm = realm
	iter.CreateMethodProperty(interp.StringKey("next"), interp.ObjectValue(interp.NativeFunction(realm, "next", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		if idx >= len(d.values) {
			return interp.NormalCompletion(interp.CreateIteratorResultObject(realm, interp.Undefined(), true))
		}
		v := d.values[idx]
		idx++
		return interp.NormalCompletion(interp.CreateIteratorResultObject(realm, v, false))
	})))
	return interp.NormalCompletion(interp.ObjectValue(iter))
}

func thisSetData(realm *interp.Realm, v interp.Value) (*setData, interp.Completion) {
	if v.IsObject() {
		if slot, ok := v.AsObject().GetSlot("setData"); ok {
			return slot.(*setData), interp.Completion{}
		}
	}
	return nil, interp.ThrowCompletion(realm.NewTypeError("not a Set"))
}

func arg(args []interp.Value, i int) interp.Value {
	if i < len(args) {
		return args[i]
	}
	return interp.Undefined()
}

func ptr(v interp.Value) *interp.Value { return &v }
func boolPtr(b bool) *bool             { return &b }
