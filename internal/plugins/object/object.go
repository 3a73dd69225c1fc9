// Package object wires the %Object.prototype%/%Function.prototype%
// intrinsics and the Object constructor — the plugin every other
// built-in plugin depends on (spec.md §6 canonical intrinsics).
package object

import (
	"github.com/funvibe/ecmacore/internal/interp"
)

const ID = "object"

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (*Plugin) ID() string             { return ID }
func (*Plugin) Dependencies() []string { return nil }

func (*Plugin) CreateIntrinsics(realm *interp.Realm, staged *interp.StagedGlobals) error {
	objectProto := interp.OrdinaryObjectCreate(nil)
	objectProto.Realm = realm
	realm.SetIntrinsic("%Object.prototype%", objectProto)

	// %Function.prototype% is itself a callable object (spec.md §6) whose
	// own prototype is %Object.prototype%; it must exist before any
	// ordinary function is created, including the constructors below.
	functionProto := interp.OrdinaryObjectCreate(objectProto)
	functionProto.Realm = realm
	functionProto.Call = func(this interp.Value, args []interp.Value) interp.Completion {
		return interp.NormalCompletion(interp.Undefined())
	}
	realm.SetIntrinsic("%Function.prototype%", functionProto)

	installObjectPrototypeMethods(realm, objectProto)

	errorProto := interp.OrdinaryObjectCreate(objectProto)
	errorProto.Realm = realm
	errorProto.CreateDataProperty(interp.StringKey("name"), interp.String("Error"))
	errorProto.CreateDataProperty(interp.StringKey("message"), interp.String(""))
	installErrorToString(realm, errorProto)
	realm.SetIntrinsic("%Error.prototype%", errorProto)

	for _, name := range []string{"TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError", "URIError"} {
		proto := interp.OrdinaryObjectCreate(errorProto)
		proto.Realm = realm
		proto.CreateDataProperty(interp.StringKey("name"), interp.String(name))
		realm.SetIntrinsic("%"+name+".prototype%", proto)
		ctor := errorConstructor(realm, name, proto)
		realm.SetIntrinsic("%"+name+"%", ctor)
		staged.Stage(name, interp.ObjectValue(ctor))
	}

	errorCtor := errorConstructor(realm, "Error", errorProto)
	realm.SetIntrinsic("%Error%", errorCtor)
	staged.Stage("Error", interp.ObjectValue(errorCtor))

	objectCtor := interp.NativeConstructor(realm, "Object", 1, objectCall(realm, objectProto), objectConstruct(realm, objectProto))
	objectCtor.DefineOwnProperty(interp.StringKey("prototype"), &interp.PropertyDescriptor{
		Value: valuePtr(interp.ObjectValue(objectProto)), Writable: boolPtr(false), Configurable: boolPtr(false),
	})
	objectProto.CreateMethodProperty(interp.StringKey("constructor"), interp.ObjectValue(objectCtor))
	installObjectStatics(realm, objectCtor)
	realm.SetIntrinsic("%Object%", objectCtor)
	staged.Stage("Object", interp.ObjectValue(objectCtor))

	staged.Stage("undefined", interp.Undefined())
	staged.Stage("NaN", interp.Number(nan()))
	staged.Stage("Infinity", interp.Number(inf()))

	return nil
}

func valuePtr(v interp.Value) *interp.Value { return &v }

func objectCall(realm *interp.Realm, proto *interp.Object) func(this interp.Value, args []interp.Value) interp.Completion {
	return func(this interp.Value, args []interp.Value) interp.Completion {
		if len(args) == 0 || args[0].IsNullish() {
			o := interp.OrdinaryObjectCreate(proto)
			o.Realm = realm
			return interp.NormalCompletion(interp.ObjectValue(o))
		}
		return interp.ToObject(realm, args[0])
	}
}

func objectConstruct(realm *interp.Realm, proto *interp.Object) func(args []interp.Value, newTarget *interp.Object) interp.Completion {
	return func(args []interp.Value, newTarget *interp.Object) interp.Completion {
		if len(args) > 0 && args[0].IsObject() {
			return interp.NormalCompletion(args[0])
		}
		o := interp.OrdinaryObjectCreate(proto)
		o.Realm = realm
		return interp.NormalCompletion(interp.ObjectValue(o))
	}
}

func installObjectStatics(realm *interp.Realm, ctor *interp.Object) {
	ctor.CreateMethodProperty(interp.StringKey("keys"), interp.ObjectValue(interp.NativeFunction(realm, "keys", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, arg(args, 0))
		if interp.IsAbrupt(objC) {
			return objC
		}
		o := objC.Value.AsObject()
		arr := interp.ArrayCreate(realm, 0)
		idx := uint32(0)
		for _, k := range o.OwnPropertyKeys() {
			if k.IsSymbol() {
				continue
			}
			desc := o.GetOwnProperty(k)
			if desc == nil || !boolOr(desc.Enumerable) {
				continue
			}
			arr.CreateDataProperty(interp.StringKey(uitoa(idx)), interp.String(k.String()))
			idx++
		}
		return interp.NormalCompletion(interp.ObjectValue(arr))
	})))

	ctor.CreateMethodProperty(interp.StringKey("values"), interp.ObjectValue(interp.NativeFunction(realm, "values", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, arg(args, 0))
		if interp.IsAbrupt(objC) {
			return objC
		}
		o := objC.Value.AsObject()
		arr := interp.ArrayCreate(realm, 0)
		idx := uint32(0)
		for _, k := range o.OwnPropertyKeys() {
			if k.IsSymbol() {
				continue
			}
			desc := o.GetOwnProperty(k)
			if desc == nil || !boolOr(desc.Enumerable) {
				continue
			}
			vC := o.Get(k, interp.ObjectValue(o))
			if interp.IsAbrupt(vC) {
				return vC
			}
			arr.CreateDataProperty(interp.StringKey(uitoa(idx)), vC.Value)
			idx++
		}
		return interp.NormalCompletion(interp.ObjectValue(arr))
	})))

	ctor.CreateMethodProperty(interp.StringKey("entries"), interp.ObjectValue(interp.NativeFunction(realm, "entries", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, arg(args, 0))
		if interp.IsAbrupt(objC) {
			return objC
		}
		o := objC.Value.AsObject()
		arr := interp.ArrayCreate(realm, 0)
		idx := uint32(0)
		for _, k := range o.OwnPropertyKeys() {
			if k.IsSymbol() {
				continue
			}
			desc := o.GetOwnProperty(k)
			if desc == nil || !boolOr(desc.Enumerable) {
				continue
			}
			vC := o.Get(k, interp.ObjectValue(o))
			if interp.IsAbrupt(vC) {
				return vC
			}
			pair := interp.ArrayCreate(realm, 0)
			pair.CreateDataProperty(interp.StringKey("0"), interp.String(k.String()))
			pair.CreateDataProperty(interp.StringKey("1"), vC.Value)
			arr.CreateDataProperty(interp.StringKey(uitoa(idx)), interp.ObjectValue(pair))
			idx++
		}
		return interp.NormalCompletion(interp.ObjectValue(arr))
	})))

	ctor.CreateMethodProperty(interp.StringKey("assign"), interp.ObjectValue(interp.NativeFunction(realm, "assign", 2, func(this interp.Value, args []interp.Value) interp.Completion {
		targetC := interp.ToObject(realm, arg(args, 0))
		if interp.IsAbrupt(targetC) {
			return targetC
		}
		target := targetC.Value.AsObject()
		for _, src := range rest(args, 1) {
			if c := interp.CopyDataProperties(target, src); interp.IsAbrupt(c) {
				return c
			}
		}
		return interp.NormalCompletion(interp.ObjectValue(target))
	})))

	ctor.CreateMethodProperty(interp.StringKey("freeze"), interp.ObjectValue(interp.NativeFunction(realm, "freeze", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		v := arg(args, 0)
		if !v.IsObject() {
			return interp.NormalCompletion(v)
		}
		o := v.AsObject()
		o.PreventExtensions()
		for _, k := range o.OwnPropertyKeys() {
			desc := o.GetOwnProperty(k)
			nd := &interp.PropertyDescriptor{Configurable: boolPtr(false)}
			if desc.IsDataDescriptor() {
				nd.Writable = boolPtr(false)
			}
			o.DefineOwnProperty(k, nd)
		}
		return interp.NormalCompletion(v)
	})))

	ctor.CreateMethodProperty(interp.StringKey("getPrototypeOf"), interp.ObjectValue(interp.NativeFunction(realm, "getPrototypeOf", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, arg(args, 0))
		if interp.IsAbrupt(objC) {
			return objC
		}
		p := objC.Value.AsObject().GetPrototypeOf()
		if p == nil {
			return interp.NormalCompletion(interp.Null())
		}
		return interp.NormalCompletion(interp.ObjectValue(p))
	})))

	ctor.CreateMethodProperty(interp.StringKey("defineProperty"), interp.ObjectValue(interp.NativeFunction(realm, "defineProperty", 3, func(this interp.Value, args []interp.Value) interp.Completion {
		if !arg(args, 0).IsObject() {
			return interp.ThrowCompletion(realm.NewTypeError("Object.defineProperty called on non-object"))
		}
		o := arg(args, 0).AsObject()
		keyC := interp.ToPropertyKey(arg(args, 1))
		if interp.IsAbrupt(keyC) {
			return keyC
		}
		desc := descriptorFromObject(realm, arg(args, 2))
		if c := o.DefinePropertyOrThrow(propertyKeyFrom(keyC.Value), desc); interp.IsAbrupt(c) {
			return c
		}
		return interp.NormalCompletion(interp.ObjectValue(o))
	})))
}

func descriptorFromObject(realm *interp.Realm, v interp.Value) *interp.PropertyDescriptor {
	if !v.IsObject() {
		return &interp.PropertyDescriptor{}
	}
	o := v.AsObject()
	d := &interp.PropertyDescriptor{}
	if o.HasProperty(interp.StringKey("value")) {
		vc := o.Get(interp.StringKey("value"), v)
		d.Value = valuePtr(vc.Value)
	}
	if o.HasProperty(interp.StringKey("writable")) {
		vc := o.Get(interp.StringKey("writable"), v)
		b := interp.ToBoolean(vc.Value)
		d.Writable = &b
	}
	if o.HasProperty(interp.StringKey("enumerable")) {
		vc := o.Get(interp.StringKey("enumerable"), v)
		b := interp.ToBoolean(vc.Value)
		d.Enumerable = &b
	}
	if o.HasProperty(interp.StringKey("configurable")) {
		vc := o.Get(interp.StringKey("configurable"), v)
		b := interp.ToBoolean(vc.Value)
		d.Configurable = &b
	}
	if o.HasProperty(interp.StringKey("get")) {
		vc := o.Get(interp.StringKey("get"), v)
		d.Get = valuePtr(vc.Value)
	}
	if o.HasProperty(interp.StringKey("set")) {
		vc := o.Get(interp.StringKey("set"), v)
		d.Set = valuePtr(vc.Value)
	}
	return d
}

func propertyKeyFrom(v interp.Value) interp.PropertyKey {
	if v.IsSymbol() {
		return interp.SymbolKey(v.AsSymbol())
	}
	return interp.StringKey(v.AsString())
}

func installObjectPrototypeMethods(realm *interp.Realm, proto *interp.Object) {
	proto.CreateMethodProperty(interp.StringKey("hasOwnProperty"), interp.ObjectValue(interp.NativeFunction(realm, "hasOwnProperty", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, this)
		if interp.IsAbrupt(objC) {
			return objC
		}
		keyC := interp.ToPropertyKey(arg(args, 0))
		if interp.IsAbrupt(keyC) {
			return keyC
		}
		desc := objC.Value.AsObject().GetOwnProperty(propertyKeyFrom(keyC.Value))
		return interp.NormalCompletion(interp.Bool(desc != nil))
	})))

	proto.CreateMethodProperty(interp.StringKey("isPrototypeOf"), interp.ObjectValue(interp.NativeFunction(realm, "isPrototypeOf", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		v := arg(args, 0)
		if !v.IsObject() {
			return interp.NormalCompletion(interp.Bool(false))
		}
		objC := interp.ToObject(realm, this)
		if interp.IsAbrupt(objC) {
			return objC
		}
		self := objC.Value.AsObject()
		for p := v.AsObject().GetPrototypeOf(); p != nil; p = p.GetPrototypeOf() {
			if p == self {
				return interp.NormalCompletion(interp.Bool(true))
			}
		}
		return interp.NormalCompletion(interp.Bool(false))
	})))

	proto.CreateMethodProperty(interp.StringKey("propertyIsEnumerable"), interp.ObjectValue(interp.NativeFunction(realm, "propertyIsEnumerable", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, this)
		if interp.IsAbrupt(objC) {
			return objC
		}
		keyC := interp.ToPropertyKey(arg(args, 0))
		if interp.IsAbrupt(keyC) {
			return keyC
		}
		desc := objC.Value.AsObject().GetOwnProperty(propertyKeyFrom(keyC.Value))
		return interp.NormalCompletion(interp.Bool(desc != nil && boolOr(desc.Enumerable)))
	})))

	proto.CreateMethodProperty(interp.StringKey("toString"), interp.ObjectValue(interp.NativeFunction(realm, "toString", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		if this.IsUndefined() {
			return interp.NormalCompletion(interp.String("[object Undefined]"))
		}
		if this.IsNull() {
			return interp.NormalCompletion(interp.String("[object Null]"))
		}
		return interp.NormalCompletion(interp.String("[object Object]"))
	})))

	proto.CreateMethodProperty(interp.StringKey("valueOf"), interp.ObjectValue(interp.NativeFunction(realm, "valueOf", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		return interp.ToObject(realm, this)
	})))
}

func installErrorToString(realm *interp.Realm, proto *interp.Object) {
	proto.CreateMethodProperty(interp.StringKey("toString"), interp.ObjectValue(interp.NativeFunction(realm, "toString", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		if !this.IsObject() {
			return interp.ThrowCompletion(realm.NewTypeError("Error.prototype.toString called on non-object"))
		}
		o := this.AsObject()
		nameC := o.Get(interp.StringKey("name"), this)
		name := "Error"
		if !interp.IsAbrupt(nameC) && !nameC.Value.IsUndefined() {
			sC := interp.ToString(nameC.Value)
			if interp.IsAbrupt(sC) {
				return sC
			}
			name = sC.Value.AsString()
		}
		msgC := o.Get(interp.StringKey("message"), this)
		msg := ""
		if !interp.IsAbrupt(msgC) && !msgC.Value.IsUndefined() {
			sC := interp.ToString(msgC.Value)
			if interp.IsAbrupt(sC) {
				return sC
			}
			msg = sC.Value.AsString()
		}
		if msg == "" {
			return interp.NormalCompletion(interp.String(name))
		}
		if name == "" {
			return interp.NormalCompletion(interp.String(msg))
		}
		return interp.NormalCompletion(interp.String(name + ": " + msg))
	})))
}

func errorConstructor(realm *interp.Realm, name string, proto *interp.Object) *interp.Object {
	call := func(this interp.Value, args []interp.Value) interp.Completion {
		o := interp.OrdinaryObjectCreate(proto)
		o.Realm = realm
		if len(args) > 0 && !args[0].IsUndefined() {
			sC := interp.ToString(args[0])
			if interp.IsAbrupt(sC) {
				return sC
			}
			o.CreateDataProperty(interp.StringKey("message"), sC.Value)
		}
		return interp.NormalCompletion(interp.ObjectValue(o))
	}
	construct := func(args []interp.Value, newTarget *interp.Object) interp.Completion {
		return call(interp.Undefined(), args)
	}
	ctor := interp.NativeConstructor(realm, name, 1, call, construct)
	ctor.DefineOwnProperty(interp.StringKey("prototype"), &interp.PropertyDescriptor{
		Value: valuePtr(interp.ObjectValue(proto)), Writable: boolPtr(false), Configurable: boolPtr(false),
	})
	proto.CreateMethodProperty(interp.StringKey("constructor"), interp.ObjectValue(ctor))
	return ctor
}

func arg(args []interp.Value, i int) interp.Value {
	if i < len(args) {
		return args[i]
	}
	return interp.Undefined()
}

func rest(args []interp.Value, from int) []interp.Value {
	if from >= len(args) {
		return nil
	}
	return args[from:]
}

func boolOr(p *bool) bool { return p != nil && *p }
func boolPtr(b bool) *bool { return &b }

func uitoa(u uint32) string {
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

func nan() float64 { var z float64; return z / z }
func inf() float64 { var z float64; return 1 / z }
