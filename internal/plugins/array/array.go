// Package array wires %Array.prototype% and the Array constructor.
package array

import "github.com/funvibe/ecmacore/internal/interp"

const ID = "array"

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (*Plugin) ID() string             { return ID }
func (*Plugin) Dependencies() []string { return []string{"object", "iterator"} }

func (*Plugin) CreateIntrinsics(realm *interp.Realm, staged *interp.StagedGlobals) error {
	objectProto := realm.Intrinsic("%Object.prototype%")

	// %Array.prototype% is itself an (empty) Array exotic object, built by
	// hand since ArrayCreate assumes %Array.prototype% already exists.
	proto := interp.OrdinaryObjectCreate(objectProto)
	proto.Realm = realm
	proto.DefineOwnProperty(interp.StringKey("length"), interp.DataDescriptor(interp.Number(0), true, false, false))
	proto.Exotic = interp.ExoticArray
	realm.SetIntrinsic("%Array.prototype%", proto)

	installArrayPrototypeMethods(realm, proto)

	ctor := interp.NativeConstructor(realm, "Array", 1, arrayCall(realm), arrayConstruct(realm))
	ctor.DefineOwnProperty(interp.StringKey("prototype"), &interp.PropertyDescriptor{
		Value: ptr(interp.ObjectValue(proto)), Writable: boolPtr(false), Configurable: boolPtr(false),
	})
	proto.CreateMethodProperty(interp.StringKey("constructor"), interp.ObjectValue(ctor))
	ctor.CreateMethodProperty(interp.StringKey("isArray"), interp.ObjectValue(interp.NativeFunction(realm, "isArray", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		return interp.NormalCompletion(interp.Bool(interp.IsArray(arg(args, 0))))
	})))
	ctor.CreateMethodProperty(interp.StringKey("of"), interp.ObjectValue(interp.NativeFunction(realm, "of", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		arr := interp.ArrayCreate(realm, uint32(len(args)))
		for i, v := range args {
			arr.CreateDataProperty(interp.StringKey(itoa(i)), v)
		}
		return interp.NormalCompletion(interp.ObjectValue(arr))
	})))

	realm.SetIntrinsic("%Array%", ctor)
	staged.Stage("Array", interp.ObjectValue(ctor))
	return nil
}

func arrayCall(realm *interp.Realm) func(this interp.Value, args []interp.Value) interp.Completion {
	return func(this interp.Value, args []interp.Value) interp.Completion {
		return buildArray(realm, args)
	}
}

func arrayConstruct(realm *interp.Realm) func(args []interp.Value, newTarget *interp.Object) interp.Completion {
	return func(args []interp.Value, newTarget *interp.Object) interp.Completion {
		return buildArray(realm, args)
	}
}

func buildArray(realm *interp.Realm, args []interp.Value) interp.Completion {
	if len(args) == 1 && args[0].IsNumber() {
		n := args[0].AsNumber()
		u := uint32(n)
		if float64(u) != n {
			return interp.ThrowCompletion(realm.NewRangeError("Invalid array length"))
		}
		return interp.NormalCompletion(interp.ObjectValue(interp.ArrayCreate(realm, u)))
	}
	arr := interp.ArrayCreate(realm, uint32(len(args)))
	for i, v := range args {
		arr.CreateDataProperty(interp.StringKey(itoa(i)), v)
	}
	return interp.NormalCompletion(interp.ObjectValue(arr))
}

func installArrayPrototypeMethods(realm *interp.Realm, proto *interp.Object) {
	proto.CreateMethodProperty(interp.StringKey("push"), interp.ObjectValue(interp.NativeFunction(realm, "push", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, this)
		if interp.IsAbrupt(objC) {
			return objC
		}
		o := objC.Value.AsObject()
		lenC := o.Get(interp.StringKey("length"), this)
		if interp.IsAbrupt(lenC) {
			return lenC
		}
		n := uint32(lenC.Value.AsNumber())
		for _, v := range args {
			o.CreateDataProperty(interp.StringKey(itoa(int(n))), v)
			n++
		}
		o.DefineOwnProperty(interp.StringKey("length"), &interp.PropertyDescriptor{Value: ptr(interp.Number(float64(n)))})
		return interp.NormalCompletion(interp.Number(float64(n)))
	})))

	proto.CreateMethodProperty(interp.StringKey("pop"), interp.ObjectValue(interp.NativeFunction(realm, "pop", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, this)
		if interp.IsAbrupt(objC) {
			return objC
		}
		o := objC.Value.AsObject()
		lenC := o.Get(interp.StringKey("length"), this)
		if interp.IsAbrupt(lenC) {
			return lenC
		}
		n := uint32(lenC.Value.AsNumber())
		if n == 0 {
			return interp.NormalCompletion(interp.Undefined())
		}
		key := interp.StringKey(itoa(int(n - 1)))
		vC := o.Get(key, this)
		if interp.IsAbrupt(vC) {
			return vC
		}
		o.Delete(key)
		o.DefineOwnProperty(interp.StringKey("length"), &interp.PropertyDescriptor{Value: ptr(interp.Number(float64(n - 1)))})
		return interp.NormalCompletion(vC.Value)
	})))

	proto.CreateMethodProperty(interp.StringKey("join"), interp.ObjectValue(interp.NativeFunction(realm, "join", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, this)
		if interp.IsAbrupt(objC) {
			return objC
		}
		o := objC.Value.AsObject()
		sep := ","
		if len(args) > 0 && !args[0].IsUndefined() {
			sC := interp.ToString(args[0])
			if interp.IsAbrupt(sC) {
				return sC
			}
			sep = sC.Value.AsString()
		}
		lenC := o.Get(interp.StringKey("length"), this)
		if interp.IsAbrupt(lenC) {
			return lenC
		}
		n := int(lenC.Value.AsNumber())
		out := ""
		for i := 0; i < n; i++ {
			if i > 0 {
				out += sep
			}
			vC := o.Get(interp.StringKey(itoa(i)), this)
			if interp.IsAbrupt(vC) {
				return vC
			}
			if vC.Value.IsNullish() {
				continue
			}
			sC := interp.ToString(vC.Value)
			if interp.IsAbrupt(sC) {
				return sC
			}
			out += sC.Value.AsString()
		}
		return interp.NormalCompletion(interp.String(out))
	})))

	proto.CreateMethodProperty(interp.StringKey("slice"), interp.ObjectValue(interp.NativeFunction(realm, "slice", 2, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, this)
		if interp.IsAbrupt(objC) {
			return objC
		}
		o := objC.Value.AsObject()
		lenC := o.Get(interp.StringKey("length"), this)
		if interp.IsAbrupt(lenC) {
			return lenC
		}
		n := int(lenC.Value.AsNumber())
		start := relativeIndex(arg(args, 0), n, 0)
		end := relativeIndex(arg(args, 1), n, n)
		result := interp.ArrayCreate(realm, 0)
		idx := 0
		for i := start; i < end; i++ {
			vC := o.Get(interp.StringKey(itoa(i)), this)
			if interp.IsAbrupt(vC) {
				return vC
			}
			result.CreateDataProperty(interp.StringKey(itoa(idx)), vC.Value)
			idx++
		}
		return interp.NormalCompletion(interp.ObjectValue(result))
	})))

	proto.CreateMethodProperty(interp.StringKey("indexOf"), interp.ObjectValue(interp.NativeFunction(realm, "indexOf", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, this)
		if interp.IsAbrupt(objC) {
			return objC
		}
		o := objC.Value.AsObject()
		lenC := o.Get(interp.StringKey("length"), this)
		if interp.IsAbrupt(lenC) {
			return lenC
		}
		n := int(lenC.Value.AsNumber())
		target := arg(args, 0)
		for i := 0; i < n; i++ {
			vC := o.Get(interp.StringKey(itoa(i)), this)
			if interp.IsAbrupt(vC) {
				return vC
			}
			if interp.IsStrictlyEqual(vC.Value, target) {
				return interp.NormalCompletion(interp.Number(float64(i)))
			}
		}
		return interp.NormalCompletion(interp.Number(-1))
	})))

	proto.CreateMethodProperty(interp.StringKey("forEach"), interp.ObjectValue(interp.NativeFunction(realm, "forEach", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, this)
		if interp.IsAbrupt(objC) {
			return objC
		}
		o := objC.Value.AsObject()
		callback := arg(args, 0)
		if !callback.IsCallable() {
			return interp.ThrowCompletion(realm.NewTypeError("Array.prototype.forEach callback must be callable"))
		}
		thisArg := arg(args, 1)
		lenC := o.Get(interp.StringKey("length"), this)
		if interp.IsAbrupt(lenC) {
			return lenC
		}
		n := int(lenC.Value.AsNumber())
		for i := 0; i < n; i++ {
			key := interp.StringKey(itoa(i))
			if !o.HasProperty(key) {
				continue
			}
			vC := o.Get(key, this)
			if interp.IsAbrupt(vC) {
				return vC
			}
			rC := callback.AsObject().Call(thisArg, []interp.Value{vC.Value, interp.Number(float64(i)), this})
			if interp.IsAbrupt(rC) {
				return rC
			}
		}
		return interp.NormalCompletion(interp.Undefined())
	})))

	proto.CreateMethodProperty(interp.StringKey("map"), interp.ObjectValue(interp.NativeFunction(realm, "map", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, this)
		if interp.IsAbrupt(objC) {
			return objC
		}
		o := objC.Value.AsObject()
		callback := arg(args, 0)
		if !callback.IsCallable() {
			return interp.ThrowCompletion(realm.NewTypeError("Array.prototype.map callback must be callable"))
		}
		thisArg := arg(args, 1)
		lenC := o.Get(interp.StringKey("length"), this)
		if interp.IsAbrupt(lenC) {
			return lenC
		}
		n := uint32(lenC.Value.AsNumber())
		result := interp.ArrayCreate(realm, n)
		for i := uint32(0); i < n; i++ {
			key := interp.StringKey(itoa(int(i)))
			if !o.HasProperty(key) {
				continue
			}
			vC := o.Get(key, this)
			if interp.IsAbrupt(vC) {
				return vC
			}
			rC := callback.AsObject().Call(thisArg, []interp.Value{vC.Value, interp.Number(float64(i)), this})
			if interp.IsAbrupt(rC) {
				return rC
			}
			result.CreateDataProperty(key, rC.Value)
		}
		return interp.NormalCompletion(interp.ObjectValue(result))
	})))

	proto.CreateMethodProperty(interp.StringKey("filter"), interp.ObjectValue(interp.NativeFunction(realm, "filter", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, this)
		if interp.IsAbrupt(objC) {
			return objC
		}
		o := objC.Value.AsObject()
		callback := arg(args, 0)
		if !callback.IsCallable() {
			return interp.ThrowCompletion(realm.NewTypeError("Array.prototype.filter callback must be callable"))
		}
		thisArg := arg(args, 1)
		lenC := o.Get(interp.StringKey("length"), this)
		if interp.IsAbrupt(lenC) {
			return lenC
		}
		n := int(lenC.Value.AsNumber())
		result := interp.ArrayCreate(realm, 0)
		outIdx := 0
		for i := 0; i < n; i++ {
			key := interp.StringKey(itoa(i))
			if !o.HasProperty(key) {
				continue
			}
			vC := o.Get(key, this)
			if interp.IsAbrupt(vC) {
				return vC
			}
			rC := callback.AsObject().Call(thisArg, []interp.Value{vC.Value, interp.Number(float64(i)), this})
			if interp.IsAbrupt(rC) {
				return rC
			}
			if interp.ToBoolean(rC.Value) {
				result.CreateDataProperty(interp.StringKey(itoa(outIdx)), vC.Value)
				outIdx++
			}
		}
		return interp.NormalCompletion(interp.ObjectValue(result))
	})))

	proto.CreateMethodProperty(interp.StringKey("reduce"), interp.ObjectValue(interp.NativeFunction(realm, "reduce", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		objC := interp.ToObject(realm, this)
		if interp.IsAbrupt(objC) {
			return objC
		}
		o := objC.Value.AsObject()
		callback := arg(args, 0)
		if !callback.IsCallable() {
			return interp.ThrowCompletion(realm.NewTypeError("Array.prototype.reduce callback must be callable"))
		}
		lenC := o.Get(interp.StringKey("length"), this)
		if interp.IsAbrupt(lenC) {
			return lenC
		}
		n := int(lenC.Value.AsNumber())
		i := 0
		var acc interp.Value
		if len(args) > 1 {
			acc = args[1]
		} else {
			if n == 0 {
				return interp.ThrowCompletion(realm.NewTypeError("Reduce of empty array with no initial value"))
			}
			vC := o.Get(interp.StringKey(itoa(0)), this)
			if interp.IsAbrupt(vC) {
				return vC
			}
			acc = vC.Value
			i = 1
		}
		for ; i < n; i++ {
			key := interp.StringKey(itoa(i))
			if !o.HasProperty(key) {
				continue
			}
			vC := o.Get(key, this)
			if interp.IsAbrupt(vC) {
				return vC
			}
			rC := callback.AsObject().Call(interp.Undefined(), []interp.Value{acc, vC.Value, interp.Number(float64(i)), this})
			if interp.IsAbrupt(rC) {
				return rC
			}
			acc = rC.Value
		}
		return interp.NormalCompletion(acc)
	})))

	proto.CreateMethodProperty(interp.SymbolKey(realm.WellKnownSymbol("iterator")), interp.ObjectValue(interp.NativeFunction(realm, "[Symbol.iterator]", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		return arrayValues(realm, this)
	})))
	proto.CreateMethodProperty(interp.StringKey("values"), interp.ObjectValue(interp.NativeFunction(realm, "values", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		return arrayValues(realm, this)
	})))

	proto.CreateMethodProperty(interp.StringKey("toString"), interp.ObjectValue(interp.NativeFunction(realm, "toString", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		joinC := this.AsObject().Get(interp.StringKey("join"), this)
		if interp.IsAbrupt(joinC) {
			return joinC
		}
		if !joinC.Value.IsCallable() {
			return interp.NormalCompletion(interp.String("[object Array]"))
		}
		return joinC.Value.AsObject().Call(this, nil)
	})))
}

// arrayValues implements the Array Iterator creation for
// %Array.prototype%[Symbol.iterator] / .values(): a single NativeFunction
// closure carrying index state, chained off %ArrayIteratorPrototype%
// rather than a distinct per-array-kind object, since this engine's
// Array exotic objects have no keys/entries distinction to express yet.
func arrayValues(realm *interp.Realm, this interp.Value) interp.Completion {
	objC := interp.ToObject(realm, this)
	if interp.IsAbrupt(objC) {
		return objC
	}
	o := objC.Value.AsObject()
	idx := 0
	iter := interp.OrdinaryObjectCreate(realm.Intrinsic("%ArrayIteratorPrototype%"))
	iter.Realm = realm
	iter.CreateMethodProperty(interp.StringKey("next"), interp.ObjectValue(interp.NativeFunction(realm, "next", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		lenC := o.Get(interp.StringKey("length"), interp.ObjectValue(o))
		if interp.IsAbrupt(lenC) {
			return lenC
		}
		n := int(lenC.Value.AsNumber())
		if idx >= n {
			return interp.NormalCompletion(interp.CreateIteratorResultObject(realm, interp.Undefined(), true))
		}
		vC := o.Get(interp.StringKey(itoa(idx)), interp.ObjectValue(o))
		if interp.IsAbrupt(vC) {
			return vC
		}
		idx++
		return interp.NormalCompletion(interp.CreateIteratorResultObject(realm, vC.Value, false))
	})))
	return interp.NormalCompletion(interp.ObjectValue(iter))
}

func relativeIndex(v interp.Value, length int, def int) int {
	if v.IsUndefined() {
		return def
	}
	n := int(v.AsNumber())
	if n < 0 {
		n += length
	}
	if n < 0 {
		n = 0
	}
	if n > length {
		n = length
	}
	return n
}

func arg(args []interp.Value, i int) interp.Value {
	if i < len(args) {
		return args[i]
	}
	return interp.Undefined()
}

func ptr(v interp.Value) *interp.Value { return &v }
func boolPtr(b bool) *bool             { return &b }

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [12]byte
	p := len(buf)
	for i > 0 {
		p--
		buf[p] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		p--
		buf[p] = '-'
	}
	return string(buf[p:])
}
