// Package function wires the Function constructor and
// Function.prototype's call/apply/bind methods.
package function

import "github.com/funvibe/ecmacore/internal/interp"

const ID = "function"

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (*Plugin) ID() string             { return ID }
func (*Plugin) Dependencies() []string { return []string{"object"} }

func (*Plugin) CreateIntrinsics(realm *interp.Realm, staged *interp.StagedGlobals) error {
	proto := realm.Intrinsic("%Function.prototype%")
	if proto == nil {
		return errMissingDependency("%Function.prototype%")
	}

	proto.CreateMethodProperty(interp.StringKey("call"), interp.ObjectValue(interp.NativeFunction(realm, "call", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		if !this.IsCallable() {
			return interp.ThrowCompletion(realm.NewTypeError("Function.prototype.call called on non-callable"))
		}
		thisArg := arg(args, 0)
		rest := restFrom(args, 1)
		return this.AsObject().Call(thisArg, rest)
	})))

	proto.CreateMethodProperty(interp.StringKey("apply"), interp.ObjectValue(interp.NativeFunction(realm, "apply", 2, func(this interp.Value, args []interp.Value) interp.Completion {
		if !this.IsCallable() {
			return interp.ThrowCompletion(realm.NewTypeError("Function.prototype.apply called on non-callable"))
		}
		thisArg := arg(args, 0)
		argArray := arg(args, 1)
		if argArray.IsNullish() {
			return this.AsObject().Call(thisArg, nil)
		}
		list, c := createListFromArrayLike(realm, argArray)
		if interp.IsAbrupt(c) {
			return c
		}
		return this.AsObject().Call(thisArg, list)
	})))

	proto.CreateMethodProperty(interp.StringKey("bind"), interp.ObjectValue(interp.NativeFunction(realm, "bind", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		if !this.IsCallable() {
			return interp.ThrowCompletion(realm.NewTypeError("Function.prototype.bind called on non-callable"))
		}
		boundThis := arg(args, 0)
		boundArgs := restFrom(args, 1)
		bound := interp.BoundFunctionCreate(realm, this.AsObject(), boundThis, boundArgs)
		return interp.NormalCompletion(interp.ObjectValue(bound))
	})))

	proto.CreateMethodProperty(interp.StringKey("toString"), interp.ObjectValue(interp.NativeFunction(realm, "toString", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		if !this.IsCallable() {
			return interp.ThrowCompletion(realm.NewTypeError("Function.prototype.toString called on non-callable"))
		}
		nameC := this.AsObject().Get(interp.StringKey("name"), this)
		name := ""
		if !interp.IsAbrupt(nameC) && nameC.Value.IsString() {
			name = nameC.Value.AsString()
		}
		return interp.NormalCompletion(interp.String("function " + name + "() { [native code] }"))
	})))

	ctor := interp.NativeConstructor(realm, "Function", 1, functionCall(realm, proto), functionConstruct(realm, proto))
	ctor.DefineOwnProperty(interp.StringKey("prototype"), &interp.PropertyDescriptor{
		Value: valuePtr(interp.ObjectValue(proto)), Writable: boolPtr(false), Configurable: boolPtr(false),
	})
	proto.CreateMethodProperty(interp.StringKey("constructor"), interp.ObjectValue(ctor))
	realm.SetIntrinsic("%Function%", ctor)
	staged.Stage("Function", interp.ObjectValue(ctor))
	return nil
}

// functionCall/functionConstruct implement the dynamic `new Function(...)`
// form by throwing: constructing a function from a source string requires
// a parser, which this engine consumes pre-built ASTs instead of owning.
func functionCall(realm *interp.Realm, proto *interp.Object) func(this interp.Value, args []interp.Value) interp.Completion {
	return func(this interp.Value, args []interp.Value) interp.Completion {
		return interp.ThrowCompletion(realm.NewTypeError("Function constructor requires a source parser, not available in this host"))
	}
}

func functionConstruct(realm *interp.Realm, proto *interp.Object) func(args []interp.Value, newTarget *interp.Object) interp.Completion {
	return func(args []interp.Value, newTarget *interp.Object) interp.Completion {
		return interp.ThrowCompletion(realm.NewTypeError("Function constructor requires a source parser, not available in this host"))
	}
}

// createListFromArrayLike implements CreateListFromArrayLike: reads
// .length then each integer-indexed property in order, used by
// Function.prototype.apply's second argument (spec.md Non-goals keep
// the full abstract operation private to this one caller for now).
func createListFromArrayLike(realm *interp.Realm, v interp.Value) ([]interp.Value, interp.Completion) {
	objC := interp.ToObject(realm, v)
	if interp.IsAbrupt(objC) {
		return nil, objC
	}
	o := objC.Value.AsObject()
	lengthC := o.Get(interp.StringKey("length"), v)
	if interp.IsAbrupt(lengthC) {
		return nil, lengthC
	}
	lenC := interp.ToNumber(lengthC.Value)
	if interp.IsAbrupt(lenC) {
		return nil, lenC
	}
	n := int(lenC.Value.AsNumber())
	if n < 0 {
		n = 0
	}
	list := make([]interp.Value, 0, n)
	for i := 0; i < n; i++ {
		elemC := o.Get(interp.StringKey(itoa(i)), v)
		if interp.IsAbrupt(elemC) {
			return nil, elemC
		}
		list = append(list, elemC.Value)
	}
	return list, interp.NormalCompletion(interp.Undefined())
}

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

func arg(args []interp.Value, i int) interp.Value {
	if i < len(args) {
		return args[i]
	}
	return interp.Undefined()
}

func restFrom(args []interp.Value, from int) []interp.Value {
	if from >= len(args) {
		return nil
	}
	return append([]interp.Value{}, args[from:]...)
}

func valuePtr(v interp.Value) *interp.Value { return &v }
func boolPtr(b bool) *bool                  { return &b }

type missingDependency string

func (m missingDependency) Error() string { return "function plugin: missing dependency " + string(m) }

func errMissingDependency(name string) error { return missingDependency(name) }
