package array_test

import (
	"context"
	"testing"

	"github.com/funvibe/ecmacore/internal/interp"
	"github.com/funvibe/ecmacore/internal/plugins/array"
	"github.com/funvibe/ecmacore/internal/plugins/iterator"
	"github.com/funvibe/ecmacore/internal/plugins/object"
)

func newRealm(t *testing.T) *interp.Realm {
	t.Helper()
	vm := interp.NewVM(context.Background())
	realm := interp.NewRealm(vm)
	err := interp.RegisterPlugins(realm, []interp.Plugin{object.New(), iterator.New(), array.New()})
	if err != nil {
		t.Fatalf("registering plugins: %v", err)
	}
	return realm
}

func TestArrayConstructorElementList(t *testing.T) {
	realm := newRealm(t)
	ctor := realm.Intrinsic("%Array%")
	c := ctor.Construct([]interp.Value{interp.Number(1), interp.Number(2), interp.Number(3)}, ctor)
	if interp.IsAbrupt(c) {
		t.Fatalf("new Array(1,2,3) threw: %v", c)
	}
	arr := c.Value.AsObject()
	lengthC := arr.Get(interp.StringKey("length"), c.Value)
	if int(lengthC.Value.AsNumber()) != 3 {
		t.Fatalf("length = %v, want 3", lengthC.Value)
	}
}

func TestArrayConstructorSingleLengthArg(t *testing.T) {
	realm := newRealm(t)
	ctor := realm.Intrinsic("%Array%")
	c := ctor.Construct([]interp.Value{interp.Number(5)}, ctor)
	if interp.IsAbrupt(c) {
		t.Fatalf("new Array(5) threw: %v", c)
	}
	lengthC := c.Value.AsObject().Get(interp.StringKey("length"), c.Value)
	if int(lengthC.Value.AsNumber()) != 5 {
		t.Fatalf("length = %v, want 5", lengthC.Value)
	}
}

func TestArrayPushPopJoin(t *testing.T) {
	realm := newRealm(t)
	proto := realm.Intrinsic("%Array.prototype%")
	arr := interp.ArrayCreate(realm, 0)

	push := mustGet(t, proto, "push")
	pushC := push.AsObject().Call(interp.ObjectValue(arr), []interp.Value{interp.String("a"), interp.String("b")})
	if interp.IsAbrupt(pushC) {
		t.Fatalf("push threw: %v", pushC)
	}
	if pushC.Value.AsNumber() != 2 {
		t.Fatalf("push returned %v, want 2", pushC.Value)
	}

	join := mustGet(t, proto, "join")
	joinC := join.AsObject().Call(interp.ObjectValue(arr), []interp.Value{interp.String(",")})
	if interp.IsAbrupt(joinC) {
		t.Fatalf("join threw: %v", joinC)
	}
	if joinC.Value.AsString() != "a,b" {
		t.Fatalf("join = %q, want %q", joinC.Value.AsString(), "a,b")
	}

	pop := mustGet(t, proto, "pop")
	popC := pop.AsObject().Call(interp.ObjectValue(arr), nil)
	if interp.IsAbrupt(popC) {
		t.Fatalf("pop threw: %v", popC)
	}
	if popC.Value.AsString() != "b" {
		t.Fatalf("pop = %v, want 'b'", popC.Value)
	}
}

func TestArrayMapFilter(t *testing.T) {
	realm := newRealm(t)
	proto := realm.Intrinsic("%Array.prototype%")
	arr := interp.ArrayCreate(realm, 0)
	arr.CreateDataProperty(interp.StringKey("0"), interp.Number(1))
	arr.CreateDataProperty(interp.StringKey("1"), interp.Number(2))
	arr.CreateDataProperty(interp.StringKey("2"), interp.Number(3))
	arr.CreateDataProperty(interp.StringKey("length"), interp.Number(3))

	double := interp.NativeFunction(realm, "double", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		return interp.NormalCompletion(interp.Number(args[0].AsNumber() * 2))
	})
	mapFn := mustGet(t, proto, "map")
	mapC := mapFn.AsObject().Call(interp.ObjectValue(arr), []interp.Value{interp.ObjectValue(double)})
	if interp.IsAbrupt(mapC) {
		t.Fatalf("map threw: %v", mapC)
	}
	v0 := mapC.Value.AsObject().Get(interp.StringKey("0"), mapC.Value)
	if v0.Value.AsNumber() != 2 {
		t.Fatalf("mapped[0] = %v, want 2", v0.Value)
	}

	isEven := interp.NativeFunction(realm, "isEven", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		n := int(args[0].AsNumber())
		return interp.NormalCompletion(interp.Bool(n%2 == 0))
	})
	filterFn := mustGet(t, proto, "filter")
	filterC := filterFn.AsObject().Call(interp.ObjectValue(arr), []interp.Value{interp.ObjectValue(isEven)})
	if interp.IsAbrupt(filterC) {
		t.Fatalf("filter threw: %v", filterC)
	}
	lengthC := filterC.Value.AsObject().Get(interp.StringKey("length"), filterC.Value)
	if int(lengthC.Value.AsNumber()) != 1 {
		t.Fatalf("filtered length = %v, want 1", lengthC.Value)
	}
}

func TestArrayIsArray(t *testing.T) {
	realm := newRealm(t)
	ctor := realm.Intrinsic("%Array%")
	isArrayFn := mustGet(t, ctor, "isArray")

	arr := interp.ArrayCreate(realm, 0)
	c := isArrayFn.AsObject().Call(interp.Undefined(), []interp.Value{interp.ObjectValue(arr)})
	if interp.IsAbrupt(c) || !c.Value.AsBoolean() {
		t.Fatalf("Array.isArray(arr) = %v, want true", c.Value)
	}

	c = isArrayFn.AsObject().Call(interp.Undefined(), []interp.Value{interp.Number(1)})
	if interp.IsAbrupt(c) || c.Value.AsBoolean() {
		t.Fatalf("Array.isArray(1) = %v, want false", c.Value)
	}
}

func mustGet(t *testing.T, o *interp.Object, name string) interp.Value {
	t.Helper()
	c := o.Get(interp.StringKey(name), interp.ObjectValue(o))
	if interp.IsAbrupt(c) {
		t.Fatalf("getting %q threw: %v", name, c)
	}
	if !c.Value.IsCallable() {
		t.Fatalf("%q is not callable: %v", name, c.Value)
	}
	return c.Value
}
