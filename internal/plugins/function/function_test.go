package function_test

import (
	"context"
	"testing"

	"github.com/funvibe/ecmacore/internal/interp"
	"github.com/funvibe/ecmacore/internal/plugins/function"
	"github.com/funvibe/ecmacore/internal/plugins/object"
)

func newRealm(t *testing.T) *interp.Realm {
	t.Helper()
	vm := interp.NewVM(context.Background())
	realm := interp.NewRealm(vm)
	if err := interp.RegisterPlugins(realm, []interp.Plugin{object.New(), function.New()}); err != nil {
		t.Fatalf("registering plugins: %v", err)
	}
	return realm
}

func adder(realm *interp.Realm) *interp.Object {
	return interp.NativeFunction(realm, "add", 2, func(this interp.Value, args []interp.Value) interp.Completion {
		a, b := 0.0, 0.0
		if len(args) > 0 {
			a = args[0].AsNumber()
		}
		if len(args) > 1 {
			b = args[1].AsNumber()
		}
		return interp.NormalCompletion(interp.Number(a + b))
	})
}

func TestFunctionPrototypeCall(t *testing.T) {
	realm := newRealm(t)
	proto := realm.Intrinsic("%Function.prototype%")
	fn := adder(realm)

	callMethod := proto.Get(interp.StringKey("call"), interp.ObjectValue(proto))
	if interp.IsAbrupt(callMethod) {
		t.Fatalf("Function.prototype.call missing: %v", callMethod)
	}
	c := callMethod.Value.AsObject().Call(interp.ObjectValue(fn), []interp.Value{interp.Undefined(), interp.Number(2), interp.Number(3)})
	if interp.IsAbrupt(c) {
		t.Fatalf("call threw: %v", c)
	}
	if c.Value.AsNumber() != 5 {
		t.Fatalf("add.call(undefined, 2, 3) = %v, want 5", c.Value)
	}
}

func TestFunctionPrototypeApply(t *testing.T) {
	realm := newRealm(t)
	proto := realm.Intrinsic("%Function.prototype%")
	fn := adder(realm)

	arr := interp.ArrayCreate(realm, 0)
	arr.CreateDataProperty(interp.StringKey("0"), interp.Number(10))
	arr.CreateDataProperty(interp.StringKey("1"), interp.Number(20))

	applyMethod := proto.Get(interp.StringKey("apply"), interp.ObjectValue(proto))
	c := applyMethod.Value.AsObject().Call(interp.ObjectValue(fn), []interp.Value{interp.Undefined(), interp.ObjectValue(arr)})
	if interp.IsAbrupt(c) {
		t.Fatalf("apply threw: %v", c)
	}
	if c.Value.AsNumber() != 30 {
		t.Fatalf("add.apply(undefined, [10,20]) = %v, want 30", c.Value)
	}
}

func TestFunctionPrototypeBind(t *testing.T) {
	realm := newRealm(t)
	proto := realm.Intrinsic("%Function.prototype%")
	fn := adder(realm)

	bindMethod := proto.Get(interp.StringKey("bind"), interp.ObjectValue(proto))
	c := bindMethod.Value.AsObject().Call(interp.ObjectValue(fn), []interp.Value{interp.Undefined(), interp.Number(100)})
	if interp.IsAbrupt(c) {
		t.Fatalf("bind threw: %v", c)
	}
	bound := c.Value.AsObject()
	if bound.Call == nil {
		t.Fatal("bound function is not callable")
	}
	rC := bound.Call(interp.Undefined(), []interp.Value{interp.Number(5)})
	if interp.IsAbrupt(rC) {
		t.Fatalf("calling bound function threw: %v", rC)
	}
	if rC.Value.AsNumber() != 105 {
		t.Fatalf("bound(5) = %v, want 105 (100 prepended)", rC.Value)
	}
}

func TestFunctionConstructorThrows(t *testing.T) {
	realm := newRealm(t)
	ctor := realm.Intrinsic("%Function%")
	c := ctor.Call(interp.Undefined(), []interp.Value{interp.String("return 1")})
	if !interp.IsAbrupt(c) {
		t.Fatal("Function(src) did not throw, want TypeError (no source parser available)")
	}
}
