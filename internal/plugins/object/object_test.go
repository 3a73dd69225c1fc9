package object_test

import (
	"context"
	"testing"

	"github.com/funvibe/ecmacore/internal/interp"
	"github.com/funvibe/ecmacore/internal/plugins/object"
)

func newRealm(t *testing.T) *interp.Realm {
	t.Helper()
	vm := interp.NewVM(context.Background())
	realm := interp.NewRealm(vm)
	if err := interp.RegisterPlugins(realm, []interp.Plugin{object.New()}); err != nil {
		t.Fatalf("registering object plugin: %v", err)
	}
	return realm
}

func TestObjectConstructorWraps(t *testing.T) {
	realm := newRealm(t)
	ctor := realm.Intrinsic("%Object%")
	if ctor == nil {
		t.Fatal("%Object% not registered")
	}

	c := ctor.Call(interp.Undefined(), []interp.Value{interp.Number(5)})
	if interp.IsAbrupt(c) {
		t.Fatalf("Object(5) threw: %v", c)
	}
	if !c.Value.IsObject() {
		t.Fatalf("Object(5) = %v, want an object", c.Value)
	}
}

func TestObjectCallWithNoArgsCreatesEmptyObject(t *testing.T) {
	realm := newRealm(t)
	ctor := realm.Intrinsic("%Object%")

	c := ctor.Call(interp.Undefined(), nil)
	if interp.IsAbrupt(c) {
		t.Fatalf("Object() threw: %v", c)
	}
	keys := c.Value.AsObject().OwnPropertyKeys()
	if len(keys) != 0 {
		t.Fatalf("Object() own keys = %v, want none", keys)
	}
}

func TestObjectKeys(t *testing.T) {
	realm := newRealm(t)
	proto := realm.Intrinsic("%Object.prototype%")
	o := interp.OrdinaryObjectCreate(proto)
	o.Realm = realm
	o.CreateDataProperty(interp.StringKey("a"), interp.Number(1))
	o.CreateDataProperty(interp.StringKey("b"), interp.Number(2))

	ctor := realm.Intrinsic("%Object%")
	keysFn := ctor.Get(interp.StringKey("keys"), interp.ObjectValue(ctor))
	if interp.IsAbrupt(keysFn) || !keysFn.Value.IsCallable() {
		t.Fatalf("Object.keys missing or not callable: %v", keysFn)
	}

	c := keysFn.Value.AsObject().Call(interp.Undefined(), []interp.Value{interp.ObjectValue(o)})
	if interp.IsAbrupt(c) {
		t.Fatalf("Object.keys threw: %v", c)
	}
	arr := c.Value.AsObject()
	lengthC := arr.Get(interp.StringKey("length"), c.Value)
	if int(lengthC.Value.AsNumber()) != 2 {
		t.Fatalf("Object.keys(o).length = %v, want 2", lengthC.Value)
	}
}

func TestHasOwnProperty(t *testing.T) {
	realm := newRealm(t)
	proto := realm.Intrinsic("%Object.prototype%")
	o := interp.OrdinaryObjectCreate(proto)
	o.Realm = realm
	o.CreateDataProperty(interp.StringKey("x"), interp.Number(1))

	hasOwn := proto.Get(interp.StringKey("hasOwnProperty"), interp.ObjectValue(proto))
	if interp.IsAbrupt(hasOwn) {
		t.Fatalf("hasOwnProperty missing: %v", hasOwn)
	}

	c := hasOwn.Value.AsObject().Call(interp.ObjectValue(o), []interp.Value{interp.String("x")})
	if interp.IsAbrupt(c) {
		t.Fatalf("hasOwnProperty threw: %v", c)
	}
	if !c.Value.AsBoolean() {
		t.Fatalf("hasOwnProperty('x') = false, want true")
	}

	c = hasOwn.Value.AsObject().Call(interp.ObjectValue(o), []interp.Value{interp.String("y")})
	if interp.IsAbrupt(c) {
		t.Fatalf("hasOwnProperty threw: %v", c)
	}
	if c.Value.AsBoolean() {
		t.Fatalf("hasOwnProperty('y') = true, want false")
	}
}

func TestTypeErrorConstructorChain(t *testing.T) {
	realm := newRealm(t)
	v := realm.NewTypeError("bad thing")
	if !v.IsObject() {
		t.Fatalf("NewTypeError did not produce an object: %v", v)
	}
	msgC := v.AsObject().Get(interp.StringKey("message"), v)
	if interp.IsAbrupt(msgC) || msgC.Value.AsString() != "bad thing" {
		t.Fatalf("message = %v, want %q", msgC.Value, "bad thing")
	}
}
