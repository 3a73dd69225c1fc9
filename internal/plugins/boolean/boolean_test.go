package boolean_test

import (
	"context"
	"testing"

	"github.com/funvibe/ecmacore/internal/interp"
	"github.com/funvibe/ecmacore/internal/plugins/boolean"
	"github.com/funvibe/ecmacore/internal/plugins/object"
)

func newRealm(t *testing.T) *interp.Realm {
	t.Helper()
	vm := interp.NewVM(context.Background())
	realm := interp.NewRealm(vm)
	if err := interp.RegisterPlugins(realm, []interp.Plugin{object.New(), boolean.New()}); err != nil {
		t.Fatalf("registering plugins: %v", err)
	}
	return realm
}

func TestBooleanCallCoerces(t *testing.T) {
	realm := newRealm(t)
	ctor := realm.Intrinsic("%Boolean%")

	c := ctor.Call(interp.Undefined(), []interp.Value{interp.Number(0)})
	if interp.IsAbrupt(c) || c.Value.AsBoolean() {
		t.Fatalf("Boolean(0) = %v, want false", c.Value)
	}

	c = ctor.Call(interp.Undefined(), []interp.Value{interp.String("x")})
	if interp.IsAbrupt(c) || !c.Value.AsBoolean() {
		t.Fatalf("Boolean('x') = %v, want true", c.Value)
	}
}

func TestBooleanConstructWrapsObject(t *testing.T) {
	realm := newRealm(t)
	ctor := realm.Intrinsic("%Boolean%")

	c := ctor.Construct([]interp.Value{interp.Bool(true)}, ctor)
	if interp.IsAbrupt(c) {
		t.Fatalf("new Boolean(true) threw: %v", c)
	}
	if !c.Value.IsObject() {
		t.Fatalf("new Boolean(true) = %v, want an object", c.Value)
	}

	proto := realm.Intrinsic("%Boolean.prototype%")
	valueOf := proto.Get(interp.StringKey("valueOf"), interp.ObjectValue(proto))
	vC := valueOf.Value.AsObject().Call(c.Value, nil)
	if interp.IsAbrupt(vC) || !vC.Value.AsBoolean() {
		t.Fatalf("valueOf() = %v, want true", vC.Value)
	}
}

func TestBooleanToString(t *testing.T) {
	realm := newRealm(t)
	ctor := realm.Intrinsic("%Boolean%")
	proto := realm.Intrinsic("%Boolean.prototype%")

	wrapped := ctor.Construct([]interp.Value{interp.Bool(false)}, ctor)
	toString := proto.Get(interp.StringKey("toString"), interp.ObjectValue(proto))
	sC := toString.Value.AsObject().Call(wrapped.Value, nil)
	if interp.IsAbrupt(sC) || sC.Value.AsString() != "false" {
		t.Fatalf("toString() = %v, want \"false\"", sC.Value)
	}
}
