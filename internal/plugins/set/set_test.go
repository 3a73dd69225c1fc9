package set_test

import (
	"context"
	"testing"

	"github.com/funvibe/ecmacore/internal/interp"
	"github.com/funvibe/ecmacore/internal/plugins/array"
	"github.com/funvibe/ecmacore/internal/plugins/iterator"
	"github.com/funvibe/ecmacore/internal/plugins/object"
	"github.com/funvibe/ecmacore/internal/plugins/set"
)

func newRealm(t *testing.T) *interp.Realm {
	t.Helper()
	vm := interp.NewVM(context.Background())
	realm := interp.NewRealm(vm)
	err := interp.RegisterPlugins(realm, []interp.Plugin{object.New(), iterator.New(), array.New(), set.New()})
	if err != nil {
		t.Fatalf("registering plugins: %v", err)
	}
	return realm
}

func TestSetRequiresNew(t *testing.T) {
	realm := newRealm(t)
	ctor := realm.Intrinsic("%Set%")
	c := ctor.Call(interp.Undefined(), nil)
	if !interp.IsAbrupt(c) {
		t.Fatal("Set() without new did not throw")
	}
}

func TestSetAddHasDeleteSize(t *testing.T) {
	realm := newRealm(t)
	ctor := realm.Intrinsic("%Set%")
	proto := realm.Intrinsic("%Set.prototype%")

	c := ctor.Construct(nil, ctor)
	if interp.IsAbrupt(c) {
		t.Fatalf("new Set() threw: %v", c)
	}
	s := c.Value

	add := proto.Get(interp.StringKey("add"), interp.ObjectValue(proto)).Value
	add.AsObject().Call(s, []interp.Value{interp.Number(1)})
	add.AsObject().Call(s, []interp.Value{interp.Number(1)})
	add.AsObject().Call(s, []interp.Value{interp.Number(2)})

	sizeDesc := proto.GetOwnProperty(interp.StringKey("size"))
	if sizeDesc == nil || sizeDesc.Get == nil {
		t.Fatal("size accessor missing")
	}
	sizeC := sizeDesc.Get.AsObject().Call(s, nil)
	if interp.IsAbrupt(sizeC) || sizeC.Value.AsNumber() != 2 {
		t.Fatalf("size = %v, want 2 (duplicate add should not grow the set)", sizeC.Value)
	}

	has := proto.Get(interp.StringKey("has"), interp.ObjectValue(proto)).Value
	hasC := has.AsObject().Call(s, []interp.Value{interp.Number(1)})
	if interp.IsAbrupt(hasC) || !hasC.Value.AsBoolean() {
		t.Fatalf("has(1) = %v, want true", hasC.Value)
	}

	del := proto.Get(interp.StringKey("delete"), interp.ObjectValue(proto)).Value
	delC := del.AsObject().Call(s, []interp.Value{interp.Number(1)})
	if interp.IsAbrupt(delC) || !delC.Value.AsBoolean() {
		t.Fatalf("delete(1) = %v, want true", delC.Value)
	}
	hasC = has.AsObject().Call(s, []interp.Value{interp.Number(1)})
	if interp.IsAbrupt(hasC) || hasC.Value.AsBoolean() {
		t.Fatalf("has(1) after delete = %v, want false", hasC.Value)
	}
}

func TestSetConstructFromIterable(t *testing.T) {
	realm := newRealm(t)
	ctor := realm.Intrinsic("%Set%")
	proto := realm.Intrinsic("%Set.prototype%")

	arr := interp.ArrayCreate(realm, 0)
	arr.CreateDataProperty(interp.StringKey("0"), interp.Number(1))
	arr.CreateDataProperty(interp.StringKey("1"), interp.Number(2))
	arr.CreateDataProperty(interp.StringKey("2"), interp.Number(1))

	c := ctor.Construct([]interp.Value{interp.ObjectValue(arr)}, ctor)
	if interp.IsAbrupt(c) {
		t.Fatalf("new Set([1,2,1]) threw: %v", c)
	}
	sizeDesc := proto.GetOwnProperty(interp.StringKey("size"))
	sizeC := sizeDesc.Get.AsObject().Call(c.Value, nil)
	if interp.IsAbrupt(sizeC) || sizeC.Value.AsNumber() != 2 {
		t.Fatalf("size = %v, want 2", sizeC.Value)
	}
}
