package iterator_test

import (
	"context"
	"testing"

	"github.com/funvibe/ecmacore/internal/interp"
	"github.com/funvibe/ecmacore/internal/plugins/iterator"
	"github.com/funvibe/ecmacore/internal/plugins/object"
)

func newRealm(t *testing.T) *interp.Realm {
	t.Helper()
	vm := interp.NewVM(context.Background())
	realm := interp.NewRealm(vm)
	if err := interp.RegisterPlugins(realm, []interp.Plugin{object.New(), iterator.New()}); err != nil {
		t.Fatalf("registering plugins: %v", err)
	}
	return realm
}

func TestIteratorPrototypeRegistered(t *testing.T) {
	realm := newRealm(t)
	for _, name := range []string{"%IteratorPrototype%", "%GeneratorPrototype%", "%ArrayIteratorPrototype%"} {
		if realm.Intrinsic(name) == nil {
			t.Fatalf("%s not registered", name)
		}
	}
}

func TestIteratorPrototypeChain(t *testing.T) {
	realm := newRealm(t)
	iterProto := realm.Intrinsic("%IteratorPrototype%")
	genProto := realm.Intrinsic("%GeneratorPrototype%")
	arrIterProto := realm.Intrinsic("%ArrayIteratorPrototype%")

	if genProto.GetPrototypeOf() != iterProto {
		t.Fatalf("%%GeneratorPrototype%%'s [[Prototype]] is not %%IteratorPrototype%%")
	}
	if arrIterProto.GetPrototypeOf() != iterProto {
		t.Fatalf("%%ArrayIteratorPrototype%%'s [[Prototype]] is not %%IteratorPrototype%%")
	}
}

func TestIteratorPrototypeSelfIterable(t *testing.T) {
	realm := newRealm(t)
	iterProto := realm.Intrinsic("%IteratorPrototype%")

	symIter := realm.WellKnownSymbol("iterator")
	method := iterProto.Get(interp.SymbolKey(symIter), interp.ObjectValue(iterProto))
	if interp.IsAbrupt(method) || !method.Value.IsCallable() {
		t.Fatalf("%%IteratorPrototype%%[Symbol.iterator] missing or not callable")
	}
	c := method.Value.AsObject().Call(interp.ObjectValue(iterProto), nil)
	if interp.IsAbrupt(c) {
		t.Fatalf("[Symbol.iterator]() threw: %v", c)
	}
	if c.Value.AsObject() != iterProto {
		t.Fatalf("[Symbol.iterator]() did not return `this`")
	}
}
