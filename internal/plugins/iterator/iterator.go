// Package iterator wires %IteratorPrototype% and %GeneratorPrototype%,
// the shared prototypes every iterable/generator object's own
// per-instance methods (installed directly by internal/interp's
// generator machinery) chain up to.
package iterator

import "github.com/funvibe/ecmacore/internal/interp"

const ID = "iterator"

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (*Plugin) ID() string             { return ID }
func (*Plugin) Dependencies() []string { return []string{"object"} }

func (*Plugin) CreateIntrinsics(realm *interp.Realm, staged *interp.StagedGlobals) error {
	objectProto := realm.Intrinsic("%Object.prototype%")

	iterProto := interp.OrdinaryObjectCreate(objectProto)
	iterProto.Realm = realm
	iterProto.CreateMethodProperty(interp.SymbolKey(realm.WellKnownSymbol("iterator")), interp.ObjectValue(interp.NativeFunction(realm, "[Symbol.iterator]", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		return interp.NormalCompletion(this)
	})))
	realm.SetIntrinsic("%IteratorPrototype%", iterProto)

	genProto := interp.OrdinaryObjectCreate(iterProto)
	genProto.Realm = realm
	realm.SetIntrinsic("%GeneratorPrototype%", genProto)

	arrayIterProto := interp.OrdinaryObjectCreate(iterProto)
	arrayIterProto.Realm = realm
	realm.SetIntrinsic("%ArrayIteratorPrototype%", arrayIterProto)

	return nil
}
