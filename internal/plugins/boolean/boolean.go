// Package boolean wires the Boolean constructor and Boolean.prototype.
package boolean

import "github.com/funvibe/ecmacore/internal/interp"

const ID = "boolean"

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (*Plugin) ID() string             { return ID }
func (*Plugin) Dependencies() []string { return []string{"object"} }

func (*Plugin) CreateIntrinsics(realm *interp.Realm, staged *interp.StagedGlobals) error {
	objectProto := realm.Intrinsic("%Object.prototype%")

	proto := interp.OrdinaryObjectCreate(objectProto)
	proto.Realm = realm
	proto.SetSlot("booleanData", interp.Bool(false))
	realm.SetIntrinsic("%Boolean.prototype%", proto)

	proto.CreateMethodProperty(interp.StringKey("toString"), interp.ObjectValue(interp.NativeFunction(realm, "toString", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		b, c := thisBooleanValue(realm, this)
		if interp.IsAbrupt(c) {
			return c
		}
		if b {
			return interp.NormalCompletion(interp.String("true"))
		}
		return interp.NormalCompletion(interp.String("false"))
	})))
	proto.CreateMethodProperty(interp.StringKey("valueOf"), interp.ObjectValue(interp.NativeFunction(realm, "valueOf", 0, func(this interp.Value, args []interp.Value) interp.Completion {
		b, c := thisBooleanValue(realm, this)
		if interp.IsAbrupt(c) {
			return c
		}
		return interp.NormalCompletion(interp.Bool(b))
	})))

	ctor := interp.NativeConstructor(realm, "Boolean", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		return interp.NormalCompletion(interp.Bool(interp.ToBoolean(arg(args, 0))))
	}, func(args []interp.Value, newTarget *interp.Object) interp.Completion {
		o := interp.OrdinaryObjectCreate(proto)
		o.Realm = realm
		o.SetSlot("booleanData", interp.Bool(interp.ToBoolean(arg(args, 0))))
		return interp.NormalCompletion(interp.ObjectValue(o))
	})
	ctor.DefineOwnProperty(interp.StringKey("prototype"), &interp.PropertyDescriptor{
		Value: ptr(interp.ObjectValue(proto)), Writable: boolPtr(false), Configurable: boolPtr(false),
	})
	proto.CreateMethodProperty(interp.StringKey("constructor"), interp.ObjectValue(ctor))
	realm.SetIntrinsic("%Boolean%", ctor)
	staged.Stage("Boolean", interp.ObjectValue(ctor))
	return nil
}

func thisBooleanValue(realm *interp.Realm, v interp.Value) (bool, interp.Completion) {
	if v.IsBoolean() {
		return v.AsBoolean(), interp.Completion{}
	}
	if v.IsObject() {
		if slot, ok := v.AsObject().GetSlot("booleanData"); ok {
			return slot.(interp.Value).AsBoolean(), interp.Completion{}
		}
	}
	return false, interp.ThrowCompletion(realm.NewTypeError("not a Boolean"))
}

func arg(args []interp.Value, i int) interp.Value {
	if i < len(args) {
		return args[i]
	}
	return interp.Undefined()
}

func ptr(v interp.Value) *interp.Value { return &v }
func boolPtr(b bool) *bool             { return &b }
