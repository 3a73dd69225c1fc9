package interp

import "strconv"

// ArrayCreate allocates a new Array exotic object with own property
// "length" as a non-configurable writable data property (spec.md §3
// invariant 2, §4.3).
func ArrayCreate(realm *Realm, length uint32) *Object {
	o := OrdinaryObjectCreate(realm.Intrinsic("%Array.prototype%"))
	o.Exotic = ExoticArray
	o.Realm = realm
	o.installProperty(StringKey("length"), DataDescriptor(Number(float64(length)), true, false, false))
	return o
}

func arrayLengthOf(o *Object) uint32 {
	d := o.GetOwnProperty(StringKey("length"))
	if d == nil || d.Value == nil {
		return 0
	}
	return uint32(d.Value.AsNumber())
}

// arraySetDefineOwnProperty implements the Array exotic
// [[DefineOwnProperty]] (spec.md §4.3): the "length" key runs
// ArraySetLength, an array-index key may bump length, everything else
// delegates to the ordinary algorithm.
func arraySetDefineOwnProperty(o *Object, p PropertyKey, desc *PropertyDescriptor) Completion {
	if !p.IsSymbol() && p.String() == "length" {
		return arraySetLength(o, desc)
	}
	if !p.IsSymbol() {
		if idx, ok := canonicalArrayIndex(p.String()); ok {
			lengthDesc := o.GetOwnProperty(StringKey("length"))
			oldLen := uint32(lengthDesc.Value.AsNumber())
			if idx >= oldLen && !boolOr(lengthDesc.Writable, false) {
				return NormalCompletion(Bool(false))
			}
			if !o.ordinaryDefineOwnProperty(p, desc) {
				return NormalCompletion(Bool(false))
			}
			if idx >= oldLen {
				newLenDesc := &PropertyDescriptor{Value: valuePtr(Number(float64(idx) + 1))}
				o.ordinaryDefineOwnProperty(StringKey("length"), newLenDesc)
			}
			return NormalCompletion(Bool(true))
		}
	}
	return NormalCompletion(Bool(o.ordinaryDefineOwnProperty(p, desc)))
}

// arraySetLength implements ArraySetLength (spec.md §4.3), including the
// spec-mandated double ToUint32/ToNumber coercion (rejecting a "length"
// value that doesn't round-trip, by throwing RangeError), descending-
// order deletion with partial-truncation on the first non-deletable
// element, and the Writable-deferral step. Two versions of this
// algorithm appeared in the teacher's original source — one retaining
// the Writable-deferral step, one eliding it; this is the
// spec-compliant form per spec.md §9.
func arraySetLength(o *Object, desc *PropertyDescriptor) Completion {
	if desc.Value == nil {
		return NormalCompletion(Bool(o.ordinaryDefineOwnProperty(StringKey("length"), desc)))
	}
	newLenUint, c := ToUint32(*desc.Value)
	if IsAbrupt(c) {
		return c
	}
	numberC := ToNumber(*desc.Value)
	if IsAbrupt(numberC) {
		return numberC
	}
	if float64(newLenUint) != numberC.Value.AsNumber() {
		return ThrowCompletion(o.Realm.NewRangeError("Invalid array length"))
	}

	newLenDesc := *desc
	newLenDesc.Value = valuePtr(Number(float64(newLenUint)))

	oldLenDesc := o.GetOwnProperty(StringKey("length"))
	oldLen := uint32(oldLenDesc.Value.AsNumber())

	if newLenUint >= oldLen {
		return NormalCompletion(Bool(o.ordinaryDefineOwnProperty(StringKey("length"), &newLenDesc)))
	}
	if !boolOr(oldLenDesc.Writable, false) {
		return NormalCompletion(Bool(false))
	}

	deferWritableFalse := false
	if newLenDesc.Writable != nil && !*newLenDesc.Writable {
		deferWritableFalse = true
		newLenDesc.Writable = boolPtr(true)
	}

	if !o.ordinaryDefineOwnProperty(StringKey("length"), &newLenDesc) {
		return NormalCompletion(Bool(false))
	}

	for _, idx := range descendingIndicesAtOrAbove(o, newLenUint) {
		key := StringKey(strconv.FormatUint(uint64(idx), 10))
		if !o.Delete(key) {
			final := &PropertyDescriptor{Value: valuePtr(Number(float64(idx) + 1))}
			if deferWritableFalse {
				final.Writable = boolPtr(false)
			}
			o.ordinaryDefineOwnProperty(StringKey("length"), final)
			return NormalCompletion(Bool(false))
		}
	}

	if deferWritableFalse {
		final := &PropertyDescriptor{Writable: boolPtr(false)}
		o.ordinaryDefineOwnProperty(StringKey("length"), final)
	}
	return NormalCompletion(Bool(true))
}

// descendingIndicesAtOrAbove returns a snapshot of this array's own
// array-index keys >= floor, from highest to lowest, so deletion order
// is stable even as keys are removed mid-iteration.
func descendingIndicesAtOrAbove(o *Object, floor uint32) []uint32 {
	out := make([]uint32, 0, len(o.arrayKeys))
	for i := len(o.arrayKeys) - 1; i >= 0; i-- {
		if o.arrayKeys[i] >= floor {
			out = append(out, o.arrayKeys[i])
		}
	}
	return out
}

// IsArray implements IsArray(argument).
func IsArray(v Value) bool {
	return v.IsObject() && v.AsObject().Exotic == ExoticArray
}

// ArraySpeciesCreate implements ArraySpeciesCreate(originalArray, length):
// honors a user-defined @@species constructor, falling back to an
// ordinary Array (spec.md §8 property 7).
func ArraySpeciesCreate(realm *Realm, originalArray *Object, length uint32) Completion {
	if !IsArray(ObjectValue(originalArray)) {
		return NormalCompletion(ObjectValue(ArrayCreate(realm, length)))
	}
	ctorC := originalArray.Get(StringKey("constructor"), ObjectValue(originalArray))
	if IsAbrupt(ctorC) {
		return ctorC
	}
	ctor := ctorC.Value
	if ctor.IsObject() && SameValue(ctor, ObjectValue(realm.Intrinsic("%Array%"))) {
		return NormalCompletion(ObjectValue(ArrayCreate(realm, length)))
	}
	if ctor.IsObject() {
		speciesKey := SymbolKey(realm.WellKnownSymbol("species"))
		speciesC := ctor.AsObject().Get(speciesKey, ctor)
		if IsAbrupt(speciesC) {
			return speciesC
		}
		if speciesC.Value.IsNullish() {
			ctor = Undefined()
		} else {
			ctor = speciesC.Value
		}
	}
	if ctor.IsUndefined() {
		return NormalCompletion(ObjectValue(ArrayCreate(realm, length)))
	}
	if !ctor.IsConstructor() {
		return ThrowCompletion(realm.NewTypeError("species constructor is not a constructor"))
	}
	return ctor.AsObject().Construct([]Value{Number(float64(length))}, ctor.AsObject())
}
