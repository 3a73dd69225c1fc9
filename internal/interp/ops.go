package interp

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// SameValue implements the SameValue algorithm (used by
// ValidateAndApplyPropertyDescriptor and Object.is): unlike ===, it
// distinguishes +0/-0 and treats NaN as equal to itself.
func SameValue(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindNumber:
		if math.IsNaN(a.n) && math.IsNaN(b.n) {
			return true
		}
		if a.n == 0 && b.n == 0 {
			return math.Signbit(a.n) == math.Signbit(b.n)
		}
		return a.n == b.n
	case KindBigInt:
		return a.big.Cmp(b.big) == 0
	case KindString:
		return a.str == b.str
	case KindSymbol:
		return a.sym == b.sym
	case KindObject:
		return a.obj == b.obj
	}
	return false
}

// SameValueZero is SameValue except +0 and -0 compare equal (used by
// Array.prototype.includes and Set/Map key comparison).
func SameValueZero(a, b Value) bool {
	if a.kind == KindNumber && b.kind == KindNumber {
		if math.IsNaN(a.n) && math.IsNaN(b.n) {
			return true
		}
		return a.n == b.n
	}
	return SameValue(a, b)
}

// IsStrictlyEqual implements the === algorithm.
func IsStrictlyEqual(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindBigInt:
		return a.big.Cmp(b.big) == 0
	case KindString:
		return a.str == b.str
	case KindSymbol:
		return a.sym == b.sym
	case KindObject:
		return a.obj == b.obj
	}
	return false
}

// ToBoolean implements ToBoolean.
func ToBoolean(v Value) bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.b
	case KindNumber:
		return v.n != 0 && !math.IsNaN(v.n)
	case KindBigInt:
		return v.big.Sign() != 0
	case KindString:
		return v.str != ""
	case KindSymbol, KindObject:
		return true
	}
	return false
}

// PreferredHint is the hint passed to ToPrimitive / Symbol.toPrimitive.
type PreferredHint string

const (
	HintDefault PreferredHint = "default"
	HintNumber  PreferredHint = "number"
	HintString  PreferredHint = "string"
)

// ToPrimitive implements OrdinaryToPrimitive plus the @@toPrimitive
// lookup, trying methods in hint order and falling through on a
// non-callable or non-primitive result.
func ToPrimitive(v Value, hint PreferredHint) Completion {
	if !v.IsObject() {
		return NormalCompletion(v)
	}
	o := v.AsObject()
	if o.Realm != nil {
		exotic := o.Realm.WellKnownSymbol("toPrimitive")
		methodC := GetMethod(o.Realm, v, SymbolKey(exotic))
		if IsAbrupt(methodC) {
			return methodC
		}
		if !methodC.Value.IsUndefined() {
			h := hint
			if h == "" {
				h = HintDefault
			}
			result := methodC.Value.AsObject().Call(v, []Value{String(string(h))})
			if IsAbrupt(result) {
				return result
			}
			if result.Value.IsObject() {
				return ThrowCompletion(o.Realm.NewTypeError("Cannot convert object to primitive value"))
			}
			return result
		}
	}
	if hint == "" || hint == HintDefault {
		hint = HintNumber
	}
	return ordinaryToPrimitive(o, hint)
}

func ordinaryToPrimitive(o *Object, hint PreferredHint) Completion {
	methodNames := []string{"valueOf", "toString"}
	if hint == HintString {
		methodNames = []string{"toString", "valueOf"}
	}
	for _, name := range methodNames {
		methodC := o.Get(StringKey(name), ObjectValue(o))
		if IsAbrupt(methodC) {
			return methodC
		}
		if methodC.Value.IsCallable() {
			result := methodC.Value.AsObject().Call(ObjectValue(o), nil)
			if IsAbrupt(result) {
				return result
			}
			if !result.Value.IsObject() {
				return result
			}
		}
	}
	if o.Realm != nil {
		return ThrowCompletion(o.Realm.NewTypeError("Cannot convert object to primitive value"))
	}
	assertNever("ToPrimitive: no realm to report failure")
	return Completion{}
}

// GetMethod implements GetMethod(V, P): fetch V[P] and require it be
// callable or undefined.
func GetMethod(realm *Realm, v Value, p PropertyKey) Completion {
	objC := ToObject(realm, v)
	if IsAbrupt(objC) {
		return objC
	}
	base := objC.Value.AsObject()
	funcC := base.Get(p, v)
	if IsAbrupt(funcC) {
		return funcC
	}
	if funcC.Value.IsNullish() {
		return NormalCompletion(Undefined())
	}
	if !funcC.Value.IsCallable() {
		return ThrowCompletion(realm.NewTypeError(p.String() + " is not a function"))
	}
	return funcC
}

// ToNumber implements ToNumber for the subset of types this core's
// abstract operations need to convert (numbers, booleans, strings,
// undefined, null, objects via ToPrimitive(hint=number); bigint throws,
// matching the spec's explicit TypeError for ToNumber(bigint)).
func ToNumber(v Value) Completion {
	switch v.kind {
	case KindNumber:
		return NormalCompletion(v)
	case KindUndefined:
		return NormalCompletion(Number(math.NaN()))
	case KindNull:
		return NormalCompletion(Number(0))
	case KindBoolean:
		if v.b {
			return NormalCompletion(Number(1))
		}
		return NormalCompletion(Number(0))
	case KindString:
		return NormalCompletion(Number(stringToNumber(v.str)))
	case KindBigInt:
		return ThrowCompletion(Undefined())
	case KindSymbol:
		return ThrowCompletion(Undefined())
	case KindObject:
		prim := ToPrimitive(v, HintNumber)
		if IsAbrupt(prim) {
			return prim
		}
		return ToNumber(prim.Value)
	}
	return NormalCompletion(Number(math.NaN()))
}

func stringToNumber(s string) float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0
	}
	if t == "Infinity" || t == "+Infinity" {
		return math.Inf(1)
	}
	if t == "-Infinity" {
		return math.Inf(-1)
	}
	n, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

// ToString implements ToString for primitives and, for objects, via
// ToPrimitive(hint=string).
func ToString(v Value) Completion {
	switch v.kind {
	case KindString:
		return NormalCompletion(v)
	case KindUndefined:
		return NormalCompletion(String("undefined"))
	case KindNull:
		return NormalCompletion(String("null"))
	case KindBoolean:
		if v.b {
			return NormalCompletion(String("true"))
		}
		return NormalCompletion(String("false"))
	case KindNumber:
		return NormalCompletion(String(NumberToString(v.n)))
	case KindBigInt:
		return NormalCompletion(String(v.big.String()))
	case KindSymbol:
		return ThrowCompletion(Undefined())
	case KindObject:
		prim := ToPrimitive(v, HintString)
		if IsAbrupt(prim) {
			return prim
		}
		return ToString(prim.Value)
	}
	return NormalCompletion(String(""))
}

// NumberToString renders n the way ECMAScript's Number::toString does
// for the common cases (no exponential-notation edge cases beyond what
// strconv already matches).
func NumberToString(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if n == 0 {
		if math.Signbit(n) {
			return "0"
		}
		return "0"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// ToPropertyKey implements ToPropertyKey: symbols pass through, other
// values convert via ToString. Callers recover the PropertyKey itself
// via Value.toPropertyKeyValue() once the completion is known normal.
func ToPropertyKey(v Value) Completion {
	if v.IsSymbol() {
		return NormalCompletion(v)
	}
	return ToString(v)
}

// ToUint32 implements ToUint32 via the ToNumber -> modulo 2^32 pipeline.
func ToUint32(v Value) (uint32, Completion) {
	nC := ToNumber(v)
	if IsAbrupt(nC) {
		return 0, nC
	}
	n := nC.Value.AsNumber()
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 0, Completion{}
	}
	n = math.Trunc(n)
	m := math.Mod(n, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return uint32(m), Completion{}
}

// ToIntegerOrInfinity implements ToIntegerOrInfinity.
func ToIntegerOrInfinity(v Value) (float64, Completion) {
	nC := ToNumber(v)
	if IsAbrupt(nC) {
		return 0, nC
	}
	n := nC.Value.AsNumber()
	if math.IsNaN(n) {
		return 0, Completion{}
	}
	if math.IsInf(n, 0) {
		return n, Completion{}
	}
	return math.Trunc(n), Completion{}
}

// ToObject implements ToObject, wrapping primitives in the realm's
// corresponding wrapper prototype (Boolean is specified in this core;
// Number/String wrapper construction falls back to a plain object with
// the matching prototype since String.prototype/Number.prototype are
// outside this core's plugin set — see spec.md §1).
func ToObject(realm *Realm, v Value) Completion {
	switch v.kind {
	case KindUndefined, KindNull:
		return ThrowCompletion(realm.NewTypeError("Cannot convert undefined or null to object"))
	case KindObject:
		return NormalCompletion(v)
	case KindBoolean:
		o := OrdinaryObjectCreate(realm.Intrinsic("%Boolean.prototype%"))
		o.SetSlot("booleanData", v)
		o.Realm = realm
		return NormalCompletion(ObjectValue(o))
	default:
		o := OrdinaryObjectCreate(realm.Intrinsic("%Object.prototype%"))
		o.SetSlot("PrimitiveData", v)
		o.Realm = realm
		return NormalCompletion(ObjectValue(o))
	}
}

// RequireObjectCoercible implements RequireObjectCoercible.
func RequireObjectCoercible(realm *Realm, v Value) Completion {
	if v.IsNullish() {
		return ThrowCompletion(realm.NewTypeError("Cannot convert undefined or null to object"))
	}
	return NormalCompletion(v)
}

// big helpers used by bigint-aware arithmetic in the evaluator.
func bigFromInt64(n int64) *big.Int { return big.NewInt(n) }
