// Package interp implements the core evaluation engine: the value model,
// completion/reference discipline, environment and realm machinery, the
// object protocols, the function call/construct protocol, class
// definition, and the step-driven evaluator that threads them together.
package interp

import (
	"math/big"

	"github.com/google/uuid"
)

// ValueKind discriminates the Value sum type.
type ValueKind uint8

const (
	KindUndefined ValueKind = iota
	KindNull
	KindBoolean
	KindNumber
	KindBigInt
	KindString
	KindSymbol
	KindObject
	// KindReference is not an ECMAScript language type — it tags a
	// Completion's Value as carrying an unresolved Reference Record
	// (spec.md §4.1) rather than a language value, for expression
	// positions (assignment targets, delete, typeof) that need the
	// reference itself rather than GetValue's result.
	KindReference
)

// Symbol is a unique-identity primitive with an optional description.
// Two symbols are never SameValue equal, even with identical
// descriptions; identity is carried by id, not Description.
type Symbol struct {
	id          uuid.UUID
	Description string
}

func NewSymbol(description string) *Symbol {
	return &Symbol{id: uuid.New(), Description: description}
}

func (s *Symbol) String() string {
	if s.Description == "" {
		return "Symbol()"
	}
	return "Symbol(" + s.Description + ")"
}

// Value is the ECMAScript value: undefined, null, boolean, number,
// bigint, string, symbol, or an object reference.
type Value struct {
	kind ValueKind
	b    bool
	n    float64
	big  *big.Int
	str  string
	sym  *Symbol
	obj  *Object
	ref  *Reference
}

var undefinedValue = Value{kind: KindUndefined}
var nullValue = Value{kind: KindNull}

func Undefined() Value { return undefinedValue }
func Null() Value      { return nullValue }

func Bool(b bool) Value   { return Value{kind: KindBoolean, b: b} }
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }
func BigIntValue(b *big.Int) Value { return Value{kind: KindBigInt, big: b} }
func String(s string) Value { return Value{kind: KindString, str: s} }
func SymbolValue(s *Symbol) Value { return Value{kind: KindSymbol, sym: s} }
func ObjectValue(o *Object) Value {
	if o == nil {
		return Undefined()
	}
	return Value{kind: KindObject, obj: o}
}

// ReferenceValue wraps a Reference Record so it can travel through a
// Completion's Value slot (spec.md §4.1).
func ReferenceValue(r *Reference) Value { return Value{kind: KindReference, ref: r} }

// refHolder reports whether v carries a Reference, returning it if so.
func (v Value) refHolder() (*Reference, bool) {
	if v.kind == KindReference {
		return v.ref, true
	}
	return nil, false
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsNullish() bool   { return v.kind == KindUndefined || v.kind == KindNull }
func (v Value) IsBoolean() bool   { return v.kind == KindBoolean }
func (v Value) IsNumber() bool    { return v.kind == KindNumber }
func (v Value) IsBigInt() bool    { return v.kind == KindBigInt }
func (v Value) IsString() bool    { return v.kind == KindString }
func (v Value) IsSymbol() bool    { return v.kind == KindSymbol }
func (v Value) IsObject() bool    { return v.kind == KindObject }
func (v Value) IsPrimitive() bool { return v.kind != KindObject }

func (v Value) AsBoolean() bool    { return v.b }
func (v Value) AsNumber() float64  { return v.n }
func (v Value) AsBigInt() *big.Int { return v.big }
func (v Value) AsString() string   { return v.str }
func (v Value) AsSymbol() *Symbol  { return v.sym }
func (v Value) AsObject() *Object  { return v.obj }

// IsCallable reports whether v is an object with a [[Call]] internal method.
func (v Value) IsCallable() bool {
	return v.kind == KindObject && v.obj != nil && v.obj.Call != nil
}

// IsConstructor reports whether v is an object with a [[Construct]]
// internal method.
func (v Value) IsConstructor() bool {
	return v.kind == KindObject && v.obj != nil && v.obj.Construct != nil
}

// TypeOf implements the `typeof` operator's string result.
func (v Value) TypeOf() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "object"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindObject:
		if v.obj.Call != nil {
			return "function"
		}
		return "object"
	}
	return "undefined"
}

// PropertyKey is a string or symbol used to key an own-property map.
type PropertyKey struct {
	isSymbol bool
	str      string
	sym      *Symbol
}

func StringKey(s string) PropertyKey { return PropertyKey{str: s} }
func SymbolKey(s *Symbol) PropertyKey { return PropertyKey{isSymbol: true, sym: s} }

func (k PropertyKey) IsSymbol() bool  { return k.isSymbol }
func (k PropertyKey) String() string  { return k.str }
func (k PropertyKey) Symbol() *Symbol { return k.sym }

// ToValue renders the key back as a Value (for Reflect.ownKeys
// style consumers and error messages).
func (k PropertyKey) ToValue() Value {
	if k.isSymbol {
		return SymbolValue(k.sym)
	}
	return String(k.str)
}

// toPropertyKeyValue converts a value already coerced by ToPropertyKey
// (guaranteed string or symbol) into a PropertyKey.
func (v Value) toPropertyKeyValue() PropertyKey {
	if v.kind == KindSymbol {
		return SymbolKey(v.sym)
	}
	return StringKey(v.str)
}

// Equal compares two property keys for identity (string equality or
// symbol identity).
func (k PropertyKey) Equal(other PropertyKey) bool {
	if k.isSymbol != other.isSymbol {
		return false
	}
	if k.isSymbol {
		return k.sym == other.sym
	}
	return k.str == other.str
}
