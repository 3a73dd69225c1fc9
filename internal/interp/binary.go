package interp

import (
	"math"
	"math/big"

	"github.com/funvibe/ecmacore/internal/ast"
)

func (e *Evaluator) evalBinaryExpression(ec *ExecutionContext, n *ast.BinaryExpression) Completion {
	if n.Operator == "in" {
		return e.evalInOperator(ec, n)
	}
	if n.Operator == "instanceof" {
		return e.evalInstanceofOperator(ec, n)
	}
	leftC := e.refToValue(ec, e.Eval(ec, n.Left))
	if IsAbrupt(leftC) {
		return leftC
	}
	rightC := e.refToValue(ec, e.Eval(ec, n.Right))
	if IsAbrupt(rightC) {
		return rightC
	}
	return ApplyBinaryOperator(ec.Realm, n.Operator, leftC.Value, rightC.Value)
}

func (e *Evaluator) evalInOperator(ec *ExecutionContext, n *ast.BinaryExpression) Completion {
	if priv, ok := n.Left.(*ast.PrivateIdentifier); ok {
		pn, found := e.resolvePrivateName(ec, priv.Name)
		if !found {
			return ThrowCompletion(ec.Realm.NewSyntaxError("Private field '#" + priv.Name + "' must be declared in an enclosing class"))
		}
		rightC := e.refToValue(ec, e.Eval(ec, n.Right))
		if IsAbrupt(rightC) {
			return rightC
		}
		if !rightC.Value.IsObject() {
			return ThrowCompletion(ec.Realm.NewTypeError("Cannot use 'in' operator on non-object"))
		}
		return NormalCompletion(Bool(PrivateElementFind(rightC.Value.AsObject(), pn)))
	}
	leftC := e.refToValue(ec, e.Eval(ec, n.Left))
	if IsAbrupt(leftC) {
		return leftC
	}
	rightC := e.refToValue(ec, e.Eval(ec, n.Right))
	if IsAbrupt(rightC) {
		return rightC
	}
	if !rightC.Value.IsObject() {
		return ThrowCompletion(ec.Realm.NewTypeError("Cannot use 'in' operator to search for '" + leftC.Value.AsString() + "' in non-object"))
	}
	keyC := ToPropertyKey(leftC.Value)
	if IsAbrupt(keyC) {
		return keyC
	}
	return NormalCompletion(Bool(rightC.Value.AsObject().HasProperty(keyC.Value.toPropertyKeyValue())))
}

func (e *Evaluator) evalInstanceofOperator(ec *ExecutionContext, n *ast.BinaryExpression) Completion {
	leftC := e.refToValue(ec, e.Eval(ec, n.Left))
	if IsAbrupt(leftC) {
		return leftC
	}
	rightC := e.refToValue(ec, e.Eval(ec, n.Right))
	if IsAbrupt(rightC) {
		return rightC
	}
	return InstanceofOperator(ec.Realm, leftC.Value, rightC.Value)
}

// InstanceofOperator implements InstanceofOperator(V, target), honoring
// a user-defined @@hasInstance before falling back to
// OrdinaryHasInstance (spec.md §8).
func InstanceofOperator(realm *Realm, v Value, target Value) Completion {
	if !target.IsObject() {
		return ThrowCompletion(realm.NewTypeError("Right-hand side of 'instanceof' is not an object"))
	}
	methodC := GetMethod(realm, target, SymbolKey(realm.WellKnownSymbol("hasInstance")))
	if IsAbrupt(methodC) {
		return methodC
	}
	if !methodC.Value.IsUndefined() {
		resC := methodC.Value.AsObject().Call(target, []Value{v})
		if IsAbrupt(resC) {
			return resC
		}
		return NormalCompletion(Bool(ToBoolean(resC.Value)))
	}
	if !target.IsCallable() {
		return ThrowCompletion(realm.NewTypeError("Right-hand side of 'instanceof' is not callable"))
	}
	return OrdinaryHasInstance(realm, target.AsObject(), v)
}

// OrdinaryHasInstance implements OrdinaryHasInstance(C, O): walk O's
// prototype chain looking for C.prototype, following a bound target
// function through to its underlying target first.
func OrdinaryHasInstance(realm *Realm, c *Object, o Value) Completion {
	if bt, ok := c.GetSlot("boundTargetFunction"); ok {
		return InstanceofOperator(realm, o, ObjectValue(bt.(*Object)))
	}
	if !o.IsObject() {
		return NormalCompletion(Bool(false))
	}
	protoC := c.Get(StringKey("prototype"), ObjectValue(c))
	if IsAbrupt(protoC) {
		return protoC
	}
	if !protoC.Value.IsObject() {
		return ThrowCompletion(realm.NewTypeError("Function has non-object prototype in instanceof check"))
	}
	proto := protoC.Value.AsObject()
	for cur := o.AsObject().GetPrototypeOf(); cur != nil; cur = cur.GetPrototypeOf() {
		if cur == proto {
			return NormalCompletion(Bool(true))
		}
	}
	return NormalCompletion(Bool(false))
}

// ApplyBinaryOperator implements the arithmetic/comparison/bitwise/
// string-concatenation operators (spec.md §8), applying ToPrimitive/
// ToNumeric coercion per operand pair the way the spec's individual
// runtime-semantics algorithms do.
func ApplyBinaryOperator(realm *Realm, op string, left, right Value) Completion {
	switch op {
	case "+":
		return applyAdd(realm, left, right)
	case "-", "*", "/", "%", "**", "&", "|", "^", "<<", ">>", ">>>":
		return applyNumericOperator(realm, op, left, right)
	case "==":
		return looseEquals(realm, left, right)
	case "!=":
		eqC := looseEquals(realm, left, right)
		if IsAbrupt(eqC) {
			return eqC
		}
		return NormalCompletion(Bool(!eqC.Value.AsBoolean()))
	case "===":
		return NormalCompletion(Bool(IsStrictlyEqual(left, right)))
	case "!==":
		return NormalCompletion(Bool(!IsStrictlyEqual(left, right)))
	case "<", ">", "<=", ">=":
		return applyRelational(realm, op, left, right)
	}
	assertNever("ApplyBinaryOperator: unknown operator " + op)
	return Completion{}
}

func applyAdd(realm *Realm, left, right Value) Completion {
	lprimC := ToPrimitive(left, HintDefault)
	if IsAbrupt(lprimC) {
		return lprimC
	}
	rprimC := ToPrimitive(right, HintDefault)
	if IsAbrupt(rprimC) {
		return rprimC
	}
	lp, rp := lprimC.Value, rprimC.Value
	if lp.IsString() || rp.IsString() {
		lsC := ToString(lp)
		if IsAbrupt(lsC) {
			return lsC
		}
		rsC := ToString(rp)
		if IsAbrupt(rsC) {
			return rsC
		}
		return NormalCompletion(String(lsC.Value.AsString() + rsC.Value.AsString()))
	}
	if lp.IsBigInt() || rp.IsBigInt() {
		if !lp.IsBigInt() || !rp.IsBigInt() {
			return ThrowCompletion(realm.NewTypeError("Cannot mix BigInt and other types"))
		}
		return NormalCompletion(BigIntValue(new(big.Int).Add(lp.AsBigInt(), rp.AsBigInt())))
	}
	lnC := ToNumber(lp)
	if IsAbrupt(lnC) {
		return lnC
	}
	rnC := ToNumber(rp)
	if IsAbrupt(rnC) {
		return rnC
	}
	return NormalCompletion(Number(lnC.Value.AsNumber() + rnC.Value.AsNumber()))
}

func applyNumericOperator(realm *Realm, op string, left, right Value) Completion {
	lprimC := ToPrimitive(left, HintNumber)
	if IsAbrupt(lprimC) {
		return lprimC
	}
	rprimC := ToPrimitive(right, HintNumber)
	if IsAbrupt(rprimC) {
		return rprimC
	}
	if lprimC.Value.IsBigInt() || rprimC.Value.IsBigInt() {
		if !lprimC.Value.IsBigInt() || !rprimC.Value.IsBigInt() {
			return ThrowCompletion(realm.NewTypeError("Cannot mix BigInt and other types"))
		}
		return applyBigIntOperator(realm, op, lprimC.Value.AsBigInt(), rprimC.Value.AsBigInt())
	}
	lnC := ToNumber(lprimC.Value)
	if IsAbrupt(lnC) {
		return lnC
	}
	rnC := ToNumber(rprimC.Value)
	if IsAbrupt(rnC) {
		return rnC
	}
	l, r := lnC.Value.AsNumber(), rnC.Value.AsNumber()
	switch op {
	case "-":
		return NormalCompletion(Number(l - r))
	case "*":
		return NormalCompletion(Number(l * r))
	case "/":
		return NormalCompletion(Number(l / r))
	case "%":
		return NormalCompletion(Number(math.Mod(l, r)))
	case "**":
		return NormalCompletion(Number(math.Pow(l, r)))
	case "&":
		return NormalCompletion(int32BitOp(l, r, func(a, b int32) int32 { return a & b }))
	case "|":
		return NormalCompletion(int32BitOp(l, r, func(a, b int32) int32 { return a | b }))
	case "^":
		return NormalCompletion(int32BitOp(l, r, func(a, b int32) int32 { return a ^ b }))
	case "<<":
		return NormalCompletion(int32ShiftOp(l, r, func(a int32, s uint32) int32 { return a << s }))
	case ">>":
		return NormalCompletion(int32ShiftOp(l, r, func(a int32, s uint32) int32 { return a >> s }))
	case ">>>":
		li := toUint32Trunc(l)
		s := toUint32Trunc(r) & 31
		return NormalCompletion(Number(float64(li >> s)))
	}
	assertNever("applyNumericOperator: unknown operator " + op)
	return Completion{}
}

func applyBigIntOperator(realm *Realm, op string, l, r *big.Int) Completion {
	switch op {
	case "-":
		return NormalCompletion(BigIntValue(new(big.Int).Sub(l, r)))
	case "*":
		return NormalCompletion(BigIntValue(new(big.Int).Mul(l, r)))
	case "/":
		if r.Sign() == 0 {
			return ThrowCompletion(realm.NewRangeError("Division by zero"))
		}
		return NormalCompletion(BigIntValue(new(big.Int).Quo(l, r)))
	case "%":
		if r.Sign() == 0 {
			return ThrowCompletion(realm.NewRangeError("Division by zero"))
		}
		return NormalCompletion(BigIntValue(new(big.Int).Rem(l, r)))
	case "**":
		if r.Sign() < 0 {
			return ThrowCompletion(realm.NewRangeError("Exponent must be non-negative"))
		}
		return NormalCompletion(BigIntValue(new(big.Int).Exp(l, r, nil)))
	case "&":
		return NormalCompletion(BigIntValue(new(big.Int).And(l, r)))
	case "|":
		return NormalCompletion(BigIntValue(new(big.Int).Or(l, r)))
	case "^":
		return NormalCompletion(BigIntValue(new(big.Int).Xor(l, r)))
	case "<<":
		return NormalCompletion(BigIntValue(new(big.Int).Lsh(l, uint(r.Int64()))))
	case ">>":
		return NormalCompletion(BigIntValue(new(big.Int).Rsh(l, uint(r.Int64()))))
	}
	return ThrowCompletion(realm.NewTypeError("BigInts have no unsigned right shift, use >> instead"))
}

func int32BitOp(l, r float64, op func(a, b int32) int32) Value {
	return Number(float64(op(int32(toUint32Trunc(l)), int32(toUint32Trunc(r)))))
}

func int32ShiftOp(l, r float64, op func(a int32, s uint32) int32) Value {
	shift := toUint32Trunc(r) & 31
	return Number(float64(op(int32(toUint32Trunc(l)), shift)))
}

func toUint32Trunc(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(f))
}

func applyRelational(realm *Realm, op string, left, right Value) Completion {
	lprimC := ToPrimitive(left, HintNumber)
	if IsAbrupt(lprimC) {
		return lprimC
	}
	rprimC := ToPrimitive(right, HintNumber)
	if IsAbrupt(rprimC) {
		return rprimC
	}
	lp, rp := lprimC.Value, rprimC.Value
	if lp.IsString() && rp.IsString() {
		cmp := lp.AsString() < rp.AsString()
		eq := lp.AsString() == rp.AsString()
		return relationalResult(op, cmp, eq, false)
	}
	if lp.IsBigInt() && rp.IsBigInt() {
		c := lp.AsBigInt().Cmp(rp.AsBigInt())
		return relationalResult(op, c < 0, c == 0, false)
	}
	lnC := ToNumber(lp)
	if IsAbrupt(lnC) {
		return lnC
	}
	rnC := ToNumber(rp)
	if IsAbrupt(rnC) {
		return rnC
	}
	l, r := lnC.Value.AsNumber(), rnC.Value.AsNumber()
	if math.IsNaN(l) || math.IsNaN(r) {
		return NormalCompletion(Bool(false))
	}
	switch op {
	case "<":
		return NormalCompletion(Bool(l < r))
	case ">":
		return NormalCompletion(Bool(l > r))
	case "<=":
		return NormalCompletion(Bool(l <= r))
	case ">=":
		return NormalCompletion(Bool(l >= r))
	}
	assertNever("applyRelational: unknown operator " + op)
	return Completion{}
}

func relationalResult(op string, lt, eq bool, nan bool) Completion {
	if nan {
		return NormalCompletion(Bool(false))
	}
	switch op {
	case "<":
		return NormalCompletion(Bool(lt))
	case ">":
		return NormalCompletion(Bool(!lt && !eq))
	case "<=":
		return NormalCompletion(Bool(lt || eq))
	case ">=":
		return NormalCompletion(Bool(!lt))
	}
	return NormalCompletion(Bool(false))
}

// looseEquals implements the Abstract Equality Comparison (== / !=).
func looseEquals(realm *Realm, x, y Value) Completion {
	if x.Kind() == y.Kind() {
		return NormalCompletion(Bool(IsStrictlyEqual(x, y)))
	}
	if x.IsNullish() && y.IsNullish() {
		return NormalCompletion(Bool(true))
	}
	if x.IsNullish() || y.IsNullish() {
		return NormalCompletion(Bool(false))
	}
	if x.IsNumber() && y.IsString() {
		ynC := ToNumber(y)
		if IsAbrupt(ynC) {
			return ynC
		}
		return NormalCompletion(Bool(x.AsNumber() == ynC.Value.AsNumber()))
	}
	if x.IsString() && y.IsNumber() {
		return looseEquals(realm, y, x)
	}
	if x.IsBigInt() && y.IsString() {
		n, ok := new(big.Int).SetString(y.AsString(), 10)
		if !ok {
			return NormalCompletion(Bool(false))
		}
		return NormalCompletion(Bool(x.AsBigInt().Cmp(n) == 0))
	}
	if x.IsString() && y.IsBigInt() {
		return looseEquals(realm, y, x)
	}
	if x.IsBoolean() {
		nC := ToNumber(x)
		if IsAbrupt(nC) {
			return nC
		}
		return looseEquals(realm, nC.Value, y)
	}
	if y.IsBoolean() {
		nC := ToNumber(y)
		if IsAbrupt(nC) {
			return nC
		}
		return looseEquals(realm, x, nC.Value)
	}
	if (x.IsNumber() || x.IsString() || x.IsBigInt() || x.IsSymbol()) && y.IsObject() {
		yPrimC := ToPrimitive(y, HintDefault)
		if IsAbrupt(yPrimC) {
			return yPrimC
		}
		return looseEquals(realm, x, yPrimC.Value)
	}
	if x.IsObject() && (y.IsNumber() || y.IsString() || y.IsBigInt() || y.IsSymbol()) {
		return looseEquals(realm, y, x)
	}
	if x.IsBigInt() && y.IsNumber() || x.IsNumber() && y.IsBigInt() {
		var bi *big.Int
		var num float64
		if x.IsBigInt() {
			bi, num = x.AsBigInt(), y.AsNumber()
		} else {
			bi, num = y.AsBigInt(), x.AsNumber()
		}
		if !isFiniteNumber(num) || num != math.Trunc(num) {
			return NormalCompletion(Bool(false))
		}
		return NormalCompletion(Bool(bi.Cmp(big.NewInt(int64(num))) == 0))
	}
	return NormalCompletion(Bool(false))
}
