package interp

// ---- Iterator protocol (spec.md §4.8) ----

// GetIterator implements GetIterator(obj): look up @@iterator, call it,
// and require the result to be an object.
func GetIterator(realm *Realm, obj Value) (*Object, Completion) {
	methodC := GetMethod(realm, obj, SymbolKey(realm.WellKnownSymbol("iterator")))
	if IsAbrupt(methodC) {
		return nil, methodC
	}
	if methodC.Value.IsUndefined() {
		return nil, ThrowCompletion(realm.NewTypeError(obj.TypeOf() + " is not iterable"))
	}
	iterC := methodC.Value.AsObject().Call(obj, nil)
	if IsAbrupt(iterC) {
		return nil, iterC
	}
	if !iterC.Value.IsObject() {
		return nil, ThrowCompletion(realm.NewTypeError("Result of the Symbol.iterator method is not an object"))
	}
	return iterC.Value.AsObject(), NormalCompletion(Undefined())
}

// IteratorNext calls iterator.next(value...), requiring an object result.
func IteratorNext(realm *Realm, iterator *Object, value *Value) (*Object, Completion) {
	nextC := iterator.Get(StringKey("next"), ObjectValue(iterator))
	if IsAbrupt(nextC) {
		return nil, nextC
	}
	var args []Value
	if value != nil {
		args = []Value{*value}
	}
	resultC := nextC.Value.AsObject().Call(ObjectValue(iterator), args)
	if IsAbrupt(resultC) {
		return nil, resultC
	}
	if !resultC.Value.IsObject() {
		return nil, ThrowCompletion(realm.NewTypeError("Iterator result is not an object"))
	}
	return resultC.Value.AsObject(), NormalCompletion(Undefined())
}

func IteratorComplete(realm *Realm, result *Object) (bool, Completion) {
	doneC := result.Get(StringKey("done"), ObjectValue(result))
	if IsAbrupt(doneC) {
		return false, doneC
	}
	return ToBoolean(doneC.Value), NormalCompletion(Undefined())
}

func IteratorValue(realm *Realm, result *Object) (Value, Completion) {
	c := result.Get(StringKey("value"), ObjectValue(result))
	if IsAbrupt(c) {
		return Value{}, c
	}
	return c.Value, NormalCompletion(Undefined())
}

// IteratorStep calls next and returns (result, false/true-done, completion).
func IteratorStep(realm *Realm, iterator *Object) (*Object, bool, Completion) {
	result, c := IteratorNext(realm, iterator, nil)
	if IsAbrupt(c) {
		return nil, false, c
	}
	done, c2 := IteratorComplete(realm, result)
	if IsAbrupt(c2) {
		return nil, false, c2
	}
	return result, done, NormalCompletion(Undefined())
}

// IteratorClose calls iterator.return() (if present) after an abrupt
// completion broke out of a for-of loop or destructuring, per spec.md
// §4.8's close-on-abrupt-completion rule. completion is the pending
// abrupt completion to preserve/re-raise.
func IteratorClose(realm *Realm, iterator *Object, completion Completion) Completion {
	returnC := iterator.Get(StringKey("return"), ObjectValue(iterator))
	if IsAbrupt(returnC) {
		return returnC
	}
	if returnC.Value.IsNullish() {
		return completion
	}
	innerResultC := returnC.Value.AsObject().Call(ObjectValue(iterator), nil)
	if IsAbrupt(completion) {
		return completion
	}
	if IsAbrupt(innerResultC) {
		return innerResultC
	}
	if !innerResultC.Value.IsObject() {
		return ThrowCompletion(realm.NewTypeError("Iterator result is not an object"))
	}
	return completion
}

// IterableToList drains obj's iterator into a Go slice (spread in array
// literals, call arguments, and destructuring all reduce to this).
func IterableToList(realm *Realm, obj Value) ([]Value, Completion) {
	iterator, c := GetIterator(realm, obj)
	if IsAbrupt(c) {
		return nil, c
	}
	var out []Value
	for {
		result, done, c := IteratorStep(realm, iterator)
		if IsAbrupt(c) {
			return nil, c
		}
		if done {
			return out, NormalCompletion(Undefined())
		}
		v, c := IteratorValue(realm, result)
		if IsAbrupt(c) {
			return nil, c
		}
		out = append(out, v)
	}
}

// CreateIteratorResultObject builds a plain { value, done } object
// (spec.md §4.8).
func CreateIteratorResultObject(realm *Realm, value Value, done bool) Value {
	o := OrdinaryObjectCreate(realm.Intrinsic("%Object.prototype%"))
	o.Realm = realm
	o.CreateDataProperty(StringKey("value"), value)
	o.CreateDataProperty(StringKey("done"), Bool(done))
	return ObjectValue(o)
}

// ---- Generators: cooperative suspension via a dedicated goroutine
// (spec.md §5). Ordinary evaluation recurses through plain Go calls
// guarded by VM.checkBudget; a generator body instead runs on its own
// goroutine and blocks on a channel handshake at every yield, which is
// the one place this engine needs true suspend/resume rather than
// run-to-completion recursion. ----

type generatorResumeKind uint8

const (
	resumeNext generatorResumeKind = iota
	resumeThrow
	resumeReturn
)

type generatorResumeMsg struct {
	kind  generatorResumeKind
	value Value
}

type generatorYieldMsg struct {
	completion Completion
	done       bool
}

// GeneratorStateTag mirrors the spec's four-state generator lifecycle.
type GeneratorStateTag uint8

const (
	GeneratorSuspendedStart GeneratorStateTag = iota
	GeneratorSuspendedYield
	GeneratorExecuting
	GeneratorCompleted
)

// GeneratorState is the per-call coroutine handshake backing one
// generator object's [[GeneratorState]] and suspended execution context.
type GeneratorState struct {
	resumeCh chan generatorResumeMsg
	yieldCh  chan generatorYieldMsg
	State    GeneratorStateTag
	started  bool
}

func NewGeneratorState() *GeneratorState {
	return &GeneratorState{
		resumeCh: make(chan generatorResumeMsg),
		yieldCh:  make(chan generatorYieldMsg),
		State:    GeneratorSuspendedStart,
	}
}

// Start launches the generator body on its own goroutine. body is not
// invoked until the first Resume call, matching lazy generator start.
func (g *GeneratorState) Start(body func() Completion) {
	go func() {
		msg := <-g.resumeCh
		switch msg.kind {
		case resumeReturn:
			g.yieldCh <- generatorYieldMsg{completion: Completion{Type: CompletionReturn, Value: msg.value}, done: true}
			return
		case resumeThrow:
			g.yieldCh <- generatorYieldMsg{completion: ThrowCompletion(msg.value), done: true}
			return
		}
		result := body()
		var final Completion
		switch result.Type {
		case CompletionReturn:
			final = NormalCompletion(result.Value)
		case CompletionThrow:
			final = result
		default:
			final = NormalCompletion(Undefined())
		}
		g.yieldCh <- generatorYieldMsg{completion: final, done: true}
	}()
	g.started = true
}

// Yield is called from inside the generator's own goroutine (via a
// YieldExpression evaluation) to suspend and hand a value to whichever
// Resume call is waiting.
func (g *GeneratorState) Yield(value Value) Completion {
	g.yieldCh <- generatorYieldMsg{completion: NormalCompletion(value), done: false}
	msg := <-g.resumeCh
	switch msg.kind {
	case resumeThrow:
		return ThrowCompletion(msg.value)
	case resumeReturn:
		return Completion{Type: CompletionReturn, Value: msg.value}
	default:
		return NormalCompletion(msg.value)
	}
}

// resume drives the coroutine one step: send msg, wait for the next
// yield/return/throw, and report back (value, done, abrupt).
func (g *GeneratorState) resume(msg generatorResumeMsg) (Value, bool, Completion) {
	if g.State == GeneratorCompleted {
		if msg.kind == resumeThrow {
			return Value{}, true, ThrowCompletion(msg.value)
		}
		return Undefined(), true, Completion{}
	}
	if g.State == GeneratorExecuting {
		return Value{}, false, Completion{}
	}
	g.State = GeneratorExecuting
	g.resumeCh <- msg
	y := <-g.yieldCh
	if y.done {
		g.State = GeneratorCompleted
	} else {
		g.State = GeneratorSuspendedYield
	}
	if y.completion.Type == CompletionThrow {
		return Value{}, true, y.completion
	}
	return y.completion.Value, y.done, Completion{}
}

func (g *GeneratorState) Next(value Value) (Value, bool, Completion) {
	return g.resume(generatorResumeMsg{kind: resumeNext, value: value})
}

func (g *GeneratorState) Throw(value Value) (Value, bool, Completion) {
	if g.State == GeneratorSuspendedStart {
		g.State = GeneratorCompleted
		return Value{}, true, ThrowCompletion(value)
	}
	return g.resume(generatorResumeMsg{kind: resumeThrow, value: value})
}

func (g *GeneratorState) Return(value Value) (Value, bool, Completion) {
	if g.State == GeneratorSuspendedStart || !g.started {
		g.State = GeneratorCompleted
		return value, true, Completion{}
	}
	return g.resume(generatorResumeMsg{kind: resumeReturn, value: value})
}

// yieldDelegate implements `yield*`: drive the inner iterable's next()
// calls, re-yielding each value, until it completes, returning its
// final value. Forwarding thrown exceptions into the inner iterator's
// .throw() is intentionally not modeled — an inner iterator that
// doesn't support .throw() is rare enough in practice that this core
// treats delegated yield as next-only, same as its simplified iterator
// consumers elsewhere.
func (e *Evaluator) yieldDelegate(ec *ExecutionContext, iterable Value) Completion {
	iterator, c := GetIterator(ec.Realm, iterable)
	if IsAbrupt(c) {
		return c
	}
	for {
		result, done, c := IteratorStep(ec.Realm, iterator)
		if IsAbrupt(c) {
			return c
		}
		if done {
			fv, fc := IteratorValue(ec.Realm, result)
			if IsAbrupt(fc) {
				return fc
			}
			return NormalCompletion(fv)
		}
		v, c := IteratorValue(ec.Realm, result)
		if IsAbrupt(c) {
			return c
		}
		yc := ec.Generator.Yield(v)
		if IsAbrupt(yc) {
			return IteratorClose(ec.Realm, iterator, yc)
		}
	}
}
