package interp

import "context"

// CallFrame is one entry of the diagnostic call stack VM.CallStack.
// The evaluator does not record frames into it, and thrown Error
// objects' "stack" property holds only "Name: message".
type CallFrame struct {
	FunctionName string
	Line, Column int
}

// maxEvalDepth bounds Go call-stack recursion inside Eval; user programs
// that recurse past it fail with a RangeError rather than crashing the
// host process.
const maxEvalDepth = 10000

// VM drives one or more realms' execution context stacks. It owns the
// cancellation context and the Go-recursion depth guard that together
// give the cooperative "the evaluator must not block the host
// indefinitely" property (spec.md §5): ordinary evaluation is plain
// recursive Go calls checked against Context.Done() at every Eval entry,
// while generators (the one place true suspension is required) run on
// their own goroutine, parked on a channel handshake (see iterator.go).
type VM struct {
	Context context.Context

	contextStack []*ExecutionContext
	evalDepth    int

	CallStack []CallFrame
}

// NewVM constructs a VM bound to ctx; pass context.Background() for a
// driver with no deadline or cancellation.
func NewVM(ctx context.Context) *VM {
	if ctx == nil {
		ctx = context.Background()
	}
	return &VM{Context: ctx}
}

// Running returns the currently executing context, or nil if the stack
// is empty.
func (vm *VM) Running() *ExecutionContext {
	if len(vm.contextStack) == 0 {
		return nil
	}
	return vm.contextStack[len(vm.contextStack)-1]
}

func (vm *VM) PushContext(ec *ExecutionContext) { vm.contextStack = append(vm.contextStack, ec) }

func (vm *VM) PopContext() {
	vm.contextStack = vm.contextStack[:len(vm.contextStack)-1]
}

// checkBudget is consulted at the top of every Eval call: it enforces
// the recursion-depth guard and turns Context cancellation into a
// Throw completion instead of letting the host block forever on a
// runaway script (spec.md §5's "bounded execution" property). Returns
// (abrupt, true) when evaluation must stop immediately.
func (vm *VM) checkBudget(realm *Realm) (Completion, bool) {
	vm.evalDepth++
	if vm.evalDepth > maxEvalDepth {
		vm.evalDepth--
		return ThrowCompletion(realm.NewRangeError("Maximum call stack size exceeded")), true
	}
	if vm.Context != nil {
		select {
		case <-vm.Context.Done():
			vm.evalDepth--
			return ThrowCompletion(realm.NewReferenceError("execution cancelled: " + vm.Context.Err().Error())), true
		default:
		}
	}
	return Completion{}, false
}

func (vm *VM) endEval() { vm.evalDepth-- }

// RunMode names the host driving modes (spec.md §5 "driving modes").
// No function in this package takes a RunMode: Eval and a generator's
// resume always run until the script or generator yields or finishes.
type RunMode uint8

const (
	// RunToCompletion evaluates until the script or generator itself
	// suspends (yield) or finishes; this is the mode ordinary
	// synchronous Eval calls use.
	RunToCompletion RunMode = iota
	// SingleStep (return after one suspension point) and BoundedSlice
	// (return after a bounded amount of work) are declared only; no
	// evaluation path in this package reads them.
	SingleStep
	BoundedSlice
)
