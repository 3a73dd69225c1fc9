// Package engine is the embedding surface a host program links against:
// build a VM, attach one or more realms to it, register plugins onto a
// realm, and run pre-built ASTs against it. Mirrors the shape of the
// teacher's pkg/embed VM wrapper (one struct, flat named methods) but
// drops source-level Eval/LoadFile, since this engine's evaluator
// consumes ASTs handed to it by a host-owned parser rather than owning
// one itself.
package engine

import (
	"context"
	"fmt"

	"github.com/funvibe/ecmacore/internal/ast"
	"github.com/funvibe/ecmacore/internal/interp"
	"github.com/funvibe/ecmacore/internal/vmconfig"
)

// VM drives one or more realms sharing a single cancellation context
// and evaluator. Safe for realms to be created and torn down over its
// lifetime; the VM itself holds no per-realm state.
type VM struct {
	vm *interp.VM
	ev *interp.Evaluator
}

// NewVM constructs a VM bound to ctx. A nil ctx behaves like
// context.Background() (no deadline or cancellation).
func NewVM(ctx context.Context) *VM {
	if ctx == nil {
		ctx = context.Background()
	}
	raw := interp.NewVM(ctx)
	return &VM{vm: raw, ev: interp.NewEvaluator(raw)}
}

// Realm is one global-object-and-intrinsics world plus the plugins
// registered onto it (spec.md §3/§6). A VM may drive many realms; a
// realm is bound to exactly one VM for its lifetime.
type Realm struct {
	vm    *VM
	realm *interp.Realm
}

// NewRealm allocates a fresh, unpopulated realm on vm. Call
// RegisterPlugin (or RegisterManifest) to populate its intrinsics and
// global object before evaluating any script against it.
func (vm *VM) NewRealm() *Realm {
	return &Realm{vm: vm, realm: interp.NewRealm(vm.vm)}
}

// Raw exposes the underlying interp.Realm for callers that need
// lower-level access (building native objects, inspecting intrinsics)
// beyond what this package wraps.
func (r *Realm) Raw() *interp.Realm { return r.realm }

// RegisterPlugin registers one or more plugins onto the realm,
// topologically ordered by their declared Dependencies (interp.Plugin).
// Safe to call more than once; intrinsics and globals installed by
// earlier calls stay in the realm. Each call orders and runs only the
// plugins passed to it, so every dependency of those plugins must be
// passed in the same call; one registered only by an earlier call is
// rejected as an unregistered plugin.
func (r *Realm) RegisterPlugin(plugins ...interp.Plugin) error {
	if err := interp.RegisterPlugins(r.realm, plugins); err != nil {
		return fmt.Errorf("engine: register plugin: %w", err)
	}
	return nil
}

// PluginFactory builds a fresh interp.Plugin instance for a name found
// in a vmconfig.PluginManifest. The builtin plugin packages are not
// imported by this package (doing so would force every embedder to
// link all seven regardless of use), so a host registers the factories
// it wants under the names it wants before calling RegisterManifest.
type PluginFactory func() interp.Plugin

// RegisterManifest resolves each entry in m against factories and
// registers the resulting plugins onto the realm in the manifest's
// declared order (RegisterPlugin re-sorts by actual dependency
// regardless). Returns an error naming the first entry with no
// matching factory.
func (r *Realm) RegisterManifest(m *vmconfig.PluginManifest, factories map[string]PluginFactory) error {
	plugins := make([]interp.Plugin, 0, len(m.Plugins))
	for _, entry := range m.Plugins {
		f, ok := factories[entry.Name]
		if !ok {
			return fmt.Errorf("engine: no plugin factory registered for manifest entry %q", entry.Name)
		}
		plugins = append(plugins, f())
	}
	return r.RegisterPlugin(plugins...)
}

// CreateBuiltin defines a native function with the given name and
// declared arity directly on the realm's global object, bypassing the
// plugin pipeline — the quickest path for a host to expose one or two
// Go functions without writing a whole interp.Plugin.
func (r *Realm) CreateBuiltin(name string, length int, fn func(this interp.Value, args []interp.Value) interp.Completion) {
	f := interp.NativeFunction(r.realm, name, length, fn)
	r.realm.GlobalObject.CreateDataProperty(interp.StringKey(name), interp.ObjectValue(f))
	r.realm.GlobalEnv.VarNames[name] = true
}

// EvaluateScript runs a pre-built Program against the realm as a
// top-level script (spec.md's GlobalDeclarationInstantiation pass,
// followed by evaluating each statement in source order). The host is
// responsible for producing program — parsing source text into this
// engine's AST dialect is outside this engine's scope.
func (r *Realm) EvaluateScript(program *ast.Program) (interp.Value, error) {
	ec := &interp.ExecutionContext{
		Realm:               r.realm,
		LexicalEnvironment:  r.realm.GlobalEnv,
		VariableEnvironment: r.realm.GlobalEnv,
	}
	r.vm.vm.PushContext(ec)
	defer r.vm.vm.PopContext()

	c := r.vm.ev.Eval(ec, program)
	if interp.IsAbrupt(c) {
		return interp.Undefined(), &ScriptError{Completion: c, Realm: r}
	}
	return c.Value, nil
}

// ScriptError wraps an abrupt completion (almost always a throw) that
// escaped top-level script evaluation, so a host can format the thrown
// value with DebugString without reaching into interp directly.
type ScriptError struct {
	Completion interp.Completion
	Realm      *Realm
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("uncaught exception: %s", DebugString(e.Realm, e.Completion.Value))
}

// DebugString renders v for host-side diagnostics: strings are quoted,
// objects show their own enumerable properties one level deep, and
// everything else goes through ToString. Deliberately plain-text only
// (no ANSI) — the console plugin owns styled output; this is for logs,
// test failures, and error messages a host writes to arbitrary sinks.
func DebugString(r *Realm, v interp.Value) string {
	return debugString(v, map[*interp.Object]bool{})
}

func debugString(v interp.Value, seen map[*interp.Object]bool) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "null"
	case v.IsString():
		return "\"" + v.AsString() + "\""
	case v.IsObject():
		o := v.AsObject()
		if seen[o] {
			return "[Circular]"
		}
		seen[o] = true
		if o.Call != nil {
			return "[Function]"
		}
		if interp.IsArray(v) {
			return debugArray(o, seen)
		}
		return debugObject(o, seen)
	default:
		c := interp.ToString(v)
		if interp.IsAbrupt(c) {
			return "?"
		}
		return c.Value.AsString()
	}
}

func debugArray(o *interp.Object, seen map[*interp.Object]bool) string {
	lengthC := o.Get(interp.StringKey("length"), interp.ObjectValue(o))
	n := 0
	if !interp.IsAbrupt(lengthC) {
		n = int(lengthC.Value.AsNumber())
	}
	s := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			s += ", "
		}
		vC := o.Get(interp.StringKey(fmt.Sprintf("%d", i)), interp.ObjectValue(o))
		if interp.IsAbrupt(vC) {
			s += "undefined"
			continue
		}
		s += debugString(vC.Value, seen)
	}
	return s + "]"
}

func debugObject(o *interp.Object, seen map[*interp.Object]bool) string {
	s := "{"
	first := true
	for _, k := range o.OwnPropertyKeys() {
		if k.IsSymbol() {
			continue
		}
		desc := o.GetOwnProperty(k)
		if desc == nil || desc.Enumerable == nil || !*desc.Enumerable {
			continue
		}
		if !first {
			s += ", "
		}
		first = false
		vC := o.Get(k, interp.ObjectValue(o))
		val := "undefined"
		if !interp.IsAbrupt(vC) {
			val = debugString(vC.Value, seen)
		}
		s += k.String() + ": " + val
	}
	return s + "}"
}
