package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/funvibe/ecmacore/internal/ast"
	"github.com/funvibe/ecmacore/internal/interp"
	"github.com/funvibe/ecmacore/internal/plugins/array"
	"github.com/funvibe/ecmacore/internal/plugins/function"
	"github.com/funvibe/ecmacore/internal/plugins/iterator"
	"github.com/funvibe/ecmacore/internal/plugins/object"
	"github.com/funvibe/ecmacore/internal/vmconfig"
	"github.com/funvibe/ecmacore/pkg/engine"
)

func newTestRealm(t *testing.T) *engine.Realm {
	t.Helper()
	vm := engine.NewVM(context.Background())
	realm := vm.NewRealm()
	err := realm.RegisterPlugin(object.New(), function.New(), iterator.New(), array.New())
	if err != nil {
		t.Fatalf("RegisterPlugin: %v", err)
	}
	return realm
}

func TestEvaluateScriptReturnsLastExpressionValue(t *testing.T) {
	realm := newTestRealm(t)

	// 1 + 2;
	program := &ast.Program{
		Body: []ast.Statement{
			&ast.ExpressionStatement{Expression: &ast.BinaryExpression{
				Operator: "+",
				Left:     &ast.Literal{Kind: "number", Value: 1.0},
				Right:    &ast.Literal{Kind: "number", Value: 2.0},
			}},
		},
	}
	result, err := realm.EvaluateScript(program)
	if err != nil {
		t.Fatalf("EvaluateScript: %v", err)
	}
	if result.AsNumber() != 3 {
		t.Fatalf("result = %v, want 3", result)
	}
}

func TestEvaluateScriptSurfacesThrowAsError(t *testing.T) {
	realm := newTestRealm(t)

	// throw "boom";
	program := &ast.Program{
		Body: []ast.Statement{
			&ast.ThrowStatement{Argument: &ast.Literal{Kind: "string", Value: "boom", Raw: `"boom"`}},
		},
	}
	_, err := realm.EvaluateScript(program)
	if err == nil {
		t.Fatal("expected an error from a throwing script")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("error = %v, want it to mention the thrown value", err)
	}
}

func TestCreateBuiltinIsCallableFromGlobal(t *testing.T) {
	realm := newTestRealm(t)
	realm.CreateBuiltin("double", 1, func(this interp.Value, args []interp.Value) interp.Completion {
		return interp.NormalCompletion(interp.Number(args[0].AsNumber() * 2))
	})

	doubleC := realm.Raw().GlobalObject.Get(interp.StringKey("double"), interp.ObjectValue(realm.Raw().GlobalObject))
	if interp.IsAbrupt(doubleC) || !doubleC.Value.IsCallable() {
		t.Fatal("double was not installed as a callable global")
	}
	rC := doubleC.Value.AsObject().Call(interp.Undefined(), []interp.Value{interp.Number(21)})
	if interp.IsAbrupt(rC) || rC.Value.AsNumber() != 42 {
		t.Fatalf("double(21) = %v, want 42", rC.Value)
	}
}

func TestRegisterManifestResolvesFactories(t *testing.T) {
	vm := engine.NewVM(context.Background())
	realm := vm.NewRealm()

	m := &vmconfig.PluginManifest{Plugins: []vmconfig.PluginEntry{{Name: "object"}, {Name: "array"}}}
	factories := map[string]engine.PluginFactory{
		"object": func() interp.Plugin { return object.New() },
		"array":  func() interp.Plugin { return array.New() },
	}
	// array depends on iterator, which is deliberately absent from both
	// the manifest and the factory map — registration must surface that
	// as an error rather than silently skipping the dependency.
	if err := realm.RegisterManifest(m, factories); err == nil {
		t.Fatal("expected an error for a manifest missing a transitive dependency's factory")
	}

	factories["iterator"] = func() interp.Plugin { return iterator.New() }
	m.Plugins = append(m.Plugins, vmconfig.PluginEntry{Name: "iterator"})
	if err := realm.RegisterManifest(m, factories); err != nil {
		t.Fatalf("RegisterManifest: %v", err)
	}
	if realm.Raw().Intrinsic("%Array%") == nil {
		t.Fatal("%Array% not registered after RegisterManifest")
	}
}

func TestDebugStringFormatsValues(t *testing.T) {
	realm := newTestRealm(t)

	arr := interp.ArrayCreate(realm.Raw(), 0)
	arr.CreateDataProperty(interp.StringKey("0"), interp.Number(1))
	arr.CreateDataProperty(interp.StringKey("1"), interp.String("x"))

	got := engine.DebugString(realm, interp.ObjectValue(arr))
	if got != `[1, "x"]` {
		t.Fatalf("DebugString(array) = %q, want %q", got, `[1, "x"]`)
	}

	if got := engine.DebugString(realm, interp.Undefined()); got != "undefined" {
		t.Fatalf("DebugString(undefined) = %q, want %q", got, "undefined")
	}
}
