package interp_test

import (
	"context"
	"testing"

	"github.com/funvibe/ecmacore/internal/ast"
	"github.com/funvibe/ecmacore/internal/interp"
	"github.com/funvibe/ecmacore/internal/plugins/array"
	"github.com/funvibe/ecmacore/internal/plugins/function"
	"github.com/funvibe/ecmacore/internal/plugins/iterator"
	"github.com/funvibe/ecmacore/internal/plugins/object"
)

// runScript wires a fresh VM/realm with the core plugin set and
// evaluates body as a top-level script, the same shape pkg/engine
// assembles but exercised directly against internal/interp.
func runScript(t *testing.T, body []ast.Statement) interp.Completion {
	t.Helper()
	vm := interp.NewVM(context.Background())
	realm := interp.NewRealm(vm)
	plugins := []interp.Plugin{object.New(), function.New(), iterator.New(), array.New()}
	if err := interp.RegisterPlugins(realm, plugins); err != nil {
		t.Fatalf("registering plugins: %v", err)
	}
	ec := &interp.ExecutionContext{
		Realm:               realm,
		LexicalEnvironment:  realm.GlobalEnv,
		VariableEnvironment: realm.GlobalEnv,
	}
	vm.PushContext(ec)
	defer vm.PopContext()
	ev := interp.NewEvaluator(vm)
	return ev.Eval(ec, &ast.Program{Body: body})
}

func num(n float64) *ast.Literal { return &ast.Literal{Kind: "number", Value: n} }
func str(s string) *ast.Literal  { return &ast.Literal{Kind: "string", Value: s} }
func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func TestVariableDeclarationAndIdentifierLookup(t *testing.T) {
	// let x = 10; x;
	body := []ast.Statement{
		&ast.VariableDeclaration{Kind: "let", Declarations: []*ast.VariableDeclarator{
			{ID: ident("x"), Init: num(10)},
		}},
		&ast.ExpressionStatement{Expression: ident("x")},
	}
	c := runScript(t, body)
	if interp.IsAbrupt(c) {
		t.Fatalf("script threw: %v", c)
	}
	if c.Value.AsNumber() != 10 {
		t.Fatalf("result = %v, want 10", c.Value)
	}
}

func TestIfStatementBranches(t *testing.T) {
	// var r; if (true) { r = 1; } else { r = 2; } r;
	body := []ast.Statement{
		&ast.VariableDeclaration{Kind: "var", Declarations: []*ast.VariableDeclarator{{ID: ident("r")}}},
		&ast.IfStatement{
			Test: &ast.Literal{Kind: "boolean", Value: true},
			Consequent: &ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
				Operator: "=", Left: ident("r"), Right: num(1),
			}},
			Alternate: &ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
				Operator: "=", Left: ident("r"), Right: num(2),
			}},
		},
		&ast.ExpressionStatement{Expression: ident("r")},
	}
	c := runScript(t, body)
	if interp.IsAbrupt(c) {
		t.Fatalf("script threw: %v", c)
	}
	if c.Value.AsNumber() != 1 {
		t.Fatalf("result = %v, want 1", c.Value)
	}
}

func TestWhileLoopAccumulates(t *testing.T) {
	// var i = 0, sum = 0; while (i < 5) { sum = sum + i; i = i + 1; } sum;
	body := []ast.Statement{
		&ast.VariableDeclaration{Kind: "var", Declarations: []*ast.VariableDeclarator{
			{ID: ident("i"), Init: num(0)},
			{ID: ident("sum"), Init: num(0)},
		}},
		&ast.WhileStatement{
			Test: &ast.BinaryExpression{Operator: "<", Left: ident("i"), Right: num(5)},
			Body: &ast.BlockStatement{Body: []ast.Statement{
				&ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
					Operator: "=", Left: ident("sum"),
					Right: &ast.BinaryExpression{Operator: "+", Left: ident("sum"), Right: ident("i")},
				}},
				&ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
					Operator: "=", Left: ident("i"),
					Right: &ast.BinaryExpression{Operator: "+", Left: ident("i"), Right: num(1)},
				}},
			}},
		},
		&ast.ExpressionStatement{Expression: ident("sum")},
	}
	c := runScript(t, body)
	if interp.IsAbrupt(c) {
		t.Fatalf("script threw: %v", c)
	}
	if c.Value.AsNumber() != 10 {
		t.Fatalf("sum = %v, want 10 (0+1+2+3+4)", c.Value)
	}
}

func TestFunctionDeclarationCallAndReturn(t *testing.T) {
	// function add(a, b) { return a + b; } add(3, 4);
	body := []ast.Statement{
		&ast.FunctionDeclaration{
			ID:     ident("add"),
			Params: []ast.Pattern{ident("a"), ident("b")},
			Body: &ast.BlockStatement{Body: []ast.Statement{
				&ast.ReturnStatement{Argument: &ast.BinaryExpression{Operator: "+", Left: ident("a"), Right: ident("b")}},
			}},
		},
		&ast.ExpressionStatement{Expression: &ast.CallExpression{
			Callee:    ident("add"),
			Arguments: []ast.Expression{num(3), num(4)},
		}},
	}
	c := runScript(t, body)
	if interp.IsAbrupt(c) {
		t.Fatalf("script threw: %v", c)
	}
	if c.Value.AsNumber() != 7 {
		t.Fatalf("add(3,4) = %v, want 7", c.Value)
	}
}

func TestTryCatchCatchesThrow(t *testing.T) {
	// var caught; try { throw "boom"; } catch (e) { caught = e; } caught;
	body := []ast.Statement{
		&ast.VariableDeclaration{Kind: "var", Declarations: []*ast.VariableDeclarator{{ID: ident("caught")}}},
		&ast.TryStatement{
			Block: &ast.BlockStatement{Body: []ast.Statement{
				&ast.ThrowStatement{Argument: str("boom")},
			}},
			Handler: &ast.CatchClause{
				Param: ident("e"),
				Body: &ast.BlockStatement{Body: []ast.Statement{
					&ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
						Operator: "=", Left: ident("caught"), Right: ident("e"),
					}},
				}},
			},
		},
		&ast.ExpressionStatement{Expression: ident("caught")},
	}
	c := runScript(t, body)
	if interp.IsAbrupt(c) {
		t.Fatalf("script threw (try/catch should have handled it): %v", c)
	}
	if c.Value.AsString() != "boom" {
		t.Fatalf("caught = %v, want \"boom\"", c.Value)
	}
}

func TestTryFinallyAlwaysRuns(t *testing.T) {
	// var ran = false; try { 1; } finally { ran = true; } ran;
	body := []ast.Statement{
		&ast.VariableDeclaration{Kind: "var", Declarations: []*ast.VariableDeclarator{
			{ID: ident("ran"), Init: &ast.Literal{Kind: "boolean", Value: false}},
		}},
		&ast.TryStatement{
			Block: &ast.BlockStatement{Body: []ast.Statement{
				&ast.ExpressionStatement{Expression: num(1)},
			}},
			Finalizer: &ast.BlockStatement{Body: []ast.Statement{
				&ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
					Operator: "=", Left: ident("ran"), Right: &ast.Literal{Kind: "boolean", Value: true},
				}},
			}},
		},
		&ast.ExpressionStatement{Expression: ident("ran")},
	}
	c := runScript(t, body)
	if interp.IsAbrupt(c) {
		t.Fatalf("script threw: %v", c)
	}
	if !c.Value.AsBoolean() {
		t.Fatal("ran = false, want true (finally block must always execute)")
	}
}

func TestArrayAndObjectLiterals(t *testing.T) {
	// [1, 2].length;
	body := []ast.Statement{
		&ast.ExpressionStatement{Expression: &ast.MemberExpression{
			Object:   &ast.ArrayExpression{Elements: []ast.Expression{num(1), num(2)}},
			Property: ident("length"),
		}},
	}
	c := runScript(t, body)
	if interp.IsAbrupt(c) {
		t.Fatalf("script threw: %v", c)
	}
	if c.Value.AsNumber() != 2 {
		t.Fatalf("[1,2].length = %v, want 2", c.Value)
	}

	// ({a: 5}).a;
	body2 := []ast.Statement{
		&ast.ExpressionStatement{Expression: &ast.MemberExpression{
			Object: &ast.ObjectExpression{Properties: []ast.Node{
				&ast.Property{Key: ident("a"), Value: num(5), Kind: "init"},
			}},
			Property: ident("a"),
		}},
	}
	c2 := runScript(t, body2)
	if interp.IsAbrupt(c2) {
		t.Fatalf("script threw: %v", c2)
	}
	if c2.Value.AsNumber() != 5 {
		t.Fatalf("({a:5}).a = %v, want 5", c2.Value)
	}
}

func TestUncaughtThrowEscapesAsAbruptCompletion(t *testing.T) {
	body := []ast.Statement{
		&ast.ThrowStatement{Argument: str("unhandled")},
	}
	c := runScript(t, body)
	if !interp.IsAbrupt(c) {
		t.Fatal("expected an abrupt completion from an uncaught throw")
	}
	if c.Value.AsString() != "unhandled" {
		t.Fatalf("thrown value = %v, want \"unhandled\"", c.Value)
	}
}
