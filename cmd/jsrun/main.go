// Command jsrun is a peripheral smoke-test driver for pkg/engine. It
// owns no parser (the source parser is host-supplied, per this
// engine's scope), so it evaluates one fixed demo program built
// directly out of ast nodes rather than reading a .js file from disk —
// good enough to exercise a realm end to end, not a general-purpose
// script runner.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/funvibe/ecmacore/internal/ast"
	"github.com/funvibe/ecmacore/internal/plugins/array"
	"github.com/funvibe/ecmacore/internal/plugins/boolean"
	"github.com/funvibe/ecmacore/internal/plugins/console"
	"github.com/funvibe/ecmacore/internal/plugins/function"
	"github.com/funvibe/ecmacore/internal/plugins/iterator"
	"github.com/funvibe/ecmacore/internal/plugins/object"
	"github.com/funvibe/ecmacore/internal/plugins/set"
	"github.com/funvibe/ecmacore/pkg/engine"
)

func main() {
	vm := engine.NewVM(context.Background())
	realm := vm.NewRealm()

	err := realm.RegisterPlugin(
		object.New(),
		function.New(),
		iterator.New(),
		array.New(),
		boolean.New(),
		set.New(),
		console.New(os.Stdout),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "jsrun: registering plugins:", err)
		os.Exit(1)
	}

	program := demoProgram()
	result, err := realm.EvaluateScript(program)
	if err != nil {
		fmt.Fprintln(os.Stderr, "jsrun:", err)
		os.Exit(1)
	}
	fmt.Println(engine.DebugString(realm, result))
}

// demoProgram builds console.log("hello from jsrun") as a bare AST,
// standing in for whatever a real embedder's parser would hand
// EvaluateScript.
func demoProgram() *ast.Program {
	callee := &ast.MemberExpression{
		Object:   &ast.Identifier{Name: "console"},
		Property: &ast.Identifier{Name: "log"},
		Computed: false,
	}
	call := &ast.CallExpression{
		Callee: callee,
		Arguments: []ast.Expression{
			&ast.Literal{Kind: "string", Value: "hello from jsrun", Raw: `"hello from jsrun"`},
		},
	}
	return &ast.Program{
		Body: []ast.Statement{
			&ast.ExpressionStatement{Expression: call},
		},
	}
}
