package interp

import "github.com/funvibe/ecmacore/internal/ast"

func (e *Evaluator) evalVariableDeclaration(ec *ExecutionContext, n *ast.VariableDeclaration) Completion {
	for _, decl := range n.Declarations {
		var v Value = Undefined()
		if decl.Init != nil {
			c := e.refToValue(ec, e.Eval(ec, decl.Init))
			if IsAbrupt(c) {
				return c
			}
			v = c.Value
			if id, ok := decl.ID.(*ast.Identifier); ok && isAnonymousFunctionValue(v) {
				SetFunctionName(v.AsObject(), id.Name, "")
			}
		} else if n.Kind == "var" {
			if _, ok := decl.ID.(*ast.Identifier); ok {
				continue
			}
		}
		if n.Kind == "var" {
			scope := ec.LexicalEnvironment.GetVarScope()
			if decl.Init == nil {
				continue
			}
			if c := e.assignExistingBinding(ec, scope, decl.ID, v); IsAbrupt(c) {
				return c
			}
			continue
		}
		if c := e.bindingInitialization(ec, decl.ID, v, ec.LexicalEnvironment); IsAbrupt(c) {
			return c
		}
	}
	return NormalCompletion(Undefined())
}

// assignExistingBinding sets values into var-scope bindings that
// hoisting has already created (var declarations never re-declare via
// InitializeBinding after the first statement runs).
func (e *Evaluator) assignExistingBinding(ec *ExecutionContext, scope *Environment, target ast.Node, v Value) Completion {
	switch n := target.(type) {
	case *ast.Identifier:
		return scope.SetMutableBinding(ec.Realm, n.Name, v, false)
	default:
		return e.bindingInitialization(ec, target, v, scope)
	}
}

// globalDeclarationInstantiation implements GlobalDeclarationInstantiation
// (spec.md §4.4): hoist `var`s onto the global object, hoist top-level
// function declarations, and create (uninitialized) lexical bindings
// for top-level let/const/class in the global declarative record.
func (e *Evaluator) globalDeclarationInstantiation(ec *ExecutionContext, body []ast.Statement) Completion {
	genv := ec.LexicalEnvironment
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.VariableDeclaration:
			if s.Kind == "var" {
				for _, d := range s.Declarations {
					for _, name := range boundNames(d.ID) {
						genv.CreateGlobalVarBinding(name, false)
					}
				}
			} else {
				for _, d := range s.Declarations {
					for _, name := range boundNames(d.ID) {
						if s.Kind == "const" {
							genv.DeclRecord.CreateImmutableBinding(name, true)
						} else {
							genv.DeclRecord.CreateMutableBinding(name, false)
						}
					}
				}
			}
		case *ast.FunctionDeclaration:
			fn := e.instantiateFunctionDeclaration(ec, s)
			genv.CreateGlobalFunctionBinding(s.ID.Name, fn, false)
		case *ast.ClassDeclaration:
			genv.DeclRecord.CreateMutableBinding(s.ID.Name, false)
		}
	}
	for _, stmt := range body {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			fn := e.instantiateFunctionDeclaration(ec, fd)
			genv.CreateGlobalFunctionBinding(fd.ID.Name, fn, false)
		}
	}
	return NormalCompletion(Undefined())
}

// blockDeclarationInstantiation creates (uninitialized) bindings for
// every let/const/class/function declared directly in a block, ahead
// of evaluating the block's statement list (spec.md §4.4).
func (e *Evaluator) blockDeclarationInstantiation(ec *ExecutionContext, body []ast.Statement) Completion {
	env := ec.LexicalEnvironment
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.VariableDeclaration:
			if s.Kind == "var" {
				continue
			}
			for _, d := range s.Declarations {
				for _, name := range boundNames(d.ID) {
					if s.Kind == "const" {
						env.CreateImmutableBinding(name, true)
					} else {
						env.CreateMutableBinding(name, false)
					}
				}
			}
		case *ast.ClassDeclaration:
			env.CreateMutableBinding(s.ID.Name, false)
		case *ast.FunctionDeclaration:
			env.CreateMutableBinding(s.ID.Name, true)
		}
	}
	for _, stmt := range body {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			fn := e.instantiateFunctionDeclaration(ec, fd)
			env.InitializeBinding(ec.Realm, fd.ID.Name, fn)
		}
	}
	return NormalCompletion(Undefined())
}

func (e *Evaluator) instantiateFunctionDeclaration(ec *ExecutionContext, fd *ast.FunctionDeclaration) Value {
	kind := FunctionNormal
	if fd.Generator {
		kind = FunctionGenerator
	}
	f := e.OrdinaryFunctionCreate(ec.Realm, nil, fd.Params, fd.Body, kind, ec.LexicalEnvironment, true, ec.PrivateEnvironment)
	SetFunctionName(f, fd.ID.Name, "")
	MakeConstructor(ec.Realm, f, true, nil)
	return ObjectValue(f)
}

// hoistVarDeclarations recursively collects every `var` BoundName in a
// statement list (descending into nested blocks/if/loops/try/switch,
// but not into nested function bodies) and creates its global/function
// var-scope binding.
func (e *Evaluator) hoistVarDeclarations(ec *ExecutionContext, body []ast.Statement, scope *Environment) Completion {
	var walk func(s ast.Statement)
	walk = func(s ast.Statement) {
		switch n := s.(type) {
		case *ast.VariableDeclaration:
			if n.Kind != "var" {
				return
			}
			for _, d := range n.Declarations {
				for _, name := range boundNames(d.ID) {
					if _, ok := scope.bindings[name]; !ok {
						scope.CreateMutableBinding(name, false)
						scope.InitializeBinding(ec.Realm, name, Undefined())
					}
				}
			}
		case *ast.BlockStatement:
			for _, st := range n.Body {
				walk(st)
			}
		case *ast.IfStatement:
			walk(n.Consequent)
			if n.Alternate != nil {
				walk(n.Alternate)
			}
		case *ast.WhileStatement:
			walk(n.Body)
		case *ast.DoWhileStatement:
			walk(n.Body)
		case *ast.ForStatement:
			if vd, ok := n.Init.(*ast.VariableDeclaration); ok {
				walk(vd)
			}
			walk(n.Body)
		case *ast.ForInStatement:
			if vd, ok := n.Left.(*ast.VariableDeclaration); ok {
				walk(vd)
			}
			walk(n.Body)
		case *ast.ForOfStatement:
			if vd, ok := n.Left.(*ast.VariableDeclaration); ok {
				walk(vd)
			}
			walk(n.Body)
		case *ast.TryStatement:
			for _, st := range n.Block.Body {
				walk(st)
			}
			if n.Handler != nil {
				for _, st := range n.Handler.Body.Body {
					walk(st)
				}
			}
			if n.Finalizer != nil {
				for _, st := range n.Finalizer.Body {
					walk(st)
				}
			}
		case *ast.SwitchStatement:
			for _, c := range n.Cases {
				for _, st := range c.Consequent {
					walk(st)
				}
			}
		case *ast.LabeledStatement:
			walk(n.Body)
		case *ast.WithStatement:
			walk(n.Body)
		}
	}
	for _, s := range body {
		walk(s)
	}
	return NormalCompletion(Undefined())
}

// hoistFunctionDeclarations binds top-level function declarations
// inside a block (non-recursive: nested blocks handle their own via
// blockDeclarationInstantiation) into scope, beyond the ones
// blockDeclarationInstantiation already bound at the block's own
// level — used by FunctionDeclarationInstantiation for a function
// body's direct statement list.
func (e *Evaluator) hoistFunctionDeclarations(ec *ExecutionContext, body []ast.Statement, scope *Environment) Completion {
	for _, s := range body {
		if fd, ok := s.(*ast.FunctionDeclaration); ok {
			fn := e.instantiateFunctionDeclaration(ec, fd)
			if _, ok := scope.bindings[fd.ID.Name]; !ok {
				scope.CreateMutableBinding(fd.ID.Name, false)
			}
			scope.InitializeBinding(ec.Realm, fd.ID.Name, fn)
		}
	}
	return NormalCompletion(Undefined())
}
