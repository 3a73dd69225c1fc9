package interp

import "github.com/funvibe/ecmacore/internal/ast"

// instanceFieldInit is one `fieldName = expr;` class field, evaluated
// fresh against a new instance's environment on every construction
// (spec.md §4.6 "InitializeInstanceElements").
type instanceFieldInit struct {
	Key       PropertyKey
	Private   *PrivateName
	Init      ast.Expression // nil for a field with no initializer
	Closure   *Environment
	HomeObject *Object
	PrivEnv   *PrivateEnvironment
}

type privateMethodInit struct {
	Name    *PrivateName
	Element *PrivateElement
}

func (e *Evaluator) evalClassDeclaration(ec *ExecutionContext, n *ast.ClassDeclaration) Completion {
	ctorC := e.classDefinitionEvaluation(ec, n.ID, n.SuperCT, n.Body, n.SourceText)
	if IsAbrupt(ctorC) {
		return ctorC
	}
	if n.ID != nil {
		if c := ec.LexicalEnvironment.InitializeBinding(ec.Realm, n.ID.Name, ctorC.Value); IsAbrupt(c) {
			return c
		}
	}
	return NormalCompletion(Undefined())
}

func (e *Evaluator) evalClassExpression(ec *ExecutionContext, n *ast.ClassExpression) Completion {
	return e.classDefinitionEvaluation(ec, n.ID, n.SuperClass, n.Body, n.SourceText)
}

// classDefinitionEvaluation implements ClassDefinitionEvaluation
// (spec.md §4.6): resolve the heritage expression, build the
// constructor's function object (base or derived), install the
// prototype chain, define methods/accessors/private elements, and run
// static field initializers and static blocks in source order.
func (e *Evaluator) classDefinitionEvaluation(ec *ExecutionContext, id *ast.Identifier, heritage ast.Expression, body []ast.ClassElement, sourceText string) Completion {
	classEnv := NewDeclarativeEnvironment(ec.LexicalEnvironment)
	if id != nil {
		classEnv.CreateImmutableBinding(id.Name, true)
	}
	classInner := *ec
	classInner.LexicalEnvironment = classEnv

	privEnv := NewPrivateEnvironment(ec.PrivateEnvironment)
	for _, el := range body {
		if md, ok := el.(*ast.MethodDefinition); ok {
			if priv, ok := md.Key.(*ast.PrivateIdentifier); ok {
				if _, exists := privEnv.Names[priv.Name]; !exists {
					privEnv.Names[priv.Name] = NewPrivateName(priv.Name)
				}
			}
		}
		if pd, ok := el.(*ast.PropertyDefinition); ok {
			if priv, ok := pd.Key.(*ast.PrivateIdentifier); ok {
				privEnv.Names[priv.Name] = NewPrivateName(priv.Name)
			}
		}
	}
	classInner.PrivateEnvironment = privEnv

	var protoParent *Object
	var constructorParent *Object
	derived := heritage != nil
	if heritage != nil {
		superC := e.refToValue(&classInner, e.Eval(&classInner, heritage))
		if IsAbrupt(superC) {
			return superC
		}
		superVal := superC.Value
		if superVal.IsNull() {
			protoParent = nil
			constructorParent = ec.Realm.Intrinsic("%Function.prototype%")
		} else {
			if !superVal.IsConstructor() {
				return ThrowCompletion(ec.Realm.NewTypeError("Class extends value is not a constructor"))
			}
			protoC := superVal.AsObject().Get(StringKey("prototype"), superVal)
			if IsAbrupt(protoC) {
				return protoC
			}
			if !protoC.Value.IsNull() && !protoC.Value.IsObject() {
				return ThrowCompletion(ec.Realm.NewTypeError("Class extends value does not have valid prototype property"))
			}
			if protoC.Value.IsObject() {
				protoParent = protoC.Value.AsObject()
			}
			constructorParent = superVal.AsObject()
		}
	} else {
		protoParent = ec.Realm.Intrinsic("%Object.prototype%")
	}

	proto := OrdinaryObjectCreate(protoParent)
	proto.Realm = ec.Realm

	var ctorNode *ast.MethodDefinition
	for _, el := range body {
		if md, ok := el.(*ast.MethodDefinition); ok && md.Kind == "constructor" {
			ctorNode = md
		}
	}

	kind := FunctionClassConstructorBase
	if derived {
		kind = FunctionClassConstructorDerived
	}
	var ctor *Object
	if ctorNode != nil {
		ctor = e.OrdinaryFunctionCreate(ec.Realm, constructorParent, ctorNode.Value.Params, ctorNode.Value.Body, kind, classEnv, true, privEnv)
	} else {
		params, defBody := defaultConstructorBody(derived)
		ctor = e.OrdinaryFunctionCreate(ec.Realm, constructorParent, params, defBody, kind, classEnv, true, privEnv)
	}
	if constructorParent != nil {
		ctor.SetPrototypeOf(constructorParent)
	}
	ctor.DefineOwnProperty(StringKey("prototype"), &PropertyDescriptor{
		Value: valuePtr(ObjectValue(proto)), Writable: boolPtr(false), Configurable: boolPtr(false),
	})
	proto.CreateMethodProperty(StringKey("constructor"), ObjectValue(ctor))
	name := ""
	if id != nil {
		name = id.Name
	}
	SetFunctionName(ctor, name, "")

	var fields []instanceFieldInit
	var privateMethods []privateMethodInit
	var statics []interface{} // instanceFieldInit or *ast.StaticBlock, in source order

	for _, el := range body {
		switch m := el.(type) {
		case *ast.MethodDefinition:
			if m.Kind == "constructor" {
				continue
			}
			target := proto
			if m.Static {
				target = ctor
			}
			homeObject := target
			fn := e.OrdinaryFunctionCreate(ec.Realm, nil, m.Value.Params, m.Value.Body, FunctionMethod, classEnv, true, privEnv)
			funcData(fn).HomeObject = homeObject
			if m.Value.Generator {
				funcData(fn).Kind = FunctionGenerator
			}
			if priv, ok := m.Key.(*ast.PrivateIdentifier); ok {
				pn := privEnv.Names[priv.Name]
				el := &PrivateElement{Kind: "method", Value: ObjectValue(fn)}
				if m.Kind == "get" || m.Kind == "set" {
					el.Kind = "accessor"
					if m.Kind == "get" {
						el.Get = valuePtr(ObjectValue(fn))
					} else {
						el.Set = valuePtr(ObjectValue(fn))
					}
				}
				privateMethods = append(privateMethods, privateMethodInit{Name: pn, Element: el})
				continue
			}
			key, c := e.classElementKey(&classInner, m.Key, m.Computed)
			if IsAbrupt(c) {
				return c
			}
			SetFunctionName(fn, key.String(), "")
			switch m.Kind {
			case "get", "set":
				existing := target.GetOwnProperty(key)
				desc := &PropertyDescriptor{Enumerable: boolPtr(false), Configurable: boolPtr(true)}
				if existing != nil && existing.IsAccessorDescriptor() {
					desc.Get, desc.Set = existing.Get, existing.Set
				}
				if m.Kind == "get" {
					desc.Get = valuePtr(ObjectValue(fn))
				} else {
					desc.Set = valuePtr(ObjectValue(fn))
				}
				target.DefineOwnProperty(key, desc)
			default:
				target.CreateMethodProperty(key, ObjectValue(fn))
			}
		case *ast.PropertyDefinition:
			if priv, ok := m.Key.(*ast.PrivateIdentifier); ok {
				field := instanceFieldInit{Private: privEnv.Names[priv.Name], Init: m.Value, Closure: classEnv, HomeObject: proto, PrivEnv: privEnv}
				if m.Static {
					field.HomeObject = ctor
					statics = append(statics, field)
				} else {
					fields = append(fields, field)
				}
				continue
			}
			key, c := e.classElementKey(&classInner, m.Key, m.Computed)
			if IsAbrupt(c) {
				return c
			}
			field := instanceFieldInit{Key: key, Init: m.Value, Closure: classEnv, HomeObject: proto, PrivEnv: privEnv}
			if m.Static {
				field.HomeObject = ctor
				statics = append(statics, field)
			} else {
				fields = append(fields, field)
			}
		case *ast.StaticBlock:
			statics = append(statics, m)
		}
	}

	funcData(ctor).Fields = fields
	funcData(ctor).PrivateMethods = privateMethods

	if id != nil {
		classEnv.InitializeBinding(ec.Realm, id.Name, ObjectValue(ctor))
	}

	for _, st := range statics {
		sb, isBlock := st.(*ast.StaticBlock)
		if !isBlock {
			if c := e.initializeField(ec.Realm, ctor, st.(instanceFieldInit)); IsAbrupt(c) {
				return c
			}
			continue
		}
		blockEnv := NewDeclarativeEnvironment(classEnv)
		blockEc := ExecutionContext{Realm: ec.Realm, LexicalEnvironment: blockEnv, VariableEnvironment: blockEnv, PrivateEnvironment: privEnv, Function: ctor}
		blockEnv.ThisStatus = ThisInitialized
		blockEnv.ThisValue = ObjectValue(ctor)
		if c := e.blockDeclarationInstantiation(&blockEc, sb.Body); IsAbrupt(c) {
			return c
		}
		if c := e.evalStatementList(&blockEc, sb.Body); IsAbrupt(c) {
			return c
		}
	}

	return NormalCompletion(ObjectValue(ctor))
}

func (e *Evaluator) classElementKey(ec *ExecutionContext, key ast.Expression, computed bool) (PropertyKey, Completion) {
	if computed {
		c := e.refToValue(ec, e.Eval(ec, key))
		if IsAbrupt(c) {
			return PropertyKey{}, c
		}
		keyC := ToPropertyKey(c.Value)
		if IsAbrupt(keyC) {
			return PropertyKey{}, keyC
		}
		return keyC.Value.toPropertyKeyValue(), NormalCompletion(Undefined())
	}
	switch k := key.(type) {
	case *ast.Identifier:
		return StringKey(k.Name), NormalCompletion(Undefined())
	case *ast.Literal:
		if k.Kind == "string" {
			return StringKey(k.Value.(string)), NormalCompletion(Undefined())
		}
		return StringKey(k.Raw), NormalCompletion(Undefined())
	}
	return StringKey(""), NormalCompletion(Undefined())
}

// defaultConstructorBody synthesizes the implicit constructor a class
// with no explicit `constructor` gets: `constructor(...args) {
// super(...args); }` for derived classes, `constructor() {}` for base
// classes (spec.md §4.6).
func defaultConstructorBody(derived bool) ([]ast.Pattern, *ast.BlockStatement) {
	if !derived {
		return nil, &ast.BlockStatement{Body: nil}
	}
	restID := &ast.Identifier{Name: "args"}
	params := []ast.Pattern{&ast.RestElement{Argument: restID}}
	body := &ast.BlockStatement{Body: []ast.Statement{
		&ast.ExpressionStatement{Expression: &ast.CallExpression{
			Callee:    &ast.Super{},
			Arguments: []ast.Expression{&ast.SpreadElement{Argument: restID}},
		}},
	}}
	return params, body
}

// InitializeInstanceElements runs every instance field initializer and
// installs every private method/accessor declared by ctor's class onto
// obj, in source order (spec.md §4.6) — called once a base constructor
// has allocated `this`, or once a derived constructor's super() call
// has returned the superclass instance.
func InitializeInstanceElements(realm *Realm, obj *Object, ctor *Object) Completion {
	data := funcData(ctor)
	if data == nil {
		return NormalCompletion(Undefined())
	}
	for _, pm := range data.PrivateMethods {
		PrivateMethodOrAccessorAdd(obj, pm.Name, pm.Element)
	}
	for _, f := range data.Fields {
		if c := initializeFieldOn(realm, obj, f); IsAbrupt(c) {
			return c
		}
	}
	return NormalCompletion(Undefined())
}

func (e *Evaluator) initializeField(realm *Realm, target *Object, f instanceFieldInit) Completion {
	return initializeFieldOn(realm, target, f)
}

func initializeFieldOn(realm *Realm, target *Object, f instanceFieldInit) Completion {
	env := NewFunctionEnvironment(nil, nil)
	env.Outer = f.Closure
	env.ThisStatus = ThisInitialized
	env.ThisValue = ObjectValue(target)
	env.HomeObject = f.HomeObject
	ec := &ExecutionContext{Realm: realm, LexicalEnvironment: env, VariableEnvironment: env, PrivateEnvironment: f.PrivEnv}
	e := &Evaluator{VM: realm.vm}

	var v Value = Undefined()
	if f.Init != nil {
		c := e.refToValue(ec, e.Eval(ec, f.Init))
		if IsAbrupt(c) {
			return c
		}
		v = c.Value
	}
	if f.Private != nil {
		PrivateFieldAdd(target, f.Private, v)
		return NormalCompletion(Undefined())
	}
	target.CreateDataProperty(f.Key, v)
	return NormalCompletion(Undefined())
}
