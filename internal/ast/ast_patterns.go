package ast

// *Identifier is the simple `x` binding target: identifiers are both
// expressions and the common case of a pattern, so the Identifier node
// itself implements Pattern and no separate wrapper type exists.
func (*Identifier) patternNode() {}

type ObjectPatternProperty struct {
	Span
	Key      Expression // Identifier or computed Expression
	Value    Pattern
	Computed bool
	Shorthand bool
}

// ObjectPattern destructures an object; Rest, if non-nil, is a
// *RestElement collecting the remaining own enumerable properties.
type ObjectPattern struct {
	Span
	Properties []*ObjectPatternProperty
	Rest       *RestElement
}

func (*ObjectPattern) patternNode()     {}
func (*ObjectPattern) expressionNode()  {}

// ArrayPattern elements may be nil (elision), a Pattern, or a
// *RestElement only as the final element.
type ArrayPattern struct {
	Span
	Elements []Pattern
}

func (*ArrayPattern) patternNode()    {}
func (*ArrayPattern) expressionNode() {}

// AssignmentPattern gives a destructured binding a default value,
// e.g. `{x = 1}` or `[a, b = 2]`.
type AssignmentPattern struct {
	Span
	Left  Pattern
	Right Expression
}

func (*AssignmentPattern) patternNode()    {}
func (*AssignmentPattern) expressionNode() {}

// RestElement collects the remainder of a destructuring or parameter list.
type RestElement struct {
	Span
	Argument Pattern
}

func (*RestElement) patternNode()    {}
func (*RestElement) expressionNode() {}

// ---- Class elements ----

// ClassElement is implemented by *MethodDefinition, *PropertyDefinition,
// and *StaticBlock.
type ClassElement interface {
	Node
	classElementNode()
}

// MethodDefinition's Key is an Identifier, Literal, computed Expression,
// or *PrivateIdentifier. Kind is "method", "get", "set", or
// "constructor".
type MethodDefinition struct {
	Span
	Key      Expression
	Value    *FunctionExpression
	Kind     string
	Static   bool
	Computed bool
}

func (*MethodDefinition) classElementNode() {}

// PropertyDefinition is a class field; Value is nil when uninitialized.
type PropertyDefinition struct {
	Span
	Key      Expression
	Value    Expression
	Static   bool
	Computed bool
}

func (*PropertyDefinition) classElementNode() {}

type StaticBlock struct {
	Span
	Body []Statement
}

func (*StaticBlock) classElementNode() {}
