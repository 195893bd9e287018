// Package ast defines the decorated syntax tree produced by the form
// parser (component D) and annotated in place by the scope decorator
// (component G): a closed sum of node kinds (section 3), each carrying a
// source span and, once decorated, scope/slot/closure-depth information.
package ast

import (
	"github.com/funvibe/funxy/internal/token"
)

// Node is the base interface every AST node satisfies.
type Node interface {
	GetSpan() (start, end token.Position)
	Accept(v Visitor)
}

// Visitor dispatches over every concrete node kind. The semantic checker
// implements it; the scope decorator uses a plain recursive walk instead
// since its control flow is too irregular per-form to fit one call per
// node (see internal/scope).
type Visitor interface {
	VisitLiteral(n *Literal)
	VisitVariable(n *Variable)
	VisitBlock(n *Block)
	VisitIf(n *If)
	VisitCall(n *Call)
	VisitAssign(n *Assign)
	VisitDefine(n *Define)
	VisitDefineValues(n *DefineValues)
	VisitLetValues(n *LetValues)
	VisitLetrecValues(n *LetrecValues)
	VisitFunction(n *Function)
	VisitList(n *List)
	VisitVector(n *Vector)
	VisitVoid(n *Void)
}

// span is embedded by every concrete node to provide GetSpan() and the
// tail-position flag the semantic checker (component H) assigns.
type span struct {
	Start, End token.Position
	tail       bool
	valueType  interface{} // *types.Descriptor once the checker runs; interface{} to avoid an import cycle
}

func (s span) GetSpan() (token.Position, token.Position) { return s.Start, s.End }

// SetTail and IsTail implement TailCarrier, promoted onto every node.
func (s *span) SetTail(t bool) { s.tail = t }
func (s span) IsTail() bool    { return s.tail }

// SetValueType and ValueType implement TypedNode, promoted onto every
// node; the concrete type stored is always *types.Descriptor.
func (s *span) SetValueType(t interface{}) { s.valueType = t }
func (s span) ValueType() interface{}      { return s.valueType }

// TailCarrier is satisfied by every node via the embedded span.
type TailCarrier interface {
	SetTail(bool)
	IsTail() bool
}

// TypedNode is satisfied by every node via the embedded span.
type TypedNode interface {
	SetValueType(interface{})
	ValueType() interface{}
}

// BindingKind classifies where a variable reference resolves to once the
// scope decorator has run (section 4.G).
type BindingKind int

const (
	// Unresolved is the zero value: the scope decorator has not yet
	// classified this reference.
	Unresolved BindingKind = iota
	Parameter
	Local
	TopLevel
	StaticTopLevel
	Closure
)

func (k BindingKind) String() string {
	switch k {
	case Parameter:
		return "parameter"
	case Local:
		return "local"
	case TopLevel:
		return "top-level"
	case StaticTopLevel:
		return "static-top-level"
	case Closure:
		return "closure"
	default:
		return "unresolved"
	}
}

// Literal is a self-evaluating constant: a boolean, character, string,
// number, or the empty list/void.
type Literal struct {
	span
	Value interface{} // bool, rune, string, numeric.Number, *datum.Symbol for a quoted symbol, or nil for '()
}

func (n *Literal) Accept(v Visitor) { v.VisitLiteral(n) }

// Variable is a reference to a binding, resolved by the scope decorator
// into one of the BindingKind classifications with an associated slot
// index and, for Closure bindings, the depth of enclosing functions to
// cross to reach the definition.
type Variable struct {
	span
	Name  string
	Kind  BindingKind
	Slot  int
	Depth int
}

func (n *Variable) Accept(v Visitor) { v.VisitVariable(n) }

// Block is a `begin`-style sequence of expressions evaluated for effect,
// with the value of the last one as the block's value.
type Block struct {
	span
	Exprs []Node
}

func (n *Block) Accept(v Visitor) { v.VisitBlock(n) }

// If is a conditional with an optional alternate (absent alternates
// evaluate to Void per the form parser's desugaring).
type If struct {
	span
	Test, Then, Else Node
}

func (n *If) Accept(v Visitor) { v.VisitIf(n) }

// Call is a procedure application, including the %apply primitive and
// arithmetic builtins the semantic checker may choose to inline.
type Call struct {
	span
	Callee Node
	Args   []Node
}

func (n *Call) Accept(v Visitor) { v.VisitCall(n) }

// Assign is a `set!` mutation of an existing binding.
type Assign struct {
	span
	Target *Variable
	Value  Node
}

func (n *Assign) Accept(v Visitor) { v.VisitAssign(n) }

// Define introduces a single top-level or internal binding.
type Define struct {
	span
	Name  string
	Value Node

	// Filled in by the scope decorator.
	Kind BindingKind
	Slot int
}

func (n *Define) Accept(v Visitor) { v.VisitDefine(n) }

// DefineValues introduces several bindings at once from a single
// multiple-values-producing expression.
type DefineValues struct {
	span
	Names []string
	Value Node

	Kind BindingKind
	Slots []int
}

func (n *DefineValues) Accept(v Visitor) { v.VisitDefineValues(n) }

// LetValues binds the results of parallel initializer expressions, each
// possibly producing multiple values, none of which is visible to any
// other initializer (section 4.D, `let-values`).
type LetValues struct {
	span
	Bindings []ValuesBinding
	Body     Node
}

func (n *LetValues) Accept(v Visitor) { v.VisitLetValues(n) }

// LetrecValues is like LetValues except every bound name is in scope for
// every initializer (section 4.D, `letrec-values`); open question 2
// resolves initializer scoping to include siblings bound by the same
// letrec-values form, not only the body.
type LetrecValues struct {
	span
	Bindings []ValuesBinding
	Body     Node
}

func (n *LetrecValues) Accept(v Visitor) { v.VisitLetrecValues(n) }

// ValuesBinding is one clause of a let-values/letrec-values form: zero or
// more names bound to the (possibly multiple) results of Init.
type ValuesBinding struct {
	Names []string
	Init  Node
	Slots []int
	Kind  BindingKind
}

// Param is one formal parameter: a name and an optional default-value
// expression (`(name default)` / `((.type T) name default)` shapes from
// 4.D). Default is nil when the formal-id carries no default.
type Param struct {
	Name    string
	Default Node
}

// Function is a `#%lambda` closure: a fixed list of formal parameters
// (optionally with a rest parameter) and a body.
type Function struct {
	span
	Params  []Param
	Rest    string // empty if there is no rest parameter
	HasRest bool
	Body    Node

	// Filled in by the scope decorator.
	NumSlots            int // total local+parameter slot count
	Depth               int // nesting depth of this function among enclosing functions
	Closures            []ClosureSlot
	MaxClosureRefDepth   int
}

func (n *Function) Accept(v Visitor) { v.VisitFunction(n) }

// ClosureSlot describes one of a Function's own bindings that a nested
// function captures, after name uniquification (section 4.G).
type ClosureSlot struct {
	Name        string
	SourceSlot  int // slot index in the declaring function's frame
	Initialized bool
}

// List constructs a fixed-length list literal from its element
// expressions (built by the form parser from quoted list data).
type List struct {
	span
	Elements []Node
	Tail     Node // nil for a proper list
}

func (n *List) Accept(v Visitor) { v.VisitList(n) }

// Vector constructs a fixed-length vector literal from its element
// expressions.
type Vector struct {
	span
	Elements []Node
}

func (n *Vector) Accept(v Visitor) { v.VisitVector(n) }

// Void is the unique "no useful value" result, produced by e.g. an `if`
// with no alternate whose test is false.
type Void struct {
	span
}

func (n *Void) Accept(v Visitor) { v.VisitVoid(n) }
