// Package checker implements the semantic checker (component H): arity
// checks on arithmetic builtins via an optional inlining collaborator,
// and tail-position marking across the decorated AST.
package checker

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/options"
	"github.com/funvibe/funxy/internal/types"
)

// Arithmetic is the collaborator interface named in section 4.H: given a
// known builtin name and its argument count, it reports whether the call
// is well-formed and, if so, the resulting value type.
type Arithmetic interface {
	Check(name string, argCount int) (valueType *types.Descriptor, ok bool, reason string)
}

// arithmeticBuiltins is the closed set of names the checker may inline.
var arithmeticBuiltins = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "modulo": true,
}

// Checker walks the decorated AST performing the checks in 4.H.
type Checker struct {
	sink        *diagnostics.Sink
	opts        options.Options
	registry    *types.Registry
	arithmetic  Arithmetic
}

// New creates a Checker. arithmetic may be nil; when nil, arithmetic
// inlining is skipped regardless of the OptimisticInlining toggle (there
// is simply no collaborator to consult).
func New(sink *diagnostics.Sink, opts options.Options, registry *types.Registry, arithmetic Arithmetic) *Checker {
	return &Checker{sink: sink, opts: opts, registry: registry, arithmetic: arithmetic}
}

// Check runs the checker over a decorated top-level program. Every node
// not in tail position is implicitly non-tail (the zero value); a
// top-level form's own value is the final result of its compilation
// unit and is therefore treated as a tail position.
func (c *Checker) Check(program []ast.Node) {
	for _, n := range program {
		c.markTail(n, true)
		n.Accept(c)
	}
}

// markTail implements the tail-distributing rule: If's branches inherit
// the parent's tail-ness, a Block's last child inherits it, and every
// other child position is non-tail.
func (c *Checker) markTail(n ast.Node, isTail bool) {
	if n == nil {
		return
	}
	if tc, ok := n.(ast.TailCarrier); ok {
		tc.SetTail(isTail)
	}
	switch v := n.(type) {
	case *ast.If:
		c.markTail(v.Test, false)
		c.markTail(v.Then, isTail)
		c.markTail(v.Else, isTail)
	case *ast.Block:
		for i, e := range v.Exprs {
			c.markTail(e, isTail && i == len(v.Exprs)-1)
		}
	case *ast.Call:
		c.markTail(v.Callee, false)
		for _, a := range v.Args {
			c.markTail(a, false)
		}
	case *ast.Assign:
		c.markTail(v.Value, false)
	case *ast.Define:
		c.markTail(v.Value, false)
	case *ast.DefineValues:
		c.markTail(v.Value, false)
	case *ast.LetValues:
		for _, b := range v.Bindings {
			c.markTail(b.Init, false)
		}
		c.markTail(v.Body, isTail)
	case *ast.LetrecValues:
		for _, b := range v.Bindings {
			c.markTail(b.Init, false)
		}
		c.markTail(v.Body, isTail)
	case *ast.Function:
		for _, p := range v.Params {
			c.markTail(p.Default, false)
		}
		c.markTail(v.Body, true) // a function body's value is always in tail position of itself
	case *ast.List:
		for _, e := range v.Elements {
			c.markTail(e, false)
		}
		c.markTail(v.Tail, false)
	case *ast.Vector:
		for _, e := range v.Elements {
			c.markTail(e, false)
		}
	}
}

// --- ast.Visitor ---

func (c *Checker) VisitLiteral(n *ast.Literal) {}
func (c *Checker) VisitVariable(n *ast.Variable) {}

func (c *Checker) VisitBlock(n *ast.Block) {
	for _, e := range n.Exprs {
		e.Accept(c)
	}
}

func (c *Checker) VisitIf(n *ast.If) {
	n.Test.Accept(c)
	n.Then.Accept(c)
	if n.Else != nil {
		n.Else.Accept(c)
	}
}

func (c *Checker) VisitCall(n *ast.Call) {
	n.Callee.Accept(c)
	for _, a := range n.Args {
		a.Accept(c)
	}
	c.checkArithmeticInlining(n)
}

// checkArithmeticInlining implements the single rule named in 4.H: a
// Call whose callee is a Variable naming a known arithmetic builtin, with
// optimistic inlining enabled and a collaborator present, has its arity
// checked and its value type propagated onto the call. Operand types are
// not examined.
func (c *Checker) checkArithmeticInlining(n *ast.Call) {
	if !c.opts.OptimisticInlining || c.arithmetic == nil {
		return
	}
	callee, ok := n.Callee.(*ast.Variable)
	if !ok || !arithmeticBuiltins[callee.Name] {
		return
	}
	valueType, ok, reason := c.arithmetic.Check(callee.Name, len(n.Args))
	if !ok {
		start, end := n.GetSpan()
		c.sink.Add(diagnostics.NewAt(diagnostics.ErrWrongArity, start, end, "%s", reason))
		return
	}
	n.SetValueType(valueType)
}

func (c *Checker) VisitAssign(n *ast.Assign) {
	n.Target.Accept(c)
	n.Value.Accept(c)
}

func (c *Checker) VisitDefine(n *ast.Define) {
	n.Value.Accept(c)
}

func (c *Checker) VisitDefineValues(n *ast.DefineValues) {
	n.Value.Accept(c)
}

func (c *Checker) VisitLetValues(n *ast.LetValues) {
	for _, b := range n.Bindings {
		b.Init.Accept(c)
	}
	n.Body.Accept(c)
}

func (c *Checker) VisitLetrecValues(n *ast.LetrecValues) {
	for _, b := range n.Bindings {
		b.Init.Accept(c)
	}
	n.Body.Accept(c)
}

func (c *Checker) VisitFunction(n *ast.Function) {
	for _, p := range n.Params {
		if p.Default != nil {
			p.Default.Accept(c)
		}
	}
	n.Body.Accept(c)
}

func (c *Checker) VisitList(n *ast.List) {
	for _, e := range n.Elements {
		e.Accept(c)
	}
	if n.Tail != nil {
		n.Tail.Accept(c)
	}
}

func (c *Checker) VisitVector(n *ast.Vector) {
	for _, e := range n.Elements {
		e.Accept(c)
	}
}

func (c *Checker) VisitVoid(n *ast.Void) {}
