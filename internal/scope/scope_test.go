package scope

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/formparser"
	"github.com/funvibe/funxy/internal/lexer"
	"github.com/funvibe/funxy/internal/options"
	"github.com/funvibe/funxy/internal/reader"
	"github.com/funvibe/funxy/internal/source"
	"github.com/funvibe/funxy/internal/types"
)

func decorate(t *testing.T, src string, opts options.Options) ([]ast.Node, *diagnostics.Sink) {
	t.Helper()
	sink := diagnostics.NewSink()
	lx := lexer.New(source.NewFromString("test", src), sink)
	rd := reader.New(lx, sink, false)
	fp := formparser.New(sink, types.New())

	var program []ast.Node
	for {
		d, ok := rd.ReadDatum()
		if !ok {
			break
		}
		program = append(program, fp.ParseForm(d))
	}
	program = New(sink, opts).Decorate(program)
	return program, sink
}

func findVariable(t *testing.T, n ast.Node, name string) *ast.Variable {
	t.Helper()
	var found *ast.Variable
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if found != nil || n == nil {
			return
		}
		switch v := n.(type) {
		case *ast.Variable:
			if v.Name == name {
				found = v
			}
		case *ast.Block:
			for _, e := range v.Exprs {
				walk(e)
			}
		case *ast.If:
			walk(v.Test)
			walk(v.Then)
			walk(v.Else)
		case *ast.Call:
			walk(v.Callee)
			for _, a := range v.Args {
				walk(a)
			}
		case *ast.Assign:
			walk(v.Value)
		case *ast.Define:
			walk(v.Value)
		case *ast.Function:
			walk(v.Body)
		}
	}
	for _, n := range []ast.Node{n} {
		walk(n)
	}
	return found
}

// Scenario 4: disabling allowRedefinition still lets a fresh top-level
// `define` resolve as a static top-level binding, and a lambda body
// referring to it resolves `x` to that binding rather than reporting a
// free/unassigned use.
func TestDefineThenCaptureInClosure(t *testing.T) {
	opts := options.Default()
	opts.Checked = false
	opts.AllowRedefinition = false
	program, sink := decorate(t, `(define x 5) (define foo (#%lambda () (+ x 1)))`, opts)
	require.Empty(t, sink.All())

	def := program[0].(*ast.Define)
	require.Equal(t, ast.StaticTopLevel, def.Kind)
}

// Scenario 5: a variable captured three function boundaries away from
// its declaring frame must resolve with closure depth 3.
func TestNestedClosureDepth(t *testing.T) {
	opts := options.Default()
	program, sink := decorate(t, `(define f (#%lambda (x) (#%lambda (y) (#%lambda (z) (#%lambda (n) (+ x y z n))))))`, opts)
	require.Empty(t, sink.All())

	def := program[0].(*ast.Define)
	outer := def.Value.(*ast.Function)
	xRef := findVariable(t, outer, "x")
	require.NotNil(t, xRef)
	require.Equal(t, ast.Closure, xRef.Kind)
	require.Equal(t, 3, xRef.Depth)
}

// Scenario 6: writing to a top-level binding declared with
// allowRedefinition=false is an error.
func TestWriteToReadOnlyTopLevelIsFlagged(t *testing.T) {
	opts := options.Default()
	opts.AllowRedefinition = false
	_, sink := decorate(t, `(define x 5) (set! x 6)`, opts)
	require.True(t, sink.HasErrors())
	require.Equal(t, diagnostics.ErrReadOnlyAssignment, sink.All()[0].Code)
}

func TestAllowRedefinitionProducesPlainTopLevel(t *testing.T) {
	opts := options.Default()
	opts.AllowRedefinition = true
	program, sink := decorate(t, `(define x 5)`, opts)
	require.Empty(t, sink.All())
	def := program[0].(*ast.Define)
	require.Equal(t, ast.TopLevel, def.Kind)
}

func TestUnassignedVariableUseIsFlagged(t *testing.T) {
	_, sink := decorate(t, `(#%lambda (x) (if x y x))`, options.Default())
	require.True(t, sink.HasErrors())
	require.Equal(t, diagnostics.ErrUnassignedVariableUsed, sink.All()[0].Code)
}

// A parameter default expression is resolved under the enclosing scope,
// so a free variable inside it is diagnosed just like any other
// unassigned use (4.G).
func TestUnassignedVariableInParameterDefaultIsFlagged(t *testing.T) {
	_, sink := decorate(t, `(#%lambda ((x (+ undefinedvar 1))) x)`, options.Default())
	require.True(t, sink.HasErrors())
	require.Equal(t, diagnostics.ErrUnassignedVariableUsed, sink.All()[0].Code)
}

// A parameter default resolves top-level bindings declared before the
// lambda, confirming defaults are walked under the outer scope rather
// than being skipped entirely.
func TestParameterDefaultResolvesOuterBinding(t *testing.T) {
	program, sink := decorate(t, `(define n 5) (define f (#%lambda ((x n)) x))`, options.Default())
	require.Empty(t, sink.All())

	def := program[1].(*ast.Define)
	fn := def.Value.(*ast.Function)
	nRef := findVariable(t, fn.Params[0].Default, "n")
	require.NotNil(t, nRef)
	require.Equal(t, ast.StaticTopLevel, nRef.Kind)
}

func TestVariableRedefinedWithoutAllowRedefinitionIsFlagged(t *testing.T) {
	opts := options.Default()
	opts.AllowRedefinition = false
	_, sink := decorate(t, `(define x 1) (define x 2)`, opts)
	require.True(t, sink.HasErrors())
	require.Equal(t, diagnostics.ErrVariableRedefined, sink.All()[0].Code)
}

func TestDecorationIsIdempotentOnSlotAssignment(t *testing.T) {
	program, sink := decorate(t, `(define f (#%lambda (x) (#%lambda (y) (+ x y))))`, options.Default())
	require.Empty(t, sink.All())

	def := program[0].(*ast.Define)
	inner := def.Value.(*ast.Function).Body.(*ast.Function)
	before := findVariable(t, inner, "x")
	slotBefore, depthBefore := before.Slot, before.Depth

	sink2 := diagnostics.NewSink()
	New(sink2, options.Default()).Decorate(program)
	after := findVariable(t, def.Value.(*ast.Function).Body.(*ast.Function), "x")
	require.Equal(t, slotBefore, after.Slot)
	require.Equal(t, depthBefore, after.Depth)
}
