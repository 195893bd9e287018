package checker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/funxy/internal/arithmetic"
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/formparser"
	"github.com/funvibe/funxy/internal/lexer"
	"github.com/funvibe/funxy/internal/options"
	"github.com/funvibe/funxy/internal/reader"
	"github.com/funvibe/funxy/internal/scope"
	"github.com/funvibe/funxy/internal/source"
	"github.com/funvibe/funxy/internal/types"
)

func checkSource(t *testing.T, src string, opts options.Options) ([]ast.Node, *diagnostics.Sink) {
	t.Helper()
	sink := diagnostics.NewSink()
	registry := types.New()
	lx := lexer.New(source.NewFromString("test", src), sink)
	rd := reader.New(lx, sink, false)
	fp := formparser.New(sink, registry)

	var program []ast.Node
	for {
		d, ok := rd.ReadDatum()
		if !ok {
			break
		}
		program = append(program, fp.ParseForm(d))
	}
	program = scope.New(sink, opts).Decorate(program)
	New(sink, opts, registry, arithmetic.New(registry)).Check(program)
	return program, sink
}

func TestArithmeticInliningAcceptsWellFormedCall(t *testing.T) {
	_, sink := checkSource(t, `(+ 1 2 3)`, options.Default())
	require.Empty(t, sink.All())
}

func TestArithmeticInliningRejectsWrongArity(t *testing.T) {
	_, sink := checkSource(t, `(modulo 1 2 3)`, options.Default())
	require.True(t, sink.HasErrors())
	require.Equal(t, diagnostics.ErrWrongArity, sink.All()[0].Code)
}

func TestArithmeticInliningSkippedWhenDisabled(t *testing.T) {
	opts := options.Default()
	opts.OptimisticInlining = false
	_, sink := checkSource(t, `(modulo 1 2 3)`, opts)
	require.Empty(t, sink.All())
}

func TestFunctionBodyIsTailPosition(t *testing.T) {
	program, sink := checkSource(t, `(define f (#%lambda (x) (if x 1 2)))`, options.Default())
	require.Empty(t, sink.All())

	def := program[0].(*ast.Define)
	fn := def.Value.(*ast.Function)
	require.True(t, fn.Body.(ast.TailCarrier).IsTail())

	ifNode := fn.Body.(*ast.If)
	require.True(t, ifNode.Then.(ast.TailCarrier).IsTail())
	require.True(t, ifNode.Else.(ast.TailCarrier).IsTail())
	require.False(t, ifNode.Test.(ast.TailCarrier).IsTail())
}

func TestCallArgumentsAreNeverTail(t *testing.T) {
	program, sink := checkSource(t, `(+ (+ 1 2) 3)`, options.Default())
	require.Empty(t, sink.All())

	call := program[0].(*ast.Call)
	require.True(t, call.IsTail())
	for _, a := range call.Args {
		require.False(t, a.(ast.TailCarrier).IsTail())
	}
}
