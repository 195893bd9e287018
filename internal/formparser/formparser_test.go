package formparser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/lexer"
	"github.com/funvibe/funxy/internal/reader"
	"github.com/funvibe/funxy/internal/source"
	"github.com/funvibe/funxy/internal/types"
)

func parseSource(t *testing.T, src string) ([]ast.Node, *diagnostics.Sink) {
	t.Helper()
	sink := diagnostics.NewSink()
	lx := lexer.New(source.NewFromString("test", src), sink)
	rd := reader.New(lx, sink, false)

	var program []ast.Node
	p := New(sink, types.New())
	for {
		d, ok := rd.ReadDatum()
		if !ok {
			break
		}
		program = append(program, p.ParseForm(d))
	}
	return program, sink
}

func TestIfWithoutElseSynthesizesVoid(t *testing.T) {
	nodes, sink := parseSource(t, "(if #t 1)")
	require.Empty(t, sink.All())
	ifNode, ok := nodes[0].(*ast.If)
	require.True(t, ok)
	_, ok = ifNode.Else.(*ast.Void)
	require.True(t, ok)
}

func TestBeginWithNoBodyIsVoid(t *testing.T) {
	nodes, sink := parseSource(t, "(begin)")
	require.Empty(t, sink.All())
	_, ok := nodes[0].(*ast.Void)
	require.True(t, ok)
}

func TestBeginWithOneExprInlines(t *testing.T) {
	nodes, sink := parseSource(t, "(begin 42)")
	require.Empty(t, sink.All())
	_, ok := nodes[0].(*ast.Literal)
	require.True(t, ok, "single-expression begin should inline, not wrap in a Block")
}

func TestDefineIsSugarForSingleValueDefineValues(t *testing.T) {
	nodes, sink := parseSource(t, "(define x 5)")
	require.Empty(t, sink.All())
	def, ok := nodes[0].(*ast.Define)
	require.True(t, ok)
	require.Equal(t, "x", def.Name)
}

func TestNestedDefineInsideLambdaIsFlagged(t *testing.T) {
	_, sink := parseSource(t, "(#%lambda () (define x 1) x)")
	require.True(t, sink.HasErrors())
	require.Equal(t, diagnostics.ErrUnexpectedDefine, sink.All()[0].Code)
}

func TestLambdaFormalsRejectDuplicateParameterNames(t *testing.T) {
	_, sink := parseSource(t, "(#%lambda (x x) x)")
	require.True(t, sink.HasErrors())
}

func TestApplyFormParses(t *testing.T) {
	nodes, sink := parseSource(t, "(%apply f (list 1 2))")
	require.Empty(t, sink.All())
	_, ok := nodes[0].(*ast.Call)
	require.True(t, ok)
}
