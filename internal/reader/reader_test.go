package reader

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/funxy/internal/datum"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/lexer"
	"github.com/funvibe/funxy/internal/source"
)

func readAll(t *testing.T, src string) ([]datum.Datum, *diagnostics.Sink) {
	t.Helper()
	sink := diagnostics.NewSink()
	lx := lexer.New(source.NewFromString("test", src), sink)
	rd := New(lx, sink, false)
	var out []datum.Datum
	for {
		d, ok := rd.ReadDatum()
		if !ok {
			break
		}
		out = append(out, d)
	}
	return out, sink
}

func TestQuoteShorthandMatchesLongForm(t *testing.T) {
	short, sink := readAll(t, "'x")
	require.Empty(t, sink.All())
	long, sink2 := readAll(t, "(quote x)")
	require.Empty(t, sink2.All())
	require.Equal(t, datum.String(long[0]), datum.String(short[0]))
}

func TestDatumCommentSkipsOneDatum(t *testing.T) {
	ds, sink := readAll(t, "#;(ignored) 42")
	require.Empty(t, sink.All())
	require.Len(t, ds, 1)
	require.Equal(t, "42", datum.String(ds[0]))
}

func TestDottedListRoundTrips(t *testing.T) {
	ds, sink := readAll(t, "(1 . 2)")
	require.Empty(t, sink.All())
	require.Equal(t, "(1 . 2)", datum.String(ds[0]))
}

func TestMalformedDottedListReportsNL556(t *testing.T) {
	_, sink := readAll(t, "(. 2)")
	require.True(t, sink.HasErrors())
	require.Equal(t, diagnostics.ErrMalformedDottedList, sink.All()[0].Code)
}

func TestUnterminatedListRecoversForNextTopLevelDatum(t *testing.T) {
	ds, sink := readAll(t, "(1 2\n43")
	require.True(t, sink.HasErrors())
	// the reader resyncs at EOF; no crash, and the caller gets a
	// placeholder for the broken form.
	require.NotEmpty(t, ds)
}

func TestVectorLiteral(t *testing.T) {
	ds, sink := readAll(t, "#(1 2 3)")
	require.Empty(t, sink.All())
	_, ok := datum.Unwrap(ds[0]).(*datum.Vector)
	require.True(t, ok)
}

// Structural equality across a vector of non-numeric datum kinds, diffed
// wholesale against a hand-built tree rather than asserted field by field.
func TestVectorLiteralMatchesHandBuiltTree(t *testing.T) {
	ds, sink := readAll(t, `#(#t #f foo "bar")`)
	require.Empty(t, sink.All())

	want := &datum.Vector{Items: []datum.Datum{
		datum.Bool(true),
		datum.Bool(false),
		datum.Intern("foo"),
		datum.String("bar"),
	}}
	got := datum.Unwrap(ds[0])
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("vector datum mismatch (-want +got):\n%s", diff)
	}
}
