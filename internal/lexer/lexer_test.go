package lexer

import (
	"math"
	"math/big"
	"testing"

	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/numeric"
	"github.com/funvibe/funxy/internal/source"
	"github.com/funvibe/funxy/internal/token"
)

func scanAll(t *testing.T, src string) ([]token.Token, *diagnostics.Sink) {
	t.Helper()
	sink := diagnostics.NewSink()
	l := New(source.NewFromString("test", src), sink)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks, sink
}

func firstNumber(t *testing.T, toks []token.Token) numeric.Number {
	t.Helper()
	for _, tok := range toks {
		if tok.Kind == token.LITERAL {
			if n, ok := tok.Value.(numeric.Number); ok {
				return n
			}
		}
	}
	t.Fatalf("no numeric literal found")
	return numeric.Number{}
}

func TestCharLiteralHexEscape(t *testing.T) {
	toks, sink := scanAll(t, `#\x03bb`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if toks[0].Value.(rune) != 0x03bb {
		t.Fatalf("got %v, want U+03BB", toks[0].Value)
	}
}

func TestCharLiteralOutOfRange(t *testing.T) {
	_, sink := scanAll(t, `#\x110000`)
	if !sink.HasErrors() {
		t.Fatalf("expected NL505 diagnostic")
	}
	if sink.All()[0].Code != diagnostics.ErrInvalidHexChar {
		t.Fatalf("got %v, want NL505", sink.All()[0].Code)
	}
}

func TestStringHexEscape(t *testing.T) {
	toks, sink := scanAll(t, `"\x41bc;"`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if toks[0].Value.(string) != "Abc" {
		t.Fatalf("got %q, want %q", toks[0].Value, "Abc")
	}
}

func TestStringHexEscapeMissingDigits(t *testing.T) {
	_, sink := scanAll(t, `"\x;"`)
	if !sink.HasErrors() || sink.All()[0].Code != diagnostics.ErrInvalidHexEscape {
		t.Fatalf("expected NL506, got %v", sink.All())
	}
}

func TestExactRationalFromDecimal(t *testing.T) {
	toks, sink := scanAll(t, "#e1.753")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	n := firstNumber(t, toks)
	if n.Kind != numeric.Rational {
		t.Fatalf("Kind = %v, want Rational", n.Kind)
	}
	want := new(big.Rat).SetFrac(big.NewInt(1753), big.NewInt(1000))
	if n.Rat.Cmp(want) != 0 {
		t.Fatalf("got %v, want %v", n.Rat, want)
	}
}

func TestInexactInteger(t *testing.T) {
	toks, _ := scanAll(t, "#i5")
	n := firstNumber(t, toks)
	if n.Kind != numeric.Double || n.F64 != 5.0 {
		t.Fatalf("got %+v, want double 5.0", n)
	}
}

func TestRationalDivisionByZero(t *testing.T) {
	_, sink := scanAll(t, "1/0")
	if !sink.HasErrors() || sink.All()[0].Code != diagnostics.ErrDivisionByZero {
		t.Fatalf("expected NL501, got %v", sink.All())
	}
}

func TestPositiveInfinity(t *testing.T) {
	toks, _ := scanAll(t, "+inf.0")
	n := firstNumber(t, toks)
	if !math.IsInf(n.F64, 1) {
		t.Fatalf("got %v, want +Inf", n.F64)
	}
}

func TestNestedBlockComment(t *testing.T) {
	toks, sink := scanAll(t, "#| outer #| inner |# still-outer |# 42")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	n := firstNumber(t, toks)
	if n.AsBigInt().Int64() != 42 {
		t.Fatalf("got %v, want 42", n)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, sink := scanAll(t, "#| oops")
	if !sink.HasErrors() || sink.All()[0].Code != diagnostics.ErrUnterminatedComment {
		t.Fatalf("expected unterminated-comment, got %v", sink.All())
	}
}

func TestDatumCommentToken(t *testing.T) {
	toks, sink := scanAll(t, "#;(ignored) 42")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if toks[0].Kind != token.DATUM_COMMENT {
		t.Fatalf("got %v, want DATUM_COMMENT", toks[0].Kind)
	}
}

func TestBareIAfterDigitIsSymbol(t *testing.T) {
	toks, _ := scanAll(t, "3i")
	if toks[0].Kind != token.SYMBOL {
		t.Fatalf("got %v, want SYMBOL (open question 3: unsigned 'i' suffix is a symbol)", toks[0].Kind)
	}
}

func TestComplexWithSignedImaginary(t *testing.T) {
	toks, _ := scanAll(t, "3+4i")
	n := firstNumber(t, toks)
	if n.Kind != numeric.ComplexRational && n.Kind != numeric.ComplexDouble {
		t.Fatalf("got %v, want a complex number", n.Kind)
	}
}

func TestMultipleRadixFlags(t *testing.T) {
	_, sink := scanAll(t, "#b#x101")
	if !sink.HasErrors() || sink.All()[0].Code != diagnostics.ErrMultipleRadixFlags {
		t.Fatalf("expected NL507, got %v", sink.All())
	}
}

func TestNilLiteral(t *testing.T) {
	toks, _ := scanAll(t, "nil")
	if toks[0].Kind != token.LITERAL || toks[0].Value != nil {
		t.Fatalf("got %+v, want literal-null", toks[0])
	}
}

func TestPeriodToken(t *testing.T) {
	toks, _ := scanAll(t, "(a . b)")
	var sawPeriod bool
	for _, tok := range toks {
		if tok.Kind == token.PERIOD {
			sawPeriod = true
		}
	}
	if !sawPeriod {
		t.Fatalf("expected a PERIOD token in %v", toks)
	}
}
