// Package reader implements the datum parser (component C): it consumes a
// token stream from the scanner and produces datum trees, optionally
// decorated with source-location syntax objects.
package reader

import (
	"github.com/funvibe/funxy/internal/datum"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/numeric"
	"github.com/funvibe/funxy/internal/token"
)

// TokenSource is anything that can hand the reader one token at a time;
// satisfied by *lexer.Lexer. Kept as an interface so tests can drive the
// reader from a canned token slice without a real scanner.
type TokenSource interface {
	NextToken() token.Token
}

// Reader turns a token stream into datum trees (section 4.C).
type Reader struct {
	src            TokenSource
	sink           *diagnostics.Sink
	preserveSyntax bool

	cur        token.Token
	lastEndPos token.Position
}

// New creates a Reader. When preserveSyntax is true, every datum it
// produces is wrapped in a *datum.SyntaxObject carrying its source span;
// otherwise raw datums are returned.
func New(src TokenSource, sink *diagnostics.Sink, preserveSyntax bool) *Reader {
	r := &Reader{src: src, sink: sink, preserveSyntax: preserveSyntax}
	r.cur = r.src.NextToken()
	return r
}

func (r *Reader) advance() {
	r.lastEndPos = r.cur.End
	r.cur = r.src.NextToken()
}

// AtEOF reports whether the token stream is exhausted.
func (r *Reader) AtEOF() bool {
	return r.cur.Kind == token.EOF
}

// syntaxError unwinds to the caller's nearest recovery point, per the one
// well-defined control-flow exception the specification allows (section 7):
// it records a diagnostic and panics with this sentinel type, which ReadDatum
// recovers from, yielding one failed top-level datum per parse attempt.
type syntaxError struct{}

func (r *Reader) fail(code diagnostics.Code, format string, args ...interface{}) {
	r.sink.Add(diagnostics.New(code, r.cur, format, args...))
	panic(syntaxError{})
}

// ReadDatum reads exactly one datum (collapsing any number of leading
// #; datum-comments) or returns ok=false at end of stream. On a syntax
// error it records a diagnostic and returns (Null, true) so callers can
// keep reading subsequent top-level forms.
func (r *Reader) ReadDatum() (d datum.Datum, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			if _, isSyntaxErr := rec.(syntaxError); isSyntaxErr {
				r.resync()
				d, ok = datum.Null, true
				return
			}
			panic(rec)
		}
	}()
	return r.readDatum()
}

// resync advances past the rest of the current token stream up to (and
// including) the next token at nesting depth zero, so one malformed datum
// does not cascade into spurious diagnostics for everything after it.
func (r *Reader) resync() {
	depth := 0
	for {
		switch r.cur.Kind {
		case token.EOF:
			return
		case token.LPAREN, token.LBRACKET, token.VECTOR_OPEN:
			depth++
		case token.RPAREN, token.RBRACKET:
			depth--
			if depth <= 0 {
				r.advance()
				return
			}
		}
		r.advance()
		if depth <= 0 {
			return
		}
	}
}

func (r *Reader) readDatum() (datum.Datum, bool) {
	for r.cur.Kind == token.DATUM_COMMENT {
		r.advance()
		r.readDatumRaw() // discard exactly one following datum
	}
	if r.cur.Kind == token.EOF {
		return nil, false
	}
	return r.readDatumRaw(), true
}

// readDatumRaw reads one datum without datum-comment collapsing at the top
// (used for the datum immediately following #; so it too may itself start
// with another #;, and internally by list/vector readers).
func (r *Reader) readDatumRaw() datum.Datum {
	for r.cur.Kind == token.DATUM_COMMENT {
		r.advance()
		r.readDatumRaw()
	}

	start := r.cur.Start
	tok := r.cur

	switch tok.Kind {
	case token.LITERAL:
		r.advance()
		return r.wrap(literalDatum(tok), start, tok.End)

	case token.SYMBOL:
		r.advance()
		name, _ := tok.Value.(string)
		if name == "" {
			name = tok.Text
		}
		return r.wrap(datum.Intern(name), start, tok.End)

	case token.LPAREN, token.LBRACKET:
		return r.readList(tok.Kind)

	case token.VECTOR_OPEN:
		return r.readVector()

	case token.QUOTE:
		r.advance()
		inner := r.readDatumRaw()
		return r.wrap(wrapForm("quote", inner), start, r.lastEndPos)

	case token.BACKQUOTE:
		r.advance()
		inner := r.readDatumRaw()
		return r.wrap(wrapForm("quasiquote", inner), start, r.lastEndPos)

	case token.COMMA:
		r.advance()
		inner := r.readDatumRaw()
		return r.wrap(wrapForm("unquote", inner), start, r.lastEndPos)

	case token.SPLICE:
		r.advance()
		inner := r.readDatumRaw()
		return r.wrap(wrapForm("unquote-splicing", inner), start, r.lastEndPos)

	case token.EOF:
		r.fail(diagnostics.ErrUnexpectedEOF, "unexpected end of input")
		return nil

	default:
		r.fail(diagnostics.ErrUnexpected, "unexpected token %q", tok.Text)
		return nil
	}
}

func literalDatum(tok token.Token) datum.Datum {
	switch v := tok.Value.(type) {
	case nil:
		return datum.Null
	case bool:
		return datum.Bool(v)
	case rune:
		return datum.Char(v)
	case string:
		return datum.String(v)
	case numeric.Number:
		return datum.Number{Number: v}
	default:
		return datum.Null
	}
}

func wrapForm(head string, arg datum.Datum) datum.Datum {
	return datum.NewList(datum.Intern(head), arg)
}

// closeFor returns the matching close-bracket kind for an open-bracket kind.
func closeFor(open token.Kind) token.Kind {
	if open == token.LBRACKET {
		return token.RBRACKET
	}
	return token.RPAREN
}

func (r *Reader) readList(open token.Kind) datum.Datum {
	start := r.cur.Start
	want := closeFor(open)
	r.advance() // consume '(' or '['

	var items []datum.Datum
	var tail datum.Datum = datum.Null

	for {
		for r.cur.Kind == token.DATUM_COMMENT {
			r.advance()
			r.readDatumRaw()
		}
		if r.cur.Kind == want {
			break
		}
		if r.cur.Kind == token.EOF {
			r.fail(diagnostics.ErrUnexpectedEOF, "unterminated list")
		}
		if r.cur.Kind == token.PERIOD {
			r.advance()
			if len(items) == 0 {
				r.fail(diagnostics.ErrMalformedDottedList, "malformed dotted list: nothing before '.'")
			}
			tail = r.readDatumRaw()
			for r.cur.Kind == token.DATUM_COMMENT {
				r.advance()
				r.readDatumRaw()
			}
			if r.cur.Kind != want {
				r.fail(diagnostics.ErrMalformedDottedList, "malformed dotted list: expected closing bracket after dotted tail")
			}
			break
		}
		items = append(items, r.readDatumRaw())
	}
	end := r.cur.End
	r.advance() // consume closing bracket

	d := datum.NewDottedList(tail, items...)
	return r.wrap(d, start, end)
}

func (r *Reader) readVector() datum.Datum {
	start := r.cur.Start
	r.advance() // consume '#('
	var items []datum.Datum
	for r.cur.Kind != token.RPAREN {
		if r.cur.Kind == token.EOF {
			r.fail(diagnostics.ErrUnexpectedEOF, "unterminated vector")
		}
		items = append(items, r.readDatumRaw())
	}
	end := r.cur.End
	r.advance()
	return r.wrap(&datum.Vector{Items: items}, start, end)
}

func (r *Reader) wrap(d datum.Datum, start, end token.Position) datum.Datum {
	if !r.preserveSyntax {
		return d
	}
	return &datum.SyntaxObject{Datum: d, Start: start, End: end}
}
