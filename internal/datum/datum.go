// Package datum implements the s-expression data model (section 3): the
// sum type produced by the datum parser (component C) before the form
// parser (component D) recognizes special forms.
package datum

import (
	"fmt"

	"github.com/funvibe/funxy/internal/numeric"
	"github.com/funvibe/funxy/internal/token"
)

// Datum is any s-expression value: Null, bool, Char, string, *Symbol,
// numeric.Number, *Pair, or *Vector.
type Datum interface {
	isDatum()
}

// Null is the unique empty-list value.
type nullType struct{}

func (nullType) isDatum() {}

// Null is the singleton empty list. Compare datums against it with ==.
var Null Datum = nullType{}

// IsNull reports whether d is the empty list.
func IsNull(d Datum) bool {
	_, ok := d.(nullType)
	return ok
}

// Bool wraps a boolean literal.
type Bool bool

func (Bool) isDatum() {}

// Char wraps a single Unicode code point.
type Char rune

func (Char) isDatum() {}

// String wraps a string literal. Strings are not interned.
type String string

func (String) isDatum() {}

func (*Symbol) isDatum() {}

// Number wraps a value from the numeric tower (section 3).
type Number struct {
	numeric.Number
}

func (Number) isDatum() {}

// Pair is a cons cell; Cdr may be any datum, yielding proper lists (Cdr
// chains to Null) or dotted lists (Cdr terminates in something else).
type Pair struct {
	Car Datum
	Cdr Datum
}

func (*Pair) isDatum() {}

// Vector is an ordered, fixed-length sequence of datums.
type Vector struct {
	Items []Datum
}

func (*Vector) isDatum() {}

// NewList builds a proper list from items, terminated by Null.
func NewList(items ...Datum) Datum {
	var d Datum = Null
	for i := len(items) - 1; i >= 0; i-- {
		d = &Pair{Car: items[i], Cdr: d}
	}
	return d
}

// NewDottedList builds a list from items terminated by tail instead of Null.
func NewDottedList(tail Datum, items ...Datum) Datum {
	d := tail
	for i := len(items) - 1; i >= 0; i-- {
		d = &Pair{Car: items[i], Cdr: d}
	}
	return d
}

// ListToSlice flattens a proper list into a slice. ok is false if d is not
// a proper list (i.e. it is dotted or not a list at all).
func ListToSlice(d Datum) (items []Datum, ok bool) {
	for {
		if IsNull(d) {
			return items, true
		}
		p, isPair := d.(*Pair)
		if !isPair {
			return items, false
		}
		items = append(items, p.Car)
		d = p.Cdr
	}
}

// SyntaxObject wraps a datum with its source span (section 3). It is
// produced only when the datum parser is run in preserve-syntax mode.
type SyntaxObject struct {
	Datum Datum
	Start token.Position
	End   token.Position
}

func (*SyntaxObject) isDatum() {}

// Unwrap strips any SyntaxObject layers, returning the underlying raw
// datum. This lets the form parser handle both preserve-syntax and raw
// trees uniformly (design notes, section 9).
func Unwrap(d Datum) Datum {
	for {
		so, ok := d.(*SyntaxObject)
		if !ok {
			return d
		}
		d = so.Datum
	}
}

// Span returns the source span of d if it is a SyntaxObject, or the zero
// span otherwise.
func Span(d Datum) (start, end token.Position) {
	if so, ok := d.(*SyntaxObject); ok {
		return so.Start, so.End
	}
	return token.Position{}, token.Position{}
}

// String renders a datum the way it would be read back (used for the
// round-trip property in section 8 and for diagnostics). Exact numbers
// read back to the same value; doubles are printed with Go's %v
// formatting, so an integer-valued double prints without a decimal
// point and infinities print as +Inf/-Inf.
func String(d Datum) string {
	d = Unwrap(d)
	switch v := d.(type) {
	case nullType:
		return "()"
	case Bool:
		if v {
			return "#t"
		}
		return "#f"
	case Char:
		return fmt.Sprintf("#\\%c", rune(v))
	case String:
		return fmt.Sprintf("%q", string(v))
	case *Symbol:
		return v.Name
	case Number:
		return numberString(v.Number)
	case *Pair:
		return pairString(v)
	case *Vector:
		s := "#("
		for i, item := range v.Items {
			if i > 0 {
				s += " "
			}
			s += String(item)
		}
		return s + ")"
	default:
		return "#<unknown>"
	}
}

func pairString(p *Pair) string {
	s := "("
	first := true
	var d Datum = p
	for {
		pp, ok := Unwrap(d).(*Pair)
		if !ok {
			break
		}
		if !first {
			s += " "
		}
		first = false
		s += String(pp.Car)
		d = pp.Cdr
	}
	rest := Unwrap(d)
	if !IsNull(rest) {
		s += " . " + String(rest)
	}
	return s + ")"
}

func numberString(n numeric.Number) string {
	switch {
	case n.IsInteger():
		return n.AsBigInt().String()
	case n.Kind == numeric.Rational:
		return n.Rat.RatString()
	case n.Kind == numeric.ComplexDouble:
		return fmt.Sprintf("%v%+vi", n.ReF, n.ImF)
	case n.Kind == numeric.ComplexRational:
		im := n.ImR.RatString()
		if n.ImR.Sign() >= 0 {
			im = "+" + im
		}
		return n.ReR.RatString() + im + "i"
	default:
		return fmt.Sprintf("%v", n.ToDouble())
	}
}
