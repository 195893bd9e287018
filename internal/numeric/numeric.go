// Package numeric implements the Number tagged union (section 3) and the
// small set of constructors the scanner needs to build numeric literals.
// It plays the role the specification calls the "numeric library"
// collaborator (section 6): arithmetic beyond literal construction
// (integer-pow, to-double, and friends) lives here because math/big already
// gives an idiomatic, well-tested exact-arithmetic substrate — reimplementing
// bignum and rational math by hand would just be a worse copy of it.
package numeric

import (
	"math"
	"math/big"
)

// Kind tags the representation a Number currently holds.
type Kind int

const (
	SmallInt Kind = iota // machine 32-bit
	LongInt              // machine 64-bit
	BigInt               // arbitrary precision
	Rational             // exact, reduced, positive denominator
	Double
	ComplexDouble
	ComplexRational
)

func (k Kind) String() string {
	switch k {
	case SmallInt:
		return "small-int"
	case LongInt:
		return "long-int"
	case BigInt:
		return "big-int"
	case Rational:
		return "rational"
	case Double:
		return "double"
	case ComplexDouble:
		return "complex-double"
	case ComplexRational:
		return "complex-rational"
	default:
		return "unknown"
	}
}

// Number is the tagged union described in section 3. Only the field(s)
// matching Kind are meaningful.
type Number struct {
	Kind Kind

	I32 int32
	I64 int64
	Big *big.Int
	Rat *big.Rat // exact rational, Kind == Rational
	F64 float64

	// Complex components: exactly one pair is populated depending on Kind.
	ReF, ImF float64  // Kind == ComplexDouble
	ReR, ImR *big.Rat // Kind == ComplexRational
}

// FromInt64 builds a shrunk exact integer from a machine int64.
func FromInt64(v int64) Number {
	return shrinkInt(big.NewInt(v))
}

// FromBigInt builds a shrunk exact integer from an arbitrary-precision
// value. The caller's *big.Int is kept as the result's Big field in
// every representation.
func FromBigInt(v *big.Int) Number {
	return shrinkInt(v)
}

// FromDouble builds an inexact double.
func FromDouble(v float64) Number {
	return Number{Kind: Double, F64: v}
}

// FromRational builds an exact rational from a reduced, positive-denominator
// *big.Rat, collapsing to an integer when the value is integer-valued — the
// invariant in section 3 ("any exact-integer-valued rational collapses to
// an integer").
func FromRational(r *big.Rat) Number {
	if r.IsInt() {
		return shrinkInt(new(big.Int).Set(r.Num()))
	}
	return Number{Kind: Rational, Rat: r}
}

// FromComplexDouble builds an inexact complex number.
func FromComplexDouble(re, im float64) Number {
	return Number{Kind: ComplexDouble, ReF: re, ImF: im}
}

// FromComplexRational builds an exact complex number. Used only when both
// components are exact, per the invariant in section 3.
func FromComplexRational(re, im *big.Rat) Number {
	return Number{Kind: ComplexRational, ReR: re, ImR: im}
}

// shrinkInt reduces a big.Int to the smallest representation that holds it
// exactly: SmallInt if it fits in int32, LongInt if it fits in int64,
// otherwise BigInt. This implements the "shrink" invariant from section 3.
func shrinkInt(v *big.Int) Number {
	if v.IsInt64() {
		i64 := v.Int64()
		if i64 >= math.MinInt32 && i64 <= math.MaxInt32 {
			return Number{Kind: SmallInt, I32: int32(i64), I64: i64, Big: v}
		}
		return Number{Kind: LongInt, I64: i64, Big: v}
	}
	return Number{Kind: BigInt, Big: v}
}

// IsExact reports whether the number is represented without rounding.
func (n Number) IsExact() bool {
	switch n.Kind {
	case SmallInt, LongInt, BigInt, Rational, ComplexRational:
		return true
	default:
		return false
	}
}

// IsInteger reports whether the number is an exact integer.
func (n Number) IsInteger() bool {
	switch n.Kind {
	case SmallInt, LongInt, BigInt:
		return true
	default:
		return false
	}
}

// AsBigInt returns the value as a *big.Int. It panics if the number is not
// an exact integer; callers must check IsInteger first.
func (n Number) AsBigInt() *big.Int {
	switch n.Kind {
	case SmallInt, LongInt:
		if n.Big != nil {
			return n.Big
		}
		return big.NewInt(n.I64)
	case BigInt:
		return n.Big
	default:
		panic("numeric: AsBigInt on non-integer Number")
	}
}

// ToDouble converts any real (non-complex) Number to its closest double,
// per the "to-double" operation named in the collaborator interface.
func (n Number) ToDouble() float64 {
	switch n.Kind {
	case SmallInt:
		return float64(n.I32)
	case LongInt:
		return float64(n.I64)
	case BigInt:
		f := new(big.Float).SetInt(n.Big)
		v, _ := f.Float64()
		return v
	case Rational:
		v, _ := n.Rat.Float64()
		return v
	case Double:
		return n.F64
	default:
		panic("numeric: ToDouble on complex Number")
	}
}

// IntegerPow raises an exact integer base to a non-negative exact integer
// exponent, per the "integer-pow" operation named in the collaborator
// interface.
func IntegerPow(base *big.Int, exp *big.Int) *big.Int {
	return new(big.Int).Exp(base, exp, nil)
}

// NewRational constructs and reduces an exact rational num/den, per the
// "rational{num, den}" constructor named in the collaborator interface.
// It normalizes the sign so the denominator is always positive.
func NewRational(num, den *big.Int) *big.Rat {
	return new(big.Rat).SetFrac(num, den)
}

// Equal reports whether two Numbers denote the same mathematical value and
// exactness.
func (n Number) Equal(o Number) bool {
	if n.IsExact() != o.IsExact() {
		return false
	}
	if n.Kind == ComplexDouble || o.Kind == ComplexDouble || n.Kind == ComplexRational || o.Kind == ComplexRational {
		nr, ni := n.complexParts()
		or, oi := o.complexParts()
		return nr == or && ni == oi
	}
	if n.IsInteger() && o.IsInteger() {
		return n.AsBigInt().Cmp(o.AsBigInt()) == 0
	}
	if n.Kind == Rational || o.Kind == Rational {
		return n.asRat().Cmp(o.asRat()) == 0
	}
	return n.ToDouble() == o.ToDouble()
}

func (n Number) asRat() *big.Rat {
	if n.Kind == Rational {
		return n.Rat
	}
	if n.IsInteger() {
		return new(big.Rat).SetInt(n.AsBigInt())
	}
	panic("numeric: asRat on inexact Number")
}

func (n Number) complexParts() (float64, float64) {
	switch n.Kind {
	case ComplexDouble:
		return n.ReF, n.ImF
	case ComplexRational:
		re, _ := n.ReR.Float64()
		im, _ := n.ImR.Float64()
		return re, im
	default:
		return n.ToDouble(), 0
	}
}
