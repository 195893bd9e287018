package numeric

import (
	"math/big"
	"testing"
)

func TestShrinkInt(t *testing.T) {
	tests := []struct {
		name string
		v    *big.Int
		want Kind
	}{
		{"small", big.NewInt(42), SmallInt},
		{"negative small", big.NewInt(-1000000), SmallInt},
		{"long", big.NewInt(1 << 40), LongInt},
		{"big", new(big.Int).Lsh(big.NewInt(1), 200), BigInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromBigInt(tt.v)
			if got.Kind != tt.want {
				t.Fatalf("Kind = %v, want %v", got.Kind, tt.want)
			}
			if !got.Equal(FromBigInt(tt.v)) {
				t.Fatalf("Equal should be reflexive")
			}
		})
	}
}

func TestRationalCollapsesToInteger(t *testing.T) {
	r := NewRational(big.NewInt(10), big.NewInt(5))
	n := FromRational(r)
	if !n.IsInteger() {
		t.Fatalf("10/5 should collapse to an integer, got Kind=%v", n.Kind)
	}
	if n.AsBigInt().Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("10/5 = %v, want 2", n.AsBigInt())
	}
}

func TestRationalStaysExact(t *testing.T) {
	r := NewRational(big.NewInt(1753), big.NewInt(1000))
	n := FromRational(r)
	if n.Kind != Rational {
		t.Fatalf("Kind = %v, want Rational", n.Kind)
	}
	if !n.IsExact() {
		t.Fatalf("rational must be exact")
	}
}

func TestDoubleNeverExact(t *testing.T) {
	n := FromDouble(5.0)
	if n.IsExact() {
		t.Fatalf("double must never be exact")
	}
}

func TestIntegerPow(t *testing.T) {
	got := IntegerPow(big.NewInt(2), big.NewInt(10))
	if got.Cmp(big.NewInt(1024)) != 0 {
		t.Fatalf("2^10 = %v, want 1024", got)
	}
}
