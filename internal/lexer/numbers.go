package lexer

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/numeric"
	"github.com/funvibe/funxy/internal/token"
)

// This file implements the numeric sublanguage (section 4.B.1). Per the
// design notes, the grammar is matched against the whole delimiter-
// terminated lexeme rather than driven character-by-character off the
// source reader; a hand-rolled scan plays the role the notes say a
// precompiled regex could equally well play.

// tryScanNumber consumes the current run of non-delimiter characters and
// attempts to parse it as a number under the given radix/exactness flags.
// On failure it restores the reader so the caller can re-scan the same
// text as a symbol (or, when flags were supplied, report expected-number).
func (l *Lexer) tryScanNumber(start token.Position, radix int, exactness byte) (token.Token, bool) {
	l.r.Save()
	run := l.readRun()
	n, recognized, divByZero := parseNumberLexeme(run, radix, exactness)
	if !recognized {
		l.r.Restore()
		return token.Token{}, false
	}
	l.r.Discard()
	if divByZero {
		d := diagnostics.New(diagnostics.ErrDivisionByZero, token.Token{Start: start, End: l.pos()}, "division by zero in rational literal %q", run)
		l.sink.Add(d)
	}
	return token.Token{Kind: token.LITERAL, Value: n, Text: run, Start: start, End: l.pos()}, true
}

// scanFlaggedNumber handles the #b #o #d #x #i #e prefix forms. Multiple
// radix flags or multiple exactness flags are diagnosed (NL507/NL508) but
// do not abort the scan; the last flag of each kind wins.
func (l *Lexer) scanFlaggedNumber(start token.Position) token.Token {
	radix := 10
	var exactness byte
	radixSet, exactnessSet := false, false

	for {
		switch l.r.Current() {
		case 'b', 'B':
			if radixSet {
				l.sink.Add(diagnostics.New(diagnostics.ErrMultipleRadixFlags, token.Token{Start: start, End: l.pos()}, "multiple radix flags"))
			}
			radix, radixSet = 2, true
		case 'o', 'O':
			if radixSet {
				l.sink.Add(diagnostics.New(diagnostics.ErrMultipleRadixFlags, token.Token{Start: start, End: l.pos()}, "multiple radix flags"))
			}
			radix, radixSet = 8, true
		case 'd', 'D':
			if radixSet {
				l.sink.Add(diagnostics.New(diagnostics.ErrMultipleRadixFlags, token.Token{Start: start, End: l.pos()}, "multiple radix flags"))
			}
			radix, radixSet = 10, true
		case 'x', 'X':
			if radixSet {
				l.sink.Add(diagnostics.New(diagnostics.ErrMultipleRadixFlags, token.Token{Start: start, End: l.pos()}, "multiple radix flags"))
			}
			radix, radixSet = 16, true
		case 'e', 'E':
			if exactnessSet {
				l.sink.Add(diagnostics.New(diagnostics.ErrMultipleExactness, token.Token{Start: start, End: l.pos()}, "multiple exactness flags"))
			}
			exactness, exactnessSet = 'e', true
		case 'i', 'I':
			if exactnessSet {
				l.sink.Add(diagnostics.New(diagnostics.ErrMultipleExactness, token.Token{Start: start, End: l.pos()}, "multiple exactness flags"))
			}
			exactness, exactnessSet = 'i', true
		}
		l.r.Advance() // consume the flag letter
		if l.r.Current() == '#' {
			l.r.Advance() // consume '#', loop for the next flag
			continue
		}
		break
	}

	if tok, ok := l.tryScanNumber(start, radix, exactness); ok {
		return tok
	}
	run := l.readRun()
	l.sink.Add(diagnostics.New(diagnostics.ErrExpectedNumber, token.Token{Start: start, End: l.pos()}, "expected a number after radix/exactness flags, got %q", run))
	return token.Token{Kind: token.ILLEGAL, Text: run, Start: start, End: l.pos()}
}

func digitAllowed(c byte, radix int) bool {
	switch radix {
	case 2:
		return c == '0' || c == '1'
	case 8:
		return c >= '0' && c <= '7'
	case 10:
		return c >= '0' && c <= '9'
	case 16:
		return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	default:
		return false
	}
}

// isExpMarker reports whether c introduces an exponent for the given
// radix. e/f are excluded for hex since they are themselves hex digits,
// per the "extra-exp-chars" distinction the design notes call out.
func isExpMarker(c byte, radix int) bool {
	switch c {
	case 'd', 'D', 'l', 'L', 's', 'S':
		return true
	case 'e', 'E', 'f', 'F':
		return radix != 16
	default:
		return false
	}
}

// parseReal splits s into sign/whole/frac/exponent components under radix.
// ok is false if s is not a well-formed real lexeme (leftover characters,
// a bare sign, a bare '.', or a dangling exponent marker).
func parseReal(s string, radix int) (sign int, whole, frac string, hasExp bool, expSign int, expDigits string, ok bool) {
	i := 0
	sign = 1
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			sign = -1
		}
		i++
	}
	start := i
	for i < len(s) && digitAllowed(s[i], radix) {
		i++
	}
	whole = s[start:i]
	if i < len(s) && s[i] == '.' {
		i++
		start2 := i
		for i < len(s) && digitAllowed(s[i], radix) {
			i++
		}
		frac = s[start2:i]
	}
	if whole == "" && frac == "" {
		return sign, "", "", false, 0, "", false
	}
	if i < len(s) && isExpMarker(s[i], radix) {
		i++
		hasExp = true
		expSign = 1
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			if s[i] == '-' {
				expSign = -1
			}
			i++
		}
		start3 := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		expDigits = s[start3:i]
		if expDigits == "" {
			return sign, whole, frac, hasExp, expSign, "", false
		}
	}
	if i != len(s) {
		return sign, whole, frac, hasExp, expSign, expDigits, false
	}
	return sign, whole, frac, hasExp, expSign, expDigits, true
}

// buildExactRat folds whole/frac/exponent into a single exact *big.Rat,
// treating the exponent as a power of radix (generalizing the usual
// decimal-exponent convention to every supported base).
func buildExactRat(sign int, whole, frac string, radix int, hasExp bool, expSign int, expDigits string) (*big.Rat, bool) {
	combined := whole + frac
	if combined == "" {
		combined = "0"
	}
	n := new(big.Int)
	if _, ok := n.SetString(combined, radix); !ok {
		return nil, false
	}
	rat := new(big.Rat).SetInt(n)
	if len(frac) > 0 {
		scale := new(big.Int).Exp(big.NewInt(int64(radix)), big.NewInt(int64(len(frac))), nil)
		rat.Quo(rat, new(big.Rat).SetInt(scale))
	}
	if hasExp {
		e, err := strconv.Atoi(expDigits)
		if err != nil {
			return nil, false
		}
		scale := new(big.Int).Exp(big.NewInt(int64(radix)), big.NewInt(int64(e)), nil)
		scaleRat := new(big.Rat).SetInt(scale)
		if expSign < 0 {
			rat.Quo(rat, scaleRat)
		} else {
			rat.Mul(rat, scaleRat)
		}
	}
	if sign < 0 {
		rat.Neg(rat)
	}
	return rat, true
}

// parseRealOrRational parses a bare real or rational lexeme (no complex
// suffix, no radix/exactness flags baked in beyond what the caller
// resolved). It reports exactness so the caller can combine two parts into
// a complex number per the rule in section 4.B.1.
func parseRealOrRational(s string, radix int, exactness byte) (n numeric.Number, exact bool, recognized bool, divByZero bool) {
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		numStr, denStr := s[:idx], s[idx+1:]
		sign := 1
		if len(numStr) > 0 && (numStr[0] == '+' || numStr[0] == '-') {
			if numStr[0] == '-' {
				sign = -1
			}
			numStr = numStr[1:]
		}
		if numStr == "" || denStr == "" {
			return numeric.Number{}, false, false, false
		}
		for i := 0; i < len(numStr); i++ {
			if !digitAllowed(numStr[i], radix) {
				return numeric.Number{}, false, false, false
			}
		}
		for i := 0; i < len(denStr); i++ {
			if !digitAllowed(denStr[i], radix) {
				return numeric.Number{}, false, false, false
			}
		}
		num := new(big.Int)
		num.SetString(numStr, radix)
		if sign < 0 {
			num.Neg(num)
		}
		den := new(big.Int)
		den.SetString(denStr, radix)
		if den.Sign() == 0 {
			return numeric.FromDouble(math.NaN()), false, true, true
		}
		rat := numeric.NewRational(num, den)
		if exactness == 'i' {
			f, _ := rat.Float64()
			return numeric.FromDouble(f), false, true, false
		}
		return numeric.FromRational(rat), true, true, false
	}

	sign, whole, frac, hasExp, expSign, expDigits, ok := parseReal(s, radix)
	if !ok {
		return numeric.Number{}, false, false, false
	}
	rat, ok2 := buildExactRat(sign, whole, frac, radix, hasExp, expSign, expDigits)
	if !ok2 {
		return numeric.Number{}, false, false, false
	}
	hasFracOrExp := frac != "" || hasExp
	if !hasFracOrExp && exactness != 'i' {
		return numeric.FromBigInt(new(big.Int).Set(rat.Num())), true, true, false
	}
	if exactness == 'e' {
		return numeric.FromRational(rat), true, true, false
	}
	f, _ := rat.Float64()
	return numeric.FromDouble(f), false, true, false
}

// splitComplex separates a trailing-'i' lexeme into its real and signed
// imaginary parts. Per the third open question in section 9, an 'i' suffix
// with no preceding sign is a symbol, not a complex number, so that case
// reports isComplex = false.
func splitComplex(s string) (realPart, imagPart string, isComplex bool) {
	if len(s) == 0 {
		return "", "", false
	}
	last := s[len(s)-1]
	if last != 'i' && last != 'I' {
		return "", "", false
	}
	body := s[:len(s)-1]
	signIdx := -1
	for i := len(body) - 1; i >= 1; i-- {
		c := body[i]
		if c != '+' && c != '-' {
			continue
		}
		if isExpMarker(body[i-1], 10) || isExpMarker(body[i-1], 16) {
			continue // exponent sign, not the imaginary separator
		}
		signIdx = i
		break
	}
	if signIdx == -1 {
		if len(body) > 0 && (body[0] == '+' || body[0] == '-') {
			return "", body, true
		}
		return "", "", false
	}
	return body[:signIdx], body[signIdx:], true
}

func parseComplex(realPart, imagPart string, radix int, exactness byte) (numeric.Number, bool, bool) {
	var reNum numeric.Number
	reExact := true
	if realPart != "" {
		n, exact, ok, dz := parseRealOrRational(realPart, radix, exactness)
		if !ok {
			return numeric.Number{}, false, false
		}
		if dz {
			return numeric.FromDouble(math.NaN()), true, true
		}
		reNum, reExact = n, exact
	} else {
		reNum = numeric.FromInt64(0)
	}
	imNum, imExact, ok, dz := parseRealOrRational(imagPart, radix, exactness)
	if !ok {
		return numeric.Number{}, false, false
	}
	if dz {
		return numeric.FromDouble(math.NaN()), true, true
	}
	if exactness == 'i' || !reExact || !imExact {
		return numeric.FromComplexDouble(reNum.ToDouble(), imNum.ToDouble()), true, false
	}
	return numeric.FromComplexRational(toRat(reNum), toRat(imNum)), true, false
}

func toRat(n numeric.Number) *big.Rat {
	if n.Kind == numeric.Rational {
		return n.Rat
	}
	return new(big.Rat).SetInt(n.AsBigInt())
}

// parseSpecial recognizes +inf.0, -inf.0, +nan.0, -nan.0.
func parseSpecial(s string) (numeric.Number, bool) {
	if len(s) < 5 {
		return numeric.Number{}, false
	}
	sign := s[0]
	if sign != '+' && sign != '-' {
		return numeric.Number{}, false
	}
	switch strings.ToLower(s[1:]) {
	case "inf.0":
		if sign == '-' {
			return numeric.FromDouble(math.Inf(-1)), true
		}
		return numeric.FromDouble(math.Inf(1)), true
	case "nan.0":
		return numeric.FromDouble(math.NaN()), true
	default:
		return numeric.Number{}, false
	}
}

// parsePolar converts a magnitude/angle pair straight to a complex double.
// Exact polar-form complex arithmetic is an explicit non-goal, so the
// result is always inexact even when both components are exact.
func parsePolar(realS, angS string, radix int) (numeric.Number, bool) {
	rn, _, ok1, _ := parseRealOrRational(realS, radix, 'i')
	an, _, ok2, _ := parseRealOrRational(angS, radix, 'i')
	if !ok1 || !ok2 {
		return numeric.Number{}, false
	}
	r, theta := rn.ToDouble(), an.ToDouble()
	return numeric.FromComplexDouble(r*math.Cos(theta), r*math.Sin(theta)), true
}

// parseNumberLexeme is the entry point: it tries, in order, the special
// forms, polar form, complex form, and finally a plain real or rational.
func parseNumberLexeme(s string, radix int, exactness byte) (n numeric.Number, recognized bool, divByZero bool) {
	if s == "" {
		return numeric.Number{}, false, false
	}
	if n, ok := parseSpecial(s); ok {
		return n, true, false
	}
	if idx := strings.IndexByte(s, '@'); idx > 0 && idx < len(s)-1 {
		if n, ok := parsePolar(s[:idx], s[idx+1:], radix); ok {
			return n, true, false
		}
	}
	if realPart, imagPart, isComplex := splitComplex(s); isComplex {
		if n, ok, dz := parseComplex(realPart, imagPart, radix, exactness); ok {
			return n, true, dz
		}
	}
	n, _, ok, dz := parseRealOrRational(s, radix, exactness)
	return n, ok, dz
}
