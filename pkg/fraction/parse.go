package fraction

import (
	"math/big"
	"strconv"
	"strings"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
)

// maxLiteralExponent bounds the decimal exponent of a literal
const maxLiteralExponent = 100000

const expectedLiteral = "integer, decimal (-1.25), scientific (1.2e3), fraction (3/4), inf, -inf, -0 or invalid"

// Parse reads a fraction literal. Accepted forms are integers, decimals,
// scientific notation, a/b where a and b are any of those, and the special
// literals inf, +inf, -inf, -0 and invalid.
func Parse(s string) (*Fraction, error) {
	lit := strings.TrimSpace(s)
	switch strings.ToLower(lit) {
	case "inf", "+inf", "infinity", "+infinity":
		return PosInf(), nil
	case "-inf", "-infinity":
		return NegInf(), nil
	case "invalid", "nan":
		return Invalid(), nil
	case "":
		return nil, pverrors.FractionInvalidLiteral(s, expectedLiteral)
	}

	numLit, denLit, isFrac := strings.Cut(lit, "/")
	num, numNeg, ok := parseDecimal(strings.TrimSpace(numLit))
	if !ok {
		return nil, pverrors.FractionInvalidLiteral(s, expectedLiteral)
	}
	if !isFrac {
		return fromRatSigned(num, numNeg), nil
	}

	den, denNeg, ok := parseDecimal(strings.TrimSpace(denLit))
	if !ok || den.Sign() == 0 {
		return nil, pverrors.FractionInvalidLiteral(s, expectedLiteral)
	}
	return fromRatSigned(num.Quo(num, den), numNeg != denNeg), nil
}

// MustParse is like Parse but panics on malformed input
func MustParse(s string) *Fraction {
	f, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return f
}

func fromRatSigned(r *big.Rat, neg bool) *Fraction {
	if r.Sign() == 0 {
		return signedZero(neg)
	}
	return FromRat(r)
}

// parseDecimal parses [sign] digits [. digits] [e [sign] digits] exactly.
// neg reports a leading minus sign so that "-0" keeps its sign.
func parseDecimal(s string) (r *big.Rat, neg bool, ok bool) {
	if s == "" {
		return nil, false, false
	}
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	mantissa, expPart := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mantissa, expPart = s[:i], s[i+1:]
		if expPart == "" {
			return nil, false, false
		}
	}

	intPart, fracPart, _ := strings.Cut(mantissa, ".")
	if intPart == "" && fracPart == "" {
		return nil, false, false
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return nil, false, false
	}

	exp := 0
	if expPart != "" {
		e, err := strconv.Atoi(expPart)
		if err != nil || e > maxLiteralExponent || e < -maxLiteralExponent {
			return nil, false, false
		}
		if expPart[0] == '+' || expPart[0] == '-' {
			if !allDigits(expPart[1:]) || len(expPart) == 1 {
				return nil, false, false
			}
		} else if !allDigits(expPart) {
			return nil, false, false
		}
		exp = e
	}

	digits, success := new(big.Int).SetString(intPart+fracPart, 10)
	if !success {
		return nil, false, false
	}
	if neg {
		digits.Neg(digits)
	}

	scale := exp - len(fracPart)
	r = new(big.Rat).SetInt(digits)
	if scale != 0 {
		p := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(scale))), nil)
		if scale > 0 {
			r.Mul(r, new(big.Rat).SetInt(p))
		} else {
			r.Quo(r, new(big.Rat).SetInt(p))
		}
	}
	return r, neg, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// String returns the canonical literal: an integer, n/d, inf, -inf, -0 or
// invalid. Parse(f.String()) is structurally equal to f.
func (f *Fraction) String() string {
	switch {
	case f.IsInvalid():
		return "invalid"
	case f.IsPosInf():
		return "inf"
	case f.IsNegInf():
		return "-inf"
	case f.IsNegZero():
		return "-0"
	case f.den.Cmp(bigOne) == 0:
		return f.num.String()
	}
	return f.num.String() + "/" + f.den.String()
}

// DecimalString renders a finite value with prec digits after the point,
// rounding half away from zero. Sentinels render as String does.
func (f *Fraction) DecimalString(prec int) string {
	r, ok := f.Rat()
	if !ok || f.IsNegZero() {
		return f.String()
	}
	return r.FloatString(prec)
}
