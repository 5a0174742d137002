package fraction

import (
	"math"
	"math/big"
	"strings"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
)

// RoundingMode selects the IEEE-754 rounding used by ToDouble
type RoundingMode int

const (
	// TiesToEven rounds to nearest, ties to the even mantissa
	TiesToEven RoundingMode = iota
	// TiesAway rounds to nearest, ties away from zero
	TiesAway
	// Floor rounds toward -inf
	Floor
	// Ceiling rounds toward +inf
	Ceiling
	// Truncate rounds toward zero
	Truncate
)

var roundingModeNames = map[RoundingMode]string{
	TiesToEven: "ties-to-even",
	TiesAway:   "ties-away",
	Floor:      "floor",
	Ceiling:    "ceiling",
	Truncate:   "truncate",
}

// String returns the mode name
func (m RoundingMode) String() string {
	if name, ok := roundingModeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseRoundingMode parses a mode name as returned by String
func ParseRoundingMode(s string) (RoundingMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for mode, n := range roundingModeNames {
		if n == name {
			return mode, nil
		}
	}
	return TiesToEven, pverrors.InvalidInput(pverrors.ModuleFraction, "parse_rounding_mode", s,
		"ties-to-even, ties-away, floor, ceiling or truncate")
}

const (
	mantissaBits = 53
	minExponent  = -1022
	maxExponent  = 1023

	// subnormalShift scales the smallest subnormal 2^-1074 to 1
	subnormalShift = 1074
)

// ToDouble converts f to the nearest float64 under mode. Invalid maps to NaN,
// the infinities to ±Inf and the zeros keep their sign.
func (f *Fraction) ToDouble(mode RoundingMode) float64 {
	switch {
	case f.IsInvalid():
		return math.NaN()
	case f.IsPosInf():
		return math.Inf(1)
	case f.IsNegInf():
		return math.Inf(-1)
	case f.IsZero():
		return math.Copysign(0, boolSign(f.signBit()))
	}

	neg := f.num.Sign() < 0
	a := new(big.Int).Abs(f.num)
	b := f.den

	// a*2^shift/b lands in [2^52, 2^54); one correction brings it below 2^53
	shift := mantissaBits - (a.BitLen() - b.BitLen())
	q, r, d := scaledQuo(a, b, shift)
	if q.BitLen() > mantissaBits {
		shift--
		q, r, d = scaledQuo(a, b, shift)
	}

	exp := mantissaBits - 1 - shift
	switch {
	case exp > maxExponent:
		return overflow(mode, neg)
	case exp < minExponent:
		shift = subnormalShift
		q, r, d = scaledQuo(a, b, shift)
	}

	if roundUp(mode, neg, q, r, d) {
		q.Add(q, bigOne)
	}
	v := math.Ldexp(float64(q.Uint64()), -shift)
	if neg {
		v = -v
	}
	return v
}

// scaledQuo returns q, r with a*2^shift = q*d + r, where d is b scaled when
// shift is negative
func scaledQuo(a, b *big.Int, shift int) (q, r, d *big.Int) {
	n := new(big.Int).Set(a)
	d = new(big.Int).Set(b)
	if shift >= 0 {
		n.Lsh(n, uint(shift))
	} else {
		d.Lsh(d, uint(-shift))
	}
	q, r = new(big.Int).QuoRem(n, d, new(big.Int))
	return q, r, d
}

func roundUp(mode RoundingMode, neg bool, q, r, d *big.Int) bool {
	if r.Sign() == 0 {
		return false
	}
	switch mode {
	case TiesToEven:
		c := new(big.Int).Lsh(r, 1).Cmp(d)
		return c > 0 || (c == 0 && q.Bit(0) == 1)
	case TiesAway:
		return new(big.Int).Lsh(r, 1).Cmp(d) >= 0
	case Floor:
		return neg
	case Ceiling:
		return !neg
	default:
		return false
	}
}

func overflow(mode RoundingMode, neg bool) float64 {
	toInf := true
	switch mode {
	case Truncate:
		toInf = false
	case Floor:
		toInf = neg
	case Ceiling:
		toInf = !neg
	}
	v := math.MaxFloat64
	if toInf {
		v = math.Inf(1)
	}
	if neg {
		v = -v
	}
	return v
}

func boolSign(neg bool) float64 {
	if neg {
		return -1
	}
	return 1
}

// ToDoubleInterval returns a pair lo <= f <= hi of adjacent or equal doubles.
// lo == hi exactly when f is representable. Invalid maps to (NaN, NaN).
func (f *Fraction) ToDoubleInterval() (lo, hi float64) {
	return f.ToDouble(Floor), f.ToDouble(Ceiling)
}

// Float64 converts with ties-to-even rounding
func (f *Fraction) Float64() float64 {
	return f.ToDouble(TiesToEven)
}

// FromFloat64 returns the exact value of x. NaN maps to invalid.
func FromFloat64(x float64) *Fraction {
	switch {
	case math.IsNaN(x):
		return Invalid()
	case math.IsInf(x, 1):
		return PosInf()
	case math.IsInf(x, -1):
		return NegInf()
	case x == 0:
		return signedZero(math.Signbit(x))
	}
	return FromRat(new(big.Rat).SetFloat64(x))
}
