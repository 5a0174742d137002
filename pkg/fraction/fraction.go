// ============================================================================
// paramval - Parametric Value Layer
// ============================================================================
//
// Package:     fraction
// Description: Exact rational scalars with signed zeros, infinities and an
//              invalid state
// Author:      Mike Stoffels
// Created:     2026-09-16
// License:     MIT
// ============================================================================

// Package fraction implements an exact rational number extended with the
// IEEE-754 special values. A Fraction is kept as a reduced num/den pair:
//
//	den > 0           finite value num/den
//	num = 0, den = 1  +0
//	num = 0, den = -1 -0
//	num = 1, den = 0  +inf
//	num = -1, den = 0 -inf
//	num = 0, den = 0  invalid
//
// Arithmetic is total: degenerate cases produce sentinels instead of errors.
// Fractions are immutable; every operation returns a new value.
package fraction

import (
	"math/big"
)

// Fraction is an immutable extended rational number
type Fraction struct {
	num *big.Int
	den *big.Int
}

var bigOne = big.NewInt(1)

func raw(num, den *big.Int) *Fraction {
	return &Fraction{num: num, den: den}
}

// Zero returns +0
func Zero() *Fraction { return raw(big.NewInt(0), big.NewInt(1)) }

// NegZero returns -0
func NegZero() *Fraction { return raw(big.NewInt(0), big.NewInt(-1)) }

// One returns 1
func One() *Fraction { return raw(big.NewInt(1), big.NewInt(1)) }

// PosInf returns +inf
func PosInf() *Fraction { return raw(big.NewInt(1), big.NewInt(0)) }

// NegInf returns -inf
func NegInf() *Fraction { return raw(big.NewInt(-1), big.NewInt(0)) }

// Invalid returns the invalid value (0/0)
func Invalid() *Fraction { return raw(big.NewInt(0), big.NewInt(0)) }

// New returns num/den in canonical form. A zero denominator yields an
// infinity for a nonzero numerator and invalid for a zero numerator.
func New(num, den int64) *Fraction {
	return normalize(big.NewInt(num), big.NewInt(den))
}

// FromInt64 returns the integer n
func FromInt64(n int64) *Fraction {
	return raw(big.NewInt(n), big.NewInt(1))
}

// FromBig returns the integer n; n is copied
func FromBig(n *big.Int) *Fraction {
	return raw(new(big.Int).Set(n), big.NewInt(1))
}

// FromBigPair returns num/den in canonical form; both are copied
func FromBigPair(num, den *big.Int) *Fraction {
	return normalize(new(big.Int).Set(num), new(big.Int).Set(den))
}

// FromRat returns the value of r
func FromRat(r *big.Rat) *Fraction {
	return normalize(new(big.Int).Set(r.Num()), new(big.Int).Set(r.Denom()))
}

// normalize takes ownership of num and den
func normalize(num, den *big.Int) *Fraction {
	switch {
	case den.Sign() == 0:
		num.SetInt64(int64(num.Sign()))
		return raw(num, den)
	case num.Sign() == 0:
		den.SetInt64(int64(den.Sign()))
		return raw(num, den)
	}

	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(num), new(big.Int).Abs(den))
	if g.Cmp(bigOne) != 0 {
		num.Quo(num, g)
		den.Quo(den, g)
	}
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	return raw(num, den)
}

// Num returns a copy of the numerator
func (f *Fraction) Num() *big.Int { return new(big.Int).Set(f.num) }

// Den returns a copy of the denominator
func (f *Fraction) Den() *big.Int { return new(big.Int).Set(f.den) }

// Clone returns a deep copy
func (f *Fraction) Clone() *Fraction {
	return raw(new(big.Int).Set(f.num), new(big.Int).Set(f.den))
}

// IsInvalid reports whether f is the invalid value
func (f *Fraction) IsInvalid() bool { return f.den.Sign() == 0 && f.num.Sign() == 0 }

// IsPosInf reports whether f is +inf
func (f *Fraction) IsPosInf() bool { return f.den.Sign() == 0 && f.num.Sign() > 0 }

// IsNegInf reports whether f is -inf
func (f *Fraction) IsNegInf() bool { return f.den.Sign() == 0 && f.num.Sign() < 0 }

// IsInf reports whether f is an infinity of either sign
func (f *Fraction) IsInf() bool { return f.den.Sign() == 0 && f.num.Sign() != 0 }

// IsZero reports whether f is +0 or -0
func (f *Fraction) IsZero() bool { return f.num.Sign() == 0 && f.den.Sign() != 0 }

// IsNegZero reports whether f is -0
func (f *Fraction) IsNegZero() bool { return f.num.Sign() == 0 && f.den.Sign() < 0 }

// IsOne reports whether f is exactly 1
func (f *Fraction) IsOne() bool { return f.num.Cmp(bigOne) == 0 && f.den.Cmp(bigOne) == 0 }

// IsFinite reports whether f is a finite number, zeros included
func (f *Fraction) IsFinite() bool { return f.den.Sign() != 0 }

// IsInteger reports whether f is a finite integer
func (f *Fraction) IsInteger() bool { return f.IsZero() || f.den.Cmp(bigOne) == 0 }

// Sign returns -1, 0 or +1; zeros and invalid return 0
func (f *Fraction) Sign() int { return f.num.Sign() }

// signBit is the IEEE sign bit: set for negative values, -0 and -inf
func (f *Fraction) signBit() bool {
	if f.num.Sign() == 0 {
		return f.den.Sign() < 0
	}
	return f.num.Sign() < 0
}

// IsNegative reports whether the sign bit is set (true for -0)
func (f *Fraction) IsNegative() bool {
	return !f.IsInvalid() && f.signBit()
}

func signedZero(neg bool) *Fraction {
	if neg {
		return NegZero()
	}
	return Zero()
}

func signedInf(neg bool) *Fraction {
	if neg {
		return NegInf()
	}
	return PosInf()
}

// Negate returns -f
func (f *Fraction) Negate() *Fraction {
	if f.IsInvalid() {
		return Invalid()
	}
	if f.num.Sign() == 0 {
		return signedZero(!f.signBit())
	}
	return raw(new(big.Int).Neg(f.num), new(big.Int).Set(f.den))
}

// Abs returns |f|; -0 becomes +0 and -inf becomes +inf
func (f *Fraction) Abs() *Fraction {
	switch {
	case f.IsInvalid():
		return Invalid()
	case f.num.Sign() == 0:
		return Zero()
	}
	return raw(new(big.Int).Abs(f.num), new(big.Int).Set(f.den))
}

// Add returns f + o
func (f *Fraction) Add(o *Fraction) *Fraction {
	switch {
	case f.IsInvalid() || o.IsInvalid():
		return Invalid()
	case f.IsInf() && o.IsInf():
		if f.num.Sign() != o.num.Sign() {
			return Invalid()
		}
		return f.Clone()
	case f.IsInf():
		return f.Clone()
	case o.IsInf():
		return o.Clone()
	case f.IsZero() && o.IsZero():
		return signedZero(f.signBit() && o.signBit())
	case f.IsZero():
		return o.Clone()
	case o.IsZero():
		return f.Clone()
	}

	num := new(big.Int).Mul(f.num, o.den)
	num.Add(num, new(big.Int).Mul(o.num, f.den))
	return normalize(num, new(big.Int).Mul(f.den, o.den))
}

// Subtract returns f - o
func (f *Fraction) Subtract(o *Fraction) *Fraction {
	return f.Add(o.Negate())
}

// Multiply returns f * o
func (f *Fraction) Multiply(o *Fraction) *Fraction {
	if f.IsInvalid() || o.IsInvalid() {
		return Invalid()
	}
	neg := f.signBit() != o.signBit()
	switch {
	case f.IsInf() || o.IsInf():
		if f.IsZero() || o.IsZero() {
			return Invalid()
		}
		return signedInf(neg)
	case f.IsZero() || o.IsZero():
		return signedZero(neg)
	}
	return normalize(new(big.Int).Mul(f.num, o.num), new(big.Int).Mul(f.den, o.den))
}

// Divide returns f / o. Division by either zero yields invalid.
func (f *Fraction) Divide(o *Fraction) *Fraction {
	if f.IsInvalid() || o.IsInvalid() || o.IsZero() {
		return Invalid()
	}
	neg := f.signBit() != o.signBit()
	switch {
	case f.IsInf() && o.IsInf():
		return Invalid()
	case f.IsInf():
		return signedInf(neg)
	case o.IsInf():
		return signedZero(neg)
	case f.IsZero():
		return signedZero(neg)
	}
	return normalize(new(big.Int).Mul(f.num, o.den), new(big.Int).Mul(f.den, o.num))
}

// Reciprocal returns 1 / f
func (f *Fraction) Reciprocal() *Fraction {
	return One().Divide(f)
}

// Pow returns f raised to the integer power n. Pow(0) is 1 for every value
// except invalid.
func (f *Fraction) Pow(n int) *Fraction {
	if f.IsInvalid() {
		return Invalid()
	}
	if n == 0 {
		return One()
	}
	if n < 0 {
		// -(n+1) stays in range for math.MinInt
		return f.powUint(uint64(-(n + 1)) + 1).Reciprocal()
	}
	return f.powUint(uint64(n))
}

func (f *Fraction) powUint(k uint64) *Fraction {
	neg := f.signBit() && k%2 == 1
	switch {
	case f.IsInf():
		return signedInf(neg)
	case f.IsZero():
		return signedZero(neg)
	case f.den.IsInt64() && f.den.Int64() == 1 && f.num.CmpAbs(big.NewInt(1)) == 0:
		if neg {
			return FromInt64(-1)
		}
		return One()
	}
	e := new(big.Int).SetUint64(k)
	return raw(new(big.Int).Exp(f.num, e, nil), new(big.Int).Exp(f.den, e, nil))
}

// Floor returns the greatest integer not above f; sentinels are returned unchanged
func (f *Fraction) Floor() *Fraction {
	if !f.IsFinite() || f.IsInteger() {
		return f.Clone()
	}
	q := new(big.Int).Div(f.num, f.den)
	return raw(q, big.NewInt(1))
}

// Ceil returns the least integer not below f; sentinels are returned unchanged
func (f *Fraction) Ceil() *Fraction {
	if !f.IsFinite() || f.IsInteger() {
		return f.Clone()
	}
	return f.Negate().Floor().Negate()
}

// Compare returns -1, 0 or +1. The order is total:
// -inf < finite values < +inf < invalid, and -0 equals +0.
func (f *Fraction) Compare(o *Fraction) int {
	rf, ro := f.rank(), o.rank()
	if rf != ro {
		if rf < ro {
			return -1
		}
		return 1
	}
	if rf != 1 {
		return 0
	}
	// both finite; compare with absolute denominators so -0 (den -1) works
	l := new(big.Int).Mul(f.num, new(big.Int).Abs(o.den))
	r := new(big.Int).Mul(o.num, new(big.Int).Abs(f.den))
	return l.Cmp(r)
}

func (f *Fraction) rank() int {
	switch {
	case f.IsNegInf():
		return 0
	case f.IsFinite():
		return 1
	case f.IsPosInf():
		return 2
	default:
		return 3
	}
}

// Equal reports structural equality; -0 and +0 are distinct
func (f *Fraction) Equal(o *Fraction) bool {
	return f.num.Cmp(o.num) == 0 && f.den.Cmp(o.den) == 0
}

// Rat returns f as a big.Rat; ok is false for infinities and invalid
func (f *Fraction) Rat() (r *big.Rat, ok bool) {
	if !f.IsFinite() {
		return nil, false
	}
	if f.num.Sign() == 0 {
		return new(big.Rat), true
	}
	return new(big.Rat).SetFrac(f.num, f.den), true
}
