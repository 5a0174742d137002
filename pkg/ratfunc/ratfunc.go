// ============================================================================
// paramval - Parametric Value Layer
// ============================================================================
//
// Package:     ratfunc
// Description: Rational functions kept in lowest terms
// Author:      Mike Stoffels
// Created:     2026-09-18
// License:     MIT
// ============================================================================

// Package ratfunc implements rational functions num/den over a parameter
// registry. Every operation leaves the pair cancelled by its canceller, with
// a denominator whose leading coefficient is positive.
//
// A zero denominator encodes the extended values of package fraction:
// 1/0 is +inf, -1/0 is -inf and 0/0 is invalid. These are always constant.
// Signed zero is not represented; -0 becomes 0.
package ratfunc

import (
	"github.com/msto63/paramval/pkg/cancel"
	"github.com/msto63/paramval/pkg/fraction"
	"github.com/msto63/paramval/pkg/param"
	"github.com/msto63/paramval/pkg/poly"
)

// RationalFunction is an immutable quotient of two polynomials
type RationalFunction struct {
	num, den  *poly.Polynomial
	canceller cancel.Canceller
}

// New returns num/den in lowest terms. A nil canceller selects the native GCD.
func New(num, den *poly.Polynomial, c cancel.Canceller) (*RationalFunction, error) {
	if c == nil {
		c = cancel.NewGCD()
	}
	if den.IsZero() {
		return sentinel(num.Registry(), c, num), nil
	}
	return reduce(num, den, c)
}

// FromPolynomial returns p/1
func FromPolynomial(p *poly.Polynomial, c cancel.Canceller) *RationalFunction {
	if c == nil {
		c = cancel.NewGCD()
	}
	return &RationalFunction{num: p, den: poly.FromInt64(p.Registry(), 1), canceller: c}
}

// FromInt64 returns the constant n
func FromInt64(reg *param.Registry, n int64, c cancel.Canceller) *RationalFunction {
	return FromPolynomial(poly.FromInt64(reg, n), c)
}

// FromFraction returns the constant f, sentinels included
func FromFraction(reg *param.Registry, f *fraction.Fraction, c cancel.Canceller) *RationalFunction {
	if c == nil {
		c = cancel.NewGCD()
	}
	switch {
	case f.IsInvalid():
		return raw(poly.New(reg), poly.New(reg), c)
	case f.IsInf():
		return raw(poly.FromInt64(reg, int64(f.Sign())), poly.New(reg), c)
	case f.IsZero():
		return raw(poly.New(reg), poly.FromInt64(reg, 1), c)
	}
	return raw(poly.FromBig(reg, f.Num()), poly.FromBig(reg, f.Den()), c)
}

// FromParameter returns the parameter x_index as a rational function
func FromParameter(reg *param.Registry, index int, c cancel.Canceller) *RationalFunction {
	return FromPolynomial(poly.FromParameter(reg, index), c)
}

func raw(num, den *poly.Polynomial, c cancel.Canceller) *RationalFunction {
	return &RationalFunction{num: num, den: den, canceller: c}
}

// sentinel builds the extended value for a zero denominator
func sentinel(reg *param.Registry, c cancel.Canceller, num *poly.Polynomial) *RationalFunction {
	switch {
	case num.IsZero():
		return raw(poly.New(reg), poly.New(reg), c)
	case num.IsConstant() && num.Constant().Sign() < 0:
		return raw(poly.FromInt64(reg, -1), poly.New(reg), c)
	}
	return raw(poly.FromInt64(reg, 1), poly.New(reg), c)
}

func reduce(num, den *poly.Polynomial, c cancel.Canceller) (*RationalFunction, error) {
	n, d, err := c.Cancel(num, den)
	if err != nil {
		return nil, err
	}
	n, d = cancel.Normalize(n, d)
	if d.IsZero() {
		return sentinel(num.Registry(), c, n), nil
	}
	return raw(n, d, c), nil
}

// Numerator returns the numerator polynomial
func (r *RationalFunction) Numerator() *poly.Polynomial { return r.num }

// Denominator returns the denominator polynomial
func (r *RationalFunction) Denominator() *poly.Polynomial { return r.den }

// Registry returns the registry of both polynomials
func (r *RationalFunction) Registry() *param.Registry { return r.num.Registry() }

// Canceller returns the canceller used by r's operations
func (r *RationalFunction) Canceller() cancel.Canceller { return r.canceller }

// IsFinite reports whether the denominator is nonzero
func (r *RationalFunction) IsFinite() bool { return !r.den.IsZero() }

// IsZero reports whether r is the finite value 0
func (r *RationalFunction) IsZero() bool { return r.num.IsZero() && r.IsFinite() }

// IsOne reports whether r is 1
func (r *RationalFunction) IsOne() bool { return r.num.IsOne() && r.den.IsOne() }

// IsPosInf reports whether r is +inf
func (r *RationalFunction) IsPosInf() bool {
	return !r.IsFinite() && !r.num.IsZero() && r.num.Constant().Sign() > 0
}

// IsNegInf reports whether r is -inf
func (r *RationalFunction) IsNegInf() bool {
	return !r.IsFinite() && !r.num.IsZero() && r.num.Constant().Sign() < 0
}

// IsInvalid reports whether r is 0/0
func (r *RationalFunction) IsInvalid() bool { return !r.IsFinite() && r.num.IsZero() }

// IsConstant reports whether r does not depend on any parameter
func (r *RationalFunction) IsConstant() bool { return r.num.IsConstant() && r.den.IsConstant() }

// Constant returns the value of a constant function. It panics otherwise.
func (r *RationalFunction) Constant() *fraction.Fraction {
	return fraction.FromBigPair(r.num.Constant(), r.den.Constant())
}

// Equal reports structural equality of the reduced pairs
func (r *RationalFunction) Equal(o *RationalFunction) bool {
	return r.num.Equal(o.num) && r.den.Equal(o.den)
}

// Add returns r + o
func (r *RationalFunction) Add(o *RationalFunction) (*RationalFunction, error) {
	if !r.IsFinite() || !o.IsFinite() {
		return r.extended(o, (*fraction.Fraction).Add, false), nil
	}
	if r.den.Equal(o.den) {
		return reduce(r.num.Add(o.num), r.den, r.canceller)
	}
	num := r.num.Multiply(o.den).Add(o.num.Multiply(r.den))
	return reduce(num, r.den.Multiply(o.den), r.canceller)
}

// Subtract returns r - o
func (r *RationalFunction) Subtract(o *RationalFunction) (*RationalFunction, error) {
	return r.Add(o.AddInverse())
}

// Multiply returns r * o. Each numerator is cancelled against the other
// denominator first, which keeps the intermediate polynomials small.
func (r *RationalFunction) Multiply(o *RationalFunction) (*RationalFunction, error) {
	if !r.IsFinite() || !o.IsFinite() {
		return r.extended(o, (*fraction.Fraction).Multiply, true), nil
	}
	if r.IsZero() || o.IsZero() {
		return FromInt64(r.Registry(), 0, r.canceller), nil
	}

	a, d, err := r.canceller.Cancel(r.num, o.den)
	if err != nil {
		return nil, err
	}
	c, b, err := r.canceller.Cancel(o.num, r.den)
	if err != nil {
		return nil, err
	}
	num, den := cancel.Normalize(a.Multiply(c), b.Multiply(d))
	return raw(num, den, r.canceller), nil
}

// Divide returns r / o. Division by zero yields invalid.
func (r *RationalFunction) Divide(o *RationalFunction) (*RationalFunction, error) {
	if o.IsZero() {
		return FromFraction(r.Registry(), fraction.Invalid(), r.canceller), nil
	}
	if !r.IsFinite() || !o.IsFinite() {
		return r.extended(o, (*fraction.Fraction).Divide, true), nil
	}
	return r.Multiply(o.MultInverse())
}

// AddInverse returns -r
func (r *RationalFunction) AddInverse() *RationalFunction {
	return raw(r.num.Negate(), r.den, r.canceller)
}

// MultInverse returns 1/r. The inverse of zero is invalid.
func (r *RationalFunction) MultInverse() *RationalFunction {
	if !r.IsFinite() {
		return FromFraction(r.Registry(), r.Constant().Reciprocal(), r.canceller)
	}
	if r.num.IsZero() {
		return FromFraction(r.Registry(), fraction.Invalid(), r.canceller)
	}
	num, den := cancel.Normalize(r.den, r.num)
	return raw(num, den, r.canceller)
}

// Pow returns r^n; negative n inverts first
func (r *RationalFunction) Pow(n int) (*RationalFunction, error) {
	if n < 0 {
		return r.MultInverse().Pow(-n)
	}
	if !r.IsFinite() {
		return FromFraction(r.Registry(), r.Constant().Pow(n), r.canceller), nil
	}
	// powers of a reduced pair stay reduced
	num, den := cancel.Normalize(r.num.Pow(n), r.den.Pow(n))
	return raw(num, den, r.canceller), nil
}

// extended combines operands when at least one is infinite or invalid. Two
// constants follow fraction arithmetic. Against a non-constant function, sums
// keep the extended value and products are invalid.
func (r *RationalFunction) extended(o *RationalFunction, op func(a, b *fraction.Fraction) *fraction.Fraction, product bool) *RationalFunction {
	reg := r.Registry()
	if r.IsConstant() && o.IsConstant() {
		return FromFraction(reg, op(r.Constant(), o.Constant()), r.canceller)
	}
	if product {
		return FromFraction(reg, fraction.Invalid(), r.canceller)
	}
	if !r.IsFinite() {
		return r
	}
	return o
}

// Evaluate substitutes point into numerator and denominator and divides
func (r *RationalFunction) Evaluate(point *param.Point) *fraction.Fraction {
	if !r.IsFinite() {
		return r.Constant()
	}
	return r.num.Evaluate(point).Divide(r.den.Evaluate(point))
}

// EvaluateDouble evaluates in float64 arithmetic
func (r *RationalFunction) EvaluateDouble(values []float64) float64 {
	return r.num.EvaluateDouble(values) / r.den.EvaluateDouble(values)
}

// Degree returns the larger total degree of numerator and denominator
func (r *RationalFunction) Degree() int {
	d := r.num.Degree()
	if dd := r.den.Degree(); dd > d {
		d = dd
	}
	return d
}

// IsPolynomial reports whether the denominator is a nonzero constant
func (r *RationalFunction) IsPolynomial() bool {
	return r.den.IsConstant() && r.IsFinite()
}
