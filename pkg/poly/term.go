// ============================================================================
// paramval - Parametric Value Layer
// ============================================================================
//
// Package:     poly
// Description: Sparse multivariate polynomials over the integers
// Author:      Mike Stoffels
// Created:     2026-09-17
// License:     MIT
// ============================================================================

// Package poly implements sparse multivariate polynomials with integer
// coefficients over the parameters of a param.Registry.
//
// A Polynomial keeps its terms sorted in descending lexicographic order of
// their exponent vectors, with no duplicate vectors and no zero coefficients.
// The empty term list is the zero polynomial. Exponent vectors are widened
// lazily: when the registry grows, Adjust pads every vector with zeros.
//
// Polynomials are immutable once built; operations return new values and may
// share exponent vectors and coefficients between results.
package poly

import (
	"math/big"
)

// Term is a monomial coefficient * x_0^Exp[0] * ... * x_n^Exp[n].
// A Term stored in a Polynomial has a nonzero coefficient.
type Term struct {
	Exp  []int
	Coef *big.Int
}

// NewTerm builds a term; exp and coef are copied
func NewTerm(coef *big.Int, exp ...int) Term {
	e := make([]int, len(exp))
	copy(e, exp)
	return Term{Exp: e, Coef: new(big.Int).Set(coef)}
}

// IsConstant reports whether every exponent is zero
func (t Term) IsConstant() bool {
	for _, e := range t.Exp {
		if e != 0 {
			return false
		}
	}
	return true
}

// Degree returns the total degree of the term
func (t Term) Degree() int {
	d := 0
	for _, e := range t.Exp {
		d += e
	}
	return d
}

// Divides reports whether t divides o over the integers
func (t Term) Divides(o Term) bool {
	for i := range t.Exp {
		if t.Exp[i] > expAt(o.Exp, i) {
			return false
		}
	}
	return new(big.Int).Rem(o.Coef, t.Coef).Sign() == 0
}

func (t Term) clone() Term {
	return NewTerm(t.Coef, t.Exp...)
}

// expAt treats missing trailing exponents as zero
func expAt(exp []int, i int) int {
	if i < len(exp) {
		return exp[i]
	}
	return 0
}

// compareExp orders exponent vectors lexicographically
func compareExp(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		x, y := expAt(a, i), expAt(b, i)
		if x != y {
			if x > y {
				return 1
			}
			return -1
		}
	}
	return 0
}

func addExp(a, b []int, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = expAt(a, i) + expAt(b, i)
	}
	return out
}

func subExp(a, b []int, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = expAt(a, i) - expAt(b, i)
	}
	return out
}

func widenExp(e []int, n int) []int {
	if len(e) >= n {
		return e
	}
	out := make([]int, n)
	copy(out, e)
	return out
}

// mergeTerms merges two sorted term lists, combining equal exponent vectors
// and dropping zero sums. With negate set, b is subtracted.
func mergeTerms(a, b []Term, negate bool) []Term {
	out := make([]Term, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := compareExp(a[i].Exp, b[j].Exp); {
		case c > 0:
			out = append(out, a[i])
			i++
		case c < 0:
			out = append(out, signed(b[j], negate))
			j++
		default:
			sum := new(big.Int)
			if negate {
				sum.Sub(a[i].Coef, b[j].Coef)
			} else {
				sum.Add(a[i].Coef, b[j].Coef)
			}
			if sum.Sign() != 0 {
				out = append(out, Term{Exp: a[i].Exp, Coef: sum})
			}
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	for ; j < len(b); j++ {
		out = append(out, signed(b[j], negate))
	}
	return out
}

func signed(t Term, negate bool) Term {
	if !negate {
		return t
	}
	return Term{Exp: t.Exp, Coef: new(big.Int).Neg(t.Coef)}
}
