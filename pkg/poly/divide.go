package poly

import (
	"math/big"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
)

// Content returns the positive gcd of all coefficients; 0 for the zero polynomial
func (p *Polynomial) Content() *big.Int {
	g := new(big.Int)
	for _, t := range p.terms {
		g.GCD(nil, nil, g, new(big.Int).Abs(t.Coef))
		if g.Cmp(big.NewInt(1)) == 0 {
			break
		}
	}
	return g
}

// DivideByInt divides every coefficient by c, which must divide them all
func (p *Polynomial) DivideByInt(c *big.Int) *Polynomial {
	p.Adjust()
	out := make([]Term, len(p.terms))
	for i, t := range p.terms {
		out[i] = Term{Exp: t.Exp, Coef: new(big.Int).Quo(t.Coef, c)}
	}
	return fromSorted(p.reg, out)
}

// DivideExact returns p / q when q divides p over the integers and an
// inexact-division error otherwise
func (p *Polynomial) DivideExact(q *Polynomial) (*Polynomial, error) {
	if q.IsZero() {
		return nil, pverrors.PolyInexactDivision(p.String(), "0")
	}
	p.Adjust()
	q.Adjust()
	if q.IsConstant() {
		c := q.terms[0].Coef
		for _, t := range p.terms {
			if new(big.Int).Rem(t.Coef, c).Sign() != 0 {
				return nil, pverrors.PolyInexactDivision(p.String(), q.String())
			}
		}
		return p.DivideByInt(c), nil
	}

	lt := q.terms[0]
	quotient := NewGeobucket(p.reg)
	rem := p
	for !rem.IsZero() {
		head := rem.terms[0]
		if !lt.Divides(head) {
			return nil, pverrors.PolyInexactDivision(p.String(), q.String())
		}
		t := Term{
			Exp:  subExp(head.Exp, lt.Exp, p.nvars),
			Coef: new(big.Int).Quo(head.Coef, lt.Coef),
		}
		quotient.AddTerm(t)
		rem = rem.Subtract(q.MultiplyTerm(t))
	}
	return quotient.Canonicalise(), nil
}

// CoefficientsIn splits p as sum_k c_k * x_index^k. The result has
// DegreeIn(index)+1 entries and each c_k is free of x_index.
func (p *Polynomial) CoefficientsIn(index int) []*Polynomial {
	p.Adjust()
	deg := p.DegreeIn(index)
	if deg < 0 {
		return nil
	}
	parts := make([][]Term, deg+1)
	for _, t := range p.terms {
		k := expAt(t.Exp, index)
		exp := make([]int, p.nvars)
		copy(exp, t.Exp)
		exp[index] = 0
		parts[k] = append(parts[k], Term{Exp: exp, Coef: t.Coef})
	}
	out := make([]*Polynomial, deg+1)
	for k, terms := range parts {
		// terms sharing x_index^k keep their relative order once it is cleared
		out[k] = fromSorted(p.reg, terms)
	}
	return out
}

// LeadingCoefficientIn returns the coefficient of the highest power of
// x_index together with that degree. Zero gives (zero, -1).
func (p *Polynomial) LeadingCoefficientIn(index int) (*Polynomial, int) {
	p.Adjust()
	deg := p.DegreeIn(index)
	if deg < 0 {
		return New(p.reg), -1
	}
	var terms []Term
	for _, t := range p.terms {
		if expAt(t.Exp, index) != deg {
			continue
		}
		exp := make([]int, p.nvars)
		copy(exp, t.Exp)
		exp[index] = 0
		terms = append(terms, Term{Exp: exp, Coef: t.Coef})
	}
	return fromSorted(p.reg, terms), deg
}

// ShiftIn returns p * x_index^k
func (p *Polynomial) ShiftIn(index, k int) *Polynomial {
	p.Adjust()
	exp := make([]int, p.nvars)
	exp[index] = k
	return p.MultiplyTerm(Term{Exp: exp, Coef: big.NewInt(1)})
}
