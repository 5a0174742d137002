package poly

import (
	"fmt"
	"math/big"

	"github.com/msto63/paramval/pkg/param"
)

// Polynomial is a canonical sparse polynomial bound to a registry
type Polynomial struct {
	reg   *param.Registry
	nvars int
	epoch uint64
	terms []Term
}

// New returns the zero polynomial over reg
func New(reg *param.Registry) *Polynomial {
	return &Polynomial{reg: reg, nvars: reg.Size(), epoch: reg.Epoch()}
}

// FromInt64 returns the constant polynomial c
func FromInt64(reg *param.Registry, c int64) *Polynomial {
	return FromBig(reg, big.NewInt(c))
}

// FromBig returns the constant polynomial c; c is copied
func FromBig(reg *param.Registry, c *big.Int) *Polynomial {
	p := New(reg)
	if c.Sign() != 0 {
		p.terms = []Term{{Exp: make([]int, p.nvars), Coef: new(big.Int).Set(c)}}
	}
	return p
}

// FromParameter returns the monomial 1*x_index. It panics if index is not registered.
func FromParameter(reg *param.Registry, index int) *Polynomial {
	reg.Get(index)
	p := New(reg)
	exp := make([]int, p.nvars)
	exp[index] = 1
	p.terms = []Term{{Exp: exp, Coef: big.NewInt(1)}}
	return p
}

// FromTerms builds a polynomial from terms in any order, combining duplicates
func FromTerms(reg *param.Registry, terms ...Term) *Polynomial {
	g := NewGeobucket(reg)
	for _, t := range terms {
		g.AddTerm(t)
	}
	return g.Canonicalise()
}

// fromSorted wraps an already canonical term list
func fromSorted(reg *param.Registry, terms []Term) *Polynomial {
	p := New(reg)
	p.terms = terms
	p.widen()
	return p
}

// Registry returns the registry p is bound to
func (p *Polynomial) Registry() *param.Registry {
	return p.reg
}

// Adjust widens every exponent vector to the current registry size
func (p *Polynomial) Adjust() {
	if p.epoch == p.reg.Epoch() {
		return
	}
	p.nvars = p.reg.Size()
	p.epoch = p.reg.Epoch()
	p.widen()
}

func (p *Polynomial) widen() {
	for i := range p.terms {
		p.terms[i].Exp = widenExp(p.terms[i].Exp, p.nvars)
	}
}

// Clone returns a copy with its own term list
func (p *Polynomial) Clone() *Polynomial {
	p.Adjust()
	c := New(p.reg)
	c.terms = make([]Term, len(p.terms))
	copy(c.terms, p.terms)
	c.widen()
	return c
}

// NumTerms returns the number of terms
func (p *Polynomial) NumTerms() int {
	return len(p.terms)
}

// Terms returns deep copies of the terms in canonical order
func (p *Polynomial) Terms() []Term {
	p.Adjust()
	out := make([]Term, len(p.terms))
	for i, t := range p.terms {
		out[i] = t.clone()
	}
	return out
}

// IsZero reports whether p has no terms
func (p *Polynomial) IsZero() bool {
	return len(p.terms) == 0
}

// IsConstant reports whether p has no parameter in any term
func (p *Polynomial) IsConstant() bool {
	return len(p.terms) == 0 || (len(p.terms) == 1 && p.terms[0].IsConstant())
}

// IsOne reports whether p is the constant 1
func (p *Polynomial) IsOne() bool {
	return p.IsConstant() && len(p.terms) == 1 && p.terms[0].Coef.Cmp(big.NewInt(1)) == 0
}

// Constant returns the value of a constant polynomial. It panics otherwise.
func (p *Polynomial) Constant() *big.Int {
	if !p.IsConstant() {
		panic(fmt.Sprintf("poly: %s is not constant", p))
	}
	if len(p.terms) == 0 {
		return new(big.Int)
	}
	return new(big.Int).Set(p.terms[0].Coef)
}

// Equal reports whether p and q have identical terms
func (p *Polynomial) Equal(q *Polynomial) bool {
	if len(p.terms) != len(q.terms) {
		return false
	}
	for i := range p.terms {
		if compareExp(p.terms[i].Exp, q.terms[i].Exp) != 0 || p.terms[i].Coef.Cmp(q.terms[i].Coef) != 0 {
			return false
		}
	}
	return true
}

// Compare orders polynomials by their term lists, used for canonical operand order
func (p *Polynomial) Compare(q *Polynomial) int {
	for i := 0; i < len(p.terms) && i < len(q.terms); i++ {
		if c := compareExp(p.terms[i].Exp, q.terms[i].Exp); c != 0 {
			return c
		}
		if c := p.terms[i].Coef.Cmp(q.terms[i].Coef); c != 0 {
			return c
		}
	}
	switch {
	case len(p.terms) < len(q.terms):
		return -1
	case len(p.terms) > len(q.terms):
		return 1
	}
	return 0
}

// Degree returns the total degree; the zero polynomial has degree -1
func (p *Polynomial) Degree() int {
	d := -1
	for _, t := range p.terms {
		if td := t.Degree(); td > d {
			d = td
		}
	}
	return d
}

// DegreeIn returns the highest exponent of x_index; -1 for the zero polynomial
func (p *Polynomial) DegreeIn(index int) int {
	d := -1
	for _, t := range p.terms {
		if e := expAt(t.Exp, index); e > d {
			d = e
		}
	}
	return d
}

// Variables returns the indices of parameters with a nonzero exponent, ascending
func (p *Polynomial) Variables() []int {
	p.Adjust()
	used := make([]bool, p.nvars)
	for _, t := range p.terms {
		for i, e := range t.Exp {
			if e != 0 {
				used[i] = true
			}
		}
	}
	var out []int
	for i, u := range used {
		if u {
			out = append(out, i)
		}
	}
	return out
}

// LeadingTerm returns a copy of the greatest term. It panics on the zero polynomial.
func (p *Polynomial) LeadingTerm() Term {
	if p.IsZero() {
		panic("poly: leading term of zero polynomial")
	}
	p.Adjust()
	return p.terms[0].clone()
}

// Negate returns -p
func (p *Polynomial) Negate() *Polynomial {
	p.Adjust()
	out := make([]Term, len(p.terms))
	for i, t := range p.terms {
		out[i] = signed(t, true)
	}
	return fromSorted(p.reg, out)
}

// Add returns p + q
func (p *Polynomial) Add(q *Polynomial) *Polynomial {
	p.Adjust()
	q.Adjust()
	return fromSorted(p.reg, mergeTerms(p.terms, q.terms, false))
}

// Subtract returns p - q
func (p *Polynomial) Subtract(q *Polynomial) *Polynomial {
	p.Adjust()
	q.Adjust()
	return fromSorted(p.reg, mergeTerms(p.terms, q.terms, true))
}

// MultiplyConstant returns c * p
func (p *Polynomial) MultiplyConstant(c *big.Int) *Polynomial {
	if c.Sign() == 0 {
		return New(p.reg)
	}
	p.Adjust()
	out := make([]Term, len(p.terms))
	for i, t := range p.terms {
		out[i] = Term{Exp: t.Exp, Coef: new(big.Int).Mul(t.Coef, c)}
	}
	return fromSorted(p.reg, out)
}

// MultiplyTerm returns t * p. Multiplying by a monomial keeps the order.
func (p *Polynomial) MultiplyTerm(t Term) *Polynomial {
	return fromSorted(p.reg, p.mulTerm(t))
}

func (p *Polynomial) mulTerm(t Term) []Term {
	if t.Coef.Sign() == 0 {
		return nil
	}
	p.Adjust()
	out := make([]Term, len(p.terms))
	for i, pt := range p.terms {
		out[i] = Term{
			Exp:  addExp(pt.Exp, t.Exp, p.nvars),
			Coef: new(big.Int).Mul(pt.Coef, t.Coef),
		}
	}
	return out
}

// Multiply returns p * q. Each term of the sparser operand scales the other
// operand and the partial products are summed in a Geobucket.
func (p *Polynomial) Multiply(q *Polynomial) *Polynomial {
	if p.IsZero() || q.IsZero() {
		return New(p.reg)
	}
	p.Adjust()
	q.Adjust()

	sparse, dense := p, q
	if q.NumTerms() < p.NumTerms() {
		sparse, dense = q, p
	}
	if sparse.NumTerms() == 1 {
		return dense.MultiplyTerm(sparse.terms[0])
	}

	g := NewGeobucket(p.reg)
	for _, t := range sparse.terms {
		g.addTerms(dense.mulTerm(t))
	}
	return g.Canonicalise()
}

// Pow returns p^n for n >= 0. It panics on negative n.
func (p *Polynomial) Pow(n int) *Polynomial {
	if n < 0 {
		panic(fmt.Sprintf("poly: negative exponent %d", n))
	}
	result := FromInt64(p.reg, 1)
	base := p
	for n > 0 {
		if n&1 == 1 {
			result = result.Multiply(base)
		}
		n >>= 1
		if n > 0 {
			base = base.Multiply(base)
		}
	}
	return result
}
