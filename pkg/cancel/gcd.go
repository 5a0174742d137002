package cancel

import (
	"fmt"
	"math/big"
	"slices"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/pkg/poly"
)

// GCD is the native canceller. It computes multivariate polynomial GCDs over
// the integers with recursive primitive polynomial remainder sequences.
type GCD struct{}

// NewGCD returns the native canceller
func NewGCD() *GCD {
	return &GCD{}
}

// Cancel returns num/g and den/g for g = gcd(num, den), normalized
func (c *GCD) Cancel(num, den *poly.Polynomial) (n, d *poly.Polynomial, err error) {
	if den.IsZero() {
		return num, den, nil
	}
	if num.IsZero() {
		n, d = Normalize(num, den)
		return n, d, nil
	}

	defer func() {
		if r := recover(); r != nil {
			ge, ok := r.(gcdError)
			if !ok {
				panic(r)
			}
			n, d, err = nil, nil, pverrors.CancelFailed("native", ge.err)
		}
	}()

	g := PolyGCD(num, den)
	if !g.IsOne() {
		num, den = divide(num, g), divide(den, g)
	}
	n, d = Normalize(num, den)
	return n, d, nil
}

// gcdError carries an inexact division out of the recursion
type gcdError struct {
	err error
}

func divide(a, b *poly.Polynomial) *poly.Polynomial {
	q, err := a.DivideExact(b)
	if err != nil {
		panic(gcdError{fmt.Errorf("gcd step: %w", err)})
	}
	return q
}

// PolyGCD returns the greatest common divisor of a and b with a positive
// leading coefficient. gcd(0, 0) is 0.
func PolyGCD(a, b *poly.Polynomial) *poly.Polynomial {
	switch {
	case a.IsZero():
		return positive(b)
	case b.IsZero():
		return positive(a)
	case a.IsConstant() || b.IsConstant() || disjoint(a.Variables(), b.Variables()):
		// a common factor in a variable would appear in both
		return contentGCD(a, b)
	}
	return gcdIn(a, b, mainVariable(a, b))
}

// contentGCD is the gcd of the integer contents as a constant polynomial
func contentGCD(a, b *poly.Polynomial) *poly.Polynomial {
	g := new(big.Int).GCD(nil, nil, a.Content(), b.Content())
	return poly.FromBig(a.Registry(), g)
}

// disjoint reports whether two ascending index lists share no entry
func disjoint(a, b []int) bool {
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] == b[j]:
			return false
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return true
}

// gcdIn runs the primitive remainder sequence in x_v
func gcdIn(a, b *poly.Polynomial, v int) *poly.Polynomial {
	if a.DegreeIn(v) == 0 {
		return PolyGCD(a, contentIn(b, v))
	}
	if b.DegreeIn(v) == 0 {
		return PolyGCD(contentIn(a, v), b)
	}

	ca, cb := contentIn(a, v), contentIn(b, v)
	pa, pb := divide(a, ca), divide(b, cb)
	content := PolyGCD(ca, cb)

	if pa.DegreeIn(v) < pb.DegreeIn(v) {
		pa, pb = pb, pa
	}

	var g *poly.Polynomial
	for {
		r := pseudoRemainder(pa, pb, v)
		if r.IsZero() {
			g = pb
			break
		}
		if r.DegreeIn(v) == 0 {
			g = poly.FromInt64(a.Registry(), 1)
			break
		}
		pa, pb = pb, primitivePart(r, v)
	}
	return positive(content.Multiply(g))
}

// contentIn is the gcd of the coefficients of p as a polynomial in x_v.
// Coefficients are combined smallest first so the running gcd shrinks early;
// a constant coefficient reduces the content to an integer.
func contentIn(p *poly.Polynomial, v int) *poly.Polynomial {
	coeffs := p.CoefficientsIn(v)
	nonzero := coeffs[:0:0]
	for _, c := range coeffs {
		if c.IsZero() {
			continue
		}
		if c.IsConstant() {
			return poly.FromBig(p.Registry(), p.Content())
		}
		nonzero = append(nonzero, c)
	}
	slices.SortFunc(nonzero, func(a, b *poly.Polynomial) int {
		return a.NumTerms() - b.NumTerms()
	})

	g := poly.New(p.Registry())
	for _, c := range nonzero {
		g = PolyGCD(g, c)
		if g.IsConstant() {
			return poly.FromBig(p.Registry(), p.Content())
		}
	}
	return g
}

func primitivePart(p *poly.Polynomial, v int) *poly.Polynomial {
	return divide(p, contentIn(p, v))
}

// pseudoRemainder reduces a by b in x_v, scaling by the leading coefficient
// of b at each step so every division stays exact
func pseudoRemainder(a, b *poly.Polynomial, v int) *poly.Polynomial {
	lcb, n := b.LeadingCoefficientIn(v)

	r := a
	for !r.IsZero() {
		lcr, m := r.LeadingCoefficientIn(v)
		if m < n {
			break
		}
		r = r.Multiply(lcb).Subtract(b.Multiply(lcr).ShiftIn(v, m-n))
	}
	return r
}

func mainVariable(a, b *poly.Polynomial) int {
	v := -1
	for _, vars := range [][]int{a.Variables(), b.Variables()} {
		if len(vars) > 0 && (v < 0 || vars[0] < v) {
			v = vars[0]
		}
	}
	return v
}

func positive(p *poly.Polynomial) *poly.Polynomial {
	if !p.IsZero() && p.LeadingTerm().Coef.Sign() < 0 {
		return p.Negate()
	}
	return p
}
