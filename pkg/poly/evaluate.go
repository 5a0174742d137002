package poly

import (
	"math"
	"math/big"

	"github.com/msto63/paramval/pkg/fraction"
	"github.com/msto63/paramval/pkg/param"
)

// Evaluate substitutes point into p. Only parameters that occur in p are
// read, and each distinct power is computed once.
func (p *Polynomial) Evaluate(point *param.Point) *fraction.Fraction {
	p.Adjust()
	needed := p.Variables()
	powers := make(map[[2]int]*fraction.Fraction)

	power := func(index, e int) *fraction.Fraction {
		key := [2]int{index, e}
		if v, ok := powers[key]; ok {
			return v
		}
		v := point.Get(index).Pow(e)
		powers[key] = v
		return v
	}

	sum := fraction.Zero()
	for _, t := range p.terms {
		v := fraction.FromBig(t.Coef)
		for _, i := range needed {
			if e := t.Exp[i]; e != 0 {
				v = v.Multiply(power(i, e))
			}
		}
		sum = sum.Add(v)
	}
	return sum
}

// EvaluateDouble substitutes values, indexed by parameter, in float64
// arithmetic. Missing trailing values are treated as zero.
func (p *Polynomial) EvaluateDouble(values []float64) float64 {
	sum := 0.0
	for _, t := range p.terms {
		c, _ := new(big.Float).SetInt(t.Coef).Float64()
		for i, e := range t.Exp {
			if e == 0 {
				continue
			}
			x := 0.0
			if i < len(values) {
				x = values[i]
			}
			c *= math.Pow(x, float64(e))
		}
		sum += c
	}
	return sum
}
