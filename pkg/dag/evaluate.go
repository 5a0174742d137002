package dag

import (
	"math"
	"math/rand"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/pkg/cancel"
	"github.com/msto63/paramval/pkg/fraction"
	"github.com/msto63/paramval/pkg/param"
	"github.com/msto63/paramval/pkg/poly"
	"github.com/msto63/paramval/pkg/ratfunc"
)

// Evaluator computes exact node values and remembers every node it visits,
// per point. The memo stays valid because interned nodes never change.
type Evaluator struct {
	pool   *Pool
	memo   map[string]map[Handle]*fraction.Fraction
	hits   int
	misses int
}

// NewEvaluator returns an evaluator with an empty memo
func (p *Pool) NewEvaluator() *Evaluator {
	return &Evaluator{pool: p, memo: make(map[string]map[Handle]*fraction.Fraction)}
}

// Evaluate returns the value of h at point, following Fraction arithmetic
// for zero divisors and infinities
func (e *Evaluator) Evaluate(h Handle, point *param.Point) *fraction.Fraction {
	key := point.Key()
	values, ok := e.memo[key]
	if !ok {
		values = make(map[Handle]*fraction.Fraction)
		e.memo[key] = values
	}
	if v, ok := values[h]; ok {
		e.hits++
		return v
	}
	e.misses++

	known := func(n Handle) bool {
		_, ok := values[n]
		return ok
	}
	for _, n := range e.pool.reachable([]Handle{h}, known) {
		entry := e.pool.entries[n]
		switch entry.Kind {
		case KindConstant:
			values[n] = entry.Value
		case KindVariable:
			values[n] = point.Get(entry.Param)
		default:
			args := make([]*fraction.Fraction, len(entry.Operands))
			for i, o := range entry.Operands {
				args[i] = values[o]
			}
			values[n] = applyFraction(entry.Op, args)
		}
	}
	return values[h]
}

// EvaluateDouble evaluates exactly and rounds to the nearest double
func (e *Evaluator) EvaluateDouble(h Handle, point *param.Point) float64 {
	return e.Evaluate(h, point).Float64()
}

// MemoStats returns lookup hits and misses since creation or the last Reset
func (e *Evaluator) MemoStats() (hits, misses int) {
	return e.hits, e.misses
}

// MemoSize returns the number of remembered (node, point) values
func (e *Evaluator) MemoSize() int {
	n := 0
	for _, values := range e.memo {
		n += len(values)
	}
	return n
}

// Reset drops the memo
func (e *Evaluator) Reset() {
	e.memo = make(map[string]map[Handle]*fraction.Fraction)
	e.hits, e.misses = 0, 0
}

// EvaluatePointInterval bounds h at an exact point; each parameter enters as
// the tightest float64 interval around its value
func (p *Pool) EvaluatePointInterval(h Handle, point *param.Point) (lo, hi float64) {
	los, his := point.Intervals()
	return p.EvaluateInterval(h, los, his)
}

// Evaluate is a one-off exact evaluation without a shared memo
func (p *Pool) Evaluate(h Handle, point *param.Point) *fraction.Fraction {
	return p.NewEvaluator().Evaluate(h, point)
}

type interval struct {
	lo, hi float64
}

var whole = interval{math.Inf(-1), math.Inf(1)}

// EvaluateInterval returns bounds lo <= value <= hi of h where parameter i
// lies in [los[i], his[i]]. Every rounded step is widened outwards by one
// ulp. An invalid value yields NaN bounds.
func (p *Pool) EvaluateInterval(h Handle, los, his []float64) (lo, hi float64) {
	bounds := make(map[Handle]interval)
	for _, n := range p.Reachable(h) {
		e := p.entries[n]
		var r interval
		switch e.Kind {
		case KindConstant:
			r.lo, r.hi = e.Value.ToDoubleInterval()
		case KindVariable:
			if e.Param >= len(los) || e.Param >= len(his) {
				panic("dag: no interval value for parameter " + p.reg.Get(e.Param))
			}
			r = interval{los[e.Param], his[e.Param]}
		default:
			a := bounds[e.Operands[0]]
			var b interval
			if len(e.Operands) > 1 {
				b = bounds[e.Operands[1]]
			}
			r = intervalOp(e.Op, a, b)
		}
		bounds[n] = r
	}
	r := bounds[h]
	return r.lo, r.hi
}

func intervalOp(op Op, a, b interval) interval {
	if a.nan() || (op.Arity() == 2 && b.nan()) {
		return interval{math.NaN(), math.NaN()}
	}
	switch op {
	case OpNegate:
		return interval{-a.hi, -a.lo}
	case OpReciprocal:
		return a.reciprocal()
	case OpAdd:
		return outward(a.lo+b.lo, a.hi+b.hi)
	case OpSubtract:
		return outward(a.lo-b.hi, a.hi-b.lo)
	case OpMultiply:
		return a.multiply(b)
	case OpDivide:
		return a.multiply(b.reciprocal())
	}
	panic("dag: no interval rule for " + op.String())
}

func (a interval) nan() bool {
	return math.IsNaN(a.lo) || math.IsNaN(a.hi)
}

func (a interval) reciprocal() interval {
	if a.lo == 0 || a.hi == 0 || (a.lo < 0 && a.hi > 0) {
		return whole
	}
	return outward(1/a.hi, 1/a.lo)
}

func (a interval) multiply(b interval) interval {
	p := [4]float64{a.lo * b.lo, a.lo * b.hi, a.hi * b.lo, a.hi * b.hi}
	lo, hi := p[0], p[0]
	for _, x := range p[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return outward(lo, hi)
}

// outward widens by one ulp; an undefined bound such as inf-inf widens to
// the whole line
func outward(lo, hi float64) interval {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return whole
	}
	return interval{math.Nextafter(lo, math.Inf(-1)), math.Nextafter(hi, math.Inf(1))}
}

// ToRational expands h into a rational function kept reduced by c. A nil
// canceller selects the native GCD.
func (p *Pool) ToRational(h Handle, c cancel.Canceller) (*ratfunc.RationalFunction, error) {
	if c == nil {
		c = cancel.NewGCD()
	}
	values := make(map[Handle]*ratfunc.RationalFunction)
	for _, n := range p.Reachable(h) {
		e := p.entries[n]
		var (
			r   *ratfunc.RationalFunction
			err error
		)
		switch e.Kind {
		case KindConstant:
			r = ratfunc.FromFraction(p.reg, e.Value, c)
		case KindVariable:
			r = ratfunc.FromParameter(p.reg, e.Param, c)
		default:
			a := values[e.Operands[0]]
			switch e.Op {
			case OpAdd:
				r, err = a.Add(values[e.Operands[1]])
			case OpSubtract:
				r, err = a.Subtract(values[e.Operands[1]])
			case OpMultiply:
				r, err = a.Multiply(values[e.Operands[1]])
			case OpDivide:
				r, err = a.Divide(values[e.Operands[1]])
			case OpNegate:
				r = a.AddInverse()
			case OpReciprocal:
				r = a.MultInverse()
			}
		}
		if err != nil {
			return nil, pverrors.OperationFailed(pverrors.ModuleDag, "to_rational", err)
		}
		values[n] = r
	}
	return values[h], nil
}

// FromPolynomial interns q as a sum of monomials in canonical term order
func (p *Pool) FromPolynomial(q *poly.Polynomial) Handle {
	if q.IsZero() {
		return p.Int(0)
	}
	var sum Handle
	for i, t := range q.Terms() {
		var m Handle
		have := false
		if t.IsConstant() || !t.Coef.IsInt64() || t.Coef.Int64() != 1 {
			m, have = p.Constant(fraction.FromBig(t.Coef)), true
		}
		for v, e := range t.Exp {
			for k := 0; k < e; k++ {
				x := p.Variable(v)
				if !have {
					m, have = x, true
					continue
				}
				m = p.Multiply(m, x)
			}
		}
		if i == 0 {
			sum = m
		} else {
			sum = p.Add(sum, m)
		}
	}
	return sum
}

// FromRational interns r as numerator / denominator. Sentinel values become
// constants.
func (p *Pool) FromRational(r *ratfunc.RationalFunction) Handle {
	if r.IsConstant() {
		return p.Constant(r.Constant())
	}
	num := p.FromPolynomial(r.Numerator())
	if r.Denominator().IsOne() {
		return num
	}
	return p.Divide(num, p.FromPolynomial(r.Denominator()))
}

type checkpoints struct {
	n      int
	rng    *rand.Rand
	points []*param.Point
	filled int
	eval   *Evaluator
}

// checkpointModulus is a prime denominator so random points rarely hit poles
const checkpointModulus = 1000003

// CheckpointsEnabled reports whether ValueEqual is available
func (p *Pool) CheckpointsEnabled() bool {
	return p.checks != nil
}

// ValueEqual reports whether a and b agree at every checkpoint. Agreement is
// evidence, not proof, of equal values; structurally equal nodes always
// agree. It fails unless the pool was created WithCheckpoints.
func (p *Pool) ValueEqual(a, b Handle) (bool, error) {
	p.check(a)
	p.check(b)
	if p.checks == nil {
		return false, pverrors.NewErrorBuilder(pverrors.ModuleDag).
			Operation("value_equal").
			Message("value equality requires checkpoints").
			Code(pverrors.CodeInvalidInput).
			Build()
	}
	if a == b {
		return true, nil
	}

	c := p.checks
	c.refresh(p.reg)
	if c.eval == nil {
		c.eval = p.NewEvaluator()
	}
	for _, pt := range c.points {
		if !c.eval.Evaluate(a, pt).Equal(c.eval.Evaluate(b, pt)) {
			return false, nil
		}
	}
	return true, nil
}

// refresh draws values for parameters registered since the last call
func (c *checkpoints) refresh(reg *param.Registry) {
	for len(c.points) < c.n {
		c.points = append(c.points, param.NewPoint(reg))
	}
	size := reg.Size()
	for i := c.filled; i < size; i++ {
		for _, pt := range c.points {
			num := c.rng.Int63n(checkpointModulus-1) + 1
			pt.Set(i, fraction.New(num, checkpointModulus))
		}
	}
	c.filled = size
}
