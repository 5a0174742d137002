package param

import (
	"fmt"
	"strings"

	"github.com/msto63/paramval/pkg/fraction"
)

// Point assigns a concrete value to every parameter of a registry
type Point struct {
	reg    *Registry
	values []*fraction.Fraction
	epoch  uint64
}

// NewPoint creates a point with every parameter set to zero
func NewPoint(reg *Registry) *Point {
	p := &Point{reg: reg}
	p.Adjust()
	return p
}

// Registry returns the registry the point is bound to
func (p *Point) Registry() *Registry {
	return p.reg
}

// Adjust widens the point to the current registry size; new slots are zero
func (p *Point) Adjust() {
	if p.epoch == p.reg.Epoch() && len(p.values) == p.reg.Size() {
		return
	}
	for len(p.values) < p.reg.Size() {
		p.values = append(p.values, fraction.Zero())
	}
	p.epoch = p.reg.Epoch()
}

// Size returns the number of slots after adjusting
func (p *Point) Size() int {
	p.Adjust()
	return len(p.values)
}

// Set assigns value to the parameter at index
func (p *Point) Set(index int, value *fraction.Fraction) {
	p.Adjust()
	p.check(index)
	p.values[index] = value
}

// SetByName assigns value to name, registering the parameter if needed
func (p *Point) SetByName(name string, value *fraction.Fraction) {
	p.Set(p.reg.Register(name), value)
}

// Get returns the value at index
func (p *Point) Get(index int) *fraction.Fraction {
	p.Adjust()
	p.check(index)
	return p.values[index]
}

// Doubles returns the point rounded to float64, ties to even
func (p *Point) Doubles() []float64 {
	p.Adjust()
	out := make([]float64, len(p.values))
	for i, v := range p.values {
		out[i] = v.Float64()
	}
	return out
}

// Intervals returns float64 bounds lo[i] <= value <= hi[i] for every
// parameter; exactly representable values give lo[i] == hi[i]
func (p *Point) Intervals() (lo, hi []float64) {
	p.Adjust()
	lo = make([]float64, len(p.values))
	hi = make([]float64, len(p.values))
	for i, v := range p.values {
		lo[i], hi[i] = v.ToDoubleInterval()
	}
	return lo, hi
}

// Clone returns an independent copy bound to the same registry
func (p *Point) Clone() *Point {
	p.Adjust()
	c := &Point{reg: p.reg, epoch: p.epoch, values: make([]*fraction.Fraction, len(p.values))}
	copy(c.values, p.values)
	return c
}

// Key returns a stable textual key identifying the assignment
func (p *Point) Key() string {
	p.Adjust()
	var sb strings.Builder
	for i, v := range p.values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.String())
	}
	return sb.String()
}

// String renders name=value pairs in index order
func (p *Point) String() string {
	p.Adjust()
	parts := make([]string, len(p.values))
	for i, v := range p.values {
		parts[i] = p.reg.Get(i) + "=" + v.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (p *Point) check(index int) {
	if index < 0 || index >= len(p.values) {
		panic(fmt.Sprintf("param: point index %d out of range [0, %d)", index, len(p.values)))
	}
}
