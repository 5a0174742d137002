package poly

import (
	"github.com/msto63/paramval/pkg/param"
)

// geobucketBase is the growth factor between bucket capacities
const geobucketBase = 4

// Geobucket accumulates many sparse additions. Bucket i (1-based) holds at
// most 4^i terms; an addition lands in the smallest bucket that fits and
// overflowing buckets cascade into the next one, so n additions cost about
// O(n log n) term merges instead of O(n^2).
type Geobucket struct {
	reg     *param.Registry
	buckets [][]Term
}

// NewGeobucket creates an empty accumulator for polynomials over reg
func NewGeobucket(reg *param.Registry) *Geobucket {
	return &Geobucket{reg: reg}
}

// Add accumulates p
func (g *Geobucket) Add(p *Polynomial) {
	g.addTerms(p.terms)
}

// AddTerm accumulates a single term; zero coefficients are ignored
func (g *Geobucket) AddTerm(t Term) {
	if t.Coef.Sign() == 0 {
		return
	}
	g.addTerms([]Term{t.clone()})
}

// Len returns the number of terms held across all buckets, duplicates included
func (g *Geobucket) Len() int {
	n := 0
	for _, b := range g.buckets {
		n += len(b)
	}
	return n
}

func (g *Geobucket) addTerms(terms []Term) {
	if len(terms) == 0 {
		return
	}
	i := bucketIndex(len(terms))
	g.grow(i)
	g.buckets[i] = mergeTerms(g.buckets[i], terms, false)

	for len(g.buckets[i]) > bucketCapacity(i) {
		g.grow(i + 1)
		g.buckets[i+1] = mergeTerms(g.buckets[i+1], g.buckets[i], false)
		g.buckets[i] = nil
		i++
	}
}

// Canonicalise folds every bucket, lowest first, into one polynomial and
// resets the accumulator
func (g *Geobucket) Canonicalise() *Polynomial {
	var acc []Term
	for _, b := range g.buckets {
		if len(b) > 0 {
			acc = mergeTerms(acc, b, false)
		}
	}
	g.buckets = nil
	return fromSorted(g.reg, acc)
}

func (g *Geobucket) grow(i int) {
	for len(g.buckets) <= i {
		g.buckets = append(g.buckets, nil)
	}
}

// bucketIndex returns the 0-based slot of the smallest bucket holding n terms
func bucketIndex(n int) int {
	i, capacity := 0, geobucketBase
	for capacity < n {
		capacity *= geobucketBase
		i++
	}
	return i
}

func bucketCapacity(i int) int {
	c := geobucketBase
	for ; i > 0; i-- {
		c *= geobucketBase
	}
	return c
}
