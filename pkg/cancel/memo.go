package cancel

import (
	"time"

	"github.com/msto63/paramval/pkg/core/cache"
	"github.com/msto63/paramval/pkg/param"
	"github.com/msto63/paramval/pkg/poly"
)

// Memo remembers the results of another canceller, keyed by the canonical
// strings of the pair
type Memo struct {
	next  Canceller
	cache *cache.Cache
}

type memoEntry struct {
	reg      *param.Registry
	num, den *poly.Polynomial
}

// NewMemo wraps next with a cache of at most size pairs
func NewMemo(next Canceller, size int) *Memo {
	return NewMemoWithTTL(next, size, 0)
}

// NewMemoWithTTL is NewMemo with entries expiring after ttl
func NewMemoWithTTL(next Canceller, size int, ttl time.Duration) *Memo {
	return &Memo{
		next:  next,
		cache: cache.New(cache.Config{MaxItems: size, TTL: ttl}),
	}
}

// Cancel returns the cached result for the pair or computes it with the
// wrapped canceller. Failures are not cached.
func (m *Memo) Cancel(num, den *poly.Polynomial) (*poly.Polynomial, *poly.Polynomial, error) {
	key := cache.Key(num.String(), den.String())
	v, err := m.cache.GetOrSet(key, func() (interface{}, error) {
		n, d, err := m.next.Cancel(num, den)
		if err != nil {
			return nil, err
		}
		return memoEntry{reg: num.Registry(), num: n, den: d}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	e := v.(memoEntry)
	if e.reg != num.Registry() {
		// names are only meaningful within one registry
		return m.next.Cancel(num, den)
	}
	return e.num, e.den, nil
}

// Stats returns the hit and miss counters of the cache
func (m *Memo) Stats() cache.Stats {
	return m.cache.Stats()
}
