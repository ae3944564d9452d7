package chemistry

import (
	"encoding/binary"
	"math"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
)

/*
Cache memoizes the state dependent queries of a Provider. Entries are keyed on
the exact bits of the queried state and on the kinetic parameter fingerprint,
so a hit returns exactly what the wrapped provider would have returned.
Returned slices are copies and may be modified by the caller.
*/
type Cache struct {
	Provider
	maxEntries   int
	fingerprint  string
	mu           sync.Mutex
	lru          *lru.Cache
	hits, misses int64
}

func NewCache(p Provider, maxEntries int) *Cache {
	if c, ok := p.(*Cache); ok {
		p = c.Provider
	}
	return &Cache{
		Provider:    p,
		maxEntries:  maxEntries,
		fingerprint: p.KineticParameters().Fingerprint(),
		lru:         lru.New(maxEntries),
	}
}

func (c *Cache) key(op string, s State) string {
	var (
		sb  strings.Builder
		buf [8]byte
	)
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		sb.Write(buf[:])
	}
	sb.WriteString(op)
	sb.WriteByte(0)
	put(s.T)
	put(s.P)
	for _, y := range s.Y {
		put(y)
	}
	sb.WriteByte(0)
	for _, th := range s.Coverages {
		put(th)
	}
	sb.WriteByte(0)
	sb.WriteString(c.fingerprint)
	return sb.String()
}

func (c *Cache) lookup(op string, s State, eval func() (interface{}, error)) (val interface{}, err error) {
	key := c.key(op, s)
	c.mu.Lock()
	val, ok := c.lru.Get(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
	if ok {
		return
	}
	if val, err = eval(); err != nil {
		return
	}
	c.mu.Lock()
	c.lru.Add(key, val)
	c.mu.Unlock()
	return
}

func (c *Cache) Density(s State) (rho float64, err error) {
	var val interface{}
	if val, err = c.lookup("density", s, func() (interface{}, error) {
		return c.Provider.Density(s)
	}); err != nil {
		return
	}
	return val.(float64), nil
}

func (c *Cache) SpecificHeat(s State) (cp float64, err error) {
	var val interface{}
	if val, err = c.lookup("cp", s, func() (interface{}, error) {
		return c.Provider.SpecificHeat(s)
	}); err != nil {
		return
	}
	return val.(float64), nil
}

func (c *Cache) NetProductionRates(s State) (r Rates, err error) {
	var val interface{}
	if val, err = c.lookup("rates", s, func() (interface{}, error) {
		return c.Provider.NetProductionRates(s)
	}); err != nil {
		return
	}
	return val.(Rates).Clone(), nil
}

func (c *Cache) RatesOfProgress(s State) (q Progress, err error) {
	var val interface{}
	if val, err = c.lookup("progress", s, func() (interface{}, error) {
		return c.Provider.RatesOfProgress(s)
	}); err != nil {
		return
	}
	return val.(Progress).Clone(), nil
}

func (c *Cache) SurfaceCoverages(s State) (theta []float64, err error) {
	var val interface{}
	if val, err = c.lookup("coverages", s, func() (interface{}, error) {
		return c.Provider.SurfaceCoverages(s)
	}); err != nil {
		return
	}
	return append([]float64(nil), val.([]float64)...), nil
}

func (c *Cache) ReactionEnthalpies(s State) (dH Enthalpies, err error) {
	var val interface{}
	if val, err = c.lookup("enthalpies", s, func() (interface{}, error) {
		return c.Provider.ReactionEnthalpies(s)
	}); err != nil {
		return
	}
	return val.(Enthalpies).Clone(), nil
}

// WithKineticParameters wraps the new provider handle in its own, empty cache
func (c *Cache) WithKineticParameters(kp KineticParameters) (Provider, error) {
	p, err := c.Provider.WithKineticParameters(kp)
	if err != nil {
		return nil, err
	}
	return NewCache(p, c.maxEntries), nil
}

func (c *Cache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
