// SPDX-License-Identifier: MIT

package spectral

import (
	"fmt"
	"sync"

	"github.com/katalvlaran/ktest/approx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Key identifies the spectrum of one covariance operator.
type Key struct {
	Sample     approx.Sample
	Covariance approx.Covariance
	Basis      approx.AnchorBasis // meaningful for Nyström covariances only
	Filter     string             // outlier filter name, "" for none
}

// NewKey builds a Key, zeroing Basis for covariances that do not use anchors
// so that equivalent requests share one entry.
func NewKey(sample approx.Sample, cov approx.Covariance, basis approx.AnchorBasis, filter string) Key {
	if !cov.IsNystrom() {
		basis = approx.BasisK
	}

	return Key{Sample: sample, Covariance: cov, Basis: basis, Filter: filter}
}

// AnchorKey identifies the spectrum of a landmark Gram matrix.
type AnchorKey struct {
	Sample approx.Sample
	Basis  approx.AnchorBasis
	Filter string
}

func (k Key) String() string {
	return fmt.Sprintf("%v|%v|%v|%q", k.Sample, k.Covariance, k.Basis, k.Filter)
}

func (k AnchorKey) String() string {
	return fmt.Sprintf("anchors|%v|%v|%q", k.Sample, k.Basis, k.Filter)
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("spectral: WithLogger: nil logger")
	}

	return func(c *Cache) { c.logger = l }
}

// Cache holds write-once spectra for one analysis session.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]Entry
	anchors map[AnchorKey]Entry
	flight  singleflight.Group
	logger  *zap.Logger
}

// NewCache returns an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[Key]Entry),
		anchors: make(map[AnchorKey]Entry),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the covariance spectrum for k.
func (c *Cache) Get(k Key) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[k]

	return e, ok
}

// Lookup is Get returning ErrNotFound for an absent key.
func (c *Cache) Lookup(k Key) (Entry, error) {
	if e, ok := c.Get(k); ok {
		return e, nil
	}

	return Entry{}, spectralErrorf(opGet, fmt.Errorf("%v: %w", k, ErrNotFound))
}

// Put stores e under k. A second Put on the same key fails with
// ErrEntryExists and leaves the first entry in place.
func (c *Cache) Put(k Key, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[k]; ok {
		return spectralErrorf(opPut, fmt.Errorf("%v: %w", k, ErrEntryExists))
	}
	c.entries[k] = e
	c.logger.Debug("spectrum cached",
		zap.Stringer("key", k), zap.Int("len", e.Len()), zap.Int("dim", e.Dim()))

	return nil
}

// GetOrCompute returns the entry for k, running compute at most once across
// concurrent callers when it is absent.
func (c *Cache) GetOrCompute(k Key, compute func() (Entry, error)) (Entry, error) {
	if e, ok := c.Get(k); ok {
		return e, nil
	}
	v, err, _ := c.flight.Do(k.String(), func() (interface{}, error) {
		// a previous flight may have finished between Get and Do
		if e, ok := c.Get(k); ok {
			return e, nil
		}
		e, err := compute()
		if err != nil {
			return Entry{}, err
		}
		if err := c.Put(k, e); err != nil {
			return Entry{}, err
		}

		return e, nil
	})
	if err != nil {
		return Entry{}, spectralErrorf(opCompute, err)
	}

	return v.(Entry), nil
}

// GetAnchors returns the landmark spectrum for k.
func (c *Cache) GetAnchors(k AnchorKey) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.anchors[k]

	return e, ok
}

// LookupAnchors is GetAnchors returning ErrNotFound for an absent key.
func (c *Cache) LookupAnchors(k AnchorKey) (Entry, error) {
	if e, ok := c.GetAnchors(k); ok {
		return e, nil
	}

	return Entry{}, spectralErrorf(opGet, fmt.Errorf("%v: %w", k, ErrNotFound))
}

// PutAnchors stores e under k, write-once like Put.
func (c *Cache) PutAnchors(k AnchorKey, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.anchors[k]; ok {
		return spectralErrorf(opPut, fmt.Errorf("%v: %w", k, ErrEntryExists))
	}
	c.anchors[k] = e
	c.logger.Debug("anchor spectrum cached",
		zap.Stringer("key", k), zap.Int("len", e.Len()), zap.Int("dim", e.Dim()))

	return nil
}

// GetOrComputeAnchors is GetOrCompute for landmark spectra.
func (c *Cache) GetOrComputeAnchors(k AnchorKey, compute func() (Entry, error)) (Entry, error) {
	if e, ok := c.GetAnchors(k); ok {
		return e, nil
	}
	v, err, _ := c.flight.Do(k.String(), func() (interface{}, error) {
		if e, ok := c.GetAnchors(k); ok {
			return e, nil
		}
		e, err := compute()
		if err != nil {
			return Entry{}, err
		}
		if err := c.PutAnchors(k, e); err != nil {
			return Entry{}, err
		}

		return e, nil
	})
	if err != nil {
		return Entry{}, spectralErrorf(opCompute, err)
	}

	return v.(Entry), nil
}

// Len reports the number of covariance and anchor entries.
func (c *Cache) Len() (entries, anchors int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries), len(c.anchors)
}

// Clear drops every entry. Flights already running still store their result.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]Entry)
	c.anchors = make(map[AnchorKey]Entry)
}
