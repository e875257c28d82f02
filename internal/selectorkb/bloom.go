package selectorkb

import (
	"hash/fnv"
	"math"
	"sync"
)

// Bloom is a fixed-size Bloom filter over composite "domain:page:key"
// strings, sized for the configured capacity and false-positive target.
// Hand-rolled on the standard library; see DESIGN.md.
type Bloom struct {
	mu   sync.RWMutex
	bits []uint64
	m    uint64 // number of bits
	k    uint   // number of hash functions
	n    uint64 // number of items added
}

// NewBloom builds a Bloom filter sized for capacity items at the given
// false-positive rate, using the standard m/k sizing formulas.
func NewBloom(capacity uint, falsePositiveRate float64) *Bloom {
	if capacity == 0 {
		capacity = 1
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.01
	}
	n := float64(capacity)
	m := math.Ceil(-(n * math.Log(falsePositiveRate)) / (math.Ln2 * math.Ln2))
	k := math.Round((m / n) * math.Ln2)
	if k < 1 {
		k = 1
	}
	words := uint64(m)/64 + 1
	return &Bloom{
		bits: make([]uint64, words),
		m:    words * 64,
		k:    uint(k),
	}
}

// hashes returns the k probe positions for key using double hashing
// (Kirsch-Mitzenmacher): h_i(x) = h1(x) + i*h2(x) mod m.
func (b *Bloom) hashes(key string) (uint64, uint64) {
	h1 := fnv.New64a()
	h1.Write([]byte(key))
	v1 := h1.Sum64()

	h2 := fnv.New64()
	h2.Write([]byte(key))
	v2 := h2.Sum64()
	if v2 == 0 {
		v2 = 1
	}
	return v1, v2
}

// Add inserts key into the filter.
func (b *Bloom) Add(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v1, v2 := b.hashes(key)
	for i := uint(0); i < b.k; i++ {
		pos := (v1 + uint64(i)*v2) % b.m
		b.bits[pos/64] |= 1 << (pos % 64)
	}
	b.n++
}

// MayContain returns false only when key is definitely absent; true means
// "possibly present" subject to the configured false-positive rate.
func (b *Bloom) MayContain(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v1, v2 := b.hashes(key)
	for i := uint(0); i < b.k; i++ {
		pos := (v1 + uint64(i)*v2) % b.m
		if b.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

// Count returns the number of items added (not distinct, just inserts).
func (b *Bloom) Count() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.n
}
