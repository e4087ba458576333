package cache

import (
	"errors"
	"fmt"
	"hash/maphash"
	"math"
)

// DedupeMode decides when Put treats an incoming pair as already cached.
type DedupeMode uint8

const (
	// DedupeByKey matches an existing entry by key. The entry is promoted, and
	// a different value replaces the stored one.
	DedupeByKey DedupeMode = iota

	// DedupeByValue makes Put a no-op when any entry in the target set holds an
	// equal value, whatever its key. Nothing is promoted. A key that is cached
	// with a different value is still replaced as under DedupeByKey.
	DedupeByValue
)

// Config controls cache geometry and replacement behavior.
//
//   - Capacity and Sets must be positive, and Capacity/Sets must be at least 1.
//     Any remainder of Capacity/Sets is unusable.
//   - A zero Policy is LRU.
//   - A nil Hash uses a hash/maphash seed chosen at construction.
type Config[K, V comparable] struct {
	Capacity int
	Sets     int
	Policy   Policy[K, V]
	Hash     func(K) int
	Dedupe   DedupeMode

	// OnEvict, if set, is called with every pair removed by the eviction policy.
	OnEvict func(key K, value V)
}

// Cache is a fixed-capacity, set-associative key/value cache.
//
// Keys are placed in one of Sets independent sets. Each set keeps its entries
// in a circular list through a sentinel, ordered from most to least recently
// touched, and holds at most Capacity/Sets entries.
//
// Cache is not safe for concurrent use.
type Cache[K, V comparable] struct {
	a        *arena[K, V]
	occupied []int // per set
	sets     int
	capacity int
	setSize  int
	policy   Policy[K, V]
	hash     func(K) int
	dedupe   DedupeMode
	onEvict  func(K, V)
}

var (
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrInvalidSets     = errors.New("set count must be positive")
	ErrSetSizeZero     = errors.New("capacity is smaller than set count")
	ErrUnknownPolicy   = errors.New("unknown eviction policy")
	ErrNilPolicy       = errors.New("custom eviction policy is nil")
	ErrVictimNotFound  = errors.New("eviction victim is not cached")
	ErrForeignVictim   = errors.New("eviction victim belongs to another set")
	ErrTooLarge        = errors.New("cache geometry exceeds entry index range")
)

// New validates cfg and builds an empty cache.
func New[K, V comparable](cfg Config[K, V]) (*Cache[K, V], error) {
	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("capacity %d: %w", cfg.Capacity, ErrInvalidCapacity)
	}
	if cfg.Sets <= 0 {
		return nil, fmt.Errorf("sets %d: %w", cfg.Sets, ErrInvalidSets)
	}
	setSize := cfg.Capacity / cfg.Sets
	if setSize == 0 {
		return nil, fmt.Errorf("capacity %d, sets %d: %w", cfg.Capacity, cfg.Sets, ErrSetSizeZero)
	}
	// Entries are addressed by int32 index, sentinels included.
	if int64(cfg.Sets)+int64(cfg.Sets)*int64(setSize) > math.MaxInt32 {
		return nil, fmt.Errorf("capacity %d, sets %d: %w", cfg.Capacity, cfg.Sets, ErrTooLarge)
	}
	if cfg.Policy.kind == policyCustom && cfg.Policy.fn == nil {
		return nil, ErrNilPolicy
	}

	hash := cfg.Hash
	if hash == nil {
		seed := maphash.MakeSeed()
		hash = func(k K) int { return int(maphash.Comparable(seed, k)) }
	}

	return &Cache[K, V]{
		a:        newArena[K, V](cfg.Sets),
		occupied: make([]int, cfg.Sets),
		sets:     cfg.Sets,
		capacity: cfg.Capacity,
		setSize:  setSize,
		policy:   cfg.Policy,
		hash:     hash,
		dedupe:   cfg.Dedupe,
		onEvict:  cfg.OnEvict,
	}, nil
}

// SetIndex returns the set key is placed in, always within [0, Sets()).
func (c *Cache[K, V]) SetIndex(key K) int {
	return ((c.hash(key) % c.sets) + c.sets) % c.sets
}

// Get returns the value cached under key and promotes it to the head of its set.
// A miss leaves the cache unchanged.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	s := int32(c.SetIndex(key))
	i, ok := c.find(s, key)
	if !ok {
		var zero V
		return zero, false
	}
	c.a.promote(s, i)
	return c.a.nodes[i].value, true
}

// Peek is Get without promotion.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	i, ok := c.find(int32(c.SetIndex(key)), key)
	if !ok {
		var zero V
		return zero, false
	}
	return c.a.nodes[i].value, true
}

// Contains reports whether key is cached. It does not touch recency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.find(int32(c.SetIndex(key)), key)
	return ok
}

// ContainsValue reports whether the set key maps to holds an entry whose value
// equals value. The entry's own key is not compared.
func (c *Cache[K, V]) ContainsValue(key K, value V) bool {
	_, ok := c.findValue(int32(c.SetIndex(key)), value)
	return ok
}

// Put caches value under key.
//
// When the target set is full the configured policy nominates a victim from the
// set head. The victim is looked up in its own set and must match both key and
// value; if it is missing (ErrVictimNotFound) or lives in a different set (ErrForeignVictim) the put is
// rejected and the cache is left unchanged.
func (c *Cache[K, V]) Put(key K, value V) error {
	s := int32(c.SetIndex(key))

	if c.dedupe == DedupeByValue {
		if _, ok := c.findValue(s, value); ok {
			return nil
		}
	}
	if i, ok := c.find(s, key); ok {
		c.a.nodes[i].value = value
		c.a.promote(s, i)
		return nil
	}

	if c.occupied[s] >= c.setSize {
		if err := c.evict(s); err != nil {
			return err
		}
	}

	c.a.pushFront(s, c.a.alloc(key, value))
	c.occupied[s]++
	return nil
}

// evict asks the policy for a victim in the full set s and removes it.
func (c *Cache[K, V]) evict(s int32) error {
	vk, vv := c.policy.Victim(c.view(s))

	vs := int32(c.SetIndex(vk))
	i, ok := c.find(vs, vk)
	if !ok || c.a.nodes[i].value != vv {
		return fmt.Errorf("evict %v=%v: %w", vk, vv, ErrVictimNotFound)
	}
	if vs != s {
		return fmt.Errorf("evict %v from set %d for set %d: %w", vk, vs, s, ErrForeignVictim)
	}

	c.drop(s, i)
	if c.onEvict != nil {
		c.onEvict(vk, vv)
	}
	return nil
}

// Remove deletes key if present and reports whether it was cached.
func (c *Cache[K, V]) Remove(key K) bool {
	s := int32(c.SetIndex(key))
	i, ok := c.find(s, key)
	if !ok {
		return false
	}
	c.drop(s, i)
	return true
}

// Clear drops every entry. Geometry and policy are kept.
func (c *Cache[K, V]) Clear() {
	c.a.reset(c.sets)
	clear(c.occupied)
}

// Len returns the number of cached entries across all sets.
func (c *Cache[K, V]) Len() int {
	n := 0
	for _, o := range c.occupied {
		n += o
	}
	return n
}

// SetLen returns the number of entries held by set i.
func (c *Cache[K, V]) SetLen(i int) int {
	return c.occupied[i]
}

// Keys returns the keys of set i in MRU -> LRU order.
//
// This is a debug helper used by the demo and tests.
func (c *Cache[K, V]) Keys(i int) []K {
	out := make([]K, 0, c.occupied[i])
	for v := c.view(int32(i)); v.Valid(); v = v.Next() {
		out = append(out, v.Key())
	}
	return out
}

// Head returns a read-only view of set i starting at its most recently touched entry.
func (c *Cache[K, V]) Head(i int) View[K, V] {
	return c.view(int32(i))
}

// Sets returns the number of sets.
func (c *Cache[K, V]) Sets() int { return c.sets }

// Capacity returns the configured total capacity, including any unusable remainder.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// SetSize returns the per-set entry limit, Capacity/Sets.
func (c *Cache[K, V]) SetSize() int { return c.setSize }

// Policy returns the configured eviction policy.
func (c *Cache[K, V]) Policy() Policy[K, V] { return c.policy }

func (c *Cache[K, V]) view(s int32) View[K, V] {
	return View[K, V]{a: c.a, set: s, at: c.a.nodes[s].next}
}

func (c *Cache[K, V]) find(s int32, key K) (int32, bool) {
	for i := c.a.nodes[s].next; i != s; i = c.a.nodes[i].next {
		if c.a.nodes[i].key == key {
			return i, true
		}
	}
	return nilIndex, false
}

func (c *Cache[K, V]) findValue(s int32, value V) (int32, bool) {
	for i := c.a.nodes[s].next; i != s; i = c.a.nodes[i].next {
		if c.a.nodes[i].value == value {
			return i, true
		}
	}
	return nilIndex, false
}

func (c *Cache[K, V]) drop(s, i int32) {
	c.a.unlink(i)
	c.a.release(i)
	c.occupied[s]--
}
