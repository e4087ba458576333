package cache

import (
	"fmt"
	"strings"
)

// View is a read-only cursor over one set's recency list, starting at the
// head (most recently touched) and ending at the set's sentinel.
type View[K, V comparable] struct {
	a   *arena[K, V]
	set int32
	at  int32
}

// Valid reports whether the view points at an occupied entry.
// A view that has reached the sentinel is not valid.
func (v View[K, V]) Valid() bool {
	return v.a != nil && v.at != v.set
}

// Key returns the entry's key, or the zero key at the sentinel.
func (v View[K, V]) Key() K {
	if !v.Valid() {
		var zero K
		return zero
	}
	return v.a.nodes[v.at].key
}

// Value returns the entry's value, or the zero value at the sentinel.
func (v View[K, V]) Value() V {
	if !v.Valid() {
		var zero V
		return zero
	}
	return v.a.nodes[v.at].value
}

// Next steps one entry towards the tail. Next on the sentinel stays there.
func (v View[K, V]) Next() View[K, V] {
	if !v.Valid() {
		return v
	}
	v.at = v.a.nodes[v.at].next
	return v
}

// EvictFunc picks the entry to evict given the head of a full set. The
// returned pair must match a cached entry on both key and value.
type EvictFunc[K, V comparable] func(head View[K, V]) (K, V)

type policyKind uint8

const (
	policyLRU policyKind = iota
	policyMRU
	policyCustom
)

// Policy selects which entry leaves a full set. The zero value is LRU.
type Policy[K, V comparable] struct {
	kind policyKind
	fn   EvictFunc[K, V]
}

// LRU evicts the least recently touched entry of the set.
func LRU[K, V comparable]() Policy[K, V] { return Policy[K, V]{kind: policyLRU} }

// MRU evicts the most recently touched entry of the set.
func MRU[K, V comparable]() Policy[K, V] { return Policy[K, V]{kind: policyMRU} }

// Custom wraps a caller-supplied eviction function. The cache treats it
// opaquely: whatever pair it returns goes through the normal replacement path.
func Custom[K, V comparable](fn EvictFunc[K, V]) Policy[K, V] {
	return Policy[K, V]{kind: policyCustom, fn: fn}
}

// ParsePolicy maps a policy name to a built-in policy.
// Names are case-insensitive; an empty name selects LRU.
func ParsePolicy[K, V comparable](name string) (Policy[K, V], error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lru":
		return LRU[K, V](), nil
	case "mru":
		return MRU[K, V](), nil
	default:
		return Policy[K, V]{}, fmt.Errorf("policy %q: %w", name, ErrUnknownPolicy)
	}
}

func (p Policy[K, V]) String() string {
	switch p.kind {
	case policyMRU:
		return "mru"
	case policyCustom:
		return "custom"
	default:
		return "lru"
	}
}

// Victim applies the policy to a set head.
func (p Policy[K, V]) Victim(head View[K, V]) (K, V) {
	switch p.kind {
	case policyMRU:
		return mruVictim(head)
	case policyCustom:
		return p.fn(head)
	default:
		return lruVictim(head)
	}
}

// lruVictim walks to the entry just before the sentinel.
func lruVictim[K, V comparable](head View[K, V]) (K, V) {
	v := head
	for next := v.Next(); next.Valid(); next = next.Next() {
		v = next
	}
	return v.Key(), v.Value()
}

func mruVictim[K, V comparable](head View[K, V]) (K, V) {
	return head.Key(), head.Value()
}
