package cache

import (
	"errors"
	"fmt"
)

// ErrCorrupt is wrapped by every error Verify returns.
var ErrCorrupt = errors.New("cache structure corrupt")

// Verify walks every set and checks the structural invariants: each list is a
// well-formed circular list through its sentinel, occupancy counters match the
// lists and stay within the set size, every entry lives in the set its key
// hashes to, and no key appears twice in a set.
//
// It is O(Capacity) and meant for tests and debugging.
func (c *Cache[K, V]) Verify() error {
	a := c.a
	linked := 0
	for s := range int32(c.sets) {
		if a.nodes[s].live {
			return fmt.Errorf("set %d: sentinel occupied: %w", s, ErrCorrupt)
		}
		seen := make(map[K]struct{}, c.occupied[s])
		n := 0
		prev := s
		for i := a.nodes[s].next; i != s; i = a.nodes[i].next {
			if i < 0 || int(i) >= len(a.nodes) {
				return fmt.Errorf("set %d: link %d out of range: %w", s, i, ErrCorrupt)
			}
			e := &a.nodes[i]
			if int(i) < c.sets || !e.live {
				return fmt.Errorf("set %d: node %d is not an occupied entry: %w", s, i, ErrCorrupt)
			}
			if e.prev != prev {
				return fmt.Errorf("set %d: node %d prev=%d, want %d: %w", s, i, e.prev, prev, ErrCorrupt)
			}
			if got := int32(c.SetIndex(e.key)); got != s {
				return fmt.Errorf("set %d: key %v belongs to set %d: %w", s, e.key, got, ErrCorrupt)
			}
			if _, dup := seen[e.key]; dup {
				return fmt.Errorf("set %d: key %v linked twice: %w", s, e.key, ErrCorrupt)
			}
			seen[e.key] = struct{}{}
			n++
			if n > c.setSize {
				return fmt.Errorf("set %d: more than %d entries: %w", s, c.setSize, ErrCorrupt)
			}
			prev = i
		}
		if a.nodes[s].prev != prev {
			return fmt.Errorf("set %d: tail=%d, want %d: %w", s, a.nodes[s].prev, prev, ErrCorrupt)
		}
		if n != c.occupied[s] {
			return fmt.Errorf("set %d: counter %d, walked %d: %w", s, c.occupied[s], n, ErrCorrupt)
		}
		linked += n
	}

	if got := c.sets + linked + len(a.free); got != len(a.nodes) {
		return fmt.Errorf("arena has %d nodes, accounted %d: %w", len(a.nodes), got, ErrCorrupt)
	}
	for _, i := range a.free {
		if a.nodes[i].live || !a.nodes[i].detached() {
			return fmt.Errorf("free node %d still in use: %w", i, ErrCorrupt)
		}
	}
	return nil
}
