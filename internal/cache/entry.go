package cache

// nilIndex marks a link that points nowhere. A node with both links set to
// nilIndex is detached and may be linked again.
const nilIndex int32 = -1

// entry is one arena slot. The first len(sets) slots are sentinels: they are
// never occupied and terminate their set's circular list.
type entry[K, V comparable] struct {
	key   K
	value V
	prev  int32
	next  int32
	live  bool
}

func (e *entry[K, V]) detached() bool {
	return e.prev == nilIndex && e.next == nilIndex
}

// arena owns every entry of the cache. Links are indices into nodes so a
// stale link is always visible as a concrete number rather than a dangling pointer.
type arena[K, V comparable] struct {
	nodes []entry[K, V]
	free  []int32
}

// newArena holds only the sentinels; entries are appended as they are
// allocated.
func newArena[K, V comparable](sets int) *arena[K, V] {
	a := &arena[K, V]{
		nodes: make([]entry[K, V], sets),
	}
	for i := range sets {
		a.nodes[i].prev = int32(i)
		a.nodes[i].next = int32(i)
	}
	return a
}

// alloc returns a detached, occupied node holding key and value.
func (a *arena[K, V]) alloc(key K, value V) int32 {
	var i int32
	if n := len(a.free); n > 0 {
		i = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.nodes = append(a.nodes, entry[K, V]{})
		i = int32(len(a.nodes) - 1)
	}
	a.nodes[i] = entry[K, V]{key: key, value: value, prev: nilIndex, next: nilIndex, live: true}
	return i
}

// release zeroes a detached node and puts it on the free list.
func (a *arena[K, V]) release(i int32) {
	if !a.nodes[i].detached() {
		panic("cache: release of linked entry")
	}
	a.nodes[i] = entry[K, V]{prev: nilIndex, next: nilIndex}
	a.free = append(a.free, i)
}

// unlink joins i's neighbours and invalidates i's own links.
func (a *arena[K, V]) unlink(i int32) {
	e := &a.nodes[i]
	a.nodes[e.prev].next = e.next
	a.nodes[e.next].prev = e.prev
	e.prev, e.next = nilIndex, nilIndex
}

// pushFront links detached node i right after the sentinel s.
func (a *arena[K, V]) pushFront(s, i int32) {
	e := &a.nodes[i]
	if !e.detached() {
		panic("cache: entry linked twice")
	}
	head := a.nodes[s].next
	e.prev = s
	e.next = head
	a.nodes[head].prev = i
	a.nodes[s].next = i
}

// promote moves i to the head of the list anchored at s.
func (a *arena[K, V]) promote(s, i int32) {
	if a.nodes[s].next == i {
		return
	}
	a.unlink(i)
	a.pushFront(s, i)
}

// reset detaches every node and restores empty sentinel lists.
func (a *arena[K, V]) reset(sets int) {
	clear(a.nodes)
	a.nodes = a.nodes[:sets]
	a.free = a.free[:0]
	for i := range sets {
		a.nodes[i].prev = int32(i)
		a.nodes[i].next = int32(i)
	}
}
