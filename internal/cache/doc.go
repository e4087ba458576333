// Package cache implements a fixed-capacity, set-associative key-value cache.
//
// Goals for this package:
//   - Place every key in exactly one of a fixed number of sets by hashing it
//   - Keep each set as a recency-ordered list (head = MRU, tail = LRU)
//     terminated by a sentinel, with links stored as arena indices
//   - Let a pluggable policy (LRU, MRU or custom) choose the victim when a set is full
//   - Reject bad geometry at construction instead of degrading later
//
// The cache is a plain in-memory data structure: it does no I/O, starts no
// goroutines and is not safe for concurrent use.
package cache
