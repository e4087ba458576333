package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"assoccache/internal/cache"
)

func main() {
	capacity := flag.Int("capacity", 4, "total number of entries across all sets")
	sets := flag.Int("sets", 2, "number of sets")
	policyName := flag.String("policy", "lru", "eviction policy: lru or mru")
	flag.Parse()

	policy, err := cache.ParsePolicy[int, string](*policyName)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	c, err := cache.New(cache.Config[int, string]{
		Capacity: *capacity,
		Sets:     *sets,
		Policy:   policy,
		// Identity hashing keeps set placement readable in the demo output.
		Hash: func(k int) int { return k },
		OnEvict: func(k int, v string) {
			log.Printf("evicted %d=%q", k, v)
		},
	})
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	log.Println("assoccache demo starting")
	log.Printf("config: capacity=%d sets=%d setSize=%d policy=%s",
		c.Capacity(), c.Sets(), c.SetSize(), c.Policy())

	// -------------------------------------------------------------------
	// 1) Fill a set, then overflow it
	// -------------------------------------------------------------------
	for _, kv := range []struct {
		k int
		v string
	}{{1, "a"}, {2, "b"}, {3, "c"}, {5, "e"}} {
		if err := c.Put(kv.k, kv.v); err != nil {
			log.Printf("PUT %d: %v", kv.k, err)
			continue
		}
		log.Printf("PUT %d=%q -> set %d", kv.k, kv.v, c.SetIndex(kv.k))
	}
	dumpSets(c)

	// -------------------------------------------------------------------
	// 2) Lookups promote hits and leave misses alone
	// -------------------------------------------------------------------
	for _, k := range []int{1, 3, 5} {
		if v, ok := c.Get(k); ok {
			log.Printf("GET %d = %q (promoted to head of set %d)", k, v, c.SetIndex(k))
		} else {
			log.Printf("GET %d: missing", k)
		}
	}
	dumpSets(c)

	if err := c.Verify(); err != nil {
		log.Printf("verify: %v", err)
		os.Exit(1)
	}
	fmt.Println("Done.")
}

func dumpSets(c *cache.Cache[int, string]) {
	for i := range c.Sets() {
		log.Printf("set %d (%d/%d, MRU->LRU): %v", i, c.SetLen(i), c.SetSize(), c.Keys(i))
	}
}
