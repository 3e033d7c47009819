// ContextManager struct definition
package go_akrypt

import "sync"

// ContextManager is a table of opaque-object nodes addressed by Handle. It owns every
// live node and, through each node's destructor, the wrapped object.
//
// The table is an arena of slots: a handle carries its slot index in the low bits and a
// tag minted by the key generator in the high bits. A slot remembers the tag of its last
// occupant and never reissues it, so a handle that outlives its node cannot resolve to
// the node that later reuses the slot.
//
// Fields:
//   - mu: guards every field below; insert, remove and destroy take it exclusively,
//     lookup shares it
//   - slots: live node per slot, nil when empty
//   - tags: tag of the current or most recent occupant per slot
//   - free: stack of empty slot indices
//   - live: number of live nodes
//   - keyGenerator: internal generator minting handle tags, never exposed
//   - metrics: collector, nopMetrics when none is attached
//   - destroyed: set once by Destroy
//
// Destructors run after mu is released. A destructor must not insert into or remove from
// the manager that owns it.
type ContextManager struct {
	mu           sync.RWMutex
	slots        []*OpaqueNode
	tags         []uint32
	free         []int
	live         int
	keyGenerator Generator
	metrics      MetricsCollector
	destroyed    bool
}
