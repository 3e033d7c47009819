// OpaqueNode struct definition
package go_akrypt

import (
	"fmt"
	"sync"
)

// Handle is the externally visible identifier of a live context manager node.
// WrongHandle is never assigned to a live node.
type Handle int64

func (h Handle) String() string {
	if h == WrongHandle {
		return "wrong-handle"
	}
	return fmt.Sprintf("%#x", int64(h))
}

// slot returns the table index encoded in the handle.
func (h Handle) slot() int {
	return int(int64(h) & HANDLE_SLOT_MASK)
}

// tag returns the key-generator tag encoded in the handle.
func (h Handle) tag() uint32 {
	return uint32((int64(h) >> HANDLE_SLOT_BITS) & HANDLE_TAG_MASK)
}

func makeHandle(tag uint32, slot int) Handle {
	return Handle(int64(tag&HANDLE_TAG_MASK)<<HANDLE_SLOT_BITS | int64(slot&HANDLE_SLOT_MASK))
}

// DestructorFunc releases an object wrapped by an OpaqueNode. It is called exactly once,
// outside any context manager lock, and must not insert into or remove from the manager.
type DestructorFunc func(object interface{})

// OpaqueNode owns one type-erased library object together with its destructor and
// metadata. The node's own mutex guards its fields; the contents of the wrapped object
// are the caller's responsibility once the handle is resolved.
//
// Fields:
//   - object: the wrapped object, nil once destroyed
//   - handle: WrongHandle once destroyed
//   - engine: ENGINE_UNDEFINED once destroyed
//   - description: owned copy of the creation text
//   - status: NODE_UNMODIFIED at creation, NODE_UNDEFINED once destroyed
type OpaqueNode struct {
	mu          sync.RWMutex
	object      interface{}
	handle      Handle
	engine      Engine
	description []byte
	status      NodeStatus
	destructor  DestructorFunc
	destroyed   bool
}

// NodeInfo is a snapshot of a node's metadata, safe to keep after the node is destroyed.
type NodeInfo struct {
	Handle      Handle
	Engine      Engine
	Description string
	Status      NodeStatus
}
