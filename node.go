package go_akrypt

import (
	"bytes"
	"fmt"
	"reflect"
)

// NODE_DESCRIPTION_MAX bounds the description buffer of a node.
const NODE_DESCRIPTION_MAX = 1024

// NewOpaqueNode wraps object into a new node. The description is copied into a buffer
// owned by the node and, like a C string, ends at the first NUL byte.
//
// Returns ErrNullArgument when object or destructor is absent, and ErrWrongLength when
// the description does not fit its buffer. On failure the partially built node is torn
// down through Destroy and the caller keeps ownership of object.
func NewOpaqueNode(object interface{}, handle Handle, engine Engine, description string, destructor DestructorFunc) (*OpaqueNode, error) {
	if isNilObject(object) {
		return nil, fmt.Errorf("%w: using a nil object", ErrNullArgument)
	}
	if destructor == nil {
		return nil, fmt.Errorf("%w: using a nil destructor", ErrNullArgument)
	}

	node := &OpaqueNode{handle: WrongHandle}
	if err := node.setDescriptionLocked(description); err != nil {
		node.Destroy()
		return nil, err
	}

	node.object = object
	node.handle = handle
	node.engine = engine
	node.destructor = destructor
	node.status = NODE_UNMODIFIED
	return node, nil
}

// Destroy releases the description, calls the destructor on the object and resets every
// field to its undefined value. Destroying an absent or already destroyed node is a no-op
// reported as ErrNullArgument.
func (n *OpaqueNode) Destroy() error {
	if n == nil {
		return fmt.Errorf("%w: destroying a nil node", ErrNullArgument)
	}

	n.mu.Lock()
	if n.destroyed {
		n.mu.Unlock()
		return fmt.Errorf("%w: node already destroyed", ErrNullArgument)
	}
	object, destructor := n.object, n.destructor
	secureZero(n.description)
	n.description = nil
	n.object = nil
	n.destructor = nil
	n.handle = WrongHandle
	n.status = NODE_UNDEFINED
	n.engine = ENGINE_UNDEFINED
	n.destroyed = true
	n.mu.Unlock()

	if object != nil && destructor != nil {
		destructor(object)
	}
	return nil
}

// Object returns the wrapped object, or nil once the node is destroyed.
func (n *OpaqueNode) Object() interface{} {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.object
}

// Handle returns the node's handle, or WrongHandle once the node is destroyed.
func (n *OpaqueNode) Handle() Handle {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.handle
}

// Engine returns the engine tag of the wrapped object.
func (n *OpaqueNode) Engine() Engine {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine
}

// Description returns a copy of the node description.
func (n *OpaqueNode) Description() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return string(n.description)
}

// SetDescription replaces the node description.
func (n *OpaqueNode) SetDescription(description string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.destroyed {
		return fmt.Errorf("%w: node destroyed", ErrUnexpectedState)
	}
	return n.setDescriptionLocked(description)
}

func (n *OpaqueNode) setDescriptionLocked(description string) error {
	text := []byte(description)
	if i := bytes.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	if len(text) > NODE_DESCRIPTION_MAX {
		return fmt.Errorf("%w: description of %d bytes exceeds %d", ErrWrongLength, len(text), NODE_DESCRIPTION_MAX)
	}
	buffer := make([]byte, len(text))
	copy(buffer, text)
	secureZero(n.description)
	n.description = buffer
	return nil
}

// Status returns the modification status set by the owning subsystem.
func (n *OpaqueNode) Status() NodeStatus {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.status
}

// SetStatus records the modification status. Only NODE_UNMODIFIED and NODE_MODIFIED are
// accepted; NODE_UNDEFINED is reserved for destroyed nodes.
func (n *OpaqueNode) SetStatus(status NodeStatus) error {
	if status != NODE_UNMODIFIED && status != NODE_MODIFIED {
		return fmt.Errorf("%w: status %s cannot be set on a live node", ErrUnexpectedState, status)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.destroyed {
		return fmt.Errorf("%w: node destroyed", ErrUnexpectedState)
	}
	n.status = status
	return nil
}

// MarkModified is shorthand for SetStatus(NODE_MODIFIED).
func (n *OpaqueNode) MarkModified() error {
	return n.SetStatus(NODE_MODIFIED)
}

// IsLive reports whether the node still owns its object.
func (n *OpaqueNode) IsLive() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return !n.destroyed && n.object != nil
}

// Info returns a snapshot of the node metadata.
func (n *OpaqueNode) Info() NodeInfo {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return NodeInfo{
		Handle:      n.handle,
		Engine:      n.engine,
		Description: string(n.description),
		Status:      n.status,
	}
}

// isNilObject also catches typed nil pointers stored in an interface.
func isNilObject(object interface{}) bool {
	if object == nil {
		return true
	}
	v := reflect.ValueOf(object)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// freeObject is the destructor for objects exposing Free() error. A failing Free is
// logged; by the time it runs the handle entry is already gone.
func freeObject(object interface{}) {
	freer, ok := object.(interface{ Free() error })
	if !ok {
		return
	}
	if err := freer.Free(); err != nil {
		Warning("Destructor for %T reported: %v", object, err)
	}
}
