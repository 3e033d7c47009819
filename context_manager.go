package go_akrypt

import (
	"fmt"
	"time"
)

// NewContextManager creates a manager with the default configuration.
func NewContextManager() (*ContextManager, error) {
	return NewContextManagerWithConfig(DefaultConfig())
}

// NewContextManagerWithConfig creates an empty manager with cfg.ContextManagerSize slots
// and a key generator of kind cfg.KeyGenerator seeded from OS entropy.
func NewContextManagerWithConfig(cfg Config) (*ContextManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid context manager config: %w", err)
	}
	keyGenerator, err := cfg.newKeyGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create key generator: %w", err)
	}

	cm := &ContextManager{
		keyGenerator: keyGenerator,
		metrics:      nopMetrics{},
	}
	cm.grow(cfg.ContextManagerSize)
	Debug("Created context manager with %d slots, key generator %s", len(cm.slots), keyGenerator.Name())
	return cm, nil
}

// SetMetrics attaches a metrics collector; nil detaches it.
func (cm *ContextManager) SetMetrics(metrics MetricsCollector) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.metrics = metricsOrNop(metrics)
	cm.metrics.SetLiveHandles(cm.live)
}

// Insert wraps object in a node and stores it under a freshly minted handle. The table
// doubles when full. On failure the table is unchanged and the caller still owns object:
// its destructor is not called.
func (cm *ContextManager) Insert(object interface{}, engine Engine, description string, destructor DestructorFunc) (Handle, error) {
	if cm == nil {
		return WrongHandle, ErrManagerNotInitialized
	}
	start := time.Now()

	cm.mu.Lock()
	defer cm.mu.Unlock()
	defer func() { cm.metrics.RecordOperationLatency("insert", time.Since(start)) }()

	if cm.destroyed {
		return WrongHandle, cm.fail(WrongHandle, "insert", ErrManagerNotInitialized)
	}
	if isNilObject(object) || destructor == nil {
		return WrongHandle, cm.fail(WrongHandle, "insert", fmt.Errorf("%w: object and destructor are required", ErrNullArgument))
	}

	if len(cm.free) == 0 {
		if len(cm.slots) >= HANDLE_MAX_SLOTS {
			return WrongHandle, cm.fail(WrongHandle, "insert",
				fmt.Errorf("%w: context manager full at %d slots", ErrOutOfMemory, len(cm.slots)))
		}
		cm.grow(len(cm.slots))
	}
	slot := cm.free[len(cm.free)-1]

	tag, err := cm.mintTag(slot)
	if err != nil {
		return WrongHandle, cm.fail(WrongHandle, "insert", err)
	}
	handle := makeHandle(tag, slot)

	node, err := NewOpaqueNode(object, handle, engine, description, destructor)
	if err != nil {
		return WrongHandle, cm.fail(WrongHandle, "insert", err)
	}

	cm.free = cm.free[:len(cm.free)-1]
	cm.slots[slot] = node
	cm.tags[slot] = tag
	cm.live++
	cm.metrics.IncrementHandleInserted(engine)
	cm.metrics.SetLiveHandles(cm.live)
	Debug("Inserted %s node %s", engine, handle)
	return handle, nil
}

// Lookup returns the live node behind handle. It fails with ErrWrongHandle for the
// sentinel and ErrHandleNotFound for anything else that does not name a live node,
// including every handle once the manager is destroyed.
func (cm *ContextManager) Lookup(handle Handle) (*OpaqueNode, error) {
	if cm == nil {
		return nil, ErrManagerNotInitialized
	}
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	node, err := cm.find(handle)
	if err != nil {
		return nil, cm.fail(handle, "lookup", err)
	}
	return node, nil
}

// Remove detaches the node behind handle and destroys it. The destructor runs after the
// table lock is released.
func (cm *ContextManager) Remove(handle Handle) error {
	if cm == nil {
		return ErrManagerNotInitialized
	}
	start := time.Now()

	cm.mu.Lock()
	node, err := cm.find(handle)
	if err != nil {
		err = cm.fail(handle, "remove", err)
		cm.mu.Unlock()
		return err
	}
	slot := handle.slot()
	engine := node.Engine()
	cm.slots[slot] = nil
	cm.free = append(cm.free, slot)
	cm.live--
	cm.metrics.IncrementHandleRemoved(engine)
	cm.metrics.SetLiveHandles(cm.live)
	cm.metrics.RecordOperationLatency("remove", time.Since(start))
	cm.mu.Unlock()

	Debug("Removing %s node %s", engine, handle)
	return node.Destroy()
}

// Destroy releases every live node and the key generator. A second call, or a call on a
// nil manager, fails with ErrManagerNotInitialized.
func (cm *ContextManager) Destroy() error {
	if cm == nil {
		return ErrManagerNotInitialized
	}

	cm.mu.Lock()
	if cm.destroyed {
		cm.mu.Unlock()
		return fmt.Errorf("%w: context manager destroyed twice", ErrManagerNotInitialized)
	}
	nodes := make([]*OpaqueNode, 0, cm.live)
	for slot, node := range cm.slots {
		if node == nil {
			continue
		}
		nodes = append(nodes, node)
		cm.metrics.IncrementHandleRemoved(node.Engine())
		cm.slots[slot] = nil
	}
	keyGenerator := cm.keyGenerator
	cm.slots, cm.tags, cm.free = nil, nil, nil
	cm.keyGenerator = nil
	cm.live = 0
	cm.destroyed = true
	cm.metrics.SetLiveHandles(0)
	cm.mu.Unlock()

	Debug("Destroying context manager with %d live nodes", len(nodes))
	for _, node := range nodes {
		node.Destroy()
	}
	if err := keyGenerator.Free(); err != nil {
		Warning("Key generator release failed: %v", err)
	}
	return nil
}

// Len returns the number of live nodes.
func (cm *ContextManager) Len() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.live
}

// Capacity returns the number of allocated slots. It never shrinks while the manager is
// alive.
func (cm *ContextManager) Capacity() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.slots)
}

// Handles returns the handles of all live nodes in slot order.
func (cm *ContextManager) Handles() []Handle {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	handles := make([]Handle, 0, cm.live)
	for slot, node := range cm.slots {
		if node != nil {
			handles = append(handles, makeHandle(cm.tags[slot], slot))
		}
	}
	return handles
}

// LookupObject resolves handle and returns its object as T. A live handle holding some
// other type fails with ErrEngineMismatch.
func LookupObject[T any](cm *ContextManager, handle Handle) (T, error) {
	node, err := cm.Lookup(handle)
	if err != nil {
		var zero T
		return zero, err
	}
	return nodeObject[T](node, handle)
}

func nodeObject[T any](node *OpaqueNode, handle Handle) (T, error) {
	var zero T
	object, ok := node.Object().(T)
	if !ok {
		return zero, NewHandleError(handle, "lookup",
			fmt.Errorf("%w: handle holds %s %T, want %T", ErrEngineMismatch, node.Engine(), node.Object(), zero))
	}
	return object, nil
}

// find resolves handle. Callers hold mu.
func (cm *ContextManager) find(handle Handle) (*OpaqueNode, error) {
	if handle == WrongHandle {
		return nil, ErrWrongHandle
	}
	if cm.destroyed || handle < 0 {
		return nil, ErrHandleNotFound
	}
	slot := handle.slot()
	if slot >= len(cm.slots) || cm.slots[slot] == nil || cm.tags[slot] != handle.tag() {
		return nil, ErrHandleNotFound
	}
	return cm.slots[slot], nil
}

// grow appends n empty slots. Callers hold mu, or own cm exclusively.
func (cm *ContextManager) grow(n int) {
	if n < 1 {
		n = 1
	}
	if len(cm.slots)+n > HANDLE_MAX_SLOTS {
		n = HANDLE_MAX_SLOTS - len(cm.slots)
	}
	first := len(cm.slots)
	cm.slots = append(cm.slots, make([]*OpaqueNode, n)...)
	cm.tags = append(cm.tags, make([]uint32, n)...)
	// Pushed highest first so the lowest index is reused first.
	for slot := first + n - 1; slot >= first; slot-- {
		cm.free = append(cm.free, slot)
	}
	if first > 0 {
		Debug("Context manager grew from %d to %d slots", first, len(cm.slots))
	}
}

// mintTag draws a tag for slot from the key generator. Zero and the slot's previous tag
// are redrawn. Callers hold mu.
func (cm *ContextManager) mintTag(slot int) (uint32, error) {
	for attempt := 0; attempt < HANDLE_MINT_ATTEMPTS; attempt++ {
		word, err := GeneratorUint64(cm.keyGenerator)
		if err != nil {
			return 0, fmt.Errorf("failed to mint handle: %w", err)
		}
		tag := uint32(word>>17) & HANDLE_TAG_MASK
		if tag != 0 && tag != cm.tags[slot] {
			return tag, nil
		}
		cm.metrics.IncrementHandleCollision()
	}
	return 0, fmt.Errorf("%w: no fresh handle tag after %d attempts", ErrUnexpectedState, HANDLE_MINT_ATTEMPTS)
}

// fail wraps err with the handle and operation, counts it and logs it once.
func (cm *ContextManager) fail(handle Handle, operation string, err error) error {
	cm.metrics.IncrementError(errorKind(err))
	Debug("Context manager %s of %s failed: %v", operation, handle, err)
	return NewHandleError(handle, operation, err)
}
