package go_akrypt

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines the interface for collecting context manager and generator
// metrics. Applications plug in their own implementation (Prometheus, StatsD, logging)
// or use InMemoryMetrics / PrometheusMetrics.
//
// All methods are safe for concurrent use and should be non-blocking. They are called
// with the context manager lock held, so they must never call back into the manager.
type MetricsCollector interface {
	// Handle Tracking

	// IncrementHandleInserted counts a node inserted for the given engine.
	IncrementHandleInserted(engine Engine)

	// IncrementHandleRemoved counts a node removed for the given engine.
	IncrementHandleRemoved(engine Engine)

	// SetLiveHandles updates the gauge of live nodes.
	SetLiveHandles(count int)

	// IncrementHandleCollision counts a minted handle tag that had to be redrawn.
	IncrementHandleCollision()

	// Error Tracking

	// IncrementError increments the error counter by error kind
	// (e.g. "handle_not_found", "null_argument").
	IncrementError(errorType string)

	// Generator Tracking

	// IncrementRefill counts one buffer refill of a generator.
	IncrementRefill(generator string)

	// AddRandomBytes adds to the bytes produced by a generator.
	AddRandomBytes(generator string, bytes uint64)

	// Latency Tracking

	// RecordOperationLatency records how long a manager operation held the table.
	RecordOperationLatency(operation string, duration time.Duration)
}

// InMemoryMetrics provides a simple in-memory implementation of MetricsCollector.
// Suitable for development, testing, and applications that want basic metrics
// without external dependencies.
//
// All operations are thread-safe using atomic operations and minimal locking.
type InMemoryMetrics struct {
	// Handle counters by engine (index = Engine)
	handlesInserted [256]uint64
	handlesRemoved  [256]uint64

	liveHandles      int64
	handleCollisions uint64

	// Error tracking (map protected by mutex)
	errorsMu     sync.RWMutex
	errorsByType map[string]uint64

	// Generator tracking (maps protected by mutex)
	generatorMu      sync.RWMutex
	refillsByName    map[string]uint64
	randomBytesByGen map[string]uint64

	// Latency tracking (protected by mutex for histogram updates)
	latencyMu     sync.RWMutex
	latencyByName map[string]*latencyStats
}

// latencyStats tracks latency statistics for an operation
type latencyStats struct {
	count      uint64
	totalNanos uint64
	minNanos   uint64
	maxNanos   uint64
}

// NewInMemoryMetrics creates a new in-memory metrics collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		errorsByType:     make(map[string]uint64),
		refillsByName:    make(map[string]uint64),
		randomBytesByGen: make(map[string]uint64),
		latencyByName:    make(map[string]*latencyStats),
	}
}

// IncrementHandleInserted increments the inserted counter for the given engine.
func (m *InMemoryMetrics) IncrementHandleInserted(engine Engine) {
	atomic.AddUint64(&m.handlesInserted[engine], 1)
}

// IncrementHandleRemoved increments the removed counter for the given engine.
func (m *InMemoryMetrics) IncrementHandleRemoved(engine Engine) {
	atomic.AddUint64(&m.handlesRemoved[engine], 1)
}

// SetLiveHandles updates the live handle gauge.
func (m *InMemoryMetrics) SetLiveHandles(count int) {
	atomic.StoreInt64(&m.liveHandles, int64(count))
}

// IncrementHandleCollision increments the redrawn tag counter.
func (m *InMemoryMetrics) IncrementHandleCollision() {
	atomic.AddUint64(&m.handleCollisions, 1)
}

// IncrementError increments the error counter for the given error type.
func (m *InMemoryMetrics) IncrementError(errorType string) {
	m.errorsMu.Lock()
	m.errorsByType[errorType]++
	m.errorsMu.Unlock()
}

// IncrementRefill increments the refill counter of a generator.
func (m *InMemoryMetrics) IncrementRefill(generator string) {
	m.generatorMu.Lock()
	m.refillsByName[generator]++
	m.generatorMu.Unlock()
}

// AddRandomBytes adds to the byte counter of a generator.
func (m *InMemoryMetrics) AddRandomBytes(generator string, bytes uint64) {
	m.generatorMu.Lock()
	m.randomBytesByGen[generator] += bytes
	m.generatorMu.Unlock()
}

// RecordOperationLatency records the latency for an operation.
func (m *InMemoryMetrics) RecordOperationLatency(operation string, duration time.Duration) {
	nanos := uint64(duration.Nanoseconds())

	m.latencyMu.Lock()
	defer m.latencyMu.Unlock()

	stats := m.latencyByName[operation]
	if stats == nil {
		stats = &latencyStats{
			minNanos: nanos,
			maxNanos: nanos,
		}
		m.latencyByName[operation] = stats
	}

	stats.count++
	stats.totalNanos += nanos

	if nanos < stats.minNanos {
		stats.minNanos = nanos
	}
	if nanos > stats.maxNanos {
		stats.maxNanos = nanos
	}
}

// Getter methods for programmatic access to metrics

// HandlesInserted returns the total count of inserted nodes by engine.
func (m *InMemoryMetrics) HandlesInserted(engine Engine) uint64 {
	return atomic.LoadUint64(&m.handlesInserted[engine])
}

// HandlesRemoved returns the total count of removed nodes by engine.
func (m *InMemoryMetrics) HandlesRemoved(engine Engine) uint64 {
	return atomic.LoadUint64(&m.handlesRemoved[engine])
}

// LiveHandles returns the current count of live nodes.
func (m *InMemoryMetrics) LiveHandles() int {
	return int(atomic.LoadInt64(&m.liveHandles))
}

// HandleCollisions returns how many minted tags were redrawn.
func (m *InMemoryMetrics) HandleCollisions() uint64 {
	return atomic.LoadUint64(&m.handleCollisions)
}

// Errors returns the total count of errors by type.
func (m *InMemoryMetrics) Errors(errorType string) uint64 {
	m.errorsMu.RLock()
	defer m.errorsMu.RUnlock()
	return m.errorsByType[errorType]
}

// AllErrors returns a copy of all error counts by type.
func (m *InMemoryMetrics) AllErrors() map[string]uint64 {
	m.errorsMu.RLock()
	defer m.errorsMu.RUnlock()

	result := make(map[string]uint64, len(m.errorsByType))
	for k, v := range m.errorsByType {
		result[k] = v
	}
	return result
}

// Refills returns the refill count of a generator.
func (m *InMemoryMetrics) Refills(generator string) uint64 {
	m.generatorMu.RLock()
	defer m.generatorMu.RUnlock()
	return m.refillsByName[generator]
}

// RandomBytes returns the byte count produced by a generator.
func (m *InMemoryMetrics) RandomBytes(generator string) uint64 {
	m.generatorMu.RLock()
	defer m.generatorMu.RUnlock()
	return m.randomBytesByGen[generator]
}

// AvgLatency returns the average latency for an operation.
// Returns 0 if no measurements have been recorded.
func (m *InMemoryMetrics) AvgLatency(operation string) time.Duration {
	m.latencyMu.RLock()
	defer m.latencyMu.RUnlock()

	stats := m.latencyByName[operation]
	if stats == nil || stats.count == 0 {
		return 0
	}

	return time.Duration(stats.totalNanos / stats.count)
}

// MaxLatency returns the maximum latency for an operation.
// Returns 0 if no measurements have been recorded.
func (m *InMemoryMetrics) MaxLatency(operation string) time.Duration {
	m.latencyMu.RLock()
	defer m.latencyMu.RUnlock()

	stats := m.latencyByName[operation]
	if stats == nil {
		return 0
	}

	return time.Duration(stats.maxNanos)
}

// Reset clears all metrics. Useful for testing.
func (m *InMemoryMetrics) Reset() {
	for i := range m.handlesInserted {
		atomic.StoreUint64(&m.handlesInserted[i], 0)
		atomic.StoreUint64(&m.handlesRemoved[i], 0)
	}
	atomic.StoreInt64(&m.liveHandles, 0)
	atomic.StoreUint64(&m.handleCollisions, 0)

	m.errorsMu.Lock()
	m.errorsByType = make(map[string]uint64)
	m.errorsMu.Unlock()

	m.generatorMu.Lock()
	m.refillsByName = make(map[string]uint64)
	m.randomBytesByGen = make(map[string]uint64)
	m.generatorMu.Unlock()

	m.latencyMu.Lock()
	m.latencyByName = make(map[string]*latencyStats)
	m.latencyMu.Unlock()
}

// nopMetrics is used when no collector is attached.
type nopMetrics struct{}

func (nopMetrics) IncrementHandleInserted(Engine) {}
func (nopMetrics) IncrementHandleRemoved(Engine) {}
func (nopMetrics) SetLiveHandles(int) {}
func (nopMetrics) IncrementHandleCollision() {}
func (nopMetrics) IncrementError(string) {}
func (nopMetrics) IncrementRefill(string) {}
func (nopMetrics) AddRandomBytes(string, uint64) {}
func (nopMetrics) RecordOperationLatency(string, time.Duration) {}

func metricsOrNop(m MetricsCollector) MetricsCollector {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
