// Package go_akrypt is the resource-management and pseudorandom-generation core of a
// cryptographic primitives library.
//
// Library objects (ciphers, hash and MAC contexts, generators, keys) are created through
// the New*Handle functions, which wrap them in a node of the global context manager and
// hand back an opaque Handle. All later calls name the object by that handle; the manager
// destroys it on DeleteHandle or Destroy.
//
// Usage Example:
//
//	if err := go_akrypt.Create(go_akrypt.LoadConfigFromEnv()); err != nil {
//	    log.Fatal(err)
//	}
//	defer go_akrypt.Destroy()
//
//	rng, _ := go_akrypt.NewHashRandomHandle("sha512", "session rng")
//	buf := make([]byte, 32)
//	go_akrypt.RandomPtr(rng, buf)
//
// A handle can be used from any goroutine, but the object behind it is not locked by the
// manager: callers sharing one generator, hash or MAC handle across goroutines serialise
// their calls themselves.
package go_akrypt

import (
	"fmt"
	"sync"
)

var (
	metricsMu     sync.Mutex
	globalMetrics MetricsCollector = nopMetrics{}

	prometheusMetricsOnce sync.Once
	prometheusMetrics     *PrometheusMetrics
	prometheusMetricsErr  error
)

// Create initialises the library: log level, metrics backend and the global context
// manager, all from cfg. Nothing is initialised implicitly.
func Create(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid library config: %w", err)
	}
	level, _ := cfg.logLevel()
	LogInit(level)
	libraryLogger.setLogLevel(level)

	metrics, err := newConfiguredMetrics(cfg.Metrics)
	if err != nil {
		return err
	}
	if err := CreateGlobalContextManager(cfg); err != nil {
		return err
	}
	cm, _ := GlobalContextManager()
	cm.SetMetrics(metrics)

	metricsMu.Lock()
	globalMetrics = metrics
	metricsMu.Unlock()

	Debug("akrypt %s initialised, metrics %s", AKRYPT_VERSION, cfg.Metrics)
	return nil
}

// Destroy releases every handle and tears down the global context manager.
func Destroy() error {
	err := DestroyGlobalContextManager()
	metricsMu.Lock()
	globalMetrics = nopMetrics{}
	metricsMu.Unlock()
	return err
}

// Metrics returns the collector selected by Create, or a no-op collector.
func Metrics() MetricsCollector {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	return globalMetrics
}

func newConfiguredMetrics(kind string) (MetricsCollector, error) {
	switch kind {
	case "memory":
		return NewInMemoryMetrics(), nil
	case "prometheus":
		// Collectors register once per process; later Create calls reuse them.
		prometheusMetricsOnce.Do(func() {
			prometheusMetrics, prometheusMetricsErr = NewPrometheusMetrics(nil)
		})
		if prometheusMetricsErr != nil {
			return nil, fmt.Errorf("failed to register Prometheus metrics: %w", prometheusMetricsErr)
		}
		return prometheusMetrics, nil
	default:
		return nopMetrics{}, nil
	}
}

// insertObject stores object in the global manager. If the insert fails the object is
// released here, since the manager never took ownership.
func insertObject(object interface{ Free() error }, engine Engine, description string) (Handle, error) {
	cm, err := GlobalContextManager()
	if err != nil {
		object.Free()
		return WrongHandle, err
	}
	handle, err := cm.Insert(object, engine, description, freeObject)
	if err != nil {
		object.Free()
		return WrongHandle, err
	}
	return handle, nil
}

// lookupGlobal resolves handle in the global manager and returns its object as T along
// with the node.
func lookupGlobal[T any](handle Handle) (T, *OpaqueNode, error) {
	var zero T
	cm, err := GlobalContextManager()
	if err != nil {
		return zero, nil, err
	}
	node, err := cm.Lookup(handle)
	if err != nil {
		return zero, nil, err
	}
	object, err := nodeObject[T](node, handle)
	if err != nil {
		return zero, nil, err
	}
	return object, node, nil
}

// generatorFor returns the generator behind handle, or nil (OS entropy) for WrongHandle.
func generatorFor(handle Handle) (Generator, error) {
	if handle == WrongHandle {
		return nil, nil
	}
	g, _, err := lookupGlobal[Generator](handle)
	return g, err
}

// NewHashHandle creates a hash context for the named hash function.
func NewHashHandle(hashName, description string) (Handle, error) {
	fn, err := LookupHashFunction(hashName)
	if err != nil {
		return WrongHandle, err
	}
	ctx, err := NewHashContext(fn)
	if err != nil {
		return WrongHandle, err
	}
	return insertObject(ctx, ENGINE_HASH_FUNCTION, description)
}

// NewHashRandomHandle creates a hash-derived generator seeded from OS entropy. An empty
// hashName selects the configured default.
func NewHashRandomHandle(hashName, description string) (Handle, error) {
	if hashName == "" {
		hashName = globalSettings().HashRandomDefault
	}
	fn, err := LookupHashFunction(hashName)
	if err != nil {
		return WrongHandle, err
	}
	g, err := NewHashRandom(fn)
	if err != nil {
		return WrongHandle, err
	}
	g.SetMetrics(Metrics())
	return insertObject(g, ENGINE_RANDOM_GENERATOR, description)
}

// NewRandomHandle creates a generator by kind, as accepted by NewGenerator.
func NewRandomHandle(kind, description string) (Handle, error) {
	if kind == GENERATOR_FILE {
		kind = GENERATOR_FILE + ":" + globalSettings().RandomFile
	}
	g, err := NewGenerator(kind)
	if err != nil {
		return WrongHandle, err
	}
	if hr, ok := g.(*HashRandom); ok {
		hr.SetMetrics(Metrics())
	}
	return insertObject(g, ENGINE_RANDOM_GENERATOR, description)
}

// NewMACHandle creates a MAC over the named hash function keyed with key.
func NewMACHandle(hashName string, key []byte, description string) (Handle, error) {
	fn, err := LookupHashFunction(hashName)
	if err != nil {
		return WrongHandle, err
	}
	mac, err := NewMACContext(fn, key)
	if err != nil {
		return WrongHandle, err
	}
	return insertObject(mac, ENGINE_MAC_FUNCTION, description)
}

// NewCipherHandle creates a ChaCha20-Poly1305 cipher whose key is drawn from the generator
// behind random, or from OS entropy when random is WrongHandle.
func NewCipherHandle(random Handle, description string) (Handle, error) {
	g, err := generatorFor(random)
	if err != nil {
		return WrongHandle, err
	}
	c, err := NewChaCha20Poly1305Cipher(g)
	if err != nil {
		return WrongHandle, err
	}
	markModified(random)
	return insertObject(c, ENGINE_BLOCK_CIPHER, description)
}

// NewSigningKeyHandle creates an Ed25519 signing key seeded from the generator behind
// random, or from OS entropy when random is WrongHandle.
func NewSigningKeyHandle(random Handle, description string) (Handle, error) {
	g, err := generatorFor(random)
	if err != nil {
		return WrongHandle, err
	}
	k, err := NewSigningKey(g)
	if err != nil {
		return WrongHandle, err
	}
	markModified(random)
	return insertObject(k, ENGINE_KEY, description)
}

// NewAgreementKeyHandle creates an X25519 key drawn from the generator behind random, or
// from OS entropy when random is WrongHandle.
func NewAgreementKeyHandle(random Handle, description string) (Handle, error) {
	g, err := generatorFor(random)
	if err != nil {
		return WrongHandle, err
	}
	k, err := NewAgreementKey(g)
	if err != nil {
		return WrongHandle, err
	}
	markModified(random)
	return insertObject(k, ENGINE_KEY, description)
}

// HashPtr feeds data to the hash context behind handle and returns the digest.
func HashPtr(handle Handle, data []byte) ([]byte, error) {
	ctx, _, err := lookupGlobal[*HashContext](handle)
	if err != nil {
		return nil, err
	}
	if err := ctx.Update(data); err != nil {
		return nil, NewHandleError(handle, "hash", err)
	}
	return ctx.Finalize()
}

// RandomPtr fills buf from the generator behind handle.
func RandomPtr(handle Handle, buf []byte) error {
	g, node, err := lookupGlobal[Generator](handle)
	if err != nil {
		return err
	}
	if err := g.Random(buf); err != nil {
		return err
	}
	node.MarkModified()
	return nil
}

// RandomizePtr reseeds the generator behind handle from seed.
func RandomizePtr(handle Handle, seed []byte) error {
	g, node, err := lookupGlobal[Generator](handle)
	if err != nil {
		return err
	}
	if err := GeneratorRandomizePtr(g, seed); err != nil {
		return err
	}
	node.MarkModified()
	return nil
}

// MACPtr returns the tag of data under the MAC behind handle.
func MACPtr(handle Handle, data []byte) ([]byte, error) {
	mac, _, err := lookupGlobal[*MACContext](handle)
	if err != nil {
		return nil, err
	}
	if err := mac.Update(data); err != nil {
		return nil, NewHandleError(handle, "mac", err)
	}
	return mac.Finalize()
}

// Encrypt seals plaintext with the cipher behind handle.
func Encrypt(handle Handle, plaintext, additionalData []byte) ([]byte, error) {
	c, _, err := lookupGlobal[*ChaCha20Poly1305Cipher](handle)
	if err != nil {
		return nil, err
	}
	return c.Encrypt(plaintext, additionalData)
}

// Decrypt opens ciphertext with the cipher behind handle.
func Decrypt(handle Handle, ciphertext, additionalData []byte) ([]byte, error) {
	c, _, err := lookupGlobal[*ChaCha20Poly1305Cipher](handle)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(ciphertext, additionalData)
}

// Sign signs message with the signing key behind handle.
func Sign(handle Handle, message []byte) ([]byte, error) {
	k, _, err := lookupGlobal[*SigningKey](handle)
	if err != nil {
		return nil, err
	}
	return k.Sign(message)
}

// Verify checks signature over message with the signing key behind handle.
func Verify(handle Handle, message, signature []byte) (bool, error) {
	k, _, err := lookupGlobal[*SigningKey](handle)
	if err != nil {
		return false, err
	}
	return k.Verify(message, signature), nil
}

// SessionKey derives a shared session key between the agreement key behind handle and
// the peer's public key.
func SessionKey(handle Handle, peerPublicKey [AGREEMENT_KEY_SIZE]byte, salt, info []byte) ([AGREEMENT_KEY_SIZE]byte, error) {
	k, _, err := lookupGlobal[*AgreementKey](handle)
	if err != nil {
		return [AGREEMENT_KEY_SIZE]byte{}, err
	}
	return k.SessionKey(peerPublicKey, salt, info)
}

// Fingerprint returns the base32 fingerprint of the key behind handle.
func Fingerprint(handle Handle) (string, error) {
	k, _, err := lookupGlobal[interface{ Fingerprint() string }](handle)
	if err != nil {
		return "", err
	}
	return k.Fingerprint(), nil
}

// DeleteHandle destroys the object behind handle.
func DeleteHandle(handle Handle) error {
	cm, err := GlobalContextManager()
	if err != nil {
		return err
	}
	return cm.Remove(handle)
}

// HandleInfo returns the metadata of the node behind handle.
func HandleInfo(handle Handle) (NodeInfo, error) {
	cm, err := GlobalContextManager()
	if err != nil {
		return NodeInfo{}, err
	}
	node, err := cm.Lookup(handle)
	if err != nil {
		return NodeInfo{}, err
	}
	return node.Info(), nil
}

func markModified(handle Handle) {
	if handle == WrongHandle {
		return
	}
	if cm, err := GlobalContextManager(); err == nil {
		if node, err := cm.Lookup(handle); err == nil {
			node.MarkModified()
		}
	}
}
