package go_akrypt

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"
)

// setupLibrary initialises the library with in-memory metrics and tears it down after the test.
// Library tests share the global manager and must not run in parallel.
func setupLibrary(t *testing.T) *InMemoryMetrics {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Metrics = "memory"
	if err := Create(cfg); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	t.Cleanup(func() {
		if err := Destroy(); err != nil && !errors.Is(err, ErrManagerNotInitialized) {
			t.Errorf("Destroy() error = %v", err)
		}
	})
	metrics, ok := Metrics().(*InMemoryMetrics)
	if !ok {
		t.Fatalf("Metrics() = %T, want *InMemoryMetrics", Metrics())
	}
	return metrics
}

func TestCreateDestroy(t *testing.T) {
	setupLibrary(t)

	if err := Create(DefaultConfig()); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Create() error = %v, want ErrAlreadyInitialized", err)
	}
	if err := Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if _, ok := Metrics().(nopMetrics); !ok {
		t.Errorf("Metrics() after Destroy = %T, want nopMetrics", Metrics())
	}
	if _, err := NewHashHandle("sha256", ""); !errors.Is(err, ErrManagerNotInitialized) {
		t.Errorf("NewHashHandle after Destroy error = %v, want ErrManagerNotInitialized", err)
	}
	if err := Destroy(); !errors.Is(err, ErrManagerNotInitialized) {
		t.Errorf("second Destroy() error = %v, want ErrManagerNotInitialized", err)
	}

	bad := DefaultConfig()
	bad.Metrics = "statsd"
	if err := Create(bad); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("Create(bad config) error = %v, want ErrUnknownAlgorithm", err)
	}
}

func TestHashHandle(t *testing.T) {
	setupLibrary(t)

	h, err := NewHashHandle("sha256", "digest")
	if err != nil {
		t.Fatalf("NewHashHandle() error = %v", err)
	}
	digest, err := HashPtr(h, []byte("abc"))
	if err != nil {
		t.Fatalf("HashPtr() error = %v", err)
	}
	if want := sha256.Sum256([]byte("abc")); !bytes.Equal(digest, want[:]) {
		t.Errorf("HashPtr() = %x, want %x", digest, want)
	}

	info, err := HandleInfo(h)
	if err != nil {
		t.Fatalf("HandleInfo() error = %v", err)
	}
	if info.Engine != ENGINE_HASH_FUNCTION || info.Description != "digest" || info.Status != NODE_UNMODIFIED {
		t.Errorf("HandleInfo() = %+v", info)
	}

	if _, err := NewHashHandle("md5", ""); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("NewHashHandle(md5) error = %v, want ErrUnknownAlgorithm", err)
	}
	if _, err := Fingerprint(h); !errors.Is(err, ErrEngineMismatch) {
		t.Errorf("Fingerprint(hash handle) error = %v, want ErrEngineMismatch", err)
	}
}

func TestRandomHandles(t *testing.T) {
	metrics := setupLibrary(t)

	rng, err := NewHashRandomHandle("", "default hashrng")
	if err != nil {
		t.Fatalf("NewHashRandomHandle() error = %v", err)
	}
	buf := make([]byte, 100)
	if err := RandomPtr(rng, buf); err != nil {
		t.Fatalf("RandomPtr() error = %v", err)
	}
	if info, _ := HandleInfo(rng); info.Status != NODE_MODIFIED {
		t.Errorf("status after RandomPtr = %s, want modified", info.Status)
	}
	if got := metrics.RandomBytes("hashrng-sha512"); got != 100 {
		t.Errorf("RandomBytes(hashrng-sha512) = %d, want 100", got)
	}

	seeded := func(kind string) []byte {
		h, err := NewRandomHandle(kind, kind)
		if err != nil {
			t.Fatalf("NewRandomHandle(%s) error = %v", kind, err)
		}
		defer DeleteHandle(h)
		if err := RandomizePtr(h, []byte("library seed")); err != nil {
			t.Fatalf("RandomizePtr(%s) error = %v", kind, err)
		}
		out := make([]byte, 48)
		if err := RandomPtr(h, out); err != nil {
			t.Fatalf("RandomPtr(%s) error = %v", kind, err)
		}
		return out
	}
	for _, kind := range []string{"lcg", "xorshift", "hashrng-blake3"} {
		if !bytes.Equal(seeded(kind), seeded(kind)) {
			t.Errorf("%s output differs for equal seeds", kind)
		}
	}

	osHandle, err := NewRandomHandle("os", "")
	if err != nil {
		t.Fatalf("NewRandomHandle(os) error = %v", err)
	}
	if err := RandomizePtr(osHandle, []byte("seed")); !errors.Is(err, ErrUndefinedFunction) {
		t.Errorf("RandomizePtr(os) error = %v, want ErrUndefinedFunction", err)
	}
	if err := RandomPtr(osHandle, nil); !errors.Is(err, ErrNullArgument) {
		t.Errorf("RandomPtr(nil buffer) error = %v, want ErrNullArgument", err)
	}

	if _, err := NewRandomHandle("mersenne", ""); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("NewRandomHandle(mersenne) error = %v, want ErrUnknownAlgorithm", err)
	}
}

func TestMACHandle(t *testing.T) {
	setupLibrary(t)

	h, err := NewMACHandle("sha256", []byte("Jefe"), "hmac")
	if err != nil {
		t.Fatalf("NewMACHandle() error = %v", err)
	}
	first, err := MACPtr(h, []byte("what do ya want for nothing?"))
	if err != nil {
		t.Fatalf("MACPtr() error = %v", err)
	}
	second, _ := MACPtr(h, []byte("what do ya want for nothing?"))
	if !bytes.Equal(first, second) {
		t.Error("MACPtr() is not repeatable")
	}

	if _, err := NewMACHandle("sha256", nil, ""); !errors.Is(err, ErrNullArgument) {
		t.Errorf("NewMACHandle(nil key) error = %v, want ErrNullArgument", err)
	}
}

func TestCipherHandle(t *testing.T) {
	setupLibrary(t)

	rng, err := NewHashRandomHandle("sha256", "")
	if err != nil {
		t.Fatalf("NewHashRandomHandle() error = %v", err)
	}
	c, err := NewCipherHandle(rng, "aead")
	if err != nil {
		t.Fatalf("NewCipherHandle() error = %v", err)
	}
	if info, _ := HandleInfo(rng); info.Status != NODE_MODIFIED {
		t.Errorf("key source status = %s, want modified", info.Status)
	}

	ciphertext, err := Encrypt(c, []byte("payload"), []byte("ad"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	plaintext, err := Decrypt(c, ciphertext, []byte("ad"))
	if err != nil || string(plaintext) != "payload" {
		t.Errorf("Decrypt() = %q, %v", plaintext, err)
	}

	if _, err := Encrypt(rng, []byte("x"), nil); !errors.Is(err, ErrEngineMismatch) {
		t.Errorf("Encrypt(generator handle) error = %v, want ErrEngineMismatch", err)
	}
	hash, _ := NewHashHandle("sha256", "")
	if _, err := NewCipherHandle(hash, ""); !errors.Is(err, ErrEngineMismatch) {
		t.Errorf("NewCipherHandle(hash handle) error = %v, want ErrEngineMismatch", err)
	}
	if _, err := NewCipherHandle(WrongHandle, "os keyed"); err != nil {
		t.Errorf("NewCipherHandle(WrongHandle) error = %v", err)
	}
}

func TestKeyHandles(t *testing.T) {
	setupLibrary(t)

	signer, err := NewSigningKeyHandle(WrongHandle, "signer")
	if err != nil {
		t.Fatalf("NewSigningKeyHandle() error = %v", err)
	}
	signature, err := Sign(signer, []byte("message"))
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if ok, err := Verify(signer, []byte("message"), signature); err != nil || !ok {
		t.Errorf("Verify() = %v, %v; want true", ok, err)
	}
	if ok, _ := Verify(signer, []byte("tampered"), signature); ok {
		t.Error("Verify() accepted a tampered message")
	}
	if fp, err := Fingerprint(signer); err != nil || fp == "" {
		t.Errorf("Fingerprint(signer) = %q, %v", fp, err)
	}

	a, err := NewAgreementKeyHandle(WrongHandle, "alice")
	if err != nil {
		t.Fatalf("NewAgreementKeyHandle() error = %v", err)
	}
	b, err := NewAgreementKeyHandle(WrongHandle, "bob")
	if err != nil {
		t.Fatalf("NewAgreementKeyHandle() error = %v", err)
	}
	cm, _ := GlobalContextManager()
	aKey, _ := LookupObject[*AgreementKey](cm, a)
	bKey, _ := LookupObject[*AgreementKey](cm, b)

	keyA, err := SessionKey(a, bKey.PublicKey(), nil, []byte("test"))
	if err != nil {
		t.Fatalf("SessionKey() error = %v", err)
	}
	keyB, err := SessionKey(b, aKey.PublicKey(), nil, []byte("test"))
	if err != nil {
		t.Fatalf("SessionKey() error = %v", err)
	}
	if keyA != keyB {
		t.Error("session keys differ between handles")
	}

	if _, err := Sign(a, []byte("m")); !errors.Is(err, ErrEngineMismatch) {
		t.Errorf("Sign(agreement key) error = %v, want ErrEngineMismatch", err)
	}
}

func TestDeleteHandle(t *testing.T) {
	metrics := setupLibrary(t)

	h, err := NewSigningKeyHandle(WrongHandle, "")
	if err != nil {
		t.Fatalf("NewSigningKeyHandle() error = %v", err)
	}
	cm, _ := GlobalContextManager()
	key, _ := LookupObject[*SigningKey](cm, h)

	if err := DeleteHandle(h); err != nil {
		t.Fatalf("DeleteHandle() error = %v", err)
	}
	if _, err := key.Sign([]byte("m")); !errors.Is(err, ErrUnexpectedState) {
		t.Errorf("key still usable after DeleteHandle: %v", err)
	}
	if _, err := HandleInfo(h); !errors.Is(err, ErrHandleNotFound) {
		t.Errorf("HandleInfo(deleted) error = %v, want ErrHandleNotFound", err)
	}
	if err := DeleteHandle(h); !errors.Is(err, ErrHandleNotFound) {
		t.Errorf("second DeleteHandle() error = %v, want ErrHandleNotFound", err)
	}
	if err := DeleteHandle(WrongHandle); !errors.Is(err, ErrWrongHandle) {
		t.Errorf("DeleteHandle(WrongHandle) error = %v, want ErrWrongHandle", err)
	}

	if got := metrics.HandlesRemoved(ENGINE_KEY); got != 1 {
		t.Errorf("HandlesRemoved(key) = %d, want 1", got)
	}
	if got := metrics.Errors("handle_not_found"); got != 2 {
		t.Errorf("Errors(handle_not_found) = %d, want 2", got)
	}
}

func TestDestroyReleasesObjects(t *testing.T) {
	setupLibrary(t)

	h, err := NewCipherHandle(WrongHandle, "")
	if err != nil {
		t.Fatalf("NewCipherHandle() error = %v", err)
	}
	cm, _ := GlobalContextManager()
	c, _ := LookupObject[*ChaCha20Poly1305Cipher](cm, h)

	if err := Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if _, err := c.Encrypt([]byte("x"), nil); !errors.Is(err, ErrUnexpectedState) {
		t.Errorf("cipher usable after Destroy: %v", err)
	}
	if _, err := Encrypt(h, []byte("x"), nil); !errors.Is(err, ErrManagerNotInitialized) {
		t.Errorf("Encrypt after Destroy error = %v, want ErrManagerNotInitialized", err)
	}
}
