package go_akrypt

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"sort"

	"github.com/buildbarn/go-sha256tree"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// HashFunction describes a keyless hash function usable by hash contexts, MACs and the
// hash-derived generator. Exactly one instance exists per supported algorithm.
type HashFunction struct {
	name          string
	oid           string
	hasherFactory func(expectedSizeBytes int64) hash.Hash
	hashBytesSize int
}

var (
	sha256HashFunction = &HashFunction{
		name: "sha256",
		oid:  "2.16.840.1.101.3.4.2.1",
		hasherFactory: func(expectedSizeBytes int64) hash.Hash {
			return sha256.New()
		},
		hashBytesSize: sha256.Size,
	}
	sha512HashFunction = &HashFunction{
		name: "sha512",
		oid:  "2.16.840.1.101.3.4.2.3",
		hasherFactory: func(expectedSizeBytes int64) hash.Hash {
			return sha512.New()
		},
		hashBytesSize: sha512.Size,
	}
	sha3_256HashFunction = &HashFunction{
		name: "sha3-256",
		oid:  "2.16.840.1.101.3.4.2.8",
		hasherFactory: func(expectedSizeBytes int64) hash.Hash {
			return sha3.New256()
		},
		hashBytesSize: 32,
	}
	sha3_512HashFunction = &HashFunction{
		name: "sha3-512",
		oid:  "2.16.840.1.101.3.4.2.10",
		hasherFactory: func(expectedSizeBytes int64) hash.Hash {
			return sha3.New512()
		},
		hashBytesSize: 64,
	}
	blake2b256HashFunction = &HashFunction{
		name: "blake2b-256",
		oid:  "1.3.6.1.4.1.1722.12.2.1.8",
		hasherFactory: func(expectedSizeBytes int64) hash.Hash {
			h, _ := blake2b.New256(nil)
			return h
		},
		hashBytesSize: blake2b.Size256,
	}
	blake2b512HashFunction = &HashFunction{
		name: "blake2b-512",
		oid:  "1.3.6.1.4.1.1722.12.2.1.16",
		hasherFactory: func(expectedSizeBytes int64) hash.Hash {
			h, _ := blake2b.New512(nil)
			return h
		},
		hashBytesSize: blake2b.Size,
	}
	blake2s256HashFunction = &HashFunction{
		name: "blake2s-256",
		oid:  "1.3.6.1.4.1.1722.12.2.2.8",
		hasherFactory: func(expectedSizeBytes int64) hash.Hash {
			h, _ := blake2s.New256(nil)
			return h
		},
		hashBytesSize: blake2s.Size,
	}
	blake3HashFunction = &HashFunction{
		name: "blake3",
		hasherFactory: func(expectedSizeBytes int64) hash.Hash {
			return blake3.New()
		},
		hashBytesSize: 32,
	}
	sha256treeHashFunction = &HashFunction{
		name:          "sha256tree",
		hasherFactory: sha256tree.New,
		hashBytesSize: sha256tree.Size,
	}
)

var hashFunctions = map[string]*HashFunction{}

func init() {
	for _, fn := range []*HashFunction{
		sha256HashFunction,
		sha512HashFunction,
		sha3_256HashFunction,
		sha3_512HashFunction,
		blake2b256HashFunction,
		blake2b512HashFunction,
		blake2s256HashFunction,
		blake3HashFunction,
		sha256treeHashFunction,
	} {
		hashFunctions[fn.name] = fn
		if fn.oid != "" {
			hashFunctions[fn.oid] = fn
		}
	}
}

// LookupHashFunction returns the hash function registered under a name or OID.
func LookupHashFunction(name string) (*HashFunction, error) {
	fn, ok := hashFunctions[name]
	if !ok {
		return nil, fmt.Errorf("%w: hash function %q", ErrUnknownAlgorithm, name)
	}
	return fn, nil
}

// HashFunctions returns the names of all registered hash functions, sorted.
func HashFunctions() []string {
	names := make([]string, 0, len(hashFunctions))
	for key, fn := range hashFunctions {
		if key == fn.name {
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names
}

// Name returns the algorithm name, e.g. "sha512".
func (fn *HashFunction) Name() string {
	return fn.name
}

// OID returns the dotted object identifier, empty when none is assigned.
func (fn *HashFunction) OID() string {
	return fn.oid
}

// Size returns the digest length in bytes. The hash-derived generator uses it as its
// block size.
func (fn *HashFunction) Size() int {
	return fn.hashBytesSize
}

// New returns a fresh hasher.
func (fn *HashFunction) New() hash.Hash {
	return fn.hasherFactory(0)
}

// Compute hashes input in one shot. The result depends only on input.
func (fn *HashFunction) Compute(input []byte) []byte {
	h := fn.hasherFactory(int64(len(input)))
	h.Write(input)
	return h.Sum(nil)
}

// HashContext is a keyless hash object held by the context manager under
// ENGINE_HASH_FUNCTION. It accumulates input until Finalize.
type HashContext struct {
	fn       *HashFunction
	h        hash.Hash
	released bool
}

// NewHashContext creates a hash context for fn.
func NewHashContext(fn *HashFunction) (*HashContext, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: using a nil hash function", ErrNullArgument)
	}
	return &HashContext{fn: fn, h: fn.New()}, nil
}

// Function returns the hash function of the context.
func (c *HashContext) Function() *HashFunction {
	return c.fn
}

// Update feeds p into the context.
func (c *HashContext) Update(p []byte) error {
	if c.released {
		return fmt.Errorf("%w: hash context released", ErrUnexpectedState)
	}
	c.h.Write(p)
	return nil
}

// Finalize returns the digest of everything written so far and resets the context.
func (c *HashContext) Finalize() ([]byte, error) {
	if c.released {
		return nil, fmt.Errorf("%w: hash context released", ErrUnexpectedState)
	}
	digest := c.h.Sum(nil)
	c.h.Reset()
	return digest, nil
}

// Reset discards accumulated input.
func (c *HashContext) Reset() {
	if !c.released {
		c.h.Reset()
	}
}

// Free releases the context.
func (c *HashContext) Free() error {
	if c.released {
		return fmt.Errorf("%w: hash context released twice", ErrUnexpectedState)
	}
	c.h.Reset()
	c.h = nil
	c.released = true
	return nil
}
