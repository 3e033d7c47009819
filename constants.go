package go_akrypt

// akrypt Library Constants
//
// This file gathers the constants shared by the context manager and the
// pseudorandom generators: engine tags, node status values, handle layout and
// the hash-derived generator parameters.

// Library Version
const (
	AKRYPT_VERSION = "0.7.2"
)

// Engine identifies the category of object wrapped by a context manager node.
type Engine uint8

// Engine Constants
const (
	ENGINE_UNDEFINED Engine = iota
	ENGINE_BLOCK_CIPHER
	ENGINE_HASH_FUNCTION
	ENGINE_MAC_FUNCTION
	ENGINE_RANDOM_GENERATOR
	ENGINE_KEY
)

// String returns the engine name used in logs and metrics labels.
func (e Engine) String() string {
	switch e {
	case ENGINE_BLOCK_CIPHER:
		return "block_cipher"
	case ENGINE_HASH_FUNCTION:
		return "hash_function"
	case ENGINE_MAC_FUNCTION:
		return "mac_function"
	case ENGINE_RANDOM_GENERATOR:
		return "random_generator"
	case ENGINE_KEY:
		return "key"
	default:
		return "undefined"
	}
}

// NodeStatus tracks whether a wrapped object changed since it was last persisted or read.
// It is set by the subsystem owning the object, never by the context manager.
type NodeStatus uint8

// Node Status Constants
const (
	NODE_UNDEFINED  NodeStatus = iota // node destroyed or never created
	NODE_UNMODIFIED                   // object equals its stored form (just created/read/written)
	NODE_MODIFIED                     // object changed while in use
)

func (s NodeStatus) String() string {
	switch s {
	case NODE_UNMODIFIED:
		return "unmodified"
	case NODE_MODIFIED:
		return "modified"
	default:
		return "undefined"
	}
}

// Handle Layout Constants
//
// A handle packs a slot index into its low HANDLE_SLOT_BITS bits and a tag drawn
// from the manager's key generator into the bits above. The tag keeps handles from
// being trivially guessable and stops a stale handle resolving to a newer node that
// reuses the same slot.
const (
	HANDLE_SLOT_BITS     = 24
	HANDLE_TAG_BITS      = 31
	HANDLE_MAX_SLOTS     = 1 << HANDLE_SLOT_BITS
	HANDLE_SLOT_MASK     = HANDLE_MAX_SLOTS - 1
	HANDLE_TAG_MASK      = 1<<HANDLE_TAG_BITS - 1
	HANDLE_MINT_ATTEMPTS = 16

	// WrongHandle is the reserved sentinel returned in place of a live handle.
	WrongHandle Handle = -1
)

// Context Manager Defaults
const (
	CONTEXT_MANAGER_DEFAULT_SIZE = 4
)

// Hash-derived Generator Constants
const (
	// HASHRNG_BUFFER_SIZE is the fixed output buffer; hash digests must fit in it.
	HASHRNG_BUFFER_SIZE = 64
	// HASHRNG_COUNTER_WORDS is the width of the counter in 64-bit words (512 bits).
	HASHRNG_COUNTER_WORDS = 8
	// HASHRNG_SEED_SIZE is how many seed bytes land in the counter.
	HASHRNG_SEED_SIZE = 47
	// HASHRNG_SEED_WORD is the first counter word receiving seed bytes; the 16 low-order
	// bytes below it and the top byte above the seed stay zero.
	HASHRNG_SEED_WORD = 2
	// HASHRNG_LONG_SEED_FILL prefills the digest buffer when a long seed is hashed.
	HASHRNG_LONG_SEED_FILL = 0x11
)

// Generator Names
const (
	GENERATOR_LCG      = "lcg"
	GENERATOR_XORSHIFT = "xorshift64*"
	GENERATOR_FILE     = "file"
	GENERATOR_OS       = "os"
	GENERATOR_HASHRNG  = "hashrng"
)

// Logger Level Constants
const (
	DEBUG   = 1 << 4
	INFO    = 1 << 5
	WARNING = 1 << 6
	ERROR   = 1 << 7
	FATAL   = 1 << 8

	LEVEL_MASK = 0x000001f0
)
