// HashRandom struct definition
package go_akrypt

import "hash"

// HashRandom is a counter-mode hash DRBG in the style of GOST R 1323565.1.006-2017:
// every refill increments a 512-bit counter and replaces the output buffer with the hash
// of that counter.
//
// States:
//   - Seeded: counter and buffer initialised, available > 0
//   - Exhausted-pending-refill: available == 0, the next byte requested triggers a refill
//
// There is no unseeded state reachable by callers; construction always seeds.
//
// Fields:
//   - fn, hasher: the keyless hash function and the hash context owned by the generator
//   - counter: incremented once per refill, wrapping mod 2^512
//   - buffer: the latest digest; only its last `available` bytes of the first
//     fn.Size() bytes are unread
//
// A HashRandom is not safe for concurrent use.
type HashRandom struct {
	generatorState
	fn        *HashFunction
	hasher    hash.Hash
	counter   mpzn512
	buffer    [HASHRNG_BUFFER_SIZE]byte
	available int
	refills   uint64
	metrics   MetricsCollector
}
