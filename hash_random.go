package go_akrypt

import (
	"fmt"
)

// NewHashRandom creates a hash-derived generator over fn, seeded with
// HASHRNG_SEED_SIZE bytes of OS entropy.
func NewHashRandom(fn *HashFunction) (*HashRandom, error) {
	g, err := newHashRandom(fn)
	if err != nil {
		return nil, err
	}
	if err := g.Randomize(); err != nil {
		g.Free()
		return nil, err
	}
	return g, nil
}

// NewHashRandomWithSeed creates a hash-derived generator over fn seeded with seed.
// Two generators built from the same function and seed produce the same output.
func NewHashRandomWithSeed(fn *HashFunction, seed []byte) (*HashRandom, error) {
	g, err := newHashRandom(fn)
	if err != nil {
		return nil, err
	}
	if err := g.RandomizePtr(seed); err != nil {
		g.Free()
		return nil, err
	}
	return g, nil
}

func newHashRandom(fn *HashFunction) (*HashRandom, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: using a nil hash function", ErrNullArgument)
	}
	if fn.Size() > HASHRNG_BUFFER_SIZE {
		return nil, fmt.Errorf("%w: %s digest of %d bytes exceeds the %d byte buffer",
			ErrWrongLength, fn.Name(), fn.Size(), HASHRNG_BUFFER_SIZE)
	}
	return &HashRandom{
		generatorState: generatorState{name: GENERATOR_HASHRNG + "-" + fn.Name()},
		fn:             fn,
		hasher:         fn.New(),
		metrics:        nopMetrics{},
	}, nil
}

// SetMetrics attaches a metrics collector; nil detaches it.
func (g *HashRandom) SetMetrics(metrics MetricsCollector) {
	g.metrics = metricsOrNop(metrics)
}

// HashFunction returns the hash function the generator is built on.
func (g *HashRandom) HashFunction() *HashFunction {
	return g.fn
}

// BlockSize returns the number of bytes produced per refill.
func (g *HashRandom) BlockSize() int {
	return g.fn.Size()
}

// Available returns the number of unread bytes in the output buffer.
func (g *HashRandom) Available() int {
	return g.available
}

// Refills returns how many times the output buffer has been recomputed.
func (g *HashRandom) Refills() uint64 {
	return g.refills
}

// Counter returns the current counter as 64 little-endian bytes.
func (g *HashRandom) Counter() []byte {
	out := make([]byte, HASHRNG_COUNTER_WORDS*8)
	g.counter.putBytes(out)
	return out
}

// Next refills the output buffer: it increments the counter and hashes it. Calling it
// while bytes are still available is a contract violation reported as
// ErrUnexpectedState; the buffer is left untouched.
func (g *HashRandom) Next() error {
	if err := g.checkLive("next"); err != nil {
		return err
	}
	if g.available != 0 {
		return g.fail("next", fmt.Errorf("%w: refill requested with %d bytes available", ErrUnexpectedState, g.available))
	}

	mpznAdd(&g.counter, &g.counter, &mpzn512One)
	if g.counter.isZero() {
		Warning("Generator %s counter wrapped around 2^512", g.name)
	}

	var input [HASHRNG_COUNTER_WORDS * 8]byte
	g.counter.putBytes(input[:])
	g.hasher.Reset()
	g.hasher.Write(input[:])
	g.hasher.Sum(g.buffer[:0])
	secureZero(input[:])

	g.available = g.fn.Size()
	g.refills++
	g.metrics.IncrementRefill(g.name)
	return nil
}

// RandomizePtr reseeds the generator from seed. The counter is cleared and up to
// HASHRNG_SEED_SIZE seed bytes are placed from counter word HASHRNG_SEED_WORD upwards;
// longer seeds are hashed first. A refill follows immediately, so the first output is
// derived material rather than the seed.
func (g *HashRandom) RandomizePtr(seed []byte) error {
	if err := g.checkBuffer("randomize_ptr", seed); err != nil {
		return err
	}

	g.available = 0
	g.counter = mpzn512{}
	secureZero(g.buffer[:])

	var counterBytes [HASHRNG_COUNTER_WORDS * 8]byte
	region := counterBytes[HASHRNG_SEED_WORD*8 : HASHRNG_SEED_WORD*8+HASHRNG_SEED_SIZE]
	if len(seed) <= HASHRNG_SEED_SIZE {
		copy(region, seed)
	} else {
		var digest [HASHRNG_BUFFER_SIZE]byte
		for i := range digest {
			digest[i] = HASHRNG_LONG_SEED_FILL
		}
		g.hasher.Reset()
		g.hasher.Write(seed)
		copy(digest[:], g.hasher.Sum(nil))
		copy(region, digest[:HASHRNG_SEED_SIZE])
		secureZero(digest[:])
	}
	g.counter.setBytes(counterBytes[:])
	secureZero(counterBytes[:])

	return g.Next()
}

// Randomize reseeds the generator with HASHRNG_SEED_SIZE bytes of OS entropy.
func (g *HashRandom) Randomize() error {
	if err := g.checkLive("randomize"); err != nil {
		return err
	}
	var seed [HASHRNG_SEED_SIZE]byte
	defer secureZero(seed[:])
	if err := osEntropy(seed[:]); err != nil {
		return NewGeneratorError(g.name, "randomize", err)
	}
	return g.RandomizePtr(seed[:])
}

// Random fills p. Bytes are taken from the unread tail of the output buffer, which is
// wiped as it is consumed; an empty buffer is refilled before the next byte is read, so
// a request may span any number of refills.
func (g *HashRandom) Random(p []byte) error {
	if err := g.checkBuffer("random", p); err != nil {
		return err
	}

	remaining := p
	for len(remaining) > 0 {
		if g.available == 0 {
			if err := g.Next(); err != nil {
				return err
			}
		}
		offset := g.fn.Size() - g.available
		n := copy(remaining, g.buffer[offset:offset+g.available])
		secureZero(g.buffer[offset : offset+n])
		remaining = remaining[n:]
		g.available -= n
	}
	g.metrics.AddRandomBytes(g.name, uint64(len(p)))
	return nil
}

// Free destroys the owned hash context and wipes the generator state. Later calls fail
// with ErrUnexpectedState.
func (g *HashRandom) Free() error {
	if err := g.release(); err != nil {
		return err
	}
	g.hasher.Reset()
	g.hasher = nil
	g.counter = mpzn512{}
	secureZero(g.buffer[:])
	g.available = 0
	return nil
}
