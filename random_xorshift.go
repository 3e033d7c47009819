package go_akrypt

import (
	"encoding/binary"

	"github.com/lazybeaver/xorshift"
)

// XorShiftRandom is a xorshift64* baseline generator. It is fast and well distributed but
// not cryptographically strong; the context manager uses it to mint handle tags.
type XorShiftRandom struct {
	generatorState
	sequence func() uint64
	last     uint64
}

// NewXorShiftRandom creates a xorshift64* generator seeded from OS entropy.
func NewXorShiftRandom() (*XorShiftRandom, error) {
	g := &XorShiftRandom{generatorState: generatorState{name: GENERATOR_XORSHIFT}}
	if err := g.Randomize(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *XorShiftRandom) reseed(seed uint64) {
	// xorshift has a fixed point at zero.
	if seed == 0 {
		seed = 1
	}
	g.sequence = xorshift.NewXorShift64Star(seed).Next
}

// Next advances the sequence by one 64-bit word.
func (g *XorShiftRandom) Next() error {
	if err := g.checkLive("next"); err != nil {
		return err
	}
	g.last = g.sequence()
	return nil
}

// Randomize reseeds from OS entropy.
func (g *XorShiftRandom) Randomize() error {
	if err := g.checkLive("randomize"); err != nil {
		return err
	}
	g.reseed(RandomValue())
	return nil
}

// RandomizePtr reseeds from seed, xoring it in as little-endian 64-bit words.
func (g *XorShiftRandom) RandomizePtr(seed []byte) error {
	if err := g.checkBuffer("randomize_ptr", seed); err != nil {
		return err
	}
	var word [8]byte
	var value uint64
	for off := 0; off < len(seed); off += 8 {
		word = [8]byte{}
		copy(word[:], seed[off:])
		value ^= binary.LittleEndian.Uint64(word[:])
		value = value<<13 | value>>51
	}
	g.reseed(value)
	return nil
}

// Random fills p eight bytes per step; a trailing partial word is truncated.
func (g *XorShiftRandom) Random(p []byte) error {
	if err := g.checkBuffer("random", p); err != nil {
		return err
	}
	var word [8]byte
	for off := 0; off < len(p); off += 8 {
		g.last = g.sequence()
		binary.LittleEndian.PutUint64(word[:], g.last)
		copy(p[off:], word[:])
	}
	return nil
}

// Uint64 returns the next word of the sequence.
func (g *XorShiftRandom) Uint64() (uint64, error) {
	if err := g.Next(); err != nil {
		return 0, err
	}
	return g.last, nil
}

// Free releases the generator.
func (g *XorShiftRandom) Free() error {
	if err := g.release(); err != nil {
		return err
	}
	g.sequence = nil
	g.last = 0
	return nil
}
