package go_akrypt

import "encoding/binary"

// LCGRandom is a 64-bit linear congruential generator, x(n+1) = 125*x(n) + 3 mod 2^64,
// emitting bits 24..31 of the state per output byte. It is a baseline generator with no
// cryptographic strength.
type LCGRandom struct {
	generatorState
	value uint64
}

// NewLCGRandom creates an LCG seeded from OS entropy.
func NewLCGRandom() (*LCGRandom, error) {
	g := &LCGRandom{generatorState: generatorState{name: GENERATOR_LCG}}
	if err := g.Randomize(); err != nil {
		return nil, err
	}
	return g, nil
}

// Next advances the state by one step.
func (g *LCGRandom) Next() error {
	if err := g.checkLive("next"); err != nil {
		return err
	}
	g.next()
	return nil
}

func (g *LCGRandom) next() {
	g.value = g.value*125 + 3
}

// Randomize reseeds from a 64-bit OS entropy value.
func (g *LCGRandom) Randomize() error {
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], RandomValue())
	return g.RandomizePtr(seed[:])
}

// RandomizePtr folds seed into the state, rotating so that every byte contributes.
func (g *LCGRandom) RandomizePtr(seed []byte) error {
	if err := g.checkBuffer("randomize_ptr", seed); err != nil {
		return err
	}
	var value uint64
	for _, b := range seed {
		value = (value<<8 | value>>56) ^ uint64(b)
	}
	g.value = value
	g.next()
	return nil
}

// Random fills p, one state step per byte.
func (g *LCGRandom) Random(p []byte) error {
	if err := g.checkBuffer("random", p); err != nil {
		return err
	}
	for i := range p {
		g.next()
		p[i] = byte(g.value >> 24)
	}
	return nil
}

// Free releases the generator.
func (g *LCGRandom) Free() error {
	if err := g.release(); err != nil {
		return err
	}
	g.value = 0
	return nil
}
