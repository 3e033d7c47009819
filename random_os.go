package go_akrypt

// OSRandom draws every byte from the operating system CSPRNG (crypto/rand). It keeps no
// state, so it offers neither Next nor reseeding.
type OSRandom struct {
	generatorState
}

// NewOSRandom creates a generator backed by the OS entropy source.
func NewOSRandom() *OSRandom {
	return &OSRandom{generatorState: generatorState{name: GENERATOR_OS}}
}

// Random fills p from the OS.
func (g *OSRandom) Random(p []byte) error {
	if err := g.checkBuffer("random", p); err != nil {
		return err
	}
	if err := osEntropy(p); err != nil {
		return NewGeneratorError(g.name, "random", err)
	}
	return nil
}

// Free releases the generator.
func (g *OSRandom) Free() error {
	return g.release()
}
