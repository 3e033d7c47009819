package go_akrypt

import (
	crypto_rand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"
)

// Generator is the capability every pseudorandom generator offers: fill a buffer and
// release its resources. The remaining operations (Next, Randomize, RandomizePtr) are
// optional capabilities discovered with the Generator* dispatch functions below, which
// return ErrUndefinedFunction when a generator lacks them.
//
// Generators are not safe for concurrent use. One owner at a time, e.g. the context
// manager's key generator or a caller holding the generator's handle, must serialise calls.
type Generator interface {
	// Name returns the generator identifier, e.g. "lcg" or "hashrng-sha512".
	Name() string
	// Random fills p completely. Fails with ErrNullArgument on a nil buffer and
	// ErrZeroLength on an empty one.
	Random(p []byte) error
	// Free releases implementation-owned resources. Any later call fails with
	// ErrUnexpectedState.
	Free() error
}

// NextGenerator advances its internal state by one step.
type NextGenerator interface {
	Generator
	Next() error
}

// Randomizer reseeds itself from an entropy source of its choosing.
type Randomizer interface {
	Generator
	Randomize() error
}

// PtrRandomizer reseeds itself deterministically from caller-supplied bytes.
type PtrRandomizer interface {
	Generator
	RandomizePtr(seed []byte) error
}

// GeneratorNext advances g by one step.
func GeneratorNext(g Generator) error {
	if g == nil {
		return fmt.Errorf("%w: using a nil generator", ErrNullArgument)
	}
	ng, ok := g.(NextGenerator)
	if !ok {
		return NewGeneratorError(g.Name(), "next", ErrUndefinedFunction)
	}
	return ng.Next()
}

// GeneratorRandomize reseeds g from its own entropy source.
func GeneratorRandomize(g Generator) error {
	if g == nil {
		return fmt.Errorf("%w: using a nil generator", ErrNullArgument)
	}
	rg, ok := g.(Randomizer)
	if !ok {
		return NewGeneratorError(g.Name(), "randomize", ErrUndefinedFunction)
	}
	return rg.Randomize()
}

// GeneratorRandomizePtr reseeds g from seed.
func GeneratorRandomizePtr(g Generator, seed []byte) error {
	if g == nil {
		return fmt.Errorf("%w: using a nil generator", ErrNullArgument)
	}
	pg, ok := g.(PtrRandomizer)
	if !ok {
		return NewGeneratorError(g.Name(), "randomize_ptr", ErrUndefinedFunction)
	}
	return pg.RandomizePtr(seed)
}

// GeneratorRandom fills p with output of g.
func GeneratorRandom(g Generator, p []byte) error {
	if g == nil {
		return fmt.Errorf("%w: using a nil generator", ErrNullArgument)
	}
	return g.Random(p)
}

// GeneratorFree releases g.
func GeneratorFree(g Generator) error {
	if g == nil {
		return fmt.Errorf("%w: freeing a nil generator", ErrNullArgument)
	}
	return g.Free()
}

// GeneratorUint8 draws one byte from g.
func GeneratorUint8(g Generator) (uint8, error) {
	var b [1]byte
	if err := GeneratorRandom(g, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// GeneratorUint64 draws a 64-bit little-endian word from g.
func GeneratorUint64(g Generator) (uint64, error) {
	var b [8]byte
	if err := GeneratorRandom(g, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// RandomizeFrom reseeds dst with 64 bytes drawn from src.
func RandomizeFrom(dst, src Generator) error {
	seed := make([]byte, 64)
	defer secureZero(seed)
	if err := GeneratorRandom(src, seed); err != nil {
		return err
	}
	return GeneratorRandomizePtr(dst, seed)
}

// RandomValue returns a 64-bit value from OS entropy. If the OS source fails the value
// falls back to the clock, which is only good enough for seeding baseline generators.
func RandomValue() uint64 {
	var b [8]byte
	if err := osEntropy(b[:]); err != nil {
		Warning("OS entropy unavailable, falling back to clock: %v", err)
		return uint64(time.Now().UnixNano()) * 0x9e3779b97f4a7c15
	}
	return binary.LittleEndian.Uint64(b[:])
}

// osEntropy fills p from the operating system CSPRNG.
func osEntropy(p []byte) error {
	if _, err := io.ReadFull(crypto_rand.Reader, p); err != nil {
		return fmt.Errorf("failed to obtain random data: %w", err)
	}
	return nil
}

// generatorReader adapts a Generator to io.Reader.
type generatorReader struct {
	g Generator
}

// NewReader returns an io.Reader drawing from g. Reads of an empty buffer return 0, nil.
func NewReader(g Generator) io.Reader {
	return &generatorReader{g: g}
}

func (r *generatorReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := GeneratorRandom(r.g, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// NewGenerator creates a generator by name: "lcg", "xorshift64*" (or "xorshift"),
// "os", "file" (reads /dev/urandom), "file:<path>" or "hashrng-<hash>".
// Seedable generators come back randomized from OS entropy.
func NewGenerator(name string) (Generator, error) {
	switch {
	case name == GENERATOR_LCG:
		return NewLCGRandom()
	case name == GENERATOR_XORSHIFT || name == "xorshift":
		return NewXorShiftRandom()
	case name == GENERATOR_OS:
		return NewOSRandom(), nil
	case name == GENERATOR_FILE:
		return NewFileRandom(DefaultConfig().RandomFile)
	case strings.HasPrefix(name, GENERATOR_FILE+":"):
		return NewFileRandom(strings.TrimPrefix(name, GENERATOR_FILE+":"))
	case strings.HasPrefix(name, GENERATOR_HASHRNG+"-"):
		fn, err := LookupHashFunction(strings.TrimPrefix(name, GENERATOR_HASHRNG+"-"))
		if err != nil {
			return nil, err
		}
		return NewHashRandom(fn)
	default:
		return nil, fmt.Errorf("%w: generator %q", ErrUnknownAlgorithm, name)
	}
}

// generatorState carries the bookkeeping shared by the baseline generators.
type generatorState struct {
	name     string
	released bool
}

func (s *generatorState) Name() string {
	return s.name
}

// checkLive fails once the generator has been released.
func (s *generatorState) checkLive(operation string) error {
	if s.released {
		return s.fail(operation, fmt.Errorf("%w: generator released", ErrUnexpectedState))
	}
	return nil
}

// checkBuffer validates an output or seed buffer for operation.
func (s *generatorState) checkBuffer(operation string, p []byte) error {
	if err := s.checkLive(operation); err != nil {
		return err
	}
	if p == nil {
		return s.fail(operation, ErrNullArgument)
	}
	if len(p) == 0 {
		return s.fail(operation, ErrZeroLength)
	}
	return nil
}

// fail wraps err with the generator name and operation and logs it once.
func (s *generatorState) fail(operation string, err error) error {
	Debug("Generator %s %s failed: %v", s.name, operation, err)
	return NewGeneratorError(s.name, operation, err)
}

func (s *generatorState) release() error {
	if err := s.checkLive("free"); err != nil {
		return err
	}
	s.released = true
	return nil
}
