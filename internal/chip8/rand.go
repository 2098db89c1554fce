package chip8

import "math/rand"

// RandSource is the injectable randomness CXKK draws from. Per spec.md
// §9, the host supplies this so CXKK is deterministic under test.
type RandSource interface {
	Byte() byte
}

// mathRandSource is the math/rand-backed default. NewVM seeds it with the
// fixed value 1, so CXKK yields the same sequence on every run unless the
// host installs another source with SetRandSource.
type mathRandSource struct {
	r *rand.Rand
}

// NewMathRandSource returns a RandSource backed by math/rand, seeded with
// the given value for reproducibility (a fixed seed, a clock reading — the
// caller decides).
func NewMathRandSource(seed int64) RandSource {
	return &mathRandSource{r: rand.New(rand.NewSource(seed))}
}

func (s *mathRandSource) Byte() byte {
	return byte(s.r.Intn(256))
}

// fixedRandSource always returns the same byte; useful for tests that
// need CXKK to be fully predictable.
type fixedRandSource byte

func (s fixedRandSource) Byte() byte { return byte(s) }

// NewFixedRandSource returns a RandSource that always yields b.
func NewFixedRandSource(b byte) RandSource { return fixedRandSource(b) }
