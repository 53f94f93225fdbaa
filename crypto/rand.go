package crypto

import (
	"crypto/rand"
	"io"
	mrand "math/rand"
)

// RandomSource is the injectable entropy capability the handshake and
// session code draw randomness from. Production code uses DefaultRand;
// tests pin a seeded source so fixed vectors reproduce exactly.
type RandomSource interface {
	io.Reader
}

// DefaultRand returns the OS entropy source.
func DefaultRand() RandomSource { return rand.Reader }

// SeededRand returns a deterministic RandomSource for tests, backed by a
// seeded PRNG. Not suitable for production use — it is not cryptographically
// secure, only reproducible.
func SeededRand(seed int64) RandomSource {
	return mrand.New(mrand.NewSource(seed))
}

// ReadFull fills buf entirely from src, wrapping io.ReadFull's error.
func ReadFull(src RandomSource, buf []byte) error {
	_, err := io.ReadFull(src, buf)
	return err
}
