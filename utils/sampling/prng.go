// Package sampling implements the pseudo-random byte sources used to
// derive deterministic numerical jitter.
package sampling

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/blake2b"
)

// PRNG is an interface for the generation of random bytes.
type PRNG interface {
	io.Reader
}

// ThreadSafePRNG is a PRNG backed by crypto/rand.
type ThreadSafePRNG struct{}

// NewPRNG returns a new PRNG that is thread-safe.
func NewPRNG() (*ThreadSafePRNG, error) {
	return &ThreadSafePRNG{}, nil
}

// Read reads random bytes into sum.
func (prng *ThreadSafePRNG) Read(sum []byte) (n int, err error) {
	return rand.Read(sum)
}

// KeyedPRNG deterministically generates a sequence of bytes from a key
// using the blake2b XOF: two KeyedPRNG instantiated with the same key
// produce the same stream. KeyedPRNG is not safe for concurrent use.
type KeyedPRNG struct {
	key []byte
	xof blake2b.XOF
}

// NewKeyedPRNG creates a new KeyedPRNG from the given key. A nil key is
// treated as an empty key.
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {
	var err error
	prng := &KeyedPRNG{key: append([]byte(nil), key...)}
	prng.xof, err = blake2b.NewXOF(blake2b.OutputLengthUnknown, key)
	return prng, err
}

// Key returns a copy of the key used to seed the PRNG.
func (prng *KeyedPRNG) Key() (key []byte) {
	return append([]byte(nil), prng.key...)
}

// Read reads bytes from the KeyedPRNG into sum.
func (prng *KeyedPRNG) Read(sum []byte) (n int, err error) {
	return prng.xof.Read(sum)
}

// Reset resets the PRNG to its initial state.
func (prng *KeyedPRNG) Reset() {
	prng.xof.Reset()
}

// Float64 draws a uniform value in [0, 1) from the PRNG.
func Float64(prng PRNG) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(prng, buf[:]); err != nil {
		return 0, err
	}
	u := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53), nil
}
