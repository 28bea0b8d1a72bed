// Package fishield provides the fault-injection hardening primitives used
// around every security-critical branch and crypto call: redundant-check
// guards, and jitter delays drawn from a keyed-hash-expanded entropy pool.
package fishield

import (
	"crypto/rand"
	"encoding/binary"
)

// TRNGSource is the hardware true-random-number-generator contract. A real
// target would wire this to a whitened hardware TRNG (Von Neumann debiasing
// over a noisy oscillator); there is no such peripheral to drive here, so
// DefaultTRNG stands in with the platform CSPRNG. True RNG generation is
// explicitly out of scope for this decoder (see spec §1 Non-goals) — this
// interface only exists so the entropy pool has something to refill from.
type TRNGSource interface {
	// ReadUnbiased fills a buffer of the given length with random bytes.
	ReadUnbiased(length int) ([]byte, error)
	// ReadU16 returns a single random 16-bit sample.
	ReadU16() (uint16, error)
}

// DefaultTRNG is the crypto/rand-backed stand-in for the hardware TRNG.
type DefaultTRNG struct{}

// ReadUnbiased implements TRNGSource.
func (DefaultTRNG) ReadUnbiased(length int) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadU16 implements TRNGSource.
func (DefaultTRNG) ReadU16() (uint16, error) {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}
