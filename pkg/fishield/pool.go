package fishield

import (
	"errors"

	ectfcrypto "github.com/ectf-pp/decoder/pkg/crypto"
)

// PoolSize is the number of entropy bytes held by the pool at once.
const PoolSize = 128

// ErrPoolExhausted is returned by Delay when UpdatePool has never been
// called or the pool has been fully consumed since the last refill. The
// caller should treat this the same as any other unrecoverable invariant
// violation (see pkg/device's Halt handling).
var ErrPoolExhausted = errors.New("fishield: entropy pool exhausted")

// Pool is the small byte pool that feeds the FI shield's per-call jitter.
// It is refilled from the TRNG, expanded via keyed hash, two 64-byte
// blocks at a time, and XOR-mixed into any residual entropy so freshness
// carries over across refills instead of being discarded.
type Pool struct {
	source TRNGSource
	data   [PoolSize]byte
	cursor int
	filled bool
}

// NewPool constructs a Pool drawing fresh entropy from source.
func NewPool(source TRNGSource) *Pool {
	return &Pool{source: source}
}

// Empty reports whether the pool has no unconsumed bytes left.
func (p *Pool) Empty() bool {
	return !p.filled || p.cursor >= PoolSize
}

// UpdatePool refills the pool: 8 fresh TRNG bytes are expanded into two
// 64-byte blocks (block index 0 and 1 as the hashed "message", the TRNG
// sample as the key) and XOR-mixed into the existing pool contents.
func (p *Pool) UpdatePool() error {
	sample, err := p.source.ReadUnbiased(8)
	if err != nil {
		return err
	}

	for i := uint32(0); i < 2; i++ {
		block, err := ectfcrypto.ExpandEntropy(sample, i)
		if err != nil {
			return err
		}
		for j, b := range block {
			p.data[int(i)*64+j] ^= b
		}
	}

	p.cursor = 0
	p.filled = true
	return nil
}

// nextByte consumes and returns the next pool byte.
func (p *Pool) nextByte() (byte, error) {
	if p.Empty() {
		return 0, ErrPoolExhausted
	}
	b := p.data[p.cursor]
	p.cursor++
	return b, nil
}
