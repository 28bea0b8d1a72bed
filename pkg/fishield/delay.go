package fishield

import "time"

// shortDelayUnit scales a pool byte (0-255) into the ~0-7us short-jitter
// range.
const shortDelayUnit = 7 * time.Microsecond / 256

// rangedDelayBase and rangedDelayUnit map a 16-bit TRNG sample into the
// ~2-4ms ranged-jitter range used once per command before dispatch.
const (
	rangedDelayBase = 2 * time.Millisecond
	rangedDelayUnit = 2 * time.Millisecond / 65536
)

// Delay spends the next entropy-pool byte as a short jitter (~0-7us),
// consumed before every security-critical branch's returning side effect.
// Callers must have called UpdatePool since the last exhaustion; a pool
// drained between refills is an unrecoverable invariant violation.
func (p *Pool) Delay() error {
	b, err := p.nextByte()
	if err != nil {
		return err
	}
	time.Sleep(time.Duration(b) * shortDelayUnit)
	return nil
}

// RangedDelay spends a fresh 16-bit TRNG sample directly as a medium jitter
// (~2-4ms), applied once per host command before dispatch to mask
// command-type timing.
func (p *Pool) RangedDelay() error {
	sample, err := p.source.ReadU16()
	if err != nil {
		return err
	}
	time.Sleep(rangedDelayBase + time.Duration(sample)*rangedDelayUnit)
	return nil
}
