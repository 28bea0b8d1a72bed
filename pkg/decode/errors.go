package decode

import "errors"

// errBenign is returned for drops that don't indicate forgery: an
// unsubscribed channel, an invalid outer signature, a non-monotonic
// timestamp, or a timestamp outside the subscription's covered range. The caller reports these to the host
// as a plain command failure with no lockout.
var errBenign = errors.New("decode: dropped (not an attack)")

// errAttack is returned once a cryptographic check fails in a way that
// implies deliberate forgery rather than a stale or unrelated packet. The
// caller has already escalated to the lockout timer by the time this is
// returned.
var errAttack = errors.New("decode: attack detected")

// IsAttack reports whether err is the attack verdict from Decode, as
// opposed to a benign drop.
func IsAttack(err error) bool {
	return errors.Is(err, errAttack)
}
