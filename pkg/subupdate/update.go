package subupdate

import (
	"errors"

	"github.com/pion/logging"

	ectfcrypto "github.com/ectf-pp/decoder/pkg/crypto"
	"github.com/ectf-pp/decoder/pkg/fishield"
	"github.com/ectf-pp/decoder/pkg/subscription"
)

// ErrBenign is returned for rejections that aren't forgery: an attempt to
// update channel 0, or a table with no room for a new channel.
var ErrBenign = errors.New("subupdate: rejected (not an attack)")

// ErrAttack is returned once the pipeline has escalated to the lockout
// timer: a bad signature, an ID-key decryption failure, an inverted
// [start,end] range, or a corrupted magic word past both crypto checks.
var ErrAttack = errors.New("subupdate: attack detected")

// AttackReporter mirrors decode.AttackReporter so this package doesn't
// need to import decode for a one-method interface.
type AttackReporter interface {
	AttackDetected() error
}

// Applier applies a validated subscription package to the table.
type Applier struct {
	Store         *subscription.Store
	Lockout       AttackReporter
	EncoderPubKey [ectfcrypto.SignatureKeySize]byte
	IDKey         [ectfcrypto.AEADKeySize]byte
	Logger        logging.LeveledLogger
}

func (a *Applier) logf(format string, args ...any) {
	if a.Logger != nil {
		a.Logger.Debugf(format, args...)
	}
}

func (a *Applier) reportAttack() {
	if a.Lockout == nil {
		return
	}
	if err := a.Lockout.AttackDetected(); err != nil {
		a.logf("subupdate: lockout bookkeeping failed: %v", err)
	}
}

// Apply validates pkg and, if valid, writes it into the subscription
// table, replacing any existing entry for the same channel or occupying
// the first empty slot.
func (a *Applier) Apply(pkg *Package) error {
	sigFailed := fishield.MultiIfFailin(func() bool {
		return ectfcrypto.VerifySignature(pkg.Signature[:], pkg.payload(), a.EncoderPubKey[:]) != nil
	})
	if sigFailed {
		a.logf("subupdate: outer signature invalid")
		a.reportAttack()
		return ErrAttack
	}

	plain, err := ectfcrypto.AEADDecrypt(pkg.Ciphertext[:], a.IDKey[:])
	if err != nil {
		a.logf("subupdate: ID-key decryption failed")
		a.reportAttack()
		return ErrAttack
	}

	slot, err := subscription.Decode(plain)
	if err != nil {
		a.reportAttack()
		return ErrAttack
	}

	if slot.Channel == 0 {
		a.logf("subupdate: rejected channel 0 update")
		return ErrBenign
	}

	if slot.End < slot.Start {
		a.logf("subupdate: inverted time range [%d,%d]", slot.Start, slot.End)
		a.reportAttack()
		return ErrAttack
	}

	if !slot.Committed() {
		a.logf("subupdate: decrypted package missing commit magic")
		a.reportAttack()
		return ErrAttack
	}

	if err := a.Store.PutForChannel(slot); err != nil {
		if errors.Is(err, subscription.ErrTableFull) {
			a.logf("subupdate: subscription table full")
			return ErrBenign
		}
		return err
	}

	return nil
}
