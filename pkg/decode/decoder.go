package decode

import (
	"github.com/pion/logging"

	ectfcrypto "github.com/ectf-pp/decoder/pkg/crypto"
	"github.com/ectf-pp/decoder/pkg/fishield"
	"github.com/ectf-pp/decoder/pkg/keytree"
	"github.com/ectf-pp/decoder/pkg/lockout"
	"github.com/ectf-pp/decoder/pkg/subscription"
)

// AttackReporter is the subset of lockout.Timer a Decoder needs: a way to
// register that the current input is not just malformed but actively
// forged, entering the persisted lockout countdown.
type AttackReporter interface {
	AttackDetected() error
}

var _ AttackReporter = (*lockout.Timer)(nil)

// Decoder runs the frame decode pipeline against a subscription store. It
// owns the two pieces of process-wide monotonicity state the pipeline
// depends on: once set, receivedFirstFrame is never cleared, matching the
// firmware's behavior of only ever moving current_timestamp forward for
// the lifetime of the process (spec §9 "Monotonicity state").
type Decoder struct {
	Store           *subscription.Store
	Pool            *fishield.Pool
	Lockout         AttackReporter
	EncoderPubKey   [ectfcrypto.SignatureKeySize]byte
	Logger          logging.LeveledLogger

	receivedFirstFrame bool
	currentTimestamp   uint64
}

func (d *Decoder) logf(format string, args ...any) {
	if d.Logger != nil {
		d.Logger.Debugf(format, args...)
	}
}

func (d *Decoder) delay() {
	if d.Pool != nil {
		_ = d.Pool.Delay()
	}
}

// Decode runs packet through the outer signature/AEAD layer, the
// monotonicity check, key-tree navigation, and the inner per-timestamp
// AEAD, returning the plaintext frame bytes on success.
//
// Errors fall into two classes: a benign ERROR (channel not subscribed,
// invalid outer signature, stale/future-duplicate timestamp, or a
// timestamp outside the
// subscription's covered range) simply drops the packet, while an attack
// verdict (outer AEAD failure past a passing signature, inner AEAD
// failure, or an oversized decrypted length) escalates into the lockout
// countdown before returning.
func (d *Decoder) Decode(packet *FramePacket) ([]byte, error) {
	_, sub, err := d.Store.GetByChannel(packet.ChannelID)
	d.delay()
	if err != nil {
		d.logf("decode: channel %d not subscribed", packet.ChannelID)
		return nil, errBenign
	}

	sigFailed := fishield.MultiIfFailin(func() bool {
		return ectfcrypto.VerifySignature(packet.Signature[:], packet.payload(), d.EncoderPubKey[:]) != nil
	})
	d.delay()
	if sigFailed {
		d.logf("decode: outer signature invalid")
		return nil, errBenign
	}

	d.delay()
	chPlain, err := ectfcrypto.AEADDecrypt(packet.EncFrame[:], sub.Kch[:])
	if err != nil {
		d.logf("decode: outer AEAD failed past a valid signature")
		d.reportAttack()
		return nil, errAttack
	}
	frameCh, err := DecodeFrameCh(chPlain)
	if err != nil {
		d.reportAttack()
		return nil, errAttack
	}

	d.delay()
	if !d.receivedFirstFrame || frameCh.Timestamp > d.currentTimestamp {
		d.receivedFirstFrame = true
		d.currentTimestamp = frameCh.Timestamp
	} else {
		d.logf("decode: timestamp %d not newer than %d", frameCh.Timestamp, d.currentTimestamp)
		return nil, errBenign
	}

	index, vertex, ok := keytree.KeyIndexForTime(sub, frameCh.Timestamp)
	d.delay()
	if !ok {
		d.logf("decode: timestamp %d outside subscription range", frameCh.Timestamp)
		return nil, errBenign
	}

	d.delay()
	treeKey, err := keytree.DeriveTreeKey(frameCh.Timestamp, sub.KTree[index][:], vertex)
	if err != nil {
		return nil, err
	}

	d.delay()
	dataPlain, err := ectfcrypto.AEADDecrypt(frameCh.Ciphertext[:], treeKey)
	if err != nil {
		d.logf("decode: inner AEAD failed")
		d.reportAttack()
		return nil, errAttack
	}
	frameData, err := DecodeFrameData(dataPlain)
	if err != nil {
		d.reportAttack()
		return nil, errAttack
	}

	d.delay()
	if frameData.Length > MaxFrameSize {
		d.logf("decode: decrypted length %d exceeds max frame size", frameData.Length)
		d.reportAttack()
		return nil, errAttack
	}

	// Re-commit the timestamp after a full round trip, as the firmware
	// does, even though it was already set above.
	d.currentTimestamp = frameCh.Timestamp

	return frameData.Frame[:frameData.Length], nil
}

func (d *Decoder) reportAttack() {
	if d.Lockout == nil {
		return
	}
	if err := d.Lockout.AttackDetected(); err != nil {
		d.logf("decode: lockout bookkeeping failed: %v", err)
	}
}
