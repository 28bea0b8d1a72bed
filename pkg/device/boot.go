package device

import (
	"github.com/ectf-pp/decoder/pkg/decode"
	"github.com/ectf-pp/decoder/pkg/subscription"
	"github.com/ectf-pp/decoder/pkg/subupdate"
)

// Boot runs the lockout replay (spec §4.8: a corrupted or in-progress
// lockout from a previous run must finish counting down before anything
// else happens) and provisions channel 0 into slot 0 if it isn't already
// committed there.
func (d *Device) Boot() error {
	if err := d.lockout.Process(); err != nil {
		return err
	}

	if _, err := d.store.Get(0); err != nil {
		d.logf("provisioning build-time channel 0")
		if err := d.store.Put(0, &d.config.Secrets.Channel0); err != nil {
			return err
		}
	}

	return nil
}

// List returns the LIST command's response body.
func (d *Device) List() ([]byte, error) {
	entries, err := d.store.List()
	if err != nil {
		return nil, err
	}
	return subscription.EncodeList(entries), nil
}

// UpdatePool advances the entropy pool once, matching the firmware's
// once-per-main-loop-iteration refresh (spec §4.2).
func (d *Device) UpdatePool() error {
	return d.pool.UpdatePool()
}

// RangedDelay injects the jittered delay the firmware runs once per
// dispatched command, ahead of any command-specific work.
func (d *Device) RangedDelay() error {
	return d.pool.RangedDelay()
}

// Decode runs the decode pipeline.
func (d *Device) Decode(packet []byte) ([]byte, error) {
	frame, err := decode.DecodeFramePacket(packet)
	if err != nil {
		return nil, err
	}
	return d.decoder.Decode(frame)
}

// Subscribe runs the subscription-update pipeline.
func (d *Device) Subscribe(packet []byte) error {
	pkg, err := subupdate.Decode(packet)
	if err != nil {
		return err
	}
	return d.updater.Apply(pkg)
}
