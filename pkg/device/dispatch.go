package device

import (
	"github.com/ectf-pp/decoder/pkg/decode"
	"github.com/ectf-pp/decoder/pkg/hostlink"
	"github.com/ectf-pp/decoder/pkg/subupdate"
)

// maxMsgLen is the largest payload any command carries: a
// subscription-update package is the biggest of the three.
const maxMsgLen = subupdate.PackageSize

// Serve runs the main command loop over conn until it returns an error
// (typically because the link closed). Each iteration advances the
// entropy pool once, reads one command, and — after the same per-command
// jitter delay the firmware injects ahead of every dispatch, including an
// invalid message type — handles it.
func (d *Device) Serve(conn hostlink.Conn) error {
	for {
		if err := d.UpdatePool(); err != nil {
			return err
		}

		msgType, payload, err := hostlink.GetMsg(conn, maxMsgLen)
		if err != nil {
			d.sendError(conn, "failed to get message")
			continue
		}

		if err := d.RangedDelay(); err != nil {
			return err
		}

		switch msgType {
		case hostlink.ListMsg:
			d.handleList(conn, payload)
		case hostlink.DecodeMsg:
			d.handleDecode(conn, payload)
		case hostlink.SubscribeMsg:
			d.handleSubscribe(conn, payload)
		default:
			d.sendError(conn, "invalid message type received")
		}
	}
}

func (d *Device) sendError(conn hostlink.Conn, msg string) {
	if err := hostlink.SendMsg(conn, hostlink.ErrorMsg, []byte(msg)); err != nil {
		d.logf("dispatch: failed to send error %q: %v", msg, err)
	}
}

func (d *Device) handleList(conn hostlink.Conn, payload []byte) {
	if len(payload) != 0 {
		d.sendError(conn, "invalid list msg length")
		return
	}
	resp, err := d.List()
	if err != nil {
		d.sendError(conn, "failed to list subscriptions")
		return
	}
	if err := hostlink.SendMsg(conn, hostlink.ListMsg, resp); err != nil {
		d.logf("dispatch: failed to send list response: %v", err)
	}
}

func (d *Device) handleDecode(conn hostlink.Conn, payload []byte) {
	if len(payload) != decode.FramePacketSize {
		d.sendError(conn, "invalid decode msg length")
		return
	}
	frame, err := d.Decode(payload)
	if err != nil {
		d.sendError(conn, "failed to decode frame")
		return
	}
	if err := hostlink.SendMsg(conn, hostlink.DecodeMsg, frame); err != nil {
		d.logf("dispatch: failed to send decoded frame: %v", err)
	}
}

func (d *Device) handleSubscribe(conn hostlink.Conn, payload []byte) {
	if len(payload) != subupdate.PackageSize {
		d.sendError(conn, "invalid subscribe msg length")
		return
	}
	if err := d.Subscribe(payload); err != nil {
		d.sendError(conn, "failed to update subscription")
		return
	}
	if err := hostlink.SendMsg(conn, hostlink.SubscribeMsg, nil); err != nil {
		d.logf("dispatch: failed to ack subscribe: %v", err)
	}
}
