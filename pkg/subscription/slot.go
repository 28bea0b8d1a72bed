// Package subscription implements the subscription slot layout and the
// fixed-arity flash-backed store described in spec §3 and §4.4.
package subscription

import (
	"encoding/binary"
	"errors"

	ectfcrypto "github.com/ectf-pp/decoder/pkg/crypto"
)

// MaxChannelCount is the number of slots in the subscription table,
// including the build-time-provisioned channel-0 slot.
const MaxChannelCount = 9

// MaxTreeKeys is the maximum number of interior key-tree nodes a slot's
// covering set can hold (2*64 - 2).
const MaxTreeKeys = 126

// TreeKeySize is the width of a single interior tree key.
const TreeKeySize = ectfcrypto.TreeKeySize

// CommitMagic is the constant written last to mark a slot fully committed.
const CommitMagic uint32 = 0x41594E42

// EncodedSize is the exact on-the-wire/in-flash size of a Slot, in bytes.
const EncodedSize = MaxTreeKeys*TreeKeySize + ectfcrypto.AEADKeySize + 8 + 8 + 4 + 4 + 4 + 4

// PageSize is the flash erase-page size each slot occupies.
const PageSize = 8192

func init() {
	if EncodedSize != 2080 {
		panic("subscription: slot layout size drifted from the wire spec")
	}
}

// ErrMalformedSlot is returned by Decode when the input is not exactly
// EncodedSize bytes.
var ErrMalformedSlot = errors.New("subscription: malformed slot encoding")

// Slot is the decoded form of a subscription table entry.
type Slot struct {
	KTree    [MaxTreeKeys][TreeKeySize]byte
	KeyCount uint32
	Kch      [32]byte
	Start    uint64
	End      uint64
	Channel  uint32
	Magic    uint32
}

// Committed reports whether the slot's magic word marks it as fully
// written (spec §3 I1).
func (s *Slot) Committed() bool {
	return s.Magic == CommitMagic
}

// Encode serializes the slot into its fixed EncodedSize-byte wire/flash
// form. The magic word is placed last so that a torn write is detectable
// as an uncommitted (empty-reading) slot, per spec §9 "Flash-commit
// ordering".
func (s *Slot) Encode() []byte {
	buf := make([]byte, EncodedSize)
	off := 0
	for i := range s.KTree {
		copy(buf[off:off+TreeKeySize], s.KTree[i][:])
		off += TreeKeySize
	}
	copy(buf[off:off+32], s.Kch[:])
	off += 32
	binary.LittleEndian.PutUint64(buf[off:], s.Start)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], s.End)
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], s.Channel)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], s.KeyCount)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], s.Magic)
	off += 4
	// 4 bytes of trailing padding, left zero.
	return buf
}

// Decode parses a slot out of its fixed EncodedSize-byte form.
func Decode(buf []byte) (*Slot, error) {
	if len(buf) != EncodedSize {
		return nil, ErrMalformedSlot
	}

	s := &Slot{}
	off := 0
	for i := range s.KTree {
		copy(s.KTree[i][:], buf[off:off+TreeKeySize])
		off += TreeKeySize
	}
	copy(s.Kch[:], buf[off:off+32])
	off += 32
	s.Start = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	s.End = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	s.Channel = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	s.KeyCount = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	s.Magic = binary.LittleEndian.Uint32(buf[off:])
	off += 4

	return s, nil
}
