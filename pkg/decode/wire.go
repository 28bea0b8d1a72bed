// Package decode implements the two-layer frame decode pipeline: outer
// signature and per-channel AEAD, then key-tree navigation and a
// per-timestamp inner AEAD (spec §4.6).
package decode

import (
	"encoding/binary"
	"errors"

	ectfcrypto "github.com/ectf-pp/decoder/pkg/crypto"
)

// MaxFrameSize is the largest plaintext frame payload a decoded frame_data
// record may carry.
const MaxFrameSize = 64

// ErrMalformed is returned by the Decode functions in this file when an
// input is not exactly the expected size.
var ErrMalformed = errors.New("decode: malformed wire encoding")

// FrameData is the innermost decrypted payload: a length-prefixed frame.
type FrameData struct {
	Length uint32
	Frame  [MaxFrameSize]byte
}

// FrameDataSize is the fixed encoded size of FrameData.
const FrameDataSize = 4 + MaxFrameSize

func (f *FrameData) Encode() []byte {
	buf := make([]byte, FrameDataSize)
	binary.LittleEndian.PutUint32(buf[:4], f.Length)
	copy(buf[4:], f.Frame[:])
	return buf
}

func DecodeFrameData(buf []byte) (*FrameData, error) {
	if len(buf) != FrameDataSize {
		return nil, ErrMalformed
	}
	f := &FrameData{}
	f.Length = binary.LittleEndian.Uint32(buf[:4])
	copy(f.Frame[:], buf[4:])
	return f, nil
}

// FrameCh is the per-channel-AEAD plaintext: a timestamp and the
// inner-AEAD ciphertext addressed by that timestamp's key-tree leaf.
type FrameCh struct {
	Timestamp  uint64
	Ciphertext [ectfcrypto.AEADMacSize + ectfcrypto.AEADNonceSize + FrameDataSize]byte
}

// FrameChSize is the fixed encoded size of FrameCh (120 bytes), including
// 4 bytes of trailing zero padding carried over from the firmware's layout.
const FrameChSize = 8 + len(FrameCh{}.Ciphertext) + 4

func (f *FrameCh) Encode() []byte {
	buf := make([]byte, FrameChSize)
	binary.LittleEndian.PutUint64(buf[:8], f.Timestamp)
	copy(buf[8:8+len(f.Ciphertext)], f.Ciphertext[:])
	return buf
}

func DecodeFrameCh(buf []byte) (*FrameCh, error) {
	if len(buf) != FrameChSize {
		return nil, ErrMalformed
	}
	f := &FrameCh{}
	f.Timestamp = binary.LittleEndian.Uint64(buf[:8])
	copy(f.Ciphertext[:], buf[8:8+len(f.Ciphertext)])
	return f, nil
}

// FramePacket is the wire message a decode command carries: a channel id
// and outer-AEAD ciphertext, signed over the whole payload.
type FramePacket struct {
	ChannelID uint32
	EncFrame  [ectfcrypto.AEADMacSize + ectfcrypto.AEADNonceSize + FrameChSize]byte
	Signature [ectfcrypto.SignatureSize]byte
}

// FramePacketSize is the fixed encoded size of FramePacket.
const FramePacketSize = 4 + len(FramePacket{}.EncFrame) + ectfcrypto.SignatureSize

// PayloadSize is the length of the signed portion (everything but the
// trailing signature).
const PayloadSize = FramePacketSize - ectfcrypto.SignatureSize

func (f *FramePacket) payload() []byte {
	buf := make([]byte, PayloadSize)
	binary.LittleEndian.PutUint32(buf[:4], f.ChannelID)
	copy(buf[4:], f.EncFrame[:])
	return buf
}

func (f *FramePacket) Encode() []byte {
	buf := make([]byte, FramePacketSize)
	copy(buf[:PayloadSize], f.payload())
	copy(buf[PayloadSize:], f.Signature[:])
	return buf
}

func DecodeFramePacket(buf []byte) (*FramePacket, error) {
	if len(buf) != FramePacketSize {
		return nil, ErrMalformed
	}
	f := &FramePacket{}
	f.ChannelID = binary.LittleEndian.Uint32(buf[:4])
	copy(f.EncFrame[:], buf[4:PayloadSize])
	copy(f.Signature[:], buf[PayloadSize:])
	return f, nil
}
