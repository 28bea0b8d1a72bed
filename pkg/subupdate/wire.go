// Package subupdate implements the subscription-update pipeline: signature
// and ID-keyed AEAD over an incoming subscription package, validation, and
// placement into the subscription table (spec §4.5).
package subupdate

import (
	"encoding/binary"
	"errors"

	ectfcrypto "github.com/ectf-pp/decoder/pkg/crypto"
	"github.com/ectf-pp/decoder/pkg/subscription"
)

// ErrMalformed is returned when a wire encoding is not exactly the
// expected size.
var ErrMalformed = errors.New("subupdate: malformed wire encoding")

// Package is the wire message an UPDATE_SUBSCRIPTION_MSG command carries.
type Package struct {
	DecoderID  uint32
	Ciphertext [ectfcrypto.AEADMacSize + ectfcrypto.AEADNonceSize + subscription.EncodedSize]byte
	Signature  [ectfcrypto.SignatureSize]byte
}

// PackageSize is the fixed encoded size of Package.
const PackageSize = 4 + len(Package{}.Ciphertext) + ectfcrypto.SignatureSize

// PayloadSize is the length of the signed portion (decoder id + ciphertext).
const PayloadSize = PackageSize - ectfcrypto.SignatureSize

func (p *Package) payload() []byte {
	buf := make([]byte, PayloadSize)
	binary.LittleEndian.PutUint32(buf[:4], p.DecoderID)
	copy(buf[4:], p.Ciphertext[:])
	return buf
}

func (p *Package) Encode() []byte {
	buf := make([]byte, PackageSize)
	copy(buf[:PayloadSize], p.payload())
	copy(buf[PayloadSize:], p.Signature[:])
	return buf
}

func Decode(buf []byte) (*Package, error) {
	if len(buf) != PackageSize {
		return nil, ErrMalformed
	}
	p := &Package{}
	p.DecoderID = binary.LittleEndian.Uint32(buf[:4])
	copy(p.Ciphertext[:], buf[4:PayloadSize])
	copy(p.Signature[:], buf[PayloadSize:])
	return p, nil
}
