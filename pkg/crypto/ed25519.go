package crypto

import (
	"golang.org/x/crypto/ed25519"
)

// SignatureKeySize is the width of an Ed25519 public or private seed key.
const SignatureKeySize = ed25519.PublicKeySize

// SignatureSize is the width of an Ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// VerifySignature checks a 64-byte signature over message against a 32-byte
// public key. It returns ErrSignatureInvalid on any mismatch and never
// returns a partial or advisory result.
func VerifySignature(sig, message, pubkey []byte) error {
	if len(pubkey) != SignatureKeySize {
		return ErrInvalidKeySize
	}
	if len(sig) != SignatureSize {
		return ErrSignatureInvalid
	}
	if !ed25519.Verify(ed25519.PublicKey(pubkey), message, sig) {
		return ErrSignatureInvalid
	}
	return nil
}

// Sign produces a 64-byte signature over message using a 64-byte Ed25519
// private key, playing the encoder's role; the decoder never signs
// anything. cmd/subgen and the package tests sign with crypto/ed25519
// directly rather than through this function.
func Sign(privkey, message []byte) ([]byte, error) {
	if len(privkey) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKeySize
	}
	return ed25519.Sign(ed25519.PrivateKey(privkey), message), nil
}
