package crypto

import (
	"crypto/rand"
	"crypto/subtle"
)

// AEADKeySize is the width of the facade's symmetric AEAD key (kch, ID_KEY,
// and every derived leaf key all have this width).
const AEADKeySize = 32

// AEADNonceSize is the width of the nonce field in the wire ciphertext.
const AEADNonceSize = 16

// AEADMacSize is the width of the mac field in the wire ciphertext.
const AEADMacSize = 24

const aeadHMACTailSize = AEADMacSize - AESCCMTagSize

// AEADDecrypt authenticates and decrypts a wire-format ciphertext laid out as
// nonce(16B) || mac(24B) || body, using a 32-byte key. It returns
// ErrAEADAuthFailed on any tamper without disclosing partial plaintext.
//
// The wire nonce and the 32-byte key are expanded via HKDF-SHA256 into the
// 13-byte nonce and 16-byte subkey AES-CCM actually takes; CCM's own 16-byte
// tag fills the first 16 bytes of the mac field, and the remaining 8 bytes
// are an HMAC-SHA256 truncation over nonce||tag that binds the envelope
// metadata itself against tampering.
func AEADDecrypt(ciphertext, key []byte) ([]byte, error) {
	if len(key) != AEADKeySize {
		return nil, ErrInvalidKeySize
	}
	if len(ciphertext) < AEADNonceSize+AEADMacSize {
		return nil, ErrCiphertextTooShort
	}

	nonce := ciphertext[:AEADNonceSize]
	mac := ciphertext[AEADNonceSize : AEADNonceSize+AEADMacSize]
	body := ciphertext[AEADNonceSize+AEADMacSize:]

	ccmNonce, subkey, err := deriveCCMParams(key, nonce)
	if err != nil {
		return nil, err
	}

	ccmTag := mac[:AESCCMTagSize]
	hmacTail := mac[AESCCMTagSize:]

	expectedTail := HMACSHA256Slice(key, append(append([]byte{}, nonce...), ccmTag...))[:aeadHMACTailSize]
	if subtle.ConstantTimeCompare(hmacTail, expectedTail) != 1 {
		return nil, ErrAEADAuthFailed
	}

	ccm, err := NewAESCCM(subkey)
	if err != nil {
		return nil, err
	}

	plaintext, err := ccm.Open(ccmNonce, append(append([]byte{}, body...), ccmTag...), nil)
	if err != nil {
		return nil, ErrAEADAuthFailed
	}
	return plaintext, nil
}

// AEADEncrypt produces a wire-format ciphertext (nonce(16B) || mac(24B) ||
// body) for plaintext under a 32-byte key, generating a fresh random nonce.
// It is the inverse of AEADDecrypt, used by test/provisioning tooling that
// needs to produce packets the decoder will accept.
func AEADEncrypt(plaintext, key []byte) ([]byte, error) {
	if len(key) != AEADKeySize {
		return nil, ErrInvalidKeySize
	}

	nonce := make([]byte, AEADNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	ccmNonce, subkey, err := deriveCCMParams(key, nonce)
	if err != nil {
		return nil, err
	}

	ccm, err := NewAESCCM(subkey)
	if err != nil {
		return nil, err
	}

	sealed, err := ccm.Seal(ccmNonce, plaintext, nil)
	if err != nil {
		return nil, err
	}
	body := sealed[:len(sealed)-AESCCMTagSize]
	ccmTag := sealed[len(sealed)-AESCCMTagSize:]

	hmacTail := HMACSHA256Slice(key, append(append([]byte{}, nonce...), ccmTag...))[:aeadHMACTailSize]

	out := make([]byte, 0, AEADNonceSize+AEADMacSize+len(body))
	out = append(out, nonce...)
	out = append(out, ccmTag...)
	out = append(out, hmacTail...)
	out = append(out, body...)
	return out, nil
}

// deriveCCMParams expands the wire nonce and facade key into the 13-byte CCM
// nonce and 16-byte AES-128 subkey via HKDF-SHA256.
func deriveCCMParams(key, nonce []byte) (ccmNonce, subkey []byte, err error) {
	expanded, err := HKDFSHA256(key, nonce, []byte("decoder-aead-ccm-params"), AESCCMNonceSize+AESCCMKeySize)
	if err != nil {
		return nil, nil, err
	}
	return expanded[:AESCCMNonceSize], expanded[AESCCMNonceSize:], nil
}
