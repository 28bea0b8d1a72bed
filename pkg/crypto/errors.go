package crypto

import "errors"

// ErrAEADAuthFailed is returned by AEADDecrypt when the tag does not verify,
// either because the key is wrong or the ciphertext has been tampered with.
// Callers must not inspect any partial plaintext when this is returned.
var ErrAEADAuthFailed = errors.New("crypto: aead authentication failed")

// ErrSignatureInvalid is returned by VerifySignature when the signature does
// not verify against the given message and public key.
var ErrSignatureInvalid = errors.New("crypto: signature verification failed")

// ErrInvalidKeySize is returned when a key argument has the wrong length for
// the operation it's passed to.
var ErrInvalidKeySize = errors.New("crypto: invalid key size")

// ErrCiphertextTooShort is returned when a wire-format ciphertext is too
// short to contain its nonce and mac fields.
var ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")
