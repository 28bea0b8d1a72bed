package crypto

import (
	"golang.org/x/crypto/blake2b"
)

// TreeKeySize is the width of an interior key-tree node key.
const TreeKeySize = 16

// TreeSideConstSize is the width of the LEFT_TREE_KEY/RIGHT_TREE_KEY constants.
const TreeSideConstSize = 32

// KDFChild derives a child tree-node key from a 16-byte parent key and one
// of the two 32-byte globally fixed side constants (LEFT_TREE_KEY or
// RIGHT_TREE_KEY). It is an unkeyed BLAKE2b hash of parent||sideConst,
// truncated to 16 bytes.
func KDFChild(parent, sideConst []byte) ([]byte, error) {
	if len(parent) != TreeKeySize {
		return nil, ErrInvalidKeySize
	}
	if len(sideConst) != TreeSideConstSize {
		return nil, ErrInvalidKeySize
	}

	h, err := blake2b.New(TreeKeySize, nil)
	if err != nil {
		return nil, err
	}
	h.Write(parent)
	h.Write(sideConst)
	return h.Sum(nil), nil
}

// KDFLeaf widens a 16-byte leaf tree-node key into a 32-byte symmetric AEAD
// key. It is an unkeyed BLAKE2b hash of the tree key.
func KDFLeaf(treeKey []byte) ([]byte, error) {
	if len(treeKey) != TreeKeySize {
		return nil, ErrInvalidKeySize
	}

	h, err := blake2b.New(AEADKeySize, nil)
	if err != nil {
		return nil, err
	}
	h.Write(treeKey)
	return h.Sum(nil), nil
}

// ExpandEntropy expands an 8-byte TRNG sample into a 64-byte block using
// BLAKE2b keyed by the sample, with blockIndex as the hashed message — the
// same per-HKDF-Expand-like construction the entropy pool refill uses twice
// per call (blockIndex 0 and 1) to fill a 128-byte pool.
func ExpandEntropy(sample []byte, blockIndex uint32) ([]byte, error) {
	h, err := blake2b.New(64, sample)
	if err != nil {
		return nil, err
	}
	idx := []byte{byte(blockIndex), byte(blockIndex >> 8), byte(blockIndex >> 16), byte(blockIndex >> 24)}
	h.Write(idx)
	return h.Sum(nil), nil
}
