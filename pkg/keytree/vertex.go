// Package keytree implements navigation and key derivation over the
// logarithmic key tree a subscription's covering set is drawn from
// (spec §4.7).
package keytree

import ectfcrypto "github.com/ectf-pp/decoder/pkg/crypto"

// MaxTreeHeight is the depth of the complete binary tree timestamps are
// addressed in: a uint64 timestamp names one of 2^64 leaves.
const MaxTreeHeight = 64

// Vertex identifies a node in the key tree: Prefix holds the Bits-bit path
// from the root right-aligned, i.e. the top Bits bits of every timestamp
// under the node (Prefix == t >> (MaxTreeHeight - Bits)).
// Bits == MaxTreeHeight identifies a leaf; Bits == 0 identifies the root.
type Vertex struct {
	Prefix uint64
	Bits   uint8
}

// LeftSideConst and RightSideConst are the fixed 32-byte values mixed into
// a parent tree key to derive its left/right child, provisioned at build
// time alongside the other secret material (spec §6).
var (
	LeftSideConst  [ectfcrypto.TreeSideConstSize]byte
	RightSideConst [ectfcrypto.TreeSideConstSize]byte
)
