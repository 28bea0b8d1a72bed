package keytree

import ectfcrypto "github.com/ectf-pp/decoder/pkg/crypto"

// DeriveTreeKey derives the frame key for timestamp t given the key-tree
// entry found by KeyIndexForTime: parentKey is that entry's stored key and
// parentVertex its position. Three cases, matching the tree's shape:
//
//   - parentVertex is already the leaf for t (Bits == MaxTreeHeight): the
//     stored key IS the leaf key, no descent needed.
//   - parentVertex is the root (Bits == 0): walk the full 64-bit path.
//   - otherwise: walk only the remaining low bits below parentVertex,
//     found by XORing t against the parent's prefix shifted into position.
func DeriveTreeKey(t uint64, parentKey []byte, parentVertex Vertex) ([]byte, error) {
	var key []byte

	switch {
	case parentVertex.Bits == MaxTreeHeight:
		key = append([]byte(nil), parentKey...)

	case parentVertex.Bits == 0:
		path := Vertex{Prefix: t, Bits: MaxTreeHeight}
		derived, err := deriveTreeKeyHelper(path, parentKey)
		if err != nil {
			return nil, err
		}
		key = derived

	default:
		path := Vertex{
			Prefix: t ^ (parentVertex.Prefix << (MaxTreeHeight - parentVertex.Bits)),
			Bits:   MaxTreeHeight - parentVertex.Bits,
		}
		derived, err := deriveTreeKeyHelper(path, parentKey)
		if err != nil {
			return nil, err
		}
		key = derived
	}

	return ectfcrypto.KDFLeaf(key)
}

// deriveTreeKeyHelper descends path.Bits levels from parentKey, following
// path.Prefix's bits most-significant-first within that span.
func deriveTreeKeyHelper(path Vertex, parentKey []byte) ([]byte, error) {
	key := append([]byte(nil), parentKey...)

	for level := uint8(0); level < path.Bits; level++ {
		bit := path.Bits - level - 1
		var side []byte
		if path.Prefix&(1<<bit) == 0 {
			side = LeftSideConst[:]
		} else {
			side = RightSideConst[:]
		}
		next, err := ectfcrypto.KDFChild(key, side)
		if err != nil {
			return nil, err
		}
		key = next
	}

	return key, nil
}
