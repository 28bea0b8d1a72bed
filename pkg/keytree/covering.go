package keytree

// CoveringSet computes the minimum set of key-tree vertices whose leaves
// exactly partition [start, end], in the same order a decoder's
// KeyIndexForTime expects to find them in a subscription's ktree array:
// vertices discovered from the low end first (ascending), followed by
// vertices discovered from the high end (in decreasing-prefix order).
//
// This mirrors the decode-side narrowing loop run in reverse: a vertex is
// peeled off the low end whenever it's odd, the high end whenever it's
// even, and the remaining range otherwise shrinks by one bit. A subscribed
// range of up to 2^64 timestamps always covers in at most 126 vertices.
func CoveringSet(start, end uint64) []Vertex {
	var lo, hi []Vertex
	bits := uint8(MaxTreeHeight)

	for start <= end {
		switch {
		case start&1 == 0 && end&1 == 1:
			start >>= 1
			end >>= 1
			bits--
		case start&1 == 1:
			lo = append(lo, Vertex{Prefix: start, Bits: bits})
			start++
		default:
			hi = append(hi, Vertex{Prefix: end, Bits: bits})
			if end == 0 {
				start = 1
				end = 0
				break
			}
			end--
		}
	}

	for i, j := 0, len(hi)-1; i < j; i, j = i+1, j-1 {
		hi[i], hi[j] = hi[j], hi[i]
	}
	return append(lo, hi...)
}
