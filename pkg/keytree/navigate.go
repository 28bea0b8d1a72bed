package keytree

import (
	"math"

	"github.com/ectf-pp/decoder/pkg/fishield"
	"github.com/ectf-pp/decoder/pkg/subscription"
)

// NoIndex is returned by KeyIndexForTime when t falls outside the
// subscription's [Start, End] range.
const NoIndex = math.MaxInt

// KeyIndexForTime walks the subscription's covering set to find the
// interior tree-key entry that is an ancestor of (or equal to) the leaf for
// t, narrowing the [start, end] prefix range one bit at a time and peeling
// off whichever endpoint is a packaged key until t is found or the range is
// exhausted.
//
// The out-of-range check is evaluated once, through a single
// fishield.MultiIfFailin guard, matching the original firmware: a fault
// that flips that one comparison is the only way to smuggle a timestamp
// past subscription bounds, so later loop iterations don't re-check it.
func KeyIndexForTime(sub *subscription.Slot, t uint64) (int, Vertex, bool) {
	startIdx := 0
	endIdx := int(sub.KeyCount) - 1

	startPrefix := sub.Start
	endPrefix := sub.End
	bits := uint8(MaxTreeHeight)

	if fishield.MultiIfFailin(func() bool { return t < startPrefix || endPrefix < t }) {
		return NoIndex, Vertex{}, false
	}

	for {
		switch {
		case startPrefix&1 == 0 && endPrefix&1 == 1:
			startPrefix >>= 1
			endPrefix >>= 1
			t >>= 1
			bits--

		case startPrefix&1 == 1:
			if startPrefix == t {
				return startIdx, Vertex{Prefix: startPrefix, Bits: bits}, true
			}
			startPrefix++
			startIdx++

		default: // endPrefix & 1 == 0
			if endPrefix == t {
				return endIdx, Vertex{Prefix: endPrefix, Bits: bits}, true
			}
			endPrefix--
			endIdx--
		}
	}
}
