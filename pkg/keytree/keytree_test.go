package keytree

import (
	"testing"

	"github.com/ectf-pp/decoder/pkg/subscription"
)

func TestCoveringSetRoundTrip(t *testing.T) {
	cases := []struct {
		name       string
		start, end uint64
	}{
		{"single leaf", 42, 42},
		{"small range", 100, 115},
		{"power of two aligned", 0, 15},
		{"full low tree", 0, 0xFFFF},
		{"odd bounds", 7, 9000},
		{"zero start large end", 0, 1000},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			vertices := CoveringSet(c.start, c.end)
			if len(vertices) == 0 {
				t.Fatalf("CoveringSet(%d, %d) returned no vertices", c.start, c.end)
			}
			if len(vertices) > 126 {
				t.Fatalf("CoveringSet(%d, %d) returned %d vertices, want <= 126", c.start, c.end, len(vertices))
			}

			sub := &subscription.Slot{Start: c.start, End: c.end, KeyCount: uint32(len(vertices))}
			for i := range vertices {
				sub.KTree[i] = [16]byte{byte(i + 1)}
			}

			// Every leaf in [start, end] must resolve to exactly one
			// covering vertex that is its ancestor (or itself).
			probe := func(ts uint64) {
				idx, vertex, ok := KeyIndexForTime(sub, ts)
				if !ok {
					t.Fatalf("KeyIndexForTime(%d) not found within [%d,%d]", ts, c.start, c.end)
				}
				if idx < 0 || idx >= len(vertices) {
					t.Fatalf("KeyIndexForTime(%d) returned out-of-range index %d", ts, idx)
				}
				shift := MaxTreeHeight - vertex.Bits
				if vertex.Bits < MaxTreeHeight && ts>>shift != vertex.Prefix {
					t.Fatalf("ts %d not under resolved vertex prefix %d bits %d", ts, vertex.Prefix, vertex.Bits)
				}
			}

			probe(c.start)
			probe(c.end)
			if c.end > c.start {
				probe((c.start + c.end) / 2)
			}
		})
	}
}

func TestKeyIndexForTimeOutOfRange(t *testing.T) {
	sub := &subscription.Slot{Start: 100, End: 200, KeyCount: 1}
	sub.KTree[0] = [16]byte{1}

	for _, ts := range []uint64{0, 99, 201, 1 << 40} {
		if _, _, ok := KeyIndexForTime(sub, ts); ok {
			t.Fatalf("KeyIndexForTime(%d) should be out of range for [100,200]", ts)
		}
	}
}

func TestDeriveTreeKeyLeafShortCircuit(t *testing.T) {
	parentKey := make([]byte, 16)
	for i := range parentKey {
		parentKey[i] = byte(i)
	}
	vertex := Vertex{Prefix: 12345, Bits: MaxTreeHeight}

	key, err := DeriveTreeKey(12345, parentKey, vertex)
	if err != nil {
		t.Fatalf("DeriveTreeKey: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("leaf symmetric key length = %d, want 32", len(key))
	}
}

func TestDeriveTreeKeyDeterministic(t *testing.T) {
	parentKey := make([]byte, 16)
	for i := range parentKey {
		parentKey[i] = byte(2 * i)
	}
	vertex := Vertex{Prefix: 0, Bits: 0}

	k1, err := DeriveTreeKey(555, parentKey, vertex)
	if err != nil {
		t.Fatalf("DeriveTreeKey: %v", err)
	}
	k2, err := DeriveTreeKey(555, parentKey, vertex)
	if err != nil {
		t.Fatalf("DeriveTreeKey: %v", err)
	}
	if string(k1) != string(k2) {
		t.Fatalf("DeriveTreeKey not deterministic")
	}

	k3, err := DeriveTreeKey(556, parentKey, vertex)
	if err != nil {
		t.Fatalf("DeriveTreeKey: %v", err)
	}
	if string(k1) == string(k3) {
		t.Fatalf("DeriveTreeKey produced same key for different timestamps")
	}
}
