package subscription

import "encoding/binary"

// channelInfoSize is the encoded size of one ChannelListEntry: channel (4
// bytes) plus a 64-bit start/end split into two 32-bit halves apiece, to
// match the wire layout's alignment.
const channelInfoSize = 4 + 4 + 4 + 4 + 4

// EncodeList serializes entries into the LIST command's response body: a
// uint32 count followed by that many fixed-size records.
func EncodeList(entries []ChannelListEntry) []byte {
	buf := make([]byte, 4+channelInfoSize*len(entries))
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(entries)))

	off := 4
	for _, e := range entries {
		binary.LittleEndian.PutUint32(buf[off:], e.Channel)
		binary.LittleEndian.PutUint32(buf[off+4:], uint32(e.Start))
		binary.LittleEndian.PutUint32(buf[off+8:], uint32(e.Start>>32))
		binary.LittleEndian.PutUint32(buf[off+12:], uint32(e.End))
		binary.LittleEndian.PutUint32(buf[off+16:], uint32(e.End>>32))
		off += channelInfoSize
	}
	return buf
}
