// Package hostlink implements the host-facing framing protocol: a
// magic-byte-prefixed, type-tagged header followed by a chunked,
// per-chunk-acknowledged body (spec §4.9).
package hostlink

import (
	"errors"
	"io"
)

// MsgType is the single-character type tag carried in every header.
type MsgType byte

const (
	DecodeMsg    MsgType = 'D'
	SubscribeMsg MsgType = 'S'
	ListMsg      MsgType = 'L'
	AckMsg       MsgType = 'A'
	ErrorMsg     MsgType = 'E'
	DebugMsg     MsgType = 'G'
)

// magicByte prefixes every header; GetMsg resynchronizes on it, discarding
// any bytes read before it's seen.
const magicByte byte = '%'

// HeaderSize is the fixed header length: magic, type, length low byte,
// length high byte.
const HeaderSize = 4

// ChunkSize is the body transfer unit; each chunk (except under
// DebugMsg, see below) is followed by a single ACK round trip.
const ChunkSize = 256

// ErrProtocolViolation is returned when an expected ACK header doesn't
// arrive as type AckMsg with a zero length.
var ErrProtocolViolation = errors.New("hostlink: protocol violation")

// ErrBufferTooSmall is returned by GetMsg when the host sent more bytes
// than the caller's buffer can hold. The excess bytes are still drained
// off the wire so the link stays in sync for the next message.
var ErrBufferTooSmall = errors.New("hostlink: message larger than buffer")

// Conn is a full-duplex byte stream, typically a serial port or a TCP
// connection standing in for one in this implementation.
type Conn interface {
	io.Reader
	io.Writer
}

func sendHeader(conn Conn, msgType MsgType, length uint16) error {
	hdr := [HeaderSize]byte{magicByte, byte(msgType), byte(length), byte(length >> 8)}
	_, err := conn.Write(hdr[:])
	return err
}

func getHeader(conn Conn) (MsgType, uint16, error) {
	var b [1]byte
	for {
		if _, err := io.ReadFull(conn, b[:]); err != nil {
			return 0, 0, err
		}
		if b[0] == magicByte {
			break
		}
	}

	var rest [HeaderSize - 1]byte
	if _, err := io.ReadFull(conn, rest[:]); err != nil {
		return 0, 0, err
	}
	msgType := MsgType(rest[0])
	length := uint16(rest[1]) | uint16(rest[2])<<8
	return msgType, length, nil
}

func sendAck(conn Conn) error {
	return sendHeader(conn, AckMsg, 0)
}

func getAck(conn Conn) error {
	msgType, length, err := getHeader(conn)
	if err != nil {
		return err
	}
	if msgType != AckMsg || length != 0 {
		return ErrProtocolViolation
	}
	return nil
}

// SendMsg writes a complete message: header, then body in ChunkSize
// chunks. Every chunk is acknowledged by the peer except under
// DebugMsg, which is send-only and never waits for an ACK (so a
// debug/log line can't deadlock a peer that isn't actively polling).
func SendMsg(conn Conn, msgType MsgType, payload []byte) error {
	if err := sendHeader(conn, msgType, uint16(len(payload))); err != nil {
		return err
	}
	if msgType != DebugMsg {
		if err := getAck(conn); err != nil {
			return err
		}
	}

	for offs := 0; offs < len(payload); offs += ChunkSize {
		end := min(offs+ChunkSize, len(payload))
		if _, err := conn.Write(payload[offs:end]); err != nil {
			return err
		}
		if msgType != DebugMsg {
			if err := getAck(conn); err != nil {
				return err
			}
		}
	}
	return nil
}

func readBody(conn Conn, length, bufRemaining int) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, err
	}
	return buf[:max(min(bufRemaining, length), 0)], nil
}

// GetMsg reads a complete message: it resynchronizes on the next magic
// byte, reads the header, ACKs it, then reads the body in ChunkSize
// chunks, ACKing each. If the host sent more bytes than bufLen can hold,
// the excess is still read and discarded (keeping chunk boundaries and
// ACKs in sync) and ErrBufferTooSmall is returned alongside whatever fit.
func GetMsg(conn Conn, bufLen int) (MsgType, []byte, error) {
	msgType, length, err := getHeader(conn)
	if err != nil {
		return 0, nil, err
	}
	if err := sendAck(conn); err != nil {
		return msgType, nil, err
	}

	out := make([]byte, 0, min(int(length), bufLen))
	for offs := 0; offs < int(length); offs += ChunkSize {
		bufRemaining := bufLen - offs
		rlen := min(int(length)-offs, ChunkSize)

		chunk, err := readBody(conn, rlen, bufRemaining)
		if err != nil {
			return msgType, nil, err
		}
		out = append(out, chunk...)
		if err := sendAck(conn); err != nil {
			return msgType, nil, err
		}
	}

	if int(length) > bufLen {
		return msgType, out, ErrBufferTooSmall
	}
	return msgType, out, nil
}
