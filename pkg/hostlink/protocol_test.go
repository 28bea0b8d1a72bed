package hostlink

import (
	"io"
	"net"
	"testing"
	"time"
)

func TestSendMsgGetMsgRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload := make([]byte, ChunkSize*2+37)
	for i := range payload {
		payload[i] = byte(i)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- SendMsg(client, DecodeMsg, payload)
	}()

	msgType, got, err := GetMsg(server, len(payload))
	if err != nil {
		t.Fatalf("GetMsg: %v", err)
	}
	if msgType != DecodeMsg {
		t.Fatalf("msgType = %v, want %v", msgType, DecodeMsg)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch: got %d bytes, want %d bytes", len(got), len(payload))
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("SendMsg: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("SendMsg did not return")
	}
}

func TestGetMsgResyncsOnGarbagePrefix(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		client.Write([]byte{0x00, 0xFF, 0x10}) // garbage before the real header
		SendMsg(client, ListMsg, []byte("hi"))
	}()

	msgType, got, err := GetMsg(server, 16)
	if err != nil {
		t.Fatalf("GetMsg: %v", err)
	}
	if msgType != ListMsg || string(got) != "hi" {
		t.Fatalf("GetMsg = (%v, %q), want (%v, %q)", msgType, got, ListMsg, "hi")
	}
}

func TestGetMsgBufferTooSmall(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go SendMsg(client, DecodeMsg, []byte("0123456789"))

	_, got, err := GetMsg(server, 4)
	if err != ErrBufferTooSmall {
		t.Fatalf("err = %v, want ErrBufferTooSmall", err)
	}
	if string(got) != "0123" {
		t.Fatalf("got = %q, want %q", got, "0123")
	}
}

func TestSendMsgDebugTypeSkipsAck(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- SendMsg(client, DebugMsg, []byte("log line"))
	}()

	// A correctly-unacked DEBUG send completes even though nothing on
	// this end ever calls getHeader/sendAck for it.
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(server, hdr[:]); err != nil {
		t.Fatalf("reading header: %v", err)
	}
	if MsgType(hdr[1]) != DebugMsg {
		t.Fatalf("type = %v, want %v", MsgType(hdr[1]), DebugMsg)
	}

	body := make([]byte, len("log line"))
	if _, err := io.ReadFull(server, body); err != nil {
		t.Fatalf("reading body: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("SendMsg: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("SendMsg did not return for DEBUG message")
	}
}

