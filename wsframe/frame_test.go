package wsframe

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteFrameThenReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, OpText, []byte("hello")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	f, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if f.Opcode != OpText || !f.Fin || string(f.Payload) != "hello" {
		t.Fatalf("unexpected frame: %+v", f)
	}
}

func TestWriteFrameAlwaysMasks(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, OpBinary, []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	raw := buf.Bytes()
	if raw[1]&0x80 == 0 {
		t.Fatalf("expected mask bit set on written frame")
	}
}

func TestLongFrameRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 70000) // forces the 64-bit length path
	var buf bytes.Buffer
	if err := WriteFrame(&buf, OpBinary, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	f, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if len(f.Payload) != len(payload) {
		t.Fatalf("expected payload length %d, got %d", len(payload), len(f.Payload))
	}
}

func TestReadMessageAccumulatesFragments(t *testing.T) {
	var buf bytes.Buffer
	writeRawFrame(&buf, OpText, false, []byte("hel"))
	writeRawFrame(&buf, OpContinuation, false, []byte("lo "))
	writeRawFrame(&buf, OpContinuation, true, []byte("world"))

	opcode, payload, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if opcode != OpText || string(payload) != "hello world" {
		t.Fatalf("expected reassembled %q, got opcode=%d payload=%q", "hello world", opcode, payload)
	}
}

func TestReadMessageAnswersPing(t *testing.T) {
	var buf bytes.Buffer
	writeRawFrame(&buf, OpPing, true, []byte("ping-payload"))
	writeRawFrame(&buf, OpText, true, []byte("after-ping"))

	opcode, payload, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if opcode != OpText || string(payload) != "after-ping" {
		t.Fatalf("expected to skip past the ping and read the text frame, got opcode=%d payload=%q", opcode, payload)
	}

	pong, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame (pong): %v", err)
	}
	if pong.Opcode != OpPong || string(pong.Payload) != "ping-payload" {
		t.Fatalf("expected pong echoing ping payload, got %+v", pong)
	}
}

func TestReadMessageReturnsErrClosedOnClose(t *testing.T) {
	var buf bytes.Buffer
	writeRawFrame(&buf, OpClose, true, nil)
	_, _, err := ReadMessage(&buf)
	if err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestGenerateHandshakeContainsRequiredHeaders(t *testing.T) {
	req, err := GenerateHandshake("example.com", "/ws")
	if err != nil {
		t.Fatalf("GenerateHandshake: %v", err)
	}
	for _, want := range []string{"GET /ws HTTP/1.1", "Host: example.com", "Upgrade: websocket", "Sec-WebSocket-Version: 13", "Sec-WebSocket-Key: "} {
		if !strings.Contains(req, want) {
			t.Fatalf("expected request to contain %q:\n%s", want, req)
		}
	}
}

func TestValidateHandshakeResponseAccepts(t *testing.T) {
	resp := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n\r\n"
	if err := ValidateHandshakeResponse(resp); err != nil {
		t.Fatalf("expected valid response to pass, got %v", err)
	}
}

func TestValidateHandshakeResponseRejectsMissingAccept(t *testing.T) {
	resp := "HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n\r\n"
	if err := ValidateHandshakeResponse(resp); err == nil {
		t.Fatalf("expected missing Sec-WebSocket-Accept to fail validation")
	}
}

// writeRawFrame writes an unmasked frame directly (bypassing WriteFrame's
// always-mask client path) so tests can construct arbitrary fin/opcode
// sequences as a server would send them.
func writeRawFrame(buf *bytes.Buffer, opcode byte, fin bool, payload []byte) {
	b0 := opcode & 0x0F
	if fin {
		b0 |= 0x80
	}
	n := len(payload)
	if n < 126 {
		buf.WriteByte(b0)
		buf.WriteByte(byte(n))
	} else {
		buf.WriteByte(b0)
		buf.WriteByte(126)
		buf.WriteByte(byte(n >> 8))
		buf.WriteByte(byte(n))
	}
	buf.Write(payload)
}
