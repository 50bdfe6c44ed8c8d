//go:build !windows

package udpendpoint

import "testing"

func TestSendReceiveRoundTrip(t *testing.T) {
	b := NewBuilder()
	if err := b.Init(0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer b.Close()
	port, err := b.Port()
	if err != nil {
		t.Fatalf("Port: %v", err)
	}
	receiver := NewReceiver(b.PlatformSocket())
	defer receiver.Disconnect()

	sender, err := NewSender()
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Disconnect()
	if err := sender.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := sender.Write([]byte("ping")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	buf := make([]byte, 64)
	n, err := receiver.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != "ping" {
		t.Fatalf("expected %q, got %q", "ping", buf[:n])
	}
}

func TestReadTruncatesOversizedDatagram(t *testing.T) {
	b := NewBuilder()
	if err := b.Init(0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer b.Close()
	port, err := b.Port()
	if err != nil {
		t.Fatalf("Port: %v", err)
	}
	receiver := NewReceiver(b.PlatformSocket())
	defer receiver.Disconnect()

	sender, err := NewSender()
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Disconnect()
	if err := sender.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := sender.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}

	small := make([]byte, 10)
	n, err := receiver.Read(small)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 10 {
		t.Fatalf("expected truncated read of 10 bytes, got %d", n)
	}
}

func TestSendReceiveWithCompression(t *testing.T) {
	b := NewBuilder()
	if err := b.Init(0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer b.Close()
	port, err := b.Port()
	if err != nil {
		t.Fatalf("Port: %v", err)
	}
	receiver := NewReceiver(b.PlatformSocket(), WithCompression())
	defer receiver.Disconnect()

	sender, err := NewSender(WithCompression())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Disconnect()
	if err := sender.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	payload := []byte("compress me, repeatedly, compress me, repeatedly")
	if err := sender.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}

	buf := make([]byte, len(payload))
	n, err := receiver.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != string(payload) {
		t.Fatalf("expected %q, got %q", payload, buf[:n])
	}
}
