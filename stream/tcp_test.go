//go:build !windows

package stream

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestTCPStreamRoundTrip(t *testing.T) {
	acc := NewTCPAcceptor()
	if err := acc.Open(0); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer unix.Close(acc.fd)

	port, err := acc.Port()
	if err != nil {
		t.Fatalf("Port: %v", err)
	}

	accepted := make(chan Stream, 1)
	acceptErr := make(chan error, 1)
	go func() {
		s, err := acc.Accept()
		accepted <- s
		acceptErr <- err
	}()

	client := NewTCPStream()
	if err := client.Connect("127.0.0.1", port); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Disconnect()

	server := <-accepted
	if err := <-acceptErr; err != nil {
		t.Fatalf("Accept: %v", err)
	}
	defer server.Disconnect()

	payload := []byte("hello")
	if err := client.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got := make([]byte, len(payload))
	if err := server.Read(got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("expected %q, got %q", payload, got)
	}
}

func TestTCPStreamDisconnectIdempotent(t *testing.T) {
	s := NewTCPStream()
	if err := s.Disconnect(); err != nil {
		t.Fatalf("first Disconnect: %v", err)
	}
	if err := s.Disconnect(); err != nil {
		t.Fatalf("second Disconnect: %v", err)
	}
}

func TestTCPStreamConnectTimeout(t *testing.T) {
	s := NewTCPStream()
	s.SetOptions(Options{NonBlockMode: true, ConnectionTimeoutMS: 50})
	// 192.0.2.0/24 is reserved for documentation (RFC 5737) and should not
	// respond, exercising the connect-deadline path without network access.
	err := s.Connect("192.0.2.1", 9)
	if err == nil {
		t.Fatalf("expected Connect to fail against a non-routable test address")
	}
}
