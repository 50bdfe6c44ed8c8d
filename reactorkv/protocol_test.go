package reactorkv

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRequestRoundTrip(t *testing.T) {
	req := Request{Type: Set, Key: "answer", Value: []byte("42")}
	body := EncodeRequest(req)
	got, err := DecodeRequest(body)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if got.Type != req.Type || got.Key != req.Key || !bytes.Equal(got.Value, req.Value) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, req)
	}
}

func TestEncodeDecodeResponseRoundTrip(t *testing.T) {
	resp := Response{Found: true, Value: []byte("42")}
	body := EncodeResponse(resp)
	got, err := DecodeResponse(body)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if got.Found != resp.Found || !bytes.Equal(got.Value, resp.Value) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, resp)
	}
}

func TestDecodeRequestRejectsTruncatedFrame(t *testing.T) {
	if _, err := DecodeRequest([]byte{byte(Get), 0, 0}); err == nil {
		t.Fatal("expected error decoding truncated request")
	}
}

func TestWriteFrameThenReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	body := EncodeRequest(Request{Type: Get, Key: "k"})
	if err := WriteFrame(&buf, body); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("frame round trip mismatch")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	key := DeriveKey("correct horse battery staple")
	body := EncodeRequest(Request{Type: Set, Key: "k", Value: []byte("v")})
	framed := Sign(key, body)

	got, ok := Verify(key, framed)
	if !ok {
		t.Fatal("expected valid signature to verify")
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("verified body mismatch")
	}
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	key := DeriveKey("correct horse battery staple")
	body := EncodeRequest(Request{Type: Set, Key: "k", Value: []byte("v")})
	framed := Sign(key, body)
	framed[0] ^= 0xFF

	if _, ok := Verify(key, framed); ok {
		t.Fatal("expected tampered frame to fail verification")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	body := EncodeRequest(Request{Type: Get, Key: "k"})
	framed := Sign(DeriveKey("secret-a"), body)

	if _, ok := Verify(DeriveKey("secret-b"), framed); ok {
		t.Fatal("expected mismatched key to fail verification")
	}
}
