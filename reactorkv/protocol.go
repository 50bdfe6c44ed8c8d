// Package reactorkv implements the sample key-value echo protocol driven by
// cmd/reactorkv-server and cmd/reactorkv-client, grounded on
// event_loop_kv_storage.cpp / event_loop_kv_storage_client.cpp. Its wire
// format is a hand-rolled, 4-byte little-endian length-prefixed frame
// carrying a fixed-field request or response plus an HMAC authentication
// tag — this package intentionally does not reach for a general argument/
// message serialization library (that library is out of the reactor core's
// scope).
package reactorkv

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// MsgType distinguishes a SET from a GET, mirroring message_type in
// event_loop_kv_storage.cpp.
type MsgType byte

const (
	Get MsgType = 0
	Set MsgType = 1
)

// ErrProtocol indicates a malformed frame.
var ErrProtocol = errors.New("reactorkv: protocol error")

// Request is either a GET{Key} or a SET{Key, Value}.
type Request struct {
	Type  MsgType
	Key   string
	Value []byte
}

// Response carries a GET's result (Found/Value) or a SET's acknowledgement
// (Found is always true on a successful SET).
type Response struct {
	Found bool
	Value []byte
}

// EncodeRequest serializes r as type(1) + keylen(4) + key + valuelen(4) +
// value, all little-endian fixed fields (Value is empty for GET).
func EncodeRequest(r Request) []byte {
	buf := make([]byte, 0, 1+4+len(r.Key)+4+len(r.Value))
	buf = append(buf, byte(r.Type))
	buf = appendLenPrefixed(buf, []byte(r.Key))
	buf = appendLenPrefixed(buf, r.Value)
	return buf
}

// DecodeRequest parses the body written by EncodeRequest.
func DecodeRequest(body []byte) (Request, error) {
	var r Request
	if len(body) < 1 {
		return r, errors.Wrap(ErrProtocol, "short request header")
	}
	r.Type = MsgType(body[0])
	rest := body[1:]
	key, rest, err := readLenPrefixed(rest)
	if err != nil {
		return r, err
	}
	value, _, err := readLenPrefixed(rest)
	if err != nil {
		return r, err
	}
	r.Key = string(key)
	r.Value = value
	return r, nil
}

// EncodeResponse serializes r as found(1) + valuelen(4) + value.
func EncodeResponse(r Response) []byte {
	buf := make([]byte, 0, 1+4+len(r.Value))
	if r.Found {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = appendLenPrefixed(buf, r.Value)
	return buf
}

// DecodeResponse parses the body written by EncodeResponse.
func DecodeResponse(body []byte) (Response, error) {
	var r Response
	if len(body) < 1 {
		return r, errors.Wrap(ErrProtocol, "short response header")
	}
	r.Found = body[0] != 0
	value, _, err := readLenPrefixed(body[1:])
	if err != nil {
		return r, err
	}
	r.Value = value
	return r, nil
}

func appendLenPrefixed(dst, field []byte) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(field)))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, field...)
	return dst
}

func readLenPrefixed(src []byte) (field, rest []byte, err error) {
	if len(src) < 4 {
		return nil, nil, errors.Wrap(ErrProtocol, "truncated length prefix")
	}
	n := binary.LittleEndian.Uint32(src[:4])
	src = src[4:]
	if uint32(len(src)) < n {
		return nil, nil, errors.Wrap(ErrProtocol, "truncated field")
	}
	return src[:n], src[n:], nil
}

// ReadFrame reads a 4-byte little-endian length prefix followed by that
// many bytes, matching spec.md's §6 wire framing exactly.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// WriteFrame writes body prefixed by its 4-byte little-endian length.
func WriteFrame(w io.Writer, body []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}
