// Package wsframe implements the narrow WebSocket FrameCodec layered over
// a blocking stream (spec.md §4.6): frame header encode/decode, the client
// handshake, masking, long frames, and fragmented-message accumulation.
// Grounded on original_source/lib/hope-io/net/websockets/websockets.h and
// websockets_utils.cpp.
package wsframe

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Opcodes, matching websockets.h exactly.
const (
	OpContinuation = 0x0
	OpText         = 0x1
	OpBinary       = 0x2
	OpClose        = 0x8
	OpPing         = 0x9
	OpPong         = 0xA
)

// Frame is one decoded WebSocket frame: opcode, fin bit, and payload
// (already demasked, if the frame was masked).
type Frame struct {
	Opcode  byte
	Fin     bool
	Masked  bool
	Payload []byte
}

// IsControl reports whether f is a control frame (Close/Ping/Pong). Per
// RFC 6455, control frames are never fragmented, matching
// websocket_frame::control() in the original.
func (f Frame) IsControl() bool {
	return f.Fin && (f.Opcode == OpClose || f.Opcode == OpPing || f.Opcode == OpPong)
}

// ReadFrame reads exactly one frame header, its (possibly extended)
// length, its mask key if present, and its payload — mirroring
// websockets_utils.cpp's read_frame, generalized with the matching write
// path and always demasking (the original only decodes; masking direction
// here is symmetric).
func ReadFrame(r io.Reader) (Frame, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Frame{}, errors.Wrap(err, "wsframe: read header")
	}
	f := Frame{
		Fin:    hdr[0]&0x80 != 0,
		Opcode: hdr[0] & 0x0F,
		Masked: hdr[1]&0x80 != 0,
	}
	payloadLen7 := hdr[1] & 0x7F

	var length uint64
	switch payloadLen7 {
	case 126:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return Frame{}, errors.Wrap(ErrProtocol, "truncated 16-bit length")
		}
		length = uint64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return Frame{}, errors.Wrap(ErrProtocol, "truncated 64-bit length")
		}
		length = binary.BigEndian.Uint64(ext[:])
	default:
		length = uint64(payloadLen7)
	}

	var mask [4]byte
	if f.Masked {
		if _, err := io.ReadFull(r, mask[:]); err != nil {
			return Frame{}, errors.Wrap(ErrProtocol, "truncated mask key")
		}
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, errors.Wrap(err, "wsframe: read payload")
		}
	}
	if f.Masked {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}
	f.Payload = payload
	return f, nil
}

// WriteFrame writes a single, always-masked, unfragmented (fin=1) frame.
// Client-side masking is always applied — per spec.md's explicit
// instruction to fix, not inherit, the original's unmasked-client bug —
// so there is no unmasked emission path. Long frames (len >= 126) are
// supported, extending the original (which only ever decoded them).
func WriteFrame(w io.Writer, opcode byte, payload []byte) error {
	var mask [4]byte
	if _, err := io.ReadFull(rand.Reader, mask[:]); err != nil {
		return errors.Wrap(err, "wsframe: generate mask")
	}

	var hdr []byte
	b0 := byte(0x80) | (opcode & 0x0F) // fin=1, flags=0
	n := len(payload)
	switch {
	case n < 126:
		hdr = []byte{b0, 0x80 | byte(n)}
	case n <= 0xFFFF:
		hdr = make([]byte, 4)
		hdr[0] = b0
		hdr[1] = 0x80 | 126
		binary.BigEndian.PutUint16(hdr[2:], uint16(n))
	default:
		hdr = make([]byte, 10)
		hdr[0] = b0
		hdr[1] = 0x80 | 127
		binary.BigEndian.PutUint64(hdr[2:], uint64(n))
	}
	hdr = append(hdr, mask[:]...)

	masked := make([]byte, n)
	for i := 0; i < n; i++ {
		masked[i] = payload[i] ^ mask[i%4]
	}

	if _, err := w.Write(hdr); err != nil {
		return errors.Wrap(err, "wsframe: write header")
	}
	if n > 0 {
		if _, err := w.Write(masked); err != nil {
			return errors.Wrap(err, "wsframe: write payload")
		}
	}
	return nil
}

// ReadMessage reads one complete message off rw: control frames are
// handled inline (Ping is answered with a Pong carrying the same payload
// and the read resumes; Pong is discarded; Close returns ErrClosed), and
// fragmented data frames (fin=0 continuation sequences) are accumulated
// into a single payload — the first-class support spec.md's open question
// recommends rather than leaving fragmentation unhandled.
func ReadMessage(rw io.ReadWriter) (opcode byte, payload []byte, err error) {
	for {
		f, err := ReadFrame(rw)
		if err != nil {
			return 0, nil, err
		}

		if f.IsControl() {
			switch f.Opcode {
			case OpPing:
				if werr := WriteFrame(rw, OpPong, f.Payload); werr != nil {
					return 0, nil, werr
				}
				continue
			case OpPong:
				continue
			case OpClose:
				return OpClose, f.Payload, ErrClosed
			}
		}

		if f.Fin {
			return f.Opcode, f.Payload, nil
		}

		// Start of a fragmented message: accumulate continuation frames.
		opcode = f.Opcode
		acc := append([]byte(nil), f.Payload...)
		for {
			cont, err := ReadFrame(rw)
			if err != nil {
				return 0, nil, err
			}
			if cont.IsControl() {
				switch cont.Opcode {
				case OpPing:
					if werr := WriteFrame(rw, OpPong, cont.Payload); werr != nil {
						return 0, nil, werr
					}
					continue
				case OpPong:
					continue
				case OpClose:
					return OpClose, cont.Payload, ErrClosed
				}
			}
			acc = append(acc, cont.Payload...)
			if cont.Fin {
				return opcode, acc, nil
			}
		}
	}
}

// WriteMessage writes payload as a single unfragmented frame. Write-side
// fragmentation is out of scope: nothing in spec.md requires it, and no
// pack example models a fragmented WebSocket writer to ground one on.
func WriteMessage(w io.Writer, opcode byte, payload []byte) error {
	return WriteFrame(w, opcode, payload)
}
