package wsframe

import "github.com/pkg/errors"

// ErrProtocol indicates a frame or handshake response violated the wire
// contract (bad header, truncated length field, malformed response).
var ErrProtocol = errors.New("wsframe: protocol violation")

// ErrClosed is returned by ReadMessage once a Close frame has been
// received; callers should tear down the underlying stream.
var ErrClosed = errors.New("wsframe: connection closed by peer")
