package wsframe

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/textproto"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"
)

const keyLength = 16

// GenerateHandshake builds an HTTP/1.1 GET upgrade request carrying a
// random 16-byte base64 Sec-WebSocket-Key, matching generate_handshake /
// build_request in websockets_utils.cpp exactly (web_version "HTTP/1.1",
// socket_version "13").
func GenerateHandshake(host, uri string) (request string, err error) {
	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return "", errors.Wrap(err, "wsframe: generate handshake key")
	}
	encodedKey := base64.StdEncoding.EncodeToString(key)

	req := fmt.Sprintf(
		"GET %s HTTP/1.1\r\n"+
			"Host: %s\r\n"+
			"Upgrade: websocket\r\n"+
			"Connection: Upgrade\r\n"+
			"Sec-WebSocket-Key: %s\r\n"+
			"Sec-WebSocket-Version: 13\r\n\r\n",
		uri, host, encodedKey)
	return req, nil
}

// ValidateHandshakeResponse checks that the server's upgrade response
// carries a Connection header whose tokens include "upgrade", an Upgrade
// header whose tokens include "websocket", and a non-empty
// Sec-WebSocket-Accept header — matching validate_handshake_response's
// intent, but using httpguts.HeaderValuesContainsToken for the
// Connection/Upgrade checks instead of exact string comparison, since
// both headers are comma-separated token lists per RFC 7230 and a real
// server may send "Connection: keep-alive, Upgrade" rather than the bare
// original's single-token assumption.
func ValidateHandshakeResponse(response string) error {
	reader := textproto.NewReader(bufio.NewReader(strings.NewReader(response + "\r\n")))
	// The first line is the HTTP status line, not a header.
	if _, err := reader.ReadLine(); err != nil {
		return errors.Wrap(ErrProtocol, "missing status line")
	}
	headers, err := reader.ReadMIMEHeader()
	if err != nil && len(headers) == 0 {
		return errors.Wrap(ErrProtocol, "malformed response headers")
	}

	if !httpguts.HeaderValuesContainsToken(headers["Connection"], "upgrade") {
		return errors.Wrap(ErrProtocol, "missing or mismatched Connection header")
	}
	if !httpguts.HeaderValuesContainsToken(headers["Upgrade"], "websocket") {
		return errors.Wrap(ErrProtocol, "missing or mismatched Upgrade header")
	}
	if headers.Get("Sec-Websocket-Accept") == "" {
		return errors.Wrap(ErrProtocol, "missing Sec-WebSocket-Accept header")
	}
	return nil
}
