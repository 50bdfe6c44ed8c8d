// Package main runs a UDP echo server over udpendpoint, grounded on
// udp_echo_server.cpp: bind a Builder, receive one name/text message per
// loop iteration, and send it straight back.
package main

import (
	"encoding/binary"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/netloop/netloop/udpendpoint"
)

// VERSION is injected by buildflags.
var VERSION = "SELFBUILD"

// message mirrors the original sample's { name, text } pair, encoded as two
// 4-byte-length-prefixed strings — the same framing idiom used throughout
// this module's other sample protocols.
type message struct {
	Name string
	Text string
}

func encodeMessage(m message) []byte {
	buf := make([]byte, 0, 8+len(m.Name)+len(m.Text))
	buf = appendString(buf, m.Name)
	buf = appendString(buf, m.Text)
	return buf
}

func decodeMessage(data []byte) (message, error) {
	name, rest, err := readString(data)
	if err != nil {
		return message{}, err
	}
	text, _, err := readString(rest)
	if err != nil {
		return message{}, err
	}
	return message{Name: name, Text: text}, nil
}

func appendString(dst []byte, s string) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	dst = append(dst, lenBuf[:]...)
	return append(dst, s...)
}

func readString(src []byte) (string, []byte, error) {
	if len(src) < 4 {
		return "", nil, errShortMessage
	}
	n := binary.LittleEndian.Uint32(src[:4])
	src = src[4:]
	if uint32(len(src)) < n {
		return "", nil, errShortMessage
	}
	return string(src[:n]), src[n:], nil
}

var errShortMessage = errors.New("udpecho: short or truncated message")

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	app := cli.NewApp()
	app.Name = "udpecho-server"
	app.Usage = "UDP echo server built on the udpendpoint package"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "port,p", Value: 1338, Usage: "bind port"},
		cli.BoolFlag{Name: "compress", Usage: "enable snappy compression on the wire"},
	}
	app.Action = func(c *cli.Context) error {
		port := c.Int("port")
		builder := udpendpoint.NewBuilder()
		if err := builder.Init(port); err != nil {
			return err
		}
		defer builder.Close()
		log.Println("UDP server is initialized on port", port)

		var opts []udpendpoint.Option
		if c.Bool("compress") {
			opts = append(opts, udpendpoint.WithCompression())
		}

		receiver := udpendpoint.NewReceiver(builder.PlatformSocket(), opts...)
		if err := receiver.Connect("localhost", port); err != nil {
			return err
		}
		defer receiver.Disconnect()

		sender, err := udpendpoint.NewSender(opts...)
		if err != nil {
			return err
		}
		if err := sender.Connect("localhost", port); err != nil {
			return err
		}
		defer sender.Disconnect()

		buf := make([]byte, 65536)
		for {
			n, err := receiver.Read(buf)
			if err != nil {
				return err
			}
			msg, err := decodeMessage(buf[:n])
			if err != nil {
				log.Println("[decode]", err)
				continue
			}
			log.Printf("new msg[%s:%s]\n", msg.Name, msg.Text)
			if err := sender.Write(encodeMessage(msg)); err != nil {
				return err
			}
			log.Println("sent")
		}
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}
