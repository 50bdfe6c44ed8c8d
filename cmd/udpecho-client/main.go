// Package main drives udpecho-server, grounded on udp_echo_client.cpp:
// send one name/text message, then read the echoed reply back.
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
	app.Name = "udpecho-client"
	app.Usage = "drives udpecho-server with a single request/reply"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "host", Value: "localhost", Usage: "server host"},
		cli.IntFlag{Name: "port,p", Value: 1338, Usage: "server port"},
		cli.StringFlag{Name: "name,n", Value: "client", Usage: "message sender name"},
		cli.StringFlag{Name: "text,t", Value: "hello from udpecho-client", Usage: "message text"},
		cli.BoolFlag{Name: "compress", Usage: "enable snappy compression on the wire"},
	}
	app.Action = func(c *cli.Context) error {
		host, port := c.String("host"), c.Int("port")

		var opts []udpendpoint.Option
		if c.Bool("compress") {
			opts = append(opts, udpendpoint.WithCompression())
		}

		sender, err := udpendpoint.NewSender(opts...)
		if err != nil {
			return err
		}
		if err := sender.Connect(host, port); err != nil {
			return err
		}
		defer sender.Disconnect()

		receiver := udpendpoint.NewReceiver(sender.PlatformSocket(), opts...)
		if err := receiver.Connect(host, port); err != nil {
			return err
		}
		defer receiver.Disconnect()

		msg := message{Name: c.String("name"), Text: c.String("text")}
		if err := sender.Write(encodeMessage(msg)); err != nil {
			return err
		}

		buf := make([]byte, 65536)
		n, err := receiver.Read(buf)
		if err != nil {
			return err
		}
		reply, err := decodeMessage(buf[:n])
		if err != nil {
			return err
		}
		log.Printf("recv msg[%s:%s]\n", reply.Name, reply.Text)
		return nil
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}
