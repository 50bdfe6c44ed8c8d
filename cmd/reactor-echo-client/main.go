// Package main drives the reactor-echo-server with a blocking TCPStream
// client, grounded on tcp_echo_event_loop_client.cpp: write a length-prefixed
// message, read it back, repeat.
package main

import (
	"encoding/binary"
	"log"
	"os"

	"github.com/urfave/cli"

	"github.com/netloop/netloop/stream"
)

// VERSION is injected by buildflags.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	app := cli.NewApp()
	app.Name = "reactor-echo-client"
	app.Usage = "drives reactor-echo-server with a blocking stream client"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "host",
			Value: "localhost",
			Usage: "server host",
		},
		cli.IntFlag{
			Name:  "port,p",
			Value: 1338,
			Usage: "server port",
		},
		cli.IntFlag{
			Name:  "count,n",
			Value: 10000,
			Usage: "number of echo round-trips",
		},
		cli.StringFlag{
			Name:  "message,m",
			Value: "the quick brown fox jumps over the lazy dog",
			Usage: "message payload to echo",
		},
	}
	app.Action = func(c *cli.Context) error {
		s := stream.NewTCPStream()
		if err := s.Connect(c.String("host"), c.Int("port")); err != nil {
			return err
		}
		defer s.Disconnect()
		s.SetOptions(stream.Options{})

		msg := []byte(c.String("message"))
		header := make([]byte, 4)
		for i := 0; i < c.Int("count"); i++ {
			binary.LittleEndian.PutUint32(header, uint32(len(msg)))
			if err := s.Write(header); err != nil {
				return err
			}
			if err := s.Write(msg); err != nil {
				return err
			}

			if err := s.Read(header); err != nil {
				return err
			}
			size := binary.LittleEndian.Uint32(header)
			echoed := make([]byte, size)
			if err := s.Read(echoed); err != nil {
				return err
			}
			if i%1000 == 0 {
				log.Printf("round-trip %d: %q", i, string(echoed))
			}
		}
		return nil
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}
