// Package main drives reactorkv-server with a blocking stream client,
// grounded on event_loop_kv_storage_client.cpp: each SET or GET reconnects,
// sends one authenticated request frame, reads the response frame, and
// disconnects.
package main

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli"

	"github.com/netloop/netloop/reactorkv"
	"github.com/netloop/netloop/stream"
)

// VERSION is injected by buildflags.
var VERSION = "SELFBUILD"

func roundTrip(host string, port int, key []byte, req reactorkv.Request) (reactorkv.Response, error) {
	s := stream.NewTCPStream()
	if err := s.Connect(host, port); err != nil {
		return reactorkv.Response{}, err
	}
	defer s.Disconnect()
	s.SetOptions(stream.Options{})

	body := reactorkv.EncodeRequest(req)
	framed := reactorkv.Sign(key, body)

	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(framed)))
	if err := s.Write(header[:]); err != nil {
		return reactorkv.Response{}, err
	}
	if err := s.Write(framed); err != nil {
		return reactorkv.Response{}, err
	}

	if err := s.Read(header[:]); err != nil {
		return reactorkv.Response{}, err
	}
	respFramed := make([]byte, binary.LittleEndian.Uint32(header[:]))
	if err := s.Read(respFramed); err != nil {
		return reactorkv.Response{}, err
	}
	respBody, ok := reactorkv.Verify(key, respFramed)
	if !ok {
		return reactorkv.Response{}, fmt.Errorf("reactorkv-client: response failed authentication")
	}
	return reactorkv.DecodeResponse(respBody)
}

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	app := cli.NewApp()
	app.Name = "reactorkv-client"
	app.Usage = "SET/GET client for reactorkv-server"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "host", Value: "localhost", Usage: "server host"},
		cli.IntFlag{Name: "port,p", Value: 1400, Usage: "server port"},
		cli.StringFlag{
			Name:   "secret",
			Value:  "it's a secrect",
			Usage:  "pre-shared secret authenticating requests",
			EnvVar: "REACTORKV_SECRET",
		},
		cli.StringFlag{Name: "cmd,c", Value: "demo", Usage: "set, get, or demo (runs a scripted round trip)"},
		cli.StringFlag{Name: "key,k", Usage: "key for set/get"},
		cli.StringFlag{Name: "value,v", Usage: "value for set"},
	}
	app.Action = func(c *cli.Context) error {
		key := reactorkv.DeriveKey(c.String("secret"))
		host, port := c.String("host"), c.Int("port")

		switch c.String("cmd") {
		case "set":
			resp, err := roundTrip(host, port, key, reactorkv.Request{
				Type: reactorkv.Set, Key: c.String("key"), Value: []byte(c.String("value")),
			})
			if err != nil {
				return err
			}
			log.Printf("set %q -> ok=%v", c.String("key"), resp.Found)
		case "get":
			resp, err := roundTrip(host, port, key, reactorkv.Request{Type: reactorkv.Get, Key: c.String("key")})
			if err != nil {
				return err
			}
			if !resp.Found {
				log.Printf("get %q -> not found", c.String("key"))
			} else {
				log.Printf("get %q -> %q", c.String("key"), string(resp.Value))
			}
		default:
			const n = 100
			for i := 0; i < n; i++ {
				k := fmt.Sprintf("%d", i)
				if _, err := roundTrip(host, port, key, reactorkv.Request{
					Type: reactorkv.Set, Key: k, Value: []byte(fmt.Sprintf("%d", i)),
				}); err != nil {
					return err
				}
				log.Println("write:", i)
			}
			for i := 0; i < n; i++ {
				k := fmt.Sprintf("%d", i)
				resp, err := roundTrip(host, port, key, reactorkv.Request{Type: reactorkv.Get, Key: k})
				if err != nil {
					return err
				}
				log.Println("read:", i, string(resp.Value))
			}
		}
		return nil
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}
