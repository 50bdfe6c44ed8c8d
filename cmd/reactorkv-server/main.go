// Package main runs a reactor-driven key-value store, grounded on
// event_loop_kv_storage.cpp: on_read waits until a complete length-prefixed
// frame has accumulated in the connection's buffer, authenticates it with an
// HMAC tag derived from a pre-shared secret (PBKDF2, mirroring the teacher's
// SALT = "kcp-go" key-expansion idiom), dispatches SET/GET against an
// in-memory map, and writes the framed response back; once the response has
// drained, on_write closes the connection (the client reconnects for every
// request).
package main

import (
	"encoding/binary"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/urfave/cli"

	"github.com/netloop/netloop/reactor"
	"github.com/netloop/netloop/reactorkv"
)

// VERSION is injected by buildflags.
var VERSION = "SELFBUILD"

const frameLengthPrefix = 4

type store struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newStore() *store {
	return &store{data: make(map[string][]byte)}
}

func (s *store) handle(req reactorkv.Request) reactorkv.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch req.Type {
	case reactorkv.Set:
		s.data[req.Key] = req.Value
		return reactorkv.Response{Found: true, Value: req.Value}
	case reactorkv.Get:
		v, ok := s.data[req.Key]
		return reactorkv.Response{Found: ok, Value: v}
	default:
		return reactorkv.Response{}
	}
}

// tryConsumeFrame inspects the connection's accumulated bytes for a
// complete length-prefixed frame without blocking; it returns the frame
// body and true only once message_length bytes have fully arrived,
// matching event_loop_kv_storage.cpp's "buffer->count() > sizeof(uint32_t)
// && message_length == used_chunk.second" gate.
func tryConsumeFrame(conn *reactor.Connection) ([]byte, bool) {
	live := conn.Buffer().ReserveRead()
	if len(live) < frameLengthPrefix {
		return nil, false
	}
	n := binary.LittleEndian.Uint32(live[:frameLengthPrefix])
	total := frameLengthPrefix + int(n)
	if len(live) < total {
		return nil, false
	}
	body := make([]byte, n)
	copy(body, live[frameLengthPrefix:total])
	conn.Buffer().CommitRead(total)
	return body, true
}

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	app := cli.NewApp()
	app.Name = "reactorkv-server"
	app.Usage = "reactor-driven key-value echo service"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "port,p",
			Value: 1400,
			Usage: "listen port",
		},
		cli.StringFlag{
			Name:   "secret",
			Value:  "it's a secrect",
			Usage:  "pre-shared secret authenticating client requests",
			EnvVar: "REACTORKV_SECRET",
		},
	}
	app.Action = func(c *cli.Context) error {
		key := reactorkv.DeriveKey(c.String("secret"))
		kv := newStore()

		cfg := reactor.DefaultConfig(c.Int("port"))
		callbacks := reactor.Callbacks{
			OnConnect: func(conn *reactor.Connection) {
				conn.SetState(reactor.Read)
			},
			OnRead: func(conn *reactor.Connection) {
				framed, ok := tryConsumeFrame(conn)
				if !ok {
					return
				}
				body, valid := reactorkv.Verify(key, framed)
				if !valid {
					log.Println("[auth] rejected frame from", conn.Remote())
					conn.SetState(reactor.Dying)
					return
				}
				req, err := reactorkv.DecodeRequest(body)
				if err != nil {
					log.Println("[protocol]", conn.Remote(), err)
					conn.SetState(reactor.Dying)
					return
				}
				resp := kv.handle(req)
				respBody := reactorkv.EncodeResponse(resp)
				framedResp := reactorkv.Sign(key, respBody)

				conn.Buffer().Reset()
				var header [frameLengthPrefix]byte
				binary.LittleEndian.PutUint32(header[:], uint32(len(framedResp)))
				conn.Buffer().Write(header[:])
				conn.Buffer().Write(framedResp)
				conn.SetState(reactor.Write)
			},
			OnWrite: func(conn *reactor.Connection) {
				conn.SetState(reactor.Dying)
			},
			OnErr: func(conn *reactor.Connection, err error) {
				log.Println("[error]", conn.Remote(), err)
				conn.SetState(reactor.Dying)
			},
		}

		r, err := reactor.New(cfg, callbacks)
		if err != nil {
			return err
		}
		defer r.Close()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sig
			log.Println("stopping event loop...")
			r.Stop()
		}()

		log.Println("reactorkv server listening on", cfg.Port)
		return r.Run()
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}
