// Package main runs a reactor-driven TCP echo server: the simplest possible
// demonstration of the CORE event loop, grounded on
// tcp_echo_event_loop_server.cpp — on_connect moves a connection to Read, on_read
// echoes whatever accumulated in the buffer by flipping to Write, and on_write
// flips back to Read for the next request.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/netloop/netloop/reactor"
)

// VERSION is injected by buildflags.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	app := cli.NewApp()
	app.Name = "reactor-echo-server"
	app.Usage = "single-threaded epoll echo server built on the reactor package"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "port,p",
			Value: 1338,
			Usage: "listen port",
		},
		cli.IntFlag{
			Name:  "maxconn",
			Value: 1024,
			Usage: "max concurrent connections",
		},
	}
	app.Action = func(c *cli.Context) error {
		cfg := reactor.DefaultConfig(c.Int("port"))
		cfg.MaxConcurrentConnections = c.Int("maxconn")

		callbacks := reactor.Callbacks{
			OnConnect: func(conn *reactor.Connection) {
				log.Println("[connect]", conn.Remote())
				conn.SetState(reactor.Read)
			},
			OnRead: func(conn *reactor.Connection) {
				log.Println("[read]", conn.Buffer().Len(), "bytes from", conn.Remote())
				conn.SetState(reactor.Write)
			},
			OnWrite: func(conn *reactor.Connection) {
				log.Println("[write] echoed to", conn.Remote())
				conn.SetState(reactor.Read)
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

		log.Println("reactor echo server listening on", cfg.Port)
		return r.Run()
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}
