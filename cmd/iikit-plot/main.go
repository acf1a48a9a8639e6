// Command iikit-plot is an interactive telemetry client for the kit.
//
// It speaks the LasecPlot UDP protocol: it registers a data socket
// with a kit's command port, prints the incoming sample stream, and
// disconnects cleanly. It replaces the lab's post-upload CONNECT
// helper for desktop use.
//
// Usage:
//
//	iikit-plot [flags]
//
// Flags:
//
//	-kit int       Kit id; resolves iikit<N>.local:47250+N
//	-addr string   Explicit kit address (overrides -kit)
//	-connect       One-shot: send CONNECT, print samples until interrupted
//
// Without -connect the tool starts an interactive console:
//
//	plot> connect 3            # by kit id
//	plot> connect 10.0.0.7:47253
//	plot> watch 20             # print the next 20 samples
//	plot> status
//	plot> disconnect
//	plot> quit
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lasec-lab/iikit-go/cmd/iikit-plot/console"
	"github.com/lasec-lab/iikit-go/pkg/telemetry"
)

var (
	kitID   int
	addr    string
	oneShot bool
)

func init() {
	flag.IntVar(&kitID, "kit", 1, "Kit id; resolves iikit<N>.local:47250+N")
	flag.StringVar(&addr, "addr", "", "Explicit kit address (overrides -kit)")
	flag.BoolVar(&oneShot, "connect", false, "One-shot: connect and print samples until interrupted")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	kitAddr := addr
	if kitAddr == "" {
		kitAddr = fmt.Sprintf("%s:%d", telemetry.KitHost(kitID), telemetry.KitCommandPort(kitID))
	}

	if oneShot {
		if err := runOneShot(kitAddr); err != nil {
			log.Fatalf("Connect failed: %v", err)
		}
		return
	}

	c, err := console.New(kitAddr)
	if err != nil {
		log.Fatalf("Failed to start console: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Run(ctx, cancel)
}

// runOneShot connects, streams samples to stdout until interrupted,
// then disconnects.
func runOneShot(kitAddr string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := telemetry.Connect(ctx, kitAddr)
	if err != nil {
		return err
	}
	defer session.Disconnect()

	log.Printf("Connected to %s (server %s), data on %s",
		kitAddr, session.ServerIP(), session.LocalAddr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	for {
		sample, err := session.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("Interrupted, disconnecting")
				return nil
			}
			return err
		}
		fmt.Printf("%s %d %g\n", sample.Var, sample.TimestampMS, sample.Value)
	}
}
