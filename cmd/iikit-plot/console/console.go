// Package console provides the interactive command-line interface
// for the iikit-plot telemetry client.
package console

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/lasec-lab/iikit-go/pkg/telemetry"
)

// defaultWatchCount is how many samples `watch` prints when no count
// is given.
const defaultWatchCount = 10

// Console handles interactive mode for iikit-plot.
type Console struct {
	rl *readline.Instance

	kitAddr string
	session *telemetry.Session
}

// New creates a new interactive console targeting kitAddr by default.
func New(kitAddr string) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "plot> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{rl: rl, kitAddr: kitAddr}, nil
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()
	defer c.closeSession()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "connect", "c":
			c.cmdConnect(ctx, args)

		case "disconnect", "d":
			c.cmdDisconnect()

		case "watch", "w":
			c.cmdWatch(ctx, args)

		case "status", "s":
			c.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (try 'help')\n", cmd)
		}
	}
}

// cmdConnect registers with a kit. The argument is a kit id or an
// explicit host:port; no argument reuses the default target.
func (c *Console) cmdConnect(ctx context.Context, args []string) {
	if c.session != nil {
		fmt.Fprintln(c.rl.Stdout(), "Already connected; disconnect first")
		return
	}

	addr := c.kitAddr
	if len(args) > 0 {
		arg := args[0]
		if id, err := strconv.Atoi(arg); err == nil {
			addr = fmt.Sprintf("%s:%d", telemetry.KitHost(id), telemetry.KitCommandPort(id))
		} else {
			addr = arg
		}
	}

	session, err := telemetry.Connect(ctx, addr)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Connect failed: %v\n", err)
		return
	}

	c.session = session
	c.kitAddr = addr
	fmt.Fprintf(c.rl.Stdout(), "Connected to %s (server %s), data on %s\n",
		addr, session.ServerIP(), session.LocalAddr())
}

// cmdDisconnect tells the kit to stop streaming.
func (c *Console) cmdDisconnect() {
	if c.session == nil {
		fmt.Fprintln(c.rl.Stdout(), "Not connected")
		return
	}

	if err := c.session.Disconnect(); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Disconnect error: %v\n", err)
	} else {
		fmt.Fprintln(c.rl.Stdout(), "Disconnected")
	}
	c.session = nil
}

// cmdWatch prints the next N incoming samples.
func (c *Console) cmdWatch(ctx context.Context, args []string) {
	if c.session == nil {
		fmt.Fprintln(c.rl.Stdout(), "Not connected")
		return
	}

	count := defaultWatchCount
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Fprintf(c.rl.Stdout(), "Bad count: %s\n", args[0])
			return
		}
		count = n
	}

	for i := 0; i < count; i++ {
		sample, err := c.session.Next(ctx)
		if err != nil {
			if err == net.ErrClosed {
				fmt.Fprintln(c.rl.Stdout(), "Kit ended the session")
				c.session = nil
				return
			}
			fmt.Fprintf(c.rl.Stdout(), "Receive error: %v\n", err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "%-8s %d %g\n", sample.Var, sample.TimestampMS, sample.Value)
	}
}

// cmdStatus shows the connection state.
func (c *Console) cmdStatus() {
	if c.session == nil {
		fmt.Fprintf(c.rl.Stdout(), "Not connected (default kit: %s)\n", c.kitAddr)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Connected to %s, server %s, data on %s\n",
		c.kitAddr, c.session.ServerIP(), c.session.LocalAddr())
}

func (c *Console) closeSession() {
	if c.session != nil {
		_ = c.session.Disconnect()
		c.session = nil
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `Commands:
  connect [kit-id|host:port]  (c)  Register with a kit and start streaming
  disconnect                  (d)  Stop streaming
  watch [n]                   (w)  Print the next n samples (default 10)
  status                      (s)  Show connection state
  help                        (?)  Show this help
  quit                        (q)  Exit`)
}
