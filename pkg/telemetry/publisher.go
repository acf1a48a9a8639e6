package telemetry

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lasec-lab/iikit-go/pkg/clock"
	"github.com/lasec-lab/iikit-go/pkg/log"
)

// cmdReadTimeout bounds each blocking read on the command socket so
// the command loop notices shutdown promptly.
const cmdReadTimeout = 500 * time.Millisecond

// PublisherConfig configures a telemetry Publisher.
type PublisherConfig struct {
	// Address to listen on for commands (e.g. ":47253").
	// Required.
	Address string

	// SendRate is the per-variable sample rate in Hz.
	// Clamped to [MinSendRate, MaxSendRate]. Default: 30 Hz.
	SendRate float64

	// KitID tags log events (e.g. "iikit3"). Optional.
	KitID string

	// Clock is the time source for sample timestamps.
	// Defaults to the system clock.
	Clock clock.Clock

	// Logger for event capture (optional).
	Logger log.Logger

	// OnConnect is called when a plot client registers.
	OnConnect func(target string)

	// OnDisconnect is called when the data target is cleared.
	OnDisconnect func(target string)
}

// source is a registered variable and its read function.
type source struct {
	name string
	read func() float64
}

// Publisher owns the kit's UDP command socket and streams registered
// variables to at most one data target. A new CONNECT replaces the
// previous target; DISCONNECT clears it and pauses streaming.
type Publisher struct {
	config PublisherConfig
	rate   float64

	cmdConn  *net.UDPConn
	dataConn *net.UDPConn

	mu        sync.Mutex
	target    *net.UDPAddr
	sessionID string
	sources   []source

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPublisher creates a telemetry publisher.
func NewPublisher(config PublisherConfig) (*Publisher, error) {
	if config.Address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if config.SendRate == 0 {
		config.SendRate = 30
	}
	if config.Clock == nil {
		config.Clock = clock.SystemClock{}
	}
	if config.Logger == nil {
		config.Logger = log.NoopLogger{}
	}

	return &Publisher{
		config: config,
		rate:   ClampSendRate(config.SendRate),
	}, nil
}

// Register adds a variable to the stream. The read function is called
// from the send loop goroutine and must be safe for concurrent use.
// Registration order is the order variables appear in the stream.
func (p *Publisher) Register(name string, read func() float64) error {
	if name == "" || read == nil {
		return fmt.Errorf("variable name and read function are required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.sources {
		if s.name == name {
			return fmt.Errorf("variable %q already registered", name)
		}
	}
	p.sources = append(p.sources, source{name: name, read: read})
	return nil
}

// VarNames returns the registered variable names in stream order.
func (p *Publisher) VarNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, len(p.sources))
	for i, s := range p.sources {
		names[i] = s.name
	}
	return names
}

// Start binds the command socket and begins serving.
func (p *Publisher) Start(ctx context.Context) error {
	if p.running.Load() {
		return fmt.Errorf("publisher already running")
	}

	addr, err := net.ResolveUDPAddr("udp", p.config.Address)
	if err != nil {
		return fmt.Errorf("failed to resolve command address: %w", err)
	}

	cmdConn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	// Unbound socket used for replies and data so command reads and
	// sample writes never contend.
	dataConn, err := net.ListenUDP("udp", nil)
	if err != nil {
		cmdConn.Close()
		return fmt.Errorf("failed to open data socket: %w", err)
	}

	p.cmdConn = cmdConn
	p.dataConn = dataConn
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running.Store(true)

	p.logState("", "LISTENING", "")

	p.wg.Add(2)
	go p.commandLoop()
	go p.sendLoop()

	return nil
}

// Stop stops the publisher and closes its sockets.
func (p *Publisher) Stop() error {
	if !p.running.Load() {
		return nil
	}

	p.running.Store(false)
	p.cancel()

	p.cmdConn.Close()
	p.dataConn.Close()

	p.wg.Wait()

	p.mu.Lock()
	p.target = nil
	p.sessionID = ""
	p.mu.Unlock()

	p.logState("LISTENING", "STOPPED", "")
	return nil
}

// Addr returns the command socket's local address.
func (p *Publisher) Addr() net.Addr {
	if p.cmdConn != nil {
		return p.cmdConn.LocalAddr()
	}
	return nil
}

// Target returns the current data target as "ip:port", or "" when no
// client is connected.
func (p *Publisher) Target() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.target == nil {
		return ""
	}
	return p.target.String()
}

// SessionID returns the UUID of the active telemetry session, or ""
// when no client is connected.
func (p *Publisher) SessionID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessionID
}

// SendRate returns the effective per-variable sample rate in Hz.
func (p *Publisher) SendRate() float64 { return p.rate }

// commandLoop receives and dispatches command datagrams.
func (p *Publisher) commandLoop() {
	defer p.wg.Done()

	buf := make([]byte, 4096)
	for p.running.Load() {
		_ = p.cmdConn.SetReadDeadline(time.Now().Add(cmdReadTimeout))
		n, remote, err := p.cmdConn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			// Socket closed during Stop, or a transient fault.
			continue
		}

		cmd, err := ParseCommand(string(buf[:n]))
		if err != nil {
			// Unknown datagrams are ignored, per protocol.
			continue
		}

		switch cmd.Type {
		case CmdConnect:
			p.handleConnect(cmd, remote)
		case CmdDisconnect:
			p.handleDisconnect(cmd)
		}
	}
}

// handleConnect registers the client's data address as the target and
// acknowledges on that address.
func (p *Publisher) handleConnect(cmd Command, remote *net.UDPAddr) {
	target := &net.UDPAddr{IP: net.ParseIP(cmd.IP), Port: cmd.Port}
	if target.IP == nil {
		// Fall back to the datagram's source address when the claimed
		// IP does not parse.
		target.IP = remote.IP
	}

	session := uuid.New().String()

	p.mu.Lock()
	old := p.target
	p.target = target
	p.sessionID = session
	p.mu.Unlock()

	serverIP := p.localIPFor(target)
	cmdPort := p.cmdConn.LocalAddr().(*net.UDPAddr).Port
	_, _ = p.dataConn.WriteToUDP(EncodeConnected(serverIP, cmdPort), target)

	p.config.Logger.Log(log.Event{
		Timestamp:  p.config.Clock.Now(),
		Source:     log.SourceTelemetry,
		Category:   log.CategoryState,
		KitID:      p.config.KitID,
		SessionID:  session,
		RemoteAddr: target.String(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			NewState: "CONNECTED",
		},
	})

	if old != nil && p.config.OnDisconnect != nil {
		p.config.OnDisconnect(old.String())
	}
	if p.config.OnConnect != nil {
		p.config.OnConnect(target.String())
	}
}

// handleDisconnect clears the target and acknowledges. A DISCONNECT
// naming no address falls back to the current target; with neither it
// is a no-op.
func (p *Publisher) handleDisconnect(cmd Command) {
	var reply *net.UDPAddr
	if cmd.HasAddr {
		if ip := net.ParseIP(cmd.IP); ip != nil {
			reply = &net.UDPAddr{IP: ip, Port: cmd.Port}
		}
	}

	p.mu.Lock()
	if reply == nil {
		reply = p.target
	}
	old := p.target
	session := p.sessionID
	p.target = nil
	p.sessionID = ""
	p.mu.Unlock()

	if reply != nil {
		serverIP := p.localIPFor(reply)
		cmdPort := p.cmdConn.LocalAddr().(*net.UDPAddr).Port
		_, _ = p.dataConn.WriteToUDP(EncodeDisconnected(serverIP, cmdPort), reply)
	}

	if old != nil {
		p.config.Logger.Log(log.Event{
			Timestamp:  p.config.Clock.Now(),
			Source:     log.SourceTelemetry,
			Category:   log.CategoryState,
			KitID:      p.config.KitID,
			SessionID:  session,
			RemoteAddr: old.String(),
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntitySession,
				OldState: "CONNECTED",
				NewState: "DISCONNECTED",
			},
		})
		if p.config.OnDisconnect != nil {
			p.config.OnDisconnect(old.String())
		}
	}
}

// sendLoop streams registered variables to the target at the send rate.
// It idles while no target is registered.
func (p *Publisher) sendLoop() {
	defer p.wg.Done()

	interval := time.Duration(float64(time.Second) / p.rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		target := p.target
		session := p.sessionID
		sources := p.sources
		p.mu.Unlock()

		if target == nil {
			continue
		}

		tsMS := p.config.Clock.Now().UnixMilli()
		for _, s := range sources {
			sample := Sample{Var: s.name, TimestampMS: tsMS, Value: s.read()}
			if _, err := p.dataConn.WriteToUDP(sample.Encode(), target); err != nil {
				p.config.Logger.Log(log.Event{
					Timestamp:  p.config.Clock.Now(),
					Source:     log.SourceTelemetry,
					Category:   log.CategoryError,
					KitID:      p.config.KitID,
					SessionID:  session,
					RemoteAddr: target.String(),
					Error: &log.ErrorEventData{
						Message: err.Error(),
						Context: "send sample",
					},
				})
				continue
			}

			p.config.Logger.Log(log.Event{
				Timestamp:  p.config.Clock.Now(),
				Source:     log.SourceTelemetry,
				Category:   log.CategorySample,
				KitID:      p.config.KitID,
				SessionID:  session,
				RemoteAddr: target.String(),
				Sample: &log.SampleEvent{
					Var:         sample.Var,
					TimestampMS: sample.TimestampMS,
					Value:       sample.Value,
				},
			})
		}
	}
}

// localIPFor returns the local IP a datagram to target would leave
// from, falling back to loopback.
func (p *Publisher) localIPFor(target *net.UDPAddr) string {
	conn, err := net.DialUDP("udp", nil, target)
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// logState records a publisher lifecycle transition.
func (p *Publisher) logState(old, new, reason string) {
	p.config.Logger.Log(log.Event{
		Timestamp: p.config.Clock.Now(),
		Source:    log.SourceTelemetry,
		Category:  log.CategoryState,
		KitID:     p.config.KitID,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityPublisher,
			OldState: old,
			NewState: new,
			Reason:   reason,
		},
	})
}
