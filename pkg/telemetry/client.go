package telemetry

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// connectTimeout bounds the wait for the kit's CONNECTED reply.
const connectTimeout = 3 * time.Second

// Session is a plot client's view of a telemetry stream: a local data
// socket registered with a kit's command port.
type Session struct {
	kitAddr  *net.UDPAddr
	dataConn *net.UDPConn
	serverIP string
}

// Connect registers a data socket with the kit at kitAddr
// (e.g. "iikit3.local:47253") and waits for the CONNECTED
// acknowledgment. The returned Session receives the sample stream.
func Connect(ctx context.Context, kitAddr string) (*Session, error) {
	remote, err := net.ResolveUDPAddr("udp", kitAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve kit address: %w", err)
	}

	dataConn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open data socket: %w", err)
	}

	// The kit needs our IP as it will see it; derive it from a dialed
	// socket rather than trusting the interface list.
	probe, err := net.DialUDP("udp", nil, remote)
	if err != nil {
		dataConn.Close()
		return nil, fmt.Errorf("failed to probe local address: %w", err)
	}
	localIP := probe.LocalAddr().(*net.UDPAddr).IP.String()
	probe.Close()

	localPort := dataConn.LocalAddr().(*net.UDPAddr).Port
	if _, err := dataConn.WriteToUDP(EncodeConnect(localIP, localPort), remote); err != nil {
		dataConn.Close()
		return nil, fmt.Errorf("failed to send CONNECT: %w", err)
	}

	s := &Session{kitAddr: remote, dataConn: dataConn}

	// Wait for CONNECTED:<server_ip>:<cmd_port>.
	deadline := time.Now().Add(connectTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = dataConn.SetReadDeadline(deadline)

	buf := make([]byte, 4096)
	for {
		n, _, err := dataConn.ReadFromUDP(buf)
		if err != nil {
			dataConn.Close()
			return nil, fmt.Errorf("no CONNECTED reply: %w", err)
		}
		msg := strings.TrimSpace(string(buf[:n]))
		if strings.HasPrefix(msg, "CONNECTED:") {
			parts := strings.Split(msg, ":")
			if len(parts) == 3 {
				s.serverIP = parts[1]
			}
			break
		}
		// Samples may already be in flight from a previous session;
		// keep waiting for the acknowledgment.
	}

	_ = dataConn.SetReadDeadline(time.Time{})
	return s, nil
}

// ServerIP returns the kit-reported server IP from the CONNECTED reply.
func (s *Session) ServerIP() string { return s.serverIP }

// LocalAddr returns the session's data socket address.
func (s *Session) LocalAddr() net.Addr { return s.dataConn.LocalAddr() }

// Next blocks until the next sample arrives or ctx is done.
// Non-sample datagrams (acknowledgments, noise) are skipped, except a
// DISCONNECT acknowledgment which ends the session with net.ErrClosed.
func (s *Session) Next(ctx context.Context) (Sample, error) {
	buf := make([]byte, 4096)
	for {
		if d, ok := ctx.Deadline(); ok {
			_ = s.dataConn.SetReadDeadline(d)
		} else {
			// Poll the context while blocked on the socket.
			_ = s.dataConn.SetReadDeadline(time.Now().Add(cmdReadTimeout))
		}

		n, _, err := s.dataConn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				select {
				case <-ctx.Done():
					return Sample{}, ctx.Err()
				default:
					continue
				}
			}
			return Sample{}, err
		}

		msg := string(buf[:n])
		if strings.HasPrefix(msg, "DISCONNECT:") {
			return Sample{}, net.ErrClosed
		}

		sample, err := ParseSample(msg)
		if err != nil {
			continue
		}
		return sample, nil
	}
}

// Disconnect tells the kit to stop streaming and closes the session.
func (s *Session) Disconnect() error {
	localIP := "127.0.0.1"
	if probe, err := net.DialUDP("udp", nil, s.kitAddr); err == nil {
		localIP = probe.LocalAddr().(*net.UDPAddr).IP.String()
		probe.Close()
	}
	localPort := s.dataConn.LocalAddr().(*net.UDPAddr).Port

	_, _ = s.dataConn.WriteToUDP(EncodeDisconnectCmd(localIP, localPort), s.kitAddr)
	return s.dataConn.Close()
}

// Close closes the session's data socket without notifying the kit.
func (s *Session) Close() error {
	return s.dataConn.Close()
}
