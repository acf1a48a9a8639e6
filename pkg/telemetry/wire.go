package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Port assignment: each kit listens on BasePort + kit id.
const (
	// BasePort is the base UDP command port; kit N listens on BasePort+N.
	BasePort = 47250

	// DefaultCommandPort is the conventional command port of a
	// stand-alone plot endpoint (kit id 18 in the lab numbering).
	DefaultCommandPort = 47268
)

// Send rate limits, in samples per second per variable.
const (
	MinSendRate = 1.0
	MaxSendRate = 200.0
)

// Wire format errors.
var (
	ErrBadCommand = errors.New("malformed command")
	ErrBadSample  = errors.New("malformed sample line")
)

// Sample is one telemetry data point for a named variable.
type Sample struct {
	// Var is the variable name.
	Var string

	// TimestampMS is the sample time in unix milliseconds.
	TimestampMS int64

	// Value is the sample value.
	Value float64
}

// Encode renders the sample in LasecPlot line format:
// ">var:timestamp:value|g\n".
func (s Sample) Encode() []byte {
	return []byte(fmt.Sprintf(">%s:%d:%g|g\n", s.Var, s.TimestampMS, s.Value))
}

// ParseSample parses a LasecPlot sample line. The trailing newline is
// optional.
func ParseSample(line string) (Sample, error) {
	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
	if !strings.HasPrefix(line, ">") {
		return Sample{}, fmt.Errorf("%w: missing '>' prefix", ErrBadSample)
	}
	body := strings.TrimPrefix(line, ">")
	body = strings.TrimSuffix(body, "|g")

	parts := strings.SplitN(body, ":", 3)
	if len(parts) != 3 {
		return Sample{}, fmt.Errorf("%w: want var:ts:value, got %q", ErrBadSample, line)
	}

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: bad timestamp %q", ErrBadSample, parts[1])
	}
	value, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: bad value %q", ErrBadSample, parts[2])
	}

	return Sample{Var: parts[0], TimestampMS: ts, Value: value}, nil
}

// CommandType identifies a command received on the command port.
type CommandType uint8

const (
	// CmdConnect registers a data target.
	CmdConnect CommandType = iota + 1

	// CmdDisconnect clears the data target.
	CmdDisconnect
)

// String returns the command name.
func (c CommandType) String() string {
	switch c {
	case CmdConnect:
		return "CONNECT"
	case CmdDisconnect:
		return "DISCONNECT"
	default:
		return "UNKNOWN"
	}
}

// Command is a parsed command-port datagram.
type Command struct {
	// Type is the command type.
	Type CommandType

	// IP and Port are the client's data address. Required for CONNECT;
	// optional for DISCONNECT (HasAddr reports presence).
	IP   string
	Port int

	// HasAddr reports whether IP/Port were present in the datagram.
	HasAddr bool
}

// ParseCommand parses a command-port datagram.
// Accepted forms:
//
//	CONNECT:<ip>:<port>
//	DISCONNECT
//	DISCONNECT:<ip>:<port>
func ParseCommand(msg string) (Command, error) {
	msg = strings.TrimSpace(msg)

	switch {
	case strings.HasPrefix(msg, "CONNECT:"):
		ip, port, err := parseAddrSuffix(msg)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: CmdConnect, IP: ip, Port: port, HasAddr: true}, nil

	case msg == "DISCONNECT":
		return Command{Type: CmdDisconnect}, nil

	case strings.HasPrefix(msg, "DISCONNECT:"):
		ip, port, err := parseAddrSuffix(msg)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: CmdDisconnect, IP: ip, Port: port, HasAddr: true}, nil

	default:
		return Command{}, fmt.Errorf("%w: %q", ErrBadCommand, msg)
	}
}

// parseAddrSuffix extracts ip and port from "<VERB>:<ip>:<port>".
func parseAddrSuffix(msg string) (string, int, error) {
	parts := strings.Split(msg, ":")
	if len(parts) != 3 {
		return "", 0, fmt.Errorf("%w: want VERB:<ip>:<port>, got %q", ErrBadCommand, msg)
	}
	ip := strings.TrimSpace(parts[1])
	if ip == "" {
		return "", 0, fmt.Errorf("%w: empty address in %q", ErrBadCommand, msg)
	}
	port, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("%w: bad port in %q", ErrBadCommand, msg)
	}
	return ip, port, nil
}

// EncodeConnect renders the client-side registration datagram.
func EncodeConnect(ip string, port int) []byte {
	return []byte(fmt.Sprintf("CONNECT:%s:%d", ip, port))
}

// EncodeDisconnectCmd renders the client-side disconnect datagram.
func EncodeDisconnectCmd(ip string, port int) []byte {
	return []byte(fmt.Sprintf("DISCONNECT:%s:%d", ip, port))
}

// EncodeConnected renders the kit's acknowledgment of a CONNECT.
func EncodeConnected(serverIP string, cmdPort int) []byte {
	return []byte(fmt.Sprintf("CONNECTED:%s:%d", serverIP, cmdPort))
}

// EncodeDisconnected renders the kit's acknowledgment of a DISCONNECT.
func EncodeDisconnected(serverIP string, cmdPort int) []byte {
	return []byte(fmt.Sprintf("DISCONNECT:%s:%d", serverIP, cmdPort))
}

// ClampSendRate bounds a send rate to the protocol limits.
func ClampSendRate(rate float64) float64 {
	if rate < MinSendRate {
		return MinSendRate
	}
	if rate > MaxSendRate {
		return MaxSendRate
	}
	return rate
}

// KitHost returns the mDNS host name for a kit id, e.g. "iikit3.local".
func KitHost(kitID int) string {
	return fmt.Sprintf("iikit%d.local", kitID)
}

// KitCommandPort returns the UDP command port for a kit id.
func KitCommandPort(kitID int) int {
	return BasePort + kitID
}
