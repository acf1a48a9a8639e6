package telemetry

import (
	"errors"
	"testing"
)

func TestSampleEncode(t *testing.T) {
	tests := []struct {
		sample Sample
		want   string
	}{
		{Sample{Var: "led", TimestampMS: 1700000000000, Value: 1}, ">led:1700000000000:1|g\n"},
		{Sample{Var: "ticks", TimestampMS: 42, Value: 1234.5}, ">ticks:42:1234.5|g\n"},
		{Sample{Var: "t", TimestampMS: 0, Value: -0.25}, ">t:0:-0.25|g\n"},
	}

	for _, tt := range tests {
		if got := string(tt.sample.Encode()); got != tt.want {
			t.Errorf("Encode() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseSample(t *testing.T) {
	tests := []struct {
		line string
		want Sample
	}{
		{">led:1700000000000:1|g\n", Sample{Var: "led", TimestampMS: 1700000000000, Value: 1}},
		{">ticks:42:1234.5|g", Sample{Var: "ticks", TimestampMS: 42, Value: 1234.5}},
		{">t:0:-0.25|g\r\n", Sample{Var: "t", TimestampMS: 0, Value: -0.25}},
	}

	for _, tt := range tests {
		got, err := ParseSample(tt.line)
		if err != nil {
			t.Errorf("ParseSample(%q) error = %v", tt.line, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSample(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestParseSampleRoundTrip(t *testing.T) {
	orig := Sample{Var: "p1", TimestampMS: 1756000000123, Value: 3.14159}
	got, err := ParseSample(string(orig.Encode()))
	if err != nil {
		t.Fatalf("ParseSample() error = %v", err)
	}
	if got != orig {
		t.Errorf("round trip = %+v, want %+v", got, orig)
	}
}

func TestParseSampleInvalid(t *testing.T) {
	tests := []string{
		"",
		"led:1:1|g",
		">led|g",
		">led:abc:1|g",
		">led:1:xyz|g",
	}

	for _, line := range tests {
		_, err := ParseSample(line)
		if !errors.Is(err, ErrBadSample) {
			t.Errorf("ParseSample(%q) error = %v, want ErrBadSample", line, err)
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		msg  string
		want Command
	}{
		{"CONNECT:10.0.0.5:47300", Command{Type: CmdConnect, IP: "10.0.0.5", Port: 47300, HasAddr: true}},
		{"DISCONNECT", Command{Type: CmdDisconnect}},
		{"DISCONNECT:10.0.0.5:47300", Command{Type: CmdDisconnect, IP: "10.0.0.5", Port: 47300, HasAddr: true}},
		{"  CONNECT:192.168.1.7:5000 \n", Command{Type: CmdConnect, IP: "192.168.1.7", Port: 5000, HasAddr: true}},
	}

	for _, tt := range tests {
		got, err := ParseCommand(tt.msg)
		if err != nil {
			t.Errorf("ParseCommand(%q) error = %v", tt.msg, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.msg, got, tt.want)
		}
	}
}

func TestParseCommandInvalid(t *testing.T) {
	tests := []string{
		"",
		"HELLO",
		"CONNECT",
		"CONNECT:",
		"CONNECT:10.0.0.5",
		"CONNECT:10.0.0.5:notaport",
		"CONNECT:10.0.0.5:0",
		"CONNECT:10.0.0.5:70000",
		"CONNECT::47300",
		">led:1:1|g",
	}

	for _, msg := range tests {
		_, err := ParseCommand(msg)
		if !errors.Is(err, ErrBadCommand) {
			t.Errorf("ParseCommand(%q) error = %v, want ErrBadCommand", msg, err)
		}
	}
}

func TestCommandTypeString(t *testing.T) {
	if got := CmdConnect.String(); got != "CONNECT" {
		t.Errorf("CmdConnect.String() = %q", got)
	}
	if got := CmdDisconnect.String(); got != "DISCONNECT" {
		t.Errorf("CmdDisconnect.String() = %q", got)
	}
	if got := CommandType(0).String(); got != "UNKNOWN" {
		t.Errorf("CommandType(0).String() = %q", got)
	}
}

func TestEncodeAcks(t *testing.T) {
	if got := string(EncodeConnected("10.0.0.1", 47253)); got != "CONNECTED:10.0.0.1:47253" {
		t.Errorf("EncodeConnected() = %q", got)
	}
	if got := string(EncodeDisconnected("10.0.0.1", 47253)); got != "DISCONNECT:10.0.0.1:47253" {
		t.Errorf("EncodeDisconnected() = %q", got)
	}
	if got := string(EncodeConnect("10.0.0.2", 5000)); got != "CONNECT:10.0.0.2:5000" {
		t.Errorf("EncodeConnect() = %q", got)
	}
	if got := string(EncodeDisconnectCmd("10.0.0.2", 5000)); got != "DISCONNECT:10.0.0.2:5000" {
		t.Errorf("EncodeDisconnectCmd() = %q", got)
	}
}

func TestClampSendRate(t *testing.T) {
	tests := []struct {
		rate float64
		want float64
	}{
		{0, MinSendRate},
		{0.5, MinSendRate},
		{1, 1},
		{30, 30},
		{200, 200},
		{500, MaxSendRate},
	}

	for _, tt := range tests {
		if got := ClampSendRate(tt.rate); got != tt.want {
			t.Errorf("ClampSendRate(%g) = %g, want %g", tt.rate, got, tt.want)
		}
	}
}

func TestKitAddressing(t *testing.T) {
	if got := KitHost(3); got != "iikit3.local" {
		t.Errorf("KitHost(3) = %q", got)
	}
	if got := KitCommandPort(3); got != 47253 {
		t.Errorf("KitCommandPort(3) = %d", got)
	}
	if got := KitCommandPort(18); got != DefaultCommandPort {
		t.Errorf("KitCommandPort(18) = %d, want %d", got, DefaultCommandPort)
	}
}
