// Package telemetry implements the kit's LasecPlot UDP link.
//
// The kit listens for plain-text commands on a command port derived
// from its kit id (47250+N). A plot client registers itself with
// CONNECT:<ip>:<port>; the kit acknowledges with
// CONNECTED:<server_ip>:<cmd_port> on the client's data port and then
// streams samples, one per line:
//
//	>var:timestamp_ms:value|g\n
//
// DISCONNECT clears the target and pauses streaming. There is at most
// one data target at a time; a new CONNECT replaces the previous one.
package telemetry
