// Package discovery advertises the kit on the local network over mDNS,
// so plot clients can reach it as iikit<N>.local without knowing its
// address. The service type is _iikit-telemetry._udp with TXT records
// carrying the kit id, firmware version and exported variable names.
package discovery
