// Package log provides structured event capture for the kit.
//
// This package defines the Logger interface and Event types for
// recording what the control loop and the telemetry link do: pin
// toggles, display writes, streamed samples, lifecycle state changes
// and errors. It is separate from operational logging (slog): event
// capture produces a complete machine-readable trace for debugging a
// kit run after the fact.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For long runs: write to binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/iikit/run.klog")
//
//	// Both: use MultiLogger
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    log.NewFileLogger("/var/log/iikit/run.klog"),
//	)
//
// # File Format
//
// Log files use CBOR encoding with .klog extension. The iikit-log CLI
// tool provides viewing and filtering.
package log
