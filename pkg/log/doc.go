// Package log provides structured publication logging for battery profiles.
//
// This package defines the Logger interface and Event type for capturing
// every profile the simulator publishes or receives. It is separate from
// operational logging (slog): the publication log is a complete,
// machine-readable trace of profile traffic.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	logger, _ := log.NewFileLogger("/var/log/battery-sim/profiles.plog")
//
//	// Both: use MultiLogger
//	logger := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys
// (.plog extension). The profile-log CLI views and summarizes them.
package log
