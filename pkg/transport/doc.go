// Package transport moves encoded profile envelopes as length-prefixed
// frames over byte streams such as files, pipes or stdout.
//
// # Frame Format
//
//	┌──────────────────────┬─────────────────────────┐
//	│ length (4B, BE)      │ envelope (length bytes) │
//	└──────────────────────┴─────────────────────────┘
//
// A FrameSink publishes frames to a writer. A FrameSource reads frames
// from a reader and hands each one to a handler until the stream ends.
package transport
