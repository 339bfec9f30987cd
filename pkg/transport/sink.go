package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
)

// FrameSink publishes envelopes as frames on a writer.
type FrameSink struct {
	fw     *FrameWriter
	closer io.Closer
	frames atomic.Int64
}

// NewFrameSink creates a sink writing to w. The caller owns w.
func NewFrameSink(w io.Writer) *FrameSink {
	return &FrameSink{fw: NewFrameWriter(w)}
}

// CreateFrameSink creates (or truncates) a file and returns a sink
// writing to it. Close closes the file.
func CreateFrameSink(path string) (*FrameSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame file: %w", err)
	}
	return &FrameSink{fw: NewFrameWriter(f), closer: f}, nil
}

// Publish writes one envelope. The kind is not part of the frame; the
// envelope carries it.
func (s *FrameSink) Publish(ctx context.Context, _ schema.ProfileKind, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fw.WriteFrame(data); err != nil {
		return err
	}
	s.frames.Add(1)
	return nil
}

// Frames returns the number of frames written.
func (s *FrameSink) Frames() int64 {
	return s.frames.Load()
}

// Close closes the underlying file if the sink opened it.
func (s *FrameSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// FrameHandler receives one frame payload.
type FrameHandler func(data []byte) error

// FrameSource reads frames from a stream.
type FrameSource struct {
	fr *FrameReader
}

// NewFrameSource creates a source reading from r.
func NewFrameSource(r io.Reader) *FrameSource {
	return &FrameSource{fr: NewFrameReader(r)}
}

// Serve reads frames and passes each to handle until the stream ends or
// ctx is cancelled. Handler errors go to onError (if set) and do not stop
// the loop. A clean end of stream returns nil.
func (s *FrameSource) Serve(ctx context.Context, handle FrameHandler, onError func(error)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := s.fr.ReadFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := handle(data); err != nil && onError != nil {
			onError(err)
		}
	}
}
