package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

const (
	// LengthPrefixSize is the size of the big-endian length prefix.
	LengthPrefixSize = 4

	// DefaultMaxMessageSize bounds a single envelope (64 KB).
	DefaultMaxMessageSize = 65536
)

var (
	// ErrMessageTooLarge indicates the envelope exceeds the maximum size.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrMessageEmpty indicates a zero-length frame.
	ErrMessageEmpty = errors.New("message is empty")

	// ErrFrameTruncated indicates the stream ended inside a frame.
	ErrFrameTruncated = errors.New("frame truncated")
)

// FrameOption configures a FrameWriter or FrameReader.
type FrameOption func(*frameConfig)

type frameConfig struct {
	maxSize uint32
}

// WithMaxSize overrides DefaultMaxMessageSize.
func WithMaxSize(n uint32) FrameOption {
	return func(c *frameConfig) { c.maxSize = n }
}

func newFrameConfig(opts []FrameOption) frameConfig {
	cfg := frameConfig{maxSize: DefaultMaxMessageSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c frameConfig) check(n uint64) error {
	if n == 0 {
		return ErrMessageEmpty
	}
	if n > uint64(c.maxSize) {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, n, c.maxSize)
	}
	return nil
}

// FrameWriter writes length-prefixed envelopes. It is safe for concurrent
// use; each frame reaches the writer in a single Write call.
type FrameWriter struct {
	mu  sync.Mutex
	w   io.Writer
	cfg frameConfig
}

// NewFrameWriter creates a frame writer on w.
func NewFrameWriter(w io.Writer, opts ...FrameOption) *FrameWriter {
	return &FrameWriter{w: w, cfg: newFrameConfig(opts)}
}

// WriteFrame writes data as one frame.
func (fw *FrameWriter) WriteFrame(data []byte) error {
	if err := fw.cfg.check(uint64(len(data))); err != nil {
		return err
	}

	frame := binary.BigEndian.AppendUint32(make([]byte, 0, FrameSize(len(data))), uint32(len(data)))
	frame = append(frame, data...)

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if _, err := fw.w.Write(frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// FrameReader reads length-prefixed envelopes.
type FrameReader struct {
	r      io.Reader
	cfg    frameConfig
	prefix [LengthPrefixSize]byte
}

// NewFrameReader creates a frame reader on r.
func NewFrameReader(r io.Reader, opts ...FrameOption) *FrameReader {
	return &FrameReader{r: r, cfg: newFrameConfig(opts)}
}

// ReadFrame returns the next frame's payload. It returns io.EOF only when
// the stream ends on a frame boundary.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.prefix[:]); err != nil {
		switch {
		case err == io.EOF:
			return nil, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, ErrFrameTruncated
		default:
			return nil, fmt.Errorf("reading length prefix: %w", err)
		}
	}

	n := binary.BigEndian.Uint32(fr.prefix[:])
	if err := fr.cfg.check(uint64(n)); err != nil {
		return nil, err
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	return payload, nil
}

// FrameSize returns the encoded size of a frame carrying payloadSize bytes.
func FrameSize(payloadSize int) int {
	return LengthPrefixSize + payloadSize
}
