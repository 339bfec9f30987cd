package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
	"github.com/openfmb-sim/battery-sim-go/pkg/transport"
	"github.com/openfmb-sim/battery-sim-go/pkg/wire"
)

// RunFrames decodes a frame file written by battery-sim and prints each
// profile. Frames of other kinds are skipped when kind is set.
func RunFrames(path string, kind *schema.ProfileKind, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open frame file: %w", err)
	}
	defer f.Close()

	n := 0
	err = transport.NewFrameSource(f).Serve(context.Background(), func(data []byte) error {
		n++
		env, err := wire.DecodeEnvelope(data)
		if err != nil {
			fmt.Fprintf(w, "#%d: %v\n\n", n, err)
			return nil
		}
		if kind != nil && env.Kind != *kind {
			return nil
		}
		p, err := env.Profile()
		if err != nil {
			fmt.Fprintf(w, "#%d %s: %v\n\n", n, env.Kind, err)
			return nil
		}
		fmt.Fprintf(w, "#%d %s %s %s (%d bytes)\n", n, p.ProfileTime(), env.Kind, p.LogicalDevice(), len(data))
		fmt.Fprintf(w, "  MessageID: %s\n", env.MessageID)
		formatProfile(w, p)
		fmt.Fprintln(w)
		return nil
	}, nil)
	if err != nil {
		return fmt.Errorf("frame %d: %w", n+1, err)
	}
	return nil
}
