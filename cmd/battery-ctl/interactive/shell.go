// Package interactive provides the interactive console for battery-ctl.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"

	"github.com/openfmb-sim/battery-sim-go/pkg/device"
	"github.com/openfmb-sim/battery-sim-go/pkg/profile"
	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
	"github.com/openfmb-sim/battery-sim-go/pkg/simulator"
	"github.com/openfmb-sim/battery-sim-go/pkg/transport"
	"github.com/openfmb-sim/battery-sim-go/pkg/wire"
)

// Shell reads control commands and writes one control frame per command.
type Shell struct {
	id      device.Identity
	builder *profile.Builder
	sink    *transport.FrameSink
	rl      *readline.Instance
	out     io.Writer
}

// New creates a shell on the terminal that sends controls for id to sink.
func New(id device.Identity, sink *transport.FrameSink) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "battery-ctl> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	s := newShell(id, sink, rl.Stdout())
	s.rl = rl
	return s, nil
}

func newShell(id device.Identity, sink *transport.FrameSink, out io.Writer) *Shell {
	return &Shell{
		id:      id,
		builder: profile.NewBuilder(),
		sink:    sink,
		out:     out,
	}
}

// Stdout returns a writer that does not disturb the prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run reads commands until quit, EOF or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) {
	defer s.rl.Close()

	s.printHelp()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return
		}
		if s.Exec(ctx, line) {
			fmt.Fprintln(s.out, "Exiting...")
			return
		}
	}
}

// Exec runs a single command line and reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "island", "i":
		p, err := s.builder.ControlIslanded(s.id)
		s.send(ctx, p, err)

	case "power", "p":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "Usage: power <kW>")
			return false
		}
		kw, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			fmt.Fprintf(s.out, "Invalid power %q: %v\n", args[0], err)
			return false
		}
		p, err := s.builder.ControlPowerSetpoint(s.id, kw)
		s.send(ctx, p, err)

	case "mode", "m":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "Usage: mode <n|standby|charge|discharge|islanded>")
			return false
		}
		mode, ok := parseMode(args[0])
		if !ok {
			fmt.Fprintf(s.out, "Invalid mode %q\n", args[0])
			return false
		}
		p, err := s.builder.ControlModeSetpoint(s.id, mode)
		s.send(ctx, p, err)

	case "sent":
		fmt.Fprintf(s.out, "%d control(s) sent to %s\n", s.sink.Frames(), s.id)

	case "quit", "exit", "q":
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) send(ctx context.Context, p *schema.BatteryControlProfile, err error) {
	if err != nil {
		fmt.Fprintf(s.out, "Build failed: %v\n", err)
		return
	}
	msgID := uuid.NewString()
	data, err := wire.EncodeProfileWithID(p, msgID)
	if err != nil {
		fmt.Fprintf(s.out, "Encode failed: %v\n", err)
		return
	}
	if err := s.sink.Publish(ctx, p.Kind(), data); err != nil {
		fmt.Fprintf(s.out, "Send failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Sent %s to %s (msg %s)\n", describe(p), p.LogicalDeviceID, msgID[:8])
}

// parseMode accepts a mode code or a mode name in any case.
func parseMode(arg string) (int, bool) {
	if n, err := strconv.Atoi(arg); err == nil {
		return n, true
	}
	for _, m := range []int{simulator.ModeStandby, simulator.ModeCharge, simulator.ModeDischarge, simulator.ModeIslanded} {
		if strings.EqualFold(arg, simulator.ModeName(m)) {
			return m, true
		}
	}
	return 0, false
}

func describe(p *schema.BatteryControlProfile) string {
	ctrl := p.BatterySystemControl
	if ctrl.IsIslanded {
		return "Islanded"
	}
	parts := make([]string, 0, len(ctrl.SetPoints))
	for _, sp := range ctrl.SetPoints {
		parts = append(parts, fmt.Sprintf("%s=%g", sp.ControlType, sp.Value))
	}
	return strings.Join(parts, " ")
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Battery Control Commands:
    island             - Island the battery
    power <kW>         - Set real power (positive charges, negative discharges)
    mode <n|name>      - Set mode (0 Standby, 1 Charge, 2 Discharge, 3 Islanded)
    sent               - Show how many controls were sent
    help               - Show this help
    quit               - Exit`)
}
