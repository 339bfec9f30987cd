// Command battery-ctl writes battery control profiles as frames, for
// battery-sim's -control-in input.
//
// Usage:
//
//	battery-ctl [flags]
//
// Flags:
//
//	-device string    Target logical device ID
//	-identity string  Target identity file (YAML), instead of -device
//	-island           Island the battery
//	-power float      Real power setpoint in kW (positive charges)
//	-mode int         Mode setpoint (0 Standby, 1 Charge, 2 Discharge, 3 Islanded)
//	-out string       Output file or FIFO, "-" for stdout (default "-")
//	-interactive, -i  Read control commands from the terminal
//
// Controls are written in the order island, mode, power.
//
// Examples:
//
//	# Discharge at 3 kW
//	battery-ctl -device LD1 -mode 2 -power -3 -out /tmp/bess.ctl
//
//	# Send controls from a console
//	battery-ctl -device LD1 -out /tmp/bess.ctl -i
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openfmb-sim/battery-sim-go/cmd/battery-ctl/interactive"
	"github.com/openfmb-sim/battery-sim-go/pkg/device"
	"github.com/openfmb-sim/battery-sim-go/pkg/profile"
	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
	"github.com/openfmb-sim/battery-sim-go/pkg/transport"
	"github.com/openfmb-sim/battery-sim-go/pkg/wire"
)

// request is the set of controls to send.
type request struct {
	island bool
	power  *float64
	mode   *int
}

var errNoControl = errors.New("no control requested (use -island, -power or -mode)")

func main() {
	deviceID := flag.String("device", "", "Target logical device ID")
	identityFile := flag.String("identity", "", "Target identity file (YAML)")
	island := flag.Bool("island", false, "Island the battery")
	power := flag.Float64("power", 0, "Real power setpoint in kW (positive charges)")
	mode := flag.Int("mode", 0, "Mode setpoint")
	output := flag.String("out", "-", "Output file or FIFO, \"-\" for stdout")
	var interactiveMode bool
	flag.BoolVar(&interactiveMode, "interactive", false, "Read control commands from the terminal")
	flag.BoolVar(&interactiveMode, "i", false, "Shorthand for -interactive")
	flag.Parse()

	if interactiveMode {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := runInteractive(ctx, *deviceID, *identityFile, *output); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	req := request{island: *island}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "power":
			req.power = power
		case "mode":
			req.mode = mode
		}
	})

	if err := run(*deviceID, *identityFile, req, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(deviceID, identityFile string, req request, output string) error {
	id, err := resolveIdentity(deviceID, identityFile)
	if err != nil {
		return err
	}

	controls, err := buildControls(profile.NewBuilder(), id, req)
	if err != nil {
		return err
	}

	sink, closeOutput, err := openOutput(output)
	if err != nil {
		return err
	}
	defer closeOutput()

	for _, c := range controls {
		data, err := wire.EncodeProfile(c)
		if err != nil {
			return err
		}
		if err := sink.Publish(context.Background(), c.Kind(), data); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "Wrote %d control(s) for %s\n", sink.Frames(), id)
	return nil
}

// runInteractive sends controls typed at the console until the user quits.
func runInteractive(ctx context.Context, deviceID, identityFile, output string) error {
	id, err := resolveIdentity(deviceID, identityFile)
	if err != nil {
		return err
	}

	// Opening a FIFO blocks until battery-sim opens its end.
	sink, closeOutput, err := openOutput(output)
	if err != nil {
		return err
	}
	defer closeOutput()

	shell, err := interactive.New(id, sink)
	if err != nil {
		return err
	}
	shell.Run(ctx)
	fmt.Fprintf(os.Stderr, "Wrote %d control(s) for %s\n", sink.Frames(), id)
	return nil
}

// openOutput opens the frame output. "-" is stdout.
func openOutput(output string) (*transport.FrameSink, func() error, error) {
	if output == "-" {
		return transport.NewFrameSink(os.Stdout), func() error { return nil }, nil
	}
	// O_CREATE without O_TRUNC so a FIFO is opened, not replaced.
	f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", output, err)
	}
	return transport.NewFrameSink(f), f.Close, nil
}

func resolveIdentity(deviceID, identityFile string) (device.Identity, error) {
	if identityFile != "" {
		return device.LoadIdentity(identityFile)
	}
	if deviceID == "" {
		return device.Identity{}, device.ErrMissingLogicalDevice
	}
	return device.NewIdentity("", "", deviceID), nil
}

// buildControls builds one control profile per requested control.
func buildControls(b *profile.Builder, id device.Identity, req request) ([]*schema.BatteryControlProfile, error) {
	var out []*schema.BatteryControlProfile

	if req.island {
		p, err := b.ControlIslanded(id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if req.mode != nil {
		p, err := b.ControlModeSetpoint(id, *req.mode)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if req.power != nil {
		p, err := b.ControlPowerSetpoint(id, *req.power)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	if len(out) == 0 {
		return nil, errNoControl
	}
	return out, nil
}
