// Command profile-log is a tool for viewing and analyzing publication log
// files and frame files written by battery-sim.
//
// Log files are created by running battery-sim with -protocol-log.
// Frame files are created by running battery-sim with -out.
//
// Usage:
//
//	profile-log <command> [flags] <file>
//
// Commands:
//
//	view     View log file in human-readable format
//	stats    Show statistics about the log file
//	export   Export log file to JSONL or CSV
//	frames   Decode a frame file
//
// Examples:
//
//	# View all events
//	profile-log view bess.plog
//
//	# View received controls for one device
//	profile-log view -device LD1 -kind control -direction in bess.plog
//
//	# Show statistics for failed profiles only
//	profile-log stats -errors bess.plog
//
//	# Export readings to CSV
//	profile-log export -format csv -kind reading -o readings.csv bess.plog
//
//	# Decode published frames
//	profile-log frames bess.frames
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/openfmb-sim/battery-sim-go/cmd/profile-log/commands"
	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
)

const usage = `profile-log - Battery Profile Log Analyzer

Usage:
  profile-log <command> [flags] <file>

Commands:
  view     View log file in human-readable format
  stats    Show statistics about the log file
  export   Export log file to JSONL or CSV
  frames   Decode a frame file

Use "profile-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "view":
		err = runView(args)
	case "stats":
		err = runStats(args)
	case "export":
		err = runExport(args)
	case "frames":
		err = runFrames(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newFlagSet creates a flag set with the shared filter flags.
func newFlagSet(name, summary string) (*flag.FlagSet, *commands.FilterOptions) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "profile-log %s - %s\n\nUsage:\n  profile-log %s [flags] <file.plog>\n\nFlags:\n", name, summary, name)
		fs.PrintDefaults()
	}

	opts := &commands.FilterOptions{}
	fs.StringVar(&opts.Device, "device", "", "Filter by logical device ID")
	fs.StringVar(&opts.Kind, "kind", "", "Filter by kind (reading, event, control)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.BoolVar(&opts.ErrorsOnly, "errors", false, "Only events that failed")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	return fs, opts
}

func pathArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() < 1 {
		fs.Usage()
		return "", fmt.Errorf("file path required")
	}
	return fs.Arg(0), nil
}

func runView(args []string) error {
	fs, opts := newFlagSet("view", "View log file in human-readable format")
	_ = fs.Parse(args)

	path, err := pathArg(fs)
	if err != nil {
		return err
	}
	filter, err := commands.BuildFilter(*opts)
	if err != nil {
		return err
	}
	return commands.RunView(path, filter, os.Stdout)
}

func runStats(args []string) error {
	fs, opts := newFlagSet("stats", "Show statistics about the log file")
	_ = fs.Parse(args)

	path, err := pathArg(fs)
	if err != nil {
		return err
	}
	filter, err := commands.BuildFilter(*opts)
	if err != nil {
		return err
	}
	return commands.RunStats(path, filter, os.Stdout)
}

func runExport(args []string) error {
	fs, opts := newFlagSet("export", "Export log file to JSONL or CSV")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	path, err := pathArg(fs)
	if err != nil {
		return err
	}
	filter, err := commands.BuildFilter(*opts)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return commands.RunExport(path, *format, filter, w)
}

func runFrames(args []string) error {
	fs := flag.NewFlagSet("frames", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "profile-log frames - Decode a frame file\n\nUsage:\n  profile-log frames [flags] <file.frames>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	kindFlag := fs.String("kind", "", "Only show this kind (reading, event, control)")
	_ = fs.Parse(args)

	path, err := pathArg(fs)
	if err != nil {
		return err
	}

	var kind *schema.ProfileKind
	if *kindFlag != "" {
		k, err := commands.ParseKindFlag(*kindFlag)
		if err != nil {
			return err
		}
		kind = &k
	}
	return commands.RunFrames(path, kind, os.Stdout)
}
