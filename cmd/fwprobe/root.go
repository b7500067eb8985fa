package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/buslab/fwprobe/fwbus"
	"github.com/buslab/fwprobe/fwcdev"
	"github.com/buslab/fwprobe/trace"
)

var (
	deviceFlag  string
	timeoutFlag int
	traceFlag   string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "fwprobe",
	Short: "fwprobe sends requests and PHY packets to FireWire bus nodes.",
	Long: `fwprobe sends asynchronous requests, lock transactions, FCP commands and ` +
		`PHY control packets to nodes on a FireWire bus through /dev/fw* device ` +
		`files, and decodes the replies.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Exit goes through atexit so trace buffers and the
// unknown-device report are flushed on every path.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&deviceFlag, "device", "d", "",
		"device file of the target node (default $FWPROBE_DEVICE or /dev/fw0)")
	pf.IntVar(&timeoutFlag, "timeout", 0,
		"per-step wait bound in milliseconds (default $FWPROBE_TIMEOUT_MS or 123)")
	pf.StringVar(&traceFlag, "trace", "",
		"record transactions to a SQLite file (default $FWPROBE_TRACE)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "more information")
}

func device() string {
	if deviceFlag != "" {
		return deviceFlag
	}
	if d := os.Getenv("FWPROBE_DEVICE"); d != "" {
		return d
	}
	return "/dev/fw0"
}

func pollTimeout() time.Duration {
	ms := timeoutFlag
	if ms == 0 {
		if s := os.Getenv("FWPROBE_TIMEOUT_MS"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				die("invalid FWPROBE_TIMEOUT_MS: %q", s)
			}
			ms = n
		}
	}
	return time.Duration(ms) * time.Millisecond
}

func tracePath() (string, bool) {
	path := traceFlag
	if path == "" {
		path = os.Getenv("FWPROBE_TRACE")
	}
	switch path {
	case "":
		return "", false
	case "1", "true":
		// Enabled without a name; the recorder picks a unique one.
		return "", true
	}
	return path, true
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	atexit.Exit(1)
}

// openSession attaches to a device file and wires up tracing if enabled.
// The channel is closed through atexit so every command exit path, including
// die, releases it.
func openSession(path string) *fwbus.Session {
	ch, info, err := fwcdev.Open(path)
	if err != nil {
		die("%s: %v", path, err)
	}

	s := fwbus.NewSession(ch, info)
	atexit.Register(func() { s.Close() })
	s.SetPollTimeout(pollTimeout())

	if path, ok := tracePath(); ok {
		rec, err := trace.New(path)
		if err != nil {
			die("%v", err)
		}
		s.SetRecorder(rec)
	}

	return s
}
