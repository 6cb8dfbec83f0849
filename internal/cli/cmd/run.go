package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nrolfe/trios/internal/cli"
	"github.com/nrolfe/trios/internal/kernel"
	"github.com/nrolfe/trios/internal/log"
	"github.com/nrolfe/trios/internal/monitor"
	"github.com/nrolfe/trios/internal/rofs"
	"github.com/nrolfe/trios/internal/tty"
)

// Run is the command that boots the kernel against the real console: three
// terminal shells, switched between with ALT-1/2/3, sharing one
// round-robin scheduler.
//
//	trios run [-quantum 10ms] [-image path]
func Run() cli.Command {
	return &run{quantum: kernel.DefaultQuantum}
}

type run struct {
	debug   bool
	quantum time.Duration
	image   string
}

func (run) Description() string {
	return "boot the kernel on the real terminal"
}

func (run) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `run [-quantum DURATION] [-image FILE]

Boots three terminal shells sharing one scheduler. Switch terminals with
ALT-1/2/3 (function keys are not decoded), clear the active one with
CTRL-L.`)

	return err
}

func (r *run) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.BoolVar(&r.debug, "debug", false, "enable debug logging")
	fs.DurationVar(&r.quantum, "quantum", kernel.DefaultQuantum, "scheduler time slice")
	fs.StringVar(&r.image, "image", "", "filesystem image (default: bundled demo image)")

	return fs
}

func (r *run) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	if r.debug {
		log.LogLevel.Set(log.Debug)
	}

	raw, err := r.loadImage()
	if err != nil {
		logger.Error("loading image", "err", err)
		return 1
	}

	fs, err := rofs.Open(raw)
	if err != nil {
		logger.Error("opening image", "err", err)
		return 1
	}

	k := kernel.New(fs, kernel.WithLogger(logger), kernel.WithQuantum(r.quantum))

	ctx, console, cancel := tty.WithConsole(ctx, k.Keyboard, k.Terminals)
	defer cancel()

	if console == nil {
		logger.Error("console", "err", tty.ErrNoTTY)
		return 1
	}

	logger.Info("booting")

	// Boot shells are relaunched when they halt, so Boot only returns
	// once every terminal's loop hits an error — in normal operation,
	// context.Canceled when the console tears down.
	if err := monitor.Boot(ctx, k); err != nil && err != context.Canceled {
		logger.Error("boot", "err", err)
		return 1
	}

	logger.Info("shut down")

	return 0
}

func (r *run) loadImage() ([]byte, error) {
	if r.image == "" {
		return monitor.DefaultImage(), nil
	}
	return os.ReadFile(r.image)
}
