package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/nrolfe/trios/internal/cli"
	"github.com/nrolfe/trios/internal/kernel"
	"github.com/nrolfe/trios/internal/log"
	"github.com/nrolfe/trios/internal/monitor"
	"github.com/nrolfe/trios/internal/rofs"
)

// scriptedInput is typed into terminal 0 once boot has a shell running
// there, demonstrating the builtin programs without a real TTY.
const scriptedInput = "ls\nhello trios\ncat hello\nexit\n"

// Demo is the command that boots the kernel headlessly, types a scripted
// command sequence into terminal 0, and prints what landed on its video
// mirror. It needs no real terminal, so it is the command CI runs.
//
//	trios demo
func Demo() cli.Command {
	return new(demo)
}

type demo struct {
	debug bool
}

func (demo) Description() string {
	return "boot headlessly and run a scripted demo"
}

func (demo) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `demo

Boots three terminal shells with no real TTY attached, types a scripted
command sequence into terminal 0, and prints its resulting screen.`)

	return err
}

func (d *demo) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	fs.BoolVar(&d.debug, "debug", false, "enable debug logging")

	return fs
}

func (d *demo) Run(ctx context.Context, args []string, stdout io.Writer, logger *log.Logger) int {
	if d.debug {
		log.LogLevel.Set(log.Debug)
	}

	fs, err := rofs.Open(monitor.DefaultImage())
	if err != nil {
		logger.Error("opening image", "err", err)
		return 1
	}

	k := kernel.New(fs, kernel.WithLogger(logger))

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- monitor.Boot(ctx, k) }()

	term, err := k.Terminals.Terminal(0)
	if err != nil {
		logger.Error("terminal 0", "err", err)
		return 1
	}

	time.Sleep(50 * time.Millisecond)
	for _, b := range []byte(scriptedInput) {
		term.PushByte(b)
	}

	// A boot shell is relaunched when it halts (the "exit" above just
	// restarts terminal 0's prompt), so Boot only ever returns on
	// cancellation or error; it never signals "the script finished."
	// Give the scripted commands time to run, then cancel and render
	// whatever landed on the screen.
	time.Sleep(250 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil && err != context.Canceled {
			logger.Error("boot", "err", err)
			return 1
		}
	case <-time.After(time.Second):
		logger.Error("demo: boot did not stop after cancel")
		return 1
	}

	fmt.Fprint(stdout, renderScreen(term.Video()))

	return 0
}

// renderScreen strips trailing padding from a terminal's video mirror and
// joins its rows with newlines for plain-text display.
func renderScreen(video []byte) string {
	rowBytes := kernel.TerminalCols * 2
	var out []byte

	for row := 0; row*rowBytes < len(video) && row < kernel.TerminalRows; row++ {
		line := video[row*rowBytes : (row+1)*rowBytes]
		end := 0
		for i := 0; i < len(line); i += 2 {
			if line[i] != ' ' && line[i] != 0 {
				end = i + 2
			}
		}
		for i := 0; i < end; i += 2 {
			c := line[i]
			if c == 0 {
				c = ' '
			}
			out = append(out, c)
		}
		out = append(out, '\n')
	}

	return string(out)
}
