// Package tty_test tries to test ttys.
//
// The test is skipped when stdin is not a terminal (ErrNoTTY). Notably, this includes when run with
// "go test" because it redirects tests' standard input/output streams. You can test it by building
// a test binary and running it directly:
//
//	$ go test -c && ./tty.test
package tty_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nrolfe/trios/internal/kernel"
	"github.com/nrolfe/trios/internal/tty"
)

type testHarness struct {
	*testing.T
}

const timeout = 100 * time.Millisecond

func (testHarness) Context() (context.Context, context.CancelFunc) {
	ctx := context.Background()
	return context.WithTimeout(ctx, timeout)
}

func TestConsoleDeliversKeysToDisplayedTerminal(tt *testing.T) {
	t := testHarness{tt}

	ts := kernel.NewTerminalSet()
	kbd := kernel.NewKeyboard(ts)

	ctx, cancel := t.Context()
	defer cancel()

	ctx, console, cancel := tty.WithConsole(ctx, kbd, ts)
	defer cancel()

	if console == nil {
		t.Skipf("error: %s", tty.ErrNoTTY)
	}

	term, err := ts.Terminal(0)
	if err != nil {
		t.Fatal(err)
	}

	lineRead := make(chan string, 1)

	go func() {
		defer close(lineRead)

		buf := make([]byte, 8)
		readCtx, readCancel := context.WithTimeout(context.Background(), timeout)
		defer readCancel()

		n, err := term.Read(readCtx, buf)
		if err != nil {
			return
		}
		lineRead <- string(buf[:n])
	}()

	console.Press('h')
	console.Press('i')
	console.Press('\n')

	select {
	case <-ctx.Done():
	case got, ok := <-lineRead:
		if !ok || got != "hi\n" {
			t.Errorf("terminal 0 read %q, want %q", got, "hi\n")
		}
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("cause: %s", err)
	}
}
