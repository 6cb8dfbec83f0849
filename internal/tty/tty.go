// Package tty adapts the kernel's virtual terminals to a real Unix
// terminal. It decodes raw keystrokes (including the ALT-1/2/3
// terminal-switch hotkeys and CTRL-L) into the byte stream
// [kernel.Keyboard] expects; function-key sequences such as ALT-F1 are
// not decoded and reach the keyboard as plain bytes. It also
// repaints whichever terminal is currently displayed onto the
// physical screen whenever the displayed terminal changes or its
// video mirror has moved on.
package tty

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/nrolfe/trios/internal/kernel"
)

// Console is a serial console for the kernel, built on Unix terminal
// I/O[^1]. It adapts the real keyboard and screen for use by the
// terminal set a [kernel.Kernel] schedules over.
//
// Keys pressed on the console are decoded into keyboard-driver bytes,
// except for the three ALT-1/2/3 hotkeys, which never reach the keyboard
// at all: they are handled here as display-switch requests. Likewise,
// the displayed terminal's video mirror is painted to the real screen
// on a steady repaint tick.
//
// [1]: See: tty(4), termios(4).
type Console struct {
	in    *os.File
	out   *term.Terminal
	fd    int
	state *term.State

	keyCh chan byte
}

// ErrNoTTY is returned if standard input is not a terminal. In this case, asynchronous I/O is
// not supported by the console.
var ErrNoTTY error = errors.New("console: not a TTY")

// altHotkey maps the byte following an ESC that a terminal emulator
// sends for ALT+digit to the terminal it selects.
var altHotkey = map[byte]kernel.TermID{
	'1': 0,
	'2': 1,
	'3': 2,
}

// WithConsole creates a Console wired to decode keystrokes for kbd and
// repaint ts's displayed terminal. Calling the returned CancelFunc
// restores the terminal state and stops the repaint loop.
func WithConsole(parent context.Context, kbd *kernel.Keyboard, ts *kernel.TerminalSet) (
	context.Context, *Console, context.CancelFunc,
) {
	ctx, cancel := context.WithCancel(parent)

	console, err := NewConsole(os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		cancel()
		return ctx, console, cancel
	}

	repaint := func(id kernel.TermID) {
		term, terr := ts.Terminal(id)
		if terr != nil {
			return
		}
		_, _ = console.out.Write(renderVideo(term.Video()))
	}
	ts.OnSwitch(repaint)

	go console.readTerminal(ctx)
	go console.dispatchKeys(ctx, kbd)
	go console.repaintLoop(ctx, ts, repaint)

	return ctx, console, func() {
		cancel()
		console.Restore()
	}
}

// NewConsole creates a Console using the provided streams. If the input stream is not a terminal,
// ErrNoTTY is returned. Callers are responsible for calling [Console.Restore] to return the
// terminal to its initial state.
func NewConsole(sin, sout, serr *os.File) (*Console, error) {
	fd := int(sin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	cons := Console{
		fd:    fd,
		in:    sin,
		out:   term.NewTerminal(sout, ""),
		state: saved,
		keyCh: make(chan byte, 16),
	}

	if err := cons.setTerminalParams(1, 0); err != nil {
		return nil, err
	}

	return &cons, nil
}

// Press injects a key press into the input stream, standing in for a
// real keystroke in tests that cannot drive an actual terminal.
func (c Console) Press(key byte) {
	c.keyCh <- key
}

// Writer returns an io.Writer that writes to the terminal.
func (c Console) Writer() io.Writer {
	return c.out
}

// Restore returns the terminal to its initial state.
func (c *Console) Restore() {
	_ = c.in.SetReadDeadline(time.Now())
	_ = term.Restore(c.fd, c.state)
}

func (c *Console) setTerminalParams(vmin, vtime byte) error {
	_ = syscall.SetNonblock(c.fd, true)

	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	if err := unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO); err != nil {
		return err
	}

	_ = c.in.SetReadDeadline(time.Time{})

	return nil
}

// readTerminal reads bytes from the terminal and writes them to the key
// channel until the context is cancelled.
func (c Console) readTerminal(ctx context.Context) {
	buf := bufio.NewReader(c.in)

	// Make terminal input block on reads.
	_ = syscall.SetNonblock(c.fd, false)

	for { // ever and ever
		select {
		case <-ctx.Done():
			return
		default:
		}

		b, err := buf.ReadByte()
		if err != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case c.keyCh <- b:
		}
	}
}

// dispatchKeys takes bytes from the key channel and routes them to the
// keyboard, except for the two-byte ESC+'1'/'2'/'3' sequences a terminal
// emulator sends for ALT+1/2/3, which select a displayed terminal
// instead of ever reaching kbd. The function blocks until the context
// is cancelled.
func (c Console) dispatchKeys(ctx context.Context, kbd *kernel.Keyboard) {
	for { // you, a gift.
		select {
		case <-ctx.Done():
			return
		case b := <-c.keyCh:
			if b != 0x1b {
				kbd.HandleByte(b)
				continue
			}

			select {
			case <-ctx.Done():
				return
			case next := <-c.keyCh:
				if id, ok := altHotkey[next]; ok {
					_ = kbd.SelectTerminal(id)
				} else {
					kbd.HandleByte(b)
					kbd.HandleByte(next)
				}
			case <-time.After(10 * time.Millisecond):
				// A bare ESC, not the start of a hotkey sequence.
				kbd.HandleByte(b)
			}
		}
	}
}

// repaintLoop redraws the currently displayed terminal on a steady
// tick. A tick stands in for a dirty-rectangle tracker: the video
// mirror raises no change notification of its own, the same as a real
// VGA text-mode card.
func (c Console) repaintLoop(ctx context.Context, ts *kernel.TerminalSet, repaint func(kernel.TermID)) {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	for { // SPARTA!
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			repaint(ts.Displayed())
		}
	}
}

// renderVideo converts a [kernel.Terminal] video mirror (interleaved
// character/attribute byte pairs) into an ANSI escape sequence that
// repaints the whole screen: home the cursor, then emit each row's
// text, clearing to end-of-line so a shorter new frame erases what a
// longer previous one left behind.
func renderVideo(video []byte) []byte {
	out := []byte(ansi.CursorPosition(1, 1))

	rowBytes := kernel.TerminalCols * 2
	for row := 0; row*rowBytes < len(video) && row < kernel.TerminalRows; row++ {
		line := video[row*rowBytes : (row+1)*rowBytes]
		for i := 0; i < len(line); i += 2 {
			out = append(out, line[i])
		}
		out = append(out, ansi.EraseLineRight...)
		if row < kernel.TerminalRows-1 {
			out = append(out, '\r', '\n')
		}
	}
	return out
}
