package kernel_test

import (
	"context"
	"testing"
	"time"

	"github.com/nrolfe/trios/internal/kernel"
)

func TestKeyboardDeliversToDisplayedTerminal(t *testing.T) {
	ts := kernel.NewTerminalSet()
	kb := kernel.NewKeyboard(ts)

	if err := kb.SelectTerminal(1); err != nil {
		t.Fatal(err)
	}

	for _, b := range []byte("hi\n") {
		kb.HandleByte(b)
	}

	term, _ := ts.Terminal(1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	buf := make([]byte, 8)
	n, err := term.Read(ctx, buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "hi\n" {
		t.Errorf("got %q, want %q", buf[:n], "hi\n")
	}

	other, _ := ts.Terminal(0)
	other.PushByte('x') // sanity: terminal 0 unaffected by keyboard input above
	ctx2, cancel2 := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel2()
	buf2 := make([]byte, 8)
	if _, err := other.Read(ctx2, buf2); err == nil {
		t.Error("terminal 0 should have no completed line from keyboard routing")
	}
}
