package kernel_test

import (
	"context"
	"testing"
	"time"

	"github.com/nrolfe/trios/internal/kernel"
)

func TestTerminalSetSwitchDisplayed(t *testing.T) {
	ts := kernel.NewTerminalSet()
	if ts.Displayed() != 0 {
		t.Fatalf("default displayed = %d, want 0", ts.Displayed())
	}

	var switched kernel.TermID = -1
	ts.OnSwitch(func(id kernel.TermID) { switched = id })

	if err := ts.SwitchDisplayed(2); err != nil {
		t.Fatal(err)
	}
	if ts.Displayed() != 2 {
		t.Errorf("displayed = %d, want 2", ts.Displayed())
	}
	if switched != 2 {
		t.Errorf("OnSwitch callback saw %d, want 2", switched)
	}

	if err := ts.SwitchDisplayed(99); err == nil {
		t.Error("switching to an out-of-range terminal should fail")
	}
}

func TestTerminalReadBlocksUntilLine(t *testing.T) {
	ts := kernel.NewTerminalSet()
	term, err := ts.Terminal(0)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result := make(chan string, 1)
	go func() {
		buf := make([]byte, 32)
		n, err := term.Read(ctx, buf)
		if err != nil {
			result <- "error: " + err.Error()
			return
		}
		result <- string(buf[:n])
	}()

	time.Sleep(10 * time.Millisecond)
	for _, b := range []byte("hi\n") {
		term.PushByte(b)
	}

	select {
	case got := <-result:
		if got != "hi\n" {
			t.Errorf("Read = %q, want %q", got, "hi\n")
		}
	case <-ctx.Done():
		t.Fatal("Read never returned")
	}
}

func TestTerminalReadShortBufferLeavesNewlinePending(t *testing.T) {
	ts := kernel.NewTerminalSet()
	term, _ := ts.Terminal(0)

	for _, b := range []byte("ab\n") {
		term.PushByte(b)
	}

	ctx := context.Background()
	buf := make([]byte, 2)

	n, err := term.Read(ctx, buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || string(buf[:n]) != "ab" {
		t.Fatalf("first Read = %q, want %q", buf[:n], "ab")
	}

	n, err = term.Read(ctx, buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || buf[0] != '\n' {
		t.Fatalf("second Read = %q, want newline", buf[:n])
	}
}

func TestTerminalBackspaceRemovesLastByte(t *testing.T) {
	ts := kernel.NewTerminalSet()
	term, _ := ts.Terminal(0)

	for _, b := range []byte("abc") {
		term.PushByte(b)
	}
	term.PushByte('\b')
	term.PushByte('\n')

	ctx := context.Background()
	buf := make([]byte, 32)
	n, err := term.Read(ctx, buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "ab\n" {
		t.Errorf("got %q, want %q", buf[:n], "ab\n")
	}
}

func TestTerminalClearResetsLineBuffer(t *testing.T) {
	ts := kernel.NewTerminalSet()
	term, _ := ts.Terminal(0)

	for _, b := range []byte("partial") {
		term.PushByte(b)
	}

	term.Clear()

	for _, b := range []byte(" line\n") {
		term.PushByte(b)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	buf := make([]byte, 32)
	n, err := term.Read(ctx, buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(buf[:n]); got != " line\n" {
		t.Errorf("Read after Clear = %q, want %q (stale buffer survived)", got, " line\n")
	}
}

func TestTerminalFullLineIsStillTerminable(t *testing.T) {
	ts := kernel.NewTerminalSet()
	term, _ := ts.Terminal(0)

	for i := 0; i < 200; i++ {
		term.PushByte('a')
	}
	term.PushByte('\n')

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	buf := make([]byte, 256)
	n, err := term.Read(ctx, buf)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 || buf[n-1] != '\n' {
		t.Fatalf("Read = %q, want a newline-terminated line", buf[:n])
	}
}

func TestTerminalReadCanceled(t *testing.T) {
	ts := kernel.NewTerminalSet()
	term, _ := ts.Terminal(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := term.Read(ctx, make([]byte, 8)); err == nil {
		t.Error("Read with a canceled context should return an error")
	}
}
