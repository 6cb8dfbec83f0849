package kernel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nrolfe/trios/internal/kernel"
	"github.com/nrolfe/trios/internal/rofs"
)

func TestFDTableOpenReadWriteClose(t *testing.T) {
	raw := rofs.NewBuilder().
		AddDir(".").
		AddFile("greeting", []byte("hi there")).
		AddRTC("rtc").
		Build()
	img, err := rofs.Open(raw)
	if err != nil {
		t.Fatal(err)
	}

	ts := kernel.NewTerminalSet()
	term, _ := ts.Terminal(0)
	fds := kernel.NewFDTable(term)
	rtc := kernel.NewRTC()

	ctx := context.Background()

	dentry, err := img.LookupByName("greeting")
	if err != nil {
		t.Fatal(err)
	}

	fd, err := fds.Open(dentry.Kind, dentry.Inode, img, rtc)
	if err != nil {
		t.Fatal(err)
	}
	if fd < 2 {
		t.Fatalf("fd = %d, should not reuse stdin/stdout", fd)
	}

	buf := make([]byte, 32)
	n, err := fds.Read(ctx, fd, buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "hi there" {
		t.Errorf("read %q, want %q", buf[:n], "hi there")
	}

	if _, err := fds.Write(ctx, fd, []byte("x")); !errors.Is(err, rofs.ErrReadOnly) {
		t.Errorf("write to regular file: got %v, want ErrReadOnly", err)
	}

	if err := fds.Close(fd); err != nil {
		t.Fatal(err)
	}
	if err := fds.Close(fd); !errors.Is(err, kernel.ErrBadFD) {
		t.Errorf("closing twice: got %v, want ErrBadFD", err)
	}
}

func TestFDTableStdinStdoutCannotBeClosed(t *testing.T) {
	ts := kernel.NewTerminalSet()
	term, _ := ts.Terminal(0)
	fds := kernel.NewFDTable(term)

	if err := fds.Close(0); !errors.Is(err, kernel.ErrBadFD) {
		t.Errorf("closing stdin: got %v, want ErrBadFD", err)
	}
	if err := fds.Close(1); !errors.Is(err, kernel.ErrBadFD) {
		t.Errorf("closing stdout: got %v, want ErrBadFD", err)
	}
}

func TestFDTableFillsAllSlots(t *testing.T) {
	raw := rofs.NewBuilder().AddFile("f", []byte("x")).Build()
	img, err := rofs.Open(raw)
	if err != nil {
		t.Fatal(err)
	}
	dentry, _ := img.LookupByName("f")

	ts := kernel.NewTerminalSet()
	term, _ := ts.Terminal(0)
	fds := kernel.NewFDTable(term)
	rtc := kernel.NewRTC()

	for i := 2; i < kernel.MaxOpenFiles; i++ {
		if _, err := fds.Open(dentry.Kind, dentry.Inode, img, rtc); err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
	}

	if _, err := fds.Open(dentry.Kind, dentry.Inode, img, rtc); !errors.Is(err, kernel.ErrFDTableFull) {
		t.Errorf("got %v, want ErrFDTableFull", err)
	}
}

func TestFDTableDirectoryListing(t *testing.T) {
	raw := rofs.NewBuilder().
		AddDir(".").
		AddFile("a", []byte("1")).
		AddFile("b", []byte("2")).
		Build()
	img, err := rofs.Open(raw)
	if err != nil {
		t.Fatal(err)
	}
	dentry, err := img.LookupByName(".")
	if err != nil {
		t.Fatal(err)
	}

	ts := kernel.NewTerminalSet()
	term, _ := ts.Terminal(0)
	fds := kernel.NewFDTable(term)
	rtc := kernel.NewRTC()

	fd, err := fds.Open(dentry.Kind, dentry.Inode, img, rtc)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	var names []string
	buf := make([]byte, 33)
	for {
		n, err := fds.Read(ctx, fd, buf)
		if err != nil {
			t.Fatal(err)
		}
		if n == 0 {
			break
		}
		names = append(names, string(buf[:n]))
	}

	if len(names) != 3 {
		t.Fatalf("got %d names, want 3 (., a, b): %v", len(names), names)
	}
}
