package kernel

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/nrolfe/trios/internal/rofs"
)

// MaxOpenFiles bounds a task's descriptor table; slots 0 and 1 are
// always stdin and stdout, leaving six for files, directories, and
// devices.
const MaxOpenFiles = 8

const (
	fdStdin  = 0
	fdStdout = 1
)

// fileOps is the per-kind jump table a descriptor dispatches through:
// one small vtable per file kind instead of a type switch on every
// read or write.
type fileOps interface {
	Read(ctx context.Context, fd *FileDescriptor, buf []byte) (int, error)
	Write(ctx context.Context, fd *FileDescriptor, buf []byte) (int, error)
	Close(fd *FileDescriptor) error
}

// FileDescriptor is one open-file table entry. Which fields are live
// depends on ops: regular files and directories use img/inode/pos, the
// console uses term, the clock uses rtc.
type FileDescriptor struct {
	ops fileOps

	img   *rofs.Image
	inode uint32
	pos   uint32

	term *Terminal
	rtc  *RTCHandle
}

// FDTable is a task's open-file table.
type FDTable struct {
	entries [MaxOpenFiles]*FileDescriptor
}

// NewFDTable returns a table with stdin and stdout already bound to
// term, the terminal the owning task was launched from.
func NewFDTable(term *Terminal) *FDTable {
	t := &FDTable{}
	t.entries[fdStdin] = &FileDescriptor{ops: stdinOps{}, term: term}
	t.entries[fdStdout] = &FileDescriptor{ops: stdoutOps{}, term: term}
	return t
}

// Open installs a new descriptor for the given file kind in the lowest
// free slot at or above 2.
func (t *FDTable) Open(kind rofs.FileKind, inode uint32, img *rofs.Image, rtc *RTC) (int, error) {
	fd := -1
	for i := 2; i < MaxOpenFiles; i++ {
		if t.entries[i] == nil {
			fd = i
			break
		}
	}
	if fd == -1 {
		return 0, ErrFDTableFull
	}

	var entry *FileDescriptor
	switch kind {
	case rofs.KindRTC:
		entry = &FileDescriptor{ops: rtcOps{}, rtc: rtc.Open()}
	case rofs.KindDir:
		entry = &FileDescriptor{ops: dirOps{}, img: img, inode: inode}
	case rofs.KindFile:
		entry = &FileDescriptor{ops: regularFileOps{}, img: img, inode: inode}
	default:
		return 0, fmt.Errorf("kernel: unknown file kind %v: %w", kind, ErrBadCommand)
	}

	t.entries[fd] = entry
	return fd, nil
}

// Close releases a descriptor. fd 0 and 1 can never be closed.
func (t *FDTable) Close(fd int) error {
	if fd < 2 || fd >= MaxOpenFiles || t.entries[fd] == nil {
		return ErrBadFD
	}
	entry := t.entries[fd]
	t.entries[fd] = nil
	return entry.ops.Close(entry)
}

func (t *FDTable) get(fd int) (*FileDescriptor, error) {
	if fd < 0 || fd >= MaxOpenFiles || t.entries[fd] == nil {
		return nil, ErrBadFD
	}
	return t.entries[fd], nil
}

// Read dispatches to the descriptor's fileOps.
func (t *FDTable) Read(ctx context.Context, fd int, buf []byte) (int, error) {
	e, err := t.get(fd)
	if err != nil {
		return 0, err
	}
	return e.ops.Read(ctx, e, buf)
}

// Write dispatches to the descriptor's fileOps.
func (t *FDTable) Write(ctx context.Context, fd int, buf []byte) (int, error) {
	e, err := t.get(fd)
	if err != nil {
		return 0, err
	}
	return e.ops.Write(ctx, e, buf)
}

// CloseAll closes every open descriptor above stdin/stdout, used when a
// task halts.
func (t *FDTable) CloseAll() {
	for i := 2; i < MaxOpenFiles; i++ {
		if t.entries[i] != nil {
			_ = t.entries[i].ops.Close(t.entries[i])
			t.entries[i] = nil
		}
	}
}

type stdinOps struct{}

func (stdinOps) Read(ctx context.Context, fd *FileDescriptor, buf []byte) (int, error) {
	return fd.term.Read(ctx, buf)
}
func (stdinOps) Write(context.Context, *FileDescriptor, []byte) (int, error) {
	return 0, ErrUnsupported
}
func (stdinOps) Close(*FileDescriptor) error { return nil }

type stdoutOps struct{}

func (stdoutOps) Read(context.Context, *FileDescriptor, []byte) (int, error) {
	return 0, ErrUnsupported
}
func (stdoutOps) Write(_ context.Context, fd *FileDescriptor, buf []byte) (int, error) {
	return fd.term.Write(buf), nil
}
func (stdoutOps) Close(*FileDescriptor) error { return nil }

type rtcOps struct{}

func (rtcOps) Read(ctx context.Context, fd *FileDescriptor, buf []byte) (int, error) {
	if err := fd.rtc.Read(ctx); err != nil {
		return 0, err
	}
	return 0, nil
}

// Write expects a 4-byte little-endian frequency, matching the
// original device's register-write convention for reprogramming its
// rate.
func (rtcOps) Write(_ context.Context, fd *FileDescriptor, buf []byte) (int, error) {
	if len(buf) != 4 {
		return 0, fmt.Errorf("kernel: rtc write wants 4 bytes, got %d: %w", len(buf), ErrBadCommand)
	}
	freq := int(binary.LittleEndian.Uint32(buf))
	if err := fd.rtc.SetFrequency(freq); err != nil {
		return 0, err
	}
	return 4, nil
}
func (rtcOps) Close(fd *FileDescriptor) error { return fd.rtc.Close() }

type regularFileOps struct{}

func (regularFileOps) Read(_ context.Context, fd *FileDescriptor, buf []byte) (int, error) {
	n, err := fd.img.ReadData(fd.inode, fd.pos, buf)
	if err != nil {
		return 0, err
	}
	fd.pos += uint32(n)
	return n, nil
}
func (regularFileOps) Write(context.Context, *FileDescriptor, []byte) (int, error) {
	return 0, rofs.ErrReadOnly
}
func (regularFileOps) Close(*FileDescriptor) error { return nil }

type dirOps struct{}

// Read returns one directory entry's name per call, advancing to the
// next populated slot each time, and reports end-of-directory as a
// zero-length, nil-error read.
func (dirOps) Read(_ context.Context, fd *FileDescriptor, buf []byte) (int, error) {
	for {
		if fd.pos >= rofs.MaxDentries {
			return 0, nil
		}
		d, err := fd.img.LookupByIndex(int(fd.pos))
		fd.pos++
		if err != nil {
			return 0, err
		}
		if d.Name == "" {
			continue
		}
		return copy(buf, d.Name), nil
	}
}
func (dirOps) Write(context.Context, *FileDescriptor, []byte) (int, error) {
	return 0, rofs.ErrReadOnly
}
func (dirOps) Close(*FileDescriptor) error { return nil }
