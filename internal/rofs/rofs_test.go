package rofs_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nrolfe/trios/internal/rofs"
)

func TestOpenRejectsShortImage(t *testing.T) {
	_, err := rofs.Open(make([]byte, 10))
	if !errors.Is(err, rofs.ErrCorrupt) {
		t.Fatalf("want ErrCorrupt, got %v", err)
	}
}

func TestLookupByName(t *testing.T) {
	raw := rofs.NewBuilder().
		AddDir(".").
		AddFile("shell", bytes.Repeat([]byte{0xAB}, 10)).
		AddRTC("rtc").
		Build()

	img, err := rofs.Open(raw)
	if err != nil {
		t.Fatal(err)
	}

	d, err := img.LookupByName("shell")
	if err != nil {
		t.Fatal(err)
	}
	if d.Kind != rofs.KindFile {
		t.Errorf("kind = %v, want file", d.Kind)
	}

	if _, err := img.LookupByName(""); !errors.Is(err, rofs.ErrNotFound) {
		t.Errorf("empty name: got %v, want ErrNotFound", err)
	}

	if _, err := img.LookupByName("nonexistent"); !errors.Is(err, rofs.ErrNotFound) {
		t.Errorf("missing name: got %v, want ErrNotFound", err)
	}
}

func TestLookupByIndexAllowsUnpopulatedSlots(t *testing.T) {
	raw := rofs.NewBuilder().AddFile("a", []byte("x")).Build()
	img, err := rofs.Open(raw)
	if err != nil {
		t.Fatal(err)
	}

	d, err := img.LookupByIndex(17)
	if err != nil {
		t.Fatalf("in-range unpopulated slot should not error: %v", err)
	}
	if d.Name != "" {
		t.Errorf("unpopulated slot name = %q, want empty", d.Name)
	}

	if _, err := img.LookupByIndex(rofs.MaxDentries); !errors.Is(err, rofs.ErrOutOfRange) {
		t.Errorf("index at MaxDentries: got %v, want ErrOutOfRange", err)
	}
}

func TestReadDataAcrossBlockBoundary(t *testing.T) {
	payload := bytes.Repeat([]byte{0, 1, 2, 3}, rofs.BlockSize) // spans multiple blocks
	raw := rofs.NewBuilder().AddFile("big", payload).Build()
	img, err := rofs.Open(raw)
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 100)
	n, err := img.ReadData(0, uint32(rofs.BlockSize-50), buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 100 {
		t.Fatalf("n = %d, want 100", n)
	}
	if !bytes.Equal(buf, payload[rofs.BlockSize-50:rofs.BlockSize+50]) {
		t.Errorf("data mismatch across block boundary")
	}
}

func TestReadDataClampsToInodeLength(t *testing.T) {
	raw := rofs.NewBuilder().AddFile("small", []byte("hello")).Build()
	img, err := rofs.Open(raw)
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 100)
	n, err := img.ReadData(0, 0, buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatalf("n = %d, want 5", n)
	}

	n, err = img.ReadData(0, 5, buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("read at EOF: n = %d, want 0", n)
	}
}

func TestWriteIsRejected(t *testing.T) {
	raw := rofs.NewBuilder().AddFile("f", []byte("x")).Build()
	img, err := rofs.Open(raw)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := img.Write(0, 0, []byte("y")); !errors.Is(err, rofs.ErrReadOnly) {
		t.Errorf("got %v, want ErrReadOnly", err)
	}
}
