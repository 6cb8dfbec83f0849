package kernel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nrolfe/trios/internal/kernel"
)

func TestRTCHandleTicksAtDefaultFrequency(t *testing.T) {
	r := kernel.NewRTC()
	h := r.Open()
	defer h.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := h.Read(ctx); err != nil {
		t.Fatalf("expected a tick within the default period: %v", err)
	}
}

func TestRTCHandleRejectsNonPowerOfTwo(t *testing.T) {
	r := kernel.NewRTC()
	h := r.Open()
	defer h.Close()

	if err := h.SetFrequency(3); !errors.Is(err, kernel.ErrBadCommand) {
		t.Fatalf("got %v, want ErrBadCommand", err)
	}
	if err := h.SetFrequency(1); !errors.Is(err, kernel.ErrBadCommand) {
		t.Fatalf("below minimum: got %v, want ErrBadCommand", err)
	}
	if err := h.SetFrequency(2048); !errors.Is(err, kernel.ErrBadCommand) {
		t.Fatalf("above maximum: got %v, want ErrBadCommand", err)
	}
}

func TestRTCHandlesAreIndependent(t *testing.T) {
	r := kernel.NewRTC()
	fast := r.Open()
	slow := r.Open()
	defer fast.Close()
	defer slow.Close()

	if err := fast.SetFrequency(1024); err != nil {
		t.Fatal(err)
	}
	if err := slow.SetFrequency(2); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := fast.Read(ctx); err != nil {
		t.Fatalf("fast handle should have ticked well within 100ms: %v", err)
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	if err := slow.Read(ctx2); err == nil {
		t.Fatal("slow handle (2 Hz) should not have ticked within 20ms")
	}
}
