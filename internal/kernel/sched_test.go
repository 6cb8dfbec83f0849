package kernel_test

import (
	"context"
	"testing"
	"time"

	"github.com/nrolfe/trios/internal/kernel"
)

func TestSchedulerRoundRobinsActiveTerminal(t *testing.T) {
	ts := kernel.NewTerminalSet()
	s := kernel.NewScheduler(ts, 10*time.Millisecond, nil)

	if s.Active() != 0 {
		t.Fatalf("initial active terminal = %d, want 0", s.Active())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	if err := s.Yield(ctx2, 1); err != nil {
		t.Fatalf("terminal 1 never got a turn: %v", err)
	}

	ctx3, cancel3 := context.WithTimeout(context.Background(), time.Second)
	defer cancel3()
	if err := s.Yield(ctx3, 2); err != nil {
		t.Fatalf("terminal 2 never got a turn: %v", err)
	}
}

func TestSchedulerYieldCanceled(t *testing.T) {
	ts := kernel.NewTerminalSet()
	s := kernel.NewScheduler(ts, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Yield(ctx, 1); err == nil {
		t.Error("Yield on an inactive terminal with a canceled context should error")
	}
}
