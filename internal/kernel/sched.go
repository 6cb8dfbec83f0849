package kernel

import (
	"context"
	"sync"
	"time"
)

// DefaultQuantum is the scheduler's default time slice, corresponding
// to the original's 100 Hz (10 ms) programmable interval timer.
const DefaultQuantum = 10 * time.Millisecond

// Scheduler round-robins the CPU among the configured terminals. Go
// already runs every task's goroutine concurrently, so Scheduler does
// not itself decide which goroutine gets a turn on a core; instead it
// hands out a cooperative token per terminal that a builtin program is
// expected to wait for at its own preemption points (see Task.Yield),
// the same place the original's timer interrupt could land between any
// two instructions.
type Scheduler struct {
	terminals *TerminalSet
	quantum   time.Duration

	mu     sync.Mutex
	active TermID
	tokens [NumTerminals]chan struct{}

	log interface {
		Info(msg string, args ...any)
	}
}

// NewScheduler returns a scheduler with terminal 0 holding the initial
// token.
func NewScheduler(ts *TerminalSet, quantum time.Duration, log interface {
	Info(msg string, args ...any)
}) *Scheduler {
	s := &Scheduler{terminals: ts, quantum: quantum, log: log}
	for i := range s.tokens {
		s.tokens[i] = make(chan struct{})
	}
	close(s.tokens[0])
	return s
}

// Run drives the round-robin tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.quantum)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.advance()
		}
	}
}

func (s *Scheduler) advance() {
	s.mu.Lock()
	s.tokens[s.active] = make(chan struct{})
	s.active = s.terminals.NextID(s.active)
	close(s.tokens[s.active])
	active := s.active
	s.mu.Unlock()

	if s.log != nil {
		s.log.Info("schedule", "terminal", int(active))
	}
}

// Yield blocks until the given terminal currently holds the CPU token.
func (s *Scheduler) Yield(ctx context.Context, tid TermID) error {
	for {
		s.mu.Lock()
		ch := s.tokens[tid]
		s.mu.Unlock()

		select {
		case <-ch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Active reports which terminal currently holds the CPU token.
func (s *Scheduler) Active() TermID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
