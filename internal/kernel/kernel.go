// Package kernel implements the process model of a small, cooperatively
// multitasked teaching kernel: a read-only filesystem's executables run
// as tasks with their own memory window, file descriptor table, and
// terminal, scheduled round-robin across a fixed set of terminals.
package kernel

import (
	"time"

	"github.com/nrolfe/trios/internal/log"
	"github.com/nrolfe/trios/internal/rofs"
)

// Kernel wires together every subsystem a task's syscalls touch: the
// filesystem its executables and data files are read from, the
// terminals its consoles render to, the keyboard and clock devices it
// can open, its process table, and its scheduler.
type Kernel struct {
	FS        *rofs.Image
	Terminals *TerminalSet
	Keyboard  *Keyboard
	RTC       *RTC
	Processes *ProcessTable
	Sched     *Scheduler
	Log       *log.Logger

	quantum time.Duration
}

// OptionFn configures a Kernel at construction time.
type OptionFn func(*Kernel)

// WithLogger sets the logger every subsystem reports through.
func WithLogger(l *log.Logger) OptionFn {
	return func(k *Kernel) { k.Log = l }
}

// WithQuantum overrides the scheduler's round-robin time slice.
func WithQuantum(d time.Duration) OptionFn {
	return func(k *Kernel) { k.quantum = d }
}

// New assembles a Kernel around a parsed filesystem image. Terminals,
// the keyboard, the clock, the process table, and the scheduler are
// all constructed fresh; nothing is shared with any prior Kernel.
func New(fs *rofs.Image, opts ...OptionFn) *Kernel {
	k := &Kernel{
		FS:        fs,
		Terminals: NewTerminalSet(),
		RTC:       NewRTC(),
		Processes: NewProcessTable(),
		Log:       log.DefaultLogger(),
		quantum:   DefaultQuantum,
	}
	k.Keyboard = NewKeyboard(k.Terminals)

	for _, opt := range opts {
		opt(k)
	}

	k.Sched = NewScheduler(k.Terminals, k.quantum, k.Log)
	return k
}
