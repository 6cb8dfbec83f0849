package kernel

import "errors"

// Sentinel errors shared across the kernel package. Call sites wrap
// these with fmt.Errorf("...: %w", Err...) so errors.Is still matches
// while the message carries call-specific detail.
var (
	// ErrAccessControl is raised whenever a task's address-space
	// translation, vidmap mapping, or argument buffer check would
	// reach outside memory the task owns.
	ErrAccessControl = errors.New("kernel: access control violation")

	// ErrNoFreePID means every process slot is occupied.
	ErrNoFreePID = errors.New("kernel: no free process slot")

	// ErrBadCommand means a request was malformed: a command line with
	// no program name, an unknown file kind, or an RTC write of the
	// wrong size or with an invalid frequency.
	ErrBadCommand = errors.New("kernel: malformed command")

	// ErrNotExecutable means a command cannot be run: its name has no
	// regular file in the filesystem, no builtin program is registered
	// for it, or its image failed the executable magic-number check.
	ErrNotExecutable = errors.New("kernel: not an executable image")

	// ErrBadFD means a syscall referenced a descriptor outside the
	// valid, open range.
	ErrBadFD = errors.New("kernel: bad file descriptor")

	// ErrFDTableFull means a task's descriptor table has no free slot.
	ErrFDTableFull = errors.New("kernel: file descriptor table full")

	// ErrUnsupported means the operation is intentionally unimplemented,
	// matching a syscall that is wired but always declines to act.
	ErrUnsupported = errors.New("kernel: operation not supported")

	// ErrNoSuchTerminal means a terminal index outside the configured
	// set was referenced.
	ErrNoSuchTerminal = errors.New("kernel: no such terminal")

	// ErrHalted reports that a task has halted. No function in this
	// package returns it: a halted task's status reaches its parent
	// through Execute's ExitStatus result.
	ErrHalted = errors.New("kernel: task halted")
)
