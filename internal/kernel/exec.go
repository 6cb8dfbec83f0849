package kernel

import (
	"context"
	"fmt"
	"strings"

	"github.com/nrolfe/trios/internal/rofs"
)

// parseCommand splits a command line into its executable name and the
// remaining argument string, exactly as far as this kernel needs:
// everything up to the first space is the name, everything after it
// (trimmed) is handed to the task verbatim for getargs to return later.
func parseCommand(cmdline string) (name, args string, err error) {
	trimmed := strings.TrimSpace(cmdline)
	if trimmed == "" {
		return "", "", fmt.Errorf("kernel: empty command: %w", ErrBadCommand)
	}
	if i := strings.IndexByte(trimmed, ' '); i >= 0 {
		return trimmed[:i], strings.TrimSpace(trimmed[i+1:]), nil
	}
	return trimmed, "", nil
}

// Execute loads and runs cmdline as a child of parent, blocking until it
// halts. Use ExecuteOnTerminal to launch a task with no parent, as boot
// does for the three terminal shells.
func (k *Kernel) Execute(ctx context.Context, parent *PCB, cmdline string) (ExitStatus, error) {
	return k.execute(ctx, parent.Pid, parent.Term, cmdline)
}

// ExecuteOnTerminal loads and runs cmdline as a parentless task bound
// to the given terminal, blocking until it halts. It is how boot
// spawns each terminal's initial shell.
func (k *Kernel) ExecuteOnTerminal(ctx context.Context, term TermID, cmdline string) (ExitStatus, error) {
	return k.execute(ctx, NoPID, term, cmdline)
}

func (k *Kernel) execute(ctx context.Context, parentPid Pid, term TermID, cmdline string) (ExitStatus, error) {
	name, args, err := parseCommand(cmdline)
	if err != nil {
		return 0, err
	}

	dentry, err := k.FS.LookupByName(name)
	if err != nil {
		return 0, fmt.Errorf("kernel: %s: %w", name, ErrNotExecutable)
	}
	if dentry.Kind != rofs.KindFile {
		return 0, fmt.Errorf("kernel: %s is not a regular file: %w", name, ErrNotExecutable)
	}

	program, ok := lookupProgram(name)
	if !ok {
		return 0, fmt.Errorf("kernel: %s has no builtin implementation: %w", name, ErrNotExecutable)
	}

	length, err := k.FS.InodeLength(dentry.Inode)
	if err != nil {
		return 0, err
	}
	image := make([]byte, length)
	if _, err := k.FS.ReadData(dentry.Inode, 0, image); err != nil {
		return 0, err
	}

	addr := NewAddressSpace()
	if _, err := addr.Load(image); err != nil {
		return 0, err
	}

	termObj, err := k.Terminals.Terminal(term)
	if err != nil {
		return 0, err
	}

	pcb := &PCB{
		ParentPid: parentPid,
		Term:      term,
		Args:      args,
		Address:   addr,
		FDs:       NewFDTable(termObj),
		halted:    make(chan ExitStatus, 1),
	}

	if _, err := k.Processes.Allocate(pcb); err != nil {
		return 0, err
	}

	k.Log.Info("execute", "pid", int(pcb.Pid), "parent", int(parentPid), "name", name, "term", int(term))

	go k.runTask(ctx, pcb, program)

	select {
	case status := <-pcb.halted:
		return status, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// runTask drives one task's builtin program to completion, recovering
// the panic Task.Halt raises to unwind early, then tears the task down
// and delivers its exit status to whoever is waiting in Execute. Any
// other panic is treated as the task's equivalent of a fault the CPU
// would have raised as an exception: the task is halted with
// ExceptionStatus rather than bringing the kernel down with it.
func (k *Kernel) runTask(ctx context.Context, pcb *PCB, program ProgramFunc) {
	tk := &Task{PCB: pcb, kernel: k}
	status := ExitStatus(0)

	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if h, ok := r.(haltSignal); ok {
				status = h.status
				return
			}
			k.Log.Error("task fault", "pid", int(pcb.Pid), "cause", r)
			status = ExceptionStatus
		}()
		status = program(ctx, tk)
	}()

	pcb.FDs.CloseAll()
	k.Processes.Release(pcb.Pid)
	k.Log.Info("halt", "pid", int(pcb.Pid), "status", int(status))
	pcb.halted <- status
}
