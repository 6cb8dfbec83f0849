package kernel

import (
	"context"
	"fmt"
)

// SyscallNum identifies one of the ten calls a task can make, matching
// the original's fixed software-interrupt vector numbering.
type SyscallNum int

const (
	SysHalt SyscallNum = iota + 1
	SysExecute
	SysRead
	SysWrite
	SysOpen
	SysClose
	SysGetArgs
	SysVidmap
	SysSetHandler
	SysSigreturn
)

func (n SyscallNum) String() string {
	switch n {
	case SysHalt:
		return "halt"
	case SysExecute:
		return "execute"
	case SysRead:
		return "read"
	case SysWrite:
		return "write"
	case SysOpen:
		return "open"
	case SysClose:
		return "close"
	case SysGetArgs:
		return "getargs"
	case SysVidmap:
		return "vidmap"
	case SysSetHandler:
		return "set_handler"
	case SysSigreturn:
		return "sigreturn"
	default:
		return fmt.Sprintf("syscall(%d)", int(n))
	}
}

// The Sys* methods are the address-based syscall ABI: every argument
// that would have been a user-space pointer is a (virtual address,
// length) pair translated against the calling task's AddressSpace, the
// same boundary a real syscall dispatcher enforces before touching
// memory a task handed it.

// SysRead implements the read syscall.
func (k *Kernel) SysRead(ctx context.Context, tk *Task, fd int, vaddr, n uint32) (int, error) {
	buf, err := tk.Address.Translate(vaddr, int(n))
	if err != nil {
		return 0, err
	}
	return tk.FDs.Read(ctx, fd, buf)
}

// SysWrite implements the write syscall.
func (k *Kernel) SysWrite(ctx context.Context, tk *Task, fd int, vaddr, n uint32) (int, error) {
	buf, err := tk.Address.Translate(vaddr, int(n))
	if err != nil {
		return 0, err
	}
	return tk.FDs.Write(ctx, fd, buf)
}

// SysOpen implements the open syscall: it reads a NUL-terminated name
// from the task's address space, resolves it against the filesystem,
// and installs a descriptor of the kind-appropriate ops table.
func (k *Kernel) SysOpen(tk *Task, vaddr, n uint32) (int, error) {
	name, err := tk.Address.ReadString(vaddr, int(n))
	if err != nil {
		return 0, err
	}
	d, err := k.FS.LookupByName(name)
	if err != nil {
		return 0, fmt.Errorf("kernel: open %q: %w", name, err)
	}
	return tk.FDs.Open(d.Kind, d.Inode, k.FS, k.RTC)
}

// SysClose implements the close syscall.
func (k *Kernel) SysClose(tk *Task, fd int) error {
	return tk.FDs.Close(fd)
}

// SysGetArgs implements the getargs syscall, copying the task's
// argument string into its address space and rejecting the call if the
// string (with its terminator) would not fit.
func (k *Kernel) SysGetArgs(tk *Task, vaddr, n uint32) error {
	buf, err := tk.Address.Translate(vaddr, int(n))
	if err != nil {
		return err
	}
	if len(tk.Args)+1 > len(buf) {
		return fmt.Errorf("kernel: %d-byte args do not fit %d-byte buffer: %w", len(tk.Args), len(buf), ErrAccessControl)
	}
	copy(buf, tk.Args)
	buf[len(tk.Args)] = 0
	return nil
}

// SysVidmap implements the vidmap syscall, aliasing the task's home
// terminal's video mirror into its address space.
func (k *Kernel) SysVidmap(tk *Task) (uint32, error) {
	term, err := k.Terminals.Terminal(tk.Term)
	if err != nil {
		return 0, err
	}
	return tk.Address.MapVidmap(term.Video())
}

// SysSetHandler implements the set_handler syscall. Signal delivery was
// never implemented in the source this kernel's behavior is drawn from,
// and nothing in this kernel raises a signal a handler could catch, so
// it always declines.
func (k *Kernel) SysSetHandler(tk *Task, signum int, vaddr uint32) error {
	return ErrUnsupported
}

// SysSigreturn implements the sigreturn syscall, which likewise always
// declines.
func (k *Kernel) SysSigreturn(tk *Task) error {
	return ErrUnsupported
}

// SysExecute implements the execute syscall.
func (k *Kernel) SysExecute(ctx context.Context, tk *Task, cmd string) (ExitStatus, error) {
	return k.Execute(ctx, tk.PCB, cmd)
}

// SysHalt implements the halt syscall.
func (k *Kernel) SysHalt(tk *Task, status ExitStatus) {
	tk.Halt(status)
}
