package kernel

import "context"

// scratchBase is the virtual address builtin programs use as a private
// staging area for syscall arguments. Real user code would pass the
// address of its own stack or static buffer; a builtin Go program has
// none, so Task copies its Go-native buffers into this fixed offset of
// its own window before calling the address-based syscall layer, and
// back out afterward. It sits safely below ProgramLoadOffset.
const (
	scratchBase = uint32(UserVirtualBase)
	scratchSize = 8192
)

// haltSignal unwinds a builtin program's call stack when it invokes
// Halt, the same way the original's halt() never returns to its caller
// but instead splices a saved stack frame back into the parent.
type haltSignal struct{ status ExitStatus }

// Task is a running program's view of the kernel: its own PCB plus the
// kernel it is running under, and the ergonomic, Go-native API a
// builtin program calls instead of trapping through assembly. Every
// method here is implemented in terms of the address-based syscalls in
// syscall.go, so the fidelity of that ABI is genuinely exercised rather
// than left as an alternate, untested path.
type Task struct {
	*PCB
	kernel *Kernel
}

func (tk *Task) scratch(data []byte) uint32 {
	region, err := tk.Address.Translate(scratchBase, len(data))
	if err != nil {
		panic(err) // scratchSize is sized generously; this would be a kernel bug.
	}
	copy(region, data)
	return scratchBase
}

func (tk *Task) scratchZero(n int) uint32 {
	region, err := tk.Address.Translate(scratchBase, n)
	if err != nil {
		panic(err)
	}
	for i := range region {
		region[i] = 0
	}
	return scratchBase
}

// Read reads up to len(buf) bytes from fd.
func (tk *Task) Read(ctx context.Context, fd int, buf []byte) (int, error) {
	vaddr := tk.scratchZero(len(buf))
	n, err := tk.kernel.SysRead(ctx, tk, fd, vaddr, uint32(len(buf)))
	if n > 0 {
		region, _ := tk.Address.Translate(vaddr, n)
		copy(buf, region)
	}
	return n, err
}

// Write writes data to fd.
func (tk *Task) Write(ctx context.Context, fd int, data []byte) (int, error) {
	vaddr := tk.scratch(data)
	return tk.kernel.SysWrite(ctx, tk, fd, vaddr, uint32(len(data)))
}

// WriteString is a convenience wrapper around Write for console output.
func (tk *Task) WriteString(ctx context.Context, fd int, s string) (int, error) {
	return tk.Write(ctx, fd, []byte(s))
}

// Open resolves name against the filesystem and installs a descriptor
// for it.
func (tk *Task) Open(name string) (int, error) {
	vaddr := tk.scratch([]byte(name))
	return tk.kernel.SysOpen(tk, vaddr, uint32(len(name)))
}

// Close releases fd.
func (tk *Task) Close(fd int) error {
	return tk.kernel.SysClose(tk, fd)
}

// GetArgs copies the task's argument string into buf, NUL-terminated.
func (tk *Task) GetArgs(buf []byte) error {
	vaddr := tk.scratchZero(len(buf))
	if err := tk.kernel.SysGetArgs(tk, vaddr, uint32(len(buf))); err != nil {
		return err
	}
	region, _ := tk.Address.Translate(vaddr, len(buf))
	copy(buf, region)
	return nil
}

// Vidmap maps the task's home terminal's video page and returns it.
func (tk *Task) Vidmap() ([]byte, error) {
	vaddr, err := tk.kernel.SysVidmap(tk)
	if err != nil {
		return nil, err
	}
	return tk.Address.Translate(vaddr, VidmapPageSize)
}

// Execute runs cmd as a child task and blocks until it halts.
func (tk *Task) Execute(ctx context.Context, cmd string) (ExitStatus, error) {
	return tk.kernel.SysExecute(ctx, tk, cmd)
}

// Halt ends the task immediately with the given status, unwinding
// through any depth of call frames the builtin program is nested at.
func (tk *Task) Halt(status ExitStatus) {
	panic(haltSignal{status})
}

// Yield blocks until the scheduler's round-robin token is held by this
// task's home terminal, giving a CPU-bound builtin program a
// preemption point analogous to the timer interrupt landing between
// instructions in the original.
func (tk *Task) Yield(ctx context.Context) error {
	return tk.kernel.Sched.Yield(ctx, tk.Term)
}
