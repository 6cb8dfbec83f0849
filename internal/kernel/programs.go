package kernel

import "context"

// ProgramFunc is a task's entry point. This kernel does not interpret
// arbitrary machine code, so a task's behavior comes from a small
// registry of builtin Go implementations keyed by the executable
// image's directory name, standing in for the handful of demo
// executables the original shipped as compiled binaries alongside the
// kernel itself (a shell, a counter, a handful of test programs).
// AddressSpace.Load still validates and loads the on-disk image bytes
// before a program runs, so a corrupt or non-executable dentry is
// rejected the same way regardless of whether a builtin exists for it.
type ProgramFunc func(ctx context.Context, tk *Task) ExitStatus

var programRegistry = make(map[string]ProgramFunc)

// RegisterProgram installs fn as the implementation run when name is
// executed. Called from init() beside each program's definition.
func RegisterProgram(name string, fn ProgramFunc) {
	programRegistry[name] = fn
}

func lookupProgram(name string) (ProgramFunc, bool) {
	fn, ok := programRegistry[name]
	return fn, ok
}
