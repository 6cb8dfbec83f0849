package kernel

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

func init() {
	RegisterProgram("shell", shellMain)
	RegisterProgram("hello", helloMain)
	RegisterProgram("cat", catMain)
	RegisterProgram("ls", lsMain)
	RegisterProgram("counter", counterMain)
	RegisterProgram("testprint", testprintMain)
}

const shellPrompt = "391OS> "

// shellMain is the command shell spawned on each terminal at boot: it
// reads a line, executes it as a child task, and prints the error if the
// child could not be started; the child's exit status is not shown.
// "exit" ends the shell with status 0.
func shellMain(ctx context.Context, tk *Task) ExitStatus {
	for {
		if _, err := tk.WriteString(ctx, 1, shellPrompt); err != nil {
			return ExceptionStatus
		}

		buf := make([]byte, 128)
		n, err := tk.Read(ctx, 0, buf)
		if err != nil {
			return 0
		}

		line := strings.TrimRight(string(buf[:n]), "\n")
		if line == "" {
			continue
		}
		if line == "exit" {
			return 0
		}

		if _, err := tk.Execute(ctx, line); err != nil {
			tk.WriteString(ctx, 1, err.Error()+"\n")
		}
	}
}

// helloMain greets whatever argument string execute was given, or
// "world" if none was passed.
func helloMain(ctx context.Context, tk *Task) ExitStatus {
	name := strings.TrimSpace(tk.Args)
	if name == "" {
		name = "world"
	}
	tk.WriteString(ctx, 1, fmt.Sprintf("hello, %s\n", name))
	return 0
}

// catMain streams the file named by its argument to standard output.
func catMain(ctx context.Context, tk *Task) ExitStatus {
	name := strings.TrimSpace(tk.Args)
	if name == "" {
		tk.WriteString(ctx, 1, "cat: missing filename\n")
		return 1
	}

	fd, err := tk.Open(name)
	if err != nil {
		tk.WriteString(ctx, 1, fmt.Sprintf("cat: %s: %v\n", name, err))
		return 1
	}
	defer tk.Close(fd)

	buf := make([]byte, 256)
	for {
		n, err := tk.Read(ctx, fd, buf)
		if err != nil || n == 0 {
			break
		}
		if _, err := tk.Write(ctx, 1, buf[:n]); err != nil {
			return ExceptionStatus
		}
	}
	return 0
}

// lsMain lists every populated entry in the root directory.
func lsMain(ctx context.Context, tk *Task) ExitStatus {
	fd, err := tk.Open(".")
	if err != nil {
		tk.WriteString(ctx, 1, fmt.Sprintf("ls: %v\n", err))
		return 1
	}
	defer tk.Close(fd)

	buf := make([]byte, 33)
	for {
		n, err := tk.Read(ctx, fd, buf)
		if err != nil {
			return ExceptionStatus
		}
		if n == 0 {
			break
		}
		name := bytes.TrimRight(buf[:n], "\x00")
		tk.WriteString(ctx, 1, string(name)+"\n")
	}
	return 0
}

// counterMain prints ten lines, yielding to the scheduler between each
// one so a round-robin quantum can land in between, the way a
// CPU-bound demo program in the original would eventually be preempted
// by the timer interrupt.
func counterMain(ctx context.Context, tk *Task) ExitStatus {
	for i := 0; i < 10; i++ {
		if err := tk.Yield(ctx); err != nil {
			return ExceptionStatus
		}
		tk.WriteString(ctx, 1, fmt.Sprintf("%d\n", i))
	}
	return 0
}

// testprintMain writes every printable ASCII character, a terminal
// rendering smoke test bundled with the original kernel's demo suite.
func testprintMain(ctx context.Context, tk *Task) ExitStatus {
	for c := byte(32); c < 127; c++ {
		if _, err := tk.Write(ctx, 1, []byte{c}); err != nil {
			return ExceptionStatus
		}
	}
	tk.WriteString(ctx, 1, "\n")
	return 0
}
