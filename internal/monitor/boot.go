// Package monitor implements the kernel's boot sequence: the one-time
// setup that turns a freshly constructed Kernel into three running
// terminal shells.
package monitor

import (
	"context"
	"sync"

	"github.com/nrolfe/trios/internal/kernel"
)

// Boot launches one shell per terminal, displays terminal 0, and starts
// the round-robin scheduler. A boot shell has no parent, so a halted
// one is relaunched rather than letting its terminal go idle — the
// same power-on behavior as the original, which never returned to its
// caller either. Boot only returns once every terminal's relaunch loop
// hits an error, which in practice means ctx was canceled.
func Boot(ctx context.Context, k *kernel.Kernel) error {
	if err := k.Terminals.SwitchDisplayed(0); err != nil {
		return err
	}

	go k.Sched.Run(ctx)

	var wg sync.WaitGroup
	errs := make([]error, kernel.NumTerminals)

	for i := 0; i < kernel.NumTerminals; i++ {
		wg.Add(1)
		go func(term kernel.TermID) {
			defer wg.Done()
			// A boot shell has no parent: when it halts, it is
			// relaunched rather than returned to, so a terminal
			// never goes idle just because its shell exited.
			for {
				_, err := k.ExecuteOnTerminal(ctx, term, "shell")
				if err != nil {
					errs[term] = err
					return
				}
			}
		}(kernel.TermID(i))
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
