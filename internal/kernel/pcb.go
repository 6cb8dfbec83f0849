package kernel

import "sync"

// Pid identifies a task. NoPID is returned in place of a real Pid when
// an operation that would normally hand one back cannot.
type Pid int

const NoPID Pid = -1

// ExitStatus is a task's halt status. ExceptionStatus sits outside the
// 0..255 range of an ordinary status byte, mirroring the original's
// trick of storing 256 for an exception-induced halt where a user
// halt(255) would only ever produce 255. runTask reports it for a task
// that panicked; Halt does not clamp its argument, and the builtin
// programs also return it when a console write fails.
type ExitStatus int32

const ExceptionStatus ExitStatus = 256

// MaxProcesses bounds concurrent tasks: PIDs 0..6 (seven total),
// matching the original's fixed-size PCB arena. ProcessTable.Allocate
// hands any task the lowest free Pid; no Pid is reserved for a
// terminal's boot shell.
const MaxProcesses = 7

// PCB is a process control block: a task's kernel-side state, addressed
// by Pid the way the original indexed a fixed array of PCBs by
// subtracting (Pid+1) PCB-sized slots from the top of kernel memory.
// Here a Pid is just a slice index; no address arithmetic is involved,
// but the lookup stays O(1) either way.
type PCB struct {
	Pid       Pid
	ParentPid Pid
	Term      TermID
	Args      string

	Address *AddressSpace
	FDs     *FDTable

	halted chan ExitStatus
}

// ProcessTable allocates and tracks the fixed pool of PCBs.
type ProcessTable struct {
	mu    sync.Mutex
	slots [MaxProcesses]*PCB
}

// NewProcessTable returns an empty table.
func NewProcessTable() *ProcessTable {
	return &ProcessTable{}
}

// Allocate claims the lowest free Pid, assigns it to pcb, and installs
// pcb in the table.
func (pt *ProcessTable) Allocate(pcb *PCB) (Pid, error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	for i, slot := range pt.slots {
		if slot == nil {
			pcb.Pid = Pid(i)
			pt.slots[i] = pcb
			return pcb.Pid, nil
		}
	}
	return NoPID, ErrNoFreePID
}

// Release frees pid's slot.
func (pt *ProcessTable) Release(pid Pid) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pid >= 0 && int(pid) < MaxProcesses {
		pt.slots[pid] = nil
	}
}

// Get returns the PCB for pid, if any is installed.
func (pt *ProcessTable) Get(pid Pid) (*PCB, bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pid < 0 || int(pid) >= MaxProcesses {
		return nil, false
	}
	p := pt.slots[pid]
	return p, p != nil
}

// Count reports how many slots are occupied.
func (pt *ProcessTable) Count() int {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	n := 0
	for _, s := range pt.slots {
		if s != nil {
			n++
		}
	}
	return n
}
