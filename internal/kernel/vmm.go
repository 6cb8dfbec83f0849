package kernel

import (
	"encoding/binary"
	"fmt"
)

// Address-space layout constants. A real page directory would map these
// virtual ranges through 4 MiB and 4 KiB page-table entries; here each
// task's window is a plain Go byte slice and these constants exist only
// so addresses a loaded executable computes against its own base stay
// meaningful across the boundary between "kernel" and "user" code.
const (
	// UserPageSize is the size of a task's private memory window.
	UserPageSize = 4 * 1024 * 1024

	// UserVirtualBase is the virtual address a task's window starts at.
	UserVirtualBase = 0x08000000

	// ProgramLoadOffset is where an executable's first byte lands
	// inside the user window.
	ProgramLoadOffset = 0x00048000

	// elfEntryOffset is the byte offset of the entry-point field in the
	// executable header, matching ELF32's e_entry field.
	elfEntryOffset = 24

	// VidmapPageSize is the size of the video-memory alias page.
	VidmapPageSize = 4096

	// VidmapVirtualBase is the virtual address Vidmap hands back once a
	// task's video page is mapped.
	VidmapVirtualBase = 0x08800000
)

var executableMagic = [4]byte{0x7f, 'E', 'L', 'F'}

// AddressSpace is one task's private memory: a flat window it executes
// in, plus an optional alias over a terminal's video mirror once Vidmap
// has been called. It stands in for the pair of a 4 MiB user page-table
// entry and a 4 KiB vidmap entry in a real page directory; the
// isolation a page directory buys by switching CR3 on a context switch
// falls out here for free, since each task owns a distinct slice.
type AddressSpace struct {
	window []byte
	vidmap []byte
}

// NewAddressSpace allocates a zeroed user window for a task.
func NewAddressSpace() *AddressSpace {
	return &AddressSpace{window: make([]byte, UserPageSize)}
}

// Load validates prog's executable header and copies it into the
// window at ProgramLoadOffset, returning the entry point a new task
// should begin execution at.
func (a *AddressSpace) Load(prog []byte) (entry uint32, err error) {
	if len(prog) < elfEntryOffset+4 || [4]byte{prog[0], prog[1], prog[2], prog[3]} != executableMagic {
		return 0, fmt.Errorf("kernel: bad magic: %w", ErrNotExecutable)
	}

	if ProgramLoadOffset+len(prog) > len(a.window) {
		return 0, fmt.Errorf("kernel: image of %d bytes does not fit the user window: %w", len(prog), ErrAccessControl)
	}

	copy(a.window[ProgramLoadOffset:], prog)
	entry = binary.LittleEndian.Uint32(prog[elfEntryOffset : elfEntryOffset+4])

	return UserVirtualBase + entry, nil
}

// MapVidmap aliases mirror as the task's video page and returns the
// virtual address user code should treat as the frame buffer's base.
// mirror must be exactly VidmapPageSize bytes; a longer buffer would
// let user code read past what it believes is one 4 KiB page.
func (a *AddressSpace) MapVidmap(mirror []byte) (uint32, error) {
	if len(mirror) != VidmapPageSize {
		return 0, fmt.Errorf("kernel: vidmap target is %d bytes, want %d: %w", len(mirror), VidmapPageSize, ErrAccessControl)
	}
	a.vidmap = mirror
	return VidmapVirtualBase, nil
}

// Translate resolves a user virtual address and length into the backing
// slice, failing if any byte of the range would fall outside the
// task's window or mapped vidmap page.
func (a *AddressSpace) Translate(vaddr uint32, length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("kernel: negative length %d: %w", length, ErrAccessControl)
	}
	end := vaddr + uint32(length)

	if vaddr >= UserVirtualBase && end <= UserVirtualBase+UserPageSize && end >= vaddr {
		off := vaddr - UserVirtualBase
		return a.window[off : off+uint32(length)], nil
	}

	if a.vidmap != nil && vaddr >= VidmapVirtualBase && end <= VidmapVirtualBase+VidmapPageSize && end >= vaddr {
		off := vaddr - VidmapVirtualBase
		return a.vidmap[off : off+uint32(length)], nil
	}

	return nil, fmt.Errorf("kernel: address 0x%x length %d outside task window: %w", vaddr, length, ErrAccessControl)
}

// ReadString translates a NUL-terminated string starting at vaddr, up
// to maxLen bytes, and returns it without the terminator.
func (a *AddressSpace) ReadString(vaddr uint32, maxLen int) (string, error) {
	buf, err := a.Translate(vaddr, maxLen)
	if err != nil {
		return "", err
	}
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i]), nil
		}
	}
	return string(buf), nil
}
