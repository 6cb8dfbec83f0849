package monitor

import (
	"encoding/binary"

	"github.com/nrolfe/trios/internal/rofs"
)

// stubExecutable returns the smallest byte sequence that passes
// AddressSpace.Load's executable-header check: the four-byte magic
// prefix and a 32-bit entry point at the expected offset. Since a
// task's actual behavior comes from the builtin program registry
// rather than from interpreting these bytes, the entry point's value
// is never followed; it exists so the on-disk image format stays
// genuinely ELF-shaped end to end.
func stubExecutable() []byte {
	buf := make([]byte, 28)
	copy(buf[0:4], []byte{0x7f, 'E', 'L', 'F'})
	binary.LittleEndian.PutUint32(buf[24:28], 0)
	return buf
}

// builtinNames lists every program DefaultImage bundles, each of which
// must also be registered in the kernel package's program registry for
// execute to be able to run it.
var builtinNames = []string{"shell", "hello", "cat", "ls", "counter", "testprint"}

// DefaultImage builds the filesystem image boot mounts: the root
// directory, one dentry per builtin program, and the RTC device node.
func DefaultImage() []byte {
	b := rofs.NewBuilder().AddDir(".")
	for _, name := range builtinNames {
		b.AddFile(name, stubExecutable())
	}
	b.AddRTC("rtc")
	return b.Build()
}
