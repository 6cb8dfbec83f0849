// Package rofs implements the read-only, block-indexed filesystem image
// format used to ship a task's boot executables and data files. The image
// is a flat byte slice divided into fixed-size 4 KiB blocks: one boot
// block holding the directory, followed by one block per inode, followed
// by one block per data block. Everything is little-endian, matching the
// byte layout a loader would memory-map directly.
package rofs

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// BlockSize is the size in bytes of every block in the image:
	// the boot block, each inode block, and each data block.
	BlockSize = 4096

	// NameSize is the fixed width of a dentry's name field.
	NameSize = 32

	// DentrySize is the on-disk size of one directory entry.
	DentrySize = 64

	// MaxDentries is the number of directory entry slots reserved in
	// the boot block, regardless of how many are actually populated.
	MaxDentries = 63

	// bootHeaderSize is the boot block's count-and-reserved header,
	// before the dentry table begins.
	bootHeaderSize = 64

	// inodePointers is the number of data block indices an inode can
	// hold directly; (4 + inodePointers*4) == BlockSize.
	inodePointers = 1023
)

// FileKind identifies what a dentry's inode refers to.
type FileKind uint32

const (
	KindRTC  FileKind = 0
	KindDir  FileKind = 1
	KindFile FileKind = 2
)

func (k FileKind) String() string {
	switch k {
	case KindRTC:
		return "rtc"
	case KindDir:
		return "dir"
	case KindFile:
		return "file"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

// Dentry is a decoded directory entry.
type Dentry struct {
	Name  string
	Kind  FileKind
	Inode uint32
}

var (
	// ErrCorrupt means the image is too short or its header counts
	// don't fit inside the provided bytes.
	ErrCorrupt = errors.New("rofs: corrupt image")

	// ErrNotFound means a name lookup did not match any populated
	// dentry.
	ErrNotFound = errors.New("rofs: not found")

	// ErrOutOfRange means an index lookup or inode reference fell
	// outside the image's reserved table bounds.
	ErrOutOfRange = errors.New("rofs: out of range")

	// ErrReadOnly is returned by any attempt to mutate the image.
	ErrReadOnly = errors.New("rofs: filesystem is read-only")
)

// Image is a parsed, read-only filesystem image backed by a byte slice.
// The zero value is not usable; construct with Open.
type Image struct {
	raw []byte

	numDentries   uint32
	numInodes     uint32
	numDataBlocks uint32

	inodeOff int
	dataOff  int
}

// Open parses raw as a filesystem image. It validates that the header
// counts are internally consistent with the length of raw before
// returning, so later lookups never need to bounds-check the backing
// slice itself.
func Open(raw []byte) (*Image, error) {
	if len(raw) < BlockSize {
		return nil, fmt.Errorf("rofs: image shorter than one block: %w", ErrCorrupt)
	}

	img := &Image{
		raw:           raw,
		numDentries:   binary.LittleEndian.Uint32(raw[0:4]),
		numInodes:     binary.LittleEndian.Uint32(raw[4:8]),
		numDataBlocks: binary.LittleEndian.Uint32(raw[8:12]),
	}

	if img.numDentries > MaxDentries {
		return nil, fmt.Errorf("rofs: %d dentries exceeds max %d: %w", img.numDentries, MaxDentries, ErrCorrupt)
	}

	img.inodeOff = BlockSize
	img.dataOff = BlockSize * (1 + int(img.numInodes))

	want := img.dataOff + BlockSize*int(img.numDataBlocks)
	if len(raw) < want {
		return nil, fmt.Errorf("rofs: image holds %d bytes, header requires %d: %w", len(raw), want, ErrCorrupt)
	}

	return img, nil
}

// NumInodes reports how many inodes the image declares.
func (img *Image) NumInodes() uint32 { return img.numInodes }

// NumDentries reports how many directory entries are populated. Lookups
// by index are still valid up to MaxDentries, matching the fixed-size
// on-disk directory table.
func (img *Image) NumDentries() uint32 { return img.numDentries }

func (img *Image) dentryBytes(i int) []byte {
	off := bootHeaderSize + i*DentrySize
	return img.raw[off : off+DentrySize]
}

func decodeDentry(b []byte) Dentry {
	kind := FileKind(binary.LittleEndian.Uint32(b[32:36]))
	inode := binary.LittleEndian.Uint32(b[36:40])
	return Dentry{
		Name:  decodeName(b[:NameSize]),
		Kind:  kind,
		Inode: inode,
	}
}

// decodeName trims a fixed-width name field at its first NUL, or returns
// it unmodified if it fills the whole field.
func decodeName(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// LookupByIndex returns the dentry occupying slot i of the directory
// table. Slots past NumDentries but within MaxDentries are valid and
// simply decode to the image's zero-filled reserve space.
func (img *Image) LookupByIndex(i int) (Dentry, error) {
	if i < 0 || i >= MaxDentries {
		return Dentry{}, fmt.Errorf("rofs: dentry index %d: %w", i, ErrOutOfRange)
	}
	return decodeDentry(img.dentryBytes(i)), nil
}

// LookupByName scans the directory table for an entry whose name matches
// name exactly, up to the NameSize-byte field width. An empty name never
// matches, mirroring a filesystem with no anonymous files.
func (img *Image) LookupByName(name string) (Dentry, error) {
	if name == "" {
		return Dentry{}, fmt.Errorf("rofs: empty name: %w", ErrNotFound)
	}
	for i := 0; i < MaxDentries; i++ {
		b := img.dentryBytes(i)
		if nameMatches(name, b[:NameSize]) {
			return decodeDentry(b), nil
		}
	}
	return Dentry{}, fmt.Errorf("rofs: %q: %w", name, ErrNotFound)
}

// nameMatches replicates fixed-width strncmp semantics: name is treated
// as NUL-terminated, field as a bare NameSize-byte array with no
// implied terminator. A match requires every byte to agree up to
// NameSize, including the NUL name itself implicitly pads with once it
// runs out.
func nameMatches(name string, field []byte) bool {
	for i := 0; i < len(field); i++ {
		var nb byte
		if i < len(name) {
			nb = name[i]
		}
		if nb != field[i] {
			return false
		}
		if nb == 0 {
			return true
		}
	}
	return true
}

func (img *Image) inodeBytes(inode uint32) ([]byte, error) {
	if inode >= img.numInodes {
		return nil, fmt.Errorf("rofs: inode %d: %w", inode, ErrOutOfRange)
	}
	off := img.inodeOff + int(inode)*BlockSize
	return img.raw[off : off+BlockSize], nil
}

// InodeLength reports the byte length of an inode's data.
func (img *Image) InodeLength(inode uint32) (uint32, error) {
	b, err := img.inodeBytes(inode)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[0:4]), nil
}

func (img *Image) dataBlock(index uint32) ([]byte, error) {
	if index >= img.numDataBlocks {
		return nil, fmt.Errorf("rofs: data block %d: %w", index, ErrOutOfRange)
	}
	off := img.dataOff + int(index)*BlockSize
	return img.raw[off : off+BlockSize], nil
}

// ReadData copies up to len(buf) bytes of inode's data starting at
// offset into buf, returning the number of bytes copied. It validates
// every data block touched by the read before copying any of them, so a
// corrupt inode fails closed rather than returning a short, partially
// valid read.
func (img *Image) ReadData(inode uint32, offset uint32, buf []byte) (int, error) {
	inodeBytes, err := img.inodeBytes(inode)
	if err != nil {
		return 0, err
	}

	length := binary.LittleEndian.Uint32(inodeBytes[0:4])
	if offset >= length {
		return 0, nil
	}

	n := uint32(len(buf))
	if remain := length - offset; n > remain {
		n = remain
	}
	if n == 0 {
		return 0, nil
	}

	firstBlock := offset / BlockSize
	lastBlock := (offset + n - 1) / BlockSize
	for b := firstBlock; b <= lastBlock; b++ {
		idx := binary.LittleEndian.Uint32(inodeBytes[4+b*4 : 8+b*4])
		if _, err := img.dataBlock(idx); err != nil {
			return 0, fmt.Errorf("rofs: inode %d block %d: %w", inode, b, err)
		}
	}

	copied := uint32(0)
	for copied < n {
		block := (offset + copied) / BlockSize
		within := (offset + copied) % BlockSize
		idx := binary.LittleEndian.Uint32(inodeBytes[4+block*4 : 8+block*4])
		data, _ := img.dataBlock(idx)

		chunk := BlockSize - within
		if remain := n - copied; chunk > remain {
			chunk = remain
		}
		copy(buf[copied:copied+chunk], data[within:within+chunk])
		copied += chunk
	}

	return int(copied), nil
}

// Write always fails: the image is read-only by construction.
func (img *Image) Write(inode uint32, offset uint32, buf []byte) (int, error) {
	return 0, ErrReadOnly
}
