package rofs

import "encoding/binary"

// Builder assembles an in-memory image for tests and for the bundled
// boot image, without needing an on-disk tool to produce one.
type Builder struct {
	entries []builderEntry
}

type builderEntry struct {
	name string
	kind FileKind
	data []byte
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddFile adds a regular file entry with the given contents.
func (b *Builder) AddFile(name string, data []byte) *Builder {
	b.entries = append(b.entries, builderEntry{name: name, kind: KindFile, data: data})
	return b
}

// AddDir adds a directory entry; directories carry no data of their own.
func (b *Builder) AddDir(name string) *Builder {
	b.entries = append(b.entries, builderEntry{name: name, kind: KindDir})
	return b
}

// AddRTC adds the special character-device entry that opens as the RTC.
func (b *Builder) AddRTC(name string) *Builder {
	b.entries = append(b.entries, builderEntry{name: name, kind: KindRTC})
	return b
}

// Build encodes the accumulated entries into a complete image.
func (b *Builder) Build() []byte {
	n := len(b.entries)

	dataBlocksPerInode := make([][]uint32, n)
	totalDataBlocks := 0
	for i, e := range b.entries {
		blocks := (len(e.data) + BlockSize - 1) / BlockSize
		ids := make([]uint32, blocks)
		for j := range ids {
			ids[j] = uint32(totalDataBlocks + j)
		}
		dataBlocksPerInode[i] = ids
		totalDataBlocks += blocks
	}

	inodeOff := BlockSize
	dataOff := inodeOff + BlockSize*n
	size := dataOff + BlockSize*totalDataBlocks

	img := make([]byte, size)

	binary.LittleEndian.PutUint32(img[0:4], uint32(n))
	binary.LittleEndian.PutUint32(img[4:8], uint32(n))
	binary.LittleEndian.PutUint32(img[8:12], uint32(totalDataBlocks))

	for i, e := range b.entries {
		off := bootHeaderSize + i*DentrySize
		copy(img[off:off+NameSize], e.name)
		binary.LittleEndian.PutUint32(img[off+32:off+36], uint32(e.kind))
		binary.LittleEndian.PutUint32(img[off+36:off+40], uint32(i))
	}

	for i, e := range b.entries {
		ioff := inodeOff + i*BlockSize
		binary.LittleEndian.PutUint32(img[ioff:ioff+4], uint32(len(e.data)))
		for j, blk := range dataBlocksPerInode[i] {
			binary.LittleEndian.PutUint32(img[ioff+4+j*4:ioff+8+j*4], blk)
		}

		remaining := e.data
		for _, blk := range dataBlocksPerInode[i] {
			doff := dataOff + int(blk)*BlockSize
			n := copy(img[doff:doff+BlockSize], remaining)
			remaining = remaining[n:]
		}
	}

	return img
}
