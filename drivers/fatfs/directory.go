package fatfs

import (
	"fmt"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/drivers/common"
)

// Directory is the full contents of one directory block, unused slots included.
// Its length is always the number of entries that fit in a block.
type Directory []Dirent

// NewDirectory creates a directory with every slot unused.
func NewDirectory(bytesPerBlock uint) Directory {
	return make(Directory, bytesPerBlock/DirentSize)
}

// DecodeDirectory interprets a whole block as a directory.
func DecodeDirectory(block []byte) (Directory, error) {
	dir := make(Directory, len(block)/DirentSize)
	for i := range dir {
		entry, err := DecodeDirent(block[i*DirentSize:])
		if err != nil {
			return nil, err
		}
		dir[i] = entry
	}
	return dir, nil
}

// Encode serializes the directory into a block-sized buffer. Any space left
// over after the last slot is zeroed.
func (dir Directory) Encode(bytesPerBlock uint) ([]byte, error) {
	if uint(len(dir)*DirentSize) > bytesPerBlock {
		return nil, osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"%d entries don't fit in a %d-byte block",
				len(dir),
				bytesPerBlock))
	}

	buffer := make([]byte, bytesPerBlock)
	for i, entry := range dir {
		err := entry.Encode(buffer[i*DirentSize:])
		if err != nil {
			return nil, err
		}
	}
	return buffer, nil
}

// FindByName returns the slot of the used entry named exactly `name`.
func (dir Directory) FindByName(name string) (int, bool) {
	if name == "" {
		return -1, false
	}
	for i, entry := range dir {
		if !entry.IsUnused() && entry.Name == name {
			return i, true
		}
	}
	return -1, false
}

// FindFreeSlot returns the first unused slot.
func (dir Directory) FindFreeSlot() (int, bool) {
	for i, entry := range dir {
		if entry.IsUnused() {
			return i, true
		}
	}
	return -1, false
}

// IsEmpty returns true if the directory holds nothing but its ".." entry.
func (dir Directory) IsEmpty() bool {
	for _, entry := range dir {
		if !entry.IsUnused() && !entry.IsParentLink() {
			return false
		}
	}
	return true
}

// Parent gives the block of the parent directory. The root directory has no
// parent.
func (dir Directory) Parent() (common.BlockID, bool) {
	slot, ok := dir.FindByName(ParentDirName)
	if !ok {
		return 0, false
	}
	return dir[slot].FirstBlock, true
}

// FindByFirstBlock returns the slot of the subdirectory stored at `block`. The
// ".." entry is never matched.
func (dir Directory) FindByFirstBlock(block common.BlockID) (int, bool) {
	for i, entry := range dir {
		if !entry.IsUnused() && entry.IsDir() && !entry.IsParentLink() &&
			entry.FirstBlock == block {
			return i, true
		}
	}
	return -1, false
}

// Used returns copies of all entries that aren't unused, in slot order.
func (dir Directory) Used() []Dirent {
	entries := make([]Dirent, 0, len(dir))
	for _, entry := range dir {
		if !entry.IsUnused() {
			entries = append(entries, entry)
		}
	}
	return entries
}

// ReadDirectory loads the directory stored at `block`.
func ReadDirectory(device common.BlockDevice, block common.BlockID) (Directory, error) {
	data, err := device.ReadBlock(block)
	if err != nil {
		return nil, err
	}
	return DecodeDirectory(data)
}

// WriteDirectory persists `dir` to `block` with a single block write.
func WriteDirectory(device common.BlockDevice, block common.BlockID, dir Directory) error {
	data, err := dir.Encode(device.Geometry().BytesPerBlock)
	if err != nil {
		return err
	}
	return device.WriteBlock(block, data)
}
