package fatfs

import (
	"encoding/binary"
	"fmt"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/drivers/common"
	"github.com/noxer/bytewriter"
)

const (
	// FreeBlock marks an entry in the allocation table as available.
	FreeBlock uint16 = 0x0000
	// EndOfChain marks the last block of a chain.
	EndOfChain uint16 = 0xFFFF
)

const (
	RootDirBlock   common.BlockID = 0
	FATBlock       common.BlockID = 1
	FirstDataBlock common.BlockID = 2
)

const fatEntrySize = 2

// ValidateGeometry checks that a volume with the given geometry can be
// formatted. The whole allocation table must fit into a single block, and there
// must be room for at least one data block.
func ValidateGeometry(geometry common.Geometry) error {
	err := geometry.Validate()
	if err != nil {
		return err
	}
	if geometry.BytesPerBlock < 2*DirentSize || geometry.BytesPerBlock%DirentSize != 0 {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"block size must be a multiple of %d and at least %d, got %d",
				DirentSize,
				2*DirentSize,
				geometry.BytesPerBlock))
	}
	if geometry.TotalBlocks <= uint(FirstDataBlock) {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"need more than %d blocks, got %d",
				FirstDataBlock,
				geometry.TotalBlocks))
	}
	if geometry.TotalBlocks > geometry.BytesPerBlock/fatEntrySize {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"allocation table for %d blocks doesn't fit in one %d-byte block",
				geometry.TotalBlocks,
				geometry.BytesPerBlock))
	}
	return nil
}

// AllocationTable is the in-memory copy of the chain table stored in
// [FATBlock]. Changes aren't visible on the device until [AllocationTable.Persist]
// is called.
type AllocationTable struct {
	device  common.BlockDevice
	entries []uint16
}

// NewAllocationTable creates a table for an empty volume: everything is free
// except the root directory and the table itself.
func NewAllocationTable(device common.BlockDevice) *AllocationTable {
	table := &AllocationTable{
		device:  device,
		entries: make([]uint16, device.Geometry().TotalBlocks),
	}
	table.entries[RootDirBlock] = EndOfChain
	table.entries[FATBlock] = EndOfChain
	return table
}

// LoadAllocationTable reads the table from the device.
func LoadAllocationTable(device common.BlockDevice) (*AllocationTable, error) {
	data, err := device.ReadBlock(FATBlock)
	if err != nil {
		return nil, err
	}

	totalBlocks := device.Geometry().TotalBlocks
	if uint(len(data)) < totalBlocks*fatEntrySize {
		return nil, osfs.ErrInvalidFileSystem.WithMessage(
			fmt.Sprintf(
				"allocation table block is %d bytes, need %d",
				len(data),
				totalBlocks*fatEntrySize))
	}

	table := &AllocationTable{
		device:  device,
		entries: make([]uint16, totalBlocks),
	}
	for i := range table.entries {
		table.entries[i] = binary.LittleEndian.Uint16(data[i*fatEntrySize:])
	}
	return table, nil
}

// Persist writes the table back to the device in a single block write.
func (t *AllocationTable) Persist() error {
	buffer := make([]byte, t.device.Geometry().BytesPerBlock)
	writer := bytewriter.New(buffer)
	err := binary.Write(writer, binary.LittleEndian, t.entries)
	if err != nil {
		return osfs.ErrIOFailed.Wrap(err)
	}
	return t.device.WriteBlock(FATBlock, buffer)
}

func (t *AllocationTable) TotalBlocks() uint {
	return uint(len(t.entries))
}

// Get returns the raw table entry for `block`.
func (t *AllocationTable) Get(block common.BlockID) (uint16, error) {
	if uint(block) >= t.TotalBlocks() {
		return 0, t.outOfRange(block)
	}
	return t.entries[block], nil
}

// IsFree returns true if `block` is available for allocation.
func (t *AllocationTable) IsFree(block common.BlockID) bool {
	return uint(block) < t.TotalBlocks() && t.entries[block] == FreeBlock
}

// AllocateOne claims the lowest-numbered free data block and marks it as the end
// of a chain.
func (t *AllocationTable) AllocateOne() (common.BlockID, error) {
	for i := uint(FirstDataBlock); i < t.TotalBlocks(); i++ {
		if t.entries[i] == FreeBlock {
			t.entries[i] = EndOfChain
			return common.BlockID(i), nil
		}
	}
	return 0, osfs.ErrNoSpaceOnDevice
}

// AllocateChain claims `count` blocks and links them together in allocation
// order. Either all of them are allocated or none are.
func (t *AllocationTable) AllocateChain(count uint) ([]common.BlockID, error) {
	chain := make([]common.BlockID, 0, count)
	for uint(len(chain)) < count {
		block, err := t.AllocateOne()
		if err != nil {
			for _, allocated := range chain {
				t.entries[allocated] = FreeBlock
			}
			return nil, osfs.ErrNoSpaceOnDevice.WithMessage(
				fmt.Sprintf("need %d blocks, only %d free", count, len(chain)))
		}
		if len(chain) > 0 {
			t.entries[chain[len(chain)-1]] = uint16(block)
		}
		chain = append(chain, block)
	}
	return chain, nil
}

// ExtendChain links `next` after `last`, making `next` the new end of the chain.
func (t *AllocationTable) ExtendChain(last, next common.BlockID) error {
	if err := t.checkDataBlock(last); err != nil {
		return err
	}
	if err := t.checkDataBlock(next); err != nil {
		return err
	}
	t.entries[last] = uint16(next)
	t.entries[next] = EndOfChain
	return nil
}

// FreeChain releases every block of the chain starting at `first`.
func (t *AllocationTable) FreeChain(first common.BlockID) error {
	chain, err := t.Chain(first)
	if err != nil {
		return err
	}
	for _, block := range chain {
		t.entries[block] = FreeBlock
	}
	return nil
}

// FreeSingle releases exactly one block.
func (t *AllocationTable) FreeSingle(block common.BlockID) error {
	if err := t.checkDataBlock(block); err != nil {
		return err
	}
	t.entries[block] = FreeBlock
	return nil
}

// Chain returns the blocks of the chain starting at `first`, in order. The walk
// stops after visiting every block on the device once, so a cycle or a pointer
// into free or reserved space is reported as corruption instead of looping.
func (t *AllocationTable) Chain(first common.BlockID) ([]common.BlockID, error) {
	if err := t.checkDataBlock(first); err != nil {
		return nil, err
	}

	chain := []common.BlockID{}
	current := first
	for {
		if uint(len(chain)) >= t.TotalBlocks() {
			return nil, osfs.ErrFileSystemCorrupted.WithMessage(
				fmt.Sprintf("chain starting at block %d has a cycle", first))
		}
		chain = append(chain, current)

		next := t.entries[current]
		if next == EndOfChain {
			return chain, nil
		}
		if next == FreeBlock ||
			uint(next) >= t.TotalBlocks() ||
			common.BlockID(next) < FirstDataBlock {
			return nil, osfs.ErrFileSystemCorrupted.WithMessage(
				fmt.Sprintf(
					"block %d in chain starting at %d points to invalid block %d",
					current,
					first,
					next))
		}
		current = common.BlockID(next)
	}
}

// LastBlock returns the final block of the chain starting at `first`.
func (t *AllocationTable) LastBlock(first common.BlockID) (common.BlockID, error) {
	chain, err := t.Chain(first)
	if err != nil {
		return 0, err
	}
	return chain[len(chain)-1], nil
}

// FreeBlocks counts the data blocks available for allocation.
func (t *AllocationTable) FreeBlocks() uint {
	total := uint(0)
	for i := uint(FirstDataBlock); i < t.TotalBlocks(); i++ {
		if t.entries[i] == FreeBlock {
			total++
		}
	}
	return total
}

func (t *AllocationTable) checkDataBlock(block common.BlockID) error {
	if uint(block) >= t.TotalBlocks() {
		return t.outOfRange(block)
	}
	if block < FirstDataBlock {
		return osfs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("block %d is reserved", block))
	}
	return nil
}

func (t *AllocationTable) outOfRange(block common.BlockID) error {
	return osfs.ErrFileSystemCorrupted.WithMessage(
		fmt.Sprintf("block %d not in range [0, %d)", block, t.TotalBlocks()))
}
