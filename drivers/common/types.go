// Package common contains definitions of fundamental types and functions used
// by the block device layer and the file system driver built on top of it.
package common

import (
	"fmt"
	"math"

	osfs "github.com/Mouaz7/Os-filesystem"
)

// BlockID is the index of a block on the device. The on-disk format stores
// block indices as 16-bit integers.
type BlockID uint16

const MaxBlocks = math.MaxUint16

// Geometry describes the fixed shape of a volume. It's shared by every
// component that touches the device.
type Geometry struct {
	BytesPerBlock uint
	TotalBlocks   uint
}

// DefaultGeometry is 2048 blocks of 4 KiB each, an 8 MiB volume.
var DefaultGeometry = Geometry{BytesPerBlock: 4096, TotalBlocks: 2048}

// Size gives the size of the whole volume, in bytes.
func (g Geometry) Size() int64 {
	return int64(g.BytesPerBlock) * int64(g.TotalBlocks)
}

// LengthToNumBlocks gives the minimum number of blocks required to hold the
// given number of bytes.
func (g Geometry) LengthToNumBlocks(size uint) uint {
	return (size + g.BytesPerBlock - 1) / g.BytesPerBlock
}

// Validate checks the limits imposed by the block device layer. File system
// drivers may impose stricter ones.
func (g Geometry) Validate() error {
	if g.BytesPerBlock == 0 {
		return osfs.ErrInvalidArgument.WithMessage("block size must be nonzero")
	}
	if g.TotalBlocks == 0 || g.TotalBlocks > MaxBlocks {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"total blocks must be in [1, %d], got %d",
				MaxBlocks,
				g.TotalBlocks,
			),
		)
	}
	return nil
}

func (g Geometry) String() string {
	return fmt.Sprintf("%d x %d B", g.TotalBlocks, g.BytesPerBlock)
}
