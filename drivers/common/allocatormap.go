// Bitmap of block usage

package common

import (
	"fmt"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/boljen/go-bitmap"
)

// UsageMap records which blocks of a device have been claimed by something. It
// doesn't allocate anything itself; it's used to verify that allocations
// recorded elsewhere don't overlap.
type UsageMap struct {
	bits       bitmap.Bitmap
	TotalUnits uint
}

// NewUsageMap creates a new usage bitmap with all bits cleared.
func NewUsageMap(totalUnits uint) UsageMap {
	return UsageMap{
		bits:       bitmap.New(int(totalUnits)),
		TotalUnits: totalUnits,
	}
}

// Mark claims `block`. The returned boolean is true if the block had already
// been claimed before this call.
func (m *UsageMap) Mark(block BlockID) (bool, error) {
	if uint(block) >= m.TotalUnits {
		return false, osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"invalid block id: %d not in range [0, %d)",
				block,
				m.TotalUnits))
	}
	wasMarked := m.bits.Get(int(block))
	m.bits.Set(int(block), true)
	return wasMarked, nil
}

// IsMarked returns whether `block` has been claimed. Out-of-range blocks are
// never marked.
func (m *UsageMap) IsMarked(block BlockID) bool {
	if uint(block) >= m.TotalUnits {
		return false
	}
	return m.bits.Get(int(block))
}

// Count gives the number of claimed blocks.
func (m *UsageMap) Count() uint {
	total := uint(0)
	for i := 0; i < int(m.TotalUnits); i++ {
		if m.bits.Get(i) {
			total++
		}
	}
	return total
}
