// Package blockcache provides a write-back cache in front of a block device.
// Blocks are fetched from the backing device on first access and written back
// only when flushed.
//
// All block indexes begin at 0.

package blockcache

import (
	"fmt"

	osfs "github.com/Mouaz7/Os-filesystem"
	c "github.com/Mouaz7/Os-filesystem/drivers/common"
	"github.com/boljen/go-bitmap"
)

// BlockCache is a [c.BlockDevice] that keeps every block it has touched in
// memory. Writes go to the cache and mark the block dirty; nothing reaches the
// backing device until [BlockCache.Flush] is called.
type BlockCache struct {
	backing      c.BlockDevice
	geometry     c.Geometry
	loadedBlocks bitmap.Bitmap
	dirtyBlocks  bitmap.Bitmap
	data         []byte
}

var _ c.BlockDevice = (*BlockCache)(nil)

// New creates a cache over `backing`. Nothing is read until a block is
// requested.
func New(backing c.BlockDevice) *BlockCache {
	geometry := backing.Geometry()
	return &BlockCache{
		backing:      backing,
		geometry:     geometry,
		loadedBlocks: bitmap.New(int(geometry.TotalBlocks)),
		dirtyBlocks:  bitmap.New(int(geometry.TotalBlocks)),
		data:         make([]byte, geometry.Size()),
	}
}

func (cache *BlockCache) Geometry() c.Geometry {
	return cache.geometry
}

func (cache *BlockCache) checkBounds(blockID c.BlockID) error {
	if uint(blockID) >= cache.geometry.TotalBlocks {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"invalid block id: %d not in range [0, %d)",
				blockID,
				cache.geometry.TotalBlocks))
	}
	return nil
}

func (cache *BlockCache) slice(blockID c.BlockID) []byte {
	start := uint(blockID) * cache.geometry.BytesPerBlock
	return cache.data[start : start+cache.geometry.BytesPerBlock]
}

// load ensures the block is present in the cache. Dirty blocks are present by
// definition.
func (cache *BlockCache) load(blockID c.BlockID) error {
	if cache.loadedBlocks.Get(int(blockID)) {
		return nil
	}

	block, err := cache.backing.ReadBlock(blockID)
	if err != nil {
		return err
	}
	copy(cache.slice(blockID), block)
	cache.loadedBlocks.Set(int(blockID), true)
	cache.dirtyBlocks.Set(int(blockID), false)
	return nil
}

// ReadBlock returns a copy of the block, fetching it from the backing device if
// it isn't cached yet.
func (cache *BlockCache) ReadBlock(blockID c.BlockID) ([]byte, error) {
	err := cache.checkBounds(blockID)
	if err != nil {
		return nil, err
	}
	err = cache.load(blockID)
	if err != nil {
		return nil, err
	}

	buffer := make([]byte, cache.geometry.BytesPerBlock)
	copy(buffer, cache.slice(blockID))
	return buffer, nil
}

// WriteBlock replaces the cached copy of the block and marks it dirty. `data`
// must be exactly one block long.
func (cache *BlockCache) WriteBlock(blockID c.BlockID, data []byte) error {
	err := cache.checkBounds(blockID)
	if err != nil {
		return err
	}
	if uint(len(data)) != cache.geometry.BytesPerBlock {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"data must be exactly %d bytes, got %d",
				cache.geometry.BytesPerBlock,
				len(data)))
	}

	copy(cache.slice(blockID), data)
	cache.loadedBlocks.Set(int(blockID), true)
	cache.dirtyBlocks.Set(int(blockID), true)
	return nil
}

// IsDirty reports whether the block has been written since the last flush.
func (cache *BlockCache) IsDirty(blockID c.BlockID) bool {
	if uint(blockID) >= cache.geometry.TotalBlocks {
		return false
	}
	return cache.dirtyBlocks.Get(int(blockID))
}

// Flush writes every dirty block (and only dirty blocks) to the backing device
// in ascending order, marking each clean once written. On failure the blocks
// not yet written stay dirty.
func (cache *BlockCache) Flush() error {
	for i := c.BlockID(0); uint(i) < cache.geometry.TotalBlocks; i++ {
		if !cache.dirtyBlocks.Get(int(i)) {
			continue
		}

		err := cache.backing.WriteBlock(i, cache.slice(i))
		if err != nil {
			return osfs.ErrIOFailed.Wrap(fmt.Errorf("flushing block %d: %w", i, err))
		}
		cache.dirtyBlocks.Set(int(i), false)
	}
	return nil
}

// Discard drops every cached block, dirty or not.
func (cache *BlockCache) Discard() {
	cache.loadedBlocks = bitmap.New(int(cache.geometry.TotalBlocks))
	cache.dirtyBlocks = bitmap.New(int(cache.geometry.TotalBlocks))
}
