package common

import (
	"fmt"
	"io"

	osfs "github.com/Mouaz7/Os-filesystem"
)

// BlockStream is an abstraction layer around a stream to make it look like a
// block stream, e.g. a file that can only be read from or written to in
// multiples of its fundamental unit, a "block".
//
// The exposed fields are for informational purposes only and should never be
// changed.
type BlockStream struct {
	// BytesPerBlock gives the size of a block on this device, in bytes. All reads
	// and writes must be done in integer multiples of this size.
	BytesPerBlock uint
	// TotalBlocks is the total number of blocks in this stream.
	TotalBlocks uint
	// StartOffset is an offset from the beginning of the stream, in bytes, that
	// will be considered the beginning of block 0 for the device.
	StartOffset int64
	stream      io.ReadWriteSeeker
}

// NewBlockStream wraps `stream` as a device with the given geometry. The stream
// must already be at least `startOffset + geometry.Size()` bytes long.
func NewBlockStream(
	stream io.ReadWriteSeeker, geometry Geometry, startOffset int64,
) *BlockStream {
	return &BlockStream{
		StartOffset:   startOffset,
		BytesPerBlock: geometry.BytesPerBlock,
		TotalBlocks:   geometry.TotalBlocks,
		stream:        stream,
	}
}

// DetermineBlockCount gives the total number of blocks in a stream, rounded down
// to the nearest block.
func DetermineBlockCount(stream io.Seeker, blockSize uint) (uint, error) {
	offset, err := stream.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	return uint(offset / int64(blockSize)), nil
}

// Geometry returns the shape of the device.
func (device *BlockStream) Geometry() Geometry {
	return Geometry{BytesPerBlock: device.BytesPerBlock, TotalBlocks: device.TotalBlocks}
}

// BlockIDToFileOffset converts a block ID into a byte offset into the backing
// I/O stream.
func (device *BlockStream) BlockIDToFileOffset(blockID BlockID) (int64, error) {
	if uint(blockID) >= device.TotalBlocks {
		return -1,
			osfs.ErrInvalidArgument.WithMessage(
				fmt.Sprintf(
					"invalid block ID %d: not in range [0, %d)",
					blockID,
					device.TotalBlocks))
	}
	return device.StartOffset + (int64(blockID) * int64(device.BytesPerBlock)), nil
}

// CheckIOBounds checks to see if `dataLength` bytes can be read from or written
// to the block stream, starting at blockID. If the bounds check fails, it returns
// an error indicating exactly what went wrong.
func (device *BlockStream) CheckIOBounds(blockID BlockID, dataLength uint) error {
	if uint(blockID) >= device.TotalBlocks {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"invalid block ID %d: not in range [0, %d)",
				blockID,
				device.TotalBlocks))
	}

	if dataLength%device.BytesPerBlock != 0 {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"data must be a multiple of the block size (%d B), got %d (remainder %d)",
				device.BytesPerBlock,
				dataLength,
				dataLength%device.BytesPerBlock))
	}

	dataSizeInBlocks := dataLength / device.BytesPerBlock
	if uint(blockID)+dataSizeInBlocks > device.TotalBlocks {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"block %d plus %d blocks of data extends past end of image",
				blockID,
				dataSizeInBlocks))
	}

	return nil
}

// seekToBlock positions the stream pointer at the byte offset where the given
// block starts.
func (device *BlockStream) seekToBlock(blockID BlockID) error {
	offset, err := device.BlockIDToFileOffset(blockID)
	if err != nil {
		return err
	}
	_, err = device.stream.Seek(offset, io.SeekStart)
	if err != nil {
		return osfs.ErrIOFailed.Wrap(err)
	}
	return nil
}

// Read reads `count` whole blocks starting from `blockID`.
func (device *BlockStream) Read(blockID BlockID, count uint) ([]byte, error) {
	err := device.CheckIOBounds(blockID, count*device.BytesPerBlock)
	if err != nil {
		return nil, err
	}

	err = device.seekToBlock(blockID)
	if err != nil {
		return nil, err
	}

	buffer := make([]byte, device.BytesPerBlock*count)
	_, err = io.ReadFull(device.stream, buffer)
	if err != nil {
		return nil, osfs.ErrIOFailed.Wrap(
			fmt.Errorf("reading %d blocks at %d: %w", count, blockID, err))
	}
	return buffer, nil
}

// Write writes data to the block device. `data` must be a multiple of the block
// size.
func (device *BlockStream) Write(blockID BlockID, data []byte) error {
	err := device.CheckIOBounds(blockID, uint(len(data)))
	if err != nil {
		return err
	}

	err = device.seekToBlock(blockID)
	if err != nil {
		return err
	}

	_, err = device.stream.Write(data)
	if err != nil {
		return osfs.ErrIOFailed.Wrap(
			fmt.Errorf("writing %d bytes at block %d: %w", len(data), blockID, err))
	}
	return nil
}

// ReadBlock implements [BlockDevice].
func (device *BlockStream) ReadBlock(blockID BlockID) ([]byte, error) {
	return device.Read(blockID, 1)
}

// WriteBlock implements [BlockDevice]. `data` must be exactly one block.
func (device *BlockStream) WriteBlock(blockID BlockID, data []byte) error {
	if uint(len(data)) != device.BytesPerBlock {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"block data must be exactly %d bytes, got %d",
				device.BytesPerBlock,
				len(data)))
	}
	return device.Write(blockID, data)
}
