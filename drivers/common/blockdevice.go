package common

import (
	"fmt"
	"io"
	"os"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/xaionaro-go/bytesextra"
)

// BlockDevice is a fixed-size device that can only be read from or written to
// in whole blocks, addressed by index. All blocks have the same size.
type BlockDevice interface {
	ReadBlock(blockID BlockID) ([]byte, error)
	WriteBlock(blockID BlockID, data []byte) error
	Geometry() Geometry
}

// NewMemoryDevice creates a zero-filled device held entirely in memory.
func NewMemoryDevice(geometry Geometry) (*BlockStream, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	return NewMemoryDeviceFromBytes(make([]byte, geometry.Size()), geometry)
}

// NewMemoryDeviceFromBytes creates a device using `image` as its storage. Writes
// to the device modify `image` in place.
func NewMemoryDeviceFromBytes(image []byte, geometry Geometry) (*BlockStream, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	if int64(len(image)) < geometry.Size() {
		return nil, osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"image is %d bytes, need at least %d for geometry %s",
				len(image),
				geometry.Size(),
				geometry))
	}
	return NewBlockStream(bytesextra.NewReadWriteSeeker(image), geometry, 0), nil
}

// FileDevice is a [BlockStream] backed by an image file on the host. It must be
// closed when no longer needed.
type FileDevice struct {
	*BlockStream
	file *os.File
}

// OpenImageFile opens the image at `path` as a block device. If the file doesn't
// exist it's created. A file shorter than the geometry requires is extended with
// null bytes; a longer one is left alone and the excess ignored.
func OpenImageFile(path string, geometry Geometry) (*FileDevice, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, osfs.ErrIOFailed.Wrap(err)
	}

	currentBlocks, err := DetermineBlockCount(file, geometry.BytesPerBlock)
	if err != nil {
		file.Close()
		return nil, osfs.ErrIOFailed.Wrap(err)
	}
	if currentBlocks < geometry.TotalBlocks {
		err = file.Truncate(geometry.Size())
		if err != nil {
			file.Close()
			return nil, osfs.ErrIOFailed.Wrap(err)
		}
	}

	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		file.Close()
		return nil, osfs.ErrIOFailed.Wrap(err)
	}

	return &FileDevice{
		BlockStream: NewBlockStream(file, geometry, 0),
		file:        file,
	}, nil
}

// Close flushes and closes the underlying file.
func (device *FileDevice) Close() error {
	err := device.file.Sync()
	closeErr := device.file.Close()
	if err != nil {
		return osfs.ErrIOFailed.Wrap(err)
	}
	if closeErr != nil {
		return osfs.ErrIOFailed.Wrap(closeErr)
	}
	return nil
}
