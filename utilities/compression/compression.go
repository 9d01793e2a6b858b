package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/drivers/common"
)

// CompressImage compresses a raw volume image using RLE8 and gzip. It returns the
// number of RLE8 bytes fed into the gzip stream.
func CompressImage(input io.Reader, output io.Writer) (int64, error) {
	// Volumes are small enough that the best compression level costs nothing
	// noticeable.
	gzWriter, err := gzip.NewWriterLevel(output, gzip.BestCompression)
	if err != nil {
		return 0, err
	}

	n, err := CompressRLE8(input, gzWriter)
	if err != nil {
		gzWriter.Close()
		return n, err
	}
	return n, gzWriter.Close()
}

// DecompressImage reverses [CompressImage]. It returns the size of the raw
// image.
func DecompressImage(input io.Reader, output io.Writer) (int64, error) {
	gzReader, err := gzip.NewReader(input)
	if err != nil {
		return 0, err
	}
	defer gzReader.Close()
	return DecompressRLE8(gzReader, output)
}

// DecompressImageToBytes is [DecompressImage] returning the raw image in a new
// slice.
func DecompressImageToBytes(input io.Reader) ([]byte, error) {
	buffer := bytes.Buffer{}
	_, err := DecompressImage(input, &buffer)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// deviceReader presents a whole block device as one contiguous stream.
type deviceReader struct {
	device  common.BlockDevice
	next    uint
	pending []byte
}

func (r *deviceReader) Read(buffer []byte) (int, error) {
	if len(r.pending) == 0 {
		if r.next >= r.device.Geometry().TotalBlocks {
			return 0, io.EOF
		}
		block, err := r.device.ReadBlock(common.BlockID(r.next))
		if err != nil {
			return 0, err
		}
		r.pending = block
		r.next++
	}

	n := copy(buffer, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// ExportVolume writes a compressed snapshot of every block on `device`.
func ExportVolume(device common.BlockDevice, output io.Writer) (int64, error) {
	n, err := CompressImage(&deviceReader{device: device}, output)
	if err != nil {
		return n, osfs.ErrIOFailed.Wrap(err)
	}
	return n, nil
}

// ImportVolume decompresses a snapshot made by [ExportVolume] and writes it to
// `device` block by block. The snapshot's size must match the device exactly.
func ImportVolume(input io.Reader, device common.BlockDevice) error {
	image, err := DecompressImageToBytes(input)
	if err != nil {
		return osfs.ErrIOFailed.Wrap(err)
	}

	geometry := device.Geometry()
	if int64(len(image)) != geometry.Size() {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"snapshot is %d bytes, device with geometry %s needs %d",
				len(image),
				geometry,
				geometry.Size()))
	}

	for i := uint(0); i < geometry.TotalBlocks; i++ {
		start := i * geometry.BytesPerBlock
		err = device.WriteBlock(common.BlockID(i), image[start:start+geometry.BytesPerBlock])
		if err != nil {
			return err
		}
	}
	return nil
}
