// Package testing contains helpers shared by the tests of the other packages.
package testing

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/Mouaz7/Os-filesystem/drivers/common"
	"github.com/Mouaz7/Os-filesystem/utilities/compression"
	"github.com/stretchr/testify/require"
)

// CreateRandomImage creates an image of the given geometry filled with random
// bytes. It is guaranteed to either return a valid slice or fail the test and
// abort.
func CreateRandomImage(geometry common.Geometry, t *testing.T) []byte {
	backingData := make([]byte, geometry.Size())

	_, err := rand.Read(backingData)
	require.NoErrorf(
		t,
		err,
		"failed to initialize %d blocks of size %d with random bytes",
		geometry.TotalBlocks,
		geometry.BytesPerBlock,
	)
	return backingData
}

// CreateMemoryDevice creates an in-memory block device.
//
// Arguments:
//
//   - geometry: The shape of the device.
//   - backingData: Optional. A byte slice of at least `geometry.Size()` bytes
//     used as the device's storage; writes to the device modify it. Pass `nil`
//     to get completely random data.
//   - `t`: The testing fixture.
func CreateMemoryDevice(
	geometry common.Geometry, backingData []byte, t *testing.T,
) *common.BlockStream {
	if backingData == nil {
		backingData = CreateRandomImage(geometry, t)
	}

	device, err := common.NewMemoryDeviceFromBytes(backingData, geometry)
	require.NoError(t, err, "failed to create memory device")
	return device
}

// LoadDiskImage takes a compressed volume snapshot and returns a device backed
// by the uncompressed data.
//
//   - Writes to the device do not affect `compressedImageBytes`.
//   - The snapshot must be exactly `geometry.Size()` bytes once decompressed.
func LoadDiskImage(
	t *testing.T, compressedImageBytes []byte, geometry common.Geometry,
) *common.BlockStream {
	require.Greater(t, len(compressedImageBytes), 0, "compressed image is empty")

	imageBytes, err := compression.DecompressImageToBytes(
		bytes.NewReader(compressedImageBytes))
	require.NoError(t, err)

	require.EqualValues(
		t,
		geometry.Size(),
		len(imageBytes),
		"uncompressed image is wrong size",
	)
	return CreateMemoryDevice(geometry, imageBytes, t)
}
