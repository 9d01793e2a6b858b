package common_test

import (
	"bytes"
	"testing"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/drivers/common"
	osfstest "github.com/Mouaz7/Os-filesystem/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

var testGeometry = common.Geometry{BytesPerBlock: 128, TotalBlocks: 16}

func TestBlockStream__ReadBlock(t *testing.T) {
	image := osfstest.CreateRandomImage(testGeometry, t)
	device := osfstest.CreateMemoryDevice(testGeometry, image, t)

	for i := uint(0); i < testGeometry.TotalBlocks; i++ {
		block, err := device.ReadBlock(common.BlockID(i))
		require.NoErrorf(t, err, "failed to read block %d", i)
		start := i * testGeometry.BytesPerBlock
		assert.True(
			t,
			bytes.Equal(image[start:start+testGeometry.BytesPerBlock], block),
			"block %d is wrong",
			i)
	}
}

func TestBlockStream__ReadMultiple(t *testing.T) {
	image := osfstest.CreateRandomImage(testGeometry, t)
	device := osfstest.CreateMemoryDevice(testGeometry, image, t)

	data, err := device.Read(3, 4)
	require.NoError(t, err)
	assert.Equal(t, image[3*128:7*128], data)

	// The last block is readable; one past it is not.
	_, err = device.Read(15, 1)
	assert.NoError(t, err)
	_, err = device.Read(15, 2)
	assert.ErrorIs(t, err, osfs.ErrInvalidArgument)
}

func TestBlockStream__WriteBlock(t *testing.T) {
	image := make([]byte, testGeometry.Size())
	device := osfstest.CreateMemoryDevice(testGeometry, image, t)

	data := bytes.Repeat([]byte{0xa5}, 128)
	require.NoError(t, device.WriteBlock(5, data))

	assert.Equal(t, data, image[5*128:6*128], "write didn't reach backing storage")
	assert.Equal(t, make([]byte, 128), image[4*128:5*128], "neighbor modified")
	assert.Equal(t, make([]byte, 128), image[6*128:7*128], "neighbor modified")

	readBack, err := device.ReadBlock(5)
	require.NoError(t, err)
	assert.Equal(t, data, readBack)
}

func TestBlockStream__BadArguments(t *testing.T) {
	device := osfstest.CreateMemoryDevice(testGeometry, nil, t)

	_, err := device.ReadBlock(16)
	assert.ErrorIs(t, err, osfs.ErrInvalidArgument)

	err = device.WriteBlock(0, make([]byte, 127))
	assert.ErrorIs(t, err, osfs.ErrInvalidArgument)

	err = device.Write(0, make([]byte, 200))
	assert.ErrorIs(t, err, osfs.ErrInvalidArgument, "partial blocks must be rejected")

	err = device.WriteBlock(16, make([]byte, 128))
	assert.ErrorIs(t, err, osfs.ErrInvalidArgument)
}

func TestBlockStream__StartOffset(t *testing.T) {
	image := osfstest.CreateRandomImage(
		common.Geometry{BytesPerBlock: 128, TotalBlocks: 17}, t)
	device := common.NewBlockStream(bytesextra.NewReadWriteSeeker(image), testGeometry, 128)

	block, err := device.ReadBlock(0)
	require.NoError(t, err)
	assert.Equal(t, image[128:256], block)
}

func TestNewMemoryDevice__Zeroed(t *testing.T) {
	device, err := common.NewMemoryDevice(testGeometry)
	require.NoError(t, err)

	block, err := device.ReadBlock(7)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 128), block)
}

func TestNewMemoryDeviceFromBytes__TooSmall(t *testing.T) {
	_, err := common.NewMemoryDeviceFromBytes(make([]byte, 100), testGeometry)
	assert.ErrorIs(t, err, osfs.ErrInvalidArgument)
}

func TestGeometry(t *testing.T) {
	assert.EqualValues(t, 8*1024*1024, common.DefaultGeometry.Size())
	assert.EqualValues(t, 0, testGeometry.LengthToNumBlocks(0))
	assert.EqualValues(t, 1, testGeometry.LengthToNumBlocks(1))
	assert.EqualValues(t, 1, testGeometry.LengthToNumBlocks(128))
	assert.EqualValues(t, 2, testGeometry.LengthToNumBlocks(129))

	assert.NoError(t, common.DefaultGeometry.Validate())
	assert.ErrorIs(t, common.Geometry{BytesPerBlock: 128}.Validate(), osfs.ErrInvalidArgument)
	assert.ErrorIs(
		t,
		common.Geometry{BytesPerBlock: 128, TotalBlocks: 70000}.Validate(),
		osfs.ErrInvalidArgument)
}
