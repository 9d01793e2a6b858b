package fatfs_test

import (
	"strings"
	"testing"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/drivers/common"
	"github.com/Mouaz7/Os-filesystem/drivers/fatfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirent__Encode__Layout(t *testing.T) {
	entry := fatfs.Dirent{
		Name:       "a.txt",
		Size:       0x01020304,
		FirstBlock: 0x0506,
		Type:       osfs.TypeDirectory,
		Rights:     osfs.RightsReadWrite,
	}

	buffer := make([]byte, fatfs.DirentSize)
	require.NoError(t, entry.Encode(buffer))

	expectedName := make([]byte, 56)
	copy(expectedName, "a.txt")
	assert.Equal(t, expectedName, buffer[:56], "name field")
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buffer[56:60], "size field")
	assert.Equal(t, []byte{0x06, 0x05}, buffer[60:62], "first block field")
	assert.EqualValues(t, 1, buffer[62], "type field")
	assert.EqualValues(t, 6, buffer[63], "rights field")

	decoded, err := fatfs.DecodeDirent(buffer)
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestDirent__Encode__UnusedIsZero(t *testing.T) {
	buffer := []byte(strings.Repeat("x", fatfs.DirentSize))
	require.NoError(t, fatfs.Dirent{Size: 10, FirstBlock: 3}.Encode(buffer))
	assert.Equal(t, make([]byte, fatfs.DirentSize), buffer)
}

func TestDirent__Decode__MaxLengthName(t *testing.T) {
	name := strings.Repeat("n", fatfs.MaxNameLength)
	buffer := make([]byte, fatfs.DirentSize)
	require.NoError(t, fatfs.Dirent{Name: name, FirstBlock: 2}.Encode(buffer))
	assert.Zero(t, buffer[fatfs.MaxNameLength], "terminator missing")

	decoded, err := fatfs.DecodeDirent(buffer)
	require.NoError(t, err)
	assert.Equal(t, name, decoded.Name)
}

func TestDirent__Decode__ShortBuffer(t *testing.T) {
	_, err := fatfs.DecodeDirent(make([]byte, fatfs.DirentSize-1))
	assert.ErrorIs(t, err, osfs.ErrInvalidArgument)
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name     string
		expected error
	}{
		{"a.txt", nil},
		{strings.Repeat("x", fatfs.MaxNameLength), nil},
		{strings.Repeat("x", fatfs.MaxNameLength+1), osfs.ErrNameTooLong},
		{"", osfs.ErrInvalidArgument},
		{"a/b", osfs.ErrInvalidArgument},
		{".", osfs.ErrInvalidArgument},
		{"..", osfs.ErrInvalidArgument},
		{"...", nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := fatfs.ValidateName(test.name)
			if test.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, test.expected)
			}
		})
	}
}

func TestDirectory__EncodeDecode(t *testing.T) {
	dir := fatfs.NewDirectory(512)
	require.Len(t, dir, 8)

	dir[0] = fatfs.Dirent{
		Name: fatfs.ParentDirName, Type: osfs.TypeDirectory, Rights: osfs.RightsAll,
	}
	dir[3] = fatfs.Dirent{Name: "file", Size: 12, FirstBlock: 7, Rights: osfs.RightRead}

	data, err := dir.Encode(512)
	require.NoError(t, err)
	require.Len(t, data, 512)

	decoded, err := fatfs.DecodeDirectory(data)
	require.NoError(t, err)
	assert.Equal(t, dir, decoded)
}

func TestDirectory__Lookups(t *testing.T) {
	dir := fatfs.NewDirectory(512)
	dir[0] = fatfs.Dirent{Name: fatfs.ParentDirName, FirstBlock: 0, Type: osfs.TypeDirectory}
	dir[2] = fatfs.Dirent{Name: "sub", FirstBlock: 9, Type: osfs.TypeDirectory}
	dir[4] = fatfs.Dirent{Name: "file", FirstBlock: 9, Type: osfs.TypeFile}

	slot, ok := dir.FindByName("file")
	assert.True(t, ok)
	assert.Equal(t, 4, slot)

	_, ok = dir.FindByName("fil")
	assert.False(t, ok, "matching must be exact")
	_, ok = dir.FindByName("")
	assert.False(t, ok, "unused slots must not match")

	slot, ok = dir.FindFreeSlot()
	assert.True(t, ok)
	assert.Equal(t, 1, slot)

	parent, ok := dir.Parent()
	assert.True(t, ok)
	assert.Equal(t, common.BlockID(0), parent)

	slot, ok = dir.FindByFirstBlock(9)
	assert.True(t, ok)
	assert.Equal(t, 2, slot, "only directories should match")

	_, ok = dir.FindByFirstBlock(0)
	assert.False(t, ok, "the parent link must never match")

	assert.False(t, dir.IsEmpty())
	assert.Len(t, dir.Used(), 3)
}

func TestDirectory__IsEmpty(t *testing.T) {
	dir := fatfs.NewDirectory(128)
	assert.True(t, dir.IsEmpty())

	dir[1] = fatfs.Dirent{Name: fatfs.ParentDirName, Type: osfs.TypeDirectory}
	assert.True(t, dir.IsEmpty(), "parent link alone doesn't make it non-empty")

	_, ok := dir.FindFreeSlot()
	assert.True(t, ok)

	dir[0] = fatfs.Dirent{Name: "x"}
	assert.False(t, dir.IsEmpty())

	_, ok = dir.FindFreeSlot()
	assert.False(t, ok)
}
