package osfs_test

import (
	"io"
	"strings"
	"testing"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessRights__String(t *testing.T) {
	tests := []struct {
		rights   osfs.AccessRights
		expected string
	}{
		{osfs.RightsNone, "---"},
		{osfs.RightRead, "r--"},
		{osfs.RightsReadWrite, "rw-"},
		{osfs.RightsAll, "rwx"},
		{osfs.RightExecute, "--x"},
		{osfs.RightWrite | osfs.RightExecute, "-wx"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.rights.String())
		})
	}
}

func TestAccessRights__Parse__Valid(t *testing.T) {
	for value := 0; value <= 7; value++ {
		rights, err := osfs.AccessRightsFromInt(value)
		require.NoError(t, err)
		assert.EqualValues(t, value, rights)
	}

	rights, err := osfs.ParseAccessRights(" 6 ")
	require.NoError(t, err)
	assert.True(t, rights.CanRead())
	assert.True(t, rights.CanWrite())
	assert.False(t, rights.CanExecute())
}

func TestAccessRights__Parse__Invalid(t *testing.T) {
	_, err := osfs.AccessRightsFromInt(8)
	assert.ErrorIs(t, err, osfs.ErrInvalidArgument)

	_, err = osfs.AccessRightsFromInt(-1)
	assert.ErrorIs(t, err, osfs.ErrInvalidArgument)

	_, err = osfs.ParseAccessRights("rw")
	assert.ErrorIs(t, err, osfs.ErrInvalidArgument)
}

func TestLineReader__StopsAtEOF(t *testing.T) {
	reader := osfs.NewLineReader(strings.NewReader("first\nsecond\n\nthird"))

	for _, expected := range []string{"first", "second", "", "third"} {
		line, err := reader.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, expected, line)
	}

	_, err := reader.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader__LongLine(t *testing.T) {
	long := strings.Repeat("x", 70*1024)
	reader := osfs.NewLineReader(strings.NewReader(long + "\nnext\n"))

	line, err := reader.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, long, line)

	line, err = reader.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "next", line)
}

func TestLineReader__KeepsCarriageReturn(t *testing.T) {
	reader := osfs.NewLineReader(strings.NewReader("a\r\n\r\nb\n"))

	for _, expected := range []string{"a\r", "\r", "b"} {
		line, err := reader.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, expected, line)
	}

	_, err := reader.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}
