package compression_test

import (
	"bytes"
	"io"
	"testing"

	c "github.com/Mouaz7/Os-filesystem/utilities/compression"
	"github.com/stretchr/testify/assert"
)

func TestRunReader__FirstRun(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected c.ByteRun
	}{
		{"empty", []byte{}, c.EndOfRuns},
		{"two initial", []byte{0, 0, 1, 0, 0, 0, 0}, c.ByteRun{Byte: 0, RunLength: 2}},
		{"one byte", []byte{6, 1, 5, 20, 31}, c.ByteRun{Byte: 6, RunLength: 1}},
		{"entire run", []byte{9, 9, 9, 9, 9, 9}, c.ByteRun{Byte: 9, RunLength: 6}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			run, _ := c.NewRunReader(bytes.NewReader(test.data)).Next()
			assert.Equal(t, test.expected, run)
		})
	}
}

func TestRunReader__Sequence(t *testing.T) {
	data := []byte{1, 9, 4, 4, 4, 4, 4, 6, 6, 0, 1, 0, 0, 0}
	expected := []c.ByteRun{
		{1, 1}, {9, 1}, {4, 5}, {6, 2}, {0, 1}, {1, 1}, {0, 3},
	}

	runs := c.NewRunReader(bytes.NewReader(data))
	for i, expectedRun := range expected {
		run, err := runs.Next()
		assert.NoError(t, err)
		assert.Equal(t, expectedRun, run, "run %d is wrong", i)
	}

	run, err := runs.Next()
	assert.Equal(t, c.EndOfRuns, run)
	assert.ErrorIs(t, err, io.EOF)
}
