package compression_test

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	c "github.com/Mouaz7/Os-filesystem/utilities/compression"
	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRLE8__Basic(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{"empty", []byte{}, []byte{}},
		{"run with two only", []byte{4, 4}, []byte{4, 4, 0}},
		{"no runs", []byte{0, 1, 2, 3, 4}, []byte{0, 1, 2, 3, 4}},
		{"three at end", []byte{6, 1, 0, 0, 0}, []byte{6, 1, 0, 0, 1}},
		{"short run", []byte{9, 5, 5, 5, 5, 5, 3, 7}, []byte{9, 5, 5, 3, 3, 7}},
		{
			"adjacent runs",
			[]byte{9, 5, 5, 5, 5, 5, 5, 3, 3, 3, 3, 7, 2, 6},
			[]byte{9, 5, 5, 4, 3, 3, 2, 7, 2, 6},
		},
		{
			"empty block",
			make([]byte, 512),
			[]byte{0, 0, 255, 0, 0, 253},
		},
		{"257", bytes.Repeat([]byte{8}, 257), []byte{8, 8, 255}},
		{"258", bytes.Repeat([]byte{8}, 258), []byte{8, 8, 255, 8}},
		{"259", bytes.Repeat([]byte{8}, 259), []byte{8, 8, 255, 8, 8, 0}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			output := make([]byte, len(test.expected)*2)
			n, err := c.CompressRLE8(bytes.NewReader(test.input), bytewriter.New(output))
			require.NoError(t, err)
			assert.EqualValues(t, len(test.expected), n, "bytes written is wrong")
			assert.Equal(t, test.expected, output[:n])
		})
	}
}

func TestRLE8RoundTrip(t *testing.T) {
	random := make([]byte, 1852)
	_, err := rand.Read(random)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"random", random},
		{"nulls", make([]byte, 571)},
		{"non-null run", bytes.Repeat([]byte{182}, 934)},
		{"empty", []byte{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Random data can come out bigger than it went in.
			compressed := make([]byte, len(test.data)*2)
			n, err := c.CompressRLE8(bytes.NewReader(test.data), bytewriter.New(compressed))
			require.NoError(t, err)
			t.Logf("compressed %d to %d", len(test.data), n)

			output := make([]byte, len(test.data))
			m, err := c.DecompressRLE8(bytes.NewReader(compressed[:n]), bytewriter.New(output))
			require.NoError(t, err)
			assert.EqualValues(t, len(test.data), m)
			assert.Equal(t, test.data, output)
		})
	}
}

func TestDecompressRLE8__MissingRepeatCount(t *testing.T) {
	output := make([]byte, 16)
	_, err := c.DecompressRLE8(bytes.NewReader([]byte{9, 1, 4, 4}), bytewriter.New(output))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
