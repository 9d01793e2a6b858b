package compression

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

const maxRLE8Run = 257

// CompressRLE8 encodes everything in `input` and writes it to `output`. It
// returns the number of bytes written.
func CompressRLE8(input io.Reader, output io.Writer) (int64, error) {
	runs := NewRunReader(input)
	written := int64(0)

	emit := func(data ...byte) error {
		n, err := output.Write(data)
		written += int64(n)
		return err
	}

	for {
		run, err := runs.Next()
		if errors.Is(err, io.EOF) {
			return written, nil
		} else if err != nil {
			return written, err
		}

		for run.RunLength >= 2 {
			chunk := min(run.RunLength, maxRLE8Run)
			err = emit(run.Byte, run.Byte, byte(chunk-2))
			if err != nil {
				return written, err
			}
			run.RunLength -= chunk
		}

		if run.RunLength == 1 {
			err = emit(run.Byte)
			if err != nil {
				return written, err
			}
		}
	}
}

// DecompressRLE8 decodes an RLE8 stream from `input` into `output`. It returns
// the number of decoded bytes written.
func DecompressRLE8(input io.Reader, output io.Writer) (int64, error) {
	source := bufio.NewReader(input)
	previous := -1
	written := int64(0)

	for {
		current, err := source.ReadByte()
		if errors.Is(err, io.EOF) {
			return written, nil
		} else if err != nil {
			return written, fmt.Errorf("error reading input: %w", err)
		}

		var decoded []byte
		if int(current) == previous {
			count, err := source.ReadByte()
			if errors.Is(err, io.EOF) {
				return written, fmt.Errorf(
					"%w: missing repeat count after two %02x bytes",
					io.ErrUnexpectedEOF,
					current)
			} else if err != nil {
				return written, fmt.Errorf("error reading input: %w", err)
			}

			// The first copy of the byte was already written out on the previous
			// iteration.
			decoded = bytes.Repeat([]byte{current}, int(count)+1)
			previous = -1
		} else {
			decoded = []byte{current}
			previous = int(current)
		}

		n, err := output.Write(decoded)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write to output: %w", err)
		}
	}
}
