package compression

import (
	"bufio"
	"errors"
	"io"
)

// ByteRun is a maximal sequence of identical bytes.
type ByteRun struct {
	Byte byte
	// RunLength is the number of times Byte occurs. It's always at least 1 for a
	// real run.
	RunLength int
}

// EndOfRuns is returned by [RunReader.Next] along with [io.EOF] once the input
// is exhausted.
var EndOfRuns = ByteRun{}

// RunReader splits a byte stream into runs.
type RunReader struct {
	source *bufio.Reader
}

func NewRunReader(input io.Reader) RunReader {
	return RunReader{source: bufio.NewReader(input)}
}

// Next returns the next run in the stream. At the end of the input it returns
// [EndOfRuns] and [io.EOF].
func (r RunReader) Next() (ByteRun, error) {
	first, err := r.source.ReadByte()
	if err != nil {
		return EndOfRuns, err
	}

	run := ByteRun{Byte: first, RunLength: 1}
	for {
		current, err := r.source.ReadByte()
		if errors.Is(err, io.EOF) {
			return run, nil
		} else if err != nil {
			return EndOfRuns, err
		}

		if current != first {
			r.source.UnreadByte()
			return run, nil
		}
		run.RunLength++
	}
}
