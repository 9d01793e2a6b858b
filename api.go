package osfs

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// LineSource supplies the content of a new file one line at a time.
//
// ReadLine returns the next line without its terminator. Implementations must
// return [io.EOF] once no more lines are available; callers treat that the same
// way as a blank line.
type LineSource interface {
	ReadLine() (string, error)
}

// LineReader is a [LineSource] reading newline-terminated lines from any
// [io.Reader], typically standard input. Lines have no length limit. Only the
// "\n" terminator is removed; a "\r" before it is part of the line.
type LineReader struct {
	reader *bufio.Reader
}

func NewLineReader(reader io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(reader)}
}

func (r *LineReader) ReadLine() (string, error) {
	line, err := r.reader.ReadString('\n')
	if err == nil {
		return strings.TrimSuffix(line, "\n"), nil
	}
	if !errors.Is(err, io.EOF) {
		return "", ErrIOFailed.Wrap(err)
	}
	// Last line without a terminator.
	if line != "" {
		return line, nil
	}
	return "", io.EOF
}

// EntryInfo describes a single used slot of a directory.
type EntryInfo struct {
	Name       string
	Type       EntryType
	Rights     AccessRights
	Size       uint32
	FirstBlock uint16
}

func (info EntryInfo) IsDir() bool {
	return info.Type == TypeDirectory
}

// FileSystem is the command surface exposed to a shell. Every method reports
// failure with a [DriverError].
type FileSystem interface {
	// Format creates an empty file system, discarding everything on the volume.
	Format() error
	// Create makes a new file whose content is read from the driver's
	// [LineSource] until the first empty line.
	Create(path string) error
	// Cat writes the content of a file to the driver's output.
	Cat(path string) error
	// Ls lists the current directory.
	Ls() error
	// Cp copies a file. If `dst` names an existing directory, the copy is placed
	// inside it under the source's name.
	Cp(src, dst string) error
	// Mv renames a file or moves it into another directory.
	Mv(src, dst string) error
	// Rm deletes a file or an empty directory.
	Rm(path string) error
	// Append adds the content of `src` to the end of `dst`.
	Append(src, dst string) error
	Mkdir(path string) error
	Cd(path string) error
	// Pwd writes the absolute path of the current directory to the output.
	Pwd() error
	// Chmod replaces the access rights of an entry. `rights` must be in [0, 7].
	Chmod(rights int, path string) error
}
