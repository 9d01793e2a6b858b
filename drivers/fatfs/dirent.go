package fatfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/drivers/common"
	"github.com/noxer/bytewriter"
)

// DirentSize is the size of a single directory entry on disk, in bytes.
const DirentSize = 64

// MaxNameLength is the longest name an entry can have, in bytes. The on-disk
// field is one byte longer to hold the null terminator.
const MaxNameLength = 55

const nameFieldSize = MaxNameLength + 1

// ParentDirName is the name of the back-reference every non-root directory
// holds to its parent.
const ParentDirName = ".."

const currentDirName = "."

// RawDirent is the on-disk layout of a directory entry. Everything is stored in
// little-endian byte order.
type RawDirent struct {
	Name       [nameFieldSize]byte
	Size       uint32
	FirstBlock uint16
	Type       uint8
	Rights     uint8
}

// Dirent is a decoded directory entry. An entry with an empty name is an unused
// slot.
type Dirent struct {
	Name       string
	Size       uint32
	FirstBlock common.BlockID
	Type       osfs.EntryType
	Rights     osfs.AccessRights
}

func (d Dirent) IsUnused() bool {
	return d.Name == ""
}

func (d Dirent) IsDir() bool {
	return d.Type == osfs.TypeDirectory
}

// IsParentLink returns true if this is the ".." entry of a directory.
func (d Dirent) IsParentLink() bool {
	return d.Name == ParentDirName
}

func (d Dirent) Info() osfs.EntryInfo {
	return osfs.EntryInfo{
		Name:       d.Name,
		Type:       d.Type,
		Rights:     d.Rights,
		Size:       d.Size,
		FirstBlock: uint16(d.FirstBlock),
	}
}

// ValidateName checks that `name` can be stored as the name of a new entry.
func ValidateName(name string) error {
	if name == "" {
		return osfs.ErrInvalidArgument.WithMessage("name must not be empty")
	}
	if len(name) > MaxNameLength {
		return osfs.ErrNameTooLong.WithMessage(
			fmt.Sprintf(
				"%q is %d bytes, max is %d",
				name,
				len(name),
				MaxNameLength))
	}
	if strings.ContainsAny(name, "/\x00") {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("name %q contains a path separator or null byte", name))
	}
	if name == currentDirName || name == ParentDirName {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("%q is reserved", name))
	}
	return nil
}

// DecodeDirent converts the first [DirentSize] bytes of `data` into an entry.
func DecodeDirent(data []byte) (Dirent, error) {
	if len(data) < DirentSize {
		return Dirent{}, osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("need %d bytes for a directory entry, got %d", DirentSize, len(data)))
	}

	var raw RawDirent
	err := binary.Read(bytes.NewReader(data[:DirentSize]), binary.LittleEndian, &raw)
	if err != nil {
		return Dirent{}, osfs.ErrIOFailed.Wrap(err)
	}

	nameLength := bytes.IndexByte(raw.Name[:], 0)
	if nameLength < 0 {
		// No terminator. The last byte of the field is reserved for it, so the
		// name is truncated to the maximum length.
		nameLength = MaxNameLength
	}

	return Dirent{
		Name:       string(raw.Name[:nameLength]),
		Size:       raw.Size,
		FirstBlock: common.BlockID(raw.FirstBlock),
		Type:       osfs.EntryType(raw.Type),
		Rights:     osfs.AccessRights(raw.Rights),
	}, nil
}

// Encode writes the on-disk form of the entry into the first [DirentSize]
// bytes of `buffer`. Unused entries are written as all null bytes.
func (d Dirent) Encode(buffer []byte) error {
	if len(buffer) < DirentSize {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("need %d bytes for a directory entry, got %d", DirentSize, len(buffer)))
	}
	if len(d.Name) > MaxNameLength {
		return osfs.ErrNameTooLong.WithMessage(d.Name)
	}

	raw := RawDirent{}
	if !d.IsUnused() {
		copy(raw.Name[:], d.Name)
		raw.Size = d.Size
		raw.FirstBlock = uint16(d.FirstBlock)
		raw.Type = uint8(d.Type)
		raw.Rights = uint8(d.Rights)
	}

	writer := bytewriter.New(buffer[:DirentSize])
	err := binary.Write(writer, binary.LittleEndian, &raw)
	if err != nil {
		return osfs.ErrIOFailed.Wrap(err)
	}
	return nil
}
