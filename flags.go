package osfs

import (
	"fmt"
	"strconv"
	"strings"
)

// AccessRights is the three-bit permission field stored in every directory
// entry.
type AccessRights uint8

const (
	RightExecute AccessRights = 1 << iota // 001
	RightWrite                            // 010
	RightRead                             // 100
)

const RightsNone = AccessRights(0)
const RightsReadWrite = RightRead | RightWrite
const RightsAll = RightRead | RightWrite | RightExecute

func (r AccessRights) CanRead() bool {
	return r&RightRead != 0
}

func (r AccessRights) CanWrite() bool {
	return r&RightWrite != 0
}

func (r AccessRights) CanExecute() bool {
	return r&RightExecute != 0
}

// String renders the rights the way `ls` shows them, e.g. "rw-".
func (r AccessRights) String() string {
	var builder strings.Builder
	for _, flag := range []struct {
		bit  AccessRights
		char byte
	}{{RightRead, 'r'}, {RightWrite, 'w'}, {RightExecute, 'x'}} {
		if r&flag.bit != 0 {
			builder.WriteByte(flag.char)
		} else {
			builder.WriteByte('-')
		}
	}
	return builder.String()
}

// AccessRightsFromInt validates a numeric rights value. Only 0 through 7 are
// representable.
func AccessRightsFromInt(value int) (AccessRights, error) {
	if value < 0 || value > int(RightsAll) {
		return RightsNone, ErrInvalidArgument.WithMessage(
			fmt.Sprintf("access rights must be in [0, 7], got %d", value))
	}
	return AccessRights(value), nil
}

// ParseAccessRights converts the textual argument of chmod into a rights value.
func ParseAccessRights(text string) (AccessRights, error) {
	value, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return RightsNone, ErrInvalidArgument.Wrap(err)
	}
	return AccessRightsFromInt(value)
}

// EntryType distinguishes files from directories. The values are the on-disk
// encoding.
type EntryType uint8

const (
	TypeFile      EntryType = 0
	TypeDirectory EntryType = 1
)

func (t EntryType) String() string {
	if t == TypeDirectory {
		return "dir"
	}
	return "file"
}
