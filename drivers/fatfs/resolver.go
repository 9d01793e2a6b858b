package fatfs

import (
	"errors"
	"fmt"
	"strings"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/drivers/common"
)

const pathSeparator = "/"

// resolve walks every component of `path` except the last and returns the block
// of the directory reached, along with the final component. The final component
// isn't looked up.
//
// If `path` refers to the root directory itself, the returned name is empty.
func (driver *Driver) resolve(path string) (common.BlockID, string, error) {
	if path == "" {
		return 0, "", osfs.ErrInvalidArgument.WithMessage("path is empty")
	}

	current := driver.workingDir
	if strings.HasPrefix(path, pathSeparator) {
		current = RootDirBlock
	}

	components := splitPath(path)
	if len(components) == 0 {
		return RootDirBlock, "", nil
	}

	for i, component := range components[:len(components)-1] {
		next, err := driver.step(current, component)
		if err != nil {
			return 0, "", withPath(err, strings.Join(components[:i+1], pathSeparator))
		}
		current = next
	}
	return current, components[len(components)-1], nil
}

// step moves from the directory at `current` to its child `name`.
func (driver *Driver) step(current common.BlockID, name string) (common.BlockID, error) {
	if name == currentDirName {
		return current, nil
	}

	dir, err := ReadDirectory(driver.device, current)
	if err != nil {
		return 0, err
	}

	if name == ParentDirName {
		parent, ok := dir.Parent()
		if !ok {
			// Only the root has no parent.
			return current, nil
		}
		return parent, nil
	}

	slot, ok := dir.FindByName(name)
	if !ok {
		return 0, osfs.ErrNotFound
	}
	if !dir[slot].IsDir() {
		return 0, osfs.ErrNotADirectory
	}
	return dir[slot].FirstBlock, nil
}

// withPath adds the offending path to a driver error's message.
func withPath(err error, path string) error {
	var driverErr osfs.DriverError
	if errors.As(err, &driverErr) {
		return driverErr.WithMessage(path)
	}
	return err
}

// splitPath breaks a path into its components, ignoring empty ones produced by
// leading, repeated, or trailing separators.
func splitPath(path string) []string {
	parts := strings.Split(path, pathSeparator)
	components := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			components = append(components, part)
		}
	}
	return components
}

// entryLocation identifies an existing directory entry: the directory that
// holds it, the contents of that directory as read, and the slot.
type entryLocation struct {
	dirBlock common.BlockID
	dir      Directory
	slot     int
}

func (loc entryLocation) entry() Dirent {
	return loc.dir[loc.slot]
}

// locate resolves `path` to an existing, ordinary entry. The root directory and
// the "." and ".." links can't be operated on this way.
func (driver *Driver) locate(path string) (entryLocation, error) {
	dirBlock, name, err := driver.resolve(path)
	if err != nil {
		return entryLocation{}, err
	}

	if name == "" || name == currentDirName || name == ParentDirName {
		return entryLocation{}, osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("%q does not name a directory entry", path))
	}

	dir, err := ReadDirectory(driver.device, dirBlock)
	if err != nil {
		return entryLocation{}, err
	}

	slot, ok := dir.FindByName(name)
	if !ok {
		return entryLocation{}, osfs.ErrNotFound.WithMessage(path)
	}
	return entryLocation{dirBlock: dirBlock, dir: dir, slot: slot}, nil
}

// locateFile is [Driver.locate] for operations that only work on files.
func (driver *Driver) locateFile(path string) (entryLocation, error) {
	loc, err := driver.locate(path)
	if err != nil {
		return loc, err
	}
	if loc.entry().IsDir() {
		return loc, osfs.ErrIsADirectory.WithMessage(path)
	}
	return loc, nil
}

// resolveDirectory gives the block of the directory `path` refers to, following
// "." and "..".
func (driver *Driver) resolveDirectory(path string) (common.BlockID, error) {
	dirBlock, name, err := driver.resolve(path)
	if err != nil {
		return 0, err
	}
	if name == "" {
		return RootDirBlock, nil
	}

	next, err := driver.step(dirBlock, name)
	if err != nil {
		return 0, withPath(err, path)
	}
	return next, nil
}

// resolveNewEntry resolves the path of an entry about to be created. It fails if
// the name is invalid or already taken, or if the directory is full.
func (driver *Driver) resolveNewEntry(path string) (common.BlockID, string, Directory, error) {
	dirBlock, name, err := driver.resolve(path)
	if err != nil {
		return 0, "", nil, err
	}

	dirBlock, name, dir, err := driver.checkNewEntry(dirBlock, name)
	if err != nil {
		return 0, "", nil, err
	}
	if _, ok := dir.FindFreeSlot(); !ok {
		return 0, "", nil, osfs.ErrDirectoryFull
	}
	return dirBlock, name, dir, nil
}

// checkNewEntry fails if `name` can't be used for a new entry in the directory
// at `dirBlock`.
func (driver *Driver) checkNewEntry(
	dirBlock common.BlockID, name string,
) (common.BlockID, string, Directory, error) {
	err := ValidateName(name)
	if err != nil {
		return 0, "", nil, err
	}

	dir, err := ReadDirectory(driver.device, dirBlock)
	if err != nil {
		return 0, "", nil, err
	}
	if _, exists := dir.FindByName(name); exists {
		return 0, "", nil, osfs.ErrExists.WithMessage(name)
	}
	return dirBlock, name, dir, nil
}

// resolveDestination works out where `cp` or `mv` should put an entry named
// `srcName`. If `dst` refers to an existing directory the entry goes inside it
// under its original name, otherwise `dst` is the new path.
func (driver *Driver) resolveDestination(
	dst, srcName string,
) (common.BlockID, string, Directory, error) {
	dirBlock, name, err := driver.resolve(dst)
	if err != nil {
		return 0, "", nil, err
	}

	switch name {
	case "":
		return driver.checkNewEntry(RootDirBlock, srcName)
	case currentDirName, ParentDirName:
		target, err := driver.step(dirBlock, name)
		if err != nil {
			return 0, "", nil, withPath(err, dst)
		}
		return driver.checkNewEntry(target, srcName)
	}

	dir, err := ReadDirectory(driver.device, dirBlock)
	if err != nil {
		return 0, "", nil, err
	}
	if slot, exists := dir.FindByName(name); exists && dir[slot].IsDir() {
		return driver.checkNewEntry(dir[slot].FirstBlock, srcName)
	}
	return driver.checkNewEntry(dirBlock, name)
}
