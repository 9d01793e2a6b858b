// Package fatfs implements a single-volume file system using a linked
// allocation table.
//
// Block 0 of the volume is the root directory and block 1 is the allocation
// table. Every other block holds either file data or a subdirectory. Each
// subdirectory fits in exactly one block and links back to its parent through
// an entry named "..".
//
// The allocation table and every directory touched by an operation are read
// from the device when the operation starts and written back before it
// returns. Nothing is cached between operations. A [Driver] is not safe for
// concurrent use.
package fatfs

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/drivers/common"
)

// Driver operates on a volume stored on a block device. It keeps track of the
// current working directory.
type Driver struct {
	device     common.BlockDevice
	geometry   common.Geometry
	input      osfs.LineSource
	output     io.Writer
	workingDir common.BlockID
}

var _ osfs.FileSystem = (*Driver)(nil)

// NewDriver creates a driver for the volume on `device`. File content for
// [Driver.Create] is read from `input`, and everything the commands print goes
// to `output`. The volume isn't touched until an operation is called, so a new
// device must be formatted before use.
func NewDriver(device common.BlockDevice, input osfs.LineSource, output io.Writer) (*Driver, error) {
	geometry := device.Geometry()
	err := ValidateGeometry(geometry)
	if err != nil {
		return nil, err
	}

	return &Driver{
		device:     device,
		geometry:   geometry,
		input:      input,
		output:     output,
		workingDir: RootDirBlock,
	}, nil
}

func (driver *Driver) Geometry() common.Geometry {
	return driver.geometry
}

// Format creates an empty file system on the device. The working directory is
// reset to the root.
func (driver *Driver) Format() error {
	table := NewAllocationTable(driver.device)
	err := table.Persist()
	if err != nil {
		return err
	}

	err = WriteDirectory(
		driver.device, RootDirBlock, NewDirectory(driver.geometry.BytesPerBlock))
	if err != nil {
		return err
	}

	driver.workingDir = RootDirBlock
	return nil
}

// IsFormatted checks whether the device holds a volume, as opposed to being
// blank or holding something else. Only the reserved allocation table entries
// are examined; use [Driver.Check] for a thorough inspection.
func (driver *Driver) IsFormatted() (bool, error) {
	table, err := LoadAllocationTable(driver.device)
	if err != nil {
		return false, err
	}
	for _, reserved := range []common.BlockID{RootDirBlock, FATBlock} {
		value, err := table.Get(reserved)
		if err != nil {
			return false, err
		}
		if value != EndOfChain {
			return false, nil
		}
	}
	return true, nil
}

////////////////////////////////////////////////////////////////////////////////
// Files

// Create makes a new file at `path`. Its content is read one line at a time from
// the driver's input until an empty line or the end of the input. Each line is
// stored followed by a newline.
func (driver *Driver) Create(path string) error {
	// Fail before asking for content the caller will never be able to store.
	_, _, _, err := driver.resolveNewEntry(path)
	if err != nil {
		return err
	}

	var content strings.Builder
	for {
		line, err := driver.input.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return err
		}
		if line == "" {
			break
		}
		content.WriteString(line)
		content.WriteByte('\n')
	}

	return driver.WriteFile(path, []byte(content.String()))
}

// WriteFile creates a new file at `path` containing exactly `data`. It never
// overwrites an existing entry.
func (driver *Driver) WriteFile(path string, data []byte) error {
	dirBlock, name, dir, err := driver.resolveNewEntry(path)
	if err != nil {
		return err
	}
	return driver.storeFile(dirBlock, dir, name, data)
}

// Cat writes the content of the file at `path` to the output.
func (driver *Driver) Cat(path string) error {
	loc, err := driver.locateFile(path)
	if err != nil {
		return err
	}
	if !loc.entry().Rights.CanRead() {
		return driver.permissionDenied("read", path)
	}

	data, err := driver.readContent(loc.entry())
	if err != nil {
		return err
	}

	_, err = driver.output.Write(data)
	if err != nil {
		return osfs.ErrIOFailed.Wrap(err)
	}
	return nil
}

// ReadFile returns the content of the file at `path`.
func (driver *Driver) ReadFile(path string) ([]byte, error) {
	loc, err := driver.locateFile(path)
	if err != nil {
		return nil, err
	}
	if !loc.entry().Rights.CanRead() {
		return nil, osfs.ErrPermissionDenied.WithMessage(
			fmt.Sprintf("no read permission on %s", path))
	}
	return driver.readContent(loc.entry())
}

// Cp copies the file at `src` to `dst`. If `dst` is an existing directory, the
// copy is placed inside it with the same name as the source.
func (driver *Driver) Cp(src, dst string) error {
	loc, err := driver.locateFile(src)
	if err != nil {
		return err
	}
	source := loc.entry()

	data, err := driver.readContent(source)
	if err != nil {
		return err
	}

	dirBlock, name, dir, err := driver.resolveDestination(dst, source.Name)
	if err != nil {
		return err
	}
	return driver.storeFile(dirBlock, dir, name, data)
}

// Mv renames the file at `src` or moves it to another directory. The file's
// blocks aren't touched; only the directory entry moves.
func (driver *Driver) Mv(src, dst string) error {
	loc, err := driver.locateFile(src)
	if err != nil {
		return err
	}
	source := loc.entry()

	dirBlock, name, dir, err := driver.resolveDestination(dst, source.Name)
	if err != nil {
		return err
	}

	if dirBlock == loc.dirBlock {
		loc.dir[loc.slot].Name = name
		return WriteDirectory(driver.device, loc.dirBlock, loc.dir)
	}

	slot, ok := dir.FindFreeSlot()
	if !ok {
		return osfs.ErrDirectoryFull.WithMessage(dst)
	}
	moved := source
	moved.Name = name
	dir[slot] = moved

	err = WriteDirectory(driver.device, dirBlock, dir)
	if err != nil {
		return err
	}

	loc.dir[loc.slot] = Dirent{}
	return WriteDirectory(driver.device, loc.dirBlock, loc.dir)
}

// Rm deletes a file, or a directory that contains nothing but its ".." entry.
func (driver *Driver) Rm(path string) error {
	loc, err := driver.locate(path)
	if err != nil {
		return err
	}
	entry := loc.entry()

	table, err := LoadAllocationTable(driver.device)
	if err != nil {
		return err
	}

	if entry.IsDir() {
		if entry.FirstBlock == driver.workingDir {
			return osfs.ErrInvalidArgument.WithMessage(
				fmt.Sprintf("%s is the working directory", path))
		}

		contents, err := ReadDirectory(driver.device, entry.FirstBlock)
		if err != nil {
			return err
		}
		if !contents.IsEmpty() {
			return osfs.ErrDirectoryNotEmpty.WithMessage(path)
		}
		err = table.FreeSingle(entry.FirstBlock)
		if err != nil {
			return err
		}
	} else {
		err = table.FreeChain(entry.FirstBlock)
		if err != nil {
			return err
		}
	}

	err = table.Persist()
	if err != nil {
		return err
	}

	loc.dir[loc.slot] = Dirent{}
	return WriteDirectory(driver.device, loc.dirBlock, loc.dir)
}

// Append adds the content of the file at `src` to the end of the file at `dst`.
// `src` must be readable and `dst` writable. The source is left unchanged.
func (driver *Driver) Append(src, dst string) error {
	srcLoc, err := driver.locateFile(src)
	if err != nil {
		return err
	}
	dstLoc, err := driver.locateFile(dst)
	if err != nil {
		return err
	}
	if !srcLoc.entry().Rights.CanRead() {
		return driver.permissionDenied("read", src)
	}
	if !dstLoc.entry().Rights.CanWrite() {
		return driver.permissionDenied("write", dst)
	}

	data, err := driver.readContent(srcLoc.entry())
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	target := dstLoc.entry()
	newSize := uint64(target.Size) + uint64(len(data))
	if newSize > math.MaxUint32 {
		return osfs.ErrFileTooLarge.WithMessage(dst)
	}

	table, err := LoadAllocationTable(driver.device)
	if err != nil {
		return err
	}
	lastBlock, err := table.LastBlock(target.FirstBlock)
	if err != nil {
		return err
	}

	bytesPerBlock := driver.geometry.BytesPerBlock
	offset := uint(target.Size) % bytesPerBlock
	if offset == 0 && target.Size > 0 {
		offset = bytesPerBlock
	}

	// Allocate everything up front so running out of space leaves the volume
	// untouched.
	spaceInLast := bytesPerBlock - offset
	newBlocks := []common.BlockID{}
	if uint(len(data)) > spaceInLast {
		needed := driver.geometry.LengthToNumBlocks(uint(len(data)) - spaceInLast)
		previous := lastBlock
		for i := uint(0); i < needed; i++ {
			block, err := table.AllocateOne()
			if err != nil {
				return osfs.ErrNoSpaceOnDevice.WithMessage(
					fmt.Sprintf("need %d more blocks to append to %s", needed, dst))
			}
			err = table.ExtendChain(previous, block)
			if err != nil {
				return err
			}
			newBlocks = append(newBlocks, block)
			previous = block
		}
	}

	written := uint(0)
	if spaceInLast > 0 {
		buffer, err := driver.device.ReadBlock(lastBlock)
		if err != nil {
			return err
		}
		written = uint(copy(buffer[offset:], data))
		err = driver.device.WriteBlock(lastBlock, buffer)
		if err != nil {
			return err
		}
	}

	err = driver.writeChain(newBlocks, data[written:])
	if err != nil {
		return err
	}

	err = table.Persist()
	if err != nil {
		return err
	}

	dstLoc.dir[dstLoc.slot].Size = uint32(newSize)
	return WriteDirectory(driver.device, dstLoc.dirBlock, dstLoc.dir)
}

////////////////////////////////////////////////////////////////////////////////
// Directories

// Ls writes a table of the working directory's entries to the output.
func (driver *Driver) Ls() error {
	entries, err := driver.ReadDir()
	if err != nil {
		return err
	}

	var listing strings.Builder
	listing.WriteString("name\t type\t accessrights\t size\n")
	for _, entry := range entries {
		size := "-"
		if !entry.IsDir() {
			size = fmt.Sprint(entry.Size)
		}
		fmt.Fprintf(&listing, "%s\t %s\t %s\t %s\n", entry.Name, entry.Type, entry.Rights, size)
	}

	_, err = io.WriteString(driver.output, listing.String())
	if err != nil {
		return osfs.ErrIOFailed.Wrap(err)
	}
	return nil
}

// ReadDir returns every used entry of the working directory in slot order,
// including "..".
func (driver *Driver) ReadDir() ([]osfs.EntryInfo, error) {
	dir, err := ReadDirectory(driver.device, driver.workingDir)
	if err != nil {
		return nil, err
	}

	used := dir.Used()
	infos := make([]osfs.EntryInfo, len(used))
	for i, entry := range used {
		infos[i] = entry.Info()
	}
	return infos, nil
}

// Mkdir creates an empty directory at `path`.
func (driver *Driver) Mkdir(path string) error {
	parentBlock, name, parent, err := driver.resolveNewEntry(path)
	if err != nil {
		return err
	}

	table, err := LoadAllocationTable(driver.device)
	if err != nil {
		return err
	}
	block, err := table.AllocateOne()
	if err != nil {
		return err
	}

	contents := NewDirectory(driver.geometry.BytesPerBlock)
	contents[0] = Dirent{
		Name:       ParentDirName,
		FirstBlock: parentBlock,
		Type:       osfs.TypeDirectory,
		Rights:     osfs.RightsAll,
	}
	err = WriteDirectory(driver.device, block, contents)
	if err != nil {
		return err
	}

	err = table.Persist()
	if err != nil {
		return err
	}

	slot, _ := parent.FindFreeSlot()
	parent[slot] = Dirent{
		Name:       name,
		FirstBlock: block,
		Type:       osfs.TypeDirectory,
		Rights:     osfs.RightsAll,
	}
	return WriteDirectory(driver.device, parentBlock, parent)
}

// Cd changes the working directory. ".." at the root stays at the root.
func (driver *Driver) Cd(path string) error {
	block, err := driver.resolveDirectory(path)
	if err != nil {
		return err
	}
	driver.workingDir = block
	return nil
}

// Pwd writes the absolute path of the working directory to the output.
func (driver *Driver) Pwd() error {
	path, err := driver.WorkingDirectory()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(driver.output, path)
	if err != nil {
		return osfs.ErrIOFailed.Wrap(err)
	}
	return nil
}

// WorkingDirectory reconstructs the absolute path of the working directory by
// following ".." entries up to the root and looking up each directory's name in
// its parent.
func (driver *Driver) WorkingDirectory() (string, error) {
	components := []string{}
	current := driver.workingDir

	for current != RootDirBlock {
		if uint(len(components)) >= driver.geometry.TotalBlocks {
			return "", osfs.ErrFileSystemCorrupted.WithMessage(
				fmt.Sprintf("parent links starting at block %d form a cycle", driver.workingDir))
		}

		dir, err := ReadDirectory(driver.device, current)
		if err != nil {
			return "", err
		}
		parentBlock, ok := dir.Parent()
		if !ok {
			return "", osfs.ErrFileSystemCorrupted.WithMessage(
				fmt.Sprintf("directory at block %d has no parent link", current))
		}

		parent, err := ReadDirectory(driver.device, parentBlock)
		if err != nil {
			return "", err
		}

		name := ""
		if slot, found := parent.FindByFirstBlock(current); found {
			name = parent[slot].Name
		}
		components = append(components, name)
		current = parentBlock
	}

	if len(components) == 0 {
		return pathSeparator, nil
	}

	var path strings.Builder
	for i := len(components) - 1; i >= 0; i-- {
		path.WriteString(pathSeparator)
		path.WriteString(components[i])
	}
	return path.String(), nil
}

////////////////////////////////////////////////////////////////////////////////
// Metadata

// Chmod replaces the access rights of the entry at `path`.
func (driver *Driver) Chmod(rights int, path string) error {
	newRights, err := osfs.AccessRightsFromInt(rights)
	if err != nil {
		return err
	}

	loc, err := driver.locate(path)
	if err != nil {
		return err
	}
	loc.dir[loc.slot].Rights = newRights
	return WriteDirectory(driver.device, loc.dirBlock, loc.dir)
}

// Stat returns information about the entry at `path`. For the root directory a
// synthesized entry named "/" is returned.
func (driver *Driver) Stat(path string) (osfs.EntryInfo, error) {
	_, name, err := driver.resolve(path)
	if err != nil {
		return osfs.EntryInfo{}, err
	}
	if name == "" {
		return osfs.EntryInfo{
			Name:       pathSeparator,
			Type:       osfs.TypeDirectory,
			Rights:     osfs.RightsAll,
			FirstBlock: uint16(RootDirBlock),
		}, nil
	}

	loc, err := driver.locate(path)
	if err != nil {
		return osfs.EntryInfo{}, err
	}
	return loc.entry().Info(), nil
}

// FreeBlocks gives the number of blocks available for new data.
func (driver *Driver) FreeBlocks() (uint, error) {
	table, err := LoadAllocationTable(driver.device)
	if err != nil {
		return 0, err
	}
	return table.FreeBlocks(), nil
}

////////////////////////////////////////////////////////////////////////////////
// Helpers

// storeFile allocates a chain for `data`, writes it, and records it in `dir` as
// a new file named `name`.
func (driver *Driver) storeFile(
	dirBlock common.BlockID, dir Directory, name string, data []byte,
) error {
	if uint64(len(data)) > math.MaxUint32 {
		return osfs.ErrFileTooLarge.WithMessage(name)
	}
	slot, ok := dir.FindFreeSlot()
	if !ok {
		return osfs.ErrDirectoryFull
	}

	table, err := LoadAllocationTable(driver.device)
	if err != nil {
		return err
	}

	blockCount := driver.geometry.LengthToNumBlocks(uint(len(data)))
	if blockCount == 0 {
		blockCount = 1
	}
	chain, err := table.AllocateChain(blockCount)
	if err != nil {
		return err
	}

	err = driver.writeChain(chain, data)
	if err != nil {
		return err
	}
	err = table.Persist()
	if err != nil {
		return err
	}

	dir[slot] = Dirent{
		Name:       name,
		Size:       uint32(len(data)),
		FirstBlock: chain[0],
		Type:       osfs.TypeFile,
		Rights:     osfs.RightsReadWrite,
	}
	return WriteDirectory(driver.device, dirBlock, dir)
}

// writeChain writes `data` across the blocks of `chain` in order. The last block
// is padded with null bytes.
func (driver *Driver) writeChain(chain []common.BlockID, data []byte) error {
	bytesPerBlock := driver.geometry.BytesPerBlock
	for i, block := range chain {
		buffer := make([]byte, bytesPerBlock)
		start := uint(i) * bytesPerBlock
		if start < uint(len(data)) {
			copy(buffer, data[start:])
		}
		err := driver.device.WriteBlock(block, buffer)
		if err != nil {
			return err
		}
	}
	return nil
}

// readContent reads the first `entry.Size` bytes of the entry's chain.
func (driver *Driver) readContent(entry Dirent) ([]byte, error) {
	table, err := LoadAllocationTable(driver.device)
	if err != nil {
		return nil, err
	}
	chain, err := table.Chain(entry.FirstBlock)
	if err != nil {
		return nil, err
	}

	bytesPerBlock := driver.geometry.BytesPerBlock
	if uint(len(chain))*bytesPerBlock < uint(entry.Size) {
		return nil, osfs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf(
				"%s is %d bytes but its chain only has %d blocks",
				entry.Name,
				entry.Size,
				len(chain)))
	}

	data := make([]byte, 0, entry.Size)
	remaining := uint(entry.Size)
	for _, block := range chain {
		if remaining == 0 {
			break
		}
		buffer, err := driver.device.ReadBlock(block)
		if err != nil {
			return nil, err
		}
		n := min(remaining, bytesPerBlock)
		data = append(data, buffer[:n]...)
		remaining -= n
	}
	return data, nil
}

// permissionDenied reports a missing access right on the output and returns the
// matching error.
func (driver *Driver) permissionDenied(right, path string) error {
	message := fmt.Sprintf("no %s permission on %s", right, path)
	fmt.Fprintf(driver.output, "Error: %s\n", message)
	return osfs.ErrPermissionDenied.WithMessage(message)
}
