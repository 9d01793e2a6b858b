package main

import (
	"fmt"
	"io"
	"strings"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/drivers/fatfs"
)

// volumeCommand is an operation on a mounted volume. The same table drives both
// the command-line subcommands and the interactive shell.
type volumeCommand struct {
	Name      string
	ArgNames  []string
	Usage     string
	ShellOnly bool
	Run       func(driver *fatfs.Driver, output io.Writer, args []string) error
}

func (command volumeCommand) ArgsUsage() string {
	return strings.Join(command.ArgNames, " ")
}

func (command volumeCommand) checkArgs(args []string) error {
	if len(args) != len(command.ArgNames) {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("usage: %s %s", command.Name, command.ArgsUsage()))
	}
	return nil
}

var volumeCommands = []volumeCommand{
	{
		Name:     "create",
		ArgNames: []string{"FILE"},
		Usage:    "Create a file from lines read on standard input, ending at a blank line",
		Run: func(driver *fatfs.Driver, _ io.Writer, args []string) error {
			return driver.Create(args[0])
		},
	},
	{
		Name:     "cat",
		ArgNames: []string{"FILE"},
		Usage:    "Print the contents of a file",
		Run: func(driver *fatfs.Driver, _ io.Writer, args []string) error {
			return driver.Cat(args[0])
		},
	},
	{
		Name:  "ls",
		Usage: "List the current directory",
		Run: func(driver *fatfs.Driver, _ io.Writer, _ []string) error {
			return driver.Ls()
		},
	},
	{
		Name:     "cp",
		ArgNames: []string{"SOURCE", "DEST"},
		Usage:    "Copy a file",
		Run: func(driver *fatfs.Driver, _ io.Writer, args []string) error {
			return driver.Cp(args[0], args[1])
		},
	},
	{
		Name:     "mv",
		ArgNames: []string{"SOURCE", "DEST"},
		Usage:    "Rename a file or move it into a directory",
		Run: func(driver *fatfs.Driver, _ io.Writer, args []string) error {
			return driver.Mv(args[0], args[1])
		},
	},
	{
		Name:     "rm",
		ArgNames: []string{"PATH"},
		Usage:    "Remove a file or an empty directory",
		Run: func(driver *fatfs.Driver, _ io.Writer, args []string) error {
			return driver.Rm(args[0])
		},
	},
	{
		Name:     "append",
		ArgNames: []string{"SOURCE", "DEST"},
		Usage:    "Append the contents of SOURCE to DEST",
		Run: func(driver *fatfs.Driver, _ io.Writer, args []string) error {
			return driver.Append(args[0], args[1])
		},
	},
	{
		Name:     "mkdir",
		ArgNames: []string{"DIR"},
		Usage:    "Create a directory",
		Run: func(driver *fatfs.Driver, _ io.Writer, args []string) error {
			return driver.Mkdir(args[0])
		},
	},
	{
		Name:      "cd",
		ArgNames:  []string{"DIR"},
		Usage:     "Change the working directory",
		ShellOnly: true,
		Run: func(driver *fatfs.Driver, _ io.Writer, args []string) error {
			return driver.Cd(args[0])
		},
	},
	{
		Name:  "pwd",
		Usage: "Print the working directory",
		Run: func(driver *fatfs.Driver, _ io.Writer, _ []string) error {
			return driver.Pwd()
		},
	},
	{
		Name:     "chmod",
		ArgNames: []string{"RIGHTS", "PATH"},
		Usage:    "Set access rights (0-7, read=4 write=2 execute=1)",
		Run: func(driver *fatfs.Driver, _ io.Writer, args []string) error {
			rights, err := osfs.ParseAccessRights(args[0])
			if err != nil {
				return err
			}
			return driver.Chmod(int(rights), args[1])
		},
	},
	{
		Name:  "check",
		Usage: "Verify the consistency of the volume",
		Run: func(driver *fatfs.Driver, output io.Writer, _ []string) error {
			report, err := driver.Check()
			fmt.Fprintf(
				output,
				"%d files, %d directories, %d blocks used, %d free\n",
				report.Files,
				report.Directories,
				report.UsedBlocks,
				report.FreeBlocks)
			return err
		},
	},
	{
		Name:  "df",
		Usage: "Show free space",
		Run: func(driver *fatfs.Driver, output io.Writer, _ []string) error {
			free, err := driver.FreeBlocks()
			if err != nil {
				return err
			}
			geometry := driver.Geometry()
			dataBlocks := geometry.TotalBlocks - uint(fatfs.FirstDataBlock)
			_, err = fmt.Fprintf(
				output,
				"%d of %d blocks free (%d bytes per block, %d bytes free)\n",
				free,
				dataBlocks,
				geometry.BytesPerBlock,
				free*geometry.BytesPerBlock)
			return err
		},
	},
}

func findVolumeCommand(name string) (volumeCommand, bool) {
	for _, command := range volumeCommands {
		if command.Name == name {
			return command, true
		}
	}
	return volumeCommand{}, false
}
