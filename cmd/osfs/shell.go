package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/drivers/fatfs"
)

// runShell reads commands from `input` until it's exhausted or the user types
// "quit". The working directory persists between commands. Errors are reported
// and the shell keeps going. `sync` is called after every command so that
// changes reach the image even if the shell is killed.
//
// `input` is shared with the driver, so the content for `create` is read from
// the lines following the command.
func runShell(
	driver *fatfs.Driver,
	input osfs.LineSource,
	output io.Writer,
	sync func() error,
) error {
	for {
		cwd, err := driver.WorkingDirectory()
		if err != nil {
			cwd = "?"
		}
		fmt.Fprintf(output, "osfs:%s> ", cwd)

		line, err := input.ReadLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(output)
			return nil
		} else if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "help":
			printShellHelp(output)
			continue
		case "format":
			err = driver.Format()
		default:
			err = runVolumeCommand(driver, output, fields[0], fields[1:])
		}

		if err != nil {
			fmt.Fprintf(output, "%s: %s\n", fields[0], err)
		}
		err = sync()
		if err != nil {
			return err
		}
	}
}

func runVolumeCommand(driver *fatfs.Driver, output io.Writer, name string, args []string) error {
	command, ok := findVolumeCommand(name)
	if !ok {
		return osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("unknown command %q, try \"help\"", name))
	}
	err := command.checkArgs(args)
	if err != nil {
		return err
	}
	return command.Run(driver, output, args)
}

func printShellHelp(output io.Writer) {
	fmt.Fprintln(output, "Commands:")
	fmt.Fprintf(output, "  %-24s %s\n", "format", "Erase the volume")
	for _, command := range volumeCommands {
		fmt.Fprintf(
			output,
			"  %-24s %s\n",
			strings.TrimSpace(command.Name+" "+command.ArgsUsage()),
			command.Usage)
	}
	fmt.Fprintf(output, "  %-24s %s\n", "quit", "Leave the shell")
}
