package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/disks"
	"github.com/Mouaz7/Os-filesystem/drivers/common"
	"github.com/Mouaz7/Os-filesystem/drivers/common/blockcache"
	"github.com/Mouaz7/Os-filesystem/drivers/fatfs"
	"github.com/Mouaz7/Os-filesystem/utilities/compression"
	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp(os.Stdin, os.Stdout)
	err := app.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func newApp(stdin io.Reader, stdout io.Writer) *cli.App {
	commands := []*cli.Command{
		{
			Name:   "format",
			Usage:  "Create or wipe a volume",
			Action: withVolume(stdin, stdout, true, formatVolume),
		},
		{
			Name:   "shell",
			Usage:  "Run commands interactively against the volume",
			Action: runShellAction(stdin, stdout),
		},
		{
			Name:      "export",
			Usage:     "Write a compressed snapshot of the volume",
			ArgsUsage: "SNAPSHOT_FILE",
			Action:    exportVolume,
		},
		{
			Name:      "import",
			Usage:     "Replace the volume with a snapshot made by export",
			ArgsUsage: "SNAPSHOT_FILE",
			Action:    importVolume,
		},
		{
			Name:  "geometries",
			Usage: "List the predefined volume geometries",
			Action: func(c *cli.Context) error {
				return listGeometries(stdout)
			},
		},
	}

	for _, command := range volumeCommands {
		if command.ShellOnly {
			continue
		}
		commands = append(commands, &cli.Command{
			Name:      command.Name,
			Usage:     command.Usage,
			ArgsUsage: command.ArgsUsage(),
			Action:    runVolumeCommandAction(stdin, stdout, command),
		})
	}

	return &cli.App{
		Name:      "osfs",
		Usage:     "Manage a FAT-style file system stored in an image file",
		Writer:    stdout,
		Reader:    stdin,
		Commands:  commands,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "image",
				Aliases: []string{"i"},
				Usage:   "path to the volume image",
				Value:   "osfs.img",
				EnvVars: []string{"OSFS_IMAGE"},
			},
			&cli.StringFlag{
				Name:    "geometry",
				Aliases: []string{"g"},
				Usage: fmt.Sprintf(
					"volume geometry, one of: %s", strings.Join(disks.Slugs(), ", ")),
				Value:   disks.DefaultSlug,
				EnvVars: []string{"OSFS_GEOMETRY"},
			},
		},
	}
}

func geometryFromFlags(c *cli.Context) (common.Geometry, error) {
	preset, err := disks.GetPredefinedDiskGeometry(c.String("geometry"))
	if err != nil {
		return common.Geometry{}, err
	}
	return preset.Geometry(), nil
}

func openDevice(c *cli.Context) (*common.FileDevice, error) {
	geometry, err := geometryFromFlags(c)
	if err != nil {
		return nil, err
	}
	return common.OpenImageFile(c.String("image"), geometry)
}

// mountedVolume is an image file opened for the duration of one command.
type mountedVolume struct {
	driver *fatfs.Driver
	input  osfs.LineSource
	cache  *blockcache.BlockCache
}

type volumeAction func(c *cli.Context, volume mountedVolume) error

// withVolume opens the image named on the command line, mounts it behind a
// write-back cache, and runs `action`. Unless `allowUnformatted` is set, the
// volume must already be formatted. Dirty blocks are flushed before the image
// is closed.
func withVolume(
	stdin io.Reader,
	stdout io.Writer,
	allowUnformatted bool,
	action volumeAction,
) cli.ActionFunc {
	return func(c *cli.Context) (err error) {
		device, err := openDevice(c)
		if err != nil {
			return err
		}
		cache := blockcache.New(device)
		defer func() {
			flushErr := cache.Flush()
			closeErr := device.Close()
			if err == nil {
				err = flushErr
			}
			if err == nil {
				err = closeErr
			}
		}()

		input := osfs.NewLineReader(stdin)
		driver, err := fatfs.NewDriver(cache, input, stdout)
		if err != nil {
			return err
		}

		if !allowUnformatted {
			formatted, err := driver.IsFormatted()
			if err != nil {
				return err
			}
			if !formatted {
				return osfs.ErrInvalidArgument.WithMessage(
					fmt.Sprintf(
						"%s is not formatted, run `osfs format` first",
						c.String("image")))
			}
		}
		return action(c, mountedVolume{driver: driver, input: input, cache: cache})
	}
}

func formatVolume(c *cli.Context, volume mountedVolume) error {
	driver := volume.driver
	err := driver.Format()
	if err != nil {
		return err
	}
	geometry := driver.Geometry()
	fmt.Fprintf(
		c.App.Writer,
		"Formatted %s: %d blocks of %d bytes\n",
		c.String("image"),
		geometry.TotalBlocks,
		geometry.BytesPerBlock)
	return nil
}

func runVolumeCommandAction(stdin io.Reader, stdout io.Writer, command volumeCommand) cli.ActionFunc {
	return withVolume(
		stdin,
		stdout,
		false,
		func(c *cli.Context, volume mountedVolume) error {
			args := c.Args().Slice()
			err := command.checkArgs(args)
			if err != nil {
				return err
			}
			return command.Run(volume.driver, stdout, args)
		},
	)
}

func runShellAction(stdin io.Reader, stdout io.Writer) cli.ActionFunc {
	// The shell can format, so an unformatted volume is fine here.
	return withVolume(
		stdin,
		stdout,
		true,
		func(c *cli.Context, volume mountedVolume) error {
			driver := volume.driver
			formatted, err := driver.IsFormatted()
			if err != nil {
				return err
			}
			if !formatted {
				fmt.Fprintln(stdout, "Volume is not formatted, formatting it now.")
				err = driver.Format()
				if err != nil {
					return err
				}
			}
			return runShell(driver, volume.input, stdout, volume.cache.Flush)
		},
	)
}

func snapshotPath(c *cli.Context) (string, error) {
	if c.Args().Len() != 1 {
		return "", osfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("usage: %s SNAPSHOT_FILE", c.Command.Name))
	}
	return c.Args().First(), nil
}

func exportVolume(c *cli.Context) (err error) {
	path, err := snapshotPath(c)
	if err != nil {
		return err
	}

	device, err := openDevice(c)
	if err != nil {
		return err
	}
	defer device.Close()

	outFile, err := os.Create(path)
	if err != nil {
		return osfs.ErrIOFailed.Wrap(err)
	}
	defer func() {
		closeErr := outFile.Close()
		if err == nil && closeErr != nil {
			err = osfs.ErrIOFailed.Wrap(closeErr)
		}
	}()

	_, err = compression.ExportVolume(device, outFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Exported %s to %s\n", c.String("image"), path)
	return nil
}

func importVolume(c *cli.Context) (err error) {
	path, err := snapshotPath(c)
	if err != nil {
		return err
	}

	inFile, err := os.Open(path)
	if err != nil {
		return osfs.ErrIOFailed.Wrap(err)
	}
	defer inFile.Close()

	device, err := openDevice(c)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := device.Close()
		if err == nil {
			err = closeErr
		}
	}()

	err = compression.ImportVolume(inFile, device)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Imported %s into %s\n", path, c.String("image"))
	return nil
}

func listGeometries(output io.Writer) error {
	for _, slug := range disks.Slugs() {
		preset, err := disks.GetPredefinedDiskGeometry(slug)
		if err != nil {
			return err
		}
		fmt.Fprintf(
			output,
			"%-10s %-28s %5d x %-5d %s\n",
			preset.Slug,
			preset.Name,
			preset.BytesPerBlock,
			preset.TotalBlocks,
			preset.Notes)
	}
	return nil
}
